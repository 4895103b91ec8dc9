package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	sharedmodels "github.com/markhiner/Hiner.nyc/shared/models"
)

const dateLayout = "2006-01-02"

// SearchPayload accepts both wire shapes: the widget's derived request
// (q / check_in_date / check_out_date) and the raw form fields
// (where / when / nights), from which the dates are derived server-side.
type SearchPayload struct {
	sharedmodels.SearchRequest
	sharedmodels.SearchForm
}

// Normalize reduces a payload to a derived SearchRequest. When only the raw
// form shape is present, check-out is check-in plus nights calendar days with
// nights clamped to at least 1.
func Normalize(p SearchPayload) (sharedmodels.SearchRequest, error) {
	q := strings.TrimSpace(p.Q)
	if q == "" {
		q = strings.TrimSpace(p.Where)
	}
	if q == "" {
		return sharedmodels.SearchRequest{}, fmt.Errorf("missing 'q' or 'where'")
	}

	rawIn := strings.TrimSpace(p.CheckInDate)
	if rawIn == "" {
		rawIn = strings.TrimSpace(p.When)
	}
	checkIn, err := time.Parse(dateLayout, rawIn)
	if err != nil {
		return sharedmodels.SearchRequest{}, fmt.Errorf("invalid check-in date %q: want YYYY-MM-DD", rawIn)
	}

	rawOut := strings.TrimSpace(p.CheckOutDate)
	if rawOut == "" {
		nights := 1
		if s := strings.TrimSpace(p.Nights); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				return sharedmodels.SearchRequest{}, fmt.Errorf("invalid 'nights' %q", s)
			}
			if n > 1 {
				nights = n
			}
		}
		rawOut = checkIn.AddDate(0, 0, nights).Format(dateLayout)
	} else {
		checkOut, err := time.Parse(dateLayout, rawOut)
		if err != nil {
			return sharedmodels.SearchRequest{}, fmt.Errorf("invalid check-out date %q: want YYYY-MM-DD", rawOut)
		}
		if !checkOut.After(checkIn) {
			return sharedmodels.SearchRequest{}, fmt.Errorf("check-out %s must fall after check-in %s", rawOut, rawIn)
		}
	}

	return sharedmodels.SearchRequest{
		Q:            q,
		CheckInDate:  checkIn.Format(dateLayout),
		CheckOutDate: rawOut,
	}, nil
}
