// Package serpapi fetches Google Hotels results through SerpAPI and
// normalizes the raw properties into result records.
package serpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	sharedmodels "github.com/markhiner/Hiner.nyc/shared/models"
)

const defaultBaseURL = "https://serpapi.com/search.json"

// Hard-wired hotel filters, matching the production search profile.
const (
	brandsParam = "84,7,41,118,256,26,136,289,2,3"
	hotelClass  = "4,5"
	sortBy      = "8"
	adults      = "2"
)

type Client struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

type Property struct {
	Name         string `json:"name"`
	Link         string `json:"link"`
	RatePerNight struct {
		Lowest any `json:"lowest"`
	} `json:"rate_per_night"`
	HotelClass     any     `json:"hotel_class"`
	Stars          any     `json:"stars"`
	Classification any     `json:"classification"`
	OverallRating  float64 `json:"overall_rating"`
	Reviews        int     `json:"reviews"`
	Images         []struct {
		Thumbnail     string `json:"thumbnail"`
		OriginalImage string `json:"original_image"`
	} `json:"images"`
}

type response struct {
	Properties []Property `json:"properties"`
	Error      string     `json:"error"`
}

// Search runs one Google Hotels query. Dates must already be YYYY-MM-DD; the
// caller derived them, nothing is recomputed here.
func (c *Client) Search(ctx context.Context, req sharedmodels.SearchRequest) ([]sharedmodels.Hotel, error) {
	base := c.BaseURL
	if base == "" {
		base = defaultBaseURL
	}

	params := url.Values{}
	params.Set("engine", "google_hotels")
	params.Set("q", req.Q)
	params.Set("gl", "us")
	params.Set("hl", "en")
	params.Set("currency", "USD")
	params.Set("check_in_date", req.CheckInDate)
	params.Set("check_out_date", req.CheckOutDate)
	params.Set("brands", brandsParam)
	params.Set("hotel_class", hotelClass)
	params.Set("sort_by", sortBy)
	params.Set("adults", adults)
	params.Set("api_key", c.APIKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 45 * time.Second}
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("serpapi status %d: %s", resp.StatusCode, body)
	}

	var data response
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode serpapi response: %w", err)
	}
	if data.Error != "" {
		return nil, fmt.Errorf("serpapi: %s", data.Error)
	}

	hotels := make([]sharedmodels.Hotel, 0, len(data.Properties))
	for _, p := range data.Properties {
		hotels = append(hotels, normalize(p))
	}
	return hotels, nil
}

func normalize(p Property) sharedmodels.Hotel {
	return sharedmodels.Hotel{
		Name:     p.Name,
		Link:     p.Link,
		Price:    ExtractPrice(p.RatePerNight.Lowest),
		Stars:    ClassRating(p),
		Rating:   p.OverallRating,
		Reviews:  p.Reviews,
		ImageURL: pickImage(p),
	}
}

// ExtractPrice turns the nightly rate into "$N" rounded to whole dollars.
// Values arrive as numbers, bare numeric strings or pre-formatted "$123"
// strings; anything unusable yields "".
func ExtractPrice(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case float64:
		return fmt.Sprintf("$%d", int(val+0.5))
	case string:
		if val == "" || val == "None" {
			return ""
		}
		trimmed := val
		if trimmed[0] == '$' {
			trimmed = trimmed[1:]
		}
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return fmt.Sprintf("$%d", int(f+0.5))
		}
		return "$" + trimmed
	default:
		return ""
	}
}

var classDigit = regexp.MustCompile(`(\d(?:\.\d)?)`)

// ClassRating resolves the star class from whichever field carries it,
// clamped to 0..5. SerpAPI serves it as a number for some properties and as
// text like "4-star hotel" for others.
func ClassRating(p Property) int {
	for _, cand := range []any{p.HotelClass, p.Stars, p.Classification} {
		switch v := cand.(type) {
		case float64:
			return clamp(int(v + 0.5))
		case string:
			if m := classDigit.FindString(v); m != "" {
				f, _ := strconv.ParseFloat(m, 64)
				return clamp(int(f + 0.5))
			}
		}
	}
	return 0
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	if n > 5 {
		return 5
	}
	return n
}

func pickImage(p Property) string {
	for _, img := range p.Images {
		if img.OriginalImage != "" {
			return img.OriginalImage
		}
		if img.Thumbnail != "" {
			return img.Thumbnail
		}
	}
	return ""
}

// FilterByRating drops hotels rated below min. Zero keeps everything.
func FilterByRating(hotels []sharedmodels.Hotel, min float64) []sharedmodels.Hotel {
	if min <= 0 {
		return hotels
	}
	out := hotels[:0]
	for _, h := range hotels {
		if h.Rating >= min {
			out = append(out, h)
		}
	}
	return out
}
