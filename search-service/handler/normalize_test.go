package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sharedmodels "github.com/markhiner/Hiner.nyc/shared/models"
)

func TestNormalizeDerivedShapePassesThrough(t *testing.T) {
	req, err := Normalize(SearchPayload{
		SearchRequest: sharedmodels.SearchRequest{
			Q:            "Paris",
			CheckInDate:  "2024-03-01",
			CheckOutDate: "2024-03-04",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Paris", req.Q)
	assert.Equal(t, "2024-03-01", req.CheckInDate)
	assert.Equal(t, "2024-03-04", req.CheckOutDate)
}

func TestNormalizeFormShapeDerivesDates(t *testing.T) {
	cases := []struct {
		name    string
		when    string
		nights  string
		wantOut string
	}{
		{"three nights", "2024-03-01", "3", "2024-03-04"},
		{"leap day", "2024-02-28", "1", "2024-02-29"},
		{"empty nights defaults to one", "2024-03-01", "", "2024-03-02"},
		{"zero nights clamps to one", "2024-03-01", "0", "2024-03-02"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := Normalize(SearchPayload{
				SearchForm: sharedmodels.SearchForm{
					Where:  "Tokyo",
					When:   tc.when,
					Nights: tc.nights,
				},
			})
			require.NoError(t, err)
			assert.Equal(t, "Tokyo", req.Q)
			assert.Equal(t, tc.when, req.CheckInDate)
			assert.Equal(t, tc.wantOut, req.CheckOutDate)
		})
	}
}

func TestNormalizeRejectsBadPayloads(t *testing.T) {
	cases := []struct {
		name    string
		payload SearchPayload
	}{
		{"missing location", SearchPayload{
			SearchRequest: sharedmodels.SearchRequest{CheckInDate: "2024-03-01"},
		}},
		{"missing check-in", SearchPayload{
			SearchRequest: sharedmodels.SearchRequest{Q: "Paris"},
		}},
		{"malformed check-in", SearchPayload{
			SearchForm: sharedmodels.SearchForm{Where: "Paris", When: "03/01/2024"},
		}},
		{"malformed nights", SearchPayload{
			SearchForm: sharedmodels.SearchForm{Where: "Paris", When: "2024-03-01", Nights: "two"},
		}},
		{"check-out not after check-in", SearchPayload{
			SearchRequest: sharedmodels.SearchRequest{
				Q:            "Paris",
				CheckInDate:  "2024-03-04",
				CheckOutDate: "2024-03-01",
			},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Normalize(tc.payload)
			assert.Error(t, err)
		})
	}
}

func TestNormalizeTrimsLocation(t *testing.T) {
	req, err := Normalize(SearchPayload{
		SearchForm: sharedmodels.SearchForm{Where: "  New York  ", When: "2024-03-01"},
	})
	require.NoError(t, err)
	assert.Equal(t, "New York", req.Q)
}
