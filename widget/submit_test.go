package widget

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sharedmodels "github.com/markhiner/Hiner.nyc/shared/models"
)

func TestHTTPSubmitterPostsJSON(t *testing.T) {
	var (
		gotMethod      string
		gotPath        string
		gotContentType string
		gotBody        map[string]string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotBody))
	}))
	defer srv.Close()

	sub := &HTTPSubmitter{BaseURL: srv.URL + "/"}
	err := sub.Submit(context.Background(), sharedmodels.SearchRequest{
		Q:            "Paris",
		CheckInDate:  "2024-03-01",
		CheckOutDate: "2024-03-04",
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, SubmitPath, gotPath)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, map[string]string{
		"q":              "Paris",
		"check_in_date":  "2024-03-01",
		"check_out_date": "2024-03-04",
	}, gotBody)
}

func TestHTTPSubmitterAnySettledResponseIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	sub := &HTTPSubmitter{BaseURL: srv.URL}
	err := sub.Submit(context.Background(), sharedmodels.SearchRequest{Q: "Rome"})

	assert.NoError(t, err)
}

func TestHTTPSubmitterTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	sub := &HTTPSubmitter{BaseURL: srv.URL}
	err := sub.Submit(context.Background(), sharedmodels.SearchRequest{Q: "Rome"})

	assert.Error(t, err)
}
