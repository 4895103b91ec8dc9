package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	sharedmodels "github.com/markhiner/Hiner.nyc/shared/models"
)

// SubmitPath is the fixed search-trigger endpoint path.
const SubmitPath = "/run_hotels_search"

// HTTPSubmitter posts the search request as JSON to the search-trigger
// endpoint. The response body is never inspected: a settled response of any
// status satisfies the submission.
type HTTPSubmitter struct {
	BaseURL string
	Client  *http.Client
}

func (s *HTTPSubmitter) Submit(ctx context.Context, req sharedmodels.SearchRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	url := strings.TrimRight(s.BaseURL, "/") + SubmitPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}
