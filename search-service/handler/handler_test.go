package handler

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markhiner/Hiner.nyc/shared/constants"
	sharedlogger "github.com/markhiner/Hiner.nyc/shared/logger"
	"github.com/markhiner/Hiner.nyc/shared/utils"
)

type addCall struct {
	stream string
	values map[string]any
}

// stubBroker serves the scripted result records once per consumer group, the
// way independent groups on one stream behave.
type stubBroker struct {
	mu      sync.Mutex
	results []redis.XMessage
	served  map[string]bool
	added   []addCall
	acked   []string
	groups  []string
}

func newStubBroker(results ...redis.XMessage) *stubBroker {
	return &stubBroker{results: results, served: map[string]bool{}}
}

func (s *stubBroker) Add(_ context.Context, stream string, values map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.added = append(s.added, addCall{stream: stream, values: values})
	return nil
}

func (s *stubBroker) ReadGroup(_ context.Context, stream, group, _ string) ([]redis.XStream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !strings.HasPrefix(stream, constants.HotelSearchCompleted+":") {
		return nil, redis.Nil
	}
	key := stream + "|" + group
	if s.served[key] || len(s.results) == 0 {
		return nil, redis.Nil
	}
	s.served[key] = true
	return []redis.XStream{{Stream: stream, Messages: s.results}}, nil
}

func (s *stubBroker) Ack(_ context.Context, _, group, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acked = append(s.acked, group+"/"+messageID)
	return nil
}

func (s *stubBroker) CreateGroup(_ context.Context, stream, group, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups = append(s.groups, stream+"|"+group)
	return nil
}

func useBroker(t *testing.T, b streamBroker) {
	t.Helper()
	sharedlogger.Init()
	prev := broker
	broker = b
	t.Cleanup(func() { broker = prev })
}

func newTestApp() *fiber.App {
	app := fiber.New()
	app.Post("/run_hotels_search", RunHotelsSearchHandler)
	return app
}

func postSearch(t *testing.T, app *fiber.App, body string) (*http.Response, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/run_hotels_search", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestRunHotelsSearchHoldsUntilCompleted(t *testing.T) {
	stub := newStubBroker(
		redis.XMessage{ID: "1-0", Values: map[string]any{"status": constants.StatusProcessing}},
		redis.XMessage{ID: "2-0", Values: map[string]any{"status": constants.StatusCompleted, "total_results": "7"}},
	)
	useBroker(t, stub)

	resp, body := postSearch(t, newTestApp(), `{"q":"Paris","check_in_date":"2024-03-01","check_out_date":"2024-03-04"}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, constants.StatusCompleted, data["status"])
	assert.Equal(t, "7", data["total_results"])

	require.Len(t, stub.added, 1)
	assert.Equal(t, constants.HotelSearchRequested, stub.added[0].stream)
	assert.Equal(t, "Paris", stub.added[0].values["q"])
	assert.Equal(t, "2024-03-01", stub.added[0].values["check_in_date"])
	assert.Equal(t, "2024-03-04", stub.added[0].values["check_out_date"])
	assert.NotEmpty(t, stub.added[0].values["search_id"])
}

func TestRunHotelsSearchFailedMapsToBadGateway(t *testing.T) {
	stub := newStubBroker(
		redis.XMessage{ID: "1-0", Values: map[string]any{
			"status": constants.StatusFailed,
			"error":  "serpapi: quota exceeded",
		}},
	)
	useBroker(t, stub)

	resp, body := postSearch(t, newTestApp(), `{"q":"Rome","check_in_date":"2024-03-01","check_out_date":"2024-03-02"}`)

	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "serpapi: quota exceeded", data["error"])
}

func TestRunHotelsSearchTimesOut(t *testing.T) {
	useBroker(t, newStubBroker())
	prev := resultWait
	resultWait = 50 * time.Millisecond
	t.Cleanup(func() { resultWait = prev })

	resp, body := postSearch(t, newTestApp(), `{"q":"Rome","check_in_date":"2024-03-01","check_out_date":"2024-03-02"}`)

	require.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
	assert.Equal(t, false, body["success"])
}

func TestWaitForResultSkipsNonTerminalAndAcks(t *testing.T) {
	stub := newStubBroker(
		redis.XMessage{ID: "1-0", Values: map[string]any{"status": constants.StatusProcessing}},
		redis.XMessage{ID: "2-0", Values: map[string]any{"status": constants.StatusCompleted}},
	)
	useBroker(t, stub)

	values, err := waitForResult(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, constants.StatusCompleted, values["status"])
	assert.Equal(t, []string{"search-wait/1-0", "search-wait/2-0"}, stub.acked)
	assert.Contains(t, stub.groups, utils.SearchResultStream("abc")+"|search-wait")
}

func TestEventsFeedLeavesTheWaitGroupIntact(t *testing.T) {
	stub := newStubBroker(
		redis.XMessage{ID: "1-0", Values: map[string]any{
			"status":        constants.StatusCompleted,
			"total_results": "3",
		}},
	)
	useBroker(t, stub)

	stream := utils.SearchResultStream("abc")
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)

	err := relayMessage(context.Background(), w, stream, "search-events", stub.results[0])
	require.Equal(t, io.EOF, err)
	assert.Contains(t, buf.String(), `"status":"completed"`)

	// The events feed finishing must not take the result stream with it: the
	// blocking wait still observes the terminal record afterwards.
	values, err := waitForResult(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, constants.StatusCompleted, values["status"])
}
