package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AMASPC-Org/olybars-sub000/pkg/logger"
)

// HTTPClient wraps http.Client with a fixed timeout.
type HTTPClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body any) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer func() {
		_ = resp.Body.Close()
	}()
	return io.ReadAll(resp.Body)
}

// submitCheckins posts the planned check-ins concurrently and tallies the
// admission outcomes.
func submitCheckins(ctx context.Context, cfg *Config, baseURL string, plans []checkinPlan, stats *Stats) error {
	logger.Get().Info(ctx, "submitting check-ins",
		logger.Int("count", len(plans)),
		logger.Int("workers", cfg.Workers))

	client := newHTTPClient(cfg.Timeout)
	url := baseURL + "/checkins"

	var (
		submitted int64
		admitted  int64
		rejected  int64
		failed    int64
	)

	var kindMu sync.Mutex
	kinds := make(map[string]int)

	planChan := make(chan checkinPlan, cfg.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for plan := range planChan {
				select {
				case <-ctx.Done():
					return
				default:
				}

				outcome, kind := submitSingleCheckin(ctx, client, url, plan.req)
				atomic.AddInt64(&submitted, 1)
				switch outcome {
				case "admitted":
					atomic.AddInt64(&admitted, 1)
				case "rejected":
					atomic.AddInt64(&rejected, 1)
					kindMu.Lock()
					kinds[kind]++
					kindMu.Unlock()
				default:
					atomic.AddInt64(&failed, 1)
				}
			}
		}()
	}

	go func() {
		defer close(planChan)
		for _, plan := range plans {
			select {
			case <-ctx.Done():
				return
			case planChan <- plan:
			}
		}
	}()

	wg.Wait()

	stats.CheckinsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.CheckinsAdmitted = int(atomic.LoadInt64(&admitted))
	stats.CheckinsRejected = int(atomic.LoadInt64(&rejected))
	stats.CheckinsFailed = int(atomic.LoadInt64(&failed))
	stats.RejectionsByKind = kinds

	logger.Get().Info(ctx, "check-in submission completed",
		logger.Int("admitted", stats.CheckinsAdmitted),
		logger.Int("rejected", stats.CheckinsRejected),
		logger.Int("failed", stats.CheckinsFailed))
	return nil
}

// submitSingleCheckin posts one check-in and classifies the response.
// Returns the outcome and, for rejections, the rejection kind.
func submitSingleCheckin(ctx context.Context, client *HTTPClient, url string, req checkinRequest) (string, string) {
	resp, err := client.Post(ctx, url, req)
	if err != nil {
		return "failed", ""
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return "failed", ""
	}

	switch resp.StatusCode {
	case http.StatusCreated:
		return "admitted", ""
	case http.StatusNotFound, http.StatusForbidden,
		http.StatusUnprocessableEntity, http.StatusTooManyRequests:
		var rej rejectionResponse
		if err := json.Unmarshal(body, &rej); err != nil || rej.Kind == "" {
			return "rejected", "unknown"
		}
		return "rejected", rej.Kind
	default:
		return "failed", ""
	}
}
