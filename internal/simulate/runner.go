package simulate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/AMASPC-Org/olybars-sub000/internal/adapters/http/api"
	"github.com/AMASPC-Org/olybars-sub000/internal/app"
	"github.com/AMASPC-Org/olybars-sub000/internal/domain/model"
	"github.com/AMASPC-Org/olybars-sub000/pkg/logger"
)

const (
	startupDelay    = 200 * time.Millisecond
	shutdownTimeout = 5 * time.Second
)

// Run executes a complete simulation: it starts an embedded pulse engine,
// seeds generated venues, drives check-ins over HTTP and reads back pulses,
// feeds and the buzz window.
func Run(ctx context.Context, cfg *Config) error {
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting pulse simulation",
		logger.String("addr", cfg.Addr),
		logger.Int("venues", cfg.NumVenues),
		logger.Int("users", cfg.NumUsers),
		logger.Int("checkins", cfg.NumCheckins),
		logger.Int("workers", cfg.Workers))

	// Step 1: Start the embedded engine and seed venues.
	svc := app.New(app.WithLogger(logger.Get()))
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Stop()

	now := time.Now()
	venues := generateVenues(ctx, cfg.NumVenues, now)
	for _, v := range venues {
		if err := svc.Venues().Put(ctx, v); err != nil {
			return fmt.Errorf("failed to seed venue %s: %w", v.ID, err)
		}
	}
	stats.VenuesSeeded = len(venues)

	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(ctx, mux)
	srv := &http.Server{Addr: cfg.Addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Get().Error(context.Background(), "embedded server failed", logger.Error(err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	time.Sleep(startupDelay)

	baseURL := "http://" + hostFor(cfg.Addr)

	// Step 2: Health check.
	if err := checkHealth(ctx, cfg, baseURL); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	// Step 3: Generate and submit check-ins.
	plans := generateCheckins(ctx, cfg, venues)
	if err := submitCheckins(ctx, cfg, baseURL, plans, stats); err != nil {
		return fmt.Errorf("check-in submission failed: %w", err)
	}

	// Step 4: Poll per-venue pulses.
	if err := pollPulses(ctx, cfg, baseURL, venues, stats); err != nil {
		return fmt.Errorf("pulse polling failed: %w", err)
	}

	// Step 5: Fetch each feed mode and the buzz window.
	if err := fetchFeeds(ctx, cfg, baseURL, stats); err != nil {
		return fmt.Errorf("feed retrieval failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	logger.Get().Info(ctx, "simulation completed successfully")
	return nil
}

// hostFor normalizes a listen address into a dialable host:port.
func hostFor(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}

// checkHealth verifies the embedded engine is serving.
func checkHealth(ctx context.Context, cfg *Config, baseURL string) error {
	client := newHTTPClient(cfg.Timeout)
	resp, err := client.Get(ctx, baseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to engine: %w", err)
	}
	if _, err := readResponseBody(resp); err != nil {
		return fmt.Errorf("failed to read health response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	logger.Get().Info(ctx, "engine is healthy")
	return nil
}

// pollPulses reads every seeded venue's pulse and logs the busiest one.
func pollPulses(ctx context.Context, cfg *Config, baseURL string, venues []model.VenueSnapshot, stats *Stats) error {
	client := newHTTPClient(cfg.Timeout)

	var topVenue string
	var topScore float64
	for _, v := range venues {
		resp, err := client.Get(ctx, baseURL+"/venues/"+v.ID+"/pulse")
		if err != nil {
			return fmt.Errorf("failed to fetch pulse for %s: %w", v.ID, err)
		}
		body, err := readResponseBody(resp)
		if err != nil {
			return fmt.Errorf("failed to read pulse for %s: %w", v.ID, err)
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("pulse for %s returned status %d", v.ID, resp.StatusCode)
		}

		var reading pulseResponse
		if err := json.Unmarshal(body, &reading); err != nil {
			return fmt.Errorf("failed to decode pulse for %s: %w", v.ID, err)
		}
		stats.PulsesPolled++
		if reading.Score > topScore {
			topScore = reading.Score
			topVenue = v.ID
		}
		if cfg.Verbose {
			logger.Get().Info(ctx, "venue pulse",
				logger.String("venueID", v.ID),
				logger.Float64("score", reading.Score),
				logger.String("status", reading.Status))
		}
	}

	logger.Get().Info(ctx, "pulses polled",
		logger.Int("count", stats.PulsesPolled),
		logger.String("busiestVenue", topVenue),
		logger.Float64("busiestScore", topScore))
	return nil
}

// fetchFeeds renders every feed mode plus the buzz window.
func fetchFeeds(ctx context.Context, cfg *Config, baseURL string, stats *Stats) error {
	client := newHTTPClient(cfg.Timeout)

	for _, mode := range []string{"default", "deals", "events"} {
		url := baseURL + "/feed?mode=" + mode +
			fmt.Sprintf("&lat=%f&lng=%f", anchorLat, anchorLng)
		resp, err := client.Get(ctx, url)
		if err != nil {
			return fmt.Errorf("failed to fetch %s feed: %w", mode, err)
		}
		body, err := readResponseBody(resp)
		if err != nil {
			return fmt.Errorf("failed to read %s feed: %w", mode, err)
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("%s feed returned status %d", mode, resp.StatusCode)
		}

		var items []json.RawMessage
		if err := json.Unmarshal(body, &items); err != nil {
			return fmt.Errorf("failed to decode %s feed: %w", mode, err)
		}
		stats.FeedItems += len(items)
		logger.Get().Info(ctx, "feed rendered",
			logger.String("mode", mode),
			logger.Int("items", len(items)))
	}

	resp, err := client.Get(ctx, baseURL+"/buzz")
	if err != nil {
		return fmt.Errorf("failed to fetch buzz window: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return fmt.Errorf("failed to read buzz window: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("buzz window returned status %d", resp.StatusCode)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return fmt.Errorf("failed to decode buzz window: %w", err)
	}
	stats.BuzzItems = len(items)
	logger.Get().Info(ctx, "buzz window rendered", logger.Int("items", stats.BuzzItems))
	return nil
}

// displayFinalStats prints the final simulation statistics.
func displayFinalStats(stats *Stats) {
	var admitRate float64
	if stats.CheckinsSubmitted > 0 {
		admitRate = float64(stats.CheckinsAdmitted) / float64(stats.CheckinsSubmitted) * 100
	}

	fields := []logger.Field{
		logger.Int("venuesSeeded", stats.VenuesSeeded),
		logger.Int("checkinsSubmitted", stats.CheckinsSubmitted),
		logger.Int("checkinsAdmitted", stats.CheckinsAdmitted),
		logger.Int("checkinsRejected", stats.CheckinsRejected),
		logger.Int("checkinsFailed", stats.CheckinsFailed),
		logger.Int("pulsesPolled", stats.PulsesPolled),
		logger.Int("feedItems", stats.FeedItems),
		logger.Int("buzzItems", stats.BuzzItems),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("admitRate", admitRate),
	}
	for kind, count := range stats.RejectionsByKind {
		fields = append(fields, logger.Int("rejected_"+kind, count))
	}
	logger.Get().Info(context.Background(), "final statistics", fields...)
}
