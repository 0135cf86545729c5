package drill

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// retrieveMemberStats fetches the ledger record for every member concurrently.
func retrieveMemberStats(ctx context.Context, config *Config, plans []*MemberPlan, stats *Stats) ([]statsView, error) {
	log.Printf("📋 Retrieving stats for %d members with %d workers...", len(plans), config.Workers)

	client := newHTTPClient(config.Timeout)

	// Results storage
	views := make([]statsView, len(plans))
	var (
		retrieved int64
		failed    int64
	)

	// Progress reporting
	var lastReport time.Time
	reportInterval := 1 * time.Second

	// Create worker pool
	indexChan := make(chan int, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for index := range indexChan {
				select {
				case <-ctx.Done():
					return
				default:
					memberID := plans[index].MemberID
					view, err := retrieveSingleMember(ctx, client, config.BaseURL, memberID)

					if err != nil {
						atomic.AddInt64(&failed, 1)
						if config.Verbose {
							log.Printf("⚠️  Failed to get stats for %s: %v", memberID, err)
						}
					} else {
						views[index] = view
						atomic.AddInt64(&retrieved, 1)
					}

					// Progress reporting
					if time.Since(lastReport) >= reportInterval {
						lastReport = time.Now()
						total := atomic.LoadInt64(&retrieved) + atomic.LoadInt64(&failed)
						ret := atomic.LoadInt64(&retrieved)
						fail := atomic.LoadInt64(&failed)

						log.Printf("📋 Stats: %d/%d retrieved (success: %d, failed: %d)",
							total, len(plans), ret, fail)
					}
				}
			}
		}()
	}

	// Send member indices to workers
	go func() {
		defer close(indexChan)
		for i := range plans {
			select {
			case <-ctx.Done():
				return
			case indexChan <- i:
			}
		}
	}()

	// Wait for all workers to complete
	wg.Wait()

	// Filter out empty views (failed retrievals)
	validViews := make([]statsView, 0, len(views))
	for _, view := range views {
		if view.TargetID != "" { // Empty TargetID indicates failed retrieval
			validViews = append(validViews, view)
		}
	}

	// Update stats
	stats.StatsRetrieved = len(validViews)

	log.Printf(`✅ Stats retrieval completed:
   Retrieved: %d
   Failed: %d
`, len(validViews), int(atomic.LoadInt64(&failed)))

	return validViews, nil
}

// retrieveSingleMember retrieves the ledger record for a single member.
func retrieveSingleMember(ctx context.Context, client *HTTPClient, baseURL, memberID string) (statsView, error) {
	url := fmt.Sprintf("%s/members/%s", baseURL, memberID)

	resp, err := client.Get(ctx, url)
	if err != nil {
		return statsView{}, fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return statsView{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != StatusOK {
		return statsView{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var view statsView
	if err := unmarshalJSON(body, &view); err != nil {
		return statsView{}, fmt.Errorf("failed to parse response: %w", err)
	}

	return view, nil
}

// getFreedomIndex retrieves the server freedom index report.
func getFreedomIndex(ctx context.Context, config *Config, stats *Stats) (*freedomIndexReport, error) {
	log.Printf("🌍 Getting the freedom index report...")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/freedom-index"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var report freedomIndexReport
	if err := unmarshalJSON(body, &report); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	stats.SquadsReported = len(report.Squads)
	log.Printf("✅ Retrieved freedom index: %d squads, server total %d",
		len(report.Squads), report.TotalServerFreedomLevel)

	return &report, nil
}
