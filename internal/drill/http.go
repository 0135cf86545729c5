package drill

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := marshalJSON(body)
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

// marshalJSON marshals a struct to JSON
func marshalJSON(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// unmarshalJSON unmarshals JSON to a struct
func unmarshalJSON(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// sampleRequest mirrors the service's POST /samples body.
type sampleRequest struct {
	InteractionID string `json:"interaction_id"`
	ActorID       string `json:"actor_id"`
	TargetID      string `json:"target_id"`
	NewTotal      int    `json:"new_total"`
	Authorized    bool   `json:"authorized"`
}

// awardRequest mirrors the service's POST /awards body.
type awardRequest struct {
	InteractionID string      `json:"interaction_id"`
	ActorID       string      `json:"actor_id"`
	TargetID      string      `json:"target_id"`
	Authorized    bool        `json:"authorized"`
	Awards        []AwardSlot `json:"awards"`
}

// squadRequest mirrors the service's POST /squads/assign body.
type squadRequest struct {
	ActorID    string `json:"actor_id"`
	TargetID   string `json:"target_id"`
	SquadID    string `json:"squad_id"`
	Authorized bool   `json:"authorized"`
}

// submitSamples submits scheduled sample observations concurrently. Each
// worker owns a whole member plan so that the member's totals arrive in
// order; parallelism is across members, never within one.
func submitSamples(ctx context.Context, config *Config, plans []*MemberPlan, stats *Stats) error {
	totalCalls := 0
	for _, plan := range plans {
		totalCalls += len(plan.Samples)
	}
	log.Printf("📤 Submitting %d sample observations for %d members with %d workers...",
		totalCalls, len(plans), config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/samples"

	// Counters for statistics
	var (
		applied   int64
		duplicate int64
		failed    int64
		submitted int64
	)

	// Progress reporting
	var lastReport time.Time
	reportInterval := 1 * time.Second

	// Create worker pool
	planChan := make(chan *MemberPlan, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for plan := range planChan {
				for _, call := range plan.Samples {
					select {
					case <-ctx.Done():
						return
					default:
						result := submitSingleSample(ctx, client, url, plan.MemberID, call)

						// Update counters
						atomic.AddInt64(&submitted, 1)
						switch result {
						case "applied":
							atomic.AddInt64(&applied, 1)
						case "duplicate":
							atomic.AddInt64(&duplicate, 1)
						case "failed":
							atomic.AddInt64(&failed, 1)
						}

						// Progress reporting
						if time.Since(lastReport) >= reportInterval {
							lastReport = time.Now()
							total := atomic.LoadInt64(&submitted)
							app := atomic.LoadInt64(&applied)
							dup := atomic.LoadInt64(&duplicate)
							fail := atomic.LoadInt64(&failed)

							if config.Verbose {
								log.Printf("📊 Progress: %d/%d submitted (applied: %d, duplicate: %d, failed: %d)",
									total, totalCalls, app, dup, fail)
							} else {
								fmt.Printf("\r📤 Submitted: %d/%d (applied: %d, duplicate: %d, failed: %d)",
									total, totalCalls, app, dup, fail)
							}
						}
					}
				}
			}
		}()
	}

	// Send plans to workers
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

	// Wait for all workers to complete
	wg.Wait()

	// Final progress report
	if !config.Verbose {
		fmt.Println() // New line after progress indicator
	}

	// Update stats
	stats.SamplesSubmitted = int(atomic.LoadInt64(&submitted))
	stats.SamplesApplied = int(atomic.LoadInt64(&applied))
	stats.SamplesDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.SamplesFailed = int(atomic.LoadInt64(&failed))

	log.Printf(`✅ Sample submission completed:
   Applied: %d
   Duplicate: %d
   Failed: %d
`, stats.SamplesApplied, stats.SamplesDuplicate, stats.SamplesFailed)

	return nil
}

// submitSingleSample submits a single observation and returns the result
func submitSingleSample(ctx context.Context, client *HTTPClient, url, memberID string, call SampleCall) string {
	body := sampleRequest{
		InteractionID: call.InteractionID,
		ActorID:       memberID,
		TargetID:      memberID,
		NewTotal:      call.NewTotal,
	}

	resp, err := client.Post(ctx, url, body)
	if err != nil {
		return "failed"
	}

	respBody, err := readResponseBody(resp)
	if err != nil {
		return "failed"
	}

	if resp.StatusCode != StatusOK {
		return "failed"
	}

	var ack mutationAck
	if err := unmarshalJSON(respBody, &ack); err != nil {
		return "failed"
	}
	switch ack.Status {
	case "applied", "duplicate":
		return ack.Status
	default:
		return "failed"
	}
}

// resubmitSamples replays the first observation of every plan with its
// original interaction id. The service must ack each as a duplicate
// without moving any totals.
func resubmitSamples(ctx context.Context, config *Config, plans []*MemberPlan, stats *Stats) error {
	log.Printf("🔁 Replaying %d interactions to exercise idempotency...", len(plans))

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/samples"

	var duplicate, unexpected int64

	planChan := make(chan *MemberPlan, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for plan := range planChan {
				if len(plan.Samples) == 0 {
					continue
				}
				select {
				case <-ctx.Done():
					return
				default:
					result := submitSingleSample(ctx, client, url, plan.MemberID, plan.Samples[0])
					if result == "duplicate" {
						atomic.AddInt64(&duplicate, 1)
					} else {
						atomic.AddInt64(&unexpected, 1)
						if config.Verbose {
							log.Printf("⚠️  Replay of %s came back %q, want duplicate", plan.MemberID, result)
						}
					}
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

	stats.SamplesDuplicate += int(atomic.LoadInt64(&duplicate))

	if unexpected > 0 {
		log.Printf("⚠️  Replay completed with %d non-duplicate acks", unexpected)
	} else {
		log.Printf("✅ Replay completed: %d duplicates acked", duplicate)
	}
	return nil
}

// submitAwards submits scheduled award grants concurrently.
func submitAwards(ctx context.Context, config *Config, plans []*MemberPlan, stats *Stats) error {
	totalCalls := 0
	for _, plan := range plans {
		totalCalls += len(plan.Awards)
	}
	log.Printf("🎖️  Submitting %d award grants with %d workers...", totalCalls, config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/awards"

	var (
		applied   int64
		failed    int64
		submitted int64
	)

	planChan := make(chan *MemberPlan, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for plan := range planChan {
				for _, call := range plan.Awards {
					select {
					case <-ctx.Done():
						return
					default:
						body := awardRequest{
							InteractionID: call.InteractionID,
							ActorID:       plan.MemberID,
							TargetID:      plan.MemberID,
							Authorized:    true,
							Awards:        call.Slots,
						}

						atomic.AddInt64(&submitted, 1)
						resp, err := client.Post(ctx, url, body)
						if err != nil {
							atomic.AddInt64(&failed, 1)
							continue
						}
						respBody, err := readResponseBody(resp)
						if err != nil || resp.StatusCode != StatusOK {
							atomic.AddInt64(&failed, 1)
							continue
						}
						var ack mutationAck
						if err := unmarshalJSON(respBody, &ack); err != nil {
							atomic.AddInt64(&failed, 1)
							continue
						}
						// "skipped" means every slot named an unknown award
						// or carried a bad quantity; the request still worked.
						atomic.AddInt64(&applied, 1)
					}
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

	stats.AwardsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.AwardsApplied = int(atomic.LoadInt64(&applied))
	stats.AwardsFailed = int(atomic.LoadInt64(&failed))

	log.Printf(`✅ Award submission completed:
   Acked: %d
   Failed: %d
`, stats.AwardsApplied, stats.AwardsFailed)

	return nil
}

// assignSquads assigns every member to its planned squad concurrently.
func assignSquads(ctx context.Context, config *Config, plans []*MemberPlan, stats *Stats) error {
	log.Printf("🪖 Assigning %d members to squads with %d workers...", len(plans), config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/squads/assign"

	var (
		assigned int64
		failed   int64
	)

	planChan := make(chan *MemberPlan, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for plan := range planChan {
				select {
				case <-ctx.Done():
					return
				default:
					body := squadRequest{
						ActorID:    plan.MemberID,
						TargetID:   plan.MemberID,
						SquadID:    plan.SquadID,
						Authorized: true,
					}

					resp, err := client.Post(ctx, url, body)
					if err != nil {
						atomic.AddInt64(&failed, 1)
						continue
					}
					if _, err := readResponseBody(resp); err != nil || resp.StatusCode != StatusOK {
						atomic.AddInt64(&failed, 1)
						continue
					}
					atomic.AddInt64(&assigned, 1)
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

	stats.SquadsAssigned = int(atomic.LoadInt64(&assigned))
	stats.SquadAssignFailed = int(atomic.LoadInt64(&failed))

	log.Printf(`✅ Squad assignment completed:
   Assigned: %d
   Failed: %d
`, stats.SquadsAssigned, stats.SquadAssignFailed)

	return nil
}
