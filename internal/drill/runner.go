package drill

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/leviathan-hq/larry/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run executes the complete ledger drill.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting larry ledger drill",
		logger.String("baseURL", config.BaseURL),
		logger.Int("members", config.NumMembers),
		logger.Int("rounds", config.Rounds),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.String("logFile", config.LogFile),
		logger.Any("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate member plans
	plans, err := generatePlans(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("plan generation failed: %w", err)
	}

	// Step 3: Assign squads first so the report buckets everyone
	if err := assignSquads(ctx, config, plans, stats); err != nil {
		return fmt.Errorf("squad assignment failed: %w", err)
	}

	// Step 4: Submit sample observations concurrently
	if err := submitSamples(ctx, config, plans, stats); err != nil {
		return fmt.Errorf("sample submission failed: %w", err)
	}

	// Step 5: Replay a slice of interactions to exercise idempotency
	if err := resubmitSamples(ctx, config, plans, stats); err != nil {
		return fmt.Errorf("sample replay failed: %w", err)
	}

	// Step 6: Submit award grants
	if err := submitAwards(ctx, config, plans, stats); err != nil {
		return fmt.Errorf("award submission failed: %w", err)
	}

	// Step 7: Let the announcement pipeline drain
	logger.Get().Info(ctx, "waiting for announcements to drain")
	time.Sleep(ProcessingDelay)

	// Step 8: Retrieve member stats concurrently
	views, err := retrieveMemberStats(ctx, config, plans, stats)
	if err != nil {
		return fmt.Errorf("stats retrieval failed: %w", err)
	}

	// Step 9: Get the freedom index report
	report, err := getFreedomIndex(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("freedom index retrieval failed: %w", err)
	}

	// Step 10: Verify results
	if err := verifyResults(config, plans, views, report); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	// Step 11: Save the plan to a file
	if err := savePlansToFile(ctx, config, plans); err != nil {
		logger.Get().Warn(ctx, "failed to save plan to file", logger.Error(err))
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "drill completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// savePlansToFile saves the generated member plans to a JSON file.
func savePlansToFile(ctx context.Context, config *Config, plans []*MemberPlan) error {
	if len(plans) == 0 {
		return fmt.Errorf("no plans to save")
	}

	// Determine output filename
	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "drill_plan_" + timestamp + ".json"
	}

	// Ensure the directory exists
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Write plans to file
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close file", logger.Error(err))
		}
	}()

	// Write JSON array
	if _, err := file.WriteString("[\n"); err != nil {
		return fmt.Errorf("failed to write opening bracket: %w", err)
	}

	for i, plan := range plans {
		jsonData, err := marshalJSON(plan)
		if err != nil {
			return fmt.Errorf("failed to marshal plan %d: %w", i, err)
		}

		if _, err := file.Write(jsonData); err != nil {
			return fmt.Errorf("failed to write plan %d: %w", i, err)
		}

		// Add comma except for last plan
		if i < len(plans)-1 {
			if _, err := file.WriteString(","); err != nil {
				return fmt.Errorf("failed to write comma: %w", err)
			}
		}
		_, _ = file.WriteString("\n")
	}

	if _, err := file.WriteString("]\n"); err != nil {
		return fmt.Errorf("failed to write closing bracket: %w", err)
	}

	logger.Get().Info(ctx, "plan saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final drill statistics.
func displayFinalStats(stats *Stats) {
	var successRate, samplesPerSecond float64

	if stats.SamplesSubmitted > 0 {
		successRate = float64(stats.SamplesApplied) / float64(stats.SamplesSubmitted) * PercentageMultiplier
	}

	if stats.Duration > 0 {
		samplesPerSecond = float64(stats.SamplesSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("membersGenerated", stats.MembersGenerated),
		logger.Int("samplesSubmitted", stats.SamplesSubmitted),
		logger.Int("samplesApplied", stats.SamplesApplied),
		logger.Int("samplesDuplicate", stats.SamplesDuplicate),
		logger.Int("samplesFailed", stats.SamplesFailed),
		logger.Int("awardsSubmitted", stats.AwardsSubmitted),
		logger.Int("awardsAcked", stats.AwardsApplied),
		logger.Int("squadsAssigned", stats.SquadsAssigned),
		logger.Int("statsRetrieved", stats.StatsRetrieved),
		logger.Int("squadsReported", stats.SquadsReported),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("samplesPerSecond", samplesPerSecond))
}
