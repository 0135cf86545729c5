package drill

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/leviathan-hq/larry/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor  = 1000000
	collectorTierCount  = 6
	awardChanceDivisor  = 3
	maxAwardSlotsPerUse = 3
	maxAwardQuantity    = 3
)

// Constants for per-round sample delta ranges.
const (
	casualMin      = 1
	casualRange    = 19
	regularMin     = 20
	regularRange   = 80
	dedicatedMin   = 100
	dedicatedRange = 300
	eliteMin       = 400
	eliteRange     = 600
	lapsedMin      = 1
	lapsedRange    = 4
	wideMin        = 1
	wideRange      = 999
)

// Constants for collector tier cases.
const (
	caseCasualCollector    = 0
	caseRegularCollector   = 1
	caseDedicatedCollector = 2
	caseEliteCollector     = 3
	caseLapsedCollector    = 4
	caseWideRange          = 5
)

// squadPool is the set of squad ids the drill assigns members to. The
// last entry exercises the clear-assignment path.
var squadPool = []string{"squad-1", "squad-2", "squad-3", "unassigned"} //nolint:gochecknoglobals // fixed drill corpus

// awardPool is a subset of the compiled-in ribbon names, plus one name
// the ledger does not know to exercise the skip path.
var awardPool = []string{ //nolint:gochecknoglobals // fixed drill corpus
	"Fleet Campaign",
	"Super Fleet Campaign",
	"Fleet Cross",
	"Fleet Achievement",
	"Galactic Defense",
	"Good Conduct",
	"Fleet Marksman",
	"Freedom Alliance",
	"Medal of Honor",
	"Participation Trophy", // unknown on purpose
}

// getRandomInt returns a random int in [0, n) using crypto/rand.
func getRandomInt(n int64) int64 {
	v, _ := rand.Int(rand.Reader, big.NewInt(n))
	return v.Int64()
}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// generatePlans creates per-member drill plans with unique member IDs.
func generatePlans(ctx context.Context, config *Config, stats *Stats) ([]*MemberPlan, error) {
	logger.Get().Info(ctx, "generating member plans",
		logger.Int("numMembers", config.NumMembers),
		logger.Int("rounds", config.Rounds))

	plans := make([]*MemberPlan, config.NumMembers)

	// Pre-allocate member IDs to ensure uniqueness
	memberIDs := make([]string, config.NumMembers)
	for i := 0; i < config.NumMembers; i++ {
		memberIDs[i] = uuid.New().String()
	}

	// Generate plans concurrently
	type planResult struct {
		index int
		plan  *MemberPlan
		err   error
	}

	resultChan := make(chan planResult, config.NumMembers)

	// Use worker pool for plan generation
	workerCount := minInt(config.Workers, config.NumMembers)
	plansPerWorker := config.NumMembers / workerCount

	for worker := 0; worker < workerCount; worker++ {
		start := worker * plansPerWorker
		end := start + plansPerWorker
		if worker == workerCount-1 {
			end = config.NumMembers // Last worker gets remaining members
		}

		go func(start, end int) {
			for i := start; i < end; i++ {
				select {
				case <-ctx.Done():
					resultChan <- planResult{index: i, err: ctx.Err()}
					return
				default:
					plan := generateSinglePlan(memberIDs[i], config.Rounds)
					resultChan <- planResult{index: i, plan: plan, err: nil}
				}
			}
		}(start, end)
	}

	// Collect results
	for i := 0; i < config.NumMembers; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during plan generation: %w", ctx.Err())
		case result := <-resultChan:
			if result.err != nil {
				return nil, fmt.Errorf("failed to generate plan %d: %w", result.index, result.err)
			}
			plans[result.index] = result.plan
		}
	}

	stats.MembersGenerated = len(plans)
	logger.Get().Info(ctx, "generated member plans successfully", logger.Int("count", len(plans)))

	return plans, nil
}

// generateSinglePlan builds the full schedule for one member: a squad,
// strictly increasing sample totals, and occasional award grants.
func generateSinglePlan(memberID string, rounds int) *MemberPlan {
	plan := &MemberPlan{
		MemberID: memberID,
		SquadID:  squadPool[getRandomInt(int64(len(squadPool)))],
	}

	tier := getRandomInt(collectorTierCount)
	total := 0
	for r := 0; r < rounds; r++ {
		total += generateRoundDelta(tier)
		plan.Samples = append(plan.Samples, SampleCall{
			InteractionID: uuid.New().String(),
			NewTotal:      total,
		})
	}

	// Roughly one in three members gets an award grant
	if getRandomInt(awardChanceDivisor) == 0 {
		slots := make([]AwardSlot, 0, maxAwardSlotsPerUse)
		numSlots := 1 + getRandomInt(maxAwardSlotsPerUse)
		for s := int64(0); s < numSlots; s++ {
			slots = append(slots, AwardSlot{
				Name:     awardPool[getRandomInt(int64(len(awardPool)))],
				Quantity: int(1 + getRandomInt(maxAwardQuantity)),
			})
		}
		plan.Awards = append(plan.Awards, AwardCall{
			InteractionID: uuid.New().String(),
			Slots:         slots,
		})
	}

	return plan
}

// generateRoundDelta creates a per-round sample delta for a collector tier.
func generateRoundDelta(tier int64) int {
	switch tier {
	case caseCasualCollector:
		// Casual collectors (1 - 20) - most common
		return casualMin + int(getRandomFloat()*casualRange)
	case caseRegularCollector:
		// Regular collectors (20 - 100)
		return regularMin + int(getRandomFloat()*regularRange)
	case caseDedicatedCollector:
		// Dedicated collectors (100 - 400)
		return dedicatedMin + int(getRandomFloat()*dedicatedRange)
	case caseEliteCollector:
		// Elite collectors (400 - 1000) - rare
		return eliteMin + int(getRandomFloat()*eliteRange)
	case caseLapsedCollector:
		// Lapsed collectors (1 - 5) - rare
		return lapsedMin + int(getRandomFloat()*lapsedRange)
	case caseWideRange:
		// Random across full range (1 - 1000)
		return wideMin + int(getRandomFloat()*wideRange)
	default:
		return wideMin + int(getRandomFloat()*wideRange)
	}
}

// minInt returns the minimum of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
