package drill

import (
	"fmt"
	"log"
)

// verifyResults cross-checks member stats and the freedom index report
// against the submitted plan.
func verifyResults(config *Config, plans []*MemberPlan, views []statsView, report *freedomIndexReport) error {
	log.Println("🔍 Verifying results...")

	if len(views) == 0 {
		return fmt.Errorf("no member stats to verify")
	}

	planByID := make(map[string]*MemberPlan, len(plans))
	for _, plan := range plans {
		planByID[plan.MemberID] = plan
	}

	if err := verifyMemberTotals(planByID, views, config.Verbose); err != nil {
		log.Printf("⚠️  Member total warning: %v", err)
	} else {
		log.Println("✅ Member totals verified")
	}

	if report != nil {
		if err := verifyReportConsistency(views, report); err != nil {
			log.Printf("⚠️  Freedom index consistency warning: %v", err)
		} else {
			log.Println("✅ Freedom index consistency verified")
		}
		displayTopSquads(report, config.Verbose)
	}

	log.Println("✅ Result verification completed")
	return nil
}

// verifyMemberTotals checks each member's stored total against the last
// scheduled observation.
func verifyMemberTotals(planByID map[string]*MemberPlan, views []statsView, verbose bool) error {
	mismatches := 0
	for _, view := range views {
		plan, ok := planByID[view.TargetID]
		if !ok || len(plan.Samples) == 0 {
			continue
		}
		want := plan.Samples[len(plan.Samples)-1].NewTotal
		if view.Record.TotalSamples != want {
			mismatches++
			if verbose {
				log.Printf("⚠️  Member %s has total %d, want %d",
					view.TargetID, view.Record.TotalSamples, want)
			}
		}
	}
	if mismatches > 0 {
		return fmt.Errorf("%d members have totals that do not match the plan", mismatches)
	}
	return nil
}

// verifyReportConsistency checks the freedom index report's internal math.
func verifyReportConsistency(views []statsView, report *freedomIndexReport) error {
	// Server total must equal the sum of squad totals
	squadSum := 0
	for _, squad := range report.Squads {
		squadSum += squad.TotalFreedom
	}
	if squadSum != report.TotalServerFreedomLevel {
		return fmt.Errorf("squad totals sum to %d but server total is %d",
			squadSum, report.TotalServerFreedomLevel)
	}

	// Each squad total must equal the sum of its members, and members
	// must be listed in descending freedom order
	for _, squad := range report.Squads {
		memberSum := 0
		for i, member := range squad.Members {
			memberSum += member.FreedomLevel
			if i > 0 && member.FreedomLevel > squad.Members[i-1].FreedomLevel {
				return fmt.Errorf("squad %s members are not sorted by freedom level", squad.SquadID)
			}
		}
		if memberSum != squad.TotalFreedom {
			return fmt.Errorf("squad %s members sum to %d but squad total is %d",
				squad.SquadID, memberSum, squad.TotalFreedom)
		}
		if len(squad.Members) > 0 {
			if squad.TopContributor != squad.Members[0].ID {
				return fmt.Errorf("squad %s top contributor is %s, want %s",
					squad.SquadID, squad.TopContributor, squad.Members[0].ID)
			}
			if squad.BottomContributor != squad.Members[len(squad.Members)-1].ID {
				return fmt.Errorf("squad %s bottom contributor is %s, want %s",
					squad.SquadID, squad.BottomContributor, squad.Members[len(squad.Members)-1].ID)
			}
		}
	}

	// Every retrieved member with progress must be counted as active
	active := 0
	for _, view := range views {
		if view.Record.TotalSamples > 0 || view.Record.FreedomLevel > 0 {
			active++
		}
	}
	if report.ActiveHelldivers < active {
		return fmt.Errorf("report counts %d active members but the drill saw %d with progress",
			report.ActiveHelldivers, active)
	}

	return nil
}

// displayTopSquads shows the squads from the freedom index report.
func displayTopSquads(report *freedomIndexReport, verbose bool) {
	log.Printf("🏆 %s / %s: %s", report.BattalionName, report.CompanyName, report.Status)
	for _, squad := range report.Squads {
		log.Printf("   %s (%s) - Freedom: %d, Members: %d",
			squad.Name, squad.SquadID, squad.TotalFreedom, len(squad.Members))
	}

	if verbose && len(report.Squads) > 0 {
		// Show some statistics
		maxSquad := report.Squads[0]
		for _, squad := range report.Squads[1:] {
			if squad.TotalFreedom > maxSquad.TotalFreedom {
				maxSquad = squad
			}
		}
		avg := float64(report.TotalServerFreedomLevel) / float64(len(report.Squads))

		log.Printf(`📊 Squad statistics:
   Leading: %s (%d)
   Average: %.1f
   Active members: %d
`, maxSquad.Name, maxSquad.TotalFreedom, avg, report.ActiveHelldivers)
	}
}
