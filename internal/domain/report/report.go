// Package report computes the freedom-index aggregation over the full
// ledger. It only reads: callers hand it a snapshot and render the result.
package report

import (
	"sort"

	"github.com/leviathan-hq/larry/internal/domain/model"
)

// UnassignedSquadID is the synthetic bucket for members without a
// recognized squad assignment.
const UnassignedSquadID = "unassigned"

// Status ladder thresholds, highest first. The deployed bot shipped two
// revisions of this ladder; the five-tier one is kept here.
const (
	thrivingThreshold  = 50000
	robustThreshold    = 10000
	defendersThreshold = 1000
	seedsThreshold     = 500
)

// Member is one active member's standing inside a squad bucket.
type Member struct {
	ID           string `json:"id"`
	FreedomLevel int    `json:"freedom_level"`
}

// SquadSummary aggregates the active members of one squad. Members are
// ordered by freedom level descending; TopContributor and
// BottomContributor are member ids, empty when the squad has no active
// members (the gateway renders that as "N/A").
type SquadSummary struct {
	SquadID           string   `json:"squad_id"`
	Name              string   `json:"name"`
	TotalFreedom      int      `json:"total_freedom"`
	Members           []Member `json:"members"`
	TopContributor    string   `json:"top_contributor"`
	BottomContributor string   `json:"bottom_contributor"`
}

// Report is the pure-data freedom index. Resolving member ids to display
// names and rendering to text are the gateway's concerns.
type Report struct {
	BattalionName           string         `json:"battalion_name"`
	CompanyName             string         `json:"company_name"`
	TotalServerFreedomLevel int            `json:"total_server_freedom_level"`
	ActiveHelldivers        int            `json:"active_helldivers"`
	Status                  string         `json:"status"`
	Squads                  []SquadSummary `json:"squads"`
}

// active reports whether a member counts toward any total. Members who
// have never logged samples and hold no freedom level are excluded from
// the report entirely, even when assigned to a squad.
func active(u *model.UserRecord) bool {
	return u.TotalSamples > 0 || u.FreedomLevel > 0
}

// ComputeFreedomIndex rolls the full ledger snapshot into server-wide and
// per-squad totals. Every configured squad id receives a summary (sorted
// by id), followed by the synthetic unassigned bucket for members whose
// squad id is absent or not configured.
func ComputeFreedomIndex(data *model.ServerData) Report {
	rep := Report{
		BattalionName: data.GlobalConfig.BattalionName,
		CompanyName:   data.GlobalConfig.CompanyName,
	}

	squadIDs := make([]string, 0, len(data.GlobalConfig.SquadNames))
	for id := range data.GlobalConfig.SquadNames {
		squadIDs = append(squadIDs, id)
	}
	sort.Strings(squadIDs)

	buckets := make(map[string][]Member, len(squadIDs)+1)
	totals := make(map[string]int, len(squadIDs)+1)

	for id, u := range data.Users {
		if !active(u) {
			continue
		}
		rep.TotalServerFreedomLevel += u.FreedomLevel
		rep.ActiveHelldivers++

		bucket := UnassignedSquadID
		if u.SquadID != nil {
			if _, ok := data.GlobalConfig.SquadNames[*u.SquadID]; ok {
				bucket = *u.SquadID
			}
		}
		buckets[bucket] = append(buckets[bucket], Member{ID: id, FreedomLevel: u.FreedomLevel})
		totals[bucket] += u.FreedomLevel
	}

	for _, id := range append(squadIDs, UnassignedSquadID) {
		name := data.GlobalConfig.SquadNames[id]
		if id == UnassignedSquadID {
			name = "Unassigned"
		}
		rep.Squads = append(rep.Squads, summarize(id, name, buckets[id], totals[id]))
	}

	rep.Status = statusMessage(rep.TotalServerFreedomLevel)
	return rep
}

// summarize orders a bucket's members and picks contributors. A squad
// with exactly one member reports that member as both top and bottom.
func summarize(id, name string, members []Member, total int) SquadSummary {
	if members == nil {
		members = []Member{}
	}
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].FreedomLevel > members[j].FreedomLevel
	})

	s := SquadSummary{
		SquadID:      id,
		Name:         name,
		TotalFreedom: total,
		Members:      members,
	}
	if len(members) > 0 {
		s.TopContributor = members[0].ID
		s.BottomContributor = members[len(members)-1].ID
	}
	return s
}

// statusMessage thresholds the server total against the fixed ladder.
func statusMessage(total int) string {
	switch {
	case total >= thrivingThreshold:
		return "SUPER EARTH THRIVES! Managed Democracy is flourishing! Glory!"
	case total >= robustThreshold:
		return "Democracy is robust, but eternal vigilance is the price of liberty!"
	case total >= defendersThreshold:
		return "Democracy needs more defenders! Log more samples!"
	case total >= seedsThreshold:
		return "The seeds of liberty are sown, but much work remains."
	default:
		return "The server is yet to experience true Managed Democracy. Spread liberty!"
	}
}
