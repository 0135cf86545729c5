package drill

import "time"

// Config holds configuration for the ledger drill
type Config struct {
	BaseURL    string        // Base URL of the service
	NumMembers int           // Number of members to generate
	Rounds     int           // Sample observation rounds per member
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Output file for the generated plan
	LogFile    string        // Log file for drill output
	Verbose    bool          // Enable verbose logging
}

// MemberPlan is everything the drill does to one member.
type MemberPlan struct {
	MemberID string       `json:"member_id"`
	SquadID  string       `json:"squad_id"`
	Samples  []SampleCall `json:"samples"`
	Awards   []AwardCall  `json:"awards"`
}

// SampleCall is one scheduled sample observation. Totals within a plan
// are strictly increasing so every call should be accepted.
type SampleCall struct {
	InteractionID string `json:"interaction_id"`
	NewTotal      int    `json:"new_total"`
}

// AwardCall is one scheduled award grant with up to five slots.
type AwardCall struct {
	InteractionID string      `json:"interaction_id"`
	Slots         []AwardSlot `json:"awards"`
}

// AwardSlot is one (name, quantity) pair within an award grant.
type AwardSlot struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// mutationAck is the common shape of mutation responses.
type mutationAck struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// statsView mirrors GET /members/{id}.
type statsView struct {
	TargetID string `json:"target_id"`
	Created  bool   `json:"created"`
	Record   struct {
		TotalSamples int            `json:"totalSamples"`
		FreedomLevel int            `json:"freedomLevel"`
		SuperCredits int            `json:"superCredits"`
		Loyalty      int            `json:"loyalty"`
		Ribbons      map[string]int `json:"ribbons"`
		SquadID      *string        `json:"squadId"`
	} `json:"record"`
}

// memberEntry is one member inside a squad summary.
type memberEntry struct {
	ID           string `json:"id"`
	FreedomLevel int    `json:"freedom_level"`
}

// squadSummary is one squad block of the freedom index report.
type squadSummary struct {
	SquadID           string        `json:"squad_id"`
	Name              string        `json:"name"`
	TotalFreedom      int           `json:"total_freedom"`
	Members           []memberEntry `json:"members"`
	TopContributor    string        `json:"top_contributor"`
	BottomContributor string        `json:"bottom_contributor"`
}

// freedomIndexReport mirrors GET /freedom-index.
type freedomIndexReport struct {
	BattalionName           string         `json:"battalion_name"`
	CompanyName             string         `json:"company_name"`
	TotalServerFreedomLevel int            `json:"total_server_freedom_level"`
	ActiveHelldivers        int            `json:"active_helldivers"`
	Status                  string         `json:"status"`
	Squads                  []squadSummary `json:"squads"`
}

// Stats holds drill statistics
type Stats struct {
	MembersGenerated  int
	SamplesSubmitted  int
	SamplesApplied    int
	SamplesDuplicate  int
	SamplesFailed     int
	AwardsSubmitted   int
	AwardsApplied     int
	AwardsFailed      int
	SquadsAssigned    int
	SquadAssignFailed int
	StatsRetrieved    int
	SquadsReported    int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
