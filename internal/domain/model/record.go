// Package model contains domain models passed between layers.
package model

// RibbonType describes the per-unit effect of a configured award.
type RibbonType struct {
	LoyaltyGain       int `json:"loyaltyGain"`
	SuperCreditPayout int `json:"superCreditPayout"`
}

// GlobalConfig is the server-wide configuration section of the ledger
// document. ribbonTypes is the only source of truth for legal award names.
type GlobalConfig struct {
	BattalionName string                `json:"battalionName"`
	CompanyName   string                `json:"companyName"`
	SquadNames    map[string]string     `json:"squadNames"`
	RibbonTypes   map[string]RibbonType `json:"ribbonTypes"`
}

// UserRecord is one member's ledger entry, keyed externally by an opaque
// gateway user id.
//
// TotalSamples is a running total as reported in game and never decreases.
// FreedomLevel and SuperCredits are derived accumulators. Debt and Titles
// are carried in the document but never mutated by the ledger engine.
// LastActive is unix milliseconds, updated on every gateway interaction.
type UserRecord struct {
	TotalSamples int            `json:"totalSamples"`
	FreedomLevel int            `json:"freedomLevel"`
	SuperCredits int            `json:"superCredits"`
	Debt         int            `json:"debt"`
	Loyalty      int            `json:"loyalty"`
	Titles       []string       `json:"titles"`
	LastActive   int64          `json:"lastActive"`
	Ribbons      map[string]int `json:"ribbons"`
	SquadID      *string        `json:"squadId,omitempty"`
}

// ServerData is the full persisted document: config plus all user records.
type ServerData struct {
	GlobalConfig GlobalConfig           `json:"globalConfig"`
	Users        map[string]*UserRecord `json:"users"`
}

// NewUserRecord returns a fresh record with the fixed defaults applied to
// every member on first lookup.
func NewUserRecord(now int64) *UserRecord {
	return &UserRecord{
		Loyalty:    100,
		Titles:     []string{},
		LastActive: now,
		Ribbons:    map[string]int{},
	}
}

// Clone returns a deep copy of the record.
func (u *UserRecord) Clone() *UserRecord {
	c := *u
	c.Titles = append([]string(nil), u.Titles...)
	c.Ribbons = make(map[string]int, len(u.Ribbons))
	for name, count := range u.Ribbons {
		c.Ribbons[name] = count
	}
	if u.SquadID != nil {
		id := *u.SquadID
		c.SquadID = &id
	}
	return &c
}

// Clone returns a deep copy of the config.
func (g GlobalConfig) Clone() GlobalConfig {
	c := g
	c.SquadNames = make(map[string]string, len(g.SquadNames))
	for id, name := range g.SquadNames {
		c.SquadNames[id] = name
	}
	c.RibbonTypes = make(map[string]RibbonType, len(g.RibbonTypes))
	for name, rt := range g.RibbonTypes {
		c.RibbonTypes[name] = rt
	}
	return c
}

// Clone returns a deep copy of the full document.
func (d *ServerData) Clone() *ServerData {
	c := &ServerData{
		GlobalConfig: d.GlobalConfig.Clone(),
		Users:        make(map[string]*UserRecord, len(d.Users)),
	}
	for id, u := range d.Users {
		c.Users[id] = u.Clone()
	}
	return c
}
