package model

// DefaultServerData returns the compiled-in document the ledger starts from
// when no persisted file exists. Persisted values replace these key-by-key
// at the top level of each section on load.
func DefaultServerData() *ServerData {
	return &ServerData{
		GlobalConfig: GlobalConfig{
			BattalionName: "Leviathan Battalion",
			CompanyName:   "Aegis Company",
			SquadNames: map[string]string{
				"squad-1": "Creepers",
				"squad-2": "Havoc Pandas",
				"squad-3": "Diesel",
			},
			RibbonTypes: map[string]RibbonType{
				"Fleet Campaign":        {LoyaltyGain: 5, SuperCreditPayout: 5},
				"Super Fleet Campaign":  {LoyaltyGain: 15, SuperCreditPayout: 15},
				"Automaton":             {LoyaltyGain: 200, SuperCreditPayout: 200},
				"Illuminate":            {LoyaltyGain: 200, SuperCreditPayout: 200},
				"Terminid":              {LoyaltyGain: 200, SuperCreditPayout: 200},
				"Fleet Cross":           {LoyaltyGain: 20, SuperCreditPayout: 20},
				"Super Fleet Cross":     {LoyaltyGain: 50, SuperCreditPayout: 50},
				"Fleet Achievement":     {LoyaltyGain: 5, SuperCreditPayout: 5},
				"Fleet Commendation":    {LoyaltyGain: 5, SuperCreditPayout: 5},
				"Galactic Recruiter":    {LoyaltyGain: 3, SuperCreditPayout: 3},
				"Galactic Defense":      {LoyaltyGain: 5, SuperCreditPayout: 5},
				"Good Conduct":          {LoyaltyGain: 5, SuperCreditPayout: 5},
				"Recruit Command":       {LoyaltyGain: 5, SuperCreditPayout: 5},
				"Fleet Marksman":        {LoyaltyGain: 3, SuperCreditPayout: 3},
				"Fleet Sharpshooter":    {LoyaltyGain: 5, SuperCreditPayout: 5},
				"Fleet Expert Marksman": {LoyaltyGain: 10, SuperCreditPayout: 10},
				"Freedom Alliance":      {LoyaltyGain: 10, SuperCreditPayout: 10},
				"Medal of Honor":        {LoyaltyGain: 50, SuperCreditPayout: 50},
				"Super Earth Defense":   {LoyaltyGain: 15, SuperCreditPayout: 15},
			},
		},
		Users: map[string]*UserRecord{},
	}
}
