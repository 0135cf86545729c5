package model

// Announcement is a public broadcast produced by a ledger operation, e.g.
// "Helldiver X logged 40 new samples". Delivery is best-effort and happens
// off the request path; a failed or dropped announcement never fails the
// operation that produced it.
type Announcement struct {
	ID     string // originating interaction id, for tracing
	Kind   string // "samples", "award" or "squad"
	UserID string // subject member id
	Text   string // pre-composed broadcast text
}
