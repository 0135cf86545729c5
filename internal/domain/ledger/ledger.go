// Package ledger implements the pure mutation rules for member records:
// cumulative sample observations and award grants. Functions here mutate
// the record they are given and return a structured outcome; persistence
// is the caller's responsibility.
package ledger

import (
	"github.com/leviathan-hq/larry/internal/domain/model"
)

// Engine limits and rates.
const (
	// MaxAwardSlots is the fixed number of award slots a single grant
	// request may carry. The gateway's form exposes exactly this many.
	MaxAwardSlots = 5

	// LoyaltyCap is the upper bound on loyalty after any award. There is
	// no enforced floor.
	LoyaltyCap = 100

	// superCreditRate is the credit payout per sample delta, floored.
	superCreditRate = 0.1
)

// Skip reasons reported for award slots that could not be applied.
const (
	SkipUnknownAward    = "unknown award"
	SkipInvalidQuantity = "invalid quantity"
)

// Gain is the outcome of a successful sample observation.
type Gain struct {
	Delta         int `json:"delta"`          // samples added this session
	CreditsGained int `json:"credits_gained"` // floor(delta * 0.1)
	TotalSamples  int `json:"total_samples"`  // resulting running total
	FreedomLevel  int `json:"freedom_level"`  // resulting freedom level
	SuperCredits  int `json:"super_credits"`  // resulting credit balance
}

// ApplySampleObservation applies a new cumulative sample total to user.
// The in-game source value is always a running total, never a delta, so a
// value at or below the stored total is treated as operator error and the
// record is left unchanged.
func ApplySampleObservation(user *model.UserRecord, newTotal int) (Gain, error) {
	if newTotal < 0 {
		return Gain{}, ErrNotANumber
	}
	delta := newTotal - user.TotalSamples
	if delta <= 0 {
		return Gain{}, ErrNotAnIncrease
	}

	user.TotalSamples = newTotal
	user.FreedomLevel += delta
	credits := int(float64(delta) * superCreditRate)
	user.SuperCredits += credits

	return Gain{
		Delta:         delta,
		CreditsGained: credits,
		TotalSamples:  user.TotalSamples,
		FreedomLevel:  user.FreedomLevel,
		SuperCredits:  user.SuperCredits,
	}, nil
}

// AwardSlot is one (name, quantity) pair from a grant request. An empty
// name marks the slot unused. A quantity absent from the request defaults
// to 1 at the API boundary before the slot reaches the engine; an explicit
// zero is an invalid quantity.
type AwardSlot struct {
	Name     string
	Quantity int
}

// SlotOutcome reports what happened to a single award slot.
type SlotOutcome struct {
	Slot     int    `json:"slot"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Applied  bool   `json:"applied"`
	Reason   string `json:"reason,omitempty"`

	// Resulting totals after an applied slot, for message composition.
	RibbonCount  int `json:"ribbon_count,omitempty"`
	Loyalty      int `json:"loyalty,omitempty"`
	SuperCredits int `json:"super_credits,omitempty"`
}

// ApplyAward grants quantity units of the named award to user. Unknown
// names and non-positive quantities are reported as skipped and leave the
// record unchanged; they are never silently dropped.
func ApplyAward(user *model.UserRecord, name string, quantity int, ribbonTypes map[string]model.RibbonType) SlotOutcome {
	out := SlotOutcome{Name: name, Quantity: quantity}

	if quantity <= 0 {
		out.Reason = SkipInvalidQuantity
		return out
	}
	rt, ok := ribbonTypes[name]
	if !ok {
		out.Reason = SkipUnknownAward
		return out
	}

	user.Ribbons[name] += quantity
	user.Loyalty += rt.LoyaltyGain * quantity
	if user.Loyalty > LoyaltyCap {
		user.Loyalty = LoyaltyCap
	}
	user.SuperCredits += rt.SuperCreditPayout * quantity

	out.Applied = true
	out.RibbonCount = user.Ribbons[name]
	out.Loyalty = user.Loyalty
	out.SuperCredits = user.SuperCredits
	return out
}

// ApplyAwardBatch processes up to MaxAwardSlots independent slots against
// user. One slot's rejection does not stop the others. Unused slots
// (empty name) produce no outcome. The caller persists once after the
// whole batch.
func ApplyAwardBatch(user *model.UserRecord, slots []AwardSlot, ribbonTypes map[string]model.RibbonType) []SlotOutcome {
	if len(slots) > MaxAwardSlots {
		slots = slots[:MaxAwardSlots]
	}

	outcomes := make([]SlotOutcome, 0, len(slots))
	for i, slot := range slots {
		if slot.Name == "" {
			continue
		}
		out := ApplyAward(user, slot.Name, slot.Quantity, ribbonTypes)
		out.Slot = i + 1
		outcomes = append(outcomes, out)
	}
	return outcomes
}
