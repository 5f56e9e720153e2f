package backend

import (
	"math/rand"

	"github.com/aims/storefront/domain"
)

// OutcomeSource decides how simulated payments end.
type OutcomeSource interface {
	VerifyOutcome() domain.PaymentStatus
	CardOutcome() bool
}

type RandomOutcome struct{}

func (RandomOutcome) VerifyOutcome() domain.PaymentStatus {
	return verifyStatus(rand.Intn(100))
}

func (RandomOutcome) CardOutcome() bool {
	return cardApproved(rand.Intn(100))
}

// verifyStatus maps a roll in [0,100) to 30% SUCCESS, 30% FAILED and 40% PENDING.
func verifyStatus(roll int) domain.PaymentStatus {
	switch {
	case roll >= 70:
		return domain.PaymentStatusSuccess
	case roll >= 40:
		return domain.PaymentStatusFailed
	default:
		return domain.PaymentStatusPending
	}
}

// cardApproved approves 70% of rolls in [0,100).
func cardApproved(roll int) bool {
	return roll >= 30
}

// FixedOutcome always answers the same. Used for demos and tests.
type FixedOutcome struct {
	Verify domain.PaymentStatus
	Card   bool
}

func (f FixedOutcome) VerifyOutcome() domain.PaymentStatus { return f.Verify }
func (f FixedOutcome) CardOutcome() bool                    { return f.Card }
