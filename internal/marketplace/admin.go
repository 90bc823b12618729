package marketplace

import (
	"fmt"

	"go.uber.org/zap"
)

// platformKey guards the owner-only operations that are not tied to a listing.
const platformKey = "platform"

// UpdatePlatformFee sets the platform fee, capped at 10%.
func (e *Engine) UpdatePlatformFee(caller string, feeBps uint64) error {
	if caller != e.owner {
		return ErrNotAuthorized
	}

	if feeBps > maxFeeBasisPoints {
		return ErrInvalidPercentage
	}

	e.mu.Lock()
	e.feeBps = feeBps
	e.mu.Unlock()

	zap.L().With(zap.Uint64("feeBps", feeBps)).Info("Engine: Platform fee updated")

	return nil
}

// EmergencyWithdraw sweeps the engine's held balance to the owner. Escape hatch
// for funds stranded by a failed disbursement; not part of the normal flow.
func (e *Engine) EmergencyWithdraw(caller string) (uint64, error) {
	if caller != e.owner {
		return 0, ErrNotAuthorized
	}

	if e.guard.Held(platformKey) {
		return 0, ErrReentrantCall
	}

	e.locks.Lock(platformKey)
	defer e.locks.Unlock(platformKey)

	e.mu.Lock()
	amount := e.escrow
	e.escrow = 0
	e.mu.Unlock()

	if amount == 0 {
		return 0, nil
	}

	e.persistEscrow(0)

	e.guard.Enter(platformKey)
	defer e.guard.Exit(platformKey)

	if err := e.payments.Transfer(e.owner, amount); err != nil {
		e.addEscrow(amount)
		return 0, fmt.Errorf("%w: %s", ErrPlatformPaymentFailed, err)
	}

	zap.L().With(zap.Uint64("amount", amount)).Warn("Engine: Emergency withdraw")

	return amount, nil
}
