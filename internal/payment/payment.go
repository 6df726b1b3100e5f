// Package payment provides the simulated payment provider. There is no
// gateway integration anywhere in this system: the outcome of a charge is
// selected deterministically by the caller, which keeps the settlement state
// machine fully testable.
package payment

import (
	"context"
	"log/slog"
)

// Outcome is the caller-requested result of a simulated charge.
type Outcome string

const (
	OutcomeOK   Outcome = "ok"
	OutcomeFail Outcome = "fail"
)

// ChargeStatus is the provider-side result of a charge attempt.
type ChargeStatus string

const (
	StatusSucceeded ChargeStatus = "Succeeded"
	StatusFailed    ChargeStatus = "Failed"
)

// Result describes one settled charge attempt.
type Result struct {
	Status   ChargeStatus
	Provider string
	OrderID  string
	Amount   int64
}

// Charger is the payment port consumed by the order lifecycle engine.
type Charger interface {
	Charge(ctx context.Context, orderID string, amount int64, outcome Outcome) Result
}

// MockProvider maps the requested outcome straight to a charge status.
// Anything other than OutcomeOK fails.
type MockProvider struct{}

var _ Charger = MockProvider{}

func (MockProvider) Charge(ctx context.Context, orderID string, amount int64, outcome Outcome) Result {
	status := StatusFailed
	if outcome == OutcomeOK {
		status = StatusSucceeded
	}
	slog.InfoContext(ctx, "simulated charge", "order_id", orderID, "amount", amount, "status", string(status))
	return Result{
		Status:   status,
		Provider: "MockPay",
		OrderID:  orderID,
		Amount:   amount,
	}
}
