package billing

import (
	"context"
	"log/slog"

	"InfluencerOps/internal/ports"
)

// MockGateway stands in for a real payment provider. Every charge is
// logged and reported as successful.
type MockGateway struct {
	logger *slog.Logger
}

var _ ports.PaymentGateway = (*MockGateway)(nil)

// NewMockGateway wires the stand-in gateway.
func NewMockGateway(logger *slog.Logger) *MockGateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &MockGateway{logger: logger}
}

// Charge logs the attempted payment and reports success.
func (g *MockGateway) Charge(ctx context.Context, contractID string, amount float64, currency string) (bool, error) {
	g.logger.Info("processing payment",
		"contract_id", contractID,
		"amount", amount,
		"currency", currency,
	)
	return true, nil
}
