package payments

import (
	"context"
	"fmt"
	"log/slog"

	"InfluencerOps/internal/domain"
	"InfluencerOps/internal/ports"
)

// Action selects which half of the payment workflow to run.
type Action string

const (
	ActionScan    Action = "scan_contracts"
	ActionProcess Action = "process_payments"
)

// DefaultBatchSize caps how many queued payments one processing run charges.
const DefaultBatchSize = 5

// Result summarizes one workflow run.
type Result struct {
	Action    Action `json:"action"`
	Scanned   int    `json:"scanned,omitempty"`
	Queued    int    `json:"queued,omitempty"`
	Processed int    `json:"processed,omitempty"`
	Failed    int    `json:"failed,omitempty"`
}

// Service runs the contract payment workflow: scanning finished contracts
// into the queue and charging queued payments.
type Service struct {
	store     ports.PaymentStore
	gateway   ports.PaymentGateway
	logger    *slog.Logger
	batchSize int
}

// NewService wires the payment workflow. batchSize <= 0 falls back to
// DefaultBatchSize.
func NewService(store ports.PaymentStore, gateway ports.PaymentGateway, logger *slog.Logger, batchSize int) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Service{store: store, gateway: gateway, logger: logger, batchSize: batchSize}
}

// Run dispatches on action. An empty action runs the scan followed by
// processing; unknown actions are an input error.
func (s *Service) Run(ctx context.Context, action Action) (Result, error) {
	switch action {
	case ActionScan:
		return s.ScanContracts(ctx)
	case ActionProcess:
		return s.ProcessPayments(ctx)
	case "":
		scanned, err := s.ScanContracts(ctx)
		if err != nil {
			return Result{}, err
		}
		processed, err := s.ProcessPayments(ctx)
		if err != nil {
			return Result{}, err
		}
		processed.Scanned = scanned.Scanned
		processed.Queued = scanned.Queued
		return processed, nil
	default:
		return Result{}, domain.E(domain.KindInput, "run payment workflow",
			fmt.Errorf("unknown action %q", action))
	}
}

// ScanContracts queues every contract whose deliverables are complete and
// whose payment window has elapsed.
func (s *Service) ScanContracts(ctx context.Context) (Result, error) {
	eligible, err := s.store.EligibleContracts(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("scan contracts: %w", err)
	}

	res := Result{Action: ActionScan, Scanned: len(eligible)}
	for _, c := range eligible {
		if err := s.store.EnqueuePayment(ctx, c); err != nil {
			s.logger.Error("enqueue payment failed", "contract_id", c.ContractID, "error", err)
			continue
		}
		s.logger.Info("payment queued",
			"contract_id", c.ContractID,
			"amount", c.Amount,
			"currency", c.Currency,
			"posts_completed", c.PostsCompleted,
			"posts_required", c.PostsRequired,
		)
		res.Queued++
	}
	return res, nil
}

// ProcessPayments charges up to one batch of pending queue entries. A
// successful charge completes the queue entry and marks the contract paid;
// a declined or failed charge leaves the entry pending for the next run.
func (s *Service) ProcessPayments(ctx context.Context) (Result, error) {
	pending, err := s.store.PendingPayments(ctx, s.batchSize)
	if err != nil {
		return Result{}, fmt.Errorf("process payments: %w", err)
	}

	res := Result{Action: ActionProcess}
	for _, p := range pending {
		ok, err := s.gateway.Charge(ctx, p.ContractID, p.Amount, p.Currency)
		if err != nil {
			s.logger.Error("charge failed", "contract_id", p.ContractID, "error", err)
			res.Failed++
			continue
		}
		if !ok {
			s.logger.Warn("charge declined", "contract_id", p.ContractID)
			res.Failed++
			continue
		}

		if err := s.store.MarkPaymentCompleted(ctx, p.ContractID); err != nil {
			s.logger.Error("mark payment completed failed", "contract_id", p.ContractID, "error", err)
			res.Failed++
			continue
		}
		if err := s.store.MarkContractPaid(ctx, p.ContractID); err != nil {
			s.logger.Error("mark contract paid failed", "contract_id", p.ContractID, "error", err)
			res.Failed++
			continue
		}

		s.logger.Info("payment processed", "contract_id", p.ContractID, "amount", p.Amount)
		res.Processed++
	}
	return res, nil
}
