package ports

import (
	"context"
	"time"

	"InfluencerOps/internal/domain"
)

// CompletionRequest carries one blocking call to a text-generation service.
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Completer sends a single prompt to a text-generation service and returns
// the raw reply text. No retries; the caller decides whether to re-run.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// MetricsWarehouse is the append-only store for extracted metrics records.
type MetricsWarehouse interface {
	InsertMetrics(ctx context.Context, rec domain.MetricsRecord, collectedAt time.Time) error
	Summary(ctx context.Context) (domain.MetricsSummary, error)
	RecentMetrics(ctx context.Context, subjectID string, daysBack int) ([]domain.StoredMetrics, error)
}

// ContractStore persists parsed contract fields for the payment scanner.
type ContractStore interface {
	SaveContract(ctx context.Context, fields domain.ContractFields) error
}

// PaymentStore exposes the warehouse tables the payment workflow reads and updates.
type PaymentStore interface {
	EligibleContracts(ctx context.Context) ([]domain.EligibleContract, error)
	EnqueuePayment(ctx context.Context, c domain.EligibleContract) error
	PendingPayments(ctx context.Context, limit int) ([]domain.QueuedPayment, error)
	MarkPaymentCompleted(ctx context.Context, contractID string) error
	MarkContractPaid(ctx context.Context, contractID string) error
}

// Messenger delivers chat messages. Delivery failures are logged by callers
// and never unwind the pipeline.
type Messenger interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// FileFetcher materializes a referenced document as a local file. The
// returned cleanup must be called on every exit path.
type FileFetcher interface {
	Fetch(ctx context.Context, ref domain.FileRef) (path string, size int64, cleanup func(), err error)
}

// PaymentGateway charges a contract. Single attempt per call.
type PaymentGateway interface {
	Charge(ctx context.Context, contractID string, amount float64, currency string) (bool, error)
}

// Scheduler controls when recurring jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
