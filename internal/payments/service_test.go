package payments

import (
	"context"
	"errors"
	"testing"

	"InfluencerOps/internal/domain"
)

type fakeStore struct {
	eligible    []domain.EligibleContract
	eligibleErr error
	pending     []domain.QueuedPayment
	queued      []string
	completed   []string
	paid        []string
	enqueueErr  error
	lastLimit   int
}

func (f *fakeStore) EligibleContracts(ctx context.Context) ([]domain.EligibleContract, error) {
	return f.eligible, f.eligibleErr
}

func (f *fakeStore) EnqueuePayment(ctx context.Context, c domain.EligibleContract) error {
	if f.enqueueErr != nil {
		return f.enqueueErr
	}
	f.queued = append(f.queued, c.ContractID)
	return nil
}

func (f *fakeStore) PendingPayments(ctx context.Context, limit int) ([]domain.QueuedPayment, error) {
	f.lastLimit = limit
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeStore) MarkPaymentCompleted(ctx context.Context, contractID string) error {
	f.completed = append(f.completed, contractID)
	return nil
}

func (f *fakeStore) MarkContractPaid(ctx context.Context, contractID string) error {
	f.paid = append(f.paid, contractID)
	return nil
}

type fakeGateway struct {
	ok      bool
	err     error
	charged []string
}

func (f *fakeGateway) Charge(ctx context.Context, contractID string, amount float64, currency string) (bool, error) {
	f.charged = append(f.charged, contractID)
	return f.ok, f.err
}

func TestScanContractsQueuesEligible(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		eligible: []domain.EligibleContract{
			{ContractID: "c1", Amount: 1000, Currency: "USD", PostsCompleted: 2, PostsRequired: 2},
			{ContractID: "c2", Amount: 2500, Currency: "EUR", PostsCompleted: 3, PostsRequired: 3},
		},
	}
	svc := NewService(store, &fakeGateway{ok: true}, nil, 0)

	res, err := svc.Run(context.Background(), ActionScan)
	if err != nil {
		t.Fatalf("Run(scan) error = %v", err)
	}
	if res.Scanned != 2 || res.Queued != 2 {
		t.Errorf("Result = %+v, want Scanned=2 Queued=2", res)
	}
	if len(store.queued) != 2 {
		t.Errorf("queued contracts = %v, want 2 entries", store.queued)
	}
}

func TestScanContractsContinuesPastEnqueueFailure(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		eligible:   []domain.EligibleContract{{ContractID: "c1"}},
		enqueueErr: errors.New("disk full"),
	}
	svc := NewService(store, &fakeGateway{ok: true}, nil, 0)

	res, err := svc.Run(context.Background(), ActionScan)
	if err != nil {
		t.Fatalf("Run(scan) error = %v", err)
	}
	if res.Queued != 0 {
		t.Errorf("Queued = %d, want 0", res.Queued)
	}
}

func TestProcessPaymentsChargesBatch(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		pending: []domain.QueuedPayment{
			{ContractID: "c1", Amount: 1000, Currency: "USD", Status: domain.QueuePending},
			{ContractID: "c2", Amount: 2500, Currency: "EUR", Status: domain.QueuePending},
		},
	}
	gw := &fakeGateway{ok: true}
	svc := NewService(store, gw, nil, 0)

	res, err := svc.Run(context.Background(), ActionProcess)
	if err != nil {
		t.Fatalf("Run(process) error = %v", err)
	}
	if res.Processed != 2 || res.Failed != 0 {
		t.Errorf("Result = %+v, want Processed=2 Failed=0", res)
	}
	if store.lastLimit != DefaultBatchSize {
		t.Errorf("batch limit = %d, want %d", store.lastLimit, DefaultBatchSize)
	}
	if len(store.completed) != 2 || len(store.paid) != 2 {
		t.Errorf("completed=%v paid=%v, want both to cover c1 and c2", store.completed, store.paid)
	}
}

func TestProcessPaymentsLeavesDeclinedPending(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		pending: []domain.QueuedPayment{{ContractID: "c1", Amount: 1000, Currency: "USD"}},
	}
	gw := &fakeGateway{ok: false}
	svc := NewService(store, gw, nil, 0)

	res, err := svc.Run(context.Background(), ActionProcess)
	if err != nil {
		t.Fatalf("Run(process) error = %v", err)
	}
	if res.Processed != 0 || res.Failed != 1 {
		t.Errorf("Result = %+v, want Processed=0 Failed=1", res)
	}
	if len(store.completed) != 0 || len(store.paid) != 0 {
		t.Errorf("declined charge must not touch queue or contract state")
	}
}

func TestProcessPaymentsGatewayError(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		pending: []domain.QueuedPayment{
			{ContractID: "c1", Amount: 1000, Currency: "USD"},
			{ContractID: "c2", Amount: 500, Currency: "USD"},
		},
	}
	gw := &fakeGateway{err: errors.New("gateway timeout")}
	svc := NewService(store, gw, nil, 0)

	res, err := svc.Run(context.Background(), ActionProcess)
	if err != nil {
		t.Fatalf("Run(process) error = %v", err)
	}
	if res.Failed != 2 {
		t.Errorf("Failed = %d, want 2", res.Failed)
	}
	if len(gw.charged) != 2 {
		t.Errorf("gateway error must not stop the batch, charged = %v", gw.charged)
	}
}

func TestRunEmptyActionScansThenProcesses(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		eligible: []domain.EligibleContract{{ContractID: "c1", Amount: 1000, Currency: "USD"}},
		pending:  []domain.QueuedPayment{{ContractID: "c1", Amount: 1000, Currency: "USD"}},
	}
	svc := NewService(store, &fakeGateway{ok: true}, nil, 0)

	res, err := svc.Run(context.Background(), "")
	if err != nil {
		t.Fatalf("Run(\"\") error = %v", err)
	}
	if res.Queued != 1 || res.Processed != 1 {
		t.Errorf("Result = %+v, want Queued=1 Processed=1", res)
	}
}

func TestRunRejectsUnknownAction(t *testing.T) {
	t.Parallel()

	svc := NewService(&fakeStore{}, &fakeGateway{}, nil, 0)
	_, err := svc.Run(context.Background(), Action("mystery"))
	if domain.KindOf(err) != domain.KindInput {
		t.Errorf("Run(mystery) error kind = %v, want KindInput", domain.KindOf(err))
	}
}
