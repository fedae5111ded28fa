package contracts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"InfluencerOps/internal/domain"
	"InfluencerOps/internal/ports"
)

const contractReply = `{
	"agency_name": "Bright Reach Agency",
	"client_name": "Acme Cosmetics",
	"contract_date": "2024-03-15",
	"total_fee": 5000,
	"currency": "USD",
	"promoted_service_product": "Spring skincare line",
	"platforms": ["Instagram"],
	"platform_1": "Instagram",
	"platform_1_number": 3,
	"schedule": [
		{"platform": "Instagram", "date": "2024-04-01", "content_theme": "launch"},
		{"platform": "Instagram", "date": "2024-04-15", "content_theme": "tutorial"}
	],
	"post_duration": 30,
	"payment_deadline": "30 days after final post"
}`

type fakeFetcher struct {
	err       error
	cleanedUp int
}

func (f *fakeFetcher) Fetch(ctx context.Context, ref domain.FileRef) (string, int64, func(), error) {
	if f.err != nil {
		return "", 0, nil, f.err
	}
	return "/tmp/" + ref.Name, 1024, func() { f.cleanedUp++ }, nil
}

type fakeCompleter struct {
	reply string
	err   error
	last  ports.CompletionRequest
}

func (f *fakeCompleter) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	f.last = req
	return f.reply, f.err
}

type fakeContractStore struct {
	saved []domain.ContractFields
	err   error
}

func (f *fakeContractStore) SaveContract(ctx context.Context, fields domain.ContractFields) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, fields)
	return nil
}

func newTestService(fetcher *fakeFetcher, completer *fakeCompleter, store *fakeContractStore, dest string) *Service {
	var cs ports.ContractStore
	if store != nil {
		cs = store
	}
	svc := NewService(fetcher, completer, cs, dest, nil, nil)
	svc.readText = func(path string) (string, error) {
		return "INFLUENCER MARKETING AGREEMENT between Bright Reach Agency and Acme Cosmetics...", nil
	}
	return svc
}

func TestProcessParsesAndStores(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{}
	completer := &fakeCompleter{reply: contractReply}
	store := &fakeContractStore{}
	svc := newTestService(fetcher, completer, store, "")

	res, err := svc.Process(context.Background(), BatchRequest{
		NewFiles: []domain.FileRef{{Name: "acme.pdf", URL: "https://drive.google.com/file/d/abc/view"}},
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if res.Processed != 1 || res.Failed != 0 {
		t.Fatalf("Result = %+v, want Processed=1", res)
	}

	fr := res.Results[0]
	if fr.Parsed == nil {
		t.Fatal("Parsed is nil")
	}
	if fr.Parsed.AgencyName != "Bright Reach Agency" {
		t.Errorf("AgencyName = %q", fr.Parsed.AgencyName)
	}
	if fr.Parsed.TotalFee == nil || *fr.Parsed.TotalFee != 5000 {
		t.Errorf("TotalFee = %v, want 5000", fr.Parsed.TotalFee)
	}
	if len(fr.Parsed.Schedule) != 2 {
		t.Errorf("Schedule has %d items, want 2", len(fr.Parsed.Schedule))
	}
	if len(store.saved) != 1 {
		t.Errorf("SaveContract called %d times, want 1", len(store.saved))
	}
	if fetcher.cleanedUp != 1 {
		t.Errorf("cleanup called %d times, want 1", fetcher.cleanedUp)
	}
	if !strings.Contains(completer.last.Prompt, "INFLUENCER MARKETING AGREEMENT") {
		t.Errorf("prompt does not carry document text")
	}
}

func TestProcessPartialFailure(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{}
	calls := 0
	completer := &fakeCompleter{reply: contractReply}
	svc := newTestService(fetcher, completer, nil, "")
	svc.readText = func(path string) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("damaged xref table")
		}
		return "AGREEMENT text", nil
	}

	res, err := svc.Process(context.Background(), BatchRequest{
		NewFiles: []domain.FileRef{{Name: "broken.pdf", URL: "u1"}, {Name: "good.pdf", URL: "u2"}},
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if res.Processed != 1 || res.Failed != 1 {
		t.Fatalf("Result = %+v, want one success and one failure", res)
	}
	if res.Results[0].Error == "" {
		t.Errorf("first result should carry the parse error")
	}
	if res.Results[1].Parsed == nil {
		t.Errorf("second result should be parsed despite the first failing")
	}
}

func TestProcessForwardsToDestination(t *testing.T) {
	t.Parallel()

	var received domain.ContractFields
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode forwarded body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	svc := newTestService(&fakeFetcher{}, &fakeCompleter{reply: contractReply}, nil, srv.URL)

	res, err := svc.Process(context.Background(), BatchRequest{
		NewFiles: []domain.FileRef{{Name: "acme.pdf", URL: "u"}},
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	fr := res.Results[0]
	if fr.PostStatus != http.StatusCreated {
		t.Errorf("PostStatus = %d, want 201", fr.PostStatus)
	}
	if fr.PostError != "" {
		t.Errorf("PostError = %q, want empty", fr.PostError)
	}
	if received.ClientName != "Acme Cosmetics" {
		t.Errorf("forwarded ClientName = %q", received.ClientName)
	}
}

func TestProcessForwardFailureDoesNotFailParse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	svc := newTestService(&fakeFetcher{}, &fakeCompleter{reply: contractReply}, nil, srv.URL)

	res, err := svc.Process(context.Background(), BatchRequest{
		NewFiles: []domain.FileRef{{Name: "acme.pdf", URL: "u"}},
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	fr := res.Results[0]
	if fr.Error != "" {
		t.Errorf("parse marked failed by forward error: %q", fr.Error)
	}
	if fr.PostStatus != http.StatusBadGateway || fr.PostError == "" {
		t.Errorf("PostStatus = %d, PostError = %q", fr.PostStatus, fr.PostError)
	}
	if res.Processed != 1 {
		t.Errorf("Processed = %d, want 1", res.Processed)
	}
}

func TestProcessAcceptsLatestFileShape(t *testing.T) {
	t.Parallel()

	svc := newTestService(&fakeFetcher{}, &fakeCompleter{reply: contractReply}, nil, "")

	res, err := svc.Process(context.Background(), BatchRequest{
		LatestFile: &domain.FileRef{Name: "latest.pdf", URL: "u"},
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if res.Processed != 1 || res.Results[0].File != "latest.pdf" {
		t.Errorf("Result = %+v, want latest.pdf processed", res)
	}
}

func TestProcessTruncatesLongTextOnRuneBoundary(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{reply: contractReply}
	svc := newTestService(&fakeFetcher{}, completer, nil, "")
	// A two-byte rune straddles the truncation point.
	svc.readText = func(path string) (string, error) {
		return strings.Repeat("a", maxDocumentChars-1) + "é" + strings.Repeat("b", 100), nil
	}

	res, err := svc.Process(context.Background(), BatchRequest{
		NewFiles: []domain.FileRef{{Name: "long.pdf", URL: "u"}},
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if res.Processed != 1 {
		t.Fatalf("Result = %+v, want one processed file", res)
	}
	if !utf8.ValidString(completer.last.Prompt) {
		t.Errorf("prompt contains a split rune after truncation")
	}
	if strings.Contains(completer.last.Prompt, "bbb") {
		t.Errorf("document text was not truncated")
	}
}

func TestProcessRejectsEmptyDocumentText(t *testing.T) {
	t.Parallel()

	svc := newTestService(&fakeFetcher{}, &fakeCompleter{reply: contractReply}, nil, "")
	svc.readText = func(path string) (string, error) { return "   \n", nil }

	res, err := svc.Process(context.Background(), BatchRequest{
		NewFiles: []domain.FileRef{{Name: "scan.pdf", URL: "u"}},
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if res.Failed != 1 || !strings.Contains(res.Results[0].Error, "no extractable text") {
		t.Errorf("Result = %+v, want empty-text failure", res.Results[0])
	}
}

func TestProcessRejectsEmptyBatch(t *testing.T) {
	t.Parallel()

	svc := newTestService(&fakeFetcher{}, &fakeCompleter{}, nil, "")
	_, err := svc.Process(context.Background(), BatchRequest{})
	if domain.KindOf(err) != domain.KindInput {
		t.Errorf("Process(empty) error kind = %v, want KindInput", domain.KindOf(err))
	}
}

func TestProcessFetchFailure(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{err: errors.New("file is an HTML page")}
	svc := newTestService(fetcher, &fakeCompleter{}, nil, "")

	res, err := svc.Process(context.Background(), BatchRequest{
		NewFiles: []domain.FileRef{{Name: "acme.pdf", URL: "u"}},
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if res.Failed != 1 || !strings.Contains(res.Results[0].Error, "HTML page") {
		t.Errorf("Result = %+v, want fetch failure surfaced", res.Results[0])
	}
}
