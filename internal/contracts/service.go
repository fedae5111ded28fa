package contracts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"InfluencerOps/internal/domain"
	"InfluencerOps/internal/extract"
	"InfluencerOps/internal/ports"
)

// maxDocumentChars bounds how much contract text goes into one prompt.
const maxDocumentChars = 30000

// BatchRequest is one intake call: either a list of new documents or a
// single latest one.
type BatchRequest struct {
	NewFiles   []domain.FileRef `json:"new_files"`
	LatestFile *domain.FileRef  `json:"latest_file,omitempty"`
}

// files resolves the two accepted request shapes into one list.
func (r BatchRequest) files() []domain.FileRef {
	if len(r.NewFiles) > 0 {
		return r.NewFiles
	}
	if r.LatestFile != nil && r.LatestFile.Name != "" {
		return []domain.FileRef{*r.LatestFile}
	}
	return nil
}

// FileResult reports the outcome for a single document. Parsing and
// forwarding fail independently.
type FileResult struct {
	File       string                 `json:"file"`
	Parsed     *domain.ContractFields `json:"parsed,omitempty"`
	Error      string                 `json:"error,omitempty"`
	PostStatus int                    `json:"post_status,omitempty"`
	PostError  string                 `json:"post_error,omitempty"`
}

// BatchResult summarizes one intake run.
type BatchResult struct {
	Results   []FileResult `json:"results"`
	Processed int          `json:"processed"`
	Failed    int          `json:"failed"`
}

// Service turns contract documents into structured fields and optionally
// forwards them to a destination endpoint.
type Service struct {
	fetcher        ports.FileFetcher
	completer      ports.Completer
	store          ports.ContractStore
	destinationURL string
	client         *http.Client
	logger         *slog.Logger
	readText       func(path string) (string, error)
}

// NewService wires contract intake. store may be nil when parsed contracts
// should not be persisted; destinationURL may be empty to skip forwarding.
func NewService(fetcher ports.FileFetcher, completer ports.Completer, store ports.ContractStore,
	destinationURL string, client *http.Client, logger *slog.Logger) *Service {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		fetcher:        fetcher,
		completer:      completer,
		store:          store,
		destinationURL: destinationURL,
		client:         client,
		logger:         logger,
		readText:       extractText,
	}
}

// Process parses every document in the batch. One bad document never stops
// the others; its result carries the error instead.
func (s *Service) Process(ctx context.Context, req BatchRequest) (BatchResult, error) {
	files := req.files()
	if len(files) == 0 {
		return BatchResult{}, domain.E(domain.KindInput, "process contracts", errors.New("no files in request"))
	}

	res := BatchResult{Results: make([]FileResult, 0, len(files))}
	for _, ref := range files {
		fr := s.processOne(ctx, ref)
		if fr.Error == "" {
			res.Processed++
		} else {
			res.Failed++
		}
		res.Results = append(res.Results, fr)
	}

	s.logger.Info("contract batch done",
		"files", len(files),
		"processed", res.Processed,
		"failed", res.Failed,
	)
	return res, nil
}

func (s *Service) processOne(ctx context.Context, ref domain.FileRef) FileResult {
	fr := FileResult{File: ref.Name}

	fields, err := s.parse(ctx, ref)
	if err != nil {
		s.logger.Error("contract parse failed", "file", ref.Name, "error", err)
		fr.Error = err.Error()
		return fr
	}
	fr.Parsed = fields

	if s.store != nil {
		if err := s.store.SaveContract(ctx, *fields); err != nil {
			s.logger.Error("contract save failed", "file", ref.Name, "error", err)
			fr.Error = err.Error()
			return fr
		}
	}

	if s.destinationURL != "" {
		status, err := s.forward(ctx, *fields)
		fr.PostStatus = status
		if err != nil {
			s.logger.Error("contract forward failed", "file", ref.Name, "error", err)
			fr.PostError = err.Error()
		}
	}
	return fr
}

func (s *Service) parse(ctx context.Context, ref domain.FileRef) (*domain.ContractFields, error) {
	path, size, cleanup, err := s.fetcher.Fetch(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("fetch %q: %w", ref.Name, err)
	}
	defer cleanup()

	text, err := s.readText(path)
	if err != nil {
		return nil, domain.E(domain.KindParse, "read pdf", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.E(domain.KindInput, "read pdf", errors.New("document has no extractable text"))
	}
	if len(text) > maxDocumentChars {
		cut := maxDocumentChars
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}

	s.logger.Debug("contract text extracted", "file", ref.Name, "bytes", size, "chars", len(text))

	reply, err := s.completer.Complete(ctx, ports.CompletionRequest{
		System:      extractionSystemPrompt,
		Prompt:      buildContractPrompt(text),
		Temperature: 0,
		MaxTokens:   2000,
	})
	if err != nil {
		return nil, domain.E(domain.KindTransient, "extract contract fields", err)
	}

	var fields domain.ContractFields
	if err := extract.DecodeReply(reply, &fields); err != nil {
		return nil, domain.E(domain.KindParse, "decode contract fields", err)
	}
	return &fields, nil
}

// forward posts the parsed fields to the destination endpoint and returns
// the HTTP status it answered with.
func (s *Service) forward(ctx context.Context, fields domain.ContractFields) (int, error) {
	body, err := json.Marshal(fields)
	if err != nil {
		return 0, fmt.Errorf("encode contract: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.destinationURL, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build forward request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("forward contract: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("destination returned %s", resp.Status)
	}
	return resp.StatusCode, nil
}

// extractText pulls the plain text out of a PDF file.
func extractText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}
	return buf.String(), nil
}
