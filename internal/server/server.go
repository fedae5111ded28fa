package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"InfluencerOps/internal/bot"
	"InfluencerOps/internal/contracts"
	"InfluencerOps/internal/domain"
	"InfluencerOps/internal/payments"
)

// UpdateHandler processes one Telegram webhook update.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, upd bot.Update)
}

// ContractProcessor runs one contract intake batch.
type ContractProcessor interface {
	Process(ctx context.Context, req contracts.BatchRequest) (contracts.BatchResult, error)
}

// PaymentRunner runs one payment workflow action.
type PaymentRunner interface {
	Run(ctx context.Context, action payments.Action) (payments.Result, error)
}

// Health reports which collaborators came up configured.
type Health struct {
	Telegram bool `json:"telegram"`
	OpenAI   bool `json:"openai"`
	Database bool `json:"database"`
}

// Server exposes the HTTP surface: the Telegram webhook, contract intake,
// payment triggers, and a health probe.
type Server struct {
	Router *chi.Mux
	Port   string
	logger *slog.Logger
	health Health
}

// New builds the router with its middleware chain and routes.
func New(port string, logger *slog.Logger, health Health, updates UpdateHandler, intake ContractProcessor, runner PaymentRunner) *Server {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))
	r.Use(middleware.Recoverer)

	s := &Server{Router: r, Port: port, logger: logger, health: health}

	r.Get("/health", s.handleHealth)
	r.Post("/webhook", s.handleWebhook(updates))
	r.Post("/contracts", s.handleContracts(intake))
	r.Post("/payments/run", s.handlePayments(runner))

	return s
}

// Start serves HTTP until the listener fails or ctx is cancelled, then
// drains in-flight requests before returning.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting server", slog.String("port", s.Port))

	srv := &http.Server{Addr: ":" + s.Port, Handler: s.Router}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		s.logger.Info("server stopped")
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services":  s.health,
	})
}

func (s *Server) handleWebhook(updates UpdateHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var upd bot.Update
		if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
			writeError(w, http.StatusBadRequest, "invalid update payload")
			return
		}

		// Telegram retries non-200 answers, so update handling never
		// surfaces errors here.
		updates.HandleUpdate(r.Context(), upd)
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (s *Server) handleContracts(intake ContractProcessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req contracts.BatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid batch payload")
			return
		}

		res, err := intake.Process(r.Context(), req)
		if err != nil {
			s.logger.Error("contract intake failed", "error", err)
			writeError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func (s *Server) handlePayments(runner PaymentRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Action string `json:"action"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid payment request")
			return
		}

		res, err := runner.Run(r.Context(), payments.Action(req.Action))
		if err != nil {
			s.logger.Error("payment run failed", "action", req.Action, "error", err)
			writeError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindInput:
		return http.StatusBadRequest
	case domain.KindTransient:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"status": "error", "message": msg})
}
