// Package api exposes the engine over HTTP for local tooling: discover a
// page, fill it, watch the session. The surface is intentionally small and
// bearer-token protected; it is a control plane, not a public API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/crypto/bcrypt"

	"github.com/hiremate/formfill"
	"github.com/hiremate/formfill/internal/fill"
	"github.com/hiremate/formfill/internal/scrape"
	"github.com/hiremate/formfill/kit"
)

// Service is what the API needs from the engine.
type Service interface {
	Discover(ctx context.Context, url string) (*formfill.Session, error)
	Fill(ctx context.Context, sessionID string, req formfill.FillRequest) (*fill.Result, error)
	Status(sessionID string) (fill.State, *fill.Result, error)
	Abort(sessionID string) error
	SkipCurrent(sessionID string) error
	CloseSession(sessionID string) error
}

// Config tunes the handler.
type Config struct {
	// TokenHash is the bcrypt hash of the bearer token. Empty disables
	// auth, for loopback-only development.
	TokenHash string

	Logger *slog.Logger
}

// Handler builds the HTTP router over the service.
func Handler(svc Service, cfg Config) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestContext)
	if cfg.TokenHash != "" {
		r.Use(bearerAuth(cfg.TokenHash, cfg.Logger))
	}

	h := &handlers{svc: svc, logger: cfg.Logger}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Route("/v1", func(r chi.Router) {
		r.Post("/discover", h.discover)
		r.Post("/fill", h.fill)
		r.Get("/session/{id}", h.status)
		r.Post("/session/{id}/abort", h.abort)
		r.Post("/session/{id}/skip", h.skip)
		r.Delete("/session/{id}", h.closeSession)
	})
	return r
}

// requestContext copies the chi request ID into the kit context so endpoint
// logs correlate across transports.
func requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := kit.WithTransport(r.Context(), "http")
		if id := middleware.GetReqID(ctx); id != "" {
			ctx = kit.WithRequestID(ctx, id)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerAuth verifies "Authorization: Bearer <token>" against the bcrypt
// hash of the expected token. The token itself is never stored.
func bearerAuth(tokenHash string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const prefix = "Bearer "
			auth := r.Header.Get("Authorization")
			if len(auth) <= len(prefix) || auth[:len(prefix)] != prefix {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			token := auth[len(prefix):]
			if err := bcrypt.CompareHashAndPassword([]byte(tokenHash), []byte(token)); err != nil {
				logger.Warn("api: rejected token", "remote", r.RemoteAddr)
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type handlers struct {
	svc    Service
	logger *slog.Logger
}

type discoverRequest struct {
	URL string `json:"url"`
}

func (h *handlers) discover(w http.ResponseWriter, r *http.Request) {
	var req discoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "url required")
		return
	}

	s, err := h.svc.Discover(r.Context(), req.URL)
	if err != nil {
		if errors.Is(err, scrape.ErrNoFields) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.logger.Error("api: discover failed", "url", req.URL, "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s)
}

type fillRequest struct {
	SessionID string `json:"session_id"`
	formfill.FillRequest
}

func (h *handlers) fill(w http.ResponseWriter, r *http.Request) {
	var req fillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id required")
		return
	}

	res, err := h.svc.Fill(kit.WithSessionID(r.Context(), req.SessionID), req.SessionID, req.FillRequest)
	if err != nil {
		switch {
		case errors.Is(err, formfill.ErrSessionNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, formfill.ErrNoValues):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			h.logger.Error("api: fill failed", "session", req.SessionID, "error", err)
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handlers) status(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	state, res, err := h.svc.Status(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"state": state.String(), "result": res})
}

func (h *handlers) abort(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Abort(chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *handlers) skip(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.SkipCurrent(chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *handlers) closeSession(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.CloseSession(chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
