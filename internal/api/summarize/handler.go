// Package summarize exposes the on-demand AI summary endpoint.
package summarize

import (
	"encoding/json"
	"net/http"

	"matchpulse/internal/domain/account"
	"matchpulse/internal/domain/match"
	"matchpulse/internal/services/summary"
	"matchpulse/pkg/errors"
	"matchpulse/pkg/logger"
)

// Handler serves POST /summarize requests, routing to the requested
// platform's summarizer
type Handler struct {
	services map[account.Platform]*summary.Service
	matches  match.Repository
	log      *logger.Logger
}

func NewHandler(services map[account.Platform]*summary.Service, matches match.Repository) *Handler {
	return &Handler{
		services: services,
		matches:  matches,
		log:      logger.Get().With("component", "summarize_api"),
	}
}

type summarizeRequest struct {
	MatchID  string `json:"matchId"`
	Platform string `json:"platform"`
}

// Handle validates, delegates to the summarizer and maps the error
// taxonomy onto status codes: limit hit is 429, upstream failure is 502
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body summarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.MatchID == "" {
		h.writeError(w, http.StatusBadRequest, "matchId is required")
		return
	}

	platform := account.Platform(body.Platform)
	service, ok := h.services[platform]
	if !ok {
		h.writeError(w, http.StatusBadRequest, "unknown platform")
		return
	}

	fixture, err := h.matches.GetByID(r.Context(), body.MatchID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "match not found")
			return
		}
		h.log.Errorf("Match lookup failed: %v", err)
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	result, err := service.Summarize(r.Context(), summary.Request{
		MatchID:         fixture.ID,
		Platform:        platform,
		HomeTeam:        fixture.HomeTeam,
		AwayTeam:        fixture.AwayTeam,
		KickoffISO:      fixture.KickoffISO,
		FinalWhistleISO: fixture.FinalWhistleISO,
		LiveDurationMin: fixture.LiveDurationMin,
	})
	if err != nil {
		switch {
		case errors.Is(err, errors.ErrRateLimitExceeded):
			h.writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
		case errors.Is(err, errors.ErrSummarizerUnavailable):
			h.writeError(w, http.StatusBadGateway, "summarizer unavailable")
		default:
			h.log.Errorf("Summarize failed: %v", err)
			h.writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(result)
}

func (h *Handler) writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
