package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"lfsrcrack/internal/auth"
	"lfsrcrack/internal/models"
	"lfsrcrack/internal/search"
)

type ProgressResponse struct {
	Checked   uint64  `json:"checked"`
	Total     float64 `json:"total"`
	Percent   float64 `json:"percent"`
	Elapsed   string  `json:"elapsed"`
	Remaining string  `json:"remaining,omitempty"`
	Done      bool    `json:"done"`
	Workers   int     `json:"workers"`
}

// GET /v1/progress
func Progress(mon *search.Monitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := mon.Progress()
		resp := ProgressResponse{
			Checked: p.Checked,
			Total:   p.Total,
			Percent: p.Percent,
			Elapsed: p.Elapsed.String(),
			Done:    p.Done,
			Workers: p.Workers,
		}
		if p.RemainingKnown {
			resp.Remaining = p.Remaining.String()
		}
		respondJSON(w, resp)
	}
}

type HitResponse struct {
	Taps      string `json:"taps"`
	Plaintext string `json:"plaintext"`
	Worker    int    `json:"worker"`
}

// GET /v1/hits
func Hits(hits *search.Collector, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all := hits.Hits()
		out := make([]HitResponse, 0, len(all))
		for _, h := range all {
			out = append(out, HitResponse{Taps: h.TapsHex(), Plaintext: h.Plaintext, Worker: h.Worker})
		}
		if sub := auth.Subject(r.Context()); sub != "" {
			lg.Infow("hits read", "subject", sub, "count", len(out))
		}
		respondJSON(w, map[string]any{"data": out, "count": len(out)})
	}
}

// RunReader is the part of the store the API reads.
type RunReader interface {
	GetRun(ctx context.Context, id string) (*models.Run, error)
}

// GET /v1/runs/{id}
func GetRun(runs RunReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, err := runs.GetRun(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, "run not found")
			return
		}
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, run)
	}
}
