package webserver

import (
	"net/http"
	"strings"

	"github.com/agusx1211/promptarena/internal/debug"
	"github.com/agusx1211/promptarena/internal/evaluator"
	"github.com/agusx1211/promptarena/internal/history"
	"github.com/agusx1211/promptarena/internal/ids"
)

type reviewRequest struct {
	Prompt  string `json:"prompt"`
	Context string `json:"context"`
}

type reviewResponse struct {
	ID     string           `json:"id"`
	Review evaluator.Review `json:"review"`
}

// handleReview critiques a free-form prompt and logs it to the playground
// history.
func (srv *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	rev := srv.engine.Evaluator.Review(r.Context(), req.Prompt, req.Context)
	now := srv.now()
	score := rev.QualityScore
	entry := history.Review{
		ID:      ids.Review(now),
		Prompt:  req.Prompt,
		Context: req.Context,
		Score:   &score,
		Date:    now.UTC(),
	}
	if srv.engine.History != nil {
		if _, err := srv.engine.History.AddReview(entry); err != nil {
			debug.LogKV("webserver", "review not saved", "error", err)
		}
	}
	writeJSON(w, http.StatusOK, reviewResponse{ID: entry.ID, Review: rev})
}

func (srv *Server) handleReviews(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", history.MaxReviews)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if srv.engine.History == nil {
		writeJSON(w, http.StatusOK, []history.Review{})
		return
	}
	writeJSON(w, http.StatusOK, history.ListReviews(srv.engine.History.Reviews(), limit))
}
