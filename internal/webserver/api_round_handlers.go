package webserver

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/agusx1211/promptarena/internal/battle"
	"github.com/agusx1211/promptarena/internal/catalog"
	"github.com/agusx1211/promptarena/internal/debug"
	"github.com/agusx1211/promptarena/internal/evaluator"
	"github.com/agusx1211/promptarena/internal/progression"
	"github.com/agusx1211/promptarena/internal/prompt"
)

// statusForError maps engine errors onto HTTP statuses.
func statusForError(err error) int {
	var verr *prompt.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, battle.ErrNoRound):
		return http.StatusNotFound
	case errors.Is(err, battle.ErrNotCrafting),
		errors.Is(err, battle.ErrPowerUpUsed),
		errors.Is(err, battle.ErrCancelled),
		errors.Is(err, progression.ErrNoPowerUp):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func (srv *Server) limits() prompt.Limits {
	if srv.engine.Limits.Min <= 0 && srv.engine.Limits.Max <= 0 {
		return prompt.DefaultLimits()
	}
	return srv.engine.Limits
}

// scenario resolves id, or picks a random scenario when id is empty.
func (srv *Server) scenario(id string) (catalog.Scenario, bool) {
	if srv.engine.Catalog == nil || len(srv.engine.Catalog.Scenarios) == 0 {
		return catalog.Scenario{}, false
	}
	if strings.TrimSpace(id) == "" {
		return srv.engine.Catalog.Random(srv.engine.Rand), true
	}
	return srv.engine.Catalog.Scenario(id)
}

type evaluateRequest struct {
	Prompt     string `json:"prompt"`
	ScenarioID string `json:"scenarioId"`
}

type evaluateResponse struct {
	ScenarioID string           `json:"scenarioId"`
	Evaluation evaluator.Result `json:"evaluation"`
	Stats      prompt.Stats     `json:"stats"`
}

// handleEvaluate scores a prompt without touching the profile or history.
func (srv *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if err := prompt.Validate(req.Prompt, srv.limits()); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	sc, ok := srv.scenario(req.ScenarioID)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown scenario")
		return
	}
	writeJSON(w, http.StatusOK, evaluateResponse{
		ScenarioID: sc.ID,
		Evaluation: srv.engine.Evaluator.Evaluate(r.Context(), req.Prompt, sc),
		Stats:      prompt.Measure(req.Prompt),
	})
}

type playRequest struct {
	ScenarioID string `json:"scenarioId"`
	Prompt     string `json:"prompt"`
	TimeTaken  int    `json:"timeTaken"` // seconds
}

// handlePlay runs a one-shot round and returns its outcome.
func (srv *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	var req playRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if srv.requireProfile(w) == nil {
		return
	}
	if _, ok := srv.scenario(req.ScenarioID); !ok {
		writeError(w, http.StatusNotFound, "unknown scenario")
		return
	}
	out, err := srv.engine.Play(r.Context(), srv.session, req.ScenarioID, req.Prompt, time.Duration(max(req.TimeTaken, 0))*time.Second)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	srv.outcomes.set(srv.session.Round(), out)
	writeJSON(w, http.StatusOK, out)
}

// outcomeSlot keeps the outcome of the most recent resolved round for
// polling clients.
type outcomeSlot struct {
	mu    sync.Mutex
	round *battle.Round
	out   *battle.Outcome
}

func (o *outcomeSlot) set(rd *battle.Round, out *battle.Outcome) {
	o.mu.Lock()
	o.round, o.out = rd, out
	o.mu.Unlock()
}

// get returns rd's outcome, or nil while it is still being recorded.
func (o *outcomeSlot) get(rd *battle.Round) *battle.Outcome {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.round != rd {
		return nil
	}
	return o.out
}

type roundResponse struct {
	Round    battle.Snapshot  `json:"round"`
	Scenario catalog.Scenario `json:"scenario"`
	Outcome  *battle.Outcome  `json:"outcome,omitempty"`
}

func (srv *Server) roundResponse(rd *battle.Round) roundResponse {
	resp := roundResponse{Round: rd.Snapshot(), Scenario: rd.Scenario}
	if resp.Round.Phase == battle.PhaseResults {
		resp.Outcome = srv.outcomes.get(rd)
	}
	return resp
}

// currentRound writes 404 and returns nil when no round exists.
func (srv *Server) currentRound(w http.ResponseWriter) *battle.Round {
	rd := srv.session.Round()
	if rd == nil {
		writeError(w, http.StatusNotFound, battle.ErrNoRound.Error())
	}
	return rd
}

func (srv *Server) handleCurrentRound(w http.ResponseWriter, r *http.Request) {
	rd := srv.currentRound(w)
	if rd == nil {
		return
	}
	writeJSON(w, http.StatusOK, srv.roundResponse(rd))
}

type startRoundRequest struct {
	ScenarioID   string `json:"scenarioId"`
	SkipBriefing bool   `json:"skipBriefing"`
}

// handleStartRound opens a timed round and drives it on a background
// goroutine until it resolves or is cancelled.
func (srv *Server) handleStartRound(w http.ResponseWriter, r *http.Request) {
	var req startRoundRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if srv.requireProfile(w) == nil {
		return
	}
	rd, err := srv.engine.StartRound(srv.session, req.ScenarioID)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	if req.SkipBriefing {
		rd.SkipCountdown()
	}

	srv.runs.Add(1)
	go func() {
		defer srv.runs.Done()
		out, err := srv.engine.RunRound(srv.runCtx, srv.session, rd)
		if err != nil {
			debug.LogKV("webserver", "round ended without result", "scenario", rd.Scenario.ID, "error", err)
			return
		}
		srv.outcomes.set(rd, out)
	}()

	writeJSON(w, http.StatusCreated, srv.roundResponse(rd))
}

type draftRequest struct {
	Prompt string `json:"prompt"`
}

// handleDraft records the in-progress prompt; it is submitted automatically
// if crafting time runs out.
func (srv *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	rd := srv.currentRound(w)
	if rd == nil {
		return
	}
	rd.SetDraft(req.Prompt)
	writeJSON(w, http.StatusOK, prompt.Measure(req.Prompt))
}

type submitResponse struct {
	Final bool            `json:"final"`
	Round battle.Snapshot `json:"round"`
}

func (srv *Server) handleSubmitRound(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	final, err := srv.engine.Submit(srv.session, req.Prompt)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, submitResponse{Final: final, Round: srv.session.Round().Snapshot()})
}

func (srv *Server) handleFinishRound(w http.ResponseWriter, r *http.Request) {
	rd := srv.currentRound(w)
	if rd == nil {
		return
	}
	if err := rd.Finish(); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, srv.roundResponse(rd))
}

func (srv *Server) handlePowerUp(w http.ResponseWriter, r *http.Request) {
	eff, err := srv.engine.UsePowerUp(r.Context(), srv.session, r.PathValue("id"))
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, eff)
}

func (srv *Server) handleCancelRound(w http.ResponseWriter, r *http.Request) {
	rd := srv.currentRound(w)
	if rd == nil {
		return
	}
	if !rd.Cancel("cancelled by player") {
		writeError(w, http.StatusConflict, "round already finished")
		return
	}
	writeJSON(w, http.StatusOK, srv.roundResponse(rd))
}
