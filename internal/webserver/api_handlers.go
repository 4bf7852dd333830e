package webserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/agusx1211/promptarena/internal/catalog"
	"github.com/agusx1211/promptarena/internal/debug"
	"github.com/agusx1211/promptarena/internal/leaderboard"
	"github.com/agusx1211/promptarena/internal/profile"
	"github.com/agusx1211/promptarena/internal/progression"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		debug.LogKV("webserver", "failed to encode json response", "status", status, "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

const maxBodyBytes = 1 << 20

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// queryInt reads a non-negative integer query parameter, def when absent.
func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func (srv *Server) now() time.Time {
	if srv.engine.Clock != nil {
		return srv.engine.Clock.Now()
	}
	return time.Now()
}

// requireProfile writes 404 and returns nil when no player is set up.
func (srv *Server) requireProfile(w http.ResponseWriter) *profile.Profile {
	p := srv.session.Profile()
	if p == nil {
		writeError(w, http.StatusNotFound, "no profile: create one first")
	}
	return p
}

type profileResponse struct {
	Profile *profile.Profile      `json:"profile"`
	Level   progression.LevelInfo `json:"level"`
	WinRate float64               `json:"winRate"`
}

func newProfileResponse(p *profile.Profile) profileResponse {
	return profileResponse{Profile: p, Level: progression.LevelForXP(p.XP), WinRate: p.WinRate()}
}

func (srv *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p := srv.requireProfile(w)
	if p == nil {
		return
	}
	writeJSON(w, http.StatusOK, newProfileResponse(p))
}

type createProfileRequest struct {
	Username  string `json:"username"`
	AvatarID  string `json:"avatarId"`
	AvatarURL string `json:"avatarUrl"`
	TeamName  string `json:"teamName"`
}

func (srv *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var req createProfileRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if srv.session.Profile() != nil {
		writeError(w, http.StatusConflict, "profile already exists")
		return
	}
	if req.AvatarURL == "" && srv.engine.Catalog != nil {
		if a, ok := srv.engine.Catalog.Avatar(req.AvatarID); ok {
			req.AvatarURL = a.URL
		}
	}
	p, err := profile.New(req.Username, req.AvatarID, req.AvatarURL, req.TeamName, srv.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	srv.saveProfile(p)
	srv.session.SetProfile(p)
	writeJSON(w, http.StatusCreated, newProfileResponse(p))
}

func (srv *Server) handleEditProfile(w http.ResponseWriter, r *http.Request) {
	var req profile.EditRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	p := srv.requireProfile(w)
	if p == nil {
		return
	}
	if err := p.Edit(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	srv.saveProfile(p)
	writeJSON(w, http.StatusOK, newProfileResponse(p))
}

// saveProfile persists p. The in-memory copy stays authoritative when the
// store is unavailable.
func (srv *Server) saveProfile(p *profile.Profile) {
	if srv.engine.Profiles == nil {
		return
	}
	if err := srv.engine.Profiles.Save(p); err != nil {
		debug.LogKV("webserver", "profile not saved", "error", err)
	}
}

type levelsResponse struct {
	Levels  []progression.Level   `json:"levels"`
	Current progression.LevelInfo `json:"current"`
}

func (srv *Server) handleLevels(w http.ResponseWriter, r *http.Request) {
	def := 0
	if p := srv.session.Profile(); p != nil {
		def = p.XP
	}
	xp, err := queryInt(r, "xp", def)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, levelsResponse{Levels: progression.Levels, Current: progression.LevelForXP(xp)})
}

type achievementStatus struct {
	progression.Achievement
	Unlocked bool `json:"unlocked"`
}

func (srv *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	p := srv.session.Profile()
	out := make([]achievementStatus, 0, len(progression.Achievements))
	for _, a := range progression.Achievements {
		out = append(out, achievementStatus{Achievement: a, Unlocked: p != nil && p.HasAchievement(a.ID)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (srv *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if srv.engine.History == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	battles := srv.engine.History.Battles()
	if limit > 0 && limit < len(battles) {
		battles = battles[:limit]
	}
	writeJSON(w, http.StatusOK, battles)
}

func (srv *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	p := srv.requireProfile(w)
	if p == nil {
		return
	}
	now := srv.now()
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", profile.ExportFileName(p.Username, now)))
	writeJSON(w, http.StatusOK, profile.Export(p, now))
}

func (srv *Server) handleScenarios(w http.ResponseWriter, r *http.Request) {
	if srv.engine.Catalog == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, srv.engine.Catalog.Scenarios)
}

func (srv *Server) handleRandomScenario(w http.ResponseWriter, r *http.Request) {
	if srv.engine.Catalog == nil || len(srv.engine.Catalog.Scenarios) == 0 {
		writeError(w, http.StatusNotFound, "no scenarios loaded")
		return
	}
	writeJSON(w, http.StatusOK, srv.engine.Catalog.Random(srv.engine.Rand))
}

type tipsResponse struct {
	Tip  string   `json:"tip"`
	Tips []string `json:"tips"`
}

func (srv *Server) handleTips(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, tipsResponse{Tip: catalog.Tip(srv.engine.Rand), Tips: catalog.Tips})
}

type leaderboardResponse struct {
	Entries    []leaderboard.Entry `json:"entries"`
	RemoteAt   *time.Time          `json:"remoteAt,omitempty"`
	RemoteErr  string              `json:"remoteError,omitempty"`
	PlayerRank int                 `json:"playerRank,omitempty"`
}

// handleLeaderboard serves the local snapshot merged with the last remote
// pull, if a remote is configured.
func (srv *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	board := leaderboard.Board{}
	if srv.engine.KV != nil {
		board = leaderboard.Load(srv.engine.KV)
	}
	var resp leaderboardResponse
	if srv.remote != nil {
		remote, at, rerr := srv.remote.Board()
		board = leaderboard.Merge(board, remote)
		if !at.IsZero() {
			resp.RemoteAt = &at
		}
		if rerr != nil {
			resp.RemoteErr = rerr.Error()
		}
	}
	if p := srv.session.Profile(); p != nil {
		resp.PlayerRank = board.Rank(p.Username)
	}
	resp.Entries = board.Top(limit)
	if resp.Entries == nil {
		resp.Entries = []leaderboard.Entry{}
	}
	writeJSON(w, http.StatusOK, resp)
}
