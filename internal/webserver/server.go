package webserver

import (
	"context"
	"crypto/tls"
	"embed"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/agusx1211/promptarena/internal/battle"
	"github.com/agusx1211/promptarena/internal/buildinfo"
	"github.com/agusx1211/promptarena/internal/config"
	"github.com/agusx1211/promptarena/internal/debug"
	"github.com/agusx1211/promptarena/internal/leaderboard"
)

//go:embed static
var staticFS embed.FS

// Options configures web server behavior.
type Options struct {
	Host      string
	Port      int
	TLSMode   string
	CertFile  string
	KeyFile   string
	AuthToken string
	RateLimit float64
}

// OptionsFromConfig maps the serve section of the user config.
func OptionsFromConfig(sc config.ServerConfig) Options {
	return Options{Host: sc.Host, Port: sc.Port, AuthToken: sc.AuthToken}
}

// BoardSource supplies the shared leaderboard. *leaderboard.Refresher
// implements it.
type BoardSource interface {
	Board() (leaderboard.Board, time.Time, error)
}

// Server hosts the game API and the WebSocket round feed for one local
// player session.
type Server struct {
	engine   *battle.Engine
	session  *battle.Session
	remote   BoardSource
	outcomes outcomeSlot

	httpServer *http.Server
	port       int
	host       string
	tlsMode    string
	certFile   string
	keyFile    string
	authToken  string
	rateLimit  float64

	// Timed rounds run on background goroutines tied to runCtx.
	runCtx    context.Context
	runCancel context.CancelFunc
	runs      sync.WaitGroup
}

// New constructs a web server over engine and session. remote may be nil.
func New(engine *battle.Engine, session *battle.Session, remote BoardSource, opts Options) *Server {
	host := strings.TrimSpace(opts.Host)
	if host == "" {
		host = "127.0.0.1"
	}

	port := opts.Port
	if port <= 0 {
		port = 8765
	}

	srv := &Server{
		engine:    engine,
		session:   session,
		remote:    remote,
		host:      host,
		port:      port,
		tlsMode:   strings.TrimSpace(opts.TLSMode),
		certFile:  strings.TrimSpace(opts.CertFile),
		keyFile:   strings.TrimSpace(opts.KeyFile),
		authToken: strings.TrimSpace(opts.AuthToken),
		rateLimit: opts.RateLimit,
	}
	srv.runCtx, srv.runCancel = context.WithCancel(context.Background())

	mux := http.NewServeMux()
	srv.setupRoutes(mux)

	handler := corsMiddleware(logMiddleware(rateLimitMiddleware(srv.rateLimit, authMiddleware(srv.authToken, mux))))
	srv.httpServer = &http.Server{
		Addr:              srv.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return srv
}

// Handler exposes the full middleware chain, for embedding and tests.
func (srv *Server) Handler() http.Handler {
	return srv.httpServer.Handler
}

// Start starts the server in a background goroutine and returns immediately.
func (srv *Server) Start() error {
	if srv.httpServer == nil {
		return fmt.Errorf("webserver not initialized")
	}

	if srv.tlsMode != "" {
		var cert tls.Certificate
		var err error

		switch srv.tlsMode {
		case "self-signed":
			cert, err = generateSelfSignedCert(srv.host)
			if err != nil {
				return fmt.Errorf("generating self-signed certificate: %w", err)
			}
		case "custom":
			cert, err = tls.LoadX509KeyPair(srv.certFile, srv.keyFile)
			if err != nil {
				return fmt.Errorf("loading TLS certificate: %w", err)
			}
		default:
			return fmt.Errorf("unsupported TLS mode: %q", srv.tlsMode)
		}

		srv.httpServer.TLSConfig = &tls.Config{
			MinVersion:   tls.VersionTLS12,
			Certificates: []tls.Certificate{cert},
		}
	}

	ln, err := net.Listen("tcp", srv.Addr())
	if err != nil {
		return err
	}

	if tcpAddr, ok := ln.Addr().(*net.TCPAddr); ok {
		srv.port = tcpAddr.Port
		srv.httpServer.Addr = srv.Addr()
	}

	go func() {
		var err error
		if srv.tlsMode != "" {
			err = srv.httpServer.ServeTLS(ln, "", "")
		} else {
			err = srv.httpServer.Serve(ln)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			debug.LogKV("webserver", "server stopped with error", "error", err)
		}
	}()

	return nil
}

// Shutdown cancels running rounds and gracefully stops the HTTP server.
func (srv *Server) Shutdown(ctx context.Context) error {
	srv.runCancel()
	var err error
	if srv.httpServer != nil {
		err = srv.httpServer.Shutdown(ctx)
	}
	srv.runs.Wait()
	return err
}

// Addr returns the bound host:port address.
func (srv *Server) Addr() string {
	return net.JoinHostPort(srv.host, strconv.Itoa(srv.port))
}

// Port returns the bound port, resolved after Start when 0 was requested.
func (srv *Server) Port() int {
	return srv.port
}

// Scheme returns the URL scheme for the running server.
func (srv *Server) Scheme() string {
	if srv.tlsMode != "" {
		return "https"
	}
	return "http"
}

// URL returns the base URL for host, or the bound host when empty.
func (srv *Server) URL(host string) string {
	if host == "" {
		host = srv.host
	}
	return srv.Scheme() + "://" + net.JoinHostPort(host, strconv.Itoa(srv.port))
}

func (srv *Server) setupRoutes(mux *http.ServeMux) {
	// Player
	mux.HandleFunc("GET /api/profile", srv.handleGetProfile)
	mux.HandleFunc("POST /api/profile", srv.handleCreateProfile)
	mux.HandleFunc("PATCH /api/profile", srv.handleEditProfile)
	mux.HandleFunc("GET /api/levels", srv.handleLevels)
	mux.HandleFunc("GET /api/achievements", srv.handleAchievements)
	mux.HandleFunc("GET /api/history", srv.handleHistory)
	mux.HandleFunc("GET /api/export", srv.handleExport)

	// Content
	mux.HandleFunc("GET /api/scenarios", srv.handleScenarios)
	mux.HandleFunc("GET /api/scenarios/random", srv.handleRandomScenario)
	mux.HandleFunc("GET /api/tips", srv.handleTips)

	// Scoring
	mux.HandleFunc("POST /api/evaluate", srv.handleEvaluate)
	mux.HandleFunc("POST /api/battles", srv.handlePlay)
	mux.HandleFunc("POST /api/playground/review", srv.handleReview)
	mux.HandleFunc("GET /api/playground/reviews", srv.handleReviews)

	// Timed rounds
	mux.HandleFunc("GET /api/rounds/current", srv.handleCurrentRound)
	mux.HandleFunc("POST /api/rounds", srv.handleStartRound)
	mux.HandleFunc("POST /api/rounds/draft", srv.handleDraft)
	mux.HandleFunc("POST /api/rounds/submit", srv.handleSubmitRound)
	mux.HandleFunc("POST /api/rounds/finish", srv.handleFinishRound)
	mux.HandleFunc("POST /api/rounds/powerups/{id}", srv.handlePowerUp)
	mux.HandleFunc("DELETE /api/rounds/current", srv.handleCancelRound)

	mux.HandleFunc("GET /api/leaderboard", srv.handleLeaderboard)
	mux.HandleFunc("GET /api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, buildinfo.Current())
	})

	// WebSocket endpoints
	mux.HandleFunc("GET /ws/rounds", srv.handleRoundsWebSocket)

	// Catch-all for unknown API routes
	mux.HandleFunc("GET /api/{rest...}", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})

	// Static files
	staticHandler := http.FileServer(http.FS(staticFS))
	mux.Handle("GET /static/", staticHandler)

	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}

		data, err := staticFS.ReadFile("static/index.html")
		if err != nil {
			http.Error(w, "failed to load index", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(data)
	})
}
