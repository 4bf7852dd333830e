package cli

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hashicorp/mdns"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"

	"github.com/agusx1211/promptarena/internal/debug"
	"github.com/agusx1211/promptarena/internal/leaderboard"
	"github.com/agusx1211/promptarena/internal/webserver"
)

const serveMDNSServiceType = "_promptarena._tcp"

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"web", "server"},
	Short:   "Start the web arena",
	Long: `Start an HTTP/WebSocket server exposing the game API, a live round feed
at /ws/rounds, and a small leaderboard page.

When a leaderboard bucket is configured, the remote board is pulled on a
schedule (--refresh) and merged into /api/leaderboard.

Examples:
  promptarena serve
  promptarena serve --port 9000 --mdns
  promptarena serve --expose            # LAN access with TLS and a generated token`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (default from config, 8765)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config, 127.0.0.1)")
	serveCmd.Flags().Bool("expose", false, "Bind to 0.0.0.0 for LAN access (enables TLS and a generated token)")
	serveCmd.Flags().String("tls", "", "TLS mode: 'self-signed' or 'custom' (requires --cert and --key)")
	serveCmd.Flags().String("cert", "", "Path to TLS certificate file (for --tls=custom)")
	serveCmd.Flags().String("key", "", "Path to TLS key file (for --tls=custom)")
	serveCmd.Flags().String("auth-token", "", "Require Bearer token for API access")
	serveCmd.Flags().Float64("rate-limit", 0, "Max requests per second per IP (0 = unlimited)")
	serveCmd.Flags().Bool("mdns", false, "Advertise the server on the local network via mDNS/Bonjour")
	serveCmd.Flags().Bool("qr", false, "Print the URL as a QR code")
	serveCmd.Flags().Duration("refresh", 0, "Remote leaderboard refresh interval (default from config, 0 = off)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.session.Close()

	opts := webserver.OptionsFromConfig(a.cfg.Server)
	if cmd.Flags().Changed("port") {
		opts.Port, _ = cmd.Flags().GetInt("port")
	}
	if cmd.Flags().Changed("host") {
		opts.Host, _ = cmd.Flags().GetString("host")
	}
	if cmd.Flags().Changed("auth-token") {
		opts.AuthToken, _ = cmd.Flags().GetString("auth-token")
	}
	opts.TLSMode, _ = cmd.Flags().GetString("tls")
	opts.CertFile, _ = cmd.Flags().GetString("cert")
	opts.KeyFile, _ = cmd.Flags().GetString("key")
	opts.RateLimit, _ = cmd.Flags().GetFloat64("rate-limit")
	expose, _ := cmd.Flags().GetBool("expose")
	enableMDNS, _ := cmd.Flags().GetBool("mdns")
	printQR, _ := cmd.Flags().GetBool("qr")

	if expose {
		opts.Host = "0.0.0.0"
		if !cmd.Flags().Changed("tls") {
			opts.TLSMode = "self-signed"
		}
		if strings.TrimSpace(opts.AuthToken) == "" {
			opts.AuthToken = generateToken()
			fmt.Fprintf(os.Stderr, "Generated auth token: %s\n", opts.AuthToken)
		}
		fmt.Fprintln(os.Stderr, "Warning: Exposing web server on all interfaces.")
	}
	if opts.TLSMode != "" && opts.TLSMode != "self-signed" && opts.TLSMode != "custom" {
		return fmt.Errorf("invalid --tls value %q, expected 'self-signed' or 'custom'", opts.TLSMode)
	}
	if opts.TLSMode == "custom" && (opts.CertFile == "" || opts.KeyFile == "") {
		return fmt.Errorf("--tls=custom requires both --cert and --key")
	}

	refresh := time.Duration(a.cfg.Server.RefreshSecs) * time.Second
	if cmd.Flags().Changed("refresh") {
		refresh, _ = cmd.Flags().GetDuration("refresh")
	}
	var remote webserver.BoardSource
	refresher, err := startRefresher(commandContext(cmd), a, refresh)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: remote leaderboard disabled: %v\n", err)
	} else if refresher != nil {
		remote = refresher
		defer refresher.Stop()
	}

	srv := webserver.New(a.engine, a.session, remote, opts)
	if err := srv.Start(); err != nil {
		var opErr *net.OpError
		if errors.As(err, &opErr) {
			fmt.Fprintf(os.Stderr, "Port %d is already in use.\n", srv.Port())
			fmt.Fprintf(os.Stderr, "Try: promptarena serve --port %d\n", srv.Port()+1)
		}
		return fmt.Errorf("starting web server: %w", err)
	}

	url := srv.URL(displayHost(opts.Host))
	// OSC 8 hyperlink for terminals that support it.
	fmt.Printf("\033]8;;%s\033\\%s\033]8;;\033\\\n", url, url)
	if expose || printQR {
		if err := printQRCode(url); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to render QR code: %v\n", err)
		}
	}
	if opts.AuthToken != "" {
		fmt.Println("Auth token required for API access.")
	}
	if p := a.session.Profile(); p != nil {
		fmt.Printf("Serving %s (level %d).\n", p.Username, p.Level)
	} else {
		fmt.Println("No profile yet: create one with POST /api/profile or 'promptarena profile create'.")
	}

	if expose || enableMDNS {
		name := "promptarena"
		if p := a.session.Profile(); p != nil {
			name = p.Username
		}
		server, err := startMDNSService(name, srv.Port(), url)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to start mDNS advertisement: %v\n", err)
		} else {
			defer server.Shutdown()
		}
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down web server: %w", err)
	}
	return nil
}

// startRefresher schedules remote leaderboard pulls. It returns nil without
// error when no bucket is configured or interval is zero.
func startRefresher(ctx context.Context, a *app, interval time.Duration) (*leaderboard.Refresher, error) {
	if interval <= 0 || strings.TrimSpace(a.cfg.Leaderboard.Bucket) == "" {
		return nil, nil
	}
	remote, err := leaderboard.OpenRemote(ctx, a.cfg.Leaderboard)
	if err != nil {
		return nil, err
	}
	r, err := leaderboard.NewRefresher(remote, interval, func(b leaderboard.Board) {
		debug.LogKV("cli", "remote leaderboard refreshed", "entries", len(b.Entries))
	})
	if err != nil {
		return nil, err
	}
	go func() {
		pullCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := r.Refresh(pullCtx); err != nil {
			debug.LogKV("cli", "initial leaderboard pull failed", "error", err)
		}
	}()
	r.Start()
	return r, nil
}

func generateToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// displayHost picks a reachable address for wildcard binds.
func displayHost(host string) string {
	host = strings.TrimSpace(host)
	if host != "" && host != "0.0.0.0" && host != "::" {
		return host
	}
	if ip := lanAddress(); ip != "" {
		return ip
	}
	return "127.0.0.1"
}

// lanAddress returns the first non-loopback IPv4 address, or "".
func lanAddress() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ""
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if v4 := ipNet.IP.To4(); v4 != nil {
			return v4.String()
		}
	}
	return ""
}

func startMDNSService(name string, port int, url string) (*mdns.Server, error) {
	if port <= 0 {
		return nil, fmt.Errorf("invalid port for mDNS advertisement: %d", port)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "promptarena"
	}
	txtRecords := []string{
		fmt.Sprintf("player=%s", name),
		fmt.Sprintf("url=%s", url),
	}
	service, err := mdns.NewMDNSService(name, serveMDNSServiceType, "local", "", port, nil, txtRecords)
	if err != nil {
		return nil, err
	}
	return mdns.NewServer(&mdns.Config{
		Zone: service,
	})
}

func printQRCode(url string) error {
	code, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return err
	}
	fmt.Println(code.ToString(false))
	return nil
}
