package commands

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/gorilla/securecookie"
	"github.com/leapstack-labs/pdgview/internal/source"
	"github.com/leapstack-labs/pdgview/internal/ui"
	"github.com/spf13/cobra"
)

// UIOptions holds options for the ui command.
type UIOptions struct {
	Port      int
	NoBrowser bool
	Open      bool
	Watch     bool
	Dev       bool
}

// NewUICommand creates the ui command.
func NewUICommand() *cobra.Command {
	opts := &UIOptions{}

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Start the PDG viewer",
		Long: `Start a local web server that renders the payloads in the payload
directory as SVG.

The payload directory holds <scan>/<file>.json response envelopes or
<scan>/<file>.dot DOT text. Open pages re-render whenever their payload
file changes.`,
		Example: `  # Start the viewer on the default port
  pdgview ui

  # Serve another payload directory on a custom port
  pdgview ui --payload-dir ./exports --port 3000

  # Start and open the browser
  pdgview ui --open`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUI(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, "Port to serve on (default: 8766)")
	cmd.Flags().BoolVar(&opts.Open, "open", false, "Open the browser once the server starts")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")
	cmd.Flags().BoolVar(&opts.Watch, "watch", true, "Watch the payload directory for changes")
	cmd.Flags().BoolVar(&opts.Dev, "dev", false, "Enable hot reload endpoints")
	_ = cmd.Flags().MarkHidden("dev")

	return cmd
}

func runUI(cmd *cobra.Command, opts *UIOptions) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg
	logger := cmdCtx.Logger

	// Get UI config with defaults
	uiCfg := cfg.GetUIConfig()

	// CLI flags override config file
	port := uiCfg.Port
	if opts.Port != 0 {
		port = opts.Port
	}

	autoOpen := uiCfg.AutoOpen || opts.Open
	if opts.NoBrowser {
		autoOpen = false
	}

	watch := uiCfg.Watch
	if cmd.Flags().Changed("watch") {
		watch = opts.Watch
	}

	if err := cfg.ValidatePayloadDir(); err != nil {
		return err
	}

	server := ui.NewServer(ui.Config{
		Store:         source.NewDirSource(cfg.PayloadDir, logger),
		Port:          port,
		Watch:         watch,
		Dev:           opts.Dev,
		SessionSecret: sessionSecret(uiCfg.SessionSecret),
		Logger:        logger,
	})

	url := fmt.Sprintf("http://localhost:%d", port)
	if autoOpen {
		go openBrowser(url)
	}

	r := cmdCtx.Renderer
	r.Printf("Serving %s on %s\n", cfg.PayloadDir, url)
	r.Println("Press Ctrl+C to stop")

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	return server.Serve(ctx)
}

// sessionSecret returns the configured secret, or a random one that lasts
// for this process only.
func sessionSecret(configured string) string {
	if configured != "" {
		return configured
	}
	return string(securecookie.GenerateRandomKey(32))
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
