package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/leapstack-labs/pdgview/internal/cli/config"
	"github.com/leapstack-labs/pdgview/internal/cli/output"
	"github.com/leapstack-labs/pdgview/internal/pdg"
	"github.com/leapstack-labs/pdgview/internal/source"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext collects the config, logger and renderer the root
// command stored in the context. A command run on its own gets defaults.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)

	r, ok := output.FromContext(ctx)
	if !ok {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(ctx),
		Renderer: r,
	}
}

// PayloadFlags selects a payload from the payload directory instead of a
// file argument.
type PayloadFlags struct {
	Scan string
	File string
}

func (f *PayloadFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Scan, "scan", "", "Scan id in the payload directory")
	cmd.Flags().StringVar(&f.File, "file", "", "File id in the payload directory")
	cmd.MarkFlagsRequiredTogether("scan", "file")
}

// loadPayload resolves the payload named by args or flags and normalizes it.
// It returns a display name for the input alongside the result.
//
// With --scan/--file the payload comes from the payload directory. A
// single argument names a payload file, "-" or no argument reads stdin.
func (c *CommandContext) loadPayload(cmd *cobra.Command, args []string, flags *PayloadFlags) (string, *pdg.Result, error) {
	var (
		src    source.Source
		name   string
		scanID string
		fileID string
	)

	switch {
	case flags != nil && flags.Scan != "":
		if len(args) > 0 {
			return "", nil, fmt.Errorf("cannot combine a payload file with --scan/--file")
		}
		src = source.NewDirSource(c.Cfg.PayloadDir, c.Logger)
		scanID, fileID = flags.Scan, flags.File
		name = source.Ref{ScanID: scanID, FileID: fileID}.String()
	case len(args) == 0 || args[0] == "-":
		src = source.NewReaderSource(cmd.InOrStdin())
		name = "stdin"
	default:
		f, err := os.Open(args[0])
		if err != nil {
			return "", nil, fmt.Errorf("failed to open payload: %w", err)
		}
		defer func() { _ = f.Close() }()
		src = source.NewReaderSource(f)
		name = args[0]
	}

	p, err := src.Fetch(cmd.Context(), scanID, fileID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load payload %s: %w", name, err)
	}

	res := pdg.NewNormalizer(c.Logger).Normalize(p)
	if res.IsFallback() {
		c.Logger.Warn("payload could not be decoded, showing sample graph", "input", name)
	}
	return name, res, nil
}
