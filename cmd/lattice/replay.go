package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/internal/config"
	"github.com/aretw0/lattice/internal/presentation/graph"
	"github.com/aretw0/lattice/internal/presentation/outline"
	"github.com/aretw0/lattice/internal/presentation/tui"
	"github.com/aretw0/lattice/pkg/ids"
	"github.com/aretw0/lattice/pkg/script"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay <script>",
	Short: "Replay a script of editor events and print the resulting document",
	Long: `Reads a YAML or JSON list of editor events (add, update, select, clear, drag,
remove, move, reorder, reset), applies them to an empty document and prints the result
as an outline, JSON, or a Mermaid diagram.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		markdown, _ := cmd.Flags().GetBool("markdown")
		noColor, _ := cmd.Flags().GetBool("no-color")
		keepGoing, _ := cmd.Flags().GetBool("continue-on-error")

		return runReplay(cmd.Context(), replayOptions{
			Path:            args[0],
			Format:          format,
			Markdown:        markdown,
			ContinueOnError: keepGoing,
			Profile:         colorProfile(noColor),
		}, cfg, logger, cmd.OutOrStdout())
	},
}

type replayOptions struct {
	Path            string
	Format          string
	Markdown        bool
	ContinueOnError bool
	Profile         termenv.Profile
}

func runReplay(ctx context.Context, opts replayOptions, cfg config.Config, logger *slog.Logger, out io.Writer) error {
	s, err := script.Load(opts.Path)
	if err != nil {
		return err
	}
	if opts.ContinueOnError {
		s.ContinueOnError = true
	}

	gen, ok := ids.New(cfg.IDs.Strategy)
	if !ok {
		return fmt.Errorf("unknown id strategy %q", cfg.IDs.Strategy)
	}
	b := lattice.New(
		lattice.WithLogger(logger),
		lattice.WithIDGenerator(gen),
		lattice.WithMaxContainerDepth(cfg.Tree.MaxContainerDepth),
	)

	report, runErr := script.Run(ctx, b, s)
	for _, res := range report.Failed() {
		logger.Warn("Step failed", "step", res.Index, "op", res.Step.Op, "error", res.Err)
	}

	title := s.Name
	if title == "" {
		title = filepath.Base(opts.Path)
	}

	if opts.Markdown {
		render, err := tui.NewRenderer(0)
		if err != nil {
			return err
		}
		md, err := render(tui.Summary(title, report.Snapshot))
		if err != nil {
			return err
		}
		fmt.Fprint(out, md)
	} else {
		if err := printSnapshot(out, title, report, opts); err != nil {
			return err
		}
	}
	return runErr
}

func printSnapshot(out io.Writer, title string, report *script.Report, opts replayOptions) error {
	snap := report.Snapshot
	switch strings.ToLower(opts.Format) {
	case "", "outline":
		return outline.Render(out, snap.Forest, snap.SelectedID, outline.Options{Title: title, Profile: opts.Profile})
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case "mermaid":
		_, err := fmt.Fprint(out, graph.GenerateMermaid(snap.Forest, snap.SelectedID))
		return err
	default:
		return fmt.Errorf("unknown format %q (outline, json, mermaid)", opts.Format)
	}
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().StringP("format", "f", "outline", "Output format: outline, json or mermaid")
	replayCmd.Flags().Bool("markdown", false, "Print a rendered markdown summary instead")
	replayCmd.Flags().Bool("no-color", false, "Disable colored output")
	replayCmd.Flags().Bool("continue-on-error", false, "Keep replaying after a failed step")
}
