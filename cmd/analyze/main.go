package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spacesedan/mindmate/internal/sentiment"
	"github.com/spf13/cobra"
)

type analyzeOptions struct {
	lexiconPath string
	asJSON      bool
	verbose     bool
}

func newRootCmd() *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze [text...]",
		Short: "Run the mood analyzer on a message",
		Long: `Scores a message the same way the bot does: sentiment, topics,
emotions, stress level and crisis phrases. Reads stdin when no text is given.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.lexiconPath, "lexicon", "", "YAML lexicon file (defaults to the built-in lexicon)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the full analysis as JSON")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log analyzer diagnostics to stderr")
	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, opts analyzeOptions) error {
	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(tint.NewHandler(cmd.ErrOrStderr(), &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	})))

	text := strings.Join(args, " ")
	if text == "" {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(raw)
	}

	lexicon := sentiment.DefaultLexicon()
	if opts.lexiconPath != "" {
		var err error
		if lexicon, err = sentiment.LoadLexicon(opts.lexiconPath); err != nil {
			return err
		}
	}

	result := sentiment.NewAnalyzer(lexicon).Analyze(text)
	out := cmd.OutOrStdout()

	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(result)
	}

	fmt.Fprintln(out, sentiment.Summary(result))
	if len(result.Recommendations) > 0 {
		fmt.Fprintln(out)
		for _, r := range result.Recommendations {
			fmt.Fprintf(out, "• %s\n", r)
		}
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
