package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vvka-141/cdeps/internal/files/filesystem"
	"github.com/vvka-141/cdeps/internal/logging"
	"github.com/vvka-141/cdeps/internal/report"
	"github.com/vvka-141/cdeps/internal/tui"
	"github.com/vvka-141/cdeps/pkg/cdeps"
)

var scanCmd = &cobra.Command{
	Use:   "scan <root>",
	Short: "Build the direct-include dependency map of a directory tree",
	Long: `Scan walks <root> recursively, selects C and C++ files by extension and
reports, for each of them, the headers it includes directly.

Files are recognized by suffix (case-sensitive, first match wins):
  .cpp  C++ source      .c  C source
  .hpp  C++ header      .h  C header
The table can be replaced with 'extensions:' in cdeps.yaml.

Configuration:
  Settings are read from <root>/cdeps.yaml, then CDEPS_PARSER and
  CDEPS_WORKERS (also from a .env file in the working directory), then flags.

Examples:
  # JSON map of a source tree
  cdeps scan ./src

  # YAML report with includes exactly as written
  cdeps scan ./src --format yaml --include-style spelled

  # Fail fast on the first file that cannot be parsed
  cdeps scan ./src --strict --on-parse-failure abort

  # Parallel scan skipping build output
  cdeps scan . --workers 8 --exclude build/ --exclude third_party/`,
	Args: RequireRootPath,
	RunE: runScan,
}

var scanFlags scanFlagValues

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&scanFlags.format, "format", string(report.FormatJSON),
		"Output format: json|yaml")
	scanCmd.Flags().StringVarP(&scanFlags.output, "output", "o", "",
		"Write the report to a file instead of stdout")
	scanCmd.Flags().StringVar(&scanFlags.parser, "parser", string(cdeps.ParserDirective),
		"Parser backend: directive|treesitter\n"+
			"Precedence: --parser > $CDEPS_PARSER > cdeps.yaml > directive")
	scanCmd.Flags().BoolVar(&scanFlags.strict, "strict", false,
		"Fail a file on unresolved includes or malformed input instead of tolerating them")
	scanCmd.Flags().IntVar(&scanFlags.workers, "workers", cdeps.DefaultWorkers,
		"Number of files parsed at a time\n"+
			"With more than one worker progress is reported in completion order")
	scanCmd.Flags().StringVar(&scanFlags.onParseFailure, "on-parse-failure", string(cdeps.ParseFailureSkip),
		"What to do when a file cannot be parsed: skip|abort")
	scanCmd.Flags().StringVar(&scanFlags.includeStyle, "include-style", string(cdeps.IncludeResolved),
		"How include paths are reported: resolved|spelled")
	scanCmd.Flags().StringSliceVar(&scanFlags.exclude, "exclude", nil,
		"Gitignore-style pattern to skip (can be specified multiple times)\n"+
			"Example: --exclude build/ --exclude '*_generated.h'")
	scanCmd.Flags().BoolVar(&scanFlags.noProgress, "no-progress", false,
		"Never draw the interactive progress bar")
}

func runScan(cmd *cobra.Command, args []string) error {
	root := args[0]
	verbose := getVerboseFlag(cmd)

	format, err := report.ParseFormat(scanFlags.format)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	// Handle interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stderr := cmd.ErrOrStderr()
	var (
		logger   cdeps.Logger = logging.NewWriterLogger(stderr, verbose)
		observer              = cdeps.NopProgress
		finish                = func(string, error) {}
	)
	if !scanFlags.noProgress && tui.IsInteractive() {
		bar := tui.NewProgressBar(stderr, "Scanning "+root, cancel)
		bar.Start()
		logger = logging.NewWriterLogger(bar, verbose)
		observer = bar
		finish = bar.Finish
	}

	cfg, err := loadScanConfig(cmd, root, scanFlags, os.Getenv, logger)
	if err != nil {
		finish("", err)
		return err
	}

	scanner, err := newScanner(cfg, filesystem.NewOSFileSystem(), logger)
	if err != nil {
		finish("", err)
		return err
	}

	result, err := scanner.ScanDirectory(ctx, cfg.Root, observer)
	finish(summarize(result), err)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	return writeReport(cmd.OutOrStdout(), scanFlags.output, result, format)
}

func summarize(result cdeps.ScanResult) string {
	if len(result.Failures) == 0 {
		return fmt.Sprintf("Scanned %d files", len(result.Dependencies))
	}
	return fmt.Sprintf("Scanned %d files, skipped %d", len(result.Dependencies), len(result.Failures))
}

// writeReport encodes result to outputPath, or to stdout when it is empty.
func writeReport(stdout io.Writer, outputPath string, result cdeps.ScanResult, format report.Format) error {
	if outputPath == "" {
		return report.Write(stdout, result, format)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outputPath, err)
	}
	if err := report.Write(f, result, format); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}
	return nil
}
