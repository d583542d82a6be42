package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vvka-141/cdeps/internal/config"
	"github.com/vvka-141/cdeps/internal/files/classifier"
	"github.com/vvka-141/cdeps/internal/files/filesystem"
	"github.com/vvka-141/cdeps/internal/files/walker"
	"github.com/vvka-141/cdeps/internal/parser"
	"github.com/vvka-141/cdeps/internal/parser/directive"
	"github.com/vvka-141/cdeps/internal/parser/treesitter"
	"github.com/vvka-141/cdeps/internal/services"
	"github.com/vvka-141/cdeps/pkg/cdeps"
)

// scanFlagValues holds the flag values of the scan command.
type scanFlagValues struct {
	format         string
	output         string
	parser         string
	includeStyle   string
	onParseFailure string
	strict         bool
	workers        int
	exclude        []string
	noProgress     bool
}

// loadScanConfig resolves the scan configuration.
// Priority (highest to lowest): flags > environment > cdeps.yaml > defaults
func loadScanConfig(cmd *cobra.Command, root string, flags scanFlagValues, getenv func(string) string, logger cdeps.Logger) (cdeps.ScanConfig, error) {
	_ = godotenv.Load()

	cfg := cdeps.DefaultScanConfig(root)
	cfg.Verbose = getVerboseFlag(cmd)

	projectCfg, err := config.Load(root)
	switch {
	case err == nil:
		logger.Verbose("Loaded %s", cdeps.ConfigFileName)
		projectCfg.Apply(&cfg)
	case errors.Is(err, cdeps.ErrInvalidConfig):
		return cfg, err
	case errors.Is(err, config.ErrConfigNotFound):
	default:
		// an unreadable root is reported by the scan itself
		logger.Verbose("Ignoring %s: %v", cdeps.ConfigFileName, err)
	}

	if err := applyEnv(&cfg, getenv); err != nil {
		return cfg, err
	}
	applyFlags(cmd, &cfg, flags)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overlays CDEPS_PARSER and CDEPS_WORKERS.
func applyEnv(cfg *cdeps.ScanConfig, getenv func(string) string) error {
	if v := getenv("CDEPS_PARSER"); v != "" {
		cfg.Parser = cdeps.ParserBackend(v)
	}
	if v := getenv("CDEPS_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CDEPS_WORKERS=%q is not a number: %w", v, cdeps.ErrInvalidConfig)
		}
		cfg.Workers = n
	}
	return nil
}

// applyFlags overlays the flags the user set explicitly.
func applyFlags(cmd *cobra.Command, cfg *cdeps.ScanConfig, flags scanFlagValues) {
	changed := cmd.Flags().Changed
	if changed("parser") {
		cfg.Parser = cdeps.ParserBackend(flags.parser)
	}
	if changed("strict") {
		cfg.Strict = flags.strict
	}
	if changed("include-style") {
		cfg.IncludeStyle = cdeps.IncludeStyle(flags.includeStyle)
	}
	if changed("on-parse-failure") {
		cfg.OnParseFailure = cdeps.ParseFailurePolicy(flags.onParseFailure)
	}
	if changed("workers") {
		cfg.Workers = flags.workers
	}
	if changed("exclude") {
		cfg.Exclude = append(cfg.Exclude, flags.exclude...)
	}
}

// newParserFactory selects the parsing backend named by cfg.
func newParserFactory(cfg cdeps.ScanConfig, fsProvider filesystem.FileSystemProvider, logger cdeps.Logger) (cdeps.ParserFactory, error) {
	var newSource func() (parser.DirectiveSource, error)
	switch cfg.Parser {
	case cdeps.ParserDirective:
		newSource = directive.NewSource
	case cdeps.ParserTreeSitter:
		newSource = treesitter.NewSource
	default:
		return nil, fmt.Errorf("unknown parser %q: %w", cfg.Parser, cdeps.ErrInvalidConfig)
	}

	return parser.Factory(fsProvider, newSource,
		parser.WithIncludeStyle(cfg.IncludeStyle),
		parser.WithLogger(logger),
	), nil
}

// newScanner wires walker, parser backend and orchestrator for cfg.
func newScanner(cfg cdeps.ScanConfig, fsProvider filesystem.FileSystemProvider, logger cdeps.Logger) (*services.Scanner, error) {
	factory, err := newParserFactory(cfg, fsProvider, logger)
	if err != nil {
		return nil, err
	}

	w := walker.New(fsProvider, classifier.New(cfg.Extensions), walker.WithExclude(cfg.Exclude...))
	return services.NewScanner(w, factory, logger, services.ScanOptionsFromConfig(cfg)), nil
}
