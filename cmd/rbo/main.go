package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ricesearch/rbo/internal/batch"
	"github.com/ricesearch/rbo/internal/cache"
	"github.com/ricesearch/rbo/internal/config"
	"github.com/ricesearch/rbo/internal/pkg/logger"
	"github.com/ricesearch/rbo/internal/rbo"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rbo",
		Short: "Rank-biased overlap for ranked lists with ties",
		Long: `rbo compares ranked lists with rank-biased overlap (RBO).

Lists are YAML or JSON sequences; a nested sequence is a tie-set:

  [a, [b, c], d]

Each comparison reports three estimates: min (lower bound), res (the
residual mass the lists leave undetermined) and ext (point estimate).

Run 'rbo serve' to expose the same comparisons over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().String("format", "text", "output format (text, json)")
	rootCmd.PersistentFlags().Float64("p", rbo.DefaultP, "persistence parameter in [0, 1]")
	rootCmd.PersistentFlags().String("mode", "", "overlap mode (corrected, raw)")

	rootCmd.AddCommand(
		compareCmd(),
		scoresCmd(),
		rankCmd(),
		batchCmd(),
		serveCmd(),
		versionCmd(),
	)

	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "rbo %s\n", version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  built:  %s\n", date)
		},
	}
}

// env is what every subcommand needs after flags and config are resolved.
type env struct {
	cfg    *config.Config
	log    *logger.Logger
	format string
}

// setup loads config and applies flag overrides. Flags win over the
// environment, which wins over the config file.
func setup(cmd *cobra.Command) (*env, error) {
	flags := cmd.Flags()
	configPath, _ := flags.GetString("config")
	verbose, _ := flags.GetBool("verbose")
	format, _ := flags.GetString("format")

	if format != "text" && format != "json" {
		return nil, fmt.Errorf("invalid format %q (must be text or json)", format)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if flags.Changed("p") {
		cfg.RBO.P, _ = flags.GetFloat64("p")
	}
	if flags.Changed("mode") {
		cfg.RBO.OverlapMode, _ = flags.GetString("mode")
	}
	if verbose {
		cfg.Log.Level = "debug"
	}

	return &env{
		cfg:    cfg,
		log:    logger.New(cfg.Log.Level, cfg.Log.Format),
		format: format,
	}, nil
}

// batchConfig resolves the comparison parameters. p and mode given on the
// command line are checked here rather than by config validation, so p may
// take any value in [0, 1].
func (e *env) batchConfig() (batch.Config, error) {
	if err := rbo.ValidateP(e.cfg.RBO.P); err != nil {
		return batch.Config{}, err
	}
	mode, err := rbo.ParseOverlapMode(e.cfg.RBO.OverlapMode)
	if err != nil {
		return batch.Config{}, err
	}
	return batch.Config{
		P:       e.cfg.RBO.P,
		Mode:    mode,
		Workers: e.cfg.Batch.Workers,
	}, nil
}

// openCache opens the configured result cache. The returned cache may be nil.
func (e *env) openCache() (cache.Cache, error) {
	c, err := cache.New(e.cfg.Cache)
	if err != nil {
		return nil, err
	}
	if c != nil {
		e.log.Debug("Result cache enabled", "type", e.cfg.Cache.Type)
	}
	return c, nil
}

func (e *env) newRunner(cfg batch.Config) (*batch.Runner, func(), error) {
	c, err := e.openCache()
	if err != nil {
		return nil, nil, err
	}
	closeCache := func() {
		if c != nil {
			if err := c.Close(); err != nil {
				e.log.WithError(err).Warn("Error closing cache")
			}
		}
	}

	r, err := batch.NewRunner(cfg, c, e.log)
	if err != nil {
		closeCache()
		return nil, nil, err
	}
	return r, closeCache, nil
}
