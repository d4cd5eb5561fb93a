// Package cmd provides the CLI commands for bookmark-engagement.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bookmark-engagement/adapters/profile"
	"bookmark-engagement/core/judgment"
	"bookmark-engagement/core/output"
	"bookmark-engagement/internal/config"
	"bookmark-engagement/internal/logging"
)

// Version is the CLI version
const Version = "0.3.0"

var (
	cfgFile     string
	profilePath string
	verbose     bool
	noColor     bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "bookmark-engagement",
	Short: "Judge page engagement from visit metrics",
	Long: `bookmark-engagement scores page-visit behaviour (visit count, browse
duration and scroll depth) into one of five attention levels, and decides
whether a page deserves a bookmark suggestion.

Examples:
  bookmark-engagement judge --visits 12 --duration 140 --depth 6
  bookmark-engagement batch visits.jsonl --format json
  bookmark-engagement track events.jsonl --by-domain
  bookmark-engagement thresholds --profile strict.hcl`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file, JSON or TOML (default is $HOME/.bookmark-engagement.json)")
	rootCmd.PersistentFlags().StringVar(&profilePath, "profile", "", "HCL threshold profile")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output and engine debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	// Add subcommands
	rootCmd.AddCommand(judgeCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(trackCmd)
	rootCmd.AddCommand(thresholdsCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	config.Set(cfg)

	// Initialize logging
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// buildEngine creates the engine from the profile flag, falling back to the
// configured profile and then the built-in defaults
func buildEngine() (*judgment.Engine, error) {
	cfg := config.Get()

	path := profilePath
	if path == "" {
		path = cfg.Judgment.ProfilePath
	}

	judgmentCfg := judgment.DefaultConfig()
	if path != "" {
		loaded, err := profile.Load(path)
		if err != nil {
			return nil, err
		}
		judgmentCfg = loaded
		logging.Debug("loaded threshold profile", zap.String("path", path))
	}

	return judgment.NewEngine(judgmentCfg,
		judgment.WithLogger(logging.Named("judgment")),
		judgment.WithDebug(verbose || cfg.Judgment.Debug),
	)
}

// formatter resolves the --format flag against the configured default
func formatter(format string) (output.Formatter, error) {
	cfg := config.Get()
	if format == "" {
		format = cfg.Output.DefaultFormat
	}
	return output.New(output.Format(format), cfg.Output.Color && !noColor)
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "bookmark-engagement version %s\n", Version)
	},
}
