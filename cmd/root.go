package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pable/go-football-metrics/internal/aggregator"
	"github.com/pable/go-football-metrics/internal/config"
	"github.com/pable/go-football-metrics/internal/logging"
	"github.com/pable/go-football-metrics/internal/session"
)

var (
	configPath string
	dataDir    string
	matchesArg string
	eventsArg  string
	logLevel   string
	logFormat  string

	cfg      *config.Config
	log      *logrus.Logger
	sessions *session.Cache
)

var rootCmd = &cobra.Command{
	Use:   "fbmetrics",
	Short: "World Cup 2022 event metrics tool",
	Long: `Load StatsBomb World Cup 2022 event logs and compute final-third pass maps
and per-90 productivity comparisons.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "YAML config file (falls back to $FBMETRICS_CONFIG)")
	pf.StringVar(&dataDir, "data", "", "StatsBomb data directory")
	pf.StringVar(&matchesArg, "matches", "", "match catalog file (default <data>/matches/wc2022_matches.json)")
	pf.StringVar(&eventsArg, "events", "", "event log directory (default <data>/events)")
	pf.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&logFormat, "log-format", "", "log format: text or json")

	rootCmd.AddCommand(matchesCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(passesCmd)
	rootCmd.AddCommand(per90Cmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(analyzeCmd)
}

// setup layers config, applies explicit flags on top and prepares the
// session cache. Sessions are built lazily by the first command that needs one.
func setup(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(cmd.Context(), configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		c.DataDir = dataDir
	}
	if flags.Changed("matches") {
		c.MatchesFile = matchesArg
	}
	if flags.Changed("events") {
		c.EventsDir = eventsArg
	}
	if flags.Changed("log-level") {
		c.LogLevel = logLevel
	}
	if flags.Changed("log-format") {
		c.LogFormat = logFormat
	}
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c

	log = logging.Init(cfg.LogLevel, cfg.LogFormat)
	sessions = session.NewCache(
		session.Source{MatchesPath: cfg.MatchesPath(), EventsDir: cfg.EventsPath()},
		aggregatorOptions(),
		log,
	)
	log.WithFields(logrus.Fields{
		"matches": cfg.MatchesPath(),
		"events":  cfg.EventsPath(),
	}).Debug("configuration loaded")
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if sessions == nil {
		return nil
	}
	return sessions.Close()
}

func aggregatorOptions() aggregator.Options {
	return aggregator.Options{FinalThirdX: cfg.FinalThirdX, MinMinutes: cfg.MinMinutes}
}

// currentSession returns the memoized pipeline output.
func currentSession() (*session.Session, error) {
	s, err := sessions.Get()
	if err != nil {
		return nil, fmt.Errorf("load tournament data: %w", err)
	}
	return s, nil
}
