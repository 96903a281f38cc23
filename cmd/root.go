package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/debriefhq/debrief/internal/activity"
	"github.com/debriefhq/debrief/internal/archive"
	"github.com/debriefhq/debrief/internal/llm"
	"github.com/debriefhq/debrief/internal/output"
	"github.com/debriefhq/debrief/internal/source"
	"github.com/debriefhq/debrief/internal/workflow"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui           *output.UI
	orchestrator *workflow.Orchestrator
	archiveSink  archive.Sink

	verbose bool
	dryRun  bool

	snapshotPath string
)

var rootCmd = &cobra.Command{
	Use:   "debrief",
	Short: "Debrief - capture knowledge before it walks out the door",
	Long: `debrief scans a departing employee's recent activity, flags the
undocumented high-intensity work, and runs a structured exit interview
whose answers are distilled into a searchable knowledge archive.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would happen without making changes")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/debrief/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&snapshotPath, "snapshot", "", "YAML activity snapshot to scan instead of live sources")
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".config", "debrief")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("DEBRIEF")
	viper.AutomaticEnv()

	// Defaults via viper.SetDefault()
	home, _ := os.UserHomeDir()
	defaultConfigDir := filepath.Join(home, ".config", "debrief")

	viper.SetDefault("db_path", filepath.Join(defaultConfigDir, "debrief.db"))
	viper.SetDefault("tracker.base_url", "")
	viper.SetDefault("tracker.token", "")
	viper.SetDefault("codehost.base_url", "")
	viper.SetDefault("codehost.token", "")
	viper.SetDefault("archive.base_url", "")
	viper.SetDefault("archive.token", "")
	viper.SetDefault("server_url", "")
	viper.SetDefault("scan.window_months", 6)
	viper.SetDefault("scan.low_doc_threshold", 3)
	viper.SetDefault("scan.summary_length_threshold", 50)
	viper.SetDefault("scan.complexity_threshold", 6)
	viper.SetDefault("scan.low_risk_threshold", 2.0)
	viper.SetDefault("scan.high_risk_threshold", 5.0)
	viper.SetDefault("scan.workers", 4)
	viper.SetDefault("sessions.max", 100)
	viper.SetDefault("sessions.ttl", "720h")
	viper.SetDefault("anthropic.api_key", "")
	viper.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
	ui.DryRun = dryRun

	// The orchestrator and sink are built lazily so config/version
	// commands run without touching the database or the network.
}

func scanConfigFromViper() activity.ScanConfig {
	return activity.ScanConfig{
		WindowMonths:           viper.GetInt("scan.window_months"),
		LowDocThreshold:        viper.GetInt("scan.low_doc_threshold"),
		SummaryLengthThreshold: viper.GetInt("scan.summary_length_threshold"),
		ComplexityThreshold:    viper.GetInt("scan.complexity_threshold"),
		LowRiskThreshold:       viper.GetFloat64("scan.low_risk_threshold"),
		HighRiskThreshold:      viper.GetFloat64("scan.high_risk_threshold"),
		Workers:                viper.GetInt("scan.workers"),
	}
}

// buildSource assembles the activity source from config. A --snapshot flag
// overrides the configured live sources.
func buildSource() (source.ActivitySource, error) {
	if snapshotPath != "" {
		return source.NewFileSource(snapshotPath), nil
	}

	var sources []source.ActivitySource
	if url := viper.GetString("tracker.base_url"); url != "" {
		sources = append(sources, source.NewTrackerClient(url, viper.GetString("tracker.token")))
	}
	if url := viper.GetString("codehost.base_url"); url != "" {
		sources = append(sources, source.NewCodeHostClient(url, viper.GetString("codehost.token")))
	}

	switch len(sources) {
	case 0:
		return nil, fmt.Errorf("no activity source configured: set tracker.base_url or codehost.base_url, or pass --snapshot")
	case 1:
		return sources[0], nil
	default:
		return source.NewMulti(sources...), nil
	}
}

// getSink returns the shared archive sink, initializing it on first call.
func getSink() (archive.Sink, error) {
	if archiveSink != nil {
		return archiveSink, nil
	}

	if url := viper.GetString("archive.base_url"); url != "" {
		archiveSink = archive.NewHTTPSink(url, viper.GetString("archive.token"))
		return archiveSink, nil
	}

	s, err := archive.NewSQLiteSink(viper.GetString("db_path"))
	if err != nil {
		return nil, fmt.Errorf("open archive database: %w", err)
	}
	if err := s.Migrate(rootCmd.Context()); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate archive database: %w", err)
	}

	archiveSink = s
	return archiveSink, nil
}

// getSQLiteSink returns the sink when it is the local SQLite one, for
// commands that read archives back.
func getSQLiteSink() (*archive.SQLiteSink, error) {
	s, err := getSink()
	if err != nil {
		return nil, err
	}
	sq, ok := s.(*archive.SQLiteSink)
	if !ok {
		return nil, fmt.Errorf("archive reads require the local SQLite sink (archive.base_url is set)")
	}
	return sq, nil
}

// getOrchestrator returns the shared orchestrator, initializing it on first call.
func getOrchestrator() (*workflow.Orchestrator, error) {
	if orchestrator != nil {
		return orchestrator, nil
	}

	src, err := buildSource()
	if err != nil {
		return nil, err
	}
	sink, err := getSink()
	if err != nil {
		return nil, err
	}

	ttl, err := time.ParseDuration(viper.GetString("sessions.ttl"))
	if err != nil {
		return nil, fmt.Errorf("invalid sessions.ttl: %w", err)
	}

	cfg := workflow.Config{
		Store: workflow.NewMemoryStore(workflow.RetentionPolicy{
			MaxSessions: viper.GetInt("sessions.max"),
			TTL:         ttl,
		}),
		Scanner: activity.NewScanner(scanConfigFromViper()),
		Source:  src,
		Sink:    sink,
	}
	if key := viper.GetString("anthropic.api_key"); key != "" {
		cfg.Enricher = llm.NewClient(key, viper.GetString("anthropic.model"))
	}

	orchestrator = workflow.New(cfg)
	return orchestrator, nil
}
