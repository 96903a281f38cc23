package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configForce bool

// configDirFunc returns the config directory path, replaceable in tests.
var configDirFunc = defaultConfigDir

func defaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "debrief"), nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or manage configuration",
	Long: `Show or manage debrief configuration.

Running bare 'debrief config' is the same as 'debrief config show'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config file with commented defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configInitRun()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration with sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open config file in $EDITOR",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configEditRun()
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

// configTemplate is the template for generating config.yaml with comments.
const configTemplate = `# debrief configuration
# See: debrief config show (for effective values and sources)

# SQLite archive database path (default: ~/.config/debrief/debrief.db)
# db_path: {{ .DBPath }}

# Issue tracker API (leave base_url empty to disable)
tracker:
  base_url: "{{ .TrackerBaseURL }}"
  # token: ""

# Code host API (leave base_url empty to disable)
codehost:
  base_url: "{{ .CodeHostBaseURL }}"
  # token: ""

# Scan thresholds
scan:
  # Intensity-score cutoffs for the low/medium/high classification
  low_risk_threshold: {{ .LowRiskThreshold }}
  high_risk_threshold: {{ .HighRiskThreshold }}

  # Min 0-10 complexity score marking a change as high-complexity
  complexity_threshold: {{ .ComplexityThreshold }}

# Anthropic (optional, polishes archived documents)
anthropic:
  # api_key: ""
  model: "{{ .AnthropicModel }}"
`

type configTemplateData struct {
	DBPath              string
	TrackerBaseURL      string
	CodeHostBaseURL     string
	LowRiskThreshold    float64
	HighRiskThreshold   float64
	ComplexityThreshold int
	AnthropicModel      string
}

func configFilePath() (string, error) {
	dir, err := configDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func configInitRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	// Check if file already exists
	if _, err := os.Stat(cfgPath); err == nil {
		if !configForce {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", cfgPath)
		}
		ui.Warning("Overwriting existing config file")
	}

	// Build template data from current viper values
	data := configTemplateData{
		DBPath:              viper.GetString("db_path"),
		TrackerBaseURL:      viper.GetString("tracker.base_url"),
		CodeHostBaseURL:     viper.GetString("codehost.base_url"),
		LowRiskThreshold:    viper.GetFloat64("scan.low_risk_threshold"),
		HighRiskThreshold:   viper.GetFloat64("scan.high_risk_threshold"),
		ComplexityThreshold: viper.GetInt("scan.complexity_threshold"),
		AnthropicModel:      viper.GetString("anthropic.model"),
	}

	tmpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return fmt.Errorf("template parse error: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("template execute error: %w", err)
	}

	if dryRun {
		ui.DryRunMsg("Would create config file: %s", cfgPath)
		fmt.Fprintln(ui.Out)
		fmt.Fprint(ui.Out, buf.String())
		return nil
	}

	// Create config directory
	dir := filepath.Dir(cfgPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(cfgPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	ui.Success("Config file created: %s", cfgPath)
	fmt.Fprintln(ui.Out)
	fmt.Fprint(ui.Out, buf.String())
	return nil
}

// configKeyInfo describes a config key for display purposes.
type configKeyInfo struct {
	Key    string
	EnvVar string
}

var configKeys = []configKeyInfo{
	{Key: "db_path", EnvVar: "DEBRIEF_DB_PATH"},
	{Key: "tracker.base_url", EnvVar: "DEBRIEF_TRACKER_BASE_URL"},
	{Key: "codehost.base_url", EnvVar: "DEBRIEF_CODEHOST_BASE_URL"},
	{Key: "scan.window_months", EnvVar: "DEBRIEF_SCAN_WINDOW_MONTHS"},
	{Key: "scan.low_doc_threshold", EnvVar: "DEBRIEF_SCAN_LOW_DOC_THRESHOLD"},
	{Key: "scan.summary_length_threshold", EnvVar: "DEBRIEF_SCAN_SUMMARY_LENGTH_THRESHOLD"},
	{Key: "scan.complexity_threshold", EnvVar: "DEBRIEF_SCAN_COMPLEXITY_THRESHOLD"},
	{Key: "scan.low_risk_threshold", EnvVar: "DEBRIEF_SCAN_LOW_RISK_THRESHOLD"},
	{Key: "scan.high_risk_threshold", EnvVar: "DEBRIEF_SCAN_HIGH_RISK_THRESHOLD"},
	{Key: "server_url", EnvVar: "DEBRIEF_SERVER_URL"},
	{Key: "sessions.max", EnvVar: "DEBRIEF_SESSIONS_MAX"},
	{Key: "sessions.ttl", EnvVar: "DEBRIEF_SESSIONS_TTL"},
	{Key: "anthropic.model", EnvVar: "DEBRIEF_ANTHROPIC_MODEL"},
}

func configShowRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	// Check if config file exists
	if _, err := os.Stat(cfgPath); err == nil {
		ui.Info("Config file: %s", cfgPath)
	} else {
		ui.Info("Config file: (none)")
	}
	fmt.Fprintln(ui.Out)

	// Read config file values to determine file source
	fileValues := readConfigFileValues(cfgPath)

	for _, k := range configKeys {
		val := viper.Get(k.Key)
		source := detectSource(k.Key, k.EnvVar, fileValues)
		fmt.Fprintf(ui.Out, "  %-30s %v  %s\n", k.Key, val, source)
	}

	return nil
}

// readConfigFileValues reads the raw YAML file and returns a flat map of keys present in it.
func readConfigFileValues(path string) map[string]bool {
	result := make(map[string]bool)

	data, err := os.ReadFile(path)
	if err != nil {
		return result
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return result
	}

	// Flatten nested keys with dot notation
	flattenKeys("", parsed, result)
	return result
}

// flattenKeys recursively flattens a nested map to dot-notation keys.
func flattenKeys(prefix string, m map[string]any, result map[string]bool) {
	for key, val := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		if nested, ok := val.(map[string]any); ok {
			flattenKeys(fullKey, nested, result)
		} else {
			result[fullKey] = true
		}
	}
}

// detectSource determines where a config value is coming from.
func detectSource(key, envVar string, fileValues map[string]bool) string {
	if _, ok := os.LookupEnv(envVar); ok {
		return fmt.Sprintf("(env: %s)", envVar)
	}
	if fileValues[key] {
		return "(file)"
	}
	return "(default)"
}

func configEditRun() error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		return fmt.Errorf("$EDITOR is not set, set it to your preferred editor (e.g. export EDITOR=vim)")
	}

	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s (run 'debrief config init' first)", cfgPath)
	}

	if dryRun {
		ui.DryRunMsg("Would open %s in %s", cfgPath, editor)
		return nil
	}

	editCmd := exec.Command(editor, cfgPath)
	editCmd.Stdin = os.Stdin
	editCmd.Stdout = os.Stdout
	editCmd.Stderr = os.Stderr
	return editCmd.Run()
}
