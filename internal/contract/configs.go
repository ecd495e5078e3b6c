package contract

import (
	"fmt"
	"maps"
	"runtime"
	"strconv"
	"strings"

	"github.com/sentinelhq/sentinel/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit = 25
	MaxResultLimit     = 1000
	DefaultPrecision   = 0
	MaxPrecision       = 2
	DefaultLogLevel    = "warn"
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// ThresholdsRawInput holds policy threshold definitions from the YAML config file.
type ThresholdsRawInput struct {
	Deal          *float64 `mapstructure:"deal"`
	Average       *float64 `mapstructure:"average"`
	AtRiskPercent *float64 `mapstructure:"at_risk_percent"`
}

// Config holds the runtime configuration for every command.
// This struct is the "final, validated" config.
type Config struct {
	InputPath   string
	UseDemo     bool
	ResultLimit int
	Workers     int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)
	UseColors   bool

	Sort   schema.SortMode
	Filter schema.DealFilter

	BaseInput   string
	TargetInput string

	AnalysisBackend   schema.DatabaseBackend
	AnalysisDBConnect string // Please use env var as this is plaintext

	LogLevel string

	// Thresholds is a mapping of [ThresholdKey] = limit used by the check command
	Thresholds map[schema.ThresholdKey]float64
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Input             string `mapstructure:"input"`
	Demo              bool   `mapstructure:"demo"`
	Limit             int    `mapstructure:"limit"`
	Workers           int    `mapstructure:"workers"`
	Precision         int    `mapstructure:"precision"`
	Output            string `mapstructure:"output"`
	OutputFile        string `mapstructure:"output-file"`
	Width             int    `mapstructure:"width"`
	Color             string `mapstructure:"color"`
	Sort              string `mapstructure:"sort"`
	Search            string `mapstructure:"search"`
	Stage             string `mapstructure:"stage"`
	Rep               string `mapstructure:"rep"`
	Level             string `mapstructure:"level"`
	AnalysisBackend   string `mapstructure:"analysis-backend"`
	AnalysisDBConnect string `mapstructure:"analysis-db-connect"`
	LogLevel          string `mapstructure:"log-level"`

	// --- Fields from compareCmd.Flags() ---
	Base   string `mapstructure:"base"`
	Target string `mapstructure:"target"`

	// --- Fields from checkCmd.Flags() ---
	ThresholdsStr string `mapstructure:"thresholds-override"`

	// --- Policy thresholds from config file ---
	Thresholds ThresholdsRawInput `mapstructure:"thresholds"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Thresholds != nil {
		clone.Thresholds = make(map[schema.ThresholdKey]float64, len(c.Thresholds))
		maps.Copy(clone.Thresholds, c.Thresholds)
	}
	return &clone
}

// CloneWithInput creates a copy of the Config reading deals from path.
func (c *Config) CloneWithInput(path string) *Config {
	clone := c.Clone()
	clone.InputPath = path
	clone.UseDemo = false
	return clone
}

// ConfigParams returns the settings recorded alongside each tracked run.
func (c *Config) ConfigParams() map[string]any {
	params := map[string]any{
		"input":      c.InputPath,
		"demo":       c.UseDemo,
		"limit":      c.ResultLimit,
		"workers":    c.Workers,
		"sort":       string(c.Sort),
		"output":     string(c.Output),
		"thresholds": c.Thresholds,
	}
	if !c.Filter.IsZero() {
		params["filter"] = map[string]string{
			"search": c.Filter.Search,
			"stage":  c.Filter.Stage,
			"rep":    c.Filter.Rep,
			"level":  string(c.Filter.Level),
		}
	}
	return params
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processFilter(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := processRiskThresholds(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("analysis-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("analysis-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates the run history backend configuration.
// An empty backend disables run tracking.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.AnalysisBackend = schema.DatabaseBackend(strings.ToLower(strings.TrimSpace(input.AnalysisBackend)))
	if cfg.AnalysisBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.AnalysisBackend]; !ok {
		return fmt.Errorf("invalid analysis backend '%s'. must be sqlite, mysql, postgresql, none", input.AnalysisBackend)
	}
	cfg.AnalysisDBConnect = input.AnalysisDBConnect
	return ValidateDatabaseConnectionString(cfg.AnalysisBackend, cfg.AnalysisDBConnect)
}

// validateSimpleInputs processes and validates all scalar fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.InputPath = strings.TrimSpace(input.Input)
	cfg.UseDemo = input.Demo
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.BaseInput = strings.TrimSpace(input.Base)
	cfg.TargetInput = strings.TrimSpace(input.Target)

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. ResultLimit Validation ---
	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	// --- 2. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 3. Precision and Output Validation ---
	if input.Precision < 0 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 0 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}

	// --- 4. Sort Validation ---
	cfg.Sort = schema.SortMode(strings.ToLower(input.Sort))
	if cfg.Sort == "" {
		cfg.Sort = schema.RiskDescSort
	}
	if _, ok := schema.ValidSortModes[cfg.Sort]; !ok {
		return fmt.Errorf("invalid sort '%s'. must be risk_desc, risk_asc, value_desc, value_asc, at_risk_desc", input.Sort)
	}

	// --- 5. Log level ---
	cfg.LogLevel = strings.ToLower(input.LogLevel)
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if _, ok := logLevels[cfg.LogLevel]; !ok {
		return fmt.Errorf("invalid log level '%s'. must be debug, info, warn, error", input.LogLevel)
	}

	return nil
}

// processFilter normalizes the listing filters. Stage accepts a stage code or
// its label; level is matched case-insensitively against the four levels.
func processFilter(cfg *Config, input *ConfigRawInput) error {
	cfg.Filter = schema.DealFilter{
		Search: strings.TrimSpace(input.Search),
		Rep:    strings.TrimSpace(input.Rep),
	}

	if stage := strings.TrimSpace(input.Stage); stage != "" {
		cfg.Filter.Stage = schema.Stage(strings.ToLower(stage)).Label()
		if !schema.Stage(strings.ToLower(stage)).Known() {
			cfg.Filter.Stage = stage
		}
	}

	if level := strings.TrimSpace(input.Level); level != "" {
		parsed, ok := ParseRiskLevel(level)
		if !ok {
			return fmt.Errorf("invalid level '%s'. must be Low, Moderate, High, Critical", input.Level)
		}
		cfg.Filter.Level = parsed
	}
	return nil
}

// ParseRiskLevel matches s case-insensitively against the four risk levels.
func ParseRiskLevel(s string) (schema.RiskLevel, bool) {
	for _, level := range schema.AllRiskLevels {
		if strings.EqualFold(s, string(level)) {
			return level, true
		}
	}
	return "", false
}

// processRiskThresholds builds cfg.Thresholds from defaults, then the config file,
// then the --thresholds-override flag which takes precedence.
func processRiskThresholds(cfg *Config, input *ConfigRawInput) error {
	thresholds := make(map[schema.ThresholdKey]float64, len(schema.DefaultThresholds))
	maps.Copy(thresholds, schema.DefaultThresholds)

	// Override with config file values if provided
	if input.Thresholds.Deal != nil {
		thresholds[schema.DealThreshold] = *input.Thresholds.Deal
	}
	if input.Thresholds.Average != nil {
		thresholds[schema.AverageThreshold] = *input.Thresholds.Average
	}
	if input.Thresholds.AtRiskPercent != nil {
		thresholds[schema.AtRiskThreshold] = *input.Thresholds.AtRiskPercent
	}

	// Override with command-line flag if provided (takes precedence)
	if input.ThresholdsStr != "" {
		parsed, err := ParseThresholdsString(input.ThresholdsStr)
		if err != nil {
			return fmt.Errorf("invalid --thresholds-override format: %w", err)
		}
		maps.Copy(thresholds, parsed)
	}

	for key, threshold := range thresholds {
		if threshold < 0.0 || threshold > 100.0 {
			return fmt.Errorf("threshold %s must be between 0.0 and 100.0 (received %.2f)", key, threshold)
		}
	}

	cfg.Thresholds = thresholds
	return nil
}

// ParseThresholdsString parses a string like "deal:80,average:60,at_risk_percent:30"
// into a map of ThresholdKey to float64.
func ParseThresholdsString(s string) (map[schema.ThresholdKey]float64, error) {
	thresholds := make(map[schema.ThresholdKey]float64)

	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		keyValue := strings.Split(part, ":")
		if len(keyValue) != 2 {
			return nil, fmt.Errorf("invalid threshold format '%s', expected 'key:value'", part)
		}

		key := schema.ThresholdKey(strings.ToLower(strings.TrimSpace(keyValue[0])))
		if !key.Known() {
			return nil, fmt.Errorf("invalid threshold key '%s', must be deal, average, or at_risk_percent", keyValue[0])
		}

		valueStr := strings.TrimSpace(keyValue[1])
		value, err := strconv.ParseFloat(valueStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid threshold value '%s' for %s: %w", valueStr, key, err)
		}

		thresholds[key] = value
	}

	return thresholds, nil
}

// RevalidateListing applies per-request sort and filter overrides to cfg.
// Empty arguments keep the current values.
func RevalidateListing(cfg *Config, sort string, filter schema.DealFilter) error {
	if sort != "" {
		mode := schema.SortMode(strings.ToLower(sort))
		if _, ok := schema.ValidSortModes[mode]; !ok {
			return fmt.Errorf("invalid sort '%s'. must be risk_desc, risk_asc, value_desc, value_asc, at_risk_desc", sort)
		}
		cfg.Sort = mode
	}
	if filter.IsZero() {
		return nil
	}
	return processFilter(cfg, &ConfigRawInput{
		Search: filter.Search,
		Stage:  filter.Stage,
		Rep:    filter.Rep,
		Level:  string(filter.Level),
	})
}

// RevalidateThresholds merges a "key:value" override list into cfg.Thresholds.
func RevalidateThresholds(cfg *Config, override string) error {
	if override == "" {
		return nil
	}
	parsed, err := ParseThresholdsString(override)
	if err != nil {
		return fmt.Errorf("invalid thresholds: %w", err)
	}
	for key, threshold := range parsed {
		if threshold < 0.0 || threshold > 100.0 {
			return fmt.Errorf("threshold %s must be between 0.0 and 100.0 (received %.2f)", key, threshold)
		}
	}
	if cfg.Thresholds == nil {
		cfg.Thresholds = make(map[schema.ThresholdKey]float64, len(parsed))
		maps.Copy(cfg.Thresholds, schema.DefaultThresholds)
	}
	maps.Copy(cfg.Thresholds, parsed)
	return nil
}
