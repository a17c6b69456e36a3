package dcfhdupes

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-ini/ini"
)

// Config represents the dcfhdupes configuration
type Config struct {
	configPath string
	ini        *ini.File
}

// HashConfig represents hash algorithm configuration
type HashConfig struct {
	Default string // Full-content digest used by the last stage
}

// StageConfig represents refinement stage configuration
type StageConfig struct {
	PrefixBytes int  // Bytes read by the prefix stage
	SkipEmpty   bool // Exclude zero-length files from duplicate clusters
}

// PerformanceConfig represents performance-related configuration
type PerformanceConfig struct {
	Workers    int    // Clusters split concurrently (default: 4)
	HashBuffer string // Read buffer for full-content hashing (default: "2M")
}

// SymlinkConfig represents symlink handling configuration
type SymlinkConfig struct {
	Mode string // Directory symlink mode: all, contained, none
}

// IgnoreConfig represents ignore file configuration
type IgnoreConfig struct {
	File string // Path of a regex ignore file, empty for none
}

// OutputConfig represents output format configuration
type OutputConfig struct {
	Format       string // human, json, yaml, fdupes
	IndentWidth  int    // Spaces per indentation level in the human report
	ShowClusters bool   // List every cluster with file sizes
	Color        string // auto, always, never
}

// VerboseConfig represents verbosity configuration
type VerboseConfig struct {
	Level int    // 0=quiet, 1=basic, 2=detailed, 3=trace
	Debug string // Debug flags (comma-separated)
}

// AllConfig represents all configuration options
type AllConfig struct {
	Hash        *HashConfig
	Stages      *StageConfig
	Performance *PerformanceConfig
	Symlink     *SymlinkConfig
	Ignore      *IgnoreConfig
	Output      *OutputConfig
	Verbose     *VerboseConfig
}

// LoadConfig loads configuration from configPath. An empty path or a missing
// file yields the built-in defaults.
func LoadConfig(configPath string) (*Config, error) {
	cfg := &Config{
		configPath: configPath,
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			iniFile, err := ini.Load(configPath)
			if err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
			cfg.ini = iniFile
			return cfg, nil
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
	}

	cfg.ini = ini.Empty()
	if err := cfg.setDefaults(); err != nil {
		return nil, fmt.Errorf("failed to set default config: %w", err)
	}
	return cfg, nil
}

// setDefaults sets default configuration values
func (c *Config) setDefaults() error {
	defaults := []struct {
		section, key, value string
	}{
		{"filehash", "default", DefaultHashAlgorithm},
		{"stages", "prefix_bytes", strconv.Itoa(DefaultPrefixBytes)},
		{"stages", "skip_empty", "false"},
		{"performance", "workers", strconv.Itoa(DefaultWorkers)},
		{"performance", "hash_buffer", DefaultHashBuffer},
		{"symlink", "mode", DefaultSymlinkMode},
		{"ignore", "file", ""},
		{"output", "format", DefaultOutputFormat},
		{"output", "indent_width", strconv.Itoa(DefaultIndentWidth)},
		{"output", "show_clusters", "false"},
		{"output", "color", "auto"},
		{"verbose", "level", "0"},
		{"verbose", "debug", ""},
	}

	for _, d := range defaults {
		section := c.ini.Section(d.section)
		if _, err := section.NewKey(d.key, d.value); err != nil {
			return fmt.Errorf("failed to set default %s.%s: %w", d.section, d.key, err)
		}
	}
	return nil
}

// stringValue returns section.key or fallback when unset
func (c *Config) stringValue(section, key, fallback string) string {
	if c.ini.HasSection(section) {
		s := c.ini.Section(section)
		if s.HasKey(key) {
			return s.Key(key).String()
		}
	}
	return fallback
}

// intValue returns section.key as an int or fallback when unset or invalid
func (c *Config) intValue(section, key string, fallback int) int {
	if c.ini.HasSection(section) {
		s := c.ini.Section(section)
		if s.HasKey(key) {
			if v, err := s.Key(key).Int(); err == nil {
				return v
			}
		}
	}
	return fallback
}

// boolValue returns section.key as a bool or fallback when unset or invalid
func (c *Config) boolValue(section, key string, fallback bool) bool {
	if c.ini.HasSection(section) {
		s := c.ini.Section(section)
		if s.HasKey(key) {
			if v, err := s.Key(key).Bool(); err == nil {
				return v
			}
		}
	}
	return fallback
}

// GetHashConfig returns the hash configuration
func (c *Config) GetHashConfig() *HashConfig {
	return &HashConfig{
		Default: c.stringValue("filehash", "default", DefaultHashAlgorithm),
	}
}

// GetStageConfig returns the stage configuration
func (c *Config) GetStageConfig() *StageConfig {
	return &StageConfig{
		PrefixBytes: c.intValue("stages", "prefix_bytes", DefaultPrefixBytes),
		SkipEmpty:   c.boolValue("stages", "skip_empty", false),
	}
}

// GetPerformanceConfig returns the performance configuration
func (c *Config) GetPerformanceConfig() *PerformanceConfig {
	return &PerformanceConfig{
		Workers:    c.intValue("performance", "workers", DefaultWorkers),
		HashBuffer: c.stringValue("performance", "hash_buffer", DefaultHashBuffer),
	}
}

// GetSymlinkConfig returns the symlink configuration
func (c *Config) GetSymlinkConfig() *SymlinkConfig {
	return &SymlinkConfig{
		Mode: c.stringValue("symlink", "mode", DefaultSymlinkMode),
	}
}

// GetIgnoreConfig returns the ignore configuration
func (c *Config) GetIgnoreConfig() *IgnoreConfig {
	return &IgnoreConfig{
		File: c.stringValue("ignore", "file", ""),
	}
}

// GetOutputConfig returns the output configuration
func (c *Config) GetOutputConfig() *OutputConfig {
	return &OutputConfig{
		Format:       c.stringValue("output", "format", DefaultOutputFormat),
		IndentWidth:  c.intValue("output", "indent_width", DefaultIndentWidth),
		ShowClusters: c.boolValue("output", "show_clusters", false),
		Color:        c.stringValue("output", "color", "auto"),
	}
}

// GetVerboseConfig returns the verbose configuration
func (c *Config) GetVerboseConfig() *VerboseConfig {
	return &VerboseConfig{
		Level: c.intValue("verbose", "level", 0),
		Debug: c.stringValue("verbose", "debug", ""),
	}
}

// GetAllConfig returns all configuration options
func (c *Config) GetAllConfig() *AllConfig {
	return &AllConfig{
		Hash:        c.GetHashConfig(),
		Stages:      c.GetStageConfig(),
		Performance: c.GetPerformanceConfig(),
		Symlink:     c.GetSymlinkConfig(),
		Ignore:      c.GetIgnoreConfig(),
		Output:      c.GetOutputConfig(),
		Verbose:     c.GetVerboseConfig(),
	}
}

// Set assigns section.key directly, without validation
func (c *Config) Set(section, key, value string) {
	c.ini.Section(section).Key(key).SetValue(value)
}

// Path returns the file the configuration was loaded from or will be saved to
func (c *Config) Path() string {
	return c.configPath
}

// Save saves the configuration to the path it was loaded from
func (c *Config) Save() error {
	if c.configPath == "" {
		return fmt.Errorf("config has no file path")
	}
	return c.ini.SaveTo(c.configPath)
}

// SaveTo saves the configuration to path
func (c *Config) SaveTo(path string) error {
	return c.ini.SaveTo(path)
}

// WriteTo writes the configuration in ini syntax
func (c *Config) WriteTo(w io.Writer) (int64, error) {
	return c.ini.WriteTo(w)
}

// overrideKeys maps override names to their section and key
var overrideKeys = map[string][2]string{
	"hash":          {"filehash", "default"},
	"prefix_bytes":  {"stages", "prefix_bytes"},
	"skip_empty":    {"stages", "skip_empty"},
	"workers":       {"performance", "workers"},
	"hash_buffer":   {"performance", "hash_buffer"},
	"symlinks":      {"symlink", "mode"},
	"ignore_file":   {"ignore", "file"},
	"format":        {"output", "format"},
	"indent_width":  {"output", "indent_width"},
	"show_clusters": {"output", "show_clusters"},
	"color":         {"output", "color"},
	"level":         {"verbose", "level"},
	"debug":         {"verbose", "debug"},
}

// ApplyOverrides applies command-line overrides to the configuration
// Accepts strings like "hash:sha512", "format:json", "workers:8", "debug:scan"
func (c *Config) ApplyOverrides(overrides []string) error {
	for _, override := range overrides {
		parts := strings.SplitN(override, ":", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid override format '%s', expected 'key:value'", override)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		target, ok := overrideKeys[key]
		if !ok {
			return fmt.Errorf("unsupported override key '%s'", key)
		}
		c.Set(target[0], target[1], value)
	}

	return nil
}

// numericKeys and boolKeys are read through intValue and boolValue, which
// fall back to defaults; Validate rejects raw values that do not parse
var (
	numericKeys = [][2]string{
		{"stages", "prefix_bytes"},
		{"performance", "workers"},
		{"output", "indent_width"},
		{"verbose", "level"},
	}
	boolKeys = [][2]string{
		{"stages", "skip_empty"},
		{"output", "show_clusters"},
	}
)

// rawKey returns section.key when the configuration sets it
func (c *Config) rawKey(section, key string) (*ini.Key, bool) {
	if !c.ini.HasSection(section) || !c.ini.Section(section).HasKey(key) {
		return nil, false
	}
	return c.ini.Section(section).Key(key), true
}

// validateRawValues checks that typed keys present in the file parse
func (c *Config) validateRawValues() error {
	for _, k := range numericKeys {
		if v, ok := c.rawKey(k[0], k[1]); ok {
			if _, err := v.Int(); err != nil {
				return fmt.Errorf("invalid %s.%s: %q is not an integer", k[0], k[1], v.String())
			}
		}
	}
	for _, k := range boolKeys {
		if v, ok := c.rawKey(k[0], k[1]); ok {
			if _, err := v.Bool(); err != nil {
				return fmt.Errorf("invalid %s.%s: %q is not a boolean", k[0], k[1], v.String())
			}
		}
	}
	return nil
}

// Validate checks every configured value
func (c *Config) Validate() error {
	if err := c.validateRawValues(); err != nil {
		return err
	}
	all := c.GetAllConfig()
	if err := ValidateHashAlgorithm(all.Hash.Default); err != nil {
		return err
	}
	if err := ValidatePrefixBytes(all.Stages.PrefixBytes); err != nil {
		return err
	}
	if err := ValidateWorkers(all.Performance.Workers); err != nil {
		return err
	}
	if _, err := ParseHumanSize(all.Performance.HashBuffer); err != nil {
		return fmt.Errorf("invalid hash buffer: %w", err)
	}
	if err := ValidateSymlinkMode(all.Symlink.Mode); err != nil {
		return err
	}
	if err := ValidateOutputFormat(all.Output.Format); err != nil {
		return err
	}
	if err := ValidateIndentWidth(all.Output.IndentWidth); err != nil {
		return err
	}
	if err := ValidateColorMode(all.Output.Color); err != nil {
		return err
	}
	return ValidateVerboseLevel(all.Verbose.Level)
}

// ValidateHashAlgorithm validates that a hash algorithm is supported
func ValidateHashAlgorithm(algorithm string) error {
	if _, err := GetHashAlgorithm(algorithm); err != nil {
		return fmt.Errorf("unsupported hash algorithm: %s (supported: md5, sha1, sha256, sha512)", algorithm)
	}
	return nil
}

// ValidatePrefixBytes validates the prefix stage read size
func ValidatePrefixBytes(n int) error {
	if n < 1 {
		return fmt.Errorf("prefix bytes must be at least 1, got: %d", n)
	}
	if n > 1024*1024 {
		return fmt.Errorf("prefix bytes should not exceed 1M, got: %d", n)
	}
	return nil
}

// ValidateWorkers validates that the worker count is reasonable
func ValidateWorkers(workers int) error {
	if workers < 1 {
		return fmt.Errorf("workers must be at least 1, got: %d", workers)
	}
	if workers > MaxWorkers {
		return fmt.Errorf("workers should not exceed %d, got: %d", MaxWorkers, workers)
	}
	return nil
}

// ValidateSymlinkMode validates that a symlink mode is supported
func ValidateSymlinkMode(mode string) error {
	switch strings.ToLower(mode) {
	case "all", "contained", "none":
		return nil
	default:
		return fmt.Errorf("unsupported symlink mode: %s (supported: all, contained, none)", mode)
	}
}

// ValidateOutputFormat validates that an output format is supported
func ValidateOutputFormat(format string) error {
	switch strings.ToLower(format) {
	case "human", "json", "yaml", "fdupes":
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s (supported: human, json, yaml, fdupes)", format)
	}
}

// ValidateIndentWidth validates the report indentation unit
func ValidateIndentWidth(width int) error {
	if width < 0 || width > 16 {
		return fmt.Errorf("invalid indent width: %d (supported: 0-16)", width)
	}
	return nil
}

// ValidateColorMode validates the colour mode
func ValidateColorMode(mode string) error {
	switch strings.ToLower(mode) {
	case "auto", "always", "never":
		return nil
	default:
		return fmt.Errorf("unsupported color mode: %s (supported: auto, always, never)", mode)
	}
}

// ValidateVerboseLevel validates that a verbose level is valid
func ValidateVerboseLevel(level int) error {
	if level < 0 || level > 3 {
		return fmt.Errorf("invalid verbose level: %d (supported: 0-3)", level)
	}
	return nil
}
