package dcfhdupes

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigDefaults(t *testing.T) {
	// Missing file falls back to built-in defaults
	config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.ini"))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	all := config.GetAllConfig()
	if all.Hash.Default != "sha256" {
		t.Errorf("Expected default hash algorithm 'sha256', got '%s'", all.Hash.Default)
	}
	if all.Stages.PrefixBytes != DefaultPrefixBytes {
		t.Errorf("Expected prefix bytes %d, got %d", DefaultPrefixBytes, all.Stages.PrefixBytes)
	}
	if all.Stages.SkipEmpty {
		t.Error("Expected skip_empty to default to false")
	}
	if all.Performance.Workers != DefaultWorkers {
		t.Errorf("Expected %d workers, got %d", DefaultWorkers, all.Performance.Workers)
	}
	if all.Performance.HashBuffer != "2M" {
		t.Errorf("Expected hash buffer '2M', got '%s'", all.Performance.HashBuffer)
	}
	if all.Symlink.Mode != "all" {
		t.Errorf("Expected symlink mode 'all', got '%s'", all.Symlink.Mode)
	}
	if all.Output.Format != "human" || all.Output.Color != "auto" {
		t.Errorf("Unexpected output defaults: %+v", all.Output)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}

	// Defaults live in memory only
	if _, err := os.Stat(config.Path()); !os.IsNotExist(err) {
		t.Error("Loading a missing config must not create it")
	}
}

func TestConfigLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "dcfhdupes.ini")
	content := `[filehash]
default = sha512

[performance]
workers = 12

[output]
format = fdupes
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	all := config.GetAllConfig()
	if all.Hash.Default != "sha512" {
		t.Errorf("Expected hash 'sha512', got '%s'", all.Hash.Default)
	}
	if all.Performance.Workers != 12 {
		t.Errorf("Expected 12 workers, got %d", all.Performance.Workers)
	}
	if all.Output.Format != "fdupes" {
		t.Errorf("Expected format 'fdupes', got '%s'", all.Output.Format)
	}

	// Keys absent from the file keep their defaults
	if all.Stages.PrefixBytes != DefaultPrefixBytes {
		t.Errorf("Expected default prefix bytes, got %d", all.Stages.PrefixBytes)
	}
	if all.Performance.HashBuffer != DefaultHashBuffer {
		t.Errorf("Expected default hash buffer, got '%s'", all.Performance.HashBuffer)
	}
}

func TestConfigLoadMalformed(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "broken.ini")
	if err := os.WriteFile(configPath, []byte("[unterminated\nkey = value\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	if _, err := LoadConfig(configPath); err == nil {
		t.Error("Expected error for malformed config file")
	}
}

func TestConfigOverrides(t *testing.T) {
	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	err = config.ApplyOverrides([]string{
		"hash:sha1",
		"format:json",
		"level:2",
		"debug:scan,split",
		"workers:8",
		"skip_empty:true",
		"symlinks:none",
	})
	if err != nil {
		t.Fatalf("Failed to apply overrides: %v", err)
	}

	all := config.GetAllConfig()

	if all.Hash.Default != "sha1" {
		t.Errorf("Expected hash algorithm 'sha1' after override, got '%s'", all.Hash.Default)
	}
	if all.Output.Format != "json" {
		t.Errorf("Expected output format 'json' after override, got '%s'", all.Output.Format)
	}
	if all.Verbose.Level != 2 {
		t.Errorf("Expected verbose level 2 after override, got %d", all.Verbose.Level)
	}
	if all.Verbose.Debug != "scan,split" {
		t.Errorf("Expected debug flags 'scan,split' after override, got '%s'", all.Verbose.Debug)
	}
	if all.Performance.Workers != 8 {
		t.Errorf("Expected 8 workers after override, got %d", all.Performance.Workers)
	}
	if !all.Stages.SkipEmpty {
		t.Error("Expected skip_empty after override")
	}
	if all.Symlink.Mode != "none" {
		t.Errorf("Expected symlink mode 'none' after override, got '%s'", all.Symlink.Mode)
	}
}

func TestConfigOverrideErrors(t *testing.T) {
	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	for _, override := range []string{"novalue", "unknown:1"} {
		if err := config.ApplyOverrides([]string{override}); err == nil {
			t.Errorf("Override '%s' should be rejected", override)
		}
	}
}

func TestHashAlgorithmValidation(t *testing.T) {
	testCases := []struct {
		algorithm string
		valid     bool
	}{
		{"md5", true},
		{"sha1", true},
		{"sha256", true},
		{"sha512", true},
		{"SHA1", true},   // case insensitive
		{"SHA256", true}, // case insensitive
		{"blake3", false},
		{"invalid", false},
		{"", false},
	}

	for _, tc := range testCases {
		err := ValidateHashAlgorithm(tc.algorithm)
		if tc.valid && err != nil {
			t.Errorf("Algorithm '%s' should be valid but got error: %v", tc.algorithm, err)
		}
		if !tc.valid && err == nil {
			t.Errorf("Algorithm '%s' should be invalid but no error returned", tc.algorithm)
		}
	}
}

func TestConfigValidation(t *testing.T) {
	t.Run("OutputFormat", func(t *testing.T) {
		testCases := []struct {
			format string
			valid  bool
		}{
			{"human", true},
			{"json", true},
			{"yaml", true},
			{"fdupes", true},
			{"Human", true}, // case insensitive
			{"JSON", true},  // case insensitive
			{"xml", false},
			{"", false},
		}

		for _, tc := range testCases {
			err := ValidateOutputFormat(tc.format)
			if tc.valid && err != nil {
				t.Errorf("Format '%s' should be valid but got error: %v", tc.format, err)
			}
			if !tc.valid && err == nil {
				t.Errorf("Format '%s' should be invalid but no error returned", tc.format)
			}
		}
	})

	t.Run("VerboseLevel", func(t *testing.T) {
		for level, valid := range map[int]bool{-1: false, 0: true, 1: true, 2: true, 3: true, 4: false} {
			err := ValidateVerboseLevel(level)
			if valid != (err == nil) {
				t.Errorf("Level %d: expected valid=%v, got error %v", level, valid, err)
			}
		}
	})

	t.Run("Workers", func(t *testing.T) {
		for workers, valid := range map[int]bool{0: false, 1: true, MaxWorkers: true, MaxWorkers + 1: false} {
			err := ValidateWorkers(workers)
			if valid != (err == nil) {
				t.Errorf("Workers %d: expected valid=%v, got error %v", workers, valid, err)
			}
		}
	})

	t.Run("PrefixBytes", func(t *testing.T) {
		for n, valid := range map[int]bool{0: false, 1: true, 4096: true, 1024*1024 + 1: false} {
			err := ValidatePrefixBytes(n)
			if valid != (err == nil) {
				t.Errorf("Prefix bytes %d: expected valid=%v, got error %v", n, valid, err)
			}
		}
	})

	t.Run("SymlinkMode", func(t *testing.T) {
		for mode, valid := range map[string]bool{"all": true, "Contained": true, "none": true, "some": false} {
			err := ValidateSymlinkMode(mode)
			if valid != (err == nil) {
				t.Errorf("Symlink mode '%s': expected valid=%v, got error %v", mode, valid, err)
			}
		}
	})

	t.Run("ColorAndIndent", func(t *testing.T) {
		if err := ValidateColorMode("sometimes"); err == nil {
			t.Error("Expected error for unknown colour mode")
		}
		if err := ValidateIndentWidth(17); err == nil {
			t.Error("Expected error for indent width 17")
		}
		if err := ValidateIndentWidth(0); err != nil {
			t.Errorf("Indent width 0 should be valid: %v", err)
		}
	})

	t.Run("WholeConfig", func(t *testing.T) {
		config, err := LoadConfig("")
		if err != nil {
			t.Fatalf("Failed to load config: %v", err)
		}
		if err := config.ApplyOverrides([]string{"hash_buffer:lots"}); err != nil {
			t.Fatalf("Failed to apply override: %v", err)
		}
		if err := config.Validate(); err == nil {
			t.Error("Expected validation error for bad hash buffer")
		}
	})
}

func TestConfigSaveAndReload(t *testing.T) {
	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if err := config.Save(); err == nil {
		t.Error("Save without a path should fail")
	}

	if err := config.ApplyOverrides([]string{"prefix_bytes:128", "color:never"}); err != nil {
		t.Fatalf("Failed to apply overrides: %v", err)
	}

	configPath := filepath.Join(t.TempDir(), "saved.ini")
	if err := config.SaveTo(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	reloaded, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to reload config: %v", err)
	}
	if got := reloaded.GetStageConfig().PrefixBytes; got != 128 {
		t.Errorf("Expected prefix bytes 128 after reload, got %d", got)
	}
	if got := reloaded.GetOutputConfig().Color; got != "never" {
		t.Errorf("Expected colour 'never' after reload, got '%s'", got)
	}

	var buf bytes.Buffer
	if _, err := reloaded.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	if !strings.Contains(buf.String(), "[stages]") || !strings.Contains(buf.String(), "128") {
		t.Errorf("Unexpected ini output:\n%s", buf.String())
	}
}

func TestConfigValidateRejectsMalformedValues(t *testing.T) {
	tests := []struct {
		content string
		errMsg  string
	}{
		{"[performance]\nworkers = abc\n", "performance.workers"},
		{"[stages]\nprefix_bytes = 1k\n", "stages.prefix_bytes"},
		{"[output]\nshow_clusters = maybe\n", "output.show_clusters"},
		{"[verbose]\nlevel = high\n", "verbose.level"},
	}

	for _, tt := range tests {
		t.Run(tt.errMsg, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "bad.ini")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write config: %v", err)
			}
			config, err := LoadConfig(configPath)
			if err != nil {
				t.Fatalf("Failed to load config: %v", err)
			}
			err = config.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Expected validation error naming %s, got %v", tt.errMsg, err)
			}
		})
	}

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if err := config.ApplyOverrides([]string{"skip_empty:yes", "workers:2"}); err != nil {
		t.Fatalf("Failed to apply overrides: %v", err)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Well-formed values should validate: %v", err)
	}
}
