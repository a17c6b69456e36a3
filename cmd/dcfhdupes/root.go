package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	dcfhdupes "github.com/mattkeenan/dcfhdupes/pkg"
)

// rootOptions holds the flags of the root command
type rootOptions struct {
	configPath   string
	format       string
	showClusters bool
	workers      int
	prefixBytes  int
	hash         string
	hashBuffer   string
	skipEmpty    bool
	symlinks     string
	ignoreFile   string
	color        string
	noProgress   bool
	verbose      int
	debug        string
	set          []string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "dcfhdupes [flags] PATH...",
		Short: "Find groups of byte-identical files",
		Long: `dcfhdupes finds groups of byte-identical files under the given paths.

Files are compared in stages of increasing cost: byte size, the first bytes of
content, then a digest of the full content. Only files that agree on every
earlier stage are read by the next one. Nothing is deleted or linked; the
result is a report.`,
		Version:       version,
		Args:          cobra.MinimumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "ini configuration file")
	flags.StringVarP(&opts.format, "format", "f", dcfhdupes.DefaultOutputFormat, "report format: human, json, yaml, fdupes")
	flags.BoolVarP(&opts.showClusters, "show-clusters", "l", false, "list every cluster with file sizes")
	flags.IntVarP(&opts.workers, "workers", "j", dcfhdupes.DefaultWorkers, "clusters split concurrently")
	flags.IntVar(&opts.prefixBytes, "prefix-bytes", dcfhdupes.DefaultPrefixBytes, "bytes compared by the prefix stage")
	flags.StringVar(&opts.hash, "hash", dcfhdupes.DefaultHashAlgorithm, "content digest: md5, sha1, sha256, sha512")
	flags.StringVar(&opts.hashBuffer, "hash-buffer", dcfhdupes.DefaultHashBuffer, "read buffer for hashing (e.g. 512K, 2M)")
	flags.BoolVar(&opts.skipEmpty, "skip-empty", false, "exclude zero-length files")
	flags.StringVar(&opts.symlinks, "symlinks", dcfhdupes.DefaultSymlinkMode, "directory symlinks to follow: all, contained, none")
	flags.StringVar(&opts.ignoreFile, "ignore-file", "", "file of regex patterns for paths to skip")
	flags.StringVar(&opts.color, "color", "auto", "colour the report: auto, always, never")
	flags.BoolVar(&opts.noProgress, "no-progress", false, "do not print progress on stderr")
	flags.CountVarP(&opts.verbose, "verbose", "v", "increase verbosity (repeatable)")
	flags.StringVar(&opts.debug, "debug", "", "debug flags (comma-separated: scan, split, refine, hash)")
	flags.StringArrayVar(&opts.set, "set", nil, "config override key:value (repeatable)")

	cmd.AddCommand(newConfigCmd())
	return cmd
}

// flagOverrides turns explicitly set flags into config overrides, so flags
// win over the config file and unset flags leave it alone
func flagOverrides(cmd *cobra.Command, opts *rootOptions) []string {
	var overrides []string
	add := func(flag, key, value string) {
		if cmd.Flags().Changed(flag) {
			overrides = append(overrides, key+":"+value)
		}
	}

	add("format", "format", opts.format)
	add("show-clusters", "show_clusters", strconv.FormatBool(opts.showClusters))
	add("workers", "workers", strconv.Itoa(opts.workers))
	add("prefix-bytes", "prefix_bytes", strconv.Itoa(opts.prefixBytes))
	add("hash", "hash", opts.hash)
	add("hash-buffer", "hash_buffer", opts.hashBuffer)
	add("skip-empty", "skip_empty", strconv.FormatBool(opts.skipEmpty))
	add("symlinks", "symlinks", opts.symlinks)
	add("ignore-file", "ignore_file", opts.ignoreFile)
	add("color", "color", opts.color)
	add("debug", "debug", opts.debug)

	return append(overrides, opts.set...)
}

// loadConfig loads the config file and applies flag overrides
func loadConfig(cmd *cobra.Command, opts *rootOptions) (*dcfhdupes.Config, error) {
	cfg, err := dcfhdupes.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyOverrides(flagOverrides(cmd, opts)); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runFind(cmd *cobra.Command, opts *rootOptions, paths []string) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	verboseConfig := cfg.GetVerboseConfig()
	dcfhdupes.SetVerboseLevel(max(verboseConfig.Level, opts.verbose))
	dcfhdupes.SetDebugFlags(verboseConfig.Debug)
	dcfhdupes.SetLogOutput(cmd.ErrOrStderr())

	var observer dcfhdupes.Observer
	if !opts.noProgress && isTerminal(cmd.ErrOrStderr()) {
		observer = dcfhdupes.NewProgressObserver(cmd.ErrOrStderr())
	}

	finder, err := dcfhdupes.NewFinder(cfg, observer)
	if err != nil {
		return err
	}

	result, err := finder.Run(paths)
	if err != nil {
		return err
	}

	reportOpts := dcfhdupes.ReportOptionsFromConfig(cfg, isTerminal(cmd.OutOrStdout()))
	if err := dcfhdupes.WriteReport(cmd.OutOrStdout(), result.Partition, reportOpts); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// isTerminal reports whether w is a terminal
func isTerminal(w interface{}) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
