package dcfhdupes

import (
	"fmt"
	"strings"
)

// Stage is one refinement step: a named key function
type Stage struct {
	Name string
	Key  KeyFunc
}

// StageOptions tunes the default stage sequence
type StageOptions struct {
	PrefixBytes   int
	SkipEmpty     bool
	HashAlgorithm string
	HashBuffer    int
}

// StageOptionsFromConfig reads stage options from cfg
func StageOptionsFromConfig(cfg *Config) (StageOptions, error) {
	all := cfg.GetAllConfig()
	bufferSize, err := ParseHumanSize(all.Performance.HashBuffer)
	if err != nil {
		return StageOptions{}, fmt.Errorf("invalid hash buffer: %w", err)
	}
	return StageOptions{
		PrefixBytes:   all.Stages.PrefixBytes,
		SkipEmpty:     all.Stages.SkipEmpty,
		HashAlgorithm: all.Hash.Default,
		HashBuffer:    bufferSize,
	}, nil
}

// DefaultStages returns size, prefix and full-hash stages, cheapest first
func DefaultStages(opts StageOptions) ([]Stage, error) {
	if err := ValidatePrefixBytes(opts.PrefixBytes); err != nil {
		return nil, err
	}
	if opts.HashBuffer <= 0 {
		return nil, fmt.Errorf("invalid hash buffer size: %d", opts.HashBuffer)
	}
	algorithm, err := GetHashAlgorithm(opts.HashAlgorithm)
	if err != nil {
		return nil, err
	}

	return []Stage{
		{Name: StageSize, Key: SizeKeyFunc(opts.SkipEmpty)},
		{Name: StagePrefix, Key: PrefixKeyFunc(opts.PrefixBytes)},
		{Name: StageHash, Key: HashKeyFunc(algorithm, opts.HashBuffer)},
	}, nil
}

// StageStats records the partition after one stage
type StageStats struct {
	Name     string `json:"name" yaml:"name"`
	Clusters int    `json:"clusters" yaml:"clusters"`
	Files    int    `json:"files" yaml:"files"`
	Failed   int    `json:"failed" yaml:"failed"`
}

// Result is the outcome of one Finder run
type Result struct {
	Partition *Partition
	Scan      ScanStats
	Stages    []StageStats
}

// stageEnder is implemented by observers that want to know when a stage ends
type stageEnder interface {
	EndStage()
}

// announcer is implemented by observers that print run milestones
type announcer interface {
	Announce(msg string)
}

// announce logs msg and forwards it to the observer when it prints milestones
func (f *Finder) announce(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if a, ok := f.observer.(announcer); ok {
		a.Announce(msg)
		return
	}
	VerboseLog(1, "%s", msg)
}

// Finder runs traversal followed by the refinement stages
type Finder struct {
	Stages   []Stage
	walker   *Walker
	workers  int
	observer Observer
}

// NewFinder builds a finder from cfg. obs may be nil.
func NewFinder(cfg *Config, obs Observer) (*Finder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	opts, err := StageOptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	stages, err := DefaultStages(opts)
	if err != nil {
		return nil, err
	}

	all := cfg.GetAllConfig()
	return &Finder{
		Stages:   stages,
		walker:   NewWalker(all.Symlink.Mode, NewIgnoreManager(all.Ignore.File)),
		workers:  all.Performance.Workers,
		observer: obs,
	}, nil
}

// Run walks paths, seeds one cluster with every file found and applies the
// stages in order. The surviving clusters are the duplicate groups.
func (f *Finder) Run(paths []string) (*Result, error) {
	defer VerboseEnter()()

	refs, scanStats, err := f.walker.Walk(paths)
	if err != nil {
		return nil, err
	}
	f.announce("Read in %d files", len(refs))
	if scanStats.Skipped > 0 {
		Warnf("skipped %d unreadable entries during scan", scanStats.Skipped)
	}

	partition := NewPartition(WithWorkers(f.workers), WithObserver(f.observer))
	partition.Append(NewCluster(refs...))

	return f.Refine(partition, scanStats), nil
}

// Refine applies the stages to an already seeded partition
func (f *Finder) Refine(partition *Partition, scanStats ScanStats) *Result {
	result := &Result{
		Partition: partition,
		Scan:      scanStats,
		Stages:    make([]StageStats, 0, len(f.Stages)),
	}

	for _, stage := range f.Stages {
		f.announce("Deduping by %s....", stageLabel(stage.Name))
		before := len(partition.Failures())

		partition.RefineBy(stage.Key)
		if ender, ok := f.observer.(stageEnder); ok {
			ender.EndStage()
		}

		stats := StageStats{
			Name:     stage.Name,
			Clusters: partition.Len(),
			Files:    partition.TotalFileCount(),
			Failed:   len(partition.Failures()) - before,
		}
		result.Stages = append(result.Stages, stats)
		VerboseLog(2, "stage %s: %d clusters, %d files, %d failed", stats.Name, stats.Clusters, stats.Files, stats.Failed)
	}

	return result
}

// stageLabel turns a stage name into the phrase used in progress messages
func stageLabel(name string) string {
	switch name {
	case StageSize:
		return "file size"
	case StagePrefix:
		return "initial chunk"
	case StageHash:
		return "content hash"
	default:
		return strings.ReplaceAll(name, "_", " ")
	}
}
