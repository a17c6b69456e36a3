package dcfhdupes

import (
	"cmp"
	"slices"

	"golang.org/x/sync/errgroup"
)

// Partition is the current grouping of the input files into candidate
// duplicate clusters. Each RefineBy call computes the next generation in
// full and then replaces the current one.
type Partition struct {
	clusters []*Cluster
	failures []KeyFailure
	workers  int
	observer Observer
}

// PartitionOption configures a Partition
type PartitionOption func(*Partition)

// WithWorkers bounds the number of clusters split concurrently
func WithWorkers(n int) PartitionOption {
	return func(p *Partition) {
		if n < 1 {
			n = 1
		}
		p.workers = n
	}
}

// WithObserver attaches a progress observer to every split
func WithObserver(obs Observer) PartitionOption {
	return func(p *Partition) {
		p.observer = obs
	}
}

// NewPartition creates an empty partition
func NewPartition(opts ...PartitionOption) *Partition {
	p := &Partition{
		clusters: make([]*Cluster, 0),
		failures: make([]KeyFailure, 0),
		workers:  1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Append adds a cluster. Disjointness with existing clusters is not checked.
func (p *Partition) Append(c *Cluster) {
	p.clusters = append(p.clusters, c)
}

// Clusters returns the clusters of the current generation
func (p *Partition) Clusters() []*Cluster {
	return slices.Clone(p.clusters)
}

// Len returns the number of clusters
func (p *Partition) Len() int {
	return len(p.clusters)
}

// Failures returns every member dropped because its key could not be computed
func (p *Partition) Failures() []KeyFailure {
	return slices.Clone(p.failures)
}

// Unreadable returns the failures caused by read errors
func (p *Partition) Unreadable() []KeyFailure {
	var out []KeyFailure
	for _, f := range p.failures {
		if !f.Excluded() {
			out = append(out, f)
		}
	}
	return out
}

// Excluded returns the failures caused by policy exclusions
func (p *Partition) Excluded() []KeyFailure {
	var out []KeyFailure
	for _, f := range p.failures {
		if f.Excluded() {
			out = append(out, f)
		}
	}
	return out
}

// RefineBy splits every cluster by keyFn and keeps the non-trivial children.
// The next generation is the concatenation of the children in original
// cluster order, whatever the order in which concurrent splits finish.
func (p *Partition) RefineBy(keyFn KeyFunc) {
	defer VerboseEnter()()

	children := make([][]*Cluster, len(p.clusters))
	failures := make([][]KeyFailure, len(p.clusters))

	if p.workers <= 1 || len(p.clusters) <= 1 {
		for i, c := range p.clusters {
			children[i], failures[i] = c.SplitAll(keyFn, p.observer)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(p.workers)
		for i, c := range p.clusters {
			g.Go(func() error {
				children[i], failures[i] = c.SplitAll(keyFn, p.observer)
				return nil
			})
		}
		_ = g.Wait()
	}

	next := make([]*Cluster, 0, len(p.clusters))
	for i := range children {
		next = append(next, children[i]...)
		p.failures = append(p.failures, failures[i]...)
	}

	if IsDebugEnabled("refine") {
		VerboseLog(2, "refine: %d clusters -> %d clusters", len(p.clusters), len(next))
	}
	p.clusters = next
}

// TotalFileCount returns the number of files across all clusters
func (p *Partition) TotalFileCount() int {
	total := 0
	for _, c := range p.clusters {
		total += c.Size()
	}
	return total
}

// ClusterSizeHistogram returns the cluster sizes in descending order
func (p *Partition) ClusterSizeHistogram() []int {
	sizes := make([]int, len(p.clusters))
	for i, c := range p.clusters {
		sizes[i] = c.Size()
	}
	slices.SortFunc(sizes, func(a, b int) int { return b - a })
	return sizes
}

// DirectorySummary counts the retained files under each parent directory
func (p *Partition) DirectorySummary() map[string]int {
	counts := make(map[string]int)
	for _, c := range p.clusters {
		for _, ref := range c.refs {
			counts[ref.Dir()]++
		}
	}
	return counts
}

// DirCount is one row of the directory summary
type DirCount struct {
	Dir   string `json:"dir" yaml:"dir"`
	Count int    `json:"count" yaml:"count"`
}

// SortedDirectorySummary returns the directory summary by count descending,
// ties broken by directory name
func (p *Partition) SortedDirectorySummary() []DirCount {
	counts := p.DirectorySummary()
	rows := make([]DirCount, 0, len(counts))
	for dir, n := range counts {
		rows = append(rows, DirCount{Dir: dir, Count: n})
	}
	slices.SortFunc(rows, func(a, b DirCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return cmp.Compare(a.Dir, b.Dir)
	})
	return rows
}
