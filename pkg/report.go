package dcfhdupes

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

// ReportOptions controls report rendering
type ReportOptions struct {
	Format       string // human, json, yaml, fdupes
	IndentWidth  int    // spaces per indentation level (human)
	ShowClusters bool   // list every cluster with file sizes (human)
	Color        bool   // colour section headers (human)
}

// DefaultReportOptions returns the options used when no config is given
func DefaultReportOptions() ReportOptions {
	return ReportOptions{
		Format:      DefaultOutputFormat,
		IndentWidth: DefaultIndentWidth,
	}
}

// ReportOptionsFromConfig builds report options from the output section.
// isTerminal decides the "auto" colour mode.
func ReportOptionsFromConfig(cfg *Config, isTerminal bool) ReportOptions {
	out := cfg.GetOutputConfig()
	useColor := false
	switch strings.ToLower(out.Color) {
	case "always":
		useColor = true
	case "auto":
		useColor = isTerminal
	}
	return ReportOptions{
		Format:       strings.ToLower(out.Format),
		IndentWidth:  out.IndentWidth,
		ShowClusters: out.ShowClusters,
		Color:        useColor,
	}
}

// ReportDocument is the structured form of a report (json and yaml)
type ReportDocument struct {
	Clusters   int              `json:"clusters" yaml:"clusters"`
	Files      int              `json:"files" yaml:"files"`
	Sizes      []int            `json:"cluster_sizes" yaml:"cluster_sizes"`
	ByDir      []DirCount       `json:"directories" yaml:"directories"`
	Groups     []DuplicateGroup `json:"groups" yaml:"groups"`
	Unreadable []string         `json:"unreadable,omitempty" yaml:"unreadable,omitempty"`
	Excluded   []string         `json:"excluded,omitempty" yaml:"excluded,omitempty"`
}

// NewReportDocument takes a snapshot of p
func NewReportDocument(p *Partition) *ReportDocument {
	doc := &ReportDocument{
		Clusters: p.Len(),
		Files:    p.TotalFileCount(),
		Sizes:    p.ClusterSizeHistogram(),
		ByDir:    p.SortedDirectorySummary(),
		Groups:   p.DuplicateGroups(),
	}
	for _, f := range p.Unreadable() {
		doc.Unreadable = append(doc.Unreadable, f.Ref.Path())
	}
	for _, f := range p.Excluded() {
		doc.Excluded = append(doc.Excluded, f.Ref.Path())
	}
	return doc
}

// WriteReport renders p to w in the requested format
func WriteReport(w io.Writer, p *Partition, opts ReportOptions) error {
	switch strings.ToLower(opts.Format) {
	case "", "human":
		return writeLines(w, humanReport(p, opts))
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", strings.Repeat(" ", max(opts.IndentWidth, 1)))
		return enc.Encode(NewReportDocument(p))
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(max(opts.IndentWidth, 2))
		if err := enc.Encode(NewReportDocument(p)); err != nil {
			return err
		}
		return enc.Close()
	case "fdupes":
		return writeLines(w, fdupesReport(p))
	default:
		return fmt.Errorf("unsupported output format: %s", opts.Format)
	}
}

// humanReport renders the population report, one buffer per line
func humanReport(p *Partition, opts ReportOptions) [][]byte {
	unit := strings.Repeat(" ", max(opts.IndentWidth, 0))
	indent := func(level int) string { return strings.Repeat(unit, level) }

	header := color.New(color.FgCyan, color.Bold)
	warn := color.New(color.FgYellow)
	if opts.Color {
		header.EnableColor()
		warn.EnableColor()
	} else {
		header.DisableColor()
		warn.DisableColor()
	}

	var lines [][]byte
	add := func(format string, args ...interface{}) {
		lines = append(lines, []byte(fmt.Sprintf(format, args...)+"\n"))
	}

	add("%s%s", indent(0), header.Sprint("Population report:"))
	add("%sNumber of (clusters, files): (%d, %d)", indent(1), p.Len(), p.TotalFileCount())
	add("%sCluster summary of cluster sizes: %s", indent(1), joinInts(p.ClusterSizeHistogram()))

	add("%s%s", indent(1), header.Sprint("Cluster summary by directory:"))
	for _, row := range p.SortedDirectorySummary() {
		add("%sDupe count=%5d Dir=%s", indent(2), row.Count, row.Dir)
	}

	if n := len(p.Unreadable()); n > 0 {
		add("%s%s", indent(1), warn.Sprintf("Unreadable files: %d", n))
	}
	if n := len(p.Excluded()); n > 0 {
		add("%sExcluded files: %d", indent(1), n)
	}

	if opts.ShowClusters {
		add("%s%s", indent(1), header.Sprint("Individual clusters:"))
		for i, c := range p.clusters {
			add("%sCluster #%d:", indent(2), i)
			for _, ref := range c.refs {
				add("%sSize=%10d: File=%s", indent(3), FileSize(ref), ref)
			}
		}
	}

	return lines
}

// fdupesReport renders one path per line with a blank line after each cluster
func fdupesReport(p *Partition) [][]byte {
	var lines [][]byte
	for _, c := range p.clusters {
		for _, ref := range c.refs {
			lines = append(lines, []byte(ref.Path()+"\n"))
		}
		lines = append(lines, []byte("\n"))
	}
	return lines
}
