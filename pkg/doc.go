// Package dcfhdupes finds groups of byte-identical files by progressive
// refinement instead of pairwise full-content comparison.
//
// # Core API
//
// A Partition holds Clusters of candidate duplicates. Each RefineBy call
// applies one key function to every Cluster and keeps only the sub-clusters
// with two or more members:
//
//	p := dcfhdupes.NewPartition(dcfhdupes.WithWorkers(4))
//	p.Append(dcfhdupes.NewCluster(refs...))
//	p.RefineBy(dcfhdupes.SizeKeyFunc(false))
//	p.RefineBy(dcfhdupes.PrefixKeyFunc(32))
//	p.RefineBy(dcfhdupes.HashKeyFunc(algorithm, 2*1024*1024))
//
// Cheap keys run before expensive ones, so the full hash is only computed for
// files that already agree on size and leading bytes.
//
// # Finder
//
// Finder wires traversal, the default stages and configuration together:
//
//	cfg, _ := dcfhdupes.LoadConfig("")
//	f, _ := dcfhdupes.NewFinder(cfg, nil)
//	result, err := f.Run([]string{"/srv/photos", "/mnt/backup"})
//	dcfhdupes.WriteReport(os.Stdout, result.Partition, dcfhdupes.ReportOptionsFromConfig(cfg, false))
//
// # Errors
//
// Key functions return explicit errors. A member whose key cannot be
// computed is moved to the partition's failure bucket and never joins a
// duplicate cluster.
package dcfhdupes
