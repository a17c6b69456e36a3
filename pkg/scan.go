package dcfhdupes

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sys/unix"
)

// ============================================================================
// TYPE DEFINITIONS
// ============================================================================

// ScanStats summarises one traversal
type ScanStats struct {
	Files   int `json:"files" yaml:"files"`
	Dirs    int `json:"dirs" yaml:"dirs"`
	Skipped int `json:"skipped" yaml:"skipped"` // unreadable or vanished entries
	Ignored int `json:"ignored" yaml:"ignored"` // entries matching an ignore pattern
	Cycles  int `json:"cycles" yaml:"cycles"`   // directories reached a second time
}

// inputRoot is one command-line path: its absolute form for comparisons and
// the form the user typed for display
type inputRoot struct {
	abs     string
	display string
}

// devIno identifies a directory independently of the path used to reach it
type devIno struct {
	dev uint64
	ino uint64
}

// Walker expands input paths into a flat, sorted list of regular files
type Walker struct {
	symlinkMode   string
	ignoreManager *IgnoreManager
}

// NewWalker creates a walker. ignoreManager may be nil.
func NewWalker(symlinkMode string, ignoreManager *IgnoreManager) *Walker {
	if ignoreManager == nil {
		ignoreManager = NewIgnoreManager("")
	}
	return &Walker{
		symlinkMode:   strings.ToLower(symlinkMode),
		ignoreManager: ignoreManager,
	}
}

// walkState is the per-Walk bookkeeping
type walkState struct {
	stats   ScanStats
	visited map[devIno]bool
	emitted map[string]bool
	refs    []FileRef
}

// ============================================================================
// FILESYSTEM SCANNING FUNCTIONS
// ============================================================================

// Walk scans paths and returns every regular file found, each at most once.
// Unreadable entries are skipped and counted, never fatal.
func (w *Walker) Walk(paths []string) ([]FileRef, ScanStats, error) {
	defer VerboseEnter()()

	if len(paths) == 0 {
		return nil, ScanStats{}, ErrNoInput
	}
	if err := w.ignoreManager.LoadIgnorePatterns(); err != nil {
		return nil, ScanStats{}, fmt.Errorf("failed to load ignore patterns: %w", err)
	}

	state := &walkState{
		visited: make(map[devIno]bool),
		emitted: make(map[string]bool),
		refs:    make([]FileRef, 0),
	}

	var roots []inputRoot
	for _, inputPath := range paths {
		absPath, err := filepath.Abs(inputPath)
		if err != nil {
			VerboseLog(1, "skipping %s: %v", inputPath, err)
			state.stats.Skipped++
			continue
		}
		roots = append(roots, inputRoot{abs: filepath.Clean(absPath), display: filepath.Clean(inputPath)})
	}

	roots = w.deduplicateRoots(roots)
	if IsDebugEnabled("scan") {
		VerboseLog(3, "scan: deduplicated roots: %v", roots)
	}

	for _, root := range roots {
		w.scanPathRecursive(root, state)
	}

	state.stats.Files = len(state.refs)
	return state.refs, state.stats, nil
}

// deduplicateRoots sorts roots and removes any that lie under another root
// Example: ["/home/user/docs", "/home/user/docs/file.txt", "/home/user/photos"]
//
//	-> ["/home/user/docs", "/home/user/photos"]
func (w *Walker) deduplicateRoots(roots []inputRoot) []inputRoot {
	if len(roots) <= 1 {
		return roots
	}

	sort.SliceStable(roots, func(i, j int) bool {
		return roots[i].abs < roots[j].abs
	})

	var deduplicated []inputRoot
	for i, root := range roots {
		isRedundant := false

		for j := 0; j < i; j++ {
			prev := roots[j].abs
			if root.abs == prev || isPathUnder(root.abs, prev) {
				isRedundant = true
				break
			}
		}

		if !isRedundant {
			deduplicated = append(deduplicated, root)
		}
	}

	return deduplicated
}

// isPathUnder checks if childPath is under parentPath
func isPathUnder(childPath, parentPath string) bool {
	childPath = filepath.Clean(childPath)
	parentPath = filepath.Clean(parentPath)

	if childPath == parentPath {
		return false
	}

	parentWithSep := parentPath
	if !strings.HasSuffix(parentWithSep, string(filepath.Separator)) {
		parentWithSep += string(filepath.Separator)
	}
	return strings.HasPrefix(childPath, parentWithSep)
}

// isPathContained checks if targetPath is containerPath or lies under it
func isPathContained(targetPath, containerPath string) bool {
	targetPath = filepath.Clean(targetPath)
	containerPath = filepath.Clean(containerPath)
	return targetPath == containerPath || isPathUnder(targetPath, containerPath)
}

// displayPath maps an absolute path under root back to the form the user typed
func (root inputRoot) displayPath(absPath string) string {
	rel, err := filepath.Rel(root.abs, absPath)
	if err != nil || rel == "." {
		return root.display
	}
	return filepath.Join(root.display, rel)
}

// scanPathRecursive walks one root in lexicographic order, appending files
// to state.refs
func (w *Walker) scanPathRecursive(root inputRoot, state *walkState) {
	if IsDebugEnabled("scan") {
		VerboseLog(3, "scan: starting root %s", root.display)
	}

	pathQueue := []string{root.abs}

	for len(pathQueue) > 0 {
		currentPath := pathQueue[0]
		pathQueue = pathQueue[1:]

		info, err := os.Lstat(currentPath)
		if err != nil {
			VerboseLog(1, "skipping %s: %v", root.displayPath(currentPath), err)
			state.stats.Skipped++
			continue
		}

		if currentPath != root.abs && w.ignoreManager.HasPatterns() {
			relPath, err := filepath.Rel(root.abs, currentPath)
			if err == nil && w.ignoreManager.ShouldIgnore(relPath) {
				state.stats.Ignored++
				continue
			}
		}

		isSymlink := info.Mode()&os.ModeSymlink != 0
		if isSymlink {
			targetInfo, err := os.Stat(currentPath)
			if err != nil {
				VerboseLog(1, "skipping broken symlink %s: %v", root.displayPath(currentPath), err)
				state.stats.Skipped++
				continue
			}

			// The symlink mode applies to links found while walking; a root
			// named on the command line is always followed
			if targetInfo.IsDir() && currentPath != root.abs && !w.followDirSymlink(currentPath, root) {
				continue
			}
			info = targetInfo
		}

		if info.IsDir() {
			id, err := statDevIno(currentPath)
			if err != nil {
				VerboseLog(1, "skipping %s: %v", root.displayPath(currentPath), err)
				state.stats.Skipped++
				continue
			}
			if state.visited[id] {
				if IsDebugEnabled("scan") {
					VerboseLog(2, "scan: directory %s already visited", root.displayPath(currentPath))
				}
				state.stats.Cycles++
				continue
			}
			state.visited[id] = true

			entries, err := os.ReadDir(currentPath)
			if err != nil {
				VerboseLog(1, "skipping directory %s: %v", root.displayPath(currentPath), err)
				state.stats.Skipped++
				continue
			}
			state.stats.Dirs++

			newPaths := make([]string, 0, len(entries))
			for _, entry := range entries {
				newPaths = append(newPaths, filepath.Join(currentPath, entry.Name()))
			}

			pathQueue = insertSorted(pathQueue, newPaths)

		} else if info.Mode().IsRegular() {
			if state.emitted[currentPath] {
				continue
			}
			state.emitted[currentPath] = true

			ref := FileRef(root.displayPath(currentPath))
			if IsDebugEnabled("scan") {
				VerboseLog(3, "scan: found file %s", ref)
			}
			state.refs = append(state.refs, ref)
		}
	}
}

// followDirSymlink applies the symlink mode to a symlink whose target is a directory
func (w *Walker) followDirSymlink(linkPath string, root inputRoot) bool {
	switch w.symlinkMode {
	case "none":
		return false
	case "contained":
		target, err := filepath.EvalSymlinks(linkPath)
		if err != nil {
			return false
		}
		rootTarget, err := filepath.EvalSymlinks(root.abs)
		if err != nil {
			rootTarget = root.abs
		}
		return isPathContained(target, rootTarget)
	default:
		return true
	}
}

// statDevIno returns the device and inode of path, following symlinks
func statDevIno(path string) (devIno, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return devIno{}, err
	}
	return devIno{dev: uint64(st.Dev), ino: uint64(st.Ino)}, nil
}

// insertSorted inserts new paths into an existing sorted slice maintaining order
func insertSorted(existing []string, newPaths []string) []string {
	if len(newPaths) == 0 {
		return existing
	}
	sort.Strings(newPaths)
	if len(existing) == 0 {
		return newPaths
	}

	result := make([]string, 0, len(existing)+len(newPaths))

	i, j := 0, 0
	for i < len(existing) && j < len(newPaths) {
		if existing[i] <= newPaths[j] {
			result = append(result, existing[i])
			i++
		} else {
			result = append(result, newPaths[j])
			j++
		}
	}

	result = append(result, existing[i:]...)
	result = append(result, newPaths[j:]...)

	return result
}
