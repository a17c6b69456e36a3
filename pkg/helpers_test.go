package dcfhdupes

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
)

// writeTree creates files under dir and returns their paths keyed by name
func writeTree(t *testing.T, dir string, files map[string]string) map[string]FileRef {
	t.Helper()
	refs := make(map[string]FileRef, len(files))
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
		refs[name] = FileRef(path)
	}
	return refs
}

// mapKey keys refs from a fixed table; refs missing from the table fail
func mapKey(table map[FileRef]string) KeyFunc {
	return func(ref FileRef) (Key, error) {
		v, ok := table[ref]
		if !ok {
			return nil, errors.New("no key for " + string(ref))
		}
		return Key(v), nil
	}
}

// membership renders a partition as sorted member lists, ignoring cluster order
func membership(p *Partition) [][]string {
	var out [][]string
	for _, c := range p.Clusters() {
		var members []string
		for _, ref := range c.Members() {
			members = append(members, string(ref))
		}
		sort.Strings(members)
		out = append(out, members)
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

// recordingObserver remembers every notification
type recordingObserver struct {
	mu       sync.Mutex
	computed []FileRef
	failed   []FileRef
}

func (r *recordingObserver) KeyComputed(ref FileRef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.computed = append(r.computed, ref)
}

func (r *recordingObserver) KeyFailed(ref FileRef, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, ref)
}
