package dcfhdupes

import (
	"encoding/hex"
)

// DuplicateGroup represents one cluster in exported form
type DuplicateGroup struct {
	Key   string   `json:"key,omitempty" yaml:"key,omitempty"`
	Size  int64    `json:"size" yaml:"size"`
	Files []string `json:"files" yaml:"files"`
	Count int      `json:"count" yaml:"count"`
}

// DuplicateGroups returns the current clusters in exported form. Key holds
// the hex form of the key of the last refinement (the content digest with the
// default stages), Size the byte size of the first member (-1 when it can no
// longer be stat'ed).
func (p *Partition) DuplicateGroups() []DuplicateGroup {
	groups := make([]DuplicateGroup, 0, len(p.clusters))
	for _, c := range p.clusters {
		files := make([]string, len(c.refs))
		for i, ref := range c.refs {
			files[i] = ref.Path()
		}

		group := DuplicateGroup{
			Files: files,
			Count: len(files),
			Size:  -1,
		}
		if len(c.key) > 0 {
			group.Key = hex.EncodeToString(c.key)
		}
		if len(c.refs) > 0 {
			group.Size = FileSize(c.refs[0])
		}
		groups = append(groups, group)
	}
	return groups
}
