package dcfhdupes

import (
	"iter"
	"slices"
)

// Cluster is an ordered group of files that every key applied so far
// considers equal. Refinement never mutates a Cluster; Split returns new ones.
type Cluster struct {
	refs []FileRef
	key  Key
}

// NewCluster creates a cluster holding a copy of refs
func NewCluster(refs ...FileRef) *Cluster {
	owned := make([]FileRef, len(refs))
	copy(owned, refs)
	return &Cluster{refs: owned}
}

// Size returns the number of members
func (c *Cluster) Size() int {
	return len(c.refs)
}

// Members returns a copy of the members in order
func (c *Cluster) Members() []FileRef {
	return slices.Clone(c.refs)
}

// Key returns the key shared by the members under the split that produced
// this cluster, nil for a seed cluster
func (c *Cluster) Key() Key {
	return c.key
}

// Split partitions the members by keyFn and yields one new Cluster per group
// of two or more equal keys. Keys are computed when iteration starts, once
// per member. Groups come out in first-seen order of their key; members keep
// their relative order. Members whose key fails are reported to obs and
// dropped.
func (c *Cluster) Split(keyFn KeyFunc, obs Observer) iter.Seq[*Cluster] {
	return func(yield func(*Cluster) bool) {
		for _, child := range c.split(keyFn, observerOrNop(obs), nil) {
			if !yield(child) {
				return
			}
		}
	}
}

// SplitAll is the eager form of Split that also returns the failed members
func (c *Cluster) SplitAll(keyFn KeyFunc, obs Observer) ([]*Cluster, []KeyFailure) {
	var failures []KeyFailure
	children := c.split(keyFn, observerOrNop(obs), &failures)
	return children, failures
}

// split sorts members by (key, position) and groups equal keys. The sort
// costs O(n log n) comparisons and exactly n key evaluations.
func (c *Cluster) split(keyFn KeyFunc, obs Observer, failures *[]KeyFailure) []*Cluster {
	order := newKeyOrder()
	for seq, ref := range c.refs {
		key, err := keyFn(ref)
		obs.KeyComputed(ref)
		if err != nil {
			obs.KeyFailed(ref, err)
			if failures != nil {
				*failures = append(*failures, KeyFailure{Ref: ref, Err: err})
			}
			continue
		}
		order.Insert(ref, key, seq)
	}

	type group struct {
		firstSeq int
		key      Key
		refs     []FileRef
	}
	var groups []group
	order.ForEachRun(func(run []*keyedMember) bool {
		if len(run) < 2 {
			return true
		}
		g := group{firstSeq: run[0].Seq, key: run[0].Key, refs: make([]FileRef, len(run))}
		for i, m := range run {
			g.refs[i] = m.Ref
		}
		groups = append(groups, g)
		return true
	})

	slices.SortFunc(groups, func(a, b group) int {
		return a.firstSeq - b.firstSeq
	})

	if IsDebugEnabled("split") {
		VerboseLog(3, "split: %d members, %d keyed, %d groups", len(c.refs), order.Length(), len(groups))
	}

	children := make([]*Cluster, len(groups))
	for i, g := range groups {
		children[i] = &Cluster{refs: g.refs, key: g.key}
	}
	return children
}
