package dcfhdupes

import (
	"encoding/binary"
	"strings"

	zcsl "github.com/mattkeenan/zerocopyskiplist"
)

// keyedMember is one cluster member together with its computed key and its
// position in the parent cluster
type keyedMember struct {
	Ref   FileRef
	Key   Key
	Seq   int
	order string
}

// keyOrder keeps keyed members sorted by (key, seq). Members with equal keys
// are therefore adjacent and appear in their original relative order.
type keyOrder struct {
	skiplist *zcsl.ZeroCopySkiplist[keyedMember, string, string]
}

// newKeyOrder creates an empty key order
func newKeyOrder() *keyOrder {
	getKeyFromItem := func(m *keyedMember) string {
		return m.order
	}

	getItemSize := func(m *keyedMember) int {
		return len(m.order)
	}

	cmpKey := func(a, b string) int {
		return strings.Compare(a, b)
	}

	return &keyOrder{
		skiplist: zcsl.MakeZeroCopySkiplist[keyedMember, string, string](
			skiplistLevels,
			getKeyFromItem,
			getItemSize,
			cmpKey,
		),
	}
}

// Insert adds a member. Seq must be unique within one keyOrder.
func (ko *keyOrder) Insert(ref FileRef, key Key, seq int) bool {
	m := &keyedMember{
		Ref:   ref,
		Key:   key,
		Seq:   seq,
		order: encodeOrderKey(key, seq),
	}
	return ko.skiplist.Insert(m, splitContext)
}

// Length returns the number of members held
func (ko *keyOrder) Length() int {
	return ko.skiplist.Length()
}

// ForEachRun calls fn once per run of members sharing the same key, in key
// order. Iteration stops when fn returns false.
func (ko *keyOrder) ForEachRun(fn func(run []*keyedMember) bool) {
	var run []*keyedMember
	for current := ko.skiplist.First(); current != nil; current = current.Next() {
		m := current.Item()
		if len(run) > 0 && !run[0].Key.Equal(m.Key) {
			if !fn(run) {
				return
			}
			run = nil
		}
		run = append(run, m)
	}
	if len(run) > 0 {
		fn(run)
	}
}

// encodeOrderKey builds a string whose bytewise order is the order of
// (key, seq). 0x00 bytes in the key are escaped as 0x00 0xFF and the key is
// terminated by 0x00 0x01, so a key sorts before any longer key it prefixes.
func encodeOrderKey(key Key, seq int) string {
	var b strings.Builder
	b.Grow(len(key) + 10)
	for _, c := range key {
		b.WriteByte(c)
		if c == 0x00 {
			b.WriteByte(0xFF)
		}
	}
	b.WriteByte(0x00)
	b.WriteByte(0x01)

	var seqBuf [8]byte
	binary.BigEndian.PutUint64(seqBuf[:], uint64(seq))
	b.Write(seqBuf[:])
	return b.String()
}
