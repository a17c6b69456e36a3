package dcfhdupes

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
)

// Observer receives progress and failure notifications from Split.
// Implementations must be safe for concurrent use when a Partition runs
// with more than one worker.
type Observer interface {
	KeyComputed(ref FileRef)
	KeyFailed(ref FileRef, err error)
}

type nopObserver struct{}

func (nopObserver) KeyComputed(FileRef)      {}
func (nopObserver) KeyFailed(FileRef, error) {}

func observerOrNop(obs Observer) Observer {
	if obs == nil {
		return nopObserver{}
	}
	return obs
}

// ProgressObserver prints one dot per keyed member, the way the scan shows
// progress on a terminal
type ProgressObserver struct {
	mu       sync.Mutex
	out      io.Writer
	computed atomic.Int64
	failed   atomic.Int64
}

// NewProgressObserver creates a progress observer writing to out
func NewProgressObserver(out io.Writer) *ProgressObserver {
	return &ProgressObserver{out: out}
}

// KeyComputed prints a progress tick
func (p *ProgressObserver) KeyComputed(ref FileRef) {
	p.computed.Add(1)
	p.mu.Lock()
	fmt.Fprint(p.out, ".")
	p.mu.Unlock()
}

// KeyFailed counts the failure and logs it at verbose level 1
func (p *ProgressObserver) KeyFailed(ref FileRef, err error) {
	p.failed.Add(1)
	VerboseLog(1, "cannot key %s: %v", ref, err)
}

// Announce prints a milestone on its own line
func (p *ProgressObserver) Announce(msg string) {
	p.mu.Lock()
	fmt.Fprintln(p.out, msg)
	p.mu.Unlock()
}

// EndStage terminates the current progress line
func (p *ProgressObserver) EndStage() {
	p.mu.Lock()
	fmt.Fprintln(p.out)
	p.mu.Unlock()
}

// Counts returns the number of keyed and failed members seen so far
func (p *ProgressObserver) Counts() (computed, failed int64) {
	return p.computed.Load(), p.failed.Load()
}
