// Copyright © 2025 The Hisplice Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package tempvars implements the per-thread scratch pool described in
// §3 ("SharedTempVars") and §5 ("no allocation inside recursive hot
// paths"): two extensible byte buffers for reference extraction, two
// score tables, and a free-list of edit-vectors that every GenomeHit
// allocated while processing a read draws its Edits handle from.
//
// The free-list is a plain stack of reusable slices with no locking
// (a Pool belongs to one goroutine), grown on demand and never shrunk
// mid-read.
package tempvars

import (
	"sync"

	"github.com/bioseq/hisplice/model"
)

// Pool is one thread's SharedTempVars. It is not safe for concurrent
// use by more than one goroutine; §5 assigns exactly one Pool per
// worker thread.
type Pool struct {
	RefBuf1 []byte
	RefBuf2 []byte

	ScoreTable1 []float64
	ScoreTable2 []float64

	editsFree [][]model.Edit
}

// New returns a Pool with modestly pre-sized buffers, amortizing growth
// across the lifetime of a worker thread.
func New() *Pool {
	return &Pool{
		RefBuf1:     make([]byte, 0, 1024),
		RefBuf2:     make([]byte, 0, 1024),
		ScoreTable1: make([]float64, 0, 512),
		ScoreTable2: make([]float64, 0, 512),
	}
}

// Clear resets the pool between reads (§3, "cleared between reads"):
// buffers are truncated (not freed). Edits vectors are not touched; they
// return to the free list only through ReleaseEdits.
func (p *Pool) Clear() {
	p.RefBuf1 = p.RefBuf1[:0]
	p.RefBuf2 = p.RefBuf2[:0]
	p.ScoreTable1 = p.ScoreTable1[:0]
	p.ScoreTable2 = p.ScoreTable2[:0]
	// Individual edits vectors are returned explicitly via ReleaseEdits
	// as GenomeHits are dropped; nothing further to do here.
}

// AcquireEdits draws an edits vector from the free list, allocating a
// new one only if the list is empty. The returned handle is a
// non-owning pointer: the Pool exclusively owns the backing array.
func (p *Pool) AcquireEdits() *[]model.Edit {
	n := len(p.editsFree)
	if n == 0 {
		s := make([]model.Edit, 0, 8)
		return &s
	}
	s := p.editsFree[n-1]
	p.editsFree = p.editsFree[:n-1]
	s = s[:0]
	return &s
}

// ReleaseEdits returns an edits vector to the free list. Call this when
// a GenomeHit holding the handle is dropped (§3, "released on
// destruction").
func (p *Pool) ReleaseEdits(h *[]model.Edit) {
	if h == nil {
		return
	}
	p.editsFree = append(p.editsFree, *h)
}

// GrowRefBuf1/2 ensure the reference-extraction scratch buffers have at
// least n bytes and return them truncated to exactly n, reused across the
// read instead of allocated per probe (§5).
func (p *Pool) GrowRefBuf1(n int) []byte {
	p.RefBuf1 = growBytes(p.RefBuf1, n)
	return p.RefBuf1[:n]
}

func (p *Pool) GrowRefBuf2(n int) []byte {
	p.RefBuf2 = growBytes(p.RefBuf2, n)
	return p.RefBuf2[:n]
}

func growBytes(s []byte, n int) []byte {
	if cap(s) < n {
		return make([]byte, n)
	}
	if len(s) < n {
		s = s[:n]
	}
	return s
}

// GrowScoreTable1/2 ensure the score tables have at least n slots,
// zeroing any newly exposed region, and return the resized slice.
func (p *Pool) GrowScoreTable1(n int) []float64 {
	p.ScoreTable1 = growFloats(p.ScoreTable1, n)
	return p.ScoreTable1
}

func (p *Pool) GrowScoreTable2(n int) []float64 {
	p.ScoreTable2 = growFloats(p.ScoreTable2, n)
	return p.ScoreTable2
}

func growFloats(s []float64, n int) []float64 {
	if cap(s) < n {
		grown := make([]float64, n)
		copy(grown, s)
		return grown
	}
	if len(s) < n {
		old := len(s)
		s = s[:n]
		for i := old; i < n; i++ {
			s[i] = 0
		}
	}
	return s
}

// PoolSet holds the pair of Pool instances and coordinate scratch lists
// a worker thread needs while processing one read: one Pool per mate of
// a pair plus a shared pair of ReadBWTHit (fw/rc) per mate is owned by
// the caller (driver package); PoolSet only tracks the SharedTempVars
// proper, mirroring the "thread owns its own SharedTempVars, ReadBWTHit
// pair..." language of §5.
type PoolSet struct {
	mu    sync.Mutex
	pools map[int]*Pool
}

// NewPoolSet creates an empty, concurrency-safe registry of per-thread
// pools keyed by an arbitrary thread id (e.g. goroutine-local worker
// index assigned by the caller's thread-pool).
func NewPoolSet() *PoolSet {
	return &PoolSet{pools: make(map[int]*Pool)}
}

// For returns the Pool for threadID, creating one on first use.
func (ps *PoolSet) For(threadID int) *Pool {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	p, ok := ps.pools[threadID]
	if !ok {
		p = New()
		ps.pools[threadID] = p
	}
	return p
}
