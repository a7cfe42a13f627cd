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

// Package splice implements the SpliceSiteDB collaborator described in
// §3 and §5: a store of known and novel splice-site locations queried by
// the hybrid search's splice-driven jump (§4.4.b.1) and splice-site
// completion step (§4.4.a), plus the PWM motif scoring of §4.5.2.
//
// Per-contig interval search trees (one per strand) give
// getLeftSpliceSites/getRightSpliceSites sublinear range queries; a
// striped lock per contig matches §5's "per-bucket locking" so readers
// on different contigs never contend.
package splice

import (
	"sync"

	"github.com/rdleal/intervalst/interval"
)

// Site is one known or novel splice-site boundary.
type Site struct {
	Left, Right int // intron start/end, 0-based, half-open [Left, Right)
	Canonical   bool
	Strand      byte // '+' or '-'

	FromFile bool
	ReadID   int64 // the read that introduced a novel site; 0 for file-loaded sites
}

type bucket struct {
	mu        sync.RWMutex
	fwd, rev  *interval.SearchTree[*Site, int]
}

func newBucket() *bucket {
	cmp := func(x, y int) int { return x - y }
	return &bucket{
		fwd: interval.NewSearchTree[*Site, int](cmp),
		rev: interval.NewSearchTree[*Site, int](cmp),
	}
}

func (b *bucket) treeFor(strand byte) *interval.SearchTree[*Site, int] {
	if strand == '-' {
		return b.rev
	}
	return b.fwd
}

// DB is the splice-site store. One DB is shared read-only (plus
// best-effort novel-site insertion) across all worker threads.
type DB struct {
	mu      sync.RWMutex
	buckets map[int]*bucket

	// ThreadRIDsMinDist: a reader ignores novel sites introduced by
	// reads younger than this many read ids, preventing a read from
	// citing a splice site its own alignment just inserted (§5).
	ThreadRIDsMinDist int64
}

// NewDB creates an empty splice-site store.
func NewDB() *DB {
	return &DB{buckets: make(map[int]*bucket), ThreadRIDsMinDist: 1000}
}

func (db *DB) bucketFor(contig int) *bucket {
	db.mu.RLock()
	b, ok := db.buckets[contig]
	db.mu.RUnlock()
	if ok {
		return b
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	if b, ok = db.buckets[contig]; ok {
		return b
	}
	b = newBucket()
	db.buckets[contig] = b
	return b
}

// LoadKnown inserts a site parsed from a persisted splice-site file
// (§3, per-site metadata "from_file").
func (db *DB) LoadKnown(contig int, s Site) {
	s.FromFile = true
	b := db.bucketFor(contig)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.treeFor(s.Strand).Insert(s.Left, s.Right, &s)
}

// InsertNovel records a splice site discovered during alignment,
// tagging it with the originating read's id so readers can filter
// self-citations (§5).
func (db *DB) InsertNovel(contig int, s Site, readID int64) {
	s.FromFile = false
	s.ReadID = readID
	b := db.bucketFor(contig)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.treeFor(s.Strand).Insert(s.Left, s.Right, &s)
}

// visible reports whether a site discovered by a different read than
// currentReadID is old enough to be cited, per ThreadRIDsMinDist.
func (db *DB) visible(s *Site, currentReadID int64, includeNovel bool) bool {
	if s.FromFile {
		return true
	}
	if !includeNovel {
		return false
	}
	if s.ReadID == 0 {
		return true
	}
	return currentReadID-s.ReadID >= db.ThreadRIDsMinDist
}

// GetLeftSpliceSites returns known/novel sites on contig whose
// [Left, Right] interval intersects the window from rightPos-anchorLen
// to rightPos (§3).
func (db *DB) GetLeftSpliceSites(contig int, rightPos, anchorLen int, strand byte, currentReadID int64, includeNovel bool, out []*Site) []*Site {
	b := db.bucketFor(contig)
	b.mu.RLock()
	defer b.mu.RUnlock()
	lo := rightPos - anchorLen
	all, _ := b.treeFor(strand).AllIntersections(lo, rightPos)
	for _, v := range all {
		if db.visible(v, currentReadID, includeNovel) {
			out = append(out, v)
		}
	}
	return out
}

// GetRightSpliceSites returns known/novel sites on contig whose
// [Left, Right] interval intersects the window from leftPos to
// leftPos+anchorLen (§3).
func (db *DB) GetRightSpliceSites(contig int, leftPos, anchorLen int, strand byte, currentReadID int64, includeNovel bool, out []*Site) []*Site {
	b := db.bucketFor(contig)
	b.mu.RLock()
	defer b.mu.RUnlock()
	hi := leftPos + anchorLen
	all, _ := b.treeFor(strand).AllIntersections(leftPos, hi)
	for _, v := range all {
		if db.visible(v, currentReadID, includeNovel) {
			out = append(out, v)
		}
	}
	return out
}

// HasSpliceSites reports whether any known or (optionally) novel site
// exists on contig whose interval intersects the l1..r1 window or the
// l2..r2 window (§3).
func (db *DB) HasSpliceSites(contig, l1, r1, l2, r2 int, strand byte, currentReadID int64, includeNovel bool) bool {
	b := db.bucketFor(contig)
	b.mu.RLock()
	defer b.mu.RUnlock()
	tree := b.treeFor(strand)
	vs1, _ := tree.AllIntersections(l1, r1)
	for _, v := range vs1 {
		if db.visible(v, currentReadID, includeNovel) {
			return true
		}
	}
	vs2, _ := tree.AllIntersections(l2, r2)
	for _, v := range vs2 {
		if db.visible(v, currentReadID, includeNovel) {
			return true
		}
	}
	return false
}
