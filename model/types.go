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

// Package model holds the core data types shared by every search and
// combine component (§3): partial seed hits, the per-read seed chain,
// per-base edits and the placed alignment fragment they describe.
package model

import "github.com/bioseq/hisplice/fmindex"

// HitType classifies a BWTHit by how it stopped (§4.2, §4.7). The
// ordering ANCHOR > PSEUDOGENE > CANDIDATE matters: the anchor selector
// (§4.3) prefers greater HitType first.
type HitType uint8

const (
	CANDIDATE HitType = iota
	PSEUDOGENE
	ANCHOR
)

func (t HitType) String() string {
	switch t {
	case ANCHOR:
		return "ANCHOR"
	case PSEUDOGENE:
		return "PSEUDOGENE"
	default:
		return "CANDIDATE"
	}
}

// Coord is a resolved (contig, offset) global genome coordinate.
type Coord struct {
	Contig int
	Offset int
}

// BWTHit is one partial seed produced by the partial FM search (§3).
type BWTHit struct {
	Range fmindex.Range // top/bot

	FW    bool // read orientation: forward or reverse-complemented
	BWOff int  // leftmost read position (0-based, left-to-right) this seed covers
	Len   int  // match length

	Type HitType

	coordsResolved bool
	Coords         []Coord // resolved genome coordinates, filled lazily

	AnchorExamined bool
}

// Empty reports whether the underlying FM-range contains no suffixes.
func (h *BWTHit) Empty() bool { return h.Range.Empty() }

// Size is the number of suffixes in the underlying FM-range.
func (h *BWTHit) Size() uint64 { return h.Range.Size() }

// CoordsResolved reports whether ResolveCoords has populated Coords.
func (h *BWTHit) CoordsResolved() bool { return h.coordsResolved }

// SetCoords installs the result of resolving the FM-range (§4.3,
// "walk-left") and marks the hit as resolved.
func (h *BWTHit) SetCoords(c []Coord) {
	h.Coords = c
	h.coordsResolved = true
}

// CheckInvariant validates "bwoff + len <= read_len" (§3).
func (h *BWTHit) CheckInvariant(readLen int) bool {
	return h.BWOff+h.Len <= readLen
}

// ReadBWTHit is the chain of seeds discovered so far for one orientation
// of one read (§3).
type ReadBWTHit struct {
	FW   bool
	Len  int // read length
	Cur  int // next unsearched position from the right
	Done bool

	NumPartialSearch int
	NumUniqueSearch  int

	Hits []BWTHit
}

// Reset clears the chain for reuse across reads, avoiding an allocation
// per read on the hot path (§5).
func (r *ReadBWTHit) Reset(fw bool, readLen int) {
	r.FW = fw
	r.Len = readLen
	r.Cur = 0
	r.Done = false
	r.NumPartialSearch = 0
	r.NumUniqueSearch = 0
	r.Hits = r.Hits[:0]
}

// Append records a freshly searched partial hit and advances Cur. Search
// proceeds right-to-left, so BWOff (a left-based read index) only shrinks
// as the chain grows; Cur — the count of read positions consumed from the
// right end (§3) — is therefore Len-hit.BWOff, not hit.BWOff+hit.Len.
func (r *ReadBWTHit) Append(hit BWTHit) {
	r.Hits = append(r.Hits, hit)
	r.Cur = r.Len - hit.BWOff
	r.NumPartialSearch++
	if hit.Type == ANCHOR {
		r.NumUniqueSearch++
	}
}

// CheckAdjacency validates the §3 chain invariant: consecutive hits are
// non-overlapping (each one covers read positions strictly left of the
// one before it) and the last hit ends exactly at Cur.
func (r *ReadBWTHit) CheckAdjacency() bool {
	for i := 1; i < len(r.Hits); i++ {
		prev, cur := r.Hits[i-1], r.Hits[i]
		if cur.BWOff+cur.Len > prev.BWOff {
			return false
		}
	}
	if len(r.Hits) > 0 {
		last := r.Hits[len(r.Hits)-1]
		return r.Len-last.BWOff == r.Cur
	}
	return r.Cur == 0
}

// EditType tags one per-base edit (§3).
type EditType uint8

const (
	MM EditType = iota
	READ_GAP
	REF_GAP
	SPL
)

// SplDir is the strand a spliced-skip edit's donor/acceptor motif was
// read on.
type SplDir uint8

const (
	SplUnknown SplDir = iota
	SplFW
	SplRC
)

// Edit is one SAM-level per-base edit (§3). Pos is 0-based into the
// aligned read substring.
type Edit struct {
	Pos  int
	Type EditType

	QChr byte // read base (only meaningful for MM)
	Chr  byte // reference base (MM) or inserted/deleted base (gaps)

	SplLen        int
	SplDir        SplDir
	KnownSpl      bool
	Canonical     bool
	SemiCanonical bool
	DonorSeq      []byte
	AcceptorSeq   []byte
}

// GenomeHit is a contiguous placed alignment fragment (§3).
type GenomeHit struct {
	FW              bool
	RdOff           int
	Len             int
	Trim5, Trim3    int

	TIdx int
	TOff int

	// Edits is a non-owning handle into a SharedTempVars arena slot;
	// the pool exclusively owns the backing storage (§3,
	// "SharedTempVars"; see package tempvars).
	Edits *[]Edit

	Score       float64
	SpliceScore float64
	HitCount    int
}

// RdEnd is the read-coordinate just past the hit, i.e. rdoff+len.
func (g *GenomeHit) RdEnd() int { return g.RdOff + g.Len }

// TEnd is the reference-coordinate just past the hit on the forward
// strand, accounting for any splice skips and indels recorded in Edits.
func (g *GenomeHit) TEnd() int {
	span := g.Len
	if g.Edits != nil {
		for _, e := range *g.Edits {
			switch e.Type {
			case SPL:
				span += e.SplLen
			case READ_GAP:
				span++ // reference has a base with no counterpart in the read
			case REF_GAP:
				span-- // read has a base with no counterpart in the reference
			}
		}
	}
	return g.TOff + span
}

// FullyCovers reports whether the hit spans the whole read with no soft
// trim (§4.6, report criteria).
func (g *GenomeHit) FullyCovers(readLen int) bool {
	return g.RdOff-g.Trim5 == 0 && g.Len+g.Trim5+g.Trim3 == readLen
}
