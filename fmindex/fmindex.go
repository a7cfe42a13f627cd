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

// Package fmindex declares the surface the search engine needs from a
// hierarchical FM-index: one global Burrows-Wheeler index over the whole
// genome plus many small local indexes tiling it. Building these indexes
// (hisat-build's job) is out of scope; this package only types the
// interface and ships a small in-memory implementation used by tests and
// the demo command.
package fmindex

import "github.com/bioseq/hisplice/genome"

// Range is a half-open interval [Top, Bot) in the suffix-array
// permutation underlying an FM-index (§3 "FM-range").
type Range struct {
	Top, Bot uint64
}

// Empty reports whether the range contains no suffixes.
func (r Range) Empty() bool { return r.Bot <= r.Top }

// Size is the number of suffixes covered by the range.
func (r Range) Size() uint64 {
	if r.Empty() {
		return 0
	}
	return r.Bot - r.Top
}

// Index is the read-only surface exposed by one FM-index, global or
// local (§6, "Consumed from the FM-index module").
type Index interface {
	// FtabLoHi resolves the ftabChars bases of read ending at offset
	// (read right-to-left when reverse is false, as the core always
	// walks right-to-left) to their initial range in one step. ok is
	// false if any of those bases is ambiguous.
	FtabLoHi(read []byte, offset int, reverse bool) (rng Range, ok bool)

	// MapLF performs one backward LF-mapping step from a single BWT
	// row, prepending base to the matched suffix.
	MapLF(row uint64, base genome.Base) (uint64, error)

	// MapLF1 is the companion step for the opposite boundary of a
	// range, reusing the rank already computed for top so the two
	// boundaries of [top, bot) need not be mapped independently.
	MapLF1(top, row uint64, base genome.Base) (uint64, error)

	// JoinedToTextOff converts an offset into the concatenated,
	// multi-contig text into a (contig, offset) pair. If the match of
	// the given length starting at concatOffset straddles a contig
	// boundary, straddled is true and the other return values are
	// meaningless; rejectStraddle callers should discard the hit.
	JoinedToTextOff(length int, concatOffset uint64) (contig, offset, contigLen int, straddled bool)

	// Plen is the length of contig in bases.
	Plen(contig int) int
	// ApproxLen is Plen rounded as the index's builder saw fit; for
	// the in-memory Index it's identical to Plen.
	ApproxLen(contig int) int
	// NumRefs is the number of contigs indexed.
	NumRefs() int
	// Len is the total length of the indexed (concatenated) text.
	Len() int
	// FtabChars is the number of bases the ftab resolves in one step.
	FtabChars() int

	// Locate resolves one suffix-array row to its offset in the
	// concatenated text, the primitive the anchor selector's walk-left
	// procedure (§4.3) repeats across a range to resolve genome
	// coordinates. ok is false if row cannot be resolved.
	Locate(row uint64) (concatOffset uint64, ok bool)
}

// Hierarchical additionally exposes the local-index tiling used by the
// hybrid search's local probes (§4.4.b.2/c.2).
type Hierarchical interface {
	Index

	// GetLocalEbwt returns the local index covering global coordinate
	// (contig, offset), if any.
	GetLocalEbwt(contig, offset int) (Local, bool)
}

// Local is one small FM-index tiling a contiguous genome window. Its
// coordinates are local to the window; TIdx/LocalOffset translate them
// back to the global coordinate system.
type Local interface {
	Index

	// TIdx is the contig this local index tiles.
	TIdx() int
	// LocalOffset is the global offset of local position 0.
	LocalOffset() int

	// PrevLocalEbwt/NextLocalEbwt step to the neighboring tile, if one
	// exists, for widening a probe across a tile boundary.
	PrevLocalEbwt() (Local, bool)
	NextLocalEbwt() (Local, bool)
}
