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

package fmindex

import (
	"sort"

	"github.com/shenwei356/kmers"

	"github.com/bioseq/hisplice/genome"
)

// alphabet used by the in-memory index: one sentinel per contig plus the
// four bases. Sentinels sort before any base and never match a read.
const (
	symSentinel = 0
	symA        = 1
	symC        = 2
	symG        = 3
	symT        = 4
	alphabetLen = 5
)

// MemIndex is a small, unoptimized FM-index built by literal suffix-array
// sorting. It exists to exercise the Index/Hierarchical/Local interfaces
// in tests and the demo command; real genomes are indexed externally by
// a dedicated builder, out of the core's scope.
type MemIndex struct {
	text      []byte // codes, symSentinel.. symT
	sa        []int
	bwt       []byte
	occ       [alphabetLen][]int32 // occ[c][i] = count of c in text[0:i]
	cnt       [alphabetLen]int     // count of symbols < c
	ftabChars int

	contigOff []int // start offset of contig i in text (includes leading bases only, not sentinel)
	contigLen []int

	// ftab maps the 2-bit-packed encoding (via kmers.Encode) of an
	// ftabChars-length, unambiguous suffix to its resolved [top, bot) range,
	// built once over the sorted suffix array so FtabLoHi can resolve a
	// read's seed prefix with one map lookup instead of ftabChars backward
	// LF-mapping steps.
	ftab map[uint64]Range

	// hierarchical tiling, built lazily by BuildLocalTiles
	tileSize int
	tiles    []*localIndex
	tileIdx  map[[2]int]int // (contig, tileNum) -> index into tiles
}

var _ Index = (*MemIndex)(nil)
var _ Hierarchical = (*MemIndex)(nil)

func baseToSym(b genome.Base) byte {
	switch b {
	case genome.BaseA:
		return symA
	case genome.BaseC:
		return symC
	case genome.BaseG:
		return symG
	case genome.BaseT:
		return symT
	default:
		return 255 // ambiguous, never matches
	}
}

// NewMemIndex builds an FM-index over the given contigs (ASCII sequences,
// ambiguous bases allowed but never matched). ftabChars bounds how many
// bases FtabLoHi resolves in one call.
func NewMemIndex(contigs [][]byte, ftabChars int) *MemIndex {
	idx := &MemIndex{ftabChars: ftabChars}
	idx.contigOff = make([]int, len(contigs))
	idx.contigLen = make([]int, len(contigs))

	for i, c := range contigs {
		idx.contigOff[i] = len(idx.text)
		idx.contigLen[i] = len(c)
		for _, b := range c {
			idx.text = append(idx.text, baseToSym(genome.EncodeBase(b)))
		}
		idx.text = append(idx.text, symSentinel)
	}

	idx.buildSuffixArray()
	idx.buildOccAndCounts()
	idx.buildFtab()
	return idx
}

// buildFtab walks the sorted suffix array once, grouping consecutive rows
// sharing the same ftabChars-length prefix into a single bucket — the
// standard ftab construction, expressed here with kmers.Encode standing in
// for the 2-bit packing a real ftab indexes by.
func (idx *MemIndex) buildFtab() {
	k := idx.ftabChars
	if k <= 0 {
		return
	}
	n := len(idx.sa)
	idx.ftab = make(map[uint64]Range, n/4+16)
	toAscii := [alphabetLen]byte{'$', 'A', 'C', 'G', 'T'}
	buf := make([]byte, k)

	prefixKey := func(pos int) (uint64, bool) {
		if pos+k > len(idx.text) {
			return 0, false
		}
		for i := 0; i < k; i++ {
			sym := idx.text[pos+i]
			if sym == symSentinel || int(sym) >= alphabetLen {
				return 0, false
			}
			buf[i] = toAscii[sym]
		}
		key, err := kmers.Encode(buf)
		if err != nil {
			return 0, false
		}
		return key, true
	}

	i := 0
	for i < n {
		key, ok := prefixKey(idx.sa[i])
		if !ok {
			i++
			continue
		}
		j := i + 1
		for j < n {
			key2, ok2 := prefixKey(idx.sa[j])
			if !ok2 || key2 != key {
				break
			}
			j++
		}
		idx.ftab[key] = Range{Top: uint64(i), Bot: uint64(j)}
		i = j
	}
}

func (idx *MemIndex) buildSuffixArray() {
	n := len(idx.text)
	idx.sa = make([]int, n)
	for i := range idx.sa {
		idx.sa[i] = i
	}
	text := idx.text
	sort.Slice(idx.sa, func(a, b int) bool {
		i, j := idx.sa[a], idx.sa[b]
		for i < n && j < n {
			if text[i] != text[j] {
				return text[i] < text[j]
			}
			i++
			j++
		}
		return i > j // shorter (ending sooner, i.e. reaching n first) sorts first
	})
	idx.bwt = make([]byte, n)
	for i, s := range idx.sa {
		if s == 0 {
			idx.bwt[i] = idx.text[n-1]
		} else {
			idx.bwt[i] = idx.text[s-1]
		}
	}
}

func (idx *MemIndex) buildOccAndCounts() {
	n := len(idx.bwt)
	var freq [alphabetLen]int
	for c := 0; c < alphabetLen; c++ {
		idx.occ[c] = make([]int32, n+1)
	}
	for i, b := range idx.bwt {
		for c := 0; c < alphabetLen; c++ {
			idx.occ[c][i+1] = idx.occ[c][i]
		}
		idx.occ[b][i+1]++
		freq[b]++
	}
	total := 0
	for c := 0; c < alphabetLen; c++ {
		idx.cnt[c] = total
		total += freq[c]
	}
}

// step performs one backward LF-mapping step of row by sym, the building
// block both MapLF and MapLF1 are expressed in terms of.
func (idx *MemIndex) step(row uint64, sym byte) uint64 {
	return uint64(idx.cnt[sym]) + uint64(idx.occ[sym][row])
}

func (idx *MemIndex) MapLF(row uint64, base genome.Base) (uint64, error) {
	sym := baseToSym(base)
	if sym == 255 {
		return 0, errAmbiguousBase
	}
	return idx.step(row, sym), nil
}

func (idx *MemIndex) MapLF1(_, row uint64, base genome.Base) (uint64, error) {
	return idx.MapLF(row, base)
}

func (idx *MemIndex) FtabLoHi(read []byte, offset int, _ bool) (Range, bool) {
	k := idx.ftabChars
	if offset-k+1 < 0 {
		return Range{}, false
	}
	if idx.ftab != nil {
		buf := make([]byte, k)
		copy(buf, read[offset-k+1:offset+1])
		if key, err := kmers.Encode(buf); err == nil {
			r, ok := idx.ftab[key]
			return r, ok
		}
		// ambiguous base in the window: fall through to the stepwise path,
		// which bails with the same false/false semantics.
	}
	top, bot := uint64(0), uint64(len(idx.sa))
	for i := offset - k + 1; i <= offset; i++ {
		b := genome.EncodeBase(read[i])
		sym := baseToSym(b)
		if sym == 255 {
			return Range{}, false
		}
		top = idx.step(top, sym)
		bot = idx.step(bot, sym)
		if bot <= top {
			return Range{Top: top, Bot: bot}, false
		}
	}
	return Range{Top: top, Bot: bot}, true
}

func (idx *MemIndex) JoinedToTextOff(length int, concatOffset uint64) (contig, offset, contigLen int, straddled bool) {
	off := int(concatOffset)
	for i, start := range idx.contigOff {
		end := start + idx.contigLen[i]
		if off >= start && off < end {
			if off+length > end {
				return 0, 0, 0, true
			}
			return i, off - start, idx.contigLen[i], false
		}
	}
	return 0, 0, 0, true
}

// Locate resolves suffix-array row to its position in the concatenated
// text. The naive MemIndex keeps the whole suffix array in memory, so
// this is a direct lookup rather than the sampled-SA walk a real FM-index
// uses; Local indexes inherit the same implementation via embedding.
func (idx *MemIndex) Locate(row uint64) (uint64, bool) {
	if row >= uint64(len(idx.sa)) {
		return 0, false
	}
	return uint64(idx.sa[row]), true
}

func (idx *MemIndex) Plen(contig int) int       { return idx.contigLen[contig] }
func (idx *MemIndex) ApproxLen(contig int) int  { return idx.contigLen[contig] }
func (idx *MemIndex) NumRefs() int              { return len(idx.contigLen) }
func (idx *MemIndex) Len() int                  { return len(idx.text) }
func (idx *MemIndex) FtabChars() int            { return idx.ftabChars }

// textOffOfSARow converts SA row idx.sa[row] (a position in the
// concatenated text) to a global (contig, offset) pair. Used internally
// by the anchor selector's walk-left when the caller already has a row
// rather than a [top,bot) range resolved via JoinedToTextOff.
func (idx *MemIndex) textOffOfSARow(row int) (contig, offset int, ok bool) {
	pos := idx.sa[row]
	for i, start := range idx.contigOff {
		end := start + idx.contigLen[i]
		if pos >= start && pos < end {
			return i, pos - start, true
		}
	}
	return 0, 0, false
}

// RowAt exposes the suffix array for the anchor selector's walk-left
// procedure (§4.3): it advances rows of a range until a text offset is
// computable.
func (idx *MemIndex) RowAt(row uint64) (contig, offset int, ok bool) {
	return idx.textOffOfSARow(int(row))
}

type errString string

func (e errString) Error() string { return string(e) }

const errAmbiguousBase = errString("fmindex: ambiguous base")
