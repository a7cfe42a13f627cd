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

// localIndex wraps a MemIndex built over one tile of a contig, plus the
// bookkeeping needed to translate its coordinates back to the global
// genome and to step to a neighboring tile (§4.4.b.2/c.2).
type localIndex struct {
	*MemIndex
	tidx        int
	localOffset int
	contig      int
	tileNum     int
	owner       *MemIndex
}

var _ Local = (*localIndex)(nil)

func (l *localIndex) TIdx() int        { return l.tidx }
func (l *localIndex) LocalOffset() int { return l.localOffset }

func (l *localIndex) PrevLocalEbwt() (Local, bool) {
	i, ok := l.owner.tileIdx[[2]int{l.contig, l.tileNum - 1}]
	if !ok {
		return nil, false
	}
	return l.owner.tiles[i], true
}

func (l *localIndex) NextLocalEbwt() (Local, bool) {
	i, ok := l.owner.tileIdx[[2]int{l.contig, l.tileNum + 1}]
	if !ok {
		return nil, false
	}
	return l.owner.tiles[i], true
}

// BuildLocalTiles slices every contig into overlapping windows of
// tileSize bases (overlap lets a probe straddling a tile boundary still
// resolve without crossing into the next tile) and builds a small
// MemIndex for each, exposed as Local indexes via GetLocalEbwt.
func (idx *MemIndex) BuildLocalTiles(tileSize, overlap int) {
	idx.tileSize = tileSize
	idx.tileIdx = make(map[[2]int]int)

	for c := 0; c < idx.NumRefs(); c++ {
		clen := idx.contigLen[c]
		tileNum := 0
		for start := 0; start < clen; start += tileSize {
			end := start + tileSize + overlap
			if end > clen {
				end = clen
			}
			buf := make([]byte, end-start)
			idx.extractBases(c, start, buf)

			sub := NewMemIndex([][]byte{buf}, idx.ftabChars)
			li := &localIndex{
				MemIndex:    sub,
				tidx:        c,
				localOffset: start,
				contig:      c,
				tileNum:     tileNum,
				owner:       idx,
			}
			idx.tileIdx[[2]int{c, tileNum}] = len(idx.tiles)
			idx.tiles = append(idx.tiles, li)
			tileNum++
			if end == clen {
				break
			}
		}
	}
}

func (idx *MemIndex) extractBases(contig, start int, out []byte) {
	base := idx.contigOff[contig] + start
	toAscii := [alphabetLen]byte{'$', 'A', 'C', 'G', 'T'}
	for i := range out {
		out[i] = toAscii[idx.text[base+i]]
	}
}

// GetLocalEbwt returns the local tile covering global (contig, offset).
func (idx *MemIndex) GetLocalEbwt(contig, offset int) (Local, bool) {
	if idx.tileSize == 0 {
		return nil, false
	}
	tileNum := offset / idx.tileSize
	i, ok := idx.tileIdx[[2]int{contig, tileNum}]
	if !ok {
		return nil, false
	}
	return idx.tiles[i], true
}
