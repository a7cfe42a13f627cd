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

// Package genome holds the reference sequence the aligner is run against:
// an ordered list of contigs, each stored 2-bit packed, with random base
// lookup and bulk substring extraction. Genome construction (FASTA loading,
// persistence) is outside the core; a Reference is assembled once by the
// caller and handed to the search and combine packages as a read-only value.
package genome

import (
	"sync"

	"github.com/elliotwutingfeng/asciiset"
	"github.com/pkg/errors"
)

// ErrOutOfRange is returned when a requested coordinate is outside the
// contig it is addressed against.
var ErrOutOfRange = errors.New("genome: coordinate out of range")

// ErrInvalidBase names an invalid-base error. Adding a contig does not
// return it: every byte other than A/C/G/T is stored as an N position.
var ErrInvalidBase = errors.New("genome: invalid base")

// acgtSet accepts the four unambiguous bases, upper or lower case;
// anything else (including IUPAC ambiguity codes) is folded to N.
var acgtSet, _ = asciiset.MakeASCIISet("ACGTacgt")

// Base is a 2-bit encoded nucleotide: 0=A, 1=C, 2=G, 3=T. A fifth,
// out-of-band value (4) represents N/ambiguous and is never packed into
// the 2-bit stream; positions holding it are recorded in Contig's nPos set.
type Base = byte

const (
	BaseA Base = 0
	BaseC Base = 1
	BaseG Base = 2
	BaseT Base = 3
	BaseN Base = 4
)

var baseToBit = [256]byte{}
var bitToBase = [4]byte{'A', 'C', 'G', 'T'}

func init() {
	for i := range baseToBit {
		baseToBit[i] = BaseN
	}
	baseToBit['A'], baseToBit['a'] = BaseA, BaseA
	baseToBit['C'], baseToBit['c'] = BaseC, BaseC
	baseToBit['G'], baseToBit['g'] = BaseG, BaseG
	baseToBit['T'], baseToBit['t'] = BaseT, BaseT
}

// EncodeBase converts an ASCII nucleotide to its 2-bit code, or BaseN if
// the byte is not one of A/C/G/T (case-insensitive).
func EncodeBase(b byte) Base { return baseToBit[b] }

// DecodeBase converts a 2-bit code back to its ASCII nucleotide, or 'N'
// for BaseN.
func DecodeBase(b Base) byte {
	if b == BaseN {
		return 'N'
	}
	return bitToBase[b]
}

// Contig is one chromosome/scaffold of the reference, 2-bit packed with a
// side list of ambiguous-base positions.
type Contig struct {
	ID     string
	Len    int
	packed []byte // ceil(Len/4) bytes, 2 bits/base
	nPos   map[int]bool
}

func newContig(id string, seq []byte) (*Contig, error) {
	c := &Contig{ID: id, Len: len(seq), packed: make([]byte, (len(seq)+3)/4)}
	for i, b := range seq {
		if !acgtSet.Contains(b) {
			if c.nPos == nil {
				c.nPos = make(map[int]bool, 8)
			}
			c.nPos[i] = true
			continue
		}
		code := baseToBit[b]
		c.packed[i>>2] |= code << uint((i&3)*2)
	}
	return c, nil
}

// baseAt returns the 2-bit code at offset, or BaseN if offset is an
// ambiguous position recorded in nPos.
func (c *Contig) baseAt(offset int) Base {
	if c.nPos != nil && c.nPos[offset] {
		return BaseN
	}
	shift := uint((offset & 3) * 2)
	return (c.packed[offset>>2] >> shift) & 3
}

// Reference is an ordered collection of contigs supporting the two
// read-only operations the search and combine packages need: GetBase and
// GetStretch (§6, "Consumed from the reference").
type Reference struct {
	contigs []*Contig
	byID    map[string]int

	mu      sync.Mutex
	bufPool sync.Pool
}

// NewReference builds an empty Reference. AddContig is called once per
// sequence before the Reference is handed to a search.
func NewReference() *Reference {
	r := &Reference{byID: make(map[string]int, 64)}
	r.bufPool.New = func() interface{} {
		b := make([]byte, 0, 512)
		return &b
	}
	return r
}

// AddContig 2-bit packs seq and appends it as the next contig.
func (r *Reference) AddContig(id string, seq []byte) (int, error) {
	c, err := newContig(id, seq)
	if err != nil {
		return -1, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := len(r.contigs)
	r.contigs = append(r.contigs, c)
	r.byID[id] = idx
	return idx, nil
}

// NumRefs returns the number of contigs, mirroring the FM-index's
// numRefs() so driver code can treat both as interchangeable sources of
// contig counts.
func (r *Reference) NumRefs() int { return len(r.contigs) }

// ContigID returns the name of contig idx.
func (r *Reference) ContigID(idx int) string { return r.contigs[idx].ID }

// ContigLen returns the length of contig idx, i.e. approxLen(contig) in
// the FM-index's vocabulary.
func (r *Reference) ContigLen(idx int) int { return r.contigs[idx].Len }

// ContigByID resolves a contig name to its index, or -1 if unknown.
func (r *Reference) ContigByID(id string) int {
	if i, ok := r.byID[id]; ok {
		return i
	}
	return -1
}

// GetBase returns the base (0..4, 4 meaning ambiguous) at offset in
// contig, per §6.
func (r *Reference) GetBase(contig, offset int) (Base, error) {
	if contig < 0 || contig >= len(r.contigs) {
		return BaseN, errors.Wrapf(ErrOutOfRange, "contig %d", contig)
	}
	c := r.contigs[contig]
	if offset < 0 || offset >= c.Len {
		return BaseN, errors.Wrapf(ErrOutOfRange, "offset %d in contig %s (len %d)", offset, c.ID, c.Len)
	}
	return c.baseAt(offset), nil
}

// GetStretch bulk-extracts length bases starting at offset in contig,
// writing decoded ASCII bases (upper-case, 'N' for ambiguous positions)
// into out starting at out[0], per §6. It returns the number of bases
// written, which may be smaller than length if the stretch runs past the
// end of the contig.
func (r *Reference) GetStretch(out []byte, contig, offset, length int) (int, error) {
	if contig < 0 || contig >= len(r.contigs) {
		return 0, errors.Wrapf(ErrOutOfRange, "contig %d", contig)
	}
	c := r.contigs[contig]
	if offset < 0 || offset > c.Len {
		return 0, errors.Wrapf(ErrOutOfRange, "offset %d in contig %s (len %d)", offset, c.ID, c.Len)
	}
	if offset+length > c.Len {
		length = c.Len - offset
	}
	if length < 0 {
		length = 0
	}
	if len(out) < length {
		return 0, errors.Errorf("genome: output buffer too small (%d < %d)", len(out), length)
	}
	for i := 0; i < length; i++ {
		code := c.baseAt(offset + i)
		if code == BaseN {
			out[i] = 'N'
		} else {
			out[i] = bitToBase[code]
		}
	}
	return length, nil
}

// BorrowBuffer returns a pooled scratch byte slice of at least n bytes,
// for callers extracting many short stretches per read without touching
// the allocator (§5, "no allocation inside recursive hot paths"). Pair
// with ReturnBuffer.
func (r *Reference) BorrowBuffer(n int) *[]byte {
	bp := r.bufPool.Get().(*[]byte)
	if cap(*bp) < n {
		*bp = make([]byte, n)
	}
	*bp = (*bp)[:n]
	return bp
}

// ReturnBuffer gives a buffer obtained from BorrowBuffer back to the pool.
func (r *Reference) ReturnBuffer(b *[]byte) {
	r.bufPool.Put(b)
}
