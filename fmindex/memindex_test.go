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

import "testing"

func TestFtabLoHiFindsUniqueMatch(t *testing.T) {
	contig := []byte("ACGTACGTACGTACGTACGTACGTACGTACGTGGGGCCCCTTTTAAAA")
	idx := NewMemIndex([][]byte{contig}, 8)

	read := []byte("GGGGCCCC")
	rng, ok := idx.FtabLoHi(read, len(read)-1, false)
	if !ok {
		t.Fatal("expected a resolvable range")
	}
	if rng.Size() != 1 {
		t.Fatalf("expected a unique hit, got size %d", rng.Size())
	}

	pos, ok := idx.Locate(rng.Top)
	if !ok {
		t.Fatal("expected the seed row to resolve to a text position")
	}
	contigI, offset, _, straddled := idx.JoinedToTextOff(8, pos)
	if straddled {
		t.Fatal("unexpected straddle")
	}
	if contigI != 0 {
		t.Fatalf("expected contig 0, got %d", contigI)
	}
	want := 32 // index of "GGGGCCCC" in contig
	if offset != want {
		t.Fatalf("expected offset %d, got %d", want, offset)
	}
}

func TestMapLFExtendsRangeLeftward(t *testing.T) {
	contig := []byte("ACGTACGTACGTACGTACGTACGTACGTACGTGGGGCCCCTTTTAAAA")
	idx := NewMemIndex([][]byte{contig}, 8)

	read := []byte("TGGGGCCCC")
	rng, ok := idx.FtabLoHi(read, len(read)-1, false)
	if !ok {
		t.Fatal("expected a resolvable seed range")
	}

	// extend leftward by the remaining base 'T'
	top, err := idx.MapLF(rng.Top, 3) // T
	if err != nil {
		t.Fatal(err)
	}
	bot, err := idx.MapLF1(rng.Top, rng.Bot, 3)
	if err != nil {
		t.Fatal(err)
	}
	if bot <= top {
		t.Fatal("expected a non-empty extended range")
	}

	pos, ok := idx.Locate(top)
	if !ok {
		t.Fatal("expected the extended row to resolve to a text position")
	}
	contigI, offset, _, straddled := idx.JoinedToTextOff(9, pos)
	if straddled {
		t.Fatal("unexpected straddle")
	}
	if contigI != 0 || offset != 31 {
		t.Fatalf("expected (0, 31), got (%d, %d)", contigI, offset)
	}
}

func TestJoinedToTextOffDetectsStraddle(t *testing.T) {
	idx := NewMemIndex([][]byte{[]byte("ACGT"), []byte("TTTT")}, 2)
	_, _, _, straddled := idx.JoinedToTextOff(3, uint64(idx.contigOff[1]-1))
	if !straddled {
		t.Fatal("expected straddle across contig boundary")
	}
}

func TestLocalTilesNavigate(t *testing.T) {
	contig := make([]byte, 200)
	for i := range contig {
		contig[i] = "ACGT"[i%4]
	}
	idx := NewMemIndex([][]byte{contig}, 4)
	idx.BuildLocalTiles(64, 16)

	l, ok := idx.GetLocalEbwt(0, 70)
	if !ok {
		t.Fatal("expected a local tile covering offset 70")
	}
	if l.TIdx() != 0 {
		t.Fatalf("expected contig 0, got %d", l.TIdx())
	}
	prev, ok := l.PrevLocalEbwt()
	if !ok {
		t.Fatal("expected a previous tile")
	}
	if prev.LocalOffset() >= l.LocalOffset() {
		t.Fatal("expected previous tile to start earlier")
	}
}
