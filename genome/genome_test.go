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

package genome

import (
	"testing"
)

func TestRoundTrip(t *testing.T) {
	seq := []byte("ACGTACGTNNACGTTTGGCCAA")
	r := NewReference()
	idx, err := r.AddContig("chr1", seq)
	if err != nil {
		t.Fatal(err)
	}
	if idx != 0 {
		t.Fatalf("expected contig index 0, got %d", idx)
	}
	if r.ContigLen(0) != len(seq) {
		t.Fatalf("expected length %d, got %d", len(seq), r.ContigLen(0))
	}

	out := make([]byte, len(seq))
	n, err := r.GetStretch(out, 0, 0, len(seq))
	if err != nil {
		t.Fatal(err)
	}
	if n != len(seq) {
		t.Fatalf("expected %d bases, got %d", len(seq), n)
	}
	for _, b := range seq {
		want := b
		if want == 'N' {
			// ok
		}
		_ = want
	}
	for i := range seq {
		if seq[i] == 'N' {
			if out[i] != 'N' {
				t.Errorf("pos %d: expected N, got %c", i, out[i])
			}
			continue
		}
		if out[i] != seq[i] {
			t.Errorf("pos %d: expected %c, got %c", i, seq[i], out[i])
		}
	}
}

func TestGetBase(t *testing.T) {
	r := NewReference()
	r.AddContig("chr1", []byte("ACGTN"))
	cases := []struct {
		offset int
		want   Base
	}{
		{0, BaseA}, {1, BaseC}, {2, BaseG}, {3, BaseT}, {4, BaseN},
	}
	for _, c := range cases {
		got, err := r.GetBase(0, c.offset)
		if err != nil {
			t.Fatal(err)
		}
		if got != c.want {
			t.Errorf("offset %d: expected %d, got %d", c.offset, c.want, got)
		}
	}
}

func TestGetStretchClampsAtContigEnd(t *testing.T) {
	r := NewReference()
	r.AddContig("chr1", []byte("ACGT"))
	out := make([]byte, 10)
	n, err := r.GetStretch(out, 0, 2, 10)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("expected 2 bases clamped at contig end, got %d", n)
	}
	if string(out[:2]) != "GT" {
		t.Fatalf("expected GT, got %s", out[:2])
	}
}

func TestGetBaseOutOfRange(t *testing.T) {
	r := NewReference()
	r.AddContig("chr1", []byte("ACGT"))
	if _, err := r.GetBase(0, 100); err == nil {
		t.Fatal("expected out-of-range error")
	}
	if _, err := r.GetBase(5, 0); err == nil {
		t.Fatal("expected out-of-range contig error")
	}
}
