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

package splice

import "testing"

func TestClassifyMotifCanonicalForward(t *testing.T) {
	m := ClassifyMotif([]byte("GT"), []byte("AG"))
	if !m.Canonical || !m.FW {
		t.Fatalf("expected GT...AG to classify canonical forward, got %+v", m)
	}
}

func TestClassifyMotifCanonicalReverse(t *testing.T) {
	m := ClassifyMotif([]byte("CT"), []byte("AC"))
	if !m.Canonical || m.FW {
		t.Fatalf("expected CT...AC to classify canonical reverse, got %+v", m)
	}
}

func TestClassifyMotifSemiCanonical(t *testing.T) {
	m := ClassifyMotif([]byte("GC"), []byte("AG"))
	if !m.SemiCanonical || m.Canonical {
		t.Fatalf("expected GC...AG to classify semi-canonical, got %+v", m)
	}
}

func TestClassifyMotifUnrecognized(t *testing.T) {
	m := ClassifyMotif([]byte("TT"), []byte("TT"))
	if m.Canonical || m.SemiCanonical {
		t.Fatalf("expected an unrecognized dinucleotide pair to classify as neither, got %+v", m)
	}
}

func TestProbscoreFavorsCanonicalMotif(t *testing.T) {
	donor := []byte("AAAGTAAAAAA")
	acceptor := []byte("AAAAAAAAAAAAAAAAAAAGAAA")
	canonical := Probscore(donor, acceptor)

	offDonor := []byte("AAATTAAAAAA")
	offAcceptor := []byte("AAAAAAAAAAAAAAAAAAATAAA")
	noncanonical := Probscore(offDonor, offAcceptor)

	if canonical <= noncanonical {
		t.Fatalf("expected canonical motif score (%v) to exceed off-motif score (%v)", canonical, noncanonical)
	}
}
