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

package combine

import (
	"testing"

	"github.com/bioseq/hisplice/model"
)

func TestCompatibleSpliceWithinMaxIntron(t *testing.T) {
	cfg := DefaultConfig()
	a := &model.GenomeHit{RdOff: 0, Len: 25, TIdx: 0, TOff: 100}
	b := &model.GenomeHit{RdOff: 25, Len: 25, TIdx: 0, TOff: 10100}

	kind, ok := Compatible(a, b, cfg)
	if !ok || kind != GapSplice {
		t.Fatalf("expected a short-span splice to be compatible, got kind=%v ok=%v", kind, ok)
	}
}

func TestIncompatibleWhenIntronExceedsMax(t *testing.T) {
	cfg := DefaultConfig()
	a := &model.GenomeHit{RdOff: 0, Len: 25, TIdx: 0, TOff: 100}
	b := &model.GenomeHit{RdOff: 25, Len: 25, TIdx: 0, TOff: 100 + 25 + 5*100000 + 1}

	_, ok := Compatible(a, b, cfg)
	if ok {
		t.Fatalf("expected a pair implying a 500001bp intron to be rejected by compatibility")
	}
}

func TestIncompatibleAcrossContigs(t *testing.T) {
	cfg := DefaultConfig()
	a := &model.GenomeHit{RdOff: 0, Len: 25, TIdx: 0, TOff: 100}
	b := &model.GenomeHit{RdOff: 25, Len: 25, TIdx: 1, TOff: 200}

	_, ok := Compatible(a, b, cfg)
	if ok {
		t.Fatalf("expected hits on different contigs to be incompatible")
	}
}

func TestCompatibleSmallInsertion(t *testing.T) {
	cfg := DefaultConfig()
	a := &model.GenomeHit{RdOff: 0, Len: 20, TIdx: 0, TOff: 100}
	b := &model.GenomeHit{RdOff: 22, Len: 20, TIdx: 0, TOff: 120}

	kind, ok := Compatible(a, b, cfg)
	if !ok || kind != GapInsertion {
		t.Fatalf("expected a 2bp insertion to be compatible, got kind=%v ok=%v", kind, ok)
	}
}

func TestIncompatibleLargeInsertion(t *testing.T) {
	cfg := DefaultConfig()
	a := &model.GenomeHit{RdOff: 0, Len: 20, TIdx: 0, TOff: 100}
	b := &model.GenomeHit{RdOff: 25, Len: 20, TIdx: 0, TOff: 120}

	_, ok := Compatible(a, b, cfg)
	if ok {
		t.Fatalf("expected a 5bp insertion to exceed MaxInsLen and be rejected")
	}
}
