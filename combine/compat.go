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

// Package combine merges two compatible GenomeHit fragments across a gap
// (§4.5): classifying it as a mismatch run, insertion, deletion or
// spliced junction, scoring donor/acceptor motifs, gating short anchors
// around low-probability introns, and left-aligning the resulting indels.
package combine

import (
	"github.com/bioseq/hisplice/model"
	"github.com/bioseq/hisplice/splice"
)

// GapKind classifies the relationship between two compatible hits.
type GapKind uint8

const (
	GapNone GapKind = iota
	GapInsertion
	GapDeletion
	GapSplice
)

// Config bundles the combiner's tunables, exposed as one immutable value
// per §9 ("Global constants vs. configuration").
type Config struct {
	MinIntronLen int
	MaxIntronLen int
	MaxInsLen    int
	MaxDelLen    int

	DonorExonicLen      int
	DonorIntronicLen    int
	AcceptorIntronicLen int
	AcceptorExonicLen   int

	CanMAL    int
	NonCanMAL int
}

// DefaultConfig mirrors the defaults named throughout §4.5.
func DefaultConfig() Config {
	return Config{
		MinIntronLen:        20,
		MaxIntronLen:        500000,
		MaxInsLen:           3,
		MaxDelLen:           3,
		DonorExonicLen:      splice.DonorExonicLen,
		DonorIntronicLen:    splice.DonorIntronicLen,
		AcceptorIntronicLen: splice.AcceptorIntronicLen,
		AcceptorExonicLen:   splice.AcceptorExonicLen,
		CanMAL:              7,
		NonCanMAL:           14,
	}
}

// Compatible implements §4.5.1, treating a as the leftward partner. It
// reports the kind of gap between a and b and whether combining them is
// even worth attempting; L3 requires CombineWith to refuse whenever this
// returns false.
func Compatible(a, b *model.GenomeHit, cfg Config) (GapKind, bool) {
	if a.TIdx != b.TIdx || a.FW != b.FW {
		return GapNone, false
	}
	if !(a.RdOff <= b.RdOff && a.RdEnd() <= b.RdEnd() && a.TOff <= b.TOff) {
		return GapNone, false
	}

	rddif := b.RdOff - a.RdOff
	refdif := b.TOff - a.TOff

	switch {
	case rddif > refdif:
		insLen := rddif - refdif
		if insLen > cfg.MaxInsLen {
			return GapNone, false
		}
		return GapInsertion, true
	case refdif-rddif < cfg.MinIntronLen:
		delLen := refdif - rddif
		if delLen < 0 || delLen > cfg.MaxDelLen {
			return GapNone, false
		}
		return GapDeletion, true
	default:
		if refdif-rddif > cfg.MaxIntronLen {
			return GapNone, false
		}
		return GapSplice, true
	}
}
