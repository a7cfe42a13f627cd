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

// Package search implements the partial FM-index search (§4.2), the
// anchor selector (§4.3) and the recursive hybrid extension (§4.4) that
// together turn a read into a chain of BWTHits and then a set of
// GenomeHits.
package search

import (
	"github.com/bioseq/hisplice/fmindex"
	"github.com/bioseq/hisplice/genome"
	"github.com/bioseq/hisplice/logging"
	"github.com/bioseq/hisplice/model"
)

var log = logging.MustGetLogger("hisplice/search")

// MinKLocal is the floor on match length a local-index partial search
// trusts, independent of genome size (§4.2).
const MinKLocal = 8

// AnchorAbsFloor is the HISAT2-derived minimum absolute anchor length
// (SPEC_FULL.md, "Anchor stop requires a minimum absolute length"),
// applied on top of minK+12 so very small genomes still demand a
// meaningfully long unique match before declaring ANCHOR.
const AnchorAbsFloor = 22

// MinK returns ceil(log4(genomeLen)), the smallest match length the
// partial search considers informative (§4.2).
func MinK(genomeLen int) int {
	if genomeLen <= 1 {
		return 1
	}
	k := 0
	size := uint64(1)
	for size < uint64(genomeLen) {
		size *= 4
		k++
	}
	if k < 1 {
		k = 1
	}
	return k
}

func anchorFloor(minK int) int {
	f := minK + 12
	if AnchorAbsFloor > f {
		return AnchorAbsFloor
	}
	return f
}

// PartialSearchOnce advances chain by exactly one BWTHit using idx,
// implementing the three parallel stop conditions of §4.2. read must
// already be in the orientation chain.FW describes (forward or
// reverse-complemented).
func PartialSearchOnce(idx fmindex.Index, read []byte, chain *model.ReadBWTHit) {
	if chain.Done {
		return
	}
	n := chain.Len
	cur := chain.Cur
	if cur >= n {
		chain.Done = true
		return
	}

	k := idx.FtabChars()
	offset := n - 1 - cur // rightmost unsearched read position
	if offset-k+1 < 0 {
		// Read (or remaining suffix) is shorter than ftabChars: §8
		// boundary behaviour, no partial hit, chain marked done.
		chain.Done = true
		return
	}

	rng, ok := idx.FtabLoHi(read, offset, false)
	dep := offset - k + 1
	if !ok || rng.Empty() {
		// Ambiguous or absent ftab prefix (§4.2's "record an empty partial
		// hit and either advance by one or mark done"): the rightmost
		// unsearched base can't seed a match, so consume just that one
		// position and keep going rather than stalling the chain.
		chain.Append(model.BWTHit{Range: fmindex.Range{}, FW: chain.FW, BWOff: offset, Len: 1, Type: model.CANDIDATE})
		if chain.Cur >= n {
			chain.Done = true
		}
		return
	}

	minK := MinK(idx.Len())
	floor := anchorFloor(minK)

	last := rng
	lastDep := dep
	similarRun := 0

	for dep > 0 {
		nextPos := dep - 1
		b := genome.EncodeBase(read[nextPos])
		if b == genome.BaseN {
			break
		}
		newTop, errTop := idx.MapLF(rng.Top, b)
		if errTop != nil {
			break
		}
		newBot, errBot := idx.MapLF1(rng.Top, rng.Bot, b)
		if errBot != nil {
			break
		}
		newRng := fmindex.Range{Top: newTop, Bot: newBot}
		if newRng.Empty() {
			break
		}

		oldSize, newSize := rng.Size(), newRng.Size()
		rng = newRng
		dep = nextPos
		last, lastDep = rng, dep

		matchLen := offset - dep + 1
		if rng.Size() == 1 && matchLen >= floor {
			chain.Append(model.BWTHit{Range: rng, FW: chain.FW, BWOff: dep, Len: matchLen, Type: model.ANCHOR})
			chain.Done = true
			return
		}

		if newSize < oldSize && newSize+2 >= oldSize {
			similarRun++
		} else {
			similarRun = 0
		}
		if similarRun >= 5 && matchLen >= minK+6 {
			chain.Append(model.BWTHit{Range: rng, FW: chain.FW, BWOff: dep, Len: matchLen, Type: model.PSEUDOGENE})
			return
		}
	}

	matchLen := offset - lastDep + 1
	chain.Append(model.BWTHit{Range: last, FW: chain.FW, BWOff: lastDep, Len: matchLen, Type: model.CANDIDATE})
	if chain.Cur >= n {
		chain.Done = true
	}
}

// RunChain repeatedly advances chain until done, the §4.2 loop for a
// single orientation. The alignment driver (package driver) does not call
// it: it interleaves PartialSearchOnce calls across orientations in its
// own priority loop.
func RunChain(idx fmindex.Index, read []byte, chain *model.ReadBWTHit) {
	for !chain.Done {
		before := chain.Cur
		PartialSearchOnce(idx, read, chain)
		if chain.Cur == before && chain.Done {
			break
		}
		if chain.Cur == before {
			// Defensive: a buggy stop condition that doesn't advance cur
			// would spin forever; treat it as a dead end (§7, InvariantViolation
			// in debug builds, silently absorbed here in release shape).
			log.Warningf("partial search stalled at cur=%d, aborting chain", before)
			chain.Done = true
			break
		}
	}
}
