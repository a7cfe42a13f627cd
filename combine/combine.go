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
	"github.com/bioseq/hisplice/genome"
	"github.com/bioseq/hisplice/model"
	"github.com/bioseq/hisplice/scoring"
	"github.com/bioseq/hisplice/splice"
	"github.com/bioseq/hisplice/tempvars"
)

// CombineWith merges a (the leftward partner) with b across the gap
// between them, per §4.5. It refuses — returning ok=false without
// mutating a or b — whenever Compatible does (law L3). read must be the
// full oriented read both hits were aligned against, so fragment scores
// and left-alignment can be computed directly off it.
func CombineWith(ref *genome.Reference, ssdb *splice.DB, sc *scoring.Config, pool *tempvars.Pool, read []byte, a, b *model.GenomeHit, cfg Config, currentReadID int64) (*model.GenomeHit, bool) {
	kind, ok := Compatible(a, b, cfg)
	if !ok {
		return nil, false
	}

	switch kind {
	case GapInsertion:
		return combineIndel(ref, pool, read, a, b, true), true
	case GapDeletion:
		return combineIndel(ref, pool, read, a, b, false), true
	case GapSplice:
		return combineSplice(ref, ssdb, sc, pool, read, a, b, cfg, currentReadID)
	default:
		return nil, false
	}
}

// combineIndel builds the merged hit for an insertion (extra read bases,
// REF_GAP) or deletion (extra reference bases, READ_GAP), per §4.5.2's
// indel branch: place the gap at the single candidate position the
// compatibility check already pinned down, then leave the expensive
// cut-scan to the splice path where the boundary is genuinely ambiguous.
func combineIndel(ref *genome.Reference, pool *tempvars.Pool, read []byte, a, b *model.GenomeHit, insertion bool) *model.GenomeHit {
	rddif := b.RdOff - a.RdOff
	refdif := b.TOff - a.TOff

	editsPtr := pool.AcquireEdits()
	edits := *editsPtr
	edits = append(edits, *a.Edits...)

	gapLen := rddif - refdif
	gapType := model.REF_GAP
	if !insertion {
		gapLen = refdif - rddif
		gapType = model.READ_GAP
	}
	for i := 0; i < gapLen; i++ {
		pos := a.Len + i
		chr := byte('N')
		if insertion {
			if a.RdOff+pos < len(read) {
				chr = read[a.RdOff+pos]
			}
		} else if refBase, err := ref.GetBase(a.TIdx, a.TOff+a.Len+i); err == nil {
			chr = genome.DecodeBase(refBase)
		}
		edits = append(edits, model.Edit{Pos: pos, Type: gapType, Chr: chr})
	}
	shift := a.Len
	if insertion {
		shift += gapLen
	}
	for _, e := range *b.Edits {
		edits = append(edits, model.Edit{
			Pos: e.Pos + shift, Type: e.Type, QChr: e.QChr, Chr: e.Chr,
			SplLen: e.SplLen, SplDir: e.SplDir, KnownSpl: e.KnownSpl, Canonical: e.Canonical, SemiCanonical: e.SemiCanonical,
			DonorSeq: e.DonorSeq, AcceptorSeq: e.AcceptorSeq,
		})
	}
	*editsPtr = edits

	merged := &model.GenomeHit{
		FW:       a.FW,
		RdOff:    a.RdOff,
		TIdx:     a.TIdx,
		TOff:     a.TOff,
		Edits:    editsPtr,
		HitCount: a.HitCount + b.HitCount,
	}
	if insertion {
		merged.Len = a.Len + gapLen + b.Len
	} else {
		merged.Len = a.Len + b.Len
	}
	LeftAlign(*merged.Edits, read[merged.RdOff:])
	return merged
}

// cutEval is one candidate splice cut position's evaluation (§4.5.2).
type cutEval struct {
	cut       int
	tempScore float64
	motif     splice.Motif
	probscore float64
}

// combineSplice scans every candidate cut position in the ambiguous
// overlap between a's and b's read windows, scores each by mismatch
// penalty plus motif bonus, and selects per the §4.5.2 priority: canonical
// beats unknown, then higher temp_score, then higher probscore (or the
// semi-canonical flag among unknowns). The winning cut is then subjected
// to the §4.5.3 anchor-length gate.
func combineSplice(ref *genome.Reference, ssdb *splice.DB, sc *scoring.Config, pool *tempvars.Pool, read []byte, a, b *model.GenomeHit, cfg Config, currentReadID int64) (*model.GenomeHit, bool) {
	overlap := a.RdEnd() - b.RdOff
	if overlap < 0 {
		overlap = 0
	}

	donorBuf := pool.RefBuf1[:0]
	acceptorBuf := pool.RefBuf2[:0]

	var best *cutEval
	for cut := 0; cut <= overlap; cut++ {
		intronStart := a.TOff + a.Len + cut
		intronEnd := b.TOff + cut

		donorLen := cfg.DonorExonicLen + cfg.DonorIntronicLen
		acceptorLen := cfg.AcceptorIntronicLen + cfg.AcceptorExonicLen
		donorBuf = growBuf(donorBuf, donorLen)
		acceptorBuf = growBuf(acceptorBuf, acceptorLen)

		n, err := ref.GetStretch(donorBuf, a.TIdx, intronStart-cfg.DonorExonicLen, donorLen)
		if err != nil || n < 2 {
			continue
		}
		m, err := ref.GetStretch(acceptorBuf, a.TIdx, intronEnd-cfg.AcceptorIntronicLen, acceptorLen)
		if err != nil || m < 2 {
			continue
		}

		motif := splice.ClassifyMotif(donorBuf[cfg.DonorExonicLen:cfg.DonorExonicLen+2], acceptorBuf[cfg.AcceptorIntronicLen-2:cfg.AcceptorIntronicLen])

		leftScore := fragmentMismatchScore(ref, sc, read, a.TIdx, a.RdEnd(), a.TOff+a.Len, cut)
		rightScore := fragmentMismatchScore(ref, sc, read, b.TIdx, b.RdOff-(overlap-cut), b.TOff-(overlap-cut), overlap-cut)
		tempScore := -(leftScore + rightScore)
		if motif.Canonical || motif.SemiCanonical {
			tempScore += sc.CanSplFixed
		} else {
			tempScore -= sc.NonCanSplFixed
		}

		probscore := 0.0
		if motif.Canonical {
			probscore = splice.Probscore(donorBuf[:donorLen], acceptorBuf[:acceptorLen])
		}

		cand := &cutEval{cut: cut, tempScore: tempScore, motif: motif, probscore: probscore}
		if best == nil || betterCut(cand, best) {
			best = cand
		}
	}
	pool.RefBuf1 = donorBuf[:0]
	pool.RefBuf2 = acceptorBuf[:0]

	if best == nil {
		return nil, false
	}

	intronLen := b.TOff + best.cut - (a.TOff + a.Len + best.cut)
	shorter := minInt(a.Len+best.cut, b.Len+(overlap-best.cut))

	preKnown := ssdb != nil && ssdb.HasSpliceSites(a.TIdx, a.TOff+a.Len+best.cut-1, a.TOff+a.Len+best.cut+1, b.TOff+best.cut-1, b.TOff+best.cut+1, strandOf(a.FW, best.motif), currentReadID, true)
	if !AnchorLengthGate(best.motif.Canonical || best.motif.SemiCanonical, preKnown, shorter, intronLen, cfg.MaxIntronLen, cfg) {
		return nil, false
	}

	return buildSpliceHit(pool, read, a, b, best, intronLen, overlap, preKnown), true
}

func strandOf(fw bool, m splice.Motif) byte {
	if m.FW == fw {
		return '+'
	}
	return '-'
}

func buildSpliceHit(pool *tempvars.Pool, read []byte, a, b *model.GenomeHit, best *cutEval, intronLen, overlap int, preKnown bool) *model.GenomeHit {
	editsPtr := pool.AcquireEdits()
	edits := *editsPtr

	for _, e := range *a.Edits {
		if e.Pos < a.Len+best.cut {
			edits = append(edits, e)
		}
	}

	dir := model.SplUnknown
	if best.motif.Canonical || best.motif.SemiCanonical {
		if best.motif.FW {
			dir = model.SplFW
		} else {
			dir = model.SplRC
		}
	}
	edits = append(edits, model.Edit{
		Pos: a.Len + best.cut, Type: model.SPL, SplLen: intronLen, SplDir: dir,
		Canonical: best.motif.Canonical, SemiCanonical: best.motif.SemiCanonical, KnownSpl: preKnown,
	})

	for _, e := range *b.Edits {
		shifted := e.Pos - (overlap - best.cut) + a.Len + best.cut
		if shifted >= a.Len+best.cut {
			e.Pos = shifted
			edits = append(edits, e)
		}
	}
	*editsPtr = edits

	merged := &model.GenomeHit{
		FW:       a.FW,
		RdOff:    a.RdOff,
		Len:      a.Len + best.cut + (b.Len - (overlap - best.cut)),
		TIdx:     a.TIdx,
		TOff:     a.TOff,
		Edits:    editsPtr,
		HitCount: a.HitCount + b.HitCount,
	}
	LeftAlign(*merged.Edits, read[merged.RdOff:])
	return merged
}

func betterCut(cand, cur *cutEval) bool {
	candCanon := cand.motif.Canonical
	curCanon := cur.motif.Canonical
	if candCanon != curCanon {
		return candCanon
	}
	if candCanon {
		if cand.tempScore != cur.tempScore {
			return cand.tempScore > cur.tempScore
		}
		return cand.probscore > cur.probscore
	}
	if cand.tempScore != cur.tempScore {
		return cand.tempScore > cur.tempScore
	}
	return cand.motif.SemiCanonical && !cur.motif.SemiCanonical
}

// fragmentMismatchScore sums the mismatch penalty of reading n read bases
// starting at readPos against n reference bases starting at (tidx,
// refPos), the per-base cost §4.5.2's cut-position scan assigns to
// whichever side of the cut a disputed overlap base lands on.
func fragmentMismatchScore(ref *genome.Reference, sc *scoring.Config, read []byte, tidx, readPos, refPos, n int) float64 {
	if n <= 0 {
		return 0
	}
	total := 0.0
	for i := 0; i < n; i++ {
		if readPos+i < 0 || readPos+i >= len(read) {
			continue
		}
		refBase, err := ref.GetBase(tidx, refPos+i)
		if err != nil {
			continue
		}
		readBase := genome.EncodeBase(read[readPos+i])
		total += sc.Score(readBase, scoring.RefMask(1)<<refBase, 40)
	}
	return total
}

func growBuf(b []byte, n int) []byte {
	if cap(b) < n {
		return make([]byte, n)
	}
	return b[:n]
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
