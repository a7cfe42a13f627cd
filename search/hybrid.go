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

package search

import (
	"encoding/binary"
	"math"

	"github.com/zeebo/wyhash"

	"github.com/bioseq/hisplice/combine"
	"github.com/bioseq/hisplice/fmindex"
	"github.com/bioseq/hisplice/genome"
	"github.com/bioseq/hisplice/model"
	"github.com/bioseq/hisplice/scoring"
	"github.com/bioseq/hisplice/splice"
	"github.com/bioseq/hisplice/tempvars"
)

// HybridConfig bounds the recursive extension (§4.4, §9 "one immutable
// configuration value").
type HybridConfig struct {
	MinScore          float64
	MaxDirectMismatch int // m, when not near the read end
	MaxDirectIndel    int // default 3
	SkipAheadPenalty  float64
}

// HybridContext bundles every collaborator the recursive extension needs
// (§9, "group the read-only ones into a single immutable context value").
// The mutable pieces — the memo set and the localindexatts budget counter
// — live alongside it; the driver creates a fresh HybridContext for each
// anchor it extends, and nothing here is shared across goroutines.
type HybridContext struct {
	Idx        fmindex.Hierarchical
	Ref        *genome.Reference
	SSDB       *splice.DB
	Scoring    *scoring.Config
	Pool       *tempvars.Pool
	CombineCfg combine.Config
	Cfg        HybridConfig
	ReadID     int64

	MinK      int
	BestScore float64

	memo           map[uint64]struct{}
	localIndexAtts int
	maxLocalAtts   int
}

// NewHybridContext wires up a HybridContext with the budget formula of
// §4.4 ("State budget"): max(10, candidates*(-minScore/mmpMax)*mult).
func NewHybridContext(idx fmindex.Hierarchical, ref *genome.Reference, ssdb *splice.DB, sc *scoring.Config, pool *tempvars.Pool, combineCfg combine.Config, cfg HybridConfig, candidates int, mult float64) *HybridContext {
	budget := 10.0
	if sc.MMPMax > 0 {
		b := float64(candidates) * (-cfg.MinScore / sc.MMPMax) * mult
		if b > budget {
			budget = b
		}
	}
	return &HybridContext{
		Idx:          idx,
		Ref:          ref,
		SSDB:         ssdb,
		Scoring:      sc,
		Pool:         pool,
		CombineCfg:   combineCfg,
		Cfg:          cfg,
		BestScore:    math.Inf(-1),
		memo:         make(map[uint64]struct{}),
		maxLocalAtts: int(budget),
	}
}

func memoKey(readIndex int, h *model.GenomeHit) uint64 {
	var buf [40]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(readIndex))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(h.TIdx))
	binary.LittleEndian.PutUint64(buf[16:24], uint64(h.TOff))
	binary.LittleEndian.PutUint64(buf[24:32], uint64(h.RdOff))
	binary.LittleEndian.PutUint64(buf[32:40], uint64(h.Len))
	return wyhash.Hash(buf[:], 0)
}

// budgetExhausted reports §7's BudgetExhausted condition: the recursion
// keeps its best-so-far result rather than propagating a failure.
func (hc *HybridContext) budgetExhausted() bool {
	return hc.localIndexAtts > hc.maxLocalAtts
}

// Extend is the recursive bidirectional hybrid extension of §4.4. It
// returns the best full or partial extension reachable from hit and
// whether any new work happened (false if hit was already memoized).
func (hc *HybridContext) Extend(readIndex int, read []byte, hit *model.GenomeHit) (*model.GenomeHit, bool) {
	key := memoKey(readIndex, hit)
	if _, seen := hc.memo[key]; seen {
		return hit, false
	}
	hc.memo[key] = struct{}{}

	readLen := len(read)
	hitoff, hitlen := hit.RdOff, hit.Len

	if hitoff == 0 && hitoff+hitlen == readLen {
		return hc.completeFull(readIndex, read, hit), true
	}

	leftUncovered := hitoff
	rightUncovered := readLen - (hitoff + hitlen)

	if leftUncovered > 0 && (rightUncovered == 0 || leftUncovered >= rightUncovered) {
		return hc.extendLeft(readIndex, read, hit, leftUncovered), true
	}
	return hc.extendRight(readIndex, read, hit, rightUncovered), true
}

// completeFull implements §4.4(a): once the read is fully covered, probe
// the splice-site DB near each end for a shorter, junction-spanning
// alternate and keep it only if it scores at least as well. The §4.5.3
// anchor-length gate is applied inside combine.CombineWith; the
// alternate's mismatch count is not checked against maxMM.
func (hc *HybridContext) completeFull(readIndex int, read []byte, hit *model.GenomeHit) *model.GenomeHit {
	best := hit
	anchorLen := hit.Len
	maxMM := anchorLen / 4

	for _, leftSite := range hc.SSDB.GetLeftSpliceSites(hit.TIdx, hit.TOff, anchorLen, strandByte(hit.FW), hc.ReadID, true, nil) {
		alt := hc.trySpliceCompletion(readIndex, read, hit, leftSite, true, maxMM)
		if alt != nil && alt.Score >= best.Score {
			best = alt
		}
	}
	for _, rightSite := range hc.SSDB.GetRightSpliceSites(hit.TIdx, hit.TEnd(), anchorLen, strandByte(hit.FW), hc.ReadID, true, nil) {
		alt := hc.trySpliceCompletion(readIndex, read, hit, rightSite, false, maxMM)
		if alt != nil && alt.Score >= best.Score {
			best = alt
		}
	}
	if best.Score > hc.BestScore {
		hc.BestScore = best.Score
	}
	return best
}

func (hc *HybridContext) trySpliceCompletion(readIndex int, read []byte, hit *model.GenomeHit, site *splice.Site, left bool, maxMM int) *model.GenomeHit {
	zero := &model.GenomeHit{
		FW:    hit.FW,
		RdOff: hit.RdOff,
		Len:   0,
		TIdx:  hit.TIdx,
		Edits: hc.Pool.AcquireEdits(),
	}
	if left {
		zero.TOff = site.Left
	} else {
		zero.TOff = site.Right
	}
	a, b := zero, hit
	if !left {
		a, b = hit, zero
	}
	merged, ok := combine.CombineWith(hc.Ref, hc.SSDB, hc.Scoring, hc.Pool, read, a, b, hc.CombineCfg, hc.ReadID)
	if !ok {
		return nil
	}
	merged.Score = ScoreHit(hc.Scoring, merged)
	return merged
}

func strandByte(fw bool) byte {
	if fw {
		return '+'
	}
	return '-'
}

// extendLeft implements §4.4(b): in priority order, try a splice-driven
// jump, a local-index probe, direct comparison extension, and finally a
// skip-ahead fallback. No global-index probe is made.
func (hc *HybridContext) extendLeft(readIndex int, read []byte, hit *model.GenomeHit, uncovered int) *model.GenomeHit {
	if alt := hc.spliceJumpLeft(readIndex, read, hit); alt != nil {
		return hc.Extend1(readIndex, read, alt)
	}
	if alt := hc.localProbeLeft(readIndex, read, hit); alt != nil {
		return hc.Extend1(readIndex, read, alt)
	}
	if alt := hc.directExtendLeft(read, hit); alt != nil {
		return hc.Extend1(readIndex, read, alt)
	}
	if hc.MinK > 0 && uncovered > hc.MinK {
		skipped := *hit
		skipped.RdOff = hit.RdOff - hc.MinK
		if skipped.RdOff < 0 {
			skipped.RdOff = 0
		}
		skipped.Score = hit.Score - hc.Scoring.MMPMax
		return hc.Extend1(readIndex, read, &skipped)
	}
	return hit
}

// extendRight is the mirror of extendLeft for the right-uncovered case
// (§4.4.c).
func (hc *HybridContext) extendRight(readIndex int, read []byte, hit *model.GenomeHit, uncovered int) *model.GenomeHit {
	if alt := hc.spliceJumpRight(readIndex, read, hit); alt != nil {
		return hc.Extend1(readIndex, read, alt)
	}
	if alt := hc.localProbeRight(readIndex, read, hit); alt != nil {
		return hc.Extend1(readIndex, read, alt)
	}
	if alt := hc.directExtendRight(read, hit); alt != nil {
		return hc.Extend1(readIndex, read, alt)
	}
	if hc.MinK > 0 && uncovered > hc.MinK {
		skipped := *hit
		skipped.Len = hit.Len + hc.MinK
		if skipped.RdOff+skipped.Len > len(read) {
			skipped.Len = len(read) - skipped.RdOff
		}
		skipped.Score = hit.Score - hc.Scoring.MMPMax
		return hc.Extend1(readIndex, read, &skipped)
	}
	return hit
}

// Extend1 recurses once more if budget remains, otherwise returns cand
// as the best-so-far result (§7, BudgetExhausted absorbed, not
// propagated).
func (hc *HybridContext) Extend1(readIndex int, read []byte, cand *model.GenomeHit) *model.GenomeHit {
	if hc.budgetExhausted() {
		return cand
	}
	result, _ := hc.Extend(readIndex, read, cand)
	return result
}

func (hc *HybridContext) spliceJumpLeft(readIndex int, read []byte, hit *model.GenomeHit) *model.GenomeHit {
	sites := hc.SSDB.GetLeftSpliceSites(hit.TIdx, hit.TOff, hit.Len, strandByte(hit.FW), hc.ReadID, true, nil)
	for _, s := range sites {
		partner := &model.GenomeHit{FW: hit.FW, RdOff: hit.RdOff, Len: 0, TIdx: hit.TIdx, TOff: s.Left, Edits: hc.Pool.AcquireEdits()}
		if _, ok := combine.Compatible(partner, hit, hc.CombineCfg); !ok {
			continue
		}
		merged, ok := combine.CombineWith(hc.Ref, hc.SSDB, hc.Scoring, hc.Pool, read, partner, hit, hc.CombineCfg, hc.ReadID)
		if ok {
			merged.Score = ScoreHit(hc.Scoring, merged)
			return merged
		}
	}
	return nil
}

func (hc *HybridContext) spliceJumpRight(readIndex int, read []byte, hit *model.GenomeHit) *model.GenomeHit {
	sites := hc.SSDB.GetRightSpliceSites(hit.TIdx, hit.TEnd(), hit.Len, strandByte(hit.FW), hc.ReadID, true, nil)
	for _, s := range sites {
		partner := &model.GenomeHit{FW: hit.FW, RdOff: hit.RdEnd(), Len: 0, TIdx: hit.TIdx, TOff: s.Right, Edits: hc.Pool.AcquireEdits()}
		if _, ok := combine.Compatible(hit, partner, hc.CombineCfg); !ok {
			continue
		}
		merged, ok := combine.CombineWith(hc.Ref, hc.SSDB, hc.Scoring, hc.Pool, read, hit, partner, hc.CombineCfg, hc.ReadID)
		if ok {
			merged.Score = ScoreHit(hc.Scoring, merged)
			return merged
		}
	}
	return nil
}

// localProbeLeft implements §4.4.b.2: a right-to-left local-index search
// starting just left of the anchor, widened until a small-enough range is
// found, tried across up to two neighboring tiles.
func (hc *HybridContext) localProbeLeft(readIndex int, read []byte, hit *model.GenomeHit) *model.GenomeHit {
	local, ok := hc.Idx.GetLocalEbwt(hit.TIdx, hit.TOff)
	if !ok {
		return nil
	}
	for tries := 0; tries < 2; tries++ {
		if hc.budgetExhausted() {
			return nil
		}
		hc.localIndexAtts++
		if cand := hc.probeLocalOnce(local, read, hit, true); cand != nil {
			return cand
		}
		prev, ok := local.PrevLocalEbwt()
		if !ok {
			return nil
		}
		local = prev
	}
	return nil
}

// localProbeRight is the mirror of localProbeLeft.
func (hc *HybridContext) localProbeRight(readIndex int, read []byte, hit *model.GenomeHit) *model.GenomeHit {
	local, ok := hc.Idx.GetLocalEbwt(hit.TIdx, hit.TEnd())
	if !ok {
		return nil
	}
	for tries := 0; tries < 2; tries++ {
		if hc.budgetExhausted() {
			return nil
		}
		hc.localIndexAtts++
		if cand := hc.probeLocalOnce(local, read, hit, false); cand != nil {
			return cand
		}
		next, ok := local.NextLocalEbwt()
		if !ok {
			return nil
		}
		local = next
	}
	return nil
}

// probeLocalOnce runs a single bounded local-index partial search
// anchored at the edge of hit, widening the match until the range is
// small enough to resolve (§4.4.b.2: "widening extoff until a range of
// size ≤ 5"), then combines the best resolved coordinate with hit.
func (hc *HybridContext) probeLocalOnce(local fmindex.Local, read []byte, hit *model.GenomeHit, left bool) *model.GenomeHit {
	chain := &model.ReadBWTHit{FW: hit.FW, Len: len(read)}
	if left {
		chain.Cur = len(read) - hit.RdOff
	} else {
		chain.Cur = len(read) - hit.RdEnd()
	}

	for !chain.Done {
		before := chain.Cur
		PartialSearchOnce(local, read, chain)
		if chain.Cur == before || len(chain.Hits) == 0 {
			break
		}
		last := &chain.Hits[len(chain.Hits)-1]
		if last.Empty() {
			break
		}
		if last.Size() > 5 {
			continue
		}
		ResolveCoords(local, last)
		for _, c := range last.Coords {
			contig := local.TIdx()
			globalOff := local.LocalOffset() + c.Offset
			partner := &model.GenomeHit{FW: hit.FW, TIdx: contig, TOff: globalOff, Len: last.Len, Edits: hc.Pool.AcquireEdits()}
			if left {
				partner.RdOff = hit.RdOff - last.Len
			} else {
				partner.RdOff = hit.RdEnd()
			}
			var merged *model.GenomeHit
			var ok bool
			if left {
				merged, ok = combine.CombineWith(hc.Ref, hc.SSDB, hc.Scoring, hc.Pool, read, partner, hit, hc.CombineCfg, hc.ReadID)
			} else {
				merged, ok = combine.CombineWith(hc.Ref, hc.SSDB, hc.Scoring, hc.Pool, read, hit, partner, hc.CombineCfg, hc.ReadID)
			}
			if ok {
				merged.Score = ScoreHit(hc.Scoring, merged)
				return merged
			}
		}
	}
	return nil
}

// directExtendLeft implements §4.4.b.4: compare the read directly against
// reference bases leftward of the anchor, tolerating up to m mismatches.
// No indel is opened here: a read that needs one to match does not extend.
func (hc *HybridContext) directExtendLeft(read []byte, hit *model.GenomeHit) *model.GenomeHit {
	n := hit.RdOff
	if n <= 0 {
		return nil
	}
	buf := hc.Pool.GrowRefBuf1(n)
	written, err := hc.Ref.GetStretch(buf, hit.TIdx, hit.TOff-n, n)
	if err != nil || written < n {
		return nil
	}
	mm := 0
	editsPtr := hc.Pool.AcquireEdits()
	edits := *editsPtr
	for i := 0; i < n; i++ {
		readBase := genome.EncodeBase(read[hit.RdOff-n+i])
		refBase := genome.EncodeBase(buf[i])
		if readBase != refBase {
			mm++
			if mm > hc.Cfg.MaxDirectMismatch {
				return nil
			}
			edits = append(edits, model.Edit{Pos: i, Type: model.MM, QChr: read[hit.RdOff-n+i], Chr: buf[i]})
		}
	}
	*editsPtr = edits
	ext := &model.GenomeHit{FW: hit.FW, RdOff: hit.RdOff - n, Len: n, TIdx: hit.TIdx, TOff: hit.TOff - n, Edits: editsPtr}
	merged, ok := combine.CombineWith(hc.Ref, hc.SSDB, hc.Scoring, hc.Pool, read, ext, hit, hc.CombineCfg, hc.ReadID)
	if !ok {
		return nil
	}
	merged.Score = ScoreHit(hc.Scoring, merged)
	return merged
}

// directExtendRight is the mirror of directExtendLeft.
func (hc *HybridContext) directExtendRight(read []byte, hit *model.GenomeHit) *model.GenomeHit {
	n := len(read) - hit.RdEnd()
	if n <= 0 {
		return nil
	}
	buf := hc.Pool.GrowRefBuf2(n)
	written, err := hc.Ref.GetStretch(buf, hit.TIdx, hit.TEnd(), n)
	if err != nil || written < n {
		return nil
	}
	mm := 0
	editsPtr := hc.Pool.AcquireEdits()
	edits := *editsPtr
	for i := 0; i < n; i++ {
		readBase := genome.EncodeBase(read[hit.RdEnd()+i])
		refBase := genome.EncodeBase(buf[i])
		if readBase != refBase {
			mm++
			if mm > hc.Cfg.MaxDirectMismatch {
				return nil
			}
			edits = append(edits, model.Edit{Pos: i, Type: model.MM, QChr: read[hit.RdEnd()+i], Chr: buf[i]})
		}
	}
	*editsPtr = edits
	ext := &model.GenomeHit{FW: hit.FW, RdOff: hit.RdEnd(), Len: n, TIdx: hit.TIdx, TOff: hit.TEnd(), Edits: editsPtr}
	merged, ok := combine.CombineWith(hc.Ref, hc.SSDB, hc.Scoring, hc.Pool, read, hit, ext, hc.CombineCfg, hc.ReadID)
	if !ok {
		return nil
	}
	merged.Score = ScoreHit(hc.Scoring, merged)
	return merged
}

// ScoreHit recomputes a GenomeHit's score from its edit list under sc,
// implementing §4.6's score computation (and, by construction, invariant
// I3 whenever callers trust this instead of a stale cached value).
func ScoreHit(sc *scoring.Config, hit *model.GenomeHit) float64 {
	score := sc.Match * float64(hit.Len)
	if hit.Edits == nil {
		return score
	}
	var lastGapType model.EditType = model.MM
	inGap := false
	var splDirs []model.SplDir
	for _, e := range *hit.Edits {
		switch e.Type {
		case model.MM:
			score -= sc.Score(genome.EncodeBase(e.QChr), scoring.RefMask(1)<<genome.EncodeBase(e.Chr), 40)
			score -= sc.Match
			inGap = false
		case model.READ_GAP:
			if inGap && lastGapType == model.READ_GAP {
				score -= sc.ReadGapExtend
			} else {
				score -= sc.ReadGapOpen
			}
			inGap, lastGapType = true, model.READ_GAP
		case model.REF_GAP:
			if inGap && lastGapType == model.REF_GAP {
				score -= sc.RefGapExtend
			} else {
				score -= sc.RefGapOpen
			}
			inGap, lastGapType = true, model.REF_GAP
		case model.SPL:
			if e.Canonical || e.SemiCanonical || e.KnownSpl {
				score -= sc.CanSpl(e.SplLen)
			} else {
				score -= sc.NonCanSpl(e.SplLen)
			}
			splDirs = append(splDirs, e.SplDir)
			inGap = false
		}
	}
	if spliceDirConflict(splDirs) {
		score -= sc.ConflictSpl
	}
	return score
}

// spliceDirConflict reports whether any two of an alignment's splice
// edits disagree on strand, per §4.6: conflictSpl is charged once per
// alignment, not once per disagreeing pair.
func spliceDirConflict(dirs []model.SplDir) bool {
	for i := 0; i < len(dirs); i++ {
		if dirs[i] == model.SplUnknown {
			continue
		}
		for j := i + 1; j < len(dirs); j++ {
			if dirs[j] == model.SplUnknown {
				continue
			}
			if dirs[j] != dirs[i] {
				return true
			}
		}
	}
	return false
}
