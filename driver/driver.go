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

// Package driver implements §4.1's alignment driver: initRead/initPair
// set up the per-orientation search state for one read (or read pair),
// and run loops partial search and hybrid extension to completion,
// applying early termination and mate rescue before reporting through a
// report.Sink.
package driver

import (
	"math"

	"github.com/bioseq/hisplice/fmindex"
	"github.com/bioseq/hisplice/genome"
	"github.com/bioseq/hisplice/logging"
	"github.com/bioseq/hisplice/model"
	"github.com/bioseq/hisplice/report"
	"github.com/bioseq/hisplice/scoring"
	"github.com/bioseq/hisplice/search"
	"github.com/bioseq/hisplice/seqenc"
	"github.com/bioseq/hisplice/splice"
	"github.com/bioseq/hisplice/tempvars"
)

var log = logging.MustGetLogger("hisplice/driver")

// orientation is one (read, fw/rc) search candidate the driver's priority
// loop picks among (§4.1, "highest-scoring unfinished candidate").
type orientation struct {
	fw      bool
	read    []byte
	chain   *model.ReadBWTHit
	anchors []*model.GenomeHit
	best    *model.GenomeHit
	done    bool
}

func newOrientation(fw bool, read []byte) *orientation {
	chain := &model.ReadBWTHit{}
	chain.Reset(fw, len(read))
	return &orientation{fw: fw, read: read, chain: chain}
}

// candidateScore implements §4.1's priority formula: score = Σ seed² −
// penalty·actualPartialSearches − 2^(2·actualPartialSearches).
func candidateScore(o *orientation, penalty float64) float64 {
	if o.done {
		return math.Inf(-1)
	}
	sum := 0.0
	for _, h := range o.chain.Hits {
		sum += float64(h.Len) * float64(h.Len)
	}
	n := float64(o.chain.NumPartialSearch)
	return sum - penalty*n - math.Pow(2, 2*n)
}

// Task bundles one read (or read pair) through a full run: it owns the
// per-thread scratch pool(s), the hybrid search context(s) and the
// orientation candidates, and is discarded after run returns.
type Task struct {
	opts Options

	idx  fmindex.Hierarchical
	ref  *genome.Reference
	ssdb *splice.DB
	sc   *scoring.Config
	sink report.Sink

	readID int64
	pool1  *tempvars.Pool
	pool2  *tempvars.Pool

	mate1 []*orientation
	mate2 []*orientation
}

// InitRead sets up a single-end alignment task: one orientation candidate
// per requested strand (§4.1's initRead, nofw/norc suppress the matching
// candidate).
func InitRead(idx fmindex.Hierarchical, ref *genome.Reference, ssdb *splice.DB, sc *scoring.Config, sink report.Sink, opts Options, readID int64, read, rc []byte, nofw, norc bool) *Task {
	t := &Task{opts: opts, idx: idx, ref: ref, ssdb: ssdb, sc: sc, sink: sink, readID: readID, pool1: tempvars.New()}
	if !nofw {
		t.mate1 = append(t.mate1, newOrientation(true, read))
	}
	if !norc {
		t.mate1 = append(t.mate1, newOrientation(false, rc))
	}
	return t
}

// InitPair is InitRead's paired-end counterpart (§4.1's initPair): each
// mate gets its own set of orientation candidates and its own scratch
// pool, since the two mates are extended independently until a
// concordant pairing attempt or mate rescue links them.
func InitPair(idx fmindex.Hierarchical, ref *genome.Reference, ssdb *splice.DB, sc *scoring.Config, sink report.Sink, opts Options, readID int64, read1, rc1, read2, rc2 []byte, nofw [2]bool, norc [2]bool) *Task {
	t := &Task{opts: opts, idx: idx, ref: ref, ssdb: ssdb, sc: sc, sink: sink, readID: readID, pool1: tempvars.New(), pool2: tempvars.New()}
	if !nofw[0] {
		t.mate1 = append(t.mate1, newOrientation(true, read1))
	}
	if !norc[0] {
		t.mate1 = append(t.mate1, newOrientation(false, rc1))
	}
	if !nofw[1] {
		t.mate2 = append(t.mate2, newOrientation(true, read2))
	}
	if !norc[1] {
		t.mate2 = append(t.mate2, newOrientation(false, rc2))
	}
	return t
}

// Run advances the task to completion, implementing §4.1's run loop
// (partial search, anchor selection + hybrid extension on chain
// completion, early termination, and — for pairs — concordant pairing
// attempts with mate rescue as a fallback).
func (t *Task) Run() {
	t.runMate(t.mate1, t.pool1)
	if t.pool2 != nil {
		t.runMate(t.mate2, t.pool2)
	}

	if t.pool2 == nil {
		t.reportUnpaired(t.mate1, false)
		return
	}

	best1 := bestOrientation(t.mate1)
	best2 := bestOrientation(t.mate2)
	if best1 != nil && best2 != nil && t.tryConcordant(best1, best2) {
		return
	}

	if best1 != nil && best2 == nil {
		if rescued := t.rescueMate(best1, t.mate2Read()); rescued != nil {
			t.reportPair(best1, rescued)
			return
		}
	} else if best2 != nil && best1 == nil {
		if rescued := t.rescueMate(best2, t.mate1Read()); rescued != nil {
			t.reportPair(rescued, best2)
			return
		}
	}

	t.reportUnpaired(t.mate1, false)
	t.reportUnpaired(t.mate2, true)
}

func (t *Task) mate1Read() []byte {
	if len(t.mate1) == 0 {
		return nil
	}
	return t.mate1[0].read
}

func (t *Task) mate2Read() []byte {
	if len(t.mate2) == 0 {
		return nil
	}
	return t.mate2[0].read
}

// runMate drives the priority loop of §4.1 for every orientation
// candidate of a single mate until all are done or early termination
// fires.
func (t *Task) runMate(cands []*orientation, pool *tempvars.Pool) {
	if len(cands) == 0 {
		return
	}
	minK := search.MinK(t.idx.Len())
	anchorCfg := t.opts.anchorConfig(minK)
	hybridCfg := t.opts.hybridConfig()

	bestScore := math.Inf(-1)
	bestSplicedCount := 0
	numSearched := 0

	for {
		pick := selectCandidate(cands, t.opts.EarlyTermMult)
		if pick == nil {
			break
		}
		if !pick.chain.Done {
			before := pick.chain.Cur
			search.PartialSearchOnce(t.idx, pick.read, pick.chain)
			if pick.chain.Cur == before && !pick.chain.Done {
				// Defensive: a partial search that neither advances Cur nor
				// marks Done would starve the priority loop forever. Mirrors
				// RunChain's stall guard (§7, InvariantViolation).
				log.Warningf("partial search stalled at cur=%d, abandoning orientation", before)
				pick.chain.Done = true
			}
		}
		if !pick.chain.Done {
			continue
		}

		numSearched++
		t.extendOrientation(pick, pool, anchorCfg, hybridCfg)
		if pick.best != nil && pick.best.Score > bestScore {
			bestScore = pick.best.Score
			if pick.best.SpliceScore > 0 {
				bestSplicedCount++
			}
		}

		if t.sc.MMPMax > 0 && bestScore > math.Inf(-1) {
			cutoff := math.Ceil(-bestScore/t.sc.MMPMax) + float64(bestSplicedCount) + 1
			if float64(numSearched) > cutoff {
				log.Debugf("early termination after %d orientations searched (cutoff %.1f)", numSearched, cutoff)
				break
			}
		}

		if allDone(cands) {
			break
		}
	}
}

func selectCandidate(cands []*orientation, penalty float64) *orientation {
	var best *orientation
	bestScore := math.Inf(-1)
	for _, c := range cands {
		if c.done {
			continue
		}
		s := candidateScore(c, penalty)
		if best == nil || s > bestScore {
			best, bestScore = c, s
		}
	}
	return best
}

func allDone(cands []*orientation) bool {
	for _, c := range cands {
		if !c.done {
			return false
		}
	}
	return true
}

// extendOrientation runs anchor selection (§4.3) followed by hybrid
// extension (§4.4) on every anchor produced from o's completed chain,
// keeping the best-scoring resulting GenomeHit.
func (t *Task) extendOrientation(o *orientation, pool *tempvars.Pool, anchorCfg search.AnchorConfig, hybridCfg search.HybridConfig) {
	defer func() { o.done = true }()

	for {
		hit, ok := search.SelectBest(o.chain, anchorCfg)
		if !ok {
			break
		}
		o.anchors = search.BuildAnchors(t.idx, hit, pool, o.anchors, anchorCfg)
		if anchorCfg.KHits > 0 && len(o.anchors) >= anchorCfg.KHits {
			break
		}
	}
	if len(o.anchors) == 0 {
		return
	}

	candidates := len(o.anchors)
	combineCfg := t.opts.combineConfig()
	for _, anchor := range o.anchors {
		hc := search.NewHybridContext(t.idx, t.ref, t.ssdb, t.sc, pool, combineCfg, hybridCfg, candidates, t.opts.BudgetMult)
		hc.MinK = search.MinK(t.idx.Len())
		hc.ReadID = t.readID
		anchor.Score = search.ScoreHit(t.sc, anchor)
		result, _ := hc.Extend(0, o.read, anchor)
		if o.best == nil || result.Score > o.best.Score {
			o.best = result
		}
	}
}

func bestOrientation(cands []*orientation) *model.GenomeHit {
	var best *model.GenomeHit
	for _, c := range cands {
		if c.best == nil {
			continue
		}
		if best == nil || c.best.Score > best.Score {
			best = c.best
		}
	}
	return best
}

func (t *Task) tryConcordant(a, b *model.GenomeHit) bool {
	if a.TIdx != b.TIdx {
		return false
	}
	lo, hi := a.TOff, b.TOff
	if lo > hi {
		lo, hi = hi, lo
	}
	if hi-lo > t.opts.RescueWindow() {
		return false
	}
	t.reportPair(a, b)
	return true
}

func (t *Task) reportPair(a, b *model.GenomeHit) {
	left := report.FromGenomeHit(t.sc, a, a.SpliceScore > 0)
	right := report.FromGenomeHit(t.sc, b, b.SpliceScore > 0)
	readLen := a.RdEnd() + a.Trim5 + a.Trim3
	if !report.MeetsReportCriteria(left, t.opts.MinScore, readLen) {
		return
	}
	t.sink.Report(0, left, right)
}

func (t *Task) reportUnpaired(cands []*orientation, isMate2 bool) {
	best := bestOrientation(cands)
	if best == nil {
		return
	}
	readLen := best.RdEnd() + best.Trim5 + best.Trim3
	res := report.FromGenomeHit(t.sc, best, best.SpliceScore > 0)
	if !report.MeetsReportCriteria(res, t.opts.MinScore, readLen) {
		return
	}
	t.sink.ReportUnpaired(0, isMate2, res)
}

// rescueMate implements the mate-rescue fallback of §4.1 (SUPPLEMENTED
// FEATURES, "Mate rescue direction"): a bounded, windowed direct
// comparison of mateRead against the reference around the already
// anchored mate's coordinate, in both orientations.
func (t *Task) rescueMate(anchored *model.GenomeHit, mateRead []byte) *model.GenomeHit {
	if mateRead == nil {
		return nil
	}
	window := t.opts.RescueWindow()
	start := anchored.TOff - window
	if start < 0 {
		start = 0
	}
	span := 2*window + len(mateRead)

	buf := make([]byte, span)
	n, err := t.ref.GetStretch(buf, anchored.TIdx, start, span)
	if err != nil || n < len(mateRead) {
		return nil
	}
	buf = buf[:n]

	rc, err := seqenc.ReverseComplement(mateRead)
	if err != nil {
		return nil
	}

	var best *model.GenomeHit
	for _, cand := range []struct {
		read []byte
		fw   bool
	}{{mateRead, anchored.FW}, {rc, !anchored.FW}} {
		hit := bestWindowedPlacement(t.ref, t.sc, t.pool1, anchored.TIdx, start, buf, cand.read, cand.fw, t.opts.MaxDirectMismatch)
		if hit != nil && (best == nil || hit.Score > best.Score) {
			best = hit
		}
	}
	return best
}

// bestWindowedPlacement slides mateRead across buf (the reference window
// starting at windowStart in contig), keeping the offset with the fewest
// mismatches within maxMM, and returns the resulting GenomeHit scored via
// search.ScoreHit.
func bestWindowedPlacement(ref *genome.Reference, sc *scoring.Config, pool *tempvars.Pool, contig, windowStart int, buf, mateRead []byte, fw bool, maxMM int) *model.GenomeHit {
	if len(mateRead) == 0 || len(buf) < len(mateRead) {
		return nil
	}
	var bestOff, bestMM int = -1, maxMM + 1
	for off := 0; off+len(mateRead) <= len(buf); off++ {
		mm := 0
		for i := 0; i < len(mateRead) && mm <= maxMM; i++ {
			if genome.EncodeBase(mateRead[i]) != genome.EncodeBase(buf[off+i]) {
				mm++
			}
		}
		if mm <= maxMM && mm < bestMM {
			bestOff, bestMM = off, mm
		}
	}
	if bestOff < 0 {
		return nil
	}

	editsPtr := pool.AcquireEdits()
	edits := *editsPtr
	for i := 0; i < len(mateRead); i++ {
		if genome.EncodeBase(mateRead[i]) != genome.EncodeBase(buf[bestOff+i]) {
			edits = append(edits, model.Edit{Pos: i, Type: model.MM, QChr: mateRead[i], Chr: buf[bestOff+i]})
		}
	}
	*editsPtr = edits

	hit := &model.GenomeHit{FW: fw, RdOff: 0, Len: len(mateRead), TIdx: contig, TOff: windowStart + bestOff, Edits: editsPtr}
	hit.Score = search.ScoreHit(sc, hit)
	return hit
}

