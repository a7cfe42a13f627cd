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

// Package report implements §4.6's scoring/reporting gate and the
// external reporting sink surface of §6: report criteria (minimum score,
// full coverage, non-redundancy), 5'->3' edit re-expression, and the
// query surface (bestUnp1, bestPair, ...) a caller polls to learn what
// has been found for a read so far.
package report

import (
	"sort"
	"sync"

	"github.com/shenwei356/natsort"

	"github.com/bioseq/hisplice/model"
	"github.com/bioseq/hisplice/scoring"
	"github.com/bioseq/hisplice/search"
)

// AlnRes is one reportable alignment (§6, "Produced to the sink").
type AlnRes struct {
	Score          float64
	SpliceScore    float64
	Edits          []model.Edit
	TIdx           int
	TOff           int
	FW             bool
	Len            int
	Trim5, Trim3   int
	NearSpliceSites bool
}

// FromGenomeHit builds an AlnRes from a fully resolved GenomeHit,
// re-expressing the edit list 5'->3' per §4.6 ("Edits are re-expressed
// 5'->3' for output"): for a reverse-complemented hit this means walking
// the edits back-to-front and flipping each position about the hit's
// length.
func FromGenomeHit(sc *scoring.Config, hit *model.GenomeHit, nearSpliceSites bool) AlnRes {
	res := AlnRes{
		Score:       search.ScoreHit(sc, hit),
		TIdx:        hit.TIdx,
		TOff:        hit.TOff,
		FW:          hit.FW,
		Len:         hit.Len,
		Trim5:       hit.Trim5,
		Trim3:       hit.Trim3,
		NearSpliceSites: nearSpliceSites,
	}
	if hit.Edits == nil {
		return res
	}
	src := *hit.Edits
	res.Edits = make([]model.Edit, len(src))
	if hit.FW {
		copy(res.Edits, src)
	} else {
		for i, e := range src {
			e.Pos = hit.Len - 1 - e.Pos
			res.Edits[len(src)-1-i] = e
		}
	}
	for _, e := range res.Edits {
		if e.Type == model.SPL {
			res.SpliceScore += 1
		}
	}
	return res
}

// MeetsReportCriteria implements §4.6's report gate: score at or above
// minScore, full read coverage, and invariant I4's coordinate bound.
func MeetsReportCriteria(res AlnRes, minScore float64, readLen int) bool {
	if res.Score < minScore {
		return false
	}
	if res.Trim5 != 0 {
		return false
	}
	if res.Len+res.Trim5+res.Trim3 != readLen {
		return false
	}
	return true
}

// Redundant reports whether res duplicates an already-reported result:
// same leftmost coordinate and an identical edit list after orientation
// canonicalization (§4.6).
func Redundant(res AlnRes, reported []AlnRes) bool {
	for _, r := range reported {
		if r.TIdx != res.TIdx || r.TOff != res.TOff || r.FW != res.FW {
			continue
		}
		if editsEqual(r.Edits, res.Edits) {
			return true
		}
	}
	return false
}

func editsEqual(a, b []model.Edit) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Pos != b[i].Pos || a[i].Type != b[i].Type || a[i].SplLen != b[i].SplLen {
			return false
		}
	}
	return true
}

// Sink is the reporting collaborator of §6: a shared, internally
// synchronized destination for alignment results, queried by the driver
// for per-orientation and pair state.
type Sink interface {
	// Report records a concordant pair's alignments for one read index.
	// Returns true if the caller should stop searching this read (khits
	// satisfied).
	Report(readIndex int, left, right AlnRes) (done bool)

	// ReportUnpaired records a single mate's best alignment when no
	// concordant pair (or no mate at all) was found, filed into the
	// mate-1 or mate-2 bucket per isMate2. Returns true if the caller
	// should stop searching this read (khits satisfied).
	ReportUnpaired(readIndex int, isMate2 bool, res AlnRes) (done bool)

	BestUnp1() (AlnRes, bool)
	BestUnp2() (AlnRes, bool)
	BestPair() (AlnRes, AlnRes, bool)
	BestSplicedUnp1() (AlnRes, bool)
	BestSplicedUnp2() (AlnRes, bool)

	GetUnp1() []AlnRes
	GetUnp2() []AlnRes

	DoneConcordant() bool
	KHits() int
}

// MemSink is a simple in-process Sink implementation: every report call
// is serialized by a mutex (§5, "the sink serializes per-read reports"),
// and results are kept sorted for BestUnp*/BestPair by descending score.
type MemSink struct {
	khits int

	mu    sync.Mutex
	unp1  []AlnRes
	unp2  []AlnRes
	pairL []AlnRes
	pairR []AlnRes
	done  bool
}

// NewMemSink creates a Sink whose Report/ReportUnpaired return true once
// a list holds khits alignments. The lists are not capped: later
// non-redundant alignments are still stored.
func NewMemSink(khits int) *MemSink {
	return &MemSink{khits: khits}
}

func (s *MemSink) Report(readIndex int, left, right AlnRes) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !Redundant(left, s.pairL) {
		s.pairL = insertSorted(s.pairL, left)
		s.pairR = insertSorted(s.pairR, right)
		s.done = true
	}
	return len(s.pairL) >= s.khits && s.khits > 0
}

func (s *MemSink) ReportUnpaired(readIndex int, isMate2 bool, res AlnRes) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := &s.unp1
	if isMate2 {
		list = &s.unp2
	}
	if !Redundant(res, *list) {
		*list = insertSorted(*list, res)
	}
	return len(*list) >= s.khits && s.khits > 0
}

func insertSorted(list []AlnRes, res AlnRes) []AlnRes {
	list = append(list, res)
	sort.SliceStable(list, func(i, j int) bool { return list[i].Score > list[j].Score })
	return list
}

func (s *MemSink) BestUnp1() (AlnRes, bool) { return bestOf(s.unp1) }
func (s *MemSink) BestUnp2() (AlnRes, bool) { return bestOf(s.unp2) }

func (s *MemSink) BestPair() (AlnRes, AlnRes, bool) {
	if len(s.pairL) == 0 {
		return AlnRes{}, AlnRes{}, false
	}
	return s.pairL[0], s.pairR[0], true
}

func (s *MemSink) BestSplicedUnp1() (AlnRes, bool) { return bestSpliced(s.unp1) }
func (s *MemSink) BestSplicedUnp2() (AlnRes, bool) { return bestSpliced(s.unp2) }

func bestOf(list []AlnRes) (AlnRes, bool) {
	if len(list) == 0 {
		return AlnRes{}, false
	}
	return list[0], true
}

func bestSpliced(list []AlnRes) (AlnRes, bool) {
	for _, r := range list {
		if r.SpliceScore > 0 {
			return r, true
		}
	}
	return AlnRes{}, false
}

func (s *MemSink) GetUnp1() []AlnRes { return s.unp1 }
func (s *MemSink) GetUnp2() []AlnRes { return s.unp2 }

func (s *MemSink) DoneConcordant() bool { return s.done }
func (s *MemSink) KHits() int           { return s.khits }

// SortContigsNaturally orders contig names the way a multi-chromosome
// summary should read (chr1, chr2, ..., chr10, chrX), using the same
// natural-sort comparator the rest of the corpus reaches for instead of
// plain lexicographic ordering.
func SortContigsNaturally(names []string) {
	sort.Slice(names, func(i, j int) bool {
		return natsort.Compare(names[i], names[j], false)
	})
}
