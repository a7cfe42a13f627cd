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

package report

import (
	"testing"

	"github.com/bioseq/hisplice/model"
	"github.com/bioseq/hisplice/scoring"
)

func TestFromGenomeHitReexpressesEditsForReverseStrand(t *testing.T) {
	sc := scoring.Default()
	edits := []model.Edit{{Pos: 2, Type: model.MM, QChr: 'A', Chr: 'C'}}
	hit := &model.GenomeHit{FW: false, Len: 10, Edits: &edits}

	res := FromGenomeHit(sc, hit, false)
	if len(res.Edits) != 1 {
		t.Fatalf("expected 1 edit, got %d", len(res.Edits))
	}
	if res.Edits[0].Pos != 7 {
		t.Fatalf("expected position flipped to hit.Len-1-pos = 7, got %d", res.Edits[0].Pos)
	}
}

func TestFromGenomeHitKeepsForwardEditOrder(t *testing.T) {
	sc := scoring.Default()
	edits := []model.Edit{{Pos: 1, Type: model.MM}, {Pos: 5, Type: model.MM}}
	hit := &model.GenomeHit{FW: true, Len: 10, Edits: &edits}

	res := FromGenomeHit(sc, hit, false)
	if res.Edits[0].Pos != 1 || res.Edits[1].Pos != 5 {
		t.Fatalf("expected forward edits unchanged in order/position, got %+v", res.Edits)
	}
}

func TestFromGenomeHitCountsSpliceScore(t *testing.T) {
	sc := scoring.Default()
	edits := []model.Edit{{Pos: 3, Type: model.SPL}, {Pos: 6, Type: model.SPL}}
	hit := &model.GenomeHit{FW: true, Len: 20, Edits: &edits}

	res := FromGenomeHit(sc, hit, true)
	if res.SpliceScore != 2 {
		t.Fatalf("expected SpliceScore 2 for two SPL edits, got %v", res.SpliceScore)
	}
}

func TestMeetsReportCriteriaRejectsBelowMinScore(t *testing.T) {
	res := AlnRes{Score: -50, Len: 50}
	if MeetsReportCriteria(res, -40, 50) {
		t.Fatalf("expected score -50 to fail a -40 minimum")
	}
}

func TestMeetsReportCriteriaRejectsTrimmed5Prime(t *testing.T) {
	res := AlnRes{Score: 0, Len: 40, Trim5: 10}
	if MeetsReportCriteria(res, -40, 50) {
		t.Fatalf("expected nonzero Trim5 to fail the report gate")
	}
}

func TestMeetsReportCriteriaRejectsPartialCoverage(t *testing.T) {
	res := AlnRes{Score: 0, Len: 30}
	if MeetsReportCriteria(res, -40, 50) {
		t.Fatalf("expected Len+Trim5+Trim3 != readLen to fail the report gate")
	}
}

func TestMeetsReportCriteriaAcceptsFullCoverage(t *testing.T) {
	res := AlnRes{Score: 0, Len: 50}
	if !MeetsReportCriteria(res, -40, 50) {
		t.Fatalf("expected a full-coverage, above-threshold result to pass")
	}
}

func TestRedundantDetectsSameCoordinateAndEdits(t *testing.T) {
	reported := []AlnRes{{TIdx: 0, TOff: 100, FW: true, Edits: []model.Edit{{Pos: 3, Type: model.MM}}}}
	res := AlnRes{TIdx: 0, TOff: 100, FW: true, Edits: []model.Edit{{Pos: 3, Type: model.MM}}}
	if !Redundant(res, reported) {
		t.Fatalf("expected identical coordinate+edits to be flagged redundant")
	}
}

func TestRedundantIgnoresDifferentStrand(t *testing.T) {
	reported := []AlnRes{{TIdx: 0, TOff: 100, FW: true}}
	res := AlnRes{TIdx: 0, TOff: 100, FW: false}
	if Redundant(res, reported) {
		t.Fatalf("expected opposite-strand alignments at the same coordinate to not be redundant")
	}
}

func TestMemSinkReportsBestUnpairedByScore(t *testing.T) {
	s := NewMemSink(5)
	s.ReportUnpaired(0, false, AlnRes{Score: 10, TIdx: 0, TOff: 100})
	s.ReportUnpaired(0, false, AlnRes{Score: 20, TIdx: 0, TOff: 500})

	best, ok := s.BestUnp1()
	if !ok || best.Score != 20 {
		t.Fatalf("expected best unpaired score 20, got %v ok=%v", best.Score, ok)
	}
}

func TestMemSinkReportDeduplicatesRedundantResults(t *testing.T) {
	s := NewMemSink(5)
	edits := []model.Edit{{Pos: 1, Type: model.MM}}
	res := AlnRes{Score: 10, TIdx: 0, TOff: 100, Edits: edits}
	s.ReportUnpaired(0, false, res)
	s.ReportUnpaired(0, false, res)

	if len(s.GetUnp1()) != 1 {
		t.Fatalf("expected redundant report to be suppressed, got %d entries", len(s.GetUnp1()))
	}
}

func TestMemSinkReportMarksPairDone(t *testing.T) {
	s := NewMemSink(5)
	left := AlnRes{Score: 10, TIdx: 0, TOff: 100, Len: 50}
	right := AlnRes{Score: 10, TIdx: 0, TOff: 5100, Len: 50}
	s.Report(0, left, right)

	if !s.DoneConcordant() {
		t.Fatalf("expected a concordant pair report to set DoneConcordant")
	}
	a, b, ok := s.BestPair()
	if !ok || a.TOff != 100 || b.TOff != 5100 {
		t.Fatalf("unexpected pair result: %+v %+v ok=%v", a, b, ok)
	}
}

func TestMemSinkReportUnpairedRoutesMate2ToItsOwnBucket(t *testing.T) {
	s := NewMemSink(5)
	s.ReportUnpaired(0, false, AlnRes{Score: 10, TIdx: 0, TOff: 100})
	s.ReportUnpaired(0, true, AlnRes{Score: 20, TIdx: 0, TOff: 700})

	best1, ok := s.BestUnp1()
	if !ok || best1.TOff != 100 {
		t.Fatalf("expected mate-1 bucket to hold the mate-1 result, got %+v ok=%v", best1, ok)
	}
	best2, ok := s.BestUnp2()
	if !ok || best2.TOff != 700 {
		t.Fatalf("expected mate-2 bucket to hold the mate-2 result, got %+v ok=%v", best2, ok)
	}
}

func TestMemSinkBestSplicedUnpSkipsNonSplicedResults(t *testing.T) {
	s := NewMemSink(5)
	s.ReportUnpaired(0, false, AlnRes{Score: 30, TIdx: 0, TOff: 100})
	s.ReportUnpaired(0, false, AlnRes{Score: 10, TIdx: 0, TOff: 900, SpliceScore: 1})

	res, ok := s.BestSplicedUnp1()
	if !ok || res.TOff != 900 {
		t.Fatalf("expected the spliced result to be returned even though it scores lower, got %+v ok=%v", res, ok)
	}
}

func TestSortContigsNaturallyOrdersNumericSuffixes(t *testing.T) {
	names := []string{"chr10", "chr2", "chr1"}
	SortContigsNaturally(names)
	if names[0] != "chr1" || names[1] != "chr2" || names[2] != "chr10" {
		t.Fatalf("expected natural numeric order chr1,chr2,chr10, got %v", names)
	}
}
