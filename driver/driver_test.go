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

package driver

import (
	"math"
	"testing"

	"github.com/bioseq/hisplice/model"
	"github.com/bioseq/hisplice/scoring"
	"github.com/bioseq/hisplice/tempvars"
)

func TestCandidateScoreSumsSquaredSeedLengths(t *testing.T) {
	o := newOrientation(true, []byte("ACGTACGTAC"))
	o.chain.Hits = []model.BWTHit{{Len: 3}, {Len: 4}}

	got := candidateScore(o, 1)
	want := 3.0*3 + 4.0*4 - 1*0 - math.Pow(2, 0)
	if got != want {
		t.Fatalf("candidateScore = %v, want %v", got, want)
	}
}

func TestCandidateScoreDonePenalizedToNegativeInfinity(t *testing.T) {
	o := newOrientation(true, []byte("ACGT"))
	o.done = true
	if got := candidateScore(o, 1); got != math.Inf(-1) {
		t.Fatalf("expected -Inf for a done candidate, got %v", got)
	}
}

func TestCandidateScorePenalizesMoreSearches(t *testing.T) {
	o1 := newOrientation(true, []byte("ACGTACGTAC"))
	o1.chain.Hits = []model.BWTHit{{Len: 5}}
	o1.chain.NumPartialSearch = 1

	o2 := newOrientation(true, []byte("ACGTACGTAC"))
	o2.chain.Hits = []model.BWTHit{{Len: 5}}
	o2.chain.NumPartialSearch = 3

	if candidateScore(o1, 1) <= candidateScore(o2, 1) {
		t.Fatalf("expected fewer partial searches to score higher for the same seed length")
	}
}

func TestSelectCandidateSkipsDoneAndPicksHighestScore(t *testing.T) {
	low := newOrientation(true, []byte("ACGTACGTAC"))
	low.chain.Hits = []model.BWTHit{{Len: 2}}

	high := newOrientation(false, []byte("ACGTACGTAC"))
	high.chain.Hits = []model.BWTHit{{Len: 8}}

	done := newOrientation(true, []byte("ACGTACGTAC"))
	done.done = true

	pick := selectCandidate([]*orientation{low, high, done}, 1)
	if pick != high {
		t.Fatalf("expected the higher-scoring, not-done candidate to be picked")
	}
}

func TestSelectCandidateReturnsNilWhenAllDone(t *testing.T) {
	a := newOrientation(true, []byte("ACGT"))
	a.done = true
	if pick := selectCandidate([]*orientation{a}, 1); pick != nil {
		t.Fatalf("expected nil when every candidate is done, got %+v", pick)
	}
}

func TestAllDoneRequiresEveryCandidateDone(t *testing.T) {
	a := newOrientation(true, []byte("ACGT"))
	b := newOrientation(false, []byte("ACGT"))
	a.done = true
	if allDone([]*orientation{a, b}) {
		t.Fatalf("expected allDone false while b is still pending")
	}
	b.done = true
	if !allDone([]*orientation{a, b}) {
		t.Fatalf("expected allDone true once both candidates are done")
	}
}

func TestBestOrientationPicksHighestScoringResolvedHit(t *testing.T) {
	a := newOrientation(true, []byte("ACGT"))
	a.best = &model.GenomeHit{Score: 5}
	b := newOrientation(false, []byte("ACGT"))
	b.best = &model.GenomeHit{Score: 15}
	unresolved := newOrientation(true, []byte("ACGT"))

	best := bestOrientation([]*orientation{a, b, unresolved})
	if best == nil || best.Score != 15 {
		t.Fatalf("expected the score-15 hit to win, got %+v", best)
	}
}

func TestBestWindowedPlacementFindsExactOffset(t *testing.T) {
	sc := scoring.Default()
	pool := tempvars.New()
	buf := []byte("NNNNACGTACGTNNNN")
	mate := []byte("ACGTACGT")

	hit := bestWindowedPlacement(nil, sc, pool, 0, 1000, buf, mate, true, 0)
	if hit == nil {
		t.Fatalf("expected an exact placement to be found")
	}
	if hit.TOff != 1004 {
		t.Fatalf("expected TOff 1000+4=1004, got %d", hit.TOff)
	}
	if len(*hit.Edits) != 0 {
		t.Fatalf("expected zero edits for an exact match, got %d", len(*hit.Edits))
	}
}

func TestBestWindowedPlacementRejectsTooManyMismatches(t *testing.T) {
	sc := scoring.Default()
	pool := tempvars.New()
	buf := []byte("TTTTTTTT")
	mate := []byte("AAAAAAAA")

	hit := bestWindowedPlacement(nil, sc, pool, 0, 0, buf, mate, true, 2)
	if hit != nil {
		t.Fatalf("expected no placement within a 2-mismatch budget against an all-mismatching window, got %+v", hit)
	}
}

func TestBestWindowedPlacementRejectsShortBuffer(t *testing.T) {
	sc := scoring.Default()
	pool := tempvars.New()
	if hit := bestWindowedPlacement(nil, sc, pool, 0, 0, []byte("AC"), []byte("ACGTACGT"), true, 0); hit != nil {
		t.Fatalf("expected nil when the window is shorter than the mate read")
	}
}
