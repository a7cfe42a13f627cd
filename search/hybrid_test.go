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
	"testing"

	"github.com/bioseq/hisplice/model"
	"github.com/bioseq/hisplice/scoring"
)

func TestScoreHitChargesCanSplForFullyCanonicalMotif(t *testing.T) {
	sc := scoring.Default()
	edits := []model.Edit{{Pos: 10, Type: model.SPL, SplLen: 500, Canonical: true}}
	hit := &model.GenomeHit{Len: 20, Edits: &edits}

	got := ScoreHit(sc, hit)
	want := sc.Match*20 - sc.CanSpl(500)
	if got != want {
		t.Fatalf("expected a canonical motif to be charged CanSpl (%v), got %v", want, got)
	}
}

func TestScoreHitChargesNonCanSplForGenuinelyNonCanonicalMotif(t *testing.T) {
	sc := scoring.Default()
	edits := []model.Edit{{Pos: 10, Type: model.SPL, SplLen: 500}}
	hit := &model.GenomeHit{Len: 20, Edits: &edits}

	got := ScoreHit(sc, hit)
	want := sc.Match*20 - sc.NonCanSpl(500)
	if got != want {
		t.Fatalf("expected a non-canonical motif to be charged NonCanSpl (%v), got %v", want, got)
	}
}

func TestScoreHitChargesCanSplForKnownSiteRegardlessOfMotif(t *testing.T) {
	sc := scoring.Default()
	edits := []model.Edit{{Pos: 10, Type: model.SPL, SplLen: 500, KnownSpl: true}}
	hit := &model.GenomeHit{Len: 20, Edits: &edits}

	got := ScoreHit(sc, hit)
	want := sc.Match*20 - sc.CanSpl(500)
	if got != want {
		t.Fatalf("expected a known site to be charged CanSpl (%v) even without a canonical motif, got %v", want, got)
	}
}

func TestScoreHitChargesConflictSplOnceRegardlessOfSpliceCount(t *testing.T) {
	sc := scoring.Default()
	edits := []model.Edit{
		{Pos: 5, Type: model.SPL, SplLen: 100, Canonical: true, SplDir: model.SplFW},
		{Pos: 10, Type: model.SPL, SplLen: 100, Canonical: true, SplDir: model.SplRC},
		{Pos: 15, Type: model.SPL, SplLen: 100, Canonical: true, SplDir: model.SplRC},
	}
	hit := &model.GenomeHit{Len: 20, Edits: &edits}

	got := ScoreHit(sc, hit)
	want := sc.Match*20 - 3*sc.CanSpl(100) - sc.ConflictSpl
	if got != want {
		t.Fatalf("expected ConflictSpl charged exactly once for three splices with one disagreement, got %v want %v", got, want)
	}
}

func TestScoreHitChargesNoConflictSplWhenAllDirectionsAgree(t *testing.T) {
	sc := scoring.Default()
	edits := []model.Edit{
		{Pos: 5, Type: model.SPL, SplLen: 100, Canonical: true, SplDir: model.SplFW},
		{Pos: 10, Type: model.SPL, SplLen: 100, Canonical: true, SplDir: model.SplFW},
	}
	hit := &model.GenomeHit{Len: 20, Edits: &edits}

	got := ScoreHit(sc, hit)
	want := sc.Match*20 - 2*sc.CanSpl(100)
	if got != want {
		t.Fatalf("expected no ConflictSpl charge when all splice directions agree, got %v want %v", got, want)
	}
}
