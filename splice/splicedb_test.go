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

package splice

import "testing"

func TestKnownSiteAlwaysVisible(t *testing.T) {
	db := NewDB()
	db.LoadKnown(0, Site{Left: 1000, Right: 2000, Strand: '+', Canonical: true})

	sites := db.GetRightSpliceSites(0, 990, 20, '+', 1, false, nil)
	if len(sites) != 1 {
		t.Fatalf("expected 1 known site visible without includeNovel, got %d", len(sites))
	}
}

func TestNovelSiteHiddenFromYoungRead(t *testing.T) {
	db := NewDB()
	db.ThreadRIDsMinDist = 1000
	db.InsertNovel(0, Site{Left: 1000, Right: 2000, Strand: '+'}, 500)

	sites := db.GetRightSpliceSites(0, 990, 20, '+', 600, true, nil)
	if len(sites) != 0 {
		t.Fatalf("expected novel site to stay hidden from a read only 100 ids later, got %d", len(sites))
	}

	sites = db.GetRightSpliceSites(0, 990, 20, '+', 1600, true, nil)
	if len(sites) != 1 {
		t.Fatalf("expected novel site visible once thread_rids_mindist has elapsed, got %d", len(sites))
	}
}

func TestNovelSiteExcludedWhenIncludeNovelFalse(t *testing.T) {
	db := NewDB()
	db.InsertNovel(0, Site{Left: 1000, Right: 2000, Strand: '+'}, 1)

	sites := db.GetRightSpliceSites(0, 990, 20, '+', 100000, false, nil)
	if len(sites) != 0 {
		t.Fatalf("expected novel site excluded when includeNovel is false, got %d", len(sites))
	}
}

func TestHasSpliceSitesChecksBothWindows(t *testing.T) {
	db := NewDB()
	db.LoadKnown(0, Site{Left: 5000, Right: 5002, Strand: '+', Canonical: true})

	if !db.HasSpliceSites(0, 100, 200, 4990, 5010, '+', 1, false) {
		t.Fatalf("expected a hit in the second window")
	}
	if db.HasSpliceSites(0, 100, 200, 300, 400, '+', 1, false) {
		t.Fatalf("expected no hit when neither window intersects the known site")
	}
}

func TestBucketsAreIndependentPerContig(t *testing.T) {
	db := NewDB()
	db.LoadKnown(0, Site{Left: 1000, Right: 2000, Strand: '+', Canonical: true})

	sites := db.GetRightSpliceSites(1, 990, 20, '+', 1, false, nil)
	if len(sites) != 0 {
		t.Fatalf("expected no cross-contig leakage, got %d", len(sites))
	}
}
