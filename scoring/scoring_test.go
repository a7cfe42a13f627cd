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

package scoring

import "testing"

func TestScorePerfectMatchIsFree(t *testing.T) {
	c := Default()
	// readBase=0 (A), refMask has only bit 0 set
	if s := c.Score(0, 1<<0, 40); s != 0 {
		t.Fatalf("expected 0 penalty for a perfect match, got %v", s)
	}
}

func TestScoreMismatchIsPositive(t *testing.T) {
	c := Default()
	if s := c.Score(0, 1<<1, 40); s <= 0 {
		t.Fatalf("expected a positive mismatch penalty, got %v", s)
	}
}

func TestScoreLowQualityCostsMore(t *testing.T) {
	c := Default()
	hi := c.Score(0, 1<<1, 40)
	lo := c.Score(0, 1<<1, 2)
	if lo < hi {
		t.Fatalf("expected low quality mismatch (%v) to cost at least as much as high quality (%v)", lo, hi)
	}
}

func TestCanSplCheaperThanNonCanForSameLength(t *testing.T) {
	c := Default()
	if c.CanSpl(1000) >= c.NonCanSpl(1000) {
		t.Fatalf("expected canonical splice to be cheaper than non-canonical at the same length")
	}
}

func TestSplicePenaltyGrowsWithLength(t *testing.T) {
	c := Default()
	if c.CanSpl(100) > c.CanSpl(100000) {
		t.Fatalf("expected splice penalty to be non-decreasing with intron length")
	}
}
