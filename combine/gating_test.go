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

import "testing"

func TestIntronLenProbMonotoneNonIncreasingInAnchor(t *testing.T) {
	const introLen, maxIntronLen = 9975, 500000
	prev := IntronLenProb(1, introLen, maxIntronLen)
	for a := 2; a <= 20; a++ {
		cur := IntronLenProb(a, introLen, maxIntronLen)
		if cur > prev {
			t.Fatalf("IntronLenProb(%d) = %v > IntronLenProb(%d) = %v, expected non-increasing", a, cur, a-1, prev)
		}
		prev = cur
	}
}

func TestIntronLenProbNonCanMonotoneNonIncreasingInAnchor(t *testing.T) {
	const introLen, maxIntronLen = 9975, 500000
	prev := IntronLenProbNonCan(1, introLen, maxIntronLen)
	for a := 2; a <= 20; a++ {
		cur := IntronLenProbNonCan(a, introLen, maxIntronLen)
		if cur > prev {
			t.Fatalf("IntronLenProbNonCan(%d) = %v > IntronLenProbNonCan(%d) = %v, expected non-increasing", a, cur, a-1, prev)
		}
		prev = cur
	}
}

func TestAnchorLengthGateAcceptsLongCanonicalAnchor(t *testing.T) {
	cfg := DefaultConfig()
	if !AnchorLengthGate(true, false, 25, 9975, 500000, cfg) {
		t.Fatalf("expected a 25bp canonical anchor to clear the can_mal=7 floor")
	}
}

func TestAnchorLengthGateRejectsShortNonCanonicalAnchor(t *testing.T) {
	cfg := DefaultConfig()
	if AnchorLengthGate(false, false, 5, 200000, 500000, cfg) {
		t.Fatalf("expected a 5bp non-canonical anchor over a huge intron to be rejected")
	}
}

func TestAnchorLengthGatePreKnownSiteBypassesFloor(t *testing.T) {
	cfg := DefaultConfig()
	if !AnchorLengthGate(false, true, 3, 200000, 500000, cfg) {
		t.Fatalf("expected a pre-known splice site to bypass the anchor-length floor entirely")
	}
}
