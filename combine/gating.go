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

const shiftSaturation = 30

func shiftCanonical(anchor int) int {
	s := 2*anchor + 4
	if s > shiftSaturation {
		s = shiftSaturation
	}
	return s
}

func shiftNonCanonical(anchor int) int {
	s := 2 * anchor
	if s > shiftSaturation {
		s = shiftSaturation
	}
	return s
}

func intronLenProb(introLen, maxIntronLen, shift int) float64 {
	expected := 1 << shift
	if expected > maxIntronLen {
		expected = maxIntronLen
	}
	if expected <= 0 {
		expected = 1
	}
	p := float64(introLen) / float64(expected)
	if p > 1 {
		p = 1
	}
	return p
}

// IntronLenProb is the canonical-motif intron-length probability of
// §4.5.3: for a fixed introLen/maxIntronLen it is non-increasing in
// anchor (law L4), since a longer anchor widens the expected-length
// envelope.
func IntronLenProb(anchor, introLen, maxIntronLen int) float64 {
	return intronLenProb(introLen, maxIntronLen, shiftCanonical(anchor))
}

// IntronLenProbNonCan is the non-canonical-motif counterpart of
// IntronLenProb.
func IntronLenProbNonCan(anchor, introLen, maxIntronLen int) float64 {
	return intronLenProb(introLen, maxIntronLen, shiftNonCanonical(anchor))
}

// AnchorLengthGate implements §4.5.3: a splice with a pre-known site is
// never gated; otherwise the shorter of the two flanking anchors must
// meet the motif-appropriate minimum length, or the intron-length
// probability at that anchor length must be vanishingly small.
func AnchorLengthGate(canonical, preKnown bool, shorterAnchor, introLen, maxIntronLen int, cfg Config) bool {
	if preKnown {
		return true
	}
	if canonical {
		if shorterAnchor >= cfg.CanMAL {
			return true
		}
		return IntronLenProb(shorterAnchor, introLen, maxIntronLen) <= 0.01
	}
	if shorterAnchor >= cfg.NonCanMAL {
		return true
	}
	return IntronLenProbNonCan(shorterAnchor, introLen, maxIntronLen) <= 0.01
}
