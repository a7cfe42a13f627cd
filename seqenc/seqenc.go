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

// Package seqenc holds the read-side sequence helpers the core needs
// before a read ever reaches the search package: alphabet validation,
// reverse-complementing both orientations a read is searched in, and
// converting a quality string into the qual argument scoring.Config.Score
// expects.
package seqenc

import (
	"github.com/elliotwutingfeng/asciiset"
	"github.com/shenwei356/bio/seq"
)

var dnaSet, _ = asciiset.MakeASCIISet("ACGTNacgtn")

// Valid reports whether every byte of s is a recognized DNA base
// (A/C/G/T/N, either case).
func Valid(s []byte) bool {
	for _, b := range s {
		if !dnaSet.Contains(b) {
			return false
		}
	}
	return true
}

// ReverseComplement returns the reverse-complement of s, the orientation
// the partial search runs as its "rc" pass (§4.2 operates identically on
// both orientations of a read).
func ReverseComplement(s []byte) ([]byte, error) {
	sq, err := seq.NewSeq(seq.DNAredundant, s)
	if err != nil {
		return nil, err
	}
	sq.RevComInplace()
	return sq.Seq, nil
}

// PhredQuality decodes a FASTQ-style quality string (Phred+33) into raw
// Phred scores, clamped to [0, 40] the way scoring.Config.Score expects.
func PhredQuality(qual []byte) []uint8 {
	out := make([]uint8, len(qual))
	for i, q := range qual {
		v := int(q) - 33
		if v < 0 {
			v = 0
		}
		if v > 40 {
			v = 40
		}
		out[i] = uint8(v)
	}
	return out
}
