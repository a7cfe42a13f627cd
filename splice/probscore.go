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

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Window lengths for the donor/acceptor PWM (§4.5.2).
const (
	DonorExonicLen     = 3
	DonorIntronicLen   = 6
	AcceptorIntronicLen = 20
	AcceptorExonicLen   = 3
)

var baseIndex = [256]int{}

func init() {
	for i := range baseIndex {
		baseIndex[i] = -1
	}
	baseIndex['A'], baseIndex['a'] = 0, 0
	baseIndex['C'], baseIndex['c'] = 1, 1
	baseIndex['G'], baseIndex['g'] = 2, 2
	baseIndex['T'], baseIndex['t'] = 3, 3
}

// PWM is a position weight matrix: 4 rows (A,C,G,T), one column per
// position in the motif window.
type PWM struct {
	m *mat.Dense
}

// NewPWM builds a PWM from per-position base frequencies (rows A,C,G,T
// summing to ~1 per column). A thin placeholder PWM (uniform except a
// strong preference at the canonical dinucleotide positions) is used by
// DefaultDonorPWM/DefaultAcceptorPWM below; callers may substitute a
// PWM trained from real splice-site data.
func NewPWM(freqs [][4]float64) *PWM {
	cols := len(freqs)
	m := mat.NewDense(4, cols, nil)
	for j, f := range freqs {
		for i := 0; i < 4; i++ {
			m.Set(i, j, f[i])
		}
	}
	return &PWM{m: m}
}

// score returns the product of per-position probabilities for seq
// against the PWM, normalized into [0,1] via a log-odds-free geometric
// mean so window length doesn't bias the score.
func (p *PWM) score(seq []byte) float64 {
	_, cols := p.m.Dims()
	n := cols
	if len(seq) < n {
		n = len(seq)
	}
	if n == 0 {
		return 0
	}
	logSum := 0.0
	for j := 0; j < n; j++ {
		bi := baseIndex[seq[j]]
		if bi < 0 {
			continue
		}
		v := p.m.At(bi, j)
		if v <= 0 {
			v = 1e-6
		}
		logSum += logApprox(v)
	}
	mean := logSum / float64(n)
	return expApprox(mean)
}

// DefaultDonorPWM models a GT-initiated donor site: near-certain G,T at
// the first two intronic positions, uniform elsewhere.
func DefaultDonorPWM() *PWM {
	freqs := make([][4]float64, DonorExonicLen+DonorIntronicLen)
	for i := range freqs {
		freqs[i] = [4]float64{0.25, 0.25, 0.25, 0.25}
	}
	freqs[DonorExonicLen] = [4]float64{0.02, 0.02, 0.94, 0.02}   // G
	freqs[DonorExonicLen+1] = [4]float64{0.02, 0.02, 0.02, 0.94} // T
	return NewPWM(freqs)
}

// DefaultAcceptorPWM models an AG-terminated acceptor site: near-certain
// A,G at the last two intronic positions, uniform elsewhere.
func DefaultAcceptorPWM() *PWM {
	freqs := make([][4]float64, AcceptorIntronicLen+AcceptorExonicLen)
	for i := range freqs {
		freqs[i] = [4]float64{0.25, 0.25, 0.25, 0.25}
	}
	last := AcceptorIntronicLen
	freqs[last-2] = [4]float64{0.94, 0.02, 0.02, 0.02} // A
	freqs[last-1] = [4]float64{0.02, 0.02, 0.94, 0.02} // G
	return NewPWM(freqs)
}

// Motif classifies the donor/acceptor dinucleotide pair (§4.5.2):
// GT...AG is canonical forward, CT...AC is canonical reverse-complement,
// GC...AG and AT...AC are accepted as semi-canonical.
type Motif struct {
	Canonical     bool
	SemiCanonical bool
	FW            bool // donor upstream of acceptor on the forward strand
}

// ClassifyMotif inspects the two bases flanking the intron on each side.
func ClassifyMotif(donor2, acceptor2 []byte) Motif {
	if len(donor2) < 2 || len(acceptor2) < 2 {
		return Motif{}
	}
	d := string(upper2(donor2))
	a := string(upper2(acceptor2))
	switch {
	case d == "GT" && a == "AG":
		return Motif{Canonical: true, FW: true}
	case d == "CT" && a == "AC":
		return Motif{Canonical: true, FW: false}
	case d == "GC" && a == "AG":
		return Motif{SemiCanonical: true, FW: true}
	case d == "AT" && a == "AC":
		return Motif{SemiCanonical: true, FW: false}
	default:
		return Motif{}
	}
}

func upper2(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return out
}

// Probscore is the PWM-derived probability (§3) that donorSeq/acceptorSeq
// represent a real splice junction, combining both PWMs' scores.
func Probscore(donorSeq, acceptorSeq []byte) float64 {
	d := DefaultDonorPWM().score(donorSeq)
	a := DefaultAcceptorPWM().score(acceptorSeq)
	v := d * a
	if v > 1 {
		v = 1
	}
	if v < 0 {
		v = 0
	}
	return v
}

func logApprox(v float64) float64 { return math.Log(v) }

func expApprox(v float64) float64 { return math.Exp(v) }
