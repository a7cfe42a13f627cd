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

// Package scoring holds the immutable scoring configuration (§3,
// "Scoring") consumed by every other core component: mismatch and gap
// penalties, splice penalties, and the anchor-length gating constants of
// §4.5.3. Values load from a TOML config file the way the rest of the
// stack externalizes tunables, falling back to the documented defaults.
package scoring

import (
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// SplicePenaltyFunc computes the length-dependent component of a splice
// penalty; canSpl/noncanSpl are both (fixed cost) + SplicePenaltyFunc(len).
type SplicePenaltyFunc func(intronLen int) float64

// Config is the immutable scoring configuration (§3).
type Config struct {
	Match  float64 `toml:"match"`
	MMPMax float64 `toml:"mmp_max"`
	MMPMin float64 `toml:"mmp_min"`
	NP     float64 `toml:"np"` // ambiguity (N) penalty

	ReadGapOpen   float64 `toml:"read_gap_open"`
	ReadGapExtend float64 `toml:"read_gap_extend"`
	RefGapOpen    float64 `toml:"ref_gap_open"`
	RefGapExtend  float64 `toml:"ref_gap_extend"`

	CanSplFixed    float64 `toml:"can_spl_fixed"`
	NonCanSplFixed float64 `toml:"noncan_spl_fixed"`
	ConflictSpl    float64 `toml:"conflict_spl"`

	// Anchor-length gating (§4.5.3).
	CanMAL    int `toml:"can_mal"`    // default 7
	NonCanMAL int `toml:"noncan_mal"` // default 14

	canSplLen    SplicePenaltyFunc
	noncanSplLen SplicePenaltyFunc
}

// Default returns the documented defaults (§3, §4.5.3), with splice
// length penalties growing logarithmically with intron length as in a
// typical gap-affine spliced scoring model.
func Default() *Config {
	c := &Config{
		Match:          2,
		MMPMax:         6,
		MMPMin:         2,
		NP:             1,
		ReadGapOpen:    11,
		ReadGapExtend:  4,
		RefGapOpen:     11,
		RefGapExtend:   4,
		CanSplFixed:    0,
		NonCanSplFixed: 8,
		ConflictSpl:    3,
		CanMAL:         7,
		NonCanMAL:      14,
	}
	c.SetSplicePenaltyFuncs(defaultSplicePenalty, defaultSplicePenalty)
	return c
}

func defaultSplicePenalty(intronLen int) float64 {
	if intronLen < 1 {
		intronLen = 1
	}
	l := float64(intronLen)
	v := 0.0
	for l > 1 {
		v++
		l /= 4
	}
	return v
}

// SetSplicePenaltyFuncs installs the user-supplied length-dependent
// splice penalty functions (§3: "fixed + length-dependent via a
// user-supplied function").
func (c *Config) SetSplicePenaltyFuncs(can, noncan SplicePenaltyFunc) {
	c.canSplLen, c.noncanSplLen = can, noncan
}

// CanSpl is the total penalty for a canonical-motif splice of the given
// intron length.
func (c *Config) CanSpl(intronLen int) float64 {
	return c.CanSplFixed + c.canSplLen(intronLen)
}

// NonCanSpl is the total penalty for a non-canonical-motif splice of the
// given intron length.
func (c *Config) NonCanSpl(intronLen int) float64 {
	return c.NonCanSplFixed + c.noncanSplLen(intronLen)
}

// RefMask is a one-hot encoding of a reference base (bit i set means the
// reference base may be base i; ambiguous reference positions may have
// more than one bit set).
type RefMask uint8

// Score returns the penalty for aligning readBase against a reference
// position whose possible bases are refMask, at the given base quality
// (Phred-scaled, 0 if unknown/unused). A perfect match (single bit set,
// equal to readBase) costs 0.
func (c *Config) Score(readBase byte, refMask RefMask, qual uint8) float64 {
	bit := RefMask(1) << readBase
	if refMask&bit != 0 && (refMask&(refMask-1)) == 0 {
		return 0
	}
	if readBase > 3 {
		return c.NP
	}
	if qual == 0 {
		return c.MMPMax
	}
	// scale linearly between mmpMin (high quality) and mmpMax (low quality)
	q := float64(qual)
	if q > 40 {
		q = 40
	}
	frac := q / 40
	return c.MMPMax - frac*(c.MMPMax-c.MMPMin)
}

// Load reads a TOML scoring configuration from path, overlaying it onto
// Default() so a config file only needs to mention the fields it wants
// to change.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "scoring: read config")
	}
	c := Default()
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrap(err, "scoring: parse config")
	}
	c.SetSplicePenaltyFuncs(defaultSplicePenalty, defaultSplicePenalty)
	return c, nil
}
