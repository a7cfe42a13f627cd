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
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"github.com/bioseq/hisplice/combine"
	"github.com/bioseq/hisplice/search"
)

// Options is the run-level configuration §9 calls out as belonging in
// config rather than as a hardcoded constant: how many alignments to
// report, the intron length bounds, the anchor range-size cap, and the
// early-termination/mate-rescue tunables of §4.1.
type Options struct {
	KHits        int     `toml:"k_hits"`
	MinIntronLen int     `toml:"min_intron_len"`
	MaxIntronLen int     `toml:"max_intron_len"`
	MinScore     float64 `toml:"min_score"`
	RangeSizeCap uint64  `toml:"range_size_cap"`

	MaxDirectMismatch int     `toml:"max_direct_mismatch"`
	MaxDirectIndel    int     `toml:"max_direct_indel"`
	SkipAheadPenalty  float64 `toml:"skip_ahead_penalty"`

	// EarlyTermMult is the per-partial-search penalty in §4.1's candidate
	// priority score (the penalty argument of candidateScore); BudgetMult
	// scales the hybrid budget formula's candidate multiplier (1 or 2, §4.4).
	EarlyTermMult float64 `toml:"early_term_mult"`
	BudgetMult    float64 `toml:"budget_mult"`

	// RescueFragmentAllowance is the fixed fragment-length slack added to
	// MaxIntronLen to derive the bounded mate-rescue window (SPEC_FULL.md
	// SUPPLEMENTED FEATURES, "Mate rescue direction").
	RescueFragmentAllowance int `toml:"rescue_fragment_allowance"`
}

// Default returns the documented default run options.
func Default() Options {
	return Options{
		KHits:                   5,
		MinIntronLen:            20,
		MaxIntronLen:            500000,
		MinScore:                -40,
		RangeSizeCap:            64,
		MaxDirectMismatch:       3,
		MaxDirectIndel:          3,
		SkipAheadPenalty:        1,
		EarlyTermMult:           1,
		BudgetMult:              1,
		RescueFragmentAllowance: 500,
	}
}

// Load reads a TOML options file, overlaying it onto Default().
func Load(path string) (Options, error) {
	opts := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, errors.Wrap(err, "driver: read options")
	}
	if err := toml.Unmarshal(data, &opts); err != nil {
		return opts, errors.Wrap(err, "driver: parse options")
	}
	return opts, nil
}

// RescueWindow is the bounded genome-coordinate radius mate rescue
// searches around the already-anchored mate.
func (o Options) RescueWindow() int {
	return o.MaxIntronLen + o.RescueFragmentAllowance
}

func (o Options) anchorConfig(minK int) search.AnchorConfig {
	return search.AnchorConfig{
		MinLen:       minK + 2,
		RangeSizeCap: o.RangeSizeCap,
		MaxIntronLen: o.MaxIntronLen,
		KHits:        o.KHits,
	}
}

func (o Options) hybridConfig() search.HybridConfig {
	return search.HybridConfig{
		MinScore:          o.MinScore,
		MaxDirectMismatch: o.MaxDirectMismatch,
		MaxDirectIndel:    o.MaxDirectIndel,
		SkipAheadPenalty:  o.SkipAheadPenalty,
	}
}

func (o Options) combineConfig() combine.Config {
	cfg := combine.DefaultConfig()
	cfg.MinIntronLen = o.MinIntronLen
	cfg.MaxIntronLen = o.MaxIntronLen
	return cfg
}
