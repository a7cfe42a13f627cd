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
	"github.com/twotwotwo/sorts/sortutil"

	"github.com/bioseq/hisplice/fmindex"
	"github.com/bioseq/hisplice/model"
	"github.com/bioseq/hisplice/tempvars"
)

// AnchorConfig bounds the anchor selector (§4.3).
type AnchorConfig struct {
	// MinLen rejects hits no longer than MinLen (spec's "minK+2").
	MinLen int
	// RangeSizeCap rejects CANDIDATE hits whose FM-range is larger than
	// this many suffixes — they are too ambiguous to be worth resolving.
	RangeSizeCap uint64
	// MaxIntronLen is the dedup radius: a newly resolved coordinate within
	// this distance of an existing anchor on the same contig/strand bumps
	// that anchor's HitCount instead of creating a new one.
	MaxIntronLen int
	// KHits caps the number of distinct anchors kept for a read.
	KHits int
}

// ResolveCoords performs the §4.3 "walk-left": every suffix-array row in
// hit's range is located and converted to a genome coordinate, discarding
// rows whose match straddles a contig boundary. A no-op if already
// resolved.
func ResolveCoords(idx fmindex.Index, hit *model.BWTHit) {
	if hit.CoordsResolved() {
		return
	}
	coords := make([]model.Coord, 0, hit.Size())
	for row := hit.Range.Top; row < hit.Range.Bot; row++ {
		off, ok := idx.Locate(row)
		if !ok {
			continue
		}
		contig, offset, _, straddled := idx.JoinedToTextOff(hit.Len, off)
		if straddled {
			continue
		}
		coords = append(coords, model.Coord{Contig: contig, Offset: offset})
	}
	hit.SetCoords(coords)
}

// SelectBest picks the best not-yet-examined hit in chain per §4.3's
// ordering: prefer ANCHOR over PSEUDOGENE over CANDIDATE; within a type,
// prefer the smaller FM-range, ties broken by the longer match. Returns
// false if nothing in the chain still qualifies.
func SelectBest(chain *model.ReadBWTHit, cfg AnchorConfig) (*model.BWTHit, bool) {
	var best *model.BWTHit
	for i := range chain.Hits {
		h := &chain.Hits[i]
		if h.AnchorExamined || h.Empty() {
			continue
		}
		if h.Type == model.CANDIDATE && cfg.RangeSizeCap > 0 && h.Size() > cfg.RangeSizeCap {
			continue
		}
		if h.Len <= cfg.MinLen {
			continue
		}
		if best == nil || betterHit(h, best) {
			best = h
		}
	}
	if best == nil {
		return nil, false
	}
	return best, true
}

func betterHit(a, b *model.BWTHit) bool {
	if a.Type != b.Type {
		return a.Type > b.Type
	}
	if a.Size() != b.Size() {
		return a.Size() < b.Size()
	}
	return a.Len > b.Len
}

// BuildAnchors resolves best's coordinates and folds each resulting
// genome coordinate into anchors: a coordinate within cfg.MaxIntronLen of
// an existing same-contig, same-strand anchor bumps that anchor's
// HitCount; otherwise a fresh GenomeHit anchor is appended, unless the
// cfg.KHits cap has already been reached (§4.3).
func BuildAnchors(idx fmindex.Index, best *model.BWTHit, pool *tempvars.Pool, anchors []*model.GenomeHit, cfg AnchorConfig) []*model.GenomeHit {
	ResolveCoords(idx, best)
	best.AnchorExamined = true
	sortCoordsByPosition(best.Coords)

	for _, c := range best.Coords {
		if existing := findNearbyAnchor(anchors, c, best.FW, cfg.MaxIntronLen); existing != nil {
			existing.HitCount++
			continue
		}
		if cfg.KHits > 0 && len(anchors) >= cfg.KHits {
			continue
		}
		anchors = append(anchors, &model.GenomeHit{
			FW:       best.FW,
			RdOff:    best.BWOff,
			Len:      best.Len,
			TIdx:     c.Contig,
			TOff:     c.Offset,
			Edits:    pool.AcquireEdits(),
			HitCount: 1,
		})
	}
	return anchors
}

// sortCoordsByPosition orders coords by (contig, offset) so BuildAnchors
// processes a pseudogene-sized coordinate set contig-by-contig rather than
// in suffix-array row order; packs each pair into a uint64 key and hands
// the sort off to sortutil's parallel uint64 sort.
func sortCoordsByPosition(coords []model.Coord) {
	if len(coords) < 2 {
		return
	}
	keys := make([]uint64, len(coords))
	for i, c := range coords {
		keys[i] = uint64(c.Contig)<<32 | uint64(uint32(c.Offset))
	}
	sortutil.Uint64s(keys)
	for i, k := range keys {
		coords[i] = model.Coord{Contig: int(k >> 32), Offset: int(uint32(k))}
	}
}

func findNearbyAnchor(anchors []*model.GenomeHit, c model.Coord, fw bool, maxIntronLen int) *model.GenomeHit {
	for _, a := range anchors {
		if a.TIdx != c.Contig || a.FW != fw {
			continue
		}
		d := a.TOff - c.Offset
		if d < 0 {
			d = -d
		}
		if d <= maxIntronLen {
			return a
		}
	}
	return nil
}
