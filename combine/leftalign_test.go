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

import (
	"testing"

	"github.com/bioseq/hisplice/model"
)

func TestLeftAlignShiftsGapLeftwardWhenBasesMatch(t *testing.T) {
	read := []byte("AAACGTACGT")
	edits := []model.Edit{{Pos: 4, Type: model.REF_GAP, Chr: 'C'}}
	LeftAlign(edits, read)
	if edits[0].Pos >= 4 {
		t.Fatalf("expected the gap to shift left when the preceding base matches the gap base, got pos=%d", edits[0].Pos)
	}
}

func TestLeftAlignIsIdempotent(t *testing.T) {
	read := []byte("AAACGTACGT")
	edits := []model.Edit{{Pos: 4, Type: model.REF_GAP, Chr: 'C'}}
	LeftAlign(edits, read)
	once := edits[0].Pos
	LeftAlign(edits, read)
	if edits[0].Pos != once {
		t.Fatalf("expected left-alignment to be idempotent, got %d then %d", once, edits[0].Pos)
	}
}

func TestLeftAlignLeavesMismatchEditsUntouched(t *testing.T) {
	read := []byte("AAACGTACGT")
	edits := []model.Edit{{Pos: 4, Type: model.MM, Chr: 'C'}}
	LeftAlign(edits, read)
	if edits[0].Pos != 4 {
		t.Fatalf("expected a mismatch edit to be unaffected by left-alignment, got pos=%d", edits[0].Pos)
	}
}
