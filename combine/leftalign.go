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

import "github.com/bioseq/hisplice/model"

// LeftAlign canonicalizes every read-gap/ref-gap edit in edits to its
// leftmost equivalent position (§4.5.4), given the read bases the edits
// are expressed against (the aligned substring read[rdoff:rdoff+len]).
// Idempotent (law L2): a second call finds every shift condition already
// false and mutates nothing.
func LeftAlign(edits []model.Edit, read []byte) {
	for i := range edits {
		e := &edits[i]
		if e.Type != model.READ_GAP && e.Type != model.REF_GAP {
			continue
		}
		for e.Pos > 0 && e.Pos-1 < len(read) && read[e.Pos-1] == e.Chr {
			e.Pos--
		}
	}
}
