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
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rdleal/intervalst/interval"
	"github.com/shenwei356/breader"
	"github.com/shenwei356/xopen"
)

// knownSiteRecord is one tab-separated line of a known-splice-site file:
// contig<TAB>left<TAB>right<TAB>strand<TAB>canonical
type knownSiteRecord struct {
	contig    int
	site      Site
}

func parseKnownSiteLine(line string) (interface{}, bool, error) {
	line = strings.TrimSpace(line)
	if line == "" || line[0] == '#' {
		return nil, false, nil
	}
	fields := strings.Split(line, "\t")
	if len(fields) < 5 {
		return nil, false, errors.Errorf("malformed splice-site record: %q", line)
	}
	contig, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, false, errors.Wrapf(err, "parsing contig in %q", line)
	}
	left, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, false, errors.Wrapf(err, "parsing left in %q", line)
	}
	right, err := strconv.Atoi(fields[2])
	if err != nil {
		return nil, false, errors.Wrapf(err, "parsing right in %q", line)
	}
	strand := byte('+')
	if len(fields[3]) > 0 {
		strand = fields[3][0]
	}
	canonical := fields[4] == "1" || strings.EqualFold(fields[4], "true")
	return knownSiteRecord{
		contig: contig,
		site:   Site{Left: left, Right: right, Strand: strand, Canonical: canonical},
	}, true, nil
}

// LoadFile streams a known-splice-site table (as produced by SaveFile)
// into db, using a breader.Reader for buffered, cancellable parsing the
// way the rest of the corpus reads large flat files.
func (db *DB) LoadFile(path string) error {
	reader, err := breader.NewBufferedReader(path, 4, 100, parseKnownSiteLine)
	if err != nil {
		return errors.Wrapf(err, "opening splice-site file %q", path)
	}
	for chunk := range reader.Ch {
		if chunk.Err != nil {
			return errors.Wrapf(chunk.Err, "reading splice-site file %q", path)
		}
		for _, data := range chunk.Data {
			rec := data.(knownSiteRecord)
			db.LoadKnown(rec.contig, rec.site)
		}
	}
	return nil
}

// SaveFile writes every known (from_file) site currently held in db to
// path, gzip-compressed when the name ends in .gz (via xopen, matching
// the rest of the corpus's transparent-compression file I/O).
func (db *DB) SaveFile(path string) error {
	w, err := xopen.Wopen(path)
	if err != nil {
		return errors.Wrapf(err, "creating splice-site file %q", path)
	}
	defer w.Close()

	bw := bufio.NewWriter(w)
	defer bw.Flush()

	db.mu.RLock()
	defer db.mu.RUnlock()
	for contig, b := range db.buckets {
		b.mu.RLock()
		inOrderTraverse(b.fwd, func(s *Site) {
			writeSiteLine(bw, contig, s)
		})
		inOrderTraverse(b.rev, func(s *Site) {
			writeSiteLine(bw, contig, s)
		})
		b.mu.RUnlock()
	}
	return nil
}

// inOrderTraverse visits every value in tree in ascending interval-key
// order, using Select since the library exposes no direct iterator.
func inOrderTraverse(tree *interval.SearchTree[*Site, int], visit func(*Site)) {
	n := tree.Size()
	for i := 0; i < n; i++ {
		if s, ok := tree.Select(i); ok {
			visit(s)
		}
	}
}

func writeSiteLine(bw *bufio.Writer, contig int, s *Site) {
	if !s.FromFile {
		return
	}
	fmt.Fprintf(bw, "%d\t%d\t%d\t%c\t%s\n", contig, s.Left, s.Right, s.Strand, canonicalFlag(*s))
}

// canonicalFlag renders a Site's Canonical field as the persisted 0/1
// column used by LoadFile/SaveFile.
func canonicalFlag(s Site) string {
	if s.Canonical {
		return "1"
	}
	return "0"
}
