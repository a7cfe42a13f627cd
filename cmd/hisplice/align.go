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

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/iafan/cwalk"
	"github.com/mitchellh/go-homedir"
	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/shenwei356/util/pathutil"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/bioseq/hisplice/driver"
	"github.com/bioseq/hisplice/fmindex"
	"github.com/bioseq/hisplice/genome"
	"github.com/bioseq/hisplice/logging"
	"github.com/bioseq/hisplice/report"
	"github.com/bioseq/hisplice/scoring"
	"github.com/bioseq/hisplice/seqenc"
	"github.com/bioseq/hisplice/splice"
)

var alignLog = logging.MustGetLogger("hisplice/cmd-align")

var fastaPattern = regexp.MustCompile(`(?i)\.(fa|fasta|fna|fa\.gz|fasta\.gz)$`)

type alignOpts struct {
	refDir      string
	readsFile   string
	mates2File  string
	configFile  string
	tileSize    int
	tileOverlap int
	ftabChars   int
	threads     int
	verbose     bool
}

func init() {
	o := &alignOpts{}
	cmd := &cobra.Command{
		Use:   "align",
		Short: "Align reads against a directory of reference FASTA files",
		Long: `align builds a toy in-memory hierarchical FM-index from every FASTA file
found under --ref-dir, then aligns the reads in --reads (optionally paired
with --mates2) against it, printing one line per reported mate-1 unpaired
alignment. Concordant pairs and mate-2 alignments are not printed.
`,
		Run: func(cmd *cobra.Command, args []string) {
			runAlign(o)
		},
	}
	cmd.Flags().StringVarP(&o.refDir, "ref-dir", "d", "", "directory of reference FASTA files (required)")
	cmd.Flags().StringVarP(&o.readsFile, "reads", "1", "", "FASTA/FASTQ read file (required)")
	cmd.Flags().StringVarP(&o.mates2File, "mates2", "2", "", "second-mate FASTA/FASTQ file, for paired-end input")
	cmd.Flags().StringVarP(&o.configFile, "config", "c", "", "TOML run-options file (~ expanded)")
	cmd.Flags().IntVar(&o.tileSize, "tile-size", 1 << 16, "local tile size for the hierarchical index")
	cmd.Flags().IntVar(&o.tileOverlap, "tile-overlap", 1024, "overlap between adjacent local tiles")
	cmd.Flags().IntVar(&o.ftabChars, "ftab-chars", 10, "prefix length resolved by a single ftab lookup")
	cmd.Flags().IntVarP(&o.threads, "threads", "j", 4, "directory-walk concurrency")
	cmd.Flags().BoolVarP(&o.verbose, "verbose", "v", false, "show progress and debug logging")
	rootCmd.AddCommand(cmd)
}

func runAlign(o *alignOpts) {
	level := logging.LevelFor(o.verbose)
	logging.Init(level)

	if o.refDir == "" || o.readsFile == "" {
		checkError(fmt.Errorf("align: --ref-dir and --reads are required"))
	}
	exists, err := pathutil.DirExists(o.refDir)
	checkError(err)
	if !exists {
		checkError(fmt.Errorf("align: --ref-dir %s does not exist", o.refDir))
	}

	opts := driver.Default()
	if o.configFile != "" {
		path, err := homedir.Expand(o.configFile)
		checkError(err)
		opts, err = driver.Load(path)
		checkError(err)
	}
	sc := scoring.Default()
	ssdb := splice.NewDB()

	ref, idx := buildIndex(o)
	sink := report.NewMemSink(opts.KHits)

	if o.mates2File != "" {
		alignPaired(o, ref, idx, ssdb, sc, sink, opts)
	} else {
		alignUnpaired(o, ref, idx, ssdb, sc, sink, opts)
	}

	for _, res := range sink.GetUnp1() {
		printAln(ref, res)
	}
}

// buildIndex walks refDir for FASTA files (via cwalk, mirroring how the
// reference example concurrently discovers genome files), loads each
// contig into a genome.Reference, and builds the matching FM-index with
// local tiling (§4.4.b.2/c.2's hierarchical index).
func buildIndex(o *alignOpts) (*genome.Reference, *fmindex.MemIndex) {
	files := make(chan string, o.threads)
	done := make(chan int)
	var paths []string
	go func() {
		for p := range files {
			paths = append(paths, p)
		}
		done <- 1
	}()

	cwalk.NumWorkers = o.threads
	err := cwalk.WalkWithSymlinks(o.refDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && fastaPattern.MatchString(info.Name()) {
			files <- filepath.Join(o.refDir, path)
		}
		return nil
	})
	close(files)
	<-done
	checkError(err)

	ref := genome.NewReference()
	var contigs [][]byte

	var pbs *mpb.Progress
	var bar *mpb.Bar
	if o.verbose {
		pbs = mpb.New(mpb.WithWidth(40), mpb.WithOutput(os.Stderr))
		bar = pbs.AddBar(int64(len(paths)),
			mpb.PrependDecorators(
				decor.Name("indexing references: ", decor.WC{W: len("indexing references: "), C: decor.DindentRight}),
				decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
			),
			mpb.AppendDecorators(
				decor.Name("ETA: ", decor.WC{W: len("ETA: ")}),
				decor.EwmaETA(decor.ET_STYLE_GO, 20),
			),
		)
	}

	for _, p := range paths {
		t0 := time.Now()
		reader, err := fastx.NewReader(nil, p, "")
		checkError(err)
		for {
			rec, err := reader.Read()
			if err != nil {
				if err == io.EOF {
					break
				}
				checkError(err)
			}
			seqBytes := append([]byte{}, rec.Seq.Seq...)
			if _, err := ref.AddContig(string(rec.Name), seqBytes); err != nil {
				checkError(err)
			}
			contigs = append(contigs, seqBytes)
		}
		reader.Close()
		if bar != nil {
			bar.EwmaIncrBy(1, time.Since(t0))
		}
	}
	if pbs != nil {
		pbs.Wait()
	}

	idx := fmindex.NewMemIndex(contigs, o.ftabChars)
	idx.BuildLocalTiles(o.tileSize, o.tileOverlap)
	alignLog.Infof("indexed %d contigs from %d file(s)", len(contigs), len(paths))
	return ref, idx
}

func alignUnpaired(o *alignOpts, ref *genome.Reference, idx *fmindex.MemIndex, ssdb *splice.DB, sc *scoring.Config, sink report.Sink, opts driver.Options) {
	reader, err := fastx.NewReader(nil, o.readsFile, "")
	checkError(err)
	defer reader.Close()
	var readID int64
	for {
		rec, err := reader.Read()
		if err != nil {
			break
		}
		read := append([]byte{}, rec.Seq.Seq...)
		rc := reverseComplementOrDie(read)
		t := driver.InitRead(idx, ref, ssdb, sc, sink, opts, readID, read, rc, false, false)
		t.Run()
		readID++
	}
}

func alignPaired(o *alignOpts, ref *genome.Reference, idx *fmindex.MemIndex, ssdb *splice.DB, sc *scoring.Config, sink report.Sink, opts driver.Options) {
	r1, err := fastx.NewReader(nil, o.readsFile, "")
	checkError(err)
	defer r1.Close()
	r2, err := fastx.NewReader(nil, o.mates2File, "")
	checkError(err)
	defer r2.Close()

	var readID int64
	for {
		rec1, err1 := r1.Read()
		rec2, err2 := r2.Read()
		if err1 != nil || err2 != nil {
			break
		}
		read1 := append([]byte{}, rec1.Seq.Seq...)
		read2 := append([]byte{}, rec2.Seq.Seq...)
		rc1 := reverseComplementOrDie(read1)
		rc2 := reverseComplementOrDie(read2)
		t := driver.InitPair(idx, ref, ssdb, sc, sink, opts, readID,
			read1, rc1, read2, rc2, [2]bool{false, false}, [2]bool{false, false})
		t.Run()
		readID++
	}
}

func reverseComplementOrDie(s []byte) []byte {
	rc, err := seqenc.ReverseComplement(s)
	checkError(err)
	return rc
}

func printAln(ref *genome.Reference, res report.AlnRes) {
	strand := byte('+')
	if !res.FW {
		strand = '-'
	}
	fmt.Printf("%s\t%d\t%c\t%.2f\t%d edits\n", ref.ContigID(res.TIdx), res.TOff, strand, res.Score, len(res.Edits))
}
