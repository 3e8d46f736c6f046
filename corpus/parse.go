// Package corpus parses the three accepted input formats (raw,
// bag-of-words, and "semi": bag-of-words whose occurrences are kept
// at an InputSemiRate sampling probability) into lda.Document
// values, generalizing the scan-and-tokenize loop that used to live
// inline in core/utils.LoadCorpusOrDie and srv.Loader.Init.
package corpus

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"

	"github.com/huichen/sego"

	"github.com/wangkuiyi/vertexlda/counts"
	"github.com/wangkuiyi/vertexlda/lda"
)

// Format selects how a corpus line's fields are interpreted.
type Format string

const (
	Raw  Format = "raw"
	Bow  Format = "bow"
	Semi Format = "semi"
)

// Options collects the corpus-related CLI flags.
type Options struct {
	Format        Format
	IgnoreDocId   bool
	InputSemiRate float64 // only meaningful for Semi
	MinDocLen     int     // <=0 disables the lower bound
	MaxDocLen     int     // <=0 disables the upper bound
	NumTopics     int

	// Segmenter, when non-nil, re-tokenizes Raw lines with sego
	// instead of naive whitespace splitting, the same Chinese-aware
	// tokenization cmd/interpreter uses for live queries, wired here
	// into corpus parsing instead of only the interpreter's query path.
	Segmenter *sego.Segmenter
}

// Load scans r line by line, parsing each line as one document per
// Options.Format, and returns every document whose length falls
// within [MinDocLen, MaxDocLen]. vocab is consulted only for the Raw
// format; Bow and Semi lines already carry vocabulary-space term ids.
func Load(r io.Reader, vocab *lda.Vocabulary, opt Options, rng *rand.Rand) ([]*lda.Document, error) {
	var docs []*lda.Document
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if opt.IgnoreDocId && len(fields) > 0 {
			fields = fields[1:]
		}

		var d *lda.Document
		var e error
		switch opt.Format {
		case Raw, "":
			d = parseRaw(fields, scanner.Text(), vocab, opt, rng)
		case Bow:
			d, e = parseBow(fields, opt.NumTopics, rng)
		case Semi:
			d, e = parseSemi(fields, opt.NumTopics, opt.InputSemiRate, rng)
		default:
			return nil, fmt.Errorf("corpus: unknown input format %q", opt.Format)
		}
		if e != nil {
			return nil, fmt.Errorf("corpus: line %d: %w", lineNo, e)
		}

		if withinBounds(d.Len(), opt.MinDocLen, opt.MaxDocLen) {
			docs = append(docs, d)
		}
	}
	if e := scanner.Err(); e != nil {
		return nil, fmt.Errorf("corpus: scan failed: %w", e)
	}
	return docs, nil
}

func withinBounds(n, minLen, maxLen int) bool {
	if minLen > 0 && n < minLen {
		return false
	}
	if maxLen > 0 && n > maxLen {
		return false
	}
	return true
}

func parseRaw(fields []string, line string, vocab *lda.Vocabulary, opt Options, rng *rand.Rand) *lda.Document {
	words := fields
	if opt.Segmenter != nil {
		segs := opt.Segmenter.Segment([]byte(line))
		words = make([]string, 0, len(segs))
		for _, s := range segs {
			words = append(words, s.Token().Text())
		}
	}
	return lda.InitializeDocument(words, vocab, opt.NumTopics, rng)
}

func parseBow(fields []string, numTopics int, rng *rand.Rand) (*lda.Document, error) {
	ids := make([]lda.TermId, 0, len(fields))
	for _, f := range fields {
		t, e := strconv.ParseInt(f, 10, 32)
		if e != nil {
			return nil, fmt.Errorf("bad term id %q: %w", f, e)
		}
		ids = append(ids, lda.NewTermId(int32(t)))
	}
	return newDocument(ids, numTopics, rng), nil
}

// parseSemi parses "termId:count" pairs, including each occurrence
// independently with probability rate -- the "expanded at an
// inputSemiRate sampling probability" variant of bag-of-words input.
// rate >= 1 keeps every occurrence, matching plain Bow.
func parseSemi(fields []string, numTopics int, rate float64, rng *rand.Rand) (*lda.Document, error) {
	var ids []lda.TermId
	for _, f := range fields {
		parts := strings.SplitN(f, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("bad semi term %q: expecting termId:count", f)
		}
		term, e := strconv.ParseInt(parts[0], 10, 32)
		if e != nil {
			return nil, fmt.Errorf("bad term id %q: %w", parts[0], e)
		}
		count, e := strconv.Atoi(parts[1])
		if e != nil {
			return nil, fmt.Errorf("bad count %q: %w", parts[1], e)
		}
		for i := 0; i < count; i++ {
			if rate >= 1 || rng.Float64() < rate {
				ids = append(ids, lda.NewTermId(int32(term)))
			}
		}
	}
	return newDocument(ids, numTopics, rng), nil
}

// newDocument builds a Document directly from already-resolved term
// ids, the second half of lda.InitializeDocument's loop (uniform
// random initial topic assignment) without the vocabulary lookup step
// Bow/Semi input does not need.
func newDocument(ids []lda.TermId, numTopics int, rng *rand.Rand) *lda.Document {
	d := &lda.Document{
		Terms:       make([]lda.TermId, 0, len(ids)),
		Topics:      make([]int32, 0, len(ids)),
		TopicCounts: counts.NewOrderedAndReserve(len(ids)),
	}
	for _, id := range ids {
		topic := rng.Intn(numTopics)
		d.Terms = append(d.Terms, id)
		d.Topics = append(d.Topics, int32(topic))
		d.TopicCounts.Inc(topic, 1)
	}
	return d
}
