package modelio

import (
	"fmt"
	"io"

	"github.com/wangkuiyi/vertexlda/lda"
)

// WriteTermTopic writes the term-topic matrix in human-readable form:
// one row per term (or, if transpose is true, one row per topic),
// grounded on cmd/inspect's prettyPrintModel and Model.PrintTopics.
func WriteTermTopic(w io.Writer, m *lda.Model, v *lda.Vocabulary, transpose bool) {
	if transpose {
		m.PrintTopics(w, v)
		return
	}
	for term, c := range m.TermTopicCounts {
		if c == nil {
			continue
		}
		fmt.Fprintf(w, "%-10s ", v.Token(lda.NewTermId(int32(term))))
		row := make([]int64, m.NumTopics())
		c.ForEach(func(topic int, count int64) error {
			row[topic] = count
			return nil
		})
		for _, count := range row {
			fmt.Fprintf(w, "% 5d ", count)
		}
		fmt.Fprintln(w)
	}
}

// WriteDocTopic writes the doc-topic assignment matrix: one row per
// document, each topic's share of that document's tokens. cmd/inspect
// itself has no per-document dump wired to disk (see dumpDoc's "under
// implementation" stub), but this walks the same Ordered-counts
// structure SparseLDAKernel already does, for callers that hold their
// corpus in memory.
func WriteDocTopic(w io.Writer, docs []*lda.Document, numTopics int) {
	for i, d := range docs {
		fmt.Fprintf(w, "%-10d ", i)
		row := make([]int64, numTopics)
		d.TopicCounts.ForEach(func(topic int, count int64) error {
			row[topic] = count
			return nil
		})
		for _, count := range row {
			fmt.Fprintf(w, "% 5d ", count)
		}
		fmt.Fprintln(w)
	}
}
