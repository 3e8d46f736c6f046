package lda

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand"
	"sort"
	"strings"

	"github.com/wangkuiyi/vertexlda/counts"
)

// ErrEmptyDoc is returned by Interpret when none of the query's words
// are present in the interpreter's vocabulary.
var ErrEmptyDoc = errors.New("interpret: empty document")

// Interpreter infers a topic distribution for held-out text against a
// fixed, trained model by running burn-in Gibbs sampling over the
// query alone (the model's counters are never mutated), built around
// this repository's Accessor and counts.TC plumbing.
type Interpreter struct {
	model            *Accessor
	vocab            *Vocabulary
	smoothingOnlySum []float64
}

func NewInterpreter(m *Model, v *Vocabulary, cacheMB int) *Interpreter {
	a := NewAccessor(m, cacheMB)
	return &Interpreter{
		model:            a,
		vocab:            v,
		smoothingOnlySum: computeWordTopicPriorSum(a),
	}
}

// computeWordTopicPriorSum precomputes, for every term, the mass
// alpha . phi_t summed over topics, the normalizer sampleTopic needs
// to weigh its smoothing-only bucket against the document-topic one.
func computeWordTopicPriorSum(a *Accessor) []float64 {
	sums := make([]float64, a.VocabSize())
	for term := range a.TermTopicCounts {
		dist := a.TermDist(TermId(term))
		var sum float64
		for topic, p := range dist {
			sum += a.Alpha[topic] * p
		}
		sums[term] = sum
	}
	return sums
}

// TopicProb pairs a topic with the probability mass Interpret
// assigned it.
type TopicProb struct {
	Topic int32
	Prob  float64
}

// SparseDist is a topic distribution restricted to its non-zero
// entries, sorted by descending probability once Interpret returns.
type SparseDist []TopicProb

func (a SparseDist) Len() int           { return len(a) }
func (a SparseDist) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a SparseDist) Less(i, j int) bool { return a[i].Prob > a[j].Prob }

// Interpret tokenizes words against the interpreter's vocabulary,
// assigns each token a random initial topic seeded from a hash of the
// query text (so repeated queries are reproducible), then runs iter
// Gibbs sweeps over the resulting pseudo-document -- discarding the
// first burnin as burn-in -- and returns the topic distribution
// averaged over the remaining sweeps.
func (intr *Interpreter) Interpret(words []string, burnin, iter int) (SparseDist, error) {
	if iter <= burnin {
		panic(fmt.Sprintf("iter (%d) <= burnin (%d)", iter, burnin))
	}

	hasher := fnv.New64()
	hasher.Write([]byte(strings.Join(words, "\t")))
	rng := rand.New(rand.NewSource(int64(hasher.Sum64())))
	doc := InitializeDocument(words, intr.vocab, intr.model.NumTopics(), rng)
	if doc.Len() <= 0 {
		return nil, ErrEmptyDoc
	}

	cache := make(map[TermId][]float64, doc.Len())
	dist := func(term TermId) []float64 {
		if d, ok := cache[term]; ok {
			return d
		}
		d := intr.model.TermDist(term)
		cache[term] = d
		return d
	}

	accumulated := counts.NewSparse()
	var norm float64

	for i := 0; i < iter; i++ {
		for j := 0; j < doc.Len(); j++ {
			term := doc.Terms[j]
			oldTopic := doc.Topics[j]
			doc.TopicCounts.Dec(int(oldTopic), 1)
			newTopic := intr.sampleTopic(doc, term, dist(term), rng)
			doc.Topics[j] = newTopic
			doc.TopicCounts.Inc(int(newTopic), 1)
		}

		if i >= burnin {
			doc.TopicCounts.ForEach(func(topic int, count int64) error {
				accumulated.Inc(topic, int(count))
				norm += float64(count)
				return nil
			})
		}
	}

	out := make(SparseDist, 0, accumulated.Len())
	accumulated.ForEach(func(topic int, count int64) error {
		out = append(out, TopicProb{int32(topic), float64(count) / norm})
		return nil
	})
	sort.Sort(out)
	return out, nil
}

func (intr *Interpreter) sampleTopic(doc *Document, term TermId,
	smoothingOnlyBucket []float64, rng *rand.Rand) int32 {

	docTopicBucket, docTopicSum := intr.calculateDocumentTopicBucket(doc, smoothingOnlyBucket)
	newTopic := int32(-1)
	sample := rng.Float64() * (docTopicSum + intr.smoothingOnlySum[term.Real()])

	if sample < docTopicSum {
		for i := 0; i < len(docTopicBucket); i++ {
			sample -= docTopicBucket[i].Prob
			if sample <= 0 {
				newTopic = docTopicBucket[i].Topic
				break
			}
		}
	} else {
		sample -= docTopicSum
		i := 0
		sample -= smoothingOnlyBucket[i] * intr.model.Alpha[i]
		for sample > 0 {
			i++
			sample -= smoothingOnlyBucket[i] * intr.model.Alpha[i]
		}
		if i >= intr.model.NumTopics() {
			panic(fmt.Sprintf("i (%d) >= model.NumTopics() (%d)", i, intr.model.NumTopics()))
		}
		newTopic = int32(i)
	}

	if newTopic < 0 {
		panic(fmt.Sprintf("newTopic (%d) < 0", newTopic))
	}
	return newTopic
}

func (intr *Interpreter) calculateDocumentTopicBucket(doc *Document,
	smoothingOnlyBucket []float64) (SparseDist, float64) {

	docTopicBucket := make(SparseDist, 0, doc.TopicCounts.Len())
	var docTopicSum float64

	doc.TopicCounts.ForEach(func(topic int, count int64) error {
		p := float64(count) * smoothingOnlyBucket[topic]
		docTopicBucket = append(docTopicBucket, TopicProb{int32(topic), p})
		docTopicSum += p
		return nil
	})
	return docTopicBucket, docTopicSum
}
