// train_toy_model builds a tiny four-token, two-topic model with
// hyperparameter-optimized priors and writes it, along with its
// vocabulary, into a temporary directory, so cmd/interpreter and
// cmd/print_model have a small fixture model to run against.
package main

import (
	"fmt"
	"io/ioutil"
	"log"
	"math/rand"
	"os"
	"path"
	"strings"

	"github.com/wangkuiyi/vertexlda/lda"
	"github.com/wangkuiyi/vertexlda/modelio"
)

const (
	numTopics = 2
	alpha     = 0.1
	beta      = 0.01

	optimShape     = 0.0
	optimScale     = 1e7
	optimIter      = 5
	totalIteration = 110
)

func main() {
	v := lda.NewVocabulary()
	if e := v.Load(strings.NewReader("apple 100\norange\twhatever\n\ncat\ntiger")); e != nil {
		log.Fatalf("build toy vocabulary: %v", e)
	}

	rng := rand.New(rand.NewSource(-1))
	docs := []*lda.Document{
		lda.InitializeDocument([]string{"apple", "orange"}, v, numTopics, rng),
		lda.InitializeDocument([]string{"orange", "apple"}, v, numTopics, rng),
		lda.InitializeDocument([]string{"cat", "tiger"}, v, numTopics, rng),
		lda.InitializeDocument([]string{"tiger", "cat"}, v, numTopics, rng),
	}

	m := lda.NewModel(numTopics, v.Len(), alpha, beta)
	for _, d := range docs {
		d.ApplyToModel(m)
	}

	k := lda.NewSparseLDAKernel(m)
	o := lda.NewOptimizer(numTopics)
	for iter := 0; iter < totalIteration; iter++ {
		for _, d := range docs {
			k.Sample(d, rng)
			o.CollectDocumentStatistics(d)
		}
		o.OptimizeTopicPriors(m, optimShape, optimScale, optimIter)
		k.RefreshPriors()
	}

	dir, e := ioutil.TempDir("", "train_toy_model")
	if e != nil {
		log.Fatal("Cannot create temp dir:", e)
	}

	if e := modelio.SaveModel(m, path.Join(dir, "model")); e != nil {
		log.Fatalf("Failed saving model: %v", e)
	}

	if f, e := os.Create(path.Join(dir, "vocab")); e == nil {
		defer f.Close()
		for _, token := range v.Tokens {
			fmt.Fprintf(f, "%s\n", token)
		}
	} else {
		log.Fatalf("Cannot create vocab file: %v", e)
	}

	fmt.Print(dir)
}
