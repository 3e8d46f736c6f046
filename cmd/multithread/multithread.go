// multithread is a multi-process-shaped, single-machine command line
// trainer: it partitions a corpus into shards sampled by independent
// goroutines, each accumulating its own diff, then folds every diff
// back into the authoritative counters through the same
// graph.VertexCounters aggregation path the distributed sampler/
// aggregator services use.
//
// Usage:
/*
  $GOPATH/bin/multithread \
    -vocab=../singlethread/testdata/vocab \
    -corpus=../singlethread/testdata/corpus \
    -topics=2 \
    -output=./testdata/model
*/
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"runtime"

	"github.com/wangkuiyi/parallel"

	"github.com/wangkuiyi/file"

	"github.com/wangkuiyi/vertexlda/corpus"
	"github.com/wangkuiyi/vertexlda/core/utils"
	"github.com/wangkuiyi/vertexlda/dist"
	"github.com/wangkuiyi/vertexlda/graph"
	"github.com/wangkuiyi/vertexlda/lda"
	"github.com/wangkuiyi/vertexlda/modelio"
	"github.com/wangkuiyi/vertexlda/partition"
)

func main() {
	flagAddr := flag.String("addr", ":6060", "HTTP status page address")
	flagVocab := flag.String("vocab", "./testdata/vocab", "Vocabulary file")
	flagCorpus := flag.String("corpus", "./testdata/corpus", "Corpus file")
	flagMinDocLen := flag.Int("minlen", 1, "minimum document length")
	flagMaxDocLen := flag.Int("maxlen", -1, "maximum document length")
	flagTopics := flag.Int("topics", 10, "Number of topics to be learned")
	flagIter := flag.Int("iterations", 100, "Gibbs sampling iterations")
	flagAlpha := flag.Float64("alpha", 0.01, "Topic prior")
	flagBeta := flag.Float64("beta", 0.01, "Word prior")
	flagAlgorithm := flag.String("algorithm", "SparseLDA",
		"Sampling algorithm: SparseLDA, ZenLDA, ZenSemiLDA, or LightLDA")
	flagAccel := flag.String("accel", "alias", "alias, ftree, or hybrid")
	flagAlphaAS := flag.Float64("alpha_as", 0.1,
		"Asymmetric-prior hyperparameter alpha' for the word-by-word kernels")
	flagMHSteps := flag.Int("mh_steps", 8, "LightLDA Metropolis-Hastings sub-steps per occurrence")
	flagInputFormat := flag.String("input_format", "raw", "raw, bow, or semi")
	flagShards := flag.Int("shards", 2, "Number of parallel shards")
	flagShardStrategy := flag.String("shard_strategy", "roundrobin",
		"How documents map to shards: roundrobin, hash, or vmblp (label-propagation over the term-doc graph)")
	flagSeed := flag.Int64("seed", 1, "Seed for corpus initialization and vmblp sharding")
	flagGoMaxProcs := flag.Int("GOMAXPROCS", -1, "GOMAXPROCS")
	flagModel := flag.String("output", "", "The model output")
	flagEvalLag := flag.Int("eval_lag", 1, "Evaluation lag")
	flag.Parse()

	if len(*flagModel) == 0 {
		fmt.Fprintln(os.Stderr, "multithread: -output must be specified")
		os.Exit(1)
	}
	if exists, _ := file.Exists(*flagModel); exists {
		fmt.Fprintf(os.Stderr, "multithread: output path %s already exists\n", *flagModel)
		os.Exit(2)
	}

	is := utils.EnableExpvar(*flagAddr)
	log.Printf("Initialization start at %s", is.Start().StartTime)

	if *flagGoMaxProcs < 0 {
		runtime.GOMAXPROCS(runtime.NumCPU())
	} else {
		runtime.GOMAXPROCS(*flagGoMaxProcs)
	}
	log.Println("Running with MAXPROCS ", runtime.GOMAXPROCS(-1))

	vf, e := file.Open(*flagVocab)
	if e != nil {
		log.Fatalf("cannot open vocab file %s: %v", *flagVocab, e)
	}
	vocab := lda.NewVocabulary()
	if e := vocab.Load(vf); e != nil {
		log.Fatalf("cannot load vocab file %s: %v", *flagVocab, e)
	}
	vf.Close()

	rng := rand.New(rand.NewSource(*flagSeed))
	opt := corpus.Options{
		Format:    corpus.Format(*flagInputFormat),
		MinDocLen: *flagMinDocLen,
		MaxDocLen: *flagMaxDocLen,
		NumTopics: *flagTopics,
	}
	docs, e := corpus.LoadFile(*flagCorpus, vocab, opt, rng)
	if e != nil {
		log.Fatalf("cannot load corpus %s: %v", *flagCorpus, e)
	}

	model := lda.NewModel(*flagTopics, vocab.Len(), *flagAlpha, *flagBeta)

	shards := *flagShards
	if shards > len(docs) {
		shards = len(docs)
	}
	shardDocs, router := shardCorpus(docs, vocab.Len(), shards, *flagShardStrategy, *flagSeed)

	// The substrate owns the authoritative vertex counters: recast the
	// corpus as the bipartite token graph and run the counter-update
	// phase once over the initial assignments to materialize them.
	// Per-iteration diffs then keep the store in sync.
	sub := graph.NewMemSubstrate(lda.BuildGraph(docs, router, shards),
		vocab.Len(), len(docs), *flagTopics)
	sub.SetRouter(router)
	if e := lda.UpdateCounters(sub, *flagTopics); e != nil {
		log.Fatalf("initial counter update: %v", e)
	}
	model.TermTopicCounts = lda.SnapshotTermCounts(sub.TermCounters())
	model.GlobalTopicCounts = lda.RebuildGlobalCounts(sub.TermCounters(), *flagTopics)

	log.Printf("Initialization done in %s", is.End(0.0).Duration)

	sigs := make(chan os.Signal, 1)
	exit := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	go func() {
		for sig := range sigs {
			log.Printf("Caught signal, will checkpoint and exit ...")
			exit <- sig
		}
	}()

GibbsIterations:
	for iter := 0; iter < *flagIter; iter++ {
		select {
		case <-exit:
			log.Printf("Early terminated by signal.")
			break GibbsIterations
		default:
		}

		log.Printf("Iteration %04d start at %s", iter, is.Start().StartTime)

		diffs := make([]*lda.Model, shards)
		for i := range diffs {
			diffs[i] = lda.NewModel(*flagTopics, vocab.Len(), *flagAlpha, *flagBeta)
		}

		parallel.For(0, shards, 1, func(i int) error {
			localModel := model.Clone()
			k := newKernel(*flagAlgorithm, localModel, *flagAccel, *flagAlphaAS, *flagMHSteps)
			k.SetDiff(diffs[i])
			shardRng := rand.New(rand.NewSource((*flagSeed+int64(iter))*int64(shards) + int64(i)))
			for _, d := range shardDocs[i] {
				sampleDocument(k, docs[d], shardRng)
			}
			return nil
		})

		if e := lda.AggregateTermCounters(sub.TermCounters(), diffs); e != nil {
			log.Fatalf("aggregating term counters: %v", e)
		}
		lda.AggregateGlobalCounts(model.GlobalTopicCounts, diffs)
		model.TermTopicCounts = lda.SnapshotTermCounts(sub.TermCounters())

		if iter%*flagEvalLag == 0 {
			// Rebuild the token graph from the current assignments and
			// reconstruct counters into a fresh substrate: the
			// evaluation walks committed vertex counters, one
			// goroutine per edge partition.
			evalSub := graph.NewMemSubstrate(lda.BuildGraph(docs, router, shards),
				vocab.Len(), len(docs), *flagTopics)
			evalSub.SetRouter(router)
			if e := lda.UpdateCounters(evalSub, *flagTopics); e != nil {
				log.Fatalf("counter update for evaluation: %v", e)
			}
			ll, e := lda.EvaluateLogLikelihoods(evalSub, model, len(docs))
			if e != nil {
				log.Fatalf("evaluating log-likelihoods: %v", e)
			}
			pp := ll.Perplexity()
			log.Printf("Iteration %04d perplexity %f", iter, pp)
			log.Printf("Iteration %04d done in %s", iter, is.End(pp).Duration)
		} else {
			log.Printf("Iteration %04d done in %s", iter, is.End(0.0).Duration)
		}
	}

	if e := modelio.SaveModel(model, *flagModel); e != nil {
		log.Fatalf("cannot save model to %s: %v", *flagModel, e)
	}
}

// sampleDocument resamples every occurrence of doc once, dispatching
// to whichever per-occurrence or per-document entry point k exposes.
func sampleDocument(k interface {
	SetDiff(*lda.Model)
	GetDiff() *lda.Model
}, doc *lda.Document, rng *rand.Rand) {
	switch sampler := k.(type) {
	case *lda.SparseLDAKernel:
		sampler.Sample(doc, rng)
	case *lda.WordByWordKernel:
		for pos := range doc.Terms {
			sampler.SampleOccurrence(doc, doc.Terms[pos], pos, rng)
		}
	case *lda.LightLDAKernel:
		for pos := range doc.Terms {
			sampler.SampleOccurrence(doc, doc.Terms[pos], pos, rng)
		}
	}
}

func newKernel(algorithm string, model *lda.Model, accelMethod string, alphaAS float64, mhSteps int) interface {
	SetDiff(*lda.Model)
	GetDiff() *lda.Model
} {
	switch algorithm {
	case "SparseLDA":
		return lda.NewSparseLDAKernel(model)
	case "ZenLDA", "ZenSemiLDA":
		k := lda.NewWordByWordKernel(model, newAccelerator(accelMethod), alphaAS)
		k.SkipVirtualTerms(algorithm == "ZenSemiLDA")
		return k
	case "LightLDA":
		return lda.NewLightLDAKernel(model, newAccelerator(accelMethod), mhSteps)
	default:
		log.Fatalf("unknown algorithm %q", algorithm)
		return nil
	}
}

// shardCorpus assigns each document index to a shard and returns the
// router that also places the token graph's edges (by source term).
// roundrobin stripes documents; vmblp runs label propagation over the
// bipartite term-doc graph so documents sharing vocabulary gravitate
// to the same shard, which shrinks the per-shard working set of term
// counters.
func shardCorpus(docs []*lda.Document, vocabSize, shards int, strategy string, seed int64) ([][]int, graph.Router) {
	out := make([][]int, shards)
	var router graph.Router
	switch strategy {
	case "vmblp":
		// Vertices: terms [0, V), docs [V, V+D). One adjacency per
		// distinct (term, doc) pair.
		var edges []partition.Edge
		for d, doc := range docs {
			seen := make(map[int32]bool, doc.Len())
			for _, term := range doc.Terms {
				t := term.Real()
				if !seen[t] {
					seen[t] = true
					edges = append(edges, partition.Edge{Src: int(t), Dst: vocabSize + d})
				}
			}
		}
		// Label propagation iterates from the static hash assignment.
		n := vocabSize + len(docs)
		hash := partition.HashRouter{NumPartitions: shards}
		assign := make([]int, n)
		for t := 0; t < vocabSize; t++ {
			assign[t] = hash.TermPartition(int32(t))
		}
		for d := range docs {
			assign[vocabSize+d] = hash.DocPartition(int32(d))
		}
		p := partition.NewVMBLP(shards, rand.New(rand.NewSource(seed)))
		r := partition.NewRouter(p.Run(n, edges, assign, 5), vocabSize)
		router = r
		for d := range docs {
			s := r.DocPartition(int32(d))
			out[s] = append(out[s], d)
		}
	case "hash":
		hash := partition.HashRouter{NumPartitions: shards}
		router = hash
		for d := range docs {
			s := hash.DocPartition(int32(d))
			out[s] = append(out[s], d)
		}
	case "roundrobin", "":
		router = partition.HashRouter{NumPartitions: shards}
		for d := range docs {
			out[d%shards] = append(out[d%shards], d)
		}
	default:
		log.Fatalf("unknown shard strategy %q", strategy)
	}
	return out, router
}

func newAccelerator(method string) dist.Discrete {
	switch method {
	case "ftree":
		return dist.NewFTree()
	case "alias", "hybrid":
		return dist.NewAliasTable()
	default:
		return dist.NewFlatDist()
	}
}
