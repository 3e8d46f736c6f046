// singlethread is a single-process command line trainer: it loads a
// vocabulary and corpus shard into memory, runs Gibbs sampling with
// the algorithm/acceleration chosen on the command line, periodically
// evaluates perplexity, and writes the trained model.
//
// Usage:
/*
  $GOPATH/bin/singlethread \
    -vocab=./testdata/vocab -corpus=./testdata/corpus -topics=2 \
    -algorithm=SparseLDA -output=./testdata/model
*/
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/wangkuiyi/file"

	"github.com/wangkuiyi/vertexlda/corpus"
	"github.com/wangkuiyi/vertexlda/core/utils"
	"github.com/wangkuiyi/vertexlda/dist"
	"github.com/wangkuiyi/vertexlda/lda"
	"github.com/wangkuiyi/vertexlda/modelio"
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
	flagAccel := flag.String("accel", "alias",
		"Discrete sampler backing the word-by-word/LightLDA kernels: alias, ftree, hybrid")
	flagInputFormat := flag.String("input_format", "raw", "raw, bow, or semi")
	flagSemiRate := flag.Float64("semi_rate", 1.0,
		"Per-occurrence inclusion probability for the semi input format")
	flagIgnoreDocId := flag.Bool("ignore_doc_id", false,
		"Strip a leading doc-id field from every corpus line")
	flagAlphaAS := flag.Float64("alpha_as", 0.1,
		"Asymmetric-prior hyperparameter alpha' for the word-by-word kernels")
	flagMHSteps := flag.Int("mh_steps", 8, "LightLDA Metropolis-Hastings sub-steps per occurrence")
	flagModel := flag.String("output", "", "The model output path")
	flagCache := flag.Int("cache", 0, "Smoothing model cache in MB")
	flagEvalLag := flag.Int("eval_lag", 1, "Evaluation lag")
	flag.Parse()

	if len(*flagModel) == 0 {
		fmt.Fprintln(os.Stderr, "singlethread: -output must be specified")
		os.Exit(1)
	}
	if exists, _ := file.Exists(*flagModel); exists {
		fmt.Fprintf(os.Stderr, "singlethread: output path %s already exists\n", *flagModel)
		os.Exit(2)
	}

	is := utils.EnableExpvar(*flagAddr)
	log.Printf("Initialization start at %s", is.Start().StartTime)

	vf, e := file.Open(*flagVocab)
	if e != nil {
		log.Fatalf("cannot open vocab file %s: %v", *flagVocab, e)
	}
	vocab := lda.NewVocabulary()
	if e := vocab.Load(vf); e != nil {
		log.Fatalf("cannot load vocab file %s: %v", *flagVocab, e)
	}
	vf.Close()

	rng := rand.New(rand.NewSource(1))

	opt := corpus.Options{
		Format:        corpus.Format(*flagInputFormat),
		IgnoreDocId:   *flagIgnoreDocId,
		InputSemiRate: *flagSemiRate,
		MinDocLen:     *flagMinDocLen,
		MaxDocLen:     *flagMaxDocLen,
		NumTopics:     *flagTopics,
	}
	docs, e := corpus.LoadFile(*flagCorpus, vocab, opt, rng)
	if e != nil {
		log.Fatalf("cannot load corpus %s: %v", *flagCorpus, e)
	}
	log.Printf("Loaded %s documents, %s-token vocabulary",
		humanize.Comma(int64(len(docs))), humanize.Comma(int64(vocab.Len())))

	model := lda.NewModel(*flagTopics, vocab.Len(), *flagAlpha, *flagBeta)
	for _, d := range docs {
		d.ApplyToModel(model)
	}

	k := newKernel(*flagAlgorithm, model, *flagAccel, *flagAlphaAS, *flagMHSteps)

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

	bar := progressbar.NewOptions(*flagIter,
		progressbar.OptionSetDescription("Gibbs sampling"),
		progressbar.OptionSetItsString("iter"),
		progressbar.OptionShowCount())

GibbsIterations:
	for iter := 0; iter < *flagIter; iter++ {
		select {
		case <-exit:
			log.Printf("Early terminated by signal.")
			break GibbsIterations
		default:
		}

		log.Printf("Iteration %04d start at %s", iter, is.Start().StartTime)
		runIteration(k, model, vocab.Len(), *flagTopics, *flagAlpha, *flagBeta, docs, rng)

		if iter%*flagEvalLag == 0 {
			eval := lda.NewEvaluator(model, *flagCache)
			pp := lda.CorpusPerplexity(eval, docs)
			log.Printf("Iteration %04d perplexity %f", iter, pp)
			log.Printf("Iteration %04d done in %s", iter, is.End(pp).Duration)
		} else {
			log.Printf("Iteration %04d done in %s", iter, is.End(0.0).Duration)
		}
		bar.Add(1)
	}

	if e := modelio.SaveModel(model, *flagModel); e != nil {
		log.Fatalf("cannot save model to %s: %v", *flagModel, e)
	}
}

// newKernel builds the accelerator (when the algorithm needs one) and
// the requested sampling kernel.
func newKernel(algorithm string, model *lda.Model, accelMethod string, alphaAS float64, mhSteps int) interface{} {
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

// runIteration resamples every occurrence in docs once. SparseLDA
// iterates document by document; the word-by-word kernels (ZenLDA,
// ZenSemiLDA, LightLDA) iterate term by term, amortizing their
// per-term proposal table across every occurrence of that term across
// the whole corpus, so occurrences are grouped by term first. The
// ZenLDA family samples against frozen counters and records changes
// in a diff, committed to the model at the end of the pass.
func runIteration(k interface{}, model *lda.Model, vocabSize, topics int,
	alpha, beta float64, docs []*lda.Document, rng *rand.Rand) {

	switch sampler := k.(type) {
	case *lda.SparseLDAKernel:
		for _, d := range docs {
			sampler.Sample(d, rng)
		}
	case *lda.WordByWordKernel:
		diff := lda.NewModel(topics, vocabSize, alpha, beta)
		sampler.SetDiff(diff)
		byTerm, order := groupOccurrencesByTerm(docs)
		for _, term := range order {
			occ := byTerm[term]
			sampler.SampleTermGroup(term, occ.docs, occ.positions, rng)
		}
		sampler.SetDiff(nil)
		model.ApplyDiff(diff)
		sampler.RefreshGlobals()
	case *lda.LightLDAKernel:
		byTerm, order := groupOccurrencesByTerm(docs)
		for _, term := range order {
			occ := byTerm[term]
			sampler.SampleTermGroup(term, occ.docs, occ.positions, rng)
		}
	}
}

type occurrences struct {
	docs      []*lda.Document
	positions []int
}

// groupOccurrencesByTerm builds, for every term appearing in docs, the
// parallel (doc, position) lists SampleTermGroup expects. order
// records first-seen term order so iteration is deterministic given a
// fixed corpus (not required for correctness, only for reproducible
// logs/tests).
func groupOccurrencesByTerm(docs []*lda.Document) (map[lda.TermId]*occurrences, []lda.TermId) {
	byTerm := make(map[lda.TermId]*occurrences)
	var order []lda.TermId
	for _, d := range docs {
		for pos, term := range d.Terms {
			occ, ok := byTerm[term]
			if !ok {
				occ = &occurrences{}
				byTerm[term] = occ
				order = append(order, term)
			}
			occ.docs = append(occ.docs, d)
			occ.positions = append(occ.positions, pos)
		}
	}
	return byTerm, order
}
