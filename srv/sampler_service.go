package srv

import (
	"encoding/gob"
	"expvar"
	_ "expvar"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net"
	"net/http"
	_ "net/http/pprof"
	"net/rpc"
	"path"

	"github.com/wangkuiyi/file"
	"github.com/wangkuiyi/parallel"

	"github.com/wangkuiyi/vertexlda/counts"
	"github.com/wangkuiyi/vertexlda/dist"
	"github.com/wangkuiyi/vertexlda/graph"
	"github.com/wangkuiyi/vertexlda/lda"
	"github.com/wangkuiyi/vertexlda/partition"
)

// samplerKernel is the surface every sampling kernel exposes; Sampler
// only needs to attach a diff before a resampling pass and detach it
// after, the same protocol cmd/singlethread and cmd/multithread use.
type samplerKernel interface {
	SetDiff(*lda.Model)
	GetDiff() *lda.Model
}

type Sampler struct {
	cfg         *Config
	coord       string
	me          string
	squad       *Squad
	aggregators []*RpcClient
	done        chan bool

	vocab  *lda.Vocabulary
	model  *lda.Model
	docs   []*lda.Document
	kernel samplerKernel
	rng    *rand.Rand
}

func RunSampler(cfg *Config, coord, sampler string) error {
	cid, sid := cfg.SamplerId(coord, sampler)
	if cid < 0 || sid < 0 {
		return fmt.Errorf("Cannot identify coord (%s) or sampler (%s)",
			coord, sampler)
	}

	as, e := connectToAggregators(cfg.Aggregators)
	if e != nil {
		if len(cfg.Aggregators) > 0 {
			return fmt.Errorf("Connect to %v: %v", cfg.Aggregators, e)
		} else {
			log.Print("Aggregators is empty. Consider this a test run.")
			as = nil
		}
	}

	s := &Sampler{
		cfg:         cfg,
		coord:       coord,
		me:          sampler,
		squad:       &cfg.Squads[cid],
		aggregators: as,
		done:        make(chan bool),
		rng:         rand.New(rand.NewSource(int64(sid) + 1)),
	}
	rpc.Register(s)
	rpc.HandleHTTP()

	expvar.Publish("config", s.cfg)
	expvar.Publish("coord", expvar.Func(func() interface{} { return s.coord }))
	expvar.Publish("me", expvar.Func(func() interface{} { return s.me }))
	expvar.Publish("aggregators",
		expvar.Func(func() interface{} { return s.aggregators }))

	l, e := net.Listen("tcp", sampler)
	if e != nil {
		log.Fatalf("listen on %s error: %v", sampler, e)
	}
	log.Printf("Sampler started by %s listen on %s", coord, sampler)
	go http.Serve(l, nil)

	if e := registerSampler(cfg, coord, sampler); e != nil {
		return fmt.Errorf("Cannot register sampler %s: %v", sampler, e)
	}

	<-s.done
	return nil
}

func registerSampler(cfg *Config, coord, sampler string) error {
	cl, e := rpc.DialHTTP("tcp", coord)
	if e != nil {
		return fmt.Errorf("Failed dialing %s: %v", coord, e)
	}

	e = cl.Call("Coordinator.RegisterSampler", sampler, nil)
	if e != nil {
		return fmt.Errorf("Failed register %s: %v", sampler, e)
	}

	return nil
}

// Init loads shard, the same gob-encoded document stream Loader.Init
// wrote to JobDir/00000/shard, builds this sampler's resident model
// from it, and selects the sampling kernel named by cfg.LDAAlgorithm.
func (s *Sampler) Init(shard string, _ *int) error {
	v, e := loadVocabulary(s.cfg)
	if e != nil {
		return fmt.Errorf("%s load vocab: %v", s.me, e)
	}
	s.vocab = v

	p := path.Join(s.cfg.JobDir, fmt.Sprintf("%05d", 0), shard)
	f, e := file.Open(p)
	if e != nil {
		return fmt.Errorf("%s open shard %s: %v", s.me, p, e)
	}
	defer f.Close()

	dec := gob.NewDecoder(f)
	var docs []*lda.Document
	for {
		var d lda.Document
		if e := dec.Decode(&d); e != nil {
			if e == io.EOF {
				break
			}
			return fmt.Errorf("%s decode shard %s: %v", s.me, p, e)
		}
		docs = append(docs, &d)
	}
	s.docs = docs

	s.model = lda.NewModel(s.cfg.NumTopics, v.Len(), s.cfg.TopicPrior, s.cfg.WordPrior)
	for _, d := range docs {
		d.ApplyToModel(s.model)
	}

	k, e := newSamplerKernel(s.cfg, s.model)
	if e != nil {
		return fmt.Errorf("%s: %v", s.me, e)
	}
	s.kernel = k
	return nil
}

// refreshModel pulls every aggregator's authoritative share of the
// term-topic counters into this sampler's resident model, so a
// resampling pass sees other squads' updates from the previous
// iteration.
func (s *Sampler) refreshModel() error {
	return parallel.For(0, len(s.aggregators), 1, func(i int) error {
		var shard map[int32]counts.TC
		if e := s.aggregators[i].Call("Aggregator.GetShardCounts", 0, &shard); e != nil {
			return fmt.Errorf("refresh from %s: %v", s.aggregators[i].Name, e)
		}
		for term, c := range shard {
			s.model.TermTopicCounts[term] = c
		}
		return nil
	})
}

// Sample resamples every resident document once, then ships the
// resulting per-term diff to the aggregators, sharded the same way
// Loader.Init shards its initial counts.
func (s *Sampler) Sample(iter int, _ *int) error {
	if s.model == nil {
		return fmt.Errorf("Sampler %s not initialized", s.me)
	}
	if len(s.aggregators) > 0 {
		if e := s.refreshModel(); e != nil {
			return fmt.Errorf("%s: %v", s.me, e)
		}
	}

	diff := lda.NewModel(s.cfg.NumTopics, s.vocab.Len(), s.cfg.TopicPrior, s.cfg.WordPrior)
	s.kernel.SetDiff(diff)
	for _, d := range s.docs {
		sampleAllOccurrences(s.kernel, d, s.rng)
	}
	s.kernel.SetDiff(nil)

	// The word-by-word family samples against frozen counters and
	// records every change in the diff; commit it locally (the
	// aggregators get the same diff below) and rebuild the shared
	// denominator vectors for the next pass.
	if wk, ok := s.kernel.(*lda.WordByWordKernel); ok {
		s.model.ApplyDiff(diff)
		wk.RefreshGlobals()
	}

	if len(s.aggregators) == 0 {
		return nil
	}
	shards := shardTermCounts(diff.TermTopicCounts, len(s.aggregators))
	return parallel.For(0, len(s.aggregators), 1, func(i int) error {
		e := s.aggregators[i].Call("Aggregator.Init", shards[i], nil)
		if e != nil {
			return fmt.Errorf("ship diff to %s: %v", s.aggregators[i].Name, e)
		}
		return nil
	})
}

// Perplexity computes this sampler's contribution to the corpus
// log-likelihood and token count, for Coordinator.logll to aggregate
// into a LOGLL_FILE. The resident documents are recast as a token
// graph, counters are committed into an in-process substrate, and the
// evaluation walks its edge partitions one goroutine each.
func (s *Sampler) Perplexity(_ int, ret *struct{ LogL float64; NW int }) error {
	if s.model == nil {
		return fmt.Errorf("Sampler %s not initialized", s.me)
	}
	parts := s.cfg.NumThreads
	if parts <= 0 {
		parts = 1
	}
	router := partition.HashRouter{NumPartitions: parts}
	sub := graph.NewMemSubstrate(lda.BuildGraph(s.docs, router, parts),
		s.vocab.Len(), len(s.docs), s.cfg.NumTopics)
	sub.SetRouter(router)
	if e := lda.UpdateCounters(sub, s.cfg.NumTopics); e != nil {
		return fmt.Errorf("%s counter update: %v", s.me, e)
	}
	ll, e := lda.EvaluateLogLikelihoods(sub, s.model, len(s.docs))
	if e != nil {
		return fmt.Errorf("%s evaluate: %v", s.me, e)
	}
	ret.LogL = ll.LLH
	ret.NW = int(ll.Tokens)
	return nil
}

func newSamplerKernel(cfg *Config, model *lda.Model) (samplerKernel, error) {
	accel := newSamplerAccelerator(cfg.AccelMethod)
	alphaAS := cfg.AlphaAS
	if alphaAS <= 0 {
		alphaAS = cfg.TopicPrior
	}
	switch cfg.LDAAlgorithm {
	case "", "SparseLDA":
		return lda.NewSparseLDAKernel(model), nil
	case "ZenLDA", "ZenSemiLDA":
		k := lda.NewWordByWordKernel(model, accel, alphaAS)
		k.SkipVirtualTerms(cfg.LDAAlgorithm == "ZenSemiLDA")
		return k, nil
	case "LightLDA":
		return lda.NewLightLDAKernel(model, accel, lda.DefaultMHSteps), nil
	default:
		return nil, fmt.Errorf("unknown LDAAlgorithm %q", cfg.LDAAlgorithm)
	}
}

func newSamplerAccelerator(method string) dist.Discrete {
	switch method {
	case "ftree":
		return dist.NewFTree()
	case "alias", "hybrid", "":
		return dist.NewAliasTable()
	default:
		return dist.NewFlatDist()
	}
}

// sampleAllOccurrences resamples every token of doc once, dispatching
// to whichever concrete kernel k is.
func sampleAllOccurrences(k samplerKernel, doc *lda.Document, rng *rand.Rand) {
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
