package srv

import (
	"expvar"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/rpc"
	"path"

	"github.com/wangkuiyi/file"

	"github.com/wangkuiyi/vertexlda/counts"
	"github.com/wangkuiyi/vertexlda/lda"
	"github.com/wangkuiyi/vertexlda/modelio"
)

// Aggregator owns one vertical shard (vshard) of the term-topic
// counters: every loader/sampler in every squad sends it the share of
// its local diff that hashes to this vshard, and Aggregator folds
// them into its resident Model via Model.Accumulate, built around
// this repository's counts.TC rather than a per-word histogram.
type Aggregator struct {
	cfg   *Config
	me    string
	done  chan bool
	vocab *lda.Vocabulary
	model *lda.Model
}

func RunAggregator(cfg *Config, addr string) error {
	if aid := cfg.AggregatorId(addr); aid < 0 {
		return fmt.Errorf("Aggregator %s not in config %+v", addr, cfg)
	}

	v, e := loadVocabulary(cfg)
	if e != nil {
		return e
	}
	m := lda.NewModel(cfg.NumTopics, v.Len(), cfg.TopicPrior, cfg.WordPrior)

	s := &Aggregator{
		cfg:   cfg,
		me:    addr,
		done:  make(chan bool, 1),
		vocab: v,
		model: m,
	}
	rpc.Register(s)
	rpc.HandleHTTP()

	expvar.Publish("config", s.cfg)
	expvar.Publish("me", expvar.Func(func() interface{} { return s.me }))

	l, e := net.Listen("tcp", addr)
	if e != nil {
		log.Fatalf("listen on %s error: %v", addr, e)
	}
	go http.Serve(l, nil)

	log.Println("Aggregator listen on ", addr)
	if e := registerAggregator(cfg, addr); e != nil {
		if len(cfg.Master) > 0 {
			return e
		}
		log.Print("cfg.Master is empty. Consider this a test run.")
	}

	<-s.done
	return nil
}

func loadVocabulary(cfg *Config) (*lda.Vocabulary, error) {
	vf, e := file.Open(cfg.VocabFile)
	if e != nil {
		return nil, e
	}
	defer vf.Close()

	v := lda.NewVocabulary()
	if e := v.Load(vf); e != nil {
		return nil, e
	}
	return v, nil
}

func registerAggregator(cfg *Config, me string) error {
	mr, e := rpc.DialHTTP("tcp", cfg.Master)
	if e != nil {
		return fmt.Errorf("Failed dialing %s: %v", cfg.Master, e)
	}

	e = mr.Call("Master.RegisterAggregator", me, nil)
	if e != nil {
		return fmt.Errorf("Failed register aggregator %s: %v", me, e)
	}

	return nil
}

// Init merges a loader's or sampler's partial term-topic diff for
// this vshard into the resident model.
func (s *Aggregator) Init(deltas map[int32]counts.TC, _ *int) error {
	s.model.Accumulate(deltas)
	return nil
}

func (s *Aggregator) Save(is *struct{ Iter, VShard, VShards int },
	_ *int) error {
	p := path.Join(s.cfg.JobDir, fmt.Sprintf("%05d", is.Iter),
		fmt.Sprintf("%s-%05d-of-%05d", MODEL_FILE, is.VShard, is.VShards))
	return modelio.SaveModel(s.model, p)
}

// GetShardCounts returns a snapshot of every term this aggregator
// currently holds counters for, so a Sampler can refresh its resident
// model with other squads' updates before its next resampling pass.
func (a *Aggregator) GetShardCounts(_ int, ret *map[int32]counts.TC) error {
	out := make(map[int32]counts.TC)
	for term, c := range a.model.TermTopicCounts {
		if c != nil {
			out[int32(term)] = c
		}
	}
	*ret = out
	return nil
}

func (a *Aggregator) GetGlobalCounts(_ *int, ret *counts.Dense) error {
	*ret = a.model.GlobalTopicCounts
	return nil
}

func (a *Aggregator) SetGlobalCounts(gc counts.Dense, _ *int) error {
	a.model.GlobalTopicCounts = gc
	return nil
}
