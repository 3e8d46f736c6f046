// inspect print content of files in specified iteration directory in
// human readable format.  It can print either the model or the
// log-likelihood of till the current iteration; the document dump
// (-content=doc) is not implemented and returns an error (see
// dumpDoc).  By default, it prints the model in the most
// recent iteration.  To let inspect know which directory it is going
// to print, users are expected to provide the training configuration
// file.  For example, say we are going to inspect the model learned
// in our example training job, we can do:
/*
  $GOPATH/bin/inspect \
  -config=file:/path/to/training.conf
*/
package main

import (
	"flag"
	"fmt"
	"github.com/wangkuiyi/file"
	"github.com/wangkuiyi/vertexlda/lda"
	"github.com/wangkuiyi/vertexlda/modelio"
	"github.com/wangkuiyi/vertexlda/srv"
	"log"
	"os"
	"path"
	"strings"
)

var (
	config    = flag.String("config", "", "The training config file")
	iteration = flag.Int("iteration", -1, "The iteration to inspect")
	content   = flag.String("content", "model", "{doc, model, logll}")
)

func main() {
	flag.Parse()

	cfg, e := srv.LoadConfig(*config)
	if e != nil {
		log.Fatalf("Cannot load config file %s: %v", *config, e)
	}
	if e := cfg.Validate(); e != nil {
		log.Fatalf("Invalid configuration: %v", e)
	}
	log.Println("Done loading config file")

	if maxIter, e := srv.FindMostRecentCompletedIteration(cfg); e != nil {
		log.Fatalf("Cannot find most recent completed iteration in %s: %v",
			cfg.JobDir, e)
	} else {
		if *iteration > maxIter {
			log.Fatalf("iteraton %d larger than the most recent iteration %d",
				*iteration, maxIter)
		} else if *iteration < 0 {
			log.Printf("iteration %d is negative, set to %d",
				*iteration, maxIter)
			*iteration = maxIter
		}
	}
	dir := path.Join(cfg.JobDir, fmt.Sprintf("%05d", *iteration))

	v := lda.NewVocabulary()
	if f, e := file.Open(cfg.VocabFile); e != nil {
		log.Fatalf("Cannot open vocab %s: %v", cfg.VocabFile, e)
	} else if e := v.Load(f); e != nil {
		log.Fatalf("Cannot load vocab %s: %v", cfg.VocabFile, e)
	}

	switch *content {
	case "doc":
		e = dumpDoc(dir)
	case "model":
		e = dumpModel(dir, v)
	case "logll":
		e = dumpLogll(dir)
	default:
		e = fmt.Errorf("Unknown content %s", *content)
	}
	if e != nil {
		log.Fatal(e)
	}
}

// dumpModel prints, for every MODEL_FILE shard under dir, its
// term-topic matrix through modelio.WriteTermTopic.
func dumpModel(dir string, v *lda.Vocabulary) error {
	fis, e := file.List(dir)
	if e != nil {
		return fmt.Errorf("Cannot list %s: %v", dir, e)
	}

	for _, fi := range fis {
		if strings.HasPrefix(fi.Name, srv.MODEL_FILE) {
			mf := path.Join(dir, fi.Name)
			m, e := modelio.LoadModel(mf)
			if e != nil {
				return fmt.Errorf("Cannot load model file %s: %v", mf, e)
			}
			modelio.WriteTermTopic(os.Stdout, m, v, false)
		}
	}

	return nil
}

// dumpLogll prints every LOGLL_FILE shard under dir, each of which
// holds one "log-likelihood token-count" line per Coordinator.logll's
// write, per the directory layout documented in srv/config.go.
func dumpLogll(dir string) error {
	fis, e := file.List(dir)
	if e != nil {
		return fmt.Errorf("Cannot list %s: %v", dir, e)
	}

	for _, fi := range fis {
		if strings.HasPrefix(fi.Name, srv.LOGLL_FILE) {
			lf := path.Join(dir, fi.Name)
			f, e := file.Open(lf)
			if e != nil {
				return fmt.Errorf("Cannot open logll file %s: %v", lf, e)
			}
			var logl float64
			var nw int
			if _, e := fmt.Fscanf(f, "%f %d\n", &logl, &nw); e != nil {
				f.Close()
				return fmt.Errorf("Cannot parse logll file %s: %v", lf, e)
			}
			f.Close()
			fmt.Printf("%s: logl=%f nw=%d\n", fi.Name, logl, nw)
		}
	}

	return nil
}

// dumpDoc is not implemented: doc-topic assignments are held by each
// sampler's resident Document slice and are never checkpointed to
// JobDir today (see modelio.WriteDocTopic, which cmd/singlethread and
// cmd/multithread can call directly on their in-memory corpus).
func dumpDoc(dir string) error {
	return fmt.Errorf("dumpDoc is under implementation")
}
