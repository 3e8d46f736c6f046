package utils

import (
	"bufio"
	"log"
	"math/rand"
	"path"
	"strings"

	cmprs "github.com/wangkuiyi/compress_io"
	"github.com/wangkuiyi/file"

	"github.com/wangkuiyi/vertexlda/corpus"
	"github.com/wangkuiyi/vertexlda/lda"
	"github.com/wangkuiyi/vertexlda/modelio"
)

func LoadVocabOrDie(filename string) *lda.Vocabulary {
	log.Printf("Loading vocab %s ... ", filename)

	f, e := file.Open(filename)
	r := cmprs.NewReader(f, e, path.Ext(filename))
	if r == nil {
		log.Fatalf("Cannot open vocab file %s: %v", filename, e)
	}
	defer r.Close()

	vocab := lda.NewVocabulary()
	if e := vocab.Load(r); e != nil {
		log.Fatalf("Failed loading vocab file %s: %v", filename, e)
	}

	log.Println("Done loading vocabulary.")
	return vocab
}

// LoadCorpusOrDie loads and tokenizes filename through the corpus
// package's Raw-format parser, the single-process counterpart of
// srv.Loader.Init's corpus.LoadFile call.
func LoadCorpusOrDie(filename string, vocab *lda.Vocabulary, topics int,
	minLen, maxLen int, rng *rand.Rand) []*lda.Document {

	log.Printf("Loading corpus %s ... ", filename)

	docs, e := corpus.LoadFile(filename, vocab, corpus.Options{
		Format:    corpus.Raw,
		MinDocLen: minLen,
		MaxDocLen: maxLen,
		NumTopics: topics,
	}, rng)
	if e != nil {
		log.Fatalf("Failed loading corpus %s: %v", filename, e)
	}
	if len(docs) == 0 {
		log.Fatal("corpus contain no valid document!")
	}

	log.Printf("Done loading corpus: %d documents.", len(docs))
	return docs
}

func LoadModelOrDie(filename string) *lda.Model {
	log.Printf("Loading model %s ...", filename)
	m, e := modelio.LoadModel(filename)
	if e != nil {
		log.Fatalf("Cannot decode model: %v", e)
	}
	log.Printf("Done. %d topics %d tokens.", m.NumTopics(), m.VocabSize())
	return m
}

func InitializeModel(corpus []*lda.Document, vocab *lda.Vocabulary,
	topics int, alpha, beta float64) *lda.Model {

	log.Print("Initializing model ... ")
	model := lda.NewModel(topics, vocab.Len(), alpha, beta)
	for _, d := range corpus {
		d.ApplyToModel(model)
	}
	log.Println("Done initializing model.")
	return model
}

func SaveModel(model *lda.Model, filename string) {
	if len(filename) > 0 {
		if e := modelio.SaveModel(model, filename); e != nil {
			log.Printf("Failed saving model: %v", e)
		} else {
			log.Printf("Saved model to %s.", filename)
		}
	}
}

type Trans map[string]string

func TranslatedVocab(v *lda.Vocabulary, tr Trans) *lda.Vocabulary {
	log.Printf("Translating vocabulary ... ")
	for i, s := range v.Tokens {
		if t, exist := tr[s]; exist {
			v.Tokens[i] = t
		} else {
			log.Printf("Cannot translate %s", s)
		}
	}
	log.Printf("Done with translating vocabulary.")
	return v
}

func LoadTranslationOrDie(filename string) Trans {
	log.Printf("Loading translation %s ...", filename)
	trans := make(map[string]string)

	f, e := file.Open(filename)
	r := cmprs.NewReader(f, e, path.Ext(filename))
	if r == nil {
		log.Fatalf("Cannot load from %s: %v", filename, e)
	}
	defer r.Close()

	s := bufio.NewScanner(r)
	for s.Scan() {
		fs := strings.Fields(s.Text())
		if len(fs) < 2 {
			log.Fatalf("%v has less than 2 fields", fs)
		}
		if _, exist := trans[fs[0]]; exist {
			log.Fatalf("Found duplicated company Id (%s) in %s", fs[0], fs)
		}
		trans[fs[0]] = strings.Join(fs[1:len(fs)], " ")
	}
	if e := s.Err(); e != nil {
		log.Fatalf("Reading %s error: %v", filename, e)
	}

	log.Printf("Done loading translation,  %d entries.", len(trans))
	return trans
}
