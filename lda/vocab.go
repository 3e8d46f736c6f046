package lda

import (
	"bufio"
	"fmt"
	"hash"
	"hash/fnv"
	"io"
	"sort"
	"strings"
)

// Vocabulary is the bi-directional string<->TermId mapping. Ids are
// assigned in ascending order of (FNV-1a hash of token, token) so
// that high-frequency and long-tail tokens interleave once the
// vocabulary is hash-partitioned across term-vertex shards, rather
// than clustering alphabetically.
type Vocabulary struct {
	Tokens []string
	hasher hash.Hash64
	ids    map[string]int32
}

func NewVocabulary() *Vocabulary {
	return &Vocabulary{Tokens: make([]string, 0), hasher: fnv.New64a()}
}

func (v *Vocabulary) Load(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fs := strings.Fields(scanner.Text())
		if len(fs) > 0 {
			v.Tokens = append(v.Tokens, fs[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	sort.Sort(v)
	v.buildIdMap()
	return nil
}

func (v *Vocabulary) buildIdMap() {
	v.ids = make(map[string]int32, len(v.Tokens))
	for i := range v.Tokens {
		v.ids[v.Tokens[i]] = int32(i)
	}
}

func (v *Vocabulary) Len() int { return len(v.Tokens) }

func (v *Vocabulary) fingerprint(s string) uint64 {
	v.hasher.Write([]byte(s))
	sum := v.hasher.Sum64()
	v.hasher.Reset()
	return sum
}

func (v *Vocabulary) Less(i, j int) bool {
	l, r := v.fingerprint(v.Tokens[i]), v.fingerprint(v.Tokens[j])
	if l == r {
		return v.Tokens[i] < v.Tokens[j]
	}
	return l < r
}

func (v *Vocabulary) Swap(i, j int) { v.Tokens[i], v.Tokens[j] = v.Tokens[j], v.Tokens[i] }

func (v *Vocabulary) Token(id TermId) string {
	i := id.Real()
	if i < 0 || int(i) >= len(v.Tokens) {
		panic(fmt.Sprintf("id=%d out of range [0, %d)", i, len(v.Tokens)))
	}
	return v.Tokens[i]
}

// Id returns the TermId of token, or a negative-index TermId if the
// token is unknown to the vocabulary.
func (v *Vocabulary) Id(token string) TermId {
	if v.ids == nil {
		v.buildIdMap()
	}
	if id, ok := v.ids[token]; ok {
		return NewTermId(id)
	}
	return NewTermId(-1)
}
