package utils

import (
	"fmt"
	"html/template"
	"log"
	"runtime"

	"github.com/wangkuiyi/parallel"

	"github.com/wangkuiyi/vertexlda/lda"
)

func DescribeTopics(m *lda.Model, v *lda.Vocabulary,
	maxWordsPerTopic int) []*TopicDesc {

	log.Printf("Generating topic descriptions ... ")
	descs := make([]*TopicDesc, m.NumTopics())

	parallel.ForN(0, m.NumTopics(), 1, 2*runtime.NumCPU(), func(topic int) {
		words := m.GetTopWords(topic)
		if len(words) == 0 {
			panic(fmt.Sprintf("topic %d got empty word list", topic))
		}
		descs[topic] = &TopicDesc{
			Id:     topic,
			Nt:     m.GlobalTopicCounts.At(topic),
			Tokens: make([]TokenDesc, 0, maxWordsPerTopic)}
		for i, tw := range words {
			if i >= maxWordsPerTopic {
				break
			}
			descs[topic].Tokens = append(descs[topic].Tokens,
				TokenDesc{template.HTML(v.Token(tw.Term)), tw.Count})
		}
	})

	log.Printf("Done generating topic descriptions.")
	return descs
}

type TopicDesc struct {
	Id     int
	Nt     int64
	Tokens []TokenDesc
}
type TokenDesc struct {
	Word  template.HTML
	Count int64
}
