package corpus

import (
	"fmt"
	"math/rand"
	"path"

	cmprs "github.com/wangkuiyi/compress_io"
	"github.com/wangkuiyi/file"

	"github.com/wangkuiyi/vertexlda/lda"
)

// LoadFile opens filename through the pluggable file/compress_io
// stack (local disk, in-memory, or transparently decompressed
// depending on extension) and parses it per opt, exactly the access
// pattern core/utils.LoadCorpusOrDie and srv.Loader.Init use for
// corpus shards.
func LoadFile(filename string, vocab *lda.Vocabulary, opt Options, rng *rand.Rand) ([]*lda.Document, error) {
	f, e := file.Open(filename)
	if e != nil {
		return nil, fmt.Errorf("corpus: open %s: %w", filename, e)
	}
	defer f.Close()

	r := cmprs.NewReader(f, nil, path.Ext(filename))
	if r == nil {
		return nil, fmt.Errorf("corpus: cannot build reader for %s", filename)
	}
	defer r.Close()

	return Load(r, vocab, opt, rng)
}
