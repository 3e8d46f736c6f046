// Package modelio implements the two output artifacts a training run
// produces: the term-topic model and the doc-topic assignments,
// either coalesced into one file ("solid") or split one file per
// partition, grounded on core/utils.SaveModel/LoadModelOrDie and
// cmd/inspect's dumpModel/prettyPrintModel routines, generalized from
// a single in-memory Model to per-partition vertex counter stores.
package modelio

import (
	"encoding/gob"
	"fmt"
	"path"

	"github.com/pkg/errors"

	cmprs "github.com/wangkuiyi/compress_io"
	"github.com/wangkuiyi/file"

	"github.com/wangkuiyi/vertexlda/lda"
)

// SaveModel gob-encodes m to filename through the pluggable
// file/compress_io stack, exactly as core/utils.SaveModel does.
func SaveModel(m *lda.Model, filename string) error {
	f, e := file.Create(filename)
	if e != nil {
		return errors.Wrapf(e, "modelio: create %s", filename)
	}
	w := cmprs.NewWriter(f, nil, path.Ext(filename))
	if w == nil {
		return fmt.Errorf("modelio: cannot build writer for %s", filename)
	}
	defer w.Close()
	if e := gob.NewEncoder(w).Encode(m); e != nil {
		return errors.Wrap(e, "modelio: encode model")
	}
	return nil
}

// LoadModel is SaveModel's inverse, grounded on
// core/utils.LoadModelOrDie.
func LoadModel(filename string) (*lda.Model, error) {
	f, e := file.Open(filename)
	if e != nil {
		return nil, errors.Wrapf(e, "modelio: open %s", filename)
	}
	r := cmprs.NewReader(f, nil, path.Ext(filename))
	if r == nil {
		return nil, fmt.Errorf("modelio: cannot build reader for %s", filename)
	}
	defer r.Close()

	m := new(lda.Model)
	if e := gob.NewDecoder(r).Decode(m); e != nil {
		return nil, errors.Wrap(e, "modelio: decode model")
	}
	return m, nil
}

// SavePartitioned writes one model file per partition under dir,
// named the way iteration directories name shard files elsewhere in
// this repo (a zero-padded partition index), for the
// one-file-per-partition output mode. models[i] holds partition i's
// share of the term-topic counters (e.g. only the terms that
// partition's Router routes to it).
func SavePartitioned(models []*lda.Model, dir string) error {
	for i, m := range models {
		if m == nil {
			continue
		}
		fn := path.Join(dir, fmt.Sprintf("part-%05d", i))
		if e := SaveModel(m, fn); e != nil {
			return errors.Wrapf(e, "modelio: partition %d", i)
		}
	}
	return nil
}
