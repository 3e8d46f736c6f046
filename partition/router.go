package partition

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Router is a graph.Router backed by a flat VMBLP assignment: term
// vertices occupy indices [0, numTerms) and doc vertices occupy
// [numTerms, numTerms+numDocs), matching the flat vertex index space
// VMBLP.Run operates over.
type Router struct {
	assign   []int
	numTerms int
}

func NewRouter(assign []int, numTerms int) *Router {
	return &Router{assign: assign, numTerms: numTerms}
}

func (r *Router) TermPartition(term int32) int {
	return r.assign[term]
}

func (r *Router) DocPartition(doc int32) int {
	return r.assign[r.numTerms+int(doc)]
}

// HashRouter partitions vertices by hashing their id, the static
// fallback when no label-propagation assignment has been computed
// yet (and the initial assignment VMBLP iterates from). Terms and
// docs hash with different salts so a term and a doc sharing an index
// do not always land together.
type HashRouter struct {
	NumPartitions int
}

func (h HashRouter) TermPartition(term int32) int { return h.bucket(0, term) }
func (h HashRouter) DocPartition(doc int32) int   { return h.bucket(1, doc) }

func (h HashRouter) bucket(salt byte, id int32) int {
	var b [5]byte
	b[0] = salt
	binary.LittleEndian.PutUint32(b[1:], uint32(id))
	return int(xxhash.Sum64(b[:]) % uint64(h.NumPartitions))
}
