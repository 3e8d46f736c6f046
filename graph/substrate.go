package graph

// Router maps a vertex to the partition index that owns it. VMBLP
// (package partition) implements Router for the hash/balanced-label
// assignment it computes; MemSubstrate's default router is a trivial
// single-partition stand-in for local/test runs.
type Router interface {
	TermPartition(term int32) int
	DocPartition(doc int32) int
}

// singlePartitionRouter routes everything to partition 0, for
// single-process runs where no real partitioning is needed.
type singlePartitionRouter struct{}

func (singlePartitionRouter) TermPartition(int32) int { return 0 }
func (singlePartitionRouter) DocPartition(int32) int  { return 0 }

// Substrate is the external distributed substrate's contract: a
// collection of edge partitions plus the vertex counter stores that
// back them, reachable by partition index.
type Substrate interface {
	EdgePartition(i int) *EdgePartition
	NumPartitions() int
	TermCounters() *VertexCounters
	DocCounters() *VertexCounters
	Router() Router
}

// MemSubstrate holds every edge partition and both vertex-counter
// stores in process memory. cmd/multithread builds one as its
// authoritative counter store and another per evaluation pass; each
// srv Sampler builds one over its resident shard to answer the
// Perplexity RPC.
type MemSubstrate struct {
	partitions []*EdgePartition
	terms      *VertexCounters
	docs       *VertexCounters
	router     Router
}

func NewMemSubstrate(partitions []*EdgePartition, numTerms, numDocs, numTopics int) *MemSubstrate {
	return &MemSubstrate{
		partitions: partitions,
		terms:      NewVertexCounters(numTerms, numTopics),
		docs:       NewSparseVertexCounters(numDocs, numTopics),
		router:     singlePartitionRouter{},
	}
}

func (m *MemSubstrate) EdgePartition(i int) *EdgePartition { return m.partitions[i] }
func (m *MemSubstrate) NumPartitions() int                 { return len(m.partitions) }
func (m *MemSubstrate) TermCounters() *VertexCounters      { return m.terms }
func (m *MemSubstrate) DocCounters() *VertexCounters       { return m.docs }
func (m *MemSubstrate) Router() Router                     { return m.router }

// SetRouter overrides the default single-partition router, e.g. with
// a partition.Router once the graph has been repartitioned by VMBLP.
func (m *MemSubstrate) SetRouter(r Router) { m.router = r }
