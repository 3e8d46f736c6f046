package srv

import "fmt"

var validLDAAlgorithms = map[string]bool{
	"ZenSemiLDA": true, "ZenLDA": true, "LightLDA": true, "SparseLDA": true,
}

var validAccelMethods = map[string]bool{
	"alias": true, "ftree": true, "hybrid": true,
}

var validInputFormats = map[string]bool{
	"raw": true, "bow": true, "semi": true,
}

var validPartStrategies = map[string]bool{
	"byTerm": true, "byDoc": true, "Edge2D": true, "DBH": true, "VSDLP": true, "BBR": true,
}

var validInitStrategies = map[string]bool{
	"Random": true, "Sparse": true, "Split": true,
}

// ValidateTrainingParams checks the numeric and enum training
// parameters that make for an invalid configuration: non-positive
// K/alpha/beta/iterations/partitions, or an unrecognized enum value.
// Kept separate from Validate (the squad/aggregator RPC topology
// check) so callers that only need one half (e.g. cmd/inspect only
// needs topology) are not forced to populate the other.
func (c *Config) ValidateTrainingParams() error {
	if c.NumTopics <= 0 {
		return fmt.Errorf("NumTopics (%d) must be > 0", c.NumTopics)
	}
	if c.TopicPrior <= 0 {
		return fmt.Errorf("TopicPrior/alpha (%f) must be > 0", c.TopicPrior)
	}
	if c.WordPrior <= 0 {
		return fmt.Errorf("WordPrior/beta (%f) must be > 0", c.WordPrior)
	}
	if c.AlphaAS <= 0 {
		return fmt.Errorf("AlphaAS/alpha' (%f) must be > 0", c.AlphaAS)
	}
	if c.TotalIter <= 0 {
		return fmt.Errorf("TotalIter (%d) must be > 0", c.TotalIter)
	}
	if c.NumPartitions <= 0 {
		return fmt.Errorf("NumPartitions (%d) must be > 0", c.NumPartitions)
	}
	// The single-process drivers name their corpus and model paths
	// InputPath/OutputPath; the RPC driver names them CorpusDir/JobDir.
	// Either spelling satisfies the requirement.
	if len(c.InputPath) == 0 && len(c.CorpusDir) == 0 {
		return fmt.Errorf("InputPath (or CorpusDir) must be specified")
	}
	if len(c.OutputPath) == 0 && len(c.JobDir) == 0 {
		return fmt.Errorf("OutputPath (or JobDir) must be specified")
	}

	if len(c.InputFormat) > 0 && !validInputFormats[c.InputFormat] {
		return fmt.Errorf("unknown InputFormat %q", c.InputFormat)
	}
	if len(c.LDAAlgorithm) > 0 && !validLDAAlgorithms[c.LDAAlgorithm] {
		return fmt.Errorf("unknown LDAAlgorithm %q", c.LDAAlgorithm)
	}
	if len(c.AccelMethod) > 0 && !validAccelMethods[c.AccelMethod] {
		return fmt.Errorf("unknown AccelMethod %q", c.AccelMethod)
	}
	if len(c.PartStrategy) > 0 && !validPartStrategies[c.PartStrategy] {
		return fmt.Errorf("unknown PartStrategy %q", c.PartStrategy)
	}
	if len(c.InitStrategy) > 0 && !validInitStrategies[c.InitStrategy] {
		return fmt.Errorf("unknown InitStrategy %q", c.InitStrategy)
	}
	return nil
}

// EffectiveTaskTimeout returns c.TaskTimeout, or DefaultTaskTimeout if
// unset.
func (c *Config) EffectiveTaskTimeout() int64 {
	if c.TaskTimeout > 0 {
		return c.TaskTimeout
	}
	return DefaultTaskTimeout
}
