package srv

import "testing"

func createTestingTrainingConfig() *Config {
	return &Config{
		NumTopics:     10,
		TopicPrior:    0.1,
		WordPrior:     0.01,
		AlphaAS:       0.1,
		TotalIter:     100,
		NumPartitions: 4,
		InputPath:     "inmem:/corpus",
		OutputPath:    "inmem:/out",
		InputFormat:   "raw",
		LDAAlgorithm:  "SparseLDA",
		AccelMethod:   "alias",
		PartStrategy:  "byTerm",
		InitStrategy:  "Random",
	}
}

func TestValidateTrainingParamsOK(t *testing.T) {
	c := createTestingTrainingConfig()
	if e := c.ValidateTrainingParams(); e != nil {
		t.Errorf("unexpected error: %v", e)
	}
}

func TestValidateTrainingParamsRejectsNonPositiveNumerics(t *testing.T) {
	cases := []func(*Config){
		func(c *Config) { c.NumTopics = 0 },
		func(c *Config) { c.TopicPrior = 0 },
		func(c *Config) { c.WordPrior = -1 },
		func(c *Config) { c.AlphaAS = 0 },
		func(c *Config) { c.TotalIter = 0 },
		func(c *Config) { c.NumPartitions = 0 },
	}
	for i, mutate := range cases {
		c := createTestingTrainingConfig()
		mutate(c)
		if e := c.ValidateTrainingParams(); e == nil {
			t.Errorf("case %d: expecting an error, got none", i)
		}
	}
}

func TestValidateTrainingParamsRejectsUnknownEnums(t *testing.T) {
	cases := []func(*Config){
		func(c *Config) { c.InputFormat = "xml" },
		func(c *Config) { c.LDAAlgorithm = "EightLDA" },
		func(c *Config) { c.AccelMethod = "quantum" },
		func(c *Config) { c.PartStrategy = "random" },
		func(c *Config) { c.InitStrategy = "Zero" },
	}
	for i, mutate := range cases {
		c := createTestingTrainingConfig()
		mutate(c)
		if e := c.ValidateTrainingParams(); e == nil {
			t.Errorf("case %d: expecting an error, got none", i)
		}
	}
}

func TestValidateTrainingParamsAcceptsRPCDriverPathSpelling(t *testing.T) {
	c := createTestingTrainingConfig()
	c.InputPath, c.OutputPath = "", ""
	c.CorpusDir, c.JobDir = "inmem:/corpus", "inmem:/job"
	if e := c.ValidateTrainingParams(); e != nil {
		t.Errorf("unexpected error: %v", e)
	}
}

func TestValidateTrainingParamsRequiresPaths(t *testing.T) {
	c := createTestingTrainingConfig()
	c.InputPath, c.CorpusDir = "", ""
	if e := c.ValidateTrainingParams(); e == nil {
		t.Errorf("expecting an error when no input path is given")
	}
}

func TestEffectiveTaskTimeoutDefaultsWhenUnset(t *testing.T) {
	c := createTestingTrainingConfig()
	if c.EffectiveTaskTimeout() != DefaultTaskTimeout {
		t.Errorf("expecting default task timeout")
	}
	c.TaskTimeout = 42
	if c.EffectiveTaskTimeout() != 42 {
		t.Errorf("expecting overridden task timeout of 42, got %d", c.EffectiveTaskTimeout())
	}
}
