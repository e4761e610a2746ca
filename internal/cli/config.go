package cli

import "github.com/seitarof/gen-pad/internal/generator"

// Config stores CLI options for a generation run.
type Config struct {
	Inputs        []string
	Output        string
	PadPrefix     string
	BlankPadding  bool
	AssertOffsets bool
	Verify        bool
	Report        bool
	GOARCH        string
	Jobs          int
	Verbose       bool
	ShowVersion   bool
}

// Job is one input file and the file generated from it.
type Job struct {
	Input  string
	Output string
}

// OutputFilename returns destination file path for generator layer.
func (j Job) OutputFilename() string {
	return j.Output
}

// Targets expands the inputs into jobs, in input order.
func (c *Config) Targets() []Job {
	jobs := make([]Job, 0, len(c.Inputs))
	for _, in := range c.Inputs {
		out := generator.OutputName(in)
		if c.Output != "" {
			out = c.Output
		}
		jobs = append(jobs, Job{Input: in, Output: out})
	}
	return jobs
}
