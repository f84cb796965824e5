package config

import (
	"fmt"
	"time"

	"github.com/stratalog-io/welldex/params"
)

// Config represents a welldex.yaml configuration file.
// All values act as defaults for welldex run flags; CLI flags always
// override config values. Engineering parameters have no defaults at
// all: a key absent here and absent on the command line fails the run.
type Config struct {
	// Deck is the default deck file path.
	Deck string `yaml:"deck"`
	// Parallel is the worker-pool width (0 = CPU count).
	Parallel int `yaml:"parallel"`
	// Params carries the engineering parameter scalars, keyed by the
	// registered parameter names (e.g. completion.perforation_density).
	Params map[string]float64 `yaml:"params"`
	// Search tunes the cell search. Operational, defaults allowed.
	Search  SearchConfig  `yaml:"search"`
	Storage StorageConfig `yaml:"storage"`
	Policy  PolicyConfig  `yaml:"policy"`
	Adapter AdapterConfig `yaml:"adapter"`
	Solver  SolverConfig  `yaml:"solver"`
}

// SearchConfig holds the cell-search tuning knobs.
type SearchConfig struct {
	Radius        float64 `yaml:"radius"`
	MaxExpansions int     `yaml:"max_expansions"`
}

// StorageConfig holds storage defaults from the config file.
type StorageConfig struct {
	Dataset     string `yaml:"dataset"`
	Backend     string `yaml:"backend"`
	Path        string `yaml:"path"`
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint"`
	S3PathStyle bool   `yaml:"s3_path_style"`
}

// PolicyConfig holds policy defaults from the config file.
type PolicyConfig struct {
	Name          string `yaml:"name"`
	BufferRecords int    `yaml:"buffer_records"`
	BufferBytes   int64  `yaml:"buffer_bytes"`
}

// AdapterConfig holds adapter defaults from the config file.
type AdapterConfig struct {
	Type    string            `yaml:"type"`
	URL     string            `yaml:"url"`
	Channel string            `yaml:"channel,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Timeout Duration          `yaml:"timeout,omitempty"`
	Retries *int              `yaml:"retries,omitempty"`
}

// SolverConfig holds the flow-solver hand-off defaults.
type SolverConfig struct {
	// Stream is the path the framed control stream is written to.
	// Empty disables the hand-off. "-" writes to stdout.
	Stream string `yaml:"stream"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// BuildParams converts the params section into a validated parameter
// set. Unknown keys are errors so typos fail loudly instead of leaving
// a required scalar unset. Search tuning is applied on top.
func (c *Config) BuildParams() (*params.Set, error) {
	known := make(map[params.Key]struct{})
	for _, key := range params.Keys() {
		known[key] = struct{}{}
	}

	ps := params.New()
	for name, value := range c.Params {
		key := params.Key(name)
		if _, ok := known[key]; !ok {
			return nil, fmt.Errorf("unknown engineering parameter %q in config", name)
		}
		ps.Put(key, value)
	}

	ps.SetSearchTuning(c.Search.Radius, c.Search.MaxExpansions)
	return ps, nil
}
