package model

import (
	"fmt"
	"runtime"
	"time"
)

// Config is the complete commentlab configuration.
type Config struct {
	Corpus      string            `yaml:"corpus" mapstructure:"corpus"` // Dataset family, e.g. "java", "pharo", "python"
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	Import      ImportConfig      `yaml:"import" mapstructure:"import"`
	Split       SplitConfig       `yaml:"split" mapstructure:"split"`
	Partition   PartitionConfig   `yaml:"partition" mapstructure:"partition"`
	Extractors  ExtractorsConfig  `yaml:"extractors" mapstructure:"extractors"`
	Assembly    AssemblyConfig    `yaml:"assembly" mapstructure:"assembly"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Export      ExportConfig      `yaml:"export" mapstructure:"export"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// StoreConfig locates the SQLite database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ImportConfig controls how the comment table is fetched.
type ImportConfig struct {
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent  string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBytes   int64         `yaml:"max_bytes" mapstructure:"max_bytes"`
	HTTPProxy  string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`   // Overrides HTTP_PROXY
	HTTPSProxy string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"` // Overrides HTTPS_PROXY
	NoProxy    string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// SplitConfig bounds the sentences produced by the splitter.
type SplitConfig struct {
	MinLength int `yaml:"min_length" mapstructure:"min_length"`
	MaxLength int `yaml:"max_length" mapstructure:"max_length"`
}

// PartitionConfig controls the stratified partitioner.
type PartitionConfig struct {
	Percentages []int  `yaml:"percentages" mapstructure:"percentages"` // Must sum to 100; one entry per partition
	Selection   string `yaml:"selection" mapstructure:"selection"`     // "lowest" (reproducible) or "random"
	Seed        int64  `yaml:"seed" mapstructure:"seed"`               // Used by "random" only
}

// ExtractorsConfig controls how vocabulary and patterns are prepared.
type ExtractorsConfig struct {
	ID           int    `yaml:"id" mapstructure:"id"`                       // Extractors partition identifier
	Partition    int    `yaml:"partition" mapstructure:"partition"`         // Must be the training partition (0)
	WordsToKeep  int    `yaml:"words_to_keep" mapstructure:"words_to_keep"` // 0 keeps every word
	PatternsFile string `yaml:"patterns_file" mapstructure:"patterns_file"`
}

// AssemblyConfig controls dataset assembly.
type AssemblyConfig struct {
	ExtractorsID int    `yaml:"extractors_id" mapstructure:"extractors_id"`
	Compression  string `yaml:"compression" mapstructure:"compression"` // none, zstd, lz4
}

// ConcurrencyConfig sizes the worker pools.
type ConcurrencyConfig struct {
	Workers       int `yaml:"workers" mapstructure:"workers"`               // Categories processed in parallel
	StrataWorkers int `yaml:"strata_workers" mapstructure:"strata_workers"` // Strata partitioned in parallel per category
}

// ExportConfig selects where datasets are exported.
type ExportConfig struct {
	Dir string    `yaml:"dir" mapstructure:"dir"`
	S3  *S3Config `yaml:"s3,omitempty" mapstructure:"s3"`
}

// S3Config points at an S3-compatible bucket.
type S3Config struct {
	Endpoint     string `yaml:"endpoint" mapstructure:"endpoint"`
	Bucket       string `yaml:"bucket" mapstructure:"bucket"`
	Prefix       string `yaml:"prefix" mapstructure:"prefix"`
	Region       string `yaml:"region" mapstructure:"region"`
	Secure       bool   `yaml:"secure" mapstructure:"secure"`
	AccessKeyEnv string `yaml:"access_key_env" mapstructure:"access_key_env"`
	SecretKeyEnv string `yaml:"secret_key_env" mapstructure:"secret_key_env"`
}

// OutputConfig controls logging and console output.
type OutputConfig struct {
	Verbose   bool   `yaml:"verbose" mapstructure:"verbose"`
	LogFormat string `yaml:"log_format" mapstructure:"log_format"` // text or json
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Corpus: "java",
		Store: StoreConfig{
			Path: "commentlab.db",
		},
		Import: ImportConfig{
			Timeout:   30 * time.Second,
			UserAgent: "commentlab/1.0",
			MaxBytes:  256 << 20,
		},
		Split: SplitConfig{
			MinLength: 2,
			MaxLength: 1000,
		},
		Partition: PartitionConfig{
			Percentages: []int{80, 20},
			Selection:   "lowest",
		},
		Extractors: ExtractorsConfig{
			ID:          0,
			Partition:   TrainingPartition,
			WordsToKeep: 0,
		},
		Assembly: AssemblyConfig{
			ExtractorsID: 0,
			Compression:  "zstd",
		},
		Concurrency: ConcurrencyConfig{
			Workers:       runtime.NumCPU(),
			StrataWorkers: 4,
		},
		Export: ExportConfig{
			Dir: "./commentlab-datasets",
		},
		Output: OutputConfig{
			LogFormat: "text",
		},
	}
}

// Validate checks the configuration before any task writes to the store.
func (c *Config) Validate() error {
	if c.Corpus == "" {
		return fmt.Errorf("%w: corpus must be set", ErrConfig)
	}
	if c.Store.Path == "" {
		return fmt.Errorf("%w: store path must be set", ErrConfig)
	}
	if err := ValidatePercentages(c.Partition.Percentages); err != nil {
		return err
	}
	switch c.Partition.Selection {
	case "", "lowest", "random":
	default:
		return fmt.Errorf("%w: unknown selection %q (expected lowest|random)", ErrConfig, c.Partition.Selection)
	}
	switch c.Assembly.Compression {
	case "", "none", "zstd", "lz4":
	default:
		return fmt.Errorf("%w: unknown compression %q (expected none|zstd|lz4)", ErrConfig, c.Assembly.Compression)
	}
	if c.Import.MaxBytes <= 0 {
		return fmt.Errorf("%w: import max_bytes must be positive", ErrConfig)
	}
	if c.Extractors.WordsToKeep < 0 {
		return fmt.Errorf("%w: words_to_keep must not be negative", ErrConfig)
	}
	if c.Extractors.Partition != TrainingPartition {
		return fmt.Errorf("%w: extractors must be fitted on the training partition %d, got %d", ErrConfig, TrainingPartition, c.Extractors.Partition)
	}
	if c.Concurrency.Workers < 1 || c.Concurrency.StrataWorkers < 1 {
		return fmt.Errorf("%w: worker counts must be positive", ErrConfig)
	}
	return nil
}

// ValidatePercentages checks a partition percentage vector: at least one
// entry, no negative entry, sum of exactly 100.
func ValidatePercentages(p []int) error {
	if len(p) == 0 {
		return fmt.Errorf("%w: no partitions", ErrInvalidPercentages)
	}
	sum := 0
	for _, v := range p {
		if v < 0 {
			return fmt.Errorf("%w: negative entry %d", ErrInvalidPercentages, v)
		}
		sum += v
	}
	if sum != 100 {
		return fmt.Errorf("%w: %v sums to %d, want 100", ErrInvalidPercentages, p, sum)
	}
	return nil
}
