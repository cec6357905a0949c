package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ppiankov/commentlab/internal/model"
	"github.com/ppiankov/commentlab/internal/partition"
	"github.com/ppiankov/commentlab/internal/pipeline"
	"github.com/ppiankov/commentlab/internal/render"
	"github.com/spf13/cobra"
)

var (
	percentages         string
	selection           string
	seed                int64
	workers             int
	strataWorkers       int
	extractorsPartition int
	wordsToKeep         int
	patternsFile        string
	compression         string
)

var importCmd = &cobra.Command{
	Use:   "import <file|url>",
	Short: "Import the annotated comment table",
	Long: `Import reads a CSV table with class, stratum and comment columns; every
other column is a category holding the part of the comment classified under
it. The corpus' previous comments, categories and derived data are replaced.

Example:
  commentlab import data/java.csv --corpus java
  commentlab import https://example.com/pharo.csv --corpus pharo`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTask(cmd, func(ctx context.Context, p *pipeline.Pipeline) (pipeline.Report, error) {
			return p.Import(ctx, args[0])
		})
	},
}

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Split comments and category texts into sentences",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTask(cmd, func(ctx context.Context, p *pipeline.Pipeline) (pipeline.Report, error) {
			return p.Split(ctx)
		})
	},
}

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Map category sentences onto comment sentences",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTask(cmd, func(ctx context.Context, p *pipeline.Pipeline) (pipeline.Report, error) {
			return p.Map(ctx)
		})
	},
}

var partitionCmd = &cobra.Command{
	Use:   "partition",
	Short: "Assign every category's instances to train/test partitions",
	Long: `Partition derives the positive and negative sentences of every category and
distributes them over partitions by percentage, stratum by stratum. Partition
0 is the training partition.

Example:
  commentlab partition --percentages 80,20
  commentlab partition --percentages 60,20,20 --selection random --seed 7`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTask(cmd, func(ctx context.Context, p *pipeline.Pipeline) (pipeline.Report, error) {
			return p.Partition(ctx)
		})
	},
}

var extractorsCmd = &cobra.Command{
	Use:   "extractors",
	Short: "Fit the vocabulary and store the feature extractors",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTask(cmd, func(ctx context.Context, p *pipeline.Pipeline) (pipeline.Report, error) {
			cfg := p.Config()
			return p.Extractors(ctx, cfg.Extractors.Partition, cfg.Extractors.ID)
		})
	},
}

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "Assemble one dataset per category and partition",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTask(cmd, func(ctx context.Context, p *pipeline.Pipeline) (pipeline.Report, error) {
			return p.Datasets(ctx, p.Config().Assembly.ExtractorsID)
		})
	},
}

func init() {
	rootCmd.AddCommand(importCmd, splitCmd, mapCmd, partitionCmd, extractorsCmd, datasetsCmd)

	for _, cmd := range []*cobra.Command{splitCmd, mapCmd, partitionCmd, datasetsCmd} {
		cmd.Flags().IntVar(&workers, "workers", 0, "categories processed in parallel (default: config)")
	}

	partitionCmd.Flags().StringVar(&percentages, "percentages", "", "comma-separated partition percentages summing to 100 (e.g. 80,20)")
	partitionCmd.Flags().StringVar(&selection, "selection", "", "sentence selection within a stratum: lowest or random")
	partitionCmd.Flags().Int64Var(&seed, "seed", 0, "seed for random selection")
	partitionCmd.Flags().IntVar(&strataWorkers, "strata-workers", 0, "strata partitioned in parallel per category")

	extractorsCmd.Flags().IntVar(&extractorsPartition, "extractors-partition", 0, "extractors partition id to write")
	extractorsCmd.Flags().IntVar(&wordsToKeep, "words-to-keep", 0, "vocabulary size (0 keeps every word)")
	extractorsCmd.Flags().StringVar(&patternsFile, "patterns", "", "YAML file with heuristic patterns")

	datasetsCmd.Flags().IntVar(&extractorsPartition, "extractors-partition", 0, "extractors partition id to assemble with")
	datasetsCmd.Flags().StringVar(&compression, "compression", "", "dataset blob compression: none, zstd or lz4")
}

// applyFlags copies the flags the user set onto cfg.
func applyFlags(cmd *cobra.Command, cfg *model.Config) error {
	flags := cmd.Flags()
	changed := func(name string) bool {
		return flags.Lookup(name) != nil && flags.Changed(name)
	}
	if changed("percentages") {
		p, err := partition.ParsePercentages(percentages)
		if err != nil {
			return err
		}
		cfg.Partition.Percentages = p
	}
	if changed("selection") {
		cfg.Partition.Selection = selection
	}
	if changed("seed") {
		cfg.Partition.Seed = seed
	}
	if changed("workers") {
		cfg.Concurrency.Workers = workers
	}
	if changed("strata-workers") {
		cfg.Concurrency.StrataWorkers = strataWorkers
	}
	if changed("extractors-partition") {
		cfg.Extractors.ID = extractorsPartition
		cfg.Assembly.ExtractorsID = extractorsPartition
	}
	if changed("words-to-keep") {
		cfg.Extractors.WordsToKeep = wordsToKeep
	}
	if changed("patterns") {
		cfg.Extractors.PatternsFile = patternsFile
	}
	if changed("compression") {
		cfg.Assembly.Compression = compression
	}
	return nil
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runTask(cmd *cobra.Command, fn func(ctx context.Context, p *pipeline.Pipeline) (pipeline.Report, error)) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}
	p, closeStore, err := openPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	start := time.Now()
	report, err := fn(ctx, p)
	if err != nil {
		render.Fail(os.Stderr, "%s failed: %v", cmd.Name(), err)
		return err
	}
	render.Report(os.Stderr, report)
	if verbose {
		fmt.Fprintf(os.Stderr, "  %s in %v\n", cmd.Name(), time.Since(start).Round(time.Millisecond))
	}
	if n := report.Failed(); n > 0 {
		return fmt.Errorf("%s: %d failed", report.Task(), n)
	}
	return nil
}
