package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/commentlab/internal/pipeline"
	"github.com/ppiankov/commentlab/internal/render"
	"github.com/spf13/cobra"
)

var tasks string

// runCmd runs several tasks in order
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run several pipeline tasks in order",
	Long: `Run executes the given tasks in order against one store and stops at the
first task that fails outright. Per-category failures are reported and do
not stop the run.

Example:
  commentlab run --tasks split,map,partition,extractors,datasets
  commentlab run --tasks partition,extractors,datasets --percentages 60,20,20`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&tasks, "tasks", strings.Join(pipeline.Tasks, ","), "comma-separated tasks: "+strings.Join(pipeline.Tasks, ","))
	runCmd.Flags().StringVar(&percentages, "percentages", "", "comma-separated partition percentages summing to 100")
	runCmd.Flags().StringVar(&selection, "selection", "", "sentence selection within a stratum: lowest or random")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "seed for random selection")
	runCmd.Flags().IntVar(&workers, "workers", 0, "categories processed in parallel")
	runCmd.Flags().IntVar(&extractorsPartition, "extractors-partition", 0, "extractors partition id")
	runCmd.Flags().IntVar(&wordsToKeep, "words-to-keep", 0, "vocabulary size (0 keeps every word)")
	runCmd.Flags().StringVar(&patternsFile, "patterns", "", "YAML file with heuristic patterns")
	runCmd.Flags().StringVar(&compression, "compression", "", "dataset blob compression: none, zstd or lz4")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	list, err := pipeline.ParseTasks(tasks)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	render.Banner(os.Stderr, "commentlab run",
		[2]string{"Corpus", cfg.Corpus},
		[2]string{"Store", cfg.Store.Path},
		[2]string{"Tasks", strings.Join(list, " → ")},
		[2]string{"Partitions", fmt.Sprint(cfg.Partition.Percentages)},
		[2]string{"Workers", fmt.Sprint(cfg.Concurrency.Workers)},
	)

	p, closeStore, err := openPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	start := time.Now()
	failed := 0
	err = p.RunTasks(ctx, list, func(r pipeline.Report) {
		render.Report(os.Stderr, r)
		fmt.Fprintln(os.Stderr)
		failed += r.Failed()
	})
	if err != nil {
		render.Fail(os.Stderr, "%v", err)
		return err
	}
	fmt.Fprintf(os.Stderr, "Completed %d tasks in %v\n", len(list), time.Since(start).Round(time.Millisecond))
	if failed > 0 {
		return fmt.Errorf("%d units failed", failed)
	}
	return nil
}
