package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/commentlab/internal/logging"
	"github.com/ppiankov/commentlab/internal/model"
	"github.com/ppiankov/commentlab/internal/pipeline"
	"github.com/ppiankov/commentlab/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time.
var Version = "v0.1.0"

var (
	cfgFile string
	verbose bool
	dbPath  string
	corpus  string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "commentlab",
	Short: "commentlab - code comment classification datasets",
	Long: `commentlab turns a table of annotated code comments into train/test
datasets for binary comment classifiers, one per category.

The pipeline imports the comment table, splits comments and their category
texts into sentences, maps category sentences back onto comment sentences,
partitions the resulting instances per category and stratum, fits the
feature extractors on the training partition and assembles sparse feature
datasets that can be exported as ARFF.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("commentlab %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.commentlab/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides store.path)")
	rootCmd.PersistentFlags().StringVar(&corpus, "corpus", "", "corpus name (overrides corpus)")

	rootCmd.AddCommand(versionCmd)
}

// envKeys are bound explicitly so Unmarshal sees variables for keys the
// config file does not set.
var envKeys = []string{
	"corpus",
	"store.path",
	"import.timeout", "import.user_agent", "import.max_bytes",
	"import.http_proxy", "import.https_proxy", "import.no_proxy",
	"split.min_length", "split.max_length",
	"partition.percentages", "partition.selection", "partition.seed",
	"extractors.id", "extractors.partition", "extractors.words_to_keep", "extractors.patterns_file",
	"assembly.extractors_id", "assembly.compression",
	"concurrency.workers", "concurrency.strata_workers",
	"export.dir",
	"output.verbose", "output.log_format",
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(home + "/.commentlab")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// COMMENTLAB_STORE_PATH overrides store.path and so on
	viper.SetEnvPrefix("COMMENTLAB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, key := range envKeys {
		_ = viper.BindEnv(key)
	}

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig merges defaults, the config file, COMMENTLAB_* variables and
// flags, in increasing priority.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrConfig, err)
	}
	if dbPath != "" {
		cfg.Store.Path = dbPath
	}
	if corpus != "" {
		cfg.Corpus = corpus
	}
	cfg.Output.Verbose = cfg.Output.Verbose || verbose
	return cfg, nil
}

// openPipeline opens the store and builds a pipeline. The returned close
// function releases the store.
func openPipeline(ctx context.Context, cfg *model.Config) (*pipeline.Pipeline, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	st, err := store.Open(ctx, cfg.Store.Path)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New(os.Stderr, cfg.Output.LogFormat, cfg.Output.Verbose)
	p, err := pipeline.NewPipeline(cfg, st, logger)
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	return p, func() { st.Close() }, nil
}
