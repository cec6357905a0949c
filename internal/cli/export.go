package cli

import (
	"context"

	"github.com/ppiankov/commentlab/internal/export"
	"github.com/ppiankov/commentlab/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	exportDir string
	exportS3  bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored datasets as ARFF",
	Long: `Export writes every dataset of an extractors partition as a sparse ARFF
file named <partition>-<extractors_partition>-<category>.arff, plus the
partition sentences view as CSV. Files go to a local directory or, with
--s3, to the bucket configured under export.s3.

Example:
  commentlab export --dir ./datasets
  commentlab export --s3 --extractors-partition 1`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTask(cmd, func(ctx context.Context, p *pipeline.Pipeline) (pipeline.Report, error) {
			cfg := p.Config()
			var sink export.Sink
			if exportS3 {
				s3, err := export.NewS3SinkFromConfig(cfg.Export.S3)
				if err != nil {
					return nil, err
				}
				sink = s3
			} else {
				dir := cfg.Export.Dir
				if cmd.Flags().Changed("dir") {
					dir = exportDir
				}
				d, err := export.NewDirSink(dir)
				if err != nil {
					return nil, err
				}
				sink = d
			}
			return p.Export(ctx, cfg.Assembly.ExtractorsID, sink)
		})
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportDir, "dir", "", "output directory (default: export.dir)")
	exportCmd.Flags().BoolVar(&exportS3, "s3", false, "upload to the S3 bucket configured under export.s3")
	exportCmd.Flags().IntVar(&extractorsPartition, "extractors-partition", 0, "extractors partition id to export")
}
