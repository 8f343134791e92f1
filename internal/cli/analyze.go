package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhiwei-liang/geofile-go/internal/geodata"
)

var (
	analyzeLonColumn string
	analyzeLatColumn string
	analyzeJSON      bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Process a geodata file and print its analysis report",
	Long: `Process a geodata file and print its analysis report.

Coordinate columns are detected by name, position, and value distribution.
When detection fails, pass them explicitly by name or zero-based index.

Examples:
  geofile analyze points.csv
  geofile analyze points.csv --lon 经度 --lat 纬度
  geofile analyze headerless.txt --lon 0 --lat 1
  geofile analyze parcels.shp`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeLonColumn, "lon", "", "longitude column name or zero-based index")
	analyzeCmd.Flags().StringVar(&analyzeLatColumn, "lat", "", "latitude column name or zero-based index")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the result envelope as JSON")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	notifier := writerNotifier{out: cmd.OutOrStdout()}
	if analyzeJSON {
		// JSON mode keeps stdout clean for the envelope.
		notifier.out = cmd.ErrOrStderr()
	}

	dispatcher := geodata.NewDispatcher(notifier, logger, collector)
	env := dispatcher.Process(cmd.Context(), args[0], geodata.Options{
		LonColumn: analyzeLonColumn,
		LatColumn: analyzeLatColumn,
	})

	if analyzeJSON {
		out, err := json.MarshalIndent(env, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
	}

	if env.Status != "success" {
		return fmt.Errorf("processing failed (%s)", env.Code)
	}
	return nil
}
