package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhiwei-liang/geofile-go/internal/agent"
	"github.com/zhiwei-liang/geofile-go/internal/geodata"
	"github.com/zhiwei-liang/geofile-go/internal/llm"
)

var readCmd = &cobra.Command{
	Use:   "read <file>",
	Short: "Process a geodata file and narrate the result",
	Long: `Process a geodata file and print a plain-language summary of its
contents, generated by the configured language model. Without a model the
raw analysis report is printed instead.

Examples:
  geofile read points.csv
  GEOFILE_LLM_API_KEY=sk-... geofile read parcels.shp`,
	Args: cobra.ExactArgs(1),
	RunE: runRead,
}

func runRead(cmd *cobra.Command, args []string) error {
	notifier := writerNotifier{out: cmd.OutOrStdout()}
	dispatcher := geodata.NewDispatcher(notifier, logger, collector)

	var model agent.Generator
	if m, err := llm.NewModel(cfg); err != nil {
		logger.Warn("language model unavailable, printing raw report", "error", err)
	} else {
		model = m
	}

	manifest, err := agent.LoadManifest(cfg.AgentManifest)
	if err != nil {
		return err
	}

	assistant := agent.New(manifest, model, nil, dispatcher, notifier, collector, logger)
	env := assistant.HandleReadGeoFile(cmd.Context(), args[0], geodata.Options{})
	if env.Status != "success" {
		return fmt.Errorf("processing failed (%s)", env.Code)
	}
	return nil
}
