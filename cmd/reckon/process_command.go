package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"reckon/internal/archive"
	"reckon/internal/config"
	"reckon/internal/dupgate"
	"reckon/internal/pipeline"
	"reckon/internal/recording"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var autoApprove bool
	var resolution string
	var dryRun bool
	var jsonOutput bool
	var workers int

	cmd := &cobra.Command{
		Use:   "process <observations.json>",
		Short: "Run observations through the dedup gate and classifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			observations, err := readObservations(args[0])
			if err != nil {
				return err
			}

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			return ctx.withStore(func(cfg *config.Config, store *archive.Store) error {
				approver, err := buildApprover(cfg, autoApprove, resolution)
				if err != nil {
					return err
				}

				p := pipeline.FromConfig(cfg, store, approver, pipeline.Options{
					Workers: workers,
					DryRun:  dryRun,
				}, logger)

				summary, err := p.Run(cmd.Context(), observations)
				if err != nil {
					return err
				}

				if jsonOutput {
					return writeJSON(cmd, summary)
				}
				renderSummary(cmd, summary)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&autoApprove, "auto-approve", false, "Resolve duplicate matches without prompting")
	cmd.Flags().StringVar(&resolution, "resolution", "", "Auto-approve resolution: skip or override")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Evaluate and classify without writing archive records")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the run summary as JSON")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent observations (0 uses configuration)")
	return cmd
}

func readObservations(path string) ([]recording.Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open observations: %w", err)
	}
	defer f.Close()

	observations, err := recording.DecodeObservations(f)
	if err != nil {
		return nil, err
	}
	if len(observations) == 0 {
		return nil, fmt.Errorf("no observations in %s", path)
	}
	return observations, nil
}

// buildApprover picks the approval policy: explicit flags first, then
// configuration, then the interactive prompt.
func buildApprover(cfg *config.Config, autoApprove bool, resolutionFlag string) (dupgate.Approver, error) {
	if resolutionFlag != "" {
		autoApprove = true
	}
	if !autoApprove && cfg.Gate.AutoApprove {
		autoApprove = true
	}
	if !autoApprove {
		return dupgate.NewInteractiveApprover(), nil
	}

	value := resolutionFlag
	if value == "" {
		value = cfg.Gate.AutoResolution
	}
	resolved, err := dupgate.ParseResolution(value)
	if err != nil {
		return nil, err
	}
	return dupgate.AutoApprover{Resolution: resolved}, nil
}

func renderSummary(cmd *cobra.Command, summary *pipeline.Summary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s", summary.RunID)
	if summary.DryRun {
		fmt.Fprint(out, " (dry run)")
	}
	fmt.Fprintf(out, ": %d attempted, %d new, %d overridden, %d skipped, %d failed\n",
		summary.Attempted, summary.ProceededNew, summary.Overridden, summary.Skipped, summary.Failed)

	rows := make([][]string, 0, len(summary.Outcomes))
	for _, outcome := range summary.Outcomes {
		status := string(outcome.Decision)
		detail := string(outcome.Category)
		if outcome.Failed() {
			status = "failed"
			detail = outcome.ErrKind
		}
		rows = append(rows, []string{
			outcome.Identifier,
			outcome.Topic,
			status,
			detail,
			strconv.Itoa(outcome.Rule),
			yesNo(outcome.NoShow),
			recordIDString(outcome.RecordID),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Identifier", "Topic", "Decision", "Category", "Rule", "No-show", "Record"},
		rows, 5, 7,
	))
}

func recordIDString(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
