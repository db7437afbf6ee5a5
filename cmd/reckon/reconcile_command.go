package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"reckon/internal/archive"
	"reckon/internal/config"
	"reckon/internal/reconcile"
	"reckon/internal/report"
)

func newReconcileCommand(ctx *commandContext) *cobra.Command {
	var storagePath string
	var xlsxPath string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "reconcile <source.json>",
		Short: "Audit source recordings against the archive and storage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sources, err := readObservations(args[0])
			if err != nil {
				return err
			}

			var manifests []reconcile.StorageManifest
			if storagePath != "" {
				manifests, err = readManifests(storagePath)
				if err != nil {
					return err
				}
			}

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			return ctx.withStore(func(cfg *config.Config, store *archive.Store) error {
				records, err := store.List(cmd.Context())
				if err != nil {
					return err
				}

				engine := reconcile.NewEngine(cfg, logger)
				rpt, err := engine.Reconcile(cmd.Context(), sources, records, manifests)
				if err != nil {
					return err
				}

				if xlsxPath != "" {
					if err := report.WriteXLSX(rpt, xlsxPath); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Wrote workbook to %s\n", xlsxPath)
				}

				if jsonOutput {
					return writeJSON(cmd, rpt)
				}
				renderReport(cmd, rpt)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&storagePath, "storage", "", "Storage manifests JSON file")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Write the report as an xlsx workbook")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the report as JSON")
	return cmd
}

func readManifests(path string) ([]reconcile.StorageManifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifests: %w", err)
	}
	defer f.Close()
	return reconcile.DecodeManifests(f)
}

func renderReport(cmd *cobra.Command, rpt *reconcile.Report) {
	out := cmd.OutOrStdout()
	counts := rpt.Counts()
	fmt.Fprintf(out, "Run %s: %d sources, %d matched, %d missing, %d partial, %d ambiguous\n",
		rpt.RunID, len(rpt.Entries),
		counts[reconcile.StatusMatched],
		counts[reconcile.StatusMissingInArchive],
		counts[reconcile.StatusPartialFiles],
		counts[reconcile.StatusAmbiguousMatch],
	)

	rows := make([][]string, 0, len(rpt.Entries))
	for _, entry := range rpt.Entries {
		detail := entry.Evidence
		if len(entry.MissingTypes) > 0 {
			detail = "missing: " + strings.Join(entry.MissingTypes, ", ")
		}
		if len(entry.CandidateIDs) > 0 {
			ids := make([]string, len(entry.CandidateIDs))
			for i, id := range entry.CandidateIDs {
				ids[i] = strconv.FormatInt(id, 10)
			}
			detail = "candidates: " + strings.Join(ids, ", ")
		}
		rows = append(rows, []string{
			entry.Identifier,
			entry.MeetingID,
			entry.Topic,
			string(entry.Status),
			recordIDString(entry.RecordID),
			detail,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Identifier", "Meeting", "Topic", "Status", "Record", "Detail"},
		rows, 5,
	))
}
