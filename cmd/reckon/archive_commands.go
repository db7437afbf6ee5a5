package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reckon/internal/archive"
	"reckon/internal/config"
	"reckon/internal/recording"
)

func newArchiveCommand(ctx *commandContext) *cobra.Command {
	archiveCmd := &cobra.Command{
		Use:   "archive",
		Short: "Inspect processed-recording records",
	}
	archiveCmd.AddCommand(newArchiveListCommand(ctx))
	archiveCmd.AddCommand(newArchiveShowCommand(ctx))
	return archiveCmd
}

func newArchiveListCommand(ctx *commandContext) *cobra.Command {
	var categoryFlag string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archive records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *archive.Store) error {
				var categories []recording.Category
				if categoryFlag != "" {
					category, err := recording.ParseCategory(categoryFlag)
					if err != nil {
						return err
					}
					categories = append(categories, category)
				}

				records, err := store.List(cmd.Context(), categories...)
				if err != nil {
					return err
				}

				if jsonOutput {
					return writeJSON(cmd, records)
				}

				rows := make([][]string, 0, len(records))
				for _, record := range records {
					rows = append(rows, []string{
						strconv.FormatInt(record.ID, 10),
						record.Identity.Compact,
						record.Topic,
						string(record.Category),
						yesNo(record.NoShow),
						string(record.Decision),
						record.CreatedAt.Format(time.RFC3339),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Identifier", "Topic", "Category", "No-show", "Decision", "Processed"},
					rows, 1,
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&categoryFlag, "category", "", "Filter by category")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit records as JSON")
	return cmd
}

func newArchiveShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Display one archive record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("record id %q is not numeric", args[0])
			}

			return ctx.withStore(func(cfg *config.Config, store *archive.Store) error {
				record, err := store.GetByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				if record == nil {
					return fmt.Errorf("no record with id %d", id)
				}

				if jsonOutput {
					return writeJSON(cmd, record)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Record #%d\n", record.ID)
				fmt.Fprintf(out, "  Identifier:  %s\n", record.Identity.Compact)
				fmt.Fprintf(out, "  Legacy hex:  %s\n", record.Identity.LegacyHex)
				fmt.Fprintf(out, "  Dashed hex:  %s\n", record.Identity.LegacyHexDashed)
				fmt.Fprintf(out, "  Fingerprint: %s\n", record.Fingerprint)
				fmt.Fprintf(out, "  Meeting:     %s\n", record.MeetingID)
				fmt.Fprintf(out, "  Topic:       %s\n", record.Topic)
				if !record.StartTime.IsZero() {
					fmt.Fprintf(out, "  Start:       %s\n", record.StartTime.Format(time.RFC3339))
				}
				fmt.Fprintf(out, "  Duration:    %ds\n", record.DurationSeconds)
				fmt.Fprintf(out, "  Size:        %d bytes\n", record.AggregateFileSize)
				fmt.Fprintf(out, "  Category:    %s (rule %d)\n", record.Category, record.Rule)
				fmt.Fprintf(out, "  No-show:     %s\n", yesNo(record.NoShow))
				fmt.Fprintf(out, "  Decision:    %s (%s)\n", record.Decision, record.MatchMethod)
				if len(record.FileTypes) > 0 {
					fmt.Fprintf(out, "  Files:       %s\n", strings.Join(record.FileTypes, ", "))
				}
				if record.RunID != "" {
					fmt.Fprintf(out, "  Run:         %s\n", record.RunID)
				}
				fmt.Fprintf(out, "  Processed:   %s\n", record.CreatedAt.Format(time.RFC3339))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the record as JSON")
	return cmd
}
