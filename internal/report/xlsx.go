package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"reckon/internal/reconcile"
)

const (
	summarySheet = "Summary"
	entriesSheet = "Entries"
)

var entryHeader = []string{
	"Identifier", "Meeting ID", "Topic", "Status", "Record ID",
	"Candidates", "Missing Types", "Evidence", "Timestamp",
}

// WriteXLSX exports a reconciliation report as a workbook with a summary
// sheet and one row per audited source recording.
func WriteXLSX(rpt *reconcile.Report, path string) error {
	if rpt == nil {
		return fmt.Errorf("report is nil")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}
	if _, err := f.NewSheet(entriesSheet); err != nil {
		return fmt.Errorf("create entries sheet: %w", err)
	}

	if err := writeSummary(f, rpt); err != nil {
		return err
	}
	if err := writeEntries(f, rpt); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, rpt *reconcile.Report) error {
	counts := rpt.Counts()
	rows := [][]any{
		{"Run ID", rpt.RunID},
		{"Generated", rpt.GeneratedAt.Format(time.RFC3339)},
		{"Sources", len(rpt.Entries)},
		{"Matched", counts[reconcile.StatusMatched]},
		{"Missing in archive", counts[reconcile.StatusMissingInArchive]},
		{"Partial files", counts[reconcile.StatusPartialFiles]},
		{"Ambiguous", counts[reconcile.StatusAmbiguousMatch]},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("summary cell: %w", err)
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary row: %w", err)
		}
	}
	return nil
}

func writeEntries(f *excelize.File, rpt *reconcile.Report) error {
	header := make([]any, len(entryHeader))
	for i, h := range entryHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(entriesSheet, "A1", &header); err != nil {
		return fmt.Errorf("write entries header: %w", err)
	}

	for i, entry := range rpt.Entries {
		row := []any{
			entry.Identifier,
			entry.MeetingID,
			entry.Topic,
			string(entry.Status),
			recordIDCell(entry.RecordID),
			joinInt64(entry.CandidateIDs),
			strings.Join(entry.MissingTypes, ", "),
			entry.Evidence,
			entry.Timestamp.Format(time.RFC3339),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("entries cell: %w", err)
		}
		if err := f.SetSheetRow(entriesSheet, cell, &row); err != nil {
			return fmt.Errorf("write entries row: %w", err)
		}
	}
	return nil
}

func recordIDCell(id int64) any {
	if id == 0 {
		return ""
	}
	return id
}

func joinInt64(values []int64) string {
	if len(values) == 0 {
		return ""
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, ", ")
}
