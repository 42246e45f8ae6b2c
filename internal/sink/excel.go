package sink

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"resume-ranker/internal/models"
)

// WriteExcel generates a workbook with a summary sheet and the ranked table.
func WriteExcel(outputPath string, records []*models.CandidateRecord, jd *models.JobDescription, jobID string) error {
	f := excelize.NewFile()
	defer f.Close()

	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath += ".xlsx"
	}
	outputPath = filepath.Clean(outputPath)

	summarySheet := "Summary"
	rankedSheet := "Ranked Candidates"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(rankedSheet)

	if err := writeSummarySheet(f, summarySheet, records, jd, jobID); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := writeRankedSheet(f, rankedSheet, records, jd); err != nil {
		return fmt.Errorf("failed to create ranked sheet: %w", err)
	}

	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, sheet string, records []*models.CandidateRecord, jd *models.JobDescription, jobID string) error {
	f.SetColWidth(sheet, "A", "A", 25)
	f.SetColWidth(sheet, "B", "B", 60)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	row := 1
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Resume Ranking Report")
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), headerStyle)
	f.MergeCell(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row))
	row += 2

	jobRole := models.NotAvailable
	if jd != nil && jd.JobRole != "" {
		jobRole = jd.JobRole
	}

	labels := []struct {
		label string
		value interface{}
	}{
		{"Job ID:", jobID},
		{"Job Role:", jobRole},
		{"Candidates Ranked:", len(records)},
	}
	for _, l := range labels {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), l.label)
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), labelStyle)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), l.value)
		row++
	}

	governmentCount := 0
	for _, r := range records {
		if strings.HasPrefix(r.GovernmentWork, "Yes") {
			governmentCount++
		}
	}
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Government Experience:")
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), labelStyle)
	f.SetCellValue(sheet, fmt.Sprintf("B%d", row), governmentCount)
	return nil
}

func writeRankedSheet(f *excelize.File, sheet string, records []*models.CandidateRecord, jd *models.JobDescription) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	for col, header := range models.ReportColumns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		f.SetCellValue(sheet, cell, header)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for i, r := range records {
		for col, value := range RecordRow(r, jd) {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			f.SetCellValue(sheet, cell, value)
		}
	}
	return nil
}
