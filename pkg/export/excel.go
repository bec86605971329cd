// Package export renders an analysis summary as an Excel workbook with
// three sheets: member totals, the task detail list, and the contribution
// ranking.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/harrisonrobin/mailtask/pkg/colors"
	"github.com/harrisonrobin/mailtask/pkg/stats"
)

const headerFill = "2E75B6"

// Write saves the summary workbook to path. moduleColors is optional;
// when present, each task row's module cell is filled with the module's
// assigned color.
func Write(path string, sum *stats.Summary, moduleColors *colors.ModuleColors) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{headerFill}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	overdueStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FF0000"},
	})
	if err != nil {
		return err
	}

	if err := writeMembers(f, sum, headerStyle); err != nil {
		return err
	}
	if err := writeTasks(f, sum, headerStyle, overdueStyle, moduleColors); err != nil {
		return err
	}
	if err := writeContribution(f, sum, headerStyle, overdueStyle); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeMembers(f *excelize.File, sum *stats.Summary, headerStyle int) error {
	const sheet = "Members"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	headers := []interface{}{"Member", "Total", "Completed", "Pending", "In Progress", "High", "Medium", "Normal", "Score"}
	if err := writeHeaderRow(f, sheet, headers, headerStyle); err != nil {
		return err
	}

	for i, m := range sum.Members {
		row := []interface{}{m.Name, m.Total, m.Completed, m.Pending, m.InProgress, m.High, m.Medium, m.Normal, m.Score}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeTasks(f *excelize.File, sum *stats.Summary, headerStyle, overdueStyle int, moduleColors *colors.ModuleColors) error {
	const sheet = "Tasks"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []interface{}{"Module", "Title", "Owners", "Priority", "Due", "Overdue Days", "Status", "Task Status", "First Seen", "Last Seen", "Days Spent"}
	if err := writeHeaderRow(f, sheet, headers, headerStyle); err != nil {
		return err
	}

	moduleStyles := make(map[string]int)
	for i, t := range sum.Tasks {
		status := t.Status
		if status == "" {
			status = "-"
		}
		overdueCell := interface{}("")
		if t.Overdue() {
			overdueCell = t.OverdueDays
		}
		row := []interface{}{
			t.Module, t.Title, t.OwnersString(), string(t.Priority), t.Due,
			overdueCell, status, string(t.TaskStatus),
			t.FirstSeen.String(), t.LastSeen.String(), t.DaysSpent,
		}
		rowNum := i + 2
		if err := writeRow(f, sheet, rowNum, row); err != nil {
			return err
		}

		if t.Overdue() {
			for _, col := range []int{5, 6} { // Due and Overdue Days columns
				cell, _ := excelize.CoordinatesToCellName(col, rowNum)
				if err := f.SetCellStyle(sheet, cell, cell, overdueStyle); err != nil {
					return err
				}
			}
		}

		if moduleColors != nil && t.Module != "" {
			color := moduleColors.GetColor(t.Module)
			styleID, ok := moduleStyles[color]
			if !ok {
				var err error
				styleID, err = f.NewStyle(&excelize.Style{
					Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
				})
				if err != nil {
					return err
				}
				moduleStyles[color] = styleID
			}
			cell, _ := excelize.CoordinatesToCellName(1, rowNum)
			if err := f.SetCellStyle(sheet, cell, cell, styleID); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeContribution(f *excelize.File, sum *stats.Summary, headerStyle, overdueStyle int) error {
	const sheet = "Contribution"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []interface{}{"Rank", "Member", "Tasks", "Base Score", "Overdue Tasks", "Overdue Days", "Penalty", "Final Score"}
	if err := writeHeaderRow(f, sheet, headers, headerStyle); err != nil {
		return err
	}

	for i, c := range sum.Contribution {
		rowNum := i + 2
		row := []interface{}{c.Rank, c.Name, c.TaskCount, c.BaseScore, c.OverdueCount, c.OverdueDays, c.Penalty, c.Score}
		if err := writeRow(f, sheet, rowNum, row); err != nil {
			return err
		}
		if c.OverdueCount > 0 {
			first, _ := excelize.CoordinatesToCellName(5, rowNum)
			last, _ := excelize.CoordinatesToCellName(7, rowNum)
			if err := f.SetCellStyle(sheet, first, last, overdueStyle); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeHeaderRow(f *excelize.File, sheet string, headers []interface{}, style int) error {
	if err := writeRow(f, sheet, 1, headers); err != nil {
		return err
	}
	first, _ := excelize.CoordinatesToCellName(1, 1)
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	return f.SetCellStyle(sheet, first, last, style)
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}
