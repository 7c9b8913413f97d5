package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ExcelWriter serializes a Report into an .xlsx workbook using the style
// palette it was created with.
type ExcelWriter struct {
	styles StyleConfig
}

// NewExcelWriter creates a writer with the given palette.
func NewExcelWriter(styles StyleConfig) *ExcelWriter {
	return &ExcelWriter{styles: styles}
}

// Write serializes the report to w.
func (ew *ExcelWriter) Write(rep *Report, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	ids := make(map[string]int)

	for i, sheet := range rep.Sheets {
		if i == 0 {
			// The workbook starts with one default sheet; rename it.
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				return fmt.Errorf("renaming first sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			// Truncated host names may collide; the colliding sheet's rows
			// land on the existing one.
			return fmt.Errorf("creating sheet %q: %w", sheet.Name, err)
		}

		if err := ew.writeSheet(f, sheet, ids); err != nil {
			return fmt.Errorf("writing sheet %q: %w", sheet.Name, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func (ew *ExcelWriter) writeSheet(f *excelize.File, sheet Sheet, ids map[string]int) error {
	for ri, row := range sheet.Rows {
		rowNum := ri + 1
		for ci, cell := range row.Cells {
			if cell.Value == nil && cell.Style == "" {
				continue
			}
			ref, err := excelize.CoordinatesToCellName(ci+1, rowNum)
			if err != nil {
				return err
			}
			if cell.Value != nil {
				if err := f.SetCellValue(sheet.Name, ref, cell.Value); err != nil {
					return err
				}
			}
			if cell.Style != "" {
				id, err := ew.styleID(f, cell.Style, ids)
				if err != nil {
					return err
				}
				if err := f.SetCellStyle(sheet.Name, ref, ref, id); err != nil {
					return err
				}
			}
		}

		for _, chart := range row.Charts {
			if err := addChart(f, sheet.Name, rowNum, len(row.Cells), chart); err != nil {
				return fmt.Errorf("adding chart %q: %w", chart.Title, err)
			}
		}
	}
	return nil
}

// chartColumnOffset places charts a few columns to the right of the widest
// row content so they do not cover the tables.
const chartColumnOffset = 10

func addChart(f *excelize.File, sheet string, rowNum, rowWidth int, chart Chart) error {
	anchor, err := excelize.CoordinatesToCellName(rowWidth+chartColumnOffset, rowNum)
	if err != nil {
		return err
	}

	chartType := excelize.Col
	if chart.Type == ChartLine {
		chartType = excelize.Line
	}

	series := make([]excelize.ChartSeries, 0, len(chart.Series))
	for _, s := range chart.Series {
		series = append(series, excelize.ChartSeries{
			Name:       s.Name,
			Categories: rangeRef(chart.Categories),
			Values:     rangeRef(s.Values),
		})
	}

	return f.AddChart(sheet, anchor, &excelize.Chart{
		Type:   chartType,
		Series: series,
		Title:  []excelize.RichTextRun{{Text: chart.Title}},
		XAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: chart.XAxis}}},
		YAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: chart.YAxis}}},
		Legend: excelize.ChartLegend{Position: "bottom"},
	})
}

// rangeRef formats a Range as an absolute A1 reference, e.g.
// "'Dashboard'!$C$14:$C$18".
func rangeRef(r Range) string {
	if r.IsZero() {
		return ""
	}
	start, _ := excelize.CoordinatesToCellName(r.Col, r.StartRow, true)
	end, _ := excelize.CoordinatesToCellName(r.Col, r.EndRow, true)
	return fmt.Sprintf("'%s'!%s:%s", r.Sheet, start, end)
}

// styleID resolves a style tag to a workbook style, creating it on first
// use.
func (ew *ExcelWriter) styleID(f *excelize.File, tag string, ids map[string]int) (int, error) {
	if id, ok := ids[tag]; ok {
		return id, nil
	}

	st, err := ew.newStyle(f, tag)
	if err != nil {
		return 0, err
	}
	ids[tag] = st
	return st, nil
}

func (ew *ExcelWriter) newStyle(f *excelize.File, tag string) (int, error) {
	c := ew.styles
	fill := func(color string) excelize.Fill {
		return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
	}

	switch tag {
	case StyleTitle:
		return f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Size: 16, Bold: true, Color: c.TitleColor},
		})
	case StyleSubtitle:
		return f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Size: 10, Italic: true},
		})
	case StyleLabel:
		return f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true},
		})
	case StyleSectionTitle:
		return f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Size: 13, Bold: true, Color: c.SectionColor},
		})
	case StyleHeader:
		return f.NewStyle(&excelize.Style{
			Fill:      fill(c.HeaderFill),
			Font:      &excelize.Font{Bold: true, Color: c.HeaderFontColor},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		})
	case StyleGroupHeader:
		return f.NewStyle(&excelize.Style{
			Fill: fill(c.GroupHeaderFill),
			Font: &excelize.Font{Size: 12, Bold: true, Color: c.HeaderFontColor},
		})
	case StyleCPU:
		return f.NewStyle(&excelize.Style{Fill: fill(c.CPUFill)})
	case StyleMem:
		return f.NewStyle(&excelize.Style{Fill: fill(c.MemFill)})
	case StyleCritical:
		return f.NewStyle(&excelize.Style{Fill: fill(c.CriticalFill)})
	case StyleWarning:
		return f.NewStyle(&excelize.Style{Fill: fill(c.WarningFill)})
	case StyleNormal:
		return f.NewStyle(&excelize.Style{Fill: fill(c.NormalFill)})
	case StyleNumber:
		return f.NewStyle(&excelize.Style{CustomNumFmt: &c.NumberFormat})
	default:
		return 0, fmt.Errorf("unknown style tag %q", tag)
	}
}
