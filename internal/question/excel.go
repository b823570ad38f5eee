package question

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var ErrInvalidSheet = errors.New("invalid question sheet")

// ImportRow is one data row of an import sheet. Err is set when the row
// could not be parsed into an input.
type ImportRow struct {
	Row   int
	Input CreateInput
	Err   error
}

const optionSeparator = "|"

var importHeaders = []string{"question_text", "options", "correct_answer", "correct_answer_index", "question_text_hi", "options_hi"}

// ParseImportSheet reads the first sheet of an xlsx workbook. Options are
// separated by "|" inside their cell.
func ParseImportSheet(r io.Reader) ([]ImportRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: open excel: %v", ErrInvalidSheet, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrInvalidSheet)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: read rows: %v", ErrInvalidSheet, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: no data rows found", ErrInvalidSheet)
	}

	header := map[string]int{}
	for i, h := range rows[0] {
		header[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range []string{"question_text", "options", "correct_answer"} {
		if _, ok := header[col]; !ok {
			return nil, fmt.Errorf("%w: missing required column: %s", ErrInvalidSheet, col)
		}
	}

	out := make([]ImportRow, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		get := func(key string) string {
			idx, ok := header[key]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}
		if isBlankRow(row) {
			continue
		}

		item := ImportRow{Row: i + 1, Input: CreateInput{
			QuestionText:   get("question_text"),
			Options:        splitOptions(get("options")),
			QuestionTextHi: get("question_text_hi"),
			OptionsHi:      splitOptions(get("options_hi")),
			CorrectAnswer:  get("correct_answer"),
		}}
		if raw := get("correct_answer_index"); raw != "" {
			idx, err := strconv.Atoi(raw)
			if err != nil {
				item.Err = fmt.Errorf("%w: correct_answer_index must be an integer", ErrInvalidInput)
			} else {
				item.Input.CorrectAnswerIndex = &idx
			}
		}
		out = append(out, item)
	}
	return out, nil
}

// WriteImportTemplate writes an empty workbook with the import headers and
// one example row.
func WriteImportTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	example := []any{"2 + 2 = ?", "3|4|5", "4", 1, "", ""}
	for i, h := range importHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
		cell, _ = excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheet, cell, example[i])
	}
	_ = f.SetColWidth(sheet, "A", "F", 24)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write excel: %w", err)
	}
	return nil
}

func splitOptions(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, optionSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
