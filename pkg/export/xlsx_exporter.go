package export

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

const maxSheetNameLength = 31

// XLSXExporter renders workbooks into Office Open XML spreadsheets, one worksheet per sheet.
type XLSXExporter struct{}

// NewXLSXExporter constructs an XLSX exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// Render produces the spreadsheet bytes for the workbook.
func (e *XLSXExporter) Render(book Workbook) ([]byte, error) {
	if len(book.Sheets) == 0 {
		return nil, fmt.Errorf("xlsx requires at least one sheet")
	}

	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	defaultSheet := f.GetSheetName(0)
	used := make(map[string]int, len(book.Sheets))
	for i, sheet := range book.Sheets {
		name := uniqueSheetName(SanitizeSheetName(sheet.Name), used)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return nil, fmt.Errorf("rename sheet %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %q: %w", name, err)
		}
		if err := writeSheet(f, name, sheet.Dataset); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, name string, data Dataset) error {
	header := make([]interface{}, len(data.Headers))
	for i, h := range data.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("write xlsx headers: %w", err)
	}
	for r, row := range data.Rows {
		record := make([]interface{}, len(data.Headers))
		for i, h := range data.Headers {
			record[i] = row[h]
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return fmt.Errorf("resolve xlsx cell: %w", err)
		}
		if err := f.SetSheetRow(name, cell, &record); err != nil {
			return fmt.Errorf("write xlsx row: %w", err)
		}
	}
	return nil
}

// SanitizeSheetName strips characters Excel rejects in worksheet names and trims the
// result to the 31 character limit.
func SanitizeSheetName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\':
			return '-'
		}
		return r
	}, strings.TrimSpace(name))
	cleaned = strings.Trim(cleaned, "'")
	if cleaned == "" {
		cleaned = "Sheet"
	}
	return truncateRunes(cleaned, maxSheetNameLength)
}

func uniqueSheetName(name string, used map[string]int) string {
	key := strings.ToLower(name)
	count, exists := used[key]
	if !exists {
		used[key] = 1
		return name
	}
	for {
		count++
		suffix := fmt.Sprintf(" (%d)", count)
		candidate := truncateRunes(name, maxSheetNameLength-utf8.RuneCountInString(suffix)) + suffix
		candidateKey := strings.ToLower(candidate)
		if _, taken := used[candidateKey]; !taken {
			used[key] = count
			used[candidateKey] = 1
			return candidate
		}
	}
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
