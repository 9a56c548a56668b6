package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Supported upload formats for ReadTable.
const (
	TableFormatCSV  = "csv"
	TableFormatXLSX = "xlsx"
)

// ReadTable loads the first worksheet (or the CSV body) as raw rows, header row included.
func ReadTable(r io.Reader, format string) ([][]string, error) {
	switch strings.ToLower(format) {
	case TableFormatCSV:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		data = bytes.TrimPrefix(data, utf8BOM)
		reader := csv.NewReader(bytes.NewReader(data))
		reader.FieldsPerRecord = -1
		reader.TrimLeadingSpace = true
		rows, err := reader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		return rows, nil
	case TableFormatXLSX:
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("open xlsx: %w", err)
		}
		defer f.Close() //nolint:errcheck
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("xlsx has no worksheets")
		}
		rows, err := f.GetRows(sheets[0])
		if err != nil {
			return nil, fmt.Errorf("read xlsx rows: %w", err)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("unsupported table format %q", format)
	}
}
