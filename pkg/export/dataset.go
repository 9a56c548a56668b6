package export

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Sheet is a named dataset rendered as one worksheet, page group or CSV section.
type Sheet struct {
	Name string
	Dataset
}

// Workbook groups sheets that are rendered into a single document.
type Workbook struct {
	Title  string
	Sheets []Sheet
}

// Flatten merges every sheet into a single dataset, prefixing each row with the
// sheet name under the provided column header.
func (w Workbook) Flatten(sheetColumn string) Dataset {
	if len(w.Sheets) == 0 {
		return Dataset{}
	}
	headers := []string{sheetColumn}
	seen := map[string]struct{}{sheetColumn: {}}
	for _, sheet := range w.Sheets {
		for _, header := range sheet.Headers {
			if _, ok := seen[header]; ok {
				continue
			}
			seen[header] = struct{}{}
			headers = append(headers, header)
		}
	}

	rows := make([]map[string]string, 0)
	for _, sheet := range w.Sheets {
		for _, row := range sheet.Rows {
			merged := make(map[string]string, len(row)+1)
			for k, v := range row {
				merged[k] = v
			}
			merged[sheetColumn] = sheet.Name
			rows = append(rows, merged)
		}
	}
	return Dataset{Headers: headers, Rows: rows}
}
