package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func seatingBook() Workbook {
	return Workbook{
		Title: "Seating",
		Sheets: []Sheet{
			{Name: "Sala 6", Dataset: Dataset{
				Headers: []string{"No.", "Student"},
				Rows:    []map[string]string{{"No.": "1", "Student": "Ana Pop"}, {"No.": "2", "Student": "Dan Ionescu"}},
			}},
			{Name: "Sala 7", Dataset: Dataset{
				Headers: []string{"No.", "Student"},
				Rows:    []map[string]string{{"No.": "1", "Student": "Ioana Marin"}},
			}},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(Dataset{
		Headers: []string{"Name", "County"},
		Rows:    []map[string]string{{"Name": "Scoala 1", "County": "Cluj"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Name,County\nScoala 1,Cluj\n", string(out))

	_, err = NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestCSVExporterRenderWorkbookFlattensSheets(t *testing.T) {
	out, err := NewCSVExporter().RenderWorkbook(seatingBook(), "Room")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Room,No.,Student", lines[0])
	assert.Equal(t, "Sala 6,1,Ana Pop", lines[1])
	assert.Equal(t, "Sala 7,1,Ioana Marin", lines[3])
}

func TestCSVExporterOptions(t *testing.T) {
	out, err := NewCSVExporter(WithBOM(), WithDelimiter(';')).Render(Dataset{
		Headers: []string{"Nume", "Judet"},
		Rows:    []map[string]string{{"Nume": "Școala 1", "Judet": "Cluj"}},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte{0xEF, 0xBB, 0xBF}))
	assert.Equal(t, "Nume;Judet\nȘcoala 1;Cluj\n", string(out[3:]))

	rows, err := ReadTable(bytes.NewReader(renderOneName(t, NewCSVExporter(WithBOM()))), "csv")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Name", rows[0][0])
}

func renderOneName(t *testing.T, e *CSVExporter) []byte {
	t.Helper()
	out, err := e.Render(Dataset{Headers: []string{"Name"}, Rows: []map[string]string{{"Name": "Ana"}}})
	require.NoError(t, err)
	return out
}

func TestXLSXExporterWritesOneSheetPerEntry(t *testing.T) {
	out, err := NewXLSXExporter().Render(seatingBook())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	assert.Equal(t, []string{"Sala 6", "Sala 7"}, f.GetSheetList())
	rows, err := f.GetRows("Sala 6")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"No.", "Student"}, rows[0])
	assert.Equal(t, []string{"2", "Dan Ionescu"}, rows[2])
}

func TestXLSXExporterRequiresSheets(t *testing.T) {
	_, err := NewXLSXExporter().Render(Workbook{})
	assert.Error(t, err)
}

func TestSanitizeSheetName(t *testing.T) {
	assert.Equal(t, "Lab-Fizica", SanitizeSheetName("Lab/Fizica"))
	assert.Equal(t, "Sheet", SanitizeSheetName("  "))
	assert.Len(t, []rune(SanitizeSheetName(strings.Repeat("x", 40))), 31)
}

func TestUniqueSheetNameSuffixesDuplicates(t *testing.T) {
	used := map[string]int{}
	assert.Equal(t, "Sala", uniqueSheetName("Sala", used))
	assert.Equal(t, "Sala (2)", uniqueSheetName("sala", used))
	assert.Equal(t, "Sala (3)", uniqueSheetName("Sala", used))
}

func TestPDFExporterRenderWorkbook(t *testing.T) {
	out, err := NewPDFExporter().RenderWorkbook(seatingBook())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	_, err = NewPDFExporter().Render(Dataset{}, "empty")
	assert.Error(t, err)
}

func TestReadTableCSVAndXLSX(t *testing.T) {
	rows, err := ReadTable(strings.NewReader("\xef\xbb\xbfNume,Judet,Localitate\nScoala 1,Cluj,Dej\n"), "csv")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Nume", "Judet", "Localitate"}, {"Scoala 1", "Cluj", "Dej"}}, rows)

	book := Workbook{Sheets: []Sheet{{Name: "Schools", Dataset: Dataset{
		Headers: []string{"Name", "County", "Locality"},
		Rows:    []map[string]string{{"Name": "Liceul 2", "County": "Alba", "Locality": "Blaj"}},
	}}}}
	data, err := NewXLSXExporter().Render(book)
	require.NoError(t, err)
	rows, err = ReadTable(bytes.NewReader(data), "XLSX")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Name", "County", "Locality"}, {"Liceul 2", "Alba", "Blaj"}}, rows)

	_, err = ReadTable(strings.NewReader(""), "ods")
	assert.Error(t, err)
}
