package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// textEncodings is tried in order for delimited text files. UTF-8 first,
// then the Turkish codepages the banks actually export.
var textEncodings = []struct {
	decoder *encoding.Decoder
	name    string
}{
	{name: "utf-8", decoder: nil},
	{name: "windows-1254", decoder: charmap.Windows1254.NewDecoder()},
	{name: "iso-8859-9", decoder: charmap.ISO8859_9.NewDecoder()},
}

// loadTable reads the file at path into rows of cells. The tabular format is
// detected by extension: xlsx and legacy xls are read as workbooks, anything
// else as delimited text.
func loadTable(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return loadXLSX(path)
	case ".xls":
		return loadXLS(path)
	default:
		return loadDelimited(path)
	}
}

func loadXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &ParseError{File: path, Msg: "cannot open workbook", Err: err}
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{File: path, Msg: "workbook has no sheets"}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &ParseError{File: path, Msg: "cannot read sheet", Err: err}
	}
	return rows, nil
}

func loadXLS(path string) ([][]string, error) {
	workbook, err := xls.OpenFile(path)
	if err != nil {
		return nil, &ParseError{File: path, Msg: "cannot open workbook", Err: err}
	}

	sheet, err := workbook.GetSheet(0)
	if err != nil {
		return nil, &ParseError{File: path, Msg: "workbook has no sheets", Err: err}
	}

	var rows [][]string
	for _, row := range sheet.GetRows() {
		var cells []string
		for _, cell := range row.GetCols() {
			cells = append(cells, cell.GetString())
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// loadDelimited reads a CSV-style export, trying each known encoding until
// one decodes and parses cleanly.
func loadDelimited(path string) ([][]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{File: path, Msg: "cannot read file", Err: err}
	}

	var lastErr error
	for _, enc := range textEncodings {
		data := raw
		if enc.decoder == nil {
			if !utf8.Valid(raw) {
				lastErr = fmt.Errorf("not valid utf-8")
				continue
			}
		} else {
			decoded, _, decErr := transform.Bytes(enc.decoder, raw)
			if decErr != nil {
				lastErr = decErr
				continue
			}
			data = decoded
		}

		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = detectDelimiter(data)
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, csvErr := reader.ReadAll()
		if csvErr != nil {
			lastErr = csvErr
			continue
		}
		return records, nil
	}

	return nil, &ParseError{File: path, Msg: "no encoding could decode file", Err: lastErr}
}

// detectDelimiter picks the delimiter by counting candidates in the first
// non-empty line. Semicolon wins ties because Turkish exports use comma as
// the decimal separator.
func detectDelimiter(data []byte) rune {
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		semicolons := bytes.Count(line, []byte(";"))
		tabs := bytes.Count(line, []byte("\t"))
		commas := bytes.Count(line, []byte(","))
		switch {
		case semicolons > 0:
			return ';'
		case tabs > 0 && tabs >= commas:
			return '\t'
		default:
			return ','
		}
	}
	return ';'
}
