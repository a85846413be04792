package ingest

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// readRecords calls fn for every record of a CSV file or of the first sheet of
// an XLSX workbook. The first record is the header. line is 1-based.
func readRecords(path string, fn func(line int, record []string) error) error {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return readXLSX(path, fn)
	}
	return readCSV(path, fn)
}

func readCSV(path string, fn func(int, []string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	// Excel exports prefix the header with a byte order mark.
	if bom, err := br.Peek(3); err == nil && string(bom) == "\xef\xbb\xbf" {
		_, _ = br.Discard(3)
	}

	r := csv.NewReader(br)
	r.Comma = sniffComma(br)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	for line := 1; ; line++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read %s line %d: %w", path, line, err)
		}
		if err := fn(line, record); err != nil {
			return err
		}
	}
}

// sniffComma picks ';' when the header has more semicolons than commas, as
// spreadsheets with a comma decimal separator export them.
func sniffComma(br *bufio.Reader) rune {
	head, _ := br.Peek(br.Size())
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}
	if bytes.Count(head, []byte{';'}) > bytes.Count(head, []byte{','}) {
		return ';'
	}
	return ','
}

func readXLSX(path string, fn func(int, []string) error) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("failed to open xlsx file %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return fmt.Errorf("xlsx file %s has no sheets", path)
	}
	sheet := sheets[0]

	rows, err := f.Rows(sheet)
	if err != nil {
		return fmt.Errorf("failed to read rows from sheet %s: %w", sheet, err)
	}
	defer rows.Close()

	for line := 1; rows.Next(); line++ {
		record, err := rows.Columns()
		if err != nil {
			return fmt.Errorf("failed to read row %d from %s: %w", line, path, err)
		}
		if err := fn(line, record); err != nil {
			return err
		}
	}
	if err := rows.Error(); err != nil {
		return fmt.Errorf("error iterating rows in %s: %w", path, err)
	}
	return nil
}
