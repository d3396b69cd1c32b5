package dataset

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
	"github.com/xuri/excelize/v2"
)

// Loader reads book records from an Excel, JSON, JSONL or Parquet file.
type Loader struct {
	datasetPath string
}

// NewLoader creates a new dataset loader
func NewLoader(datasetPath string) *Loader {
	return &Loader{
		datasetPath: datasetPath,
	}
}

// Load loads all records, picking the format from the file extension.
func (l *Loader) Load() ([]Book, error) {
	switch ext := strings.ToLower(filepath.Ext(l.datasetPath)); ext {
	case ".xlsx", ".xlsm":
		return l.loadExcel()
	case ".json":
		return l.loadJSON()
	case ".jsonl":
		return l.loadJSONL()
	case ".parquet":
		return l.loadParquet()
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .xlsx, .json, .jsonl, .parquet)", ext)
	}
}

// loadExcel reads the first sheet. The first row holds column names.
func (l *Loader) loadExcel() ([]Book, error) {
	slog.Debug("Opening Excel file", "path", l.datasetPath)

	f, err := excelize.OpenFile(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	if len(rows) == 0 {
		return []Book{}, nil
	}

	header := rows[0]
	var ignored []string
	probe := Book{}
	for _, column := range header {
		if !probe.Set(column, "") {
			ignored = append(ignored, column)
		}
	}
	if len(ignored) > 0 {
		slog.Debug("Ignoring unknown columns", "path", l.datasetPath, "columns", ignored)
	}

	books := make([]Book, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}

		var b Book
		for i, cell := range row {
			if i < len(header) {
				b.Set(header[i], cell)
			}
		}
		books = append(books, b)
	}

	slog.Debug("Finished reading Excel file", "sheet", sheet, "total_records", len(books))

	return books, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// loadJSON reads a JSON array of records, as written by pandas with
// orient="records".
func (l *Loader) loadJSON() ([]Book, error) {
	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer file.Close()

	var books []Book
	if err := json.NewDecoder(file).Decode(&books); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}

	return books, nil
}

// loadJSONL loads records from a JSONL file
func (l *Loader) loadJSONL() ([]Book, error) {
	slog.Debug("Opening JSONL file", "path", l.datasetPath)

	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer file.Close()

	var books []Book
	scanner := bufio.NewScanner(file)

	// Descriptions can be long
	const maxCapacity = 10 * 1024 * 1024
	buf := make([]byte, maxCapacity)
	scanner.Buffer(buf, maxCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()

		if len(line) == 0 {
			continue
		}

		var b Book
		if err := json.Unmarshal(line, &b); err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}

		books = append(books, b)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading dataset: %w", err)
	}

	slog.Debug("Finished reading JSONL file", "total_records", len(books), "total_lines", lineNum)

	return books, nil
}

// loadParquet loads records from a Parquet file
func (l *Loader) loadParquet() ([]Book, error) {
	slog.Debug("Opening Parquet file", "path", l.datasetPath)

	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet file opened successfully", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[Book](pf)
	defer reader.Close()

	books := make([]Book, 0, pf.NumRows())
	rows := make([]Book, 128)

	for {
		n, err := reader.Read(rows)
		books = append(books, rows[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	slog.Debug("Finished reading Parquet file", "total_records", len(books))

	return books, nil
}
