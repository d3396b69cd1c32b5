package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
	"github.com/xuri/excelize/v2"
)

// Save writes books to path in the format implied by its extension. The
// file is written next to the destination and renamed into place.
func Save(path string, books []Book) error {
	ext := filepath.Ext(path)

	var write func(string) error
	switch strings.ToLower(ext) {
	case ".xlsx", ".xlsm":
		write = func(p string) error { return saveExcel(p, books) }
	case ".json":
		write = func(p string) error { return writeJSON(p, books) }
	case ".jsonl":
		write = func(p string) error { return saveJSONL(p, books) }
	case ".parquet":
		write = func(p string) error { return parquet.WriteFile(p, books) }
	default:
		return fmt.Errorf("unsupported file format: %s (supported: .xlsx, .json, .jsonl, .parquet)", ext)
	}

	return writeAtomic(path, write)
}

// WriteJSONFile writes v as indented JSON to path, replacing it atomically.
func WriteJSONFile(path string, v interface{}) error {
	return writeAtomic(path, func(p string) error { return writeJSON(p, v) })
}

func writeAtomic(path string, write func(string) error) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	ext := filepath.Ext(path)
	// excelize validates the extension, so it has to stay last
	tempPath := strings.TrimSuffix(path, ext) + ".tmp" + ext

	if err := write(tempPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to move file: %w", err)
	}

	return nil
}

func saveExcel(path string, books []Book) error {
	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(f.GetSheetName(0))
	if err != nil {
		return err
	}

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for i := range books {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, books[i].row()); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return err
	}

	return f.SaveAs(path)
}

// writeJSON encodes v as indented JSON without escaping HTML characters.
func writeJSON(path string, v interface{}) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		return err
	}

	return file.Close()
}

func saveJSONL(path string, books []Book) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetEscapeHTML(false)
	for i := range books {
		if err := encoder.Encode(&books[i]); err != nil {
			return err
		}
	}

	return file.Close()
}
