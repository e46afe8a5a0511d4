package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// Format identifies a catalog source encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatXLSX Format = "xlsx"
)

// FormatFromPath picks a format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported catalog file %q: expected .json, .yaml, .yml or .xlsx", path)
	}
}

// Load reads, decodes and validates a catalog file.
func Load(path string) ([]Card, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	var cards []Card
	if format == FormatXLSX {
		cards, err = loadXLSX(path)
	} else {
		var data []byte
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		cards, err = decode(data, format)
	}
	if err != nil {
		return nil, err
	}

	if err := Validate(cards); err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return cards, nil
}

// Parse decodes and validates an in-memory JSON or YAML catalog.
func Parse(data []byte, format Format) ([]Card, error) {
	cards, err := decode(data, format)
	if err != nil {
		return nil, err
	}
	if err := Validate(cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// wrapped is the object form of a catalog document.
type wrapped struct {
	Cards []Card `json:"cards" yaml:"cards"`
}

func decode(data []byte, format Format) ([]Card, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrEmpty
	}

	switch format {
	case FormatJSON:
		if trimmed[0] == '[' {
			var cards []Card
			if err := json.Unmarshal(trimmed, &cards); err != nil {
				return nil, &ValidationError{Index: -1, Message: fmt.Sprintf("decode JSON catalog: %v", err)}
			}
			return cards, nil
		}
		var doc wrapped
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, &ValidationError{Index: -1, Message: fmt.Sprintf("decode JSON catalog: %v", err)}
		}
		return doc.Cards, nil

	case FormatYAML:
		var node yaml.Node
		if err := yaml.Unmarshal(trimmed, &node); err != nil {
			return nil, &ValidationError{Index: -1, Message: fmt.Sprintf("decode YAML catalog: %v", err)}
		}
		if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
			var cards []Card
			if err := node.Decode(&cards); err != nil {
				return nil, &ValidationError{Index: -1, Message: fmt.Sprintf("decode YAML catalog: %v", err)}
			}
			return cards, nil
		}
		var doc wrapped
		if err := node.Decode(&doc); err != nil {
			return nil, &ValidationError{Index: -1, Message: fmt.Sprintf("decode YAML catalog: %v", err)}
		}
		return doc.Cards, nil

	default:
		return nil, fmt.Errorf("unsupported catalog format %q", format)
	}
}

// loadXLSX reads cards from the first sheet of a workbook.
// A first row whose id cell is not an integer is treated as a header.
// Fully blank rows are skipped.
func loadXLSX(path string) ([]Card, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	var cards []Card
	for i, row := range rows {
		if isBlankRow(row) {
			continue
		}

		idCell := cell(row, 0)
		id, convErr := strconv.Atoi(idCell)
		if convErr != nil {
			if i == 0 {
				continue
			}
			return nil, &ValidationError{
				Index:   len(cards),
				Field:   "id",
				Message: fmt.Sprintf("row %d: id %q is not an integer", i+1, idCell),
			}
		}

		cards = append(cards, Card{
			ID:         id,
			Term:       cell(row, 1),
			Definition: cell(row, 2),
		})
	}

	return cards, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
