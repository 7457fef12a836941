package items

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrNoItems indicates the input source contained no usable project rows.
var ErrNoItems = errors.New("no project rows in input")

// headerMarkers are matched case-insensitively as substrings against the
// first row to decide whether it is a header and which column carries the
// project identifier.
var headerMarkers = []string{"project", "proyecto"}

// LoadCSV reads the work list from the CSV file at path. The file may carry
// a UTF-8 byte order mark; it is stripped transparently.
func LoadCSV(path string) ([]Item, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input csv: %w", err)
	}
	defer file.Close()
	return ReadItems(file)
}

// ReadItems parses the work list from an open CSV stream.
func ReadItems(r io.Reader) ([]Item, error) {
	decoded := transform.NewReader(r, unicode.UTF8BOM.NewDecoder())
	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1

	first, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read input csv: %w", err)
	}

	var out []Item
	add := func(raw string) {
		value := strings.Trim(strings.TrimSpace(raw), `"`)
		if value == "" {
			return
		}
		out = append(out, New(value))
	}

	column, headerLike := identifierColumn(first)
	if !headerLike {
		if len(first) > 0 {
			add(first[0])
		}
	}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read input csv: %w", err)
		}
		if len(row) == 0 {
			continue
		}
		if column < len(row) {
			add(row[column])
		}
	}
	return out, nil
}

// identifierColumn reports whether the first row looks like a header and,
// if so, which column holds the project identifier (first match wins).
func identifierColumn(first []string) (int, bool) {
	headerLike := false
	column := 0
	for i, cell := range first {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for _, marker := range headerMarkers {
			if strings.Contains(normalized, marker) {
				if !headerLike {
					column = i
				}
				headerLike = true
			}
		}
	}
	return column, headerLike
}
