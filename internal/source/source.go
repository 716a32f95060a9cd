//-------------------------------------------------------------------------
//
// pgEdge POS Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package source reads point-of-sale CSV exports into in-memory tables.
package source

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/zeebo/xxh3"
	"golang.org/x/text/unicode/norm"
)

const utf8BOM = "\uFEFF"

// Row is one data record with the 1-based line it started on.
type Row struct {
	Line  int
	Cells []string
}

// Table is a parsed CSV export. Every row has exactly len(Headers) cells.
type Table struct {
	Name        string
	Headers     []string
	Rows        []Row
	Fingerprint uint64
}

// ReadFile reads and parses the CSV file at path.
func ReadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse parses CSV bytes. The name is only used in error messages.
func Parse(name string, data []byte) (*Table, error) {
	t := &Table{
		Name:        name,
		Fingerprint: xxh3.Hash(data),
	}

	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte(utf8BOM))))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: no header row", name)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse header: %w", name, err)
	}
	t.Headers = make([]string, len(header))
	for i, h := range header {
		t.Headers[i] = norm.NFC.String(strings.TrimSpace(h))
	}

	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		line, _ := r.FieldPos(0)

		cells := make([]string, len(t.Headers))
		blank := true
		for i := range cells {
			if i < len(record) {
				cells[i] = strings.TrimSpace(record[i])
			}
			if cells[i] != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		t.Rows = append(t.Rows, Row{Line: line, Cells: cells})
	}

	return t, nil
}

// Index returns the position of the named column, or -1.
func (t *Table) Index(column string) int {
	for i, h := range t.Headers {
		if h == column {
			return i
		}
	}
	return -1
}

// NormalizeHeaders rewrites every header with fn.
func (t *Table) NormalizeHeaders(fn func(string) string) {
	for i, h := range t.Headers {
		t.Headers[i] = fn(h)
	}
}

var separatorRun = regexp.MustCompile(`[\s\-_]+`)

// NormalizeHeader turns an export header such as " Gross Sales " or
// "Modifiers-Applied" into its snake_case column key.
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return separatorRun.ReplaceAllString(h, "_")
}
