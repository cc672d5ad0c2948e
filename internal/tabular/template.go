// Package tabular reads the versioned CSV input templates shared by every
// effects input file and writes output CSVs atomically.
//
// Input files carry a two-line header. Line 1 is the banner
// "input_template_name:,<name>,input_template_version:,<version>"; line 2 is
// the column header. Loading fails when the banner does not match the
// expected (name, version) pair.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/domain"
)

// File is one loaded input template.
type File struct {
	Path            string
	TemplateName    string
	TemplateVersion string
	Columns         []string

	colIndex map[string]int
	rows     [][]string
}

// ReadTemplate loads path and verifies its banner against the expected
// template name and version.
func ReadTemplate(path, wantName, wantVersion string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer fh.Close()

	r := csv.NewReader(fh)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	banner, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read template banner: %w", path, err)
	}
	gotName, gotVersion := parseBanner(banner)
	if gotName != wantName || gotVersion != wantVersion {
		return nil, &domain.TemplateVersionError{
			File:     path,
			WantName: wantName, WantVersion: wantVersion,
			GotName: gotName, GotVersion: gotVersion,
		}
	}

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read column header: %w", path, err)
	}
	f := &File{
		Path:            path,
		TemplateName:    gotName,
		TemplateVersion: gotVersion,
		Columns:         header,
		colIndex:        make(map[string]int, len(header)),
	}
	for i, col := range header {
		f.colIndex[strings.TrimSpace(col)] = i
	}

	for {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: failed to read row %d: %w", path, len(f.rows)+3, err)
		}
		if isBlank(fields) {
			continue
		}
		f.rows = append(f.rows, fields)
	}
	return f, nil
}

func parseBanner(fields []string) (name, version string) {
	for i := 0; i+1 < len(fields); i++ {
		switch strings.TrimSpace(fields[i]) {
		case "input_template_name:":
			name = strings.TrimSpace(fields[i+1])
		case "input_template_version:":
			version = strings.TrimSpace(fields[i+1])
		}
	}
	return name, version
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// Require fails with MissingColumnError for the first expected column the
// file lacks.
func (f *File) Require(cols ...string) error {
	for _, col := range cols {
		if _, ok := f.colIndex[col]; !ok {
			return &domain.MissingColumnError{File: f.Path, Column: col}
		}
	}
	return nil
}

// Len returns the number of data rows.
func (f *File) Len() int { return len(f.rows) }

// Row returns data row i.
func (f *File) Row(i int) Row { return Row{file: f, fields: f.rows[i], line: i + 3} }

// DropZeroDollarBasis discards rows whose dollar_basis column is zero; those
// are non-monetary rows that survived a shared schema. Files without the
// column are left untouched.
func (f *File) DropZeroDollarBasis() {
	idx, ok := f.colIndex["dollar_basis"]
	if !ok {
		return
	}
	kept := f.rows[:0]
	for _, fields := range f.rows {
		if idx < len(fields) && strings.TrimSpace(fields[idx]) != "0" {
			kept = append(kept, fields)
		}
	}
	f.rows = kept
}

// Row is one data row with typed column access. Line numbers are 1-based file
// lines for diagnostics.
type Row struct {
	file   *File
	fields []string
	line   int
}

// String returns the trimmed cell under col, empty when the column or cell is
// absent.
func (r Row) String(col string) string {
	idx, ok := r.file.colIndex[col]
	if !ok || idx >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[idx])
}

// Float parses the cell under col; a blank cell reads as zero.
func (r Row) Float(col string) (float64, error) {
	s := r.String(col)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s line %d: column %q: %w", r.file.Path, r.line, col, err)
	}
	return v, nil
}

// Int parses the cell under col as an integer; a blank cell reads as zero.
func (r Row) Int(col string) (int, error) {
	s := r.String(col)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s line %d: column %q: %w", r.file.Path, r.line, col, err)
	}
	return v, nil
}

// Year parses the cell under col as an int32 calendar year.
func (r Row) Year(col string) (int32, error) {
	v, err := r.Int(col)
	return int32(v), err
}

// Bool parses the cell under col as a 0/1 flag; blank reads as false.
func (r Row) Bool(col string) (bool, error) {
	s := r.String(col)
	if s == "" || s == "0" {
		return false, nil
	}
	if s == "1" {
		return true, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return false, fmt.Errorf("%s line %d: column %q: %w", r.file.Path, r.line, col, err)
	}
	return v != 0, nil
}

// WriteAtomic streams CSV rows through write into a temp file in the target
// directory, then renames it over path. A failed write leaves no partial
// output behind.
func WriteAtomic(path string, write func(w *csv.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temp output: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	w := csv.NewWriter(tmp)
	if err := write(w); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp output: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", path, err)
	}
	return nil
}
