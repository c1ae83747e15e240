// Package codec converts task lists to and from CSV and JSON files.
package codec

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"taskflow/internal/model"
)

// Format is an import/export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format, use CSV or JSON")
	ErrNoValidTasks      = errors.New("no valid tasks found in file")
	ErrNothingToExport   = errors.New("no tasks to export")
)

// ParseError reports file content that couldn't be parsed at all.
type ParseError struct {
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// FormatOf picks the format from a file name's extension.
func FormatOf(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", ErrUnsupportedFormat
}

// Result is the outcome of an import. Rows counts the records read before
// normalization; rejected records are dropped silently.
type Result struct {
	Tasks []model.Task
	Rows  int
}

func (r Result) Dropped() int {
	return r.Rows - len(r.Tasks)
}

// Import parses content according to name's extension. An import that
// yields no valid task is an error.
func Import(name, content string, now time.Time) (Result, error) {
	format, err := FormatOf(name)
	if err != nil {
		return Result{}, err
	}

	var res Result
	switch format {
	case FormatJSON:
		res, err = ParseJSON(content, now)
	case FormatCSV:
		res = ParseCSV(content, now)
	}
	if err != nil {
		return Result{}, err
	}
	if len(res.Tasks) == 0 {
		return Result{}, ErrNoValidTasks
	}
	return res, nil
}

// Export renders tasks in the given format.
func Export(tasks []model.Task, format Format) (string, error) {
	if len(tasks) == 0 {
		return "", ErrNothingToExport
	}
	switch format {
	case FormatCSV:
		return ExportCSV(tasks), nil
	case FormatJSON:
		return ExportJSON(tasks)
	}
	return "", ErrUnsupportedFormat
}

// FileName is the download name for an export.
func FileName(format Format) string {
	return "taskflow_tasks." + string(format)
}
