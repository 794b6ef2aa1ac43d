package feed

import (
	"errors"
	"fmt"
)

// Feed parsing errors.
var (
	// ErrEmptyFile is returned when the feed file has no content
	ErrEmptyFile = errors.New("feed file is empty")

	// ErrInvalidEncoding is returned when the feed is not valid UTF-8
	ErrInvalidEncoding = errors.New("invalid feed encoding, expected UTF-8")

	// ErrMissingHeader is returned when the feed has no header row
	ErrMissingHeader = errors.New("feed file missing header row")

	// ErrNoUsableColumns is returned when the header resolves to neither a
	// brand nor an article column, so no row could ever be used
	ErrNoUsableColumns = errors.New("feed header has no recognizable brand/article columns")
)

// RowError describes why one feed row could not be turned into a logical
// row. Row errors never abort a parse; the caller decides what to do with
// the rows that did work.
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// Error implements the error interface
func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column '%s': %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}
