package limiter

import (
	"fmt"
)

// Config holds the paging parameters.
type Config struct {
	Page     int // 1-based page number; values below 1 mean the first page
	PageSize int // Rows per page (0 = paging disabled)
}

// Validate checks the flag values and returns an error if invalid.
// Rules:
// - PageSize must be non-negative
// - Page must be non-negative (0 is accepted and means page 1)
func (c Config) Validate() error {
	if c.PageSize < 0 {
		return fmt.Errorf("--page-size must be non-negative, got %d", c.PageSize)
	}
	if c.Page < 0 {
		return fmt.Errorf("--page must be non-negative, got %d", c.Page)
	}
	return nil
}

// IsActive returns true if paging is configured.
func (c Config) IsActive() bool {
	return c.PageSize > 0
}

// CurrentPage returns the effective 1-based page number.
func (c Config) CurrentPage() int {
	if c.Page < 1 {
		return 1
	}
	return c.Page
}

// TotalPages returns the number of pages needed for length items.
// Inactive configs always report a single page.
func (c Config) TotalPages(length int) int {
	if !c.IsActive() {
		return 1
	}
	return (length + c.PageSize - 1) / c.PageSize
}

// Bounds returns the half-open [start, end) window of the current page over
// length items. Pages past the end yield an empty window.
func (c Config) Bounds(length int) (start, end int) {
	if !c.IsActive() {
		return 0, length
	}
	start = (c.CurrentPage() - 1) * c.PageSize
	if start > length {
		start = length
	}
	end = start + c.PageSize
	if end > length {
		end = length
	}
	return start, end
}

// Apply returns the current page of items. The result shares the backing
// array of items.
func Apply[T any](c Config, items []T) []T {
	start, end := c.Bounds(len(items))
	return items[start:end]
}
