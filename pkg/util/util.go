package util

import "strings"

// StripBOM removes a leading UTF-8 byte-order marker. Settings and timing
// files are often exported from spreadsheet tools that prepend one.
func StripBOM(s string) string {
	return strings.TrimPrefix(s, "\uFEFF")
}

// CleanCell normalizes one CSV cell: BOM and surrounding whitespace removed.
func CleanCell(s string) string {
	return strings.TrimSpace(StripBOM(s))
}
