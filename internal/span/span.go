// Package span provides the byte-offset/line-column arithmetic shared by
// the host-language extractor and the GraphQL lowering pass, plus the
// single piece of lexical policy both of them need: detecting the
// "# gql-safeguard-ignore" marker that suppresses findings on the node it
// precedes.
package span

import "strings"

const IgnoreComment = "# gql-safeguard-ignore"

// LineStarts computes the byte offset at which each line of text begins,
// so that an absolute offset can be converted to a (line, column) pair
// with a binary search. Line 1 always starts at offset 0.
func LineStarts(text string) []int {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// LineColumn converts a byte offset into a 1-based (line, column) pair
// using a precomputed LineStarts table.
func LineColumn(starts []int, offset int) (line, column int) {
	lo, hi := 0, len(starts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if starts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo + 1, offset - starts[lo] + 1
}

// IgnoredAtLine reports whether the nearest non-blank line strictly above
// the given 1-based line number (within the same payload) contains the
// ignore-comment marker, either on its own or trailing other text (as in
// "user { # gql-safeguard-ignore"). Lines are 1-indexed into the slice
// returned by SplitLines.
func IgnoredAtLine(lines []string, line int) bool {
	for i := line - 2; i >= 0; i-- { // line-2 is the zero-based index of the line above
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		return strings.Contains(trimmed, IgnoreComment)
	}
	return false
}

// SplitLines splits payload text into lines without its trailing
// terminators, suitable for 1-based indexing via IgnoredAtLine.
func SplitLines(text string) []string {
	return strings.Split(text, "\n")
}
