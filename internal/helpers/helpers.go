// Package helpers provides shared utility functions used across the application.
// These are generic helpers that don't belong to a specific domain package.
package helpers

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/goodbytes/linkdetect/internal/parser"
)

// TruncateText shortens text to the specified maximum length in runes,
// adding "..." if truncated.
// Returns empty string if input is empty or only whitespace.
func TruncateText(text string, maxLen int) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	return truncate(text, maxLen)
}

// TruncateURL shortens a URL to the specified maximum length for display purposes.
// Adds "..." suffix if the URL exceeds maxLen.
func TruncateURL(url string, maxLen int) string {
	return truncate(url, maxLen)
}

// truncate leaves s alone when maxLen cannot hold one rune plus the ellipsis.
func truncate(s string, maxLen int) string {
	if maxLen < 4 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-3]) + "..."
}

// CountUniqueStrings returns the number of unique strings in a slice.
func CountUniqueStrings(items []string) int {
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		seen[item] = true
	}
	return len(seen)
}

// CountUniqueURLs returns the number of distinct URLs among links.
func CountUniqueURLs(links []parser.Link) int {
	seen := make(map[string]bool, len(links))
	for _, l := range links {
		seen[l.URL] = true
	}
	return len(seen)
}

// UniqueLinks keeps the first link of every URL, in order.
func UniqueLinks(links []parser.Link) []parser.Link {
	seen := make(map[string]bool, len(links))
	out := make([]parser.Link, 0, len(links))
	for _, l := range links {
		if seen[l.URL] {
			continue
		}
		seen[l.URL] = true
		out = append(out, l)
	}
	return out
}

// Location formats a link position as file:line:col.
func Location(l parser.Link) string {
	return fmt.Sprintf("%s:%d:%d", l.FilePath, l.Line, l.Column)
}

// Pluralize returns "1 link" or "3 links".
func Pluralize(n int, singular string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %ss", n, singular)
}
