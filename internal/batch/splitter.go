// Package batch splits clipboard blocks into candidate messages and runs
// partial-failure-tolerant multi-message imports.
package batch

import (
	"regexp"
	"strings"
)

var (
	// blankLineSep matches blank-line separators between pasted messages.
	blankLineSep = regexp.MustCompile(`\n[ \t]*\n`)
	// dashRule matches a long dash-rule separator line.
	dashRule = regexp.MustCompile(`(?m)^[ \t]*-{4,}[ \t]*$`)
)

// openingMarkers are line prefixes that signal the start of a new message,
// one per bank/variant family. Clipboard text pasted from a messaging app
// often lacks blank lines between consecutive messages, so the fallback
// strategy starts a new chunk whenever a line opens with one of these.
var openingMarkers = []string{
	"BML",
	"MIB",
	"Transaction from",
	"Your purchase",
	"E-Commerce",
	"Transfer",
	"Dear Customer",
}

// Split breaks a block of text containing one or more concatenated bank
// messages into individual candidate strings, in order. It never fails:
// worst case the whole input comes back as a single chunk.
func Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	// Primary strategy: blank lines and dash rules.
	withRules := dashRule.ReplaceAllString(text, "")
	chunks := collect(blankLineSep.Split(withRules, -1))

	if len(chunks) > 1 {
		return chunks
	}

	// Fallback: group lines by known message-opening markers.
	if grouped := groupByMarkers(text); len(grouped) > 1 {
		return grouped
	}

	if len(chunks) == 1 {
		return chunks
	}
	return []string{strings.TrimSpace(text)}
}

// groupByMarkers scans lines and starts a new chunk whenever a line begins
// with a known opening marker, appending other lines to the current chunk.
func groupByMarkers(text string) []string {
	var chunks []string
	var current []string

	for _, line := range strings.Split(text, "\n") {
		if opensMessage(line) && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n"))
			current = current[:0]
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, "\n"))
	}

	return collect(chunks)
}

func opensMessage(line string) bool {
	trimmed := strings.TrimSpace(line)
	for _, marker := range openingMarkers {
		if strings.HasPrefix(trimmed, marker) {
			return true
		}
	}
	return false
}

// collect trims chunks and drops the empty ones, preserving order.
func collect(raw []string) []string {
	var out []string
	for _, c := range raw {
		if t := strings.TrimSpace(c); t != "" {
			out = append(out, t)
		}
	}
	return out
}
