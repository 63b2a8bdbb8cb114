// Package ui provides colored terminal output helpers for the CLI.
package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

const headerWidth = 60

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	stepColor    = color.New(color.FgBlue, color.Bold)
	successColor = color.New(color.FgGreen)
	infoColor    = color.New(color.FgWhite)
	warningColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
)

// Header prints a banner with the given title centered.
func Header(text string) {
	line := strings.Repeat("=", headerWidth)
	headerColor.Println(line)
	headerColor.Println(center(text, headerWidth))
	headerColor.Println(line)
}

// Step prints a numbered progress step, e.g. "[2/4] Parsing messages".
func Step(n, total int, text string) {
	stepColor.Printf("[%d/%d] ", n, total)
	fmt.Println(text)
}

// Success prints a green success line.
func Success(text string) {
	successColor.Printf("✓ %s\n", text)
}

// Info prints a neutral informational line.
func Info(text string) {
	infoColor.Printf("• %s\n", text)
}

// Warning prints a yellow warning line.
func Warning(text string) {
	warningColor.Printf("! %s\n", text)
}

// Error prints a red error line.
func Error(text string) {
	errorColor.Printf("✗ %s\n", text)
}

// BlueText prints plain blue text without a prefix symbol.
func BlueText(text string) {
	color.New(color.FgBlue).Println(text)
}

// YellowText prints plain yellow text without a prefix symbol.
func YellowText(text string) {
	color.New(color.FgYellow).Println(text)
}

// center left-pads text so it sits in the middle of width columns.
// Text wider than width is returned unchanged.
func center(text string, width int) string {
	if len(text) >= width {
		return text
	}
	return strings.Repeat(" ", (width-len(text))/2) + text
}
