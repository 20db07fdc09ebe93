// Package ui renders terminal output for the CLI: coloured status words and tables.
//
// Styles are built with [lipgloss] and tables with go-pretty. Nothing here writes to a terminal directly;
// callers receive strings.
package ui
