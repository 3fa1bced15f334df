package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

func renderCountLine(label string, count int, colorize bool, color string) string {
	base := fmt.Sprintf("%s%-*s %d", statusIndent, statusLabelWidth, label+":", count)
	if colorize && color != "" && count > 0 {
		return color + base + ansiReset
	}
	return base
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

// colorizeDecision wraps a verdict word in an ANSI color when writing to a
// terminal.
func colorizeDecision(decision string, colorize bool) string {
	if !colorize {
		return decision
	}
	switch decision {
	case "synced":
		return ansiGreen + decision + ansiReset
	case "needs_adjustment":
		return ansiYellow + decision + ansiReset
	case "bad":
		return ansiRed + decision + ansiReset
	default:
		return decision
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
