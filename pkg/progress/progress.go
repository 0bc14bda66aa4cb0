// Package progress provides timestamped run logging to file and stdout with
// color support. The file copy is plain text; the stdout copy colors the
// current phase so long suite runs stay scannable.
package progress

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"golang.org/x/term"
)

// fixed suite phases; anything else is treated as a journey name
const (
	PhaseSetup    = "setup"
	PhaseTeardown = "teardown"
	PhaseReport   = "report"
)

// phase colors using fatih/color.
var (
	setupColor     = color.New(color.FgGreen)
	journeyColor   = color.New(color.FgCyan)
	reportColor    = color.New(color.FgMagenta)
	warnColor      = color.New(color.FgYellow)
	errorColor     = color.New(color.FgRed)
	timestampColor = color.New(color.FgWhite)
)

// Logger writes timestamped output to both a run log file and stdout.
type Logger struct {
	file      *os.File
	stdout    io.Writer
	startTime time.Time
	phase     string
}

// Config holds logger configuration.
type Config struct {
	LogDir  string // directory for run log files; empty logs to stdout only
	BaseURL string // storefront under test, recorded in the header
	NoColor bool   // disable color output (sets color.NoColor globally)
}

// NewLogger creates a logger writing to a timestamped run log and stdout.
func NewLogger(cfg Config) (*Logger, error) {
	if cfg.NoColor {
		color.NoColor = true
	}

	l := &Logger{
		stdout:    os.Stdout,
		startTime: time.Now(),
		phase:     PhaseSetup,
	}

	if cfg.LogDir == "" {
		return l, nil
	}

	if err := os.MkdirAll(cfg.LogDir, 0o750); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	path := filepath.Join(cfg.LogDir, fmt.Sprintf("run-%s.txt", time.Now().Format("20060102-150405")))
	f, err := os.Create(path) //nolint:gosec // path derived from log dir and timestamp
	if err != nil {
		return nil, fmt.Errorf("create run log: %w", err)
	}
	l.file = f

	l.writeFile("# Storecheck Run Log\n")
	l.writeFile("Target: %s\n", cfg.BaseURL)
	l.writeFile("Started: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	l.writeFile("%s\n\n", strings.Repeat("-", 60))

	return l, nil
}

// Path returns the run log file path, or "" when logging to stdout only.
func (l *Logger) Path() string {
	if l.file == nil {
		return ""
	}
	return l.file.Name()
}

// SetPhase sets the current phase for color coding. Unknown phases
// (journey names) get the journey color.
func (l *Logger) SetPhase(phase string) {
	l.phase = phase
}

func (l *Logger) phaseColor() *color.Color {
	switch l.phase {
	case PhaseSetup, PhaseTeardown:
		return setupColor
	case PhaseReport:
		return reportColor
	default:
		return journeyColor
	}
}

// timestampFormat is the format for timestamps: YY-MM-DD HH:MM:SS
const timestampFormat = "06-01-02 15:04:05"

// Print writes a timestamped message to both file and stdout.
func (l *Logger) Print(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format(timestampFormat)

	l.writeFile("[%s] %s\n", timestamp, msg)

	tsStr := timestampColor.Sprintf("[%s]", timestamp)
	l.writeStdout("%s %s\n", tsStr, l.phaseColor().Sprint(msg))
}

// PrintRaw writes without timestamp (for multi-line report output).
func (l *Logger) PrintRaw(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	l.writeFile("%s", msg)
	l.writeStdout("%s", msg)
}

// PrintAligned writes text with a timestamp on the first line and indented
// continuation lines, wrapping long lines to the terminal width.
func (l *Logger) PrintAligned(text string) {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return
	}

	timestamp := time.Now().Format(timestampFormat)
	tsPrefix := timestampColor.Sprintf("[%s]", timestamp)
	indent := strings.Repeat(" ", 20) // aligns with "[YY-MM-DD HH:MM:SS] "
	phaseColor := l.phaseColor()

	width := getTerminalWidth()
	var lines []string
	for line := range strings.SplitSeq(text, "\n") {
		if len(line) > width {
			lines = append(lines, strings.Split(wrapText(line, width), "\n")...)
		} else {
			lines = append(lines, line)
		}
	}

	for i, line := range lines {
		if line == "" {
			l.writeFile("\n")
			l.writeStdout("\n")
			continue
		}
		if i == 0 {
			l.writeFile("[%s] %s\n", timestamp, line)
			l.writeStdout("%s %s\n", tsPrefix, phaseColor.Sprint(line))
			continue
		}
		l.writeFile("%s%s\n", indent, line)
		l.writeStdout("%s%s\n", indent, phaseColor.Sprint(line))
	}
}

// Error writes an error message in red.
func (l *Logger) Error(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format(timestampFormat)

	l.writeFile("[%s] ERROR: %s\n", timestamp, msg)

	tsStr := timestampColor.Sprintf("[%s]", timestamp)
	l.writeStdout("%s %s\n", tsStr, errorColor.Sprintf("ERROR: %s", msg))
}

// Warn writes a warning message in yellow.
func (l *Logger) Warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format(timestampFormat)

	l.writeFile("[%s] WARN: %s\n", timestamp, msg)

	tsStr := timestampColor.Sprintf("[%s]", timestamp)
	l.writeStdout("%s %s\n", tsStr, warnColor.Sprintf("WARN: %s", msg))
}

// Elapsed returns formatted elapsed time since start.
func (l *Logger) Elapsed() string {
	return humanize.RelTime(l.startTime, time.Now(), "", "")
}

// Close writes the footer and closes the run log file.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}

	l.writeFile("\n%s\n", strings.Repeat("-", 60))
	l.writeFile("Completed: %s (%s)\n", time.Now().Format("2006-01-02 15:04:05"), l.Elapsed())

	if err := l.file.Close(); err != nil {
		return fmt.Errorf("close run log: %w", err)
	}
	return nil
}

func (l *Logger) writeFile(format string, args ...any) {
	if l.file != nil {
		fmt.Fprintf(l.file, format, args...)
	}
}

func (l *Logger) writeStdout(format string, args ...any) {
	fmt.Fprintf(l.stdout, format, args...)
}

// getTerminalWidth returns the content width: terminal columns minus the
// timestamp prefix, from COLUMNS or the terminal itself, defaulting to 60.
func getTerminalWidth() int {
	const minWidth = 40

	if cols := os.Getenv("COLUMNS"); cols != "" {
		if w, err := strconv.Atoi(cols); err == nil && w > 0 {
			return max(w-20, minWidth)
		}
	}

	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return max(w-20, minWidth)
	}

	return 80 - 20
}

// wrapText wraps text to the width, breaking on word boundaries.
func wrapText(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	var result strings.Builder
	lineLen := 0
	for i, word := range strings.Fields(text) {
		if i == 0 {
			result.WriteString(word)
			lineLen = len(word)
			continue
		}
		if lineLen+1+len(word) <= width {
			result.WriteString(" ")
			result.WriteString(word)
			lineLen += 1 + len(word)
			continue
		}
		result.WriteString("\n")
		result.WriteString(word)
		lineLen = len(word)
	}
	return result.String()
}
