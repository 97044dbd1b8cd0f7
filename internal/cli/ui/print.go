package ui

import (
	"io"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	failureColor = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	warnColor    = color.New(color.FgYellow)
)

// Success prints a green check line
func Success(w io.Writer, format string, args ...interface{}) {
	successColor.Fprintf(w, "✓ "+format+"\n", args...)
}

// Failure prints a red failure line
func Failure(w io.Writer, format string, args ...interface{}) {
	failureColor.Fprintf(w, "❌ "+format+"\n", args...)
}

// Info prints a neutral progress line
func Info(w io.Writer, format string, args ...interface{}) {
	infoColor.Fprintf(w, "• "+format+"\n", args...)
}

// Warn prints a yellow warning line
func Warn(w io.Writer, format string, args ...interface{}) {
	warnColor.Fprintf(w, "! "+format+"\n", args...)
}

// Confirm asks the user to approve a destructive operation. It returns
// false when the user declines or input is not interactive.
func Confirm(message string) (bool, error) {
	confirmed := false
	prompt := &survey.Confirm{Message: message}
	if err := survey.AskOne(prompt, &confirmed); err != nil {
		return false, err
	}
	return confirmed, nil
}
