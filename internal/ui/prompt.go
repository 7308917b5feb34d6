// Package ui provides the terminal-facing pieces: interactivity detection
// and the masked password prompt.
package ui

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// IsInteractive reports whether a human is at the terminal.
//
// Returns false if:
//   - stdin is not a terminal (piped input, CI/CD)
//   - CI=true is set (common CI/CD convention)
//
// The document itself often arrives on stdin, so the prompt reads from
// /dev/tty when available rather than competing with the input stream.
func IsInteractive() bool {
	if os.Getenv("CI") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// TerminalPrompter reads a password from the controlling terminal without
// echo. It implements pgimportdoc.PasswordPrompter.
type TerminalPrompter struct{}

// NewTerminalPrompter creates a TerminalPrompter.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{}
}

// PromptPassword writes the prompt to stderr and reads the password with
// echo disabled. Stdin may be carrying the document, so the prompt prefers
// the controlling terminal.
func (p *TerminalPrompter) PromptPassword(prompt string) (string, error) {
	tty, err := os.Open("/dev/tty")
	if err != nil {
		// No controlling terminal; fall back to stdin.
		tty = os.Stdin
	} else {
		defer tty.Close()
	}

	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(tty.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	return string(password), nil
}
