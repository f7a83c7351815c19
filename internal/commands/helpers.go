package commands

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// confirm prompts before a destructive action. When yes is set the prompt
// is skipped; when stdin is not a terminal the action is refused so
// scripts must opt in explicitly.
func confirm(title string, yes bool) (bool, error) {
	if yes {
		return true, nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, fmt.Errorf("refusing to proceed without confirmation; pass --yes")
	}

	ok := false
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Affirmative("Yes").
			Negative("Cancel").
			Value(&ok),
	))
	if err := form.Run(); err != nil {
		return false, fmt.Errorf("confirm prompt: %w", err)
	}

	return ok, nil
}

// outputWidth returns the terminal width for rendering, capped so wide
// terminals don't produce unreadable lines.
func outputWidth() int {
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 20 {
			if w > 100 {
				return 100
			}
			return w
		}
	}
	return 100
}

// isTTY reports whether stdout is an interactive terminal.
func isTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
