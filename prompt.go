package main

import (
	"errors"

	"github.com/charmbracelet/huh"

	versionbumper "github.com/jonboland/versionbump/pkg"
)

// huhConfirmer asks yes/no questions on the terminal.
type huhConfirmer struct{}

func (huhConfirmer) Confirm(prompt string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(prompt).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, versionbumper.ErrAborted
	}
	return ok, err
}
