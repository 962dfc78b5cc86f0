package versionbumper

// Confirmer asks the operator a yes/no question. It blocks until answered.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(prompt string) (bool, error) { return f(prompt) }

// AssumeYes answers yes to every prompt, for unattended runs.
var AssumeYes = ConfirmFunc(func(string) (bool, error) { return true, nil })
