package ui

import (
	"errors"

	"github.com/AlecAivazis/survey/v2"
)

// ErrNonInteractive is returned by prompts while non-interactive mode is on.
var ErrNonInteractive = errors.New("input required but running non-interactively")

// PromptYesNo prompts the user for a yes/no answer
func (u *UI) PromptYesNo(prompt string, defaultYes bool) (bool, error) {
	if u.nonInteractive {
		return false, ErrNonInteractive
	}

	var result bool
	p := &survey.Confirm{
		Message: prompt,
		Default: defaultYes,
	}

	err := survey.AskOne(p, &result)
	return result, err
}

// PromptInputRequired prompts for required input (cannot be empty)
func (u *UI) PromptInputRequired(prompt, help string) (string, error) {
	if u.nonInteractive {
		return "", ErrNonInteractive
	}

	var result string
	p := &survey.Input{
		Message: prompt,
		Help:    help,
	}

	err := survey.AskOne(p, &result, survey.WithValidator(survey.Required))
	return result, err
}

// PromptPassword prompts for a secret without echoing it
func (u *UI) PromptPassword(prompt string) (string, error) {
	if u.nonInteractive {
		return "", ErrNonInteractive
	}

	var result string
	p := &survey.Password{
		Message: prompt,
	}

	err := survey.AskOne(p, &result, survey.WithValidator(survey.Required))
	return result, err
}
