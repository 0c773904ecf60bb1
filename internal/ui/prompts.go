package ui

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"

	"blenderctl/internal/buildinfo"
)

// PromptLibraryFolder asks where downloaded builds should live
func PromptLibraryFolder(defaultFolder string) (string, error) {
	var folder string
	prompt := &survey.Input{
		Message: "Where should builds be stored?",
		Default: defaultFolder,
		Help:    "One subfolder per branch is created inside (stable, daily, experimental, ...)",
	}

	if err := survey.AskOne(prompt, &folder, survey.WithValidator(survey.Required)); err != nil {
		return "", err
	}
	return folder, nil
}

// PromptScrapeSources asks which remote sources to poll
func PromptScrapeSources() ([]string, error) {
	var selected []string
	prompt := &survey.MultiSelect{
		Message: "Which sources should be checked for builds?",
		Options: []string{
			buildinfo.BranchStable,
			buildinfo.BranchDaily,
			buildinfo.BranchExperimental,
			buildinfo.BranchPatch,
			buildinfo.BranchBforartists,
		},
		Default: []string{buildinfo.BranchStable, buildinfo.BranchDaily},
	}

	if err := survey.AskOne(prompt, &selected); err != nil {
		return nil, err
	}
	return selected, nil
}

// PromptUpdateBehavior asks how aggressively updates should be offered
func PromptUpdateBehavior() (string, error) {
	var behavior string
	prompt := &survey.Select{
		Message: "How far may update offers jump?",
		Options: []string{"patch", "minor", "major"},
		Default: "patch",
		Help:    "patch: 4.2.1 to 4.2.2 only; minor: also 4.2 to 4.3; major: any newer release",
	}

	if err := survey.AskOne(prompt, &behavior); err != nil {
		return "", err
	}
	return behavior, nil
}

// SelectBuild lets the user pick one build from a list
func SelectBuild(message string, builds []buildinfo.BuildInfo) (*buildinfo.BuildInfo, error) {
	if len(builds) == 0 {
		return nil, fmt.Errorf("no builds to select from")
	}

	options := make([]string, len(builds))
	for i, b := range builds {
		options[i] = fmt.Sprintf("%s (%s)", b.DisplayName(), b.Branch)
	}

	var selected string
	prompt := &survey.Select{
		Message:  message,
		Options:  options,
		PageSize: 10,
	}

	if err := survey.AskOne(prompt, &selected); err != nil {
		return nil, err
	}

	for i, option := range options {
		if option == selected {
			return &builds[i], nil
		}
	}
	return nil, fmt.Errorf("build not found")
}

// Confirm asks the user for confirmation
func Confirm(message string) (bool, error) {
	var confirmed bool
	prompt := &survey.Confirm{
		Message: message,
		Default: true,
	}

	if err := survey.AskOne(prompt, &confirmed); err != nil {
		return false, err
	}
	return confirmed, nil
}
