package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigIssue represents a configuration issue found during validation
type ConfigIssue struct {
	Field       string // Path to the field (e.g., "scrape.automated")
	Issue       string // Description of the issue
	Suggestion  string // How to fix it
	Severity    string // "error" or "warning"
	ReleaseNote string // Which release introduced this change
}

type KnownIssue struct {
	Field      string
	OldName    string
	NewName    string
	Severity   string
	Release    string // Which release introduced the change
	Suggestion string
}

// KnownIssues tracks breaking config changes across releases
var KnownIssues = []KnownIssue{
	{
		Field:      "library_folder",
		OldName:    "library_folder",
		NewName:    "library.folder",
		Severity:   "high",
		Release:    "v0.3.0",
		Suggestion: "Move 'library_folder' under a 'library:' section as 'folder'",
	},
	{
		Field:      "scrape.automated",
		OldName:    "automated",
		NewName:    "daily/experimental/patch",
		Severity:   "high",
		Release:    "v0.4.0",
		Suggestion: "Replace 'scrape.automated' with the individual 'daily', 'experimental' and 'patch' switches",
	},
	{
		Field:      "updates.show_button",
		OldName:    "show_button",
		NewName:    "show",
		Severity:   "warning",
		Release:    "v0.5.0",
		Suggestion: "Rename 'updates.show_button' to 'updates.show'",
	},
}

// CheckDeprecated scans a raw config file for known deprecated keys.
// Returns a list of issues found
func CheckDeprecated(configData []byte) ([]ConfigIssue, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(configData, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	var issues []ConfigIssue
	for _, known := range KnownIssues {
		if issue := checkField(raw, known); issue != nil {
			issues = append(issues, *issue)
		}
	}

	return issues, nil
}

// checkField checks if a specific deprecated field exists in the config
func checkField(raw map[string]interface{}, known KnownIssue) *ConfigIssue {
	parts := strings.Split(known.Field, ".")

	// For root-level fields
	if len(parts) == 1 {
		if _, exists := raw[known.OldName]; exists {
			return &ConfigIssue{
				Field:       known.Field,
				Issue:       fmt.Sprintf("Deprecated field '%s' found at root level (moved in %s)", known.OldName, known.Release),
				Suggestion:  known.Suggestion,
				Severity:    known.Severity,
				ReleaseNote: known.Release,
			}
		}
		return nil
	}

	// Navigate to the parent section for nested fields
	current := raw
	for i := range len(parts) - 1 {
		next, ok := current[parts[i]].(map[string]interface{})
		if !ok {
			return nil // Section doesn't exist
		}
		current = next
	}

	fieldName := parts[len(parts)-1]
	if _, exists := current[fieldName]; exists {
		return &ConfigIssue{
			Field:       known.Field,
			Issue:       fmt.Sprintf("Deprecated field '%s' found (renamed in %s)", known.OldName, known.Release),
			Suggestion:  known.Suggestion,
			Severity:    known.Severity,
			ReleaseNote: known.Release,
		}
	}

	return nil
}

// FormatIssues formats issues for display to the user
func FormatIssues(issues []ConfigIssue) string {
	if len(issues) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\nConfiguration issues detected in your config file:\n\n")

	for i, issue := range issues {
		sb.WriteString(fmt.Sprintf("%d. Field: %s\n", i+1, issue.Field))
		sb.WriteString(fmt.Sprintf("   Issue: %s\n", issue.Issue))
		sb.WriteString(fmt.Sprintf("   Fix: %s\n", issue.Suggestion))
		if i < len(issues)-1 {
			sb.WriteString("\n")
		}
	}

	return sb.String()
}
