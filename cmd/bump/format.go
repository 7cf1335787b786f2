package main

import (
	"encoding/json"
	"fmt"
	"strings"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// formatJSON formats the response as JSON
func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// formatHuman formats the response in human-readable format
func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *Response:
		return formatResponseHuman(v)
	case *DoctorResponseCLI:
		return formatDoctorHuman(v)
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

// formatResponseHuman formats a wrapped Response in human-readable format
func formatResponseHuman(resp *Response) (string, error) {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("bump v%s\n", resp.BumpVersion))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	switch facts := resp.Facts.(type) {
	case *ResolveFacts:
		writeResolveFacts(&b, facts)
	default:
		b.WriteString("Facts: (see JSON output for details)\n")
	}
	b.WriteString("\n")

	if resp.Provenance != nil {
		b.WriteString("Provenance:\n")
		b.WriteString(fmt.Sprintf("  Session: %s\n", resp.Provenance.SessionID))
		if resp.Provenance.RepoStateID != "" {
			repoStateID := resp.Provenance.RepoStateID
			if len(repoStateID) > 12 {
				repoStateID = repoStateID[:12]
			}
			b.WriteString(fmt.Sprintf("  Repo State: %s (dirty: %v)\n",
				repoStateID, resp.Provenance.RepoStateDirty))
		}
		if len(resp.Provenance.Warnings) > 0 {
			b.WriteString("  Warnings:\n")
			for _, w := range resp.Provenance.Warnings {
				b.WriteString(fmt.Sprintf("    ! %s\n", w))
			}
		}
		b.WriteString(fmt.Sprintf("  Duration: %dms\n", resp.Provenance.QueryDurationMs))
	}

	return b.String(), nil
}

func writeResolveFacts(b *strings.Builder, facts *ResolveFacts) {
	b.WriteString(fmt.Sprintf("  Base version:  %s\n", facts.BaseVersion))
	if facts.Branch != "" {
		b.WriteString(fmt.Sprintf("  Branch:        %s\n", facts.Branch))
	}
	if facts.HeadCommit != "" {
		head := facts.HeadCommit
		if len(head) > 12 {
			head = head[:12]
		}
		b.WriteString(fmt.Sprintf("  Head:          %s\n", head))
	}
	b.WriteString(fmt.Sprintf("  Mode:          %s\n", facts.Mode))
	if facts.HasIncrement {
		b.WriteString(fmt.Sprintf("  Increment:     %s\n", facts.Increment))
	} else {
		b.WriteString("  Increment:     (none resolved)\n")
	}
	b.WriteString(fmt.Sprintf("  Next version:  %s\n", facts.NextVersion))
}

// formatDoctorHuman formats a DoctorResponseCLI in human-readable format
func formatDoctorHuman(resp *DoctorResponseCLI) (string, error) {
	var b strings.Builder

	b.WriteString("bump doctor\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	healthIcon := "✓"
	healthText := "All checks passed"
	if !resp.Healthy {
		healthIcon = "✗"
		healthText = "Issues found"
	}
	b.WriteString(fmt.Sprintf("%s %s\n\n", healthIcon, healthText))

	for _, check := range resp.Checks {
		var icon string
		switch check.Status {
		case "pass":
			icon = "✓"
		case "warn":
			icon = "⚠"
		case "fail":
			icon = "✗"
		default:
			icon = "?"
		}

		b.WriteString(fmt.Sprintf("%s %s: %s\n", icon, check.Name, check.Message))

		if len(check.SuggestedFixes) > 0 {
			b.WriteString("  Suggested fixes:\n")
			for _, fix := range check.SuggestedFixes {
				b.WriteString(fmt.Sprintf("    - %s\n", fix.Description))
				if fix.Command != "" {
					b.WriteString(fmt.Sprintf("      $ %s\n", fix.Command))
				}
				if fix.URL != "" {
					b.WriteString(fmt.Sprintf("      %s\n", fix.URL))
				}
			}
		}
	}

	return b.String(), nil
}
