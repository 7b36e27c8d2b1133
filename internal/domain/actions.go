package domain

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ActionCatalog groups the action labels offered by the dashboard into modes.
// Modes are presentation only; an entry stores the action label, never the mode.
type ActionCatalog struct {
	Modes []Mode `yaml:"modes" json:"modes"`
}

type Mode struct {
	ID      string   `yaml:"id" json:"id"`
	Label   string   `yaml:"label" json:"label"`
	Actions []Action `yaml:"actions" json:"actions"`
}

type Action struct {
	Label              string `yaml:"label" json:"label"`
	DefaultDescription string `yaml:"default_description" json:"defaultDescription"`
}

func DefaultActionCatalog() *ActionCatalog {
	return &ActionCatalog{Modes: []Mode{
		{
			ID:    "ticket",
			Label: "Tickets",
			Actions: []Action{
				{Label: "Replied to customer", DefaultDescription: "Sent a reply to the customer."},
				{Label: "Escalated", DefaultDescription: "Escalated to the next support tier."},
				{Label: "Assigned", DefaultDescription: "Assigned to the responsible team."},
				{Label: "Closed", DefaultDescription: "Resolved and closed the ticket."},
				{Label: "Reopened", DefaultDescription: "Reopened after customer follow-up."},
			},
		},
		{
			ID:    "request",
			Label: "Requests",
			Actions: []Action{
				{Label: "Processed request", DefaultDescription: "Completed the requested change."},
				{Label: "Requested information", DefaultDescription: "Asked the requester for missing details."},
				{Label: "Rejected request", DefaultDescription: "Declined the request."},
				{Label: "Forwarded request", DefaultDescription: "Forwarded to the owning department."},
			},
		},
	}}
}

func LoadActionCatalog(path string) (*ActionCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read action catalog: %w", err)
	}
	var c ActionCatalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse action catalog yaml: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *ActionCatalog) validate() error {
	if len(c.Modes) == 0 {
		return fmt.Errorf("action catalog has no modes")
	}
	seen := make(map[string]bool, len(c.Modes))
	for i, m := range c.Modes {
		id := strings.TrimSpace(m.ID)
		if id == "" {
			return fmt.Errorf("mode #%d has no id", i+1)
		}
		if seen[id] {
			return fmt.Errorf("duplicate mode id %q", id)
		}
		seen[id] = true
		for j, a := range m.Actions {
			if strings.TrimSpace(a.Label) == "" {
				return fmt.Errorf("mode %q action #%d has no label", id, j+1)
			}
		}
	}
	return nil
}

// DefaultDescription returns the default description of the first action
// whose label matches (case-insensitive) across all modes.
func (c *ActionCatalog) DefaultDescription(action string) (string, bool) {
	if c == nil {
		return "", false
	}
	action = normalizeLabel(action)
	if action == "" {
		return "", false
	}
	for _, m := range c.Modes {
		for _, a := range m.Actions {
			if normalizeLabel(a.Label) == action {
				return a.DefaultDescription, a.DefaultDescription != ""
			}
		}
	}
	return "", false
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
