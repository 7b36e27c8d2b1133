// Package report renders a day's entries for pasting into a spreadsheet.
package report

import (
	"strings"
	"time"

	"backoffice/internal/domain"
)

const tsvHeader = "TicketID\tAgent\tWhat did you do\tDescription\tTime"

// BuildTSV renders entries as tab-separated rows with CRLF line endings,
// one row per entry in the given order. Times are shown as local HH:MM.
func BuildTSV(agentName string, entries []domain.Entry, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	var b strings.Builder
	b.WriteString(tsvHeader)
	b.WriteString("\n")
	agent := cleanField(agentName)
	for _, e := range entries {
		b.WriteString(strings.Join([]string{
			cleanField(e.Number),
			agent,
			cleanField(e.Action),
			cleanField(e.Description),
			e.LoggedAt.In(loc).Format("15:04"),
		}, "\t"))
		b.WriteString("\n")
	}
	return normalizeCRLF(b.String())
}

// ExportFilename is the attachment name for an agent's day export.
func ExportFilename(agentName string, day domain.Day) string {
	name := strings.Join(strings.Fields(agentName), "_")
	if name == "" {
		name = "agent"
	}
	return sanitizeFilename("tickets_" + name + "_" + day.String() + ".tsv")
}

// cleanField keeps a value on one spreadsheet cell.
func cleanField(s string) string {
	return strings.TrimSpace(fieldReplacer.Replace(s))
}

var fieldReplacer = strings.NewReplacer("\r", " ", "\n", " ", "\t", " ")

func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_", ";", "_")
	return replacer.Replace(s)
}

func normalizeCRLF(s string) string {
	normalized := strings.ReplaceAll(s, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\n", "\r\n")
	return normalized
}
