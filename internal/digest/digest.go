// Package digest builds and posts the end-of-day summary of every agent's
// logged entries.
package digest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"backoffice/internal/domain"
)

type EntrySource interface {
	ListDay(ctx context.Context, agentID int64, date string) ([]domain.Entry, error)
	Location() *time.Location
	Today() domain.Day
}

type Roster interface {
	Agents() []domain.Agent
}

type Notifier interface {
	Post(ctx context.Context, text string) error
}

type Summarizer interface {
	Summarize(ctx context.Context, d Digest) (string, error)
}

// Mentioner maps an agent email to a chat mention. An empty result means the
// agent has no chat account.
type Mentioner interface {
	Mention(ctx context.Context, email string) (string, error)
}

// Section is one agent's entries for the day, oldest first.
type Section struct {
	Agent   domain.Agent
	Entries []domain.Entry
}

type Digest struct {
	Day      domain.Day
	Location *time.Location
	Sections []Section
	Idle     []domain.Agent // agents with no entries that day
	Mentions map[int64]string
}

func (d Digest) label(a domain.Agent) string {
	if m := d.Mentions[a.ID]; m != "" {
		return m
	}
	return a.Name()
}

func (d Digest) EntryCount() int {
	n := 0
	for _, s := range d.Sections {
		n += len(s.Entries)
	}
	return n
}

// Build collects the day's entries for every roster agent.
func Build(ctx context.Context, src EntrySource, roster Roster, day domain.Day) (Digest, error) {
	d := Digest{Day: day, Location: src.Location()}
	for _, a := range roster.Agents() {
		entries, err := src.ListDay(ctx, a.ID, day.String())
		if err != nil {
			return Digest{}, fmt.Errorf("digest entries for agent %d: %w", a.ID, err)
		}
		if len(entries) == 0 {
			d.Idle = append(d.Idle, a)
			continue
		}
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].LoggedAt.Before(entries[j].LoggedAt) })
		d.Sections = append(d.Sections, Section{Agent: a, Entries: entries})
	}
	return d, nil
}

// Format renders the digest as Slack mrkdwn.
func Format(d Digest, summary string) string {
	loc := d.Location
	if loc == nil {
		loc = time.Local
	}
	var b strings.Builder
	fmt.Fprintf(&b, "*Daily digest for %s* (%d entries)\n", d.Day, d.EntryCount())
	if s := strings.TrimSpace(summary); s != "" {
		b.WriteString("\n")
		b.WriteString(s)
		b.WriteString("\n")
	}
	for _, s := range d.Sections {
		fmt.Fprintf(&b, "\n*%s* (%d)\n", d.label(s.Agent), len(s.Entries))
		for _, e := range s.Entries {
			b.WriteString("• ")
			b.WriteString(FormatLine(e, loc))
			b.WriteString("\n")
		}
	}
	if len(d.Idle) > 0 {
		names := make([]string, 0, len(d.Idle))
		for _, a := range d.Idle {
			names = append(names, d.label(a))
		}
		fmt.Fprintf(&b, "\n_No entries:_ %s\n", strings.Join(names, ", "))
	}
	return b.String()
}

// FormatLine renders "HH:MM number — action: description", dropping the
// parts that are empty.
func FormatLine(e domain.Entry, loc *time.Location) string {
	line := e.LoggedAt.In(loc).Format("15:04") + " " + e.Number
	action := strings.TrimSpace(e.Action)
	desc := strings.TrimSpace(e.Description)
	switch {
	case action != "" && desc != "":
		line += " — " + action + ": " + desc
	case action != "":
		line += " — " + action
	case desc != "":
		line += " — " + desc
	}
	return line
}

// Runner produces and delivers one digest per call to Run.
type Runner struct {
	Source     EntrySource
	Roster     Roster
	Notifier   Notifier
	Summarizer Summarizer // optional
	Mentions   Mentioner  // optional
	Log        zerolog.Logger
}

// Run posts the digest for today. A failed summary is logged and the digest
// is posted without it.
func (r *Runner) Run(ctx context.Context) error {
	day := r.Source.Today()
	d, err := Build(ctx, r.Source, r.Roster, day)
	if err != nil {
		return err
	}

	if r.Mentions != nil {
		d.Mentions = r.mentions(ctx, d)
	}

	var summary string
	if r.Summarizer != nil && d.EntryCount() > 0 {
		summary, err = r.Summarizer.Summarize(ctx, d)
		if err != nil {
			r.Log.Warn().Err(err).Str("day", day.String()).Msg("digest summary failed")
			summary = ""
		}
	}

	if err := r.Notifier.Post(ctx, Format(d, summary)); err != nil {
		return fmt.Errorf("post digest: %w", err)
	}
	r.Log.Info().
		Str("day", day.String()).
		Int("agents", len(d.Sections)).
		Int("entries", d.EntryCount()).
		Msg("digest posted")
	return nil
}

// mentions resolves chat handles for every agent in the digest. The first
// lookup error disables mentions for this run.
func (r *Runner) mentions(ctx context.Context, d Digest) map[int64]string {
	agents := make([]domain.Agent, 0, len(d.Sections)+len(d.Idle))
	for _, s := range d.Sections {
		agents = append(agents, s.Agent)
	}
	agents = append(agents, d.Idle...)

	out := make(map[int64]string, len(agents))
	for _, a := range agents {
		m, err := r.Mentions.Mention(ctx, a.Email)
		if err != nil {
			r.Log.Warn().Err(err).Msg("digest mentions unavailable")
			return nil
		}
		if m != "" {
			out[a.ID] = m
		}
	}
	return out
}
