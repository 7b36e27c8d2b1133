// Package tickets implements entry logging scoped by agent and local day.
package tickets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"backoffice/internal/domain"
)

type Store interface {
	GetAgent(ctx context.Context, id int64) (domain.Agent, error)
	EnsureAgent(ctx context.Context, a domain.Agent) (domain.Agent, error)
	InsertEntry(ctx context.Context, e domain.Entry) (domain.Entry, error)
	GetEntry(ctx context.Context, id int64) (domain.Entry, error)
	UpdateEntry(ctx context.Context, e domain.Entry) error
	DeleteEntry(ctx context.Context, id int64) error
	ListEntries(ctx context.Context, agentID int64, from, to time.Time) ([]domain.Entry, error)
}

type Directory interface {
	Lookup(id int64) (domain.Agent, bool)
}

type Options struct {
	Location *time.Location
	Catalog  *domain.ActionCatalog
	Now      func() time.Time
}

type Service struct {
	store   Store
	agents  Directory
	catalog *domain.ActionCatalog
	loc     *time.Location
	now     func() time.Time
}

func NewService(store Store, agents Directory, opts Options) *Service {
	s := &Service{
		store:   store,
		agents:  agents,
		catalog: opts.Catalog,
		loc:     opts.Location,
		now:     opts.Now,
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *Service) Location() *time.Location { return s.loc }

// Today is the current local calendar day.
func (s *Service) Today() domain.Day {
	return domain.DayOf(s.now().In(s.loc))
}

// ListDay returns the agent's entries within the local day named by date,
// newest first. An empty result is not an error.
func (s *Service) ListDay(ctx context.Context, agentID int64, date string) ([]domain.Entry, error) {
	if agentID <= 0 {
		return nil, domain.Invalidf("agentId and date (YYYY-MM-DD) are required.")
	}
	day, err := domain.ParseDay(date)
	if err != nil {
		return nil, err
	}
	w := day.Window(s.loc)
	entries, err := s.store.ListEntries(ctx, agentID, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("list day %s for agent %d: %w", day, agentID, err)
	}
	return entries, nil
}

func (s *Service) Get(ctx context.Context, id int64) (domain.Entry, error) {
	return s.store.GetEntry(ctx, id)
}

// Create logs a new entry stamped with the current local time.
func (s *Service) Create(ctx context.Context, in domain.NewEntry) (domain.Entry, error) {
	number := strings.TrimSpace(in.Number)
	if number == "" {
		return domain.Entry{}, domain.Invalidf("Ticket number is required.")
	}
	if in.AgentID <= 0 {
		return domain.Entry{}, domain.Invalidf("agentId is required.")
	}

	agent, err := s.ensureAgent(ctx, in.AgentID)
	if err != nil {
		return domain.Entry{}, err
	}

	action := strings.TrimSpace(in.Action)
	description := strings.TrimSpace(in.Description)
	if description == "" {
		if def, ok := s.catalog.DefaultDescription(action); ok {
			description = def
		}
	}

	return s.store.InsertEntry(ctx, domain.Entry{
		Number:      number,
		AgentID:     agent.ID,
		Action:      action,
		Description: description,
		LoggedAt:    s.now().In(s.loc),
	})
}

// Update overwrites number, action and description. The timestamp changes
// only when BumpTime is set.
func (s *Service) Update(ctx context.Context, id int64, in domain.EntryUpdate) (domain.Entry, error) {
	number := strings.TrimSpace(in.Number)
	if number == "" {
		return domain.Entry{}, domain.Invalidf("Ticket number is required.")
	}

	e, err := s.store.GetEntry(ctx, id)
	if err != nil {
		return domain.Entry{}, err
	}
	e.Number = number
	e.Action = strings.TrimSpace(in.Action)
	e.Description = strings.TrimSpace(in.Description)
	if in.BumpTime {
		e.LoggedAt = s.now().In(s.loc)
	}

	if err := s.store.UpdateEntry(ctx, e); err != nil {
		return domain.Entry{}, err
	}
	return e, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.store.DeleteEntry(ctx, id)
}

// ensureAgent resolves the agent from the store, falling back to the roster
// and mirroring the roster copy on first use.
func (s *Service) ensureAgent(ctx context.Context, id int64) (domain.Agent, error) {
	a, err := s.store.GetAgent(ctx, id)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Agent{}, err
	}

	fromRoster, ok := s.agents.Lookup(id)
	if !ok {
		return domain.Agent{}, &domain.AgentNotFoundError{ID: id}
	}
	return s.store.EnsureAgent(ctx, fromRoster)
}
