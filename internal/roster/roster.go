// Package roster holds the agent directory loaded once at startup.
//
// The directory is read-only after Load; it is shared by every request
// without locking.
package roster

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"

	"backoffice/internal/domain"
)

type record struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type Directory struct {
	agents  []domain.Agent
	byID    map[int64]domain.Agent
	byEmail map[string]domain.Agent
}

// Load reads a JSON array of {id, email, password, displayName}.
// Comments and trailing commas are accepted.
func Load(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Directory, error) {
	var records []record
	if err := json.Unmarshal(jsonc.ToJSON(data), &records); err != nil {
		return nil, fmt.Errorf("parse roster json: %w", err)
	}

	agents := make([]domain.Agent, 0, len(records))
	for i, r := range records {
		a := domain.Agent{
			ID:          r.ID,
			Email:       strings.TrimSpace(r.Email),
			Password:    r.Password,
			DisplayName: strings.TrimSpace(r.DisplayName),
		}
		if a.ID <= 0 {
			return nil, fmt.Errorf("roster entry #%d: id must be a positive integer", i+1)
		}
		if a.Email == "" {
			return nil, fmt.Errorf("roster entry #%d (id %d): email is required", i+1, a.ID)
		}
		agents = append(agents, a)
	}
	return New(agents)
}

// New builds a directory; ids and emails (case-insensitive) must be unique.
func New(agents []domain.Agent) (*Directory, error) {
	d := &Directory{
		agents:  make([]domain.Agent, 0, len(agents)),
		byID:    make(map[int64]domain.Agent, len(agents)),
		byEmail: make(map[string]domain.Agent, len(agents)),
	}
	for _, a := range agents {
		key := emailKey(a.Email)
		if _, dup := d.byID[a.ID]; dup {
			return nil, fmt.Errorf("duplicate agent id %d", a.ID)
		}
		if _, dup := d.byEmail[key]; dup {
			return nil, fmt.Errorf("duplicate agent email %q", a.Email)
		}
		d.byID[a.ID] = a
		d.byEmail[key] = a
		d.agents = append(d.agents, a)
	}
	sort.Slice(d.agents, func(i, j int) bool { return d.agents[i].ID < d.agents[j].ID })
	return d, nil
}

func (d *Directory) Lookup(id int64) (domain.Agent, bool) {
	a, ok := d.byID[id]
	return a, ok
}

// Agents returns a copy of the roster ordered by id.
func (d *Directory) Agents() []domain.Agent {
	out := make([]domain.Agent, len(d.agents))
	copy(out, d.agents)
	return out
}

func (d *Directory) Len() int { return len(d.agents) }

// Authenticate matches email case-insensitively and the password exactly.
// Unknown email and wrong password both yield ErrInvalidCredentials.
func (d *Directory) Authenticate(email, password string) (domain.Agent, error) {
	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return domain.Agent{}, domain.Invalidf("Email and password are required.")
	}
	a, ok := d.byEmail[emailKey(email)]
	if !ok || !passwordMatches(a.Password, password) {
		return domain.Agent{}, domain.ErrInvalidCredentials
	}
	return a, nil
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
