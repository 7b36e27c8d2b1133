package roster

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"backoffice/internal/domain"
)

const sampleRoster = `[
	// seeded support agents
	{"id": 2, "email": "Bob@Example.com", "password": "hunter2", "displayName": ""},
	{"id": 1, "email": "alice@example.com", "password": "s3cret", "displayName": "Alice A."},
]`

func newTestDirectory(t *testing.T) *Directory {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agents.json")
	if err := os.WriteFile(path, []byte(sampleRoster), 0o644); err != nil {
		t.Fatalf("write roster: %v", err)
	}
	d, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return d
}

func TestLoadRosterWithComments(t *testing.T) {
	d := newTestDirectory(t)

	if d.Len() != 2 {
		t.Fatalf("expected 2 agents, got %d", d.Len())
	}
	agents := d.Agents()
	if agents[0].ID != 1 || agents[1].ID != 2 {
		t.Fatalf("agents should be ordered by id: %+v", agents)
	}
	a, ok := d.Lookup(2)
	if !ok {
		t.Fatal("expected agent 2 to be found")
	}
	if a.Name() != "Bob@Example.com" {
		t.Fatalf("display name should fall back to email, got %q", a.Name())
	}
	if _, ok := d.Lookup(99); ok {
		t.Fatal("did not expect agent 99")
	}
}

func TestAuthenticate(t *testing.T) {
	d := newTestDirectory(t)

	a, err := d.Authenticate("  ALICE@example.COM ", "s3cret")
	if err != nil {
		t.Fatalf("expected case-insensitive email login to succeed: %v", err)
	}
	if a.ID != 1 || a.Name() != "Alice A." {
		t.Fatalf("unexpected agent: %+v", a)
	}

	if _, err := d.Authenticate("alice@example.com", "S3cret"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for wrong password, got %v", err)
	}
	if _, err := d.Authenticate("nobody@example.com", "s3cret"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown email, got %v", err)
	}
	if _, err := d.Authenticate("alice@example.com", "s3cret "); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("password must be compared exactly, got %v", err)
	}

	for _, tc := range [][2]string{{"", "x"}, {"a@b.c", ""}, {"  ", "  "}} {
		_, err := d.Authenticate(tc[0], tc[1])
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("Authenticate(%q, %q) expected validation error, got %v", tc[0], tc[1], err)
		}
	}
}

func TestAuthenticateBcryptHash(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	d, err := New([]domain.Agent{{ID: 7, Email: "carol@example.com", Password: hash}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := d.Authenticate("carol@example.com", "correct horse"); err != nil {
		t.Fatalf("expected bcrypt login to succeed: %v", err)
	}
	if _, err := d.Authenticate("carol@example.com", hash); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("the hash itself must not be accepted as a password, got %v", err)
	}
}

func TestParseRejectsInvalidRosters(t *testing.T) {
	cases := map[string]string{
		"not json":        `{`,
		"zero id":         `[{"id": 0, "email": "a@b.c", "password": "x"}]`,
		"missing email":   `[{"id": 1, "email": " ", "password": "x"}]`,
		"duplicate id":    `[{"id": 1, "email": "a@b.c"}, {"id": 1, "email": "d@e.f"}]`,
		"duplicate email": `[{"id": 1, "email": "a@b.c"}, {"id": 2, "email": "A@B.C"}]`,
	}
	for name, data := range cases {
		if _, err := Parse([]byte(data)); err == nil {
			t.Fatalf("%s: expected Parse to fail", name)
		}
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected Load to fail for a missing file")
	}
}

func TestEmptyPasswordNeverMatches(t *testing.T) {
	d, err := New([]domain.Agent{{ID: 1, Email: "a@b.c"}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := d.Authenticate("a@b.c", "anything"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}
