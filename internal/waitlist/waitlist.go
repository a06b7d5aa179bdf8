package waitlist

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"sync"
	"time"
)

var ErrInvalidEmail = errors.New("invalid email address")

type Outcome int

const (
	Created Outcome = iota + 1
	Duplicate
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case Duplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// Submitter records an email on the waitlist exactly once.
type Submitter interface {
	Submit(ctx context.Context, email string) (Outcome, error)
}

const maxEmailLen = 254

// NormalizeEmail accepts a bare address (no display name) and lowercases it.
func NormalizeEmail(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" || len(s) > maxEmailLen {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Name != "" || addr.Address != s {
		return "", ErrInvalidEmail
	}
	at := strings.LastIndexByte(s, '@')
	if at <= 0 || !strings.Contains(s[at+1:], ".") {
		return "", ErrInvalidEmail
	}
	return strings.ToLower(s), nil
}

// MemoryStore is an in-process waitlist for local runs without a database.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[string]time.Time{}}
}

func (m *MemoryStore) Submit(_ context.Context, email string) (Outcome, error) {
	addr, err := NormalizeEmail(email)
	if err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[addr]; ok {
		return Duplicate, nil
	}
	m.entries[addr] = time.Now().UTC()
	return Created, nil
}

func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
