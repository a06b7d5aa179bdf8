package store

import (
	"bytes"
	"context"
	"errors"

	json "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"flowboard/internal/board"
	"flowboard/internal/model"
)

const (
	// CurrentKey holds the persisted envelope.
	CurrentKey = "flowboard.demo.v2"
	// LegacyKey holds envelopes written before users existed. It is only ever read.
	LegacyKey = "flowboard.demo.v1"
)

// Gateway loads and saves the board envelope. Every storage failure is logged and swallowed:
// the in-memory state stays the source of truth for the session.
type Gateway struct {
	kv  KV
	log logrus.FieldLogger
}

func NewGateway(kv KV, log logrus.FieldLogger) *Gateway {
	if kv == nil {
		kv = NewMemoryKV()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Gateway{kv: kv, log: log.WithField("component", "store")}
}

// wireEnvelope distinguishes a missing users array (legacy shape) from an empty one.
type wireEnvelope struct {
	Projects        []model.Project `json:"projects"`
	Users           *[]model.User   `json:"users"`
	Tasks           []model.Task    `json:"tasks"`
	ActiveProjectID *string         `json:"activeProjectId"`
	View            model.View      `json:"view"`
}

// Load returns the persisted envelope, or nil when nothing usable is stored. migrated reports
// that the envelope predates users and had seed users filled in; the caller should save it so
// those ids stick.
func (g *Gateway) Load(ctx context.Context) (*model.Envelope, bool) {
	for _, key := range []string{CurrentKey, LegacyKey} {
		raw, ok, err := g.kv.Get(ctx, key)
		if err != nil {
			g.log.WithError(err).WithField("key", key).Warn("read persisted state")
			return nil, false
		}
		if !ok {
			continue
		}
		env, migrated, err := decodeEnvelope([]byte(raw))
		if err != nil {
			g.log.WithError(err).WithField("key", key).Warn("discarding malformed persisted state")
			return nil, false
		}
		if migrated {
			g.log.WithField("key", key).Info("migrated legacy state: seeded users")
		}
		return env, migrated
	}
	return nil, false
}

// Save writes env under CurrentKey.
func (g *Gateway) Save(ctx context.Context, env model.Envelope) {
	b, err := encodeEnvelope(env)
	if err != nil {
		g.log.WithError(err).Warn("encode state")
		return
	}
	if err := g.kv.Set(ctx, CurrentKey, string(b)); err != nil {
		g.log.WithError(err).Warn("persist state")
	}
}

// Reset removes both keys and returns fresh seed state for the caller to adopt and save.
func (g *Gateway) Reset(ctx context.Context) model.Envelope {
	for _, key := range []string{CurrentKey, LegacyKey} {
		if err := g.kv.Remove(ctx, key); err != nil {
			g.log.WithError(err).WithField("key", key).Warn("remove persisted state")
		}
	}
	return board.SeedEnvelope()
}

func encodeEnvelope(env model.Envelope) ([]byte, error) {
	if env.Projects == nil {
		env.Projects = []model.Project{}
	}
	if env.Users == nil {
		env.Users = []model.User{}
	}
	if env.Tasks == nil {
		env.Tasks = []model.Task{}
	}
	return json.Marshal(env)
}

func decodeEnvelope(b []byte) (*model.Envelope, bool, error) {
	if t := bytes.TrimSpace(b); len(t) == 0 || t[0] != '{' {
		return nil, false, errors.New("envelope is not a JSON object")
	}
	var w wireEnvelope
	if err := json.Unmarshal(b, &w); err != nil {
		return nil, false, err
	}
	env := &model.Envelope{
		Projects:        w.Projects,
		Tasks:           w.Tasks,
		ActiveProjectID: w.ActiveProjectID,
		View:            w.View,
	}
	migrated := false
	if w.Users == nil {
		env.Users = board.SeedUsers()
		migrated = true
	} else {
		env.Users = *w.Users
	}
	if env.Projects == nil {
		env.Projects = []model.Project{}
	}
	if env.Users == nil {
		env.Users = []model.User{}
	}
	if env.Tasks == nil {
		env.Tasks = []model.Task{}
	}
	return env, migrated, nil
}
