package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/at-ishikawa/sigmareview/internal/storage"
)

// DefaultStorageName is the storage entry holding the persisted state.
const DefaultStorageName = "sigma-review-storage"

type persistedState struct {
	Corrections []Correction `json:"corrections"`
	Preferences Preferences  `json:"preferences"`
}

func (s persistedState) clone() persistedState {
	return persistedState{
		Corrections: slices.Clone(s.Corrections),
		Preferences: s.Preferences,
	}
}

// Store is the single owner of corrections and preferences. Every mutator
// persists the new state before returning; when persisting fails the
// in-memory state is left unchanged.
type Store struct {
	mu        sync.RWMutex
	storage   storage.Storage
	name      string
	state     persistedState
	defaults  Preferences
	now       func() time.Time
	newID     func() string
	validator *structValidator
	hooks     []func(Preferences)
}

type Option func(*Store)

// WithStorageName overrides the storage entry name.
func WithStorageName(name string) Option {
	return func(s *Store) {
		s.name = name
	}
}

// WithDefaultPreferences sets the preferences used when none are persisted.
func WithDefaultPreferences(p Preferences) Option {
	return func(s *Store) {
		s.defaults = p
	}
}

// WithPreferenceHook registers fn to be called after preferences change.
func WithPreferenceHook(fn func(Preferences)) Option {
	return func(s *Store) {
		s.hooks = append(s.hooks, fn)
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Store) {
		s.newID = newID
	}
}

// NewStore loads the persisted state from st, or starts empty when nothing
// has been saved yet.
func NewStore(ctx context.Context, st storage.Storage, opts ...Option) (*Store, error) {
	v, err := newStructValidator()
	if err != nil {
		return nil, fmt.Errorf("newStructValidator > %w", err)
	}
	s := &Store{
		storage:   st,
		name:      DefaultStorageName,
		defaults:  DefaultPreferences(),
		now:       time.Now,
		newID:     uuid.NewString,
		validator: v,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.state = persistedState{
		Corrections: []Correction{},
		Preferences: s.defaults,
	}
	data, err := st.Load(ctx, s.name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			slog.Debug("no persisted review state", "name", s.name)
			return s, nil
		}
		return nil, fmt.Errorf("storage.Load(%s) > %w", s.name, err)
	}
	if err := json.Unmarshal(data, &s.state); err != nil {
		return nil, fmt.Errorf("decode persisted review state %s: %w", s.name, err)
	}
	if s.state.Corrections == nil {
		s.state.Corrections = []Correction{}
	}
	slog.Debug("loaded review state", "name", s.name, "corrections", len(s.state.Corrections))
	return s, nil
}

// Corrections returns a copy of all corrections in insertion order.
func (s *Store) Corrections() []Correction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.state.Corrections)
}

// Correction returns the correction with id.
func (s *Store) Correction(id string) (Correction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexByID(id)
	if i < 0 {
		return Correction{}, false
	}
	return s.state.Corrections[i], true
}

// CorrectionsForBlock returns the corrections referencing blockID.
func (s *Store) CorrectionsForBlock(blockID string) []Correction {
	return s.filter(func(c Correction) bool { return c.BlockID == blockID })
}

// CorrectionsForHour returns the corrections referencing hourID.
func (s *Store) CorrectionsForHour(hourID string) []Correction {
	return s.filter(func(c Correction) bool { return c.HourID == hourID })
}

func (s *Store) filter(keep func(Correction) bool) []Correction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := []Correction{}
	for _, c := range s.state.Corrections {
		if keep(c) {
			result = append(result, c)
		}
	}
	return result
}

func (s *Store) Preferences() Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Preferences
}

// AddCorrection appends a new correction with a fresh id and timestamp.
// It never merges with existing corrections.
func (s *Store) AddCorrection(ctx context.Context, in CorrectionInput) (Correction, error) {
	c := Correction{
		ID:        s.newID(),
		BlockID:   in.BlockID,
		HourID:    in.HourID,
		AssetType: in.AssetType,
		AssetName: in.AssetName,
		Issue:     in.Issue,
		Priority:  in.Priority,
		Status:    in.Status,
		CreatedAt: s.timestamp(),
		CreatedBy: in.CreatedBy,
	}
	if c.Status == "" {
		c.Status = StatusPending
	}
	if err := s.prepare(&c); err != nil {
		return Correction{}, err
	}

	err := s.mutate(ctx, func(state *persistedState) error {
		state.Corrections = append(state.Corrections, c)
		return nil
	})
	if err != nil {
		return Correction{}, err
	}
	return c, nil
}

// UpsertCorrectionForBlock merges patch into the first correction of blockID,
// keeping its id and createdAt. Without one, a correction is created with
// defaults for the omitted fields.
func (s *Store) UpsertCorrectionForBlock(ctx context.Context, blockID string, patch CorrectionPatch) (Correction, error) {
	var result Correction
	err := s.mutate(ctx, func(state *persistedState) error {
		i := slices.IndexFunc(state.Corrections, func(c Correction) bool { return c.BlockID == blockID })
		if i >= 0 {
			c := state.Corrections[i]
			patch.apply(&c)
			if err := s.prepare(&c); err != nil {
				return err
			}
			state.Corrections[i] = c
			result = c
			return nil
		}

		c := Correction{
			ID:        s.newID(),
			BlockID:   blockID,
			AssetType: AssetTypePrompt,
			AssetName: BlockAssetName,
			Status:    StatusPending,
			CreatedAt: s.timestamp(),
		}
		patch.apply(&c)
		if err := s.prepare(&c); err != nil {
			return err
		}
		state.Corrections = append(state.Corrections, c)
		result = c
		return nil
	})
	if err != nil {
		return Correction{}, err
	}
	return result, nil
}

// UpdateCorrectionByID merges patch into the correction with id. It is a
// no-op when no such correction exists.
func (s *Store) UpdateCorrectionByID(ctx context.Context, id string, patch CorrectionPatch) error {
	return s.mutate(ctx, func(state *persistedState) error {
		i := slices.IndexFunc(state.Corrections, func(c Correction) bool { return c.ID == id })
		if i < 0 {
			return errNoChange
		}
		c := state.Corrections[i]
		patch.apply(&c)
		if err := s.prepare(&c); err != nil {
			return err
		}
		state.Corrections[i] = c
		return nil
	})
}

// DeleteCorrectionByID removes the correction with id. It is a no-op when no
// such correction exists.
func (s *Store) DeleteCorrectionByID(ctx context.Context, id string) error {
	return s.mutate(ctx, func(state *persistedState) error {
		i := slices.IndexFunc(state.Corrections, func(c Correction) bool { return c.ID == id })
		if i < 0 {
			return errNoChange
		}
		state.Corrections = slices.Delete(state.Corrections, i, i+1)
		return nil
	})
}

// AppendImported appends corrections that carry their own id and createdAt,
// skipping ids already present. It returns the number appended.
func (s *Store) AppendImported(ctx context.Context, corrections []Correction) (int, error) {
	prepared := make([]Correction, 0, len(corrections))
	for _, c := range corrections {
		c.CreatedAt = c.CreatedAt.UTC()
		if err := s.prepare(&c); err != nil {
			return 0, fmt.Errorf("correction %s: %w", c.ID, err)
		}
		prepared = append(prepared, c)
	}

	var added int
	err := s.mutate(ctx, func(state *persistedState) error {
		seen := make(map[string]bool, len(state.Corrections))
		for _, c := range state.Corrections {
			seen[c.ID] = true
		}
		for _, c := range prepared {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			state.Corrections = append(state.Corrections, c)
			added++
		}
		if added == 0 {
			return errNoChange
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

func (s *Store) updatePreferences(ctx context.Context, fn func(*Preferences)) error {
	var updated Preferences
	err := s.mutate(ctx, func(state *persistedState) error {
		fn(&state.Preferences)
		if err := s.validator.check(state.Preferences); err != nil {
			return err
		}
		updated = state.Preferences
		return nil
	})
	if err != nil {
		return err
	}
	for _, hook := range s.hooks {
		hook(updated)
	}
	return nil
}

var errNoChange = errors.New("no change")

func (s *Store) mutate(ctx context.Context, fn func(state *persistedState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.clone()
	if err := fn(&next); err != nil {
		if errors.Is(err, errNoChange) {
			return nil
		}
		return err
	}

	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode review state: %w", err)
	}
	if err := s.storage.Save(ctx, s.name, data); err != nil {
		slog.Error("failed to persist review state", "name", s.name, "error", err)
		return fmt.Errorf("storage.Save(%s) > %w", s.name, err)
	}
	s.state = next
	return nil
}

func (s *Store) prepare(c *Correction) error {
	return s.validator.check(c)
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *Store) indexByID(id string) int {
	return slices.IndexFunc(s.state.Corrections, func(c Correction) bool { return c.ID == id })
}
