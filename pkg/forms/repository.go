// Package forms persists saved form schemas as a single JSON list stored
// under one key of a storage.KV.
package forms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/storage"
)

// DefaultKey is the storage key holding the saved form list.
const DefaultKey = "savedForms"

// ErrNoStore is returned when a Repository has no backing store.
var ErrNoStore = errors.New("forms: storage backend is required")

// Option configures a Repository.
type Option func(*Repository)

// WithKey overrides DefaultKey.
func WithKey(key string) Option {
	return func(r *Repository) {
		if key != "" {
			r.key = key
		}
	}
}

// WithClock overrides the clock used to stamp CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		if now != nil {
			r.now = now
		}
	}
}

// WithIDGenerator overrides the id source used when a schema has no id.
func WithIDGenerator(fn func() string) Option {
	return func(r *Repository) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// WithLogger sets the repository logger.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Repository reads and writes the saved form list. Every write rewrites the
// whole list, so callers never see a partially updated collection.
type Repository struct {
	kv     storage.KV
	key    string
	now    func() time.Time
	newID  func() string
	logger *zap.SugaredLogger
}

// New builds a Repository over kv.
func New(kv storage.KV, options ...Option) *Repository {
	r := &Repository{
		kv:     kv,
		key:    DefaultKey,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: zap.NewNop().Sugar(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// SaveForm appends schema to the stored list, assigning an id and creation
// timestamp when absent, and returns the stored copy. Saving never replaces
// an existing entry.
func (r *Repository) SaveForm(ctx context.Context, schema model.FormSchema) (model.FormSchema, error) {
	if r.kv == nil {
		return model.FormSchema{}, ErrNoStore
	}
	saved := schema.Clone()
	if saved.ID == "" {
		saved.ID = r.newID()
	}
	if saved.CreatedAt == "" {
		saved.CreatedAt = r.now().UTC().Format(time.RFC3339)
	}

	list, err := r.GetSavedForms(ctx)
	if err != nil {
		return model.FormSchema{}, err
	}
	list = append(list, saved)
	if err := r.write(ctx, list); err != nil {
		return model.FormSchema{}, err
	}
	r.logger.Debugw("form saved", "id", saved.ID, "name", saved.Name, "fields", len(saved.Fields))
	return saved.Clone(), nil
}

// GetSavedForms returns every stored schema in save order. A missing key
// yields an empty list; an undecodable payload is logged and treated as
// empty.
func (r *Repository) GetSavedForms(ctx context.Context) ([]model.FormSchema, error) {
	if r.kv == nil {
		return nil, ErrNoStore
	}
	data, ok, err := r.kv.Get(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("forms: load %s: %w", r.key, err)
	}
	if !ok || len(data) == 0 {
		return []model.FormSchema{}, nil
	}
	var list []model.FormSchema
	if err := json.Unmarshal(data, &list); err != nil {
		r.logger.Warnw("discarding unreadable saved forms", "key", r.key, zap.Error(err))
		return []model.FormSchema{}, nil
	}
	if list == nil {
		list = []model.FormSchema{}
	}
	return list, nil
}

// GetFormByID returns the first stored schema with id.
func (r *Repository) GetFormByID(ctx context.Context, id string) (model.FormSchema, bool, error) {
	list, err := r.GetSavedForms(ctx)
	if err != nil {
		return model.FormSchema{}, false, err
	}
	for _, schema := range list {
		if schema.ID == id {
			return schema, true, nil
		}
	}
	return model.FormSchema{}, false, nil
}

// DeleteFormByID removes every stored schema with id. It reports whether
// anything was removed.
func (r *Repository) DeleteFormByID(ctx context.Context, id string) (bool, error) {
	list, err := r.GetSavedForms(ctx)
	if err != nil {
		return false, err
	}
	kept := list[:0]
	for _, schema := range list {
		if schema.ID != id {
			kept = append(kept, schema)
		}
	}
	removed := len(kept) != len(list)
	if !removed {
		return false, nil
	}
	if err := r.write(ctx, kept); err != nil {
		return false, err
	}
	r.logger.Debugw("form deleted", "id", id)
	return true, nil
}

// ClearAllForms removes the stored list.
func (r *Repository) ClearAllForms(ctx context.Context) error {
	if r.kv == nil {
		return ErrNoStore
	}
	if err := r.kv.Delete(ctx, r.key); err != nil {
		return fmt.Errorf("forms: clear %s: %w", r.key, err)
	}
	r.logger.Debugw("saved forms cleared", "key", r.key)
	return nil
}

func (r *Repository) write(ctx context.Context, list []model.FormSchema) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("forms: encode: %w", err)
	}
	if err := r.kv.Set(ctx, r.key, data); err != nil {
		return fmt.Errorf("forms: store %s: %w", r.key, err)
	}
	return nil
}
