package pokemon

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"pokehub/internal/events"
	"pokehub/pkg/apperr"
	"pokehub/pkg/models"
)

// RecordError is one record the upsert could not write.
type RecordError struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

type UpsertResult struct {
	Created int           `json:"created"`
	Updated int           `json:"updated"`
	Errors  []RecordError `json:"errors,omitempty"`
}

func (r UpsertResult) Processed() int { return r.Created + r.Updated }

// UpsertMany writes each record keyed by name: insert when the name is new,
// otherwise overwrite everything but id and created_at. A failing record is
// recorded in Errors and the batch carries on.
func (r *Repo) UpsertMany(ctx context.Context, records []models.Pokemon) UpsertResult {
	res := UpsertResult{}
	for _, p := range records {
		stored, created, err := r.Upsert(ctx, p)
		if err != nil {
			r.Log.WithError(err).WithField("name", p.Name).Error("upsert failed")
			res.Errors = append(res.Errors, RecordError{Name: p.Name, Error: err.Error()})
			continue
		}
		if created {
			res.Created++
			r.publish(events.TypeCreated, stored)
		} else {
			res.Updated++
			r.publish(events.TypeUpdated, stored)
		}
	}
	return res
}

// Upsert writes a single record and reports whether it was newly created.
// The lookup and the write share one immediate transaction, so concurrent
// runs touching the same name serialize instead of racing.
func (r *Repo) Upsert(ctx context.Context, p models.Pokemon) (models.Pokemon, bool, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return models.Pokemon{}, false, fmt.Errorf("upsert: name required: %w", apperr.ErrValidation)
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Pokemon{}, false, fmt.Errorf("begin upsert %s: %v: %w", p.Name, err, apperr.ErrPersistence)
	}
	defer tx.Rollback()

	var (
		id        string
		createdAt time.Time
	)
	err = tx.QueryRowContext(ctx, `SELECT id, created_at FROM pokemon WHERE name = ?`, p.Name).Scan(&id, &createdAt)

	now := r.now()
	created := false
	switch {
	case errors.Is(err, sql.ErrNoRows):
		p.ID = uuid.NewString()
		p.CreatedAt = now
		p.UpdatedAt = now
		if err := insert(ctx, tx, p); err != nil {
			return models.Pokemon{}, false, err
		}
		created = true
	case err != nil:
		return models.Pokemon{}, false, fmt.Errorf("lookup %s: %v: %w", p.Name, err, apperr.ErrPersistence)
	default:
		p.ID = id
		p.CreatedAt = createdAt
		p.UpdatedAt = now
		if err := update(ctx, tx, p); err != nil {
			return models.Pokemon{}, false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return models.Pokemon{}, false, fmt.Errorf("commit upsert %s: %v: %w", p.Name, err, apperr.ErrPersistence)
	}
	return p, created, nil
}
