package pokemon

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"pokehub/internal/events"
	"pokehub/pkg/apperr"
	"pokehub/pkg/models"
)

const selectColumns = `
	SELECT id, created_at, updated_at, name, pokemon_id, types, abilities, base_stats, height, weight, sprite_url
	FROM pokemon
`

type Repo struct {
	DB     *sql.DB
	Events events.Publisher
	Log    logrus.FieldLogger

	now func() time.Time
}

type ListQuery struct {
	Q      string // substring match on name
	Type   string // records having this type
	Limit  int
	Offset int
}

// Patch carries the fields of a partial update; nil means "leave as is".
type Patch struct {
	Name      *string           `json:"name"`
	PokemonID *int              `json:"pokemon_id"`
	Types     *[]string         `json:"types"`
	Abilities *[]string         `json:"abilities"`
	BaseStats *models.BaseStats `json:"base_stats"`
	Height    *int              `json:"height"`
	Weight    *int              `json:"weight"`
	SpriteURL *string           `json:"sprite_url"`
}

func NewRepo(db *sql.DB, pub events.Publisher, log logrus.FieldLogger) *Repo {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Repo{
		DB:     db,
		Events: pub,
		Log:    log.WithField("component", "pokemon-repo"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPokemon(s scanner) (models.Pokemon, error) {
	var p models.Pokemon
	var typesJSON, abilitiesJSON, statsJSON string
	if err := s.Scan(
		&p.ID, &p.CreatedAt, &p.UpdatedAt, &p.Name, &p.PokemonID,
		&typesJSON, &abilitiesJSON, &statsJSON, &p.Height, &p.Weight, &p.SpriteURL,
	); err != nil {
		return models.Pokemon{}, err
	}

	if err := json.Unmarshal([]byte(typesJSON), &p.Types); err != nil {
		return models.Pokemon{}, fmt.Errorf("decode types of %s: %w", p.Name, err)
	}
	if err := json.Unmarshal([]byte(abilitiesJSON), &p.Abilities); err != nil {
		return models.Pokemon{}, fmt.Errorf("decode abilities of %s: %w", p.Name, err)
	}
	if err := json.Unmarshal([]byte(statsJSON), &p.BaseStats); err != nil {
		return models.Pokemon{}, fmt.Errorf("decode base_stats of %s: %w", p.Name, err)
	}
	return p, nil
}

type encodedColumns struct {
	types, abilities, stats string
}

func encodeColumns(p models.Pokemon) (encodedColumns, error) {
	if p.Types == nil {
		p.Types = []string{}
	}
	if p.Abilities == nil {
		p.Abilities = []string{}
	}
	t, err := json.Marshal(p.Types)
	if err != nil {
		return encodedColumns{}, fmt.Errorf("encode types: %w", err)
	}
	a, err := json.Marshal(p.Abilities)
	if err != nil {
		return encodedColumns{}, fmt.Errorf("encode abilities: %w", err)
	}
	s, err := json.Marshal(p.BaseStats)
	if err != nil {
		return encodedColumns{}, fmt.Errorf("encode base_stats: %w", err)
	}
	return encodedColumns{types: string(t), abilities: string(a), stats: string(s)}, nil
}

// writeError classifies a failed write: name clashes become ErrConflict,
// everything else ErrPersistence.
func writeError(op string, err error) error {
	var se sqlite3.Error
	if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("%s: name already exists: %w", op, apperr.ErrConflict)
	}
	return fmt.Errorf("%s: %v: %w", op, err, apperr.ErrPersistence)
}

func (r *Repo) publish(typ string, p models.Pokemon) {
	if r.Events == nil {
		return
	}
	r.Events.Publish(events.PokemonEvent{Type: typ, ID: p.ID, Name: p.Name, At: r.now()})
}

func (r *Repo) getOne(ctx context.Context, where string, arg any) (*models.Pokemon, error) {
	row := r.DB.QueryRowContext(ctx, selectColumns+" WHERE "+where, arg)
	p, err := scanPokemon(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.Pokemon, error) {
	p, err := r.getOne(ctx, "id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("get pokemon %s: %w", id, err)
	}
	return p, nil
}

func (r *Repo) GetByName(ctx context.Context, name string) (*models.Pokemon, error) {
	name = strings.TrimSpace(name)
	p, err := r.getOne(ctx, "name = ?", name)
	if err != nil {
		return nil, fmt.Errorf("get pokemon %q: %w", name, err)
	}
	return p, nil
}

func (r *Repo) Count(ctx context.Context, q ListQuery) (int, error) {
	sqlStr, args := buildListSQL(q, true)
	var total int
	if err := r.DB.QueryRowContext(ctx, sqlStr, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count scan: %w", err)
	}
	return total, nil
}

func (r *Repo) List(ctx context.Context, q ListQuery) ([]models.Pokemon, error) {
	sqlStr, args := buildListSQL(q, false)

	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	out := []models.Pokemon{}
	for rows.Next() {
		p, err := scanPokemon(rows)
		if err != nil {
			return nil, fmt.Errorf("list scan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// All returns every stored record ordered by PokéAPI id, without paging.
func (r *Repo) All(ctx context.Context) ([]models.Pokemon, error) {
	return r.List(ctx, ListQuery{Limit: -1})
}

// buildListSQL builds either COUNT(*) or the paged SELECT. Types are stored
// as JSON text, so the type filter matches the quoted element.
func buildListSQL(q ListQuery, countOnly bool) (string, []any) {
	base := selectColumns
	if countOnly {
		base = `SELECT COUNT(*) FROM pokemon`
	}

	var where []string
	var args []any

	if kw := strings.ToLower(strings.TrimSpace(q.Q)); kw != "" {
		where = append(where, "LOWER(name) LIKE ?")
		args = append(args, "%"+kw+"%")
	}
	if typ := strings.ToLower(strings.TrimSpace(q.Type)); typ != "" {
		where = append(where, "LOWER(types) LIKE ?")
		args = append(args, `%"`+typ+`"%`)
	}

	sqlStr := base
	if len(where) > 0 {
		sqlStr += " WHERE " + strings.Join(where, " AND ")
	}
	if countOnly {
		return sqlStr, args
	}

	sqlStr += " ORDER BY pokemon_id ASC, name ASC"
	if q.Limit < 0 {
		return sqlStr, args
	}

	limit := q.Limit
	if limit == 0 || limit > 100 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	sqlStr += " LIMIT ? OFFSET ?"
	args = append(args, limit, offset)
	return sqlStr, args
}

// Create inserts p under a fresh id. A name already in the store fails with
// apperr.ErrConflict.
func (r *Repo) Create(ctx context.Context, p models.Pokemon) (*models.Pokemon, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, fmt.Errorf("create pokemon: name required: %w", apperr.ErrValidation)
	}

	p.ID = uuid.NewString()
	p.CreatedAt = r.now()
	p.UpdatedAt = p.CreatedAt
	if err := insert(ctx, r.DB, p); err != nil {
		return nil, err
	}

	r.publish(events.TypeCreated, p)
	return &p, nil
}

// Update applies patch to the record with the given id.
func (r *Repo) Update(ctx context.Context, id string, patch Patch) (*models.Pokemon, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update: %v: %w", err, apperr.ErrPersistence)
	}
	defer tx.Rollback()

	p, err := scanPokemon(tx.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("update pokemon %s: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("update pokemon %s: %w", id, err)
	}

	applyPatch(&p, patch)
	if p.Name == "" {
		return nil, fmt.Errorf("update pokemon %s: name required: %w", id, apperr.ErrValidation)
	}
	p.UpdatedAt = r.now()

	if err := update(ctx, tx, p); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update: %v: %w", err, apperr.ErrPersistence)
	}

	r.publish(events.TypeUpdated, p)
	return &p, nil
}

func applyPatch(p *models.Pokemon, patch Patch) {
	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.PokemonID != nil {
		p.PokemonID = *patch.PokemonID
	}
	if patch.Types != nil {
		p.Types = *patch.Types
	}
	if patch.Abilities != nil {
		p.Abilities = *patch.Abilities
	}
	if patch.BaseStats != nil {
		p.BaseStats = *patch.BaseStats
	}
	if patch.Height != nil {
		p.Height = *patch.Height
	}
	if patch.Weight != nil {
		p.Weight = *patch.Weight
	}
	if patch.SpriteURL != nil {
		p.SpriteURL = *patch.SpriteURL
	}
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	res, err := r.DB.ExecContext(ctx, `DELETE FROM pokemon WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete pokemon %s: %v: %w", id, err, apperr.ErrPersistence)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete pokemon %s: %w", id, apperr.ErrNotFound)
	}

	r.publish(events.TypeDeleted, *p)
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insert(ctx context.Context, db execer, p models.Pokemon) error {
	cols, err := encodeColumns(p)
	if err != nil {
		return fmt.Errorf("insert %s: %v: %w", p.Name, err, apperr.ErrPersistence)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO pokemon (id, created_at, updated_at, name, pokemon_id, types, abilities, base_stats, height, weight, sprite_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.CreatedAt, p.UpdatedAt, p.Name, p.PokemonID, cols.types, cols.abilities, cols.stats, p.Height, p.Weight, p.SpriteURL)
	if err != nil {
		return writeError("insert "+p.Name, err)
	}
	return nil
}

// update overwrites every column except id and created_at.
func update(ctx context.Context, db execer, p models.Pokemon) error {
	cols, err := encodeColumns(p)
	if err != nil {
		return fmt.Errorf("update %s: %v: %w", p.Name, err, apperr.ErrPersistence)
	}
	_, err = db.ExecContext(ctx, `
		UPDATE pokemon
		SET updated_at = ?, name = ?, pokemon_id = ?, types = ?, abilities = ?, base_stats = ?,
		    height = ?, weight = ?, sprite_url = ?
		WHERE id = ?
	`, p.UpdatedAt, p.Name, p.PokemonID, cols.types, cols.abilities, cols.stats, p.Height, p.Weight, p.SpriteURL, p.ID)
	if err != nil {
		return writeError("update "+p.Name, err)
	}
	return nil
}
