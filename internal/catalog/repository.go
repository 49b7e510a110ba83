package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventhub/backend/internal/models"
	"github.com/eventhub/backend/pkg/apperr"
	"github.com/eventhub/backend/pkg/database"
)

// Store is the reference-data persistence contract.
type Store interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id int64) (*models.Category, error)
	CreateCategory(ctx context.Context, c *models.Category) error
	UpdateCategory(ctx context.Context, c *models.Category) error
	DeleteCategory(ctx context.Context, id int64) error

	ListSubtypes(ctx context.Context, categoryID *int64) ([]models.Subtype, error)
	GetSubtype(ctx context.Context, id int64) (*models.Subtype, error)
	CreateSubtype(ctx context.Context, s *models.Subtype) error
	UpdateSubtype(ctx context.Context, s *models.Subtype) error
	DeleteSubtype(ctx context.Context, id int64) error

	ListVenues(ctx context.Context) ([]models.Venue, error)
	GetVenue(ctx context.Context, id int64) (*models.Venue, error)
	CreateVenue(ctx context.Context, v *models.Venue) error
	UpdateVenue(ctx context.Context, v *models.Venue) error
	DeleteVenue(ctx context.Context, id int64) error
	SetVenueImage(ctx context.Context, id int64, key string) error

	// CheckVenueAvailability reports whether no live event holds the venue on date.
	CheckVenueAvailability(ctx context.Context, venueID int64, date models.Date) (bool, error)
}

// Repository handles categories, subtypes and venues.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a catalog repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func mapWriteErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return apperr.NotFound(what + " not found")
	case database.IsUniqueViolation(err):
		return apperr.Conflict(what + " already exists")
	case database.IsForeignKeyViolation(err):
		return apperr.Conflict(what + " is still referenced")
	}
	return apperr.Upstream(err)
}

func execOne(ctx context.Context, q database.Querier, what, sql string, args ...any) error {
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return mapWriteErr(err, what)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(what + " not found")
	}
	return nil
}

// InsertCategory inserts c using q, which may be a transaction.
func InsertCategory(ctx context.Context, q database.Querier, c *models.Category) error {
	err := q.QueryRow(ctx, `INSERT INTO event_categories (name, description) VALUES ($1, $2) RETURNING id`,
		c.Name, c.Description).Scan(&c.ID)
	return mapWriteErr(err, "category")
}

// InsertSubtype inserts s using q.
func InsertSubtype(ctx context.Context, q database.Querier, s *models.Subtype) error {
	err := q.QueryRow(ctx, `INSERT INTO event_subtypes (category_id, name) VALUES ($1, $2) RETURNING id`,
		s.CategoryID, s.Name).Scan(&s.ID)
	if database.IsForeignKeyViolation(err) {
		return apperr.Validation("category does not exist")
	}
	return mapWriteErr(err, "subtype")
}

// InsertVenue inserts v using q.
func InsertVenue(ctx context.Context, q database.Querier, v *models.Venue) error {
	err := q.QueryRow(ctx, `INSERT INTO venues (name, address, capacity, image_key) VALUES ($1, $2, $3, NULLIF($4,'')) RETURNING id`,
		v.Name, v.Address, v.Capacity, v.ImageKey).Scan(&v.ID)
	return mapWriteErr(err, "venue")
}

func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, description FROM event_categories ORDER BY name`)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	defer rows.Close()
	list := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, apperr.Upstream(err)
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Upstream(err)
	}
	return list, nil
}

func (r *Repository) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	var c models.Category
	err := r.pool.QueryRow(ctx, `SELECT id, name, description FROM event_categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Description)
	if err != nil {
		return nil, mapWriteErr(err, "category")
	}
	return &c, nil
}

func (r *Repository) CreateCategory(ctx context.Context, c *models.Category) error {
	return InsertCategory(ctx, r.pool, c)
}

func (r *Repository) UpdateCategory(ctx context.Context, c *models.Category) error {
	return execOne(ctx, r.pool, "category", `UPDATE event_categories SET name = $1, description = $2 WHERE id = $3`,
		c.Name, c.Description, c.ID)
}

func (r *Repository) DeleteCategory(ctx context.Context, id int64) error {
	return execOne(ctx, r.pool, "category", `DELETE FROM event_categories WHERE id = $1`, id)
}

// ListSubtypes returns subtypes, optionally narrowed to one category.
func (r *Repository) ListSubtypes(ctx context.Context, categoryID *int64) ([]models.Subtype, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, category_id, name FROM event_subtypes
		WHERE $1::bigint IS NULL OR category_id = $1 ORDER BY name`, categoryID)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	defer rows.Close()
	list := []models.Subtype{}
	for rows.Next() {
		var s models.Subtype
		if err := rows.Scan(&s.ID, &s.CategoryID, &s.Name); err != nil {
			return nil, apperr.Upstream(err)
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Upstream(err)
	}
	return list, nil
}

func (r *Repository) GetSubtype(ctx context.Context, id int64) (*models.Subtype, error) {
	var s models.Subtype
	err := r.pool.QueryRow(ctx, `SELECT id, category_id, name FROM event_subtypes WHERE id = $1`, id).
		Scan(&s.ID, &s.CategoryID, &s.Name)
	if err != nil {
		return nil, mapWriteErr(err, "subtype")
	}
	return &s, nil
}

func (r *Repository) CreateSubtype(ctx context.Context, s *models.Subtype) error {
	return InsertSubtype(ctx, r.pool, s)
}

func (r *Repository) UpdateSubtype(ctx context.Context, s *models.Subtype) error {
	return execOne(ctx, r.pool, "subtype", `UPDATE event_subtypes SET category_id = $1, name = $2 WHERE id = $3`,
		s.CategoryID, s.Name, s.ID)
}

func (r *Repository) DeleteSubtype(ctx context.Context, id int64) error {
	return execOne(ctx, r.pool, "subtype", `DELETE FROM event_subtypes WHERE id = $1`, id)
}

func (r *Repository) ListVenues(ctx context.Context) ([]models.Venue, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, address, capacity, COALESCE(image_key,'') FROM venues ORDER BY name`)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	defer rows.Close()
	list := []models.Venue{}
	for rows.Next() {
		var v models.Venue
		if err := rows.Scan(&v.ID, &v.Name, &v.Address, &v.Capacity, &v.ImageKey); err != nil {
			return nil, apperr.Upstream(err)
		}
		list = append(list, v)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Upstream(err)
	}
	return list, nil
}

func (r *Repository) GetVenue(ctx context.Context, id int64) (*models.Venue, error) {
	var v models.Venue
	err := r.pool.QueryRow(ctx, `SELECT id, name, address, capacity, COALESCE(image_key,'') FROM venues WHERE id = $1`, id).
		Scan(&v.ID, &v.Name, &v.Address, &v.Capacity, &v.ImageKey)
	if err != nil {
		return nil, mapWriteErr(err, "venue")
	}
	return &v, nil
}

func (r *Repository) CreateVenue(ctx context.Context, v *models.Venue) error {
	return InsertVenue(ctx, r.pool, v)
}

func (r *Repository) UpdateVenue(ctx context.Context, v *models.Venue) error {
	return execOne(ctx, r.pool, "venue", `UPDATE venues SET name = $1, address = $2, capacity = $3 WHERE id = $4`,
		v.Name, v.Address, v.Capacity, v.ID)
}

func (r *Repository) DeleteVenue(ctx context.Context, id int64) error {
	return execOne(ctx, r.pool, "venue", `DELETE FROM venues WHERE id = $1`, id)
}

func (r *Repository) SetVenueImage(ctx context.Context, id int64, key string) error {
	return execOne(ctx, r.pool, "venue", `UPDATE venues SET image_key = $1 WHERE id = $2`, key, id)
}

// CheckVenueAvailability calls the check_venue_availability store function.
func (r *Repository) CheckVenueAvailability(ctx context.Context, venueID int64, date models.Date) (bool, error) {
	var ok bool
	if err := r.pool.QueryRow(ctx, `SELECT check_venue_availability($1, $2)`, venueID, date).Scan(&ok); err != nil {
		return false, apperr.Upstream(err)
	}
	return ok, nil
}
