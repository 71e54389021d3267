package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushub/room-booking-api/internal/models"
)

// VenueTypeRepository provides persistence for venue type labels.
type VenueTypeRepository struct {
	db *sqlx.DB
}

// NewVenueTypeRepository creates a new venue type repository.
func NewVenueTypeRepository(db *sqlx.DB) *VenueTypeRepository {
	return &VenueTypeRepository{db: db}
}

// List returns every venue type ordered by name.
func (r *VenueTypeRepository) List(ctx context.Context) ([]models.VenueType, error) {
	const query = `SELECT id, name, created_at, updated_at FROM venue_types ORDER BY name ASC`
	var venueTypes []models.VenueType
	if err := r.db.SelectContext(ctx, &venueTypes, query); err != nil {
		return nil, fmt.Errorf("list venue types: %w", err)
	}
	return venueTypes, nil
}

// FindByID loads a venue type by id.
func (r *VenueTypeRepository) FindByID(ctx context.Context, id string) (*models.VenueType, error) {
	const query = `SELECT id, name, created_at, updated_at FROM venue_types WHERE id = $1`
	var venueType models.VenueType
	if err := r.db.GetContext(ctx, &venueType, query, id); err != nil {
		return nil, err
	}
	return &venueType, nil
}

// Create stores a new venue type record.
func (r *VenueTypeRepository) Create(ctx context.Context, venueType *models.VenueType) error {
	if venueType.ID == "" {
		venueType.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if venueType.CreatedAt.IsZero() {
		venueType.CreatedAt = now
	}
	venueType.UpdatedAt = now

	const query = `INSERT INTO venue_types (id, name, created_at, updated_at)
VALUES (:id, :name, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, venueType); err != nil {
		return fmt.Errorf("create venue type: %w", err)
	}
	return nil
}

// Update modifies a venue type record.
func (r *VenueTypeRepository) Update(ctx context.Context, venueType *models.VenueType) error {
	venueType.UpdatedAt = time.Now().UTC()
	const query = `UPDATE venue_types SET name = :name, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, venueType); err != nil {
		return fmt.Errorf("update venue type: %w", err)
	}
	return nil
}

// Delete removes a venue type by id.
func (r *VenueTypeRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM venue_types WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete venue type: %w", err)
	}
	return nil
}
