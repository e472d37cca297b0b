package repository

import (
	"context"
	"errors"
	"fmt"

	"carmeet/internal/model"

	"github.com/jackc/pgx/v5"
)

const registrationColumns = `id, name, email, mobile, car, plate, description, instagram, photos, status, created_at`

// RegistrationRepository defines operations for registration data
type RegistrationRepository interface {
	Create(ctx context.Context, reg *model.Registration) error
	FindByID(ctx context.Context, id int64) (*model.Registration, error)
	FindByNormalizedPlate(ctx context.Context, normalized string) (*model.Registration, error)
	FindAll(ctx context.Context) ([]model.Registration, error)
	FindAccepted(ctx context.Context, limit, offset int) ([]model.Registration, error)
	CountAccepted(ctx context.Context) (int64, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*model.Registration, error)
}

type registrationRepository struct {
	db DB
}

// NewRegistrationRepository creates a new RegistrationRepository
func NewRegistrationRepository(db DB) RegistrationRepository {
	return &registrationRepository{db: db}
}

func scanRegistration(row pgx.Row, reg *model.Registration) error {
	return row.Scan(
		&reg.ID, &reg.Name, &reg.Email, &reg.Mobile, &reg.Car, &reg.Plate,
		&reg.Description, &reg.Instagram, &reg.Photos, &reg.Status, &reg.CreatedAt,
	)
}

// Create inserts a new registration into the database
func (r *registrationRepository) Create(ctx context.Context, reg *model.Registration) error {
	sql := `INSERT INTO registrations (name, email, mobile, car, plate, description, instagram, photos, status, created_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id, created_at`
	err := r.db.QueryRow(ctx, sql,
		reg.Name, reg.Email, reg.Mobile, reg.Car, reg.Plate, reg.Description,
		reg.Instagram, reg.Photos, reg.Status, reg.CreatedAt,
	).Scan(&reg.ID, &reg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create registration: %w", err)
	}
	return nil
}

// FindByID retrieves a registration by its ID
func (r *registrationRepository) FindByID(ctx context.Context, id int64) (*model.Registration, error) {
	reg := &model.Registration{}
	sql := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1`
	err := scanRegistration(r.db.QueryRow(ctx, sql, id), reg)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to find registration by ID: %w", err)
	}
	return reg, nil
}

// FindByNormalizedPlate retrieves the registration whose stored plate,
// stripped of whitespace and upper-cased, equals the given value. If
// several registrations share a normalized plate the oldest one wins.
func (r *registrationRepository) FindByNormalizedPlate(ctx context.Context, normalized string) (*model.Registration, error) {
	reg := &model.Registration{}
	sql := `SELECT ` + registrationColumns + ` FROM registrations
            WHERE regexp_replace(upper(plate), '\s', '', 'g') = $1
            ORDER BY created_at ASC, id ASC LIMIT 1`
	err := scanRegistration(r.db.QueryRow(ctx, sql, normalized), reg)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to find registration by plate: %w", err)
	}
	return reg, nil
}

// FindAll retrieves all registrations, newest first
func (r *registrationRepository) FindAll(ctx context.Context) ([]model.Registration, error) {
	sql := `SELECT ` + registrationColumns + ` FROM registrations ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to query registrations: %w", err)
	}
	defer rows.Close()

	return collectRegistrations(rows)
}

// FindAccepted retrieves one page of accepted registrations, newest first
func (r *registrationRepository) FindAccepted(ctx context.Context, limit, offset int) ([]model.Registration, error) {
	sql := `SELECT ` + registrationColumns + ` FROM registrations
            WHERE status = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, sql, model.StatusAccepted, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query accepted registrations: %w", err)
	}
	defer rows.Close()

	return collectRegistrations(rows)
}

// CountAccepted returns the total number of accepted registrations
func (r *registrationRepository) CountAccepted(ctx context.Context) (int64, error) {
	var total int64
	sql := `SELECT COUNT(*) FROM registrations WHERE status = $1`
	if err := r.db.QueryRow(ctx, sql, model.StatusAccepted).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count accepted registrations: %w", err)
	}
	return total, nil
}

// UpdateStatus sets the status of the registration matching id and returns
// the updated row, or nil if no such registration exists.
func (r *registrationRepository) UpdateStatus(ctx context.Context, id int64, status string) (*model.Registration, error) {
	reg := &model.Registration{}
	sql := `UPDATE registrations SET status = $1 WHERE id = $2 RETURNING ` + registrationColumns
	err := scanRegistration(r.db.QueryRow(ctx, sql, status, id), reg)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to update registration status: %w", err)
	}
	return reg, nil
}

func collectRegistrations(rows pgx.Rows) ([]model.Registration, error) {
	var regs []model.Registration
	for rows.Next() {
		var reg model.Registration
		if err := scanRegistration(rows, &reg); err != nil {
			return nil, fmt.Errorf("failed to scan registration row: %w", err)
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating registration rows: %w", err)
	}
	return regs, nil
}
