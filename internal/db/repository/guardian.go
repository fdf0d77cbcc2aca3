package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shush-app/guarded-blocking-go/internal/db"
	"github.com/shush-app/guarded-blocking-go/internal/db/models"
)

const guardianColumns = `
	id, user_id, guardian_email, guardian_name, relationship_type,
	personal_message, status, created_at, updated_at
`

// GuardianRepository defines operations for managing guardian relationships.
type GuardianRepository interface {
	// Replace installs a new active guardian, deactivating any existing one in
	// the same transaction (single active guardian per user).
	Replace(ctx context.Context, guardian *models.Guardian) error

	// GetActive retrieves the user's active guardian. Returns db.ErrNotFound
	// when the user has none.
	GetActive(ctx context.Context, userID uuid.UUID) (*models.Guardian, error)

	// Deactivate removes a guardian by flipping it to inactive.
	Deactivate(ctx context.Context, userID, guardianID uuid.UUID) error
}

type guardianRepository struct {
	pool *pgxpool.Pool
}

// NewGuardianRepository creates a new GuardianRepository.
func NewGuardianRepository(pool *pgxpool.Pool) GuardianRepository {
	return &guardianRepository{pool: pool}
}

func (r *guardianRepository) Replace(ctx context.Context, guardian *models.Guardian) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return db.WrapError(err, "replace guardian")
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	_, err = tx.Exec(ctx, `
		UPDATE guardians
		SET status = 'inactive', updated_at = NOW()
		WHERE user_id = $1 AND status = 'active'
	`, guardian.UserID)
	if err != nil {
		return db.WrapError(err, "deactivate previous guardian")
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO guardians (
			id, user_id, guardian_email, guardian_name,
			relationship_type, personal_message, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`,
		guardian.ID,
		guardian.UserID,
		guardian.GuardianEmail,
		guardian.GuardianName,
		guardian.RelationshipType,
		guardian.PersonalMessage,
		guardian.Status,
	).Scan(&guardian.CreatedAt, &guardian.UpdatedAt)
	if err != nil {
		return db.WrapError(err, "insert guardian")
	}

	if err := tx.Commit(ctx); err != nil {
		return db.WrapError(err, "replace guardian")
	}

	return nil
}

func (r *guardianRepository) GetActive(ctx context.Context, userID uuid.UUID) (*models.Guardian, error) {
	var g models.Guardian
	err := r.pool.QueryRow(ctx, `
		SELECT `+guardianColumns+`
		FROM guardians
		WHERE user_id = $1 AND status = 'active'
	`, userID).Scan(
		&g.ID,
		&g.UserID,
		&g.GuardianEmail,
		&g.GuardianName,
		&g.RelationshipType,
		&g.PersonalMessage,
		&g.Status,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		return nil, db.WrapError(err, "get active guardian")
	}

	return &g, nil
}

func (r *guardianRepository) Deactivate(ctx context.Context, userID, guardianID uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE guardians
		SET status = 'inactive', updated_at = NOW()
		WHERE user_id = $1 AND id = $2 AND status = 'active'
	`, userID, guardianID)
	if err != nil {
		return db.WrapError(err, "deactivate guardian")
	}

	if result.RowsAffected() == 0 {
		return db.WrapError(pgx.ErrNoRows, "deactivate guardian")
	}

	return nil
}
