// Package repository provides data access for blocked contacts, guardians,
// and unblock requests over a pgx connection pool.
package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shush-app/guarded-blocking-go/internal/db"
	"github.com/shush-app/guarded-blocking-go/internal/db/models"
)

const blockedContactColumns = `
	id, user_id, contact_name, contact_phone, contact_email, relationship_type,
	platforms, severity, reason, status, blocked_at, unblocked_at, created_at, updated_at
`

// BlockedContactRepository defines operations for managing blocked contacts.
type BlockedContactRepository interface {
	// Create inserts a new active block. If an active block already exists for
	// the same (user, phone) pair, that row is deactivated in the same
	// transaction so exactly one active row remains.
	Create(ctx context.Context, contact *models.BlockedContact) error

	// GetByID retrieves a contact regardless of status.
	GetByID(ctx context.Context, userID, contactID uuid.UUID) (*models.BlockedContact, error)

	// List retrieves a user's contacts, newest block first. With activeOnly
	// set, inactive rows are filtered out.
	List(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*models.BlockedContact, error)

	// Update rewrites the editable fields of an active contact: name,
	// relationship, platforms, severity, and reason. Returns db.ErrNotFound
	// if the contact does not exist or is no longer active.
	Update(ctx context.Context, contact *models.BlockedContact) error

	// Deactivate flips an active contact to inactive and stamps unblocked_at.
	// Returns db.ErrNotFound if the contact does not exist or is already
	// inactive, so callers can treat repeat calls as a no-op.
	Deactivate(ctx context.Context, userID, contactID uuid.UUID) error

	// ActivePhones returns phone -> contact name for every active contact with
	// a recorded phone number. This is the remote set the sync engine mirrors.
	ActivePhones(ctx context.Context, userID uuid.UUID) (map[string]string, error)
}

type blockedContactRepository struct {
	pool *pgxpool.Pool
}

// NewBlockedContactRepository creates a new BlockedContactRepository.
func NewBlockedContactRepository(pool *pgxpool.Pool) BlockedContactRepository {
	return &blockedContactRepository{pool: pool}
}

func (r *blockedContactRepository) Create(ctx context.Context, contact *models.BlockedContact) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return db.WrapError(err, "create blocked contact")
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if contact.ContactPhone != nil {
		_, err = tx.Exec(ctx, `
			UPDATE blocked_contacts
			SET status = 'inactive', unblocked_at = NOW(), updated_at = NOW()
			WHERE user_id = $1 AND contact_phone = $2 AND status = 'active'
		`, contact.UserID, *contact.ContactPhone)
		if err != nil {
			return db.WrapError(err, "replace active block")
		}
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO blocked_contacts (
			id, user_id, contact_name, contact_phone, contact_email,
			relationship_type, platforms, severity, reason, status, blocked_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING blocked_at, created_at, updated_at
	`,
		contact.ID,
		contact.UserID,
		contact.ContactName,
		contact.ContactPhone,
		contact.ContactEmail,
		contact.RelationshipType,
		contact.Platforms,
		contact.Severity,
		contact.Reason,
		contact.Status,
		contact.BlockedAt,
	).Scan(&contact.BlockedAt, &contact.CreatedAt, &contact.UpdatedAt)
	if err != nil {
		return db.WrapError(err, "create blocked contact")
	}

	if err := tx.Commit(ctx); err != nil {
		return db.WrapError(err, "create blocked contact")
	}

	return nil
}

func (r *blockedContactRepository) GetByID(ctx context.Context, userID, contactID uuid.UUID) (*models.BlockedContact, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+blockedContactColumns+`
		FROM blocked_contacts
		WHERE user_id = $1 AND id = $2
	`, userID, contactID)

	contact, err := scanBlockedContact(row)
	if err != nil {
		return nil, db.WrapError(err, "get blocked contact")
	}

	return contact, nil
}

func (r *blockedContactRepository) List(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*models.BlockedContact, error) {
	query := `
		SELECT ` + blockedContactColumns + `
		FROM blocked_contacts
		WHERE user_id = $1
	`
	if activeOnly {
		query += ` AND status = 'active'`
	}
	query += ` ORDER BY blocked_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, db.WrapError(err, "list blocked contacts")
	}
	defer rows.Close()

	var contacts []*models.BlockedContact
	for rows.Next() {
		contact, err := scanBlockedContact(rows)
		if err != nil {
			return nil, db.WrapError(err, "scan blocked contact")
		}
		contacts = append(contacts, contact)
	}
	if err := rows.Err(); err != nil {
		return nil, db.WrapError(err, "list blocked contacts")
	}

	return contacts, nil
}

func (r *blockedContactRepository) Update(ctx context.Context, contact *models.BlockedContact) error {
	err := r.pool.QueryRow(ctx, `
		UPDATE blocked_contacts
		SET contact_name = $3, relationship_type = $4, platforms = $5,
			severity = $6, reason = $7, updated_at = NOW()
		WHERE user_id = $1 AND id = $2 AND status = 'active'
		RETURNING updated_at
	`,
		contact.UserID,
		contact.ID,
		contact.ContactName,
		contact.RelationshipType,
		contact.Platforms,
		contact.Severity,
		contact.Reason,
	).Scan(&contact.UpdatedAt)
	if err != nil {
		return db.WrapError(err, "update blocked contact")
	}

	return nil
}

func (r *blockedContactRepository) Deactivate(ctx context.Context, userID, contactID uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE blocked_contacts
		SET status = 'inactive', unblocked_at = NOW(), updated_at = NOW()
		WHERE user_id = $1 AND id = $2 AND status = 'active'
	`, userID, contactID)
	if err != nil {
		return db.WrapError(err, "deactivate blocked contact")
	}

	if result.RowsAffected() == 0 {
		return db.WrapError(pgx.ErrNoRows, "deactivate blocked contact")
	}

	return nil
}

func (r *blockedContactRepository) ActivePhones(ctx context.Context, userID uuid.UUID) (map[string]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT contact_phone, contact_name
		FROM blocked_contacts
		WHERE user_id = $1 AND status = 'active' AND contact_phone IS NOT NULL
	`, userID)
	if err != nil {
		return nil, db.WrapError(err, "get active phones")
	}
	defer rows.Close()

	phones := make(map[string]string)
	for rows.Next() {
		var phone, name string
		if err := rows.Scan(&phone, &name); err != nil {
			return nil, db.WrapError(err, "scan active phone")
		}
		phones[phone] = name
	}
	if err := rows.Err(); err != nil {
		return nil, db.WrapError(err, "get active phones")
	}

	return phones, nil
}

func scanBlockedContact(row pgx.Row) (*models.BlockedContact, error) {
	var c models.BlockedContact
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.ContactName,
		&c.ContactPhone,
		&c.ContactEmail,
		&c.RelationshipType,
		&c.Platforms,
		&c.Severity,
		&c.Reason,
		&c.Status,
		&c.BlockedAt,
		&c.UnblockedAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
