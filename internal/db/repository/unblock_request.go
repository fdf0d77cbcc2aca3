package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shush-app/guarded-blocking-go/internal/db"
	"github.com/shush-app/guarded-blocking-go/internal/db/models"
)

const unblockRequestColumns = `
	id, user_id, blocked_contact_id, guardian_email, current_mood, journal_entry,
	additional_context, urgency, status, guardian_response, created_at,
	guardian_responded_at, processed_at
`

// UnblockRequestRepository defines operations for managing unblock requests.
type UnblockRequestRepository interface {
	// Create inserts a pending request. The partial unique index on
	// (user_id, blocked_contact_id) WHERE status='pending' turns a concurrent
	// duplicate into db.ErrDuplicateKey.
	Create(ctx context.Context, request *models.UnblockRequest) error

	// GetByID retrieves a request without a user filter; the decision gateway
	// authorizes by guardian email instead.
	GetByID(ctx context.Context, requestID uuid.UUID) (*models.UnblockRequest, error)

	// HasPending reports whether a pending request exists for the contact.
	HasPending(ctx context.Context, userID, contactID uuid.UUID) (bool, error)

	// ListByUser retrieves all of a user's requests, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.UnblockRequest, error)

	// ListForGuardian retrieves requests addressed to a guardian email,
	// optionally filtered to one status.
	ListForGuardian(ctx context.Context, guardianEmail string, status models.RequestStatus) ([]*models.UnblockRequest, error)

	// Decide atomically resolves a pending request. The UPDATE is conditioned
	// on status='pending' and on the stored guardian email, so it is the only
	// concurrency guard: the first writer wins and every later attempt sees
	// db.ErrNotFound and must classify the failure with a follow-up read.
	Decide(ctx context.Context, requestID uuid.UUID, guardianEmail string, decision models.RequestStatus, message string) (*models.UnblockRequest, error)

	// ListAwaitingCompletion retrieves approved requests whose side effects
	// have not been applied yet (processed_at IS NULL).
	ListAwaitingCompletion(ctx context.Context, userID uuid.UUID) ([]*models.UnblockRequest, error)

	// MarkCompleted stamps processed_at and moves an approved request to
	// completed. Conditioned on approved-and-unprocessed so repeat calls
	// return db.ErrNotFound instead of double-applying.
	MarkCompleted(ctx context.Context, requestID uuid.UUID) error
}

type unblockRequestRepository struct {
	pool *pgxpool.Pool
}

// NewUnblockRequestRepository creates a new UnblockRequestRepository.
func NewUnblockRequestRepository(pool *pgxpool.Pool) UnblockRequestRepository {
	return &unblockRequestRepository{pool: pool}
}

func (r *unblockRequestRepository) Create(ctx context.Context, request *models.UnblockRequest) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO unblock_requests (
			id, user_id, blocked_contact_id, guardian_email, current_mood,
			journal_entry, additional_context, urgency, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`,
		request.ID,
		request.UserID,
		request.BlockedContactID,
		request.GuardianEmail,
		request.CurrentMood,
		request.JournalEntry,
		request.AdditionalContext,
		request.Urgency,
		request.Status,
	).Scan(&request.CreatedAt)
	if err != nil {
		return db.WrapError(err, "create unblock request")
	}

	return nil
}

func (r *unblockRequestRepository) GetByID(ctx context.Context, requestID uuid.UUID) (*models.UnblockRequest, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+unblockRequestColumns+`
		FROM unblock_requests
		WHERE id = $1
	`, requestID)

	request, err := scanUnblockRequest(row)
	if err != nil {
		return nil, db.WrapError(err, "get unblock request")
	}

	return request, nil
}

func (r *unblockRequestRepository) HasPending(ctx context.Context, userID, contactID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM unblock_requests
			WHERE user_id = $1 AND blocked_contact_id = $2 AND status = 'pending'
		)
	`, userID, contactID).Scan(&exists)
	if err != nil {
		return false, db.WrapError(err, "check pending request")
	}

	return exists, nil
}

func (r *unblockRequestRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.UnblockRequest, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+unblockRequestColumns+`
		FROM unblock_requests
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, db.WrapError(err, "list unblock requests")
	}
	defer rows.Close()

	return collectUnblockRequests(rows)
}

func (r *unblockRequestRepository) ListForGuardian(ctx context.Context, guardianEmail string, status models.RequestStatus) ([]*models.UnblockRequest, error) {
	query := `
		SELECT ` + unblockRequestColumns + `
		FROM unblock_requests
		WHERE lower(guardian_email) = $1
	`
	args := []any{strings.ToLower(guardianEmail)}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, db.WrapError(err, "list requests for guardian")
	}
	defer rows.Close()

	return collectUnblockRequests(rows)
}

func (r *unblockRequestRepository) Decide(ctx context.Context, requestID uuid.UUID, guardianEmail string, decision models.RequestStatus, message string) (*models.UnblockRequest, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE unblock_requests
		SET status = $3, guardian_response = $4, guardian_responded_at = NOW()
		WHERE id = $1
		  AND lower(guardian_email) = $2
		  AND status = 'pending'
		RETURNING `+unblockRequestColumns+`
	`, requestID, strings.ToLower(guardianEmail), decision, message)

	request, err := scanUnblockRequest(row)
	if err != nil {
		return nil, db.WrapError(err, "decide unblock request")
	}

	return request, nil
}

func (r *unblockRequestRepository) ListAwaitingCompletion(ctx context.Context, userID uuid.UUID) ([]*models.UnblockRequest, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+unblockRequestColumns+`
		FROM unblock_requests
		WHERE user_id = $1 AND status = 'approved' AND processed_at IS NULL
		ORDER BY guardian_responded_at
	`, userID)
	if err != nil {
		return nil, db.WrapError(err, "list requests awaiting completion")
	}
	defer rows.Close()

	return collectUnblockRequests(rows)
}

func (r *unblockRequestRepository) MarkCompleted(ctx context.Context, requestID uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE unblock_requests
		SET status = 'completed', processed_at = NOW()
		WHERE id = $1 AND status = 'approved' AND processed_at IS NULL
	`, requestID)
	if err != nil {
		return db.WrapError(err, "mark request completed")
	}

	if result.RowsAffected() == 0 {
		return db.WrapError(pgx.ErrNoRows, "mark request completed")
	}

	return nil
}

func scanUnblockRequest(row pgx.Row) (*models.UnblockRequest, error) {
	var r models.UnblockRequest
	err := row.Scan(
		&r.ID,
		&r.UserID,
		&r.BlockedContactID,
		&r.GuardianEmail,
		&r.CurrentMood,
		&r.JournalEntry,
		&r.AdditionalContext,
		&r.Urgency,
		&r.Status,
		&r.GuardianResponse,
		&r.CreatedAt,
		&r.GuardianRespondedAt,
		&r.ProcessedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func collectUnblockRequests(rows pgx.Rows) ([]*models.UnblockRequest, error) {
	var requests []*models.UnblockRequest
	for rows.Next() {
		request, err := scanUnblockRequest(rows)
		if err != nil {
			return nil, db.WrapError(err, "scan unblock request")
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, db.WrapError(err, "iterate unblock requests")
	}

	return requests, nil
}
