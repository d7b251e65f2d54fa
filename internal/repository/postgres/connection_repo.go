package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vedran77/skillbarter/internal/domain"
	"github.com/vedran77/skillbarter/internal/repository"
)

type ConnectionRepo struct {
	pool *pgxpool.Pool
}

func NewConnectionRepo(pool *pgxpool.Pool) *ConnectionRepo {
	return &ConnectionRepo{pool: pool}
}

func (r *ConnectionRepo) Create(ctx context.Context, conn *domain.Connection) error {
	query := `
		INSERT INTO connections (id, requester_id, recipient_id, status, date)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := db(ctx, r.pool).Exec(ctx, query,
		conn.ID, conn.RequesterID, conn.RecipientID, string(conn.Status), conn.Date,
	)
	switch {
	case isUniqueViolation(err):
		return repository.ErrDuplicate
	case isForeignKeyViolation(err):
		return repository.ErrNotFound
	}
	return err
}

func (r *ConnectionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Connection, error) {
	query := `
		SELECT id, requester_id, recipient_id, status, date
		FROM connections
		WHERE id = $1` + forUpdate(ctx)
	return r.scanConnection(ctx, query, id)
}

func (r *ConnectionRepo) FindBetween(ctx context.Context, a, b uuid.UUID) (*domain.Connection, error) {
	query := `
		SELECT id, requester_id, recipient_id, status, date
		FROM connections
		WHERE (requester_id = $1 AND recipient_id = $2)
			OR (requester_id = $2 AND recipient_id = $1)
		LIMIT 1`
	return r.scanConnection(ctx, query, a, b)
}

func (r *ConnectionRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Connection, error) {
	query := `
		SELECT c.id, c.requester_id, c.recipient_id, c.status, c.date,
			rq.first_name, rq.last_name, rq.email, rq.profile_picture,
			rc.first_name, rc.last_name, rc.email, rc.profile_picture
		FROM connections c
		JOIN users rq ON c.requester_id = rq.id
		JOIN users rc ON c.recipient_id = rc.id
		WHERE c.requester_id = $1 OR c.recipient_id = $1
		ORDER BY c.date DESC`

	rows, err := db(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conns []domain.Connection
	for rows.Next() {
		var (
			c         domain.Connection
			status    string
			requester domain.UserSummary
			recipient domain.UserSummary
		)
		if err := rows.Scan(
			&c.ID, &c.RequesterID, &c.RecipientID, &status, &c.Date,
			&requester.FirstName, &requester.LastName, &requester.Email, &requester.ProfilePicture,
			&recipient.FirstName, &recipient.LastName, &recipient.Email, &recipient.ProfilePicture,
		); err != nil {
			return nil, err
		}
		c.Status = domain.RequestStatus(status)
		requester.ID = c.RequesterID
		recipient.ID = c.RecipientID
		c.Requester = &requester
		c.Recipient = &recipient
		conns = append(conns, c)
	}
	return conns, rows.Err()
}

func (r *ConnectionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.RequestStatus) error {
	tag, err := db(ctx, r.pool).Exec(ctx, `UPDATE connections SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ConnectionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := db(ctx, r.pool).Exec(ctx, `DELETE FROM connections WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ConnectionRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := db(ctx, r.pool).Exec(ctx,
		`DELETE FROM connections WHERE requester_id = $1 OR recipient_id = $1`, userID)
	return err
}

func (r *ConnectionRepo) scanConnection(ctx context.Context, query string, args ...any) (*domain.Connection, error) {
	var (
		c      domain.Connection
		status string
	)
	err := db(ctx, r.pool).QueryRow(ctx, query, args...).Scan(
		&c.ID, &c.RequesterID, &c.RecipientID, &status, &c.Date,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.Status = domain.RequestStatus(status)
	return &c, nil
}
