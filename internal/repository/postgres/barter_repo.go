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

type BarterRepo struct {
	pool *pgxpool.Pool
}

func NewBarterRepo(pool *pgxpool.Pool) *BarterRepo {
	return &BarterRepo{pool: pool}
}

func (r *BarterRepo) Create(ctx context.Context, req *domain.BarterRequest) error {
	query := `
		INSERT INTO barter_requests (id, requester_id, responder_id, requested_skill, offered_skill, status, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := db(ctx, r.pool).Exec(ctx, query,
		req.ID, req.RequesterID, req.ResponderID, req.RequestedSkill, req.OfferedSkill,
		string(req.Status), req.Date,
	)
	if isForeignKeyViolation(err) {
		return repository.ErrNotFound
	}
	return err
}

func (r *BarterRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.BarterRequest, error) {
	query := `
		SELECT id, requester_id, responder_id, requested_skill, offered_skill, status, date
		FROM barter_requests
		WHERE id = $1` + forUpdate(ctx)

	var (
		req    domain.BarterRequest
		status string
	)
	err := db(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&req.ID, &req.RequesterID, &req.ResponderID, &req.RequestedSkill,
		&req.OfferedSkill, &status, &req.Date,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	req.Status = domain.RequestStatus(status)
	return &req, nil
}

func (r *BarterRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.BarterRequest, error) {
	query := `
		SELECT b.id, b.requester_id, b.responder_id, b.requested_skill, b.offered_skill, b.status, b.date,
			rq.first_name, rq.last_name, rq.profile_picture,
			rs.first_name, rs.last_name, rs.profile_picture
		FROM barter_requests b
		JOIN users rq ON b.requester_id = rq.id
		JOIN users rs ON b.responder_id = rs.id
		WHERE b.requester_id = $1 OR b.responder_id = $1
		ORDER BY b.date DESC`

	rows, err := db(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []domain.BarterRequest
	for rows.Next() {
		var (
			req       domain.BarterRequest
			status    string
			requester domain.UserSummary
			responder domain.UserSummary
		)
		if err := rows.Scan(
			&req.ID, &req.RequesterID, &req.ResponderID, &req.RequestedSkill,
			&req.OfferedSkill, &status, &req.Date,
			&requester.FirstName, &requester.LastName, &requester.ProfilePicture,
			&responder.FirstName, &responder.LastName, &responder.ProfilePicture,
		); err != nil {
			return nil, err
		}
		req.Status = domain.RequestStatus(status)
		requester.ID = req.RequesterID
		responder.ID = req.ResponderID
		req.Requester = &requester
		req.Responder = &responder
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

func (r *BarterRepo) Update(ctx context.Context, req *domain.BarterRequest) error {
	query := `
		UPDATE barter_requests SET requested_skill = $1, offered_skill = $2, status = $3
		WHERE id = $4`
	tag, err := db(ctx, r.pool).Exec(ctx, query,
		req.RequestedSkill, req.OfferedSkill, string(req.Status), req.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *BarterRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := db(ctx, r.pool).Exec(ctx, `DELETE FROM barter_requests WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *BarterRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := db(ctx, r.pool).Query(ctx,
		`DELETE FROM barter_requests WHERE requester_id = $1 OR responder_id = $1 RETURNING id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
