package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vedran77/skillbarter/internal/domain"
	"github.com/vedran77/skillbarter/internal/repository"
)

const userColumns = `id, first_name, last_name, email, password_hash, address, country, state, city,
	zipcode, category, skill, profile_picture, created_at,
	sent_connection_requests, received_connection_requests, connections,
	sent_barter_requests, received_barter_requests`

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, first_name, last_name, email, password_hash, address, country,
			state, city, zipcode, category, skill, profile_picture, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := db(ctx, r.pool).Exec(ctx, query,
		user.ID, user.FirstName, user.LastName, user.Email, user.PasswordHash,
		user.Address, user.Country, user.State, user.City, user.Zipcode,
		user.Category, user.Skill, user.ProfilePicture, user.CreatedAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.scanUser(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1"+forUpdate(ctx), id)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanUser(ctx, "SELECT "+userColumns+" FROM users WHERE lower(email) = lower($1)", email)
}

func (r *UserRepo) ListSummaries(ctx context.Context, ids []uuid.UUID) ([]domain.UserSummary, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
		SELECT id, first_name, last_name, email, profile_picture
		FROM users
		WHERE id = ANY($1::uuid[])
		ORDER BY array_position($1::uuid[], id)`

	rows, err := db(ctx, r.pool).Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []domain.UserSummary
	for rows.Next() {
		var s domain.UserSummary
		if err := rows.Scan(&s.ID, &s.FirstName, &s.LastName, &s.Email, &s.ProfilePicture); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func (r *UserRepo) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users SET first_name = $1, last_name = $2, password_hash = $3, address = $4,
			country = $5, state = $6, city = $7, zipcode = $8, category = $9, skill = $10,
			profile_picture = $11
		WHERE id = $12`

	tag, err := db(ctx, r.pool).Exec(ctx, query,
		user.FirstName, user.LastName, user.PasswordHash, user.Address, user.Country,
		user.State, user.City, user.Zipcode, user.Category, user.Skill,
		user.ProfilePicture, user.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := db(ctx, r.pool).Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepo) LockUsers(ctx context.Context, ids ...uuid.UUID) error {
	if len(ids) == 0 || forUpdate(ctx) == "" {
		return nil
	}
	rows, err := db(ctx, r.pool).Query(ctx,
		`SELECT id FROM users WHERE id = ANY($1::uuid[]) ORDER BY id FOR UPDATE`, ids)
	if err != nil {
		return err
	}
	_, err = pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	return err
}

func (r *UserRepo) PushMirror(ctx context.Context, userID uuid.UUID, mirror domain.Mirror, ref uuid.UUID) error {
	if !mirror.Valid() {
		return fmt.Errorf("unknown mirror %q", mirror)
	}
	// Column names come from the closed Mirror set, never from input.
	query := fmt.Sprintf(`
		UPDATE users
		SET %[1]s = CASE WHEN $2::uuid = ANY(%[1]s) THEN %[1]s ELSE array_append(%[1]s, $2::uuid) END
		WHERE id = $1`, mirror)

	return r.execMirror(ctx, query, userID, ref)
}

func (r *UserRepo) PullMirror(ctx context.Context, userID uuid.UUID, mirror domain.Mirror, ref uuid.UUID) error {
	if !mirror.Valid() {
		return fmt.Errorf("unknown mirror %q", mirror)
	}
	query := fmt.Sprintf(`UPDATE users SET %[1]s = array_remove(%[1]s, $2::uuid) WHERE id = $1`, mirror)

	return r.execMirror(ctx, query, userID, ref)
}

func (r *UserRepo) PurgeReferences(ctx context.Context, userID uuid.UUID, barterIDs []uuid.UUID) error {
	if barterIDs == nil {
		barterIDs = []uuid.UUID{}
	}
	query := `
		UPDATE users SET
			sent_connection_requests = array_remove(sent_connection_requests, $1::uuid),
			received_connection_requests = array_remove(received_connection_requests, $1::uuid),
			connections = array_remove(connections, $1::uuid),
			sent_barter_requests = ARRAY(
				SELECT b FROM unnest(sent_barter_requests) WITH ORDINALITY AS t(b, n)
				WHERE NOT b = ANY($2::uuid[]) ORDER BY n),
			received_barter_requests = ARRAY(
				SELECT b FROM unnest(received_barter_requests) WITH ORDINALITY AS t(b, n)
				WHERE NOT b = ANY($2::uuid[]) ORDER BY n)
		WHERE $1::uuid = ANY(sent_connection_requests)
			OR $1::uuid = ANY(received_connection_requests)
			OR $1::uuid = ANY(connections)
			OR sent_barter_requests && $2::uuid[]
			OR received_barter_requests && $2::uuid[]`

	_, err := db(ctx, r.pool).Exec(ctx, query, userID, barterIDs)
	return err
}

func (r *UserRepo) execMirror(ctx context.Context, query string, userID, ref uuid.UUID) error {
	tag, err := db(ctx, r.pool).Exec(ctx, query, userID, ref)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepo) scanUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	err := db(ctx, r.pool).QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash,
		&u.Address, &u.Country, &u.State, &u.City, &u.Zipcode,
		&u.Category, &u.Skill, &u.ProfilePicture, &u.CreatedAt,
		&u.SentConnectionRequests, &u.ReceivedConnectionRequests, &u.Connections,
		&u.SentBarterRequests, &u.ReceivedBarterRequests,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
