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

const messageSelect = `
	SELECT m.id, m.sender_id, m.receiver_id, m.content, m.status, m.edited, m.date,
		s.first_name, s.last_name, s.profile_picture,
		rv.first_name, rv.last_name, rv.profile_picture
	FROM messages m
	JOIN users s ON m.sender_id = s.id
	JOIN users rv ON m.receiver_id = rv.id`

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	query := `
		INSERT INTO messages (id, sender_id, receiver_id, content, status, edited, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := db(ctx, r.pool).Exec(ctx, query,
		msg.ID, msg.SenderID, msg.ReceiverID, msg.Content, msg.Status, msg.Edited, msg.Date,
	)
	if isForeignKeyViolation(err) {
		return repository.ErrNotFound
	}
	return err
}

func (r *MessageRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	row := db(ctx, r.pool).QueryRow(ctx, messageSelect+` WHERE m.id = $1`, id)
	msg, err := scanMessage(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return msg, err
}

func (r *MessageRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Message, error) {
	rows, err := db(ctx, r.pool).Query(ctx,
		messageSelect+` WHERE m.sender_id = $1 OR m.receiver_id = $1 ORDER BY m.date DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *msg)
	}
	return messages, rows.Err()
}

func (r *MessageRepo) Update(ctx context.Context, msg *domain.Message) error {
	tag, err := db(ctx, r.pool).Exec(ctx,
		`UPDATE messages SET content = $1, status = $2, edited = $3 WHERE id = $4`,
		msg.Content, msg.Status, msg.Edited, msg.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *MessageRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := db(ctx, r.pool).Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *MessageRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := db(ctx, r.pool).Exec(ctx,
		`DELETE FROM messages WHERE sender_id = $1 OR receiver_id = $1`, userID)
	return err
}

func scanMessage(row pgx.Row) (*domain.Message, error) {
	var (
		msg      domain.Message
		sender   domain.UserSummary
		receiver domain.UserSummary
	)
	if err := row.Scan(
		&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content, &msg.Status, &msg.Edited, &msg.Date,
		&sender.FirstName, &sender.LastName, &sender.ProfilePicture,
		&receiver.FirstName, &receiver.LastName, &receiver.ProfilePicture,
	); err != nil {
		return nil, err
	}
	sender.ID = msg.SenderID
	receiver.ID = msg.ReceiverID
	msg.Sender = &sender
	msg.Receiver = &receiver
	return &msg, nil
}
