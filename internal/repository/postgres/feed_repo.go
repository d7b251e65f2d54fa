package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vedran77/skillbarter/internal/domain"
	"github.com/vedran77/skillbarter/internal/repository"
)

type FeedRepo struct {
	pool *pgxpool.Pool
}

func NewFeedRepo(pool *pgxpool.Pool) *FeedRepo {
	return &FeedRepo{pool: pool}
}

func (r *FeedRepo) Create(ctx context.Context, post *domain.Post) error {
	query := `
		INSERT INTO posts (id, user_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := db(ctx, r.pool).Exec(ctx, query,
		post.ID, post.UserID, post.Content, post.CreatedAt, post.UpdatedAt,
	)
	if isForeignKeyViolation(err) {
		return repository.ErrNotFound
	}
	return err
}

func (r *FeedRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	query := `
		SELECT p.id, p.user_id, p.content, p.created_at, p.updated_at,
			u.first_name, u.last_name, u.profile_picture
		FROM posts p
		JOIN users u ON p.user_id = u.id
		WHERE p.id = $1`

	var (
		post   domain.Post
		author domain.UserSummary
	)
	err := db(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&post.ID, &post.UserID, &post.Content, &post.CreatedAt, &post.UpdatedAt,
		&author.FirstName, &author.LastName, &author.ProfilePicture,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	author.ID = post.UserID
	post.Author = &author

	posts := []domain.Post{post}
	if err := r.attachChildren(ctx, posts); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

func (r *FeedRepo) ListByAuthors(ctx context.Context, authorIDs []uuid.UUID, limit, offset int) ([]domain.Post, error) {
	if offset < 0 || limit < 1 {
		return nil, nil
	}
	query := `
		SELECT p.id, p.user_id, p.content, p.created_at, p.updated_at,
			u.first_name, u.last_name, u.profile_picture
		FROM posts p
		JOIN users u ON p.user_id = u.id
		WHERE p.user_id = ANY($1::uuid[])
		ORDER BY p.created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := db(ctx, r.pool).Query(ctx, query, authorIDs, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		var (
			post   domain.Post
			author domain.UserSummary
		)
		if err := rows.Scan(
			&post.ID, &post.UserID, &post.Content, &post.CreatedAt, &post.UpdatedAt,
			&author.FirstName, &author.LastName, &author.ProfilePicture,
		); err != nil {
			return nil, err
		}
		author.ID = post.UserID
		post.Author = &author
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachChildren(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *FeedRepo) CountByAuthors(ctx context.Context, authorIDs []uuid.UUID) (int, error) {
	var n int
	err := db(ctx, r.pool).QueryRow(ctx,
		`SELECT count(*) FROM posts WHERE user_id = ANY($1::uuid[])`, authorIDs,
	).Scan(&n)
	return n, err
}

func (r *FeedRepo) UpdateContent(ctx context.Context, id uuid.UUID, content string) error {
	tag, err := db(ctx, r.pool).Exec(ctx,
		`UPDATE posts SET content = $1, updated_at = $2 WHERE id = $3`, content, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *FeedRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := db(ctx, r.pool).Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *FeedRepo) AddLike(ctx context.Context, postID, userID uuid.UUID) error {
	_, err := db(ctx, r.pool).Exec(ctx, `
		INSERT INTO post_likes (post_id, user_id, created_at) VALUES ($1, $2, $3)
		ON CONFLICT (post_id, user_id) DO NOTHING`, postID, userID, time.Now())
	if isForeignKeyViolation(err) {
		return repository.ErrNotFound
	}
	return err
}

func (r *FeedRepo) RemoveLike(ctx context.Context, postID, userID uuid.UUID) error {
	_, err := db(ctx, r.pool).Exec(ctx,
		`DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	return err
}

func (r *FeedRepo) AddComment(ctx context.Context, c *domain.Comment) error {
	query := `
		INSERT INTO post_comments (id, post_id, user_id, text, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := db(ctx, r.pool).Exec(ctx, query,
		c.ID, c.PostID, c.UserID, c.Text, c.CreatedAt, c.UpdatedAt,
	)
	if isForeignKeyViolation(err) {
		return repository.ErrNotFound
	}
	return err
}

func (r *FeedRepo) DeleteComment(ctx context.Context, postID, commentID uuid.UUID) error {
	tag, err := db(ctx, r.pool).Exec(ctx,
		`DELETE FROM post_comments WHERE post_id = $1 AND id = $2`, postID, commentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *FeedRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	q := db(ctx, r.pool)
	if _, err := q.Exec(ctx, `DELETE FROM post_likes WHERE user_id = $1`, userID); err != nil {
		return err
	}
	if _, err := q.Exec(ctx, `DELETE FROM post_comments WHERE user_id = $1`, userID); err != nil {
		return err
	}
	_, err := q.Exec(ctx, `DELETE FROM posts WHERE user_id = $1`, userID)
	return err
}

// attachChildren loads likes and comments for a page of posts in two queries.
func (r *FeedRepo) attachChildren(ctx context.Context, posts []domain.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(posts))
	index := make(map[uuid.UUID]int, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
		index[posts[i].ID] = i
		posts[i].Likes = []domain.UserSummary{}
		posts[i].Comments = []domain.Comment{}
	}

	q := db(ctx, r.pool)

	likeRows, err := q.Query(ctx, `
		SELECT l.post_id, u.id, u.first_name, u.last_name, u.profile_picture
		FROM post_likes l
		JOIN users u ON l.user_id = u.id
		WHERE l.post_id = ANY($1::uuid[])
		ORDER BY l.created_at`, ids)
	if err != nil {
		return err
	}
	for likeRows.Next() {
		var (
			postID uuid.UUID
			liker  domain.UserSummary
		)
		if err := likeRows.Scan(&postID, &liker.ID, &liker.FirstName, &liker.LastName, &liker.ProfilePicture); err != nil {
			likeRows.Close()
			return err
		}
		p := &posts[index[postID]]
		p.Likes = append(p.Likes, liker)
	}
	likeRows.Close()
	if err := likeRows.Err(); err != nil {
		return err
	}

	commentRows, err := q.Query(ctx, `
		SELECT c.id, c.post_id, c.user_id, c.text, c.created_at, c.updated_at,
			u.first_name, u.last_name, u.profile_picture
		FROM post_comments c
		JOIN users u ON c.user_id = u.id
		WHERE c.post_id = ANY($1::uuid[])
		ORDER BY c.created_at`, ids)
	if err != nil {
		return err
	}
	defer commentRows.Close()

	for commentRows.Next() {
		var (
			c      domain.Comment
			author domain.UserSummary
		)
		if err := commentRows.Scan(
			&c.ID, &c.PostID, &c.UserID, &c.Text, &c.CreatedAt, &c.UpdatedAt,
			&author.FirstName, &author.LastName, &author.ProfilePicture,
		); err != nil {
			return err
		}
		author.ID = c.UserID
		c.Author = &author
		p := &posts[index[c.PostID]]
		p.Comments = append(p.Comments, c)
	}
	return commentRows.Err()
}
