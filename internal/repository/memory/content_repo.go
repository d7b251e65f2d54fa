package memory

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/skillbarter/internal/domain"
	"github.com/vedran77/skillbarter/internal/repository"
)

type FeedRepo struct {
	s *Store
}

func (r *FeedRepo) Create(ctx context.Context, post *domain.Post) error {
	defer r.s.lock(ctx)()
	if !r.s.data.hasUsers(post.UserID) {
		return repository.ErrNotFound
	}
	cp := copyPost(post)
	cp.Author = nil
	r.s.data.posts[post.ID] = cp
	r.s.data.track(post.ID)
	return nil
}

func (r *FeedRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	defer r.s.lock(ctx)()
	p, ok := r.s.data.posts[id]
	if !ok {
		return nil, nil
	}
	return r.joined(p), nil
}

func (r *FeedRepo) ListByAuthors(ctx context.Context, authorIDs []uuid.UUID, limit, offset int) ([]domain.Post, error) {
	defer r.s.lock(ctx)()
	st := r.s.data
	var all []domain.Post
	for _, p := range st.posts {
		if slices.Contains(authorIDs, p.UserID) {
			all = append(all, *p)
		}
	}
	newestFirst(st, all, func(p domain.Post) (uuid.UUID, time.Time) { return p.ID, p.CreatedAt })

	if offset < 0 || offset >= len(all) {
		return nil, nil
	}
	end := min(offset+limit, len(all))
	var out []domain.Post
	for i := offset; i < end; i++ {
		out = append(out, *r.joined(&all[i]))
	}
	return out, nil
}

func (r *FeedRepo) CountByAuthors(ctx context.Context, authorIDs []uuid.UUID) (int, error) {
	defer r.s.lock(ctx)()
	n := 0
	for _, p := range r.s.data.posts {
		if slices.Contains(authorIDs, p.UserID) {
			n++
		}
	}
	return n, nil
}

func (r *FeedRepo) UpdateContent(ctx context.Context, id uuid.UUID, content string) error {
	defer r.s.lock(ctx)()
	p, ok := r.s.data.posts[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Content = content
	p.UpdatedAt = time.Now()
	return nil
}

func (r *FeedRepo) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.data.posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.data.posts, id)
	delete(r.s.data.order, id)
	return nil
}

func (r *FeedRepo) AddLike(ctx context.Context, postID, userID uuid.UUID) error {
	defer r.s.lock(ctx)()
	p, ok := r.s.data.posts[postID]
	if !ok || !r.s.data.hasUsers(userID) {
		return repository.ErrNotFound
	}
	if !p.LikedBy(userID) {
		p.Likes = append(p.Likes, domain.UserSummary{ID: userID})
	}
	return nil
}

func (r *FeedRepo) RemoveLike(ctx context.Context, postID, userID uuid.UUID) error {
	defer r.s.lock(ctx)()
	p, ok := r.s.data.posts[postID]
	if !ok {
		return repository.ErrNotFound
	}
	p.Likes = slices.DeleteFunc(p.Likes, func(l domain.UserSummary) bool { return l.ID == userID })
	return nil
}

func (r *FeedRepo) AddComment(ctx context.Context, c *domain.Comment) error {
	defer r.s.lock(ctx)()
	p, ok := r.s.data.posts[c.PostID]
	if !ok || !r.s.data.hasUsers(c.UserID) {
		return repository.ErrNotFound
	}
	cp := *c
	cp.Author = nil
	p.Comments = append(p.Comments, cp)
	return nil
}

func (r *FeedRepo) DeleteComment(ctx context.Context, postID, commentID uuid.UUID) error {
	defer r.s.lock(ctx)()
	p, ok := r.s.data.posts[postID]
	if !ok {
		return repository.ErrNotFound
	}
	before := len(p.Comments)
	p.Comments = slices.DeleteFunc(p.Comments, func(c domain.Comment) bool { return c.ID == commentID })
	if len(p.Comments) == before {
		return repository.ErrNotFound
	}
	return nil
}

func (r *FeedRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	defer r.s.lock(ctx)()
	for id, p := range r.s.data.posts {
		if p.UserID == userID {
			delete(r.s.data.posts, id)
			delete(r.s.data.order, id)
			continue
		}
		p.Likes = slices.DeleteFunc(p.Likes, func(l domain.UserSummary) bool { return l.ID == userID })
		p.Comments = slices.DeleteFunc(p.Comments, func(c domain.Comment) bool { return c.UserID == userID })
	}
	return nil
}

func (r *FeedRepo) joined(p *domain.Post) *domain.Post {
	st := r.s.data
	cp := copyPost(p)
	cp.Author = st.summary(p.UserID)
	for i := range cp.Likes {
		cp.Likes[i] = *st.summary(cp.Likes[i].ID)
	}
	for i := range cp.Comments {
		cp.Comments[i].Author = st.summary(cp.Comments[i].UserID)
	}
	return cp
}

type MessageRepo struct {
	s *Store
}

func (r *MessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	defer r.s.lock(ctx)()
	if !r.s.data.hasUsers(msg.SenderID, msg.ReceiverID) {
		return repository.ErrNotFound
	}
	cp := *msg
	cp.Sender, cp.Receiver = nil, nil
	r.s.data.messages[msg.ID] = &cp
	r.s.data.track(msg.ID)
	return nil
}

func (r *MessageRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	defer r.s.lock(ctx)()
	m, ok := r.s.data.messages[id]
	if !ok {
		return nil, nil
	}
	return r.joined(m), nil
}

func (r *MessageRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Message, error) {
	defer r.s.lock(ctx)()
	st := r.s.data
	var out []domain.Message
	for _, m := range st.messages {
		if m.SenderID == userID || m.ReceiverID == userID {
			out = append(out, *r.joined(m))
		}
	}
	newestFirst(st, out, func(m domain.Message) (uuid.UUID, time.Time) { return m.ID, m.Date })
	return out, nil
}

func (r *MessageRepo) Update(ctx context.Context, msg *domain.Message) error {
	defer r.s.lock(ctx)()
	m, ok := r.s.data.messages[msg.ID]
	if !ok {
		return repository.ErrNotFound
	}
	m.Content = msg.Content
	m.Status = msg.Status
	m.Edited = msg.Edited
	return nil
}

func (r *MessageRepo) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.data.messages[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.data.messages, id)
	delete(r.s.data.order, id)
	return nil
}

func (r *MessageRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	defer r.s.lock(ctx)()
	for id, m := range r.s.data.messages {
		if m.SenderID == userID || m.ReceiverID == userID {
			delete(r.s.data.messages, id)
			delete(r.s.data.order, id)
		}
	}
	return nil
}

func (r *MessageRepo) joined(m *domain.Message) *domain.Message {
	cp := *m
	cp.Sender = r.s.data.summary(m.SenderID)
	cp.Receiver = r.s.data.summary(m.ReceiverID)
	return &cp
}
