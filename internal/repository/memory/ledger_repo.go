package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/skillbarter/internal/domain"
	"github.com/vedran77/skillbarter/internal/repository"
)

type ConnectionRepo struct {
	s *Store
}

func (r *ConnectionRepo) Create(ctx context.Context, conn *domain.Connection) error {
	defer r.s.lock(ctx)()
	st := r.s.data
	if !st.hasUsers(conn.RequesterID, conn.RecipientID) {
		return repository.ErrNotFound
	}
	// Mirrors the unordered-pair unique index of the Postgres schema.
	if findBetween(st, conn.RequesterID, conn.RecipientID) != nil {
		return repository.ErrDuplicate
	}
	cp := *conn
	cp.Requester, cp.Recipient = nil, nil
	st.connections[conn.ID] = &cp
	st.track(conn.ID)
	return nil
}

func (r *ConnectionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Connection, error) {
	defer r.s.lock(ctx)()
	c, ok := r.s.data.connections[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *ConnectionRepo) FindBetween(ctx context.Context, a, b uuid.UUID) (*domain.Connection, error) {
	defer r.s.lock(ctx)()
	c := findBetween(r.s.data, a, b)
	if c == nil {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *ConnectionRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Connection, error) {
	defer r.s.lock(ctx)()
	st := r.s.data
	var out []domain.Connection
	for _, c := range st.connections {
		if c.RequesterID != userID && c.RecipientID != userID {
			continue
		}
		cp := *c
		cp.Requester = st.summary(c.RequesterID)
		cp.Recipient = st.summary(c.RecipientID)
		out = append(out, cp)
	}
	newestFirst(st, out, func(c domain.Connection) (uuid.UUID, time.Time) { return c.ID, c.Date })
	return out, nil
}

func (r *ConnectionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.RequestStatus) error {
	defer r.s.lock(ctx)()
	c, ok := r.s.data.connections[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.Status = status
	return nil
}

func (r *ConnectionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.data.connections[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.data.connections, id)
	delete(r.s.data.order, id)
	return nil
}

func (r *ConnectionRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	defer r.s.lock(ctx)()
	for id, c := range r.s.data.connections {
		if c.RequesterID == userID || c.RecipientID == userID {
			delete(r.s.data.connections, id)
			delete(r.s.data.order, id)
		}
	}
	return nil
}

func findBetween(st *state, a, b uuid.UUID) *domain.Connection {
	for _, c := range st.connections {
		if (c.RequesterID == a && c.RecipientID == b) || (c.RequesterID == b && c.RecipientID == a) {
			return c
		}
	}
	return nil
}

type BarterRepo struct {
	s *Store
}

func (r *BarterRepo) Create(ctx context.Context, req *domain.BarterRequest) error {
	defer r.s.lock(ctx)()
	if !r.s.data.hasUsers(req.RequesterID, req.ResponderID) {
		return repository.ErrNotFound
	}
	cp := *req
	cp.Requester, cp.Responder = nil, nil
	r.s.data.barters[req.ID] = &cp
	r.s.data.track(req.ID)
	return nil
}

func (r *BarterRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.BarterRequest, error) {
	defer r.s.lock(ctx)()
	b, ok := r.s.data.barters[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *BarterRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.BarterRequest, error) {
	defer r.s.lock(ctx)()
	st := r.s.data
	var out []domain.BarterRequest
	for _, b := range st.barters {
		if b.RequesterID != userID && b.ResponderID != userID {
			continue
		}
		cp := *b
		cp.Requester = st.summary(b.RequesterID)
		cp.Responder = st.summary(b.ResponderID)
		out = append(out, cp)
	}
	newestFirst(st, out, func(b domain.BarterRequest) (uuid.UUID, time.Time) { return b.ID, b.Date })
	return out, nil
}

func (r *BarterRepo) Update(ctx context.Context, req *domain.BarterRequest) error {
	defer r.s.lock(ctx)()
	b, ok := r.s.data.barters[req.ID]
	if !ok {
		return repository.ErrNotFound
	}
	b.RequestedSkill = req.RequestedSkill
	b.OfferedSkill = req.OfferedSkill
	b.Status = req.Status
	return nil
}

func (r *BarterRepo) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.data.barters[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.data.barters, id)
	delete(r.s.data.order, id)
	return nil
}

func (r *BarterRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	defer r.s.lock(ctx)()
	var ids []uuid.UUID
	for id, b := range r.s.data.barters {
		if b.RequesterID == userID || b.ResponderID == userID {
			ids = append(ids, id)
			delete(r.s.data.barters, id)
			delete(r.s.data.order, id)
		}
	}
	return ids, nil
}
