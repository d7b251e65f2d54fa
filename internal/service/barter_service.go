package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/skillbarter/internal/domain"
	"github.com/vedran77/skillbarter/internal/repository"
)

var (
	ErrBarterNotFound     = errors.New("barter request not found")
	ErrResponderNotFound  = errors.New("responder not found")
	ErrCannotBarterSelf   = errors.New("you cannot send a barter request to yourself")
	ErrSkillRequired      = errors.New("requested and offered skills are required")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrNotBarterRequester = errors.New("only the requester can update this barter request")
	ErrNotBarterResponder = errors.New("only the responder can answer this barter request")
	ErrNotBarterParty     = errors.New("only the requester or responder can delete this barter request")
)

type BarterService struct {
	tx         repository.Transactor
	barterRepo repository.BarterRepository
	userRepo   repository.UserRepository
}

func NewBarterService(tx repository.Transactor, barterRepo repository.BarterRepository, userRepo repository.UserRepository) *BarterService {
	return &BarterService{
		tx:         tx,
		barterRepo: barterRepo,
		userRepo:   userRepo,
	}
}

type CreateBarterInput struct {
	ResponderID    uuid.UUID
	RequestedSkill string
	OfferedSkill   string
}

// UpdateBarterInput is a partial update; nil fields are left unchanged.
type UpdateBarterInput struct {
	RequestedSkill *string
	OfferedSkill   *string
	Status         *domain.RequestStatus
}

// Create opens a pending barter request and records it in both users'
// barter mirrors. Several requests between the same pair may coexist.
func (s *BarterService) Create(ctx context.Context, requesterID uuid.UUID, input CreateBarterInput) (*domain.BarterRequest, error) {
	if input.ResponderID == requesterID {
		return nil, ErrCannotBarterSelf
	}
	requested := strings.TrimSpace(input.RequestedSkill)
	offered := strings.TrimSpace(input.OfferedSkill)
	if requested == "" || offered == "" {
		return nil, ErrSkillRequired
	}

	req := &domain.BarterRequest{
		ID:             uuid.New(),
		RequesterID:    requesterID,
		ResponderID:    input.ResponderID,
		RequestedSkill: requested,
		OfferedSkill:   offered,
		Status:         domain.StatusPending,
		Date:           time.Now(),
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := lockUsers(ctx, s.userRepo, requesterID, input.ResponderID); err != nil {
			return err
		}
		responder, err := s.userRepo.GetByID(ctx, input.ResponderID)
		if err != nil {
			return fmt.Errorf("looking up responder: %w", err)
		}
		if responder == nil {
			return ErrResponderNotFound
		}

		if err := s.barterRepo.Create(ctx, req); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("creating barter request: %w", err)
		}

		return applyMirrors(ctx, s.userRepo,
			push(requesterID, domain.MirrorSentBarterRequests, req.ID),
			push(input.ResponderID, domain.MirrorReceivedBarterRequests, req.ID),
		)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// Update lets the requester change skills or status. Status changes here do
// not go through the responder-only Accept/Reject path.
func (s *BarterService) Update(ctx context.Context, id, userID uuid.UUID, input UpdateBarterInput) (*domain.BarterRequest, error) {
	if input.Status != nil && !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	var req *domain.BarterRequest
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		req, err = s.load(ctx, id)
		if err != nil {
			return err
		}
		if err := authorize(req, userID, ErrNotBarterRequester, domain.RoleRequester); err != nil {
			return err
		}

		if input.RequestedSkill != nil {
			if v := strings.TrimSpace(*input.RequestedSkill); v != "" {
				req.RequestedSkill = v
			}
		}
		if input.OfferedSkill != nil {
			if v := strings.TrimSpace(*input.OfferedSkill); v != "" {
				req.OfferedSkill = v
			}
		}
		if input.Status != nil {
			req.Status = *input.Status
		}

		if err := s.barterRepo.Update(ctx, req); err != nil {
			return fmt.Errorf("updating barter request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// Accept sets the request accepted. Only the responder may accept.
func (s *BarterService) Accept(ctx context.Context, id, userID uuid.UUID) (*domain.BarterRequest, error) {
	return s.respond(ctx, id, userID, domain.StatusAccepted)
}

// Reject sets the request rejected. Only the responder may reject.
func (s *BarterService) Reject(ctx context.Context, id, userID uuid.UUID) (*domain.BarterRequest, error) {
	return s.respond(ctx, id, userID, domain.StatusRejected)
}

// respond changes the status only. The request stays in both barter mirrors
// until it is deleted.
func (s *BarterService) respond(ctx context.Context, id, userID uuid.UUID, status domain.RequestStatus) (*domain.BarterRequest, error) {
	var req *domain.BarterRequest
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		req, err = s.load(ctx, id)
		if err != nil {
			return err
		}
		if err := authorize(req, userID, ErrNotBarterResponder, domain.RoleResponder); err != nil {
			return err
		}

		req.Status = status
		if err := s.barterRepo.Update(ctx, req); err != nil {
			return fmt.Errorf("updating barter status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// Delete removes the request and its mirror entries. Either party may delete.
func (s *BarterService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		req, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if err := authorize(req, userID, ErrNotBarterParty, domain.RoleRequester, domain.RoleResponder); err != nil {
			return err
		}

		if err := s.barterRepo.Delete(ctx, req.ID); err != nil {
			return fmt.Errorf("deleting barter request: %w", err)
		}
		return applyMirrors(ctx, s.userRepo,
			pull(req.RequesterID, domain.MirrorSentBarterRequests, req.ID),
			pull(req.ResponderID, domain.MirrorReceivedBarterRequests, req.ID),
		)
	})
}

// List returns the requests the user sent or received, newest first.
func (s *BarterService) List(ctx context.Context, userID uuid.UUID) ([]domain.BarterRequest, error) {
	reqs, err := s.barterRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if reqs == nil {
		reqs = []domain.BarterRequest{}
	}
	return reqs, nil
}

func (s *BarterService) load(ctx context.Context, id uuid.UUID) (*domain.BarterRequest, error) {
	req, err := s.barterRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading barter request: %w", err)
	}
	if req == nil {
		return nil, ErrBarterNotFound
	}
	return req, nil
}
