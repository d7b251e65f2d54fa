package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/skillbarter/internal/domain"
	"github.com/vedran77/skillbarter/internal/repository"
)

var (
	ErrCannotConnectSelf      = errors.New("you cannot send a connection request to yourself")
	ErrConnectionExists       = errors.New("a connection request already exists between these users")
	ErrConnectionNotFound     = errors.New("connection not found")
	ErrNotConnectionRecipient = errors.New("only the recipient can respond to this connection request")
	ErrConnectionNotPending   = errors.New("connection request has already been answered")
	ErrConnectionForbidden    = errors.New("not allowed to delete this connection")
)

type ConnectionService struct {
	tx       repository.Transactor
	connRepo repository.ConnectionRepository
	userRepo repository.UserRepository
}

func NewConnectionService(tx repository.Transactor, connRepo repository.ConnectionRepository, userRepo repository.UserRepository) *ConnectionService {
	return &ConnectionService{
		tx:       tx,
		connRepo: connRepo,
		userRepo: userRepo,
	}
}

// Request creates a pending connection from requester to recipient and
// records it in both users' pending mirrors.
func (s *ConnectionService) Request(ctx context.Context, requesterID, recipientID uuid.UUID) (*domain.Connection, error) {
	if requesterID == recipientID {
		return nil, ErrCannotConnectSelf
	}

	conn := &domain.Connection{
		ID:          uuid.New(),
		RequesterID: requesterID,
		RecipientID: recipientID,
		Status:      domain.StatusPending,
		Date:        time.Now(),
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := lockUsers(ctx, s.userRepo, requesterID, recipientID); err != nil {
			return err
		}
		recipient, err := s.userRepo.GetByID(ctx, recipientID)
		if err != nil {
			return fmt.Errorf("looking up recipient: %w", err)
		}
		if recipient == nil {
			return ErrUserNotFound
		}

		existing, err := s.connRepo.FindBetween(ctx, requesterID, recipientID)
		if err != nil {
			return fmt.Errorf("checking existing connection: %w", err)
		}
		if existing != nil {
			return ErrConnectionExists
		}

		if err := s.connRepo.Create(ctx, conn); err != nil {
			switch {
			case errors.Is(err, repository.ErrDuplicate):
				return ErrConnectionExists
			case errors.Is(err, repository.ErrNotFound):
				return ErrUserNotFound
			}
			return fmt.Errorf("creating connection: %w", err)
		}

		return applyMirrors(ctx, s.userRepo,
			push(requesterID, domain.MirrorSentConnectionRequests, recipientID),
			push(recipientID, domain.MirrorReceivedConnectionRequests, requesterID),
		)
	})
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Accept marks a pending connection accepted. Only the recipient may accept.
func (s *ConnectionService) Accept(ctx context.Context, connectionID, userID uuid.UUID) (*domain.Connection, error) {
	return s.respond(ctx, connectionID, userID, domain.StatusAccepted)
}

// Reject marks a pending connection rejected. Only the recipient may reject.
func (s *ConnectionService) Reject(ctx context.Context, connectionID, userID uuid.UUID) (*domain.Connection, error) {
	return s.respond(ctx, connectionID, userID, domain.StatusRejected)
}

func (s *ConnectionService) respond(ctx context.Context, connectionID, userID uuid.UUID, status domain.RequestStatus) (*domain.Connection, error) {
	var conn *domain.Connection
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		conn, err = s.load(ctx, connectionID)
		if err != nil {
			return err
		}
		if err := authorize(conn, userID, ErrNotConnectionRecipient, domain.RoleRecipient); err != nil {
			return err
		}
		if conn.Status != domain.StatusPending {
			return ErrConnectionNotPending
		}

		if err := s.connRepo.UpdateStatus(ctx, conn.ID, status); err != nil {
			return fmt.Errorf("updating connection status: %w", err)
		}
		conn.Status = status

		ops := []mirrorOp{
			pull(conn.RequesterID, domain.MirrorSentConnectionRequests, conn.RecipientID),
			pull(conn.RecipientID, domain.MirrorReceivedConnectionRequests, conn.RequesterID),
		}
		if status == domain.StatusAccepted {
			ops = append(ops,
				push(conn.RequesterID, domain.MirrorConnections, conn.RecipientID),
				push(conn.RecipientID, domain.MirrorConnections, conn.RequesterID),
			)
		}
		return applyMirrors(ctx, s.userRepo, ops...)
	})
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Delete removes a connection in any state. Any authenticated user may
// delete any connection. An accepted connection is also removed from both
// users' connections mirrors.
func (s *ConnectionService) Delete(ctx context.Context, connectionID, userID uuid.UUID) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		conn, err := s.load(ctx, connectionID)
		if err != nil {
			return err
		}
		if err := authorize(conn, userID, ErrConnectionForbidden, domain.RoleAnyone); err != nil {
			return err
		}

		ops := []mirrorOp{
			pull(conn.RequesterID, domain.MirrorSentConnectionRequests, conn.RecipientID),
			pull(conn.RecipientID, domain.MirrorReceivedConnectionRequests, conn.RequesterID),
		}
		if conn.Status == domain.StatusAccepted {
			ops = append(ops,
				pull(conn.RequesterID, domain.MirrorConnections, conn.RecipientID),
				pull(conn.RecipientID, domain.MirrorConnections, conn.RequesterID),
			)
		}
		if err := applyMirrors(ctx, s.userRepo, ops...); err != nil {
			return err
		}

		if err := s.connRepo.Delete(ctx, conn.ID); err != nil {
			return fmt.Errorf("deleting connection: %w", err)
		}
		return nil
	})
}

// List returns every connection the user is party to, in any state.
func (s *ConnectionService) List(ctx context.Context, userID uuid.UUID) ([]domain.Connection, error) {
	conns, err := s.connRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if conns == nil {
		conns = []domain.Connection{}
	}
	return conns, nil
}

// UserConnections returns summaries of the user's accepted connections.
func (s *ConnectionService) UserConnections(ctx context.Context, userID uuid.UUID) ([]domain.UserSummary, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	summaries, err := s.userRepo.ListSummaries(ctx, user.Connections)
	if err != nil {
		return nil, err
	}
	if summaries == nil {
		summaries = []domain.UserSummary{}
	}
	return summaries, nil
}

func (s *ConnectionService) load(ctx context.Context, id uuid.UUID) (*domain.Connection, error) {
	conn, err := s.connRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading connection: %w", err)
	}
	if conn == nil {
		return nil, ErrConnectionNotFound
	}
	return conn, nil
}
