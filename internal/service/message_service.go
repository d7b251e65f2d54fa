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
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrNotConnected      = errors.New("you can only message your connections")
	ErrMessageNotFound   = errors.New("message not found")
	ErrNotMessageSender  = errors.New("only the sender can edit this message")
	ErrNotMessageParty   = errors.New("only the sender or receiver can delete this message")
)

// Notifier broadcasts real-time events to connected clients.
type Notifier interface {
	NotifyNewMessage(msg *domain.Message)
	NotifyEditedMessage(msg *domain.Message)
	NotifyDeletedMessage(msg *domain.Message)
}

type MessageService struct {
	tx          repository.Transactor
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	notifier    Notifier
}

func NewMessageService(tx repository.Transactor, messageRepo repository.MessageRepository, userRepo repository.UserRepository) *MessageService {
	return &MessageService{
		tx:          tx,
		messageRepo: messageRepo,
		userRepo:    userRepo,
	}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *MessageService) SetNotifier(n Notifier) {
	s.notifier = n
}

// Send stores a message from sender to recipient. Both users must list each
// other as accepted connections.
func (s *MessageService) Send(ctx context.Context, senderID, recipientID uuid.UUID, content string) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	var msg *domain.Message
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := lockUsers(ctx, s.userRepo, senderID, recipientID); err != nil {
			return err
		}
		recipient, err := s.userRepo.GetByID(ctx, recipientID)
		if err != nil {
			return fmt.Errorf("looking up recipient: %w", err)
		}
		if recipient == nil {
			return ErrRecipientNotFound
		}
		sender, err := s.userRepo.GetByID(ctx, senderID)
		if err != nil {
			return fmt.Errorf("looking up sender: %w", err)
		}
		if sender == nil {
			return ErrUserNotFound
		}
		if !sender.IsConnectedTo(recipientID) || !recipient.IsConnectedTo(senderID) {
			return ErrNotConnected
		}

		created := &domain.Message{
			ID:         uuid.New(),
			SenderID:   senderID,
			ReceiverID: recipientID,
			Content:    content,
			Status:     domain.MessageStatusSent,
			Date:       time.Now(),
		}
		if err := s.messageRepo.Create(ctx, created); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("creating message: %w", err)
		}

		msg, err = s.load(ctx, created.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyNewMessage(msg)
	}
	return msg, nil
}

// List returns every message the user sent or received, newest first.
func (s *MessageService) List(ctx context.Context, userID uuid.UUID) ([]domain.Message, error) {
	msgs, err := s.messageRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return msgs, nil
}

// Update replaces the content and marks the message edited. Sender only.
func (s *MessageService) Update(ctx context.Context, id, userID uuid.UUID, content string) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	var msg *domain.Message
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		msg, err = s.load(ctx, id)
		if err != nil {
			return err
		}
		if err := authorize(msg, userID, ErrNotMessageSender, domain.RoleOwner); err != nil {
			return err
		}

		msg.Content = content
		msg.Edited = true
		if err := s.messageRepo.Update(ctx, msg); err != nil {
			return fmt.Errorf("updating message: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyEditedMessage(msg)
	}
	return msg, nil
}

// Delete removes a message. Sender or receiver may delete.
func (s *MessageService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	var msg *domain.Message
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		msg, err = s.load(ctx, id)
		if err != nil {
			return err
		}
		if err := authorize(msg, userID, ErrNotMessageParty, domain.RoleOwner, domain.RoleParticipant); err != nil {
			return err
		}
		if err := s.messageRepo.Delete(ctx, id); err != nil {
			return fmt.Errorf("deleting message: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.notifier != nil {
		s.notifier.NotifyDeletedMessage(msg)
	}
	return nil
}

func (s *MessageService) load(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	msg, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading message: %w", err)
	}
	if msg == nil {
		return nil, ErrMessageNotFound
	}
	return msg, nil
}
