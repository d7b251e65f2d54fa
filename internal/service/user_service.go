package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/vedran77/skillbarter/internal/domain"
	"github.com/vedran77/skillbarter/internal/repository"
)

var ErrUserNotFound = errors.New("user not found")

type UserService struct {
	tx          repository.Transactor
	userRepo    repository.UserRepository
	connRepo    repository.ConnectionRepository
	barterRepo  repository.BarterRepository
	feedRepo    repository.FeedRepository
	messageRepo repository.MessageRepository
}

func NewUserService(
	tx repository.Transactor,
	userRepo repository.UserRepository,
	connRepo repository.ConnectionRepository,
	barterRepo repository.BarterRepository,
	feedRepo repository.FeedRepository,
	messageRepo repository.MessageRepository,
) *UserService {
	return &UserService{
		tx:          tx,
		userRepo:    userRepo,
		connRepo:    connRepo,
		barterRepo:  barterRepo,
		feedRepo:    feedRepo,
		messageRepo: messageRepo,
	}
}

// UpdateProfileInput holds a partial profile update. Nil and empty values
// leave the stored field unchanged.
type UpdateProfileInput struct {
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	Address        *string `json:"address"`
	Country        *string `json:"country"`
	State          *string `json:"state"`
	City           *string `json:"city"`
	Zipcode        *string `json:"zipcode"`
	Category       *string `json:"category"`
	Skill          *string `json:"skill"`
	ProfilePicture *string `json:"profile_picture"`
	Password       *string `json:"password"`
}

func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// GetPublicProfile returns what other users may see of userID.
func (s *UserService) GetPublicProfile(ctx context.Context, userID uuid.UUID) (*domain.PublicProfile, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := user.Public()
	if profile.Connections == nil {
		profile.Connections = []uuid.UUID{}
	}
	return &profile, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*domain.User, error) {
	var user *domain.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.GetProfile(ctx, userID)
		if err != nil {
			return err
		}

		setIfPresent(&user.FirstName, input.FirstName)
		setIfPresent(&user.LastName, input.LastName)
		setIfPresent(&user.Address, input.Address)
		setIfPresent(&user.Country, input.Country)
		setIfPresent(&user.State, input.State)
		setIfPresent(&user.City, input.City)
		setIfPresent(&user.Zipcode, input.Zipcode)
		setIfPresent(&user.Category, input.Category)
		setIfPresent(&user.Skill, input.Skill)
		if input.ProfilePicture != nil && strings.TrimSpace(*input.ProfilePicture) != "" {
			pic := strings.TrimSpace(*input.ProfilePicture)
			user.ProfilePicture = &pic
		}

		if input.Password != nil && *input.Password != "" {
			hash, err := hashPassword(*input.Password)
			if err != nil {
				return fmt.Errorf("hashing password: %w", err)
			}
			user.PasswordHash = hash
		}

		if err := s.userRepo.Update(ctx, user); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("updating user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteProfile removes the user together with every ledger record, post,
// like, comment and message they are part of, and strips their id and their
// barter ids from other users' mirrors.
func (s *UserService) DeleteProfile(ctx context.Context, userID uuid.UUID) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.GetProfile(ctx, userID); err != nil {
			return err
		}

		if err := s.connRepo.DeleteByUser(ctx, userID); err != nil {
			return fmt.Errorf("deleting connections: %w", err)
		}
		barterIDs, err := s.barterRepo.DeleteByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("deleting barter requests: %w", err)
		}
		if err := s.feedRepo.DeleteByUser(ctx, userID); err != nil {
			return fmt.Errorf("deleting feed content: %w", err)
		}
		if err := s.messageRepo.DeleteByUser(ctx, userID); err != nil {
			return fmt.Errorf("deleting messages: %w", err)
		}
		if err := s.userRepo.PurgeReferences(ctx, userID, barterIDs); err != nil {
			return fmt.Errorf("purging mirror references: %w", err)
		}

		if err := s.userRepo.Delete(ctx, userID); err != nil {
			return fmt.Errorf("deleting user: %w", err)
		}
		return nil
	})
}

func setIfPresent(dst *string, v *string) {
	if v == nil {
		return
	}
	if trimmed := strings.TrimSpace(*v); trimmed != "" {
		*dst = trimmed
	}
}
