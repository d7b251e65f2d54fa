package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/skillbarter/internal/domain"
	"github.com/vedran77/skillbarter/internal/repository"
)

var (
	ErrEmptyContent     = errors.New("content is required")
	ErrPostNotFound     = errors.New("post not found")
	ErrNotPostOwner     = errors.New("only the author can change this post")
	ErrAlreadyLiked     = errors.New("post already liked")
	ErrNotLiked         = errors.New("post has not been liked yet")
	ErrCommentNotFound  = errors.New("comment not found")
	ErrCommentForbidden = errors.New("only the post or comment author can delete this comment")
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type FeedService struct {
	tx       repository.Transactor
	feedRepo repository.FeedRepository
	userRepo repository.UserRepository
}

func NewFeedService(tx repository.Transactor, feedRepo repository.FeedRepository, userRepo repository.UserRepository) *FeedService {
	return &FeedService{
		tx:       tx,
		feedRepo: feedRepo,
		userRepo: userRepo,
	}
}

func (s *FeedService) Create(ctx context.Context, userID uuid.UUID, content string) (*domain.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	now := time.Now()
	post := &domain.Post{
		ID:        uuid.New(),
		UserID:    userID,
		Content:   content,
		Likes:     []domain.UserSummary{},
		Comments:  []domain.Comment{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.feedRepo.Create(ctx, post); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("creating post: %w", err)
	}
	return s.load(ctx, post.ID)
}

// List returns one page of posts written by the user or their accepted
// connections, newest first. page starts at 1.
func (s *FeedService) List(ctx context.Context, userID uuid.UUID, page, limit int) (*domain.FeedPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	limit = min(limit, MaxPageSize)
	// Keeps page*limit from overflowing.
	page = min(page, math.MaxInt/limit)

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	authors := append([]uuid.UUID{userID}, user.Connections...)

	total, err := s.feedRepo.CountByAuthors(ctx, authors)
	if err != nil {
		return nil, fmt.Errorf("counting posts: %w", err)
	}
	posts, err := s.feedRepo.ListByAuthors(ctx, authors, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	if posts == nil {
		posts = []domain.Post{}
	}

	return &domain.FeedPage{
		Posts:       posts,
		TotalPages:  (total + limit - 1) / limit,
		CurrentPage: page,
		HasNextPage: page*limit < total,
	}, nil
}

func (s *FeedService) Update(ctx context.Context, postID, userID uuid.UUID, content string) (*domain.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	var post *domain.Post
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.load(ctx, postID)
		if err != nil {
			return err
		}
		if err := authorize(current, userID, ErrNotPostOwner, domain.RoleOwner); err != nil {
			return err
		}
		if err := s.feedRepo.UpdateContent(ctx, postID, content); err != nil {
			return fmt.Errorf("updating post: %w", err)
		}
		post, err = s.load(ctx, postID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (s *FeedService) Delete(ctx context.Context, postID, userID uuid.UUID) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		post, err := s.load(ctx, postID)
		if err != nil {
			return err
		}
		if err := authorize(post, userID, ErrNotPostOwner, domain.RoleOwner); err != nil {
			return err
		}
		if err := s.feedRepo.Delete(ctx, postID); err != nil {
			return fmt.Errorf("deleting post: %w", err)
		}
		return nil
	})
}

// Like adds the user to the post's likes and returns the updated likes.
func (s *FeedService) Like(ctx context.Context, postID, userID uuid.UUID) ([]domain.UserSummary, error) {
	return s.toggleLike(ctx, postID, userID, true)
}

// Unlike removes the user from the post's likes and returns the updated likes.
func (s *FeedService) Unlike(ctx context.Context, postID, userID uuid.UUID) ([]domain.UserSummary, error) {
	return s.toggleLike(ctx, postID, userID, false)
}

func (s *FeedService) toggleLike(ctx context.Context, postID, userID uuid.UUID, like bool) ([]domain.UserSummary, error) {
	var likes []domain.UserSummary
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		post, err := s.load(ctx, postID)
		if err != nil {
			return err
		}
		if err := authorize(post, userID, ErrPostNotFound, domain.RoleAnyone); err != nil {
			return err
		}

		liked := post.LikedBy(userID)
		switch {
		case like && liked:
			return ErrAlreadyLiked
		case !like && !liked:
			return ErrNotLiked
		case like:
			err = s.feedRepo.AddLike(ctx, postID, userID)
		default:
			err = s.feedRepo.RemoveLike(ctx, postID, userID)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("updating likes: %w", err)
		}

		post, err = s.load(ctx, postID)
		if err != nil {
			return err
		}
		likes = post.Likes
		return nil
	})
	if err != nil {
		return nil, err
	}
	if likes == nil {
		likes = []domain.UserSummary{}
	}
	return likes, nil
}

// AddComment appends a comment and returns the post's comments.
func (s *FeedService) AddComment(ctx context.Context, postID, userID uuid.UUID, text string) ([]domain.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyContent
	}

	var comments []domain.Comment
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		post, err := s.load(ctx, postID)
		if err != nil {
			return err
		}
		if err := authorize(post, userID, ErrPostNotFound, domain.RoleAnyone); err != nil {
			return err
		}

		now := time.Now()
		comment := &domain.Comment{
			ID:        uuid.New(),
			PostID:    postID,
			UserID:    userID,
			Text:      text,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.feedRepo.AddComment(ctx, comment); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("adding comment: %w", err)
		}

		post, err = s.load(ctx, postID)
		if err != nil {
			return err
		}
		comments = post.Comments
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// DeleteComment removes a comment. The post author and the comment author
// may delete it. Returns the remaining comments.
func (s *FeedService) DeleteComment(ctx context.Context, postID, commentID, userID uuid.UUID) ([]domain.Comment, error) {
	var comments []domain.Comment
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		post, err := s.load(ctx, postID)
		if err != nil {
			return err
		}
		comment := post.Comment(commentID)
		if comment == nil {
			return ErrCommentNotFound
		}
		target := domain.CommentOnPost{Post: post, Comment: comment}
		if err := authorize(target, userID, ErrCommentForbidden, domain.RoleOwner, domain.RoleParticipant); err != nil {
			return err
		}

		if err := s.feedRepo.DeleteComment(ctx, postID, commentID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrCommentNotFound
			}
			return fmt.Errorf("deleting comment: %w", err)
		}

		post, err = s.load(ctx, postID)
		if err != nil {
			return err
		}
		comments = post.Comments
		return nil
	})
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []domain.Comment{}
	}
	return comments, nil
}

func (s *FeedService) load(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	post, err := s.feedRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading post: %w", err)
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}
