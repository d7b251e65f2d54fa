package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/vedran77/skillbarter/internal/service"
	"github.com/vedran77/skillbarter/internal/transport/http/middleware"
	"github.com/vedran77/skillbarter/pkg/validator"
)

type FeedHandler struct {
	feedService *service.FeedService
	logger      *slog.Logger
}

func NewFeedHandler(feedService *service.FeedService, logger *slog.Logger) *FeedHandler {
	return &FeedHandler{feedService: feedService, logger: logger}
}

type contentInput struct {
	Content string `json:"content"`
}

func (h *FeedHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input contentInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if errs := validator.ValidateContent("content", "Content", input.Content); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	post, err := h.feedService.Create(r.Context(), userID, input.Content)
	if err != nil {
		h.writeFeedError(w, "create post", err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// List reads ?page= and ?limit=; missing or malformed values fall back to
// the first page of the default size.
func (h *FeedHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := h.feedService.List(r.Context(), userID, page, limit)
	if err != nil {
		h.writeFeedError(w, "list feed", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *FeedHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	postID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var input contentInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if errs := validator.ValidateContent("content", "Content", input.Content); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	post, err := h.feedService.Update(r.Context(), postID, userID, input.Content)
	if err != nil {
		h.writeFeedError(w, "update post", err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (h *FeedHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	postID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.feedService.Delete(r.Context(), postID, userID); err != nil {
		h.writeFeedError(w, "delete post", err)
		return
	}

	writeMsg(w, http.StatusOK, "Post removed")
}

func (h *FeedHandler) Like(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	postID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	likes, err := h.feedService.Like(r.Context(), postID, userID)
	if err != nil {
		h.writeFeedError(w, "like post", err)
		return
	}

	writeJSON(w, http.StatusOK, likes)
}

func (h *FeedHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	postID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	likes, err := h.feedService.Unlike(r.Context(), postID, userID)
	if err != nil {
		h.writeFeedError(w, "unlike post", err)
		return
	}

	writeJSON(w, http.StatusOK, likes)
}

func (h *FeedHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	postID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var input struct {
		Text string `json:"text"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	if errs := validator.ValidateContent("text", "Text", input.Text); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	comments, err := h.feedService.AddComment(r.Context(), postID, userID, input.Text)
	if err != nil {
		h.writeFeedError(w, "add comment", err)
		return
	}

	writeJSON(w, http.StatusOK, comments)
}

func (h *FeedHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	postID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	commentID, ok := pathID(w, r, "commentId")
	if !ok {
		return
	}

	comments, err := h.feedService.DeleteComment(r.Context(), postID, commentID, userID)
	if err != nil {
		h.writeFeedError(w, "delete comment", err)
		return
	}

	writeJSON(w, http.StatusOK, comments)
}

func (h *FeedHandler) writeFeedError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		writeMsg(w, http.StatusNotFound, "Post not found")
	case errors.Is(err, service.ErrCommentNotFound):
		writeMsg(w, http.StatusNotFound, "Comment not found")
	case errors.Is(err, service.ErrNotPostOwner), errors.Is(err, service.ErrCommentForbidden):
		writeMsg(w, http.StatusUnauthorized, "Not authorized")
	case errors.Is(err, service.ErrAlreadyLiked):
		writeMsg(w, http.StatusBadRequest, "Post already liked")
	case errors.Is(err, service.ErrNotLiked):
		writeMsg(w, http.StatusBadRequest, "Post has not yet been liked")
	case errors.Is(err, service.ErrEmptyContent):
		writeMsg(w, http.StatusBadRequest, "Content is required")
	case errors.Is(err, service.ErrUserNotFound):
		writeMsg(w, http.StatusNotFound, "User not found")
	default:
		writeServerError(w, h.logger, op, err)
	}
}
