package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"vidtube/internal/models"
	"vidtube/internal/repository"

	"github.com/google/uuid"
)

const maxCommentLen = 5000

type CommentService struct {
	contents repository.ContentRepository
	comments repository.CommentRepository
	gate     *OwnershipGate
}

type AddCommentInput struct {
	UserID  uuid.UUID
	VideoID uuid.UUID
	Content string
}

func NewCommentService(
	contents repository.ContentRepository,
	comments repository.CommentRepository,
	gate *OwnershipGate,
) *CommentService {
	return &CommentService{
		contents: contents,
		comments: comments,
		gate:     gate,
	}
}

func validateCommentContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", models.NewValidationError("Comment content is required")
	}
	if utf8.RuneCountInString(content) > maxCommentLen {
		return "", models.NewValidationError("Comment too long (max 5000 characters)")
	}
	return content, nil
}

func (s *CommentService) AddComment(ctx context.Context, in AddCommentInput) (*models.Comment, error) {
	if in.UserID == uuid.Nil {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	content, err := validateCommentContent(in.Content)
	if err != nil {
		return nil, err
	}

	exists, err := s.contents.Exists(ctx, models.ContentVideo, in.VideoID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if !exists {
		return nil, models.NewNotFoundError("Video", in.VideoID)
	}

	comment := &models.Comment{
		OwnerID: in.UserID,
		VideoID: in.VideoID,
		Content: content,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, models.NewInternalError(err)
	}
	return comment, nil
}

func (s *CommentService) UpdateComment(ctx context.Context, userID, commentID uuid.UUID, content string) (*models.ContentItem, error) {
	content, err := validateCommentContent(content)
	if err != nil {
		return nil, err
	}
	return s.gate.Update(ctx, models.ContentComment, commentID, userID, Patch{"content": content})
}

func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID uuid.UUID) (*models.ContentItem, error) {
	return s.gate.Delete(ctx, models.ContentComment, commentID, userID)
}
