package server

import (
	"vidtube/internal/service"

	"github.com/gofiber/fiber/v2"
)

type commentRequest struct {
	Content string `json:"content"`
}

// ListVideoComments handles GET /api/v1/comments/:videoId?page=&limit=
func (s *Server) ListVideoComments(c *fiber.Ctx) error {
	videoID, err := parseID(c, "videoId")
	if err != nil {
		return nil
	}

	page, err := s.feedService.ListVideoComments(c.UserContext(), videoID, parseFeedQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// AddComment handles POST /api/v1/comments/:videoId
func (s *Server) AddComment(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return nil
	}
	videoID, err := parseID(c, "videoId")
	if err != nil {
		return nil
	}
	var req commentRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	comment, err := s.commentService.AddComment(c.UserContext(), service.AddCommentInput{
		UserID:  userID,
		VideoID: videoID,
		Content: req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// UpdateComment handles PATCH /api/v1/comments/c/:commentId
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return nil
	}
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return nil
	}
	var req commentRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	comment, err := s.commentService.UpdateComment(c.UserContext(), userID, commentID, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/v1/comments/c/:commentId
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return nil
	}
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return nil
	}

	comment, err := s.commentService.DeleteComment(c.UserContext(), userID, commentID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comment)
}
