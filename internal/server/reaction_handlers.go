package server

import (
	"vidtube/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ToggleVideoLike handles POST /api/v1/likes/toggle/v/:videoId
func (s *Server) ToggleVideoLike(c *fiber.Ctx) error {
	return s.toggleReaction(c, models.TargetVideo, "videoId")
}

// ToggleCommentLike handles POST /api/v1/likes/toggle/c/:commentId
func (s *Server) ToggleCommentLike(c *fiber.Ctx) error {
	return s.toggleReaction(c, models.TargetComment, "commentId")
}

// ToggleTweetLike handles POST /api/v1/likes/toggle/t/:tweetId
func (s *Server) ToggleTweetLike(c *fiber.Ctx) error {
	return s.toggleReaction(c, models.TargetTweet, "tweetId")
}

// ToggleLike handles POST /api/v1/likes/toggle/:kind/:targetId where kind is
// video, comment or tweet.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	kind, err := models.ParseTargetKind(c.Params("kind"))
	if err != nil {
		return respondError(c, err)
	}
	return s.toggleReaction(c, kind, "targetId")
}

func (s *Server) toggleReaction(c *fiber.Ctx, kind models.TargetKind, param string) error {
	userID, err := callerID(c)
	if err != nil {
		return nil
	}
	targetID, err := parseID(c, param)
	if err != nil {
		return nil
	}

	result, err := s.reactionService.ToggleReaction(c.UserContext(), userID, kind, targetID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"target_kind": kind,
		"target_id":   targetID,
		"state":       result.State,
		"reacted":     result.Reacted(),
		"count":       result.Count,
	})
}

// GetLikedVideos handles GET /api/v1/likes/videos
func (s *Server) GetLikedVideos(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return nil
	}

	videos, err := s.reactionService.LikedVideos(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(videos)
}
