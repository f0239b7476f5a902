package server

import (
	"github.com/gofiber/fiber/v2"
)

type tweetRequest struct {
	Content string `json:"content"`
}

// CreateTweet handles POST /api/v1/tweets
func (s *Server) CreateTweet(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return nil
	}
	var req tweetRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	tweet, err := s.tweetService.CreateTweet(c.UserContext(), userID, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(tweet)
}

// ListUserTweets handles GET /api/v1/tweets/user/:userId
func (s *Server) ListUserTweets(c *fiber.Ctx) error {
	ownerID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}

	page, err := s.feedService.ListUserTweets(c.UserContext(), ownerID, parseFeedQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// UpdateTweet handles PATCH /api/v1/tweets/:tweetId
func (s *Server) UpdateTweet(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return nil
	}
	tweetID, err := parseID(c, "tweetId")
	if err != nil {
		return nil
	}
	var req tweetRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	tweet, err := s.tweetService.UpdateTweet(c.UserContext(), userID, tweetID, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tweet)
}

// DeleteTweet handles DELETE /api/v1/tweets/:tweetId
func (s *Server) DeleteTweet(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return nil
	}
	tweetID, err := parseID(c, "tweetId")
	if err != nil {
		return nil
	}

	tweet, err := s.tweetService.DeleteTweet(c.UserContext(), userID, tweetID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tweet)
}
