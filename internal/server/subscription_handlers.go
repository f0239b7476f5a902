package server

import (
	"github.com/gofiber/fiber/v2"
)

// ToggleSubscription handles POST /api/v1/subscriptions/c/:channelId
func (s *Server) ToggleSubscription(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return nil
	}
	channelID, err := parseID(c, "channelId")
	if err != nil {
		return nil
	}

	result, err := s.subscriptionService.ToggleSubscription(c.UserContext(), userID, channelID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// ListSubscribers handles GET /api/v1/subscriptions/c/:channelId
func (s *Server) ListSubscribers(c *fiber.Ctx) error {
	channelID, err := parseID(c, "channelId")
	if err != nil {
		return nil
	}

	subscribers, err := s.subscriptionService.ListSubscribers(c.UserContext(), channelID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(subscribers)
}

// ListSubscribedChannels handles GET /api/v1/subscriptions/u/:subscriberId
func (s *Server) ListSubscribedChannels(c *fiber.Ctx) error {
	subscriberID, err := parseID(c, "subscriberId")
	if err != nil {
		return nil
	}

	channels, err := s.subscriptionService.ListSubscribedChannels(c.UserContext(), subscriberID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(channels)
}
