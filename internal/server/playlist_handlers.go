package server

import (
	"context"

	"vidtube/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreatePlaylist handles POST /api/v1/playlist
func (s *Server) CreatePlaylist(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return nil
	}
	var req playlistRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	playlist, err := s.playlistService.CreatePlaylist(c.UserContext(), service.CreatePlaylistInput{
		OwnerID:     userID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(playlist)
}

// GetPlaylist handles GET /api/v1/playlist/:playlistId
func (s *Server) GetPlaylist(c *fiber.Ctx) error {
	playlistID, err := parseID(c, "playlistId")
	if err != nil {
		return nil
	}

	playlist, err := s.playlistService.GetPlaylist(c.UserContext(), playlistID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(playlist)
}

// ListUserPlaylists handles GET /api/v1/playlist/user/:userId
func (s *Server) ListUserPlaylists(c *fiber.Ctx) error {
	ownerID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}

	page, err := s.feedService.ListUserPlaylists(c.UserContext(), ownerID, parseFeedQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// AddVideoToPlaylist handles PATCH /api/v1/playlist/add/:videoId/:playlistId
func (s *Server) AddVideoToPlaylist(c *fiber.Ctx) error {
	return s.changePlaylistVideos(c, s.playlistService.AddVideo)
}

// RemoveVideoFromPlaylist handles PATCH /api/v1/playlist/remove/:videoId/:playlistId
func (s *Server) RemoveVideoFromPlaylist(c *fiber.Ctx) error {
	return s.changePlaylistVideos(c, s.playlistService.RemoveVideo)
}

func (s *Server) changePlaylistVideos(c *fiber.Ctx, change func(ctx context.Context, userID, playlistID, videoID uuid.UUID) error) error {
	userID, err := callerID(c)
	if err != nil {
		return nil
	}
	videoID, err := parseID(c, "videoId")
	if err != nil {
		return nil
	}
	playlistID, err := parseID(c, "playlistId")
	if err != nil {
		return nil
	}

	if err := change(c.UserContext(), userID, playlistID, videoID); err != nil {
		return respondError(c, err)
	}
	playlist, err := s.playlistService.GetPlaylist(c.UserContext(), playlistID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(playlist)
}

// UpdatePlaylist handles PATCH /api/v1/playlist/:playlistId
func (s *Server) UpdatePlaylist(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return nil
	}
	playlistID, err := parseID(c, "playlistId")
	if err != nil {
		return nil
	}
	var req playlistRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	playlist, err := s.playlistService.UpdatePlaylist(c.UserContext(), userID, playlistID, req.Name, req.Description)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(playlist)
}

// DeletePlaylist handles DELETE /api/v1/playlist/:playlistId
func (s *Server) DeletePlaylist(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return nil
	}
	playlistID, err := parseID(c, "playlistId")
	if err != nil {
		return nil
	}

	playlist, err := s.playlistService.DeletePlaylist(c.UserContext(), userID, playlistID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(playlist)
}
