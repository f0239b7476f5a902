package server

import (
	"vidtube/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListVideos handles GET /api/v1/videos?page=&limit=&query=&sortBy=&sortType=&userId=
func (s *Server) ListVideos(c *fiber.Ctx) error {
	q := parseFeedQuery(c)
	owner, err := optionalUUIDQuery(c, "userId")
	if err != nil {
		return nil
	}
	q.OwnerID = owner

	page, err := s.feedService.ListVideos(c.UserContext(), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// GetVideo handles GET /api/v1/videos/:videoId
func (s *Server) GetVideo(c *fiber.Ctx) error {
	videoID, err := parseID(c, "videoId")
	if err != nil {
		return nil
	}
	q := parseFeedQuery(c)

	video, err := s.feedService.GetVideo(c.UserContext(), videoID, q.ViewerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(video)
}

// PublishVideo handles POST /api/v1/videos. Media is uploaded to object
// storage beforehand; the body carries its URLs.
func (s *Server) PublishVideo(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return nil
	}

	var req struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		VideoFile   string  `json:"video_file"`
		Thumbnail   string  `json:"thumbnail"`
		Duration    float64 `json:"duration"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	video, err := s.videoService.PublishVideo(c.UserContext(), service.PublishVideoInput{
		OwnerID:     userID,
		Title:       req.Title,
		Description: req.Description,
		VideoFile:   req.VideoFile,
		Thumbnail:   req.Thumbnail,
		Duration:    req.Duration,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(video)
}

// UpdateVideo handles PATCH /api/v1/videos/:videoId
func (s *Server) UpdateVideo(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return nil
	}
	videoID, err := parseID(c, "videoId")
	if err != nil {
		return nil
	}

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Thumbnail   string `json:"thumbnail"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	video, err := s.videoService.UpdateVideo(c.UserContext(), service.UpdateVideoInput{
		UserID:      userID,
		VideoID:     videoID,
		Title:       req.Title,
		Description: req.Description,
		Thumbnail:   req.Thumbnail,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(video)
}

// DeleteVideo handles DELETE /api/v1/videos/:videoId
func (s *Server) DeleteVideo(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return nil
	}
	videoID, err := parseID(c, "videoId")
	if err != nil {
		return nil
	}

	video, err := s.videoService.DeleteVideo(c.UserContext(), userID, videoID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(video)
}

// TogglePublishStatus handles PATCH /api/v1/videos/toggle/publish/:videoId
func (s *Server) TogglePublishStatus(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return nil
	}
	videoID, err := parseID(c, "videoId")
	if err != nil {
		return nil
	}

	video, err := s.videoService.TogglePublishStatus(c.UserContext(), userID, videoID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(video)
}
