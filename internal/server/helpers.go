package server

import (
	"errors"
	"strings"
	"unicode"

	"vidtube/internal/middleware"
	"vidtube/internal/models"
	"vidtube/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// statusFor maps an AppError code onto its HTTP status.
func statusFor(code string) int {
	switch code {
	case models.CodeValidation:
		return fiber.StatusBadRequest
	case models.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case models.CodeForbidden:
		return fiber.StatusForbidden
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeConflict:
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

// respondError writes a service error with the status its code maps to.
// Internal failures are logged; their cause never reaches the client.
func respondError(c *fiber.Ctx, err error) error {
	code := models.ErrorCode(err)
	if code == models.CodeInternal {
		middleware.Logger.ErrorContext(c.UserContext(), "request error",
			"path", c.Path(),
			"error", err.Error(),
		)
	}
	return models.RespondWithError(c, statusFor(code), err)
}

// parseFeedQuery reads page, limit, query, sortBy and sortType. Out-of-range
// values are normalised by the feed service rather than rejected.
func parseFeedQuery(c *fiber.Ctx) service.FeedQuery {
	q := service.FeedQuery{
		TextQuery:     c.Query("query"),
		SortField:     c.Query("sortBy"),
		SortDirection: c.Query("sortType"),
		Page:          c.QueryInt("page", 1),
		PageSize:      c.QueryInt("limit", 0),
	}
	if viewer, ok := middleware.CurrentUserID(c); ok {
		q.ViewerID = viewer
	}
	return q
}

// parseID extracts a route parameter by name as a uuid.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func parseID(c *fiber.Ctx, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(param))
	if err != nil || id == uuid.Nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return uuid.Nil, errResponseWritten
	}
	return id, nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "videoId" -> "video ID", "subscriberId" -> "subscriber ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// callerID returns the authenticated user. Routes reaching it sit behind
// AuthRequired, so a missing identity writes 401.
func callerID(c *fiber.Ctx) (uuid.UUID, error) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		_ = models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authentication required"))
		return uuid.Nil, errResponseWritten
	}
	return userID, nil
}

// parseBody decodes the JSON body, writing 400 on malformed input.
func parseBody(c *fiber.Ctx, dest interface{}) error {
	if err := c.BodyParser(dest); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	return nil
}

// optionalUUIDQuery reads an optional uuid query parameter. An unparsable
// value writes 400.
func optionalUUIDQuery(c *fiber.Ctx, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(name)))
		return nil, errResponseWritten
	}
	return &id, nil
}
