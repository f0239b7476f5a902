package service

import (
	"context"
	"sort"
	"strings"

	"vidtube/internal/models"
	"vidtube/internal/observability"
	"vidtube/internal/repository"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Patch holds the fields to change. Absent keys are left untouched.
type Patch map[string]string

// OwnershipGate guards every update and delete of user-owned content: load,
// compare owner to caller, and only then mutate.
type OwnershipGate struct {
	contents repository.ContentRepository
}

func NewOwnershipGate(contents repository.ContentRepository) *OwnershipGate {
	return &OwnershipGate{contents: contents}
}

// Authorize loads the item and checks that caller owns it.
func (g *OwnershipGate) Authorize(ctx context.Context, kind models.ContentKind, id, caller uuid.UUID) (*models.ContentItem, error) {
	return g.authorize(ctx, kind, id, caller, "authorize")
}

func (g *OwnershipGate) authorize(ctx context.Context, kind models.ContentKind, id, caller uuid.UUID, action string) (*models.ContentItem, error) {
	if caller == uuid.Nil {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if !kind.Valid() {
		return nil, models.NewValidationError("Invalid content kind: " + string(kind))
	}

	item, err := g.contents.FindByID(ctx, kind, id)
	if err != nil {
		return nil, storeError(err, kind.Label(), id)
	}
	if item.OwnerID != caller {
		observability.OwnershipDenials.WithLabelValues(string(kind), action).Inc()
		return nil, models.NewForbiddenError("You do not have permission to " + action + " this " + strings.ToLower(kind.Label()))
	}
	return item, nil
}

// Update applies a partial update after the ownership check. Values are
// trimmed; an empty patch is rejected.
func (g *OwnershipGate) Update(ctx context.Context, kind models.ContentKind, id, caller uuid.UUID, patch Patch) (*models.ContentItem, error) {
	if len(patch) == 0 {
		return nil, models.NewValidationError("At least one field is required")
	}
	values := make(map[string]interface{}, len(patch))
	fields := make([]string, 0, len(patch))
	for field, value := range patch {
		if !repository.UpdatableField(kind, field) {
			return nil, models.NewValidationError("Field " + field + " cannot be updated")
		}
		values[field] = strings.TrimSpace(value)
		fields = append(fields, field)
	}
	sort.Strings(fields)

	span, ctx := observability.NewSpan(ctx, "ownership.update",
		observability.TargetAttributes(string(kind), id.String())...)
	span.AddAttributes(attribute.StringSlice("content.fields", fields))
	defer span.End()

	if _, err := g.authorize(ctx, kind, id, caller, "update"); err != nil {
		span.SetError(err)
		return nil, err
	}
	item, err := g.contents.Update(ctx, kind, id, values)
	if err != nil {
		span.SetError(err)
		return nil, storeError(err, kind.Label(), id)
	}
	return item, nil
}

// Delete removes the item after the ownership check and returns it.
func (g *OwnershipGate) Delete(ctx context.Context, kind models.ContentKind, id, caller uuid.UUID) (*models.ContentItem, error) {
	span, ctx := observability.NewSpan(ctx, "ownership.delete",
		observability.TargetAttributes(string(kind), id.String())...)
	defer span.End()

	if _, err := g.authorize(ctx, kind, id, caller, "delete"); err != nil {
		span.SetError(err)
		return nil, err
	}
	item, err := g.contents.Delete(ctx, kind, id)
	if err != nil {
		span.SetError(err)
		return nil, storeError(err, kind.Label(), id)
	}
	return item, nil
}

// TogglePublishStatus flips a video's publish flag for its owner.
func (g *OwnershipGate) TogglePublishStatus(ctx context.Context, videoID, caller uuid.UUID) (*models.ContentItem, error) {
	if _, err := g.authorize(ctx, models.ContentVideo, videoID, caller, "publish"); err != nil {
		return nil, err
	}
	item, err := g.contents.TogglePublished(ctx, videoID)
	if err != nil {
		return nil, storeError(err, "Video", videoID)
	}
	return item, nil
}
