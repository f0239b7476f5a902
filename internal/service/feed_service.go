package service

import (
	"context"
	"log/slog"
	"strings"

	"vidtube/internal/models"
	"vidtube/internal/observability"
	"vidtube/internal/repository"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// FeedQuery describes one page of a content listing. Page and PageSize are
// normalised rather than rejected.
type FeedQuery struct {
	TextQuery     string
	SortField     string
	SortDirection string
	Page          int
	PageSize      int
	ViewerID      uuid.UUID
	OwnerID       *uuid.UUID
	VideoID       *uuid.UUID
}

// FeedLimits bounds page sizes. Zero values fall back to the package defaults.
type FeedLimits struct {
	DefaultPageSize int
	MaxPageSize     int
}

func (l FeedLimits) withDefaults() FeedLimits {
	if l.DefaultPageSize < 1 {
		l.DefaultPageSize = DefaultPageSize
	}
	if l.MaxPageSize < 1 {
		l.MaxPageSize = MaxPageSize
	}
	if l.DefaultPageSize > l.MaxPageSize {
		l.DefaultPageSize = l.MaxPageSize
	}
	return l
}

// Normalize clamps page to at least 1 and page size into [1, max].
func (q FeedQuery) Normalize(limits FeedLimits) FeedQuery {
	limits = limits.withDefaults()
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = limits.DefaultPageSize
	}
	if q.PageSize > limits.MaxPageSize {
		q.PageSize = limits.MaxPageSize
	}
	return q
}

// Offset is the number of rows skipped before the page. Only meaningful on a
// normalised query.
func (q FeedQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// FeedPage is a page of enriched items. Pagination is approximate under
// concurrent writes: rows inserted or removed between requests shift pages.
type FeedPage struct {
	Items       []*models.ContentItem `json:"items"`
	Page        int                   `json:"page"`
	PageSize    int                   `json:"page_size"`
	Total       int64                 `json:"total"`
	HasNextPage bool                  `json:"has_next_page"`
}

type FeedService struct {
	contents      repository.ContentRepository
	reactions     repository.ReactionRepository
	users         repository.UserRepository
	subscriptions repository.SubscriptionRepository
	videos        repository.VideoRepository
	limits        FeedLimits
}

func NewFeedService(
	contents repository.ContentRepository,
	reactions repository.ReactionRepository,
	users repository.UserRepository,
	subscriptions repository.SubscriptionRepository,
	videos repository.VideoRepository,
	limits FeedLimits,
) *FeedService {
	return &FeedService{
		contents:      contents,
		reactions:     reactions,
		users:         users,
		subscriptions: subscriptions,
		videos:        videos,
		limits:        limits.withDefaults(),
	}
}

// ListContent runs filter, sort, paginate and enrich, in that order, for one
// content kind. Only the returned page is enriched.
func (s *FeedService) ListContent(ctx context.Context, q FeedQuery, kind models.ContentKind) ([]*models.ContentItem, error) {
	if !kind.Valid() {
		return nil, models.NewValidationError("Invalid content kind: " + string(kind))
	}
	q = q.Normalize(s.limits)
	return s.list(ctx, s.contentQuery(q, kind), q.ViewerID)
}

// ListPage is ListContent plus the total size of the filtered set.
func (s *FeedService) ListPage(ctx context.Context, q FeedQuery, kind models.ContentKind) (*FeedPage, error) {
	if !kind.Valid() {
		return nil, models.NewValidationError("Invalid content kind: " + string(kind))
	}
	q = q.Normalize(s.limits)
	cq := s.contentQuery(q, kind)

	items, err := s.list(ctx, cq, q.ViewerID)
	if err != nil {
		return nil, err
	}
	total, err := s.contents.Count(ctx, cq)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &FeedPage{
		Items:       items,
		Page:        q.Page,
		PageSize:    q.PageSize,
		Total:       total,
		HasNextPage: int64(q.Offset()+len(items)) < total,
	}, nil
}

// contentQuery translates a normalised feed query into the store query.
func (s *FeedService) contentQuery(q FeedQuery, kind models.ContentKind) repository.ContentQuery {
	ownChannel := q.OwnerID != nil && q.ViewerID != uuid.Nil && *q.OwnerID == q.ViewerID

	cq := repository.ContentQuery{
		Kind:          kind,
		OwnerID:       q.OwnerID,
		ParentID:      q.VideoID,
		Text:          strings.TrimSpace(q.TextQuery),
		PublishedOnly: kind == models.ContentVideo && !ownChannel,
		Limit:         q.PageSize,
		Offset:        q.Offset(),
	}

	direction := strings.TrimSpace(q.SortDirection)
	if q.SortField != "" && direction != "" {
		if _, ok := repository.SortColumn(kind, q.SortField); ok {
			cq.SortField = q.SortField
			cq.Descending = !strings.EqualFold(direction, "asc")
		}
	}
	return cq
}

func (s *FeedService) list(ctx context.Context, cq repository.ContentQuery, viewerID uuid.UUID) ([]*models.ContentItem, error) {
	span, ctx := observability.NewSpan(ctx, "feed.list",
		attribute.String("feed.kind", string(cq.Kind)),
		attribute.Int("feed.limit", cq.Limit),
		attribute.Int("feed.offset", cq.Offset),
	)
	defer span.End()

	observability.FeedQueries.WithLabelValues(string(cq.Kind)).Inc()

	items, err := s.contents.List(ctx, cq)
	if err != nil {
		span.SetError(err)
		return nil, models.NewInternalError(err)
	}
	observability.FeedPageItems.WithLabelValues(string(cq.Kind)).Observe(float64(len(items)))
	if len(items) == 0 {
		return []*models.ContentItem{}, nil
	}

	if err := s.enrich(ctx, cq.Kind, items, viewerID); err != nil {
		span.SetError(err)
		return nil, models.NewInternalError(err)
	}
	return items, nil
}

// enrich attaches owner profiles and viewer-relative engagement to items with
// one batched lookup per concern.
func (s *FeedService) enrich(ctx context.Context, kind models.ContentKind, items []*models.ContentItem, viewerID uuid.UUID) error {
	ids := make([]uuid.UUID, 0, len(items))
	owners := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
		owners = append(owners, item.OwnerID)
	}

	profiles, err := s.users.GetProfiles(ctx, owners)
	if err != nil {
		return err
	}
	for _, item := range items {
		if p, ok := profiles[item.OwnerID]; ok {
			profile := p
			item.Owner = &profile
		}
	}

	if target, ok := kind.TargetKind(); ok {
		counts, err := s.reactions.CountByTargets(ctx, target, ids)
		if err != nil {
			return err
		}
		reacted, err := s.reactions.ReactedTargetIDs(ctx, viewerID, target, ids)
		if err != nil {
			return err
		}
		for _, item := range items {
			item.ReactionCount = counts[item.ID]
			item.ViewerHasReacted = reacted[item.ID]
		}
	}

	if kind == models.ContentVideo {
		subscribers, err := s.subscriptions.CountByChannels(ctx, owners)
		if err != nil {
			return err
		}
		subscribed, err := s.subscriptions.SubscribedChannelIDs(ctx, viewerID, owners)
		if err != nil {
			return err
		}
		for _, item := range items {
			item.OwnerSubscribers = subscribers[item.OwnerID]
			item.ViewerIsSubscribed = subscribed[item.OwnerID]
		}
	}
	return nil
}

// GetVideo returns one enriched video, counts the view and records it in the
// viewer's watch history. Unpublished videos are only visible to their owner.
func (s *FeedService) GetVideo(ctx context.Context, videoID, viewerID uuid.UUID) (*models.ContentItem, error) {
	item, err := s.contents.FindByID(ctx, models.ContentVideo, videoID)
	if err != nil {
		return nil, storeError(err, "Video", videoID)
	}
	if !item.Published() && item.OwnerID != viewerID {
		return nil, models.NewNotFoundError("Video", videoID)
	}

	if err := s.videos.IncrementViews(ctx, videoID); err != nil {
		return nil, storeError(err, "Video", videoID)
	}
	item.Views++

	if viewerID != uuid.Nil {
		if err := s.users.AppendWatchHistory(ctx, viewerID, videoID); err != nil {
			observability.GlobalLogger.WarnContext(ctx, "watch history append failed",
				slog.String("video_id", videoID.String()),
				slog.String("error", err.Error()),
			)
		}
	}

	if err := s.enrich(ctx, models.ContentVideo, []*models.ContentItem{item}, viewerID); err != nil {
		return nil, models.NewInternalError(err)
	}
	return item, nil
}

// ListVideos is the public video feed, optionally narrowed to one channel.
func (s *FeedService) ListVideos(ctx context.Context, q FeedQuery) (*FeedPage, error) {
	return s.ListPage(ctx, q, models.ContentVideo)
}

// ListVideoComments pages through the comments on one video.
func (s *FeedService) ListVideoComments(ctx context.Context, videoID uuid.UUID, q FeedQuery) (*FeedPage, error) {
	exists, err := s.contents.Exists(ctx, models.ContentVideo, videoID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if !exists {
		return nil, models.NewNotFoundError("Video", videoID)
	}
	q.VideoID = &videoID
	return s.ListPage(ctx, q, models.ContentComment)
}

// ListUserTweets pages through one user's tweets.
func (s *FeedService) ListUserTweets(ctx context.Context, ownerID uuid.UUID, q FeedQuery) (*FeedPage, error) {
	if err := s.requireOwner(ctx, ownerID); err != nil {
		return nil, err
	}
	q.OwnerID = &ownerID
	return s.ListPage(ctx, q, models.ContentTweet)
}

// ListUserPlaylists pages through one user's playlists.
func (s *FeedService) ListUserPlaylists(ctx context.Context, ownerID uuid.UUID, q FeedQuery) (*FeedPage, error) {
	if err := s.requireOwner(ctx, ownerID); err != nil {
		return nil, err
	}
	q.OwnerID = &ownerID
	return s.ListPage(ctx, q, models.ContentPlaylist)
}

// requireOwner fails with NotFound when the channel being listed does not exist.
func (s *FeedService) requireOwner(ctx context.Context, ownerID uuid.UUID) error {
	if _, err := s.users.GetProfile(ctx, ownerID); err != nil {
		return storeError(err, "User", ownerID)
	}
	return nil
}
