package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"vidtube/internal/models"
	"vidtube/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedQuery_Normalize(t *testing.T) {
	tests := []struct {
		name     string
		in       FeedQuery
		wantPage int
		wantSize int
	}{
		{"zero values", FeedQuery{}, 1, DefaultPageSize},
		{"negative page", FeedQuery{Page: -3, PageSize: 5}, 1, 5},
		{"negative size", FeedQuery{Page: 2, PageSize: -1}, 2, DefaultPageSize},
		{"oversized", FeedQuery{Page: 1, PageSize: 1000}, 1, MaxPageSize},
		{"in range", FeedQuery{Page: 4, PageSize: 25}, 4, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize(FeedLimits{})
			assert.Equal(t, tt.wantPage, got.Page)
			assert.Equal(t, tt.wantSize, got.PageSize)
		})
	}
}

func TestFeedQuery_NormalizeCustomLimits(t *testing.T) {
	got := FeedQuery{PageSize: 80}.Normalize(FeedLimits{DefaultPageSize: 20, MaxPageSize: 50})
	assert.Equal(t, 50, got.PageSize)

	got = FeedQuery{}.Normalize(FeedLimits{DefaultPageSize: 20, MaxPageSize: 50})
	assert.Equal(t, 20, got.PageSize)
}

func TestFeedQuery_Offset(t *testing.T) {
	assert.Equal(t, 0, FeedQuery{Page: 1, PageSize: 10}.Offset())
	assert.Equal(t, 10, FeedQuery{Page: 3, PageSize: 5}.Offset())
	assert.Equal(t, 10, FeedQuery{Page: 2, PageSize: 10}.Offset())
}

func TestListContent_QueryTranslation(t *testing.T) {
	var got repository.ContentQuery
	contents := noopContentRepo()
	contents.listFn = func(_ context.Context, q repository.ContentQuery) ([]*models.ContentItem, error) {
		got = q
		return nil, nil
	}
	svc := NewFeedService(contents, noopReactionRepo(), noopUserRepo(), noopSubscriptionRepo(), noopVideoRepo(), FeedLimits{})
	ctx := context.Background()

	_, err := svc.ListContent(ctx, FeedQuery{Page: 3, PageSize: 5, TextQuery: "  rust ", SortField: "views", SortDirection: "ASC"}, models.ContentVideo)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Limit)
	assert.Equal(t, 10, got.Offset)
	assert.Equal(t, "rust", got.Text)
	assert.Equal(t, "views", got.SortField)
	assert.False(t, got.Descending)
	assert.True(t, got.PublishedOnly)

	_, err = svc.ListContent(ctx, FeedQuery{SortField: "views", SortDirection: "desc"}, models.ContentVideo)
	require.NoError(t, err)
	assert.True(t, got.Descending)

	// A field without a direction, or a field outside the whitelist, keeps the default order.
	_, err = svc.ListContent(ctx, FeedQuery{SortField: "views"}, models.ContentVideo)
	require.NoError(t, err)
	assert.Empty(t, got.SortField)

	_, err = svc.ListContent(ctx, FeedQuery{SortField: "password", SortDirection: "asc"}, models.ContentVideo)
	require.NoError(t, err)
	assert.Empty(t, got.SortField)

	_, err = svc.ListContent(ctx, FeedQuery{}, models.ContentTweet)
	require.NoError(t, err)
	assert.False(t, got.PublishedOnly)
}

func TestListContent_OwnerSeesUnpublished(t *testing.T) {
	var got repository.ContentQuery
	contents := noopContentRepo()
	contents.listFn = func(_ context.Context, q repository.ContentQuery) ([]*models.ContentItem, error) {
		got = q
		return nil, nil
	}
	svc := NewFeedService(contents, noopReactionRepo(), noopUserRepo(), noopSubscriptionRepo(), noopVideoRepo(), FeedLimits{})

	owner := uuid.New()
	_, err := svc.ListContent(context.Background(), FeedQuery{OwnerID: &owner, ViewerID: owner}, models.ContentVideo)
	require.NoError(t, err)
	assert.False(t, got.PublishedOnly)

	_, err = svc.ListContent(context.Background(), FeedQuery{OwnerID: &owner, ViewerID: uuid.New()}, models.ContentVideo)
	require.NoError(t, err)
	assert.True(t, got.PublishedOnly)
}

func TestListContent_InvalidKind(t *testing.T) {
	svc := NewFeedService(noopContentRepo(), noopReactionRepo(), noopUserRepo(), noopSubscriptionRepo(), noopVideoRepo(), FeedLimits{})
	_, err := svc.ListContent(context.Background(), FeedQuery{}, models.ContentKind("story"))
	assertAppErrorCode(t, err, models.CodeValidation)
}

func TestListContent_EmptyPageSkipsEnrichment(t *testing.T) {
	enrichCalls := 0
	users := noopUserRepo()
	users.getProfilesFn = func(_ context.Context, _ []uuid.UUID) (map[uuid.UUID]models.OwnerProfile, error) {
		enrichCalls++
		return nil, nil
	}
	reactions := noopReactionRepo()
	reactions.countByTargetsFn = func(_ context.Context, _ models.TargetKind, _ []uuid.UUID) (map[uuid.UUID]int64, error) {
		enrichCalls++
		return nil, nil
	}

	svc := NewFeedService(noopContentRepo(), reactions, users, noopSubscriptionRepo(), noopVideoRepo(), FeedLimits{})
	items, err := svc.ListContent(context.Background(), FeedQuery{Page: 9}, models.ContentVideo)

	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.Zero(t, enrichCalls)
}

func TestListContent_EnrichesOnlyPageItems(t *testing.T) {
	owner := uuid.New()
	viewer := uuid.New()
	page := []*models.ContentItem{
		{Kind: models.ContentVideo, ID: uuid.New(), OwnerID: owner},
		{Kind: models.ContentVideo, ID: uuid.New(), OwnerID: owner},
	}
	contents := noopContentRepo()
	contents.listFn = func(_ context.Context, _ repository.ContentQuery) ([]*models.ContentItem, error) {
		return page, nil
	}

	var countedIDs, reactedIDs []uuid.UUID
	reactions := noopReactionRepo()
	reactions.countByTargetsFn = func(_ context.Context, kind models.TargetKind, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
		assert.Equal(t, models.TargetVideo, kind)
		countedIDs = ids
		return map[uuid.UUID]int64{page[0].ID: 3}, nil
	}
	reactions.reactedTargetIDsFn = func(_ context.Context, userID uuid.UUID, _ models.TargetKind, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
		assert.Equal(t, viewer, userID)
		reactedIDs = ids
		return map[uuid.UUID]bool{page[1].ID: true}, nil
	}
	users := noopUserRepo()
	users.getProfilesFn = func(_ context.Context, _ []uuid.UUID) (map[uuid.UUID]models.OwnerProfile, error) {
		return map[uuid.UUID]models.OwnerProfile{owner: {ID: owner, Username: "creator"}}, nil
	}
	subs := noopSubscriptionRepo()
	subs.countByChannelsFn = func(_ context.Context, _ []uuid.UUID) (map[uuid.UUID]int64, error) {
		return map[uuid.UUID]int64{owner: 42}, nil
	}
	subs.subscribedChannelIDsFn = func(_ context.Context, _ uuid.UUID, _ []uuid.UUID) (map[uuid.UUID]bool, error) {
		return map[uuid.UUID]bool{owner: true}, nil
	}

	svc := NewFeedService(contents, reactions, users, subs, noopVideoRepo(), FeedLimits{})
	items, err := svc.ListContent(context.Background(), FeedQuery{ViewerID: viewer}, models.ContentVideo)
	require.NoError(t, err)

	wantIDs := []uuid.UUID{page[0].ID, page[1].ID}
	assert.Equal(t, wantIDs, countedIDs)
	assert.Equal(t, wantIDs, reactedIDs)

	require.Len(t, items, 2)
	assert.Equal(t, int64(3), items[0].ReactionCount)
	assert.False(t, items[0].ViewerHasReacted)
	assert.Equal(t, int64(0), items[1].ReactionCount)
	assert.True(t, items[1].ViewerHasReacted)
	for _, item := range items {
		require.NotNil(t, item.Owner)
		assert.Equal(t, "creator", item.Owner.Username)
		assert.Equal(t, int64(42), item.OwnerSubscribers)
		assert.True(t, item.ViewerIsSubscribed)
	}
}

func TestListContent_PlaylistsSkipReactionLookups(t *testing.T) {
	contents := noopContentRepo()
	contents.listFn = func(_ context.Context, _ repository.ContentQuery) ([]*models.ContentItem, error) {
		return []*models.ContentItem{{Kind: models.ContentPlaylist, ID: uuid.New(), OwnerID: uuid.New()}}, nil
	}
	reactions := noopReactionRepo()
	reactions.countByTargetsFn = func(_ context.Context, _ models.TargetKind, _ []uuid.UUID) (map[uuid.UUID]int64, error) {
		t.Fatal("playlists are not reactable")
		return nil, nil
	}
	subs := noopSubscriptionRepo()
	subs.countByChannelsFn = func(_ context.Context, _ []uuid.UUID) (map[uuid.UUID]int64, error) {
		t.Fatal("subscriber counts are only attached to videos")
		return nil, nil
	}

	svc := NewFeedService(contents, reactions, noopUserRepo(), subs, noopVideoRepo(), FeedLimits{})
	items, err := svc.ListContent(context.Background(), FeedQuery{}, models.ContentPlaylist)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func seedVideos(t *testing.T, st *stores, ownerID uuid.UUID, n int) []*models.Video {
	t.Helper()
	videos := make([]*models.Video, n)
	for i := range videos {
		videos[i] = createVideo(t, st.db, ownerID, fmt.Sprintf("video %02d", i), i)
	}
	return videos
}

func TestListPage_PaginationBounds(t *testing.T) {
	st := newStores(t)
	owner := createUser(t, st.db, "owner")
	videos := seedVideos(t, st, owner.ID, 25)

	svc := NewFeedService(st.contents, st.reactions, st.users, st.subscriptions, st.videos, FeedLimits{})
	ctx := context.Background()

	page1, err := svc.ListVideos(ctx, FeedQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, page1.Items, 10)
	assert.Equal(t, videos[0].ID, page1.Items[0].ID)
	assert.Equal(t, videos[9].ID, page1.Items[9].ID)
	assert.Equal(t, int64(25), page1.Total)
	assert.True(t, page1.HasNextPage)

	page2, err := svc.ListVideos(ctx, FeedQuery{Page: 2, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, page2.Items, 10)
	assert.Equal(t, videos[10].ID, page2.Items[0].ID)
	assert.Equal(t, videos[19].ID, page2.Items[9].ID)

	page3, err := svc.ListVideos(ctx, FeedQuery{Page: 3, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, page3.Items, 5)
	assert.False(t, page3.HasNextPage)

	beyond, err := svc.ListVideos(ctx, FeedQuery{Page: 4, PageSize: 10})
	require.NoError(t, err)
	assert.Empty(t, beyond.Items)
	assert.Equal(t, int64(25), beyond.Total)

	skip, err := svc.ListVideos(ctx, FeedQuery{Page: 3, PageSize: 5})
	require.NoError(t, err)
	require.Len(t, skip.Items, 5)
	assert.Equal(t, videos[10].ID, skip.Items[0].ID)
}

func TestListPage_TextFilterAndSort(t *testing.T) {
	st := newStores(t)
	owner := createUser(t, st.db, "owner")
	createVideo(t, st.db, owner.ID, "Learning Rust", 0)
	createVideo(t, st.db, owner.ID, "Go in practice", 1)
	createVideo(t, st.db, owner.ID, "rust async deep dive", 2)

	svc := NewFeedService(st.contents, st.reactions, st.users, st.subscriptions, st.videos, FeedLimits{})
	page, err := svc.ListVideos(context.Background(), FeedQuery{TextQuery: "rust", SortField: "title", SortDirection: "desc"})
	require.NoError(t, err)

	require.Len(t, page.Items, 2)
	assert.Equal(t, "rust async deep dive", page.Items[0].Title)
	assert.Equal(t, "Learning Rust", page.Items[1].Title)
	assert.Equal(t, int64(2), page.Total)
	for _, item := range page.Items {
		require.NotNil(t, item.Owner)
		assert.Equal(t, "owner", item.Owner.Username)
	}
}

func TestListPage_HidesUnpublishedFromOthers(t *testing.T) {
	st := newStores(t)
	owner := createUser(t, st.db, "owner")
	visible := createVideo(t, st.db, owner.ID, "public", 0)
	hidden := createVideo(t, st.db, owner.ID, "draft", 1)
	require.NoError(t, st.db.Model(hidden).Update("is_published", false).Error)

	svc := NewFeedService(st.contents, st.reactions, st.users, st.subscriptions, st.videos, FeedLimits{})
	ctx := context.Background()

	page, err := svc.ListVideos(ctx, FeedQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, visible.ID, page.Items[0].ID)

	own, err := svc.ListVideos(ctx, FeedQuery{OwnerID: &owner.ID, ViewerID: owner.ID})
	require.NoError(t, err)
	assert.Len(t, own.Items, 2)
}

func TestListPage_ViewerFlags(t *testing.T) {
	st := newStores(t)
	owner := createUser(t, st.db, "owner")
	viewer := createUser(t, st.db, "viewer")
	liked := createVideo(t, st.db, owner.ID, "liked", 0)
	createVideo(t, st.db, owner.ID, "other", 1)

	ctx := context.Background()
	_, _, err := st.reactions.Toggle(ctx, viewer.ID, models.TargetVideo, liked.ID)
	require.NoError(t, err)
	_, err = st.subscriptions.Toggle(ctx, viewer.ID, owner.ID)
	require.NoError(t, err)

	svc := NewFeedService(st.contents, st.reactions, st.users, st.subscriptions, st.videos, FeedLimits{})
	page, err := svc.ListVideos(ctx, FeedQuery{ViewerID: viewer.ID})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)

	assert.True(t, page.Items[0].ViewerHasReacted)
	assert.Equal(t, int64(1), page.Items[0].ReactionCount)
	assert.False(t, page.Items[1].ViewerHasReacted)
	for _, item := range page.Items {
		assert.True(t, item.ViewerIsSubscribed)
		assert.Equal(t, int64(1), item.OwnerSubscribers)
	}

	anon, err := svc.ListVideos(ctx, FeedQuery{})
	require.NoError(t, err)
	for _, item := range anon.Items {
		assert.False(t, item.ViewerHasReacted)
		assert.False(t, item.ViewerIsSubscribed)
	}
}

func TestGetVideo(t *testing.T) {
	st := newStores(t)
	owner := createUser(t, st.db, "owner")
	viewer := createUser(t, st.db, "viewer")
	video := createVideo(t, st.db, owner.ID, "watch me", 0)

	svc := NewFeedService(st.contents, st.reactions, st.users, st.subscriptions, st.videos, FeedLimits{})
	ctx := context.Background()

	item, err := svc.GetVideo(ctx, video.ID, viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), item.Views)
	require.NotNil(t, item.Owner)
	assert.Equal(t, owner.ID, item.Owner.ID)

	var history int64
	require.NoError(t, st.db.Model(&models.WatchHistoryEntry{}).Where("user_id = ?", viewer.ID).Count(&history).Error)
	assert.Equal(t, int64(1), history)

	_, err = svc.GetVideo(ctx, uuid.New(), viewer.ID)
	assertAppErrorCode(t, err, models.CodeNotFound)

	require.NoError(t, st.db.Model(video).Update("is_published", false).Error)
	_, err = svc.GetVideo(ctx, video.ID, viewer.ID)
	assertAppErrorCode(t, err, models.CodeNotFound)

	_, err = svc.GetVideo(ctx, video.ID, owner.ID)
	require.NoError(t, err)
}

func TestListVideoComments(t *testing.T) {
	st := newStores(t)
	owner := createUser(t, st.db, "owner")
	video := createVideo(t, st.db, owner.ID, "discussed", 0)
	other := createVideo(t, st.db, owner.ID, "quiet", 1)

	svc := NewFeedService(st.contents, st.reactions, st.users, st.subscriptions, st.videos, FeedLimits{})
	comments := NewCommentService(st.contents, st.comments, NewOwnershipGate(st.contents))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := comments.AddComment(ctx, AddCommentInput{UserID: owner.ID, VideoID: video.ID, Content: fmt.Sprintf("comment %d", i)})
		require.NoError(t, err)
	}
	_, err := comments.AddComment(ctx, AddCommentInput{UserID: owner.ID, VideoID: other.ID, Content: "elsewhere"})
	require.NoError(t, err)

	page, err := svc.ListVideoComments(ctx, video.ID, FeedQuery{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
	for _, item := range page.Items {
		require.NotNil(t, item.ParentID)
		assert.Equal(t, video.ID, *item.ParentID)
	}

	_, err = svc.ListVideoComments(ctx, uuid.New(), FeedQuery{})
	assertAppErrorCode(t, err, models.CodeNotFound)
}

func TestListUserContent_RequiresExistingOwner(t *testing.T) {
	st := newStores(t)
	owner := createUser(t, st.db, "owner")
	svc := NewFeedService(st.contents, st.reactions, st.users, st.subscriptions, st.videos, FeedLimits{})
	ctx := context.Background()

	tweets, err := svc.ListUserTweets(ctx, owner.ID, FeedQuery{})
	require.NoError(t, err)
	assert.Empty(t, tweets.Items)

	playlists, err := svc.ListUserPlaylists(ctx, owner.ID, FeedQuery{})
	require.NoError(t, err)
	assert.Empty(t, playlists.Items)

	_, err = svc.ListUserTweets(ctx, uuid.New(), FeedQuery{})
	assertAppErrorCode(t, err, models.CodeNotFound)

	_, err = svc.ListUserPlaylists(ctx, uuid.New(), FeedQuery{})
	assertAppErrorCode(t, err, models.CodeNotFound)
}

func TestListUserTweets_ProfileLookupFailure(t *testing.T) {
	users := noopUserRepo()
	users.getProfileFn = func(_ context.Context, _ uuid.UUID) (*models.OwnerProfile, error) {
		return nil, errors.New("connection refused")
	}
	contents := noopContentRepo()
	listed := false
	contents.listFn = func(_ context.Context, _ repository.ContentQuery) ([]*models.ContentItem, error) {
		listed = true
		return nil, nil
	}
	svc := NewFeedService(contents, noopReactionRepo(), users, noopSubscriptionRepo(), noopVideoRepo(), FeedLimits{})

	_, err := svc.ListUserTweets(context.Background(), uuid.New(), FeedQuery{})
	assertAppErrorCode(t, err, models.CodeInternal)
	assert.False(t, listed)
}
