package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vidtube/internal/models"
	"vidtube/internal/observability"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// contentSchema maps a content kind onto its table. Selected columns are
// aliased onto models.ContentItem fields.
type contentSchema struct {
	table      string
	columns    []string
	searchable []string
	sortable   map[string]string
	updatable  map[string]string
}

var (
	videoSchema = contentSchema{
		table: "videos",
		columns: []string{
			"id", "owner_id", "title", "description AS body", "thumbnail", "video_file",
			"duration", "views", "is_published", "created_at", "updated_at",
		},
		searchable: []string{"title", "description"},
		sortable: map[string]string{
			"createdAt": "created_at", "created_at": "created_at",
			"updatedAt": "updated_at", "updated_at": "updated_at",
			"title": "title", "views": "views", "duration": "duration",
		},
		updatable: map[string]string{"title": "title", "description": "description", "thumbnail": "thumbnail"},
	}
	commentSchema = contentSchema{
		table:      "comments",
		columns:    []string{"id", "owner_id", "content AS body", "video_id AS parent_id", "created_at", "updated_at"},
		searchable: []string{"content"},
		sortable: map[string]string{
			"createdAt": "created_at", "created_at": "created_at",
			"updatedAt": "updated_at", "updated_at": "updated_at",
		},
		updatable: map[string]string{"content": "content"},
	}
	tweetSchema = contentSchema{
		table:      "tweets",
		columns:    []string{"id", "owner_id", "content AS body", "created_at", "updated_at"},
		searchable: []string{"content"},
		sortable: map[string]string{
			"createdAt": "created_at", "created_at": "created_at",
			"updatedAt": "updated_at", "updated_at": "updated_at",
		},
		updatable: map[string]string{"content": "content"},
	}
	playlistSchema = contentSchema{
		table:      "playlists",
		columns:    []string{"id", "owner_id", "name AS title", "description AS body", "created_at", "updated_at"},
		searchable: []string{"name", "description"},
		sortable: map[string]string{
			"createdAt": "created_at", "created_at": "created_at",
			"updatedAt": "updated_at", "updated_at": "updated_at",
			"name": "name",
		},
		updatable: map[string]string{"name": "name", "description": "description"},
	}
)

func schemaFor(kind models.ContentKind) (contentSchema, error) {
	switch kind {
	case models.ContentVideo:
		return videoSchema, nil
	case models.ContentComment:
		return commentSchema, nil
	case models.ContentTweet:
		return tweetSchema, nil
	case models.ContentPlaylist:
		return playlistSchema, nil
	}
	return contentSchema{}, fmt.Errorf("unsupported content kind %q", kind)
}

// SortColumn returns the column for a client sort field, if the kind allows sorting by it.
func SortColumn(kind models.ContentKind, field string) (string, bool) {
	s, err := schemaFor(kind)
	if err != nil {
		return "", false
	}
	col, ok := s.sortable[field]
	return col, ok
}

// UpdatableField reports whether a patch may set field on the given kind.
func UpdatableField(kind models.ContentKind, field string) bool {
	s, err := schemaFor(kind)
	if err != nil {
		return false
	}
	_, ok := s.updatable[field]
	return ok
}

// ContentQuery selects a page of one content kind.
type ContentQuery struct {
	Kind          models.ContentKind
	OwnerID       *uuid.UUID
	ParentID      *uuid.UUID
	Text          string
	PublishedOnly bool
	SortField     string
	Descending    bool
	Limit         int
	Offset        int
}

// ContentRepository is the kind-agnostic view over every content collection.
type ContentRepository interface {
	FindByID(ctx context.Context, kind models.ContentKind, id uuid.UUID) (*models.ContentItem, error)
	List(ctx context.Context, q ContentQuery) ([]*models.ContentItem, error)
	Count(ctx context.Context, q ContentQuery) (int64, error)
	Exists(ctx context.Context, kind models.ContentKind, id uuid.UUID) (bool, error)
	Update(ctx context.Context, kind models.ContentKind, id uuid.UUID, patch map[string]interface{}) (*models.ContentItem, error)
	Delete(ctx context.Context, kind models.ContentKind, id uuid.UUID) (*models.ContentItem, error)
	TogglePublished(ctx context.Context, videoID uuid.UUID) (*models.ContentItem, error)
}

type contentRepository struct {
	db *gorm.DB
}

// NewContentRepository creates a new content repository
func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) FindByID(ctx context.Context, kind models.ContentKind, id uuid.UUID) (*models.ContentItem, error) {
	return findContent(r.db.WithContext(ctx), kind, id)
}

func findContent(db *gorm.DB, kind models.ContentKind, id uuid.UUID) (*models.ContentItem, error) {
	s, err := schemaFor(kind)
	if err != nil {
		return nil, err
	}
	defer observability.TrackQuery("select", s.table)()

	var item models.ContentItem
	if err := db.Table(s.table).Select(s.columns).Where("id = ?", id).Take(&item).Error; err != nil {
		return nil, err
	}
	item.Kind = kind
	return &item, nil
}

// scope applies the filter stage of a content query.
func (r *contentRepository) scope(ctx context.Context, q ContentQuery) (*gorm.DB, contentSchema, error) {
	s, err := schemaFor(q.Kind)
	if err != nil {
		return nil, s, err
	}

	db := r.db.WithContext(ctx).Table(s.table)
	if q.OwnerID != nil {
		db = db.Where("owner_id = ?", *q.OwnerID)
	}
	if q.ParentID != nil && q.Kind == models.ContentComment {
		db = db.Where("video_id = ?", *q.ParentID)
	}
	if q.PublishedOnly && q.Kind == models.ContentVideo {
		db = db.Where("is_published = ?", true)
	}
	if text := strings.TrimSpace(q.Text); text != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(text)) + "%"
		conds := make([]string, 0, len(s.searchable))
		args := make([]interface{}, 0, len(s.searchable))
		for _, col := range s.searchable {
			conds = append(conds, "LOWER("+col+") LIKE ? ESCAPE '\\'")
			args = append(args, pattern)
		}
		db = db.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
	return db, s, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *contentRepository) List(ctx context.Context, q ContentQuery) ([]*models.ContentItem, error) {
	db, s, err := r.scope(ctx, q)
	if err != nil {
		return nil, err
	}
	defer observability.TrackQuery("select", s.table)()

	if col, ok := s.sortable[q.SortField]; ok {
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: q.Descending}).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: q.Descending})
	} else {
		db = db.Order("created_at ASC").Order("id ASC")
	}
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}
	if q.Offset > 0 {
		db = db.Offset(q.Offset)
	}

	var items []*models.ContentItem
	if err := db.Select(s.columns).Find(&items).Error; err != nil {
		return nil, err
	}
	for _, item := range items {
		item.Kind = q.Kind
	}
	return items, nil
}

func (r *contentRepository) Count(ctx context.Context, q ContentQuery) (int64, error) {
	db, s, err := r.scope(ctx, q)
	if err != nil {
		return 0, err
	}
	defer observability.TrackQuery("count", s.table)()

	var total int64
	err = db.Count(&total).Error
	return total, err
}

func (r *contentRepository) Exists(ctx context.Context, kind models.ContentKind, id uuid.UUID) (bool, error) {
	return contentExists(r.db.WithContext(ctx), kind, id)
}

func contentExists(db *gorm.DB, kind models.ContentKind, id uuid.UUID) (bool, error) {
	s, err := schemaFor(kind)
	if err != nil {
		return false, err
	}
	var n int64
	if err := db.Table(s.table).Where("id = ?", id).Limit(1).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *contentRepository) Update(ctx context.Context, kind models.ContentKind, id uuid.UUID, patch map[string]interface{}) (*models.ContentItem, error) {
	s, err := schemaFor(kind)
	if err != nil {
		return nil, err
	}

	values := make(map[string]interface{}, len(patch)+1)
	for field, v := range patch {
		col, ok := s.updatable[field]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
		}
		values[col] = v
	}
	values["updated_at"] = time.Now().UTC()

	defer observability.TrackQuery("update", s.table)()
	db := r.db.WithContext(ctx)
	res := db.Table(s.table).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		observability.NewRepoLogger(s.table).LogError(ctx, res.Error, "update")
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	observability.NewRepoLogger(s.table).LogUpdate(ctx, map[string]interface{}{"id": id.String()})
	return findContent(db, kind, id)
}

// Delete removes the item and everything that only exists because of it:
// reactions on it, and for videos their comments and playlist links.
func (r *contentRepository) Delete(ctx context.Context, kind models.ContentKind, id uuid.UUID) (*models.ContentItem, error) {
	s, err := schemaFor(kind)
	if err != nil {
		return nil, err
	}
	defer observability.TrackQuery("delete", s.table)()

	var deleted *models.ContentItem
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := findContent(tx, kind, id)
		if err != nil {
			return err
		}

		if target, ok := kind.TargetKind(); ok {
			if err := deleteReactions(tx, target, []uuid.UUID{id}); err != nil {
				return err
			}
		}

		switch kind {
		case models.ContentVideo:
			var commentIDs []uuid.UUID
			if err := tx.Model(&models.Comment{}).Where("video_id = ?", id).Pluck("id", &commentIDs).Error; err != nil {
				return err
			}
			if err := deleteReactions(tx, models.TargetComment, commentIDs); err != nil {
				return err
			}
			if err := tx.Where("video_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
			if err := tx.Exec("DELETE FROM playlist_videos WHERE video_id = ?", id).Error; err != nil {
				return err
			}
			if err := tx.Where("video_id = ?", id).Delete(&models.WatchHistoryEntry{}).Error; err != nil {
				return err
			}
		case models.ContentPlaylist:
			if err := tx.Exec("DELETE FROM playlist_videos WHERE playlist_id = ?", id).Error; err != nil {
				return err
			}
		}

		res := tx.Exec("DELETE FROM "+s.table+" WHERE id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		deleted = item
		return nil
	})
	if err != nil {
		observability.NewRepoLogger(s.table).LogError(ctx, err, "delete")
		return nil, err
	}
	observability.NewRepoLogger(s.table).LogDelete(ctx, map[string]interface{}{"id": id.String()})
	return deleted, nil
}

func deleteReactions(tx *gorm.DB, kind models.TargetKind, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return tx.Where("target_kind = ? AND target_id IN ?", kind, ids).Delete(&models.Reaction{}).Error
}

// TogglePublished flips the publish flag in a single statement.
func (r *contentRepository) TogglePublished(ctx context.Context, videoID uuid.UUID) (*models.ContentItem, error) {
	defer observability.TrackQuery("update", "videos")()

	db := r.db.WithContext(ctx)
	res := db.Model(&models.Video{}).Where("id = ?", videoID).Updates(map[string]interface{}{
		"is_published": gorm.Expr("NOT is_published"),
		"updated_at":   time.Now().UTC(),
	})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return findContent(db, models.ContentVideo, videoID)
}
