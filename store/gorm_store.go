package store

import (
	"context"

	"github.com/akorolkov/postline/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// GormStore is the postgres-backed Store. Cascade and set-null behavior is
// declared on the models and enforced by the database itself, so the
// delete methods only need to remove the root record.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// notFoundOr maps gorm's record-not-found to the store sentinel and wraps
// anything else.
func notFoundOr(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (s *GormStore) CreateUser(ctx context.Context, u *model.User) error {
	return errors.Wrap(s.db.WithContext(ctx).Create(u).Error, "fail to create user")
}

func (s *GormStore) UserByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if err != nil {
		return nil, notFoundOr(err, "fail to get user by username")
	}
	return &u, nil
}

func (s *GormStore) UserByID(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	err := s.db.WithContext(ctx).First(&u, id).Error
	if err != nil {
		return nil, notFoundOr(err, "fail to get user by id")
	}
	return &u, nil
}

func (s *GormStore) UpdateUserPassword(ctx context.Context, id uint, passwordHash string) error {
	err := s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("password_hash", passwordHash).Error
	return errors.Wrap(err, "fail to update user password")
}

func (s *GormStore) DeleteUser(ctx context.Context, id uint) error {
	return errors.Wrap(s.db.WithContext(ctx).Delete(&model.User{}, id).Error, "fail to delete user")
}

func (s *GormStore) CreateGroup(ctx context.Context, g *model.Group) error {
	return errors.Wrap(s.db.WithContext(ctx).Create(g).Error, "fail to create group")
}

func (s *GormStore) GroupBySlug(ctx context.Context, slug string) (*model.Group, error) {
	var g model.Group
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&g).Error
	if err != nil {
		return nil, notFoundOr(err, "fail to get group by slug")
	}
	return &g, nil
}

func (s *GormStore) ListGroups(ctx context.Context) ([]model.Group, error) {
	var groups []model.Group
	err := s.db.WithContext(ctx).Order("title").Find(&groups).Error
	return groups, errors.Wrap(err, "fail to list groups")
}

func (s *GormStore) DeleteGroup(ctx context.Context, id uint) error {
	return errors.Wrap(s.db.WithContext(ctx).Delete(&model.Group{}, id).Error, "fail to delete group")
}

func (s *GormStore) CreatePost(ctx context.Context, p *model.Post) error {
	return errors.Wrap(s.db.WithContext(ctx).Create(p).Error, "fail to create post")
}

func (s *GormStore) PostByID(ctx context.Context, id uint) (*model.Post, error) {
	var p model.Post
	err := s.db.WithContext(ctx).Preload("Author").Preload("Group").First(&p, id).Error
	if err != nil {
		return nil, notFoundOr(err, "fail to get post by id")
	}
	return &p, nil
}

func (s *GormStore) UpdatePost(ctx context.Context, p *model.Post) error {
	// Select the mutable columns explicitly so pub_date and author stay
	// immutable after creation.
	err := s.db.WithContext(ctx).Model(p).
		Select("text", "group_id", "image_key").
		Updates(map[string]interface{}{
			"text":      p.Text,
			"group_id":  p.GroupID,
			"image_key": p.ImageKey,
		}).Error
	return errors.Wrap(err, "fail to update post")
}

func (s *GormStore) postQuery(ctx context.Context, f PostFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&model.Post{})
	if f.GroupID != nil {
		q = q.Where("posts.group_id = ?", *f.GroupID)
	}
	if f.AuthorID != nil {
		q = q.Where("posts.author_id = ?", *f.AuthorID)
	}
	if f.FollowedBy != nil {
		q = q.Joins("JOIN follows ON follows.author_id = posts.author_id").
			Where("follows.user_id = ?", *f.FollowedBy)
	}
	return q
}

func (s *GormStore) ListPosts(ctx context.Context, f PostFilter, offset, limit int) ([]model.Post, error) {
	var posts []model.Post
	err := s.postQuery(ctx, f).
		Preload("Author").
		Preload("Group").
		Order("posts.pub_date DESC, posts.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	return posts, errors.Wrap(err, "fail to list posts")
}

func (s *GormStore) CountPosts(ctx context.Context, f PostFilter) (int, error) {
	var count int64
	err := s.postQuery(ctx, f).Count(&count).Error
	return int(count), errors.Wrap(err, "fail to count posts")
}

func (s *GormStore) CreateComment(ctx context.Context, c *model.Comment) error {
	return errors.Wrap(s.db.WithContext(ctx).Create(c).Error, "fail to create comment")
}

func (s *GormStore) CommentsByPost(ctx context.Context, postID uint) ([]model.Comment, error) {
	var comments []model.Comment
	err := s.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("pub_date ASC, id ASC").
		Find(&comments).Error
	return comments, errors.Wrap(err, "fail to list comments")
}

func (s *GormStore) CreateFollow(ctx context.Context, userID, authorID uint) error {
	// Get-or-create keeps the operation idempotent at the application layer;
	// the unique index on (user_id, author_id) backs it up against races.
	err := s.db.WithContext(ctx).
		Where(model.Follow{UserID: userID, AuthorID: authorID}).
		FirstOrCreate(&model.Follow{}).Error
	return errors.Wrap(err, "fail to create follow")
}

func (s *GormStore) DeleteFollow(ctx context.Context, userID, authorID uint) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&model.Follow{}).Error
	return errors.Wrap(err, "fail to delete follow")
}

func (s *GormStore) IsFollowing(ctx context.Context, userID, authorID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error
	return count > 0, errors.Wrap(err, "fail to check follow")
}
