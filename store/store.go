// Package store defines the persistence boundary of the platform. Handlers
// and the feed builder only ever see the Store interface, so tests can swap
// the gorm-backed implementation for the in-memory one.
package store

import (
	"context"
	"errors"

	"github.com/akorolkov/postline/model"
)

// ErrNotFound is returned when a referenced user, group, post or comment
// does not exist. Callers are expected to check it with errors.Is.
var ErrNotFound = errors.New("store: record not found")

// PostFilter narrows a post listing. Zero value selects every post. All set
// fields are combined with AND.
type PostFilter struct {
	// GroupID selects posts published to the given group.
	GroupID *uint
	// AuthorID selects posts written by the given user.
	AuthorID *uint
	// FollowedBy selects posts whose author is followed by the given user.
	FollowedBy *uint
}

// Store is the full capability set handlers need: create, get,
// list-filtered and delete per entity. Post listings are always ordered
// newest first (pub_date desc, id desc as a tie-breaker); comment listings
// are oldest first.
type Store interface {
	CreateUser(ctx context.Context, u *model.User) error
	UserByUsername(ctx context.Context, username string) (*model.User, error)
	UserByID(ctx context.Context, id uint) (*model.User, error)
	UpdateUserPassword(ctx context.Context, id uint, passwordHash string) error
	DeleteUser(ctx context.Context, id uint) error

	CreateGroup(ctx context.Context, g *model.Group) error
	GroupBySlug(ctx context.Context, slug string) (*model.Group, error)
	ListGroups(ctx context.Context) ([]model.Group, error)
	DeleteGroup(ctx context.Context, id uint) error

	CreatePost(ctx context.Context, p *model.Post) error
	PostByID(ctx context.Context, id uint) (*model.Post, error)
	UpdatePost(ctx context.Context, p *model.Post) error
	ListPosts(ctx context.Context, f PostFilter, offset, limit int) ([]model.Post, error)
	CountPosts(ctx context.Context, f PostFilter) (int, error)

	CreateComment(ctx context.Context, c *model.Comment) error
	CommentsByPost(ctx context.Context, postID uint) ([]model.Comment, error)

	// CreateFollow creates the (user, author) edge if it does not already
	// exist. Calling it twice leaves exactly one edge.
	CreateFollow(ctx context.Context, userID, authorID uint) error
	// DeleteFollow removes the (user, author) edge. Deleting a missing edge
	// is not an error.
	DeleteFollow(ctx context.Context, userID, authorID uint) error
	IsFollowing(ctx context.Context, userID, authorID uint) (bool, error)
}
