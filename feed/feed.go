// Package feed composes the ordered, paginated post sets behind every page
// type: all posts, one group's posts, one author's posts, and the posts of
// the authors a user follows. Read-only; no side effects.
package feed

import (
	"context"

	"github.com/akorolkov/postline/model"
	"github.com/akorolkov/postline/pagination"
	"github.com/akorolkov/postline/store"
	"github.com/pkg/errors"
)

// Page is one feed page: the posts of the requested window plus the pager
// metadata templates need.
type Page struct {
	Posts      []model.Post
	Pagination pagination.Page
}

type Builder struct {
	store store.Store
}

func NewBuilder(s store.Store) *Builder {
	return &Builder{store: s}
}

func (b *Builder) page(ctx context.Context, f store.PostFilter, requested int) (*Page, error) {
	total, err := b.store.CountPosts(ctx, f)
	if err != nil {
		return nil, errors.Wrap(err, "fail to count feed posts")
	}
	pg := pagination.Paginate(total, pagination.PageSize, requested)
	posts, err := b.store.ListPosts(ctx, f, pg.Offset, pg.Limit)
	if err != nil {
		return nil, errors.Wrap(err, "fail to list feed posts")
	}
	return &Page{Posts: posts, Pagination: pg}, nil
}

// AllPosts is the front page feed: every post, newest first.
func (b *Builder) AllPosts(ctx context.Context, requested int) (*Page, error) {
	return b.page(ctx, store.PostFilter{}, requested)
}

// GroupPosts returns the group and its feed, or store.ErrNotFound when no
// group has the slug.
func (b *Builder) GroupPosts(ctx context.Context, slug string, requested int) (*model.Group, *Page, error) {
	group, err := b.store.GroupBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	page, err := b.page(ctx, store.PostFilter{GroupID: &group.ID}, requested)
	if err != nil {
		return nil, nil, err
	}
	return group, page, nil
}

// AuthorPosts returns the author and their feed, or store.ErrNotFound when
// no user has the username.
func (b *Builder) AuthorPosts(ctx context.Context, username string, requested int) (*model.User, *Page, error) {
	author, err := b.store.UserByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	page, err := b.page(ctx, store.PostFilter{AuthorID: &author.ID}, requested)
	if err != nil {
		return nil, nil, err
	}
	return author, page, nil
}

// FollowingPosts is the personalized feed: posts whose author the user
// follows. Authentication is enforced upstream by middleware.
func (b *Builder) FollowingPosts(ctx context.Context, userID uint, requested int) (*Page, error) {
	return b.page(ctx, store.PostFilter{FollowedBy: &userID}, requested)
}
