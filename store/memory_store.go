package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/akorolkov/postline/model"
)

// MemoryStore is an in-memory Store used in tests. It mirrors the
// relational schema's behavior: deleting a user cascades to their posts,
// comments and follow edges; deleting a group clears the group reference on
// its posts; the (user, author) follow pair is unique.
type MemoryStore struct {
	mu sync.Mutex

	users    map[uint]*model.User
	groups   map[uint]*model.Group
	posts    map[uint]*model.Post
	comments map[uint]*model.Comment
	follows  map[uint]*model.Follow

	nextID uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[uint]*model.User),
		groups:   make(map[uint]*model.Group),
		posts:    make(map[uint]*model.Post),
		comments: make(map[uint]*model.Comment),
		follows:  make(map[uint]*model.Follow),
	}
}

func (s *MemoryStore) nextId() uint {
	s.nextID++
	return s.nextID
}

func (s *MemoryStore) CreateUser(ctx context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.nextId()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *MemoryStore) UserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) UserByID(ctx context.Context, id uint) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) UpdateUserPassword(ctx context.Context, id uint, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (s *MemoryStore) DeleteUser(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	// Cascade: the user's posts (and those posts' comments), their own
	// comments, and any follow edge touching them.
	for pid, p := range s.posts {
		if p.AuthorID == id {
			delete(s.posts, pid)
			for cid, c := range s.comments {
				if c.PostID == pid {
					delete(s.comments, cid)
				}
			}
		}
	}
	for cid, c := range s.comments {
		if c.AuthorID == id {
			delete(s.comments, cid)
		}
	}
	for fid, f := range s.follows {
		if f.UserID == id || f.AuthorID == id {
			delete(s.follows, fid)
		}
	}
	return nil
}

func (s *MemoryStore) CreateGroup(ctx context.Context, g *model.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g.ID = s.nextId()
	cp := *g
	s.groups[g.ID] = &cp
	return nil
}

func (s *MemoryStore) GroupBySlug(ctx context.Context, slug string) (*model.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.groups {
		if g.Slug == slug {
			cp := *g
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListGroups(ctx context.Context) ([]model.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var groups []model.Group
	for _, g := range s.groups {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Title < groups[j].Title })
	return groups, nil
}

func (s *MemoryStore) DeleteGroup(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.groups, id)
	// Set-null: posts outlive their group.
	for _, p := range s.posts {
		if p.GroupID != nil && *p.GroupID == id {
			p.GroupID = nil
			p.Group = nil
		}
	}
	return nil
}

func (s *MemoryStore) CreatePost(ctx context.Context, p *model.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.nextId()
	if p.PubDate.IsZero() {
		p.PubDate = time.Now()
	}
	cp := *p
	s.posts[p.ID] = &cp
	return nil
}

func (s *MemoryStore) PostByID(ctx context.Context, id uint) (*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := s.hydratePost(p)
	return &cp, nil
}

// hydratePost fills the belongs-to associations, like gorm's Preload does.
// Callers must hold the lock.
func (s *MemoryStore) hydratePost(p *model.Post) model.Post {
	cp := *p
	if author, ok := s.users[p.AuthorID]; ok {
		cp.Author = *author
	}
	if p.GroupID != nil {
		if g, ok := s.groups[*p.GroupID]; ok {
			gcp := *g
			cp.Group = &gcp
		}
	}
	return cp
}

func (s *MemoryStore) UpdatePost(ctx context.Context, p *model.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.posts[p.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Text = p.Text
	existing.GroupID = p.GroupID
	existing.ImageKey = p.ImageKey
	return nil
}

func (s *MemoryStore) matches(p *model.Post, f PostFilter) bool {
	if f.GroupID != nil && (p.GroupID == nil || *p.GroupID != *f.GroupID) {
		return false
	}
	if f.AuthorID != nil && p.AuthorID != *f.AuthorID {
		return false
	}
	if f.FollowedBy != nil {
		followed := false
		for _, edge := range s.follows {
			if edge.UserID == *f.FollowedBy && edge.AuthorID == p.AuthorID {
				followed = true
				break
			}
		}
		if !followed {
			return false
		}
	}
	return true
}

func (s *MemoryStore) ListPosts(ctx context.Context, f PostFilter, offset, limit int) ([]model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var posts []model.Post
	for _, p := range s.posts {
		if s.matches(p, f) {
			posts = append(posts, s.hydratePost(p))
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].PubDate.Equal(posts[j].PubDate) {
			return posts[i].PubDate.After(posts[j].PubDate)
		}
		return posts[i].ID > posts[j].ID
	})
	if offset >= len(posts) {
		return nil, nil
	}
	posts = posts[offset:]
	if limit >= 0 && limit < len(posts) {
		posts = posts[:limit]
	}
	return posts, nil
}

func (s *MemoryStore) CountPosts(ctx context.Context, f PostFilter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, p := range s.posts {
		if s.matches(p, f) {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) CreateComment(ctx context.Context, c *model.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[c.PostID]; !ok {
		return ErrNotFound
	}
	c.ID = s.nextId()
	if c.PubDate.IsZero() {
		c.PubDate = time.Now()
	}
	cp := *c
	s.comments[c.ID] = &cp
	return nil
}

func (s *MemoryStore) CommentsByPost(ctx context.Context, postID uint) ([]model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var comments []model.Comment
	for _, c := range s.comments {
		if c.PostID == postID {
			cp := *c
			if author, ok := s.users[c.AuthorID]; ok {
				cp.Author = *author
			}
			comments = append(comments, cp)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		if !comments[i].PubDate.Equal(comments[j].PubDate) {
			return comments[i].PubDate.Before(comments[j].PubDate)
		}
		return comments[i].ID < comments[j].ID
	})
	return comments, nil
}

func (s *MemoryStore) CreateFollow(ctx context.Context, userID, authorID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.follows {
		if f.UserID == userID && f.AuthorID == authorID {
			return nil
		}
	}
	id := s.nextId()
	s.follows[id] = &model.Follow{
		ID:        id,
		UserID:    userID,
		AuthorID:  authorID,
		CreatedAt: time.Now(),
	}
	return nil
}

func (s *MemoryStore) DeleteFollow(ctx context.Context, userID, authorID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for fid, f := range s.follows {
		if f.UserID == userID && f.AuthorID == authorID {
			delete(s.follows, fid)
		}
	}
	return nil
}

func (s *MemoryStore) IsFollowing(ctx context.Context, userID, authorID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.follows {
		if f.UserID == userID && f.AuthorID == authorID {
			return true, nil
		}
	}
	return false, nil
}

// FollowCount reports the number of edges for a (user, author) pair. Test
// helper for idempotence checks.
func (s *MemoryStore) FollowCount(userID, authorID uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, f := range s.follows {
		if f.UserID == userID && f.AuthorID == authorID {
			count++
		}
	}
	return count
}
