package server

import (
	"net/http"
	"strconv"

	"github.com/akorolkov/postline/forms"
	"github.com/akorolkov/postline/model"
	"github.com/akorolkov/postline/server/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// postForm reads a post create/edit submission from the request. The group
// select submits an empty value for "no group".
func postForm(c *gin.Context) forms.PostForm {
	form := forms.PostForm{Text: c.PostForm("text")}
	if raw := c.PostForm("group"); raw != "" {
		if id, ok := parseID(raw); ok {
			form.GroupID = &id
		}
	}
	return form
}

// saveImage stores an uploaded image namespaced by the post id and returns
// its key. A request without an image yields ""; a failing image store is
// an error, never a silently image-less post.
func (s *Server) saveImage(c *gin.Context, postID uint) (string, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return "", nil
	}
	src, err := file.Open()
	if err != nil {
		return "", errors.Wrap(err, "fail to open uploaded image")
	}
	defer src.Close()
	key, err := s.images.Save(src, strconv.FormatUint(uint64(postID), 10), file.Filename)
	if err != nil {
		return "", errors.Wrap(err, "fail to store uploaded image")
	}
	return key, nil
}

func (s *Server) renderPostForm(c *gin.Context, form forms.PostForm, ferr *forms.FieldError, post *model.Post) {
	groups, err := s.store.ListGroups(c.Request.Context())
	if err != nil {
		s.renderError(c, err)
		return
	}
	// Templates compare the select options against a plain uint; zero means
	// no group.
	var selected uint
	if form.GroupID != nil {
		selected = *form.GroupID
	}
	c.HTML(http.StatusOK, "create_post.html", gin.H{
		"User":          middlewares.UserFromContext(c),
		"Form":          form,
		"Error":         ferr,
		"Groups":        groups,
		"SelectedGroup": selected,
		"IsEdit":        post != nil,
		"Post":          post,
	})
}

// PostDetail shows a post, its comments oldest first and the comment form.
func (s *Server) PostDetail(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		s.renderNotFound(c)
		return
	}
	post, err := s.store.PostByID(c.Request.Context(), id)
	if err != nil {
		s.renderError(c, err)
		return
	}
	comments, err := s.store.CommentsByPost(c.Request.Context(), post.ID)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.HTML(http.StatusOK, "post_detail.html", gin.H{
		"User":     middlewares.UserFromContext(c),
		"Post":     post,
		"Comments": comments,
	})
}

func (s *Server) CreatePostForm(c *gin.Context) {
	s.renderPostForm(c, forms.PostForm{}, nil, nil)
}

// CreatePost persists a new post authored by the caller and redirects to
// their profile. Validation failure re-renders the form with the message.
func (s *Server) CreatePost(c *gin.Context) {
	user := middlewares.UserFromContext(c)
	form := postForm(c)
	if ferr := form.Validate(); ferr != nil {
		s.renderPostForm(c, form, ferr, nil)
		return
	}
	post := &model.Post{
		Text:     form.Text,
		GroupID:  form.GroupID,
		AuthorID: user.ID,
	}
	if err := s.store.CreatePost(c.Request.Context(), post); err != nil {
		s.renderError(c, err)
		return
	}
	// The image key is namespaced by post id, so the upload happens after
	// the insert assigned one.
	key, err := s.saveImage(c, post.ID)
	if err != nil {
		s.renderError(c, err)
		return
	}
	if key != "" {
		post.ImageKey = key
		if err := s.store.UpdatePost(c.Request.Context(), post); err != nil {
			s.renderError(c, err)
			return
		}
	}
	c.Redirect(http.StatusFound, "/profile/"+user.Username+"/")
}

// canEdit applies the configured edit policy. The legacy platform let any
// authenticated user edit any post; the restriction is on by default.
func (s *Server) canEdit(user *model.User, post *model.Post) bool {
	if !s.setting.RESTRICT_POST_EDIT_TO_AUTHOR {
		return true
	}
	return post.AuthorID == user.ID
}

func (s *Server) EditPostForm(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		s.renderNotFound(c)
		return
	}
	post, err := s.store.PostByID(c.Request.Context(), id)
	if err != nil {
		s.renderError(c, err)
		return
	}
	if !s.canEdit(middlewares.UserFromContext(c), post) {
		c.Redirect(http.StatusFound, postDetailURL(post.ID))
		return
	}
	s.renderPostForm(c, forms.PostForm{Text: post.Text, GroupID: post.GroupID}, nil, post)
}

// EditPost updates a post's text, group and image. PubDate and author never
// change.
func (s *Server) EditPost(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		s.renderNotFound(c)
		return
	}
	post, err := s.store.PostByID(c.Request.Context(), id)
	if err != nil {
		s.renderError(c, err)
		return
	}
	if !s.canEdit(middlewares.UserFromContext(c), post) {
		c.Redirect(http.StatusFound, postDetailURL(post.ID))
		return
	}
	form := postForm(c)
	if ferr := form.Validate(); ferr != nil {
		s.renderPostForm(c, form, ferr, post)
		return
	}
	post.Text = form.Text
	post.GroupID = form.GroupID
	key, err := s.saveImage(c, post.ID)
	if err != nil {
		s.renderError(c, err)
		return
	}
	if key != "" {
		post.ImageKey = key
	}
	if err := s.store.UpdatePost(c.Request.Context(), post); err != nil {
		s.renderError(c, err)
		return
	}
	c.Redirect(http.StatusFound, postDetailURL(post.ID))
}

// AddComment attaches a comment to a post. An empty text is dropped
// silently: no persisted change, no message, just the redirect back.
func (s *Server) AddComment(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		s.renderNotFound(c)
		return
	}
	post, err := s.store.PostByID(c.Request.Context(), id)
	if err != nil {
		s.renderError(c, err)
		return
	}
	form := forms.CommentForm{Text: c.PostForm("text")}
	if ferr := form.Validate(); ferr == nil {
		comment := &model.Comment{
			Text:     form.Text,
			PostID:   post.ID,
			AuthorID: middlewares.UserFromContext(c).ID,
		}
		if err := s.store.CreateComment(c.Request.Context(), comment); err != nil {
			s.renderError(c, err)
			return
		}
	}
	c.Redirect(http.StatusFound, postDetailURL(post.ID))
}

func postDetailURL(id uint) string {
	return "/posts/" + strconv.FormatUint(uint64(id), 10) + "/"
}

