package server

import (
	"net/http"

	"github.com/akorolkov/postline/pagination"
	"github.com/akorolkov/postline/server/middlewares"
	"github.com/gin-gonic/gin"
)

// Index is the all-posts feed.
func (s *Server) Index(c *gin.Context) {
	page, err := s.feed.AllPosts(c.Request.Context(), pagination.ParsePage(c.Query("page")))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.HTML(http.StatusOK, "index.html", gin.H{
		"User": middlewares.UserFromContext(c),
		"Page": page,
	})
}

// GroupPosts is the feed of a single group.
func (s *Server) GroupPosts(c *gin.Context) {
	group, page, err := s.feed.GroupPosts(c.Request.Context(), c.Param("slug"), pagination.ParsePage(c.Query("page")))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.HTML(http.StatusOK, "group_list.html", gin.H{
		"User":  middlewares.UserFromContext(c),
		"Group": group,
		"Page":  page,
	})
}

// Profile is an author's feed plus the viewer's follow state.
func (s *Server) Profile(c *gin.Context) {
	author, page, err := s.feed.AuthorPosts(c.Request.Context(), c.Param("username"), pagination.ParsePage(c.Query("page")))
	if err != nil {
		s.renderError(c, err)
		return
	}
	following := false
	if user := middlewares.UserFromContext(c); user != nil {
		following, err = s.store.IsFollowing(c.Request.Context(), user.ID, author.ID)
		if err != nil {
			s.renderError(c, err)
			return
		}
	}
	c.HTML(http.StatusOK, "profile.html", gin.H{
		"User":      middlewares.UserFromContext(c),
		"Author":    author,
		"Page":      page,
		"Following": following,
	})
}

// FollowIndex is the personalized feed of followed authors' posts.
func (s *Server) FollowIndex(c *gin.Context) {
	user := middlewares.UserFromContext(c)
	page, err := s.feed.FollowingPosts(c.Request.Context(), user.ID, pagination.ParsePage(c.Query("page")))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.HTML(http.StatusOK, "follow.html", gin.H{
		"User": user,
		"Page": page,
	})
}
