package server

import (
	"net/http"

	"github.com/akorolkov/postline/server/middlewares"
	"github.com/gin-gonic/gin"
)

// ProfileFollow creates the (caller, target) follow edge. Following
// yourself or someone you already follow changes nothing; either way the
// caller lands back on the target's profile.
func (s *Server) ProfileFollow(c *gin.Context) {
	user := middlewares.UserFromContext(c)
	author, err := s.store.UserByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	if user.ID != author.ID {
		if err := s.store.CreateFollow(c.Request.Context(), user.ID, author.ID); err != nil {
			s.renderError(c, err)
			return
		}
	}
	c.Redirect(http.StatusFound, "/profile/"+author.Username+"/")
}

// ProfileUnfollow deletes the (caller, target) follow edge. Deleting a
// missing edge is not an error.
func (s *Server) ProfileUnfollow(c *gin.Context) {
	user := middlewares.UserFromContext(c)
	author, err := s.store.UserByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	if user.ID != author.ID {
		if err := s.store.DeleteFollow(c.Request.Context(), user.ID, author.ID); err != nil {
			s.renderError(c, err)
			return
		}
	}
	c.Redirect(http.StatusFound, "/profile/"+author.Username+"/")
}
