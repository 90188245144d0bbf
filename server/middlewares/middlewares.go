package middlewares

import (
	"bytes"
	"net/http"
	"net/url"

	"github.com/akorolkov/postline/cache"
	"github.com/akorolkov/postline/model"
	"github.com/akorolkov/postline/store"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	// SessionUserKey is the session field holding the logged-in user's id.
	SessionUserKey = "user_id"
	// ContextUserKey is the gin context field CurrentUser sets.
	ContextUserKey = "current_user"

	LoginURL = "/auth/login/"
)

// CurrentUser resolves the session's user id through the store and puts the
// user on the request context. A stale session (user deleted) is treated as
// logged out. It never aborts; gating is LoginRequired's job.
func CurrentUser(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		raw := session.Get(SessionUserKey)
		if raw != nil {
			if id, ok := raw.(uint); ok {
				if user, err := s.UserByID(c.Request.Context(), id); err == nil {
					c.Set(ContextUserKey, user)
				}
			}
		}
		c.Next()
	}
}

// UserFromContext returns the logged-in user, or nil.
func UserFromContext(c *gin.Context) *model.User {
	if v, ok := c.Get(ContextUserKey); ok {
		return v.(*model.User)
	}
	return nil
}

// LoginRequired redirects anonymous requests to the login page, preserving
// the originally requested path in the "next" parameter.
func LoginRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserFromContext(c) == nil {
			next := url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusFound, LoginURL+"?next="+next)
			c.Abort()
			return
		}
		c.Next()
	}
}

// cachedWriter tees the response body so a successful render can be stored.
type cachedWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *cachedWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// CachePage serves GET responses out of the page cache keyed by request
// URL. Only 200 responses are stored. Mutations elsewhere do not invalidate
// entries; staleness is bounded by the cache TTL.
func CachePage(pc cache.PageCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}
		key := c.Request.URL.RequestURI()
		if body, ok := pc.Get(c.Request.Context(), key); ok {
			c.Data(http.StatusOK, "text/html; charset=utf-8", body)
			c.Abort()
			return
		}
		w := &cachedWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()
		if w.Status() == http.StatusOK {
			pc.Set(c.Request.Context(), key, w.buf.Bytes())
		}
	}
}
