// Package server maps the HTTP surface onto the feed builder and the store:
// paginated feed pages, post detail with comments, the create/edit/comment
// mutations, follow/unfollow, and session auth. Everything renders server
// side through gin's HTML templates.
package server

import (
	"html/template"
	"net/http"
	"os"

	"github.com/akorolkov/postline/app_setting"
	"github.com/akorolkov/postline/cache"
	"github.com/akorolkov/postline/feed"
	"github.com/akorolkov/postline/imagestore"
	"github.com/akorolkov/postline/server/middlewares"
	"github.com/akorolkov/postline/store"
	"github.com/akorolkov/postline/utils/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

type Server struct {
	store   store.Store
	feed    *feed.Builder
	images  imagestore.ImageStore
	pages   cache.PageCache
	setting app_setting.ServerAppSetting
}

func New(s store.Store, images imagestore.ImageStore, pages cache.PageCache, setting app_setting.ServerAppSetting) *Server {
	return &Server{
		store:   s,
		feed:    feed.NewBuilder(s),
		images:  images,
		pages:   pages,
		setting: setting,
	}
}

// Router builds the gin engine with the full route table. templatesGlob
// points at the HTML templates (tests pass a relative glob).
func (s *Server) Router(templatesGlob string) *gin.Engine {
	router := gin.Default()

	router.Use(cors.Default())
	router.Use(sessions.Sessions("postline_session", cookie.NewStore([]byte(sessionSecret()))))
	router.Use(middlewares.CurrentUser(s.store))

	router.SetFuncMap(template.FuncMap{
		"imageURL": s.images.URL,
	})
	router.LoadHTMLGlob(templatesGlob)

	if s.setting.MEDIA_ROOT != "" {
		router.Static("/media", s.setting.MEDIA_ROOT)
	}

	// Public pages. Only the front page is behind the full-page cache,
	// matching the original platform.
	router.GET("/", middlewares.CachePage(s.pages), s.Index)
	router.GET("/group/:slug/", s.GroupPosts)
	router.GET("/profile/:username/", s.Profile)
	router.GET("/posts/:id/", s.PostDetail)

	router.GET("/auth/signup/", s.SignupForm)
	router.POST("/auth/signup/", s.Signup)
	router.GET("/auth/login/", s.LoginForm)
	router.POST("/auth/login/", s.Login)
	router.GET("/auth/logout/", s.Logout)

	// Gated pages.
	auth := router.Group("", middlewares.LoginRequired())
	auth.GET("/create/", s.CreatePostForm)
	auth.POST("/create/", s.CreatePost)
	auth.GET("/posts/:id/edit/", s.EditPostForm)
	auth.POST("/posts/:id/edit/", s.EditPost)
	auth.POST("/posts/:id/comment/", s.AddComment)
	auth.GET("/follow/", s.FollowIndex)
	auth.GET("/profile/:username/follow/", s.ProfileFollow)
	auth.GET("/profile/:username/unfollow/", s.ProfileUnfollow)
	auth.GET("/auth/password_change/", s.PasswordChangeForm)
	auth.POST("/auth/password_change/", s.PasswordChange)

	router.NoRoute(func(c *gin.Context) {
		s.renderNotFound(c)
	})

	return router
}

func sessionSecret() string {
	if secret := os.Getenv("SESSION_SECRET"); secret != "" {
		return secret
	}
	// Dev fallback only; production sets SESSION_SECRET.
	return "postline-dev-secret"
}

func (s *Server) renderNotFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "404.html", gin.H{
		"User": middlewares.UserFromContext(c),
	})
}

// renderError turns a store error into a 404 page or a bare 500. Anything
// that is not a missing record is unexpected and propagates as a fatal
// request failure.
func (s *Server) renderError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		s.renderNotFound(c)
		return
	}
	log.Log.Error("request failed: ", err)
	c.String(http.StatusInternalServerError, "internal server error")
}
