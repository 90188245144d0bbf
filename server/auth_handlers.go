package server

import (
	"net/http"
	"strings"

	"github.com/akorolkov/postline/forms"
	"github.com/akorolkov/postline/model"
	"github.com/akorolkov/postline/server/middlewares"
	"github.com/akorolkov/postline/store"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// safeNext keeps the post-login redirect on this site. Anything that is not
// a local absolute path falls back to the front page.
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return "/"
}

func (s *Server) logIn(c *gin.Context, user *model.User) error {
	session := sessions.Default(c)
	session.Set(middlewares.SessionUserKey, user.ID)
	return session.Save()
}

func (s *Server) SignupForm(c *gin.Context) {
	c.HTML(http.StatusOK, "signup.html", gin.H{"Form": forms.SignupForm{}})
}

// Signup registers a user and logs them straight in.
func (s *Server) Signup(c *gin.Context) {
	form := forms.SignupForm{
		Username:        c.PostForm("username"),
		FirstName:       c.PostForm("first_name"),
		LastName:        c.PostForm("last_name"),
		Email:           c.PostForm("email"),
		Password:        c.PostForm("password"),
		PasswordConfirm: c.PostForm("password_confirm"),
	}
	ferr := form.Validate()
	if ferr == nil {
		if _, err := s.store.UserByUsername(c.Request.Context(), form.Username); err == nil {
			ferr = &forms.FieldError{Field: "username", Message: "Имя пользователя уже занято!"}
		} else if !errors.Is(err, store.ErrNotFound) {
			s.renderError(c, err)
			return
		}
	}
	if ferr != nil {
		c.HTML(http.StatusOK, "signup.html", gin.H{"Form": form, "Error": ferr})
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		s.renderError(c, err)
		return
	}
	user := &model.User{
		Username:     form.Username,
		FirstName:    form.FirstName,
		LastName:     form.LastName,
		Email:        form.Email,
		PasswordHash: string(hash),
	}
	if err := s.store.CreateUser(c.Request.Context(), user); err != nil {
		s.renderError(c, err)
		return
	}
	if err := s.logIn(c, user); err != nil {
		s.renderError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (s *Server) LoginForm(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{"Next": c.Query("next")})
}

// Login authenticates and redirects to the "next" target the login gate
// preserved, defaulting to the front page.
func (s *Server) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	next := c.PostForm("next")

	user, err := s.store.UserByUsername(c.Request.Context(), username)
	if err == nil {
		err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	}
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) && !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.renderError(c, err)
			return
		}
		c.HTML(http.StatusOK, "login.html", gin.H{
			"Next":  next,
			"Error": &forms.FieldError{Field: "password", Message: "Неверное имя пользователя или пароль!"},
		})
		return
	}
	if err := s.logIn(c, user); err != nil {
		s.renderError(c, err)
		return
	}
	c.Redirect(http.StatusFound, safeNext(next))
}

func (s *Server) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		s.renderError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (s *Server) PasswordChangeForm(c *gin.Context) {
	c.HTML(http.StatusOK, "password_change.html", gin.H{
		"User": middlewares.UserFromContext(c),
	})
}

// PasswordChange verifies the current password before storing a new hash.
func (s *Server) PasswordChange(c *gin.Context) {
	user := middlewares.UserFromContext(c)
	form := forms.PasswordChangeForm{
		OldPassword:        c.PostForm("old_password"),
		NewPassword:        c.PostForm("new_password"),
		NewPasswordConfirm: c.PostForm("new_password_confirm"),
	}
	ferr := form.Validate()
	if ferr == nil {
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(form.OldPassword)) != nil {
			ferr = &forms.FieldError{Field: "old_password", Message: "Неверный текущий пароль!"}
		}
	}
	if ferr != nil {
		c.HTML(http.StatusOK, "password_change.html", gin.H{"User": user, "Error": ferr})
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(form.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		s.renderError(c, err)
		return
	}
	user.PasswordHash = string(hash)
	if err := s.store.UpdateUserPassword(c.Request.Context(), user.ID, user.PasswordHash); err != nil {
		s.renderError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/profile/"+user.Username+"/")
}
