// Package forms holds the pure validation rules for every mutation. Each
// form validates to either nil or a FieldError; rendering the error is the
// presentation layer's business.
package forms

import "strings"

// FieldError names the offending field and carries the message shown inline
// on the re-rendered form.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// PostForm carries a post create/edit submission. GroupID and ImageKey are
// optional.
type PostForm struct {
	Text     string
	GroupID  *uint
	ImageKey string
}

func (f PostForm) Validate() *FieldError {
	if strings.TrimSpace(f.Text) == "" {
		return &FieldError{Field: "text", Message: "Введите текст поста!"}
	}
	return nil
}

// CommentForm carries a comment submission.
type CommentForm struct {
	Text string
}

func (f CommentForm) Validate() *FieldError {
	if strings.TrimSpace(f.Text) == "" {
		return &FieldError{Field: "text", Message: "Введите текст комментария!"}
	}
	return nil
}

// SignupForm carries a registration submission.
type SignupForm struct {
	Username        string
	FirstName       string
	LastName        string
	Email           string
	Password        string
	PasswordConfirm string
}

func (f SignupForm) Validate() *FieldError {
	if strings.TrimSpace(f.Username) == "" {
		return &FieldError{Field: "username", Message: "Введите имя пользователя!"}
	}
	if f.Password == "" {
		return &FieldError{Field: "password", Message: "Введите пароль!"}
	}
	if f.Password != f.PasswordConfirm {
		return &FieldError{Field: "password_confirm", Message: "Пароли не совпадают!"}
	}
	return nil
}

// PasswordChangeForm carries a password change submission. Checking the old
// password against the stored hash happens in the handler; the form only
// validates shape.
type PasswordChangeForm struct {
	OldPassword        string
	NewPassword        string
	NewPasswordConfirm string
}

func (f PasswordChangeForm) Validate() *FieldError {
	if f.NewPassword == "" {
		return &FieldError{Field: "new_password", Message: "Введите новый пароль!"}
	}
	if f.NewPassword != f.NewPasswordConfirm {
		return &FieldError{Field: "new_password_confirm", Message: "Пароли не совпадают!"}
	}
	return nil
}
