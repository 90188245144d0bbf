package model

import "time"

/*

Comment is a user's reply attached to a post

ID: primary key
Text: comment body, required non-empty (enforced by forms)
PubDate: server-assigned creation timestamp
PostID:
Post: the commented post, "belongs-to" relation. Deleting the post deletes
      its comments.
AuthorID:
Author: user who wrote the comment, "belongs-to" relation. Deleting the
        author deletes the comment.

Comments are listed oldest first on the post detail page.

*/

type Comment struct {
	ID       uint      `gorm:"primaryKey"`
	Text     string    `gorm:"type:text;not null"`
	PubDate  time.Time `gorm:"autoCreateTime;index"`
	PostID   uint      `gorm:"index;not null"`
	Post     Post      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	AuthorID uint      `gorm:"index;not null"`
	Author   User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
