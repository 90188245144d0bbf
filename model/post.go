package model

import "time"

/*

Post is a piece of content authored by a user

ID: primary key
Text: post body in plain text, required non-empty (enforced by forms)
PubDate: server-assigned creation timestamp, immutable after creation
GroupID:
Group: optional community the post is published to, "belongs-to" relation.
       When the group is deleted the reference is cleared, the post stays.
AuthorID:
Author: user who wrote the post, "belongs-to" relation. Deleting the author
        deletes the post.
ImageKey: optional blob store key of the attached image, empty if none

Default ordering everywhere is pub_date descending (newest first).

*/

type Post struct {
	ID       uint      `gorm:"primaryKey"`
	Text     string    `gorm:"type:text;not null"`
	PubDate  time.Time `gorm:"autoCreateTime;index"`
	GroupID  *uint
	Group    *Group `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	AuthorID uint   `gorm:"index;not null"`
	Author   User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	ImageKey string
}
