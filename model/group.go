package model

/*

Group is a named community a post can optionally belong to

ID: primary key
Title: display name
Slug: unique identifier used in urls
Description: free-form description shown on the group page
AuthorID:
Author: user who created the group, "belongs-to" relation. Nullable; deleting
        the author deletes the group itself and nothing beyond it.

*/

type Group struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"size:200;not null"`
	Slug        string `gorm:"uniqueIndex;size:200;not null"`
	Description string `gorm:"type:text"`
	AuthorID    *uint
	Author      *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
