package model

import "time"

/*

User is a registered member of the platform

ID: primary key
Username: unique handle, used in profile urls
FirstName, LastName, Email: profile fields collected at signup
PasswordHash: bcrypt hash of the user's password
CreatedAt: time when the account is created

Deleting a user cascades to their posts, comments and follow edges.

*/

type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;size:150;not null"`
	FirstName    string `gorm:"size:150"`
	LastName     string `gorm:"size:150"`
	Email        string `gorm:"size:254"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
}
