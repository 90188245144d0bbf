package model

import "time"

/*

Follow is a directed edge in the follow graph

UserID:
User: the follower, "belongs-to" relation
AuthorID:
Author: the followed user, "belongs-to" relation
CreatedAt: time when the edge is created

The (user_id, author_id) pair is unique at the storage level so concurrent
follow requests cannot produce duplicate edges. Self-follow is rejected at
the application layer. Deleting either side deletes the edge.

*/

type Follow struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_follows_user_author"`
	User      User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	AuthorID  uint `gorm:"not null;uniqueIndex:idx_follows_user_author"`
	Author    User `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt time.Time
}
