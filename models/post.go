package models

import "time"

// Post is a user submission. The owner is always taken from the verified
// token at creation time, never from the request body. Likes live in the
// post_likes join table so membership can be flipped atomically.
type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Category    string    `gorm:"size:100;index" json:"category"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	User        User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Comments    []Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"comments"`
	Likes       []uint    `gorm:"-" json:"likes"`
}

// PostLike records one user liking one post. The composite unique index is
// what guarantees a user appears at most once in a post's likes set.
type PostLike struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	PostID    uint      `gorm:"uniqueIndex:idx_post_user;not null" json:"post_id"`
	UserID    uint      `gorm:"uniqueIndex:idx_post_user;not null" json:"user_id"`
	CreatedAt time.Time `json:"-"`
}
