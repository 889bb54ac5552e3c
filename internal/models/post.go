package models

import "gorm.io/gorm"

// Post is a short-form post with engagement attached. Likes are a set of
// users (membership is authoritative, the count is derived); comments are an
// append-only ordered list.
type Post struct {
	gorm.Model
	AuthorID uint   `gorm:"not null;index"`
	Content  string `gorm:"not null"`

	Author   User      `gorm:"foreignKey:AuthorID"`
	Likes    []*User   `gorm:"many2many:post_likes;"`
	Comments []Comment `gorm:"foreignKey:PostID"`
}

// Comment is immutable once appended; ordering is creation order.
type Comment struct {
	gorm.Model
	PostID   uint   `gorm:"not null;index"`
	AuthorID uint   `gorm:"not null;index"`
	Content  string `gorm:"not null"`

	Author User `gorm:"foreignKey:AuthorID"`
}
