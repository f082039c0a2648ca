package model

import "time"

type ForumCategory struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Slug        string  `json:"slug" db:"slug"`
	Description *string `json:"description" db:"description"`
	PostCount   int     `json:"postCount" db:"post_count"`
}

type ForumPost struct {
	ID           int64     `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	Content      string    `json:"content" db:"content"`
	UserID       int64     `json:"userId" db:"user_id"`
	CategoryID   int64     `json:"categoryId" db:"category_id"`
	CommentCount int       `json:"commentCount" db:"comment_count"`
	ViewCount    int       `json:"viewCount" db:"view_count"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

type ForumComment struct {
	ID        int64     `json:"id" db:"id"`
	Content   string    `json:"content" db:"content"`
	UserID    int64     `json:"userId" db:"user_id"`
	PostID    int64     `json:"postId" db:"post_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type CreateForumCategoryRequest struct {
	Name        string  `json:"name" binding:"required"`
	Slug        string  `json:"slug" binding:"required,min=1,max=100"`
	Description *string `json:"description"`
}

// CreateForumPostRequest omits userId: the author is the session user.
type CreateForumPostRequest struct {
	Title      string `json:"title" binding:"required,min=1"`
	Content    string `json:"content" binding:"required,min=1"`
	CategoryID int64  `json:"categoryId" binding:"required,gt=0"`
}

type CreateForumCommentRequest struct {
	Content string `json:"content" binding:"required,min=1"`
	PostID  int64  `json:"postId" binding:"required,gt=0"`
}

// ForumPostFilter narrows post listings. Zero CategoryID means all.
type ForumPostFilter struct {
	CategoryID int64
}

// PostView is a post with its resolved author and category name.
type PostView struct {
	*ForumPost
	Author       *User  `json:"author"`
	CategoryName string `json:"categoryName"`
}

// CommentView is a comment with its resolved author, nil when the lookup
// failed.
type CommentView struct {
	*ForumComment
	Author *User `json:"author"`
}

// PostDetail is the composite post detail read.
type PostDetail struct {
	Post     PostView      `json:"post"`
	Comments []CommentView `json:"comments"`
}
