package memory

import (
	"context"

	"github.com/freee021022/onconet/internal/model"
	"github.com/freee021022/onconet/internal/repository"
)

func (s *Store) ListForumCategories(ctx context.Context) ([]*model.ForumCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filter(s.categories, all[model.ForumCategory]), nil
}

func (s *Store) GetForumCategory(ctx context.Context, id int64) (*model.ForumCategory, error) {
	return s.findCategory(func(c *model.ForumCategory) bool { return c.ID == id })
}

func (s *Store) GetForumCategoryBySlug(ctx context.Context, slug string) (*model.ForumCategory, error) {
	return s.findCategory(func(c *model.ForumCategory) bool { return c.Slug == slug })
}

func (s *Store) findCategory(match func(*model.ForumCategory) bool) (*model.ForumCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := find(s.categories, match)
	if c == nil {
		return nil, repository.ErrNotFound
	}
	return clone(c), nil
}

func (s *Store) CreateForumCategory(ctx context.Context, category *model.ForumCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if find(s.categories, func(c *model.ForumCategory) bool { return c.Slug == category.Slug }) != nil {
		return repository.ErrDuplicateSlug
	}
	category.ID = s.nextID("forum_categories")
	category.PostCount = 0
	s.categories = append(s.categories, clone(category))
	return nil
}

func (s *Store) IncrementCategoryPostCount(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := find(s.categories, func(c *model.ForumCategory) bool { return c.ID == id })
	if c == nil {
		return repository.ErrNotFound
	}
	c.PostCount++
	return nil
}

func (s *Store) ListForumPosts(ctx context.Context, f model.ForumPostFilter) ([]*model.ForumPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return filter(s.posts, func(p *model.ForumPost) bool {
		return f.CategoryID == 0 || p.CategoryID == f.CategoryID
	}), nil
}

func (s *Store) GetForumPost(ctx context.Context, id int64) (*model.ForumPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := find(s.posts, func(p *model.ForumPost) bool { return p.ID == id })
	if p == nil {
		return nil, repository.ErrNotFound
	}
	return clone(p), nil
}

func (s *Store) CreateForumPost(ctx context.Context, post *model.ForumPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	post.ID = s.nextID("forum_posts")
	post.ViewCount = 0
	post.CommentCount = 0
	post.CreatedAt = s.now()
	s.posts = append(s.posts, clone(post))
	return nil
}

func (s *Store) IncrementPostViewCount(ctx context.Context, id int64) (*model.ForumPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := find(s.posts, func(p *model.ForumPost) bool { return p.ID == id })
	if p == nil {
		return nil, repository.ErrNotFound
	}
	p.ViewCount++
	return clone(p), nil
}

func (s *Store) IncrementPostCommentCount(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := find(s.posts, func(p *model.ForumPost) bool { return p.ID == id })
	if p == nil {
		return repository.ErrNotFound
	}
	p.CommentCount++
	return nil
}

func (s *Store) ListForumComments(ctx context.Context, postID int64) ([]*model.ForumComment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return filter(s.comments, func(c *model.ForumComment) bool { return c.PostID == postID }), nil
}

func (s *Store) CreateForumComment(ctx context.Context, comment *model.ForumComment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	comment.ID = s.nextID("forum_comments")
	comment.CreatedAt = s.now()
	s.comments = append(s.comments, clone(comment))
	return nil
}
