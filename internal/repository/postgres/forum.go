package postgres

import (
	"context"

	"github.com/freee021022/onconet/internal/model"
	"github.com/freee021022/onconet/internal/repository"
)

func (s *Store) ListForumCategories(ctx context.Context) ([]*model.ForumCategory, error) {
	categories := make([]*model.ForumCategory, 0)
	if err := s.selectAll(ctx, "list_forum_categories", &categories, `SELECT * FROM forum_categories ORDER BY id`); err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *Store) GetForumCategory(ctx context.Context, id int64) (*model.ForumCategory, error) {
	var category model.ForumCategory
	if err := s.get(ctx, "get_forum_category", &category, `SELECT * FROM forum_categories WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *Store) GetForumCategoryBySlug(ctx context.Context, slug string) (*model.ForumCategory, error) {
	var category model.ForumCategory
	if err := s.get(ctx, "get_forum_category_by_slug", &category, `SELECT * FROM forum_categories WHERE slug = $1`, slug); err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *Store) CreateForumCategory(ctx context.Context, category *model.ForumCategory) error {
	query := `
		INSERT INTO forum_categories (name, slug, description)
		VALUES (:name, :slug, :description)
		RETURNING *
	`
	return s.insert(ctx, "create_forum_category", query, category)
}

func (s *Store) IncrementCategoryPostCount(ctx context.Context, id int64) error {
	return s.increment(ctx, "increment_category_post_count",
		`UPDATE forum_categories SET post_count = post_count + 1 WHERE id = $1`, id)
}

func (s *Store) ListForumPosts(ctx context.Context, filter model.ForumPostFilter) ([]*model.ForumPost, error) {
	var c conditions
	if filter.CategoryID != 0 {
		c.add("category_id = $%d", filter.CategoryID)
	}

	posts := make([]*model.ForumPost, 0)
	if err := s.selectAll(ctx, "list_forum_posts", &posts, "SELECT * FROM forum_posts"+c.where()+" ORDER BY id", c.args...); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *Store) GetForumPost(ctx context.Context, id int64) (*model.ForumPost, error) {
	var post model.ForumPost
	if err := s.get(ctx, "get_forum_post", &post, `SELECT * FROM forum_posts WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *Store) CreateForumPost(ctx context.Context, post *model.ForumPost) error {
	query := `
		INSERT INTO forum_posts (title, content, user_id, category_id)
		VALUES (:title, :content, :user_id, :category_id)
		RETURNING *
	`
	return s.insert(ctx, "create_forum_post", query, post)
}

// IncrementPostViewCount is a single UPDATE, so concurrent readers never
// lose an increment.
func (s *Store) IncrementPostViewCount(ctx context.Context, id int64) (*model.ForumPost, error) {
	var post model.ForumPost
	query := `UPDATE forum_posts SET view_count = view_count + 1 WHERE id = $1 RETURNING *`
	if err := s.get(ctx, "increment_post_view_count", &post, query, id); err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *Store) IncrementPostCommentCount(ctx context.Context, id int64) error {
	return s.increment(ctx, "increment_post_comment_count",
		`UPDATE forum_posts SET comment_count = comment_count + 1 WHERE id = $1`, id)
}

func (s *Store) ListForumComments(ctx context.Context, postID int64) ([]*model.ForumComment, error) {
	comments := make([]*model.ForumComment, 0)
	if err := s.selectAll(ctx, "list_forum_comments", &comments, `SELECT * FROM forum_comments WHERE post_id = $1 ORDER BY id`, postID); err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *Store) CreateForumComment(ctx context.Context, comment *model.ForumComment) error {
	query := `
		INSERT INTO forum_comments (content, user_id, post_id)
		VALUES (:content, :user_id, :post_id)
		RETURNING *
	`
	return s.insert(ctx, "create_forum_comment", query, comment)
}

func (s *Store) increment(ctx context.Context, op, query string, id int64) error {
	n, err := s.exec(ctx, op, query, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
