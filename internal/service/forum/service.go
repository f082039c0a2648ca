package forum

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/freee021022/onconet/internal/model"
	"github.com/freee021022/onconet/internal/repository"
	apperrors "github.com/freee021022/onconet/pkg/errors"
)

const unknownCategory = "Unknown"

// Store is the part of the entity store the forum needs.
type Store interface {
	repository.ForumRepository
	GetUser(ctx context.Context, id int64) (*model.User, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) ListCategories(ctx context.Context) ([]*model.ForumCategory, error) {
	categories, err := s.store.ListForumCategories(ctx)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return categories, nil
}

func (s *Service) CreateCategory(ctx context.Context, req *model.CreateForumCategoryRequest) (*model.ForumCategory, error) {
	category := &model.ForumCategory{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	}
	if err := s.store.CreateForumCategory(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicateSlug) {
			return nil, apperrors.NewBadRequest("Slug already in use", err)
		}
		return nil, apperrors.NewInternal(err)
	}
	return category, nil
}

func (s *Service) ListPosts(ctx context.Context, filter model.ForumPostFilter) ([]*model.ForumPost, error) {
	posts, err := s.store.ListForumPosts(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return posts, nil
}

// GetPostDetail counts one view and assembles the post with its author,
// category name and comments. Lookups of related records are best effort:
// a missing author or category degrades to an absent value.
func (s *Service) GetPostDetail(ctx context.Context, id int64) (*model.PostDetail, error) {
	post, err := s.store.IncrementPostViewCount(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("Post", err)
	}
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}

	detail := &model.PostDetail{
		Post: model.PostView{
			ForumPost:    post,
			Author:       s.author(ctx, post.UserID),
			CategoryName: unknownCategory,
		},
		Comments: []model.CommentView{},
	}

	if category, err := s.store.GetForumCategory(ctx, post.CategoryID); err == nil {
		detail.Post.CategoryName = category.Name
	} else {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("category_id", post.CategoryID).Msg("category lookup failed")
	}

	comments, err := s.store.ListForumComments(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	for _, c := range comments {
		detail.Comments = append(detail.Comments, model.CommentView{
			ForumComment: c,
			Author:       s.author(ctx, c.UserID),
		})
	}
	return detail, nil
}

func (s *Service) author(ctx context.Context, id int64) *model.User {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("user_id", id).Msg("author lookup failed")
		return nil
	}
	return user
}

// CreatePost publishes a post by userID in an existing category.
func (s *Service) CreatePost(ctx context.Context, userID int64, req *model.CreateForumPostRequest) (*model.ForumPost, error) {
	if _, err := s.store.GetForumCategory(ctx, req.CategoryID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewValidation(apperrors.FieldViolation{Field: "categoryId", Message: "category does not exist"})
		}
		return nil, apperrors.NewInternal(err)
	}

	post := &model.ForumPost{
		Title:      req.Title,
		Content:    req.Content,
		UserID:     userID,
		CategoryID: req.CategoryID,
	}
	if err := s.store.CreateForumPost(ctx, post); err != nil {
		return nil, apperrors.NewInternal(err)
	}

	if err := s.store.IncrementCategoryPostCount(ctx, post.CategoryID); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("category_id", post.CategoryID).Msg("failed to update category post count")
	}
	return post, nil
}

// CreateComment adds a comment by userID to an existing post.
func (s *Service) CreateComment(ctx context.Context, userID int64, req *model.CreateForumCommentRequest) (*model.ForumComment, error) {
	if _, err := s.store.GetForumPost(ctx, req.PostID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("Post", err)
		}
		return nil, apperrors.NewInternal(err)
	}

	comment := &model.ForumComment{
		Content: req.Content,
		UserID:  userID,
		PostID:  req.PostID,
	}
	if err := s.store.CreateForumComment(ctx, comment); err != nil {
		return nil, apperrors.NewInternal(err)
	}

	if err := s.store.IncrementPostCommentCount(ctx, comment.PostID); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("post_id", comment.PostID).Msg("failed to update post comment count")
	}
	return comment, nil
}
