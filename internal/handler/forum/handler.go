package forum

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freee021022/onconet/internal/middleware"
	"github.com/freee021022/onconet/internal/model"
	"github.com/freee021022/onconet/internal/service/forum"
	"github.com/freee021022/onconet/pkg/httputil"
	"github.com/freee021022/onconet/pkg/validator"
)

type Handler struct {
	service *forum.Service
}

func NewHandler(service *forum.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, requireSession gin.HandlerFunc) {
	f := r.Group("/forum")
	{
		f.GET("/categories", h.ListCategories)
		f.POST("/categories", h.CreateCategory)
		f.GET("/posts", h.ListPosts)
		f.GET("/posts/:id", h.GetPost)
		f.POST("/posts", requireSession, h.CreatePost)
		f.POST("/comments", requireSession, h.CreateComment)
	}
}

func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var req model.CreateForumCategoryRequest
	if err := validator.BindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	category, err := h.service.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *Handler) ListPosts(c *gin.Context) {
	categoryID, err := httputil.QueryID(c, "categoryId", "Invalid category ID")
	if err != nil {
		c.Error(err)
		return
	}

	posts, err := h.service.ListPosts(c.Request.Context(), model.ForumPostFilter{CategoryID: categoryID})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *Handler) GetPost(c *gin.Context) {
	id, err := httputil.ParamID(c, "id", "Invalid post ID")
	if err != nil {
		c.Error(err)
		return
	}

	detail, err := h.service.GetPostDetail(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *Handler) CreatePost(c *gin.Context) {
	var req model.CreateForumPostRequest
	if err := validator.BindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	userID, _ := middleware.UserID(c)
	post, err := h.service.CreatePost(c.Request.Context(), userID, &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h *Handler) CreateComment(c *gin.Context) {
	var req model.CreateForumCommentRequest
	if err := validator.BindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	userID, _ := middleware.UserID(c)
	comment, err := h.service.CreateComment(c.Request.Context(), userID, &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}
