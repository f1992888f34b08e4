package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/maeum/models"
	"github.com/cppla/maeum/services"
	"github.com/cppla/maeum/utils"
)

// PostController handles the community board.
type PostController struct {
	board *services.BoardService
}

// NewPostController creates a new PostController instance.
func NewPostController(board *services.BoardService) *PostController {
	return &PostController{board: board}
}

type createPostRequest struct {
	Category    string `json:"category" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Content     string `json:"content" binding:"required"`
	IsAnonymous bool   `json:"is_anonymous"`
}

type createCommentRequest struct {
	Content     string `json:"content" binding:"required"`
	IsAnonymous bool   `json:"is_anonymous"`
}

// ListPosts returns paginated posts, optionally filtered by category and sorted by likes.
func (p *PostController) ListPosts(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	result, err := p.board.List(ctx.Request.Context(), models.PostQuery{
		Category: ctx.Query("category"),
		Sort:     ctx.Query("sort"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(ctx, err, 70, "failed to fetch posts")
		return
	}
	utils.Success(ctx, utils.Page{Items: result.Items, Total: result.Total, Page: result.Page, PageSize: result.PageSize})
}

func (p *PostController) CreatePost(ctx *gin.Context) {
	uid, ok := requireUser(ctx)
	if !ok {
		return
	}
	var req createPostRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40071, "invalid payload")
		return
	}
	post, err := p.board.Create(ctx.Request.Context(), uid, services.PostInput{
		Category:    req.Category,
		Title:       req.Title,
		Content:     req.Content,
		IsAnonymous: req.IsAnonymous,
	})
	if err != nil {
		respondError(ctx, err, 71, "failed to create post")
		return
	}
	utils.Created(ctx, post)
}

func (p *PostController) GetPost(ctx *gin.Context) {
	post, err := p.board.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err, 72, "failed to fetch post")
		return
	}
	utils.Success(ctx, post)
}

// DeletePost lets the author remove their own post.
func (p *PostController) DeletePost(ctx *gin.Context) {
	uid, ok := requireUser(ctx)
	if !ok {
		return
	}
	if err := p.board.Delete(ctx.Request.Context(), uid, ctx.Param("id")); err != nil {
		respondError(ctx, err, 73, "failed to delete post")
		return
	}
	utils.Success(ctx, gin.H{"id": ctx.Param("id")})
}

func (p *PostController) LikePost(ctx *gin.Context) {
	post, err := p.board.Like(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err, 74, "failed to like post")
		return
	}
	utils.Success(ctx, gin.H{"id": post.ID, "likes": post.Likes})
}

func (p *PostController) ListComments(ctx *gin.Context) {
	comments, err := p.board.Comments(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err, 75, "failed to fetch comments")
		return
	}
	utils.Success(ctx, comments)
}

// CreateComment adds a reply to a post.
func (p *PostController) CreateComment(ctx *gin.Context) {
	uid, ok := requireUser(ctx)
	if !ok {
		return
	}
	var req createCommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40076, "invalid payload")
		return
	}
	comment, err := p.board.Comment(ctx.Request.Context(), uid, ctx.Param("id"), req.Content, req.IsAnonymous)
	if err != nil {
		respondError(ctx, err, 76, "failed to create comment")
		return
	}
	utils.Created(ctx, comment)
}

// DeleteComment deletes a comment if the requester is its author.
func (p *PostController) DeleteComment(ctx *gin.Context) {
	uid, ok := requireUser(ctx)
	if !ok {
		return
	}
	if err := p.board.DeleteComment(ctx.Request.Context(), uid, ctx.Param("commentId")); err != nil {
		respondError(ctx, err, 77, "failed to delete comment")
		return
	}
	utils.Success(ctx, gin.H{"id": ctx.Param("commentId")})
}
