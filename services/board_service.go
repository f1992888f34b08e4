package services

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/cppla/maeum/models"
	"github.com/cppla/maeum/store"
	"github.com/cppla/maeum/utils"
)

const (
	boardCachePrefix  = "posts:"
	boardCacheTTL     = time.Hour
	maxPostTitleLen   = 255
	maxPostContentLen = 10000
	maxCommentLen     = 2000
)

// PostPage is one page of a board listing.
type PostPage struct {
	Items    []models.Post `json:"items"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

// PostInput carries a new post.
type PostInput struct {
	Category    string
	Title       string
	Content     string
	IsAnonymous bool
}

// BoardService runs the community board: posts, comments and likes.
type BoardService struct {
	posts    store.PostStore
	profiles store.ProfileStore
	cache    *utils.Cache
}

// NewBoardService wires the board. cache may be nil or disabled.
func NewBoardService(posts store.PostStore, profiles store.ProfileStore, cache *utils.Cache) *BoardService {
	return &BoardService{posts: posts, profiles: profiles, cache: cache}
}

func (s *BoardService) authorName(ctx context.Context, userID string, anonymous bool) (string, error) {
	if anonymous {
		return models.AnonymousAuthor, nil
	}
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	return p.DisplayName, nil
}

// Create publishes a post by userID.
func (s *BoardService) Create(ctx context.Context, userID string, in PostInput) (models.Post, error) {
	if !models.ValidCategory(in.Category) {
		return models.Post{}, fmt.Errorf("%w: unknown category %q", models.ErrInvalidInput, in.Category)
	}
	title := utils.PlainText(in.Title)
	content := utils.Sanitize(in.Content)
	if title == "" || utils.PlainText(content) == "" {
		return models.Post{}, fmt.Errorf("%w: title and content are required", models.ErrInvalidInput)
	}
	if utf8.RuneCountInString(title) > maxPostTitleLen || utf8.RuneCountInString(content) > maxPostContentLen {
		return models.Post{}, fmt.Errorf("%w: post too long", models.ErrInvalidInput)
	}
	author, err := s.authorName(ctx, userID, in.IsAnonymous)
	if err != nil {
		return models.Post{}, err
	}
	p, err := s.posts.Create(ctx, models.Post{
		UserID:      userID,
		AuthorName:  author,
		Category:    in.Category,
		Title:       title,
		Content:     content,
		IsAnonymous: in.IsAnonymous,
	})
	if err != nil {
		return models.Post{}, err
	}
	s.cache.InvalidateByPrefix(boardCachePrefix)
	return p, nil
}

// List returns a page of posts, optionally filtered by category.
func (s *BoardService) List(ctx context.Context, q models.PostQuery) (PostPage, error) {
	if q.Category != "" && !models.ValidCategory(q.Category) {
		return PostPage{}, fmt.Errorf("%w: unknown category %q", models.ErrInvalidInput, q.Category)
	}
	if q.Sort != "" && q.Sort != models.SortRecent && q.Sort != models.SortPopular {
		return PostPage{}, fmt.Errorf("%w: unknown sort %q", models.ErrInvalidInput, q.Sort)
	}
	key := fmt.Sprintf("%slist:%s:%s:%d:%d", boardCachePrefix, q.Category, q.Sort, q.Page, q.PageSize)
	var page PostPage
	if s.cache.GetJSON(key, &page) {
		return page, nil
	}
	items, total, err := s.posts.List(ctx, q)
	if err != nil {
		return PostPage{}, err
	}
	page = PostPage{Items: items, Total: total, Page: q.Page, PageSize: q.PageSize}
	if page.Page < 1 {
		page.Page = 1
	}
	if page.PageSize <= 0 || page.PageSize > 100 {
		page.PageSize = 20
	}
	s.cache.SetJSON(key, page, boardCacheTTL)
	return page, nil
}

// Get returns a single post.
func (s *BoardService) Get(ctx context.Context, id string) (models.Post, error) {
	key := boardCachePrefix + "detail:" + id
	var p models.Post
	if s.cache.GetJSON(key, &p) {
		return p, nil
	}
	p, err := s.posts.Get(ctx, id)
	if err != nil {
		return models.Post{}, err
	}
	s.cache.SetJSON(key, p, boardCacheTTL)
	return p, nil
}

// Like adds one like to a post.
func (s *BoardService) Like(ctx context.Context, id string) (models.Post, error) {
	p, err := s.posts.Like(ctx, id)
	if err != nil {
		return models.Post{}, err
	}
	s.cache.InvalidateByPrefix(boardCachePrefix)
	return p, nil
}

// Delete removes a post written by userID.
func (s *BoardService) Delete(ctx context.Context, userID, id string) error {
	p, err := s.posts.Get(ctx, id)
	if err != nil {
		return err
	}
	if p.UserID != userID {
		return fmt.Errorf("%w: post %s belongs to another user", models.ErrForbidden, id)
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.InvalidateByPrefix(boardCachePrefix)
	return nil
}

// Comment adds a reply to a post.
func (s *BoardService) Comment(ctx context.Context, userID, postID, content string, anonymous bool) (models.Comment, error) {
	content = utils.PlainText(content)
	if content == "" {
		return models.Comment{}, fmt.Errorf("%w: content is required", models.ErrInvalidInput)
	}
	if utf8.RuneCountInString(content) > maxCommentLen {
		return models.Comment{}, fmt.Errorf("%w: comment exceeds %d characters", models.ErrInvalidInput, maxCommentLen)
	}
	author, err := s.authorName(ctx, userID, anonymous)
	if err != nil {
		return models.Comment{}, err
	}
	c, err := s.posts.AddComment(ctx, models.Comment{
		PostID:      postID,
		UserID:      userID,
		AuthorName:  author,
		Content:     content,
		IsAnonymous: anonymous,
	})
	if err != nil {
		return models.Comment{}, err
	}
	s.cache.InvalidateByPrefix(boardCachePrefix)
	return c, nil
}

// Comments lists a post's comments oldest first.
func (s *BoardService) Comments(ctx context.Context, postID string) ([]models.Comment, error) {
	return s.posts.ListComments(ctx, postID)
}

// DeleteComment removes a comment written by userID.
func (s *BoardService) DeleteComment(ctx context.Context, userID, commentID string) error {
	c, err := s.posts.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if c.UserID != userID {
		return fmt.Errorf("%w: comment %s belongs to another user", models.ErrForbidden, commentID)
	}
	if err := s.posts.DeleteComment(ctx, commentID); err != nil {
		return err
	}
	s.cache.InvalidateByPrefix(boardCachePrefix)
	return nil
}
