package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/maeum/models"
)

func TestBoardAnonymousPost(t *testing.T) {
	svcs, _ := newTestServices(t, "2024-01-01")
	ctx := context.Background()
	ensureUser(t, svcs, "u1", "Mina")

	named, err := svcs.Board.Create(ctx, "u1", PostInput{Category: models.CategoryConcern, Title: "Hello", Content: "First post"})
	require.NoError(t, err)
	assert.Equal(t, "Mina", named.AuthorName)

	anon, err := svcs.Board.Create(ctx, "u1", PostInput{Category: models.CategoryConcern, Title: "Secret", Content: "Quiet thoughts", IsAnonymous: true})
	require.NoError(t, err)
	assert.Equal(t, models.AnonymousAuthor, anon.AuthorName)
	assert.Equal(t, "u1", anon.UserID)

	c, err := svcs.Board.Comment(ctx, "u1", named.ID, "me again", true)
	require.NoError(t, err)
	assert.Equal(t, models.AnonymousAuthor, c.AuthorName)
}

func TestBoardValidation(t *testing.T) {
	svcs, _ := newTestServices(t, "2024-01-01")
	ctx := context.Background()
	ensureUser(t, svcs, "u1", "Mina")

	_, err := svcs.Board.Create(ctx, "u1", PostInput{Category: "gossip", Title: "t", Content: "c"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	_, err = svcs.Board.Create(ctx, "u1", PostInput{Category: models.CategoryConcern, Title: "<script></script>", Content: "c"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	_, err = svcs.Board.List(ctx, models.PostQuery{Sort: "random"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestBoardLikesAndPopularSort(t *testing.T) {
	svcs, _ := newTestServices(t, "2024-01-01")
	ctx := context.Background()
	ensureUser(t, svcs, "u1", "Mina")

	quiet, err := svcs.Board.Create(ctx, "u1", PostInput{Category: models.CategoryConcern, Title: "Quiet", Content: "c"})
	require.NoError(t, err)
	loved, err := svcs.Board.Create(ctx, "u1", PostInput{Category: models.CategoryConcern, Title: "Loved", Content: "c"})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = svcs.Board.Like(ctx, loved.ID)
		require.NoError(t, err)
	}
	p, err := svcs.Board.Like(ctx, quiet.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Likes)

	page, err := svcs.Board.List(ctx, models.PostQuery{Sort: models.SortPopular, Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, loved.ID, page.Items[0].ID)
	assert.Equal(t, 3, page.Items[0].Likes)
	assert.Equal(t, int64(2), page.Total)

	_, err = svcs.Board.Like(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestBoardDeleteIsAuthorOnly(t *testing.T) {
	svcs, _ := newTestServices(t, "2024-01-01")
	ctx := context.Background()
	ensureUser(t, svcs, "u1", "Mina")
	ensureUser(t, svcs, "u2", "Joon")

	post, err := svcs.Board.Create(ctx, "u1", PostInput{Category: models.CategoryConcern, Title: "Mine", Content: "c"})
	require.NoError(t, err)
	c, err := svcs.Board.Comment(ctx, "u2", post.ID, "nice", false)
	require.NoError(t, err)
	assert.Equal(t, "Joon", c.AuthorName)

	assert.ErrorIs(t, svcs.Board.DeleteComment(ctx, "u1", c.ID), models.ErrForbidden)
	assert.ErrorIs(t, svcs.Board.Delete(ctx, "u2", post.ID), models.ErrForbidden)

	got, err := svcs.Board.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Comments)

	require.NoError(t, svcs.Board.DeleteComment(ctx, "u2", c.ID))
	require.NoError(t, svcs.Board.Delete(ctx, "u1", post.ID))
	_, err = svcs.Board.Get(ctx, post.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = svcs.Board.Comments(ctx, post.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
