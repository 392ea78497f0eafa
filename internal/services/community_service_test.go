package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneymap/internal/community"
	"moneymap/internal/core"
	"moneymap/internal/storage/memory"
)

func newTestCommunity(t *testing.T) *CommunityService {
	t.Helper()
	n := 0
	return NewCommunityService(memory.New(),
		WithClock(func() time.Time { return time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC) }),
		WithIDGenerator(func() string { n++; return fmt.Sprintf("p%d", n) }),
	)
}

func TestCommunityStartsFromSeed(t *testing.T) {
	svc := newTestCommunity(t)
	posts, err := svc.Posts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "Asha (Retail)", posts[0].Author)
}

func TestCreatePost(t *testing.T) {
	ctx := context.Background()
	svc := newTestCommunity(t)

	p, err := svc.CreatePost(ctx, "", "  First sale today!  ")
	require.NoError(t, err)
	assert.Equal(t, community.DefaultAuthor, p.Author)
	assert.Equal(t, "First sale today!", p.Content)
	assert.Zero(t, p.Likes)

	posts, err := svc.Posts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, p.ID, posts[0].ID, "new posts are prepended")

	_, err = svc.CreatePost(ctx, "Meera", "   ")
	var ve *core.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.ErrorIs(t, err, community.ErrEmptyContent)
}

func TestLikeAndComment(t *testing.T) {
	ctx := context.Background()
	svc := newTestCommunity(t)

	p, err := svc.Like(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 6, p.Likes)

	c, err := svc.Comment(ctx, "1", "Meera", "Use bright signage")
	require.NoError(t, err)
	assert.Equal(t, "1-p1", c.ID)

	posts, err := svc.Posts(ctx)
	require.NoError(t, err)
	assert.Len(t, posts[0].Comments, 2)

	board, err := svc.Leaderboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, []community.LeaderboardEntry{
		{User: "Farah (Food)", Points: 12},
		{User: "Asha (Retail)", Points: 10},
	}, board)
}

func TestLikeUnknownPost(t *testing.T) {
	svc := newTestCommunity(t)
	_, err := svc.Like(context.Background(), "missing")
	assert.ErrorIs(t, err, community.ErrPostNotFound)

	_, err = svc.Comment(context.Background(), "missing", "", "hi")
	assert.ErrorIs(t, err, community.ErrPostNotFound)
}

func TestCommentRejectsBlank(t *testing.T) {
	svc := newTestCommunity(t)
	_, err := svc.Comment(context.Background(), "1", "", " ")
	assert.ErrorIs(t, err, community.ErrEmptyContent)
}
