package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"moneymap/internal/community"
	"moneymap/internal/core"
	"moneymap/internal/log"
	"moneymap/internal/storage"
)

// PostsKey holds the community feed as a JSON array, newest first.
const PostsKey = "community_posts_v1"

// CommunityService persists the founder feed next to the ledger documents.
// An empty store starts from the seed posts.
type CommunityService struct {
	mu     sync.Mutex
	store  storage.Store
	logger *log.Logger
	now    func() time.Time
	newID  func() string
}

func NewCommunityService(store storage.Store, opts ...Option) *CommunityService {
	o := buildOptions(opts)
	return &CommunityService{
		store:  store,
		logger: o.logger.WithComponent(log.ComponentCommunity),
		now:    o.now,
		newID:  o.newID,
	}
}

func (s *CommunityService) Posts(ctx context.Context) ([]community.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// CreatePost prepends a post with zero likes.
func (s *CommunityService) CreatePost(ctx context.Context, author, content string) (community.Post, error) {
	content, err := community.NormalizeContent(content)
	if err != nil {
		return community.Post{}, &core.ValidationError{Field: "content", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.load(ctx)
	if err != nil {
		return community.Post{}, err
	}
	p := community.Post{
		ID:        s.newID(),
		Author:    community.AuthorOrDefault(author),
		Content:   content,
		CreatedAt: s.now().UTC(),
		Comments:  []community.Comment{},
	}
	if err := s.save(ctx, append([]community.Post{p}, posts...)); err != nil {
		return community.Post{}, err
	}

	s.logger.InfoContext(ctx, "Post created", log.FieldPostID, p.ID, log.FieldAuthor, p.Author)
	return p, nil
}

func (s *CommunityService) Like(ctx context.Context, postID string) (community.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, i, err := s.find(ctx, postID)
	if err != nil {
		return community.Post{}, err
	}
	posts[i].Likes++
	if err := s.save(ctx, posts); err != nil {
		return community.Post{}, err
	}
	return posts[i], nil
}

// Comment appends a comment to the post.
func (s *CommunityService) Comment(ctx context.Context, postID, author, content string) (community.Comment, error) {
	content, err := community.NormalizeContent(content)
	if err != nil {
		return community.Comment{}, &core.ValidationError{Field: "comment", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	posts, i, err := s.find(ctx, postID)
	if err != nil {
		return community.Comment{}, err
	}
	c := community.Comment{
		ID:        postID + "-" + s.newID(),
		Author:    community.AuthorOrDefault(author),
		Content:   content,
		CreatedAt: s.now().UTC(),
	}
	posts[i].Comments = append(posts[i].Comments, c)
	if err := s.save(ctx, posts); err != nil {
		return community.Comment{}, err
	}

	s.logger.InfoContext(ctx, "Comment added", log.FieldPostID, postID, log.FieldAuthor, c.Author)
	return c, nil
}

func (s *CommunityService) Leaderboard(ctx context.Context) ([]community.LeaderboardEntry, error) {
	posts, err := s.Posts(ctx)
	if err != nil {
		return nil, err
	}
	return community.Leaderboard(posts), nil
}

func (s *CommunityService) find(ctx context.Context, postID string) ([]community.Post, int, error) {
	posts, err := s.load(ctx)
	if err != nil {
		return nil, -1, err
	}
	i := community.FindPost(posts, postID)
	if i < 0 {
		return nil, -1, fmt.Errorf("%w: %s", community.ErrPostNotFound, postID)
	}
	return posts, i, nil
}

func (s *CommunityService) load(ctx context.Context) ([]community.Post, error) {
	raw, ok, err := s.store.Load(ctx, PostsKey)
	if err != nil {
		return nil, fmt.Errorf("load posts: %w", err)
	}
	if !ok || len(raw) == 0 {
		return community.SeedPosts(s.now()), nil
	}
	var posts []community.Post
	if err := json.Unmarshal(raw, &posts); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptDocument, PostsKey, err)
	}
	return posts, nil
}

func (s *CommunityService) save(ctx context.Context, posts []community.Post) error {
	data, err := json.Marshal(posts)
	if err != nil {
		return fmt.Errorf("marshal posts: %w", err)
	}
	if err := s.store.Save(ctx, PostsKey, data); err != nil {
		return fmt.Errorf("save posts: %w", err)
	}
	return nil
}
