package blog

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var _ blogRepo = (*repoMock)(nil)

// repoMock is an in-memory blogRepo used in tests
type repoMock struct {
	Posts  map[int]*Blog
	lastID int
	mutex  sync.Mutex

	// when set, every repo call fails with it
	FailWith error
}

func newRepoMock() *repoMock {
	return &repoMock{
		Posts: make(map[int]*Blog),
	}
}

func (r *repoMock) PostsCount() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.Posts)
}

func (r *repoMock) Add(_ context.Context, blog *Blog) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.FailWith != nil {
		return r.FailWith
	}

	r.lastID++
	blog.ID = r.lastID
	if blog.CreatedAt.IsZero() {
		// keep insertion order visible in created_at
		blog.CreatedAt = time.Now().Add(time.Duration(r.lastID) * time.Millisecond)
	}
	blog.UpdatedAt = blog.CreatedAt

	stored := *blog
	r.Posts[blog.ID] = &stored
	return nil
}

func (r *repoMock) Get(_ context.Context, id int) (*Blog, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.FailWith != nil {
		return nil, r.FailWith
	}

	b, ok := r.Posts[id]
	if !ok {
		return nil, ErrBlogNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *repoMock) Update(_ context.Context, id, userID int, fields Fields) (*Blog, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.FailWith != nil {
		return nil, r.FailWith
	}

	b, ok := r.Posts[id]
	if !ok || b.UserID != userID || b.Verified {
		return nil, ErrBlogNotEditable
	}

	b.Title = fields.Title
	b.Description = fields.Description
	b.Article = fields.Article
	b.UpdatedAt = time.Now()

	copied := *b
	return &copied, nil
}

func (r *repoMock) CountVerified(_ context.Context) (int, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.FailWith != nil {
		return -1, r.FailWith
	}

	count := 0
	for _, b := range r.Posts {
		if b.Verified {
			count++
		}
	}
	return count, nil
}

func (r *repoMock) ListVerifiedPage(_ context.Context, limit, offset int) ([]*Blog, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.FailWith != nil {
		return nil, r.FailWith
	}
	// postgres refuses these as well
	if limit < 0 || offset < 0 {
		return nil, errors.New("OFFSET must not be negative")
	}

	var verified []*Blog
	for _, b := range r.Posts {
		if b.Verified {
			copied := *b
			verified = append(verified, &copied)
		}
	}

	sort.Slice(verified, func(i, j int) bool {
		if verified[i].CreatedAt.Equal(verified[j].CreatedAt) {
			return verified[i].ID > verified[j].ID
		}
		return verified[i].CreatedAt.After(verified[j].CreatedAt)
	})

	// overflow
	if offset >= len(verified) {
		return []*Blog{}, nil
	}

	end := offset + limit
	if end > len(verified) {
		end = len(verified)
	}
	return verified[offset:end], nil
}

// setVerified plays the external moderation process
func (r *repoMock) setVerified(id int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	b, ok := r.Posts[id]
	if !ok {
		return errors.New("no such blog")
	}
	b.Verified = true
	return nil
}
