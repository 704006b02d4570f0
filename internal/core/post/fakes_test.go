// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package post

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/taibuivan/circleblog/internal/platform/apperr"
)

type fakeRepository struct {
	mu         sync.Mutex
	posts      map[int64]*Post
	nextID     int64
	failUpdate bool
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{posts: map[int64]*Post{}}
}

func (f *fakeRepository) Create(_ context.Context, post *Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	post.ID = f.nextID
	post.CreatedAt = time.Now().Add(time.Duration(f.nextID) * time.Second)
	post.UpdatedAt = post.CreatedAt
	stored := *post
	f.posts[post.ID] = &stored
	return nil
}

func (f *fakeRepository) Update(_ context.Context, post *Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdate {
		return errors.New("deadlock detected")
	}
	if _, ok := f.posts[post.ID]; !ok {
		return apperr.NotFound("Post")
	}
	stored := *post
	f.posts[post.ID] = &stored
	return nil
}

func (f *fakeRepository) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.posts[id]; !ok {
		return apperr.NotFound("Post")
	}
	delete(f.posts, id)
	return nil
}

func (f *fakeRepository) FindByID(_ context.Context, id, _ int64) (*Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	post, ok := f.posts[id]
	if !ok {
		return nil, apperr.NotFound("Post")
	}
	copied := *post
	return &copied, nil
}

func (f *fakeRepository) sorted(keep func(*Post) bool) []*Post {
	var posts []*Post
	for _, post := range f.posts {
		if keep(post) {
			copied := *post
			posts = append(posts, &copied)
		}
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	return posts
}

func (f *fakeRepository) List(_ context.Context, filter Filter, _ int64, limit, offset int) ([]*Post, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	posts := f.sorted(func(p *Post) bool {
		return filter.Query == "" || strings.Contains(strings.ToLower(p.Title+" "+p.Content), strings.ToLower(filter.Query))
	})
	total := len(posts)
	if offset >= total {
		return []*Post{}, total, nil
	}
	end := min(offset+limit, total)
	return posts[offset:end], total, nil
}

func (f *fakeRepository) ListByUser(_ context.Context, userID int64) ([]*Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sorted(func(p *Post) bool { return p.UserID == userID }), nil
}

type fakeBlobs struct {
	mu      sync.Mutex
	saved   map[string][]byte
	deleted []string
	counter int
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{saved: map[string][]byte{}}
}

func (f *fakeBlobs) Save(_ context.Context, content io.Reader, extension string) (string, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counter++
	path := fmt.Sprintf("uploads/blob-%d.%s", f.counter, extension)
	f.saved[path] = data
	return path, nil
}

func (f *fakeBlobs) Delete(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.saved, path)
	f.deleted = append(f.deleted, path)
	return nil
}
