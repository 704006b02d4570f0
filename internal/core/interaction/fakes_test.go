// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package interaction

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/taibuivan/circleblog/internal/platform/apperr"
)

type likeKey struct{ postID, userID int64 }

// fakeRepository keeps likes and comments in memory. The mutex plays the role of the row lock.
type fakeRepository struct {
	mu       sync.Mutex
	posts    map[int64]bool
	likes    map[likeKey]bool
	comments map[int64]*Comment
	nextID   int64
}

func newFakeRepository(postIDs ...int64) *fakeRepository {
	repository := &fakeRepository{
		posts:    map[int64]bool{},
		likes:    map[likeKey]bool{},
		comments: map[int64]*Comment{},
	}
	for _, id := range postIDs {
		repository.posts[id] = true
	}
	return repository
}

func (f *fakeRepository) ToggleLike(_ context.Context, postID, userID int64) (LikeState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.posts[postID] {
		return LikeState{}, apperr.NotFound("Post")
	}

	key := likeKey{postID, userID}
	if f.likes[key] {
		delete(f.likes, key)
	} else {
		f.likes[key] = true
	}
	return LikeState{Liked: f.likes[key], LikeCount: f.countLocked(postID)}, nil
}

func (f *fakeRepository) countLocked(postID int64) int {
	count := 0
	for key := range f.likes {
		if key.postID == postID {
			count++
		}
	}
	return count
}

func (f *fakeRepository) CreateComment(_ context.Context, comment *Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.posts[comment.PostID] {
		return apperr.NotFound("Post")
	}
	f.nextID++
	comment.ID = f.nextID
	comment.CreatedAt = time.Unix(f.nextID, 0)
	stored := *comment
	f.comments[comment.ID] = &stored
	return nil
}

func (f *fakeRepository) FindComment(_ context.Context, id int64) (*Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	comment, ok := f.comments[id]
	if !ok {
		return nil, apperr.NotFound("Comment")
	}
	copied := *comment
	return &copied, nil
}

func (f *fakeRepository) DeleteComment(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.comments[id]; !ok {
		return apperr.NotFound("Comment")
	}
	delete(f.comments, id)
	return nil
}

func (f *fakeRepository) ListComments(_ context.Context, postID int64) ([]*Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.posts[postID] {
		return nil, apperr.NotFound("Post")
	}
	comments := []*Comment{}
	for _, comment := range f.comments {
		if comment.PostID == postID {
			copied := *comment
			comments = append(comments, &copied)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID > comments[j].ID })
	return comments, nil
}
