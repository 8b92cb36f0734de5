package service

import (
	"context"
	"sync"

	"github.com/blogsphere/backend/internal/blog/domain"
	blogrepo "github.com/blogsphere/backend/internal/blog/repository"
)

type mockRepo struct {
	createFunc             func(ctx context.Context, blog domain.Blog) (domain.Blog, error)
	findAllFunc            func(ctx context.Context) ([]domain.Blog, error)
	findByIDFunc           func(ctx context.Context, id string) (domain.Blog, error)
	findDetailsFunc        func(ctx context.Context, id string) (domain.Details, error)
	updateFunc             func(ctx context.Context, update domain.Update) error
	deleteFunc             func(ctx context.Context, id string) error
	createCommentFunc      func(ctx context.Context, comment domain.Comment) (domain.Comment, error)
	findCommentsByBlogFunc func(ctx context.Context, blogID string) ([]domain.CommentView, error)
}

func (m *mockRepo) Create(ctx context.Context, blog domain.Blog) (domain.Blog, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, blog)
	}
	return blog, nil
}

func (m *mockRepo) FindAll(ctx context.Context) ([]domain.Blog, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx)
	}
	return nil, nil
}

func (m *mockRepo) FindByID(ctx context.Context, id string) (domain.Blog, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return domain.Blog{}, blogrepo.ErrBlogNotFound
}

func (m *mockRepo) FindDetails(ctx context.Context, id string) (domain.Details, error) {
	if m.findDetailsFunc != nil {
		return m.findDetailsFunc(ctx, id)
	}
	return domain.Details{}, blogrepo.ErrBlogNotFound
}

func (m *mockRepo) Update(ctx context.Context, update domain.Update) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, update)
	}
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockRepo) CreateComment(ctx context.Context, comment domain.Comment) (domain.Comment, error) {
	if m.createCommentFunc != nil {
		return m.createCommentFunc(ctx, comment)
	}
	return comment, nil
}

func (m *mockRepo) FindCommentsByBlog(ctx context.Context, blogID string) ([]domain.CommentView, error) {
	if m.findCommentsByBlogFunc != nil {
		return m.findCommentsByBlogFunc(ctx, blogID)
	}
	return nil, nil
}

// memPhotos is an in-memory PhotoStore.
type memPhotos struct {
	mu      sync.Mutex
	files   map[string][]byte
	saveErr error
}

func newMemPhotos() *memPhotos {
	return &memPhotos{files: make(map[string][]byte)}
}

func (m *memPhotos) Save(ctx context.Context, name string, data []byte) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = data
	return "http://localhost:5000/storage/" + name, nil
}

func (m *memPhotos) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, name)
	return nil
}

func (m *memPhotos) has(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[name]
	return ok
}

func (m *memPhotos) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}

type fixedIDs struct {
	ids []string
}

func (f *fixedIDs) NewID() (string, error) {
	id := f.ids[0]
	f.ids = f.ids[1:]
	return id, nil
}
