package service

import (
	"context"
	"errors"

	"github.com/blogsphere/backend/internal/blog/domain"
	blogrepo "github.com/blogsphere/backend/internal/blog/repository"
	"github.com/blogsphere/backend/internal/common/clock"
	commoncrypto "github.com/blogsphere/backend/internal/common/crypto"
	"github.com/blogsphere/backend/internal/common/logger"
	"github.com/blogsphere/backend/internal/common/validation"
	"github.com/blogsphere/backend/internal/observability/metrics"
	"github.com/blogsphere/backend/internal/storage"
)

type Deps struct {
	Repo        blogrepo.Repository
	Photos      storage.PhotoStore
	IDGenerator commoncrypto.IDGenerator
	Clock       clock.Clock
	Log         *logger.Logger
}

type Service struct {
	repo          blogrepo.Repository
	photos        storage.PhotoStore
	idGenerator   commoncrypto.IDGenerator
	clock         clock.Clock
	log           *logger.Logger
	maxPhotoBytes int64
}

func NewService(deps Deps, maxPhotoBytes int64) *Service {
	clk := deps.Clock
	if clk == nil {
		clk = clock.NewRealClock()
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = commoncrypto.NewUUIDGenerator()
	}
	log := deps.Log
	if log == nil {
		log = logger.NewDiscard()
	}
	return &Service{
		repo:          deps.Repo,
		photos:        deps.Photos,
		idGenerator:   idGen,
		clock:         clk,
		log:           log,
		maxPhotoBytes: maxPhotoBytes,
	}
}

func (s *Service) Create(ctx context.Context, input CreateBlogInput) (domain.Blog, error) {
	if err := validation.Struct(input); err != nil {
		return domain.Blog{}, err
	}

	name, path, err := s.storePhoto(ctx, input.Photo, input.Author)
	if err != nil {
		return domain.Blog{}, err
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		s.discardPhoto(ctx, name)
		return domain.Blog{}, newInternalError("ID_GENERATION_FAILED", "failed to create blog", err)
	}

	blog, err := s.repo.Create(ctx, domain.Blog{
		ID:        id,
		Title:     input.Title,
		Content:   input.Content,
		PhotoName: name,
		PhotoPath: path,
		AuthorID:  input.Author,
	})
	if err != nil {
		s.discardPhoto(ctx, name)
		if errors.Is(err, blogrepo.ErrAuthorNotFound) {
			return domain.Blog{}, ErrAuthorNotFound
		}
		s.log.WithFields(ctx, logger.Fields{
			"author_id": input.Author,
			"action":    "blog_create_failed",
		}).Errorf("create blog failed: %v", err)
		return domain.Blog{}, newInternalError("DB_ERROR", "failed to create blog", err)
	}

	metrics.BlogsCreated.Inc()
	s.log.WithFields(ctx, logger.Fields{
		"blog_id":   blog.ID,
		"author_id": blog.AuthorID,
		"action":    "blog_created",
	}).Info("blog created")

	return blog, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Blog, error) {
	blogs, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, newInternalError("DB_ERROR", "failed to list blogs", err)
	}
	return blogs, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Details, error) {
	details, err := s.repo.FindDetails(ctx, id)
	if err != nil {
		if errors.Is(err, blogrepo.ErrBlogNotFound) {
			return domain.Details{}, ErrBlogNotFound
		}
		return domain.Details{}, newInternalError("DB_ERROR", "failed to load blog", err)
	}
	return details, nil
}

// Update rewrites title and content. A new photo replaces the stored one; the
// old file is removed only after the row points at the new file.
func (s *Service) Update(ctx context.Context, input UpdateBlogInput) error {
	if err := validation.Struct(input); err != nil {
		return err
	}

	current, err := s.repo.FindByID(ctx, input.BlogID)
	if err != nil {
		if errors.Is(err, blogrepo.ErrBlogNotFound) {
			return ErrBlogNotFound
		}
		return newInternalError("DB_ERROR", "failed to update blog", err)
	}

	update := domain.Update{
		ID:        input.BlogID,
		Title:     input.Title,
		Content:   input.Content,
		UpdatedAt: s.clock.Now(),
	}

	if input.Photo != "" {
		name, path, err := s.storePhoto(ctx, input.Photo, input.Author)
		if err != nil {
			return err
		}
		update.PhotoName = name
		update.PhotoPath = path
	}

	if err := s.repo.Update(ctx, update); err != nil {
		s.discardPhoto(ctx, update.PhotoName)
		if errors.Is(err, blogrepo.ErrBlogNotFound) {
			return ErrBlogNotFound
		}
		return newInternalError("DB_ERROR", "failed to update blog", err)
	}

	if update.PhotoName != "" {
		s.discardPhoto(ctx, current.PhotoName)
	}

	s.log.WithFields(ctx, logger.Fields{
		"blog_id": input.BlogID,
		"action":  "blog_updated",
	}).Info("blog updated")
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, blogrepo.ErrBlogNotFound) {
			return ErrBlogNotFound
		}
		return newInternalError("DB_ERROR", "failed to delete blog", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, blogrepo.ErrBlogNotFound) {
			return ErrBlogNotFound
		}
		return newInternalError("DB_ERROR", "failed to delete blog", err)
	}

	s.discardPhoto(ctx, current.PhotoName)
	metrics.BlogsDeleted.Inc()
	s.log.WithFields(ctx, logger.Fields{
		"blog_id": id,
		"action":  "blog_deleted",
	}).Info("blog deleted")
	return nil
}

func (s *Service) CreateComment(ctx context.Context, input CreateCommentInput) (domain.Comment, error) {
	if err := validation.Struct(input); err != nil {
		return domain.Comment{}, err
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		return domain.Comment{}, newInternalError("ID_GENERATION_FAILED", "failed to create comment", err)
	}

	comment, err := s.repo.CreateComment(ctx, domain.Comment{
		ID:       id,
		Content:  input.Content,
		BlogID:   input.Blog,
		AuthorID: input.Author,
	})
	if err != nil {
		switch {
		case errors.Is(err, blogrepo.ErrBlogNotFound):
			return domain.Comment{}, ErrBlogNotFound
		case errors.Is(err, blogrepo.ErrAuthorNotFound):
			return domain.Comment{}, ErrAuthorNotFound
		}
		return domain.Comment{}, newInternalError("DB_ERROR", "failed to create comment", err)
	}

	metrics.CommentsCreated.Inc()
	return comment, nil
}

func (s *Service) Comments(ctx context.Context, blogID string) ([]domain.CommentView, error) {
	comments, err := s.repo.FindCommentsByBlog(ctx, blogID)
	if err != nil {
		return nil, newInternalError("DB_ERROR", "failed to list comments", err)
	}
	return comments, nil
}

func (s *Service) storePhoto(ctx context.Context, dataURL, author string) (string, string, error) {
	data, err := storage.DecodeDataURL(dataURL, s.maxPhotoBytes)
	if err != nil {
		return "", "", err
	}

	name, err := storage.NewPhotoName(s.clock.Now(), author)
	if err != nil {
		return "", "", newInternalError("PHOTO_STORE_FAILED", "failed to store photo", err)
	}

	path, err := s.photos.Save(ctx, name, data)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"photo":  name,
			"action": "photo_store_failed",
		}).Errorf("store photo failed: %v", err)
		return "", "", newInternalError("PHOTO_STORE_FAILED", "failed to store photo", err)
	}
	return name, path, nil
}

func (s *Service) discardPhoto(ctx context.Context, name string) {
	if name == "" {
		return
	}
	if err := s.photos.Delete(ctx, name); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"photo":  name,
			"action": "photo_delete_failed",
		}).Warnf("delete photo failed: %v", err)
	}
}
