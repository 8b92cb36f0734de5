package http

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/blogsphere/backend/internal/blog/domain"
	"github.com/blogsphere/backend/internal/blog/service"
	"github.com/blogsphere/backend/internal/common/constants"
	"github.com/blogsphere/backend/internal/common/dto"
	commonhttp "github.com/blogsphere/backend/internal/common/http"
	"github.com/blogsphere/backend/internal/common/logger"
	"github.com/blogsphere/backend/internal/common/mapper"
)

type Blogs interface {
	Create(ctx context.Context, input service.CreateBlogInput) (domain.Blog, error)
	List(ctx context.Context) ([]domain.Blog, error)
	Get(ctx context.Context, id string) (domain.Details, error)
	Update(ctx context.Context, input service.UpdateBlogInput) error
	Delete(ctx context.Context, id string) error
	CreateComment(ctx context.Context, input service.CreateCommentInput) (domain.Comment, error)
	Comments(ctx context.Context, blogID string) ([]domain.CommentView, error)
}

type blogResponse struct {
	Blog any `json:"blog"`
}

type blogsResponse struct {
	Blogs []dto.Blog `json:"blogs"`
}

type commentsResponse struct {
	Data []dto.Comment `json:"data"`
}

type Deps struct {
	Blogs       Blogs
	RequireAuth func(http.Handler) http.Handler
	// StorageDir is served under /storage/ when set.
	StorageDir string
	Log        *logger.Logger
}

type Handler struct {
	blogs          Blogs
	requireAuth    func(http.Handler) http.Handler
	storageDir     string
	log            *logger.Logger
	errorHandler   *commonhttp.ErrorHandler
	requestTimeout time.Duration
}

func NewHandler(deps Deps, requestTimeout time.Duration) *Handler {
	if requestTimeout <= 0 {
		requestTimeout = constants.DefaultRequestTimeout
	}
	requireAuth := deps.RequireAuth
	if requireAuth == nil {
		requireAuth = func(next http.Handler) http.Handler { return next }
	}
	return &Handler{
		blogs:          deps.Blogs,
		requireAuth:    requireAuth,
		storageDir:     deps.StorageDir,
		log:            deps.Log,
		errorHandler:   commonhttp.NewErrorHandler(deps.Log),
		requestTimeout: requestTimeout,
	}
}

func (h *Handler) Routes(mux *http.ServeMux) {
	protect := func(fn http.HandlerFunc) http.Handler {
		return h.requireAuth(commonhttp.WithTimeout(h.requestTimeout)(fn))
	}

	mux.Handle("POST /blog", protect(h.create))
	mux.Handle("GET /blog/all", protect(h.list))
	mux.Handle("GET /blog/{id}", protect(h.get))
	mux.Handle("PUT /blog", protect(h.update))
	mux.Handle("PUT /blog/{$}", protect(h.update))
	mux.Handle("DELETE /blog/{id}", protect(h.delete))

	mux.Handle("POST /comment", protect(h.createComment))
	mux.Handle("GET /comment/{id}", protect(h.comments))

	if h.storageDir != "" {
		mux.Handle("GET /storage/", http.StripPrefix("/storage/", http.FileServer(noDirFS{http.Dir(h.storageDir)})))
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateBlogInput
	if err := commonhttp.DecodeJSON(r, &input); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	blog, err := h.blogs.Create(r.Context(), input)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, blogResponse{Blog: mapper.BlogToDTO(blog)})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.blogs.List(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, blogsResponse{Blogs: mapper.BlogsToDTO(blogs)})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := commonhttp.PathUUID(r, "id")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	details, err := h.blogs.Get(r.Context(), id)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, blogResponse{Blog: mapper.BlogDetailsToDTO(details)})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var input service.UpdateBlogInput
	if err := commonhttp.DecodeJSON(r, &input); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if err := h.blogs.Update(r.Context(), input); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	commonhttp.WriteMessage(w, http.StatusOK, "blog updated")
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := commonhttp.PathUUID(r, "id")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if err := h.blogs.Delete(r.Context(), id); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	commonhttp.WriteMessage(w, http.StatusOK, "blog deleted")
}

func (h *Handler) createComment(w http.ResponseWriter, r *http.Request) {
	var input service.CreateCommentInput
	if err := commonhttp.DecodeJSON(r, &input); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if _, err := h.blogs.CreateComment(r.Context(), input); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	commonhttp.WriteMessage(w, http.StatusCreated, "comment created")
}

func (h *Handler) comments(w http.ResponseWriter, r *http.Request) {
	id, err := commonhttp.PathUUID(r, "id")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	comments, err := h.blogs.Comments(r.Context(), id)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, commentsResponse{Data: mapper.CommentsToDTO(comments)})
}

// noDirFS hides directory listings from the photo file server.
type noDirFS struct {
	fs http.FileSystem
}

func (n noDirFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if stat.IsDir() {
		f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}
