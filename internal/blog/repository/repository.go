package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/blogsphere/backend/internal/blog/domain"
	"github.com/blogsphere/backend/internal/common/db"
)

var (
	ErrBlogNotFound   = errors.New("blog not found")
	ErrAuthorNotFound = errors.New("author not found")
)

const (
	blogAuthorConstraint    = "blogs_author_id_fkey"
	commentBlogConstraint   = "comments_blog_id_fkey"
	commentAuthorConstraint = "comments_author_id_fkey"
)

type Repository interface {
	Create(ctx context.Context, blog domain.Blog) (domain.Blog, error)
	FindAll(ctx context.Context) ([]domain.Blog, error)
	FindByID(ctx context.Context, id string) (domain.Blog, error)
	FindDetails(ctx context.Context, id string) (domain.Details, error)
	Update(ctx context.Context, update domain.Update) error
	// Delete removes the blog together with its comments.
	Delete(ctx context.Context, id string) error

	CreateComment(ctx context.Context, comment domain.Comment) (domain.Comment, error)
	FindCommentsByBlog(ctx context.Context, blogID string) ([]domain.CommentView, error)
}

type PgRepository struct {
	pool *pgxpool.Pool
	tx   db.TxManager
}

func NewPgRepository(pool *pgxpool.Pool, tx db.TxManager) *PgRepository {
	return &PgRepository{pool: pool, tx: tx}
}

func (r *PgRepository) Create(ctx context.Context, blog domain.Blog) (domain.Blog, error) {
	start := time.Now()
	err := r.pool.QueryRow(
		ctx,
		`INSERT INTO blogs (id, title, content, photo_name, photo_path, author_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at, updated_at`,
		blog.ID,
		blog.Title,
		blog.Content,
		blog.PhotoName,
		blog.PhotoPath,
		blog.AuthorID,
	).Scan(&blog.CreatedAt, &blog.UpdatedAt)
	if err != nil && db.IsForeignKeyViolation(err) && db.ConstraintName(err) == blogAuthorConstraint {
		db.MeasureQueryDuration("create blog", start)
		return domain.Blog{}, ErrAuthorNotFound
	}
	if err := db.HandleQueryError(err, ErrBlogNotFound, "create blog", start); err != nil {
		return domain.Blog{}, err
	}
	return blog, nil
}

func (r *PgRepository) FindAll(ctx context.Context) ([]domain.Blog, error) {
	start := time.Now()
	rows, err := r.pool.Query(
		ctx,
		`SELECT id::text, title, content, photo_name, photo_path, author_id::text, created_at, updated_at
		 FROM blogs
		 ORDER BY created_at DESC`,
	)
	if err := db.HandleQueryError(err, nil, "list blogs", start); err != nil {
		return nil, err
	}
	defer rows.Close()

	blogs := make([]domain.Blog, 0)
	for rows.Next() {
		var b domain.Blog
		if err := rows.Scan(&b.ID, &b.Title, &b.Content, &b.PhotoName, &b.PhotoPath, &b.AuthorID, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, db.HandleQueryError(err, nil, "scan blogs", start)
		}
		blogs = append(blogs, b)
	}
	if err := rows.Err(); err != nil {
		return nil, db.HandleQueryError(err, nil, "iterate blogs", start)
	}
	return blogs, nil
}

func (r *PgRepository) FindByID(ctx context.Context, id string) (domain.Blog, error) {
	start := time.Now()
	var b domain.Blog
	err := r.pool.QueryRow(
		ctx,
		`SELECT id::text, title, content, photo_name, photo_path, author_id::text, created_at, updated_at
		 FROM blogs
		 WHERE id = $1`,
		id,
	).Scan(&b.ID, &b.Title, &b.Content, &b.PhotoName, &b.PhotoPath, &b.AuthorID, &b.CreatedAt, &b.UpdatedAt)
	if err := db.HandleQueryError(err, ErrBlogNotFound, "find blog by id", start); err != nil {
		return domain.Blog{}, err
	}
	return b, nil
}

func (r *PgRepository) FindDetails(ctx context.Context, id string) (domain.Details, error) {
	start := time.Now()
	var d domain.Details
	err := r.pool.QueryRow(
		ctx,
		`SELECT b.id::text, b.title, b.content, b.photo_name, b.photo_path, b.author_id::text,
		        b.created_at, b.updated_at, u.name, u.username
		 FROM blogs b
		 JOIN users u ON u.id = b.author_id
		 WHERE b.id = $1`,
		id,
	).Scan(
		&d.ID, &d.Title, &d.Content, &d.PhotoName, &d.PhotoPath, &d.AuthorID,
		&d.CreatedAt, &d.UpdatedAt, &d.AuthorName, &d.AuthorUsername,
	)
	if err := db.HandleQueryError(err, ErrBlogNotFound, "find blog details", start); err != nil {
		return domain.Details{}, err
	}
	return d, nil
}

func (r *PgRepository) Update(ctx context.Context, update domain.Update) error {
	start := time.Now()

	var (
		tag pgconn.CommandTag
		err error
	)
	if update.PhotoName != "" {
		tag, err = r.pool.Exec(
			ctx,
			`UPDATE blogs
			 SET title = $2, content = $3, photo_name = $4, photo_path = $5, updated_at = $6
			 WHERE id = $1`,
			update.ID, update.Title, update.Content, update.PhotoName, update.PhotoPath, update.UpdatedAt,
		)
	} else {
		tag, err = r.pool.Exec(
			ctx,
			`UPDATE blogs SET title = $2, content = $3, updated_at = $4 WHERE id = $1`,
			update.ID, update.Title, update.Content, update.UpdatedAt,
		)
	}
	if err := db.HandleExecError(err, "update blog", start); err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBlogNotFound
	}
	return nil
}

func (r *PgRepository) Delete(ctx context.Context, id string) error {
	return r.tx.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		start := time.Now()
		_, err := tx.Exec(ctx, `DELETE FROM comments WHERE blog_id = $1`, id)
		if err := db.HandleExecError(err, "delete comments by blog", start); err != nil {
			return err
		}

		start = time.Now()
		tag, err := tx.Exec(ctx, `DELETE FROM blogs WHERE id = $1`, id)
		if err := db.HandleExecError(err, "delete blog", start); err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrBlogNotFound
		}
		return nil
	})
}

func (r *PgRepository) CreateComment(ctx context.Context, comment domain.Comment) (domain.Comment, error) {
	start := time.Now()
	err := r.pool.QueryRow(
		ctx,
		`INSERT INTO comments (id, content, blog_id, author_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		comment.ID,
		comment.Content,
		comment.BlogID,
		comment.AuthorID,
	).Scan(&comment.CreatedAt)
	if err != nil && db.IsForeignKeyViolation(err) {
		db.MeasureQueryDuration("create comment", start)
		switch db.ConstraintName(err) {
		case commentBlogConstraint:
			return domain.Comment{}, ErrBlogNotFound
		case commentAuthorConstraint:
			return domain.Comment{}, ErrAuthorNotFound
		}
	}
	if err := db.HandleQueryError(err, ErrBlogNotFound, "create comment", start); err != nil {
		return domain.Comment{}, err
	}
	return comment, nil
}

func (r *PgRepository) FindCommentsByBlog(ctx context.Context, blogID string) ([]domain.CommentView, error) {
	start := time.Now()
	rows, err := r.pool.Query(
		ctx,
		`SELECT c.id::text, c.content, c.blog_id::text, c.author_id::text, c.created_at, u.username
		 FROM comments c
		 JOIN users u ON u.id = c.author_id
		 WHERE c.blog_id = $1
		 ORDER BY c.created_at`,
		blogID,
	)
	if err := db.HandleQueryError(err, nil, "list comments by blog", start); err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]domain.CommentView, 0)
	for rows.Next() {
		var c domain.CommentView
		if err := rows.Scan(&c.ID, &c.Content, &c.BlogID, &c.AuthorID, &c.CreatedAt, &c.AuthorUsername); err != nil {
			return nil, db.HandleQueryError(err, nil, "scan comments", start)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, db.HandleQueryError(err, nil, "iterate comments", start)
	}
	return comments, nil
}
