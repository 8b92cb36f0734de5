package mapper

import (
	blogdomain "github.com/blogsphere/backend/internal/blog/domain"
	"github.com/blogsphere/backend/internal/common/dto"
)

func BlogToDTO(blog blogdomain.Blog) dto.Blog {
	return dto.Blog{
		ID:        blog.ID,
		Title:     blog.Title,
		Content:   blog.Content,
		Photo:     blog.PhotoPath,
		Author:    blog.AuthorID,
		CreatedAt: blog.CreatedAt,
	}
}

func BlogsToDTO(blogs []blogdomain.Blog) []dto.Blog {
	result := make([]dto.Blog, len(blogs))
	for i, b := range blogs {
		result[i] = BlogToDTO(b)
	}
	return result
}

func BlogDetailsToDTO(details blogdomain.Details) dto.BlogDetails {
	return dto.BlogDetails{
		ID:             details.ID,
		Title:          details.Title,
		Content:        details.Content,
		Photo:          details.PhotoPath,
		CreatedAt:      details.CreatedAt,
		AuthorName:     details.AuthorName,
		AuthorUsername: details.AuthorUsername,
	}
}

func CommentsToDTO(comments []blogdomain.CommentView) []dto.Comment {
	result := make([]dto.Comment, len(comments))
	for i, c := range comments {
		result[i] = dto.Comment{
			ID:             c.ID,
			CreatedAt:      c.CreatedAt,
			Content:        c.Content,
			AuthorUsername: c.AuthorUsername,
		}
	}
	return result
}
