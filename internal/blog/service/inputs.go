package service

type CreateBlogInput struct {
	Title   string `json:"title" validate:"required"`
	Author  string `json:"author" validate:"required,uuid"`
	Content string `json:"content" validate:"required"`
	Photo   string `json:"photo" validate:"required,dataurl_image"`
}

type UpdateBlogInput struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
	Author  string `json:"author" validate:"required,uuid"`
	BlogID  string `json:"blogId" validate:"required,uuid"`
	Photo   string `json:"photo" validate:"omitempty,dataurl_image"`
}

type CreateCommentInput struct {
	Content string `json:"content" validate:"required"`
	Author  string `json:"author" validate:"required,uuid"`
	Blog    string `json:"blog" validate:"required,uuid"`
}
