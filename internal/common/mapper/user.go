package mapper

import (
	"github.com/blogsphere/backend/internal/common/dto"
	userdomain "github.com/blogsphere/backend/internal/user/domain"
)

func UserSummaryToDTO(summary userdomain.Summary) dto.User {
	return dto.User{
		ID:        string(summary.ID),
		Username:  summary.Username,
		Name:      summary.Name,
		Email:     summary.Email,
		CreatedAt: summary.CreatedAt,
	}
}

func UserToDTO(user userdomain.User) dto.User {
	return UserSummaryToDTO(user.Summary())
}
