package services

import (
	"errors"
	"fmt"

	"github.com/devfolio/backend/internal/models"
	"github.com/devfolio/backend/pkg/response"
	"gorm.io/gorm"
)

// UserService exposes the admin-only account management operations.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

type UserListRequest struct {
	Page int `form:"page" binding:"omitempty,min=1"`
	Size int `form:"size" binding:"omitempty,min=1,max=100"`
}

type UserListResponse struct {
	Items []AdminUserView `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Size  int             `json:"size"`
}

// AdminUserView extends the public view with moderation state.
type AdminUserView struct {
	models.UserView
	IsActive bool `json:"isActive"`
}

type UpdateUserRequest struct {
	IsAdmin  *bool `json:"isAdmin"`
	IsActive *bool `json:"isActive"`
}

func (s *UserService) List(req *UserListRequest) (*UserListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Size == 0 {
		req.Size = 50
	}

	var total int64
	if err := s.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting users: %w", err)
	}

	var users []models.User
	err := s.db.Order("created_at ASC").
		Offset((req.Page - 1) * req.Size).
		Limit(req.Size).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	items := make([]AdminUserView, len(users))
	for i := range users {
		items[i] = AdminUserView{UserView: users[i].View(), IsActive: users[i].IsActive}
	}
	return &UserListResponse{Items: items, Total: total, Page: req.Page, Size: req.Size}, nil
}

func (s *UserService) Get(id uint) (*AdminUserView, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.ErrUserNotFound
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}
	return &AdminUserView{UserView: user.View(), IsActive: user.IsActive}, nil
}

// Update changes role or active state. Admins cannot modify their own
// account here, so a lone admin cannot demote or disable themself.
func (s *UserService) Update(id uint, req *UpdateUserRequest, actingAdminID uint) (*AdminUserView, error) {
	if id == actingAdminID {
		return nil, response.ErrForbidden
	}

	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.ErrUserNotFound
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}

	updates := make(map[string]interface{})
	if req.IsAdmin != nil {
		updates["is_admin"] = *req.IsAdmin
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) > 0 {
		if err := s.db.Model(&user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("updating user: %w", err)
		}
	}

	return &AdminUserView{UserView: user.View(), IsActive: user.IsActive}, nil
}

// Delete removes an account. Database constraints take the user's posts,
// comments, likes and refresh tokens with it.
func (s *UserService) Delete(id uint, actingAdminID uint) error {
	if id == actingAdminID {
		return response.ErrForbidden
	}

	res := s.db.Delete(&models.User{}, id)
	if res.Error != nil {
		return fmt.Errorf("deleting user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return response.ErrUserNotFound
	}
	return nil
}
