package models

import (
	"context"
	"errors"
	"time"

	"github.com/medvisor/sanatoria_backend/config"
	"github.com/medvisor/sanatoria_backend/utils"
	"gorm.io/gorm"
)

type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Email     string    `gorm:"size:255;not null;uniqueIndex" json:"email" binding:"required,email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Name      string    `gorm:"size:255" json:"name"`
	Role      UserRole  `gorm:"size:20;not null;default:user" json:"role"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func CreateUser(ctx context.Context, input *RegisterInput, role UserRole) (*User, error) {
	if err := utils.ValidateUnique[User](ctx, "email", input.Email, 0); err != nil {
		return nil, errors.New("email already registered")
	}
	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user := &User{
		Email:    input.Email,
		Password: string(hashed),
		Name:     input.Name,
		Role:     role,
		IsActive: utils.NewTrue(),
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func AuthenticateUser(ctx context.Context, input *LoginInput) (*User, string, error) {
	db := config.GetDB()
	var user User
	if err := db.WithContext(ctx).Where("email = ?", input.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", errors.New("invalid credentials")
		}
		return nil, "", err
	}
	if user.IsActive != nil && !*user.IsActive {
		return nil, "", errors.New("account disabled")
	}
	if err := utils.ComparePassword(user.Password, input.Password); err != nil {
		return nil, "", errors.New("invalid credentials")
	}
	token, err := utils.JwtGenerate(user.ID, string(user.Role))
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

func GetUserById(ctx context.Context, id int) (*User, error) {
	return GetResource[User](ctx, id)
}
