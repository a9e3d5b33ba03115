package auth

import (
	"context"
	"errors"
	"strings"

	"echomemo/internal/db/dberr"

	"gorm.io/gorm"
)

var (
	ErrUserExists         = errors.New("username or email already used")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

type Service struct {
	DB *gorm.DB
}

func (s *Service) Register(ctx context.Context, username, email, password string) (*User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := User{
		Username:     strings.TrimSpace(username),
		Email:        normalizeEmail(email),
		PasswordHash: hash,
	}
	if err := s.DB.WithContext(ctx).Create(&u).Error; err != nil {
		if dberr.IsUniqueViolation(err) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return &u, nil
}

func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	var u User
	err := s.DB.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !ComparePassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return &u, nil
}

// ResetPassword replaces the password when username and email belong to the same user.
func (s *Service) ResetPassword(ctx context.Context, username, email, newPassword string) error {
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	res := s.DB.WithContext(ctx).Model(&User{}).
		Where("username = ? AND email = ?", strings.TrimSpace(username), normalizeEmail(email)).
		Update("password_hash", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func normalizeEmail(e string) string {
	return strings.TrimSpace(strings.ToLower(e))
}
