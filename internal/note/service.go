package note

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not found")
var ErrEmptyContent = errors.New("content required")

type Input struct {
	Content    string
	AIResponse string
	AIStyle    string
}

type Service struct {
	DB  *gorm.DB
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

const recency = "coalesce(update_time, create_time) desc"

func (s *Service) List(ctx context.Context, userID uint64) ([]Note, error) {
	var rows []Note
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order(recency).
		Find(&rows).Error
	return rows, err
}

// Search matches the keyword case-insensitively against content and AI response.
func (s *Service) Search(ctx context.Context, userID uint64, keyword string) ([]Note, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return s.List(ctx, userID)
	}
	pattern := "%" + escapeLike(keyword) + "%"

	var rows []Note
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("(content ILIKE ? OR ai_response ILIKE ?)", pattern, pattern).
		Order(recency).
		Find(&rows).Error
	return rows, err
}

func (s *Service) Create(ctx context.Context, userID uint64, in Input) (*Note, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, ErrEmptyContent
	}
	n := Note{
		ID:         uuid.NewString(),
		UserID:     userID,
		Content:    in.Content,
		AIResponse: in.AIResponse,
		AIStyle:    in.AIStyle,
		CreateTime: s.now(),
	}
	if err := s.DB.WithContext(ctx).Create(&n).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

// Update overwrites content, response and style of an owned note.
func (s *Service) Update(ctx context.Context, userID uint64, id string, in Input) (*Note, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, ErrEmptyContent
	}

	var n Note
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&n).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		now := s.now()
		n.Content = in.Content
		n.AIResponse = in.AIResponse
		n.AIStyle = in.AIStyle
		n.UpdateTime = &now
		return tx.Save(&n).Error
	})
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *Service) Delete(ctx context.Context, userID uint64, id string) error {
	res := s.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&Note{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
