package style

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"echomemo/internal/db/dberr"

	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("style not found")
	ErrNameTaken = errors.New("style name already used")
)

// CustomStyle is a user-defined style row.
type CustomStyle struct {
	ID          uint64    `gorm:"primaryKey"`
	UserID      uint64    `gorm:"index;not null"`
	Name        string    `gorm:"not null"`
	Description string    `gorm:"type:text;not null;default:''"`
	Prompt      string    `gorm:"type:text;not null"`
	Color       string    `gorm:"not null;default:'badge-neutral'"`
	CreatedAt   time.Time `gorm:"not null;default:now()"`
	UpdatedAt   time.Time `gorm:"not null;default:now()"`
}

func (CustomStyle) TableName() string { return "ai_styles" }

func (c CustomStyle) Style() Style {
	return Style{
		ID:          CustomRef(strconv.FormatUint(c.ID, 10)),
		Name:        c.Name,
		Description: c.Description,
		Prompt:      c.Prompt,
		Color:       c.Color,
	}
}

type Draft struct {
	Name        string
	Description string
	Prompt      string
	Color       string
}

func (d Draft) normalized() Draft {
	d.Name = strings.TrimSpace(d.Name)
	d.Description = strings.TrimSpace(d.Description)
	d.Color = strings.TrimSpace(d.Color)
	if d.Color == "" {
		d.Color = NeutralColor
	}
	return d
}

type Store struct {
	DB *gorm.DB
}

func (s *Store) List(ctx context.Context, userID uint64) ([]CustomStyle, error) {
	var rows []CustomStyle
	err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id asc").Find(&rows).Error
	return rows, err
}

// Create rejects names that collide with a built-in or another style of the user.
func (s *Store) Create(ctx context.Context, userID uint64, d Draft) (*CustomStyle, error) {
	d = d.normalized()
	if IsBuiltinName(d.Name) {
		return nil, ErrNameTaken
	}

	row := CustomStyle{
		UserID:      userID,
		Name:        d.Name,
		Description: d.Description,
		Prompt:      d.Prompt,
		Color:       d.Color,
	}
	if err := s.DB.WithContext(ctx).Create(&row).Error; err != nil {
		if dberr.IsUniqueViolation(err) {
			return nil, ErrNameTaken
		}
		return nil, err
	}
	return &row, nil
}

func (s *Store) Update(ctx context.Context, userID, id uint64, d Draft) (*CustomStyle, error) {
	d = d.normalized()
	if IsBuiltinName(d.Name) {
		return nil, ErrNameTaken
	}

	var row CustomStyle
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		row.Name = d.Name
		row.Description = d.Description
		row.Prompt = d.Prompt
		row.Color = d.Color
		row.UpdatedAt = time.Now()
		return tx.Save(&row).Error
	})
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return nil, ErrNameTaken
		}
		return nil, err
	}
	return &row, nil
}

func (s *Store) Delete(ctx context.Context, userID, id uint64) error {
	res := s.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&CustomStyle{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
