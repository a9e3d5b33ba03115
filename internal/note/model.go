package note

import "time"

// Note is a journal entry with the AI reply it was saved with. Times are UTC.
type Note struct {
	ID         string     `gorm:"primaryKey;type:text"`
	UserID     uint64     `gorm:"index;not null"`
	Content    string     `gorm:"type:text;not null"`
	AIResponse string     `gorm:"column:ai_response;type:text;not null;default:''"`
	AIStyle    string     `gorm:"column:ai_style;type:text;not null;default:''"`
	CreateTime time.Time  `gorm:"column:create_time;not null;default:now()"`
	UpdateTime *time.Time `gorm:"column:update_time;type:timestamptz"`
}
