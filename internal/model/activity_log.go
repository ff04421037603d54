package model

import "time"

// ActivityLog is an append-only audit record written by the background
// dispatcher after account events.
type ActivityLog struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index"`
	Email     string    `json:"email" gorm:"type:varchar(100);index"`
	Action    string    `json:"action" gorm:"type:varchar(50);not null"`
	Detail    string    `json:"detail" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
}
