package models

import (
	"time"
)

type Project struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `gorm:"autoCreateTime;<-:create" json:"created_at"`
	Name        string    `gorm:"not null;index;size:100" json:"name"`
	Description *string   `gorm:"size:255" json:"description"`
}
