package models

type ProductionLine struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"uniqueIndex;not null;size:50" json:"name"`
	Description *string `gorm:"size:255" json:"description"`
}
