package models

import (
	"time"

	"github.com/google/uuid"
)

type PromptTemplate struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name         string    `gorm:"type:text;not null" json:"name"`
	Instructions string    `gorm:"type:text;not null" json:"instructions"`
	IsDefault    bool      `gorm:"not null;default:false" json:"is_default"`
	CreatedAt    time.Time `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt    time.Time `gorm:"type:timestamp;default:now()" json:"updated_at"`
}

func (PromptTemplate) TableName() string {
	return "prompt_templates"
}
