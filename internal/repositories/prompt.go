package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Sahil-Prajapati-8917/resume-collage/internal/models"
)

type PromptRepository interface {
	Create(template *models.PromptTemplate) error
	FindByID(id uuid.UUID) (*models.PromptTemplate, error)
	FindDefault() (*models.PromptTemplate, error)
}

type promptRepository struct {
	db *gorm.DB
}

func NewPromptRepository(db *gorm.DB) PromptRepository {
	return &promptRepository{db: db}
}

func (r *promptRepository) Create(template *models.PromptTemplate) error {
	if err := r.db.Create(template).Error; err != nil {
		return fmt.Errorf("failed to create prompt template: %w", err)
	}
	return nil
}

func (r *promptRepository) FindByID(id uuid.UUID) (*models.PromptTemplate, error) {
	var template models.PromptTemplate
	if err := r.db.Where("id = ?", id).First(&template).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("prompt template not found: %w", err)
		}
		return nil, fmt.Errorf("failed to find prompt template: %w", err)
	}
	return &template, nil
}

// FindDefault returns the default template, or nil when none is configured.
// The prompt builder falls back to built-in instructions in that case.
func (r *promptRepository) FindDefault() (*models.PromptTemplate, error) {
	var template models.PromptTemplate
	err := r.db.Where("is_default = ?", true).First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find default prompt template: %w", err)
	}
	return &template, nil
}
