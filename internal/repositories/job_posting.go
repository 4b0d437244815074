package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Sahil-Prajapati-8917/resume-collage/internal/models"
)

type JobPostingRepository interface {
	Create(posting *models.JobPosting) error
	FindByID(id uuid.UUID) (*models.JobPosting, error)
}

type jobPostingRepository struct {
	db *gorm.DB
}

func NewJobPostingRepository(db *gorm.DB) JobPostingRepository {
	return &jobPostingRepository{db: db}
}

func (r *jobPostingRepository) Create(posting *models.JobPosting) error {
	if err := r.db.Create(posting).Error; err != nil {
		return fmt.Errorf("failed to create job posting: %w", err)
	}
	return nil
}

func (r *jobPostingRepository) FindByID(id uuid.UUID) (*models.JobPosting, error) {
	var posting models.JobPosting
	if err := r.db.Where("id = ?", id).First(&posting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("job posting not found: %w", err)
		}
		return nil, fmt.Errorf("failed to find job posting: %w", err)
	}
	return &posting, nil
}
