package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Sahil-Prajapati-8917/resume-collage/internal/models"
)

type BulkProgress struct {
	Total     int64
	Completed int64
	Failed    int64
	Pending   int64
}

type EvaluationRepository interface {
	CreateResult(result *models.EvaluationResult) error
	FindResultByID(id uuid.UUID) (*models.EvaluationResult, error)
	FindLatestResult(candidateID, jobID uuid.UUID) (*models.EvaluationResult, error)

	CreateJob(job *models.EvaluationJob) error
	FindJobByID(id uuid.UUID) (*models.EvaluationJob, error)
	MarkJobProcessing(id uuid.UUID, attempt int) error
	CompleteJob(id uuid.UUID, resultID uuid.UUID) error
	FailJob(id uuid.UUID, errorMsg string) error
	CountByJob(jobID uuid.UUID) (*BulkProgress, error)
	TrimTerminalJobs(keepCompleted, keepFailed int) error
}

type evaluationRepository struct {
	db *gorm.DB
}

func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

func (r *evaluationRepository) CreateResult(result *models.EvaluationResult) error {
	if err := r.db.Create(result).Error; err != nil {
		return fmt.Errorf("failed to create evaluation result: %w", err)
	}
	return nil
}

func (r *evaluationRepository) FindResultByID(id uuid.UUID) (*models.EvaluationResult, error) {
	var result models.EvaluationResult
	if err := r.db.Where("id = ?", id).First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("evaluation result not found: %w", err)
		}
		return nil, fmt.Errorf("failed to find evaluation result: %w", err)
	}
	return &result, nil
}

func (r *evaluationRepository) FindLatestResult(candidateID, jobID uuid.UUID) (*models.EvaluationResult, error) {
	var result models.EvaluationResult
	err := r.db.
		Where("candidate_id = ? AND job_id = ?", candidateID, jobID).
		Order("evaluated_at DESC").
		First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("evaluation result not found: %w", err)
		}
		return nil, fmt.Errorf("failed to find evaluation result: %w", err)
	}
	return &result, nil
}

func (r *evaluationRepository) CreateJob(job *models.EvaluationJob) error {
	if err := r.db.Create(job).Error; err != nil {
		return fmt.Errorf("failed to create evaluation job: %w", err)
	}
	return nil
}

func (r *evaluationRepository) FindJobByID(id uuid.UUID) (*models.EvaluationJob, error) {
	var job models.EvaluationJob
	if err := r.db.Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("evaluation job not found: %w", err)
		}
		return nil, fmt.Errorf("failed to find evaluation job: %w", err)
	}
	return &job, nil
}

func (r *evaluationRepository) MarkJobProcessing(id uuid.UUID, attempt int) error {
	result := r.db.Model(&models.EvaluationJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     models.JobProcessing,
			"attempts":   attempt,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to mark job processing: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("evaluation job not found")
	}
	return nil
}

func (r *evaluationRepository) CompleteJob(id uuid.UUID, resultID uuid.UUID) error {
	result := r.db.Model(&models.EvaluationJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        models.JobCompleted,
			"result_id":     resultID,
			"error_message": "",
			"updated_at":    time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to complete job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("evaluation job not found")
	}
	return nil
}

func (r *evaluationRepository) FailJob(id uuid.UUID, errorMsg string) error {
	result := r.db.Model(&models.EvaluationJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        models.JobFailed,
			"error_message": errorMsg,
			"updated_at":    time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to fail job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("evaluation job not found")
	}
	return nil
}

func (r *evaluationRepository) CountByJob(jobID uuid.UUID) (*BulkProgress, error) {
	progress := &BulkProgress{}

	type statusCount struct {
		Status models.EvaluationJobStatus
		Count  int64
	}

	var counts []statusCount
	err := r.db.Model(&models.EvaluationJob{}).
		Select("status, count(*) as count").
		Where("job_id = ?", jobID).
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count evaluation jobs: %w", err)
	}

	for _, c := range counts {
		progress.Total += c.Count
		switch c.Status {
		case models.JobCompleted:
			progress.Completed += c.Count
		case models.JobFailed:
			progress.Failed += c.Count
		default:
			// pending and processing both read as pending to the caller
			progress.Pending += c.Count
		}
	}

	return progress, nil
}

// TrimTerminalJobs drops terminal rows beyond the retention window, keeping
// the most recent keepCompleted completed and keepFailed failed jobs.
func (r *evaluationRepository) TrimTerminalJobs(keepCompleted, keepFailed int) error {
	if err := r.trimStatus(models.JobCompleted, keepCompleted); err != nil {
		return err
	}
	return r.trimStatus(models.JobFailed, keepFailed)
}

func (r *evaluationRepository) trimStatus(status models.EvaluationJobStatus, keep int) error {
	if keep <= 0 {
		return nil
	}

	subQuery := r.db.Model(&models.EvaluationJob{}).
		Select("id").
		Where("status = ?", status).
		Order("updated_at DESC").
		Limit(keep)

	err := r.db.
		Where("status = ? AND id NOT IN (?)", status, subQuery).
		Delete(&models.EvaluationJob{}).Error
	if err != nil {
		return fmt.Errorf("failed to trim %s jobs: %w", status, err)
	}
	return nil
}
