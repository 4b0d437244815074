package handlers

import (
	"errors"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Sahil-Prajapati-8917/resume-collage/internal/models"
	"github.com/Sahil-Prajapati-8917/resume-collage/internal/repositories"
	"github.com/Sahil-Prajapati-8917/resume-collage/internal/services"
)

type UploadHandler struct {
	candidateRepo   repositories.CandidateRepository
	jobRepo         repositories.JobPostingRepository
	extractor       services.TextExtractor
	validator       services.ContentValidator
	publicValidator services.ContentValidator
	maxFileSize     int64
}

func NewUploadHandler(
	candidateRepo repositories.CandidateRepository,
	jobRepo repositories.JobPostingRepository,
	extractor services.TextExtractor,
	validator services.ContentValidator,
	publicValidator services.ContentValidator,
	maxFileSize int64,
) *UploadHandler {
	return &UploadHandler{
		candidateRepo:   candidateRepo,
		jobRepo:         jobRepo,
		extractor:       extractor,
		validator:       validator,
		publicValidator: publicValidator,
		maxFileSize:     maxFileSize,
	}
}

// HandleUpload handles POST /upload: extract text from the resume file,
// run the advisory content check and store the candidate as pending.
// Validation anomalies never block the upload.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("resume")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "resume file is required",
		})
	}

	name := c.FormValue("name")
	email := c.FormValue("email")
	if name == "" || email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "name and email are required",
		})
	}

	if fileHeader.Size > h.maxFileSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Resume file too large. Max size: %d bytes", h.maxFileSize),
		})
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if !services.IsSupportedMime(mimeType) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("unsupported file type: %s", mimeType),
		})
	}

	var jobID *uuid.UUID
	if jobParam := c.FormValue("job_id"); jobParam != "" {
		parsed, err := uuid.Parse(jobParam)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid job_id format",
			})
		}
		if _, err := h.jobRepo.FindByID(parsed); err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Job posting not found",
			})
		}
		jobID = &parsed
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to open uploaded file",
		})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to read uploaded file",
		})
	}

	text, err := h.extractor.Extract(data, mimeType)
	if err != nil {
		if errors.Is(err, services.ErrUnsupportedFormat) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	validator := h.validator
	if c.FormValue("public") == "true" {
		validator = h.publicValidator
	}
	validation := validator.Validate(text)

	candidate := &models.Candidate{
		ID:               uuid.New(),
		Name:             name,
		Email:            email,
		JobID:            jobID,
		OriginalFileName: fileHeader.Filename,
		MimeType:         mimeType,
		ExtractedText:    text,
		IsResume:         validation.IsResume,
		Anomalies:        validation.Anomalies,
		Status:           models.StatusPending,
	}

	if err := h.candidateRepo.Create(candidate); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save candidate record",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(models.UploadResponse{
		ID:           candidate.ID.String(),
		OriginalName: candidate.OriginalFileName,
		IsResume:     candidate.IsResume,
		Anomalies:    candidate.Anomalies,
		Status:       string(candidate.Status),
	})
}
