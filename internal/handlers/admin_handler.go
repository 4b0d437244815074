package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Sahil-Prajapati-8917/resume-collage/internal/models"
	"github.com/Sahil-Prajapati-8917/resume-collage/internal/repositories"
)

// AdminHandler manages the recruiter-side records: job postings and prompt
// templates.
type AdminHandler struct {
	jobRepo    repositories.JobPostingRepository
	promptRepo repositories.PromptRepository
}

func NewAdminHandler(
	jobRepo repositories.JobPostingRepository,
	promptRepo repositories.PromptRepository,
) *AdminHandler {
	return &AdminHandler{
		jobRepo:    jobRepo,
		promptRepo: promptRepo,
	}
}

// HandleCreateJob handles POST /jobs.
func (h *AdminHandler) HandleCreateJob(c *fiber.Ctx) error {
	var posting models.JobPosting
	if err := c.BodyParser(&posting); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if posting.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "title is required",
		})
	}

	posting.ID = uuid.New()
	if err := h.jobRepo.Create(&posting); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create job posting",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(posting)
}

// HandleGetJob handles GET /jobs/:id.
func (h *AdminHandler) HandleGetJob(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job ID format",
		})
	}

	posting, err := h.jobRepo.FindByID(jobID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Job posting not found",
		})
	}

	return c.JSON(posting)
}

// HandleCreatePrompt handles POST /prompts.
func (h *AdminHandler) HandleCreatePrompt(c *fiber.Ctx) error {
	var template models.PromptTemplate
	if err := c.BodyParser(&template); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if template.Name == "" || template.Instructions == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "name and instructions are required",
		})
	}

	template.ID = uuid.New()
	if err := h.promptRepo.Create(&template); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create prompt template",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(template)
}
