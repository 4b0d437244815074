package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Sahil-Prajapati-8917/resume-collage/internal/models"
	"github.com/Sahil-Prajapati-8917/resume-collage/internal/repositories"
	"github.com/Sahil-Prajapati-8917/resume-collage/internal/services"
)

type EvaluateHandler struct {
	evaluator services.EvaluatorService
	worker    services.Worker
	evalRepo  repositories.EvaluationRepository
}

func NewEvaluateHandler(
	evaluator services.EvaluatorService,
	worker services.Worker,
	evalRepo repositories.EvaluationRepository,
) *EvaluateHandler {
	return &EvaluateHandler{
		evaluator: evaluator,
		worker:    worker,
		evalRepo:  evalRepo,
	}
}

// HandleEvaluate handles POST /evaluate: run one candidate through the
// pipeline synchronously and return the stored result.
func (h *EvaluateHandler) HandleEvaluate(c *fiber.Ctx) error {
	var req models.EvaluateRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if req.CandidateID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "candidate_id is required",
		})
	}
	if req.JobID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "job_id is required",
		})
	}

	candidateID, err := uuid.Parse(req.CandidateID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid candidate_id format",
		})
	}

	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job_id format",
		})
	}

	promptID, errResp := parseOptionalUUID(req.PromptID)
	if errResp != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": errResp})
	}

	result, err := h.evaluator.EvaluateCandidate(c.UserContext(), candidateID, jobID, promptID)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(result)
}

// HandleBulkEvaluate handles POST /evaluate/bulk: enqueue evaluation jobs
// for a posting's candidates and return the queued count immediately.
func (h *EvaluateHandler) HandleBulkEvaluate(c *fiber.Ctx) error {
	var req models.BulkEvaluateRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if req.JobID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "job_id is required",
		})
	}

	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job_id format",
		})
	}

	promptID, errResp := parseOptionalUUID(req.PromptID)
	if errResp != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": errResp})
	}

	candidateIDs := make([]uuid.UUID, 0, len(req.CandidateIDs))
	for _, raw := range req.CandidateIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid candidate_ids entry: " + raw,
			})
		}
		candidateIDs = append(candidateIDs, id)
	}

	queued, err := h.worker.EnqueueBulk(c.UserContext(), jobID, promptID, candidateIDs, req.RequestedBy)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to enqueue evaluation jobs",
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(models.BulkEvaluateResponse{Queued: queued})
}

// HandleBulkProgress handles GET /evaluate/bulk/:jobID/progress.
func (h *EvaluateHandler) HandleBulkProgress(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("jobID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job ID format",
		})
	}

	progress, err := h.evalRepo.CountByJob(jobID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read bulk progress",
		})
	}

	return c.JSON(models.BulkProgressResponse{
		Total:     progress.Total,
		Completed: progress.Completed,
		Failed:    progress.Failed,
		Pending:   progress.Pending,
	})
}

// HandleGetJob handles GET /evaluate/jobs/:id, exposing one queued job's
// status, attempt count and error message.
func (h *EvaluateHandler) HandleGetJob(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job ID format",
		})
	}

	job, err := h.evalRepo.FindJobByID(jobID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Evaluation job not found",
		})
	}

	return c.JSON(job)
}

func parseOptionalUUID(raw string) (*uuid.UUID, string) {
	if raw == "" {
		return nil, ""
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, "Invalid prompt_id format"
	}
	return &id, ""
}
