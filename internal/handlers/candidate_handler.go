package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Sahil-Prajapati-8917/resume-collage/internal/models"
	"github.com/Sahil-Prajapati-8917/resume-collage/internal/repositories"
	"github.com/Sahil-Prajapati-8917/resume-collage/internal/services"
)

type CandidateHandler struct {
	candidateRepo repositories.CandidateRepository
	statusRes     services.StatusResolver
}

func NewCandidateHandler(
	candidateRepo repositories.CandidateRepository,
	statusRes services.StatusResolver,
) *CandidateHandler {
	return &CandidateHandler{
		candidateRepo: candidateRepo,
		statusRes:     statusRes,
	}
}

// HandleGetCandidate handles GET /candidates/:id, returning the candidate
// with its full transition history.
func (h *CandidateHandler) HandleGetCandidate(c *fiber.Ctx) error {
	candidateID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid candidate ID format",
		})
	}

	candidate, err := h.candidateRepo.FindByIDWithHistory(candidateID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Candidate not found",
		})
	}

	return c.JSON(candidate)
}

// HandleOverrideStatus handles POST /candidates/:id/status, the human
// override path of the status state machine.
func (h *CandidateHandler) HandleOverrideStatus(c *fiber.Ctx) error {
	candidateID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid candidate ID format",
		})
	}

	var req models.OverrideStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	status := models.CandidateStatus(req.Status)
	if !validStatus(status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown status: " + req.Status,
		})
	}

	candidate, err := h.candidateRepo.FindByID(candidateID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Candidate not found",
		})
	}

	if err := h.statusRes.Override(candidate, status, req.Actor, req.Reason); err != nil {
		switch {
		case errors.Is(err, services.ErrMissingReason):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		case errors.Is(err, services.ErrInvalidTransition):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		case errors.Is(err, repositories.ErrVersionConflict):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Candidate was modified concurrently, retry the override",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update candidate status",
			})
		}
	}

	return c.JSON(candidate)
}

func validStatus(status models.CandidateStatus) bool {
	switch status {
	case models.StatusPending, models.StatusUnderProcess, models.StatusShortlisted,
		models.StatusManualReview, models.StatusDisqualified, models.StatusHired, models.StatusRejected:
		return true
	}
	return false
}
