package handlers

import (
	"context"

	"github.com/cathedral-app/cathedral/internal/domain/entities"
	"github.com/cathedral-app/cathedral/internal/domain/services"
	"github.com/cathedral-app/cathedral/internal/infrastructure/logger"
)

// SolutionHandler handles organization and solution operations.
type SolutionHandler struct {
	service      *services.SolutionService
	requirements *services.RequirementService
	relations    *services.RelationService
	log          *logger.Logger
}

// NewSolutionHandler creates a new SolutionHandler.
func NewSolutionHandler(service *services.SolutionService, requirements *services.RequirementService, relations *services.RelationService, log *logger.Logger) *SolutionHandler {
	return &SolutionHandler{
		service:      service,
		requirements: requirements,
		relations:    relations,
		log:          log,
	}
}

// SolutionStats summarizes a solution's contents.
type SolutionStats struct {
	Solution     entities.Solution `json:"solution"`
	Requirements int               `json:"requirements"`
	Relations    int               `json:"relations"`
}

// HandleCreateOrganization creates an organization.
func (h *SolutionHandler) HandleCreateOrganization(ctx context.Context, name, description string) (*entities.Organization, error) {
	org, err := h.service.CreateOrganization(ctx, name, description)
	if err != nil {
		return nil, err
	}
	h.log.Info().Str("organization", org.Slug).Msg("organization created")
	return org, nil
}

// HandleListOrganizations lists all organizations.
func (h *SolutionHandler) HandleListOrganizations(ctx context.Context) ([]entities.Organization, error) {
	return h.service.ListOrganizations(ctx)
}

// HandleCreateSolution creates a solution within an organization.
func (h *SolutionHandler) HandleCreateSolution(ctx context.Context, orgSlug, name, description string) (*entities.Solution, error) {
	sol, err := h.service.CreateSolution(ctx, orgSlug, name, description)
	if err != nil {
		return nil, err
	}
	h.log.Info().Str("organization", orgSlug).Str("solution", sol.Slug).Msg("solution created")
	return sol, nil
}

// HandleFindSolution resolves a solution by its organization and slug.
func (h *SolutionHandler) HandleFindSolution(ctx context.Context, orgSlug, slug string) (*entities.Solution, error) {
	return h.service.FindSolution(ctx, orgSlug, slug)
}

// HandleListSolutions lists an organization's solutions.
func (h *SolutionHandler) HandleListSolutions(ctx context.Context, orgSlug string) ([]entities.Solution, error) {
	return h.service.ListSolutions(ctx, orgSlug)
}

// HandleDeleteSolution removes a solution and everything it owns.
func (h *SolutionHandler) HandleDeleteSolution(ctx context.Context, orgSlug, slug string) error {
	if err := h.service.DeleteSolution(ctx, orgSlug, slug); err != nil {
		return err
	}
	h.log.Info().Str("organization", orgSlug).Str("solution", slug).Msg("solution deleted")
	return nil
}

// HandleStats returns counts for a solution.
func (h *SolutionHandler) HandleStats(ctx context.Context, orgSlug, slug string) (*SolutionStats, error) {
	sol, err := h.service.FindSolution(ctx, orgSlug, slug)
	if err != nil {
		return nil, err
	}

	reqCount, err := h.requirements.Count(ctx, sol.ID, "")
	if err != nil {
		return nil, err
	}
	relCount, err := h.relations.Count(ctx, sol.ID)
	if err != nil {
		return nil, err
	}

	return &SolutionStats{
		Solution:     *sol,
		Requirements: reqCount,
		Relations:    relCount,
	}, nil
}
