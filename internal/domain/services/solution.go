package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/cathedral-app/cathedral/internal/domain/entities"
	"github.com/cathedral-app/cathedral/internal/domain/ports"
)

// SolutionService manages the organization / solution containment
// hierarchy.
type SolutionService struct {
	db       ports.RelationalDB
	vectorDB ports.VectorDB
}

// NewSolutionService creates a new SolutionService.
func NewSolutionService(db ports.RelationalDB, vectorDB ports.VectorDB) *SolutionService {
	return &SolutionService{db: db, vectorDB: vectorDB}
}

// CreateOrganization creates an organization with a slug derived from its
// name.
func (s *SolutionService) CreateOrganization(ctx context.Context, name, description string) (*entities.Organization, error) {
	slug := entities.Slugify(name)
	if slug == "" {
		return nil, &entities.ValidationError{Field: "name", Reason: "required"}
	}
	existing, err := s.db.FindOrganizationBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("checking organization: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("organization %q already exists", slug)
	}
	org := &entities.Organization{
		ID:          uuid.New().String(),
		Slug:        slug,
		Name:        name,
		Description: description,
		CreatedAt:   timeNow(),
	}
	if err := s.db.SaveOrganization(ctx, org); err != nil {
		return nil, fmt.Errorf("saving organization: %w", err)
	}
	return org, nil
}

// ListOrganizations lists all organizations.
func (s *SolutionService) ListOrganizations(ctx context.Context) ([]entities.Organization, error) {
	return s.db.ListOrganizations(ctx)
}

// CreateSolution creates a solution under an organization.
func (s *SolutionService) CreateSolution(ctx context.Context, orgSlug, name, description string) (*entities.Solution, error) {
	org, err := s.db.FindOrganizationBySlug(ctx, orgSlug)
	if err != nil {
		return nil, fmt.Errorf("finding organization: %w", err)
	}
	if org == nil {
		return nil, &entities.NotFoundError{Kind: "organization", ID: orgSlug}
	}
	slug := entities.Slugify(name)
	if slug == "" {
		return nil, &entities.ValidationError{Field: "name", Reason: "required"}
	}
	existing, err := s.db.FindSolutionBySlug(ctx, org.ID, slug)
	if err != nil {
		return nil, fmt.Errorf("checking solution: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("solution %q already exists in organization %q", slug, orgSlug)
	}
	sol := &entities.Solution{
		ID:             uuid.New().String(),
		OrganizationID: org.ID,
		Slug:           slug,
		Name:           name,
		Description:    description,
		CreatedAt:      timeNow(),
	}
	if err := s.db.SaveSolution(ctx, sol); err != nil {
		return nil, fmt.Errorf("saving solution: %w", err)
	}
	return sol, nil
}

// FindSolution resolves a solution by organization and solution slug.
func (s *SolutionService) FindSolution(ctx context.Context, orgSlug, slug string) (*entities.Solution, error) {
	org, err := s.db.FindOrganizationBySlug(ctx, orgSlug)
	if err != nil {
		return nil, fmt.Errorf("finding organization: %w", err)
	}
	if org == nil {
		return nil, &entities.NotFoundError{Kind: "organization", ID: orgSlug}
	}
	sol, err := s.db.FindSolutionBySlug(ctx, org.ID, slug)
	if err != nil {
		return nil, fmt.Errorf("finding solution: %w", err)
	}
	if sol == nil {
		return nil, &entities.NotFoundError{Kind: "solution", ID: slug}
	}
	return sol, nil
}

// ListSolutions lists the solutions of an organization.
func (s *SolutionService) ListSolutions(ctx context.Context, orgSlug string) ([]entities.Solution, error) {
	org, err := s.db.FindOrganizationBySlug(ctx, orgSlug)
	if err != nil {
		return nil, fmt.Errorf("finding organization: %w", err)
	}
	if org == nil {
		return nil, &entities.NotFoundError{Kind: "organization", ID: orgSlug}
	}
	return s.db.ListSolutions(ctx, org.ID)
}

// DeleteSolution removes a solution with everything it owns: requirement
// identities, version rows, relations, endorsements, parsed batches and
// search documents.
func (s *SolutionService) DeleteSolution(ctx context.Context, orgSlug, slug string) error {
	sol, err := s.FindSolution(ctx, orgSlug, slug)
	if err != nil {
		return err
	}
	if err := s.db.DeleteSolution(ctx, sol.ID); err != nil {
		return fmt.Errorf("deleting solution: %w", err)
	}
	if err := s.vectorDB.DeleteBySolution(ctx, sol.ID); err != nil {
		return fmt.Errorf("removing search documents: %w", err)
	}
	return nil
}
