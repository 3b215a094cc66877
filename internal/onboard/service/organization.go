package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/platolabs/onboard/internal/onboard/domain"
	"github.com/platolabs/onboard/internal/onboard/store"
	"github.com/platolabs/onboard/pkg/idx"
	"github.com/platolabs/onboard/pkg/slogx"
)

var (
	ErrInvalidOrganizationRequest = errors.New("invalid organization request")
	ErrFounderNotFound            = errors.New("founding user not found")
	ErrOrganizationNotFound       = errors.New("organization not found")
	ErrOrganizationCreateFailed   = errors.New("could not create organization")
)

// slugRetries bounds how many times creation re-resolves after losing a
// slug race to a concurrent insert.
const slugRetries = 3

// OrganizationService creates and looks up organizations.
type OrganizationService struct {
	Store store.Store
}

// CreateOrganization resolves a unique slug from name, creates the
// organization and attaches the founder as its first member, all in one
// transaction. Losing the slug race to a concurrent creation surfaces
// as a unique-constraint conflict, which triggers a fresh resolution.
func (s *OrganizationService) CreateOrganization(ctx context.Context, name, founderID string) (domain.Organization, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate input.
	if slugify(name) == "" || founderID == "" {
		log.Warn("organization create missing name or founder")
		return domain.Organization{}, ErrInvalidOrganizationRequest
	}

	// 2. The founder must exist before we attach them.
	if _, err := s.Store.Users().GetUserByID(ctx, founderID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("organization create with unknown founder",
				slog.String("founder_id", founderID),
			)
			return domain.Organization{}, ErrFounderNotFound
		}
		log.Error("failed to fetch founder", slog.Any("error", err))
		return domain.Organization{}, err
	}

	// 3. Resolve a slug and create; on a slug conflict, resolve again.
	for attempt := 0; attempt < slugRetries; attempt++ {
		slug, err := resolveSlug(ctx, s.Store.Organizations(), name)
		if err != nil {
			log.Error("failed to resolve slug", slog.Any("error", err))
			return domain.Organization{}, err
		}

		org := domain.Organization{
			ID:   idx.New().String(),
			Name: name,
			Slug: slug,
		}

		err = s.Store.WithTx(ctx, func(tx store.Tx) error {
			if err := tx.Organizations().CreateOrganization(ctx, org); err != nil {
				return err
			}
			return tx.Organizations().AddMember(ctx, org.ID, founderID)
		})
		if err == nil {
			log.Info("organization created",
				slog.String("org_id", org.ID),
				slog.String("slug", org.Slug),
				slog.String("founder_id", founderID),
			)
			return org, nil
		}
		if errors.Is(err, store.ErrAlreadyExists) {
			log.Warn("slug taken between probe and create, retrying",
				slog.String("slug", slug),
			)
			continue
		}
		log.Error("failed to create organization", slog.Any("error", err))
		return domain.Organization{}, err
	}

	log.Error("organization create exhausted slug retries")
	return domain.Organization{}, ErrOrganizationCreateFailed
}

// GetBySlug returns the organization with the given slug.
func (s *OrganizationService) GetBySlug(ctx context.Context, slug string) (domain.Organization, error) {
	org, err := s.Store.Organizations().GetOrganizationBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Organization{}, ErrOrganizationNotFound
		}
		return domain.Organization{}, err
	}
	return org, nil
}

// OrganizationForUser returns the first organization the user belongs
// to. The flow assumes each user has at most one.
func (s *OrganizationService) OrganizationForUser(ctx context.Context, userID string) (domain.Organization, error) {
	org, err := s.Store.Organizations().FirstOrganizationForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Organization{}, ErrOrganizationNotFound
		}
		return domain.Organization{}, err
	}
	return org, nil
}

// Members lists the user ids attached to an organization.
func (s *OrganizationService) Members(ctx context.Context, orgID string) ([]string, error) {
	return s.Store.Organizations().ListMembers(ctx, orgID)
}
