package service

import (
	"context"
	"testing"

	"github.com/platolabs/onboard/internal/onboard/store"
	"github.com/platolabs/onboard/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newOrganizationService(t *testing.T) *OrganizationService {
	t.Helper()
	return &OrganizationService{Store: newTestStore(t)}
}

func TestCreateOrganizationAttachesFounder(t *testing.T) {
	ctx := context.Background()
	svc := newOrganizationService(t)

	founder := seedUser(t, svc.Store, uniqueEmail(), "")

	org, err := svc.CreateOrganization(ctx, "Acme Inc.", founder.ID)
	require.NoError(t, err)
	require.Equal(t, "Acme Inc.", org.Name)
	require.Equal(t, "acme-inc", org.Slug)
	require.NotEmpty(t, org.ID)

	members, err := svc.Members(ctx, org.ID)
	require.NoError(t, err)
	require.Equal(t, []string{founder.ID}, members)
}

func TestCreateOrganizationSuffixesDuplicateNames(t *testing.T) {
	ctx := context.Background()
	svc := newOrganizationService(t)

	founder := seedUser(t, svc.Store, uniqueEmail(), "")

	first, err := svc.CreateOrganization(ctx, "Acme Inc.", founder.ID)
	require.NoError(t, err)
	require.Equal(t, "acme-inc", first.Slug)

	second, err := svc.CreateOrganization(ctx, "Acme Inc.", founder.ID)
	require.NoError(t, err)
	require.Equal(t, "acme-inc-1", second.Slug)

	third, err := svc.CreateOrganization(ctx, "Acme Inc.", founder.ID)
	require.NoError(t, err)
	require.Equal(t, "acme-inc-2", third.Slug)
}

// contendedStore simulates a concurrent creation landing in the window
// between slug resolution and commit: right before the first
// transaction starts, a competing organization takes the slug.
type contendedStore struct {
	store.Store
	t        *testing.T
	slug     string
	injected bool
}

func (s *contendedStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	if !s.injected {
		s.injected = true
		seedOrg(s.t, s.Store, "Race Co", s.slug)
	}
	return s.Store.WithTx(ctx, fn)
}

func TestCreateOrganizationRetriesAfterSlugRace(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	founder := seedUser(t, st, uniqueEmail(), "")
	svc := &OrganizationService{Store: &contendedStore{Store: st, t: t, slug: "race-co"}}

	// The probe resolves "race-co", then loses the insert race; creation
	// must re-resolve to the next suffix instead of failing.
	org, err := svc.CreateOrganization(ctx, "Race Co", founder.ID)
	require.NoError(t, err)
	require.Equal(t, "race-co-1", org.Slug)

	members, err := svc.Members(ctx, org.ID)
	require.NoError(t, err)
	require.Equal(t, []string{founder.ID}, members)

	// Both rows exist; the competing slug was not overwritten.
	winner, err := svc.GetBySlug(ctx, "race-co")
	require.NoError(t, err)
	require.NotEqual(t, org.ID, winner.ID)
}

func TestCreateOrganizationGivesUpAfterRepeatedRaces(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	founder := seedUser(t, st, uniqueEmail(), "")

	// Every resolution attempt loses its slug before committing.
	svc := &OrganizationService{Store: &alwaysContendedStore{Store: st, t: t, name: "Race Co"}}

	_, err := svc.CreateOrganization(ctx, "Race Co", founder.ID)
	require.ErrorIs(t, err, ErrOrganizationCreateFailed)
}

// alwaysContendedStore steals the resolved slug before every
// transaction, exhausting the creation retries.
type alwaysContendedStore struct {
	store.Store
	t    *testing.T
	name string
}

func (s *alwaysContendedStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	slug, err := resolveSlug(ctx, s.Store.Organizations(), s.name)
	require.NoError(s.t, err)
	seedOrg(s.t, s.Store, s.name, slug)
	return s.Store.WithTx(ctx, fn)
}

func TestCreateOrganizationValidatesInput(t *testing.T) {
	ctx := context.Background()
	svc := newOrganizationService(t)

	founder := seedUser(t, svc.Store, uniqueEmail(), "")

	_, err := svc.CreateOrganization(ctx, "", founder.ID)
	require.ErrorIs(t, err, ErrInvalidOrganizationRequest)

	// A name with no slug-safe characters resolves to an empty base.
	_, err = svc.CreateOrganization(ctx, "!!!", founder.ID)
	require.ErrorIs(t, err, ErrInvalidOrganizationRequest)

	_, err = svc.CreateOrganization(ctx, "Acme", "")
	require.ErrorIs(t, err, ErrInvalidOrganizationRequest)
}

func TestCreateOrganizationUnknownFounder(t *testing.T) {
	ctx := context.Background()
	svc := newOrganizationService(t)

	_, err := svc.CreateOrganization(ctx, "Acme", idx.New().String())
	require.ErrorIs(t, err, ErrFounderNotFound)
}

func TestGetBySlug(t *testing.T) {
	ctx := context.Background()
	svc := newOrganizationService(t)

	founder := seedUser(t, svc.Store, uniqueEmail(), "")
	created, err := svc.CreateOrganization(ctx, "Lookup Co", founder.ID)
	require.NoError(t, err)

	got, err := svc.GetBySlug(ctx, "lookup-co")
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
	require.Equal(t, created.Name, got.Name)

	_, err = svc.GetBySlug(ctx, "no-such-org")
	require.ErrorIs(t, err, ErrOrganizationNotFound)
}

func TestOrganizationForUser(t *testing.T) {
	ctx := context.Background()
	svc := newOrganizationService(t)

	founder := seedUser(t, svc.Store, uniqueEmail(), "")
	outsider := seedUser(t, svc.Store, uniqueEmail(), "")

	created, err := svc.CreateOrganization(ctx, "Mine", founder.ID)
	require.NoError(t, err)

	got, err := svc.OrganizationForUser(ctx, founder.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)

	_, err = svc.OrganizationForUser(ctx, outsider.ID)
	require.ErrorIs(t, err, ErrOrganizationNotFound)
}
