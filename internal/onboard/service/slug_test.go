package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"Acme Inc.", "acme-inc"},
		{"Acme Inc", "acme-inc"},
		{"  Padded  Name  ", "padded-name"},
		{"Already-Slugged", "already-slugged"},
		{"Ünïcode & Symbols!!", "n-code-symbols"},
		{"123 Numbers 456", "123-numbers-456"},
		{"---", ""},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, slugify(tt.input), "input %q", tt.input)
	}
}

func TestResolveSlugFreeBase(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	slug, err := resolveSlug(ctx, st.Organizations(), "Acme Inc.")
	require.NoError(t, err)
	require.Equal(t, "acme-inc", slug)
}

func TestResolveSlugProbesSequentially(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	seedOrg(t, st, "Acme Inc.", "acme-inc")

	slug, err := resolveSlug(ctx, st.Organizations(), "Acme Inc")
	require.NoError(t, err)
	require.Equal(t, "acme-inc-1", slug)

	seedOrg(t, st, "Acme Inc", "acme-inc-1")

	slug, err = resolveSlug(ctx, st.Organizations(), "Acme, Inc!")
	require.NoError(t, err)
	require.Equal(t, "acme-inc-2", slug)
}

func TestResolveSlugSkipsOccupiedSuffixes(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	// The probe always restarts from the base, so pre-existing
	// suffixed slugs are stepped over in order.
	seedOrg(t, st, "Widgets", "widgets")
	seedOrg(t, st, "Widgets", "widgets-1")
	seedOrg(t, st, "Widgets", "widgets-2")

	slug, err := resolveSlug(ctx, st.Organizations(), "Widgets")
	require.NoError(t, err)
	require.Equal(t, "widgets-3", slug)
}

func TestResolveSlugIsDeterministic(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	seedOrg(t, st, "Acme", "acme")

	for range 3 {
		slug, err := resolveSlug(ctx, st.Organizations(), "Acme")
		require.NoError(t, err)
		require.Equal(t, "acme-1", slug)
	}
}

func TestResolveSlugNeverReturnsTakenSlug(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	taken := map[string]bool{}
	for i := range 5 {
		slug, err := resolveSlug(ctx, st.Organizations(), "Repeat Co")
		require.NoError(t, err)
		require.False(t, taken[slug], "slug %q returned twice", slug)
		taken[slug] = true
		seedOrg(t, st, "Repeat Co", slug)
		_ = i
	}
	require.Equal(t, map[string]bool{
		"repeat-co":   true,
		"repeat-co-1": true,
		"repeat-co-2": true,
		"repeat-co-3": true,
		"repeat-co-4": true,
	}, taken)
}

func TestResolveSlugDegenerateEmptyName(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	// An empty base is technically resolvable; the disambiguator still
	// applies. Upstream validation keeps real traffic out of here.
	slug, err := resolveSlug(ctx, st.Organizations(), "   ")
	require.NoError(t, err)
	require.Equal(t, "", slug)

	seedOrg(t, st, "", "")
	slug, err = resolveSlug(ctx, st.Organizations(), "!!!")
	require.NoError(t, err)
	require.Equal(t, fmt.Sprintf("-%d", 1), slug)
}
