package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/platolabs/onboard/internal/onboard/store"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// slugify derives the canonical slug base from a display name:
// lowercase, non-alphanumeric runs collapsed to single dashes, leading
// and trailing dashes trimmed. "Acme Inc." becomes "acme-inc".
func slugify(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	slug := nonSlugChars.ReplaceAllString(lower, "-")
	return strings.Trim(slug, "-")
}

// resolveSlug returns the first slug derived from name that is not
// already taken: the base itself, then base-1, base-2, and so on. The
// probe is read-only and deterministic for a fixed set of stored slugs.
//
// The read-then-create window stays open between this probe and the
// insert; concurrent creations with the same name surface as
// store.ErrAlreadyExists at commit, and the caller re-resolves.
func resolveSlug(ctx context.Context, orgs store.Organizations, name string) (string, error) {
	base := slugify(name)

	candidate := base
	for i := 1; ; i++ {
		_, err := orgs.GetOrganizationBySlug(ctx, candidate)
		if errors.Is(err, store.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
