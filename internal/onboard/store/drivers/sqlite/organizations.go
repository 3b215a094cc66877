package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/platolabs/onboard/internal/onboard/domain"
)

type organizationsRepo struct {
	db dbtx
}

const orgColumns = `id, name, slug, created_at, updated_at`

func (r *organizationsRepo) GetOrganizationBySlug(ctx context.Context, slug string) (domain.Organization, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orgColumns+` FROM organizations WHERE slug = ?`, slug)
	return scanOrganization(row)
}

func (r *organizationsRepo) GetOrganizationByID(ctx context.Context, id string) (domain.Organization, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orgColumns+` FROM organizations WHERE id = ?`, id)
	return scanOrganization(row)
}

func (r *organizationsRepo) CreateOrganization(ctx context.Context, o domain.Organization) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO organizations (id, name, slug, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		o.ID, o.Name, o.Slug, now, now)
	return mapConstraint(err)
}

func (r *organizationsRepo) AddMember(ctx context.Context, orgID, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO organization_members (organization_id, user_id, created_at) VALUES (?, ?, ?)`,
		orgID, userID, time.Now().UTC())
	return mapConstraint(err)
}

func (r *organizationsRepo) FirstOrganizationForUser(ctx context.Context, userID string) (domain.Organization, error) {
	// ULIDs sort by creation time, so ordering by id yields the first
	// organization the user joined.
	row := r.db.QueryRowContext(ctx,
		`SELECT o.id, o.name, o.slug, o.created_at, o.updated_at
		 FROM organizations o
		 JOIN organization_members m ON m.organization_id = o.id
		 WHERE m.user_id = ?
		 ORDER BY o.id
		 LIMIT 1`, userID)
	return scanOrganization(row)
}

func (r *organizationsRepo) ListMembers(ctx context.Context, orgID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id FROM organization_members WHERE organization_id = ? ORDER BY user_id`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		members = append(members, id)
	}
	return members, rows.Err()
}

func scanOrganization(row *sql.Row) (domain.Organization, error) {
	var o domain.Organization
	err := row.Scan(&o.ID, &o.Name, &o.Slug, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return domain.Organization{}, mapNotFound(err)
	}
	return o, nil
}
