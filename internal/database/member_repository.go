package database

import (
	"context"
	"database/sql"
	"time"

	"campus-connect/internal/models"
	"campus-connect/internal/utils"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// --- Member Directory ---

// SaveMember inserts a new member. Duplicate emails map to ErrDuplicate.
func (p *PostgresDB) SaveMember(ctx context.Context, member *models.Member) error {
	if member.ID == uuid.Nil {
		member.ID = uuid.New()
	}
	if member.CreatedAt.IsZero() {
		member.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO members (id, email, name, password_hash, created_at)
		VALUES (:id, :email, :name, :password_hash, :created_at)
	`
	_, err := p.DB.NamedExecContext(ctx, query, member)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return utils.NewAppError(utils.ErrMemberAlreadyExists, "member already exists: "+member.Email, err)
		}
		return utils.NewStoreError("failed to save member", err)
	}
	return nil
}

// GetMemberByEmail fetches a member by email.
func (p *PostgresDB) GetMemberByEmail(ctx context.Context, email string) (*models.Member, error) {
	query := `SELECT id, email, name, password_hash, created_at FROM members WHERE email = $1`
	var member models.Member
	err := p.DB.GetContext(ctx, &member, query, email)
	if err == sql.ErrNoRows {
		return nil, utils.NewMemberNotFoundError(email)
	}
	if err != nil {
		return nil, utils.NewStoreError("failed to query member", err)
	}
	return &member, nil
}

// ResolveDisplayName looks up a member's display name by email.
// Callers fall back to the email itself when the lookup fails.
func (p *PostgresDB) ResolveDisplayName(ctx context.Context, email string) (string, error) {
	query := `SELECT name FROM members WHERE email = $1`
	var name string
	err := p.DB.GetContext(ctx, &name, query, email)
	if err == sql.ErrNoRows {
		return "", utils.NewMemberNotFoundError(email)
	}
	if err != nil {
		return "", utils.NewStoreError("failed to resolve display name", err)
	}
	return name, nil
}
