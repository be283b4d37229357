package database

import (
	"context"
	"database/sql"
	"fmt"

	"campus-connect/internal/models"
	"campus-connect/internal/utils"
)

// --- Post Directory ---

// SavePost inserts a post and fills in the generated id.
func (p *PostgresDB) SavePost(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (author_email, content)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	err := p.DB.QueryRowxContext(ctx, query, post.AuthorEmail, post.Content).
		Scan(&post.ID, &post.CreatedAt)
	if err != nil {
		return utils.NewStoreError("failed to save post", err)
	}
	return nil
}

// GetPost fetches a post by id. The orchestrator uses it to resolve the
// notification recipient (the post owner) and the content preview.
func (p *PostgresDB) GetPost(ctx context.Context, postID int64) (*models.Post, error) {
	query := `SELECT id, author_email, COALESCE(content, '') AS content, created_at FROM posts WHERE id = $1`
	var post models.Post
	err := p.DB.GetContext(ctx, &post, query, postID)
	if err == sql.ErrNoRows {
		return nil, utils.NewPostNotFoundError(postID)
	}
	if err != nil {
		return nil, utils.NewStoreError("failed to query post", err)
	}
	return &post, nil
}

// RecordLike records a like. One like per (post, member); re-liking is a
// no-op. Returns true when the like was newly recorded.
func (p *PostgresDB) RecordLike(ctx context.Context, postID int64, memberEmail string) (bool, error) {
	query := `
		INSERT INTO post_likes (post_id, member_email)
		VALUES ($1, $2)
		ON CONFLICT (post_id, member_email) DO NOTHING
	`
	result, err := p.DB.ExecContext(ctx, query, postID, memberEmail)
	if err != nil {
		return false, utils.NewStoreError(fmt.Sprintf("failed to record like on post %d", postID), err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// SaveComment inserts a comment and fills in the generated id.
func (p *PostgresDB) SaveComment(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (post_id, author_email, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := p.DB.QueryRowxContext(ctx, query, comment.PostID, comment.AuthorEmail, comment.Content).
		Scan(&comment.ID, &comment.CreatedAt)
	if err != nil {
		return utils.NewStoreError("failed to save comment", err)
	}
	return nil
}
