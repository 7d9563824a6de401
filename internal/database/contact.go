package database

import (
	"context"
	"fmt"
)

// CreateContactSubmission stores a contact form message
func (db *DB) CreateContactSubmission(ctx context.Context, c *ContactSubmission) error {
	query := `
		INSERT INTO contact_submissions (name, email, phone, request_type, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, is_read
	`

	err := db.pool.QueryRow(ctx, query,
		c.Name,
		c.Email,
		c.Phone,
		c.RequestType,
		c.Message,
	).Scan(&c.ID, &c.CreatedAt, &c.IsRead)

	if err != nil {
		return fmt.Errorf("failed to create contact submission: %w", err)
	}

	return nil
}
