package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// inserted interprets the result of an INSERT ... RETURNING id that may
// legitimately return no row when the record already exists.
func inserted(err error, what string) (bool, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create %s: %w", what, err)
	}
	return true, nil
}

// Success stories

const storyColumns = `id, title, slug, company_name, category, short_description, content, image, quote, is_featured, sort_order, created_at`

func scanStory(row pgx.Row) (*SuccessStory, error) {
	var s SuccessStory
	if err := row.Scan(
		&s.ID, &s.Title, &s.Slug, &s.CompanyName, &s.Category, &s.ShortDescription,
		&s.Content, &s.Image, &s.Quote, &s.IsFeatured, &s.Order, &s.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

func (db *DB) queryStories(ctx context.Context, where string) ([]*SuccessStory, error) {
	query := `SELECT ` + storyColumns + ` FROM success_stories ` + where + ` ORDER BY sort_order, created_at DESC`

	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query success stories: %w", err)
	}
	defer rows.Close()

	var stories []*SuccessStory
	for rows.Next() {
		s, err := scanStory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan success story: %w", err)
		}
		stories = append(stories, s)
	}
	return stories, rows.Err()
}

// ListStories retrieves all success stories
func (db *DB) ListStories(ctx context.Context) ([]*SuccessStory, error) {
	return db.queryStories(ctx, "")
}

// ListFeaturedStories retrieves the stories shown on the home page
func (db *DB) ListFeaturedStories(ctx context.Context) ([]*SuccessStory, error) {
	return db.queryStories(ctx, "WHERE is_featured")
}

// GetStoryBySlug retrieves a success story by its slug
func (db *DB) GetStoryBySlug(ctx context.Context, slug string) (*SuccessStory, error) {
	query := `SELECT ` + storyColumns + ` FROM success_stories WHERE slug = $1`

	s, err := scanStory(db.pool.QueryRow(ctx, query, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get success story: %w", err)
	}
	return s, nil
}

// EnsureStory creates the story unless one for the same company exists
func (db *DB) EnsureStory(ctx context.Context, s *SuccessStory) (bool, error) {
	query := `
		INSERT INTO success_stories (company_name, title, slug, category, short_description, content, image, quote, is_featured, sort_order)
		SELECT $1::text, $2::text, $3::text, $4::text, $5::text, $6::text, $7::text, $8::text, $9::boolean, $10::integer
		WHERE NOT EXISTS (SELECT 1 FROM success_stories WHERE company_name = $1::text)
		RETURNING id, created_at
	`
	err := db.pool.QueryRow(ctx, query,
		s.CompanyName, s.Title, s.Slug, s.Category, s.ShortDescription,
		s.Content, s.Image, s.Quote, s.IsFeatured, s.Order,
	).Scan(&s.ID, &s.CreatedAt)
	return inserted(err, "success story")
}

// Partners

// ListActivePartners retrieves the partners marked active
func (db *DB) ListActivePartners(ctx context.Context) ([]*Partner, error) {
	query := `
		SELECT id, name, logo, website_url, description, partner_type, sort_order, is_active
		FROM partners
		WHERE is_active
		ORDER BY sort_order, id
	`

	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query partners: %w", err)
	}
	defer rows.Close()

	var partners []*Partner
	for rows.Next() {
		var p Partner
		if err := rows.Scan(&p.ID, &p.Name, &p.Logo, &p.WebsiteURL, &p.Description, &p.PartnerType, &p.Order, &p.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan partner: %w", err)
		}
		partners = append(partners, &p)
	}
	return partners, rows.Err()
}

// EnsurePartner creates the partner unless one with the same name exists
func (db *DB) EnsurePartner(ctx context.Context, p *Partner) (bool, error) {
	query := `
		INSERT INTO partners (name, logo, website_url, description, partner_type, sort_order, is_active)
		SELECT $1::text, $2::text, $3::text, $4::text, $5::text, $6::integer, $7::boolean
		WHERE NOT EXISTS (SELECT 1 FROM partners WHERE name = $1::text)
		RETURNING id
	`
	err := db.pool.QueryRow(ctx, query,
		p.Name, p.Logo, p.WebsiteURL, p.Description, p.PartnerType, p.Order, p.IsActive,
	).Scan(&p.ID)
	return inserted(err, "partner")
}

// EU projects

// ListEUProjects retrieves all EU projects
func (db *DB) ListEUProjects(ctx context.Context) ([]*EUProject, error) {
	query := `SELECT id, title, description, funder, status, sort_order FROM eu_projects ORDER BY sort_order, id`

	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query EU projects: %w", err)
	}
	defer rows.Close()

	var projects []*EUProject
	for rows.Next() {
		var p EUProject
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Funder, &p.Status, &p.Order); err != nil {
			return nil, fmt.Errorf("failed to scan EU project: %w", err)
		}
		projects = append(projects, &p)
	}
	return projects, rows.Err()
}

// EnsureEUProject creates the project unless one with the same title exists
func (db *DB) EnsureEUProject(ctx context.Context, p *EUProject) (bool, error) {
	query := `
		INSERT INTO eu_projects (title, description, funder, status, sort_order)
		SELECT $1::text, $2::text, $3::text, $4::text, $5::integer
		WHERE NOT EXISTS (SELECT 1 FROM eu_projects WHERE title = $1::text)
		RETURNING id
	`
	err := db.pool.QueryRow(ctx, query, p.Title, p.Description, p.Funder, p.Status, p.Order).Scan(&p.ID)
	return inserted(err, "EU project")
}

// Gallery

// ListGalleryPhotos retrieves all gallery photos
func (db *DB) ListGalleryPhotos(ctx context.Context) ([]*GalleryPhoto, error) {
	query := `SELECT id, image, caption, sort_order, created_at FROM gallery_photos ORDER BY sort_order, created_at DESC`

	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query gallery photos: %w", err)
	}
	defer rows.Close()

	var photos []*GalleryPhoto
	for rows.Next() {
		var p GalleryPhoto
		if err := rows.Scan(&p.ID, &p.Image, &p.Caption, &p.Order, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan gallery photo: %w", err)
		}
		photos = append(photos, &p)
	}
	return photos, rows.Err()
}

// EnsureGalleryPhoto creates the photo unless one with the same image exists
func (db *DB) EnsureGalleryPhoto(ctx context.Context, p *GalleryPhoto) (bool, error) {
	query := `
		INSERT INTO gallery_photos (image, caption, sort_order)
		SELECT $1::text, $2::text, $3::integer
		WHERE NOT EXISTS (SELECT 1 FROM gallery_photos WHERE image = $1::text)
		RETURNING id, created_at
	`
	err := db.pool.QueryRow(ctx, query, p.Image, p.Caption, p.Order).Scan(&p.ID, &p.CreatedAt)
	return inserted(err, "gallery photo")
}

// Programs

// ListPrograms retrieves all programs
func (db *DB) ListPrograms(ctx context.Context) ([]*Program, error) {
	query := `
		SELECT id, title, slug, badge, icon_class, short_description, content, image,
		       highlight_number, highlight_text, is_featured, cta_text, cta_url, sort_order
		FROM programs
		ORDER BY sort_order, id
	`

	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query programs: %w", err)
	}
	defer rows.Close()

	var programs []*Program
	for rows.Next() {
		var p Program
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Slug, &p.Badge, &p.IconClass, &p.ShortDescription, &p.Content, &p.Image,
			&p.HighlightNumber, &p.HighlightText, &p.IsFeatured, &p.CTAText, &p.CTAURL, &p.Order,
		); err != nil {
			return nil, fmt.Errorf("failed to scan program: %w", err)
		}
		programs = append(programs, &p)
	}
	return programs, rows.Err()
}

// EnsureProgram creates the program unless its slug is taken
func (db *DB) EnsureProgram(ctx context.Context, p *Program) (bool, error) {
	query := `
		INSERT INTO programs (title, slug, badge, icon_class, short_description, content, image,
		                      highlight_number, highlight_text, is_featured, cta_text, cta_url, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (slug) DO NOTHING
		RETURNING id
	`
	err := db.pool.QueryRow(ctx, query,
		p.Title, p.Slug, p.Badge, p.IconClass, p.ShortDescription, p.Content, p.Image,
		p.HighlightNumber, p.HighlightText, p.IsFeatured, p.CTAText, p.CTAURL, p.Order,
	).Scan(&p.ID)
	return inserted(err, "program")
}

// Statistics

// ListStatistics retrieves statistics keyed by their unique key.
// An empty category returns all of them.
func (db *DB) ListStatistics(ctx context.Context, category string) (map[string]*Statistic, error) {
	query := `
		SELECT id, key, value, suffix, decimal_places, label, icon_class, category, sort_order
		FROM statistics
		WHERE $1::text = '' OR category = $1::text
		ORDER BY category, sort_order
	`

	rows, err := db.pool.Query(ctx, query, category)
	if err != nil {
		return nil, fmt.Errorf("failed to query statistics: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*Statistic)
	for rows.Next() {
		var s Statistic
		if err := rows.Scan(&s.ID, &s.Key, &s.Value, &s.Suffix, &s.DecimalPlaces, &s.Label, &s.IconClass, &s.Category, &s.Order); err != nil {
			return nil, fmt.Errorf("failed to scan statistic: %w", err)
		}
		stats[s.Key] = &s
	}
	return stats, rows.Err()
}

// EnsureStatistic creates the statistic unless its key is taken
func (db *DB) EnsureStatistic(ctx context.Context, s *Statistic) (bool, error) {
	query := `
		INSERT INTO statistics (key, value, suffix, decimal_places, label, icon_class, category, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (key) DO NOTHING
		RETURNING id
	`
	err := db.pool.QueryRow(ctx, query,
		s.Key, s.Value, s.Suffix, s.DecimalPlaces, s.Label, s.IconClass, s.Category, s.Order,
	).Scan(&s.ID)
	return inserted(err, "statistic")
}

// Mentors

// ListActiveMentors retrieves the mentors marked active
func (db *DB) ListActiveMentors(ctx context.Context) ([]*Mentor, error) {
	query := `
		SELECT id, name, specialization, bio, photo, sort_order, is_active
		FROM mentors
		WHERE is_active
		ORDER BY sort_order, id
	`

	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query mentors: %w", err)
	}
	defer rows.Close()

	var mentors []*Mentor
	for rows.Next() {
		var m Mentor
		if err := rows.Scan(&m.ID, &m.Name, &m.Specialization, &m.Bio, &m.Photo, &m.Order, &m.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan mentor: %w", err)
		}
		mentors = append(mentors, &m)
	}
	return mentors, rows.Err()
}

// EnsureMentor creates the mentor unless one with the same name exists
func (db *DB) EnsureMentor(ctx context.Context, m *Mentor) (bool, error) {
	query := `
		INSERT INTO mentors (name, specialization, bio, photo, sort_order, is_active)
		SELECT $1::text, $2::text, $3::text, $4::text, $5::integer, $6::boolean
		WHERE NOT EXISTS (SELECT 1 FROM mentors WHERE name = $1::text)
		RETURNING id
	`
	err := db.pool.QueryRow(ctx, query, m.Name, m.Specialization, m.Bio, m.Photo, m.Order, m.IsActive).Scan(&m.ID)
	return inserted(err, "mentor")
}
