package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema holds the DDL run at startup. Statements are idempotent so every
// boot converges on the same schema without a separate migration tool.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS user_groups (
		group_id    serial PRIMARY KEY,
		short_group text NOT NULL UNIQUE,
		group_name  text NOT NULL
	)`,
	`INSERT INTO user_groups (short_group, group_name) VALUES
		('ADM', 'Administrators'),
		('REC', 'Recruiters'),
		('CAN', 'Candidates')
	ON CONFLICT (short_group) DO NOTHING`,
	`CREATE TABLE IF NOT EXISTS users (
		user_id       serial PRIMARY KEY,
		user_uuid     uuid NOT NULL UNIQUE,
		username      text NOT NULL,
		email         text NOT NULL UNIQUE,
		password_hash text NOT NULL,
		group_ref     int NOT NULL REFERENCES user_groups(group_id),
		is_locked     boolean NOT NULL DEFAULT false,
		created_on    timestamptz NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS job_postings (
		job_id              serial PRIMARY KEY,
		job_title           text NOT NULL,
		job_description     text NOT NULL DEFAULT '',
		required_skills     text NOT NULL DEFAULT '',
		experience_required text NOT NULL DEFAULT '',
		location            text NOT NULL DEFAULT '',
		job_type            text NOT NULL DEFAULT '',
		posted_on           timestamptz NOT NULL DEFAULT NOW(),
		deadline            timestamptz,
		is_active           boolean NOT NULL DEFAULT true,
		posted_by           int REFERENCES users(user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS upload_files (
		file_id            serial PRIMARY KEY,
		file_name          text NOT NULL UNIQUE,
		file_original_name text NOT NULL,
		is_deleted         boolean NOT NULL DEFAULT false,
		uploaded_on        timestamptz NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS applications (
		application_id         serial PRIMARY KEY,
		job_ref                int NOT NULL REFERENCES job_postings(job_id),
		candidate_ref          int REFERENCES users(user_id),
		resume_ref             int NOT NULL REFERENCES upload_files(file_id),
		applied_on             timestamptz NOT NULL DEFAULT NOW(),
		status                 text NOT NULL DEFAULT 'Submitted',
		ai_score               double precision,
		ai_match_keywords      text,
		interview_date         text,
		interview_time         text,
		interviewer_name       text,
		interview_location     text,
		interview_scheduled_on timestamptz,
		notes                  text
	)`,
	`CREATE INDEX IF NOT EXISTS idx_applications_job ON applications(job_ref)`,
	`CREATE INDEX IF NOT EXISTS idx_applications_status ON applications(status)`,
	`CREATE INDEX IF NOT EXISTS idx_job_postings_active ON job_postings(is_active)`,
}

// Migrate creates the ATS schema if it does not exist and seeds the user
// groups. The bootstrap admin account is seeded separately by the users
// service because it needs a bcrypt hash.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
