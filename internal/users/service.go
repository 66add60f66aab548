// Package users contains account management for admins, recruiters and
// candidates. Authentication itself is the Gateway's job; this service only
// manages the account records the rest of the system references.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// Short group codes, mirroring the user_groups table.
const (
	GroupAdmin     = "ADM"
	GroupRecruiter = "REC"
	GroupCandidate = "CAN"
)

// seededAdminEmail is the bootstrap account hidden from user listings.
const seededAdminEmail = "admin@spring.ats"

// User is the JSON shape of an account returned to clients. The password
// hash never leaves this package.
type User struct {
	ID        int       `json:"id"`
	UUID      string    `json:"uuid"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Group     string    `json:"group"` // short group code: ADM, REC, CAN
	IsLocked  bool      `json:"isLocked"`
	CreatedOn time.Time `json:"createdOn"`
}

const userColumns = `u.user_id, u.user_uuid, u.username, u.email,
	g.short_group, u.is_locked, u.created_on`

// Service encapsulates account management logic.
type Service struct {
	pool *pgxpool.Pool
}

// NewService returns a configured Service.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// Create inserts an account in the given group with a bcrypt-hashed password.
func (s *Service) Create(ctx context.Context, username, email, password, shortGroup string) (*User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" {
		return nil, &ValidationError{Msg: "username and email are required"}
	}
	if password == "" {
		return nil, &ValidationError{Msg: "password is required"}
	}
	switch shortGroup {
	case GroupAdmin, GroupRecruiter, GroupCandidate:
	default:
		return nil, &ValidationError{Msg: fmt.Sprintf("unknown group %q", shortGroup)}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var u User
	err = s.pool.QueryRow(ctx,
		`INSERT INTO users (user_uuid, username, email, password_hash, group_ref)
		 VALUES ($1, $2, $3, $4,
		     (SELECT group_id FROM user_groups WHERE short_group = $5))
		 RETURNING user_id, user_uuid, username, email, is_locked, created_on`,
		uuid.NewString(), username, email, string(hash), shortGroup,
	).Scan(&u.ID, &u.UUID, &u.Username, &u.Email, &u.IsLocked, &u.CreatedOn)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, &ValidationError{Msg: "email already registered"}
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	u.Group = shortGroup
	return &u, nil
}

// CreateRecruiter creates a REC account with a generated temporary password.
// The clear-text password is returned exactly once for the admin to hand over.
func (s *Service) CreateRecruiter(ctx context.Context, username, email string) (*User, string, error) {
	tempPassword := uuid.NewString()
	u, err := s.Create(ctx, username, email, tempPassword, GroupRecruiter)
	if err != nil {
		return nil, "", err
	}
	return u, tempPassword, nil
}

// ToggleLock flips the lock flag of an account.
func (s *Service) ToggleLock(ctx context.Context, userID int) (*User, error) {
	var u User
	err := s.pool.QueryRow(ctx,
		`WITH upd AS (
		   UPDATE users SET is_locked = NOT is_locked
		   WHERE user_id = $1
		   RETURNING *
		 )
		 SELECT upd.user_id, upd.user_uuid, upd.username, upd.email,
		        g.short_group, upd.is_locked, upd.created_on
		 FROM upd JOIN user_groups g ON g.group_id = upd.group_ref`,
		userID,
	).Scan(&u.ID, &u.UUID, &u.Username, &u.Email, &u.Group, &u.IsLocked, &u.CreatedOn)
	if err != nil {
		return nil, ErrNotFound
	}
	return &u, nil
}

// Get returns a single account by ID.
func (s *Service) Get(ctx context.Context, userID int) (*User, error) {
	var u User
	err := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+`
		 FROM users u JOIN user_groups g ON g.group_id = u.group_ref
		 WHERE u.user_id = $1`,
		userID,
	).Scan(&u.ID, &u.UUID, &u.Username, &u.Email, &u.Group, &u.IsLocked, &u.CreatedOn)
	if err != nil {
		return nil, ErrNotFound
	}
	return &u, nil
}

// List returns every account except the bootstrap admin, newest first.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.list(ctx,
		`SELECT `+userColumns+`
		 FROM users u JOIN user_groups g ON g.group_id = u.group_ref
		 WHERE u.email <> $1
		 ORDER BY u.created_on DESC`,
		seededAdminEmail)
}

// ListByGroup returns the accounts in one group, newest first.
func (s *Service) ListByGroup(ctx context.Context, shortGroup string) ([]User, error) {
	return s.list(ctx,
		`SELECT `+userColumns+`
		 FROM users u JOIN user_groups g ON g.group_id = u.group_ref
		 WHERE g.short_group = $1
		 ORDER BY u.created_on DESC`,
		shortGroup)
}

func (s *Service) list(ctx context.Context, query string, args ...any) ([]User, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users query: %w", err)
	}
	defer rows.Close()

	us := make([]User, 0)
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.UUID, &u.Username, &u.Email, &u.Group, &u.IsLocked, &u.CreatedOn); err != nil {
			return nil, fmt.Errorf("list users scan: %w", err)
		}
		us = append(us, u)
	}
	return us, rows.Err()
}

// EnsureAdmin seeds the bootstrap admin account if it does not exist yet.
// A blank password disables seeding.
func (s *Service) EnsureAdmin(ctx context.Context, password string) error {
	if password == "" {
		return nil
	}

	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, seededAdminEmail,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check admin: %w", err)
	}
	if exists {
		return nil
	}

	_, err = s.Create(ctx, "admin", seededAdminEmail, password, GroupAdmin)
	return err
}

// isUniqueViolation reports whether err is a Postgres unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// ─── Sentinel errors ─────────────────────────────────────────────────────────

// ErrNotFound is returned when a user ID does not resolve.
var ErrNotFound = errors.New("user not found")

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }
