// Package upload stores resume files on disk under collision-resistant names
// and keeps their metadata in Postgres.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UploadFile is the metadata row for one stored resume.
type UploadFile struct {
	ID           int       `json:"id"`
	FileName     string    `json:"fileName"` // stored name: uuid + original extension
	OriginalName string    `json:"originalName"`
	IsDeleted    bool      `json:"isDeleted"`
	UploadedOn   time.Time `json:"uploadedOn"`
}

// Store persists uploads to dir and records metadata via pool.
type Store struct {
	pool *pgxpool.Pool
	dir  string
}

// NewStore returns a configured Store. The directory is created on first use.
func NewStore(pool *pgxpool.Pool, dir string) *Store {
	return &Store{pool: pool, dir: dir}
}

// Save writes the upload under a fresh random name and records its metadata.
// Empty uploads are rejected before anything touches disk or the database.
func (s *Store) Save(ctx context.Context, r io.Reader, originalName string) (*UploadFile, error) {
	if r == nil {
		return nil, ErrEmptyFile
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	stored := storedFileName(originalName)
	if err := os.WriteFile(filepath.Join(s.dir, stored), data, 0o644); err != nil {
		return nil, fmt.Errorf("write upload: %w", err)
	}

	var f UploadFile
	err = s.pool.QueryRow(ctx,
		`INSERT INTO upload_files (file_name, file_original_name, is_deleted, uploaded_on)
		 VALUES ($1, $2, false, NOW())
		 RETURNING file_id, file_name, file_original_name, is_deleted, uploaded_on`,
		stored, originalName,
	).Scan(&f.ID, &f.FileName, &f.OriginalName, &f.IsDeleted, &f.UploadedOn)
	if err != nil {
		return nil, fmt.Errorf("insert upload_files: %w", err)
	}

	return &f, nil
}

// Get returns upload metadata by id.
func (s *Store) Get(ctx context.Context, id int) (*UploadFile, error) {
	var f UploadFile
	err := s.pool.QueryRow(ctx,
		`SELECT file_id, file_name, file_original_name, is_deleted, uploaded_on
		 FROM upload_files
		 WHERE file_id = $1`,
		id,
	).Scan(&f.ID, &f.FileName, &f.OriginalName, &f.IsDeleted, &f.UploadedOn)
	if err != nil {
		return nil, ErrNotFound
	}
	return &f, nil
}

// ReadText returns the plain-text content of a stored file. Unsupported
// formats and read failures degrade to an empty string — extraction must
// never fail a submission.
func (s *Store) ReadText(f *UploadFile) string {
	path := filepath.Join(s.dir, f.FileName)
	switch strings.ToLower(filepath.Ext(f.FileName)) {
	case ".txt", ".text", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return ""
		}
		return string(data)
	case ".pdf":
		return extractPDFText(path)
	default:
		return ""
	}
}

// ReadTextByID resolves the metadata row and reads the file; it degrades to
// an empty string when the row or the file is missing.
func (s *Store) ReadTextByID(ctx context.Context, id int) string {
	f, err := s.Get(ctx, id)
	if err != nil {
		return ""
	}
	return s.ReadText(f)
}

// storedFileName builds the on-disk name: a random UUID plus the original
// extension, lowercased. Concurrent uploads therefore never collide.
func storedFileName(originalName string) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(originalName))
}

// ─── Sentinel errors ─────────────────────────────────────────────────────────

// ErrEmptyFile is returned when the uploaded file has no content.
var ErrEmptyFile = errors.New("upload is empty")

// ErrNotFound is returned when a file id does not resolve.
var ErrNotFound = errors.New("file not found")
