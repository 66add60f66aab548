package recruit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"getready/ats-service/internal/queue"
	"getready/ats-service/internal/screening"
	"getready/ats-service/internal/upload"
)

// ─── Model ───────────────────────────────────────────────────────────────────

// JobPosting is the JSON shape of a posting returned to clients.
type JobPosting struct {
	ID                 int        `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	RequiredSkills     string     `json:"requiredSkills"` // comma-delimited
	ExperienceRequired string     `json:"experienceRequired"`
	Location           string     `json:"location"`
	JobType            string     `json:"jobType"`
	PostedOn           time.Time  `json:"postedOn"`
	Deadline           *time.Time `json:"deadline"`
	IsActive           bool       `json:"isActive"`
	PostedBy           *int       `json:"postedBy"`
}

// JobInput carries the writable fields of a posting.
type JobInput struct {
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	RequiredSkills     string     `json:"requiredSkills"`
	ExperienceRequired string     `json:"experienceRequired"`
	Location           string     `json:"location"`
	JobType            string     `json:"jobType"`
	Deadline           *time.Time `json:"deadline"`
}

// Application is the JSON shape of an application returned to clients.
type Application struct {
	ID                   int        `json:"id"`
	JobID                int        `json:"jobId"`
	CandidateID          *int       `json:"candidateId"`
	ResumeFileID         int        `json:"resumeFileId"`
	AppliedOn            time.Time  `json:"appliedOn"`
	Status               string     `json:"status"`
	AIScore              float64    `json:"aiScore"`
	AIMatchKeywords      string     `json:"aiMatchKeywords"`
	InterviewDate        string     `json:"interviewDate"`
	InterviewTime        string     `json:"interviewTime"`
	InterviewerName      string     `json:"interviewerName"`
	InterviewLocation    string     `json:"interviewLocation"`
	InterviewScheduledOn *time.Time `json:"interviewScheduledOn"`
	Notes                string     `json:"notes"`
}

// InterviewInput carries the fields written by schedule/update operations.
type InterviewInput struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	Interviewer string `json:"interviewer"`
	Location    string `json:"location"`
}

const jobColumns = `job_id, job_title, job_description, required_skills,
	experience_required, location, job_type, posted_on, deadline, is_active, posted_by`

const appColumns = `application_id, job_ref, candidate_ref, resume_ref, applied_on,
	status, COALESCE(ai_score, 0), COALESCE(ai_match_keywords, ''),
	COALESCE(interview_date, ''), COALESCE(interview_time, ''),
	COALESCE(interviewer_name, ''), COALESCE(interview_location, ''),
	interview_scheduled_on, COALESCE(notes, '')`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*JobPosting, error) {
	var j JobPosting
	err := row.Scan(
		&j.ID, &j.Title, &j.Description, &j.RequiredSkills,
		&j.ExperienceRequired, &j.Location, &j.JobType,
		&j.PostedOn, &j.Deadline, &j.IsActive, &j.PostedBy,
	)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func scanApplication(row rowScanner) (*Application, error) {
	var a Application
	err := row.Scan(
		&a.ID, &a.JobID, &a.CandidateID, &a.ResumeFileID, &a.AppliedOn,
		&a.Status, &a.AIScore, &a.AIMatchKeywords,
		&a.InterviewDate, &a.InterviewTime,
		&a.InterviewerName, &a.InterviewLocation,
		&a.InterviewScheduledOn, &a.Notes,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ─── Service ─────────────────────────────────────────────────────────────────

// Service encapsulates posting and application business logic.
type Service struct {
	pool  *pgxpool.Pool
	rdb   *redis.Client
	store *upload.Store
	rmq   *queue.RabbitMQ
}

// NewService returns a configured Service. rmq may be nil, in which case
// re-screening on skill edits is skipped.
func NewService(pool *pgxpool.Pool, rdb *redis.Client, store *upload.Store, rmq *queue.RabbitMQ) *Service {
	return &Service{pool: pool, rdb: rdb, store: store, rmq: rmq}
}

// ─── Job postings ────────────────────────────────────────────────────────────

// CreateJob inserts an active posting owned by postedBy.
func (s *Service) CreateJob(ctx context.Context, postedBy int, in JobInput) (*JobPosting, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, &ValidationError{Msg: "job title is required"}
	}

	row := s.pool.QueryRow(ctx,
		`INSERT INTO job_postings (job_title, job_description, required_skills,
		     experience_required, location, job_type, posted_on, deadline, is_active, posted_by)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW(), $7, true, $8)
		 RETURNING `+jobColumns,
		in.Title, in.Description, in.RequiredSkills,
		in.ExperienceRequired, in.Location, in.JobType, in.Deadline, postedBy,
	)
	job, err := scanJob(row)
	if err != nil {
		return nil, fmt.Errorf("createJob: %w", err)
	}
	return job, nil
}

// GetJob returns a single posting by ID.
func (s *Service) GetJob(ctx context.Context, jobID int) (*JobPosting, error) {
	job, err := scanJob(s.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM job_postings WHERE job_id = $1`, jobID))
	if err != nil {
		return nil, ErrNotFound
	}
	return job, nil
}

// ListActiveJobs returns active postings, newest first. This is the
// candidate-facing listing; the active flag gates visibility here only.
func (s *Service) ListActiveJobs(ctx context.Context) ([]JobPosting, error) {
	return s.listJobs(ctx,
		`SELECT `+jobColumns+` FROM job_postings WHERE is_active ORDER BY posted_on DESC`)
}

// ListAllJobs returns every posting regardless of the active flag (admin view).
func (s *Service) ListAllJobs(ctx context.Context) ([]JobPosting, error) {
	return s.listJobs(ctx,
		`SELECT `+jobColumns+` FROM job_postings ORDER BY posted_on DESC`)
}

func (s *Service) listJobs(ctx context.Context, query string) ([]JobPosting, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listJobs query: %w", err)
	}
	defer rows.Close()

	jobs := make([]JobPosting, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("listJobs scan: %w", err)
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

// ToggleJob flips the active flag of a posting.
func (s *Service) ToggleJob(ctx context.Context, jobID int) (*JobPosting, error) {
	job, err := scanJob(s.pool.QueryRow(ctx,
		`UPDATE job_postings SET is_active = NOT is_active
		 WHERE job_id = $1
		 RETURNING `+jobColumns,
		jobID))
	if err != nil {
		return nil, ErrNotFound
	}
	return job, nil
}

// UpdateJob overwrites the writable fields of a posting. When the required
// skills change, every application of the posting is enqueued for re-scoring
// so existing AI scores stay consistent with the new skills list (non-fatal).
func (s *Service) UpdateJob(ctx context.Context, jobID int, in JobInput) (*JobPosting, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, &ValidationError{Msg: "job title is required"}
	}

	var oldSkills string
	err := s.pool.QueryRow(ctx,
		`SELECT required_skills FROM job_postings WHERE job_id = $1`, jobID,
	).Scan(&oldSkills)
	if err != nil {
		return nil, ErrNotFound
	}

	job, err := scanJob(s.pool.QueryRow(ctx,
		`UPDATE job_postings
		 SET job_title = $1, job_description = $2, required_skills = $3,
		     experience_required = $4, location = $5, job_type = $6, deadline = $7
		 WHERE job_id = $8
		 RETURNING `+jobColumns,
		in.Title, in.Description, in.RequiredSkills,
		in.ExperienceRequired, in.Location, in.JobType, in.Deadline, jobID))
	if err != nil {
		return nil, fmt.Errorf("updateJob: %w", err)
	}

	if in.RequiredSkills != oldSkills {
		s.enqueueRescreens(ctx, jobID)
	}

	return job, nil
}

// enqueueRescreens publishes a RescreenJob for every application of jobID.
// Failures are logged and skipped; a missed re-score is recoverable by
// editing the posting again.
func (s *Service) enqueueRescreens(ctx context.Context, jobID int) {
	if s.rmq == nil {
		slog.Warn("rescreen queue unavailable, skipping", "jobId", jobID)
		return
	}

	rows, err := s.pool.Query(ctx,
		`SELECT application_id FROM applications WHERE job_ref = $1`, jobID)
	if err != nil {
		slog.Warn("enqueueRescreens query failed", "jobId", jobID, "err", err)
		return
	}
	defer rows.Close()

	var count int
	for rows.Next() {
		var appID int
		if err := rows.Scan(&appID); err != nil {
			slog.Warn("enqueueRescreens scan failed", "jobId", jobID, "err", err)
			return
		}
		err := s.rmq.PublishRescreen(ctx, queue.RescreenJob{
			ApplicationID: appID,
			JobID:         jobID,
			Reason:        "required skills changed",
		})
		if err != nil {
			slog.Warn("publish rescreen failed", "applicationId", appID, "err", err)
			continue
		}
		count++
	}
	if count > 0 {
		slog.Info("queued applications for re-screening", "jobId", jobID, "count", count)
	}
}

// ─── Submission ──────────────────────────────────────────────────────────────

// SubmitApplication stores the resume, screens it against the posting's
// required skills and persists the application at Submitted status. An empty
// or missing resume fails the whole submission before anything is persisted;
// a resume whose text cannot be extracted simply scores zero.
func (s *Service) SubmitApplication(ctx context.Context, jobID, candidateID int, resume io.Reader, originalName, notes string) (*Application, error) {
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	stored, err := s.store.Save(ctx, resume, originalName)
	if err != nil {
		if err == upload.ErrEmptyFile {
			return nil, &ValidationError{Msg: "please select a resume file"}
		}
		return nil, fmt.Errorf("store resume: %w", err)
	}

	resumeText := s.store.ReadText(stored)
	result := screening.AnalyzeResume(resumeText, job.RequiredSkills)

	app, err := scanApplication(s.pool.QueryRow(ctx,
		`INSERT INTO applications (job_ref, candidate_ref, resume_ref, applied_on,
		     status, ai_score, ai_match_keywords, notes)
		 VALUES ($1, $2, $3, NOW(), $4, $5, $6, $7)
		 RETURNING `+appColumns,
		job.ID, nullableID(candidateID), stored.ID,
		StatusSubmitted, result.Score, strings.Join(result.MatchedSkills, ", "), notes))
	if err != nil {
		return nil, fmt.Errorf("submitApplication insert: %w", err)
	}

	s.publish(ctx, "EVENT_APPLICATION_SUBMITTED", map[string]string{
		"type":          "EVENT_APPLICATION_SUBMITTED",
		"applicationId": fmt.Sprint(app.ID),
		"jobId":         fmt.Sprint(job.ID),
		"aiScore":       fmt.Sprintf("%.2f", app.AIScore),
	})

	return app, nil
}

// RescoreApplication re-runs the matching engine for one application against
// the posting's current required skills. Used by the re-screen worker.
func (s *Service) RescoreApplication(ctx context.Context, appID int) error {
	var resumeRef int
	var requiredSkills string
	err := s.pool.QueryRow(ctx,
		`SELECT a.resume_ref, j.required_skills
		 FROM applications a
		 JOIN job_postings j ON j.job_id = a.job_ref
		 WHERE a.application_id = $1`,
		appID,
	).Scan(&resumeRef, &requiredSkills)
	if err != nil {
		return ErrNotFound
	}

	resumeText := s.store.ReadTextByID(ctx, resumeRef)
	result := screening.AnalyzeResume(resumeText, requiredSkills)

	_, err = s.pool.Exec(ctx,
		`UPDATE applications SET ai_score = $1, ai_match_keywords = $2
		 WHERE application_id = $3`,
		result.Score, strings.Join(result.MatchedSkills, ", "), appID)
	if err != nil {
		return fmt.Errorf("rescoreApplication update: %w", err)
	}

	slog.Info("re-scored application",
		"applicationId", appID,
		"score", result.Score,
		"matched", result.MatchedCount,
		"experienceScore", screening.ExperienceScore(resumeText))
	return nil
}

// ─── Application queries ─────────────────────────────────────────────────────

// GetApplication returns a single application by ID.
func (s *Service) GetApplication(ctx context.Context, appID int) (*Application, error) {
	app, err := scanApplication(s.pool.QueryRow(ctx,
		`SELECT `+appColumns+` FROM applications WHERE application_id = $1`, appID))
	if err != nil {
		return nil, ErrNotFound
	}
	return app, nil
}

// ListByJob returns a posting's applications, best match first.
func (s *Service) ListByJob(ctx context.Context, jobID int) ([]Application, error) {
	return s.listApplications(ctx,
		`SELECT `+appColumns+` FROM applications
		 WHERE job_ref = $1
		 ORDER BY ai_score DESC NULLS LAST, applied_on DESC`, jobID)
}

// ListByStatus returns applications with the given status, newest first.
func (s *Service) ListByStatus(ctx context.Context, status string) ([]Application, error) {
	return s.listApplications(ctx,
		`SELECT `+appColumns+` FROM applications
		 WHERE status = $1
		 ORDER BY applied_on DESC`, status)
}

// ListByCandidate returns a candidate's applications, newest first.
func (s *Service) ListByCandidate(ctx context.Context, candidateID int) ([]Application, error) {
	return s.listApplications(ctx,
		`SELECT `+appColumns+` FROM applications
		 WHERE candidate_ref = $1
		 ORDER BY applied_on DESC`, candidateID)
}

// ListAllApplications returns every application, newest first (admin view).
func (s *Service) ListAllApplications(ctx context.Context) ([]Application, error) {
	return s.listApplications(ctx,
		`SELECT `+appColumns+` FROM applications ORDER BY applied_on DESC`)
}

func (s *Service) listApplications(ctx context.Context, query string, args ...any) ([]Application, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listApplications query: %w", err)
	}
	defer rows.Close()

	apps := make([]Application, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("listApplications scan: %w", err)
		}
		apps = append(apps, *a)
	}
	return apps, rows.Err()
}

// ─── Lifecycle ───────────────────────────────────────────────────────────────

// UpdateStatus writes a new status onto an application. Any value is
// accepted; there is no transition check, and concurrent updates are
// last-write-wins. Returns ErrNotFound if the ID does not resolve.
func (s *Service) UpdateStatus(ctx context.Context, appID int, status string) (*Application, error) {
	newStatus, err := NormalizeStatus(status)
	if err != nil {
		return nil, err
	}

	var oldStatus string
	err = s.pool.QueryRow(ctx,
		`SELECT status FROM applications WHERE application_id = $1`, appID,
	).Scan(&oldStatus)
	if err != nil {
		return nil, ErrNotFound
	}

	app, err := scanApplication(s.pool.QueryRow(ctx,
		`UPDATE applications SET status = $1
		 WHERE application_id = $2
		 RETURNING `+appColumns,
		newStatus, appID))
	if err != nil {
		return nil, fmt.Errorf("updateStatus: %w", err)
	}

	s.publish(ctx, "EVENT_STATUS_CHANGED", map[string]string{
		"type":          "EVENT_STATUS_CHANGED",
		"applicationId": fmt.Sprint(appID),
		"from":          oldStatus,
		"to":            newStatus,
	})

	return app, nil
}

// SetNote sets or replaces the free-text note on an application.
func (s *Service) SetNote(ctx context.Context, appID int, note string) (*Application, error) {
	app, err := scanApplication(s.pool.QueryRow(ctx,
		`UPDATE applications SET notes = $1
		 WHERE application_id = $2
		 RETURNING `+appColumns,
		note, appID))
	if err != nil {
		return nil, ErrNotFound
	}
	return app, nil
}

// ScheduleInterview sets the interview fields and stamps
// interview_scheduled_on. It does NOT touch the status column: moving the
// application to Interview is a separate, independent write via UpdateStatus.
func (s *Service) ScheduleInterview(ctx context.Context, appID int, in InterviewInput) (*Application, error) {
	if strings.TrimSpace(in.Date) == "" || strings.TrimSpace(in.Time) == "" {
		return nil, &ValidationError{Msg: "interview date and time are required"}
	}

	app, err := scanApplication(s.pool.QueryRow(ctx,
		`UPDATE applications
		 SET interview_date = $1, interview_time = $2,
		     interviewer_name = $3, interview_location = $4,
		     interview_scheduled_on = NOW()
		 WHERE application_id = $5
		 RETURNING `+appColumns,
		in.Date, in.Time, in.Interviewer, in.Location, appID))
	if err != nil {
		return nil, ErrNotFound
	}

	s.publish(ctx, "EVENT_INTERVIEW_SCHEDULED", map[string]string{
		"type":          "EVENT_INTERVIEW_SCHEDULED",
		"applicationId": fmt.Sprint(appID),
		"date":          in.Date,
		"time":          in.Time,
	})

	return app, nil
}

// UpdateInterview overwrites the interview fields without altering the
// original interview_scheduled_on timestamp.
func (s *Service) UpdateInterview(ctx context.Context, appID int, in InterviewInput) (*Application, error) {
	if strings.TrimSpace(in.Date) == "" || strings.TrimSpace(in.Time) == "" {
		return nil, &ValidationError{Msg: "interview date and time are required"}
	}

	app, err := scanApplication(s.pool.QueryRow(ctx,
		`UPDATE applications
		 SET interview_date = $1, interview_time = $2,
		     interviewer_name = $3, interview_location = $4
		 WHERE application_id = $5
		 RETURNING `+appColumns,
		in.Date, in.Time, in.Interviewer, in.Location, appID))
	if err != nil {
		return nil, ErrNotFound
	}
	return app, nil
}

// CancelInterview clears every interview field, leaving the status untouched.
func (s *Service) CancelInterview(ctx context.Context, appID int) (*Application, error) {
	app, err := scanApplication(s.pool.QueryRow(ctx,
		`UPDATE applications
		 SET interview_date = '', interview_time = '',
		     interviewer_name = '', interview_location = '',
		     interview_scheduled_on = NULL
		 WHERE application_id = $1
		 RETURNING `+appColumns,
		appID))
	if err != nil {
		return nil, ErrNotFound
	}
	return app, nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// publish sends a JSON event to Redis for Gateway SSE forward (non-fatal).
func (s *Service) publish(ctx context.Context, channel string, payload map[string]string) {
	if s.rdb == nil {
		return
	}
	event, _ := json.Marshal(payload)
	if err := s.rdb.Publish(ctx, channel, event).Err(); err != nil {
		slog.Warn("publish "+channel+" failed", "err", err)
	}
}

// nullableID maps the zero ID to NULL for optional foreign keys.
func nullableID(id int) *int {
	if id == 0 {
		return nil
	}
	return &id
}

// ─── Sentinel errors ─────────────────────────────────────────────────────────

// ErrNotFound is returned when a posting or application ID does not resolve.
var ErrNotFound = fmt.Errorf("not found")

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }
