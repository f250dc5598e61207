package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/bicired/bicired-api/internal/dto"
	"github.com/bicired/bicired-api/internal/models"
	"github.com/bicired/bicired-api/internal/repository"
	"github.com/bicired/bicired-api/internal/schedule"
	appErrors "github.com/bicired/bicired-api/pkg/errors"
	"github.com/bicired/bicired-api/pkg/export"
	"github.com/bicired/bicired-api/pkg/jobs"
	"github.com/bicired/bicired-api/pkg/storage"
)

// dateLayout is how available instants are presented to clients: local wall
// clock in the scheduling zone, no offset suffix.
const dateLayout = "2006-01-02T15:04:05"

const exportJobType = "agenda_export"

type scheduleTemplateRepository interface {
	FindTemplate(ctx context.Context) (*models.ScheduleTemplate, error)
	UpsertTemplate(ctx context.Context, grid schedule.Grid, updatedBy *string) (*models.ScheduleTemplate, error)
	ListScheduledPickups(ctx context.Context, start, end time.Time) ([]models.AgendaEntry, error)
	ListScheduledReturns(ctx context.Context, start, end time.Time) ([]models.AgendaEntry, error)
	CreateExportJob(ctx context.Context, job *models.ExportJob) error
	FindExportJob(ctx context.Context, id string) (*models.ExportJob, error)
	CompleteExportJob(ctx context.Context, id string, status models.ExportJobStatus, filePath, errMessage *string) error
}

type scheduleSubmissionRepository interface {
	FindByUser(ctx context.Context, userID string) (*models.Submission, error)
	UpdatePickupSchedule(ctx context.Context, id string, at time.Time) error
}

type scheduleBookingRepository interface {
	FindActiveByUser(ctx context.Context, userID string) (*models.Booking, error)
	UpdateReturnSchedule(ctx context.Context, id string, at time.Time) error
}

type scheduleCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string)
}

type exportQueue interface {
	Enqueue(job jobs.Job) error
}

// ScheduleService owns the weekly availability template and everything
// derived from it: available pickup and return instants, date commits, the
// staff agendas and their exports.
type ScheduleService struct {
	templates   scheduleTemplateRepository
	submissions scheduleSubmissionRepository
	bookings    scheduleBookingRepository
	cache       scheduleCache
	cacheTTL    time.Duration
	validator   *validator.Validate
	logger      *zap.Logger

	queue     exportQueue
	files     *storage.LocalStorage
	signer    *storage.SignedURLSigner
	renderers map[string]export.Renderer

	now func() time.Time
}

// NewScheduleService constructs the service. Queue, files and signer may be
// nil when exports are disabled.
func NewScheduleService(
	templates scheduleTemplateRepository,
	submissions scheduleSubmissionRepository,
	bookings scheduleBookingRepository,
	cache scheduleCache,
	cacheTTL time.Duration,
	validate *validator.Validate,
	logger *zap.Logger,
	files *storage.LocalStorage,
	signer *storage.SignedURLSigner,
) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ScheduleService{
		templates:   templates,
		submissions: submissions,
		bookings:    bookings,
		cache:       cache,
		cacheTTL:    cacheTTL,
		validator:   validate,
		logger:      logger,
		files:       files,
		signer:      signer,
		renderers: map[string]export.Renderer{
			"csv": export.NewCSV(),
			"pdf": export.NewPDF(),
		},
		now: time.Now,
	}
}

// SetQueue attaches the export worker queue once it is built. The queue
// handler calls back into ProcessExportJob, so wiring happens in two steps.
func (s *ScheduleService) SetQueue(queue exportQueue) {
	s.queue = queue
}

// GetTemplate returns the stored weekly grid, or an all-closed grid when no
// administrator has configured one yet.
func (s *ScheduleService) GetTemplate(ctx context.Context) (*dto.ScheduleResponse, error) {
	grid, err := s.loadGrid(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			var closed schedule.Grid
			return &dto.ScheduleResponse{Schedule: closed.Rows()}, nil
		}
		return nil, err
	}
	return &dto.ScheduleResponse{Schedule: grid.Rows()}, nil
}

// UpdateTemplate replaces the weekly grid wholesale.
func (s *ScheduleService) UpdateTemplate(ctx context.Context, req dto.UpdateScheduleRequest, updatedBy string) (*dto.ScheduleResponse, error) {
	grid, err := schedule.ParseGrid(req.Schedule)
	if err != nil {
		return nil, appErrors.ErrMalformedSchedule
	}

	var by *string
	if updatedBy != "" {
		by = &updatedBy
	}
	tpl, err := s.templates.UpsertTemplate(ctx, grid, by)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store schedule template")
	}
	if s.cache != nil {
		s.cache.Delete(ctx, repository.CacheKeyScheduleTemplate)
	}
	return &dto.ScheduleResponse{Schedule: tpl.Slots.Rows()}, nil
}

// AvailableDates computes the instants the caller may choose from. A rider
// holding a bicycle gets return instants anchored to the loan deadline; a
// rider with a pending submission gets pickup instants starting now. A
// rider with neither has nothing to schedule.
func (s *ScheduleService) AvailableDates(ctx context.Context, userID string) (*dto.AvailableDatesResponse, error) {
	grid, err := s.loadGrid(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrOutOfService
		}
		return nil, err
	}

	now := s.now().In(schedule.Location())

	purpose := "pickup"
	var window schedule.Window

	booking, err := s.bookings.FindActiveByUser(ctx, userID)
	switch {
	case err == nil:
		purpose = "return"
		window = schedule.ReturnWindow(now, booking.Start, booking.Duration)
	case errors.Is(err, sql.ErrNoRows):
		if _, err := s.submissions.FindByUser(ctx, userID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.ErrSubmissionNotFound
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
		}
		window = schedule.PickupWindow(now)
	default:
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}

	instants := schedule.Matches(grid, window).Collect()
	dates := make([]string, 0, len(instants))
	for _, instant := range instants {
		dates = append(dates, instant.In(schedule.Location()).Format(dateLayout))
	}

	return &dto.AvailableDatesResponse{Purpose: purpose, Dates: dates}, nil
}

// ChooseDate commits one instant onto the caller's pending submission or
// active booking. The instant is parsed in the scheduling zone; it is not
// re-checked against the availability set, staff tolerate off-grid commits
// made over the counter.
func (s *ScheduleService) ChooseDate(ctx context.Context, userID string, req dto.ChooseDateRequest) error {
	at, err := parseLocalDate(req.Date)
	if err != nil {
		return appErrors.ErrInvalidDate
	}

	booking, err := s.bookings.FindActiveByUser(ctx, userID)
	if err == nil {
		if err := s.bookings.UpdateReturnSchedule(ctx, booking.ID, at); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store return schedule")
		}
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}

	submission, err := s.submissions.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrSubmissionNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}
	if err := s.submissions.UpdatePickupSchedule(ctx, submission.ID, at); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store pickup schedule")
	}
	return nil
}

// Agenda returns the scheduled pickups or returns for one calendar month.
// Zero year or month default to the current month in the scheduling zone.
func (s *ScheduleService) Agenda(ctx context.Context, kind models.AgendaKind, year, month int) ([]models.AgendaEntry, error) {
	start, end := monthRange(s.now(), year, month)

	var entries []models.AgendaEntry
	var err error
	switch kind {
	case models.AgendaPickups:
		entries, err = s.templates.ListScheduledPickups(ctx, start, end)
	case models.AgendaReturns:
		entries, err = s.templates.ListScheduledReturns(ctx, start, end)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown agenda kind %q", kind))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load agenda")
	}
	if entries == nil {
		entries = []models.AgendaEntry{}
	}
	return entries, nil
}

// RequestExport persists a pending export job and hands it to the worker
// queue.
func (s *ScheduleService) RequestExport(ctx context.Context, req dto.CreateExportRequest, requestedBy string) (*models.ExportJob, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export payload")
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "exports are disabled")
	}

	job := &models.ExportJob{
		Kind:        models.AgendaKind(req.Kind),
		Format:      req.Format,
		Year:        req.Year,
		Month:       req.Month,
		Status:      models.ExportPending,
		RequestedBy: requestedBy,
	}
	if err := s.templates.CreateExportJob(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist export job")
	}

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: exportJobType, Payload: job.ID}); err != nil {
		s.logger.Error("failed to enqueue export job", zap.String("job_id", job.ID), zap.Error(err))
		msg := "queue unavailable"
		if completeErr := s.templates.CompleteExportJob(ctx, job.ID, models.ExportFailed, nil, &msg); completeErr != nil {
			s.logger.Warn("failed to mark export job failed", zap.Error(completeErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export job")
	}
	return job, nil
}

// ProcessExportJob renders one queued agenda export and records the
// outcome. It is the queue handler.
func (s *ScheduleService) ProcessExportJob(ctx context.Context, jobID string) error {
	job, err := s.templates.FindExportJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load export job %s: %w", jobID, err)
	}

	path, renderErr := s.renderExport(ctx, job)
	if renderErr != nil {
		msg := renderErr.Error()
		if err := s.templates.CompleteExportJob(ctx, job.ID, models.ExportFailed, nil, &msg); err != nil {
			s.logger.Warn("failed to mark export job failed", zap.String("job_id", job.ID), zap.Error(err))
		}
		return renderErr
	}

	if err := s.templates.CompleteExportJob(ctx, job.ID, models.ExportCompleted, &path, nil); err != nil {
		return fmt.Errorf("complete export job %s: %w", job.ID, err)
	}
	s.logger.Info("agenda export completed", zap.String("job_id", job.ID), zap.String("file", path))
	return nil
}

// ExportStatus reports a job and, once the file exists, a signed download
// URL.
func (s *ScheduleService) ExportStatus(ctx context.Context, id string) (*dto.ExportStatusResponse, error) {
	job, err := s.templates.FindExportJob(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export job")
	}

	resp := &dto.ExportStatusResponse{ID: job.ID, Status: string(job.Status), Error: job.Error}
	if job.Status == models.ExportCompleted && job.FilePath != nil && s.signer != nil {
		token, _, err := s.signer.Generate(job.ID, *job.FilePath)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download url")
		}
		url := "/api/v1/schedule/exports/download?token=" + token
		resp.DownloadURL = &url
	}
	return resp, nil
}

// OpenExportFile resolves a signed download token to the exported file.
func (s *ScheduleService) OpenExportFile(token string) (string, error) {
	if s.signer == nil || s.files == nil {
		return "", appErrors.Clone(appErrors.ErrInternal, "exports are disabled")
	}
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download token")
	}
	return s.files.Path(relPath), nil
}

func (s *ScheduleService) renderExport(ctx context.Context, job *models.ExportJob) (string, error) {
	renderer, ok := s.renderers[job.Format]
	if !ok {
		return "", fmt.Errorf("unknown export format %q", job.Format)
	}
	if s.files == nil {
		return "", fmt.Errorf("export storage not configured")
	}

	entries, err := s.Agenda(ctx, job.Kind, job.Year, job.Month)
	if err != nil {
		return "", err
	}

	title := fmt.Sprintf("Agenda %s %04d-%02d", job.Kind, job.Year, job.Month)
	table := export.Table{
		Title:   title,
		Headers: []string{"Fecha", "Hora", "Nombre", "Apellido", "Modelo"},
	}
	for _, entry := range entries {
		local := entry.ScheduledAt.In(schedule.Location())
		table.Rows = append(table.Rows, []string{
			local.Format("2006-01-02"),
			local.Format("15:04"),
			entry.UserName,
			entry.UserLastName,
			entry.ModelName,
		})
	}

	data, err := renderer.Render(table)
	if err != nil {
		return "", err
	}

	filename := fmt.Sprintf("%s-%04d-%02d-%s.%s", job.Kind, job.Year, job.Month, job.ID, renderer.Extension())
	if _, err := s.files.Save(filename, data); err != nil {
		return "", fmt.Errorf("save export file: %w", err)
	}
	return filename, nil
}

func (s *ScheduleService) loadGrid(ctx context.Context) (schedule.Grid, error) {
	var grid schedule.Grid
	if s.cache != nil {
		if err := s.cache.Get(ctx, repository.CacheKeyScheduleTemplate, &grid); err == nil {
			return grid, nil
		}
	}

	tpl, err := s.templates.FindTemplate(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return grid, err
		}
		return grid, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule template")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, repository.CacheKeyScheduleTemplate, tpl.Slots, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache schedule template", zap.Error(err))
		}
	}
	return tpl.Slots, nil
}

func parseLocalDate(raw string) (time.Time, error) {
	loc := schedule.Location()
	for _, layout := range []string{time.RFC3339, dateLayout, "2006-01-02T15:04"} {
		if at, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return at, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", raw)
}

func monthRange(now time.Time, year, month int) (time.Time, time.Time) {
	loc := schedule.Location()
	local := now.In(loc)
	if year == 0 {
		year = local.Year()
	}
	if month == 0 {
		month = int(local.Month())
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}
