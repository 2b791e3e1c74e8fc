package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/tutoring-admin-api/internal/dto"
	"github.com/noah-isme/tutoring-admin-api/internal/models"
	appErrors "github.com/noah-isme/tutoring-admin-api/pkg/errors"
	"github.com/noah-isme/tutoring-admin-api/pkg/export"
	"github.com/noah-isme/tutoring-admin-api/pkg/jobs"
	"github.com/noah-isme/tutoring-admin-api/pkg/mail"
)

const dailyReportJobType = "daily_report"

// DailyReportPayload identifies the UTC day a report covers.
type DailyReportPayload struct {
	Date        time.Time
	RequestedBy *int64
}

type dailyReportQueue interface {
	Enqueue(job jobs.Job[DailyReportPayload]) error
}

// DailyReportService enqueues daily report jobs, on demand and from the ticker.
type DailyReportService struct {
	queue  dailyReportQueue
	logger *zap.Logger
	now    func() time.Time
}

// NewDailyReportService constructs the enqueue side of the daily report.
func NewDailyReportService(queue dailyReportQueue, logger *zap.Logger) *DailyReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DailyReportService{queue: queue, logger: logger, now: time.Now}
}

// Enqueue schedules the report for date (YYYY-MM-DD). An empty date means
// yesterday.
func (s *DailyReportService) Enqueue(ctx context.Context, date string, actorID *int64) (*dto.DailyReportResponse, error) {
	day, err := s.parseDay(date)
	if err != nil {
		return nil, err
	}
	job := jobs.Job[DailyReportPayload]{
		ID:       uuid.NewString(),
		Type:     dailyReportJobType,
		Payload:  DailyReportPayload{Date: day, RequestedBy: actorID},
		Enqueued: s.now().UTC(),
	}
	if err := s.queue.Enqueue(job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue daily report")
	}
	s.logger.Info("daily report enqueued", zap.String("job_id", job.ID), zap.String("date", day.Format("2006-01-02")))
	return &dto.DailyReportResponse{JobID: job.ID, Date: day.Format("2006-01-02"), Queue: job.Enqueued}, nil
}

// RunScheduled is the ticker task: it enqueues yesterday's report.
func (s *DailyReportService) RunScheduled(ctx context.Context) {
	if _, err := s.Enqueue(ctx, "", nil); err != nil {
		s.logger.Error("scheduled daily report failed", zap.Error(err))
	}
}

func (s *DailyReportService) parseDay(date string) (time.Time, error) {
	if strings.TrimSpace(date) == "" {
		today := truncateDay(s.now().UTC())
		return today.AddDate(0, 0, -1), nil
	}
	day, err := time.Parse("2006-01-02", strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	return day, nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DailyReportConfig holds delivery settings.
type DailyReportConfig struct {
	Recipients    []string
	PublicBaseURL string
}

type reportExporter interface {
	Render(dataset export.Dataset, renderer export.Renderer, name string) (*ExportFile, error)
	Store(ref string, file *ExportFile) (*ExportResult, error)
}

// DailyReportWorker renders a day's lessons and mails them.
type DailyReportWorker struct {
	lessons  lessonLister
	exporter reportExporter
	mailer   mail.Sender
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      DailyReportConfig
}

// NewDailyReportWorker constructs a worker.
func NewDailyReportWorker(lessons lessonLister, exporter reportExporter, mailer mail.Sender, metrics *MetricsService, cfg DailyReportConfig, logger *zap.Logger) *DailyReportWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DailyReportWorker{lessons: lessons, exporter: exporter, mailer: mailer, metrics: metrics, cfg: cfg, logger: logger}
}

// Handle processes one queued daily report. A returned error makes the queue
// retry the job.
func (w *DailyReportWorker) Handle(ctx context.Context, job jobs.Job[DailyReportPayload]) error {
	err := w.handle(ctx, job)
	if err != nil {
		w.metrics.RecordReportJob(OutcomeFailure)
		return err
	}
	w.metrics.RecordReportJob(OutcomeSuccess)
	return nil
}

func (w *DailyReportWorker) handle(ctx context.Context, job jobs.Job[DailyReportPayload]) error {
	from := truncateDay(job.Payload.Date)
	to := from.AddDate(0, 0, 1)
	day := from.Format("2006-01-02")

	lessons, err := w.lessons.ListDetailed(ctx, models.LessonFilter{From: &from, To: &to})
	if err != nil {
		return fmt.Errorf("load lessons for %s: %w", day, err)
	}
	dataset := LessonDataset("Daily lessons "+day, lessons)

	csvFile, err := w.exporter.Render(dataset, export.NewCSVExporter(), "daily_"+day)
	if err != nil {
		return err
	}
	pdfFile, err := w.exporter.Render(dataset, export.NewPDFExporter(), "daily_"+day)
	if err != nil {
		return err
	}
	stored, err := w.exporter.Store(job.ID, pdfFile)
	if err != nil {
		return err
	}

	if len(w.cfg.Recipients) == 0 {
		w.logger.Warn("daily report rendered without recipients", zap.String("job_id", job.ID), zap.String("date", day))
		return nil
	}
	link := strings.TrimRight(w.cfg.PublicBaseURL, "/") + stored.URL
	msg := mail.Message{
		To:      w.cfg.Recipients,
		Subject: "Daily report " + day,
		Text:    dailySummary(day, lessons, link, stored.ExpiresAt),
		Attachments: []mail.Attachment{{
			Filename:    csvFile.Filename,
			ContentType: csvFile.ContentType,
			Content:     csvFile.Content,
		}},
	}
	if err := w.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("send daily report: %w", err)
	}
	w.logger.Info("daily report sent",
		zap.String("job_id", job.ID),
		zap.String("date", day),
		zap.Int("lessons", len(lessons)),
		zap.Int("attempt", job.Attempt))
	return nil
}

func dailySummary(day string, lessons []models.LessonDetail, link string, expires time.Time) string {
	counts := map[models.ClassStatus]int{}
	for _, l := range lessons {
		counts[l.ClassStatus]++
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Lessons on %s: %d\n", day, len(lessons))
	for _, status := range []models.ClassStatus{models.ClassStatusScheduled, models.ClassStatusGiven, models.ClassStatusNoShowStudent, models.ClassStatusNoShowTeacher} {
		fmt.Fprintf(&b, "  %s: %d\n", status, counts[status])
	}
	fmt.Fprintf(&b, "\nPDF: %s (valid until %s)\n", link, expires.UTC().Format(time.RFC1123))
	return b.String()
}
