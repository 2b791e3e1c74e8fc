package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tutoring-admin-api/internal/calendar"
	"github.com/noah-isme/tutoring-admin-api/internal/models"
	appErrors "github.com/noah-isme/tutoring-admin-api/pkg/errors"
	"github.com/noah-isme/tutoring-admin-api/pkg/export"
	"github.com/noah-isme/tutoring-admin-api/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type urlSigner interface {
	Generate(ref, relPath string) (string, time.Time, error)
	Parse(token string) (ref, relPath string, err error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportFile is a rendered export held in memory.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ExportResult describes a stored export and its signed download link.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	ExpiresAt    time.Time
}

// ExportDownload is an opened stored export.
type ExportDownload struct {
	File        *os.File
	Filename    string
	ContentType string
}

var lessonHeaders = []string{"ID", "Start", "End", "Student", "Teacher", "Class Type", "Class Status", "Payment Status"}

// ExportService renders lesson datasets and keeps rendered files on disk
// behind signed download tokens.
type ExportService struct {
	lessons lessonLister
	storage fileStorage
	signer  urlSigner
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(lessons lessonLister, storage fileStorage, signer urlSigner, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportService{lessons: lessons, storage: storage, signer: signer, logger: logger, cfg: cfg}
}

// LessonDataset tabulates lessons in start order.
func LessonDataset(title string, lessons []models.LessonDetail) export.Dataset {
	rows := make([]map[string]string, 0, len(lessons))
	for _, l := range lessons {
		student := models.User{FirstName: l.StudentFirstName, LastName: l.StudentLastName}
		teacher := models.User{FirstName: l.TeacherFirstName, LastName: l.TeacherLastName}
		rows = append(rows, map[string]string{
			"ID":             fmt.Sprintf("%d", l.ID),
			"Start":          l.StartAt.UTC().Format("2006-01-02 15:04"),
			"End":            l.EndAt.UTC().Format("2006-01-02 15:04"),
			"Student":        student.FullName(),
			"Teacher":        teacher.FullName(),
			"Class Type":     l.ClassType,
			"Class Status":   string(l.ClassStatus),
			"Payment Status": string(l.PaymentStatus),
		})
	}
	return export.Dataset{Title: title, Headers: lessonHeaders, Rows: rows}
}

// ExportLessons renders the lessons matching filter in format (csv or pdf),
// scoped to what viewer may list.
func (s *ExportService) ExportLessons(ctx context.Context, viewer calendar.Viewer, filter models.LessonFilter, format string) (*ExportFile, error) {
	filter = scopeLessonFilter(viewer, filter)
	renderer, err := export.ForFormat(strings.ToLower(format))
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	lessons, err := s.lessons.ListDetailed(ctx, filter)
	if err != nil {
		return nil, appErrors.Store(err, "failed to load lessons")
	}
	title := "Lessons"
	if filter.From != nil && filter.To != nil {
		title = fmt.Sprintf("Lessons %s to %s", filter.From.UTC().Format("2006-01-02"), filter.To.UTC().Format("2006-01-02"))
	}
	return s.Render(LessonDataset(title, lessons), renderer, "lessons")
}

// Render turns dataset into a named file.
func (s *ExportService) Render(dataset export.Dataset, renderer export.Renderer, name string) (*ExportFile, error) {
	content, err := renderer.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	timestamp := time.Now().UTC().Format("20060102_150405")
	return &ExportFile{
		Filename:    fmt.Sprintf("%s_%s.%s", sanitizeFilename(name), timestamp, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Content:     content,
	}, nil
}

// Store saves file under ref and returns a signed download link.
func (s *ExportService) Store(ref string, file *ExportFile) (*ExportResult, error) {
	relPath, err := s.storage.Save(filepath.Join(sanitizeFilename(ref), file.Filename), file.Content)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}
	token, expiresAt, err := s.signer.Generate(ref, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export")
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/exports/%s", prefix, token),
		ExpiresAt:    expiresAt,
	}, nil
}

// ResolveDownload validates token and opens the stored file.
func (s *ExportService) ResolveDownload(token string) (*ExportDownload, error) {
	_, relPath, err := s.signer.Parse(token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "download link expired")
		}
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export no longer available")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export")
	}
	return &ExportDownload{File: file, Filename: filepath.Base(relPath), ContentType: contentTypeFor(relPath)}, nil
}

// Cleanup removes stored files older than ttl, or the configured TTL when ttl <= 0.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	removed, err := s.storage.CleanupOlderThan(ttl)
	if err != nil {
		return nil, err
	}
	if len(removed) > 0 {
		s.logger.Info("expired exports removed", zap.Int("count", len(removed)))
	}
	return removed, nil
}

func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf"
	case ".csv":
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
