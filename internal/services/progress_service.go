package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/darijalingo/practice-engine/internal/models"
	"github.com/darijalingo/practice-engine/internal/repositories"
	"github.com/xuri/excelize/v2"
)

const (
	XPPerLevel       = 500
	exportPageSize   = 100
	sessionSheetName = "Sessions"
)

type levelTitle struct {
	maxLevel int
	title    string
}

var levelTitles = []levelTitle{
	{3, "Beginner"},
	{6, "Elementary"},
	{10, "Intermediate"},
	{15, "Upper Intermediate"},
	{20, "Advanced"},
}

type progressService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewProgressService(repo repositories.Repository, logger *slog.Logger) ProgressService {
	if logger == nil {
		logger = slog.Default()
	}
	return &progressService{repo: repo, logger: logger}
}

func (s *progressService) GetProgress(ctx context.Context, learnerID string) (*models.Progress, error) {
	if err := requireLearner(learnerID); err != nil {
		return nil, err
	}

	total, err := s.repo.XPLedger().SumByLearner(ctx, nil, learnerID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.repo.SessionRecords().CountByLearner(ctx, nil, learnerID)
	if err != nil {
		return nil, err
	}
	failed, err := s.repo.XPLedger().CountByStatus(ctx, nil, learnerID, models.SyncFailed)
	if err != nil {
		return nil, err
	}
	pending, err := s.repo.XPLedger().CountByStatus(ctx, nil, learnerID, models.SyncPending)
	if err != nil {
		return nil, err
	}

	p := LevelProgress(total)
	p.LearnerID = learnerID
	p.SessionsPlayed = sessions
	p.UnsyncedCredits = failed + pending
	return &p, nil
}

// LevelProgress derives level figures from a total XP amount.
func LevelProgress(totalXP int) models.Progress {
	if totalXP < 0 {
		totalXP = 0
	}
	level := totalXP/XPPerLevel + 1
	into := totalXP % XPPerLevel
	return models.Progress{
		TotalXP:          totalXP,
		Level:            level,
		LevelTitle:       LevelTitle(level),
		XPIntoLevel:      into,
		XPToNextLevel:    XPPerLevel - into,
		LevelProgressPct: float64(into) / float64(XPPerLevel) * 100,
	}
}

func LevelTitle(level int) string {
	for _, t := range levelTitles {
		if level <= t.maxLevel {
			return t.title
		}
	}
	return "Master"
}

func (s *progressService) ListSessions(ctx context.Context, learnerID string, filters repositories.SessionFilters) (*SessionHistoryResponse, error) {
	if err := requireLearner(learnerID); err != nil {
		return nil, err
	}
	records, total, err := s.repo.SessionRecords().ListByLearner(ctx, nil, learnerID, filters)
	if err != nil {
		return nil, err
	}
	return &SessionHistoryResponse{
		Sessions: records,
		Total:    total,
		Limit:    filters.Limit,
		Offset:   filters.Offset,
	}, nil
}

// ExportSessions writes the learner's full session history as an XLSX workbook.
func (s *progressService) ExportSessions(ctx context.Context, learnerID string, w io.Writer) error {
	if err := requireLearner(learnerID); err != nil {
		return err
	}

	var records []*models.SessionRecord
	for offset := 0; ; offset += exportPageSize {
		page, total, err := s.repo.SessionRecords().ListByLearner(ctx, nil, learnerID, repositories.SessionFilters{
			Limit:     exportPageSize,
			Offset:    offset,
			SortOrder: "asc",
		})
		if err != nil {
			return err
		}
		records = append(records, page...)
		if len(page) == 0 || int64(len(records)) >= total {
			break
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sessionSheetName); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	headers := []string{
		"Completed At", "Session ID", "Level", "Games", "Correct", "XP Earned", "Fallback",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sessionSheetName, cell, header)
	}

	for rowIndex, r := range records {
		row := []interface{}{
			r.CompletedAt.UTC().Format("2006-01-02 15:04:05"),
			r.SessionID,
			r.LevelLabel,
			r.GameCount,
			r.CorrectCount,
			r.TotalXPEarned,
			r.Fallback,
		}
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sessionSheetName, cell, value)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Exported session history", "learner_id", learnerID, "sessions", len(records))
	return nil
}
