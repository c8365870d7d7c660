package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"feedbucket-mcp/internal/domain"
	"feedbucket-mcp/internal/infra/metrics"
)

// Идентичность автора комментария по умолчанию.
const (
	DefaultReporterName  = "AI Assistant"
	DefaultReporterEmail = "ai-assistant@feedbucket.app"
)

// Service собирает конвейер: загрузка -> фильтр -> пагинация -> проекция.
// Состояния между вызовами нет: каждый вызов заново загружает проект.
type Service struct {
	api domain.FeedbackAPI
	log zerolog.Logger
}

// NewService создаёт сервис отзывов.
func NewService(api domain.FeedbackAPI, log zerolog.Logger) *Service {
	return &Service{api: api, log: log}
}

// DataOptimization описывает, сколько записей прошло каждую стадию.
type DataOptimization struct {
	OriginalCount        int  `json:"original_count"`
	FilteredCount        int  `json:"filtered_count"`
	ReturnedCount        int  `json:"returned_count"`
	SessionDataTruncated bool `json:"session_data_truncated"`
	SummaryMode          bool `json:"summary_mode"`
}

// ListResult - конверт ответа ListFeedback.
// Заполнено ровно одно из полей Summaries/Records, в зависимости от режима.
type ListResult struct {
	Project          domain.ProjectInfo
	Summaries        []domain.FeedbackSummary
	Records          []domain.FeedbackRecord
	TotalCount       int
	DataOptimization DataOptimization
}

// Items возвращает выбранную проекцию: []FeedbackSummary или []FeedbackRecord.
func (r ListResult) Items() any {
	if r.DataOptimization.SummaryMode {
		return r.Summaries
	}
	return r.Records
}

// MarshalJSON сериализует выбранную проекцию под ключом feedback.
func (r ListResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Project          domain.ProjectInfo `json:"project"`
		Feedback         any                `json:"feedback"`
		TotalCount       int                `json:"total_count"`
		DataOptimization DataOptimization   `json:"data_optimization"`
	}{
		Project:          r.Project,
		Feedback:         r.Items(),
		TotalCount:       r.TotalCount,
		DataOptimization: r.DataOptimization,
	})
}

// ListFeedback загружает проект и применяет фильтр, пагинацию и проекцию в фиксированном порядке.
func (s *Service) ListFeedback(ctx context.Context, query domain.ListQuery) (ListResult, error) {
	project, err := s.api.GetProject(ctx)
	if err != nil {
		return ListResult{}, fmt.Errorf("load project: %w", err)
	}

	originalCount := len(project.Feedback)
	filtered := project.Feedback
	if query.Filter != nil {
		filtered = Filter(filtered, *query.Filter)
	}
	filteredCount := len(filtered)

	page := Paginate(filtered, query.Offset, query.Limit)
	returnedCount := len(page)

	result := ListResult{
		Project:    project.Info(),
		TotalCount: filteredCount,
		DataOptimization: DataOptimization{
			OriginalCount:        originalCount,
			FilteredCount:        filteredCount,
			ReturnedCount:        returnedCount,
			SessionDataTruncated: true,
			SummaryMode:          query.SummaryMode(),
		},
	}
	if query.SummaryMode() {
		result.Summaries = SummarizeAll(page)
	} else {
		result.Records = OptimizeAll(page)
	}

	metrics.ObserveListStages(originalCount, filteredCount, returnedCount)
	s.log.Debug().
		Int("original", originalCount).
		Int("filtered", filteredCount).
		Int("returned", returnedCount).
		Bool("summary", query.SummaryMode()).
		Msg("feedback: list processed")
	return result, nil
}

// GetFeedbackByID ищет отзыв перебором полной коллекции.
func (s *Service) GetFeedbackByID(ctx context.Context, id int64) (domain.FeedbackRecord, error) {
	project, err := s.api.GetProject(ctx)
	if err != nil {
		return domain.FeedbackRecord{}, fmt.Errorf("load project: %w", err)
	}
	for _, record := range project.Feedback {
		if record.ID == id {
			return record, nil
		}
	}
	return domain.FeedbackRecord{}, domain.NewNotFound(fmt.Sprintf("feedback %d", id))
}

// AddComment публикует комментарий. Без имени и почты используется идентичность ассистента.
func (s *Service) AddComment(ctx context.Context, feedbackID int64, comment domain.NewComment) (json.RawMessage, error) {
	if strings.TrimSpace(comment.ReporterName) == "" {
		comment.ReporterName = DefaultReporterName
	}
	if strings.TrimSpace(comment.ReporterEmail) == "" {
		comment.ReporterEmail = DefaultReporterEmail
	}
	raw, err := s.api.AddComment(ctx, feedbackID, comment)
	if err != nil {
		return nil, fmt.Errorf("add comment to feedback %d: %w", feedbackID, err)
	}
	s.log.Info().Int64("feedback_id", feedbackID).Bool("resolve", comment.Resolve).Msg("feedback: comment added")
	return raw, nil
}

// ResolveFeedback помечает отзыв решённым.
func (s *Service) ResolveFeedback(ctx context.Context, feedbackID int64) (json.RawMessage, error) {
	raw, err := s.api.ResolveFeedback(ctx, feedbackID)
	if err != nil {
		return nil, fmt.Errorf("resolve feedback %d: %w", feedbackID, err)
	}
	s.log.Info().Int64("feedback_id", feedbackID).Msg("feedback: resolved")
	return raw, nil
}

// ConnectionReport - результат проверки доступа к проекту.
type ConnectionReport struct {
	Project       domain.ProjectInfo `json:"project"`
	FeedbackCount int                `json:"feedback_count"`
}

// CheckConnection выполняет один запрос проекта и сообщает, что он доступен.
func (s *Service) CheckConnection(ctx context.Context) (ConnectionReport, error) {
	project, err := s.api.GetProject(ctx)
	if err != nil {
		return ConnectionReport{}, err
	}
	return ConnectionReport{Project: project.Info(), FeedbackCount: len(project.Feedback)}, nil
}
