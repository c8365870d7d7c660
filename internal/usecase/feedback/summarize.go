package feedback

import (
	"unicode/utf8"

	"feedbucket-mcp/internal/domain"
)

const (
	summaryTextLimit = 200
	truncationMarker = "..."
)

// Summarize строит компактную проекцию отзыва.
func Summarize(record domain.FeedbackRecord) domain.FeedbackSummary {
	return domain.FeedbackSummary{
		ID:             record.ID,
		Type:           record.Type,
		Title:          record.Title,
		Text:           truncateText(record.Text),
		ReporterName:   record.Reporter.Name,
		Page:           record.SessionData.Page,
		CreatedAt:      record.CreatedAt,
		ResolvedAt:     record.ResolvedAt,
		CommentCount:   len(record.Comments),
		HasAttachments: len(record.Attachments) > 0,
	}
}

// SummarizeAll применяет Summarize к каждой записи.
func SummarizeAll(records []domain.FeedbackRecord) []domain.FeedbackSummary {
	summaries := make([]domain.FeedbackSummary, 0, len(records))
	for _, record := range records {
		summaries = append(summaries, Summarize(record))
	}
	return summaries
}

// Optimize возвращает полную запись, в которой session_data сведена к allow-list полей.
func Optimize(record domain.FeedbackRecord) domain.FeedbackRecord {
	out := record
	out.SessionData = record.SessionData.Allowed()
	return out
}

// OptimizeAll применяет Optimize к каждой записи.
func OptimizeAll(records []domain.FeedbackRecord) []domain.FeedbackRecord {
	optimized := make([]domain.FeedbackRecord, 0, len(records))
	for _, record := range records {
		optimized = append(optimized, Optimize(record))
	}
	return optimized
}

func truncateText(text *string) *string {
	if text == nil {
		return nil
	}
	if utf8.RuneCountInString(*text) <= summaryTextLimit {
		return text
	}
	runes := []rune(*text)
	truncated := string(runes[:summaryTextLimit]) + truncationMarker
	return &truncated
}
