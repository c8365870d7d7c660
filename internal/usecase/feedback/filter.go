package feedback

import (
	"strings"

	"feedbucket-mcp/internal/domain"
)

// Filter оставляет записи, для которых выполнены все заданные критерии.
// Порядок сохраняется; без критериев коллекция возвращается как есть.
func Filter(records []domain.FeedbackRecord, criteria domain.FeedbackFilter) []domain.FeedbackRecord {
	if criteria.Empty() {
		return records
	}
	filtered := make([]domain.FeedbackRecord, 0, len(records))
	for _, record := range records {
		if Matches(record, criteria) {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

// Matches проверяет одну запись против всех заданных критериев.
// Границы дат сравниваются как строки: API отдаёт UTC в фиксированном формате ISO-8601,
// нормализация часовых поясов не выполняется.
func Matches(record domain.FeedbackRecord, criteria domain.FeedbackFilter) bool {
	if criteria.Resolved != nil && record.Resolved() != *criteria.Resolved {
		return false
	}
	if criteria.Page != "" && !strings.Contains(record.SessionData.Page, criteria.Page) {
		return false
	}
	if criteria.Reporter != "" &&
		!strings.Contains(strings.ToLower(record.Reporter.Name), strings.ToLower(criteria.Reporter)) {
		return false
	}
	if criteria.Type != "" && record.Type != criteria.Type {
		return false
	}
	if criteria.CreatedAfter != "" && record.CreatedAt < criteria.CreatedAfter {
		return false
	}
	if criteria.CreatedBefore != "" && record.CreatedAt > criteria.CreatedBefore {
		return false
	}
	return true
}
