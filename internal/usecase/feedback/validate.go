package feedback

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"feedbucket-mcp/internal/domain"
)

// Допустимые формы временных меток в фильтре. Сравнение всё равно строковое.
var timestampLayouts = []string{time.RFC3339, time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// ValidateFilter проверяет критерии фильтра, полученные от недоверенного вызывающего.
func ValidateFilter(f domain.FeedbackFilter) error {
	problems := &domain.ValidationError{}
	if f.Type != "" && !f.Type.Valid() {
		problems.Add("type must be one of screenshot, video, text; got %q", f.Type)
	}
	if f.CreatedAfter != "" && !looksLikeTimestamp(f.CreatedAfter) {
		problems.Add("created_after must be an ISO-8601 timestamp; got %q", f.CreatedAfter)
	}
	if f.CreatedBefore != "" && !looksLikeTimestamp(f.CreatedBefore) {
		problems.Add("created_before must be an ISO-8601 timestamp; got %q", f.CreatedBefore)
	}
	return problems.OrNil()
}

// ValidateListQuery проверяет пагинацию и вложенный фильтр.
func ValidateListQuery(q domain.ListQuery) error {
	problems := &domain.ValidationError{}
	if q.Limit < 0 {
		problems.Add("limit must be a positive integer; got %d", q.Limit)
	}
	if q.Offset < 0 {
		problems.Add("offset must not be negative; got %d", q.Offset)
	}
	if q.Filter != nil {
		if err := ValidateFilter(*q.Filter); err != nil {
			var verr *domain.ValidationError
			if errors.As(err, &verr) {
				problems.Problems = append(problems.Problems, verr.Problems...)
			}
		}
	}
	return problems.OrNil()
}

// ValidateFeedbackID проверяет идентификатор отзыва.
func ValidateFeedbackID(id int64) error {
	if id <= 0 {
		return &domain.ValidationError{Problems: []string{"feedback_id must be a positive integer"}}
	}
	return nil
}

// ValidateComment проверяет комментарий перед отправкой.
func ValidateComment(feedbackID int64, c domain.NewComment) error {
	problems := &domain.ValidationError{}
	if feedbackID <= 0 {
		problems.Add("feedback_id must be a positive integer")
	}
	if strings.TrimSpace(c.Body) == "" {
		problems.Add("body must not be empty")
	}
	if c.ReporterEmail != "" {
		if _, err := mail.ParseAddress(c.ReporterEmail); err != nil {
			problems.Add("reporter_email is not a valid address; got %q", c.ReporterEmail)
		}
	}
	return problems.OrNil()
}

func looksLikeTimestamp(value string) bool {
	for _, layout := range timestampLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}
