package feedback

import "feedbucket-mcp/internal/domain"

// Paginate возвращает срез начиная с offset длиной не больше limit.
// limit <= 0 означает "все оставшиеся"; offset за концом коллекции даёт пустой результат.
func Paginate(records []domain.FeedbackRecord, offset, limit int) []domain.FeedbackRecord {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(records) {
		return []domain.FeedbackRecord{}
	}
	end := len(records)
	if limit > 0 && limit < end-offset {
		end = offset + limit
	}
	return records[offset:end]
}
