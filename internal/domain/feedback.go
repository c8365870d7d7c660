package domain

// FeedbackType - тип отзыва, собранного виджетом.
type FeedbackType string

const (
	FeedbackTypeScreenshot FeedbackType = "screenshot"
	FeedbackTypeVideo      FeedbackType = "video"
	FeedbackTypeText       FeedbackType = "text"
)

// FeedbackTypes перечисляет допустимые типы в порядке объявления.
var FeedbackTypes = []FeedbackType{FeedbackTypeScreenshot, FeedbackTypeVideo, FeedbackTypeText}

// Valid сообщает, входит ли значение в перечисление.
func (t FeedbackType) Valid() bool {
	for _, known := range FeedbackTypes {
		if t == known {
			return true
		}
	}
	return false
}

// FeedbackRecord представляет отзыв пользователя из Feedbucket.
// Временные метки хранятся строками ISO-8601 в том виде, в котором их отдал API.
type FeedbackRecord struct {
	ID          int64        `json:"id"`
	Type        FeedbackType `json:"type"`
	Reporter    Reporter     `json:"reporter"`
	Title       string       `json:"title"`
	Text        *string      `json:"text"`
	Tags        []string     `json:"tags"`
	Attachments []string     `json:"attachments"`
	ResolvedAt  *string      `json:"resolved_at"`
	CreatedAt   string       `json:"created_at"`
	SessionData SessionData  `json:"session_data"`
	Comments    []Comment    `json:"comments"`
}

// Resolved сообщает, закрыт ли отзыв. resolved_at - единственный признак.
func (r FeedbackRecord) Resolved() bool {
	return r.ResolvedAt != nil
}

// FeedbackFilter - набор необязательных предикатов. Пустое поле означает отсутствие критерия.
type FeedbackFilter struct {
	Resolved      *bool        `json:"resolved,omitempty"`
	Page          string       `json:"page,omitempty"`
	Reporter      string       `json:"reporter,omitempty"`
	Type          FeedbackType `json:"type,omitempty"`
	CreatedAfter  string       `json:"created_after,omitempty"`
	CreatedBefore string       `json:"created_before,omitempty"`
}

// Empty сообщает, что ни один критерий не задан.
func (f FeedbackFilter) Empty() bool {
	return f.Resolved == nil && f.Page == "" && f.Reporter == "" && f.Type == "" &&
		f.CreatedAfter == "" && f.CreatedBefore == ""
}

// ListQuery описывает запрос списка отзывов.
// Нулевое значение: без фильтра, offset 0, без limit, режим summary.
type ListQuery struct {
	Filter *FeedbackFilter
	Limit  int
	Offset int
	// Full отключает summary mode и возвращает оптимизированные полные записи.
	Full bool
}

// SummaryMode сообщает, нужно ли компактное представление.
func (q ListQuery) SummaryMode() bool { return !q.Full }

// FeedbackSummary - компактная проекция отзыва.
type FeedbackSummary struct {
	ID             int64        `json:"id"`
	Type           FeedbackType `json:"type"`
	Title          string       `json:"title"`
	Text           *string      `json:"text"`
	ReporterName   string       `json:"reporter_name"`
	Page           string       `json:"page"`
	CreatedAt      string       `json:"created_at"`
	ResolvedAt     *string      `json:"resolved_at"`
	CommentCount   int          `json:"comment_count"`
	HasAttachments bool         `json:"has_attachments"`
}

// NewComment - данные для публикации комментария.
type NewComment struct {
	Body          string
	ReporterName  string
	ReporterEmail string
	Resolve       bool
}
