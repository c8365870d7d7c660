package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// FlexID хранит идентификатор, который API отдаёт то строкой, то числом.
type FlexID string

// UnmarshalJSON принимает строку, число или null.
func (id *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = FlexID(n.String())
	return nil
}

// String возвращает идентификатор как строку.
func (id FlexID) String() string { return string(id) }

// Int64 пытается интерпретировать идентификатор как число.
func (id FlexID) Int64() (int64, bool) {
	v, err := strconv.ParseInt(string(id), 10, 64)
	return v, err == nil
}

// Reporter описывает автора отзыва.
type Reporter struct {
	ID    FlexID `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Comment представляет комментарий в треде отзыва.
type Comment struct {
	ID          int64    `json:"id"`
	Body        string   `json:"body"`
	Name        string   `json:"name"`
	CreatedAt   string   `json:"created_at"`
	Attachments []string `json:"attachments,omitempty"`
}

// Project содержит метаданные проекта и всю коллекцию отзывов.
// API не умеет фильтровать и пагинировать на своей стороне.
type Project struct {
	ID       FlexID           `json:"id"`
	Name     string           `json:"name"`
	URL      string           `json:"url"`
	Feedback []FeedbackRecord `json:"feedback"`
}

// Info возвращает метаданные проекта без коллекции отзывов.
func (p Project) Info() ProjectInfo {
	return ProjectInfo{ID: p.ID, Name: p.Name, URL: p.URL}
}

// ProjectInfo - метаданные проекта для ответов инструментов.
type ProjectInfo struct {
	ID   FlexID `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Selector описывает DOM-элемент, к которому привязан отзыв.
type Selector struct {
	Path               string          `json:"path,omitempty"`
	PathWithClass      string          `json:"path_with_class,omitempty"`
	Offset             json.RawMessage `json:"offset,omitempty"`
	ScrollableSelector string          `json:"scrollable_selector,omitempty"`
}

// SessionData - окружение браузера в момент отправки отзыва.
// Поля вне allow-list сохраняются в Extra и возвращаются только в полном представлении.
type SessionData struct {
	Page             string         `json:"page"`
	Device           string         `json:"device,omitempty"`
	System           string         `json:"system,omitempty"`
	Browser          string         `json:"browser,omitempty"`
	Selector         *Selector      `json:"selector,omitempty"`
	UserAgent        string         `json:"user_agent,omitempty"`
	ScreenWidth      int            `json:"screen_width,omitempty"`
	ScreenHeight     int            `json:"screen_height,omitempty"`
	ViewportWidth    int            `json:"viewport_width,omitempty"`
	ViewportHeight   int            `json:"viewport_height,omitempty"`
	WidgetVersion    string         `json:"widget_version,omitempty"`
	ConsoleLogCount  map[string]int `json:"console_log_count,omitempty"`
	DevicePixelRatio float64        `json:"device_pixel_ratio,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type sessionDataFields SessionData

var sessionDataKeys = []string{
	"page", "device", "system", "browser", "selector", "user_agent",
	"screen_width", "screen_height", "viewport_width", "viewport_height",
	"widget_version", "console_log_count", "device_pixel_ratio",
}

// UnmarshalJSON раскладывает известные поля и сохраняет остальные в Extra.
func (s *SessionData) UnmarshalJSON(data []byte) error {
	var fields sessionDataFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, key := range sessionDataKeys {
		delete(raw, key)
	}
	*s = SessionData(fields)
	s.Extra = nil
	if len(raw) > 0 {
		s.Extra = raw
	}
	return nil
}

// MarshalJSON возвращает известные поля вместе с Extra.
func (s SessionData) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(sessionDataFields(s))
	if err != nil {
		return nil, err
	}
	if len(s.Extra) == 0 {
		return base, nil
	}
	merged := make(map[string]json.RawMessage, len(s.Extra)+len(sessionDataKeys))
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for key, value := range s.Extra {
		if _, ok := merged[key]; !ok {
			merged[key] = value
		}
	}
	return json.Marshal(merged)
}

// Allowed возвращает копию только с полями allow-list.
func (s SessionData) Allowed() SessionData {
	out := s
	out.Extra = nil
	if s.Selector != nil {
		sel := *s.Selector
		out.Selector = &sel
	}
	if s.ConsoleLogCount != nil {
		counts := make(map[string]int, len(s.ConsoleLogCount))
		for k, v := range s.ConsoleLogCount {
			counts[k] = v
		}
		out.ConsoleLogCount = counts
	}
	return out
}
