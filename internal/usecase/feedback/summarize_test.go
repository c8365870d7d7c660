package feedback

import (
	"encoding/json"
	"strings"
	"testing"

	"feedbucket-mcp/internal/domain"
)

func TestSummaryTruncation(t *testing.T) {
	long := strings.Repeat("a", 250)
	exact := strings.Repeat("b", 200)
	tests := []struct {
		name string
		text *string
		want *string
	}{
		{name: "long", text: &long, want: strPtr(strings.Repeat("a", 200) + truncationMarker)},
		{name: "exactly limit", text: &exact, want: &exact},
		{name: "short", text: strPtr("short"), want: strPtr("short")},
		{name: "null", text: nil, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(record(1, func(r *domain.FeedbackRecord) { r.Text = tt.text })).Text
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("nil mismatch: got %v, want %v", got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Fatalf("got %q, want %q", *got, *tt.want)
			}
		})
	}
}

func TestSummaryTruncationCountsRunes(t *testing.T) {
	text := strings.Repeat("я", 201)
	got := Summarize(record(1, func(r *domain.FeedbackRecord) { r.Text = &text })).Text
	if got == nil || *got != strings.Repeat("я", 200)+truncationMarker {
		t.Fatalf("ожидали обрезку по символам, получили %v", got)
	}
}

func TestSummaryDerivedFields(t *testing.T) {
	r := record(7, func(r *domain.FeedbackRecord) {
		r.Comments = []domain.Comment{{ID: 1}, {ID: 2}}
		r.Attachments = []string{"https://cdn.example.com/shot.png"}
		r.ResolvedAt = strPtr("2025-01-09T00:00:00Z")
	})
	s := Summarize(r)
	if s.ID != 7 || s.ReporterName != "Jane Doe" || s.Page != "https://example.com/home" {
		t.Fatalf("неожиданная проекция: %+v", s)
	}
	if s.CommentCount != 2 || !s.HasAttachments {
		t.Fatalf("ожидали 2 комментария и вложения: %+v", s)
	}
	if s.ResolvedAt == nil || *s.ResolvedAt != "2025-01-09T00:00:00Z" {
		t.Fatalf("resolved_at не перенесён")
	}
	if Summarize(record(8)).HasAttachments {
		t.Fatal("expected no attachments")
	}
}

func TestOptimizeKeepsAllowListOnly(t *testing.T) {
	var data domain.SessionData
	raw := `{"page":"/checkout","device":"desktop","selector":{"path":"#pay","path_with_class":"#pay.btn","scrollable_selector":"main"},"device_pixel_ratio":2,"console_log_count":{"error":3},"local_storage":{"token":"x"}}`
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	original := record(1, func(r *domain.FeedbackRecord) {
		r.SessionData = data
		r.Text = strPtr(strings.Repeat("x", 300))
	})

	optimized := Optimize(original)
	if optimized.SessionData.Extra != nil {
		t.Fatalf("ожидали удаление полей вне allow-list")
	}
	if original.SessionData.Extra == nil {
		t.Fatal("оригинальная запись не должна меняться")
	}
	if optimized.SessionData.Selector.PathWithClass != "#pay.btn" || optimized.SessionData.DevicePixelRatio != 2 {
		t.Fatalf("allow-list поля потеряны: %+v", optimized.SessionData)
	}
	if len(*optimized.Text) != 300 {
		t.Fatal("оптимизированная запись не обрезает текст")
	}
	encoded, err := json.Marshal(optimized)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if strings.Contains(string(encoded), "local_storage") {
		t.Fatalf("лишнее поле в ответе: %s", encoded)
	}
}
