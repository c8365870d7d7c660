package feedback

import (
	"context"
	"encoding/json"
	"fmt"

	"feedbucket-mcp/internal/domain"
)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func record(id int64, opts ...func(*domain.FeedbackRecord)) domain.FeedbackRecord {
	r := domain.FeedbackRecord{
		ID:        id,
		Type:      domain.FeedbackTypeScreenshot,
		Title:     fmt.Sprintf("feedback %d", id),
		Reporter:  domain.Reporter{Name: "Jane Doe", Email: "jane@example.com"},
		CreatedAt: fmt.Sprintf("2025-01-%02dT10:00:00Z", id%28+1),
		SessionData: domain.SessionData{
			Page: "https://example.com/home",
		},
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func records(n int) []domain.FeedbackRecord {
	out := make([]domain.FeedbackRecord, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, record(int64(i)))
	}
	return out
}

func ids(rs []domain.FeedbackRecord) []int64 {
	out := make([]int64, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}

type stubAPI struct {
	project     domain.Project
	err         error
	calls       int
	comment     domain.NewComment
	commentedID int64
	resolvedID  int64
}

func (s *stubAPI) GetProject(context.Context) (domain.Project, error) {
	s.calls++
	if s.err != nil {
		return domain.Project{}, s.err
	}
	return s.project, nil
}

func (s *stubAPI) AddComment(_ context.Context, id int64, c domain.NewComment) (json.RawMessage, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.commentedID = id
	s.comment = c
	return json.RawMessage(`{"id":1}`), nil
}

func (s *stubAPI) ResolveFeedback(_ context.Context, id int64) (json.RawMessage, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.resolvedID = id
	return json.RawMessage(`{"resolved":true}`), nil
}
