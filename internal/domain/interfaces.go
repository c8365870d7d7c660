package domain

import (
	"context"
	"encoding/json"
)

// FeedbackAPI - порт к REST API Feedbucket.
type FeedbackAPI interface {
	GetProject(ctx context.Context) (Project, error)
	AddComment(ctx context.Context, feedbackID int64, comment NewComment) (json.RawMessage, error)
	ResolveFeedback(ctx context.Context, feedbackID int64) (json.RawMessage, error)
}
