package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"feedbucket-mcp/internal/domain"
	"feedbucket-mcp/internal/infra/metrics"
	"feedbucket-mcp/internal/usecase/feedback"
)

// Границы пагинации list_feedback.
const (
	DefaultLimit = 20
	MaxLimit     = 50
)

// FeedbackService - операции, которые инструменты вызывают у сервиса отзывов.
type FeedbackService interface {
	ListFeedback(ctx context.Context, query domain.ListQuery) (feedback.ListResult, error)
	GetFeedbackByID(ctx context.Context, id int64) (domain.FeedbackRecord, error)
	Stats(ctx context.Context) (feedback.Stats, error)
	AddComment(ctx context.Context, feedbackID int64, comment domain.NewComment) (json.RawMessage, error)
	ResolveFeedback(ctx context.Context, feedbackID int64) (json.RawMessage, error)
	CheckConnection(ctx context.Context) (feedback.ConnectionReport, error)
}

var _ FeedbackService = (*feedback.Service)(nil)

// ConnectionInfo - сведения о настройке клиента для check_connection. Сами ключи не раскрываются.
type ConnectionInfo struct {
	BaseURL              string
	PublicKeyConfigured  bool
	PrivateKeyConfigured bool
}

// Handler обслуживает инструменты MCP поверх сервиса отзывов.
type Handler struct {
	svc  FeedbackService
	conn ConnectionInfo
	log  zerolog.Logger
}

// NewHandler создаёт обработчик инструментов.
func NewHandler(svc FeedbackService, conn ConnectionInfo, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, conn: conn, log: log}
}

type toolFunc func(ctx context.Context, args map[string]any) (any, error)

// Tools возвращает объявления инструментов вместе с обработчиками.
func (h *Handler) Tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: listFeedbackTool(), Handler: h.wrap("list_feedback", h.listFeedback)},
		{Tool: getFeedbackTool(), Handler: h.wrap("get_feedback", h.getFeedback)},
		{Tool: statsTool(), Handler: h.wrap("get_feedback_stats", h.stats)},
		{Tool: addCommentTool(), Handler: h.wrap("add_comment", h.addComment)},
		{Tool: resolveFeedbackTool(), Handler: h.wrap("resolve_feedback", h.resolveFeedback)},
		{Tool: checkConnectionTool(), Handler: h.wrap("check_connection", h.checkConnection)},
	}
}

// Register добавляет все инструменты на сервер.
func (h *Handler) Register(s *server.MCPServer) {
	for _, tool := range h.Tools() {
		s.AddTool(tool.Tool, tool.Handler)
	}
}

// wrap превращает любую ошибку в результат с флагом ошибки, чтобы вызов не ронял процесс.
func (h *Handler) wrap(name string, fn toolFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		log := h.log.With().Str("tool", name).Str("invocation_id", uuid.NewString()).Logger()

		args := req.GetArguments()
		if args == nil {
			args = map[string]any{}
		}
		out, err := fn(ctx, args)
		if err != nil {
			metrics.ObserveToolInvocation(name, start, true)
			log.Warn().Err(err).Dur("duration", time.Since(start)).Msg("tools: invocation failed")
			return mcp.NewToolResultError(err.Error()), nil
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			metrics.ObserveToolInvocation(name, start, true)
			log.Error().Err(err).Msg("tools: encode result")
			return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
		}
		metrics.ObserveToolInvocation(name, start, false)
		log.Debug().Dur("duration", time.Since(start)).Int("bytes", len(data)).Msg("tools: invocation done")
		return mcp.NewToolResultText(string(data)), nil
	}
}

// Pagination подсказывает клиенту, есть ли следующая страница.
type Pagination struct {
	Offset     int  `json:"offset"`
	Limit      int  `json:"limit"`
	HasMore    bool `json:"has_more"`
	NextOffset *int `json:"next_offset,omitempty"`
}

type listResponse struct {
	Project          domain.ProjectInfo        `json:"project"`
	Feedback         any                       `json:"feedback"`
	TotalCount       int                       `json:"total_count"`
	DataOptimization feedback.DataOptimization `json:"data_optimization"`
	Pagination       Pagination                `json:"pagination"`
}

func (h *Handler) listFeedback(ctx context.Context, args map[string]any) (any, error) {
	query, err := parseListQuery(args)
	if err != nil {
		return nil, err
	}
	if err := feedback.ValidateListQuery(query); err != nil {
		return nil, err
	}
	result, err := h.svc.ListFeedback(ctx, query)
	if err != nil {
		return nil, err
	}
	opt := result.DataOptimization
	page := Pagination{
		Offset:  query.Offset,
		Limit:   query.Limit,
		HasMore: query.Offset+opt.ReturnedCount < opt.FilteredCount,
	}
	if page.HasMore {
		next := query.Offset + opt.ReturnedCount
		page.NextOffset = &next
	}
	return listResponse{
		Project:          result.Project,
		Feedback:         result.Items(),
		TotalCount:       result.TotalCount,
		DataOptimization: opt,
		Pagination:       page,
	}, nil
}

func parseListQuery(args map[string]any) (domain.ListQuery, error) {
	problems := &domain.ValidationError{}
	filter := domain.FeedbackFilter{
		Page:          stringArg(args, "page"),
		Reporter:      stringArg(args, "reporter"),
		Type:          domain.FeedbackType(stringArg(args, "type")),
		CreatedAfter:  stringArg(args, "created_after"),
		CreatedBefore: stringArg(args, "created_before"),
	}
	resolved, err := boolArg(args, "resolved")
	if err != nil {
		problems.Add("%v", err)
	}
	filter.Resolved = resolved

	query := domain.ListQuery{Limit: DefaultLimit}
	if !filter.Empty() {
		query.Filter = &filter
	}
	limit, err := intArg(args, "limit")
	switch {
	case err != nil:
		problems.Add("%v", err)
	case limit != nil && *limit < 1:
		problems.Add("limit must be between 1 and %d; got %d", MaxLimit, *limit)
	case limit != nil && *limit > MaxLimit:
		query.Limit = MaxLimit
	case limit != nil:
		query.Limit = int(*limit)
	}
	offset, err := intArg(args, "offset")
	switch {
	case err != nil:
		problems.Add("%v", err)
	case offset != nil:
		query.Offset = int(*offset)
	}
	summary, err := boolArg(args, "summary")
	switch {
	case err != nil:
		problems.Add("%v", err)
	case summary != nil:
		query.Full = !*summary
	}
	return query, problems.OrNil()
}

func (h *Handler) getFeedback(ctx context.Context, args map[string]any) (any, error) {
	id, err := requiredIntArg(args, "feedback_id")
	if err != nil {
		return nil, err
	}
	if err := feedback.ValidateFeedbackID(id); err != nil {
		return nil, err
	}
	return h.svc.GetFeedbackByID(ctx, id)
}

func (h *Handler) stats(ctx context.Context, _ map[string]any) (any, error) {
	return h.svc.Stats(ctx)
}

type writeResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Comment json.RawMessage `json:"comment,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
}

func (h *Handler) addComment(ctx context.Context, args map[string]any) (any, error) {
	id, err := requiredIntArg(args, "feedback_id")
	if err != nil {
		return nil, err
	}
	resolve, err := boolArg(args, "resolve")
	if err != nil {
		return nil, err
	}
	comment := domain.NewComment{
		Body:          stringArg(args, "body"),
		ReporterName:  stringArg(args, "reporter_name"),
		ReporterEmail: stringArg(args, "reporter_email"),
		Resolve:       resolve != nil && *resolve,
	}
	if err := feedback.ValidateComment(id, comment); err != nil {
		return nil, err
	}
	raw, err := h.svc.AddComment(ctx, id, comment)
	if err != nil {
		return nil, err
	}
	message := fmt.Sprintf("Comment added to feedback %d", id)
	if comment.Resolve {
		message += " and feedback marked as resolved"
	}
	return writeResponse{Success: true, Message: message, Comment: raw}, nil
}

func (h *Handler) resolveFeedback(ctx context.Context, args map[string]any) (any, error) {
	id, err := requiredIntArg(args, "feedback_id")
	if err != nil {
		return nil, err
	}
	if err := feedback.ValidateFeedbackID(id); err != nil {
		return nil, err
	}
	raw, err := h.svc.ResolveFeedback(ctx, id)
	if err != nil {
		return nil, err
	}
	return writeResponse{Success: true, Message: fmt.Sprintf("Feedback %d marked as resolved", id), Result: raw}, nil
}

type connectionResponse struct {
	Status               string              `json:"status"`
	Project              *domain.ProjectInfo `json:"project,omitempty"`
	FeedbackCount        int                 `json:"feedback_count"`
	BaseURL              string              `json:"base_url"`
	PublicKeyConfigured  bool                `json:"public_key_configured"`
	PrivateKeyConfigured bool                `json:"private_key_configured"`
	Error                string              `json:"error,omitempty"`
}

// checkConnection - диагностика: ошибка API попадает в поле error, а не в ошибку вызова.
func (h *Handler) checkConnection(ctx context.Context, _ map[string]any) (any, error) {
	resp := connectionResponse{
		BaseURL:              h.conn.BaseURL,
		PublicKeyConfigured:  h.conn.PublicKeyConfigured,
		PrivateKeyConfigured: h.conn.PrivateKeyConfigured,
	}
	report, err := h.svc.CheckConnection(ctx)
	if err != nil {
		resp.Status = "error"
		resp.Error = err.Error()
		return resp, nil
	}
	resp.Status = "connected"
	resp.Project = &report.Project
	resp.FeedbackCount = report.FeedbackCount
	return resp, nil
}
