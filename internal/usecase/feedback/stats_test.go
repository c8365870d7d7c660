package feedback

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"feedbucket-mcp/internal/domain"
)

func TestComputeStats(t *testing.T) {
	rs := []domain.FeedbackRecord{
		record(1, func(r *domain.FeedbackRecord) {
			r.Type = domain.FeedbackTypeText
			r.CreatedAt = "2025-01-01T00:00:00Z"
			r.Comments = []domain.Comment{{ID: 1}, {ID: 2}}
		}),
		record(2, func(r *domain.FeedbackRecord) {
			r.CreatedAt = "2025-03-01T00:00:00Z"
			r.ResolvedAt = strPtr("2025-03-02T00:00:00Z")
			r.Attachments = []string{"a.png"}
			r.SessionData.Page = "/pricing"
		}),
		record(3, func(r *domain.FeedbackRecord) {
			r.CreatedAt = "2025-02-01T00:00:00Z"
			r.Reporter.Name = "Bob"
		}),
	}
	stats := ComputeStats(rs)
	if stats.Total != 3 || stats.Resolved != 1 || stats.Unresolved != 2 {
		t.Fatalf("неожиданные счётчики: %+v", stats)
	}
	if stats.ResolutionRate != 33.3 {
		t.Fatalf("ожидали 33.3, получили %v", stats.ResolutionRate)
	}
	if stats.ByType["text"] != 1 || stats.ByType["screenshot"] != 2 || stats.ByType["video"] != 0 {
		t.Fatalf("неожиданные типы: %v", stats.ByType)
	}
	if stats.WithComments != 1 || stats.TotalComments != 2 || stats.WithAttachments != 1 {
		t.Fatalf("неожиданные комментарии/вложения: %+v", stats)
	}
	if stats.OldestCreatedAt != "2025-01-01T00:00:00Z" || stats.NewestCreatedAt != "2025-03-01T00:00:00Z" {
		t.Fatalf("неожиданный диапазон дат: %s - %s", stats.OldestCreatedAt, stats.NewestCreatedAt)
	}
	if stats.NewestUnresolvedID != 3 {
		t.Fatalf("ожидали самый свежий нерешённый id 3, получили %d", stats.NewestUnresolvedID)
	}
	if len(stats.TopReporters) != 2 || stats.TopReporters[0].Name != "Jane Doe" || stats.TopReporters[0].Count != 2 {
		t.Fatalf("неожиданный топ авторов: %+v", stats.TopReporters)
	}
	if stats.TopPages[0].Name != "https://example.com/home" || stats.TopPages[0].Count != 2 {
		t.Fatalf("неожиданный топ страниц: %+v", stats.TopPages)
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil)
	if stats.Total != 0 || stats.ResolutionRate != 0 || len(stats.TopPages) != 0 {
		t.Fatalf("unexpected stats for empty project: %+v", stats)
	}
}

func TestTopCountsLimit(t *testing.T) {
	counts := map[string]int{}
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		counts[name] = 1
	}
	counts["z"] = 5
	top := topCounts(counts, topStatsEntries)
	if len(top) != topStatsEntries || top[0].Name != "z" || top[1].Name != "a" {
		t.Fatalf("unexpected top: %+v", top)
	}
}

func TestServiceStatsIncludesProject(t *testing.T) {
	api := &stubAPI{project: domain.Project{ID: "p", Name: "Site", Feedback: records(2)}}
	stats, err := NewService(api, zerolog.Nop()).Stats(context.Background())
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if stats.Project.Name != "Site" || stats.Total != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
