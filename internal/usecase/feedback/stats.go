package feedback

import (
	"context"
	"fmt"
	"math"
	"sort"

	"feedbucket-mcp/internal/domain"
)

const topStatsEntries = 10

// NamedCount - пара "значение - количество" для топов.
type NamedCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Stats - агрегаты по всей коллекции отзывов проекта.
type Stats struct {
	Project            domain.ProjectInfo `json:"project"`
	Total              int                `json:"total"`
	Resolved           int                `json:"resolved"`
	Unresolved         int                `json:"unresolved"`
	ResolutionRate     float64            `json:"resolution_rate"`
	ByType             map[string]int     `json:"by_type"`
	TopPages           []NamedCount       `json:"top_pages"`
	TopReporters       []NamedCount       `json:"top_reporters"`
	WithComments       int                `json:"with_comments"`
	TotalComments      int                `json:"total_comments"`
	WithAttachments    int                `json:"with_attachments"`
	OldestCreatedAt    string             `json:"oldest_created_at,omitempty"`
	NewestCreatedAt    string             `json:"newest_created_at,omitempty"`
	NewestUnresolvedID int64              `json:"newest_unresolved_id,omitempty"`
}

// Stats загружает проект и считает агрегаты.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	project, err := s.api.GetProject(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("load project: %w", err)
	}
	stats := ComputeStats(project.Feedback)
	stats.Project = project.Info()
	return stats, nil
}

// ComputeStats считает агрегаты за один проход по коллекции.
func ComputeStats(records []domain.FeedbackRecord) Stats {
	stats := Stats{ByType: make(map[string]int, len(domain.FeedbackTypes))}
	for _, t := range domain.FeedbackTypes {
		stats.ByType[string(t)] = 0
	}
	pages := make(map[string]int)
	reporters := make(map[string]int)
	newestUnresolved := ""

	for _, record := range records {
		stats.Total++
		if record.Resolved() {
			stats.Resolved++
		} else {
			stats.Unresolved++
			if record.CreatedAt >= newestUnresolved {
				newestUnresolved = record.CreatedAt
				stats.NewestUnresolvedID = record.ID
			}
		}
		stats.ByType[string(record.Type)]++
		if record.SessionData.Page != "" {
			pages[record.SessionData.Page]++
		}
		if record.Reporter.Name != "" {
			reporters[record.Reporter.Name]++
		}
		if len(record.Comments) > 0 {
			stats.WithComments++
			stats.TotalComments += len(record.Comments)
		}
		if len(record.Attachments) > 0 {
			stats.WithAttachments++
		}
		if record.CreatedAt != "" {
			if stats.OldestCreatedAt == "" || record.CreatedAt < stats.OldestCreatedAt {
				stats.OldestCreatedAt = record.CreatedAt
			}
			if record.CreatedAt > stats.NewestCreatedAt {
				stats.NewestCreatedAt = record.CreatedAt
			}
		}
	}
	if stats.Total > 0 {
		stats.ResolutionRate = math.Round(float64(stats.Resolved)/float64(stats.Total)*1000) / 10
	}
	stats.TopPages = topCounts(pages, topStatsEntries)
	stats.TopReporters = topCounts(reporters, topStatsEntries)
	return stats
}

func topCounts(counts map[string]int, limit int) []NamedCount {
	out := make([]NamedCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, NamedCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
