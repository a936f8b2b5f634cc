package services

import (
	"context"
	"moderation-api/internal/models"
	"moderation-api/internal/repository"
)

type StatsService interface {
	GetModerationStats(ctx context.Context) (*models.ModerationStats, error)
}

type statsService struct {
	submissionRepo repository.SubmissionRepository
}

func NewStatsService(submissionRepo repository.SubmissionRepository) StatsService {
	return &statsService{
		submissionRepo: submissionRepo,
	}
}

func (s *statsService) GetModerationStats(ctx context.Context) (*models.ModerationStats, error) {
	byStatus, err := s.submissionRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	byKind, err := s.submissionRepo.CountByKind(ctx)
	if err != nil {
		return nil, err
	}

	recent, err := s.submissionRepo.Recent(ctx, 5)
	if err != nil {
		return nil, err
	}

	var total, flagged int64
	statusCounts := make(map[string]int64, len(byStatus))
	for status, count := range byStatus {
		statusCounts[string(status)] = count
		total += count
		if status != models.StatusAutoApproved {
			flagged += count
		}
	}

	kindCounts := make(map[string]int64, len(byKind))
	for kind, count := range byKind {
		kindCounts[string(kind)] = count
	}

	var flaggedRate float64
	if total > 0 {
		flaggedRate = float64(flagged) / float64(total)
	}

	return &models.ModerationStats{
		TotalSubmissions:    total,
		SubmissionsByStatus: statusCounts,
		SubmissionsByKind:   kindCounts,
		PendingReview:       byStatus[models.StatusPendingReview],
		FlaggedRate:         flaggedRate,
		RecentSubmissions:   recent,
	}, nil
}
