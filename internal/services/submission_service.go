package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"moderation-api/internal/logger"
	"moderation-api/internal/metrics"
	"moderation-api/internal/models"
	"moderation-api/internal/pkg/errors"
	"moderation-api/internal/repository"
)

type SubmissionService interface {
	// Submit persists a classified piece of content under the calling
	// key and places it in its initial lifecycle state.
	Submit(ctx context.Context, apiKey *models.APIKey, kind models.ContentKind, content, contentRef string, verdict *Verdict) (*models.Submission, error)
	// Get returns one submission, scoped to its owner when a caller
	// key is given.
	Get(ctx context.Context, id uuid.UUID, requester *models.APIKey) (*models.Submission, error)
	ListForUser(ctx context.Context, userID uuid.UUID, status models.SubmissionStatus, limit, offset int) ([]models.Submission, error)
	Queue(ctx context.Context, status models.SubmissionStatus, limit, offset int) ([]models.Submission, error)
	// Review records a human decision on a flagged submission. It is
	// the only way out of pending_review.
	Review(ctx context.Context, submissionID uuid.UUID, reviewer *AdminIdentity, decision models.ReviewDecision, comments string) (*models.Submission, error)
}

type submissionService struct {
	submissionRepo  repository.SubmissionRepository
	reviewRepo      repository.ReviewRepository
	auditLogService AuditLogService
	cacheService    CacheService
	cacheTTL        time.Duration
}

func NewSubmissionService(
	submissionRepo repository.SubmissionRepository,
	reviewRepo repository.ReviewRepository,
	auditLogService AuditLogService,
	cacheService CacheService,
	cacheTTL time.Duration,
) SubmissionService {
	return &submissionService{
		submissionRepo:  submissionRepo,
		reviewRepo:      reviewRepo,
		auditLogService: auditLogService,
		cacheService:    cacheService,
		cacheTTL:        cacheTTL,
	}
}

func (s *submissionService) Submit(ctx context.Context, apiKey *models.APIKey, kind models.ContentKind, content, contentRef string, verdict *Verdict) (*models.Submission, error) {
	submission := &models.Submission{
		ID:                 uuid.New(),
		ContentKind:        kind,
		Content:            content,
		ContentRef:         contentRef,
		Result:             verdict.Result,
		DetectedCategories: verdict.Categories,
		Flagged:            verdict.Flagged,
		Status:             models.InitialStatus(verdict.Flagged),
	}
	if apiKey != nil {
		submission.UserID = &apiKey.UserID
		submission.APIKeyID = &apiKey.ID
	}

	if err := s.submissionRepo.Create(ctx, submission); err != nil {
		return nil, err
	}

	metrics.SubmissionsTotal.WithLabelValues(string(kind), string(submission.Status)).Inc()

	return submission, nil
}

func (s *submissionService) Get(ctx context.Context, id uuid.UUID, requester *models.APIKey) (*models.Submission, error) {
	cacheKey := submissionCacheKey(id)

	if s.cacheService != nil {
		if cached, err := s.cacheService.Get(ctx, cacheKey); err == nil {
			var submission models.Submission
			if err := json.Unmarshal([]byte(cached), &submission); err == nil {
				return authorizeSubmission(&submission, requester)
			}
		}
	}

	submission, err := s.submissionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cacheService != nil {
		if err := s.cacheService.Set(ctx, cacheKey, submission, s.cacheTTL); err != nil {
			logger.LogEvent(logrus.WarnLevel, "Failed to cache submission", logrus.Fields{
				"submission_id": id.String(),
				"error":         err.Error(),
			})
		}
	}

	return authorizeSubmission(submission, requester)
}

func (s *submissionService) ListForUser(ctx context.Context, userID uuid.UUID, status models.SubmissionStatus, limit, offset int) ([]models.Submission, error) {
	return s.submissionRepo.ListByUser(ctx, userID, status, limit, offset)
}

func (s *submissionService) Queue(ctx context.Context, status models.SubmissionStatus, limit, offset int) ([]models.Submission, error) {
	if status == "" {
		status = models.StatusPendingReview
	}
	return s.submissionRepo.ListByStatus(ctx, status, limit, offset)
}

func (s *submissionService) Review(ctx context.Context, submissionID uuid.UUID, reviewer *AdminIdentity, decision models.ReviewDecision, comments string) (*models.Submission, error) {
	if reviewer == nil || reviewer.ID == uuid.Nil {
		// Ops-token callers have no reviewer identity to attach a
		// decision to.
		return nil, errors.ErrInsufficientPermission
	}

	review := &models.Review{
		ID:           uuid.New(),
		SubmissionID: submissionID,
		ReviewerID:   reviewer.ID,
		Decision:     decision,
		Comments:     comments,
	}

	submission, err := s.reviewRepo.CreateWithTransition(ctx, review, reviewNotification)
	if err != nil {
		return nil, err
	}

	if s.cacheService != nil {
		if err := s.cacheService.Delete(ctx, submissionCacheKey(submissionID)); err != nil {
			logger.LogEvent(logrus.WarnLevel, "Failed to invalidate submission cache", logrus.Fields{
				"submission_id": submissionID.String(),
				"error":         err.Error(),
			})
		}
	}

	if s.auditLogService != nil {
		if err := s.auditLogService.LogAction(ctx, reviewer.ID.String(), "submission_review", "submission", submissionID.String(),
			fmt.Sprintf("decision=%s comments=%s", decision, comments)); err != nil {
			logger.LogEvent(logrus.WarnLevel, "Failed to write review audit log", logrus.Fields{
				"submission_id": submissionID.String(),
				"error":         err.Error(),
			})
		}
	}

	return submission, nil
}

// reviewNotification builds the exactly-once notification inserted with
// the review transition.
func reviewNotification(submission *models.Submission, review *models.Review) *models.Notification {
	if submission.UserID == nil {
		return nil
	}
	return &models.Notification{
		ID:           uuid.New(),
		UserID:       *submission.UserID,
		Type:         models.NotificationReviewComplete,
		Title:        "Your submission has been reviewed",
		Message:      fmt.Sprintf("Submission %s was %s.", submission.ID, review.Decision),
		SubmissionID: &submission.ID,
	}
}

func authorizeSubmission(submission *models.Submission, requester *models.APIKey) (*models.Submission, error) {
	if requester == nil {
		return submission, nil
	}
	if submission.UserID == nil || *submission.UserID != requester.UserID {
		// Hide other callers' submissions rather than admitting they
		// exist.
		return nil, errors.ErrNotFound
	}
	return submission, nil
}

func submissionCacheKey(id uuid.UUID) string {
	return "submission:" + id.String()
}
