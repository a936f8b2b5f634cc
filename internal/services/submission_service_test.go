package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moderation-api/internal/models"
	"moderation-api/internal/pkg/errors"
)

type fakeSubmissionRepo struct {
	submissions map[uuid.UUID]*models.Submission
}

func newFakeSubmissionRepo(submissions ...*models.Submission) *fakeSubmissionRepo {
	repo := &fakeSubmissionRepo{submissions: make(map[uuid.UUID]*models.Submission)}
	for _, submission := range submissions {
		repo.submissions[submission.ID] = submission
	}
	return repo
}

func (f *fakeSubmissionRepo) Create(ctx context.Context, submission *models.Submission) error {
	f.submissions[submission.ID] = submission
	return nil
}

func (f *fakeSubmissionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	submission, ok := f.submissions[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return submission, nil
}

func (f *fakeSubmissionRepo) ListByUser(ctx context.Context, userID uuid.UUID, status models.SubmissionStatus, limit, offset int) ([]models.Submission, error) {
	var out []models.Submission
	for _, submission := range f.submissions {
		if submission.UserID != nil && *submission.UserID == userID {
			out = append(out, *submission)
		}
	}
	return out, nil
}

func (f *fakeSubmissionRepo) ListByStatus(ctx context.Context, status models.SubmissionStatus, limit, offset int) ([]models.Submission, error) {
	var out []models.Submission
	for _, submission := range f.submissions {
		if submission.Status == status {
			out = append(out, *submission)
		}
	}
	return out, nil
}

func (f *fakeSubmissionRepo) CountByStatus(ctx context.Context) (map[models.SubmissionStatus]int64, error) {
	out := make(map[models.SubmissionStatus]int64)
	for _, submission := range f.submissions {
		out[submission.Status]++
	}
	return out, nil
}

func (f *fakeSubmissionRepo) CountByKind(ctx context.Context) (map[models.ContentKind]int64, error) {
	out := make(map[models.ContentKind]int64)
	for _, submission := range f.submissions {
		out[submission.ContentKind]++
	}
	return out, nil
}

func (f *fakeSubmissionRepo) Recent(ctx context.Context, limit int) ([]models.Submission, error) {
	var out []models.Submission
	for _, submission := range f.submissions {
		out = append(out, *submission)
	}
	return out, nil
}

type fakeReviewRepo struct {
	submissions   *fakeSubmissionRepo
	reviews       map[uuid.UUID]*models.Review
	notifications []*models.Notification
}

func newFakeReviewRepo(submissions *fakeSubmissionRepo) *fakeReviewRepo {
	return &fakeReviewRepo{
		submissions: submissions,
		reviews:     make(map[uuid.UUID]*models.Review),
	}
}

func (f *fakeReviewRepo) CreateWithTransition(ctx context.Context, review *models.Review, notify func(*models.Submission, *models.Review) *models.Notification) (*models.Submission, error) {
	submission, ok := f.submissions.submissions[review.SubmissionID]
	if !ok {
		return nil, errors.ErrNotFound
	}
	if err := submission.ApplyReview(review.Decision); err != nil {
		return nil, err
	}
	f.reviews[review.SubmissionID] = review
	if notify != nil {
		if notification := notify(submission, review); notification != nil {
			f.notifications = append(f.notifications, notification)
		}
	}
	submission.Review = review
	return submission, nil
}

func (f *fakeReviewRepo) GetBySubmissionID(ctx context.Context, submissionID uuid.UUID) (*models.Review, error) {
	review, ok := f.reviews[submissionID]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return review, nil
}

type fakeAuditLog struct {
	actions []string
}

func (f *fakeAuditLog) GetAuditLogs(ctx context.Context, page, pageSize int) ([]models.AuditLog, int64, error) {
	return nil, 0, nil
}

func (f *fakeAuditLog) LogAction(ctx context.Context, adminID, action, entityType, entityID, details string) error {
	f.actions = append(f.actions, action)
	return nil
}

func newSubmissionServiceForTest(submissions *fakeSubmissionRepo) (SubmissionService, *fakeReviewRepo, *fakeAuditLog) {
	reviews := newFakeReviewRepo(submissions)
	audit := &fakeAuditLog{}
	svc := NewSubmissionService(submissions, reviews, audit, nil, 0)
	return svc, reviews, audit
}

func pendingSubmission(userID uuid.UUID) *models.Submission {
	return &models.Submission{
		ID:                 uuid.New(),
		UserID:             &userID,
		ContentKind:        models.ContentText,
		Content:            "I will hurt you",
		Flagged:            true,
		Status:             models.StatusPendingReview,
		DetectedCategories: models.StringArray{"Violence"},
	}
}

func TestSubmitDerivesInitialStatus(t *testing.T) {
	repo := newFakeSubmissionRepo()
	svc, _, _ := newSubmissionServiceForTest(repo)

	apiKey := &models.APIKey{ID: uuid.New(), UserID: uuid.New()}

	flagged, err := svc.Submit(context.Background(), apiKey, models.ContentText, "bad text", "", &Verdict{
		Categories: []string{"Violence"},
		Flagged:    true,
		Result:     models.JSON{"conclusion": "flagged"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingReview, flagged.Status)
	require.NotNil(t, flagged.UserID)
	assert.Equal(t, apiKey.UserID, *flagged.UserID)
	require.NotNil(t, flagged.APIKeyID)
	assert.Equal(t, apiKey.ID, *flagged.APIKeyID)

	clean, err := svc.Submit(context.Background(), apiKey, models.ContentText, "fine text", "", &Verdict{
		Flagged: false,
		Result:  models.JSON{"conclusion": "clean"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusAutoApproved, clean.Status)
	assert.False(t, clean.Flagged)
}

func TestReviewApprovesPendingSubmission(t *testing.T) {
	userID := uuid.New()
	submission := pendingSubmission(userID)
	repo := newFakeSubmissionRepo(submission)
	svc, reviews, audit := newSubmissionServiceForTest(repo)

	reviewer := &AdminIdentity{ID: uuid.New(), Role: "admin"}

	reviewed, err := svc.Review(context.Background(), submission.ID, reviewer, models.DecisionApproved, "looks fine")
	require.NoError(t, err)

	assert.Equal(t, models.StatusApproved, reviewed.Status)
	require.NotNil(t, reviewed.Review)
	assert.Equal(t, reviewer.ID, reviewed.Review.ReviewerID)

	require.Len(t, reviews.notifications, 1)
	notification := reviews.notifications[0]
	assert.Equal(t, models.NotificationReviewComplete, notification.Type)
	assert.Equal(t, userID, notification.UserID)
	require.NotNil(t, notification.SubmissionID)
	assert.Equal(t, submission.ID, *notification.SubmissionID)

	assert.Equal(t, []string{"submission_review"}, audit.actions)
}

func TestReviewRejectsSecondDecision(t *testing.T) {
	submission := pendingSubmission(uuid.New())
	repo := newFakeSubmissionRepo(submission)
	svc, reviews, _ := newSubmissionServiceForTest(repo)

	reviewer := &AdminIdentity{ID: uuid.New(), Role: "admin"}

	_, err := svc.Review(context.Background(), submission.ID, reviewer, models.DecisionRejected, "")
	require.NoError(t, err)

	_, err = svc.Review(context.Background(), submission.ID, reviewer, models.DecisionApproved, "changed my mind")
	assert.ErrorIs(t, err, errors.ErrAlreadyReviewed)

	assert.Len(t, reviews.notifications, 1)
}

func TestReviewRejectsAutoApprovedSubmission(t *testing.T) {
	submission := pendingSubmission(uuid.New())
	submission.Status = models.StatusAutoApproved
	submission.Flagged = false
	repo := newFakeSubmissionRepo(submission)
	svc, _, _ := newSubmissionServiceForTest(repo)

	reviewer := &AdminIdentity{ID: uuid.New(), Role: "admin"}

	_, err := svc.Review(context.Background(), submission.ID, reviewer, models.DecisionApproved, "")
	assert.ErrorIs(t, err, errors.ErrAlreadyReviewed)
}

func TestReviewRequiresReviewerIdentity(t *testing.T) {
	submission := pendingSubmission(uuid.New())
	repo := newFakeSubmissionRepo(submission)
	svc, _, _ := newSubmissionServiceForTest(repo)

	_, err := svc.Review(context.Background(), submission.ID, nil, models.DecisionApproved, "")
	assert.ErrorIs(t, err, errors.ErrInsufficientPermission)

	opsCaller := &AdminIdentity{ID: uuid.Nil, Role: "ops"}
	_, err = svc.Review(context.Background(), submission.ID, opsCaller, models.DecisionApproved, "")
	assert.ErrorIs(t, err, errors.ErrInsufficientPermission)
}

func TestGetScopesSubmissionsToOwner(t *testing.T) {
	owner := uuid.New()
	submission := pendingSubmission(owner)
	repo := newFakeSubmissionRepo(submission)
	svc, _, _ := newSubmissionServiceForTest(repo)

	got, err := svc.Get(context.Background(), submission.ID, &models.APIKey{UserID: owner})
	require.NoError(t, err)
	assert.Equal(t, submission.ID, got.ID)

	_, err = svc.Get(context.Background(), submission.ID, &models.APIKey{UserID: uuid.New()})
	assert.ErrorIs(t, err, errors.ErrNotFound)

	got, err = svc.Get(context.Background(), submission.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, submission.ID, got.ID)
}

func TestQueueDefaultsToPendingReview(t *testing.T) {
	pending := pendingSubmission(uuid.New())
	approved := pendingSubmission(uuid.New())
	approved.Status = models.StatusApproved
	repo := newFakeSubmissionRepo(pending, approved)
	svc, _, _ := newSubmissionServiceForTest(repo)

	queue, err := svc.Queue(context.Background(), "", 10, 0)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, pending.ID, queue[0].ID)
}
