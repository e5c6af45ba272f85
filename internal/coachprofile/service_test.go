package coachprofile

import (
	"context"
	"errors"
	"testing"

	"coach_marketplace_backend/internal/common"
	"coach_marketplace_backend/internal/notification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) CreateNotification(ctx context.Context, userID uint, notifType notification.NotificationType, message string, relatedCoachProfileID *uint) (*notification.Notification, error) {
	args := m.Called(ctx, userID, notifType, message, relatedCoachProfileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notification.Notification), args.Error(1)
}

func (m *MockNotificationService) GetNotificationsForUser(ctx context.Context, userID uint, page, pageSize int) ([]notification.Notification, *common.Pagination, error) {
	args := m.Called(ctx, userID, page, pageSize)
	return nil, nil, args.Error(2)
}

func (m *MockNotificationService) MarkNotificationAsRead(ctx context.Context, notificationID uint, userID uint) error {
	return m.Called(ctx, notificationID, userID).Error(0)
}

func (m *MockNotificationService) MarkAllUserNotificationsAsRead(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type MockSearchIndexer struct {
	mock.Mock
}

func (m *MockSearchIndexer) IndexProfile(ctx context.Context, profile *CoachProfile) error {
	return m.Called(ctx, profile).Error(0)
}

func TestPublish_NotifiesAndIndexesAfterCommit(t *testing.T) {
	f := newFixture(t)
	coach := f.createCoach(t, "Katherine")
	f.startReview(t, coach)

	notifier := new(MockNotificationService)
	indexer := new(MockSearchIndexer)
	f.svc.notificationService = notifier
	f.svc.indexer = indexer

	notifier.On("CreateNotification", mock.Anything, coach, notification.ProfilePublished, "Your profile has been published.", mock.AnythingOfType("*uint")).
		Return(&notification.Notification{ID: 1}, nil)
	indexer.On("IndexProfile", mock.Anything, mock.MatchedBy(func(p *CoachProfile) bool {
		return p.ReviewStatus == StatusPublished && common.StringValue(p.FirstName) == "Katherine"
	})).Return(nil)

	require.NoError(t, f.svc.Publish(f.ctx, coach))

	notifier.AssertExpectations(t)
	indexer.AssertExpectations(t)
}

func TestPublish_SideEffectFailuresDoNotFailThePublish(t *testing.T) {
	f := newFixture(t)
	coach := f.createCoach(t, "Dorothy")
	f.startReview(t, coach)

	notifier := new(MockNotificationService)
	indexer := new(MockSearchIndexer)
	f.svc.notificationService = notifier
	f.svc.indexer = indexer

	notifier.On("CreateNotification", mock.Anything, coach, notification.ProfilePublished, mock.Anything, mock.Anything).
		Return(nil, common.ErrInternalServer)
	indexer.On("IndexProfile", mock.Anything, mock.Anything).Return(errors.New("cluster unavailable"))

	require.NoError(t, f.svc.Publish(f.ctx, coach))

	published, err := f.svc.GetPublishedProfile(f.ctx, coach)
	require.NoError(t, err)
	assert.Equal(t, StatusPublished, published.ReviewStatus)
	notifier.AssertExpectations(t)
	indexer.AssertExpectations(t)
}

func TestOperatorTransitionsNotifyTheCoach(t *testing.T) {
	f := newFixture(t)
	coach := f.createCoach(t, "Hedy")
	_, err := f.svc.RequestReview(f.ctx, coach)
	require.NoError(t, err)

	notifier := new(MockNotificationService)
	f.svc.notificationService = notifier
	notifier.On("CreateNotification", mock.Anything, coach, notification.ProfileReviewStarted, mock.Anything, mock.Anything).
		Return(&notification.Notification{ID: 1}, nil).Once()
	notifier.On("CreateNotification", mock.Anything, coach, notification.ProfileRejected, "Your profile changes were not approved: Missing certificates", mock.Anything).
		Return(&notification.Notification{ID: 2}, nil).Once()

	require.NoError(t, f.svc.StartReview(f.ctx, coach))
	require.NoError(t, f.svc.Reject(f.ctx, coach, "Missing certificates"))

	// Refused transitions never notify.
	assert.True(t, errors.Is(f.svc.StartReview(f.ctx, coach), common.ErrBadState))
	notifier.AssertExpectations(t)
}

func TestDraftEditing(t *testing.T) {
	f := newFixture(t)
	spec := f.createSpecialization(t, "Resilience")
	coach := f.createCoach(t, "Radia")

	_, err := f.svc.SetDraftSpecializations(f.ctx, coach, []uint{spec.ID, spec.ID + 100})
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)

	draft, err := f.svc.SetDraftSpecializations(f.ctx, coach, []uint{spec.ID})
	require.NoError(t, err)
	assert.Equal(t, []uint{spec.ID}, draft.SpecializationIDs())

	draft, err = f.svc.SetDraftSpecializations(f.ctx, coach, []uint{})
	require.NoError(t, err)
	assert.Empty(t, draft.SpecializationIDs())

	draft, err = f.svc.UpdateDraft(f.ctx, coach, UpdateDraftRequest{AppointmentTypes: []string{"IN_PERSON", "ONLINE", "ONLINE"}})
	require.NoError(t, err)
	assert.Equal(t, "ONLINE,IN_PERSON", common.StringValue(draft.AppointmentTypes))

	draft, err = f.svc.UpdateDraft(f.ctx, coach, UpdateDraftRequest{AppointmentTypes: []string{}})
	require.NoError(t, err)
	assert.Nil(t, draft.AppointmentTypes)

	// Editing is allowed while a review is running.
	f.startReview(t, coach)
	_, err = f.svc.UpdateDraft(f.ctx, coach, UpdateDraftRequest{Bio: strPtr("Edited during review")})
	require.NoError(t, err)

	draft, err = f.svc.AddDraftCertificate(f.ctx, coach, AddCertificateRequest{Name: " NLP Practitioner ", Description: strPtr(" "), Type: CertificateCourse})
	require.NoError(t, err)
	require.Len(t, draft.Certificates, 1)
	assert.Equal(t, "NLP Practitioner", draft.Certificates[0].Name)
	assert.Nil(t, draft.Certificates[0].Description)

	assert.True(t, errors.Is(f.svc.RemoveDraftCertificate(f.ctx, coach, draft.Certificates[0].ID+1), common.ErrNotFound))
	require.NoError(t, f.svc.RemoveDraftCertificate(f.ctx, coach, draft.Certificates[0].ID))

	stored, err := f.svc.GetDraft(f.ctx, coach)
	require.NoError(t, err)
	assert.Empty(t, stored.Certificates)
	assert.Equal(t, "Edited during review", common.StringValue(stored.Bio))
	assert.Equal(t, StatusReviewStarted, stored.ReviewStatus)
}
