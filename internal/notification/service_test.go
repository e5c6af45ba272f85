package notification

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"coach_marketplace_backend/internal/common"
	"coach_marketplace_backend/internal/platform/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockNotificationRepository is a mock type for notification.Repository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, notification *Notification) error {
	args := m.Called(ctx, notification)
	if args.Error(0) == nil && notification.ID == 0 {
		notification.ID = 1
	}
	return args.Error(0)
}

func (m *MockNotificationRepository) GetByUserID(ctx context.Context, userID uint, page, pageSize int) ([]Notification, *common.Pagination, error) {
	args := m.Called(ctx, userID, page, pageSize)
	var notifications []Notification
	if args.Get(0) != nil {
		notifications = args.Get(0).([]Notification)
	}
	var pagination *common.Pagination
	if args.Get(1) != nil {
		pagination = args.Get(1).(*common.Pagination)
	}
	return notifications, pagination, args.Error(2)
}

func (m *MockNotificationRepository) FindByID(ctx context.Context, notificationID uint, userID uint) (*Notification, error) {
	args := m.Called(ctx, notificationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Notification), args.Error(1)
}

func (m *MockNotificationRepository) MarkAsRead(ctx context.Context, notificationID uint, userID uint) error {
	args := m.Called(ctx, notificationID, userID)
	return args.Error(0)
}

func (m *MockNotificationRepository) MarkAllAsRead(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func setupService(t *testing.T) (Service, *MockNotificationRepository) {
	t.Helper()
	repo := new(MockNotificationRepository)
	return NewService(repo, zap.NewNop()), repo
}

func TestNotificationService_CreateNotification_Success(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()
	profileID := uint(7)

	repo.On("Create", ctx, mock.AnythingOfType("*notification.Notification")).Run(func(args mock.Arguments) {
		n := args.Get(1).(*Notification)
		assert.Equal(t, uint(3), n.UserID)
		assert.Equal(t, ProfilePublished, n.Type)
		assert.Equal(t, "Your profile is live.", n.Message)
		assert.Equal(t, &profileID, n.RelatedCoachProfileID)
		assert.False(t, n.IsRead)
	}).Return(nil)

	created, err := svc.CreateNotification(ctx, 3, ProfilePublished, "  Your profile is live. ", &profileID)

	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	repo.AssertExpectations(t)
}

func TestNotificationService_CreateNotification_Error(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*notification.Notification")).Return(errors.New("repo error"))

	created, err := svc.CreateNotification(ctx, 3, ProfileRejected, "test", nil)

	assert.Nil(t, created)
	assert.True(t, errors.Is(err, common.ErrInternalServer))
	repo.AssertExpectations(t)
}

func TestNotificationService_GetNotificationsForUser(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	page := &common.Pagination{CurrentPage: 1, PageSize: 5, TotalItems: 2, TotalPages: 1}
	repo.On("GetByUserID", ctx, uint(4), 1, 5).Return([]Notification{{ID: 1}, {ID: 2}}, page, nil).Once()
	repo.On("GetByUserID", ctx, uint(5), 1, 5).Return(nil, nil, errors.New("repo error")).Once()

	items, pagination, err := svc.GetNotificationsForUser(ctx, 4, 1, 5)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, page, pagination)

	items, pagination, err = svc.GetNotificationsForUser(ctx, 5, 1, 5)
	assert.Nil(t, items)
	assert.Nil(t, pagination)
	assert.True(t, errors.Is(err, common.ErrInternalServer))
	repo.AssertExpectations(t)
}

func TestNotificationService_MarkNotificationAsRead_PassesNotFoundThrough(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	repo.On("MarkAsRead", ctx, uint(9), uint(4)).Return(common.ErrNotFound.WithDetails("Notification not found or not owned by user."))
	repo.On("MarkAsRead", ctx, uint(10), uint(4)).Return(errors.New("db down"))

	assert.True(t, errors.Is(svc.MarkNotificationAsRead(ctx, 9, 4), common.ErrNotFound))
	assert.True(t, errors.Is(svc.MarkNotificationAsRead(ctx, 10, 4), common.ErrInternalServer))
	repo.AssertExpectations(t)
}

func TestNotificationService_MarkAllUserNotificationsAsRead(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	repo.On("MarkAllAsRead", ctx, uint(4)).Return(int64(5), nil)

	count, err := svc.MarkAllUserNotificationsAsRead(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
	repo.AssertExpectations(t)
}

func TestGORMRepository_Lifecycle(t *testing.T) {
	db, err := database.NewSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Notification{}))

	repo := NewGORMRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &Notification{UserID: 1, Type: ProfileReviewStarted, Message: "started"}))
	}
	require.NoError(t, repo.Create(ctx, &Notification{UserID: 2, Type: ProfilePublished, Message: "other"}))

	items, pagination, err := repo.GetByUserID(ctx, 1, 1, 2)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, int64(3), pagination.TotalItems)
	assert.True(t, pagination.HasNext)

	err = repo.MarkAsRead(ctx, items[0].ID, 2)
	assert.True(t, errors.Is(err, common.ErrNotFound))
	require.NoError(t, repo.MarkAsRead(ctx, items[0].ID, 1))
	require.NoError(t, repo.MarkAsRead(ctx, items[0].ID, 1))

	count, err := repo.MarkAllAsRead(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
