package coachprofile

import (
	"context"
	"fmt"
	"testing"
	"time"

	"coach_marketplace_backend/internal/common"
	"coach_marketplace_backend/internal/config"
	"coach_marketplace_backend/internal/platform/database"
	"coach_marketplace_backend/internal/specialization"
	"coach_marketplace_backend/internal/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	svc   *ServiceImplementation
	specs specialization.Service
	ctx   context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.NewSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&user.User{},
		&specialization.Specialization{},
		&CoachProfile{},
		&Certificate{},
		&ReviewEvent{},
	))

	cfg := &config.Config{CatalogCacheTTL: time.Minute}
	specs := specialization.NewService(specialization.NewGORMRepository(db), zap.NewNop(), cfg)
	svc := NewService(NewGORMRepository(db), specs, nil, nil, cfg, zap.NewNop())

	clock := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	return &fixture{db: db, svc: svc, specs: specs, ctx: context.Background()}
}

func (f *fixture) createUser(t *testing.T, role, firstName string) uint {
	t.Helper()
	u := &user.User{
		Email:     common.StringPtr(uuid.NewString() + "@example.com"),
		FirstName: common.StringPtr(firstName),
		Role:      role,
	}
	require.NoError(t, f.db.Create(u).Error)
	return u.ID
}

// createCoach returns a coach user with an ensured draft.
func (f *fixture) createCoach(t *testing.T, firstName string) uint {
	t.Helper()
	id := f.createUser(t, common.RoleCoach, firstName)
	_, err := f.svc.EnsureDraft(f.ctx, id)
	require.NoError(t, err)
	return id
}

func (f *fixture) createSpecialization(t *testing.T, name string) specialization.Specialization {
	t.Helper()
	s, err := f.specs.Create(f.ctx, specialization.UpsertSpecializationRequest{Name: name})
	require.NoError(t, err)
	return *s
}

func (f *fixture) startReview(t *testing.T, userID uint) {
	t.Helper()
	_, err := f.svc.RequestReview(f.ctx, userID)
	require.NoError(t, err)
	require.NoError(t, f.svc.StartReview(f.ctx, userID))
}

func (f *fixture) setDraftStatus(t *testing.T, userID uint, status ReviewStatus) {
	t.Helper()
	draft, err := f.svc.GetDraft(f.ctx, userID)
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&CoachProfile{}).Where("id = ?", draft.ID).Update("review_status", status).Error)
}

// rowState is everything a publish may touch for one coach.
type rowState struct {
	Owner           user.User
	Draft           *CoachProfile
	Published       *CoachProfile
	JoinRows        int64
	CertificateRows int64
	ProfileRows     int64
}

func (f *fixture) state(t *testing.T, userID uint) rowState {
	t.Helper()
	repo := NewGORMRepository(f.db)

	var st rowState
	require.NoError(t, f.db.First(&st.Owner, userID).Error)

	var err error
	st.Draft, err = repo.FindProfile(f.ctx, *st.Owner.CoachProfileDraftID, false)
	require.NoError(t, err)
	if st.Owner.CoachProfileID != nil {
		st.Published, err = repo.FindProfile(f.ctx, *st.Owner.CoachProfileID, false)
		require.NoError(t, err)
	}

	require.NoError(t, f.db.Table(specialization.ProfileJoinTable).Count(&st.JoinRows).Error)
	require.NoError(t, f.db.Model(&Certificate{}).Count(&st.CertificateRows).Error)
	require.NoError(t, f.db.Model(&CoachProfile{}).Where("user_id = ?", userID).Count(&st.ProfileRows).Error)
	return st
}
