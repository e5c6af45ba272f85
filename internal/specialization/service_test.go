package specialization

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"coach_marketplace_backend/internal/common"
	"coach_marketplace_backend/internal/config"
	"coach_marketplace_backend/internal/platform/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SpecializationServiceSuite struct {
	suite.Suite
	db      *gorm.DB
	service Service
	ctx     context.Context
}

func (s *SpecializationServiceSuite) SetupTest() {
	db, err := database.NewSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	s.Require().NoError(err)
	s.Require().NoError(db.AutoMigrate(&Specialization{}))
	s.Require().NoError(db.Exec(
		"CREATE TABLE " + ProfileJoinTable + " (coach_profile_id integer NOT NULL, specialization_id integer NOT NULL, PRIMARY KEY (coach_profile_id, specialization_id))",
	).Error)

	s.db = db
	s.ctx = context.Background()
	s.service = NewService(NewGORMRepository(db), zap.NewNop(), &config.Config{CatalogCacheTTL: time.Minute})
}

func TestSpecializationServiceSuite(t *testing.T) {
	suite.Run(t, new(SpecializationServiceSuite))
}

func (s *SpecializationServiceSuite) TestCreateDerivesSlugAndRejectsDuplicates() {
	created, err := s.service.Create(s.ctx, UpsertSpecializationRequest{Name: "Career Coaching"})
	s.Require().NoError(err)
	s.Equal("career-coaching", created.Slug)

	_, err = s.service.Create(s.ctx, UpsertSpecializationRequest{Name: "Career Coaching"})
	s.True(errors.Is(err, common.ErrConflict))
}

func (s *SpecializationServiceSuite) TestListIsInvalidatedOnWrite() {
	items, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(items)

	_, err = s.service.Create(s.ctx, UpsertSpecializationRequest{Name: "Nutrition"})
	s.Require().NoError(err)

	items, err = s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Len(items, 1)
}

func (s *SpecializationServiceSuite) TestResolveReportsUnknownIDs() {
	a, err := s.service.Create(s.ctx, UpsertSpecializationRequest{Name: "Mindfulness"})
	s.Require().NoError(err)

	resolved, err := s.service.Resolve(s.ctx, []uint{a.ID, a.ID})
	s.Require().NoError(err)
	s.Len(resolved, 1)

	_, err = s.service.Resolve(s.ctx, []uint{a.ID, a.ID + 50})
	apiErr, ok := common.IsAPIError(err)
	s.Require().True(ok)
	s.Equal("VALIDATION_ERROR", apiErr.Code)
}

func (s *SpecializationServiceSuite) TestDeleteRefusesReferencedEntries() {
	a, err := s.service.Create(s.ctx, UpsertSpecializationRequest{Name: "Fitness"})
	s.Require().NoError(err)
	s.Require().NoError(s.db.Exec("INSERT INTO "+ProfileJoinTable+" (coach_profile_id, specialization_id) VALUES (1, ?)", a.ID).Error)

	err = s.service.Delete(s.ctx, a.ID)
	s.True(errors.Is(err, common.ErrConflict))

	s.Require().NoError(s.db.Exec("DELETE FROM " + ProfileJoinTable).Error)
	s.NoError(s.service.Delete(s.ctx, a.ID))
	s.True(errors.Is(s.service.Delete(s.ctx, a.ID), common.ErrNotFound))
}

func (s *SpecializationServiceSuite) TestSeedUpsertsBySlug() {
	entries, err := ParseSeed(strings.NewReader(`
specializations:
  - name: Life Coaching
    description: Goals and habits
  - name: Business Coaching
  - name: Life Coaching
`))
	s.Require().NoError(err)
	s.Len(entries, 3)

	_, err = s.service.Seed(s.ctx, entries)
	s.Require().NoError(err)

	items, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Len(items, 2)

	_, err = s.service.Seed(s.ctx, []SeedEntry{{Name: "Life Coaching", Description: "Updated"}})
	s.Require().NoError(err)

	items, err = s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(items, 2)
	for _, it := range items {
		if it.Slug == "life-coaching" {
			s.Equal("Updated", common.StringValue(it.Description))
		}
	}
}

func TestParseSeed_RejectsUnknownFields(t *testing.T) {
	_, err := ParseSeed(strings.NewReader("specializations:\n  - title: nope\n"))
	require.Error(t, err)

	entries, err := ParseSeed(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
