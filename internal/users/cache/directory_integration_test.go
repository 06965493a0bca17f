//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"malpot/internal/users/cache"
	"malpot/internal/users/models"
	"malpot/internal/users/store"
	id "malpot/pkg/domain"
	"malpot/pkg/testutil/containers"
)

type DirectorySuite struct {
	suite.Suite
	redis *containers.RedisContainer
}

func TestDirectorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(DirectorySuite))
}

func (s *DirectorySuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
}

func (s *DirectorySuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *DirectorySuite) TestReadThrough() {
	ctx := context.Background()
	users := store.NewInMemory()
	u, err := models.NewUser(id.NewUserID(), "Gita", "gita@malpot.gov.np", "9800000000", models.RoleOfficer, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(users.Create(ctx, u))

	dir := cache.NewDirectory(users, s.redis.Client, time.Minute, nil)

	first, err := dir.FindByID(ctx, u.ID)
	s.Require().NoError(err)
	s.Equal("Gita", first.Name)

	ttl, err := s.redis.Client.TTL(ctx, "malpot:user:"+u.ID.String()).Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))

	// served from cache even when the store no longer has the user
	cachedOnly := cache.NewDirectory(store.NewInMemory(), s.redis.Client, time.Minute, nil)
	second, err := cachedOnly.FindByID(ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(u.Email, second.Email)

	s.Require().NoError(dir.Invalidate(ctx, u.ID))
	_, err = cachedOnly.FindByID(ctx, u.ID)
	s.Error(err)
}
