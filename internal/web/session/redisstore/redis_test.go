package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/Leopold1975/stackit/internal/web/session"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

type StoreSuite struct {
	suite.Suite
	mr    *miniredis.Miniredis
	rdb   *redis.Client
	store SessionStore
}

func TestSessionStore(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (ss *StoreSuite) SetupTest() {
	ss.mr = miniredis.RunT(ss.T())
	ss.rdb = redis.NewClient(&redis.Options{Addr: ss.mr.Addr()}) //nolint:exhaustruct
	ss.store = New(ss.rdb, time.Hour)
}

func (ss *StoreSuite) TearDownTest() {
	ss.rdb.Close()
}

func (ss *StoreSuite) TestRecordLifecycle() {
	ctx := context.Background()
	rec := session.Record{Token: "jwt", CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}

	err := ss.store.Save(ctx, "sid", rec)
	ss.Require().NoError(err, "expected %v\tactual %v", nil, err)
	ss.Require().True(ss.mr.Exists("session:sid"))
	ss.Require().Equal(time.Hour, ss.mr.TTL("session:sid"))

	got, err := ss.store.Load(ctx, "sid")
	ss.Require().NoError(err, "expected %v\tactual %v", nil, err)
	ss.Require().Equal(rec.Token, got.Token)
	ss.Require().True(rec.CreatedAt.Equal(got.CreatedAt))

	err = ss.store.Delete(ctx, "sid")
	ss.Require().NoError(err, "expected %v\tactual %v", nil, err)

	_, err = ss.store.Load(ctx, "sid")
	ss.Require().ErrorIs(err, session.ErrNoSession, "expected %v\tactual %v", session.ErrNoSession, err)

	err = ss.store.Delete(ctx, "sid")
	ss.Require().ErrorIs(err, session.ErrNoSession, "expected %v\tactual %v", session.ErrNoSession, err)
}

func (ss *StoreSuite) TestRecordExpires() {
	ctx := context.Background()

	ss.Require().NoError(ss.store.Save(ctx, "sid", session.Record{Token: "jwt"}))
	ss.mr.FastForward(time.Hour + time.Second)

	_, err := ss.store.Load(ctx, "sid")
	ss.Require().ErrorIs(err, session.ErrNoSession, "expected %v\tactual %v", session.ErrNoSession, err)
}

func (ss *StoreSuite) TestFlashesPopInOrder() {
	ctx := context.Background()

	ss.Require().NoError(ss.store.PushFlash(ctx, "sid", session.Flash{Kind: session.FlashSuccess, Message: "Welcome back!"}))
	ss.Require().NoError(ss.store.PushFlash(ctx, "sid", session.Flash{Kind: session.FlashError, Message: "Failed to vote"}))
	ss.Require().Equal(flashTTL, ss.mr.TTL("session:sid:flash"))

	flashes, err := ss.store.PopFlashes(ctx, "sid")
	ss.Require().NoError(err, "expected %v\tactual %v", nil, err)
	ss.Require().Equal([]session.Flash{
		{Kind: session.FlashSuccess, Message: "Welcome back!"},
		{Kind: session.FlashError, Message: "Failed to vote"},
	}, flashes)

	flashes, err = ss.store.PopFlashes(ctx, "sid")
	ss.Require().NoError(err, "expected %v\tactual %v", nil, err)
	ss.Require().Empty(flashes)
}
