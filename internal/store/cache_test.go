package store

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"branded-email-workers/internal/common/database"
	"branded-email-workers/internal/common/logger"
	"branded-email-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCache(database.NewRedisFromClient(client), ttl, logger.NewTestLogger(t)), mr
}

const welcomeDoc = `{"name":"Welcome","slug":"welcome","subject":"Hi {{first_name}}","htmlContent":"<p>x</p>"}`

func TestCache_TemplateReadThrough(t *testing.T) {
	cache, mr := newMiniCache(t, 5*time.Minute)
	s, mock := newMockStore(t, cache)

	mock.ExpectQuery(q(selectTemplateBySlug)).WithArgs("welcome").WillReturnRows(docRows("tpl-1", welcomeDoc, true))

	first, err := s.GetTemplateBySlug(context.Background(), "welcome")
	require.NoError(t, err)

	assert.True(t, mr.Exists("email:tpl:welcome"))
	assert.Equal(t, 5*time.Minute, mr.TTL("email:tpl:welcome"))

	// served from redis, no further query expected
	second, err := s.GetTemplateBySlug(context.Background(), "welcome")
	require.NoError(t, err)
	assert.Equal(t, first.Subject, second.Subject)
	assert.Equal(t, "tpl-1", second.ID)
	assert.True(t, second.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_SaveTemplateInvalidatesPreviousSlug(t *testing.T) {
	cache, mr := newMiniCache(t, time.Minute)
	s, mock := newMockStore(t, cache)

	require.NoError(t, mr.Set("email:tpl:welcome-old", welcomeDoc))
	require.NoError(t, mr.Set("email:tpl:welcome", welcomeDoc))
	require.NoError(t, mr.Set("email:tpl:reset", welcomeDoc))

	mock.ExpectBegin()
	mock.ExpectQuery(q(selectTemplateSlug)).WithArgs("tpl-1").
		WillReturnRows(sqlmock.NewRows([]string{"slug"}).AddRow("welcome-old"))
	mock.ExpectExec(q(upsertTemplate)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.SaveTemplate(context.Background(), &models.EmailTemplate{ID: "tpl-1", Slug: "welcome", IsActive: true})
	require.NoError(t, err)

	assert.False(t, mr.Exists("email:tpl:welcome-old"))
	assert.False(t, mr.Exists("email:tpl:welcome"))
	assert.True(t, mr.Exists("email:tpl:reset"))
}

func TestCache_SaveBrandingDropsActiveEntry(t *testing.T) {
	cache, mr := newMiniCache(t, time.Minute)
	s, mock := newMockStore(t, cache)
	require.NoError(t, mr.Set(keyActiveBranding, `{"appName":"Old"}`))

	b := models.NewAppBranding()
	b.ID = "b-1"
	mock.ExpectBegin()
	mock.ExpectExec(q(upsertBranding)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.SaveBranding(context.Background(), &b))
	assert.False(t, mr.Exists(keyActiveBranding))
}

func TestCache_UndecodableEntryIsReplaced(t *testing.T) {
	cache, mr := newMiniCache(t, time.Minute)
	s, mock := newMockStore(t, cache)
	require.NoError(t, mr.Set(keyDefaultLayout, "{not json"))

	mock.ExpectQuery(q(selectDefaultLayout)).WillReturnRows(
		sqlmock.NewRows([]string{"id", "doc", "is_default", "is_active", "updated_at"}).
			AddRow("l-1", []byte(`{"name":"Standard"}`), true, true, updated))

	l, err := s.GetDefaultLayout(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Standard", l.Name)

	raw, err := mr.Get(keyDefaultLayout)
	require.NoError(t, err)
	assert.Contains(t, raw, `"name":"Standard"`)
}

func TestCache_FontSaveInvalidatesEverything(t *testing.T) {
	cache, mr := newMiniCache(t, time.Minute)
	s, mock := newMockStore(t, cache)

	for _, k := range []string{"email:tpl:welcome", "email:tpl:reset", keyActiveBranding, keyDefaultLayout, "session:42"} {
		require.NoError(t, mr.Set(k, "{}"))
	}

	mock.ExpectExec(q(upsertFont)).WithArgs(sqlmock.AnyArg(), true, sqlmock.AnyArg(), updated).
		WillReturnResult(sqlmock.NewResult(0, 1))

	f := models.NewTypographyFont()
	f.Name, f.FontFamily = "Inter", "Inter"
	require.NoError(t, s.SaveFont(context.Background(), &f))

	assert.Equal(t, []string{"session:42"}, mr.Keys())
}

func TestCache_ZeroTTLDisablesCaching(t *testing.T) {
	cache, mr := newMiniCache(t, 0)
	s, mock := newMockStore(t, cache)

	mock.ExpectQuery(q(selectTemplateBySlug)).WithArgs("welcome").WillReturnRows(docRows("tpl-1", welcomeDoc, true))
	mock.ExpectQuery(q(selectTemplateBySlug)).WithArgs("welcome").WillReturnRows(docRows("tpl-1", welcomeDoc, true))

	for i := 0; i < 2; i++ {
		_, err := s.GetTemplateBySlug(context.Background(), "welcome")
		require.NoError(t, err)
	}
	assert.Empty(t, mr.Keys())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_RedisFailureFallsBackToDatabase(t *testing.T) {
	client, rmock := redismock.NewClientMock()
	cache := NewCache(database.NewRedisFromClient(client), time.Minute, logger.NewTestLogger(t))
	s, mock := newMockStore(t, cache)

	rmock.ExpectGet(keyActiveBranding).SetErr(stderrors.New("connection refused"))
	mock.ExpectQuery(q(selectActiveBranding)).WillReturnRows(docRows("b-1", `{"appName":"Acme"}`, true))

	b, err := s.GetActiveBranding(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Acme", b.AppName)

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestStore_Ping(t *testing.T) {
	cache, mr := newMiniCache(t, time.Minute)
	s, _ := newMockStore(t, cache)

	require.NoError(t, s.Ping(context.Background()))

	mr.Close()
	err := s.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CACHE_UNAVAILABLE")
}
