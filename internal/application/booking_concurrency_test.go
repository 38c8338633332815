//go:build integration
// +build integration

package application

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-event-booking/internal/config"
	"github.com/sanosuguru/go-event-booking/internal/domain/booking"
	"github.com/sanosuguru/go-event-booking/internal/domain/event"
	"github.com/sanosuguru/go-event-booking/internal/domain/user"
	"github.com/sanosuguru/go-event-booking/internal/infrastructure/postgres"
	"github.com/sanosuguru/go-event-booking/internal/pkg/auth"
)

type integrationEnv struct {
	bookingService *BookingService
	eventService   *EventService
	authService    *AuthService
	cleanup        func()
}

func setupTestEnv(t *testing.T) *integrationEnv {
	cfg := config.Load()

	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		t.Skipf("DB接続エラー: %v", err)
	}

	eventRepo := postgres.NewEventRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	userRepo := postgres.NewUserRepository(db)
	txManager := postgres.NewTxManager(db, cfg.Database.LockTimeout)

	cache := NewNoopCache()
	issuer := auth.NewTokenIssuer("integration-test-secret", 30*time.Minute)

	env := &integrationEnv{
		bookingService: NewBookingService(txManager, bookingRepo, eventRepo, cache, nil),
		eventService:   NewEventService(txManager, eventRepo, bookingRepo, cache, cfg.Cache.TTL, nil),
		authService:    NewAuthService(userRepo, issuer),
		cleanup: func() {
			db.Exec("DELETE FROM bookings")
			db.Exec("DELETE FROM events")
			db.Exec("DELETE FROM users WHERE email LIKE 'itest-%'")
			db.Close()
		},
	}
	return env
}

// signupTestUser は予約用の実ユーザーを作成する（bookingsはusersを参照するため）
func signupTestUser(t *testing.T, env *integrationEnv, name string) Requester {
	t.Helper()
	u, err := env.authService.Signup(context.Background(), SignupInput{
		Name:     name,
		Email:    fmt.Sprintf("itest-%s-%d@example.com", name, time.Now().UnixNano()),
		Password: "password123",
	})
	require.NoError(t, err)
	return Requester{UserID: u.ID, Role: u.Role}
}

func TestConcurrentReserve(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	ctx := context.Background()
	admin := Requester{UserID: "admin-conc", Role: user.RoleAdmin}

	// 空席10のイベントを作成
	ev, err := env.eventService.CreateEvent(ctx, admin, CreateEventInput{
		Title: "並行予約テスト", Location: "テスト会場",
		Date: time.Now().Add(24 * time.Hour), TotalSeats: 10,
	})
	require.NoError(t, err)

	const numGoroutines = 20
	requesters := make([]Requester, numGoroutines)
	for i := range requesters {
		requesters[i] = signupTestUser(t, env, fmt.Sprintf("conc%d", i))
	}

	t.Run("20並行リクエストで10席だけ予約成功", func(t *testing.T) {
		var successCount int32
		var insufficientCount int32
		var otherErrCount int32
		var wg sync.WaitGroup

		for i := 0; i < numGoroutines; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				_, err := env.bookingService.Reserve(ctx, requesters[n], ReserveInput{
					EventID: ev.ID, SeatsBooked: 1,
				})
				switch {
				case err == nil:
					atomic.AddInt32(&successCount, 1)
				case err == event.ErrInsufficientSeats:
					atomic.AddInt32(&insufficientCount, 1)
				default:
					atomic.AddInt32(&otherErrCount, 1)
				}
			}(i)
		}
		wg.Wait()

		// 空席数を超える予約は成立しない
		assert.Equal(t, int32(10), successCount, "成功は空席数と同数")
		assert.Equal(t, int32(10), insufficientCount, "残りは空席不足")
		assert.Equal(t, int32(0), otherErrCount)

		// 最終的な空席数は0
		got, err := env.eventService.GetEvent(ctx, ev.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.AvailableSeats)
	})
}

func TestReserveAndCancelRestoresSeats(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	ctx := context.Background()
	admin := Requester{UserID: "admin-cancel", Role: user.RoleAdmin}
	req := signupTestUser(t, env, "cancel")

	ev, err := env.eventService.CreateEvent(ctx, admin, CreateEventInput{
		Title: "キャンセルテスト", Location: "テスト会場",
		Date: time.Now().Add(24 * time.Hour), TotalSeats: 10,
	})
	require.NoError(t, err)

	b, err := env.bookingService.Reserve(ctx, req, ReserveInput{EventID: ev.ID, SeatsBooked: 3})
	require.NoError(t, err)

	got, err := env.eventService.GetEvent(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.AvailableSeats)

	// キャンセルで在庫が戻る
	require.NoError(t, env.bookingService.Cancel(ctx, req, b.ID))

	got, err = env.eventService.GetEvent(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.AvailableSeats)

	// 二重キャンセルは拒否され、在庫も変わらない
	err = env.bookingService.Cancel(ctx, req, b.ID)
	assert.ErrorIs(t, err, booking.ErrAlreadyCancelled)

	got, err = env.eventService.GetEvent(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.AvailableSeats)
}

func TestUpdateEventPersistsEntityTimestamp(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	ctx := context.Background()
	admin := Requester{UserID: "admin-ts", Role: user.RoleAdmin}

	ev, err := env.eventService.CreateEvent(ctx, admin, CreateEventInput{
		Title: "更新時刻テスト", Location: "テスト会場",
		Date: time.Now().Add(24 * time.Hour), TotalSeats: 10,
	})
	require.NoError(t, err)

	updated, err := env.eventService.UpdateEvent(ctx, admin, UpdateEventInput{
		ID: ev.ID, Title: "更新時刻テスト（改）", Location: "テスト会場",
		Date: time.Now().Add(48 * time.Hour), TotalSeats: 12,
	})
	require.NoError(t, err)

	// 返却されたエンティティとDBの行で updated_at が一致する
	// （TIMESTAMPTZ はマイクロ秒精度のため丸め分のみ許容）
	got, err := env.eventService.GetEvent(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, got.TotalSeats)
	assert.WithinDuration(t, updated.UpdatedAt, got.UpdatedAt, time.Microsecond)
}
