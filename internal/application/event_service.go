package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-booking/internal/domain/booking"
	"github.com/sanosuguru/go-event-booking/internal/domain/event"
	"github.com/sanosuguru/go-event-booking/internal/domain/transaction"
	"github.com/sanosuguru/go-event-booking/internal/domain/user"
	redisinfra "github.com/sanosuguru/go-event-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-event-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-event-booking/internal/pkg/metrics"
)

// EventService はイベントの参照と管理操作を提供する
// 一覧の読み取りはキャッシュ優先で行い、書き込み成功後は必ずキャッシュを無効化する
type EventService struct {
	txManager   transaction.Manager
	eventRepo   event.Repository
	bookingRepo booking.Repository
	cache       ListingCache
	cacheTTL    time.Duration
	metrics     *metrics.Metrics
}

// NewEventService はEventServiceを作成する
func NewEventService(tm transaction.Manager, er event.Repository, br booking.Repository, cache ListingCache, cacheTTL time.Duration, m *metrics.Metrics) *EventService {
	return &EventService{txManager: tm, eventRepo: er, bookingRepo: br, cache: cache, cacheTTL: cacheTTL, metrics: m}
}

// ListEvents はイベント一覧を取得する
// キャッシュにヒットした場合はDBへアクセスせずに返す（古さの上限はTTL）。
// ミスまたはキャッシュ障害時はDBから読み、ベストエフォートで再投入する
func (s *EventService) ListEvents(ctx context.Context) ([]*event.Event, error) {
	cached, err := s.cache.Get(ctx)
	if err == nil {
		s.countCache("hit")
		return cached, nil
	}
	if errors.Is(err, redisinfra.ErrCacheMiss) {
		s.countCache("miss")
	} else {
		s.countCache("error")
		logger.Warn("キャッシュ取得エラー", zap.Error(err))
	}

	events, err := s.eventRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	if cacheErr := s.cache.Set(ctx, events, s.cacheTTL); cacheErr != nil {
		logger.Warn("キャッシュ保存エラー", zap.Error(cacheErr))
	}
	return events, nil
}

// RefreshListing はDBからイベント一覧を読み直してキャッシュへ再投入する
// 返り値は投入した件数
func (s *EventService) RefreshListing(ctx context.Context) (int, error) {
	events, err := s.eventRepo.List(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.cache.Set(ctx, events, s.cacheTTL); err != nil {
		return 0, err
	}
	return len(events), nil
}

// GetEvent はIDからイベントを取得する
func (s *EventService) GetEvent(ctx context.Context, id string) (*event.Event, error) {
	return s.eventRepo.GetByID(ctx, id)
}

// CreateEventInput はイベント作成の入力
type CreateEventInput struct {
	Title      string
	Location   string
	Date       time.Time
	TotalSeats int
}

// CreateEvent は新しいイベントを作成する（管理者のみ）
func (s *EventService) CreateEvent(ctx context.Context, req Requester, input CreateEventInput) (*event.Event, error) {
	if !req.IsAdmin() {
		return nil, user.ErrForbidden
	}

	e := event.NewEvent(input.Title, input.Location, input.Date, input.TotalSeats)
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Create(ctx, e); err != nil {
		return nil, err
	}

	s.invalidateListing(ctx)
	return e, nil
}

// UpdateEventInput はイベント更新の入力
type UpdateEventInput struct {
	ID         string
	Title      string
	Location   string
	Date       time.Time
	TotalSeats int
}

// UpdateEvent はイベントを更新する（管理者のみ）
// 総座席数の変更は差分を空席数に反映する。イベント行を排他ロックして
// 実行するため、並行する予約との競合で空席数が壊れることはない
func (s *EventService) UpdateEvent(ctx context.Context, req Requester, input UpdateEventInput) (*event.Event, error) {
	if !req.IsAdmin() {
		return nil, user.ErrForbidden
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	e, err := s.eventRepo.GetByIDForUpdate(ctx, tx, input.ID)
	if err != nil {
		return nil, err
	}

	e.Title = input.Title
	e.Location = input.Location
	e.Date = input.Date
	if err := e.AdjustCapacity(input.TotalSeats); err != nil {
		return nil, err
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}

	if err := s.eventRepo.Update(ctx, tx, e); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.invalidateListing(ctx)
	return e, nil
}

// DeleteEvent はイベントを削除する（管理者のみ）
// 予約台帳から参照されているイベントは削除できない
func (s *EventService) DeleteEvent(ctx context.Context, req Requester, id string) error {
	if !req.IsAdmin() {
		return user.ErrForbidden
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	// 行ロックで並行する予約と直列化してから参照数を確認する
	if _, err := s.eventRepo.GetByIDForUpdate(ctx, tx, id); err != nil {
		return err
	}
	count, err := s.bookingRepo.CountByEventID(ctx, tx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return event.ErrHasBookings
	}

	if err := s.eventRepo.Delete(ctx, tx, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("コミットに失敗: %w", err)
	}

	s.invalidateListing(ctx)
	return nil
}

func (s *EventService) invalidateListing(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.Warn("キャッシュ無効化エラー", zap.Error(err))
	}
}

func (s *EventService) countCache(result string) {
	if s.metrics != nil {
		s.metrics.CacheRequestsTotal.WithLabelValues(result).Inc()
	}
}
