package application

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-booking/internal/domain/booking"
	"github.com/sanosuguru/go-event-booking/internal/domain/event"
	"github.com/sanosuguru/go-event-booking/internal/domain/transaction"
	"github.com/sanosuguru/go-event-booking/internal/domain/user"
	"github.com/sanosuguru/go-event-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-event-booking/internal/pkg/metrics"
)

// BookingService は座席在庫の予約トランザクションを調停する
// 在庫の減算と予約台帳への記録は常に同一トランザクションでコミットされる
type BookingService struct {
	txManager   transaction.Manager
	bookingRepo booking.Repository
	eventRepo   event.Repository
	cache       ListingCache
	metrics     *metrics.Metrics
}

// NewBookingService はBookingServiceを作成する
func NewBookingService(tm transaction.Manager, br booking.Repository, er event.Repository, cache ListingCache, m *metrics.Metrics) *BookingService {
	return &BookingService{txManager: tm, bookingRepo: br, eventRepo: er, cache: cache, metrics: m}
}

// ReserveInput は予約作成の入力
type ReserveInput struct {
	EventID     string
	SeatsBooked int
}

// Reserve は指定イベントの座席を予約する
// イベント行を排他ロックした上で空席確認・減算・台帳記録を1つの
// トランザクションとして実行する。同一イベントへの並行予約は直列化され、
// 成功した予約の合計席数が呼び出し前の空席数を超えることはない
func (s *BookingService) Reserve(ctx context.Context, req Requester, input ReserveInput) (*booking.Booking, error) {
	b := booking.NewBooking(input.EventID, req.UserID, input.SeatsBooked)
	if err := b.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		s.countBooking("error")
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	ev, err := s.eventRepo.GetByIDForUpdate(ctx, tx, input.EventID)
	if err != nil {
		if err == event.ErrLockTimeout {
			s.countBooking("contention")
		}
		return nil, err
	}

	if !ev.CanReserve(input.SeatsBooked) {
		s.countBooking("insufficient")
		return nil, event.ErrInsufficientSeats
	}

	available, err := s.eventRepo.AdjustAvailableSeats(ctx, tx, ev.ID, -input.SeatsBooked)
	if err != nil {
		s.countBooking("error")
		return nil, err
	}
	if err := s.bookingRepo.Create(ctx, tx, b); err != nil {
		s.countBooking("error")
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.countBooking("error")
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.countBooking("success")
	s.setAvailableSeats(ev.ID, available)
	s.invalidateListing(ctx)

	return b, nil
}

// Cancel は予約をキャンセルし、座席を在庫に戻す
// 在庫の加算と状態遷移は同一トランザクションでコミットされる
func (s *BookingService) Cancel(ctx context.Context, req Requester, bookingID string) error {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if !b.IsOwnedBy(req.UserID) {
		return booking.ErrNotOwner
	}
	if !b.IsConfirmed() {
		return booking.ErrAlreadyCancelled
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.eventRepo.GetByIDForUpdate(ctx, tx, b.EventID); err != nil {
		return err
	}

	// 状態遷移を先に確定させる。並行するキャンセルに先を越されていた場合は
	// 1行も更新されず、在庫の二重加算を防げる
	if err := s.bookingRepo.UpdateStatus(ctx, tx, b.ID, booking.StatusConfirmed, booking.StatusCancelled); err != nil {
		return err
	}
	available, err := s.eventRepo.AdjustAvailableSeats(ctx, tx, b.EventID, b.SeatsBooked)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("コミットに失敗: %w", err)
	}

	s.setAvailableSeats(b.EventID, available)
	s.invalidateListing(ctx)

	return nil
}

// ListUserBookings は呼び出し元ユーザーの予約一覧を取得する
func (s *BookingService) ListUserBookings(ctx context.Context, req Requester) ([]*booking.Booking, error) {
	return s.bookingRepo.GetByUserID(ctx, req.UserID)
}

// ListAllBookings は全予約をイベント・ユーザー情報付きで取得する（管理者のみ）
func (s *BookingService) ListAllBookings(ctx context.Context, req Requester) ([]*booking.DetailedBooking, error) {
	if !req.IsAdmin() {
		return nil, user.ErrForbidden
	}
	return s.bookingRepo.ListDetailed(ctx)
}

// invalidateListing はイベント一覧キャッシュを無効化する
// キャッシュの失敗は書き込みの成否に影響させない（ログのみ）
func (s *BookingService) invalidateListing(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.Warn("キャッシュ無効化エラー", zap.Error(err))
	}
}

func (s *BookingService) countBooking(status string) {
	if s.metrics != nil {
		s.metrics.BookingsTotal.WithLabelValues(status).Inc()
	}
}

func (s *BookingService) setAvailableSeats(eventID string, count int) {
	if s.metrics != nil {
		s.metrics.AvailableSeats.WithLabelValues(eventID).Set(float64(count))
	}
}
