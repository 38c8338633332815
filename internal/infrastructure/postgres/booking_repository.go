package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-event-booking/internal/domain/booking"
	"github.com/sanosuguru/go-event-booking/internal/domain/transaction"
)

type bookingRow struct {
	ID          string    `db:"id"`
	EventID     string    `db:"event_id"`
	UserID      string    `db:"user_id"`
	SeatsBooked int       `db:"seats_booked"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r *bookingRow) toEntity() *booking.Booking {
	return &booking.Booking{
		ID:          r.ID,
		EventID:     r.EventID,
		UserID:      r.UserID,
		SeatsBooked: r.SeatsBooked,
		Status:      booking.Status(r.Status),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type detailedBookingRow struct {
	bookingRow
	EventTitle string `db:"event_title"`
	UserName   string `db:"user_name"`
	UserEmail  string `db:"user_email"`
}

// BookingRepository は予約リポジトリのPostgreSQL実装
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository はBookingRepositoryを作成する
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create は新しい予約を作成する
// 在庫の減算と同一トランザクションで呼び出すこと
func (r *BookingRepository) Create(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("無効なトランザクションです")
	}

	query := `
		INSERT INTO bookings (id, event_id, user_id, seats_booked, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := sqlxTx.ExecContext(ctx, query,
		b.ID, b.EventID, b.UserID, b.SeatsBooked, string(b.Status), b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("予約作成に失敗しました: %w", err)
	}
	return nil
}

// GetByID はIDから予約を取得する
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	query := `SELECT id, event_id, user_id, seats_booked, status, created_at, updated_at FROM bookings WHERE id = $1`

	var row bookingRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// GetByUserID はユーザーIDから予約一覧を取得する
func (r *BookingRepository) GetByUserID(ctx context.Context, userID string) ([]*booking.Booking, error) {
	query := `SELECT id, event_id, user_id, seats_booked, status, created_at, updated_at FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`

	var rows []bookingRow
	err := r.db.SelectContext(ctx, &rows, query, userID)
	if err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗しました: %w", err)
	}

	bookings := make([]*booking.Booking, len(rows))
	for i, row := range rows {
		bookings[i] = row.toEntity()
	}
	return bookings, nil
}

// UpdateStatus は予約の状態を遷移させる
// 現在の状態が from でない行は更新されず ErrAlreadyCancelled を返す
func (r *BookingRepository) UpdateStatus(ctx context.Context, tx transaction.Tx, id string, from, to booking.Status) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("無効なトランザクションです")
	}

	query := `UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`

	result, err := sqlxTx.ExecContext(ctx, query, string(to), id, string(from))
	if err != nil {
		return fmt.Errorf("予約状態の更新に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		// 並行するキャンセルに先を越されたケース
		return booking.ErrAlreadyCancelled
	}
	return nil
}

// CountByEventID はイベントを参照する予約数を返す
// 削除判定と同一トランザクションで実行すること
func (r *BookingRepository) CountByEventID(ctx context.Context, tx transaction.Tx, eventID string) (int, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return 0, fmt.Errorf("無効なトランザクションです")
	}

	var count int
	err := sqlxTx.GetContext(ctx, &count, `SELECT COUNT(*) FROM bookings WHERE event_id = $1`, eventID)
	if err != nil {
		return 0, fmt.Errorf("予約数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// ListDetailed は全予約をイベント・ユーザー情報付きで取得する
func (r *BookingRepository) ListDetailed(ctx context.Context) ([]*booking.DetailedBooking, error) {
	query := `
		SELECT b.id, b.event_id, b.user_id, b.seats_booked, b.status, b.created_at, b.updated_at,
		       e.title AS event_title, u.name AS user_name, u.email AS user_email
		FROM bookings b
		JOIN events e ON e.id = b.event_id
		JOIN users u ON u.id = b.user_id
		ORDER BY b.created_at DESC
	`

	var rows []detailedBookingRow
	err := r.db.SelectContext(ctx, &rows, query)
	if err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗しました: %w", err)
	}

	bookings := make([]*booking.DetailedBooking, len(rows))
	for i, row := range rows {
		bookings[i] = &booking.DetailedBooking{
			Booking:    *row.bookingRow.toEntity(),
			EventTitle: row.EventTitle,
			UserName:   row.UserName,
			UserEmail:  row.UserEmail,
		}
	}
	return bookings, nil
}

var _ booking.Repository = (*BookingRepository)(nil)
