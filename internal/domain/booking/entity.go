package booking

import (
	"time"

	"github.com/google/uuid"
)

// Status は予約の状態を表す
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Booking は予約エンティティを表す
// 1つの予約は必ず1人のユーザーと1つのイベントを参照する
type Booking struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	UserID      string    `json:"user_id"`
	SeatsBooked int       `json:"seats_booked"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewBooking は確定済みの新しい予約を作成する
// 予約は在庫確保と同一トランザクション内でのみ作成される
func NewBooking(eventID, userID string, seatsBooked int) *Booking {
	now := time.Now()
	return &Booking{
		ID:          uuid.NewString(),
		EventID:     eventID,
		UserID:      userID,
		SeatsBooked: seatsBooked,
		Status:      StatusConfirmed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsConfirmed は予約が確定済みかを返す
func (b *Booking) IsConfirmed() bool {
	return b.Status == StatusConfirmed
}

// IsOwnedBy は予約の所有者かを返す
func (b *Booking) IsOwnedBy(userID string) bool {
	return b.UserID == userID
}

// Cancel は予約をキャンセルする
// キャンセル済みの予約は再度キャンセルできない（終端状態）
func (b *Booking) Cancel() error {
	if b.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	b.Status = StatusCancelled
	b.UpdatedAt = time.Now()
	return nil
}

// Validate は予約の検証を行う
func (b *Booking) Validate() error {
	if b.EventID == "" {
		return ErrEventIDRequired
	}
	if b.UserID == "" {
		return ErrUserIDRequired
	}
	if b.SeatsBooked <= 0 {
		return ErrInvalidSeatsBooked
	}
	return nil
}
