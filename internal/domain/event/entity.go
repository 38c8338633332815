package event

import (
	"time"

	"github.com/google/uuid"
)

// Event はイベントエンティティを表す
type Event struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Location       string    `json:"location"`
	Date           time.Time `json:"date"`
	TotalSeats     int       `json:"total_seats"`
	AvailableSeats int       `json:"available_seats"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewEvent は新しいイベントを作成する
// 空席数は総座席数で初期化される
func NewEvent(title, location string, date time.Time, totalSeats int) *Event {
	now := time.Now()
	return &Event{
		ID:             uuid.NewString(),
		Title:          title,
		Location:       location,
		Date:           date,
		TotalSeats:     totalSeats,
		AvailableSeats: totalSeats,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Validate はイベントの検証を行う
func (e *Event) Validate() error {
	if e.Title == "" {
		return ErrEventTitleRequired
	}
	if e.TotalSeats <= 0 {
		return ErrInvalidTotalSeats
	}
	return nil
}

// AdjustCapacity は総座席数を変更し、差分を空席数に反映する
// 空席数が負になる変更は ErrCapacityConflict で拒否する
func (e *Event) AdjustCapacity(newTotalSeats int) error {
	if newTotalSeats <= 0 {
		return ErrInvalidTotalSeats
	}
	delta := newTotalSeats - e.TotalSeats
	if e.AvailableSeats+delta < 0 {
		return ErrCapacityConflict
	}
	e.TotalSeats = newTotalSeats
	e.AvailableSeats += delta
	e.UpdatedAt = time.Now()
	return nil
}

// CanReserve は指定席数を予約できるかを返す
func (e *Event) CanReserve(seats int) bool {
	return seats > 0 && e.AvailableSeats >= seats
}
