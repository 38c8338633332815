package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-event-booking/internal/domain/event"
	"github.com/sanosuguru/go-event-booking/internal/domain/transaction"
)

// pqLockNotAvailable は lock_timeout 超過時のエラーコード
const pqLockNotAvailable = "55P03"

// eventRow はDBの行を表す構造体
type eventRow struct {
	ID             string    `db:"id"`
	Title          string    `db:"title"`
	Location       *string   `db:"location"`
	Date           time.Time `db:"date"`
	TotalSeats     int       `db:"total_seats"`
	AvailableSeats int       `db:"available_seats"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// toEntity はeventRowをEventエンティティに変換する
func (r *eventRow) toEntity() *event.Event {
	var location string
	if r.Location != nil {
		location = *r.Location
	}
	return &event.Event{
		ID:             r.ID,
		Title:          r.Title,
		Location:       location,
		Date:           r.Date,
		TotalSeats:     r.TotalSeats,
		AvailableSeats: r.AvailableSeats,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// EventRepository はイベントリポジトリのPostgreSQL実装
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository はEventRepositoryを作成する
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create は新しいイベントを作成する
func (r *EventRepository) Create(ctx context.Context, e *event.Event) error {
	query := `
		INSERT INTO events (id, title, location, date, total_seats, available_seats, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	var location *string
	if e.Location != "" {
		location = &e.Location
	}

	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.Title, location, e.Date, e.TotalSeats, e.AvailableSeats, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("イベント作成に失敗しました: %w", err)
	}
	return nil
}

// GetByID はIDからイベントを取得する
func (r *EventRepository) GetByID(ctx context.Context, id string) (*event.Event, error) {
	query := `SELECT id, title, location, date, total_seats, available_seats, created_at, updated_at FROM events WHERE id = $1`

	var row eventRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, event.ErrEventNotFound
		}
		return nil, fmt.Errorf("イベント取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// GetByIDForUpdate はイベント行を排他ロックして取得する
// ロック待ちが lock_timeout を超えた場合は ErrLockTimeout を返す
func (r *EventRepository) GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*event.Event, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return nil, fmt.Errorf("無効なトランザクションです")
	}

	query := `SELECT id, title, location, date, total_seats, available_seats, created_at, updated_at FROM events WHERE id = $1 FOR UPDATE`

	var row eventRow
	err := sqlxTx.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, event.ErrEventNotFound
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqLockNotAvailable {
			return nil, event.ErrLockTimeout
		}
		return nil, fmt.Errorf("イベント行のロック取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// List はイベント一覧を取得する
func (r *EventRepository) List(ctx context.Context) ([]*event.Event, error) {
	query := `SELECT id, title, location, date, total_seats, available_seats, created_at, updated_at FROM events ORDER BY created_at`

	var rows []eventRow
	err := r.db.SelectContext(ctx, &rows, query)
	if err != nil {
		return nil, fmt.Errorf("イベント一覧取得に失敗しました: %w", err)
	}

	events := make([]*event.Event, len(rows))
	for i, row := range rows {
		events[i] = row.toEntity()
	}
	return events, nil
}

// Update はイベントを更新する
func (r *EventRepository) Update(ctx context.Context, tx transaction.Tx, e *event.Event) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("無効なトランザクションです")
	}

	query := `
		UPDATE events
		SET title = $1, location = $2, date = $3, total_seats = $4, available_seats = $5, updated_at = $6
		WHERE id = $7
	`

	var location *string
	if e.Location != "" {
		location = &e.Location
	}

	result, err := sqlxTx.ExecContext(ctx, query,
		e.Title, location, e.Date, e.TotalSeats, e.AvailableSeats, e.UpdatedAt, e.ID,
	)
	if err != nil {
		return fmt.Errorf("イベント更新に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return event.ErrEventNotFound
	}
	return nil
}

// AdjustAvailableSeats は空席数を差分更新し、更新後の空席数を返す
// CHECK 制約により 0 未満・総座席数超過への更新はDB側でも拒否される
func (r *EventRepository) AdjustAvailableSeats(ctx context.Context, tx transaction.Tx, id string, delta int) (int, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return 0, fmt.Errorf("無効なトランザクションです")
	}

	query := `UPDATE events SET available_seats = available_seats + $1, updated_at = NOW() WHERE id = $2 RETURNING available_seats`

	var available int
	err := sqlxTx.GetContext(ctx, &available, query, delta, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, event.ErrEventNotFound
		}
		return 0, fmt.Errorf("空席数の更新に失敗しました: %w", err)
	}
	return available, nil
}

// Delete はイベントを削除する
func (r *EventRepository) Delete(ctx context.Context, tx transaction.Tx, id string) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("無効なトランザクションです")
	}

	result, err := sqlxTx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("イベント削除に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除結果の確認に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return event.ErrEventNotFound
	}
	return nil
}

// インターフェースを満たしているか確認
var _ event.Repository = (*EventRepository)(nil)
