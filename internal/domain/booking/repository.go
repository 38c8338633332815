package booking

import (
	"context"

	"github.com/sanosuguru/go-event-booking/internal/domain/transaction"
)

// DetailedBooking は管理者向けの予約一覧で使用する結合ビュー
type DetailedBooking struct {
	Booking
	EventTitle string `json:"event_title"`
	UserName   string `json:"user_name"`
	UserEmail  string `json:"user_email"`
}

// Repository は予約リポジトリのインターフェース
type Repository interface {
	// Create は新しい予約を作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, booking *Booking) error

	// GetByID はIDから予約を取得する
	GetByID(ctx context.Context, id string) (*Booking, error)

	// GetByUserID はユーザーIDから予約一覧を取得する
	GetByUserID(ctx context.Context, userID string) ([]*Booking, error)

	// UpdateStatus は予約の状態を遷移させる（トランザクション必須）
	// 現在の状態が from でない場合は何も更新しない
	UpdateStatus(ctx context.Context, tx transaction.Tx, id string, from, to Status) error

	// CountByEventID はイベントを参照する予約数を返す（トランザクション必須）
	// 予約台帳は削除されないため、イベント削除可否の判定に使用する
	CountByEventID(ctx context.Context, tx transaction.Tx, eventID string) (int, error)

	// ListDetailed は全予約をイベント・ユーザー情報付きで取得する
	ListDetailed(ctx context.Context) ([]*DetailedBooking, error)
}
