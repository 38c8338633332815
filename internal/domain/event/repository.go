package event

import (
	"context"

	"github.com/sanosuguru/go-event-booking/internal/domain/transaction"
)

// Repository はイベントリポジトリのインターフェース
type Repository interface {
	// Create は新しいイベントを作成する
	Create(ctx context.Context, event *Event) error

	// GetByID はIDからイベントを取得する
	GetByID(ctx context.Context, id string) (*Event, error)

	// GetByIDForUpdate はイベント行を排他ロックして取得する（トランザクション必須）
	// 同一イベントへの並行する座席数の変更を直列化するために使用する
	GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*Event, error)

	// List はイベント一覧を取得する
	List(ctx context.Context) ([]*Event, error)

	// Update はイベントを更新する（トランザクション必須）
	Update(ctx context.Context, tx transaction.Tx, event *Event) error

	// AdjustAvailableSeats は空席数を差分更新し、更新後の空席数を返す（トランザクション必須）
	// 返り値はこのトランザクション内で確定した値であり、メトリクス公開に使用する
	AdjustAvailableSeats(ctx context.Context, tx transaction.Tx, id string, delta int) (int, error)

	// Delete はイベントを削除する（トランザクション必須）
	Delete(ctx context.Context, tx transaction.Tx, id string) error
}
