package application

import (
	"context"
	"time"

	"github.com/sanosuguru/go-event-booking/internal/domain/event"
	redisinfra "github.com/sanosuguru/go-event-booking/internal/infrastructure/redis"
)

// ListingCache はイベント一覧キャッシュのインターフェース
// キャッシュは読み取りの高速化のみに使用し、正となるデータは常にDB側にある
// すべての呼び出しは失敗しうるため、呼び出し側はエラーをミス扱いで吸収する
type ListingCache interface {
	// Get はキャッシュからイベント一覧を取得する
	// エントリが存在しない場合は redisinfra.ErrCacheMiss を返す
	Get(ctx context.Context) ([]*event.Event, error)

	// Set はイベント一覧をTTL付きで保存する
	Set(ctx context.Context, events []*event.Event, ttl time.Duration) error

	// Invalidate はイベント一覧のエントリを削除する
	Invalidate(ctx context.Context) error
}

// NoopCache はキャッシュバックエンドが無い構成で使用する実装
// キャッシュ不在は正常な構成であり、全操作は常にミス／何もしない
type NoopCache struct{}

func NewNoopCache() *NoopCache {
	return &NoopCache{}
}

func (c *NoopCache) Get(ctx context.Context) ([]*event.Event, error) {
	return nil, redisinfra.ErrCacheMiss
}

func (c *NoopCache) Set(ctx context.Context, events []*event.Event, ttl time.Duration) error {
	return nil
}

func (c *NoopCache) Invalidate(ctx context.Context) error {
	return nil
}

// インターフェースを満たしているか確認
var (
	_ ListingCache = (*NoopCache)(nil)
	_ ListingCache = (*redisinfra.ListingCache)(nil)
)
