package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sanosuguru/go-event-booking/internal/domain/event"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

// listingKey はイベント一覧キャッシュのキー
const listingKey = "events"

// ListingCache はイベント一覧のキャッシュを管理する
// 日時は encoding/json の RFC3339 ナノ秒表現でシリアライズされ、
// 往復しても時刻が失われない
type ListingCache struct {
	client *redis.Client
}

// NewListingCache は新しいListingCacheインスタンスを作成する
func NewListingCache(client *redis.Client) *ListingCache {
	return &ListingCache{client: client}
}

// Get はイベント一覧をキャッシュから取得する
func (c *ListingCache) Get(ctx context.Context) ([]*event.Event, error) {
	data, err := c.client.Get(ctx, listingKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}

	var events []*event.Event
	if err := json.Unmarshal(data, &events); err != nil {
		// 壊れたエントリはミス扱い
		return nil, ErrCacheMiss
	}
	return events, nil
}

// Set はイベント一覧をTTL付きでキャッシュに保存する
func (c *ListingCache) Set(ctx context.Context, events []*event.Event, ttl time.Duration) error {
	data, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("キャッシュのシリアライズに失敗: %w", err)
	}
	if err := c.client.Set(ctx, listingKey, data, ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate はイベント一覧のキャッシュを無効化する
func (c *ListingCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, listingKey).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}
