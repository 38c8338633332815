package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-booking/internal/pkg/logger"
)

// ListingRefresher はイベント一覧キャッシュを再投入するインターフェース
type ListingRefresher interface {
	RefreshListing(ctx context.Context) (int, error)
}

// ListingCacheWarmer はイベント一覧キャッシュを定期的に温めるワーカー
// TTL失効直後のDB直撃を緩和するための補助であり、失敗しても業務処理には影響しない
type ListingCacheWarmer struct {
	eventService ListingRefresher
	interval     time.Duration
	stopCh       chan struct{}
	doneCh       chan struct{}
}

// NewListingCacheWarmer は新しいウォーマーを作成
func NewListingCacheWarmer(es ListingRefresher, interval time.Duration) *ListingCacheWarmer {
	return &ListingCacheWarmer{
		eventService: es,
		interval:     interval,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
}

// Start はウォーマーを開始
func (w *ListingCacheWarmer) Start(ctx context.Context) {
	logger.Info("一覧キャッシュウォーマー開始",
		zap.Duration("interval", w.interval),
	)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("一覧キャッシュウォーマー停止（コンテキストキャンセル）")
			return
		case <-w.stopCh:
			logger.Info("一覧キャッシュウォーマー停止（シグナル受信）")
			return
		case <-ticker.C:
			w.warm(ctx)
		}
	}
}

// Stop はウォーマーを停止
func (w *ListingCacheWarmer) Stop() {
	close(w.stopCh)
	<-w.doneCh
}

// warm はキャッシュを再投入
func (w *ListingCacheWarmer) warm(ctx context.Context) {
	log := logger.Get()
	log.Debug("一覧キャッシュの再投入開始")

	count, err := w.eventService.RefreshListing(ctx)
	if err != nil {
		log.Error("一覧キャッシュの再投入失敗", zap.Error(err))
		return
	}
	log.Debug("一覧キャッシュを再投入", zap.Int("count", count))
}
