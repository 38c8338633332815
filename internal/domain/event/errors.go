package event

import "errors"

// Event ドメインのエラー定義
var (
	ErrEventNotFound      = errors.New("イベントが見つかりません")
	ErrEventTitleRequired = errors.New("イベントタイトルは必須です")
	ErrInvalidTotalSeats  = errors.New("座席数は1以上である必要があります")
	ErrInsufficientSeats  = errors.New("空席数が不足しています")
	ErrCapacityConflict   = errors.New("座席数の変更により空席数が負になります")
	ErrHasBookings        = errors.New("予約が存在するため削除できません")
	ErrLockTimeout        = errors.New("イベント行のロック取得がタイムアウトしました")
)
