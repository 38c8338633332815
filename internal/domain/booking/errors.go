package booking

import "errors"

// Booking ドメインのエラー定義
var (
	ErrBookingNotFound    = errors.New("予約が見つかりません")
	ErrAlreadyCancelled   = errors.New("予約は既にキャンセルされています")
	ErrNotOwner           = errors.New("予約の所有者ではありません")
	ErrEventIDRequired    = errors.New("イベントIDは必須です")
	ErrUserIDRequired     = errors.New("ユーザーIDは必須です")
	ErrInvalidSeatsBooked = errors.New("予約席数は1以上である必要があります")
)
