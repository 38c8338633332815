package application

import "github.com/sanosuguru/go-event-booking/internal/domain/user"

// Requester は認証済みの呼び出し元を表す
// 認証そのものはトランスポート層で完了しており、コアは身元とロールのみを受け取る
type Requester struct {
	UserID string
	Role   user.Role
}

// IsAdmin は管理者権限を持つかを返す
func (r Requester) IsAdmin() bool {
	return r.Role == user.RoleAdmin
}
