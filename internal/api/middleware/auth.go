package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-event-booking/internal/application"
	"github.com/sanosuguru/go-event-booking/internal/domain/user"
	"github.com/sanosuguru/go-event-booking/internal/pkg/auth"
)

// RequesterContextKey は認証済みの呼び出し元をコンテキストに格納するキー
const RequesterContextKey = "requester"

// JWTAuth はBearerトークンを検証し、呼び出し元の身元をコンテキストに設定する
// トークンが無い・無効な場合は 401 を返す
func JWTAuth(issuer *auth.TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "認証情報がありません")
			}

			tokenStr, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "認証情報の形式が不正です")
			}

			claims, err := issuer.Parse(tokenStr)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "認証情報を検証できません")
			}

			c.Set(RequesterContextKey, application.Requester{
				UserID: claims.Sub,
				Role:   user.Role(claims.Role),
			})
			return next(c)
		}
	}
}
