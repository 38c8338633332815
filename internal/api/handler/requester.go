package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-event-booking/internal/api/middleware"
	"github.com/sanosuguru/go-event-booking/internal/application"
)

// requesterFrom は認証ミドルウェアが設定した呼び出し元の身元を取り出す
func requesterFrom(c echo.Context) (application.Requester, error) {
	req, ok := c.Get(middleware.RequesterContextKey).(application.Requester)
	if !ok {
		return application.Requester{}, echo.NewHTTPError(http.StatusUnauthorized, "認証情報がありません")
	}
	return req, nil
}
