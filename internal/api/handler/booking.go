package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-event-booking/internal/application"
	"github.com/sanosuguru/go-event-booking/internal/domain/booking"
	"github.com/sanosuguru/go-event-booking/internal/domain/event"
	"github.com/sanosuguru/go-event-booking/internal/domain/user"
)

type BookingHandler struct {
	service BookingServiceInterface
}

func NewBookingHandler(s BookingServiceInterface) *BookingHandler {
	return &BookingHandler{service: s}
}

type CreateBookingRequest struct {
	EventID     string `json:"event_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	SeatsBooked int    `json:"seats_booked" validate:"required,gt=0" example:"2"`
}

type BookingResponse struct {
	ID          string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	EventID     string `json:"event_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	UserID      string `json:"user_id" example:"user-123"`
	SeatsBooked int    `json:"seats_booked" example:"2"`
	Status      string `json:"status" example:"confirmed"`
	CreatedAt   string `json:"created_at" example:"2026-08-01T10:00:00+09:00"`
}

func toBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:          b.ID,
		EventID:     b.EventID,
		UserID:      b.UserID,
		SeatsBooked: b.SeatsBooked,
		Status:      string(b.Status),
		CreatedAt:   b.CreatedAt.Format(time.RFC3339),
	}
}

type AdminBookingResponse struct {
	BookingResponse
	EventTitle string `json:"event_title" example:"東京ドームコンサート2026"`
	UserName   string `json:"user_name" example:"山田太郎"`
	UserEmail  string `json:"user_email" example:"taro@example.com"`
}

// Create godoc
// @Summary 座席を予約
// @Description 指定イベントの座席を予約します
// @Tags bookings
// @Accept json
// @Produce json
// @Param request body CreateBookingRequest true "予約情報"
// @Success 201 {object} BookingResponse
// @Failure 400 {object} map[string]string "空席不足"
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "ロック待ちタイムアウト"
// @Router /bookings [post]
func (h *BookingHandler) Create(c echo.Context) error {
	req, err := requesterFrom(c)
	if err != nil {
		return err
	}

	var body CreateBookingRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です")
	}
	if err := c.Validate(&body); err != nil {
		return err
	}

	b, err := h.service.Reserve(c.Request().Context(), req, application.ReserveInput{
		EventID:     body.EventID,
		SeatsBooked: body.SeatsBooked,
	})
	if err != nil {
		switch {
		case errors.Is(err, event.ErrEventNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, event.ErrInsufficientSeats):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, event.ErrLockTimeout):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, booking.ErrInvalidSeatsBooked):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusCreated, toBookingResponse(b))
}

// ListMine godoc
// @Summary 自分の予約一覧を取得
// @Description ログインユーザーの予約一覧を取得します
// @Tags bookings
// @Produce json
// @Success 200 {array} BookingResponse
// @Failure 401 {object} map[string]string
// @Router /bookings/my [get]
func (h *BookingHandler) ListMine(c echo.Context) error {
	req, err := requesterFrom(c)
	if err != nil {
		return err
	}

	bookings, err := h.service.ListUserBookings(c.Request().Context(), req)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = toBookingResponse(b)
	}
	return c.JSON(http.StatusOK, resp)
}

// Cancel godoc
// @Summary 予約をキャンセル
// @Description 予約をキャンセルし、座席を在庫に戻します
// @Tags bookings
// @Param id path string true "予約ID"
// @Success 204
// @Failure 400 {object} map[string]string "キャンセル済み"
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /bookings/{id} [delete]
func (h *BookingHandler) Cancel(c echo.Context) error {
	req, err := requesterFrom(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	if err := h.service.Cancel(c.Request().Context(), req, id); err != nil {
		switch {
		case errors.Is(err, booking.ErrBookingNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, booking.ErrNotOwner):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, booking.ErrAlreadyCancelled):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, event.ErrLockTimeout):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// ListAll godoc
// @Summary 全予約一覧を取得
// @Description 全予約をイベント・ユーザー情報付きで取得します（管理者のみ）
// @Tags bookings
// @Produce json
// @Success 200 {array} AdminBookingResponse
// @Failure 403 {object} map[string]string
// @Router /admin/bookings [get]
func (h *BookingHandler) ListAll(c echo.Context) error {
	req, err := requesterFrom(c)
	if err != nil {
		return err
	}

	bookings, err := h.service.ListAllBookings(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, user.ErrForbidden) {
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]AdminBookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = AdminBookingResponse{
			BookingResponse: toBookingResponse(&b.Booking),
			EventTitle:      b.EventTitle,
			UserName:        b.UserName,
			UserEmail:       b.UserEmail,
		}
	}
	return c.JSON(http.StatusOK, resp)
}
