package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-event-booking/internal/application"
	"github.com/sanosuguru/go-event-booking/internal/domain/event"
	"github.com/sanosuguru/go-event-booking/internal/domain/user"
)

type EventHandler struct {
	eventService EventServiceInterface
}

func NewEventHandler(eventService EventServiceInterface) *EventHandler {
	return &EventHandler{eventService: eventService}
}

type CreateEventRequest struct {
	Title      string `json:"title" validate:"required" example:"東京ドームコンサート2026"`
	Location   string `json:"location" example:"東京ドーム"`
	Date       string `json:"date" validate:"required" example:"2026-12-31T18:00:00+09:00"`
	TotalSeats int    `json:"total_seats" validate:"required,gt=0" example:"50000"`
}

type EventResponse struct {
	ID             string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Title          string `json:"title" example:"東京ドームコンサート2026"`
	Location       string `json:"location" example:"東京ドーム"`
	Date           string `json:"date" example:"2026-12-31T18:00:00+09:00"`
	TotalSeats     int    `json:"total_seats" example:"50000"`
	AvailableSeats int    `json:"available_seats" example:"49800"`
	CreatedAt      string `json:"created_at" example:"2026-08-01T10:00:00+09:00"`
	UpdatedAt      string `json:"updated_at" example:"2026-08-01T10:00:00+09:00"`
}

func toEventResponse(e *event.Event) *EventResponse {
	return &EventResponse{
		ID:             e.ID,
		Title:          e.Title,
		Location:       e.Location,
		Date:           e.Date.Format(time.RFC3339Nano),
		TotalSeats:     e.TotalSeats,
		AvailableSeats: e.AvailableSeats,
		CreatedAt:      e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      e.UpdatedAt.Format(time.RFC3339),
	}
}

// List godoc
// @Summary イベント一覧を取得
// @Description イベントの一覧を取得します（キャッシュ優先）
// @Tags events
// @Produce json
// @Success 200 {array} EventResponse
// @Router /events [get]
func (h *EventHandler) List(c echo.Context) error {
	events, err := h.eventService.ListEvents(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	responses := make([]*EventResponse, len(events))
	for i, e := range events {
		responses[i] = toEventResponse(e)
	}
	return c.JSON(http.StatusOK, responses)
}

// GetByID godoc
// @Summary イベントを取得
// @Description 指定IDのイベントを取得します
// @Tags events
// @Produce json
// @Param id path string true "イベントID"
// @Success 200 {object} EventResponse
// @Failure 404 {object} map[string]string
// @Router /events/{id} [get]
func (h *EventHandler) GetByID(c echo.Context) error {
	id := c.Param("id")
	e, err := h.eventService.GetEvent(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, event.ErrEventNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}

// Create godoc
// @Summary イベントを作成
// @Description 新しいイベントを作成します（管理者のみ）
// @Tags events
// @Accept json
// @Produce json
// @Param request body CreateEventRequest true "イベント情報"
// @Success 201 {object} EventResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /events [post]
func (h *EventHandler) Create(c echo.Context) error {
	req, err := requesterFrom(c)
	if err != nil {
		return err
	}

	var body CreateEventRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です")
	}
	if err := c.Validate(&body); err != nil {
		return err
	}

	date, err := time.Parse(time.RFC3339, body.Date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "開催日時の形式が不正です")
	}

	e, err := h.eventService.CreateEvent(c.Request().Context(), req, application.CreateEventInput{
		Title:      body.Title,
		Location:   body.Location,
		Date:       date,
		TotalSeats: body.TotalSeats,
	})
	if err != nil {
		if errors.Is(err, user.ErrForbidden) {
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusCreated, toEventResponse(e))
}

// Update godoc
// @Summary イベントを更新
// @Description 指定IDのイベントを更新します（管理者のみ）。総座席数の変更は差分が空席数に反映されます
// @Tags events
// @Accept json
// @Produce json
// @Param id path string true "イベントID"
// @Param request body CreateEventRequest true "イベント情報"
// @Success 200 {object} EventResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "空席数が負になる変更"
// @Router /events/{id} [put]
func (h *EventHandler) Update(c echo.Context) error {
	req, err := requesterFrom(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	var body CreateEventRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です")
	}
	if err := c.Validate(&body); err != nil {
		return err
	}

	date, err := time.Parse(time.RFC3339, body.Date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "開催日時の形式が不正です")
	}

	e, err := h.eventService.UpdateEvent(c.Request().Context(), req, application.UpdateEventInput{
		ID:         id,
		Title:      body.Title,
		Location:   body.Location,
		Date:       date,
		TotalSeats: body.TotalSeats,
	})
	if err != nil {
		switch {
		case errors.Is(err, user.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, event.ErrEventNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, event.ErrCapacityConflict), errors.Is(err, event.ErrLockTimeout):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}

// Delete godoc
// @Summary イベントを削除
// @Description 指定IDのイベントを削除します（管理者のみ）。予約が存在するイベントは削除できません
// @Tags events
// @Param id path string true "イベントID"
// @Success 204
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "予約が存在する"
// @Router /events/{id} [delete]
func (h *EventHandler) Delete(c echo.Context) error {
	req, err := requesterFrom(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	if err := h.eventService.DeleteEvent(c.Request().Context(), req, id); err != nil {
		switch {
		case errors.Is(err, user.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, event.ErrEventNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, event.ErrHasBookings), errors.Is(err, event.ErrLockTimeout):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.NoContent(http.StatusNoContent)
}
