package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-event-booking/internal/application"
	"github.com/sanosuguru/go-event-booking/internal/domain/booking"
	"github.com/sanosuguru/go-event-booking/internal/domain/event"
	"github.com/sanosuguru/go-event-booking/internal/domain/user"
)

// MockBookingService はBookingServiceInterfaceのモック
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) Reserve(ctx context.Context, req application.Requester, input application.ReserveInput) (*booking.Booking, error) {
	args := m.Called(ctx, req, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) Cancel(ctx context.Context, req application.Requester, bookingID string) error {
	args := m.Called(ctx, req, bookingID)
	return args.Error(0)
}

func (m *MockBookingService) ListUserBookings(ctx context.Context, req application.Requester) ([]*booking.Booking, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Booking), args.Error(1)
}

func (m *MockBookingService) ListAllBookings(ctx context.Context, req application.Requester) ([]*booking.DetailedBooking, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.DetailedBooking), args.Error(1)
}

func TestBookingHandler_Create(t *testing.T) {
	e := NewTestEcho()

	t.Run("正常に予約できる", func(t *testing.T) {
		mockService := new(MockBookingService)
		expected := &booking.Booking{
			ID: "booking-1", EventID: "event-1", UserID: "user-1",
			SeatsBooked: 2, Status: booking.StatusConfirmed,
		}
		mockService.On("Reserve", mock.Anything, mock.AnythingOfType("application.Requester"), application.ReserveInput{EventID: "event-1", SeatsBooked: 2}).
			Return(expected, nil)

		handler := NewBookingHandler(mockService)

		reqBody := `{"event_id": "event-1", "seats_booked": 2}`
		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		withRequester(c, user.RoleUser)

		err := handler.Create(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp BookingResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "booking-1", resp.ID)
		assert.Equal(t, "confirmed", resp.Status)

		mockService.AssertExpectations(t)
	})

	t.Run("空席不足は400", func(t *testing.T) {
		mockService := new(MockBookingService)
		mockService.On("Reserve", mock.Anything, mock.AnythingOfType("application.Requester"), mock.AnythingOfType("application.ReserveInput")).
			Return(nil, event.ErrInsufficientSeats)

		handler := NewBookingHandler(mockService)

		reqBody := `{"event_id": "event-1", "seats_booked": 100}`
		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		withRequester(c, user.RoleUser)

		err := handler.Create(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})

	t.Run("存在しないイベントは404", func(t *testing.T) {
		mockService := new(MockBookingService)
		mockService.On("Reserve", mock.Anything, mock.AnythingOfType("application.Requester"), mock.AnythingOfType("application.ReserveInput")).
			Return(nil, event.ErrEventNotFound)

		handler := NewBookingHandler(mockService)

		reqBody := `{"event_id": "missing", "seats_booked": 1}`
		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		withRequester(c, user.RoleUser)

		err := handler.Create(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusNotFound, he.Code)
	})

	t.Run("ロック待ちタイムアウトは409", func(t *testing.T) {
		mockService := new(MockBookingService)
		mockService.On("Reserve", mock.Anything, mock.AnythingOfType("application.Requester"), mock.AnythingOfType("application.ReserveInput")).
			Return(nil, event.ErrLockTimeout)

		handler := NewBookingHandler(mockService)

		reqBody := `{"event_id": "event-1", "seats_booked": 1}`
		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		withRequester(c, user.RoleUser)

		err := handler.Create(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusConflict, he.Code)
	})

	t.Run("席数0はバリデーションエラー", func(t *testing.T) {
		mockService := new(MockBookingService)
		handler := NewBookingHandler(mockService)

		reqBody := `{"event_id": "event-1", "seats_booked": 0}`
		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		withRequester(c, user.RoleUser)

		err := handler.Create(c)

		require.Error(t, err)
		mockService.AssertNotCalled(t, "Reserve")
	})
}

func TestBookingHandler_Cancel(t *testing.T) {
	e := NewTestEcho()

	newCancelContext := func() (echo.Context, *httptest.ResponseRecorder) {
		req := httptest.NewRequest(http.MethodDelete, "/bookings/booking-1", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("booking-1")
		withRequester(c, user.RoleUser)
		return c, rec
	}

	t.Run("キャンセル成功は204", func(t *testing.T) {
		mockService := new(MockBookingService)
		mockService.On("Cancel", mock.Anything, mock.AnythingOfType("application.Requester"), "booking-1").Return(nil)

		handler := NewBookingHandler(mockService)
		c, rec := newCancelContext()

		err := handler.Cancel(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("他人の予約は403", func(t *testing.T) {
		mockService := new(MockBookingService)
		mockService.On("Cancel", mock.Anything, mock.AnythingOfType("application.Requester"), "booking-1").
			Return(booking.ErrNotOwner)

		handler := NewBookingHandler(mockService)
		c, _ := newCancelContext()

		err := handler.Cancel(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusForbidden, he.Code)
	})

	t.Run("キャンセル済みは400", func(t *testing.T) {
		mockService := new(MockBookingService)
		mockService.On("Cancel", mock.Anything, mock.AnythingOfType("application.Requester"), "booking-1").
			Return(booking.ErrAlreadyCancelled)

		handler := NewBookingHandler(mockService)
		c, _ := newCancelContext()

		err := handler.Cancel(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})

	t.Run("存在しない予約は404", func(t *testing.T) {
		mockService := new(MockBookingService)
		mockService.On("Cancel", mock.Anything, mock.AnythingOfType("application.Requester"), "booking-1").
			Return(booking.ErrBookingNotFound)

		handler := NewBookingHandler(mockService)
		c, _ := newCancelContext()

		err := handler.Cancel(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusNotFound, he.Code)
	})
}

func TestBookingHandler_ListAll(t *testing.T) {
	e := NewTestEcho()

	t.Run("一般ユーザーは403", func(t *testing.T) {
		mockService := new(MockBookingService)
		mockService.On("ListAllBookings", mock.Anything, mock.AnythingOfType("application.Requester")).
			Return(nil, user.ErrForbidden)

		handler := NewBookingHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/admin/bookings", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		withRequester(c, user.RoleUser)

		err := handler.ListAll(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusForbidden, he.Code)
	})

	t.Run("管理者は結合ビューを取得できる", func(t *testing.T) {
		mockService := new(MockBookingService)
		detailed := []*booking.DetailedBooking{
			{
				Booking:    booking.Booking{ID: "booking-1", Status: booking.StatusConfirmed},
				EventTitle: "テストイベント",
				UserName:   "山田太郎",
				UserEmail:  "taro@example.com",
			},
		}
		mockService.On("ListAllBookings", mock.Anything, mock.AnythingOfType("application.Requester")).
			Return(detailed, nil)

		handler := NewBookingHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/admin/bookings", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		withRequester(c, user.RoleAdmin)

		err := handler.ListAll(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp []AdminBookingResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp, 1)
		assert.Equal(t, "テストイベント", resp[0].EventTitle)
		assert.Equal(t, "taro@example.com", resp[0].UserEmail)
	})
}
