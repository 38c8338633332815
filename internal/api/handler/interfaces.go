package handler

import (
	"context"

	"github.com/sanosuguru/go-event-booking/internal/application"
	"github.com/sanosuguru/go-event-booking/internal/domain/booking"
	"github.com/sanosuguru/go-event-booking/internal/domain/event"
	"github.com/sanosuguru/go-event-booking/internal/domain/user"
)

// EventServiceInterface はイベントサービスのインターフェース
type EventServiceInterface interface {
	ListEvents(ctx context.Context) ([]*event.Event, error)
	GetEvent(ctx context.Context, id string) (*event.Event, error)
	CreateEvent(ctx context.Context, req application.Requester, input application.CreateEventInput) (*event.Event, error)
	UpdateEvent(ctx context.Context, req application.Requester, input application.UpdateEventInput) (*event.Event, error)
	DeleteEvent(ctx context.Context, req application.Requester, id string) error
}

// BookingServiceInterface は予約サービスのインターフェース
type BookingServiceInterface interface {
	Reserve(ctx context.Context, req application.Requester, input application.ReserveInput) (*booking.Booking, error)
	Cancel(ctx context.Context, req application.Requester, bookingID string) error
	ListUserBookings(ctx context.Context, req application.Requester) ([]*booking.Booking, error)
	ListAllBookings(ctx context.Context, req application.Requester) ([]*booking.DetailedBooking, error)
}

// AuthServiceInterface は認証サービスのインターフェース
type AuthServiceInterface interface {
	Signup(ctx context.Context, input application.SignupInput) (*user.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	GetUser(ctx context.Context, id string) (*user.User, error)
}
