package memory

import (
	"context"
	"errors"

	"gowaay/internal/app/uow"
	domainbooking "gowaay/internal/domain/booking"
	domainhosts "gowaay/internal/domain/hosts"
	domainpayments "gowaay/internal/domain/payments"
	domainrooms "gowaay/internal/domain/rooms"
	domainuser "gowaay/internal/domain/user"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	RoomsRepo    domainrooms.Repository
	HostsRepo    domainhosts.Repository
	BookingsRepo domainbooking.Repository
	PaymentsRepo domainpayments.Repository
	UsersRepo    domainuser.Repository
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// NewFactory builds a factory over fresh empty repositories sharing the given users.
func NewFactory(users domainuser.Repository) Factory {
	if users == nil {
		users = NewUserRepository()
	}
	return Factory{
		RoomsRepo:    NewRoomRepository(),
		HostsRepo:    NewHostRepository(),
		BookingsRepo: NewBookingRepository(),
		PaymentsRepo: NewPaymentRepository(),
		UsersRepo:    users,
	}
}

// Begin starts a lightweight transaction boundary. Saves are visible immediately
// and Rollback does not undo them.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.RoomsRepo == nil || f.HostsRepo == nil || f.BookingsRepo == nil || f.PaymentsRepo == nil || f.UsersRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		rooms:    f.RoomsRepo,
		hosts:    f.HostsRepo,
		bookings: f.BookingsRepo,
		payments: f.PaymentsRepo,
		users:    f.UsersRepo,
	}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	rooms    domainrooms.Repository
	hosts    domainhosts.Repository
	bookings domainbooking.Repository
	payments domainpayments.Repository
	users    domainuser.Repository
}

func (u *Unit) Rooms() domainrooms.Repository { return u.rooms }

func (u *Unit) Hosts() domainhosts.Repository { return u.hosts }

func (u *Unit) Bookings() domainbooking.Repository { return u.bookings }

func (u *Unit) Payments() domainpayments.Repository { return u.payments }

func (u *Unit) Users() domainuser.Repository { return u.users }

func (u *Unit) Commit(ctx context.Context) error {
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}

var _ uow.UoWFactory = Factory{}
