package uow

import (
	"context"

	domainbooking "gowaay/internal/domain/booking"
	domainhosts "gowaay/internal/domain/hosts"
	domainpayments "gowaay/internal/domain/payments"
	domainrooms "gowaay/internal/domain/rooms"
	domainuser "gowaay/internal/domain/user"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Rooms() domainrooms.Repository
	Hosts() domainhosts.Repository
	Bookings() domainbooking.Repository
	Payments() domainpayments.Repository
	Users() domainuser.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
