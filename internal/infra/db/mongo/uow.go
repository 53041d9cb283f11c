package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"

	"gowaay/internal/app/uow"
	domainbooking "gowaay/internal/domain/booking"
	domainhosts "gowaay/internal/domain/hosts"
	domainpayments "gowaay/internal/domain/payments"
	domainrooms "gowaay/internal/domain/rooms"
	domainuser "gowaay/internal/domain/user"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
// With Transactions off (standalone mongod) units write straight through.
type Factory struct {
	DB           *mongo.Database
	Transactions bool

	RoomsRepo    domainrooms.Repository
	HostsRepo    domainhosts.Repository
	BookingsRepo domainbooking.Repository
	PaymentsRepo domainpayments.Repository
	UsersRepo    domainuser.Repository
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

func NewFactory(db *mongo.Database, transactions bool) Factory {
	return Factory{
		DB:           db,
		Transactions: transactions,
		RoomsRepo:    NewRoomRepository(db),
		HostsRepo:    NewHostRepository(db),
		BookingsRepo: NewBookingRepository(db),
		PaymentsRepo: NewPaymentRepository(db),
		UsersRepo:    NewUserRepository(db),
	}
}

// Begin starts a MongoDB session/transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	unit := &Unit{
		rooms:    f.RoomsRepo,
		hosts:    f.HostsRepo,
		bookings: f.BookingsRepo,
		payments: f.PaymentsRepo,
		users:    f.UsersRepo,
	}
	if !f.Transactions {
		return unit, nil
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(readconcern.Snapshot()).SetWriteConcern(f.DB.WriteConcern())
	if opts.ReadOnly {
		txnOpts = txnOpts.SetReadConcern(readconcern.Majority())
	}
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	unit.session = session
	return unit, nil
}

type Unit struct {
	session mongo.Session

	rooms    domainrooms.Repository
	hosts    domainhosts.Repository
	bookings domainbooking.Repository
	payments domainpayments.Repository
	users    domainuser.Repository
}

func (u *Unit) Rooms() domainrooms.Repository {
	return u.rooms
}

func (u *Unit) Hosts() domainhosts.Repository {
	return u.hosts
}

func (u *Unit) Bookings() domainbooking.Repository {
	return u.bookings
}

func (u *Unit) Payments() domainpayments.Repository {
	return u.payments
}

func (u *Unit) Users() domainuser.Repository {
	return u.users
}

func (u *Unit) Commit(ctx context.Context) error {
	if u.session == nil {
		return nil
	}
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	if u.session == nil {
		return nil
	}
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures Mongo session is available in context for downstream repos.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	if u.session == nil {
		return ctx
	}
	return mongo.NewSessionContext(ctx, u.session)
}

var _ uow.UoWFactory = Factory{}
