package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	domainbooking "gowaay/internal/domain/booking"
	domainhosts "gowaay/internal/domain/hosts"
	domainrooms "gowaay/internal/domain/rooms"
	"gowaay/internal/domain/shared/daterange"
	"gowaay/internal/domain/shared/money"
)

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection("bookings")}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	doc, err := findOne[bookingDocument](ctx, r.col, bson.M{"_id": string(id)}, domainbooking.ErrNotFound)
	if err != nil {
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc, err := toBSON(newBookingDocument(b))
	if err != nil {
		return err
	}
	version, err := saveVersioned(ctx, r.col, string(b.ID), b.Version, doc, domainbooking.ErrConcurrentUpdate)
	if err != nil {
		return err
	}
	b.Version = version
	return nil
}

func (r *BookingRepository) List(ctx context.Context, params domainbooking.ListParams) ([]*domainbooking.Booking, int, error) {
	docs, total, err := findPage[bookingDocument](ctx, r.col, bookingFilter(params), params.Limit, params.Offset)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*domainbooking.Booking, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toAggregate())
	}
	return out, total, nil
}

func (r *BookingRepository) Count(ctx context.Context, status domainbooking.Status) (int, error) {
	return countWhere(ctx, r.col, "status", string(status))
}

// Revenue sums confirmed and paid bookings.
func (r *BookingRepository) Revenue(ctx context.Context) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: paidMatch()}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$amount.amount"}}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	var rows []struct {
		Total int64 `bson:"total"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

func (r *BookingRepository) TotalsByUser(ctx context.Context, userIDs []string) (map[string]domainbooking.UserTotals, error) {
	out := make(map[string]domainbooking.UserTotals, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": bson.M{"$in": userIDs}}}},
		{{Key: "$group", Value: bson.M{
			"_id":      "$user_id",
			"bookings": bson.M{"$sum": 1},
			"spent": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$and": bson.A{
					bson.M{"$eq": bson.A{"$status", string(domainbooking.StatusConfirmed)}},
					bson.M{"$eq": bson.A{"$payment_status", string(domainbooking.PaymentPaid)}},
				}},
				"$amount.amount",
				0,
			}}},
		}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		UserID   string `bson:"_id"`
		Bookings int    `bson:"bookings"`
		Spent    int64  `bson:"spent"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.UserID] = domainbooking.UserTotals{Bookings: row.Bookings, TotalSpent: row.Spent}
	}
	return out, nil
}

func bookingFilter(params domainbooking.ListParams) bson.M {
	filter := bson.M{}
	if params.UserID != "" {
		filter["user_id"] = params.UserID
	}
	if params.Status != "" {
		filter["status"] = string(params.Status)
	}
	if params.PaymentStatus != "" {
		filter["payment_status"] = string(params.PaymentStatus)
	}
	return filter
}

func paidMatch() bson.M {
	return bson.M{
		"status":         string(domainbooking.StatusConfirmed),
		"payment_status": string(domainbooking.PaymentPaid),
	}
}

type bookingDocument struct {
	ID                   string                 `bson:"_id"`
	RoomID               string                 `bson:"room_id"`
	RoomTitle            string                 `bson:"room_title"`
	HostID               string                 `bson:"host_id"`
	UserID               string                 `bson:"user_id"`
	CheckIn              time.Time              `bson:"check_in"`
	CheckOut             time.Time              `bson:"check_out"`
	Guests               int                    `bson:"guests"`
	Nights               int                    `bson:"nights"`
	Amount               money.Money            `bson:"amount"`
	Status               string                 `bson:"status"`
	PaymentStatus        string                 `bson:"payment_status"`
	TransactionID        string                 `bson:"transaction_id,omitempty"`
	BankTransactionID    string                 `bson:"bank_transaction_id,omitempty"`
	ManualPayment        *manualPaymentDocument `bson:"manual_payment,omitempty"`
	AwaitingVerification bool                   `bson:"awaiting_verification"`
	CreatedAt            time.Time              `bson:"created_at"`
	UpdatedAt            time.Time              `bson:"updated_at"`
	Version              int64                  `bson:"version"`
}

type manualPaymentDocument struct {
	TxnID       string    `bson:"txn_id"`
	Method      string    `bson:"method"`
	AmountTk    int64     `bson:"amount_tk"`
	SubmittedAt time.Time `bson:"submitted_at"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	doc := bookingDocument{
		ID:                   string(b.ID),
		RoomID:               string(b.RoomID),
		RoomTitle:            b.RoomTitle,
		HostID:               string(b.HostID),
		UserID:               b.UserID,
		CheckIn:              utc(b.Range.CheckIn),
		CheckOut:             utc(b.Range.CheckOut),
		Guests:               b.Guests,
		Nights:               b.Nights,
		Amount:               b.Amount,
		Status:               string(b.Status),
		PaymentStatus:        string(b.PaymentStatus),
		TransactionID:        b.TransactionID,
		BankTransactionID:    b.BankTransactionID,
		AwaitingVerification: b.AwaitingVerification,
		CreatedAt:            utc(b.CreatedAt),
		UpdatedAt:            utc(b.UpdatedAt),
		Version:              b.Version,
	}
	if mp := b.ManualPayment; mp != nil {
		doc.ManualPayment = &manualPaymentDocument{TxnID: mp.TxnID, Method: mp.Method, AmountTk: mp.AmountTk, SubmittedAt: utc(mp.SubmittedAt)}
	}
	return doc
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	b := &domainbooking.Booking{
		ID:                   domainbooking.ID(d.ID),
		RoomID:               domainrooms.ID(d.RoomID),
		RoomTitle:            d.RoomTitle,
		HostID:               domainhosts.ID(d.HostID),
		UserID:               d.UserID,
		Range:                daterange.DateRange{CheckIn: d.CheckIn.UTC(), CheckOut: d.CheckOut.UTC()},
		Guests:               d.Guests,
		Nights:               d.Nights,
		Amount:               d.Amount,
		Status:               domainbooking.Status(d.Status),
		PaymentStatus:        domainbooking.PaymentStatus(d.PaymentStatus),
		TransactionID:        d.TransactionID,
		BankTransactionID:    d.BankTransactionID,
		AwaitingVerification: d.AwaitingVerification,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
		Version:              d.Version,
	}
	if mp := d.ManualPayment; mp != nil {
		b.ManualPayment = &domainbooking.ManualPayment{TxnID: mp.TxnID, Method: mp.Method, AmountTk: mp.AmountTk, SubmittedAt: mp.SubmittedAt}
	}
	return b
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
