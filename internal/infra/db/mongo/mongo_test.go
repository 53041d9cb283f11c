package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	domainbooking "gowaay/internal/domain/booking"
	"gowaay/internal/domain/shared/daterange"
	"gowaay/internal/domain/shared/money"
	domainuser "gowaay/internal/domain/user"
)

func sampleBooking() *domainbooking.Booking {
	checkIn := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	return &domainbooking.Booking{
		ID:            "b1",
		RoomID:        "r1",
		RoomTitle:     "Sea view",
		HostID:        "h1",
		UserID:        "u1",
		Range:         daterange.DateRange{CheckIn: checkIn, CheckOut: checkIn.AddDate(0, 0, 2)},
		Guests:        2,
		Nights:        2,
		Amount:        money.Money{Amount: 5000, Currency: "BDT"},
		Status:        domainbooking.StatusPending,
		PaymentStatus: domainbooking.PaymentPending,
		ManualPayment: &domainbooking.ManualPayment{
			TxnID:       "BK123",
			Method:      "bkash",
			AmountTk:    5000,
			SubmittedAt: checkIn.Add(-time.Hour),
		},
		AwaitingVerification: true,
		CreatedAt:            checkIn.Add(-48 * time.Hour),
		UpdatedAt:            checkIn.Add(-time.Hour),
		Version:              3,
	}
}

func TestBookingDocumentRoundTrip(t *testing.T) {
	b := sampleBooking()
	raw, err := bson.Marshal(newBookingDocument(b))
	require.NoError(t, err)

	var doc bookingDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))
	got := doc.toAggregate()

	assert.Equal(t, b.Range, got.Range)
	assert.Equal(t, b.Amount, got.Amount)
	require.NotNil(t, got.ManualPayment)
	assert.Equal(t, "BK123", got.ManualPayment.TxnID)
	assert.True(t, got.AwaitingVerification)
	assert.EqualValues(t, 3, got.Version)
}

func TestToBSONFlattensAmount(t *testing.T) {
	doc, err := toBSON(newBookingDocument(sampleBooking()))
	require.NoError(t, err)
	amount, ok := doc["amount"].(bson.M)
	require.True(t, ok)
	assert.EqualValues(t, 5000, amount["amount"])
	assert.Equal(t, "b1", doc["_id"])
}

func TestUserDocumentLowercasesEmail(t *testing.T) {
	doc := newUserDocument(&domainuser.User{ID: "u1", Email: " Alice@Example.COM ", Roles: []domainuser.Role{domainuser.RoleGuest, domainuser.RoleHost}})
	assert.Equal(t, "alice@example.com", doc.Email)
	assert.Equal(t, []string{"guest", "host"}, doc.Roles)
	assert.True(t, doc.toAggregate().HasRole(domainuser.RoleHost))
}

func TestContainsInsensitiveQuotesInput(t *testing.T) {
	m := containsInsensitive("a.b+")
	assert.Equal(t, `a\.b\+`, m["$regex"])
	assert.Equal(t, "i", m["$options"])
}

func TestBookingRepositoryWithMockDeployment(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("save bumps version", func(mt *mtest.T) {
		repo := &BookingRepository{col: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))
		b := sampleBooking()
		require.NoError(mt, repo.Save(context.Background(), b))
		assert.EqualValues(mt, 4, b.Version)
	})

	mt.Run("stale version conflicts", func(mt *mtest.T) {
		repo := &BookingRepository{col: mt.Coll}
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "E11000 duplicate key error"}))
		b := sampleBooking()
		err := repo.Save(context.Background(), b)
		assert.ErrorIs(mt, err, domainbooking.ErrConcurrentUpdate)
		assert.EqualValues(mt, 3, b.Version)
	})

	mt.Run("missing booking", func(mt *mtest.T) {
		repo := &BookingRepository{col: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.bookings", mtest.FirstBatch))
		_, err := repo.ByID(context.Background(), "nope")
		assert.ErrorIs(mt, err, domainbooking.ErrNotFound)
	})

	mt.Run("revenue sums paid bookings", func(mt *mtest.T) {
		repo := &BookingRepository{col: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.bookings", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: nil}, {Key: "total", Value: int64(7500)}}))
		total, err := repo.Revenue(context.Background())
		require.NoError(mt, err)
		assert.EqualValues(mt, 7500, total)
	})
}

func TestUserRepositoryDuplicateEmail(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate email", func(mt *mtest.T) {
		repo := &UserRepository{col: mt.Coll}
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "E11000 duplicate key error"}))
		err := repo.Save(context.Background(), &domainuser.User{ID: "u2", Email: "a@b.c"})
		assert.ErrorIs(mt, err, domainuser.ErrEmailAlreadyUsed)
	})
}
