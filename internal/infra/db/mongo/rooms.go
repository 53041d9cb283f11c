package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	domainhosts "gowaay/internal/domain/hosts"
	domainrooms "gowaay/internal/domain/rooms"
)

type RoomRepository struct {
	col *mongo.Collection
}

func NewRoomRepository(db *mongo.Database) *RoomRepository {
	return &RoomRepository{col: db.Collection("rooms")}
}

func (r *RoomRepository) ByID(ctx context.Context, id domainrooms.ID) (*domainrooms.Room, error) {
	doc, err := findOne[roomDocument](ctx, r.col, bson.M{"_id": string(id)}, domainrooms.ErrNotFound)
	if err != nil {
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *RoomRepository) Save(ctx context.Context, room *domainrooms.Room) error {
	doc, err := toBSON(newRoomDocument(room))
	if err != nil {
		return err
	}
	version, err := saveVersioned(ctx, r.col, string(room.ID), room.Version, doc, domainrooms.ErrConcurrentUpdate)
	if err != nil {
		return err
	}
	room.Version = version
	return nil
}

func (r *RoomRepository) List(ctx context.Context, params domainrooms.ListParams) ([]*domainrooms.Room, int, error) {
	filter := bson.M{}
	if params.Status != "" {
		filter["status"] = string(params.Status)
	}
	if params.HostID != "" {
		filter["host_id"] = string(params.HostID)
	}
	docs, total, err := findPage[roomDocument](ctx, r.col, filter, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*domainrooms.Room, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toAggregate())
	}
	return out, total, nil
}

func (r *RoomRepository) Count(ctx context.Context, status domainrooms.Status) (int, error) {
	return countWhere(ctx, r.col, "status", string(status))
}

type roomDocument struct {
	ID               string      `bson:"_id"`
	HostID           string      `bson:"host_id"`
	Title            string      `bson:"title"`
	Description      string      `bson:"description"`
	Address          string      `bson:"address"`
	LocationName     string      `bson:"location_name"`
	LocationMapURL   string      `bson:"location_map_url,omitempty"`
	RoomType         string      `bson:"room_type"`
	Amenities        []string    `bson:"amenities"`
	Images           []string    `bson:"images"`
	MaxGuests        int         `bson:"max_guests"`
	Bedrooms         int         `bson:"bedrooms"`
	Beds             int         `bson:"beds"`
	Baths            int         `bson:"baths"`
	InstantBooking   bool        `bson:"instant_booking"`
	UnavailableDates []time.Time `bson:"unavailable_dates"`
	BasePriceTk      int64       `bson:"base_price_tk"`
	CommissionTk     int64       `bson:"commission_tk"`
	TotalPriceTk     int64       `bson:"total_price_tk"`
	Status           string      `bson:"status"`
	IsAdminCreated   bool        `bson:"is_admin_created"`
	ReviewNote       string      `bson:"review_note,omitempty"`
	CreatedAt        time.Time   `bson:"created_at"`
	UpdatedAt        time.Time   `bson:"updated_at"`
	Version          int64       `bson:"version"`
}

func newRoomDocument(r *domainrooms.Room) roomDocument {
	return roomDocument{
		ID:               string(r.ID),
		HostID:           string(r.HostID),
		Title:            r.Title,
		Description:      r.Description,
		Address:          r.Address,
		LocationName:     r.LocationName,
		LocationMapURL:   r.LocationMapURL,
		RoomType:         r.RoomType,
		Amenities:        r.Amenities,
		Images:           r.Images,
		MaxGuests:        r.MaxGuests,
		Bedrooms:         r.Bedrooms,
		Beds:             r.Beds,
		Baths:            r.Baths,
		InstantBooking:   r.InstantBooking,
		UnavailableDates: r.UnavailableDates,
		BasePriceTk:      r.BasePriceTk,
		CommissionTk:     r.CommissionTk,
		TotalPriceTk:     r.TotalPriceTk,
		Status:           string(r.Status),
		IsAdminCreated:   r.IsAdminCreated,
		ReviewNote:       r.ReviewNote,
		CreatedAt:        utc(r.CreatedAt),
		UpdatedAt:        utc(r.UpdatedAt),
		Version:          r.Version,
	}
}

func (d roomDocument) toAggregate() *domainrooms.Room {
	return &domainrooms.Room{
		ID:               domainrooms.ID(d.ID),
		HostID:           domainhosts.ID(d.HostID),
		Title:            d.Title,
		Description:      d.Description,
		Address:          d.Address,
		LocationName:     d.LocationName,
		LocationMapURL:   d.LocationMapURL,
		RoomType:         d.RoomType,
		Amenities:        d.Amenities,
		Images:           d.Images,
		MaxGuests:        d.MaxGuests,
		Bedrooms:         d.Bedrooms,
		Beds:             d.Beds,
		Baths:            d.Baths,
		InstantBooking:   d.InstantBooking,
		UnavailableDates: d.UnavailableDates,
		BasePriceTk:      d.BasePriceTk,
		CommissionTk:     d.CommissionTk,
		TotalPriceTk:     d.TotalPriceTk,
		Status:           domainrooms.Status(d.Status),
		IsAdminCreated:   d.IsAdminCreated,
		ReviewNote:       d.ReviewNote,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
		Version:          d.Version,
	}
}

var _ domainrooms.Repository = (*RoomRepository)(nil)
