package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	domainhosts "gowaay/internal/domain/hosts"
)

type HostRepository struct {
	col *mongo.Collection
}

func NewHostRepository(db *mongo.Database) *HostRepository {
	return &HostRepository{col: db.Collection("hosts")}
}

func (r *HostRepository) ByID(ctx context.Context, id domainhosts.ID) (*domainhosts.Profile, error) {
	doc, err := findOne[hostDocument](ctx, r.col, bson.M{"_id": string(id)}, domainhosts.ErrNotFound)
	if err != nil {
		return nil, err
	}
	return doc.toAggregate(), nil
}

// ByUser ignores the system host, which carries the creating admin's user id.
func (r *HostRepository) ByUser(ctx context.Context, userID string) (*domainhosts.Profile, error) {
	doc, err := findOne[hostDocument](ctx, r.col, bson.M{"user_id": userID, "is_system_host": false}, domainhosts.ErrNotFound)
	if err != nil {
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *HostRepository) SystemHost(ctx context.Context) (*domainhosts.Profile, error) {
	doc, err := findOne[hostDocument](ctx, r.col, bson.M{"is_system_host": true}, domainhosts.ErrNotFound)
	if err != nil {
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *HostRepository) Save(ctx context.Context, p *domainhosts.Profile) error {
	doc, err := toBSON(newHostDocument(p))
	if err != nil {
		return err
	}
	version, err := saveVersioned(ctx, r.col, string(p.ID), p.Version, doc, domainhosts.ErrConcurrentUpdate)
	if err != nil {
		return err
	}
	p.Version = version
	return nil
}

func (r *HostRepository) List(ctx context.Context, params domainhosts.ListParams) ([]*domainhosts.Profile, int, error) {
	filter := bson.M{}
	if params.Status != "" {
		filter["status"] = string(params.Status)
	}
	docs, total, err := findPage[hostDocument](ctx, r.col, filter, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*domainhosts.Profile, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toAggregate())
	}
	return out, total, nil
}

func (r *HostRepository) Count(ctx context.Context, status domainhosts.Status) (int, error) {
	return countWhere(ctx, r.col, "status", string(status))
}

type hostDocument struct {
	ID             string    `bson:"_id"`
	UserID         string    `bson:"user_id"`
	DisplayName    string    `bson:"display_name"`
	Phone          string    `bson:"phone"`
	WhatsApp       string    `bson:"whatsapp,omitempty"`
	LocationName   string    `bson:"location_name"`
	LocationMapURL string    `bson:"location_map_url,omitempty"`
	NIDFrontURL    string    `bson:"nid_front_url,omitempty"`
	NIDBackURL     string    `bson:"nid_back_url,omitempty"`
	Status         string    `bson:"status"`
	IsSystemHost   bool      `bson:"is_system_host"`
	ReviewNote     string    `bson:"review_note,omitempty"`
	CreatedAt      time.Time `bson:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at"`
	Version        int64     `bson:"version"`
}

func newHostDocument(p *domainhosts.Profile) hostDocument {
	return hostDocument{
		ID:             string(p.ID),
		UserID:         p.UserID,
		DisplayName:    p.DisplayName,
		Phone:          p.Phone,
		WhatsApp:       p.WhatsApp,
		LocationName:   p.LocationName,
		LocationMapURL: p.LocationMapURL,
		NIDFrontURL:    p.NIDFrontURL,
		NIDBackURL:     p.NIDBackURL,
		Status:         string(p.Status),
		IsSystemHost:   p.IsSystemHost,
		ReviewNote:     p.ReviewNote,
		CreatedAt:      utc(p.CreatedAt),
		UpdatedAt:      utc(p.UpdatedAt),
		Version:        p.Version,
	}
}

func (d hostDocument) toAggregate() *domainhosts.Profile {
	return &domainhosts.Profile{
		ID:             domainhosts.ID(d.ID),
		UserID:         d.UserID,
		DisplayName:    d.DisplayName,
		Phone:          d.Phone,
		WhatsApp:       d.WhatsApp,
		LocationName:   d.LocationName,
		LocationMapURL: d.LocationMapURL,
		NIDFrontURL:    d.NIDFrontURL,
		NIDBackURL:     d.NIDBackURL,
		Status:         domainhosts.Status(d.Status),
		IsSystemHost:   d.IsSystemHost,
		ReviewNote:     d.ReviewNote,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
		Version:        d.Version,
	}
}

var _ domainhosts.Repository = (*HostRepository)(nil)
