package rooms

import (
	"context"
	"errors"
	"strings"
	"time"

	"gowaay/internal/domain/hosts"
	"gowaay/internal/domain/pricing"
	"gowaay/internal/domain/shared/events"
)

var (
	ErrNotFound            = errors.New("rooms: room not found")
	ErrTitleRequired       = errors.New("rooms: title is required")
	ErrDescriptionMissing  = errors.New("rooms: description is required")
	ErrAddressRequired     = errors.New("rooms: address is required")
	ErrLocationRequired    = errors.New("rooms: location name is required")
	ErrHostRequired        = errors.New("rooms: host is required")
	ErrInvalidGuests       = errors.New("rooms: max guests must be positive")
	ErrHostNotReassignable = errors.New("rooms: host can only be reassigned on admin-created rooms")
	ErrHostNotApproved     = errors.New("rooms: target host is not approved")
	ErrNotBookable         = errors.New("rooms: room is not approved for booking")
	ErrConcurrentUpdate    = errors.New("rooms: concurrent update detected")
)

type ID string

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

const DefaultRoomType = "single"

func ParseStatus(raw string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusPending:
		return StatusPending, true
	case StatusApproved:
		return StatusApproved, true
	case StatusRejected:
		return StatusRejected, true
	}
	return "", false
}

// Room keeps TotalPriceTk equal to BasePriceTk + CommissionTk after every mutation.
type Room struct {
	ID               ID
	HostID           hosts.ID
	Title            string
	Description      string
	Address          string
	LocationName     string
	LocationMapURL   string
	RoomType         string
	Amenities        []string
	Images           []string
	MaxGuests        int
	Bedrooms         int
	Beds             int
	Baths            int
	InstantBooking   bool
	UnavailableDates []time.Time
	BasePriceTk      int64
	CommissionTk     int64
	TotalPriceTk     int64
	Status           Status
	IsAdminCreated   bool
	ReviewNote       string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Version          int64
	events.Recorder
}

type ListParams struct {
	Status Status
	HostID hosts.ID
	Limit  int
	Offset int
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Room, error)
	Save(ctx context.Context, room *Room) error
	List(ctx context.Context, params ListParams) ([]*Room, int, error)
	Count(ctx context.Context, status Status) (int, error)
}

type Details struct {
	Title            string
	Description      string
	Address          string
	LocationName     string
	LocationMapURL   string
	RoomType         string
	Amenities        []string
	Images           []string
	MaxGuests        int
	Bedrooms         int
	Beds             int
	Baths            int
	InstantBooking   bool
	UnavailableDates []time.Time
}

type CreateParams struct {
	ID          ID
	HostID      hosts.ID
	Details     Details
	BasePriceTk int64
	Rule        pricing.Rule
	Now         time.Time
}

// NewRoom builds a host-submitted room awaiting moderation.
func NewRoom(params CreateParams) (*Room, error) {
	room, err := build(params)
	if err != nil {
		return nil, err
	}
	room.Status = StatusPending
	room.Record(RoomSubmitted{RoomID: room.ID, HostID: room.HostID, TotalPriceTk: room.TotalPriceTk, At: room.CreatedAt})
	return room, nil
}

// NewAdminRoom builds an admin-created room which skips moderation.
func NewAdminRoom(params CreateParams) (*Room, error) {
	room, err := build(params)
	if err != nil {
		return nil, err
	}
	room.Status = StatusApproved
	room.IsAdminCreated = true
	room.Record(RoomSubmitted{RoomID: room.ID, HostID: room.HostID, TotalPriceTk: room.TotalPriceTk, AdminCreated: true, At: room.CreatedAt})
	return room, nil
}

func build(params CreateParams) (*Room, error) {
	if strings.TrimSpace(string(params.HostID)) == "" {
		return nil, ErrHostRequired
	}
	d, err := normalizeDetails(params.Details)
	if err != nil {
		return nil, err
	}
	quote, err := pricing.QuoteWith(params.Rule, params.BasePriceTk)
	if err != nil {
		return nil, err
	}
	now := normalizeNow(params.Now)
	r := &Room{
		ID:          params.ID,
		HostID:      params.HostID,
		BasePriceTk: quote.BaseTk,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.applyDetails(d)
	r.setPrice(quote)
	return r, nil
}

// Approve marks the room bookable. A positive override replaces the commission;
// zero keeps the current one.
func (r *Room) Approve(commissionOverrideTk int64, now time.Time) error {
	if commissionOverrideTk < 0 {
		return pricing.ErrInvalidCommission
	}
	commission := r.CommissionTk
	if commissionOverrideTk > 0 {
		commission = commissionOverrideTk
	}
	quote, err := pricing.Recompute(r.BasePriceTk, commission)
	if err != nil {
		return err
	}
	now = normalizeNow(now)
	r.setPrice(quote)
	r.Status = StatusApproved
	r.ReviewNote = ""
	r.UpdatedAt = now
	r.Record(RoomModerated{RoomID: r.ID, Status: StatusApproved, CommissionTk: r.CommissionTk, TotalPriceTk: r.TotalPriceTk, At: now})
	return nil
}

func (r *Room) Reject(note string, now time.Time) {
	now = normalizeNow(now)
	r.Status = StatusRejected
	r.ReviewNote = strings.TrimSpace(note)
	r.UpdatedAt = now
	r.Record(RoomModerated{RoomID: r.ID, Status: StatusRejected, CommissionTk: r.CommissionTk, TotalPriceTk: r.TotalPriceTk, At: now})
}

// AssignHost hands an admin-created room (or one parked on the system host) to a real host.
func (r *Room) AssignHost(current, target *hosts.Profile, now time.Time) error {
	if target == nil {
		return hosts.ErrNotFound
	}
	ownedBySystem := current != nil && current.OwnsAdminRooms()
	if !r.IsAdminCreated && !ownedBySystem {
		return ErrHostNotReassignable
	}
	if !target.IsApproved() {
		return ErrHostNotApproved
	}
	now = normalizeNow(now)
	previous := r.HostID
	r.HostID = target.ID
	r.UpdatedAt = now
	r.Record(RoomHostAssigned{RoomID: r.ID, PreviousHostID: previous, HostID: target.ID, At: now})
	return nil
}

// Update replaces descriptive fields and reprices with the given rule. Edited rooms return to moderation.
func (r *Room) Update(details Details, basePriceTk int64, rule pricing.Rule, now time.Time) error {
	d, err := normalizeDetails(details)
	if err != nil {
		return err
	}
	quote, err := pricing.QuoteWith(rule, basePriceTk)
	if err != nil {
		return err
	}
	r.applyDetails(d)
	r.setPrice(quote)
	if !r.IsAdminCreated {
		r.Status = StatusPending
	}
	r.UpdatedAt = normalizeNow(now)
	return nil
}

func (r *Room) IsBookable() bool {
	return r.Status == StatusApproved
}

func (r *Room) Quote() pricing.Quote {
	return pricing.Quote{BaseTk: r.BasePriceTk, CommissionTk: r.CommissionTk, TotalTk: r.TotalPriceTk}
}

func (r *Room) setPrice(q pricing.Quote) {
	r.BasePriceTk = q.BaseTk
	r.CommissionTk = q.CommissionTk
	r.TotalPriceTk = q.TotalTk
}

func (r *Room) applyDetails(d Details) {
	r.Title = d.Title
	r.Description = d.Description
	r.Address = d.Address
	r.LocationName = d.LocationName
	r.LocationMapURL = d.LocationMapURL
	r.RoomType = d.RoomType
	r.Amenities = d.Amenities
	r.Images = d.Images
	r.MaxGuests = d.MaxGuests
	r.Bedrooms = d.Bedrooms
	r.Beds = d.Beds
	r.Baths = d.Baths
	r.InstantBooking = d.InstantBooking
	r.UnavailableDates = d.UnavailableDates
}

func normalizeDetails(d Details) (Details, error) {
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" {
		return Details{}, ErrTitleRequired
	}
	d.Description = strings.TrimSpace(d.Description)
	if d.Description == "" {
		return Details{}, ErrDescriptionMissing
	}
	d.Address = strings.TrimSpace(d.Address)
	if d.Address == "" {
		return Details{}, ErrAddressRequired
	}
	d.LocationName = strings.TrimSpace(d.LocationName)
	if d.LocationName == "" {
		return Details{}, ErrLocationRequired
	}
	d.LocationMapURL = strings.TrimSpace(d.LocationMapURL)
	d.RoomType = strings.ToLower(strings.TrimSpace(d.RoomType))
	if d.RoomType == "" {
		d.RoomType = DefaultRoomType
	}
	if d.MaxGuests < 0 {
		return Details{}, ErrInvalidGuests
	}
	if d.MaxGuests == 0 {
		d.MaxGuests = 1
	}
	d.Amenities = compact(d.Amenities)
	d.Images = compact(d.Images)
	d.UnavailableDates = append([]time.Time(nil), d.UnavailableDates...)
	return d, nil
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func normalizeNow(now time.Time) time.Time {
	if now.IsZero() {
		now = time.Now()
	}
	return now.UTC()
}
