package hosts

import (
	"context"
	"errors"
	"strings"
	"time"

	"gowaay/internal/domain/shared/events"
)

var (
	ErrNotFound         = errors.New("hosts: profile not found")
	ErrUserRequired     = errors.New("hosts: user id is required")
	ErrDisplayName      = errors.New("hosts: display name is required")
	ErrPhoneRequired    = errors.New("hosts: phone is required")
	ErrLocationRequired = errors.New("hosts: location is required")
	ErrAlreadyApplied   = errors.New("hosts: user already has a host profile")
	ErrSystemHostLocked = errors.New("hosts: system host cannot be moderated")
	ErrConcurrentUpdate = errors.New("hosts: concurrent update detected")
)

// SystemHostName is the display name of the placeholder host that owns admin-created rooms.
const SystemHostName = "GoWaay Admin"

type ID string

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

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

// Profile is a host application. Moderation never cascades to the host's rooms.
type Profile struct {
	ID             ID
	UserID         string
	DisplayName    string
	Phone          string
	WhatsApp       string
	LocationName   string
	LocationMapURL string
	NIDFrontURL    string
	NIDBackURL     string
	Status         Status
	IsSystemHost   bool
	ReviewNote     string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Version        int64
	events.Recorder
}

type ListParams struct {
	Status Status
	Limit  int
	Offset int
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Profile, error)
	ByUser(ctx context.Context, userID string) (*Profile, error)
	SystemHost(ctx context.Context) (*Profile, error)
	Save(ctx context.Context, profile *Profile) error
	List(ctx context.Context, params ListParams) ([]*Profile, int, error)
	Count(ctx context.Context, status Status) (int, error)
}

type ApplyParams struct {
	ID             ID
	UserID         string
	DisplayName    string
	Phone          string
	WhatsApp       string
	LocationName   string
	LocationMapURL string
	NIDFrontURL    string
	NIDBackURL     string
	Now            time.Time
}

// Apply creates a pending host application.
func Apply(params ApplyParams) (*Profile, error) {
	if strings.TrimSpace(params.UserID) == "" {
		return nil, ErrUserRequired
	}
	name := strings.TrimSpace(params.DisplayName)
	if name == "" {
		return nil, ErrDisplayName
	}
	phone := strings.TrimSpace(params.Phone)
	if phone == "" {
		return nil, ErrPhoneRequired
	}
	location := strings.TrimSpace(params.LocationName)
	if location == "" {
		return nil, ErrLocationRequired
	}
	now := normalizeNow(params.Now)
	p := &Profile{
		ID:             params.ID,
		UserID:         strings.TrimSpace(params.UserID),
		DisplayName:    name,
		Phone:          phone,
		WhatsApp:       strings.TrimSpace(params.WhatsApp),
		LocationName:   location,
		LocationMapURL: strings.TrimSpace(params.LocationMapURL),
		NIDFrontURL:    strings.TrimSpace(params.NIDFrontURL),
		NIDBackURL:     strings.TrimSpace(params.NIDBackURL),
		Status:         StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	p.Record(HostApplied{HostID: p.ID, UserID: p.UserID, At: now})
	return p, nil
}

// NewSystemHost builds the pre-approved placeholder owned by an admin user.
func NewSystemHost(id ID, adminUserID string, now time.Time) *Profile {
	now = normalizeNow(now)
	return &Profile{
		ID:             id,
		UserID:         adminUserID,
		DisplayName:    SystemHostName,
		Phone:          "+8801700000000",
		WhatsApp:       "+8801700000000",
		LocationName:   "Dhaka, Bangladesh",
		LocationMapURL: "https://maps.google.com",
		Status:         StatusApproved,
		IsSystemHost:   true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (p *Profile) Approve(note string, now time.Time) error {
	return p.moderate(StatusApproved, note, now)
}

func (p *Profile) Reject(note string, now time.Time) error {
	return p.moderate(StatusRejected, note, now)
}

func (p *Profile) IsApproved() bool {
	return p.Status == StatusApproved
}

// OwnsAdminRooms reports whether rooms held by this profile may be handed to a real host.
func (p *Profile) OwnsAdminRooms() bool {
	return p.IsSystemHost || p.DisplayName == SystemHostName
}

func (p *Profile) moderate(status Status, note string, now time.Time) error {
	if p.IsSystemHost {
		return ErrSystemHostLocked
	}
	now = normalizeNow(now)
	p.Status = status
	p.ReviewNote = strings.TrimSpace(note)
	p.UpdatedAt = now
	p.Record(HostModerated{HostID: p.ID, Status: status, At: now})
	return nil
}

func normalizeNow(now time.Time) time.Time {
	if now.IsZero() {
		now = time.Now()
	}
	return now.UTC()
}

type HostApplied struct {
	HostID ID        `json:"host_id"`
	UserID string    `json:"user_id"`
	At     time.Time `json:"at"`
}

func (e HostApplied) EventName() string     { return "host.applied" }
func (e HostApplied) AggregateID() string   { return string(e.HostID) }
func (e HostApplied) OccurredAt() time.Time { return e.At }

type HostModerated struct {
	HostID ID        `json:"host_id"`
	Status Status    `json:"status"`
	At     time.Time `json:"at"`
}

func (e HostModerated) EventName() string     { return "host." + string(e.Status) }
func (e HostModerated) AggregateID() string   { return string(e.HostID) }
func (e HostModerated) OccurredAt() time.Time { return e.At }
