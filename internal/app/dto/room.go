package dto

import (
	"time"

	domainhosts "gowaay/internal/domain/hosts"
	domainrooms "gowaay/internal/domain/rooms"
)

type HostSummary struct {
	ID           string `json:"id"`
	DisplayName  string `json:"displayName"`
	LocationName string `json:"locationName"`
	IsSystemHost bool   `json:"isSystemHost"`
}

type Room struct {
	ID               string       `json:"id"`
	HostID           string       `json:"hostId"`
	Host             *HostSummary `json:"host,omitempty"`
	Title            string       `json:"title"`
	Description      string       `json:"description"`
	Address          string       `json:"address"`
	LocationName     string       `json:"locationName"`
	LocationMapURL   string       `json:"locationMapUrl,omitempty"`
	RoomType         string       `json:"roomType"`
	Amenities        []string     `json:"amenities"`
	Images           []string     `json:"images"`
	MaxGuests        int          `json:"maxGuests"`
	Bedrooms         int          `json:"bedrooms"`
	Beds             int          `json:"beds"`
	Baths            int          `json:"baths"`
	InstantBooking   bool         `json:"instantBooking"`
	UnavailableDates []time.Time  `json:"unavailableDates"`
	BasePriceTk      int64        `json:"basePriceTk"`
	CommissionTk     int64        `json:"commissionTk"`
	TotalPriceTk     int64        `json:"totalPriceTk"`
	Status           string       `json:"status"`
	IsAdminCreated   bool         `json:"isAdminCreated"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}

func MapRoom(r *domainrooms.Room, host *domainhosts.Profile) Room {
	if r == nil {
		return Room{}
	}
	out := Room{
		ID:               string(r.ID),
		HostID:           string(r.HostID),
		Title:            r.Title,
		Description:      r.Description,
		Address:          r.Address,
		LocationName:     r.LocationName,
		LocationMapURL:   r.LocationMapURL,
		RoomType:         r.RoomType,
		Amenities:        nonNil(r.Amenities),
		Images:           nonNil(r.Images),
		MaxGuests:        r.MaxGuests,
		Bedrooms:         r.Bedrooms,
		Beds:             r.Beds,
		Baths:            r.Baths,
		InstantBooking:   r.InstantBooking,
		UnavailableDates: append([]time.Time{}, r.UnavailableDates...),
		BasePriceTk:      r.BasePriceTk,
		CommissionTk:     r.CommissionTk,
		TotalPriceTk:     r.TotalPriceTk,
		Status:           string(r.Status),
		IsAdminCreated:   r.IsAdminCreated,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	if host != nil {
		out.Host = &HostSummary{
			ID:           string(host.ID),
			DisplayName:  host.DisplayName,
			LocationName: host.LocationName,
			IsSystemHost: host.IsSystemHost,
		}
	}
	return out
}

// RoomModeration is returned by admin approve and reject calls.
type RoomModeration struct {
	ID           string    `json:"id"`
	Status       string    `json:"status"`
	CommissionTk int64     `json:"commissionTk"`
	TotalPriceTk int64     `json:"totalPriceTk"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func MapRoomModeration(r *domainrooms.Room) RoomModeration {
	return RoomModeration{
		ID:           string(r.ID),
		Status:       string(r.Status),
		CommissionTk: r.CommissionTk,
		TotalPriceTk: r.TotalPriceTk,
		UpdatedAt:    r.UpdatedAt,
	}
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return append([]string(nil), in...)
}
