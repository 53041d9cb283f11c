package dto

import (
	"time"

	domainhosts "gowaay/internal/domain/hosts"
	domainuser "gowaay/internal/domain/user"
)

type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

func MapUserSummary(u *domainuser.User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: string(u.ID), Name: u.Name, Email: u.Email, Phone: u.Phone}
}

type Host struct {
	ID             string       `json:"id"`
	UserID         string       `json:"userId"`
	User           *UserSummary `json:"user,omitempty"`
	DisplayName    string       `json:"displayName"`
	Phone          string       `json:"phone"`
	WhatsApp       string       `json:"whatsapp,omitempty"`
	LocationName   string       `json:"locationName"`
	LocationMapURL string       `json:"locationMapUrl,omitempty"`
	NIDFrontURL    string       `json:"nidFrontUrl,omitempty"`
	NIDBackURL     string       `json:"nidBackUrl,omitempty"`
	Status         string       `json:"status"`
	IsSystemHost   bool         `json:"isSystemHost"`
	ReviewNote     string       `json:"reviewNote,omitempty"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

func MapHost(p *domainhosts.Profile, u *domainuser.User) Host {
	if p == nil {
		return Host{}
	}
	return Host{
		ID:             string(p.ID),
		UserID:         p.UserID,
		User:           MapUserSummary(u),
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
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

type HostModeration struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updatedAt"`
}
