package dto

import (
	"time"

	domainbooking "gowaay/internal/domain/booking"
	domainuser "gowaay/internal/domain/user"
)

type AdminStats struct {
	TotalBookings     int   `json:"totalBookings"`
	ConfirmedBookings int   `json:"confirmedBookings"`
	CancelledBookings int   `json:"cancelledBookings"`
	TotalRevenue      int64 `json:"totalRevenue"`
	TotalHosts        int   `json:"totalHosts"`
	ActiveHosts       int   `json:"activeHosts"`
	TotalRooms        int   `json:"totalRooms"`
	ActiveRooms       int   `json:"activeRooms"`
}

type AdminUser struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone,omitempty"`
	Role          string    `json:"role"`
	TotalBookings int       `json:"totalBookings"`
	TotalSpent    int64     `json:"totalSpent"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func MapAdminUser(u *domainuser.User, totals domainbooking.UserTotals) AdminUser {
	return AdminUser{
		ID:            string(u.ID),
		Name:          u.Name,
		Email:         u.Email,
		Phone:         u.Phone,
		Role:          string(u.PrimaryRole()),
		TotalBookings: totals.Bookings,
		TotalSpent:    totals.TotalSpent,
		IsActive:      !u.Blocked,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}
