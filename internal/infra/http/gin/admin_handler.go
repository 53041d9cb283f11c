package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"gowaay/internal/app/commands"
	"gowaay/internal/app/dto"
	adminapp "gowaay/internal/app/handlers/admin"
	paymentsapp "gowaay/internal/app/handlers/payments"
	"gowaay/internal/app/queries"
)

type AdminHTTP interface {
	Stats(c *gin.Context)
	ListHosts(c *gin.Context)
	ListRooms(c *gin.Context)
	ListBookings(c *gin.Context)
	ListUsers(c *gin.Context)
	CreateRoom(c *gin.Context)
	AssignHost(c *gin.Context)
	ApproveHost(c *gin.Context)
	RejectHost(c *gin.Context)
	ApproveRoom(c *gin.Context)
	RejectRoom(c *gin.Context)
	ApprovePayment(c *gin.Context)
	RejectPayment(c *gin.Context)
}

// AdminHandler relies on the bus authorizer for the admin role check.
type AdminHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type moderationRequest struct {
	Note         string `json:"note"`
	CommissionTk int64  `json:"commissionTk"`
}

type assignHostRequest struct {
	HostID string `json:"hostId"`
}

func (h AdminHandler) Stats(c *gin.Context) {
	result, err := queries.Ask[adminapp.StatsQuery, *dto.AdminStats](c.Request.Context(), h.Queries, adminapp.StatsQuery{})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, "Stats retrieved", result)
}

func (h AdminHandler) ListHosts(c *gin.Context) {
	q := adminapp.ListHostsQuery{Status: c.Query("status"), Page: pageRequest(c)}
	result, err := queries.Ask[adminapp.ListHostsQuery, *dto.Page[dto.Host]](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondPage(c, "Hosts retrieved", result)
}

func (h AdminHandler) ListRooms(c *gin.Context) {
	q := adminapp.ListRoomsQuery{Status: c.Query("status"), Page: pageRequest(c)}
	result, err := queries.Ask[adminapp.ListRoomsQuery, *dto.Page[dto.Room]](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondPage(c, "Rooms retrieved", result)
}

func (h AdminHandler) ListBookings(c *gin.Context) {
	q := adminapp.ListBookingsQuery{Status: c.Query("status"), PaymentStatus: c.Query("paymentStatus"), Page: pageRequest(c)}
	result, err := queries.Ask[adminapp.ListBookingsQuery, *dto.Page[dto.Booking]](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondPage(c, "Bookings retrieved", result)
}

func (h AdminHandler) ListUsers(c *gin.Context) {
	q := adminapp.ListUsersQuery{Search: c.Query("search"), Page: pageRequest(c)}
	result, err := queries.Ask[adminapp.ListUsersQuery, *dto.Page[dto.AdminUser]](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondPage(c, "Users retrieved", result)
}

func (h AdminHandler) CreateRoom(c *gin.Context) {
	var req roomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFailure(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	input, err := req.input()
	if err != nil {
		respondFailure(c, http.StatusBadRequest, "invalid unavailable date")
		return
	}
	cmd := adminapp.CreateRoomCommand{BasePriceTk: req.BasePriceTk, Room: input}
	result, err := commands.Dispatch[adminapp.CreateRoomCommand, *dto.Room](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusCreated, "Room created", result)
}

func (h AdminHandler) AssignHost(c *gin.Context) {
	var req assignHostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFailure(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	cmd := adminapp.AssignHostCommand{RoomID: c.Param("id"), HostID: req.HostID}
	result, err := commands.Dispatch[adminapp.AssignHostCommand, *dto.Room](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, "Host assigned", result)
}

func (h AdminHandler) ApproveHost(c *gin.Context) {
	h.moderateHost(c, true, "Host approved")
}

func (h AdminHandler) RejectHost(c *gin.Context) {
	h.moderateHost(c, false, "Host rejected")
}

func (h AdminHandler) moderateHost(c *gin.Context, approve bool, message string) {
	req, ok := bindModeration(c)
	if !ok {
		return
	}
	cmd := adminapp.ModerateHostCommand{HostID: c.Param("id"), Approve: approve, Note: req.Note}
	result, err := commands.Dispatch[adminapp.ModerateHostCommand, *dto.HostModeration](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, message, result)
}

func (h AdminHandler) ApproveRoom(c *gin.Context) {
	h.moderateRoom(c, true, "Room approved")
}

func (h AdminHandler) RejectRoom(c *gin.Context) {
	h.moderateRoom(c, false, "Room rejected")
}

func (h AdminHandler) moderateRoom(c *gin.Context, approve bool, message string) {
	req, ok := bindModeration(c)
	if !ok {
		return
	}
	cmd := adminapp.ModerateRoomCommand{RoomID: c.Param("id"), Approve: approve, CommissionTk: req.CommissionTk, Note: req.Note}
	result, err := commands.Dispatch[adminapp.ModerateRoomCommand, *dto.RoomModeration](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, message, result)
}

func (h AdminHandler) ApprovePayment(c *gin.Context) {
	h.reviewPayment(c, true, "Manual payment approved")
}

func (h AdminHandler) RejectPayment(c *gin.Context) {
	h.reviewPayment(c, false, "Manual payment rejected")
}

func (h AdminHandler) reviewPayment(c *gin.Context, approve bool, message string) {
	req, ok := bindModeration(c)
	if !ok {
		return
	}
	cmd := paymentsapp.ReviewManualPaymentCommand{BookingID: c.Param("id"), Approve: approve, Note: req.Note}
	result, err := commands.Dispatch[paymentsapp.ReviewManualPaymentCommand, *dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, message, result)
}

// bindModeration reads the optional moderation body.
func bindModeration(c *gin.Context) (moderationRequest, bool) {
	var req moderationRequest
	if c.Request.ContentLength == 0 {
		return req, true
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFailure(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return req, false
	}
	return req, true
}

var _ AdminHTTP = AdminHandler{}
