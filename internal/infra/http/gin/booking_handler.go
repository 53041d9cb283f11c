package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gowaay/internal/app/commands"
	"gowaay/internal/app/dto"
	bookingapp "gowaay/internal/app/handlers/booking"
	"gowaay/internal/app/queries"
)

type BookingHTTP interface {
	Create(c *gin.Context)
	Mine(c *gin.Context)
	Cancel(c *gin.Context)
}

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type createBookingRequest struct {
	RoomID   string `json:"roomId" binding:"required"`
	CheckIn  string `json:"checkIn" binding:"required"`
	CheckOut string `json:"checkOut" binding:"required"`
	Guests   int    `json:"guests"`
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

func (h BookingHandler) Create(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFailure(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	checkIn, err := parseDay(req.CheckIn)
	if err != nil {
		respondFailure(c, http.StatusBadRequest, "invalid checkIn date")
		return
	}
	checkOut, err := parseDay(req.CheckOut)
	if err != nil {
		respondFailure(c, http.StatusBadRequest, "invalid checkOut date")
		return
	}
	if req.Guests == 0 {
		req.Guests = 1
	}
	cmd := bookingapp.RequestBookingCommand{
		CommandID:       generateCommandID(),
		RoomID:          req.RoomID,
		UserID:          p.ID(),
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		Guests:          req.Guests,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[bookingapp.RequestBookingCommand, *dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusCreated, "Booking created", result)
}

func (h BookingHandler) Mine(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	query := bookingapp.ListMyBookingsQuery{UserID: p.ID(), Status: c.Query("status"), Page: pageRequest(c)}
	result, err := queries.Ask[bookingapp.ListMyBookingsQuery, *dto.Page[dto.Booking]](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondPage(c, "Bookings retrieved", result)
}

func (h BookingHandler) Cancel(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req cancelBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondFailure(c, http.StatusBadRequest, "invalid request: "+err.Error())
			return
		}
	}
	cmd := bookingapp.CancelBookingCommand{UserID: p.ID(), BookingID: c.Param("id"), Reason: req.Reason}
	result, err := commands.Dispatch[bookingapp.CancelBookingCommand, *dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, "Booking cancelled", result)
}

func generateCommandID() string {
	return uuid.NewString()
}

var _ BookingHTTP = BookingHandler{}
