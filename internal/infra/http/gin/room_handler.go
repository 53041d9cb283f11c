package ginserver

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	"gowaay/internal/app/commands"
	"gowaay/internal/app/dto"
	roomsapp "gowaay/internal/app/handlers/rooms"
	"gowaay/internal/app/queries"
	"gowaay/internal/domain/pricing"
)

type RoomHTTP interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Mine(c *gin.Context)
	Submit(c *gin.Context)
	Update(c *gin.Context)
	CommissionQuote(c *gin.Context)
}

type RoomHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type roomRequest struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Address          string   `json:"address"`
	LocationName     string   `json:"locationName"`
	LocationMapURL   string   `json:"locationMapUrl"`
	RoomType         string   `json:"roomType"`
	Amenities        []string `json:"amenities"`
	Images           []string `json:"images"`
	MaxGuests        int      `json:"maxGuests"`
	Bedrooms         int      `json:"bedrooms"`
	Beds             int      `json:"beds"`
	Baths            int      `json:"baths"`
	InstantBooking   bool     `json:"instantBooking"`
	UnavailableDates []string `json:"unavailableDates"`
	BasePriceTk      int64    `json:"basePriceTk"`
}

// input accepts unavailable dates as RFC 3339 timestamps or plain YYYY-MM-DD days.
func (r roomRequest) input() (roomsapp.RoomInput, error) {
	dates := make([]time.Time, 0, len(r.UnavailableDates))
	for _, raw := range r.UnavailableDates {
		day, err := parseDay(raw)
		if err != nil {
			return roomsapp.RoomInput{}, err
		}
		dates = append(dates, day)
	}
	return roomsapp.RoomInput{
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
		UnavailableDates: dates,
	}, nil
}

func parseDay(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(time.DateOnly, raw)
}

func (h RoomHandler) List(c *gin.Context) {
	result, err := queries.Ask[roomsapp.ListRoomsQuery, *dto.Page[dto.Room]](c.Request.Context(), h.Queries, roomsapp.ListRoomsQuery{Page: pageRequest(c)})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondPage(c, "Rooms retrieved", result)
}

func (h RoomHandler) Get(c *gin.Context) {
	result, err := queries.Ask[roomsapp.GetRoomQuery, *dto.Room](c.Request.Context(), h.Queries, roomsapp.GetRoomQuery{RoomID: c.Param("id")})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, "Room retrieved", result)
}

func (h RoomHandler) Mine(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	query := roomsapp.MyRoomsQuery{UserID: p.ID(), Page: pageRequest(c)}
	result, err := queries.Ask[roomsapp.MyRoomsQuery, *dto.Page[dto.Room]](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondPage(c, "Rooms retrieved", result)
}

func (h RoomHandler) Submit(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
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
	cmd := roomsapp.SubmitRoomCommand{UserID: p.ID(), BasePriceTk: req.BasePriceTk, Room: input}
	result, err := commands.Dispatch[roomsapp.SubmitRoomCommand, *dto.Room](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Header("Location", "/api/v1/rooms/"+result.ID)
	respond(c, http.StatusCreated, "Room submitted for review", result)
}

func (h RoomHandler) Update(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
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
	cmd := roomsapp.UpdateRoomCommand{UserID: p.ID(), RoomID: c.Param("id"), BasePriceTk: req.BasePriceTk, Room: input}
	result, err := commands.Dispatch[roomsapp.UpdateRoomCommand, *dto.Room](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, "Room updated", result)
}

func (h RoomHandler) CommissionQuote(c *gin.Context) {
	base := parseInt64(c.Query("basePriceTk"))
	result, err := queries.Ask[roomsapp.CommissionQuoteQuery, *pricing.Quote](c.Request.Context(), h.Queries, roomsapp.CommissionQuoteQuery{BasePriceTk: base})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, "Commission calculated", result)
}

var _ RoomHTTP = RoomHandler{}
