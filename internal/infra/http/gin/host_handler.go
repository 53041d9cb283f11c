package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"gowaay/internal/app/commands"
	"gowaay/internal/app/dto"
	hostsapp "gowaay/internal/app/handlers/hosts"
	"gowaay/internal/app/queries"
)

type HostHTTP interface {
	Apply(c *gin.Context)
	Me(c *gin.Context)
}

type HostHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type applyHostRequest struct {
	DisplayName    string `json:"displayName"`
	Phone          string `json:"phone"`
	WhatsApp       string `json:"whatsapp"`
	LocationName   string `json:"locationName"`
	LocationMapURL string `json:"locationMapUrl"`
	NIDFrontURL    string `json:"nidFrontUrl"`
	NIDBackURL     string `json:"nidBackUrl"`
}

func (h HostHandler) Apply(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req applyHostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFailure(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	cmd := hostsapp.ApplyHostCommand{
		UserID:         p.ID(),
		DisplayName:    req.DisplayName,
		Phone:          req.Phone,
		WhatsApp:       req.WhatsApp,
		LocationName:   req.LocationName,
		LocationMapURL: req.LocationMapURL,
		NIDFrontURL:    req.NIDFrontURL,
		NIDBackURL:     req.NIDBackURL,
	}
	result, err := commands.Dispatch[hostsapp.ApplyHostCommand, *dto.Host](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusCreated, "Host application submitted", result)
}

func (h HostHandler) Me(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	result, err := queries.Ask[hostsapp.MyHostProfileQuery, *dto.Host](c.Request.Context(), h.Queries, hostsapp.MyHostProfileQuery{UserID: p.ID()})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, "Host profile retrieved", result)
}

var _ HostHTTP = HostHandler{}
