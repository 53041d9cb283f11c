package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"gowaay/internal/app/commands"
	uploadsapp "gowaay/internal/app/handlers/uploads"
)

const maxUploadBytes int64 = 10 << 20

type UploadHTTP interface {
	Upload(c *gin.Context)
	Delete(c *gin.Context)
}

type UploadHandler struct {
	Commands commands.Bus
	Logger   *slog.Logger
}

type deleteImageRequest struct {
	URL string `json:"url"`
}

func (h UploadHandler) Upload(c *gin.Context) {
	if _, ok := requireRole(c, ""); !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes+(1<<20))
	header, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondFailure(c, http.StatusRequestEntityTooLarge, "image exceeds 10MB limit")
			return
		}
		respondError(c, h.Logger, uploadsapp.ErrNoImage)
		return
	}
	if header.Size > maxUploadBytes {
		respondFailure(c, http.StatusRequestEntityTooLarge, "image exceeds 10MB limit")
		return
	}
	file, err := header.Open()
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	defer file.Close()

	cmd := uploadsapp.UploadImageCommand{OriginalName: header.Filename, Body: file}
	result, err := commands.Dispatch[uploadsapp.UploadImageCommand, *uploadsapp.UploadedImage](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, "Image uploaded successfully", result)
}

func (h UploadHandler) Delete(c *gin.Context) {
	if _, ok := requireRole(c, ""); !ok {
		return
	}
	var req deleteImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFailure(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	cmd := uploadsapp.DeleteImageCommand{URL: req.URL}
	result, err := commands.Dispatch[uploadsapp.DeleteImageCommand, *uploadsapp.DeleteImageResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, "Image deleted successfully", result)
}

var _ UploadHTTP = UploadHandler{}
