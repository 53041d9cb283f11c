package ginserver

import (
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"gowaay/internal/app/dto"
)

// envelope is the body of every JSON response.
type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       any             `json:"data,omitempty"`
	Pagination *dto.Pagination `json:"pagination,omitempty"`
	Errors     any             `json:"errors,omitempty"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

func respondPage[T any](c *gin.Context, message string, page *dto.Page[T]) {
	if page == nil {
		page = &dto.Page[T]{}
	}
	items := page.Items
	if items == nil {
		items = []T{}
	}
	pagination := page.Pagination
	c.JSON(http.StatusOK, envelope{Success: true, Message: message, Data: items, Pagination: &pagination})
}

func respondFailure(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, envelope{Success: false, Message: message})
}

func pageRequest(c *gin.Context) dto.PageRequest {
	return dto.PageRequest{
		Page:  parseIntWithDefault(c.Query("page"), 1),
		Limit: parseInt(c.Query("limit")),
	}
}

func parseInt(raw string) int {
	value, _ := strconv.Atoi(strings.TrimSpace(raw))
	if value < 0 {
		return 0
	}
	return value
}

func parseIntWithDefault(raw string, fallback int) int {
	value := parseInt(raw)
	if value == 0 {
		return fallback
	}
	return value
}

func parseInt64(raw string) int64 {
	value, _ := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if value < 0 {
		return 0
	}
	return value
}
