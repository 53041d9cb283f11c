package ginserver

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"
)

const apiDocPath = "/swagger/doc.json"

//go:embed swagger/openapi.json
var openAPIDocument []byte

//go:embed swagger/index.html
var swaggerPage string

// apiDocs serves the embedded OpenAPI document and the Swagger UI page that loads it.
type apiDocs struct {
	document []byte
	page     []byte
	etag     string
}

func newAPIDocs() apiDocs {
	sum := sha256.Sum256(openAPIDocument)
	return apiDocs{
		document: openAPIDocument,
		page:     []byte(strings.ReplaceAll(swaggerPage, "{{SPEC_URL}}", apiDocPath)),
		etag:     `"` + hex.EncodeToString(sum[:8]) + `"`,
	}
}

func (d apiDocs) register(router gin.IRoutes) {
	router.GET(apiDocPath, d.serveDocument)
	router.GET("/swagger", d.servePage)
	router.GET("/swagger/index.html", d.servePage)
}

func (d apiDocs) serveDocument(c *gin.Context) {
	c.Header("ETag", d.etag)
	c.Header("Cache-Control", "public, max-age=300")
	if c.GetHeader("If-None-Match") == d.etag {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, "application/json", d.document)
}

func (d apiDocs) servePage(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", d.page)
}
