package web

import (
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/appointment-scheduler/internal/model"
)

// Handler serves the browser UI. The page template must be installed on the
// engine before requests arrive.
type Handler struct {
	title  string
	assets fs.FS
}

func NewHandler(title string, assets fs.FS) *Handler {
	return &Handler{title: title, assets: assets}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/", h.Index)
	r.StaticFS("/static", http.FS(h.assets))
}

// Index renders the page shell; appointments are loaded by the client
func (h *Handler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Title":    h.title,
		"Statuses": model.AppointmentStatuses,
	})
}
