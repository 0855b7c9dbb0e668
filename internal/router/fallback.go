package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/appointment-scheduler/pkg/httputil"
)

func notFound(c *gin.Context) {
	httputil.RespondWithStatus(c, http.StatusNotFound, "route not found")
}

func methodNotAllowed(c *gin.Context) {
	httputil.RespondWithStatus(c, http.StatusMethodNotAllowed, "method not allowed")
}
