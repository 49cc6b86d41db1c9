package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smbrine/exchange-api-test-task/internal/platform/config"
)

// registerHomeRoute points the root path at the API docs outside production;
// in production the docs are not mounted and the root answers with a plain
// status payload instead.
func registerHomeRoute(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		r.GET("/", getHome)
		return
	}
	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusTemporaryRedirect, "/swagger/index.html")
	})
}

// getHome godoc
// @Summary Show the status of server.
// @Description get the status of server.
// @Tags root
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func getHome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Exchange API"})
}
