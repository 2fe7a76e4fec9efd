package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/workexp/workexp-api/internal/export"
	"github.com/workexp/workexp-api/pkg/httpx"
)

const notFound = "Export not found"

// RegisterExportRoutes mounts /api/exports. Triggering a run goes through writeMW.
func RegisterExportRoutes(r gin.IRouter, ex *export.Exporter, writeMW ...gin.HandlerFunc) {
	g := r.Group("/api/exports")
	g.GET("", func(c *gin.Context) {
		list, err := ex.List(c.Request.Context())
		if err != nil {
			httpx.Error(c, err, notFound)
			return
		}
		c.JSON(http.StatusOK, list)
	})
	g.GET("/:id", func(c *gin.Context) {
		rec, err := ex.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Error(c, err, notFound)
			return
		}
		c.JSON(http.StatusOK, rec)
	})
	g.Group("", writeMW...).POST("", func(c *gin.Context) {
		rec, err := ex.Run(c.Request.Context(), export.TriggerManual)
		if err != nil {
			httpx.Error(c, err, notFound)
			return
		}
		c.JSON(http.StatusCreated, rec)
	})
}
