package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/workexp/workexp-api/internal/project"
	"github.com/workexp/workexp-api/internal/project/service"
	"github.com/workexp/workexp-api/pkg/httpx"
)

const notFound = "Project not found"

func RegisterProjectRoutes(r gin.IRouter, svc service.Service, writeMW ...gin.HandlerFunc) {
	g := r.Group("/api/projects")

	g.GET("", func(c *gin.Context) {
		var f project.Filter
		if raw, ok := c.GetQuery("featured"); ok {
			b, err := strconv.ParseBool(raw)
			if err != nil {
				httpx.BadRequest(c, "featured must be true or false")
				return
			}
			f.Featured = &b
		}
		list, err := svc.List(c.Request.Context(), f)
		if err != nil {
			httpx.Error(c, err, notFound)
			return
		}
		c.JSON(http.StatusOK, list)
	})

	g.GET("/:id", func(c *gin.Context) {
		p, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Error(c, err, notFound)
			return
		}
		c.JSON(http.StatusOK, p)
	})

	w := g.Group("", writeMW...)

	w.POST("", func(c *gin.Context) {
		var in project.Input
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.BadRequest(c, "Invalid JSON body: "+err.Error())
			return
		}
		p, err := svc.Create(c.Request.Context(), in)
		if err != nil {
			httpx.Error(c, err, notFound)
			return
		}
		c.JSON(http.StatusCreated, p)
	})

	w.PUT("/:id", func(c *gin.Context) {
		var in project.Input
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.BadRequest(c, "Invalid JSON body: "+err.Error())
			return
		}
		p, err := svc.Update(c.Request.Context(), c.Param("id"), in)
		if err != nil {
			httpx.Error(c, err, notFound)
			return
		}
		c.JSON(http.StatusOK, p)
	})

	w.DELETE("/:id", func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			httpx.Error(c, err, notFound)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
	})
}
