package handler

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/workexp/workexp-api/internal/experience"
	"github.com/workexp/workexp-api/internal/experience/service"
	"github.com/workexp/workexp-api/pkg/httpx"
)

const (
	notFound     = "Experience not found"
	defaultLimit = 10
	maxLimit     = 100
)

// RegisterExperienceRoutes mounts the experience API under /api/experiences.
// writeMW guards the mutating routes (auth when it is required).
func RegisterExperienceRoutes(r gin.IRouter, svc service.Service, writeMW ...gin.HandlerFunc) {
	h := &handler{svc: svc}
	g := r.Group("/api/experiences")

	g.GET("", h.list)
	g.GET("/skills", h.skills)
	g.GET("/:id", h.get)

	w := g.Group("", writeMW...)
	w.POST("", h.create)
	w.PUT("/:id", h.update)
	w.DELETE("/:id", h.delete)
	w.DELETE("", h.deleteAll)
}

type handler struct {
	svc service.Service
}

func (h *handler) list(c *gin.Context) {
	f, msg := ParseFilter(c)
	if msg != "" {
		httpx.BadRequest(c, msg)
		return
	}
	list, total, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		httpx.Error(c, err, notFound)
		return
	}
	if f.Paginated() {
		c.Header("X-Total-Count", strconv.FormatInt(total, 10))
	}
	c.JSON(http.StatusOK, list)
}

func (h *handler) skills(c *gin.Context) {
	out, err := h.svc.Skills(c.Request.Context())
	if err != nil {
		httpx.Error(c, err, notFound)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *handler) get(c *gin.Context) {
	e, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpx.Error(c, err, notFound)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *handler) create(c *gin.Context) {
	var in experience.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		httpx.BadRequest(c, "Invalid JSON body: "+err.Error())
		return
	}
	e, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		httpx.Error(c, err, notFound)
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (h *handler) update(c *gin.Context) {
	var in experience.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		httpx.BadRequest(c, "Invalid JSON body: "+err.Error())
		return
	}
	e, err := h.svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		httpx.Error(c, err, notFound)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *handler) delete(c *gin.Context) {
	id := c.Param("id")
	if archive, _ := strconv.ParseBool(c.Query("archive")); archive {
		e, err := h.svc.Archive(c.Request.Context(), id)
		if err != nil {
			httpx.Error(c, err, notFound)
			return
		}
		c.JSON(http.StatusOK, e)
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		httpx.Error(c, err, notFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Experience deleted successfully"})
}

func (h *handler) deleteAll(c *gin.Context) {
	if c.Query("confirm") != "yes" {
		httpx.BadRequest(c, "Bulk delete requires confirm=yes")
		return
	}
	n, err := h.svc.DeleteAll(c.Request.Context())
	if err != nil {
		httpx.Error(c, err, notFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All experiences removed", "deleted": n})
}

// ParseFilter reads the list query string. A non-empty msg is a client error.
func ParseFilter(c *gin.Context) (f experience.Filter, msg string) {
	f.Company = c.Query("company")
	f.Position = c.Query("position")
	f.Query = c.Query("q")

	if raw, ok := c.GetQuery("archived"); ok {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return f, "archived must be true or false"
		}
		f.Archived = &b
	}

	s, err := experience.ParseSort(c.Query("sort"))
	if err != nil {
		return f, err.Error()
	}
	f.Sort = s

	rawPage, hasPage := c.GetQuery("page")
	rawLimit, hasLimit := c.GetQuery("limit")
	if !hasPage && !hasLimit {
		return f, ""
	}
	f.Page, f.Limit = 1, defaultLimit
	if hasPage {
		p, err := strconv.Atoi(rawPage)
		if err != nil || p < 1 {
			return f, "page must be a positive integer"
		}
		f.Page = p
	}
	if hasLimit {
		l, err := strconv.Atoi(rawLimit)
		if err != nil {
			return f, "limit must be an integer"
		}
		f.Limit = min(max(l, 1), maxLimit)
	}
	if f.Page-1 > math.MaxInt/f.Limit {
		return f, "page is out of range"
	}
	return f, ""
}
