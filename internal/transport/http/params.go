package http

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"medmcq/internal/domain"
)

func (h *handlers) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.fail(c, fmt.Errorf("%w: %v", domain.ErrModelValidation, err))
		return false
	}
	return true
}

func (h *handlers) pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		h.fail(c, fmt.Errorf("%w: invalid %s", domain.ErrModelValidation, name))
		return 0, false
	}
	return id, true
}

// queryInt64 reads an optional integer query parameter. Absent is zero.
func (h *handlers) queryInt64(c *gin.Context, name string) (int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.fail(c, fmt.Errorf("%w: invalid %s", domain.ErrModelValidation, name))
		return 0, false
	}
	return v, true
}

// queryIDs accepts both repeated (?tags=1&tags=2) and comma separated (?tags=1,2) lists.
func (h *handlers) queryIDs(c *gin.Context, name string) ([]int64, bool) {
	var ids []int64
	for _, raw := range c.QueryArray(name) {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				h.fail(c, fmt.Errorf("%w: invalid %s", domain.ErrModelValidation, name))
				return nil, false
			}
			ids = append(ids, id)
		}
	}
	return ids, true
}

// selectionParams maps the question list query string onto SelectionParams.
func (h *handlers) selectionParams(c *gin.Context) (domain.SelectionParams, bool) {
	var (
		p  domain.SelectionParams
		ok bool
	)
	_, p.HasIDs = c.GetQuery("ids")
	if p.IDs, ok = h.queryIDs(c, "ids"); !ok {
		return p, false
	}
	if p.Specialties, ok = h.queryIDs(c, "specialties"); !ok {
		return p, false
	}
	if p.Tags, ok = h.queryIDs(c, "tags"); !ok {
		return p, false
	}
	if p.Semester, ok = h.queryInt64(c, "semester"); !ok {
		return p, false
	}
	if p.SetID, ok = h.queryInt64(c, "set"); !ok {
		return p, false
	}
	n, ok := h.queryInt64(c, "n")
	if !ok {
		return p, false
	}
	year, ok := h.queryInt64(c, "year")
	if !ok {
		return p, false
	}
	p.N, p.Year = int(n), int(year)
	p.Profile = c.Query("profile") == "true"
	p.OnlyNew = c.Query("onlyNew") == "true"
	p.Season = domain.Season(c.Query("season"))
	p.Search = c.Query("search")
	return p, true
}
