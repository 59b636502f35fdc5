package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
)

type catalogHandler struct {
	svc    CatalogService
	logger *log.Entry
}

// list оборачивает однотипные списочные операции каталога.
func list[T any](h *catalogHandler, fetch func(context.Context) ([]T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := fetch(c.Request.Context())
		if err != nil {
			writeError(c, h.logger, err)
			return
		}
		if items == nil {
			items = []T{}
		}
		ok(c, items)
	}
}

func (h *catalogHandler) listUsers(c *gin.Context)     { list(h, h.svc.ListUsers)(c) }
func (h *catalogHandler) listDishes(c *gin.Context)    { list(h, h.svc.ListDishes)(c) }
func (h *catalogHandler) listDishTypes(c *gin.Context) { list(h, h.svc.ListDishTypes)(c) }
func (h *catalogHandler) listDishBases(c *gin.Context) { list(h, h.svc.ListDishBases)(c) }
func (h *catalogHandler) listProducts(c *gin.Context)  { list(h, h.svc.ListProducts)(c) }

// GET /api/dishes/:id/structure
func (h *catalogHandler) structureByDish(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	list(h, func(ctx context.Context) ([]domain.Structure, error) {
		return h.svc.StructureByDish(ctx, id)
	})(c)
}

// POST /api/dishes
func (h *catalogHandler) createDish(c *gin.Context) {
	var fields domain.DishFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		fail(c, http.StatusBadRequest, "invalid json body: "+err.Error())
		return
	}

	id, err := h.svc.CreateDish(c.Request.Context(), fields)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	created(c, gin.H{"dish_id": id})
}

// PUT /api/dishes/:id
func (h *catalogHandler) updateDish(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	var fields domain.DishFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		fail(c, http.StatusBadRequest, "invalid json body: "+err.Error())
		return
	}

	affected, err := h.svc.UpdateDish(c.Request.Context(), id, fields)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if affected == 0 {
		fail(c, http.StatusNotFound, "dish not found")
		return
	}
	ok(c, gin.H{"dish_id": id, "affected": affected})
}

// DELETE /api/dishes/:id
func (h *catalogHandler) deleteDish(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	affected, err := h.svc.DeleteDish(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if affected == 0 {
		fail(c, http.StatusNotFound, "dish not found")
		return
	}
	c.Status(http.StatusNoContent)
}
