// controllers/stock_controller.go
package controllers

import (
	"net/http"
	"time"

	"magacin_backend/app"
	"magacin_backend/feed"
	"magacin_backend/identity"
	"magacin_backend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockController 管预订/提货/进货三张流水表。
type StockController struct{ *Srv }

func NewStockController(s *Srv) *StockController { return &StockController{Srv: s} }

// Reservations

func (sc *StockController) ListReservations(c *gin.Context) {
	rows, err := sc.Repo.ListReservations(c.Request.Context())
	if err != nil {
		c.JSON(persistenceStatus(err), app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"reservations": rows})
}

type createReservationRequest struct {
	ArticleID       string `json:"articleId" binding:"required,uuid"`
	Quantity        int    `json:"quantity" binding:"required,gt=0"`
	UserID          string `json:"userId" binding:"required,uuid"`
	ReservationCode string `json:"reservationCode" binding:"required"`
}

// POST /api/reservations —— 确认码必须正好 7 位，先本地校验再碰库
func (sc *StockController) CreateReservation(c *gin.Context) {
	var in createReservationRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if !identity.ValidConfirmationCode(in.ReservationCode) {
		c.JSON(http.StatusBadRequest, app.H{"error": "confirmation code must be exactly 7 characters"})
		return
	}

	res := &models.Reservation{
		ID:              uuid.NewString(),
		ArticleID:       in.ArticleID,
		Quantity:        in.Quantity,
		UserID:          in.UserID,
		ReservationCode: in.ReservationCode,
	}
	row, err := sc.Repo.CreateReservation(c.Request.Context(), res)
	if err != nil {
		c.JSON(persistenceStatus(err), app.H{"error": err.Error()})
		return
	}
	sc.publish(c.Request.Context(), models.ReservationTable, feed.ActionInsert, res.ID)
	if sc.Repo.AutoAdjust {
		sc.publish(c.Request.Context(), models.ArticleTable, feed.ActionUpdate, res.ArticleID)
	}
	c.JSON(http.StatusCreated, row)
}

func (sc *StockController) DeleteReservation(c *gin.Context) {
	id := c.Param("id")
	if err := sc.Repo.DeleteReservation(c.Request.Context(), id); err != nil {
		c.JSON(persistenceStatus(err), app.H{"error": err.Error()})
		return
	}
	sc.publish(c.Request.Context(), models.ReservationTable, feed.ActionDelete, id)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// Pickups

func (sc *StockController) ListPickups(c *gin.Context) {
	rows, err := sc.Repo.ListPickups(c.Request.Context())
	if err != nil {
		c.JSON(persistenceStatus(err), app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"pickups": rows})
}

type createPickupRequest struct {
	ArticleID  string `json:"articleId" binding:"required,uuid"`
	Quantity   int    `json:"quantity" binding:"required,gt=0"`
	UserID     string `json:"userId" binding:"required,uuid"`
	PickupCode string `json:"pickupCode" binding:"required"`
}

func (sc *StockController) CreatePickup(c *gin.Context) {
	var in createPickupRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if !identity.ValidConfirmationCode(in.PickupCode) {
		c.JSON(http.StatusBadRequest, app.H{"error": "confirmation code must be exactly 7 characters"})
		return
	}

	p := &models.Pickup{
		ID:         uuid.NewString(),
		ArticleID:  in.ArticleID,
		Quantity:   in.Quantity,
		UserID:     in.UserID,
		PickupCode: in.PickupCode,
	}
	row, err := sc.Repo.CreatePickup(c.Request.Context(), p)
	if err != nil {
		c.JSON(persistenceStatus(err), app.H{"error": err.Error()})
		return
	}
	sc.publish(c.Request.Context(), models.PickupTable, feed.ActionInsert, p.ID)
	if sc.Repo.AutoAdjust {
		sc.publish(c.Request.Context(), models.ArticleTable, feed.ActionUpdate, p.ArticleID)
	}
	c.JSON(http.StatusCreated, row)
}

func (sc *StockController) DeletePickup(c *gin.Context) {
	id := c.Param("id")
	if err := sc.Repo.DeletePickup(c.Request.Context(), id); err != nil {
		c.JSON(persistenceStatus(err), app.H{"error": err.Error()})
		return
	}
	sc.publish(c.Request.Context(), models.PickupTable, feed.ActionDelete, id)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// Entries

func (sc *StockController) ListEntries(c *gin.Context) {
	rows, err := sc.Repo.ListEntries(c.Request.Context())
	if err != nil {
		c.JSON(persistenceStatus(err), app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"entries": rows})
}

type createEntryRequest struct {
	ArticleID string     `json:"articleId" binding:"required,uuid"`
	Quantity  int        `json:"quantity" binding:"required,gt=0"`
	Price     float64    `json:"price" binding:"gte=0"`
	Supplier  string     `json:"supplier"`
	EntryDate *time.Time `json:"entryDate"` // 缺省取当天
}

func (sc *StockController) CreateEntry(c *gin.Context) {
	var in createEntryRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	entryDate := time.Now().UTC()
	if in.EntryDate != nil {
		entryDate = *in.EntryDate
	}
	e := &models.Entry{
		ID:        uuid.NewString(),
		ArticleID: in.ArticleID,
		Quantity:  in.Quantity,
		Price:     decimal.NewFromFloat(in.Price),
		Supplier:  in.Supplier,
		EntryDate: entryDate,
	}
	row, err := sc.Repo.CreateEntry(c.Request.Context(), e)
	if err != nil {
		c.JSON(persistenceStatus(err), app.H{"error": err.Error()})
		return
	}
	sc.publish(c.Request.Context(), models.EntryTable, feed.ActionInsert, e.ID)
	if sc.Repo.AutoAdjust {
		sc.publish(c.Request.Context(), models.ArticleTable, feed.ActionUpdate, e.ArticleID)
	}
	c.JSON(http.StatusCreated, row)
}

func (sc *StockController) DeleteEntry(c *gin.Context) {
	id := c.Param("id")
	if err := sc.Repo.DeleteEntry(c.Request.Context(), id); err != nil {
		c.JSON(persistenceStatus(err), app.H{"error": err.Error()})
		return
	}
	sc.publish(c.Request.Context(), models.EntryTable, feed.ActionDelete, id)
	c.JSON(http.StatusOK, app.H{"ok": true})
}
