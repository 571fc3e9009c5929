package handlers

import (
	"net/http"
	"strconv"

	"pos-nfc-api/internal/adapters/primary/http/dto"
	"pos-nfc-api/internal/core/domain"
	"pos-nfc-api/internal/core/ports/output"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) ListCards(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	cards, err := h.cardSvc.List(c.Request.Context(), ports.CardListFilter{
		IssuerID: c.Query("issuer_id"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		log.WithError(err).Error("list cards failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCardResponses(cards))
}

func (h *Handler) CreateCard(c *gin.Context) {
	var req dto.CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	expiry, err := domain.ParseExpiry(req.Expiry)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	card, err := h.cardSvc.Create(c.Request.Context(),
		req.HolderName, req.PAN, expiry, *req.CVV, req.IssuerID, req.Track, req.Amount)
	if err != nil {
		log.WithError(err).Error("create card failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCardResponse(card))
}

func (h *Handler) GetCard(c *gin.Context) {
	id, ok := cardID(c)
	if !ok {
		return
	}

	card, err := h.cardSvc.Get(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCardResponse(card))
}

func (h *Handler) DeleteCard(c *gin.Context) {
	id, ok := cardID(c)
	if !ok {
		return
	}

	if err := h.cardSvc.Delete(c.Request.Context(), id); err != nil {
		mapDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func cardID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidCardID.Error()})
		return 0, false
	}
	return id, true
}
