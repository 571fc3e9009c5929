package handlers

import (
	"net/http"
	"strconv"
	"time"

	"pos-nfc-api/internal/adapters/primary/http/dto"
	"pos-nfc-api/internal/core/ports/output"
	"pos-nfc-api/internal/core/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) LogAPDU(c *gin.Context) {
	var req dto.LogAPDURequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var ts time.Time
	if req.Timestamp != nil {
		ts = *req.Timestamp
	}

	entry, err := h.logSvc.Log(c.Request.Context(),
		req.DeviceID, req.APDUCommand, req.APDUResponse, *req.Success, ts)
	if err != nil {
		log.WithError(err).Error("log apdu failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToAPDULogResponse(entry))
}

func (h *Handler) ListAPDULogs(c *gin.Context) {
	// Missing or malformed bounds parse as zero and fall back to the
	// service defaults.
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	filter := ports.APDULogFilter{
		DeviceID: c.Query("device_id"),
		Limit:    limit,
		Offset:   offset,
	}
	if raw := c.Query("success"); raw != "" {
		success, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "success must be true or false"})
			return
		}
		filter.Success = &success
	}

	page, err := h.logSvc.List(c.Request.Context(), filter)
	if err != nil {
		log.WithError(err).Error("list apdu logs failed")
		mapDomainError(c, err)
		return
	}

	items := make([]dto.APDULogResponse, 0, len(page.Items))
	for _, l := range page.Items {
		items = append(items, dto.ToAPDULogResponse(l))
	}

	c.JSON(http.StatusOK, dto.ListAPDULogsResponse{
		Items:      items,
		Total:      page.Total,
		PageSize:   page.Limit,
		NextOffset: page.NextOffset(),
	})
}

func (h *Handler) ListAPDUModels(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	page, err := h.modelSvc.List(c.Request.Context(), limit, offset)
	if err != nil {
		log.WithError(err).Error("list apdu models failed")
		mapDomainError(c, err)
		return
	}

	items := make([]dto.APDUModelResponse, 0, len(page.Items))
	for _, m := range page.Items {
		items = append(items, dto.ToAPDUModelResponse(m))
	}

	c.JSON(http.StatusOK, dto.ListAPDUModelsResponse{
		Items:      items,
		Total:      page.Total,
		PageSize:   page.Limit,
		NextOffset: page.NextOffset(),
	})
}

func (h *Handler) TrainAPDUModel(c *gin.Context) {
	var req dto.TrainModelRequest
	// An empty body trains with the configured defaults.
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	record, err := h.modelSvc.Train(c.Request.Context(), services.TrainOptions{
		Name:     req.Name,
		Trees:    req.Trees,
		MaxDepth: req.MaxDepth,
		Seed:     req.Seed,
	})
	if err != nil {
		log.WithError(err).Error("train apdu model failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToAPDUModelResponse(record))
}

func (h *Handler) GetAPDUModel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid model id"})
		return
	}

	record, err := h.modelSvc.Get(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAPDUModelResponse(record))
}

func (h *Handler) SetDefaultAPDUModel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid model id"})
		return
	}

	record, err := h.modelSvc.SetDefault(c.Request.Context(), id)
	if err != nil {
		log.WithError(err).Error("set default apdu model failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAPDUModelResponse(record))
}

func (h *Handler) PredictAPDU(c *gin.Context) {
	var req dto.PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.modelSvc.Predict(c.Request.Context(), req.APDUCommand, req.APDUResponse)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPredictResponse(p))
}
