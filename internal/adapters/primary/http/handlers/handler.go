package handlers

import (
	"pos-nfc-api/internal/core/services"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	cardSvc  *services.CardService
	logSvc   *services.APDULogService
	modelSvc *services.APDUModelService
}

func New(
	cardSvc *services.CardService,
	logSvc *services.APDULogService,
	modelSvc *services.APDUModelService,
) *Handler {
	return &Handler{
		cardSvc:  cardSvc,
		logSvc:   logSvc,
		modelSvc: modelSvc,
	}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	// Cards
	r.GET("/cards/", h.ListCards)
	r.POST("/cards/", h.CreateCard)
	r.GET("/cards/:id", h.GetCard)
	r.DELETE("/cards/:id", h.DeleteCard)

	// APDU logs
	r.POST("/apdu/logs", h.LogAPDU)
	r.GET("/apdu/logs", h.ListAPDULogs)

	// APDU classifier
	r.GET("/apdu/models", h.ListAPDUModels)
	r.POST("/apdu/models/train", h.TrainAPDUModel)
	r.GET("/apdu/models/:id", h.GetAPDUModel)
	r.POST("/apdu/models/:id/default", h.SetDefaultAPDUModel)
	r.POST("/apdu/predict", h.PredictAPDU)
}
