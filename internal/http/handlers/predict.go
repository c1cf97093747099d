package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/heartcheck/internal/features"
	"github.com/yungbote/heartcheck/internal/http/response"
	"github.com/yungbote/heartcheck/internal/model"
	"github.com/yungbote/heartcheck/internal/patient"
	"github.com/yungbote/heartcheck/internal/platform/ctxutil"
	"github.com/yungbote/heartcheck/internal/platform/logger"
	"github.com/yungbote/heartcheck/internal/prediction"
)

// Predictor is the part of prediction.Service the HTTP layer uses.
type Predictor interface {
	Predict(ctx context.Context, raw patient.RawFields) (prediction.Result, error)
	Encode(ctx context.Context, raw patient.RawFields) (features.Vector, error)
	Model(ctx context.Context) (model.Info, error)
}

var errPredictionFailed = errors.New("prediction failed, please try again later")

type PredictHandler struct {
	log *logger.Logger
	svc Predictor
}

func NewPredictHandler(log *logger.Logger, svc Predictor) *PredictHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &PredictHandler{log: log, svc: svc}
}

// POST /v1/predict
func (h *PredictHandler) Predict(c *gin.Context) {
	var raw patient.RawFields
	if err := c.ShouldBindJSON(&raw); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeBadRequest, err)
		return
	}
	res, err := h.svc.Predict(c.Request.Context(), raw)
	if err != nil {
		h.respondFailure(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /v1/encode
func (h *PredictHandler) Encode(c *gin.Context) {
	var raw patient.RawFields
	if err := c.ShouldBindJSON(&raw); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeBadRequest, err)
		return
	}
	vec, err := h.svc.Encode(c.Request.Context(), raw)
	if err != nil {
		h.respondFailure(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"columns":  features.Names(),
		"features": vec.Named(),
	})
}

// GET /v1/model
func (h *PredictHandler) Model(c *gin.Context) {
	info, err := h.svc.Model(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		response.RespondError(c, http.StatusServiceUnavailable, response.CodeModelUnavailable, errors.New("model is not available"))
		return
	}
	response.RespondOK(c, gin.H{"model": info})
}

func (h *PredictHandler) respondFailure(c *gin.Context, err error) {
	if patient.IsValidationError(err) {
		response.RespondValidation(c, patient.Messages(err), patient.FieldErrors(err))
		return
	}
	// Model and loader errors stay in the logs.
	_ = c.Error(err)
	h.log.Error("Prediction request failed", "error", err, "request_id", ctxutil.RequestID(c.Request.Context()))
	response.RespondError(c, http.StatusInternalServerError, response.CodePredictionFailed, errPredictionFailed)
}
