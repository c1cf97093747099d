package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/heartcheck/internal/config"
	httpserver "github.com/yungbote/heartcheck/internal/http"
	httpH "github.com/yungbote/heartcheck/internal/http/handlers"
	"github.com/yungbote/heartcheck/internal/observability"
	"github.com/yungbote/heartcheck/internal/platform/logger"
)

type Handlers struct {
	Health  *httpH.HealthHandler
	Form    *httpH.FormHandler
	Predict *httpH.PredictHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:  httpH.NewHealthHandler(services.Loader),
		Form:    httpH.NewFormHandler(log, services.Prediction),
		Predict: httpH.NewPredictHandler(log, services.Prediction),
	}
}

func wireRouter(log *logger.Logger, cfg *config.Config, metrics *observability.Metrics, handlers Handlers) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	serviceName := ""
	if cfg.OTel.Enabled {
		serviceName = cfg.OTel.ServiceName
	}
	return httpserver.NewRouter(httpserver.RouterConfig{
		Log:             log,
		Metrics:         metrics,
		ServiceName:     serviceName,
		CORSOrigins:     cfg.HTTP.CORSOrigins,
		MaxRequestBytes: cfg.HTTP.MaxRequestBytes,
		FormHandler:     handlers.Form,
		PredictHandler:  handlers.Predict,
		HealthHandler:   handlers.Health,
	})
}
