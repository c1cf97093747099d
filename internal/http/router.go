package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/heartcheck/internal/http/handlers"
	httpMW "github.com/yungbote/heartcheck/internal/http/middleware"
	"github.com/yungbote/heartcheck/internal/observability"
	"github.com/yungbote/heartcheck/internal/platform/logger"
)

type RouterConfig struct {
	Log     *logger.Logger
	Metrics *observability.Metrics

	// ServiceName names the otelgin server spans; empty disables them.
	ServiceName     string
	CORSOrigins     []string
	MaxRequestBytes int64

	FormHandler    *httpH.FormHandler
	PredictHandler *httpH.PredictHandler
	HealthHandler  *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.LimitBody(cfg.MaxRequestBytes))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.ReadyCheck)
	}

	// Metrics
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	// Form
	if cfg.FormHandler != nil {
		r.GET("/", cfg.FormHandler.Show)
		r.POST("/", cfg.FormHandler.Submit)
	}

	api := r.Group("/v1")
	{
		if cfg.PredictHandler != nil {
			api.POST("/predict", cfg.PredictHandler.Predict)
			api.POST("/encode", cfg.PredictHandler.Encode)
			api.GET("/model", cfg.PredictHandler.Model)
		}
	}

	return r
}
