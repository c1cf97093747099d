package app

import (
	"github.com/yungbote/heartcheck/internal/config"
	"github.com/yungbote/heartcheck/internal/model"
	"github.com/yungbote/heartcheck/internal/model/loader"
	"github.com/yungbote/heartcheck/internal/observability"
	"github.com/yungbote/heartcheck/internal/platform/logger"
	"github.com/yungbote/heartcheck/internal/prediction"
)

type Services struct {
	Loader     *loader.Loader
	Prediction *prediction.Service
}

func wireServices(log *logger.Logger, cfg *config.Config, src model.Source, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	ld := loader.New(src, loader.Options{
		Kind:      model.Kind(cfg.Model.Kind),
		Threshold: cfg.Model.Threshold,
		MaxBytes:  cfg.Model.MaxBytes,
		MockLabel: cfg.Model.MockLabel,
	}, log)

	svc, err := prediction.NewService(ld, log,
		prediction.WithMetrics(metrics),
		prediction.WithCacheSize(cfg.Cache.PredictionSize),
	)
	if err != nil {
		return Services{}, err
	}
	return Services{Loader: ld, Prediction: svc}, nil
}
