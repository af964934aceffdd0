package server

import (
	"github.com/google/wire"

	"github.com/iWorld-y/fact_radar/app/analyzer/internal/data"
	"github.com/iWorld-y/fact_radar/app/analyzer/internal/service"
	"github.com/iWorld-y/fact_radar/app/analyzer/internal/usecase"
	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/engine"
)

// ProviderSet 是核查服务的依赖注入 Provider 集合
var ProviderSet = wire.NewSet(
	// Server providers
	NewHTTPServer,
	NewAnalysisEngine,
	wire.Bind(new(usecase.Analyzer), new(*engine.Engine)),

	// Data providers
	data.NewData,
	data.NewResultRepo,

	// UseCase providers
	usecase.NewAnalysisUseCase,

	// Service providers
	service.NewAnalyzerService,
)
