package server

import (
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/rs/cors"

	"github.com/iWorld-y/fact_radar/app/analyzer/internal/conf"
	"github.com/iWorld-y/fact_radar/app/analyzer/internal/service"
)

// 事件流按步推送，默认超时需要覆盖整个流
const defaultTimeout = 120 * time.Second

func NewHTTPServer(c *conf.Server, s *service.AnalyzerService, logger log.Logger) *http.Server {
	origins := []string{"*"}
	timeout := defaultTimeout
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
		),
	}
	if c != nil && c.Http != nil {
		if c.Http.Addr != "" {
			opts = append(opts, http.Address(c.Http.Addr))
		}
		if c.Http.Timeout != "" {
			if d, err := time.ParseDuration(c.Http.Timeout); err == nil {
				timeout = d
			} else {
				log.NewHelper(logger).Warnf("invalid http timeout %q, using %s", c.Http.Timeout, defaultTimeout)
			}
		}
		if len(c.Http.CorsOrigins) > 0 {
			origins = c.Http.CorsOrigins
		}
	}
	opts = append(opts,
		http.Timeout(timeout),
		http.Filter(cors.New(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"*"},
		}).Handler),
	)

	srv := http.NewServer(opts...)
	service.RegisterAnalyzerHTTPServer(srv, s)
	return srv
}
