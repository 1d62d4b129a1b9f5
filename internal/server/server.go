package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/paydash/internal/config"
	"github.com/smallbiznis/paydash/internal/dashboard"
	"github.com/smallbiznis/paydash/internal/observability"
	obslogger "github.com/smallbiznis/paydash/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/paydash/internal/observability/metrics"
	obstracing "github.com/smallbiznis/paydash/internal/observability/tracing"
	"github.com/smallbiznis/paydash/internal/payroll/aggregation"
	"github.com/smallbiznis/paydash/internal/payroll/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Provide(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(log, obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(httpMetrics.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewEngine(obsCfg, log, httpMetrics)
}

func run(lc fx.Lifecycle, shutdowner fx.Shutdowner, cfg config.Config, s *Server, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info("dashboard listening", zap.String("addr", "http://"+ln.Addr().String()))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	dispatcher *dashboard.Dispatcher
	table      *domain.Table
	registry   *aggregation.Registry
	dashCfg    *config.DashboardConfigHolder
	log        *zap.Logger
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Dispatcher *dashboard.Dispatcher
	Table      *domain.Table
	Registry   *aggregation.Registry
	DashCfg    *config.DashboardConfigHolder
	Log        *zap.Logger
}

func NewServer(p ServerParams) (*Server, error) {
	tpl, err := template.New("").Funcs(template.FuncMap{
		"tableHTML": tableHTML,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	svc := &Server{
		engine:     p.Gin,
		dispatcher: p.Dispatcher,
		table:      p.Table,
		registry:   p.Registry,
		dashCfg:    p.DashCfg,
		log:        p.Log.Named("server"),
	}
	svc.engine.SetHTMLTemplate(tpl)

	svc.registerUIRoutes()
	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc, nil
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerUIRoutes() {
	s.engine.GET("/", s.Index)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.GET("/options", s.GetOptions)
	api.GET("/selection", s.GetSelection)
	api.GET("/regions", s.ListRegions)
	api.GET("/regions/:name", s.GetRegion)
	api.GET("/regions/:name/pdf", s.ExportRegionPDF)
	api.PUT("/inputs/:input", s.ApplyInput)
	api.POST("/evaluate", s.Evaluate)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
