package http

import (
	"io"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/hris-overtime-report/internal/config"
	"github.com/cmlabs-hris/hris-overtime-report/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-overtime-report/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

const appName = "hris-overtime-report"

// NewLogger builds the JSON logger shared by the request logger and the services.
func NewLogger(w io.Writer, app config.AppConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(app.LogLevel))); err != nil {
		level = slog.LevelInfo
	}

	logFormat := httplog.SchemaECS.Concise(app.Env != "production")
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", appName),
		slog.String("version", "v1.0.0"),
		slog.String("env", app.Env),
	)
}

func NewRouter(logger *slog.Logger, allowedOrigins []string, JWTService jwt.Service, overtimeHandler OvertimeHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))
			r.Use(middleware.RequireRole(middleware.ReportRoles...))

			r.Route("/reports/overtime", func(r chi.Router) {
				r.Get("/", overtimeHandler.GetReport)
				r.Get("/export", overtimeHandler.ExportReport)
			})
		})
	})
	return r
}
