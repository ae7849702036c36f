package http

// this is entry point of the http request handlers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"

	"gitlab.com/agfdbk.net/internal/core/ports/primary"
	"gitlab.com/agfdbk.net/internal/core/ports/secondary"
	"gitlab.com/agfdbk.net/internal/core/services/export"
	"gitlab.com/agfdbk.net/internal/core/services/feedback"
	"gitlab.com/agfdbk.net/internal/core/services/receipt"
	"gitlab.com/agfdbk.net/internal/core/services/ultimate"
	"gitlab.com/agfdbk.net/internal/handlers"
	fdbkhandler "gitlab.com/agfdbk.net/internal/handlers/feedback"
	"gitlab.com/agfdbk.net/internal/handlers/receipts"
	ulthandler "gitlab.com/agfdbk.net/internal/handlers/ultimate"
)

type ServiceProvider struct {
	feedbackSvc    feedback.IFeedbackService
	ultimateSvc    ultimate.IUltimateService
	exportSvc      export.IExportService
	receiptSvc     receipt.IReceiptService
	submissionRepo secondary.SubmissionRepository
}

func NewServiceProvider(
	feedbackSvc feedback.IFeedbackService,
	ultimateSvc ultimate.IUltimateService,
	exportSvc export.IExportService,
	receiptSvc receipt.IReceiptService,
	submissionRepo secondary.SubmissionRepository,
) *ServiceProvider {
	return &ServiceProvider{
		feedbackSvc:    feedbackSvc,
		ultimateSvc:    ultimateSvc,
		exportSvc:      exportSvc,
		receiptSvc:     receiptSvc,
		submissionRepo: submissionRepo,
	}
}

type Server struct {
	router          *mux.Router
	srv             *http.Server
	Port            string
	ServiceName     string
	ServiceProvider ServiceProvider
	middleware      *handlers.MiddlewareProvider
	logger          primary.Logger
}

func NewServer(port string, serviceName string, serviceProvider ServiceProvider, middleware *handlers.MiddlewareProvider, logger primary.Logger) *Server {
	return &Server{
		Port:            port,
		ServiceName:     serviceName,
		ServiceProvider: serviceProvider,
		middleware:      middleware,
		logger:          logger,
	}
}

func (s *Server) Init() error {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		handlers.ResponseWithJson(w, http.StatusOK, map[string]string{"service": s.ServiceName, "status": "ok"})
	}).Methods("GET")

	// receipt verification needs no account
	public := r.PathPrefix("/api/receipts").Subrouter()
	receiptHandler := receipts.NewHandler(s.ServiceProvider.receiptSvc, s.logger)
	public.HandleFunc("/verify", receiptHandler.Verify).Methods("POST")

	api := r.NewRoute().Subrouter()
	api.Use(s.middleware.JWTMiddleware)
	fdbkhandler.
		NewHandler(s.ServiceProvider.feedbackSvc, s.ServiceProvider.submissionRepo, s.logger).
		RegisterRoutes(api)
	ulthandler.
		NewHandler(s.ServiceProvider.ultimateSvc, s.ServiceProvider.exportSvc, s.logger).
		RegisterRoutes(api)
	receiptHandler.RegisterRoutes(api)

	s.router = r
	return nil
}

// Router exposes the configured routes, mostly for tests
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) Start(ctx context.Context) {
	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%s", s.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(_ net.Listener) context.Context { return ctx },
	}

	go func() {
		s.logger.Info("Server listening", "addr", s.srv.Addr, "service", s.ServiceName)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()
}

func (s *Server) Stop(ctx context.Context) {
	s.logger.Info("Shutting down http server...")
	if s.srv == nil {
		return
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Error("Server forced to shutdown", "error", err)
	}
}
