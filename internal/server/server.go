package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	approvaldomain "github.com/zenithhr/expensio/internal/approval/domain"
	auditdomain "github.com/zenithhr/expensio/internal/audit/domain"
	bankingdomain "github.com/zenithhr/expensio/internal/banking/domain"
	claimdomain "github.com/zenithhr/expensio/internal/claim/domain"
	"github.com/zenithhr/expensio/internal/config"
	employeedomain "github.com/zenithhr/expensio/internal/employee/domain"
	"github.com/zenithhr/expensio/internal/metrics"
	mileagedomain "github.com/zenithhr/expensio/internal/mileage/domain"
	notificationdomain "github.com/zenithhr/expensio/internal/notification/domain"
	policydomain "github.com/zenithhr/expensio/internal/policy/domain"
	reimbursementdomain "github.com/zenithhr/expensio/internal/reimbursement/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, log *zap.Logger, m *metrics.Metrics) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log.Named("http")))
	r.Use(metrics.GinMiddleware(m))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
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
	engine           *gin.Engine
	cfg              config.Config
	db               *gorm.DB
	genID            *snowflake.Node
	employeeSvc      employeedomain.Service
	policySvc        policydomain.Service
	claimSvc         claimdomain.Service
	approvalSvc      approvaldomain.Service
	mileageSvc       mileagedomain.Service
	reimbursementSvc reimbursementdomain.Service
	bankingSvc       bankingdomain.Service
	notificationSvc  notificationdomain.Service
	auditSvc         auditdomain.Service
	registry         *prometheus.Registry
}

type ServerParams struct {
	fx.In

	Gin              *gin.Engine
	Cfg              config.Config
	DB               *gorm.DB
	GenID            *snowflake.Node
	EmployeeSvc      employeedomain.Service
	PolicySvc        policydomain.Service
	ClaimSvc         claimdomain.Service
	ApprovalSvc      approvaldomain.Service
	MileageSvc       mileagedomain.Service
	ReimbursementSvc reimbursementdomain.Service
	BankingSvc       bankingdomain.Service
	NotificationSvc  notificationdomain.Service
	AuditSvc         auditdomain.Service
	Registry         *prometheus.Registry
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:           p.Gin,
		cfg:              p.Cfg,
		db:               p.DB,
		genID:            p.GenID,
		employeeSvc:      p.EmployeeSvc,
		policySvc:        p.PolicySvc,
		claimSvc:         p.ClaimSvc,
		approvalSvc:      p.ApprovalSvc,
		mileageSvc:       p.MileageSvc,
		reimbursementSvc: p.ReimbursementSvc,
		bankingSvc:       p.BankingSvc,
		notificationSvc:  p.NotificationSvc,
		auditSvc:         p.AuditSvc,
		registry:         p.Registry,
	}

	svc.registerAPIRoutes()
	svc.registerOpsRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", PrincipalMiddleware())

	// -------- Employees --------
	api.POST("/employees", s.CreateEmployee)
	api.GET("/employees/:id", s.GetEmployeeByID)
	api.PUT("/employees/:id/bank-details", s.SetBankDetail)

	// -------- Policy --------
	api.GET("/categories", s.ListCategories)
	api.POST("/categories", s.CreateCategory)
	api.GET("/policy-rules", s.ListPolicyRules)
	api.POST("/policy-rules", s.CreatePolicyRule)
	api.PATCH("/policy-rules/:id", s.UpdatePolicyRule)

	// -------- Claims --------
	api.POST("/claims", RequirePrincipal(), s.SubmitClaim)
	api.POST("/claims/validate", RequirePrincipal(), s.ValidateClaim)
	api.GET("/claims", s.ListClaims)
	api.GET("/claims/:id", s.GetClaimByID)
	api.POST("/claims/:id/cancel", RequirePrincipal(), s.CancelClaim)
	api.GET("/claims/:id/approvals", s.ListClaimApprovals)

	// -------- Approvals --------
	api.POST("/approvals/decision", RequirePrincipal(), s.RecordApprovalDecision)
	api.GET("/approvals/pending", RequirePrincipal(), s.ListPendingApprovals)

	// -------- Mileage --------
	api.POST("/distance-logs", s.AddDistanceLog)
	api.POST("/mileage/generate", s.GenerateMileageClaim)
	api.POST("/mileage/generate-batch", s.GenerateMileageClaims)
	api.POST("/petrol-configs", s.CreatePetrolConfig)
	api.GET("/petrol-configs/current", s.GetCurrentPetrolConfig)

	// -------- Reimbursements --------
	api.POST("/reimbursements", RequirePrincipal(), s.ProcessReimbursementBatch)
	api.GET("/reimbursements/:id", s.GetReimbursementBatch)
	api.GET("/reimbursements/:id/claims", s.ListReimbursementBatchClaims)

	// -------- Banking --------
	api.POST("/banking/validate-details", s.ValidateBankDetails)
	api.POST("/banking/integrate", RequirePrincipal(), s.IntegrateBanking)

	// -------- Audit --------
	api.GET("/audit-logs", s.ListAuditLogs)
}

func (s *Server) registerOpsRoutes() {
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	s.engine.POST("/ops/notifications/dispatch", s.DispatchNotifications)
}
