package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"marketplace-cloud/internal/audit"
	billingapp "marketplace-cloud/internal/billing/application"
	billingrepo "marketplace-cloud/internal/billing/infrastructure/postgres"
	billinginterfaces "marketplace-cloud/internal/billing/interfaces"
	"marketplace-cloud/internal/gateway"
	"marketplace-cloud/internal/notify"
	"marketplace-cloud/internal/observability/metrics"
	partnerrepo "marketplace-cloud/internal/partner/infrastructure/postgres"
	partnerinterfaces "marketplace-cloud/internal/partner/interfaces"
	paymentsapp "marketplace-cloud/internal/payments/application"
	paymentshttp "marketplace-cloud/internal/payments/interfaces/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	billingCfg, err := billingapp.LoadConfig()
	if err != nil {
		logger.Fatalf("billing config error: %v", err)
	}
	location, err := billingCfg.Location()
	if err != nil {
		logger.Fatalf("billing timezone error: %v", err)
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init()
	auditRepo := audit.NewRepository(db)

	partnerRepo := partnerrepo.NewPartnerRepository(db)
	feeRepo := billingrepo.NewFeeRepository(db)
	invoiceRepo := billingrepo.NewInvoiceRepository(db)

	gatewayClient, err := gateway.NewClient(billingCfg.GatewayBaseURL, billingCfg.GatewayToken)
	if err != nil {
		logger.Fatalf("gateway client error: %v", err)
	}

	var notifier notify.Notifier
	if billingCfg.NotifyWebhookURL != "" {
		notifier = notify.NewWebhookNotifier(billingCfg.NotifyWebhookURL)
	}

	runService, err := billingapp.NewBillingRunService(partnerRepo, feeRepo, invoiceRepo, systemClock{}, logger)
	if err != nil {
		logger.Fatalf("billing run service error: %v", err)
	}
	scheduler := billingapp.NewScheduler(runService, billingCfg.Schedule.DailyAt, location, billingCfg.RunTimeout, logger)
	go scheduler.Start(context.Background())

	reconcileService, err := paymentsapp.NewReconcileService(invoiceRepo, gatewayClient, notifier, systemClock{}, logger)
	if err != nil {
		logger.Fatalf("reconcile service error: %v", err)
	}
	paymentService, err := paymentsapp.NewPaymentService(invoiceRepo, gatewayClient)
	if err != nil {
		logger.Fatalf("payment service error: %v", err)
	}

	webhookHandler, err := paymentshttp.NewWebhookHandler(reconcileService, logger)
	if err != nil {
		logger.Fatalf("webhook handler error: %v", err)
	}
	invoiceHandler, err := billinginterfaces.NewInvoiceHandler(invoiceRepo, paymentService, reconcileService, auditRepo)
	if err != nil {
		logger.Fatalf("invoice handler error: %v", err)
	}
	runHandler, err := billinginterfaces.NewRunHandler(runService, auditRepo)
	if err != nil {
		logger.Fatalf("run handler error: %v", err)
	}
	partnerHandler, err := partnerinterfaces.NewPartnerHandler(partnerRepo)
	if err != nil {
		logger.Fatalf("partner handler error: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/webhooks/payments", webhookHandler)
	mux.Handle("/api/v1/invoices", invoiceHandler)
	mux.Handle("/api/v1/invoices/", invoiceHandler)
	mux.Handle("/api/v1/billing/run", runHandler)
	mux.Handle("/api/v1/partners", partnerHandler)
	mux.Handle("/api/v1/partners/", partnerHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(mux, logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL string
	HTTPAddr    string
}

func loadConfig() config {
	cfg := config{
		DatabaseURL: getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:    getenvDefault("HTTP_ADDR", ":8080"),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
