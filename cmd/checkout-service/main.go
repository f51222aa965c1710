package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"

	"github.com/MikeMC777/fitactive-checkout/internal/config"
	"github.com/MikeMC777/fitactive-checkout/internal/database"
	"github.com/MikeMC777/fitactive-checkout/internal/grpcx"
	"github.com/MikeMC777/fitactive-checkout/internal/httpx"
	"github.com/MikeMC777/fitactive-checkout/internal/mailer"
	"github.com/MikeMC777/fitactive-checkout/internal/netopia"
	"github.com/MikeMC777/fitactive-checkout/internal/order"
	"github.com/MikeMC777/fitactive-checkout/internal/payment"
	"github.com/MikeMC777/fitactive-checkout/internal/smartbill"
)

var version = "dev"

// @title        FitActive checkout API
// @version      1.0
// @description  Presale checkout: NETOPIA card payments, SmartBill invoices, order status.
// @BasePath     /
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg)
	slog.SetDefault(log)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Error("failed to open order store", "driver", cfg.DatabaseDriver(), "error", err)
		os.Exit(1)
	}
	defer closeStore()

	verifier, err := netopia.LoadVerifier(cfg.Netopia.PublicKeyPath, cfg.Netopia.POSSignature)
	if err != nil {
		// Without the key every IPN is rejected; immediate approvals still work.
		log.Warn("netopia public key unavailable, notifications will be rejected", "error", err)
		verifier = netopia.NewVerifier(nil, cfg.Netopia.POSSignature)
	}

	gateway := netopia.NewClient(netopia.Config{
		APIBase:      cfg.Netopia.APIBase,
		APIKey:       cfg.Netopia.APIKey,
		POSSignature: cfg.Netopia.POSSignature,
		NotifyURL:    cfg.Netopia.NotifyURL,
		ReturnBase:   cfg.App.BaseURL,
		RedirectPath: cfg.Netopia.RedirectPath,
		Timeout:      cfg.Netopia.Timeout,
	})
	invoicer := smartbill.NewClient(smartbill.Config{
		APIBase:     cfg.SmartBill.APIBase,
		Email:       cfg.SmartBill.Email,
		Token:       cfg.SmartBill.Token,
		VATCode:     cfg.SmartBill.VATCode,
		Series:      cfg.SmartBill.Series,
		ProductName: cfg.SmartBill.ProductName,
		TaxPercent:  cfg.SmartBill.TaxPercent,
		Timeout:     cfg.SmartBill.Timeout,
	})
	smtp := mailer.NewSMTP(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		User:     cfg.SMTP.User,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		Brand:    cfg.App.Name,
	})

	svc := payment.NewService(store, gateway, verifier, invoicer, smtp,
		payment.WithClaimTTL(cfg.SmartBill.ClaimTTL),
		payment.WithLogger(log),
	)

	router := newRouter(svc, log, cfg.App.Env, time.Now())
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           httpx.CORS(cfg.CORSOrigins(), router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	health := grpcx.NewHealth(store, 10*time.Second, log)
	gs := grpc.NewServer()
	health.Register(gs)
	go health.Run(ctx)

	lis, err := net.Listen("tcp", cfg.GRPC.HealthAddr)
	if err != nil {
		log.Error("failed to listen for grpc health", "addr", cfg.GRPC.HealthAddr, "error", err)
		os.Exit(1)
	}
	go func() {
		log.Info("grpc health listening", "addr", cfg.GRPC.HealthAddr)
		if err := gs.Serve(lis); err != nil {
			log.Error("grpc health stopped", "error", err)
		}
	}()

	go func() {
		log.Info("checkout-service listening", "addr", srv.Addr, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.Shutdown)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", "error", err)
	}
	gs.GracefulStop()
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.App.LogLevel))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// storeCloser releases the database handle behind an order store.
type storeCloser func()

func openStore(ctx context.Context, cfg *config.Config) (order.Repository, storeCloser, error) {
	if cfg.DatabaseDriver() == "postgres" {
		pool, err := database.NewPostgres(ctx, cfg.DB.URL, order.PGSchema)
		if err != nil {
			return nil, nil, err
		}
		return order.NewPGRepo(pool), pool.Close, nil
	}

	db, err := database.NewSQLite(ctx, cfg.DB.Path, order.SQLiteSchema)
	if err != nil {
		return nil, nil, err
	}
	return order.NewSQLiteRepo(db), func() { _ = db.Close() }, nil
}
