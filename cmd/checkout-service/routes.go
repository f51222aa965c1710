package main

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/MikeMC777/fitactive-checkout/docs"
	"github.com/MikeMC777/fitactive-checkout/internal/httpx"
	"github.com/MikeMC777/fitactive-checkout/internal/payment"
)

func newRouter(svc *payment.Service, log *slog.Logger, env string, started time.Time) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(log), httpx.BodyLimit(httpx.MaxBodyBytes))

	// swagger UI runs inline scripts, so it stays outside the CSP
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	s := r.Group("/", httpx.SecurityHeaders())
	s.GET("/health", healthHandler(svc, env, started))

	s.POST("/payments/start", startPaymentHandler(svc))
	s.POST("/payments/notify", notifyHandler(svc, log))
	s.GET("/orders/status", orderStatusHandler(svc, false))

	// paths used by the existing landing page
	api := s.Group("/api")
	api.POST("/netopia/start", startPaymentHandler(svc))
	api.POST("/netopia/ipn", notifyHandler(svc, log))
	api.GET("/order/status", orderStatusHandler(svc, true))
	return r
}
