package main

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/fitactive-checkout/internal/httpx"
	"github.com/MikeMC777/fitactive-checkout/internal/netopia"
	"github.com/MikeMC777/fitactive-checkout/internal/order"
	"github.com/MikeMC777/fitactive-checkout/internal/payment"
)

// startPaymentHandler godoc
// @Summary      Start a card payment
// @Description  Validates the checkout, stores the order as pending and asks NETOPIA for a payment page.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        body  body      order.StartPaymentRequest  true  "Checkout data"
// @Success      200   {object}  order.StartPaymentResponse
// @Failure      400   {object}  order.HTTPError
// @Failure      409   {object}  order.HTTPError
// @Failure      413   {object}  order.HTTPError
// @Failure      502   {object}  order.HTTPError
// @Failure      500   {object}  order.HTTPError
// @Router       /payments/start [post]
func startPaymentHandler(svc *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.JSON(http.StatusRequestEntityTooLarge, order.HTTPError{Message: "Request body too large"})
				return
			}
			c.JSON(http.StatusBadRequest, order.HTTPError{Message: "Could not read request body", Error: err.Error()})
			return
		}
		if len(body) == 0 {
			c.JSON(http.StatusBadRequest, order.HTTPError{Message: "Request body is required", Error: "Empty or missing request body"})
			return
		}

		req, err := order.DecodeStartPayment(body)
		if err == nil {
			var res *payment.StartResult
			res, err = svc.Start(c.Request.Context(), req)
			if err == nil {
				c.JSON(http.StatusOK, order.StartPaymentResponse{Success: true, RedirectURL: res.RedirectURL})
				return
			}
		}

		var verrs order.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			c.JSON(http.StatusBadRequest, order.HTTPError{Message: "Invalid payment data", Errors: verrs})
		case isSyntaxError(err):
			c.JSON(http.StatusBadRequest, order.HTTPError{Message: "Invalid JSON format"})
		case errors.Is(err, order.ErrAlreadyApproved):
			c.JSON(http.StatusConflict, order.HTTPError{Message: "Order already paid", Error: err.Error()})
		case errors.Is(err, payment.ErrGateway):
			c.JSON(http.StatusBadGateway, order.HTTPError{Message: "Payment could not be initiated", Error: "Unable to generate payment URL"})
		default:
			c.Error(err)
			c.JSON(http.StatusInternalServerError, order.HTTPError{Message: "Failed to start payment", Error: "Internal server error"})
		}
	}
}

func isSyntaxError(err error) bool {
	var se *json.SyntaxError
	return errors.As(err, &se)
}

// notifyHandler godoc
// @Summary      NETOPIA payment notification
// @Description  Receives the signed IPN. Always acknowledged with 200 OK.
// @Tags         payments
// @Accept       plain
// @Produce      plain
// @Param        Verification-token  header  string  true  "RS512 token signed by NETOPIA"
// @Success      200  {string}  string  "OK"
// @Router       /payments/notify [post]
func notifyHandler(svc *payment.Service, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// The gateway retries anything but 200, so a panic is acknowledged too.
		defer func() {
			if r := recover(); r != nil {
				log.Error("ipn handler panic", "panic", r, "rid", httpx.RID(c))
				c.String(http.StatusOK, "OK")
			}
		}()

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Error(err)
			c.String(http.StatusOK, "OK")
			return
		}
		svc.HandleNotification(c.Request.Context(), c.GetHeader(netopia.VerificationHeader), body)
		c.String(http.StatusOK, "OK")
	}
}

// orderStatusHandler godoc
// @Summary      Order status
// @Description  Current state of an order for the thank-you page. Unknown ids report not_found.
// @Tags         orders
// @Produce      json
// @Param        orderID  query     string  true  "Order id"
// @Success      200      {object}  order.StatusResponse
// @Failure      400      {object}  order.HTTPError
// @Failure      500      {object}  order.HTTPError
// @Router       /orders/status [get]
func orderStatusHandler(svc *payment.Service, wrapped bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Query("orderID")
		if orderID == "" {
			c.JSON(http.StatusBadRequest, order.HTTPError{Message: "OrderID is required"})
			return
		}

		st, err := svc.OrderStatus(c.Request.Context(), orderID)
		if err != nil {
			c.Error(err)
			c.JSON(http.StatusInternalServerError, order.HTTPError{Message: "Failed to get order status", Error: "Internal server error"})
			return
		}
		if wrapped {
			c.JSON(http.StatusOK, gin.H{"success": true, "data": st})
			return
		}
		c.JSON(http.StatusOK, st)
	}
}

type memoryMB struct {
	Used  uint64 `json:"used"`
	Total uint64 `json:"total"`
	Sys   uint64 `json:"sys"`
}

type healthResponse struct {
	Status      string    `json:"status"      example:"ok"`
	Timestamp   time.Time `json:"timestamp"`
	Environment string    `json:"environment" example:"production"`
	Uptime      float64   `json:"uptime"      example:"3600.5"`
	Memory      memoryMB  `json:"memory"`
	Version     string    `json:"version"     example:"1.0.0"`
	Error       string    `json:"error,omitempty"`
}

// healthHandler godoc
// @Summary      Liveness
// @Tags         health
// @Produce      json
// @Success      200  {object}  healthResponse
// @Failure      503  {object}  healthResponse
// @Router       /health [get]
func healthHandler(svc *payment.Service, env string, started time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)

		res := healthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Environment: env,
			Uptime:      time.Since(started).Seconds(),
			Memory: memoryMB{
				Used:  ms.HeapAlloc >> 20,
				Total: ms.HeapSys >> 20,
				Sys:   ms.Sys >> 20,
			},
			Version: version,
		}
		if err := svc.Ping(c.Request.Context()); err != nil {
			res.Status = "error"
			res.Error = "database unreachable"
			c.JSON(http.StatusServiceUnavailable, res)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}
