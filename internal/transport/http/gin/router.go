package httpgin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/mkachur/bookgo/internal/domain"
	redisrepo "github.com/mkachur/bookgo/internal/repository/redis"
	"github.com/mkachur/bookgo/internal/service"
	"github.com/mkachur/bookgo/internal/service/booking"
	"github.com/mkachur/bookgo/internal/service/catalog"
	"github.com/mkachur/bookgo/internal/service/commission"
)

func NewRouter(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS(), ActorMiddleware())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public API
	r.GET("/activities/:id", handleGetActivity(svcs))
	r.GET("/activities/:id/availability", handleGetAvailability(svcs))
	r.GET("/activities/:id/bookings", handleListActivityBookings(svcs))

	r.POST("/activities/:id/bookings", handleCreateBooking(svcs, idem))

	r.GET("/bookings/:id", handleGetBooking(svcs))
	r.GET("/bookings/:id/commission", handleGetBookingCommission(svcs))
	r.GET("/bookings/code/:code", handleGetBookingByCode(svcs))
	r.POST("/bookings/:id/confirm", handleConfirmBooking(svcs))
	r.POST("/bookings/:id/cancel", handleCancelBooking(svcs))

	r.GET("/users/:id/bookings", handleListGuestBookings(svcs))

	r.GET("/commissions/:id", handleGetCommission(svcs))
	r.POST("/commissions/:id/dispute", handleDisputeCommission(svcs))
	r.GET("/hosts/:id/commissions", handleListHostCommissions(svcs))

	// Admin-API
	admin := r.Group("/admin", RequireAdmin())
	{
		admin.POST("/activities", handleCreateActivity(svcs))

		admin.POST("/bookings/sweep", handleSweepBookings(svcs))
		admin.POST("/bookings/:id/refund", handleRefundBooking(svcs))
		admin.POST("/bookings/:id/complete", handleCompleteBooking(svcs))
		admin.POST("/bookings/:id/commission", handleSettleCommission(svcs))

		admin.POST("/commissions/payouts", handleBulkPayout(svcs))
		admin.POST("/commissions/:id/process", handleCommissionTransition(svcs, "process"))
		admin.POST("/commissions/:id/payout", handleCommissionTransition(svcs, "payout"))
		admin.POST("/commissions/:id/hold", handleCommissionTransition(svcs, "hold"))
		admin.POST("/commissions/:id/release", handleCommissionTransition(svcs, "release"))
		admin.POST("/commissions/:id/resolve", handleResolveDispute(svcs))
	}

	return r
}

// --- Handlers with Swagger annotations ---

// @Summary  Get activity
// @Param    id  path  int  true  "Activity ID"
// @Success  200  {object}  domain.Activity
// @Failure  404  {object}  ErrorResponse
// @Router   /activities/{id} [get]
func handleGetActivity(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		activityID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		a, err := svcs.Catalog.GetActivity(c.Request.Context(), activityID)
		if err != nil {
			respondErr(c, err)
			return
		}
		// ETag + Cache-Control 60s
		writeJSONWithCache(c, http.StatusOK, a, "public, max-age=60", true)
	}
}

// @Summary  Get availability counters
// @Param    id  path  int  true  "Activity ID"
// @Success  200  {object}  domain.ActivityAvailability
// @Router   /activities/{id}/availability [get]
func handleGetAvailability(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		activityID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		av, err := svcs.Catalog.Availability(c.Request.Context(), activityID)
		if err != nil {
			respondErr(c, err)
			return
		}
		// ETag + Cache-Control 15s
		writeJSONWithCache(c, http.StatusOK, av, "public, max-age=15", true)
	}
}

// @Summary  List activity bookings (host or admin)
// @Param    id     path   int     true  "Activity ID"
// @Param    only   query  string  false "active"
// @Param    limit  query  int     false "page size"
// @Param    offset query  int     false "offset"
// @Success  200  {array}   domain.Booking
// @Failure  403  {object}  ErrorResponse
// @Router   /activities/{id}/bookings [get]
func handleListActivityBookings(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		activityID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		onlyActive := c.Query("only") == "active" || c.Query("only_active") == "true"
		limit := parseIntDefault(c.Query("limit"), 50)
		offset := parseIntDefault(c.Query("offset"), 0)

		bookings, err := svcs.Booking.ListForActivity(
			c.Request.Context(),
			currentActor(c),
			activityID,
			onlyActive,
			limit,
			offset,
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, bookings)
	}
}

// @Summary  Create booking (idempotent)
// @Param    id  path  int  true  "Activity ID"
// @Param    req body  CreateBookingRequest true "payload"
// @Header   201 {string} Idempotency-Key "echo"
// @Success  201 {object} CreateBookingResponse
// @Failure  400 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "interval conflict / capacity exhausted / idem in progress"
// @Failure  429 {object} ErrorResponse "rate limited"
// @Router   /activities/{id}/bookings [post]
func handleCreateBooking(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		activityID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req CreateBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		starts, err := parseRFC3339(req.StartsAt)
		if err != nil {
			badRequest(c, "invalid starts_at (RFC3339)")
			return
		}
		ends, err := parseRFC3339(req.EndsAt)
		if err != nil {
			badRequest(c, "invalid ends_at (RFC3339)")
			return
		}

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemBooking(activityID, idemKey)

			if payload, ok, _ := idem.GetResult(
				c.Request.Context(),
				idemStorageKey,
			); ok {
				c.Header("Idempotency-Key", idemKey)
				c.Data(
					http.StatusCreated,
					"application/json; charset=utf-8",
					[]byte(payload),
				)
				return
			}

			locked, err := idem.AcquireLock(
				c.Request.Context(),
				idemStorageKey,
				60*time.Second,
			)
			if err != nil {
				respondErr(c, err)
				return
			}
			if !locked {
				if payload, ok, _ := idem.GetResult(
					c.Request.Context(),
					idemStorageKey,
				); ok {
					c.Header("Idempotency-Key", idemKey)
					c.Data(
						http.StatusCreated,
						"application/json; charset=utf-8",
						[]byte(payload),
					)
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(
					http.StatusConflict,
					ErrorResponse{Error: "idempotency key in progress"},
				)
				return
			}
		}

		rlKey := "ip:" + c.ClientIP()

		b, err := svcs.Booking.Create(
			c.Request.Context(),
			currentActor(c),
			activityID,
			domain.Interval{Start: starts, End: ends},
			req.Guests,
			rlKey,
		)
		if err != nil {
			if idemStorageKey != "" && idem != nil {
				_ = idem.Release(c.Request.Context(), idemStorageKey)
			}
			if isRateLimitedErr(err) {
				c.Header("Retry-After", "60")
				c.JSON(
					http.StatusTooManyRequests,
					ErrorResponse{Error: err.Error()},
				)
				return
			}
			respondErr(c, err)
			return
		}

		resp := CreateBookingResponse{
			BookingID:        b.ID.String(),
			ConfirmationCode: b.ConfirmationCode,
			TotalCents:       b.TotalCents,
		}

		if idemStorageKey != "" && idem != nil {
			out, _ := json.Marshal(resp)
			_ = idem.SaveResult(c.Request.Context(), idemStorageKey, string(out))
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusCreated, resp)
	}
}

// @Summary  Get booking
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Success  200 {object} domain.Booking
// @Router   /bookings/{id} [get]
func handleGetBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		b, err := svcs.Booking.Get(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

// @Summary  Get booking by confirmation code
// @Param    code  path  string  true  "Confirmation code"
// @Success  200 {object} domain.Booking
// @Router   /bookings/code/{code} [get]
func handleGetBookingByCode(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		b, err := svcs.Booking.ByConfirmationCode(c.Request.Context(), c.Param("code"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

// @Summary  Confirm booking (host)
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Success  200 {object} domain.Booking
// @Failure  403 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse
// @Router   /bookings/{id}/confirm [post]
func handleConfirmBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		b, err := svcs.Booking.Confirm(c.Request.Context(), currentActor(c), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

// @Summary  Cancel booking
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Param    req body  CancelBookingRequest false "payload"
// @Success  200 {object} domain.Booking
// @Failure  409 {object} ErrorResponse
// @Router   /bookings/{id}/cancel [post]
func handleCancelBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		var req CancelBookingRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				badRequest(c, err.Error())
				return
			}
		}
		b, err := svcs.Booking.Cancel(c.Request.Context(), currentActor(c), id, req.Reason)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

// @Summary  List guest bookings
// @Param    id     path  int  true  "User ID"
// @Param    limit  query int  false "page size"
// @Param    offset query int  false "offset"
// @Success  200 {array} domain.Booking
// @Router   /users/{id}/bookings [get]
func handleListGuestBookings(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		guestID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		limit := parseIntDefault(c.Query("limit"), 50)
		offset := parseIntDefault(c.Query("offset"), 0)

		bookings, err := svcs.Booking.ListForGuest(
			c.Request.Context(),
			currentActor(c),
			guestID,
			limit,
			offset,
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, bookings)
	}
}

// @Summary  Get commission
// @Param    id  path  string  true  "Commission ID (uuid)"
// @Success  200 {object} domain.Commission
// @Router   /commissions/{id} [get]
func handleGetCommission(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		cm, err := svcs.Commission.Get(c.Request.Context(), currentActor(c), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, cm)
	}
}

// @Summary  Get commission for booking
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Success  200 {object} domain.Commission
// @Router   /bookings/{id}/commission [get]
func handleGetBookingCommission(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		cm, err := svcs.Commission.ByBooking(c.Request.Context(), currentActor(c), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, cm)
	}
}

// @Summary  Dispute commission (host)
// @Param    id  path  string  true  "Commission ID (uuid)"
// @Param    req body  DisputeCommissionRequest true "payload"
// @Success  200 {object} domain.Commission
// @Failure  409 {object} ErrorResponse
// @Router   /commissions/{id}/dispute [post]
func handleDisputeCommission(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		var req DisputeCommissionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		cm, err := svcs.Commission.Dispute(c.Request.Context(), currentActor(c), id, req.Reason)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, cm)
	}
}

// @Summary  List host commissions
// @Param    id     path  int  true  "Host ID"
// @Param    limit  query int  false "page size"
// @Param    offset query int  false "offset"
// @Success  200 {array} domain.Commission
// @Router   /hosts/{id}/commissions [get]
func handleListHostCommissions(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		hostID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		limit := parseIntDefault(c.Query("limit"), 50)
		offset := parseIntDefault(c.Query("offset"), 0)

		list, err := svcs.Commission.ListForHost(
			c.Request.Context(),
			currentActor(c),
			hostID,
			limit,
			offset,
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// @Summary  Create activity
// @Param    req body  CreateActivityRequest true "payload"
// @Success  201 {object} CreateActivityResponse
// @Router   /admin/activities [post]
func handleCreateActivity(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateActivityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		a := &domain.Activity{
			HostID:     req.HostID,
			Title:      req.Title,
			PriceCents: req.PriceCents,
			Capacity:   req.Capacity,
			Active:     true,
			Featured:   req.Featured,
		}
		id, err := svcs.Catalog.CreateActivity(c.Request.Context(), currentActor(c), a)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, CreateActivityResponse{ActivityID: id})
	}
}

// @Summary  Complete elapsed bookings
// @Success  200 {object} SweepResponse
// @Router   /admin/bookings/sweep [post]
func handleSweepBookings(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := svcs.Booking.SweepDue(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, SweepResponse{Completed: n})
	}
}

// @Summary  Refund booking
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Param    req body  RefundBookingRequest true "payload"
// @Success  200 {object} domain.Booking
// @Failure  409 {object} ErrorResponse
// @Router   /admin/bookings/{id}/refund [post]
func handleRefundBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		var req RefundBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		b, err := svcs.Booking.Refund(c.Request.Context(), currentActor(c), id, req.Reason)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

// @Summary  Complete booking and settle commission
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Success  200 {object} domain.Booking
// @Failure  409 {object} ErrorResponse
// @Router   /admin/bookings/{id}/complete [post]
func handleCompleteBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		b, _, err := svcs.Booking.Complete(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

// @Summary  Settle commission for completed booking
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Success  201 {object} domain.Commission
// @Failure  409 {object} ErrorResponse "already settled / booking not completed"
// @Router   /admin/bookings/{id}/commission [post]
func handleSettleCommission(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		cm, err := svcs.Commission.ProcessForBooking(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, cm)
	}
}

// @Summary  Transition commission (process / payout / hold / release)
// @Param    id  path  string  true  "Commission ID (uuid)"
// @Success  200 {object} domain.Commission
// @Failure  409 {object} ErrorResponse
// @Router   /admin/commissions/{id}/{action} [post]
func handleCommissionTransition(svcs *service.Services, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		var (
			cm  *domain.Commission
			err error
		)
		ctx := c.Request.Context()
		actor := currentActor(c)

		switch action {
		case "process":
			cm, err = svcs.Commission.MarkProcessed(ctx, actor, id)
		case "payout":
			cm, err = svcs.Commission.MarkPaidOut(ctx, actor, id)
		case "hold":
			cm, err = svcs.Commission.Hold(ctx, actor, id)
		case "release":
			cm, err = svcs.Commission.ReleaseHold(ctx, actor, id)
		default:
			badRequest(c, "unknown action")
			return
		}
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, cm)
	}
}

// @Summary  Resolve commission dispute
// @Param    id  path  string  true  "Commission ID (uuid)"
// @Param    req body  ResolveDisputeRequest true "payload"
// @Success  200 {object} domain.Commission
// @Failure  409 {object} ErrorResponse
// @Router   /admin/commissions/{id}/resolve [post]
func handleResolveDispute(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		var req ResolveDisputeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		cm, err := svcs.Commission.ResolveDispute(
			c.Request.Context(),
			currentActor(c),
			id,
			domain.DisputeResolution(req.Resolution),
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, cm)
	}
}

// @Summary  Bulk commission payout
// @Param    req body  BulkPayoutRequest true "payload"
// @Success  200 {object} BulkPayoutResponse "partial failures reported per item"
// @Router   /admin/commissions/payouts [post]
func handleBulkPayout(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BulkPayoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		ids := make([]uuid.UUID, 0, len(req.CommissionIDs))
		for _, s := range req.CommissionIDs {
			id, err := uuid.Parse(s)
			if err != nil {
				badRequest(c, "invalid commission id: "+s)
				return
			}
			ids = append(ids, id)
		}

		res, err := svcs.Commission.ProcessBulkPayout(c.Request.Context(), currentActor(c), ids)
		if err != nil {
			respondErr(c, err)
			return
		}

		resp := BulkPayoutResponse{Paid: res.Paid, Failures: []PayoutFailure{}}
		for _, f := range res.Failures {
			resp.Failures = append(resp.Failures, PayoutFailure{
				CommissionID: f.CommissionID.String(),
				Error:        f.Err.Error(),
			})
		}
		c.JSON(http.StatusOK, resp)
	}
}

// --- Helpers ---

func parseInt64Param(c *gin.Context, name string) (int64, bool) {
	s := c.Param(name)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	v, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return v, true
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func isRateLimitedErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "rate limited")
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	switch {
	// catalog service
	case errors.Is(err, catalog.ErrActivityNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "activity not found"})
		return
	case errors.Is(err, catalog.ErrActivityConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "activity conflict"})
		return
	case errors.Is(err, catalog.ErrInvalidActivity):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid activity"})
		return
	case errors.Is(err, catalog.ErrNotHost):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "host role required"})
		return
	// booking service
	case errors.Is(err, booking.ErrActivityNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "activity not found"})
		return
	case errors.Is(err, booking.ErrActivityInactive):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "activity inactive"})
		return
	case errors.Is(err, booking.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "booking not found"})
		return
	case errors.Is(err, booking.ErrInvalidInterval):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid interval"})
		return
	case errors.Is(err, booking.ErrInvalidGuests):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid guest count"})
		return
	case errors.Is(err, booking.ErrIntervalConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "interval conflict"})
		return
	case errors.Is(err, booking.ErrCapacityExceeded):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "capacity exceeded"})
		return
	case errors.Is(err, booking.ErrNotHost):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "not the activity host"})
		return
	case errors.Is(err, booking.ErrNotAllowed):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "not allowed"})
		return
	case errors.Is(err, booking.ErrInvalidTransition):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "invalid booking state"})
		return
	case errors.Is(err, booking.ErrCodeExhausted):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "try again later"})
		return
	// commission service
	case errors.Is(err, commission.ErrCommissionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "commission not found"})
		return
	case errors.Is(err, commission.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "booking not found"})
		return
	case errors.Is(err, commission.ErrBookingNotCompleted):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "booking not completed"})
		return
	case errors.Is(err, commission.ErrDuplicateCommission):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "commission already settled"})
		return
	case errors.Is(err, commission.ErrInvalidTransition):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "invalid commission state"})
		return
	case errors.Is(err, commission.ErrInvalidResolution):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid resolution"})
		return
	case errors.Is(err, commission.ErrNotAllowed):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "not allowed"})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
