package main

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"rollcall/internal/auth"
	"rollcall/internal/clock"
	"rollcall/internal/config"
	"rollcall/internal/devicelog"
	"rollcall/internal/directory"
	"rollcall/internal/httpmiddleware"
	"rollcall/internal/ledger"
	"rollcall/internal/metrics"
	"rollcall/internal/qrencode"
	"rollcall/internal/session"
	"rollcall/internal/store"
	"rollcall/internal/timetable"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system env")
	}
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	db, err := store.NewDB(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	var redisClient *store.Redis
	if cfg.RedisEnabled {
		redisClient = store.NewRedis(cfg.RedisAddr)
	}

	var sightings devicelog.Queue
	if cfg.QueueBackend == "memory" || redisClient == nil {
		sightings = devicelog.NewInMemory(64)
	} else {
		sightings = devicelog.NewRedisQueue(redisClient.Client, "rollcall:sightings")
	}

	clk := clock.System{}
	dir := directory.NewSQL(db.Client)

	slots := timetable.NewService(timetable.NewSQLRepository(db.Client), dir, clk)
	attendance := ledger.NewService(ledger.NewSQLRepository(db.Client))

	var cache *session.Cache
	if redisClient != nil {
		cache = session.NewCache(redisClient.Client)
	}
	sessions := session.NewService(session.NewSQLRepository(db.Client), cache, slots, dir, attendance, clk, cfg.SessionWindow)

	// Daily retention pass over the device sighting side table. Sessions
	// and attendance records are kept forever.
	recorder := devicelog.NewRecorder(db.Client)
	jobs := cron.New()
	jobs.AddFunc("@daily", func() {
		n, err := recorder.PruneBefore(context.Background(), time.Now().Add(-cfg.SightingMaxAge))
		if err != nil {
			log.Printf("sighting prune failed: %v", err)
			return
		}
		log.Printf("pruned %d stale device sightings", n)
	})
	jobs.Start()
	defer jobs.Stop()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:          24 * time.Hour,
	}))
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db.Client.PingContext(c.Request.Context()) == nil
		status := http.StatusOK
		if !dbHealthy || (cfg.RedisEnabled && !redisHealthy) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	// Dev-only token mint so the API can be exercised without the campus
	// identity provider.
	if gin.Mode() != gin.ReleaseMode {
		r.POST("/v1/dev/tokens", func(c *gin.Context) {
			var req struct {
				Subject string `json:"subject" binding:"required"`
				Role    string `json:"role" binding:"required"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			token, exp, err := auth.Issue(req.Subject, req.Role, cfg.JWTIssuer, cfg.JWTSigningKey, cfg.AccessTTL)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
				return
			}
			c.JSON(http.StatusCreated, gin.H{"access_token": token, "expires_at": exp.Unix()})
		})
	}

	instructors := r.Group("/v1", auth.Require(cfg.JWTSigningKey, cfg.JWTIssuer, auth.RoleInstructor))
	students := r.Group("/v1", auth.Require(cfg.JWTSigningKey, cfg.JWTIssuer, auth.RoleStudent))
	anyRole := r.Group("/v1", auth.Require(cfg.JWTSigningKey, cfg.JWTIssuer))

	instructors.POST("/slots", func(c *gin.Context) {
		var req struct {
			CourseID   string `json:"course_id" binding:"required"`
			DivisionID string `json:"division_id" binding:"required"`
			Day        int    `json:"day" binding:"required"`
			Start      string `json:"start" binding:"required"`
			End        string `json:"end" binding:"required"`
			RoomID     string `json:"room_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		start, err := timetable.ParseTimeOfDay(req.Start)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "start"})
			return
		}
		end, err := timetable.ParseTimeOfDay(req.End)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "end"})
			return
		}

		claims := auth.ClaimsFrom(c)
		id, err := slots.ProposeSlot(c.Request.Context(), timetable.Slot{
			CourseID:     req.CourseID,
			DivisionID:   req.DivisionID,
			InstructorID: claims.Subject,
			Day:          timetable.Day(req.Day),
			Start:        start,
			End:          end,
			RoomID:       req.RoomID,
		})
		if err != nil {
			writeSlotError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"slot_id": id})
	})

	anyRole.DELETE("/slots/:id", func(c *gin.Context) {
		claims := auth.ClaimsFrom(c)
		err := slots.DeleteSlot(c.Request.Context(), c.Param("id"), claims.Subject, claims.IsAdmin())
		switch {
		case errors.Is(err, timetable.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "slot not found"})
		case errors.Is(err, timetable.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "not your slot"})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		default:
			c.Status(http.StatusNoContent)
		}
	})

	instructors.GET("/slots/active", func(c *gin.Context) {
		claims := auth.ClaimsFrom(c)
		active, err := slots.ActiveSlotsFor(c.Request.Context(), claims.Subject, clk.Now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"slots": active})
	})

	instructors.POST("/sessions", func(c *gin.Context) {
		var req struct {
			CourseID string `json:"course_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		claims := auth.ClaimsFrom(c)
		view, err := sessions.Mint(c.Request.Context(), req.CourseID, claims.Subject)
		if errors.Is(err, session.ErrNotCurrentlyScheduled) {
			c.JSON(http.StatusConflict, gin.H{"error": "you are not teaching this course right now"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		metrics.SessionsMinted.Inc()
		c.JSON(http.StatusCreated, view)
	})

	instructors.GET("/sessions/:token", func(c *gin.Context) {
		claims := auth.ClaimsFrom(c)
		view, err := sessions.Display(c.Request.Context(), session.Token(c.Param("token")), claims.Subject, claims.IsAdmin())
		if err != nil {
			writeDisplayError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	})

	instructors.GET("/sessions/:token/qr.png", func(c *gin.Context) {
		claims := auth.ClaimsFrom(c)
		view, err := sessions.Display(c.Request.Context(), session.Token(c.Param("token")), claims.Subject, claims.IsAdmin())
		if err != nil {
			writeDisplayError(c, err)
			return
		}
		size, _ := strconv.Atoi(c.Query("size"))
		png, err := qrencode.PNG(string(view.Token), size)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "qr encode failed"})
			return
		}
		c.Data(http.StatusOK, "image/png", png)
	})

	students.POST("/scans", func(c *gin.Context) {
		var req struct {
			Token    string `json:"token" binding:"required"`
			DeviceID string `json:"device_id"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		claims := auth.ClaimsFrom(c)
		recordID, err := sessions.Redeem(c.Request.Context(), session.Token(req.Token), claims.Subject)
		if err != nil {
			writeRedeemError(c, err)
			return
		}
		metrics.Redemptions.WithLabelValues("ok").Inc()

		if req.DeviceID != "" {
			sighting := devicelog.Sighting{StudentID: claims.Subject, DeviceID: req.DeviceID, SeenAt: clk.Now()}
			if err := sightings.Publish(c.Request.Context(), sighting); err != nil {
				log.Printf("sighting publish failed: %v", err)
			}
		}

		c.JSON(http.StatusCreated, gin.H{"record_id": recordID})
	})

	anyRole.GET("/students/:id/summary", func(c *gin.Context) {
		claims := auth.ClaimsFrom(c)
		studentID := c.Param("id")
		if claims.Role == auth.RoleStudent && claims.Subject != studentID {
			c.JSON(http.StatusForbidden, gin.H{"error": "not your summary"})
			return
		}
		summary, err := attendance.SummaryFor(c.Request.Context(), studentID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"summary": summary})
	})

	instructors.GET("/courses/:id/report", func(c *gin.Context) {
		report, err := attendance.ReportFor(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"report": report})
	})

	instructors.GET("/courses/:id/report.xlsx", func(c *gin.Context) {
		courseID := c.Param("id")
		report, err := attendance.ReportFor(c.Request.Context(), courseID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		// Build the whole workbook before committing the status so an
		// encode failure cannot ship a truncated file with a 200.
		var buf bytes.Buffer
		if err := ledger.WriteReportXLSX(&buf, courseID, report); err != nil {
			log.Printf("xlsx export failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "report export failed"})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="attendance-`+courseID+`.xlsx"`)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced shutdown: %v", err)
	}
	log.Println("server exited")
	return nil
}

func writeSlotError(c *gin.Context, err error) {
	var vErr *timetable.ValidationError
	var rErr *timetable.ReferentialError
	var cErr *timetable.ConflictError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error(), "field": vErr.Field})
	case errors.As(err, &rErr):
		c.JSON(http.StatusNotFound, gin.H{"error": rErr.Error(), "kind": rErr.Kind, "id": rErr.ID})
	case errors.As(err, &cErr):
		metrics.SlotConflicts.WithLabelValues(string(cErr.Kind)).Inc()
		c.JSON(http.StatusConflict, gin.H{"error": cErr.Error(), "kind": string(cErr.Kind), "existing_slot_id": cErr.ExistingSlotID})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func writeRedeemError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrInvalidOrExpired):
		metrics.Redemptions.WithLabelValues("expired").Inc()
		c.JSON(http.StatusGone, gin.H{"error": "code invalid or expired, rescan a fresh one"})
	case errors.Is(err, session.ErrNotEnrolled):
		metrics.Redemptions.WithLabelValues("not_enrolled").Inc()
		c.JSON(http.StatusForbidden, gin.H{"error": "you are not enrolled in this course"})
	case errors.Is(err, session.ErrAlreadyMarked):
		metrics.Redemptions.WithLabelValues("already_marked").Inc()
		c.JSON(http.StatusConflict, gin.H{"error": "attendance already marked"})
	default:
		metrics.Redemptions.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func writeDisplayError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	case errors.Is(err, session.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "not your session"})
	case errors.Is(err, session.ErrExpired):
		c.JSON(http.StatusGone, gin.H{"error": "session expired"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}
