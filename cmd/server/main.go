package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/uniresto/meal-reservation/internal/config"
	"github.com/uniresto/meal-reservation/internal/database"
	"github.com/uniresto/meal-reservation/internal/handler"
	"github.com/uniresto/meal-reservation/internal/queue"
	"github.com/uniresto/meal-reservation/internal/repository"
	"github.com/uniresto/meal-reservation/internal/router"
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// nil when Redis is unreachable or unconfigured; the rate limiter
	// and response cache degrade to pass-through in that case.
	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	menus := repository.NewMenuRepo(db)
	reservations := repository.NewReservationRepo(db)
	tickets := repository.NewTicketRepo(db)
	reports := repository.NewReportRepo(db)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	publicH := handler.NewPublicHandler(menus)
	studentH := handler.NewStudentHandler(menus, reservations, tickets)
	staffH := handler.NewStaffHandler(menus, reservations, tickets)
	adminH := handler.NewAdminHandler(cfg, users, reservations, reports)

	rlCfg := config.LoadRateLimitConfig()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret, rlCfg, rdb)
	router.RegisterPublic(e, publicH, config.LoadCacheConfig(), rdb)
	router.RegisterStudent(e, studentH, cfg.JWTSecret, rlCfg, rdb)
	router.RegisterStaff(e, staffH, cfg.JWTSecret)
	router.RegisterAdmin(e, adminH, cfg.JWTSecret)

	// Audit consumer runs for the life of the process and reconnects on
	// its own; a missing broker must not keep the API from serving.
	go func() {
		if err := queue.StartAuditConsumer(); err != nil {
			log.Printf("audit consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
