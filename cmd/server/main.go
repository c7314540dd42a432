package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/habibb2r/SPEAKIFYR-Server/internal/config"
	"github.com/habibb2r/SPEAKIFYR-Server/internal/database"
	"github.com/habibb2r/SPEAKIFYR-Server/internal/handler"
	"github.com/habibb2r/SPEAKIFYR-Server/internal/payment"
	"github.com/habibb2r/SPEAKIFYR-Server/internal/queue"
	"github.com/habibb2r/SPEAKIFYR-Server/internal/repository"
	"github.com/habibb2r/SPEAKIFYR-Server/internal/router"
	"github.com/habibb2r/SPEAKIFYR-Server/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: caching and rate limiting degrade to pass-through.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; cache and rate limiting disabled")
	}

	// Repositories.
	classRepo := repository.NewClassRepo(db)
	cartRepo := repository.NewCartRepo(db)
	enrollRepo := repository.NewEnrollmentRepo(db)
	userRepo := repository.NewUserRepo(db)
	instructorRepo := repository.NewInstructorRepo(db)

	// Services.
	runner := &service.DBTxRunner{DB: db}
	cartSvc := service.NewCartService(runner, classRepo, cartRepo)
	enrollSvc := service.NewEnrollmentService(runner, classRepo, cartRepo, enrollRepo, service.NewCodeAllocator())
	gateway := payment.NewClient(cfg.StripeSecret, cfg.Currency)

	// Handlers.
	h := router.Handlers{
		Auth:    handler.NewAuthHandler(cfg, userRepo),
		Public:  handler.NewPublicHandler(classRepo, instructorRepo),
		Cart:    handler.NewCartHandler(cartSvc, cartRepo, classRepo),
		Enroll:  handler.NewEnrollHandler(enrollSvc, enrollRepo, classRepo),
		Payment: handler.NewPaymentHandler(gateway),
		Admin:   handler.NewAdminHandler(userRepo, classRepo),
	}

	e := echo.New()
	router.Register(e, cfg, h, rdb)

	// Background consumer for the enrollment.confirmed queue.  It runs a
	// reconnect loop forever; the API does not depend on it.
	go func() {
		if err := queue.StartEnrollmentConsumer(); err != nil {
			log.Printf("enrollment consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
