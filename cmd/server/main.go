package main // Entry point package

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/emergid/emergency-medical-id/internal/config"
	"github.com/emergid/emergency-medical-id/internal/database"
	"github.com/emergid/emergency-medical-id/internal/handler"
	"github.com/emergid/emergency-medical-id/internal/queue"
	"github.com/emergid/emergency-medical-id/internal/repository"
	"github.com/emergid/emergency-medical-id/internal/router"
)

func main() {
	// .env is optional; container deployments set real environment variables.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: without it the service runs with rate limiting and
	// token revocation disabled.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and token revocation disabled")
	}

	users := repository.NewUserRepo(db)
	patients := repository.NewPatientRepo(db)
	accessLogs := repository.NewAccessLogRepo(db)

	publishEvents := os.Getenv("DISABLE_QUEUE") == ""
	if publishEvents {
		// Background consumer mirrors committed audit entries into
		// logs/access.log. It reconnects forever on broker failure.
		go func() {
			if err := queue.StartAccessConsumer(); err != nil {
				log.Printf("access consumer stopped: %v", err)
			}
		}()
	}

	authH := handler.NewAuthHandler(cfg, users, rdb)
	patientH := handler.NewPatientHandler(patients, accessLogs)
	doctorH := handler.NewDoctorHandler(patients, accessLogs, publishEvents)

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, authH, users, rdb, config.LoadRateLimitConfig())
	router.RegisterPatient(e, patientH, users, rdb, cfg.JWTSecret)
	router.RegisterDoctor(e, doctorH, users, rdb, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
