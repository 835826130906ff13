package main

import (
	"os"

	"github.com/yigit/agencyportal/internal/pkg/logger"
	"github.com/yigit/agencyportal/internal/server"
)

// @title Agency Portal API
// @version 1.0
// @description Admin and agency portal for student applications, commissions and payments
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@agencyportal.local

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey SessionCookie
// @in cookie
// @name session
// @description Session token set by POST /auth/login

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description The same session token as 'Bearer <token>'

func main() {
	srv, err := server.NewServer()
	if err != nil {
		// setup functions already logged the details
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// blocks until shutdown signal
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
