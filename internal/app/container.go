package app

import (
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/gradebook/internal/infrastructure/config"
	"github.com/eslsoft/gradebook/internal/infrastructure/database"
	"github.com/eslsoft/gradebook/internal/infrastructure/server"
)

// Container aggregates the application dependencies produced by Wire.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger
	DB     *database.DB
	Server *server.Server
}
