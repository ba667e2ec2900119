//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/gradebook/internal/adapter/connectrpc"
	"github.com/eslsoft/gradebook/internal/adapter/repository"
	"github.com/eslsoft/gradebook/internal/infrastructure/config"
	"github.com/eslsoft/gradebook/internal/infrastructure/database"
	"github.com/eslsoft/gradebook/internal/infrastructure/server"
	"github.com/eslsoft/gradebook/internal/usecase"
)

var configSet = wire.NewSet(
	config.Load,
)

var databaseSet = wire.NewSet(
	database.Open,
)

var repositorySet = wire.NewSet(
	repository.NewCourseRepository,
)

var usecaseSet = wire.NewSet(
	usecase.NewCourseService,
)

var serviceSet = wire.NewSet(
	connectrpc.NewCourseServiceServer,
)

var serverSet = wire.NewSet(
	server.NewLogger,
	wire.Bind(new(logrus.FieldLogger), new(*logrus.Logger)),
	server.NewServer,
)

// Initialize builds the application container using Wire.
func Initialize() (*Container, func(), error) {
	wire.Build(
		configSet,
		databaseSet,
		repositorySet,
		usecaseSet,
		serviceSet,
		serverSet,
		wire.Struct(new(Container), "Config", "Logger", "DB", "Server"),
	)
	return nil, nil, nil
}
