package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/The127/ioc"
	"github.com/avast/retry-go"
	"github.com/google/uuid"
	"github.com/podhaven/podhaven/internal/args"
	"github.com/podhaven/podhaven/internal/config"
	db "github.com/podhaven/podhaven/internal/database"
	"github.com/podhaven/podhaven/internal/logging"
	"github.com/podhaven/podhaven/internal/middlewares"
	"github.com/podhaven/podhaven/internal/repositories"
	"github.com/podhaven/podhaven/internal/server"
	"github.com/podhaven/podhaven/internal/services/clock"
	"github.com/podhaven/podhaven/internal/setup"
	"github.com/podhaven/podhaven/internal/utils"
)

func main() {
	args.Init()
	logging.Init()
	config.Init()

	dc := ioc.NewDependencyCollection()

	ioc.RegisterSingleton(dc, func(dp *ioc.DependencyProvider) clock.Service {
		return clock.NewClockService()
	})

	database := setup.Database(dc, config.C.Database)

	err := retry.Do(
		func() error {
			return database.Migrate()
		},
		retry.Attempts(5),
		retry.Delay(time.Second*5),
		retry.DelayType(retry.FixedDelay),
		retry.OnRetry(func(n uint, err error) {
			logging.Logger.Warnf("failed to migrate database: %s, retrying in 5 seconds", err)
		}),
	)
	if err != nil {
		logging.Logger.Panicf("failed to migrate database: %s", err)
	}

	setup.Kv(dc, config.C.Kv)
	setup.Mediator(dc)
	setup.Audio(dc, config.C.AudioStore)
	setup.Comments(dc, config.C.CommentStore)

	dp := dc.BuildProvider()

	var hostMediaApi bool
	switch config.C.AudioStore.Mode {
	case config.AudioStoreModeInMemory:
		hostMediaApi = true

	case config.AudioStoreModeDirectory:
		hostMediaApi = true

	case config.AudioStoreModeS3:
		hostMediaApi = false

	default:
		panic(fmt.Errorf("unsupported audio store mode: %s", config.C.AudioStore.Mode))
	}

	initApp(dp)

	server.Serve(dp, config.C.Server, hostMediaApi)
	waitForExit()
}

func waitForExit() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
}

// initApp seeds the first admin account from config. It only runs when
// the configured admin email is not known yet, so restarts are no-ops.
func initApp(dp *ioc.DependencyProvider) {
	if config.C.InitialAdmin.Email == "" {
		return
	}

	scope := dp.NewScope()
	defer utils.PanicOnError(scope.Close, "closing scope")

	ctx := middlewares.ContextWithScope(context.Background(), scope)

	dbContext := ioc.GetDependency[db.Context](scope)

	existing, err := dbContext.Users().First(ctx, repositories.NewUserFilter().ByEmail(config.C.InitialAdmin.Email))
	if err != nil {
		logging.Logger.Panicf("failed to get initial admin: %s", err)
	}
	if existing != nil {
		// app already initialized
		return
	}

	admin := repositories.NewUser(uuid.New(), config.C.InitialAdmin.FullName, config.C.InitialAdmin.Email)
	dbContext.Users().Insert(admin)

	err = dbContext.SaveChanges(ctx)
	if err != nil {
		logging.Logger.Panicf("failed to save changes: %s", err)
	}

	logging.Logger.Infof("initial admin created: %s", config.C.InitialAdmin.Email)
}
