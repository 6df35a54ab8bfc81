package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	gconfig "github.com/goliatone/go-config/config"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-persistence-bun"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	backoffice "github.com/proveeduria/backoffice"
	"github.com/proveeduria/backoffice/cmd/server/config"
	"github.com/proveeduria/backoffice/notify"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type App struct {
	config   *gconfig.Container[*config.BaseConfig]
	bunDB    *bun.DB
	repo     backoffice.RepositoryManager
	registry *backoffice.Registry
	guard    *backoffice.Guard
	sweeper  *backoffice.Sweeper
	auther   *backoffice.RouteAuthenticator
	srv      router.Server[*fiber.App]
	logger   *glog.BaseLogger
}

func (a *App) Config() *config.BaseConfig {
	return a.config.Raw()
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {

	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("backoffice"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg := gconfig.New(&config.BaseConfig{}).
		WithLogger(lgr.GetLogger("config"))

	ctx := context.Background()
	if err := cfg.Load(ctx); err != nil {
		panic(err)
	}

	app := &App{
		config: cfg,
		logger: lgr,
	}

	if app.Config().GetApp().GetDebug() {
		fmt.Println(print.MaybePrettyJSON(cfg.Raw()))
	}

	if err := WithPersistence(ctx, app); err != nil {
		panic(err)
	}

	if err := WithHTTPServer(ctx, app); err != nil {
		panic(err)
	}

	if err := WithSessions(ctx, app); err != nil {
		panic(err)
	}

	RegisterRoutes(app)

	app.sweeper.Start()

	app.srv.Serve(app.Config().GetApp().GetAddress())

	WaitExitSignal()

	app.sweeper.Stop()
}

func WithPersistence(ctx context.Context, app *App) error {
	db, err := sql.Open(sqliteshim.ShimName, app.Config().GetPersistence().GetDSN())
	if err != nil {
		log.Fatal(err)
		return err
	}

	persistence.RegisterModel((*backoffice.User)(nil))
	persistence.RegisterModel((*backoffice.Solicitud)(nil))

	cfg := app.Config().GetPersistence()
	dialect := sqlitedialect.New()
	client, err := persistence.New(cfg, db, dialect)
	if err != nil {
		log.Fatal(err)
		return err
	}

	client.SetLogger(app.GetLogger("persistence"))

	migrationsFS, err := fs.Sub(backoffice.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return err
	}

	client.RegisterDialectMigrations(
		migrationsFS,
		persistence.WithDialectSourceLabel("data/sql/migrations"),
		persistence.WithValidationTargets("postgres", "sqlite"),
	)

	if err := client.ValidateDialects(ctx); err != nil {
		return err
	}

	if err := client.Migrate(ctx); err != nil {
		return err
	}

	app.bunDB = client.DB()
	app.repo = backoffice.NewRepositoryManager(client.DB())

	return app.repo.Validate()
}

func WithHTTPServer(ctx context.Context, app *App) error {
	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			AppName:       "proveeduria-backoffice",
			UnescapePath:  true,
			StrictRouting: false,
		}))
	})

	srv.Router().WithLogger(app.GetLogger("router"))

	app.srv = srv

	return nil
}

func WithSessions(ctx context.Context, app *App) error {
	cfg := app.Config().GetAuth()

	app.registry = backoffice.NewRegistry()

	audit := backoffice.NewLoggerActivitySink(app.GetLogger("auth:audit"))

	app.guard = backoffice.NewGuard(app.registry, cfg).
		WithLogger(app.GetLogger("auth:guard")).
		WithActivitySink(audit)

	app.sweeper = backoffice.NewSweeper(
		app.registry,
		cfg.GetIdleTimeout(),
		cfg.GetSweepInterval(),
	).WithLogger(app.GetLogger("auth:sweeper"))

	provider := backoffice.NewUserProvider(app.repo.Users()).
		WithLogger(app.GetLogger("auth:prv"))

	authenticator := backoffice.NewAuthenticator(provider, app.registry).
		WithLogger(app.GetLogger("auth:authn")).
		WithActivitySink(audit)

	auther, err := backoffice.NewHTTPAuthenticator(authenticator, app.guard, cfg)
	if err != nil {
		return err
	}

	app.auther = auther.WithLogger(app.GetLogger("auth:http"))

	return nil
}

func RegisterRoutes(app *App) {
	root := app.srv.Router().Group("/")
	cfg := app.Config()

	backoffice.RegisterAuthRoutes(root,
		backoffice.WithAuthRepo(app.repo),
		backoffice.WithAuthMiddleware(app.auther),
		backoffice.WithAuthLogger(app.GetLogger("auth:ctrl")),
		backoffice.WithAuthInit(cfg.GetAuth().GetAllowInit()),
		backoffice.WithAuthHashCost(cfg.GetAuth().GetHashCost()),
	)

	backoffice.RegisterUserRoutes(root,
		backoffice.WithUsersRepo(app.repo),
		backoffice.WithUsersMiddleware(app.auther),
		backoffice.WithUsersLogger(app.GetLogger("users:ctrl")),
		backoffice.WithUsersHashCost(cfg.GetAuth().GetHashCost()),
	)

	backoffice.RegisterDashboardRoutes(root,
		backoffice.WithDashboardRepo(app.repo),
		backoffice.WithDashboardMiddleware(app.auther),
		backoffice.WithDashboardLogger(app.GetLogger("dashboard:ctrl")),
	)

	sender := notify.NewSMTPSender(cfg.GetSMTP())
	notify.RegisterRoutes(root,
		app.auther.ProtectedRoute(),
		notify.WithHandler(notify.NewHandler(sender)),
		notify.WithLogger(app.GetLogger("notify:ctrl")),
	)
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
