package main

import (
	"flag"
	"os"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/file"
	"github.com/go-kratos/kratos/v2/log"

	"knowledgebase/internal/server"
	"knowledgebase/internal/service"
)

var (
	// Name is the name of the compiled software.
	Name = "kb-server"
	// Version is the version of the compiled software.
	Version = "v1.0.0"

	flagconf string
)

func init() {
	flag.StringVar(&flagconf, "conf", "configs/kb-server.yaml", "config path, eg: -conf config.yaml")
}

func newApp(logger log.Logger, hs *server.HTTPServer) *kratos.App {
	return kratos.New(
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Logger(logger),
		kratos.Server(hs),
	)
}

func newServices(
	authSvc *service.AuthService,
	account *service.AccountService,
	content *service.ContentService,
	comments *service.CommentService,
	taxonomy *service.TaxonomyService,
	announcements *service.AnnouncementService,
	notifications *service.NotificationService,
	site *service.SiteService,
	admin *service.AdminService,
) server.Services {
	return server.Services{
		Auth:          authSvc,
		Account:       account,
		Content:       content,
		Comments:      comments,
		Taxonomy:      taxonomy,
		Announcements: announcements,
		Notifications: notifications,
		Site:          site,
		Admin:         admin,
	}
}

func main() {
	flag.Parse()

	logger := log.With(log.NewStdLogger(os.Stdout),
		"service.name", Name,
		"service.version", Version,
		"ts", log.DefaultTimestamp,
		"caller", log.DefaultCaller,
	)

	c := config.New(
		config.WithSource(
			file.NewSource(flagconf),
		),
	)
	defer c.Close()

	if err := c.Load(); err != nil {
		panic(err)
	}

	var conf Config
	if err := c.Scan(&conf); err != nil {
		panic(err)
	}

	app, cleanup, err := wireApp(&conf, logger)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	helper := log.NewHelper(logger)
	helper.Infof("starting %s version %s on %s", Name, Version, conf.Server.Addr)

	if err := app.Run(); err != nil {
		helper.Errorf("failed to run app: %v", err)
		panic(err)
	}
}
