//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"

	"knowledgebase/internal/biz"
	"knowledgebase/internal/data"
	"knowledgebase/internal/domain"
	"knowledgebase/internal/infra/storage"
	"knowledgebase/internal/server"
	"knowledgebase/internal/service"
	"knowledgebase/pkg/cache"
)

// wireApp init kratos application.
func wireApp(c *Config, logger log.Logger) (*kratos.App, func(), error) {
	panic(wire.Build(
		// Config conversion providers
		provideServerConfig,
		provideDataConfig,
		provideRedisConfig,
		provideStorageConfig,
		provideJWTManager,

		// Infrastructure layer
		cache.NewRedisCache,
		wire.Bind(new(cache.Cache), new(*cache.RedisCache)),
		storage.NewMinIOStorage,
		wire.Bind(new(biz.AvatarStorage), new(*storage.MinIOStorage)),

		// Data layer
		data.NewDB,
		data.NewData,
		wire.Bind(new(domain.Transactor), new(*data.Data)),
		data.NewPostRepo,
		data.NewDocumentRepo,
		data.NewTagRepo,
		data.NewCategoryRepo,
		data.NewCommentRepo,
		data.NewAnnouncementRepo,
		data.NewNotificationRepo,
		data.NewUserRepo,

		// Business logic layer
		biz.NewTagUsecase,
		biz.NewCategoryUsecase,
		biz.NewNotificationUsecase,
		biz.NewRecentViewUsecase,
		biz.NewContentUsecase,
		biz.NewCommentUsecase,
		biz.NewAnnouncementUsecase,
		biz.NewSearchUsecase,
		biz.NewAdminUsecase,
		biz.NewUserUsecase,

		// Service layer
		service.NewAuthService,
		service.NewAccountService,
		service.NewContentService,
		service.NewCommentService,
		service.NewTaxonomyService,
		service.NewAnnouncementService,
		service.NewNotificationService,
		service.NewSiteService,
		service.NewAdminService,
		newServices,

		// Server layer
		server.NewHTTPServer,

		// App
		newApp,
	))
}
