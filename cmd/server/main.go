package main

import (
	"os"
	"time"

	"github.com/akorolkov/postline/app_setting"
	"github.com/akorolkov/postline/cache"
	"github.com/akorolkov/postline/imagestore"
	"github.com/akorolkov/postline/server"
	"github.com/akorolkov/postline/store"
	"github.com/akorolkov/postline/utils"
	"github.com/akorolkov/postline/utils/dotenv"
	. "github.com/akorolkov/postline/utils/flag"
	. "github.com/akorolkov/postline/utils/log"
)

func main() {
	ParseFlags()

	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}

	setting := app_setting.DefaultServerAppSetting()
	if _, err := os.Stat(*AppSettingPath); err == nil {
		setting = app_setting.ParseServerAppSetting(*AppSettingPath)
	} else {
		Log.Info("no app setting file at ", *AppSettingPath, ", using defaults")
	}

	db, err := utils.GetDBConnection()
	if err != nil {
		Log.Fatal("fail to connect to DB: ", err)
	}
	utils.DatabaseSetupAndMigration(db)
	Log.Info("database migrations completed")

	var images imagestore.ImageStore
	if setting.USE_S3_IMAGE_STORE {
		s3store, err := imagestore.NewS3ImageStore(setting.S3_REGION, setting.S3_BUCKET, setting.S3_URL_PREFIX)
		if err != nil {
			Log.Fatal("fail to create S3 image store: ", err)
		}
		images = s3store
	} else {
		images = imagestore.NewLocalImageStore(setting.MEDIA_ROOT, "/media/")
	}

	ttl := time.Duration(setting.PAGE_CACHE_TTL_SECOND) * time.Second
	var pages cache.PageCache
	if os.Getenv("REDIS_HOST") != "" {
		pages = cache.NewRedisCache(cache.GetRedisClient(), ttl)
	} else {
		pages = cache.NewMemoryCache(ttl)
	}

	srv := server.New(store.NewGormStore(db), images, pages, setting)
	router := srv.Router("templates/*.html")

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	Log.Info("web server starts up on :", port)
	if err := router.Run(":" + port); err != nil {
		Log.Fatal("server failed to start: ", err)
	}
}
