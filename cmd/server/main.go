package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // 确保在精简镜像中也能识别时区

	"github.com/joho/godotenv"
	"github.com/user/where2watch/internal/config"
	"github.com/user/where2watch/internal/handler"
	"github.com/user/where2watch/internal/logger"
	"github.com/user/where2watch/internal/repository"
	"github.com/user/where2watch/internal/router"
	"github.com/user/where2watch/internal/service"
	"go.uber.org/zap"
)

func main() {
	// 加载环境变量
	envErr := godotenv.Load()

	// 加载配置
	cfg := config.Load()

	log := logger.MustNew(cfg.Env, cfg.LogLevel)
	defer log.Sync()

	if envErr != nil {
		log.Info("未找到 .env 文件，使用系统环境变量")
	}
	if cfg.IsProduction() && cfg.UsesDefaultSecret() {
		log.Warn("生产环境仍在使用默认 APP_SECRET")
	}

	// 初始化数据库
	db, err := repository.InitDB(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("数据库连接失败", zap.Error(err))
	}
	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 初始化仓库与服务
	repos := repository.NewRepositories(db, log)
	tmdb := service.NewTMDBClient(cfg, log)
	if !tmdb.Configured() {
		log.Warn("未配置 TMDB_API_KEY / TMDB_TOKEN，导入将返回模拟数据")
	}
	importer := service.NewImportService(tmdb, cfg.TMDBTimeout, log)

	h, err := handler.NewHandler(repos, cfg, importer, log)
	if err != nil {
		log.Fatal("初始化 Handler 失败", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 启动定时清理任务
	cleanupSvc := service.NewCleanupService(repos.ContentView, importer, cfg.ViewRetentionDays, log)
	cleanupSvc.Start(ctx)

	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router.NewEngine(h, log),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// 在 goroutine 中启动服务器，这样我们就可以监听信号
	go func() {
		log.Info("服务器启动", zap.String("addr", "http://localhost:"+cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("服务器启动失败", zap.Error(err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("正在关闭服务器...")

	// 5 秒超时上下文用于关闭过程
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("服务器强制关闭", zap.Error(err))
	}

	log.Info("服务器已退出")
}
