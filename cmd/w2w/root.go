package main

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/user/where2watch/internal/config"
	"github.com/user/where2watch/internal/logger"
	"github.com/user/where2watch/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type commandContext struct {
	verbose bool

	once   sync.Once
	config *config.Config
	log    *zap.Logger

	dbOnce sync.Once
	db     *gorm.DB
	dbErr  error
}

func (c *commandContext) init() {
	c.once.Do(func() {
		_ = godotenv.Load()
		c.config = config.Load()
		level := "warn"
		if c.verbose {
			level = "debug"
		}
		l, err := logger.New(c.config.Env, level)
		if err != nil {
			l = zap.NewNop()
		}
		c.log = l
	})
}

func (c *commandContext) cfg() *config.Config {
	c.init()
	return c.config
}

func (c *commandContext) logger() *zap.Logger {
	c.init()
	return c.log
}

// repos 首次调用时连接数据库并建表
func (c *commandContext) repos() (*repository.Repositories, error) {
	c.dbOnce.Do(func() {
		cfg := c.cfg()
		db, err := repository.InitDB(cfg.DBDriver, cfg.DatabaseURL)
		if err != nil {
			c.dbErr = err
			return
		}
		if err := repository.AutoMigrate(db); err != nil {
			c.dbErr = err
			return
		}
		c.db = db
	})
	if c.dbErr != nil {
		return nil, c.dbErr
	}
	return repository.NewRepositories(c.db, c.logger()), nil
}

func (c *commandContext) close() {
	if c.db == nil {
		return
	}
	if sqlDB, err := c.db.DB(); err == nil {
		sqlDB.Close()
	}
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "w2w",
		Short:         "Where 2 Watch catalog admin CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&ctx.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newImportCommand(ctx))
	rootCmd.AddCommand(newMigrateCommand(ctx))
	rootCmd.AddCommand(newCategoriesCommand(ctx))

	return rootCmd
}
