package commands

import (
	"mini_shop/internal/server"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create tables, the admin account and demo products, then exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		// 模块初始化时完成建表与数据初始化
		rt.cfg.Database.AutoMigrate = true
		rt.cfg.Shop.SeedProducts = true
		if _, err := server.New(rt.cfg, rt.log, rt.db, server.Options{Cache: rt.cache}); err != nil {
			return err
		}

		rt.log.Info("seed completed")
		return nil
	},
}
