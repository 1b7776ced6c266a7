package main

import (
	"context"
	"fmt"
	"os"
	"thywilluche/internal/domain/order"
	userModel "thywilluche/internal/domain/user/model"
	userRepo "thywilluche/internal/domain/user/repository"
	userService "thywilluche/internal/domain/user/service"
	"thywilluche/internal/pkg/config"
	"thywilluche/internal/pkg/notify"
	"thywilluche/internal/pkg/registry"
	"thywilluche/pkg/database"
	"thywilluche/pkg/logger"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 运维命令，直接读写数据库，不经过 HTTP
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "siteadmin",
		Short:         "Site administration commands",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(
		roleCmd("promote", userModel.RoleAdmin),
		roleCmd("demote", userModel.RoleUser),
		expireOrdersCmd(),
	)
	return root
}

func openDB() (*gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	config.GlobalConfig = cfg
	if err := logger.Init(cfg.App.Env); err != nil {
		return nil, err
	}
	return database.Open(cfg.Database)
}

func roleCmd(use, role string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <email>",
		Short: fmt.Sprintf("Set a user's role to %s", role),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer logger.Sync()

			svc := userService.NewUserService(userRepo.NewUserRepository(db), nil, notify.Nop{})
			u, err := svc.SetRoleByEmail(cmd.Context(), args[0], role)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) is now %s\n", u.Email, u.ID, u.Role)
			return nil
		},
	}
}

func expireOrdersCmd() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "expire-orders",
		Short: "Cancel unpaid orders older than the TTL and restock their items",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if ttl <= 0 {
				ttl = order.UnpaidTTL(config.GlobalConfig.Shop)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			svc := order.NewService(&registry.ModuleContext{DB: db, Notifier: notify.Nop{}})
			n, err := svc.ExpireUnpaid(ctx, ttl)
			if err != nil {
				return err
			}
			logger.Log.Info("expired unpaid orders", zap.Int("count", n), zap.Duration("ttl", ttl))
			fmt.Fprintf(cmd.OutOrStdout(), "expired %d order(s)\n", n)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "unpaid order TTL (defaults to shop.unpaid_order_ttl)")
	return cmd
}
