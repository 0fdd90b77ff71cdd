// Package cli 实现运维命令行 tigerctl：创建用户、分配课程、查看用户列表。
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"tigersai/internal/config"
	"tigersai/internal/model"
	"tigersai/internal/repository"
	"tigersai/internal/service"
	"tigersai/pkg/database"
	"tigersai/pkg/log"
)

// OpenFunc 根据配置文件路径构造 AdminService。
type OpenFunc func(configPath string) (service.AdminService, error)

// operator 是命令行调用 ListAllUsers 时使用的管理员身份。
var operator = &model.SessionContext{ID: "tigerctl", Username: "tigerctl", Role: model.RoleAdmin}

// OpenDatabase 读取配置、连接数据库并迁移表结构。
func OpenDatabase(configPath string) (service.AdminService, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log.Init(cfg.Log.Level, "console", "")
	db, err := database.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return service.NewAdminService(repository.NewUserRepository(db)), nil
}

// NewRootCmd 创建 tigerctl 的根命令。
func NewRootCmd(open OpenFunc) *cobra.Command {
	var configPath string
	var admin service.AdminService

	root := &cobra.Command{
		Use:          "tigerctl",
		Short:        "TigersAI operator tool",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			svc, err := open(configPath)
			if err != nil {
				return err
			}
			admin = svc
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "./configs/config.yaml", "path to config file")

	adminFn := func() service.AdminService { return admin }
	root.AddCommand(newUserCmd(adminFn), newCoursesCmd(adminFn))
	return root
}
