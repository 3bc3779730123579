package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xiebiao/reading-tracker/internal/infrastructure/config"
	"github.com/xiebiao/reading-tracker/pkg/jwt"
)

var tokenOpts struct {
	userID string
	email  string
	name   string
}

// tokenCmd 本地开发时代替外部身份提供方签发会话Token
// 生成的Token可以粘贴到 /sign-in 页面,或作为 Authorization: Bearer 使用
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "签发本地开发用的会话Token",
	Example: `  reading-tracker token --user user_1 --name Ada
  curl -H "Authorization: Bearer $(reading-tracker token --user user_1)" localhost:8080/api/books`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}

		mgr := jwt.NewManager(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.SessionExpire)
		token, err := mgr.GenerateToken(tokenOpts.userID, tokenOpts.email, tokenOpts.name)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenOpts.userID, "user", "", "用户ID(写入sub)")
	tokenCmd.Flags().StringVar(&tokenOpts.email, "email", "", "邮箱")
	tokenCmd.Flags().StringVar(&tokenOpts.name, "name", "", "显示名")
	_ = tokenCmd.MarkFlagRequired("user")
}
