package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configFile string

// rootCmd reading-tracker命令入口
var rootCmd = &cobra.Command{
	Use:   "reading-tracker",
	Short: "Reading Tracker - 个人读书记录",
	Long: `Reading Tracker 记录读过的书、评分和读后感。

子命令:
  serve   启动HTTP服务(图书API + 页面)
  token   签发本地开发用的会话Token
  events  订阅并打印图书事件

配置优先级:环境变量(READINGTRACKER_*) > .env > config.yaml > 默认值`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "配置文件路径(默认在./config和.下查找config.yaml)")
	rootCmd.AddCommand(serveCmd, tokenCmd, eventsCmd)
}

// @title        Reading Tracker API
// @version      1.0
// @description  个人读书记录:图书的增删改查接口
// @host         localhost:8080
// @BasePath     /
func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
