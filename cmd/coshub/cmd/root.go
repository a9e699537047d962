package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "coshub",
	Short: "CosHub is a management console for S3-compatible object storage",
	Long: `A self-hosted console for browsing and managing S3-compatible buckets,
protected by a single access password with signed session cookies.
Complete documentation is available at https://github.com/YoungLee-coder/coshub`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to config file (default ./config.yaml)")
}
