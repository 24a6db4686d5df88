package main

import (
	"fmt"
	"os"

	"github.com/inscription-c/ordinals/constants"
	"github.com/inscription-c/ordinals/server"
	"github.com/spf13/cobra"
	_ "go.uber.org/automaxprocs"
)

var rootCmd = &cobra.Command{
	Use:   constants.AppName,
	Short: "ordinals tracks every sat of the bitcoin chain across the outputs that hold it.",
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(constants.AppName, constants.Version)
	},
}

func init() {
	rootCmd.AddCommand(server.Cmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
