/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "amqpwire",
	Short: "Demo CLI driving the amqpwire client library",
	Long: `amqpwire is a from-scratch AMQP 0-9-1 client. This binary is a thin
demo harness over the library - publish and consume subcommands exercise a
real connection against a broker, they are not the library's public API.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if env, _ := cmd.Flags().GetString("env"); env != "" {
			os.Setenv("ENV", env)
		}
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen once
// to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("env", "", "load .env when set to \"dev\"")
}
