/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "savoria",
	Short: "Backend API server for the Savoria catering platform",
	Long: `savoria is the backend API server for the Savoria catering platform.

It serves the public marketing endpoints (menu, gallery, reservations,
contact), the authenticated client portal, and the admin back office.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
