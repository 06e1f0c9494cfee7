package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "attendsystem",
	Short: "Face-recognition attendance engine for classroom kiosks",
	Long: `Attendsystem is the decision engine behind classroom attendance kiosks.
It identifies students from face embeddings, checks their timetable for a
session in the kiosk's room right now, and records attendance exactly once
per student per session.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
