package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var baseUrl string
	var token string

	rootCmd := &cobra.Command{
		Use:           "video-upload",
		Short:         "Загрузка видео на площадку чанками",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&baseUrl, "url", "http://127.0.0.1:8080", "Адрес API площадки")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "JWT токен владельца")

	rootCmd.AddCommand(newUploadCommand(&baseUrl, &token))
	rootCmd.AddCommand(newTokenCommand())
	return rootCmd
}
