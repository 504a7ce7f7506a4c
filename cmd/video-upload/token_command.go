package main

import (
	"fmt"
	"time"

	authutils "marketplace-backend/lib/utils/auth-utils"
	"marketplace-backend/models"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// newTokenCommand выпуск токена для локальной отладки, секрет должен совпадать с AUTH_JWT_SECRET сервера
func newTokenCommand() *cobra.Command {
	var secret string
	var userID string
	var name string
	var role string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Выпустить JWT токен для отладки",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" || userID == "" {
				return errors.New("обязательны --secret и --user")
			}
			userRole := models.UserRole(role)
			if !userRole.IsValid() {
				return errors.Errorf("неизвестная роль %q", role)
			}
			token, err := authutils.SignToken(secret, userID, name, userRole, ttl)
			if err != nil {
				return errors.Wrap(err, "ошибка подписи токена")
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", "", "Секрет подписи JWT")
	cmd.Flags().StringVar(&userID, "user", "", "ID пользователя")
	cmd.Flags().StringVar(&name, "name", "", "Имя пользователя")
	cmd.Flags().StringVar(&role, "role", string(models.UserRoleProvider), "Роль пользователя")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Срок действия токена")
	return cmd
}
