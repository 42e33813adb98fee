package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/jwt"
	authService "github.com/Mgabr90/mansoura-attendance-system-sub000/internal/service/auth"
	"github.com/spf13/cobra"
)

var tokenSubject string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an admin API token signed with JWT_SECRET_KEY",
	RunE: func(cmd *cobra.Command, args []string) error {
		token, expiresAt, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration).GenerateAdminToken(tokenSubject)
		if err != nil {
			return err
		}
		fmt.Println(token)
		fmt.Printf("expires at %s\n", time.Unix(expiresAt, 0).Format(time.RFC3339))
		return nil
	},
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Read a password from stdin and print the bcrypt hash for ADMIN_PASSWORD_HASH",
	RunE: func(cmd *cobra.Command, args []string) error {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return errors.New("no password on stdin")
		}
		hash, err := authService.HashPassword(strings.TrimRight(line, "\r\n"))
		if err != nil {
			return err
		}
		fmt.Println(hash)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVarP(&tokenSubject, "subject", "s", "admin", "Subject recorded in the token")
}
