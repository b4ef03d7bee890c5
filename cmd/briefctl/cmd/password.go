package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/majupersonalizados/briefing/internal/service"
	"github.com/majupersonalizados/briefing/internal/validation"
	"github.com/spf13/cobra"
)

var errEmptyPassword = errors.New("password must not be empty")

func HashPasswordCmd() *cobra.Command {
	var allowWeak bool

	cmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASHES",
		Long:  "Hashes the given password, or the first line of stdin when no argument is passed.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := readLine(cmd.InOrStdin())
				if err != nil {
					return err
				}
				password = line
			}

			hash, err := hashPassword(password, allowWeak)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}

	cmd.Flags().BoolVar(&allowWeak, "allow-weak", false, "skip the strength check")
	return cmd
}

func hashPassword(password string, allowWeak bool) (string, error) {
	if password == "" {
		return "", errEmptyPassword
	}
	if !allowWeak {
		if err := validation.ValidatePassword(password); err != nil {
			return "", err
		}
	}
	auth := service.NewAuthService(nil, nil, "", false, 0)
	return auth.HashPassword(password)
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
