package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"portfolio/internal/config"
	"portfolio/internal/database"
	"portfolio/internal/logging"
	"portfolio/internal/services"
	"portfolio/internal/util"
)

var (
	username string
	password string
)

var rootCmd = &cobra.Command{
	Use:   "create_admin",
	Short: "Create the admin account or reset its password",
	Long: `Creates the named admin account, or resets its password and re-enables it
if it already exists. The password is prompted for when not given as a flag.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVarP(&username, "username", "u", "", "Admin username (default ADMIN_USERNAME)")
	rootCmd.Flags().StringVarP(&password, "password", "p", "", "Admin password")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.Setup(os.Stderr, cfg.App.LogLevel)

	if username == "" {
		username = cfg.Auth.AdminUsername
	}
	if password == "" {
		if password, err = promptPassword(); err != nil {
			return err
		}
	}
	if len(password) < services.MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", services.MinPasswordLength)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	auth := services.NewAuthService(db, util.NewTokenIssuer(cfg.Auth.SecretKey, cfg.Auth.TokenExpiry()), logger)
	user, err := auth.SetAdmin(context.Background(), username, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Admin user %q is ready.\n", user.Username)
	return nil
}

func promptPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", errors.New("no password given")
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(os.Stderr, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	fmt.Fprint(os.Stderr, "Repeat password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}
