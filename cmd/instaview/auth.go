package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"instaview/pkg/auth"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the bot account credentials",
	Long: `Manage the stored bot account credentials.

Credentials are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation

Environment variables (IG_BOT_USER and IG_BOT_PASS) always take
precedence over stored credentials.`,
}

// authSetCmd represents the auth set command
var authSetCmd = &cobra.Command{
	Use:   "set [username]",
	Short: "Store the bot account credentials",
	Long: `Store the bot account username and password securely.

You will be prompted for the password; it is hidden as you type.`,
	Example: `  # Interactive
  instaview auth set

  # With username
  instaview auth set mybotaccount`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAuthSet,
}

// authShowCmd represents the auth show command
var authShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored bot account (sanitized)",
	RunE:  runAuthShow,
}

// authClearCmd represents the auth clear command
var authClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored bot account credentials",
	RunE:  runAuthClear,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authSetCmd)
	authCmd.AddCommand(authShowCmd)
	authCmd.AddCommand(authClearCmd)
}

func runAuthSet(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	var username string
	if len(args) > 0 {
		username = strings.TrimSpace(args[0])
	}

	reader := bufio.NewReader(os.Stdin)
	if username == "" {
		fmt.Print("Bot account username: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read username: %w", err)
		}
		username = strings.TrimSpace(input)
	}
	if username == "" {
		return fmt.Errorf("username is required")
	}

	fmt.Print("Bot account password: ")
	password, err := readPassword()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if password == "" {
		return fmt.Errorf("password is required")
	}

	if err := manager.Store(&auth.Credentials{Username: username, Password: password}); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}

	fmt.Printf("Credentials stored for %s\n", username)
	return nil
}

func runAuthShow(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	creds, err := manager.Retrieve()
	if err != nil {
		return fmt.Errorf("no stored credentials: %w", err)
	}

	sanitized := auth.Sanitize(creds)
	fmt.Printf("Username: %s\n", sanitized.Username)
	fmt.Printf("Password: %s\n", sanitized.Password)
	return nil
}

func runAuthClear(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	if err := manager.Delete(); err != nil {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	fmt.Println("Credentials removed")
	return nil
}

// readPassword reads a password from stdin without echoing
func readPassword() (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err == nil {
			return string(password), nil
		}
	}

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
