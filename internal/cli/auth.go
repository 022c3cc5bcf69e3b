package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Mayesamomo/wageflow/internal/service"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage your account and session",
	Long:  `Register, log in and out, and update your profile and rate defaults.`,
}

var authRegisterCmd = &cobra.Command{
	Use:   "register [email]",
	Short: "Create an account and log in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		password, err := readPassword("Password: ")
		if err != nil {
			return err
		}
		confirm, err := readPassword("Confirm password: ")
		if err != nil {
			return err
		}
		if password != confirm {
			return fmt.Errorf("passwords do not match")
		}

		firstName, _ := cmd.Flags().GetString("first-name")
		lastName, _ := cmd.Flags().GetString("last-name")

		sess, err := appInstance.AuthService.Register(ctx, service.RegisterInput{
			Email:      args[0],
			Password:   password,
			FirstName:  firstName,
			LastName:   lastName,
			HourlyRate: floatFlag(cmd, "rate"),
		})
		if err != nil {
			return fmt.Errorf("failed to register: %w", err)
		}
		if err := saveSession(sess); err != nil {
			return err
		}

		fmt.Printf("✓ Registered and logged in as %s\n", sess.User.Email)
		return nil
	},
}

var authLoginCmd = &cobra.Command{
	Use:   "login [email]",
	Short: "Log in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		password, err := readPassword("Password: ")
		if err != nil {
			return err
		}

		sess, err := appInstance.AuthService.Login(ctx, args[0], password)
		if err != nil {
			return fmt.Errorf("failed to log in: %w", err)
		}
		if err := saveSession(sess); err != nil {
			return err
		}

		fmt.Printf("✓ Logged in as %s\n", sess.User.Email)
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and revoke the stored refresh token",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		s, err := loadSession()
		if err != nil {
			return err
		}
		if err := appInstance.AuthService.Logout(ctx, s.UserID, s.RefreshToken); err != nil {
			return fmt.Errorf("failed to log out: %w", err)
		}
		if err := clearSession(); err != nil {
			return err
		}

		fmt.Println("✓ Logged out")
		return nil
	},
}

var authWhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in user and rate defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		userID, err := currentUser(ctx)
		if err != nil {
			return err
		}
		user, err := appInstance.AuthService.GetUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to get user: %w", err)
		}

		fmt.Printf("Name:          %s\n", user.FullName())
		fmt.Printf("Email:         %s\n", user.Email)
		if user.HourlyRate != nil {
			fmt.Printf("Hourly Rate:   $%.2f\n", *user.HourlyRate)
		} else {
			fmt.Println("Hourly Rate:   (not set)")
		}
		fmt.Printf("Tax:           %.2f%%\n", user.TaxPercent)
		fmt.Printf("Mileage Rate:  $%.2f/km\n", user.MileageRate)
		fmt.Printf("Member Since:  %s\n", user.CreatedAt.Format("2006-01-02"))
		return nil
	},
}

var authProfileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Update profile fields and rate defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		userID, err := currentUser(ctx)
		if err != nil {
			return err
		}

		user, err := appInstance.AuthService.UpdateProfile(ctx, userID, service.ProfilePatch{
			Email:       stringFlag(cmd, "email"),
			FirstName:   stringFlag(cmd, "first-name"),
			LastName:    stringFlag(cmd, "last-name"),
			HourlyRate:  floatFlag(cmd, "rate"),
			TaxPercent:  floatFlag(cmd, "tax"),
			MileageRate: floatFlag(cmd, "mileage-rate"),
		})
		if err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}

		fmt.Printf("✓ Profile updated: %s <%s>\n", user.FullName(), user.Email)
		return nil
	},
}

var authPasswdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change your password",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		userID, err := currentUser(ctx)
		if err != nil {
			return err
		}

		current, err := readPassword("Current password: ")
		if err != nil {
			return err
		}
		next, err := readPassword("New password: ")
		if err != nil {
			return err
		}

		if err := appInstance.AuthService.ChangePassword(ctx, userID, current, next); err != nil {
			return fmt.Errorf("failed to change password: %w", err)
		}

		fmt.Println("✓ Password changed")
		return nil
	},
}

// readPassword reads without echo on a terminal and falls back to a plain
// line read when stdin is piped
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	fd := int(syscall.Stdin)
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func init() {
	authCmd.AddCommand(authRegisterCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authWhoamiCmd)
	authCmd.AddCommand(authProfileCmd)
	authCmd.AddCommand(authPasswdCmd)

	authRegisterCmd.Flags().String("first-name", "", "First name")
	authRegisterCmd.Flags().String("last-name", "", "Last name")
	authRegisterCmd.Flags().Float64("rate", 0, "Default hourly rate for new shifts")

	authProfileCmd.Flags().String("email", "", "Email address")
	authProfileCmd.Flags().String("first-name", "", "First name")
	authProfileCmd.Flags().String("last-name", "", "Last name")
	authProfileCmd.Flags().Float64("rate", 0, "Default hourly rate")
	authProfileCmd.Flags().Float64("tax", 0, "Tax percent applied to new shifts")
	authProfileCmd.Flags().Float64("mileage-rate", 0, "Default rate per km")
}
