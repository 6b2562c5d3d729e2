package cmd

import (
	"github.com/spf13/cobra"

	"github.com/s0up4200/stytchctl/stytch"
	"github.com/s0up4200/stytchctl/stytch/users"
)

var (
	userEmail     string
	userPhone     string
	userFirstName string
	userLastName  string
	userPending   bool
)

// usersCmd groups the user commands
var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage users",
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user by email and/or phone number",
	Example: `  stytchctl users create --email sandbox@stytch.com
  stytchctl users create --email ada@example.com --first-name Ada --pending`,
	RunE: runUsersCreate,
}

func init() {
	usersCreateCmd.Flags().StringVar(&userEmail, "email", "", "email address")
	usersCreateCmd.Flags().StringVar(&userPhone, "phone-number", "", "phone number in E.164 format")
	usersCreateCmd.Flags().StringVar(&userFirstName, "first-name", "", "first name")
	usersCreateCmd.Flags().StringVar(&userLastName, "last-name", "", "last name")
	usersCreateCmd.Flags().BoolVar(&userPending, "pending", false, "create the user as pending")
	usersCreateCmd.MarkFlagsOneRequired("email", "phone-number")

	usersCmd.AddCommand(usersCreateCmd)
}

func runUsersCreate(cmd *cobra.Command, args []string) error {
	req := users.CreateRequest{
		Email:       stringFlag(cmd, "email", userEmail),
		PhoneNumber: stringFlag(cmd, "phone-number", userPhone),
	}

	first := stringFlag(cmd, "first-name", userFirstName)
	last := stringFlag(cmd, "last-name", userLastName)
	if first != nil || last != nil {
		req.Name = &users.Name{FirstName: first, LastName: last}
	}
	if userPending {
		req.CreateUserAsPending = stytch.Bool(true)
	}

	resp, err := users.NewClient(client).Create(cmd.Context(), req)
	if err != nil {
		return err
	}

	logger.Info().
		Str("user_id", resp.UserID).
		Str("status", string(resp.Status)).
		Str("request_id", resp.RequestID).
		Msg("User created")

	return printOutput(cmd.OutOrStdout(), outputFormat, resp)
}
