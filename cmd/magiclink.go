package cmd

import (
	"github.com/spf13/cobra"

	"github.com/s0up4200/stytchctl/stytch/magiclinks"
)

var (
	mlEmail            string
	mlLoginURL         string
	mlSignupURL        string
	mlLoginExpiration  int
	mlSignupExpiration int
	mlToken            string
	mlSessionDuration  int
	mlSessionToken     string
	mlSessionJWT       string
)

// magicLinkCmd groups the magic link commands
var magicLinkCmd = &cobra.Command{
	Use:   "magic-link",
	Short: "Send and authenticate email magic links",
}

var magicLinkSendCmd = &cobra.Command{
	Use:   "send",
	Short: "Email a login or signup magic link",
	Long: `Email a magic link to the given address. Existing users receive the login
link, new users are created and receive the signup link.`,
	Example: `  stytchctl magic-link send --email sandbox@stytch.com
  stytchctl magic-link send --email ada@example.com --login-url https://example.com/authenticate`,
	RunE: runMagicLinkSend,
}

var magicLinkAuthenticateCmd = &cobra.Command{
	Use:     "authenticate",
	Short:   "Exchange a magic link token for a user and session",
	Example: `  stytchctl magic-link authenticate --token DOYoip3rvIMMW5lgItikFK-Ak1CfMsgjuiCyI7uuU94= --session-duration 60`,
	RunE:    runMagicLinkAuthenticate,
}

func init() {
	magicLinkSendCmd.Flags().StringVar(&mlEmail, "email", "", "recipient email address")
	magicLinkSendCmd.Flags().StringVar(&mlLoginURL, "login-url", "", "redirect URL for existing users")
	magicLinkSendCmd.Flags().StringVar(&mlSignupURL, "signup-url", "", "redirect URL for new users")
	magicLinkSendCmd.Flags().IntVar(&mlLoginExpiration, "login-expiration", 0, "login link lifetime in minutes")
	magicLinkSendCmd.Flags().IntVar(&mlSignupExpiration, "signup-expiration", 0, "signup link lifetime in minutes")
	_ = magicLinkSendCmd.MarkFlagRequired("email")

	magicLinkAuthenticateCmd.Flags().StringVar(&mlToken, "token", "", "token from the magic link")
	magicLinkAuthenticateCmd.Flags().IntVar(&mlSessionDuration, "session-duration", 0, "start or extend a session for this many minutes")
	magicLinkAuthenticateCmd.Flags().StringVar(&mlSessionToken, "session-token", "", "extend an existing session by token")
	magicLinkAuthenticateCmd.Flags().StringVar(&mlSessionJWT, "session-jwt", "", "extend an existing session by JWT")
	_ = magicLinkAuthenticateCmd.MarkFlagRequired("token")
	magicLinkAuthenticateCmd.MarkFlagsMutuallyExclusive("session-token", "session-jwt")

	magicLinkCmd.AddCommand(magicLinkSendCmd)
	magicLinkCmd.AddCommand(magicLinkAuthenticateCmd)
}

func runMagicLinkSend(cmd *cobra.Command, args []string) error {
	req := magiclinks.SendRequest{
		Email:                   mlEmail,
		LoginMagicLinkURL:       stringFlag(cmd, "login-url", mlLoginURL),
		SignupMagicLinkURL:      stringFlag(cmd, "signup-url", mlSignupURL),
		LoginExpirationMinutes:  intFlag(cmd, "login-expiration", mlLoginExpiration),
		SignupExpirationMinutes: intFlag(cmd, "signup-expiration", mlSignupExpiration),
	}

	logger.Info().Str("email", mlEmail).Msg("Sending magic link")

	resp, err := magiclinks.NewClient(client).SendEmail(cmd.Context(), req)
	if err != nil {
		return err
	}

	logger.Debug().Str("request_id", resp.RequestID).Str("user_id", resp.UserID).Msg("Magic link sent")

	return printOutput(cmd.OutOrStdout(), outputFormat, resp)
}

func runMagicLinkAuthenticate(cmd *cobra.Command, args []string) error {
	req := magiclinks.AuthenticateRequest{
		Token:                  mlToken,
		SessionDurationMinutes: intFlag(cmd, "session-duration", mlSessionDuration),
		SessionToken:           stringFlag(cmd, "session-token", mlSessionToken),
		SessionJWT:             stringFlag(cmd, "session-jwt", mlSessionJWT),
	}

	resp, err := magiclinks.NewClient(client).Authenticate(cmd.Context(), req)
	if err != nil {
		return err
	}

	event := logger.Debug().Str("request_id", resp.RequestID).Str("user_id", resp.UserID)
	if resp.Session != nil {
		event = event.Str("session_id", resp.Session.SessionID)
	}
	event.Msg("Magic link authenticated")

	return printOutput(cmd.OutOrStdout(), outputFormat, resp)
}

// stringFlag returns a pointer to value when the flag was set
func stringFlag(cmd *cobra.Command, name, value string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &value
}

// intFlag returns a pointer to value when the flag was set
func intFlag(cmd *cobra.Command, name string, value int) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &value
}
