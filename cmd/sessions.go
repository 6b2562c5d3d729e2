package cmd

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/stytchctl/policy"
	"github.com/s0up4200/stytchctl/stytch"
	"github.com/s0up4200/stytchctl/stytch/sessions"
)

// DefaultRevokeConcurrency bounds parallel revoke calls
const DefaultRevokeConcurrency = 4

var (
	sessToken       string
	sessJWT         string
	sessDuration    int
	sessPolicy      string
	sessIDs         []string
	sessConcurrency int
)

// sessionsCmd groups the session commands
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Authenticate, revoke and inspect sessions",
}

var sessionsAuthenticateCmd = &cobra.Command{
	Use:   "authenticate",
	Short: "Check a session token or JWT against the API",
	Long: `Authenticate a session by token or JWT and print the session.

With --policy (or policy.default in the config) the returned session must also
satisfy a policy expression. The flag accepts a preset name from the config or
an expression, for example:

  hasFactor("email_factor") and AgeMinutes < 60`,
	RunE: runSessionsAuthenticate,
}

var sessionsRevokeCmd = &cobra.Command{
	Use:   "revoke",
	Short: "Revoke one or more sessions",
	Example: `  stytchctl sessions revoke --session-id session-test-fe6c042b-6286-479f-8a4f-b046a6c46509
  stytchctl sessions revoke --session-id id1 --session-id id2 --concurrency 2`,
	RunE: runSessionsRevoke,
}

var sessionsInspectJWTCmd = &cobra.Command{
	Use:               "inspect-jwt <jwt>",
	Short:             "Decode the claims of a session JWT without verifying it",
	Args:              cobra.ExactArgs(1),
	PersistentPreRunE: skipInit,
	RunE:              runSessionsInspectJWT,
}

func init() {
	sessionsAuthenticateCmd.Flags().StringVar(&sessToken, "session-token", "", "session token")
	sessionsAuthenticateCmd.Flags().StringVar(&sessJWT, "session-jwt", "", "session JWT")
	sessionsAuthenticateCmd.Flags().IntVar(&sessDuration, "session-duration", 0, "extend the session to this many minutes")
	sessionsAuthenticateCmd.Flags().StringVarP(&sessPolicy, "policy", "p", "", "policy preset or expression the session must satisfy")
	sessionsAuthenticateCmd.MarkFlagsMutuallyExclusive("session-token", "session-jwt")
	sessionsAuthenticateCmd.MarkFlagsOneRequired("session-token", "session-jwt")

	sessionsRevokeCmd.Flags().StringArrayVar(&sessIDs, "session-id", nil, "session ID to revoke (repeatable)")
	sessionsRevokeCmd.Flags().StringVar(&sessToken, "session-token", "", "session token to revoke")
	sessionsRevokeCmd.Flags().StringVar(&sessJWT, "session-jwt", "", "session JWT to revoke")
	sessionsRevokeCmd.Flags().IntVar(&sessConcurrency, "concurrency", DefaultRevokeConcurrency, "parallel revoke calls")
	sessionsRevokeCmd.MarkFlagsOneRequired("session-id", "session-token", "session-jwt")

	sessionsCmd.AddCommand(sessionsAuthenticateCmd)
	sessionsCmd.AddCommand(sessionsRevokeCmd)
	sessionsCmd.AddCommand(sessionsInspectJWTCmd)
}

func runSessionsAuthenticate(cmd *cobra.Command, args []string) error {
	var (
		p   *policy.Policy
		err error
	)
	if expression := resolvePolicy(sessPolicy); expression != "" {
		p, err = policy.Compile(expression)
		if err != nil {
			return err
		}
	}

	req := sessions.AuthenticateRequest{
		SessionDurationMinutes: intFlag(cmd, "session-duration", sessDuration),
		SessionToken:           stringFlag(cmd, "session-token", sessToken),
		SessionJWT:             stringFlag(cmd, "session-jwt", sessJWT),
	}

	resp, err := sessions.NewClient(client).Authenticate(cmd.Context(), req)
	if err != nil {
		return err
	}

	logger.Debug().
		Str("request_id", resp.RequestID).
		Str("session_id", resp.Session.SessionID).
		Strs("factors", resp.Session.FactorKeys()).
		Msg("Session authenticated")

	if p != nil {
		if err := p.Enforce(resp.Session, time.Now()); err != nil {
			logger.Warn().Str("session_id", resp.Session.SessionID).Str("policy", p.Expression()).Msg("Session rejected")
			return err
		}
		logger.Info().Str("session_id", resp.Session.SessionID).Str("policy", p.Expression()).Msg("Session satisfies policy")
	}

	return printOutput(cmd.OutOrStdout(), outputFormat, resp)
}

// resolvePolicy picks the flag value or the configured default and expands
// preset names. An empty result means no policy.
func resolvePolicy(flag string) string {
	value := flag
	if value == "" && cfg != nil {
		value = cfg.Policy.Default
	}
	if value == "" {
		return ""
	}
	if cfg != nil {
		if expression, ok := cfg.Policy.Presets[value]; ok {
			return expression
		}
	}
	return value
}

// revokeResult reports one revoked session
type revokeResult struct {
	Target     string `json:"target"`
	RequestID  string `json:"request_id"`
	StatusCode int    `json:"status_code"`
}

func runSessionsRevoke(cmd *cobra.Command, args []string) error {
	if sessConcurrency < 1 {
		return fmt.Errorf("--concurrency must be at least 1")
	}

	targets := make([]string, 0, len(sessIDs)+2)
	requests := make([]sessions.RevokeRequest, 0, len(sessIDs)+2)
	for _, id := range sessIDs {
		targets = append(targets, id)
		requests = append(requests, sessions.RevokeRequest{SessionID: stytch.String(id)})
	}
	if token := stringFlag(cmd, "session-token", sessToken); token != nil {
		targets = append(targets, "session_token")
		requests = append(requests, sessions.RevokeRequest{SessionToken: token})
	}
	if jwt := stringFlag(cmd, "session-jwt", sessJWT); jwt != nil {
		targets = append(targets, "session_jwt")
		requests = append(requests, sessions.RevokeRequest{SessionJWT: jwt})
	}

	api := sessions.NewClient(client)
	results := make([]revokeResult, len(requests))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(sessConcurrency)

	var mu sync.Mutex
	revoked := 0

	for i, req := range requests {
		g.Go(func() error {
			resp, err := api.Revoke(ctx, req)
			if err != nil {
				return fmt.Errorf("failed to revoke %s: %w", targets[i], err)
			}

			results[i] = revokeResult{
				Target:     targets[i],
				RequestID:  resp.RequestID,
				StatusCode: resp.StatusCode,
			}

			mu.Lock()
			revoked++
			mu.Unlock()

			logger.Debug().Str("target", targets[i]).Str("request_id", resp.RequestID).Msg("Session revoked")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Warn().Int("revoked", revoked).Int("requested", len(requests)).Msg("Revoke aborted")
		return err
	}

	logger.Info().Int("revoked", revoked).Msg("Sessions revoked")

	return printOutput(cmd.OutOrStdout(), outputFormat, results)
}

func runSessionsInspectJWT(cmd *cobra.Command, args []string) error {
	claims, err := sessions.InspectJWT(args[0])
	if err != nil {
		return err
	}
	return printOutput(cmd.OutOrStdout(), outputFormat, claims)
}
