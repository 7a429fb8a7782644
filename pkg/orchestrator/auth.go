package orchestrator

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/arnavsurve/wfcapture/pkg/browseragent"
	"github.com/arnavsurve/wfcapture/pkg/config"
	"github.com/arnavsurve/wfcapture/pkg/log"
	"github.com/arnavsurve/wfcapture/pkg/types"
	"github.com/fatih/color"
)

// Sentinels the probe agent is instructed to extract. The agent classifies
// the page; this side only matches strings.
const (
	loginPageSentinel = "LOGIN_PAGE_DETECTED"
	authedSentinel    = "AUTHENTICATED_PAGE_DETECTED"

	authProbeMaxSteps = 3
)

// ConfirmFunc blocks until the operator confirms they completed a manual
// step. The default implementation waits for Enter on stdin.
type ConfirmFunc func(prompt string) error

func stdinConfirm(prompt string) error {
	fmt.Print(prompt)
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Scan()
	return scanner.Err()
}

// AuthChecker verifies that the shared browser session is logged in to an
// application before a capture that needs authentication. It drives the
// external agent for short classification probes; on a detected login page
// it pauses for a manual human login, then re-checks. After exhausting its
// attempts without a clear signal the configured policy decides: fail-open
// proceeds with unverified state, fail-closed aborts.
type AuthChecker struct {
	runner   browseragent.Runner
	confirm  ConfirmFunc
	attempts int
	policy   config.AuthPolicy
	logger   types.Logger

	// Delays are fields so tests don't have to wait for real time.
	retryDelay     time.Duration
	postLoginDelay time.Duration
}

func NewAuthChecker(runner browseragent.Runner, attempts int, policy config.AuthPolicy, logger types.Logger) *AuthChecker {
	if logger == nil {
		logger = log.Nop()
	}
	if attempts <= 0 {
		attempts = 3
	}
	return &AuthChecker{
		runner:         runner,
		confirm:        stdinConfirm,
		attempts:       attempts,
		policy:         policy,
		logger:         logger,
		retryDelay:     2 * time.Second,
		postLoginDelay: 3 * time.Second,
	}
}

// Check reports whether the browser session is authenticated to the app.
// It returns an error only under the fail-closed policy; with fail-open
// (the default) an unresolved check reports authenticated anyway so the
// capture is never blocked here.
func (a *AuthChecker) Check(ctx context.Context, appURL, appName string) (bool, error) {
	a.logger.Info().Str("app", appName).Msg("Checking authentication")

	for attempt := 1; attempt <= a.attempts; attempt++ {
		a.logger.Info().
			Int("attempt", attempt).
			Int("max_attempts", a.attempts).
			Msg("Authentication check attempt")

		history, err := a.runner.Run(ctx, browseragent.RunRequest{
			Task:     authProbeTask(appURL),
			StartURL: appURL,
			MaxSteps: authProbeMaxSteps,
		})
		if err != nil {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			a.logger.Error().Err(err).Int("attempt", attempt).Msg("Authentication check error")
			if attempt < a.attempts {
				a.logger.Info().Msg("Retrying authentication check...")
				if err := sleepCtx(ctx, a.retryDelay); err != nil {
					return false, err
				}
			}
			continue
		}

		extracted := history.ExtractedContent()
		a.logger.Debug().Str("extracted", extracted).Msg("Probe agent extraction")

		switch {
		case strings.Contains(extracted, loginPageSentinel):
			a.logger.Warn().
				Str("app", appName).
				Int("attempt", attempt).
				Msg("Login page detected, user is not authenticated")

			a.printLoginInstructions(appName, history.FinalURL(), history.FinalTitle())
			if err := a.confirm("Press Enter after you've logged in and see the main app interface... "); err != nil {
				return false, fmt.Errorf("waiting for login confirmation: %w", err)
			}
			// Allow final redirects and page loads to settle before the
			// next probe re-verifies.
			if err := sleepCtx(ctx, a.postLoginDelay); err != nil {
				return false, err
			}

		case strings.Contains(extracted, authedSentinel):
			a.logger.Info().
				Str("app", appName).
				Str("url", history.FinalURL()).
				Msg("Authentication verified, proceeding with capture in the same browser")
			return true, nil

		default:
			a.logger.Error().
				Int("attempt", attempt).
				Msg("Could not determine authentication state from agent extraction")
			if attempt < a.attempts {
				if err := sleepCtx(ctx, a.retryDelay); err != nil {
					return false, err
				}
			}
		}
	}

	if a.policy == config.AuthFailClosed {
		return false, fmt.Errorf("could not verify authentication after %d attempts", a.attempts)
	}

	a.logger.Warn().
		Int("attempts", a.attempts).
		Msg("Max authentication attempts reached, proceeding anyway; capture may fail if authentication was required")
	return true, nil
}

func (a *AuthChecker) printLoginInstructions(appName, currentURL, currentTitle string) {
	header := color.New(color.FgYellow, color.Bold)
	header.Printf("\nAUTHENTICATION REQUIRED FOR %s\n\n", appName)
	if currentURL != "" {
		fmt.Printf("Current page:\n  URL:   %s\n  Title: %s\n\n", currentURL, currentTitle)
	}
	fmt.Println("Please complete the following steps:")
	fmt.Printf("  1. Log in to your %s account in the browser window\n", appName)
	fmt.Println("  2. Complete any 2FA/security challenges if prompted")
	fmt.Println("  3. Wait until you see the main app interface (dashboard/workspace)")
	fmt.Println("  4. Return here and press Enter to continue")
	fmt.Println()
	fmt.Println("Do NOT close the browser window; the session is saved in the browser profile directory.")
	fmt.Println()
}

func authProbeTask(appURL string) string {
	return fmt.Sprintf(`You are already on %s. Determine the authentication state.

Your goal: Check if this is a LOGIN PAGE or an AUTHENTICATED PAGE.

If you see a LOGIN PAGE (password fields, "Sign in"/"Log in" buttons, login forms):
- Extract "%s"
- Use the done action immediately
- Do NOT attempt to log in

If you see an AUTHENTICATED PAGE (dashboard, workspace, user menu, main app content):
- Extract "%s"
- Use the done action immediately

Observe the current page and report the state.`, appURL, loginPageSentinel, authedSentinel)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

