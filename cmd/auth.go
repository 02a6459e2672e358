package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/moodarc/internal/auth"
	"github.com/desertthunder/moodarc/internal/server"
	"github.com/desertthunder/moodarc/internal/services"
	"github.com/desertthunder/moodarc/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin opens the browser login page and polls the backend until the
// cookie session appears. The login itself happens server-side; the CLI only
// watches for the session to materialize.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireBackend(); err != nil {
		return err
	}

	loginURL := r.resolved.LoginPageURL()

	r.writePlain("→ Opening browser for sign in...\n")
	if err := shared.OpenBrowser(loginURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", loginURL)
	}

	r.writePlain("→ Waiting for session (2 minute timeout)...\n")

	session, err := r.auth.WaitForSession(ctx, 2*time.Second, 2*time.Minute)
	if err != nil {
		return fmt.Errorf("sign in did not complete: %w", err)
	}

	r.writePlainln("✓ Signed in as %s", session.DisplayName)
	return nil
}

// AuthLogout ends the backend session and drops local session state,
// including the persisted cookie snapshot.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireBackend(); err != nil {
		return err
	}

	if err := r.auth.Logout(ctx); err != nil {
		r.logger.Warnf("logout finished with problems %v", err)
	}

	if jar, ok := r.client.Jar().(*services.PersistentJar); ok {
		if err := jar.Clear(); err != nil {
			r.logger.Warnf("could not clear cookie snapshot %v", err)
		}
	}

	return r.writePlain("✓ Signed out\n")
}

// AuthWhoami prints the current session, plus broker claims when a broker is
// configured and holds a token.
func (r *Runner) AuthWhoami(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireBackend(); err != nil {
		return err
	}
	useJSON := cmd.Bool("json")

	probe := r.auth.CheckBackendSession(ctx)

	if useJSON {
		out := map[string]any{
			"status":        probe.Status.String(),
			"authenticated": probe.Status == auth.ProbeAuthenticated,
		}
		if probe.Status == auth.ProbeAuthenticated {
			out["user_id"] = probe.Session.UserID
			out["display_name"] = probe.Session.DisplayName
		}
		if r.broker != nil {
			if claims, err := r.broker.Claims(ctx); err == nil {
				out["broker"] = map[string]any{
					"subject": claims.Subject,
					"email":   claims.Email,
					"expires": claims.Expiry,
				}
			}
		}
		return r.writeJSON(out, true)
	}

	switch probe.Status {
	case auth.ProbeAuthenticated:
		r.writePlain("✓ Signed in\n")
		r.writePlain("User: %s\n", probe.Session.DisplayName)
		r.writePlain("ID: %s\n", probe.Session.UserID)
	case auth.ProbeUnauthenticated:
		r.writePlain("✗ Not signed in\n")
		r.writePlain("Sign in at %s\n", r.resolved.LoginPageURL())
	default:
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, probe.Err)
	}

	if r.broker == nil {
		return nil
	}
	claims, err := r.broker.Claims(ctx)
	if err != nil {
		r.logger.Debug("no broker claims available", "error", err)
		return nil
	}
	r.writePlain("Broker: %s", claims.Subject)
	if claims.Email != "" {
		r.writePlain(" (%s)", claims.Email)
	}
	r.writePlain("\n")
	if !claims.Expiry.IsZero() {
		r.writePlain("Token expires: %s\n", claims.Expiry.Format(time.RFC1123))
	}
	return nil
}

// AuthBroker signs in through the identity broker: a local HTTP server
// catches the OAuth redirect, the code is exchanged for a token, and the
// token lands in the on-disk cache.
func (r *Runner) AuthBroker(ctx context.Context, cmd *cli.Command) error {
	if r.broker == nil {
		return fmt.Errorf("%w: set broker url and anon_key in config.toml", shared.ErrBrokerNotConfigured)
	}

	state, err := shared.GenerateState()
	if err != nil {
		return err
	}

	authURL := r.broker.AuthURL(state)
	handler := server.NewCallbackHandler(state)
	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(r.logger))
	router.Handler(handler)

	serverAddr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting callback server at %v", serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for broker sign in...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.CallbackResult

	select {
	case result = <-handler.Result():
		// Got the redirect
	case err := <-serverErrors:
		return fmt.Errorf("callback server error: %w", err)
	case <-timeout.C:
		return fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down callback server", "error", err)
	}

	if result.Error() != nil {
		return fmt.Errorf("authorization failed: %w", result.Error())
	}

	if err := r.broker.Exchange(ctx, result.Code); err != nil {
		return err
	}

	r.writePlainln("✓ Broker sign in complete")
	return nil
}

// staticToken carries a bearer captured from a browser session. It lives for
// one process; the persisted part of an import is the cookie snapshot.
type staticToken string

func (t staticToken) BearerToken(context.Context) string { return string(t) }

// AuthImport seeds the session from a browser "Copy as cURL" capture:
// cookies go into the persistent jar, a captured bearer rides along for the
// rest of this run.
func (r *Runner) AuthImport(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireBackend(); err != nil {
		return err
	}

	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")

	var capture *shared.CurlSession
	var err error
	switch {
	case curlCmd != "":
		capture, err = shared.ParseCurlCommand(curlCmd)
	case curlFile != "":
		capture, err = shared.ParseCurlFile(curlFile)
	default:
		return fmt.Errorf("%w: provide --curl or --curl-file", shared.ErrMissingArgument)
	}
	if err != nil {
		return err
	}

	cookies := capture.Cookies()
	if len(cookies) == 0 && capture.Bearer == "" {
		return fmt.Errorf("%w: the capture carries no cookies or bearer token", shared.ErrInvalidArgument)
	}

	if len(cookies) > 0 {
		if jar, ok := r.client.Jar().(*services.PersistentJar); ok {
			jar.Seed(cookies)
		}
		r.writePlain("✓ Imported %d cookies\n", len(cookies))
	}

	if capture.Bearer != "" {
		r.client.SetTokenSource(staticToken(capture.Bearer))
		r.writePlain("✓ Bearer token attached for this run\n")
	}

	probe := r.auth.CheckBackendSession(ctx)
	if probe.Status == auth.ProbeAuthenticated {
		r.writePlain("✓ Session active as %s\n", probe.Session.DisplayName)
	} else {
		r.writePlain("⚠ Session still not confirmed; the capture may be stale\n")
	}

	return nil
}
