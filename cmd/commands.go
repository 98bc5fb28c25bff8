package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pkg/browser"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"chief-of-staff-client/handler"
	"chief-of-staff-client/internal/domain"
	"chief-of-staff-client/internal/lineview"
	"chief-of-staff-client/internal/notify"
	"chief-of-staff-client/internal/tui"
	"chief-of-staff-client/internal/usecase"
)

// viewSink is a screen that also renders toasts.
type viewSink interface {
	usecase.View
	notify.Sink
}

func newApp(rt *runtime, view viewSink) (*usecase.App, error) {
	emitter, err := notify.NewEmitter(view, notify.WithLogger(rt.log))
	if err != nil {
		return nil, err
	}
	return usecase.NewApp(rt.store, rt.backend, view, emitter, usecase.WithLogger(rt.log))
}

// oneShot runs fn against a line view on stdout.
func oneShot(cmd *cobra.Command, fn func(ctx context.Context, rt *runtime, app *usecase.App) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := consoleLogger(cfg)
	rt, err := openRuntime(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}

	view := lineview.New(cmd.OutOrStdout())
	app, err := newApp(rt, view)
	if err != nil {
		return err
	}
	return fn(cmd.Context(), rt, app)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// The terminal belongs to the UI; logs go to a file or nowhere.
	log := zerolog.Nop()
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		log = newLogger(cfg, f)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	rt, err := openRuntime(ctx, cfg, log)
	if err != nil {
		return err
	}

	ui := tui.New(tui.WithLogger(log), tui.WithBrowser(browser.OpenURL))
	app, err := newApp(rt, ui)
	if err != nil {
		return err
	}

	srv, err := startCallbackServer(ctx, cfg.CallbackAddr, app, log, nil)
	if err != nil {
		// Password auth and chat still work without the callback origin.
		log.Warn().Err(err).Msg("callback server unavailable, google login will not complete")
	} else {
		defer shutdown(srv, log)
	}

	app.Boot(ctx, nil)
	return ui.Run(ctx, app)
}

// startCallbackServer serves the OAuth return origin in the background.
func startCallbackServer(ctx context.Context, addr func() (string, error), app handler.Booter, log zerolog.Logger, onRedirect func(usecase.RedirectResult)) (*http.Server, error) {
	listenAddr, err := addr()
	if err != nil {
		return nil, err
	}
	opts := []handler.Option{handler.WithLogger(log)}
	if onRedirect != nil {
		opts = append(opts, handler.WithOnRedirect(onRedirect))
	}
	h, err := handler.NewHandler(app, opts...)
	if err != nil {
		return nil, err
	}
	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", listenAddr, err)
	}
	srv := &http.Server{
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("callback server stopped")
		}
	}()
	log.Info().Str("addr", listenAddr).Msg("callback server listening")
	return srv, nil
}

func shutdown(srv *http.Server, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("callback server shutdown")
	}
}

func newAuthCmd(name string) *cobra.Command {
	mode := domain.AuthLogin
	if name == "register" {
		mode = domain.AuthRegister
	}
	var (
		email         string
		password      string
		passwordStdin bool
	)
	cmd := &cobra.Command{
		Use:   name,
		Short: mode.Title() + " with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if passwordStdin {
				p, err := readPassword(cmd.InOrStdin())
				if err != nil {
					return err
				}
				password = p
			}
			if email == "" || password == "" {
				return errors.New("--email and a password are required")
			}
			return oneShot(cmd, func(ctx context.Context, _ *runtime, app *usecase.App) error {
				if err := app.SubmitAuth(ctx, mode, email, password); err != nil {
					return flowExit(err)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	return cmd
}

// flowExit maps a failed flow to an exit status: 2 for bad input, 3 when
// trying again may help, 1 otherwise.
func flowExit(err error) exitError {
	code := usecase.CodeOf(err)
	switch {
	case code == usecase.ErrorInvalidInput:
		return exitError{code: 2}
	case code.Transient():
		return exitError{code: 3}
	default:
		return exitError{code: 1}
	}
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return oneShot(cmd, func(ctx context.Context, _ *runtime, app *usecase.App) error {
			app.Logout(ctx)
			return nil
		})
	},
}

var googleLoginCmd = &cobra.Command{
	Use:   "google-login",
	Short: "Sign in with Google through the browser",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return oneShot(cmd, func(ctx context.Context, rt *runtime, app *usecase.App) error {
			if !rt.cfg.IsLocal() {
				rt.log.Warn().Str("origin", rt.cfg.Origin).Msg("origin is not local; the redirect may not reach this machine")
			}
			done := make(chan usecase.RedirectResult, 1)
			srv, err := startCallbackServer(ctx, rt.cfg.CallbackAddr, app, rt.log, func(res usecase.RedirectResult) {
				select {
				case done <- res:
				default:
				}
			})
			if err != nil {
				return err
			}
			defer shutdown(srv, rt.log)

			target := app.GoogleLoginURL()
			fmt.Fprintln(cmd.OutOrStdout(), "Opening", target)
			if err := browser.OpenURL(target); err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Open this URL in your browser to continue.")
			}

			select {
			case res := <-done:
				if res.Kind == usecase.RedirectError {
					return exitError{code: 1}
				}
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	},
}

var flagQuick int

var sendCmd = &cobra.Command{
	Use:   "send [message]",
	Short: "Send one chat message and print the reply",
	RunE: func(cmd *cobra.Command, args []string) error {
		quick := cmd.Flags().Changed("quick")
		if !quick && len(args) == 0 {
			return errors.New("a message or --quick is required")
		}
		if quick && (flagQuick < 1 || flagQuick > len(domain.QuickMessages)) {
			return fmt.Errorf("--quick must be between 1 and %d", len(domain.QuickMessages))
		}
		return oneShot(cmd, func(ctx context.Context, _ *runtime, app *usecase.App) error {
			var out usecase.Outcome
			if quick {
				out = app.SendQuick(ctx, flagQuick-1)
			} else {
				out = app.Send(ctx, strings.Join(args, " "))
			}
			if out != usecase.OutcomeAnswered {
				return exitError{code: 1}
			}
			return nil
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session and backend status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return oneShot(cmd, func(ctx context.Context, rt *runtime, _ *usecase.App) error {
			out := cmd.OutOrStdout()
			profile := rt.cfg.Profile
			if profile == "" {
				profile = "default"
			}
			_, ok, err := rt.store.Get(ctx)
			switch {
			case err != nil:
				fmt.Fprintf(out, "session:  unreadable (%v)\n", err)
			case ok:
				fmt.Fprintf(out, "session:  signed in (profile %s)\n", profile)
			default:
				fmt.Fprintf(out, "session:  signed out (profile %s)\n", profile)
			}

			health, err := rt.backend.Health(ctx)
			if err != nil {
				fmt.Fprintf(out, "backend:  %s unreachable (%v)\n", rt.backend.BaseURL(), err)
				return exitError{code: 1}
			}
			fmt.Fprintf(out, "backend:  %s %s (%s)\n", rt.backend.BaseURL(), health.Status, health.App)
			return nil
		})
	},
}

func init() {
	sendCmd.Flags().IntVar(&flagQuick, "quick", 0, fmt.Sprintf("send quick prompt 1-%d instead of a message", len(domain.QuickMessages)))
}
