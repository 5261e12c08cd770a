package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/filmhub/internal/shared"
)

// AuthLogin exchanges credentials for a token and saves the session locally.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}

	username, password, err := r.credentials(cmd)
	if err != nil {
		return err
	}

	sess, err := r.auth.Login(ctx, username, password)
	if err != nil {
		if sess.Authenticated() {
			r.logger.Warn("session will not survive this process", "error", err)
		} else {
			return err
		}
	}

	return r.writePlain("✓ Logged in as %s\n", sess.Username(username))
}

// AuthRegister creates an account. Log in afterwards with `auth login`.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}

	username, password, err := r.credentials(cmd)
	if err != nil {
		return err
	}

	resp, err := r.auth.Register(ctx, username, cmd.String("email"), password)
	if err != nil {
		return err
	}

	if resp.Message != "" {
		r.writePlain("✓ %s\n", resp.Message)
	} else {
		r.writePlain("✓ Registered %s\n", username)
	}
	return r.writePlain("Run `filmhub auth login --username %s` to sign in.\n", username)
}

// AuthLogout clears the saved session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}
	if err := r.auth.Logout(ctx); err != nil {
		return err
	}
	return r.writePlain("✓ Logged out\n")
}

// AuthStatus reports whether a session is saved, without contacting the API.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}
	if err := r.guard.Wait(ctx); err != nil {
		return err
	}

	sess := r.store.Session()
	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"authenticated": sess.Authenticated(),
			"user":          sess.User,
			"decision":      r.guard.Decide().String(),
		}, true)
	}

	if !sess.Authenticated() {
		return r.writePlain("✗ Not logged in\n")
	}
	r.writePlain("✓ Logged in as %s\n", sess.Username("unknown user"))
	return r.writePlain("API: %s\n", r.cfg().API.BaseURL)
}

// credentials reads --username and --password, prompting for any that are missing.
// The password is read without echo when input is a terminal.
func (r *Runner) credentials(cmd *cli.Command) (string, string, error) {
	username := cmd.String("username")
	password := cmd.String("password")

	if username != "" && password != "" {
		return username, password, nil
	}

	in := bufio.NewReader(r.input)
	var err error
	if username == "" {
		if username, err = prompt(r.output, in, "Username: "); err != nil {
			return "", "", err
		}
		username = strings.TrimSpace(username)
	}
	if password == "" {
		if password, err = r.promptPassword(in); err != nil {
			return "", "", err
		}
	}

	if username == "" || password == "" {
		return "", "", fmt.Errorf("%w: username and password are required", shared.ErrMissingArgument)
	}
	return username, password, nil
}

func (r *Runner) promptPassword(in *bufio.Reader) (string, error) {
	f, ok := r.input.(*os.File)
	if !ok || !term.IsTerminal(f.Fd()) {
		return prompt(r.output, in, "Password: ")
	}

	fmt.Fprint(r.output, "Password: ")
	secret, err := term.ReadPassword(f.Fd())
	fmt.Fprintln(r.output)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(secret), nil
}

// prompt reads one line, dropping only the line terminator.
func prompt(w io.Writer, in *bufio.Reader, label string) (string, error) {
	fmt.Fprint(w, label)
	line, err := in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
