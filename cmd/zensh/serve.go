// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zensh/zensh/internal/issue"
	"github.com/zensh/zensh/internal/sshserver"
)

type serveFlags struct {
	host    string
	port    int
	hostKey string
}

func newServeCommand(app *App) *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the shell over SSH",
		Long: `Serve the shell over SSH. Every connection gets its own session with
its own working directory and undo history over the same commands.

A fresh access token is printed at startup; use it as the SSH password.
Public key authentication is not accepted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, app, flags)
		},
	}
	cmd.Flags().StringVar(&flags.host, "host", "", "bind address (default server.host)")
	cmd.Flags().IntVar(&flags.port, "port", 0, "listen port (default server.port)")
	cmd.Flags().StringVar(&flags.hostKey, "host-key", "", "PEM host key, generated when missing (default: ephemeral)")
	return cmd
}

func runServe(cmd *cobra.Command, app *App, flags serveFlags) error {
	ctx := cmd.Context()
	if err := app.bootstrap(ctx); err != nil {
		return err
	}

	cfg := sshserver.Config{
		Host:        sshserver.HostAddress(app.cfg.Server.Host),
		Port:        app.cfg.Server.Port,
		HostKeyPath: flags.hostKey,
		TokenTTL:    app.cfg.Server.TokenTTL.Std(),
	}
	if cmd.Flags().Changed("host") {
		cfg.Host = sshserver.HostAddress(flags.host)
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = flags.port
	}

	// Sessions write to their own channel; the template carries the rest.
	session := app.sessionOptions()
	session.Stdout, session.Stderr = nil, nil

	srv := sshserver.New(cfg, app.registry, session, sshserver.WithLogger(app.logger))
	if err := srv.Start(ctx); err != nil {
		if rendered, renderErr := issue.Get(issue.ServerStartFailedId).Render(app.cfg.Shell.MarkdownStyle); renderErr == nil {
			fmt.Fprint(app.stderr, rendered)
		}
		return &ExitError{Code: 1, Err: err}
	}

	info, err := srv.ConnectionInfo("cli")
	if err != nil {
		_ = srv.Stop()
		return &ExitError{Code: 1, Err: err}
	}
	out := app.stdout
	fmt.Fprintf(out, "%s %s\n", TitleStyle.Render("zensh SSH server listening on"), CmdStyle.Render(srv.Address()))
	fmt.Fprintf(out, "%s %s\n", SubtitleStyle.Render("Connect with:"), CmdStyle.Render(info.SSHCommand()))
	fmt.Fprintf(out, "%s %s %s\n", SubtitleStyle.Render("Password:"), SuccessStyle.Render(info.Token.String()),
		SubtitleStyle.Render("(valid until "+info.ExpireAt.Format("15:04:05")+")"))

	select {
	case <-ctx.Done():
	case err := <-srv.Err():
		_ = srv.Stop()
		return &ExitError{Code: 1, Err: err}
	}
	if err := srv.Stop(); err != nil {
		return &ExitError{Code: 1, Err: err}
	}
	return nil
}
