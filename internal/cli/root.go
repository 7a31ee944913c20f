// Package cli implements taskctl, a command-line client for the taskhub gRPC API.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	taskhubv1 "taskhub/api/taskhub/v1"
)

// Dialer opens a connection to addr. The returned func closes it.
type Dialer func(addr string) (grpc.ClientConnInterface, func() error, error)

// DialInsecure connects over plaintext gRPC.
func DialInsecure(addr string) (grpc.ClientConnInterface, func() error, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, err
	}
	return conn, conn.Close, nil
}

// app carries the resolved settings and clients for one command invocation.
type app struct {
	v      *viper.Viper
	dial   Dialer
	out    io.Writer
	conn   grpc.ClientConnInterface
	closer func() error
}

func (a *app) connect() error {
	if a.conn != nil {
		return nil
	}
	conn, closer, err := a.dial(a.v.GetString("addr"))
	if err != nil {
		return fmt.Errorf("dial %s: %w", a.v.GetString("addr"), err)
	}
	a.conn, a.closer = conn, closer
	return nil
}

func (a *app) close() {
	if a.closer != nil {
		_ = a.closer()
	}
}

// authed attaches the bearer token to ctx. Commands that need a user fail early without one.
func (a *app) authed(ctx context.Context) (context.Context, error) {
	token := strings.TrimSpace(a.v.GetString("token"))
	if token == "" {
		return nil, errors.New("no token: run `taskctl login` and set TASKHUB_TOKEN or pass --token")
	}
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token), nil
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) auth() taskhubv1.AuthServiceClient { return taskhubv1.NewAuthServiceClient(a.conn) }
func (a *app) workspaces() taskhubv1.WorkspaceServiceClient {
	return taskhubv1.NewWorkspaceServiceClient(a.conn)
}
func (a *app) projects() taskhubv1.ProjectServiceClient { return taskhubv1.NewProjectServiceClient(a.conn) }
func (a *app) tasks() taskhubv1.TaskServiceClient       { return taskhubv1.NewTaskServiceClient(a.conn) }

// NewRootCmd builds the taskctl command tree. Settings resolve from flags, then TASKHUB_* env vars.
func NewRootCmd(dial Dialer) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("TASKHUB")
	v.AutomaticEnv()
	v.SetDefault("addr", "localhost:8080")

	a := &app{v: v, dial: dial}
	cmd := &cobra.Command{
		Use:           "taskctl",
		Short:         "Command-line client for taskhub",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.out = cmd.OutOrStdout()
			return a.connect()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.close()
		},
	}
	cmd.PersistentFlags().String("addr", "", "gRPC server address (env TASKHUB_ADDR)")
	cmd.PersistentFlags().String("token", "", "access token (env TASKHUB_TOKEN)")
	_ = v.BindPFlag("addr", cmd.PersistentFlags().Lookup("addr"))
	_ = v.BindPFlag("token", cmd.PersistentFlags().Lookup("token"))

	cmd.AddCommand(
		newRegisterCmd(a),
		newLoginCmd(a),
		newMeCmd(a),
		newWorkspaceCmd(a),
		newProjectCmd(a),
		newTaskCmd(a),
	)
	return cmd
}

// Execute runs taskctl against a plaintext gRPC connection.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cmd := NewRootCmd(DialInsecure)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.ExecuteContext(ctx)
}
