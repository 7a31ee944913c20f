// taskctl is a command-line client for the taskhub API.
package main

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/grpc/status"

	"taskhub/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if st, ok := status.FromError(err); ok {
			fmt.Fprintf(os.Stderr, "taskctl: %s: %s\n", st.Code(), st.Message())
		} else {
			fmt.Fprintln(os.Stderr, "taskctl:", err)
		}
		os.Exit(1)
	}
}
