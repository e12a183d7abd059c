// intstack is the command-line client for the stack service. Failed
// operations exit with the boundary error code (34 for a full stack, 22 for
// a malformed request, 12 when a resize exceeds the allocation limit); an
// empty pop prints NULL and exits 0.
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshibkova/intstack/pkg/client"
	"github.com/dshibkova/intstack/pkg/device"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(reportError(err))
	}
}

// exitError carries an exit code for failures whose message has already
// been printed.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return "" }

// reportError prints the user-facing message for err (unless it was
// already printed) and returns the process exit code.
func reportError(err error) int {
	var silent *exitError
	if errors.As(err, &silent) {
		return silent.code
	}

	var devErr *device.Error
	switch {
	case errors.Is(err, device.ErrRange):
		fmt.Println("ERROR: stack is full")
		return device.ErrRange.Code
	case errors.As(err, &devErr):
		fmt.Fprintf(os.Stderr, "error: %s\n", devErr.Message)
		return devErr.Code
	case errors.Is(err, client.ErrNotPresent):
		fmt.Fprintln(os.Stderr, "error: stack device not present")
		return 1
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
}

func newRootCommand() *cobra.Command {
	var (
		host    string
		port    int
		timeout time.Duration
		apiKey  string
		c       *client.Client
	)

	cmd := &cobra.Command{
		Use:           "intstack",
		Short:         "Client for the shared integer stack service",
		SilenceUsage:  true,
		SilenceErrors: true,
		// The presence probe runs before every operation: an absent
		// service fails fast instead of surfacing as an opaque
		// per-operation error.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch cmd.Name() {
			case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
				return nil
			}
			c = client.New(&client.Config{
				Host:    host,
				Port:    port,
				Timeout: timeout,
				APIKey:  apiKey,
			})
			if err := c.Ping(); err != nil {
				return err
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&host, "host", "localhost", "Server host address")
	cmd.PersistentFlags().IntVar(&port, "port", 8080, "Server port")
	cmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	cmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key for auth-enabled servers")

	cmd.AddCommand(
		newSetSizeCommand(&c),
		newPushCommand(&c),
		newPopCommand(&c),
		newUnwindCommand(&c),
		newStatsCommand(&c),
	)
	return cmd
}

func newSetSizeCommand(c **client.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "set-size <size>",
		Short: "Resize the stack; shrinking discards the newest elements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.ParseInt(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid size %q", args[0])
			}
			if n <= 0 {
				fmt.Println("ERROR: size should be > 0")
				return &exitError{code: 1}
			}
			return (*c).SetSize(int32(n))
		},
	}
}

func newPushCommand(c **client.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "push <value>",
		Short: "Push a value onto the stack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.ParseInt(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid value %q", args[0])
			}
			return (*c).Push(int32(v))
		},
	}
}

func newPopCommand(c **client.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "pop",
		Short: "Pop the top value; prints NULL when the stack is empty",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, ok, err := (*c).Pop()
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("NULL")
				return nil
			}
			fmt.Println(v)
			return nil
		},
	}
}

func newUnwindCommand(c **client.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "unwind",
		Short: "Pop and print every value until the stack is empty",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for {
				v, ok, err := (*c).Pop()
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
				fmt.Println(v)
			}
		},
	}
}

func newStatsCommand(c **client.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the current depth and capacity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			depth, capacity, err := (*c).Stats()
			if err != nil {
				return err
			}
			fmt.Printf("depth: %d\ncapacity: %d\n", depth, capacity)
			return nil
		},
	}
}
