package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"stockadvisor/internal/agents"
	"stockadvisor/internal/bootstrap"
)

// advisor is the part of the orchestrator the REPL drives.
type advisor interface {
	Run(ctx context.Context, input string) agents.Result
}

func newChatCmd() *cobra.Command {
	var once string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the advisor in the terminal",
		Long:  "Interactive session with the advisor. Logs go to stderr; stdout carries only the conversation.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			c := bootstrap.NewContainer()
			defer c.Shutdown()
			if err := c.InitAdvisorOnly(ctx); err != nil {
				return err
			}

			if once != "" {
				res := c.Advisor.Run(ctx, once)
				fmt.Fprintln(cmd.OutOrStdout(), res.String())
				return nil
			}
			return runChat(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), c.Advisor)
		},
	}

	cmd.Flags().StringVar(&once, "once", "", "answer a single query and exit")
	return cmd
}

// runChat reads queries line by line until exit, quit, EOF or cancellation.
func runChat(ctx context.Context, in io.Reader, out io.Writer, a advisor) error {
	fmt.Fprintln(out, "Welcome to the Multi-Agent Stock Advisor!")
	fmt.Fprintln(out, "Type 'exit' to quit.")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\nEnter a stock symbol or query: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}

		res := a.Run(ctx, line)
		fmt.Fprintf(out, "\nAgent: %s\n", res.String())

		if ctx.Err() != nil {
			return nil
		}
	}
}
