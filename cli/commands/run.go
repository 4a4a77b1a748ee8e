package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tessera-ai/tessera-go/core"
	"github.com/tessera-ai/tessera-go/notebooks"
)

var (
	runInput   string
	runSession string
)

var runCmd = &cobra.Command{
	Use:   "run <notebook-id>",
	Short: "Run a notebook and stream the output",
	Long: `Run a notebook and stream its output to stdout as it is generated.

Delta content prints as it arrives. With --verbose, thinking events are
written to stderr as they happen.

Example:
  tessera run nb-123 --input "Summarize the latest results"`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runInput, "input", "", "input text for the run")
	runCmd.Flags().StringVar(&runSession, "session", "", "session ID to continue")
}

func runRun(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	svc := notebooks.New(client)
	stream, err := svc.RunStream(cmd.Context(), args[0], notebooks.RunParams{
		Input:     runInput,
		SessionID: runSession,
	})
	if err != nil {
		return err
	}
	defer stream.Close()

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	handlers := core.StreamHandlers{
		OnDelta: func(content string) {
			fmt.Fprint(out, content)
		},
	}
	if verbose {
		handlers.OnThinking = func(ev core.StreamEvent) {
			fmt.Fprintf(errOut, "[%s] %s\n", ev.Type, ev.Data)
		}
	}

	if _, err := stream.Subscribe(cmd.Context(), handlers); err != nil {
		return err
	}

	fmt.Fprintln(out)
	return nil
}
