package cmd

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/telekom/gcctl/pkg/gcctl/messaging"
)

func NewMessageCommand() *cobra.Command {
	var conversationID, communicationID string

	cmd := &cobra.Command{
		Use:   "message",
		Short: "Send messages into a conversation interactively",
		Long: `Prompts for the conversation id and the agent communication id, then sends
every non-blank input line as a text message. End the session with Ctrl+D.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			c, err := rt.buildClient()
			if err != nil {
				return err
			}
			in, err := messaging.NewInput(rt.input, rt.Writer())
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			// Closing the input unblocks a pending read once a signal arrives.
			closeInput := sync.OnceValue(in.Close)
			defer closeInput()
			go func() {
				<-ctx.Done()
				_ = closeInput()
			}()

			session := messaging.NewSession(messaging.NewClientSender(c), in, rt.Writer(),
				messaging.WithIDs(conversationID, communicationID),
				messaging.WithLogger(rt.Logger().Named("message")),
			)
			return session.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&conversationID, "conversation-id", "", "Conversation id; prompted for when empty")
	cmd.Flags().StringVar(&communicationID, "communication-id", "", "Agent communication id; prompted for when empty")
	return cmd
}
