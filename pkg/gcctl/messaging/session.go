package messaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/telekom/gcctl/pkg/gcctl/client"
	"github.com/telekom/gcctl/pkg/metrics"
)

const (
	promptConversationID  = "Enter conversationId: "
	promptCommunicationID = "Enter communicationId: "
	promptMessage         = "> "

	// ClosingHint is printed when the session ends; the interaction itself
	// stays open until an agent wraps it up.
	ClosingHint = "End and wrap-up the interaction from the UI"
)

type State int

const (
	AwaitingConversationID State = iota
	AwaitingCommunicationID
	ReadyForInput
	SendingMessage
	Closed
)

func (s State) String() string {
	switch s {
	case AwaitingConversationID:
		return "AwaitingConversationID"
	case AwaitingCommunicationID:
		return "AwaitingCommunicationID"
	case ReadyForInput:
		return "ReadyForInput"
	case SendingMessage:
		return "SendingMessage"
	case Closed:
		return "Closed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Sender delivers one text message into a conversation.
type Sender interface {
	SendMessage(ctx context.Context, conversationID, communicationID, text string) (*client.Message, error)
}

type clientSender struct {
	c *client.Client
}

func NewClientSender(c *client.Client) Sender {
	return clientSender{c: c}
}

func (s clientSender) SendMessage(ctx context.Context, conversationID, communicationID, text string) (*client.Message, error) {
	return s.c.Conversations().SendMessage(ctx, conversationID, communicationID, text)
}

type Session struct {
	sender Sender
	in     LineReader
	out    io.Writer
	log    *zap.SugaredLogger

	state           State
	conversationID  string
	communicationID string
	sent            int
	failed          int
}

type Option func(*Session)

// WithIDs presets the identifiers; a preset id is not prompted for.
func WithIDs(conversationID, communicationID string) Option {
	return func(s *Session) {
		s.conversationID = strings.TrimSpace(conversationID)
		s.communicationID = strings.TrimSpace(communicationID)
	}
}

func WithLogger(log *zap.SugaredLogger) Option {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

func NewSession(sender Sender, in LineReader, out io.Writer, opts ...Option) *Session {
	s := &Session{
		sender: sender,
		in:     in,
		out:    out,
		log:    zap.NewNop().Sugar(),
		state:  AwaitingConversationID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) State() State {
	return s.state
}

// Sent returns the number of messages delivered.
func (s *Session) Sent() int {
	return s.sent
}

// Failed returns the number of messages that could not be delivered.
func (s *Session) Failed() int {
	return s.failed
}

// Run drives the session until end of input or ctx is cancelled, both of
// which end it cleanly. Any other read error is returned.
func (s *Session) Run(ctx context.Context) error {
	var err error
	if s.conversationID == "" {
		s.state = AwaitingConversationID
		if s.conversationID, err = s.readID(ctx, promptConversationID); err != nil {
			return s.finish(ctx, err)
		}
	}
	if s.communicationID == "" {
		s.state = AwaitingCommunicationID
		if s.communicationID, err = s.readID(ctx, promptCommunicationID); err != nil {
			return s.finish(ctx, err)
		}
	}

	s.state = ReadyForInput
	s.log.Infow("Message session ready", "conversationId", s.conversationID, "communicationId", s.communicationID)
	s.printf("\nEnter messages to send (press Ctrl+D when finished):\n")
	for {
		line, err := s.in.ReadLine(promptMessage)
		if err != nil {
			return s.finish(ctx, err)
		}
		if ctx.Err() != nil {
			return s.finish(ctx, ctx.Err())
		}
		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}
		s.send(ctx, text)
	}
}

func (s *Session) readID(ctx context.Context, prompt string) (string, error) {
	for {
		line, err := s.in.ReadLine(prompt)
		if err != nil {
			return "", err
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if id := strings.TrimSpace(line); id != "" {
			return id, nil
		}
	}
}

func (s *Session) send(ctx context.Context, text string) {
	s.state = SendingMessage
	defer func() { s.state = ReadyForInput }()

	s.printf("Sending message: %q\n", text)
	msg, err := client.RetryOnExpiry(ctx, func(ctx context.Context) (*client.Message, error) {
		return s.sender.SendMessage(ctx, s.conversationID, s.communicationID, text)
	})
	if err != nil {
		s.failed++
		metrics.MessagesSent.WithLabelValues("failure").Inc()
		s.log.Errorw("Failed to send message", "status", client.StatusCode(err), "error", err)
		s.printf("Failed to send message: %v\n", err)
		return
	}
	s.sent++
	metrics.MessagesSent.WithLabelValues("success").Inc()
	s.log.Debugw("Message sent", "id", msg.ID)
	s.printf("Message sent (ID: %s)\n", msg.ID)
}

func (s *Session) finish(ctx context.Context, err error) error {
	reachedInput := s.state >= ReadyForInput
	s.state = Closed
	if errors.Is(err, io.EOF) || ctx.Err() != nil {
		if reachedInput {
			s.printf("\n%s\n", ClosingHint)
		}
		s.log.Infow("Message session closed", "sent", s.sent, "failed", s.failed)
		return nil
	}
	return fmt.Errorf("message session: %w", err)
}

func (s *Session) printf(format string, args ...any) {
	if s.out != nil {
		_, _ = fmt.Fprintf(s.out, format, args...)
	}
}
