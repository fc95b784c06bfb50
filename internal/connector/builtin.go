// ABOUTME: Built-in connector implementations and the factory that builds them by kind
// ABOUTME: console processes messages by printing them; receiver is inbound-only

package connector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"

	"github.com/fatih/color"

	"github.com/smartnetguru/mokai/internal/message"
)

// ErrUnknownKind indicates a connector kind the factory cannot build.
var ErrUnknownKind = errors.New("unknown connector kind")

// Connector kinds.
const (
	KindConsole  = "console"
	KindReceiver = "receiver"
)

// Kinds lists every connector kind Build understands.
func Kinds() []string {
	return []string{KindConsole, KindReceiver}
}

// Console is a processor that prints messages. It supports the configured
// message types, or every type when none are configured.
type Console struct {
	types []string

	mu  sync.Mutex
	out io.Writer
}

// NewConsole creates a console connector writing to out.
func NewConsole(out io.Writer, types ...string) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{types: types, out: out}
}

func (c *Console) Kind() string { return KindConsole }

func (c *Console) Supports(msg *message.Message) bool {
	if len(c.types) == 0 {
		return true
	}
	return slices.Contains(c.types, msg.Type)
}

func (c *Console) Process(ctx context.Context, msg *message.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	line := fmt.Sprintf("%s %s %s -> %s %s\n",
		color.CyanString("[%s]", msg.Type),
		color.HiBlackString(msg.ID),
		msg.Source,
		msg.Destination,
		msg.Body,
	)

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := io.WriteString(c.out, line)
	return err
}

// Receiver is an inbound-only connector. It produces messages but has no
// processor capability, so routers never pick it.
type Receiver struct{}

func (Receiver) Kind() string { return KindReceiver }

// Build creates a connector of the given kind. types restricts the message
// types a processor supports.
func Build(kind string, types []string, out io.Writer) (Connector, error) {
	switch kind {
	case KindConsole:
		return NewConsole(out, types...), nil
	case KindReceiver:
		return Receiver{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}
