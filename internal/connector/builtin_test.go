// ABOUTME: Tests for built-in connectors and the processor capability lookup
// ABOUTME: Covers console support filtering, output, and the factory

package connector

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartnetguru/mokai/internal/message"
)

func TestConsole_Supports(t *testing.T) {
	all := NewConsole(nil)
	smsOnly := NewConsole(nil, "sms")

	sms := message.New("sms")
	mail := message.New("email")

	assert.True(t, all.Supports(sms))
	assert.True(t, all.Supports(mail))
	assert.True(t, smsOnly.Supports(sms))
	assert.False(t, smsOnly.Supports(mail))
}

func TestConsole_Process(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	c := NewConsole(&buf)

	msg := message.New("sms")
	msg.Source = "1234"
	msg.Destination = "sms-gw"
	msg.Body = "hi"

	require.NoError(t, c.Process(context.Background(), msg))
	assert.Contains(t, buf.String(), "[sms]")
	assert.Contains(t, buf.String(), "1234 -> sms-gw hi")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Process(ctx, msg), context.Canceled)
}

func TestService_Processor(t *testing.T) {
	withProcessor := NewService("out", NewConsole(nil))
	p, ok := withProcessor.Processor()
	require.True(t, ok)
	assert.Equal(t, KindConsole, p.Kind())

	inboundOnly := NewService("in", Receiver{})
	_, ok = inboundOnly.Processor()
	assert.False(t, ok)
	assert.Equal(t, KindReceiver, inboundOnly.Kind())

	// Literal services never gain the capability.
	literal := &Service{ID: "lit", Connector: NewConsole(nil)}
	_, ok = literal.Processor()
	assert.False(t, ok)
}

func TestBuild(t *testing.T) {
	conn, err := Build(KindConsole, []string{"sms"}, nil)
	require.NoError(t, err)
	assert.Equal(t, KindConsole, conn.Kind())

	conn, err = Build(KindReceiver, nil, nil)
	require.NoError(t, err)
	_, isProcessor := conn.(Processor)
	assert.False(t, isProcessor)

	_, err = Build("smpp", nil, nil)
	assert.ErrorIs(t, err, ErrUnknownKind)
}
