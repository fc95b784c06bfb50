// ABOUTME: Acceptor predicates that filter which supported messages a connector takes
// ABOUTME: Field, pattern, path, and composite acceptors with evaluation errors

package acceptor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/smartnetguru/mokai/internal/message"
)

// ErrUnsupportedValue is returned when a field holds a value that cannot be
// compared as text (maps, slices, nil).
var ErrUnsupportedValue = errors.New("unsupported field value")

// Acceptor decides whether a message should be taken by a connector. An
// error means the acceptor could not decide.
type Acceptor interface {
	Accepts(msg *message.Message) (bool, error)
}

// Func adapts a plain function to the Acceptor interface.
type Func func(msg *message.Message) (bool, error)

// Accepts calls f(msg).
func (f Func) Accepts(msg *message.Message) (bool, error) {
	return f(msg)
}

func (f Func) String() string { return "func" }

// Always accepts every message.
type Always struct{}

func (Always) Accepts(*message.Message) (bool, error) { return true, nil }

func (Always) String() string { return "always" }

// Equals accepts messages whose field equals Value.
type Equals struct {
	Field string
	Value string
}

func (a Equals) Accepts(msg *message.Message) (bool, error) {
	v, err := fieldText(msg, a.Field)
	if err != nil {
		return false, err
	}
	return v == a.Value, nil
}

func (a Equals) String() string {
	return fmt.Sprintf("equals(%s=%q)", a.Field, a.Value)
}

// fieldText resolves a message field and renders scalar values as text.
func fieldText(msg *message.Message, field string) (string, error) {
	v, err := msg.Field(field)
	if err != nil {
		return "", err
	}
	switch val := v.(type) {
	case string:
		return val, nil
	case bool:
		return strconv.FormatBool(val), nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case fmt.Stringer:
		return val.String(), nil
	default:
		return "", fmt.Errorf("%w: field %q holds %T", ErrUnsupportedValue, field, v)
	}
}

// And accepts when every child accepts. The first child error aborts.
type And []Acceptor

func (a And) Accepts(msg *message.Message) (bool, error) {
	for _, child := range a {
		ok, err := child.Accepts(msg)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return len(a) > 0, nil
}

func (a And) String() string { return composite("and", a) }

// Or accepts when any child accepts. Child errors are returned only if no
// child accepts.
type Or []Acceptor

func (o Or) Accepts(msg *message.Message) (bool, error) {
	var errs []error
	for _, child := range o {
		ok, err := child.Accepts(msg)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			return true, nil
		}
	}
	return false, errors.Join(errs...)
}

func (o Or) String() string { return composite("or", o) }

// Not inverts its child. Errors pass through untouched.
type Not struct {
	Acceptor Acceptor
}

func (n Not) Accepts(msg *message.Message) (bool, error) {
	ok, err := n.Acceptor.Accepts(msg)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

func (n Not) String() string { return fmt.Sprintf("not(%v)", n.Acceptor) }

func composite(name string, children []Acceptor) string {
	parts := make([]string, len(children))
	for i, c := range children {
		parts[i] = fmt.Sprint(c)
	}
	return name + "(" + strings.Join(parts, ", ") + ")"
}
