package cli

import (
	"errors"
	"strings"
	"testing"
)

func TestConfigError(t *testing.T) {
	err := NewConfigError("conduit.yaml", "unknown provider")
	if !strings.Contains(err.Error(), "conduit.yaml") || !strings.Contains(err.Error(), "unknown provider") {
		t.Errorf("Error() = %q", err.Error())
	}

	bare := NewConfigError("", "no providers configured")
	if strings.Contains(bare.Error(), "in :") {
		t.Errorf("pathless error renders badly: %q", bare.Error())
	}
}

func TestCommandErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewCommandError("chat", cause)

	if !errors.Is(err, cause) {
		t.Error("CommandError must unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "chat") {
		t.Errorf("Error() = %q", err.Error())
	}
}
