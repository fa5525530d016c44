package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scorebook/internal/config"
	"github.com/roach88/scorebook/internal/input"
)

func TestInputErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not found", fmt.Errorf("discovering input: %w", input.ErrInputNotFound), ErrCodeNotFound},
		{"no files", fmt.Errorf("discovering input: %w", input.ErrNoInputFiles), ErrCodeNoFiles},
		{"config", &config.ConfigError{Code: config.ErrCodeInvalid, Message: "bad"}, ErrCodeConfig},
		{"other", errors.New("boom"), ErrCodeGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, inputErrorCode(tt.err))
		})
	}
}

func TestCommandError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf, Verbose: true}

	err := commandError(formatter, ErrCodeSink, "failed to open output", errors.New("permission denied"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error [E005]: failed to open output")
	assert.Contains(t, buf.String(), "Details: permission denied")
}
