package command_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitex-editor/vitex/internal/command"
)

func sortSignature() command.Signature {
	return command.Signature{
		MinPositionals: 0,
		MaxPositionals: 0,
		RawAfter:       -1,
		Flags: []command.Flag{
			{Name: "reverse", Alias: 'r'},
		},
	}
}

func TestParseArgsBooleanFlagLonghand(t *testing.T) {
	args, err := command.ParseArgs("--reverse", sortSignature(), true, nil)
	require.NoError(t, err)
	assert.True(t, args.HasFlag("reverse"))
	assert.Equal(t, 0, args.Len())
}

func TestParseArgsBooleanFlagShorthand(t *testing.T) {
	args, err := command.ParseArgs("-r", sortSignature(), true, nil)
	require.NoError(t, err)
	assert.True(t, args.HasFlag("reverse"))
}

func TestParseArgsUnknownFlagErrorsWhenValidating(t *testing.T) {
	_, err := command.ParseArgs("--bogus", sortSignature(), true, nil)
	require.Error(t, err)
}

func toggleOptionSignature() command.Signature {
	return command.Signature{MinPositionals: 1, MaxPositionals: -1, RawAfter: 1}
}

func TestParseArgsRawAfterTreatsLaterFlagsAsLiteral(t *testing.T) {
	args, err := command.ParseArgs("foo --bar", toggleOptionSignature(), true, nil)
	require.NoError(t, err)
	require.Equal(t, 2, args.Len())
	assert.Equal(t, "foo", args.Get(0))
	assert.Equal(t, "--bar", args.Get(1))
}

func TestParseArgsRawAfterOnePositionalBeforeCutoff(t *testing.T) {
	args, err := command.ParseArgs("foo bar baz", toggleOptionSignature(), true, nil)
	require.NoError(t, err)
	require.Equal(t, 2, args.Len())
	assert.Equal(t, "foo", args.Get(0))
	assert.Equal(t, "bar baz", args.Get(1))
}

func TestParseArgsPositionalCountEnforced(t *testing.T) {
	sig := command.Signature{MinPositionals: 0, MaxPositionals: 1, RawAfter: -1}
	_, err := command.ParseArgs("a.txt b.txt", sig, true, nil)
	require.Error(t, err)
}

func TestParseArgsExpandsExpandableTokens(t *testing.T) {
	sig := command.Signature{MinPositionals: 0, MaxPositionals: -1, RawAfter: -1}
	expand := func(tok command.Token) (string, error) {
		if tok.Kind == command.TokenExpansion && tok.ExpansionKind == command.ExpansionVariable {
			return "EXPANDED", nil
		}
		return tok.Content, nil
	}
	args, err := command.ParseArgs("echo %{cursor_line}", sig, true, expand)
	require.NoError(t, err)
	require.Equal(t, 2, args.Len())
	assert.Equal(t, "EXPANDED", args.Get(1))
}
