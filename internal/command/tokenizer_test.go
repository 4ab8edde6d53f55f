package command_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitex-editor/vitex/internal/command"
)

func TestSplitCompleteCommandWhenNoArgsTyped(t *testing.T) {
	cmd, rest, complete := command.Split("write")
	assert.Equal(t, "write", cmd)
	assert.Equal(t, "", rest)
	assert.True(t, complete)
}

func TestSplitNotCompleteOnceArgsStart(t *testing.T) {
	cmd, rest, complete := command.Split("write file.txt")
	assert.Equal(t, "write", cmd)
	assert.Equal(t, "file.txt", rest)
	assert.False(t, complete)
}

func TestSplitCompleteCommandWhenTrailingSpace(t *testing.T) {
	_, _, complete := command.Split("write ")
	assert.False(t, complete)
}

func TestTokenizeUnquotedWords(t *testing.T) {
	toks, err := command.Tokenize("hello world", true)
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, "hello", toks[0].Content)
	assert.Equal(t, "world", toks[1].Content)
	assert.Equal(t, command.TokenUnquoted, toks[0].Kind)
}

func TestTokenizeSingleQuoteIsLiteral(t *testing.T) {
	toks, err := command.Tokenize(`'a b.txt'`, true)
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, "a b.txt", toks[0].Content)
	assert.Equal(t, command.TokenQuoted, toks[0].Kind)
}

func TestTokenizeSingleQuoteDoubledEscapesQuote(t *testing.T) {
	toks, err := command.Tokenize(`'hello '' world'`, true)
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, "hello ' world", toks[0].Content)
}

func TestTokenizeDoubleQuotedIsExpandable(t *testing.T) {
	toks, err := command.Tokenize(`"line: #%{cursor_line}"`, true)
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, command.TokenExpand, toks[0].Kind)
}

func TestTokenizePercentExpansionVariable(t *testing.T) {
	toks, err := command.Tokenize("echo %{hello world}", true)
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, command.TokenExpansion, toks[1].Kind)
	assert.Equal(t, command.ExpansionVariable, toks[1].ExpansionKind)
	assert.Equal(t, "hello world", toks[1].Content)
}

func TestTokenizePercentExpansionNestedBraces(t *testing.T) {
	toks, err := command.Tokenize("echo %{hello {x} world}", true)
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, "hello {x} world", toks[1].Content)
}

func TestTokenizePercentUnicodeExpansion(t *testing.T) {
	toks, err := command.Tokenize("%u{25CF}", true)
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, command.ExpansionUnicode, toks[0].ExpansionKind)
	r, err := command.FormatUnicodeExpansion(toks[0].Content)
	require.NoError(t, err)
	assert.Equal(t, rune(0x25CF), r)
}

func TestTokenizeUnterminatedQuoteErrorsWhenValidating(t *testing.T) {
	_, err := command.Tokenize(`'unterminated`, true)
	require.Error(t, err)
}

func TestTokenizeUnterminatedQuoteLenientWhenNotValidating(t *testing.T) {
	toks, err := command.Tokenize(`'unterminated`, false)
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.False(t, toks[0].IsTerminated)
}

func TestTokenizerRestReturnsRawRemainder(t *testing.T) {
	tz := command.NewTokenizer("  foo bar baz", true)
	tok, ok := tz.Rest()
	require.True(t, ok)
	assert.Equal(t, command.TokenRaw, tok.Kind)
	assert.Equal(t, "foo bar baz", tok.Content)
}
