package command_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitex-editor/vitex/internal/command"
	"github.com/vitex-editor/vitex/internal/engine/document"
)

func TestPipelineInsertModeTypesDirectly(t *testing.T) {
	doc := document.New(document.WithContent(""))
	kms := command.NewKeymaps()

	p := command.NewPipeline(kms, doc)
	require.NoError(t, p.SetMode(command.ModeInsert))

	require.NoError(t, p.Dispatch("h"))
	require.NoError(t, p.Dispatch("i"))
	assert.Equal(t, "hi", doc.Text())
}

func TestPipelineInsertRunComposesIntoOneUndoStep(t *testing.T) {
	doc := document.New(document.WithContent(""))
	kms := command.NewKeymaps()
	p := command.NewPipeline(kms, doc)

	require.NoError(t, p.SetMode(command.ModeInsert))
	for _, k := range []command.Key{"h", "e", "l", "l", "o"} {
		require.NoError(t, p.Dispatch(k))
	}
	require.NoError(t, p.SetMode(command.ModeNormal))
	assert.Equal(t, "hello", doc.Text())

	require.NoError(t, doc.Undo())
	assert.Equal(t, "", doc.Text())
}

func TestPipelineNormalModeDispatchesBoundCommand(t *testing.T) {
	doc := document.New(document.WithContent("hello"))
	kms := command.NewKeymaps()
	invoked := false
	kms.For(command.ModeNormal).Bind([]command.Key{"x"}, command.Command{
		Name: "noop",
		Fn: func(ctx *command.Context) error {
			invoked = true
			return nil
		},
	})

	p := command.NewPipeline(kms, doc)
	require.NoError(t, p.Dispatch("x"))
	assert.True(t, invoked)
}

func TestPipelineOnNextKeyInterceptsDispatch(t *testing.T) {
	doc := document.New(document.WithContent("hello"))
	kms := command.NewKeymaps()
	var captured command.Key
	kms.For(command.ModeNormal).Bind([]command.Key{"f"}, command.Command{
		Name: "find-char",
		Fn: func(ctx *command.Context) error {
			ctx.State.SetOnNextKey(func(key command.Key) (bool, bool) {
				captured = key
				return true, false
			})
			return nil
		},
	})

	p := command.NewPipeline(kms, doc)
	require.NoError(t, p.Dispatch("f"))
	require.NoError(t, p.Dispatch("l"))
	assert.Equal(t, command.Key("l"), captured)
}
