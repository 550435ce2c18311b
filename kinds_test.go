package taskweaver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildKind(t *testing.T, k Kind, def Definition) Task {
	t.Helper()
	task, err := k.Build(def)
	require.NoError(t, err)
	return task
}

func Test_Kinds(t *testing.T) {
	t.Run("should accept a well formed run definition", func(t *testing.T) {
		task := buildKind(t, commandKind{}, Definition{
			Params:     []string{"run", "make", "build"},
			Attributes: map[string]string{"dir": "src", "env.GOOS": "linux"},
		})
		cmd, ok := task.(*CommandTask)
		require.True(t, ok)
		assert.Equal(t, []string{"make", "build"}, cmd.Command)
		assert.Equal(t, "src", cmd.Dir)
		assert.Equal(t, map[string]string{"GOOS": "linux"}, cmd.Env)
		assert.Empty(t, Check([]Task{task}))
		assert.Equal(t, "run make build", task.String())
	})

	t.Run("should report a run definition without a command", func(t *testing.T) {
		task := buildKind(t, commandKind{}, Definition{Params: []string{"run"}})
		assert.Equal(t, ErrorList{"run in def [run]: command failed min=1."}, Check([]Task{task}))
	})

	t.Run("should report an invalid env key", func(t *testing.T) {
		task := buildKind(t, commandKind{}, Definition{
			Params:     []string{"run", "x"},
			Attributes: map[string]string{"env.1BAD": "v"},
		})
		errs := Check([]Task{task})
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0], "failed envkey")
	})

	t.Run("should refuse attributes a run task cannot hold", func(t *testing.T) {
		_, err := commandKind{}.Build(Definition{
			Params:     []string{"run", "x"},
			Attributes: map[string]string{"retries": "3"},
		})
		assert.True(t, errors.Is(err, ErrShapeMismatch))
	})

	t.Run("should require exactly two copy arguments", func(t *testing.T) {
		good := buildKind(t, copyKind{}, Definition{Params: []string{"copy", "a", "b"}})
		assert.Empty(t, Check([]Task{good}))
		assert.Equal(t, "a", good.(*CopyTask).Src())
		assert.Equal(t, "b", good.(*CopyTask).Dst())

		bad := buildKind(t, copyKind{}, Definition{Params: []string{"cp", "a"}})
		assert.Equal(t, ErrorList{"copy in def [cp a]: args failed len=2."}, Check([]Task{bad}))
		assert.Equal(t, "", bad.(*CopyTask).Dst())
	})

	t.Run("should refuse any attribute on copy and echo", func(t *testing.T) {
		def := Definition{Params: []string{"echo", "hi"}, Attributes: map[string]string{"b": "1", "a": "2"}}
		_, err := echoKind{}.Build(def)
		require.ErrorIs(t, err, ErrShapeMismatch)
		assert.Contains(t, err.Error(), "attributes a, b")

		def.Params = []string{"copy", "a", "b"}
		_, err = copyKind{}.Build(def)
		assert.ErrorIs(t, err, ErrShapeMismatch)
	})

	t.Run("should require echo text", func(t *testing.T) {
		task := buildKind(t, echoKind{}, Definition{Params: []string{"echo"}})
		assert.Equal(t, ErrorList{"echo in def [echo]: text failed min=1."}, Check([]Task{task}))
	})

	t.Run("should refuse empty params", func(t *testing.T) {
		for _, k := range []Kind{commandKind{}, copyKind{}, echoKind{}} {
			_, err := k.Build(Definition{})
			assert.ErrorIs(t, err, ErrShapeMismatch)
		}
	})
}

func Test_ShapeValidator(t *testing.T) {
	t.Run("should register the envkey rule", func(t *testing.T) {
		v := shapeValidator()
		require.NotNil(t, v)
		assert.NoError(t, v.Var("GOOS", "envkey"))
		assert.Error(t, v.Var("1BAD", "envkey"))
	})

	t.Run("should format shape messages with kind and params", func(t *testing.T) {
		assert.Equal(t, "copy in def [cp a]: args failed len=2.", shapeMessage("copy", []string{"cp", "a"}, "args failed len=2"))
	})
}

func Test_Registry(t *testing.T) {
	t.Run("should look up kinds by any name ignoring case", func(t *testing.T) {
		reg := DefaultRegistry()
		for _, name := range []string{"run", "EXEC", "copy", "Cp", "echo"} {
			_, ok := reg.get(name)
			assert.True(t, ok, name)
		}
		_, ok := reg.get("build")
		assert.False(t, ok)
	})

	t.Run("should ignore nil kinds", func(t *testing.T) {
		reg := NewRegistry()
		reg.Register(nil)
		assert.Empty(t, reg.byName)
	})
}
