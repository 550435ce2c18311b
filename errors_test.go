package taskweaver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Errors(t *testing.T) {
	t.Run("should include position and context in ParseError", func(t *testing.T) {
		err := NewParseError(Position{Line: 2, Column: 3}, "bad entry", "a\nbcd\ne")
		assert.Equal(t, "line 2, column 3", err.Pos.String())
		assert.Contains(t, err.Error(), "bad entry at line 2, column 3")
		assert.Contains(t, err.Context, "-> 2: bcd")
		assert.Contains(t, err.Context, "   1: a")
		assert.Contains(t, err.Context, "   3: e")
	})

	t.Run("should omit context when content is empty", func(t *testing.T) {
		err := NewParseError(Position{Line: 1, Column: 1}, "bad", "")
		assert.Equal(t, "bad at line 1, column 1", err.Error())
	})

	t.Run("should fall back to raw content for out of range lines", func(t *testing.T) {
		assert.Equal(t, "only", extractContext("only", Position{Line: 9, Column: 1}))
	})

	t.Run("should format UnknownCommandError like UnknownTask", func(t *testing.T) {
		err := &UnknownCommandError{Params: []string{"build", "target=x"}}
		assert.Equal(t, "Unknown command in def [build target=x].", err.Error())
	})
}
