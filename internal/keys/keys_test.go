package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap_Navigation(t *testing.T) {
	km := DefaultKeyMap()

	assert.Equal(t, []string{"k", "up"}, km.Up.Keys())
	assert.Equal(t, []string{"j", "down"}, km.Down.Keys())
	assert.Equal(t, []string{"n", "l", "right"}, km.NextPage.Keys())
	assert.Equal(t, []string{"p", "h", "left"}, km.PrevPage.Keys())
}

func TestDefaultKeyMap_QuitIncludesCtrlC(t *testing.T) {
	km := DefaultKeyMap()
	assert.Contains(t, km.Quit.Keys(), "ctrl+c")
}

func TestDefaultKeyMap_NoOverlapInBrowsingKeys(t *testing.T) {
	km := DefaultKeyMap()
	bindings := [][]string{
		km.Up.Keys(), km.Down.Keys(), km.Top.Keys(), km.Bottom.Keys(),
		km.NextPage.Keys(), km.PrevPage.Keys(), km.Filter.Keys(),
		km.Mark.Keys(), km.Sort.Keys(), km.SortDir.Keys(),
		km.Undo.Keys(), km.Redo.Keys(), km.DismissToast.Keys(),
		km.PauseToast.Keys(), km.StatusBar.Keys(), km.Quit.Keys(),
	}

	seen := map[string]bool{}
	for _, keys := range bindings {
		for _, k := range keys {
			require.False(t, seen[k], "key %q bound twice", k)
			seen[k] = true
		}
	}
}

func TestHelpLine(t *testing.T) {
	km := DefaultKeyMap()

	line := HelpLine(km.Down, km.Quit)
	assert.Equal(t, "j/↓ move down · q quit", line)
}

func TestHelpLine_Empty(t *testing.T) {
	assert.Equal(t, "", HelpLine())
}
