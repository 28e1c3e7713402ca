package namespace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/roster/registry"
	"github.com/zjrosen/roster/selection"
)

func TestScope_ProvideAndUse(t *testing.T) {
	s := NewScope()
	reg := registry.New(registry.Options{})

	s.Provide("tabs", reg)

	got, err := s.Use("tabs")
	require.NoError(t, err)
	assert.Same(t, reg, got)
}

func TestScope_UseMissing(t *testing.T) {
	s := NewScope()

	_, err := s.Use("ghost")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotProvided)
}

func TestScope_ProvideReplaces(t *testing.T) {
	s := NewScope()
	first := registry.New(registry.Options{})
	second := registry.New(registry.Options{})

	s.Provide("tabs", first)
	s.Provide("tabs", second)

	got, err := s.Use("tabs")
	require.NoError(t, err)
	assert.Same(t, second, got)
}

func TestScope_MustUsePanicsOnMissing(t *testing.T) {
	s := NewScope()

	assert.Panics(t, func() { s.MustUse("ghost") })
}

func TestScope_Release(t *testing.T) {
	s := NewScope()
	s.Provide("tabs", registry.New(registry.Options{}))

	s.Release("tabs")

	_, err := s.Use("tabs")
	assert.ErrorIs(t, err, ErrNotProvided)
}

func TestScope_Namespaces(t *testing.T) {
	s := NewScope()
	s.Provide("tabs", 1)
	s.Provide("accordion", 2)
	s.Provide("menu", 3)

	assert.Equal(t, []string{"accordion", "menu", "tabs"}, s.Namespaces())
}

func TestUse_Typed(t *testing.T) {
	s := NewScope()
	sel := selection.New(selection.Options{Multiple: true})
	s.Provide("tabs", sel)

	got, err := Use[*selection.Selection](s, "tabs")
	require.NoError(t, err)
	assert.Same(t, sel, got)

	_, err = Use[*registry.Registry](s, "tabs")
	require.Error(t, err, "wrong container type must not type-assert silently")

	_, err = Use[*selection.Selection](s, "ghost")
	assert.ErrorIs(t, err, ErrNotProvided)
}
