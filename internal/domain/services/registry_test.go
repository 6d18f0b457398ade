package services

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/chara/internal/domain/entities"
)

func mustCharacter(t *testing.T, name string) *entities.Character {
	t.Helper()
	c, err := entities.NewCharacter(name, "p")
	require.NoError(t, err)
	return c
}

func mustRoleCharacter(t *testing.T, name string, role entities.Role) *entities.RoleCharacter {
	t.Helper()
	c, err := entities.NewRoleCharacter(name, "p", role)
	require.NoError(t, err)
	return c
}

func TestRegistry_Add(t *testing.T) {
	r := NewRegistry()

	msg, err := r.Add(mustCharacter(t, "alice"))
	require.NoError(t, err)
	assert.Equal(t, "character alice added", msg)
	assert.Equal(t, 1, r.Len())

	_, err = r.Add(mustRoleCharacter(t, "alice", entities.RoleTutor))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateName))
	assert.Contains(t, err.Error(), `"alice"`)
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, entities.KindBasic, r.Get("alice").Kind())

	_, err = r.Add(nil)
	assert.True(t, errors.Is(err, entities.ErrTypeMismatch))
}

func TestRegistry_Add_TypedNil(t *testing.T) {
	tests := []struct {
		name    string
		persona entities.Persona
	}{
		{name: "nil character", persona: (*entities.Character)(nil)},
		{name: "nil role character", persona: (*entities.RoleCharacter)(nil)},
		{name: "role character without base", persona: &entities.RoleCharacter{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			_, err := r.Add(tt.persona)
			assert.True(t, errors.Is(err, entities.ErrTypeMismatch))
			assert.Equal(t, 0, r.Len())
		})
	}
}

func TestRegistry_Remove(t *testing.T) {
	r := NewRegistry()
	_, err := r.Add(mustCharacter(t, "alice"))
	require.NoError(t, err)

	msg, err := r.Remove("alice")
	require.NoError(t, err)
	assert.Equal(t, "character alice removed", msg)
	assert.Nil(t, r.Get("alice"))

	_, err = r.Remove("alice")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	// the name is free again
	_, err = r.Add(mustCharacter(t, "alice"))
	require.NoError(t, err)
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()
	c := mustCharacter(t, "alice")
	_, err := r.Add(c)
	require.NoError(t, err)

	assert.Same(t, c, r.Get("alice"))
	assert.Nil(t, r.Get("bob"))
}

func TestRegistry_List(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.List())

	bob := mustRoleCharacter(t, "bob", entities.RoleReviewer)
	_, err := bob.Speak("你好")
	require.NoError(t, err)

	for _, p := range []entities.Persona{mustCharacter(t, "carol"), bob, mustCharacter(t, "alice")} {
		_, err := r.Add(p)
		require.NoError(t, err)
	}

	assert.Equal(t, []RegistryEntry{
		{Name: "alice", Kind: entities.KindBasic, Conversations: 0, Model: entities.DefaultModel},
		{Name: "bob", Kind: entities.KindAdvanced, Conversations: 1, Model: entities.DefaultRoleModel},
		{Name: "carol", Kind: entities.KindBasic, Conversations: 0, Model: entities.DefaultModel},
	}, r.List())
}

func TestRegistry_ConcurrentAdd(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	errs := make(chan error, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := entities.NewCharacter(fmt.Sprintf("c%d", i%10), "p")
			if err != nil {
				errs <- err
				return
			}
			if _, err := r.Add(c); err != nil && !errors.Is(err, ErrDuplicateName) {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("unexpected error: %v", err)
	}
	assert.Equal(t, 10, r.Len())
}
