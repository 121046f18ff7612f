package irq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLine struct {
	enabled  map[int]int
	disabled map[int]int
}

func newFakeLine() *fakeLine {
	return &fakeLine{enabled: make(map[int]int), disabled: make(map[int]int)}
}

func (f *fakeLine) Enable(id int) error  { f.enabled[id]++; return nil }
func (f *fakeLine) Disable(id int) error { f.disabled[id]++; return nil }

func TestEnable_IsIdempotentAtTheBackend(t *testing.T) {
	line := newFakeLine()
	ctrl := NewController(line)

	fired := 0
	ctrl.Register(7, func() { fired++ })

	require.NoError(t, ctrl.Enable(7))
	require.NoError(t, ctrl.Enable(7))
	assert.Equal(t, 1, line.enabled[7], "backend Enable must only fire on the disabled->enabled transition")

	ctrl.Dispatch(7)
	assert.Equal(t, 1, fired)
}

func TestEnable_RejectsUnregisteredLine(t *testing.T) {
	ctrl := NewController(newFakeLine())
	err := ctrl.Enable(1)
	assert.Error(t, err)
}

func TestDispatch_IgnoresDisabledLine(t *testing.T) {
	line := newFakeLine()
	ctrl := NewController(line)

	fired := 0
	ctrl.Register(2, func() { fired++ })
	ctrl.Dispatch(2) // never enabled
	assert.Equal(t, 0, fired)

	require.NoError(t, ctrl.Enable(2))
	require.NoError(t, ctrl.Disable(2))
	ctrl.Dispatch(2)
	assert.Equal(t, 0, fired)
	assert.Equal(t, 1, line.disabled[2])
}
