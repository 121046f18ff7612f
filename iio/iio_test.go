package iio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDevice struct {
	name string
}

func (f *fakeDevice) Name() string          { return f.name }
func (f *fakeDevice) Channels() []Channel   { return []Channel{{Name: "raw0", Index: 0}} }
func (f *fakeDevice) ReadRaw(int, []byte) (int, error)  { return 0, nil }
func (f *fakeDevice) WriteRaw(int, []byte) (int, error) { return 0, nil }

func TestRegistry_RejectsDuplicateName(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&fakeDevice{name: "card0"}))

	err := r.Register(&fakeDevice{name: "card0"})
	assert.Error(t, err)
}

func TestRegistry_LookupAndUnregister(t *testing.T) {
	r := NewRegistry()
	dev := &fakeDevice{name: "card0"}
	require.NoError(t, r.Register(dev))

	got, ok := r.Lookup("card0")
	require.True(t, ok)
	assert.Same(t, dev, got)

	require.NoError(t, r.Unregister("card0"))
	_, ok = r.Lookup("card0")
	assert.False(t, ok)
}

func TestRegistry_UnregisterUnknown(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Unregister("missing"))
}
