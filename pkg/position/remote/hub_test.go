package remote

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voiceguide/pkg/position"
)

func TestHub_PushFansOut(t *testing.T) {
	h := NewHub()

	var a, b []position.Sample
	idA, err := h.Watch(func(s position.Sample) { a = append(a, s) }, nil, position.HighAccuracy)
	require.NoError(t, err)
	_, err = h.Watch(func(s position.Sample) { b = append(b, s) }, nil, position.HighAccuracy)
	require.NoError(t, err)
	assert.Equal(t, 2, h.Watching())

	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	h.Push(37.1775, -3.5880, 8, at)

	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.Equal(t, 37.1775, a[0].Lat)
	assert.Equal(t, -3.5880, a[0].Lon)
	assert.Equal(t, 8.0, a[0].Accuracy)
	assert.Equal(t, at, a[0].Time)

	h.ClearWatch(idA)
	h.Push(1, 2, 0, time.Time{})
	assert.Len(t, a, 1, "cleared watch receives nothing")
	require.Len(t, b, 2)
	assert.False(t, b[1].Time.IsZero())

	last, ok := h.Last()
	assert.True(t, ok)
	assert.Equal(t, 1.0, last.Lat)
}

func TestHub_PushError(t *testing.T) {
	h := NewHub()
	var got []error
	_, err := h.Watch(func(position.Sample) {}, func(err error) { got = append(got, err) }, position.HighAccuracy)
	require.NoError(t, err)

	h.PushError(position.PermissionDenied)
	h.PushError(position.Timeout)

	require.Len(t, got, 2)
	assert.ErrorIs(t, got[0], position.ErrPermissionDenied)
	assert.ErrorIs(t, got[1], position.ErrTimeout)
	assert.NotErrorIs(t, got[1], position.ErrPermissionDenied)
}

func TestHub_LastEmpty(t *testing.T) {
	_, ok := NewHub().Last()
	assert.False(t, ok)
}
