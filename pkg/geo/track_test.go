package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrail_Push(t *testing.T) {
	start := Point{Lat: 51.5, Lon: -0.12}
	tests := []struct {
		name     string
		offsets  []float64 // meters north of start
		wantKept []bool
	}{
		{
			name:     "first point always kept",
			offsets:  []float64{0},
			wantKept: []bool{true},
		},
		{
			name:     "jitter below spacing dropped",
			offsets:  []float64{0, 3, 9.5, 12},
			wantKept: []bool{true, false, false, true},
		},
		{
			name:     "spacing measured from last kept point",
			offsets:  []float64{0, 11, 15, 22},
			wantKept: []bool{true, true, false, true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTrail(10)
			for i, off := range tt.offsets {
				got := tr.Push(DestinationPoint(start, off, 0))
				assert.Equal(t, tt.wantKept[i], got, "step %d", i)
			}
		})
	}
}

func TestTrail_Reset(t *testing.T) {
	tr := NewTrail(0)
	tr.Push(Point{10, 20})
	tr.Push(Point{11, 20})
	assert.Equal(t, 2, tr.Len())

	pts := tr.Points()
	pts[0] = Point{}
	assert.Equal(t, Point{10, 20}, tr.Points()[0], "Points must return a copy")

	tr.Reset()
	assert.Equal(t, 0, tr.Len())
}

func TestLineStringAndBound(t *testing.T) {
	path := []Point{{Lat: 1, Lon: 2}, {Lat: 3, Lon: 4}}
	ls := LineString(path)
	assert.Len(t, ls, 2)
	assert.Equal(t, 2.0, ls[0].Lon())
	assert.Equal(t, 1.0, ls[0].Lat())
	assert.Equal(t, path[1], FromOrb(ls[1]))

	b := Bound(path)
	assert.Equal(t, 2.0, b.Min.Lon())
	assert.Equal(t, 4.0, b.Max.Lon())
}
