package canvas_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/canvas"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/models"
)

func testViewport() canvas.StaticViewport {
	return canvas.StaticViewport{
		Rect:   canvas.Rect{X: 100, Y: 50, Width: 800, Height: 600},
		Offset: canvas.Point{X: 30, Y: 10},
	}
}

func TestToCanvas(t *testing.T) {
	testCases := []struct {
		name     string
		pointer  canvas.Point
		viewport canvas.Viewport
		snap     canvas.SnapFunc
		expected models.Position
	}{
		{
			name:     "subtracts origin and adds scroll",
			pointer:  canvas.Point{X: 250, Y: 120},
			viewport: testViewport(),
			expected: models.Position{X: 180, Y: 80},
		},
		{
			name:     "clamps to non-negative",
			pointer:  canvas.Point{X: 10, Y: 20},
			viewport: testViewport(),
			expected: models.Position{X: 0, Y: 0},
		},
		{
			name:     "snaps after clamping",
			pointer:  canvas.Point{X: 259, Y: 131},
			viewport: testViewport(),
			snap:     canvas.SnapToGrid(20),
			expected: models.Position{X: 180, Y: 100},
		},
		{
			name:     "unmounted viewport yields origin",
			pointer:  canvas.Point{X: 259, Y: 131},
			viewport: nil,
			snap:     canvas.SnapToGrid(20),
			expected: models.Position{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, canvas.ToCanvas(tc.pointer, tc.viewport, tc.snap))
		})
	}
}

func TestSnapToGrid(t *testing.T) {
	assert.Nil(t, canvas.SnapToGrid(0))
	assert.Nil(t, canvas.SnapToGrid(-5))

	snap := canvas.SnapToGrid(canvas.DefaultGridSize)
	assert.Equal(t, models.Position{X: 40, Y: 0}, snap(models.Position{X: 31, Y: 9}))
	assert.Equal(t, models.Position{X: 20, Y: 20}, snap(models.Position{X: 29.9, Y: 10}))
}

func TestRect_Contains(t *testing.T) {
	rect := canvas.Rect{X: 10, Y: 10, Width: 100, Height: 50}

	assert.True(t, rect.Contains(canvas.Point{X: 10, Y: 60}))
	assert.False(t, rect.Contains(canvas.Point{X: 9, Y: 20}))
	assert.False(t, rect.Contains(canvas.Point{X: 50, Y: 61}))
	assert.True(t, canvas.Rect{}.Contains(canvas.Point{X: -1, Y: -1}))
}
