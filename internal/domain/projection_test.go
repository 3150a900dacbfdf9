package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProjector_OneDegree(t *testing.T) {
	p := Projector{OriginLat: 50, OriginLng: -110}

	assert.InDelta(t, 111.195, p.X(51), 1e-3)
	assert.InDelta(t, 111.195, p.Y(-109), 1e-3)
	assert.InDelta(t, -111.195, p.Y(-111), 1e-3)
}

func TestProjector_OriginIsZero(t *testing.T) {
	p := Projector{OriginLat: 56.72, OriginLng: -111.38}

	assert.Zero(t, p.X(56.72))
	assert.Zero(t, p.Y(-111.38))
}

func TestProjector_SameScaleBothAxes(t *testing.T) {
	p := Projector{}
	assert.InDelta(t, p.X(0.25), p.Y(0.25), 1e-12)
}
