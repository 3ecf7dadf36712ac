package testutil

import (
	"testing"

	"github.com/banshee-data/blockvr/internal/features"
	"github.com/banshee-data/blockvr/internal/pose"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRig(t *testing.T) {
	t.Parallel()

	r := NewRig()
	head, ok := r.HeadPose()
	require.True(t, ok)
	assert.Equal(t, HeadHeight, head.Position.Z())

	_, ok = pose.Gather(r, r.LeftHanded())
	assert.True(t, ok)
}

func TestUnarmedGuard(t *testing.T) {
	t.Parallel()

	r := NewRig()
	r.UnarmedGuard(0.7, 0.1)
	opts := features.Options{MetersPerUnit: 1}

	for _, c := range []pose.Controller{pose.Right, pose.Left} {
		f, err := features.ExtractUnarmed(r.Head, r.Hands[c], c, 0, opts)
		require.NoError(t, err)
		assert.InDelta(t, 0.7, f.ForwardDotOutward, 1e-9, "controller %s", c)
		assert.InDelta(t, 0.1, f.VerticalOffset, 1e-9, "controller %s", c)
	}
}

func TestWeaponGuard(t *testing.T) {
	t.Parallel()

	r := NewRig()
	r.WeaponGuard(pose.Left, -0.3, 0.2, -0.05)
	f, err := features.ExtractWeapon(r.Head, r.Hands[pose.Left], 0, features.Options{MetersPerUnit: 1})
	require.NoError(t, err)
	assert.InDelta(t, -0.3, f.ForwardDotDown, 1e-9)
	assert.InDelta(t, 0.2, f.ForwardDotForward, 1e-9)
	assert.InDelta(t, -0.05, f.VerticalOffset, 1e-9)
}

func TestRigFollowsEvents(t *testing.T) {
	t.Parallel()

	r := NewRig()
	r.BlockStart()
	assert.False(t, r.Blocking, "not following by default")

	r.FollowEvents = true
	r.BlockStart()
	assert.True(t, r.Blocking)
	r.BlockStop()
	assert.False(t, r.Blocking)
	assert.Equal(t, 2, r.Starts)
	assert.Equal(t, 1, r.Stops)
}
