package platform

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/cardforge/engine/core"
)

func TestTranslateKey(t *testing.T) {
	tests := []struct {
		key  glfw.Key
		want core.KeyCode
	}{
		{glfw.KeyA, core.KEY_A},
		{glfw.KeyF, core.KEY_F},
		{glfw.Key1, core.KEY_1},
		{glfw.Key3, core.KEY_3},
		{glfw.KeyEscape, core.KEY_ESCAPE},
		{glfw.KeyBackspace, core.KEY_BACKSPACE},
		{glfw.KeyRightShift, core.KEY_SHIFT},
	}
	for _, tt := range tests {
		got, ok := translateKey(tt.key)
		assert.True(t, ok, "key %d", tt.key)
		assert.Equal(t, tt.want, got)
	}

	_, ok := translateKey(glfw.KeyF12)
	assert.False(t, ok)
}

func TestGLFWPlatform_WithoutWindow(t *testing.T) {
	p := New(core.NewEventSystem(), nil, false)
	assert.False(t, p.PumpMessages())
	w, h := p.FramebufferSize()
	assert.Zero(t, w)
	assert.Zero(t, h)
	p.SwapBuffers()
}

func TestGLFWPlatform_DropFiresEvent(t *testing.T) {
	events := core.NewEventSystem()
	p := New(events, nil, false)

	var got []string
	events.Register(core.EVENT_CODE_FILE_DROPPED, t, func(context core.EventContext) bool {
		got = context.Data.(*core.FileDropEvent).Paths
		return true
	})

	names := []string{"/tmp/front.png", "/tmp/back.png"}
	p.dropCallback(nil, names)
	assert.Equal(t, names, got)

	got = nil
	p.dropCallback(nil, nil)
	assert.Nil(t, got)
}
