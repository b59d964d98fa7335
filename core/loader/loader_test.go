package loader

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

type stubFeature struct {
	name    string
	enabled bool
	loadErr error
	loaded  bool
}

func (s *stubFeature) Name() string    { return s.name }
func (s *stubFeature) IsEnabled() bool { return s.enabled }
func (s *stubFeature) Load(fiber.Router) error {
	s.loaded = true
	return s.loadErr
}

func TestManager_LoadAll(t *testing.T) {
	app := fiber.New()

	t.Run("LoadsEnabledSkipsDisabled", func(t *testing.T) {
		mgr := NewManager()
		enabled := &stubFeature{name: "counting", enabled: true}
		disabled := &stubFeature{name: "archive", enabled: false}
		mgr.Register(enabled)
		mgr.Register(disabled)

		err := mgr.LoadAll(app)
		assert.NoError(t, err)
		assert.True(t, enabled.loaded)
		assert.False(t, disabled.loaded)
	})

	t.Run("PropagatesLoadError", func(t *testing.T) {
		mgr := NewManager()
		broken := &stubFeature{name: "broken", enabled: true, loadErr: errors.New("boom")}
		mgr.Register(broken)

		err := mgr.LoadAll(app)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "broken")
	})
}
