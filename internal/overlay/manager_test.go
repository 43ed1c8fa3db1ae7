package overlay_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbuckley/gridkit/internal/config"
	"github.com/tbuckley/gridkit/internal/overlay"
	"github.com/tbuckley/gridkit/internal/template"
)

type fakeSurface struct {
	mu     sync.Mutex
	events []string
	rows   []overlay.TesterRow
}

func (s *fakeSurface) record(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, fmt.Sprintf(format, args...))
}

func (s *fakeSurface) CreateOverlay(id string, cfg config.Overlay, style map[string]string, animation string) {
	s.record("create:%s:%s", id, animation)
}

func (s *fakeSurface) CreateTester(rows []overlay.TesterRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append([]overlay.TesterRow(nil), rows...)
	s.events = append(s.events, "tester")
}

func (s *fakeSurface) RemoveAll()              { s.record("remove-all") }
func (s *fakeSurface) SetContent(id, t string) { s.record("content:%s:%s", id, t) }
func (s *fakeSurface) Activate(id string)      { s.record("activate:%s", id) }
func (s *fakeSurface) Deactivate(id string)    { s.record("deactivate:%s", id) }

func (s *fakeSurface) count(event string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.events {
		if e == event {
			n++
		}
	}
	return n
}

func (s *fakeSurface) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

func testOverlay(id, entity string) config.Overlay {
	return config.Overlay{ID: id, Entity: entity}
}

func snapWith(entity, state string) template.Snapshot {
	return template.Snapshot{entity: {State: state}}
}

func TestUpdateStatesEdgeTriggering(t *testing.T) {
	t.Parallel()

	surface := &fakeSurface{}
	mgr := overlay.NewManager(surface)
	mgr.CreateOverlays([]config.Overlay{testOverlay("ov-1", "binary_sensor.door")}, false)

	// off -> on -> on -> off: exactly one activation and one deactivation.
	mgr.UpdateStates(snapWith("binary_sensor.door", "off"))
	mgr.UpdateStates(snapWith("binary_sensor.door", "on"))
	mgr.UpdateStates(snapWith("binary_sensor.door", "on"))
	mgr.UpdateStates(snapWith("binary_sensor.door", "off"))

	assert.Equal(t, 1, surface.count("activate:ov-1"))
	assert.Equal(t, 1, surface.count("deactivate:ov-1"))
}

func TestUpdateStatesCustomTargetState(t *testing.T) {
	t.Parallel()

	surface := &fakeSurface{}
	mgr := overlay.NewManager(surface)
	cfg := testOverlay("ov-1", "alarm_control_panel.home")
	cfg.State = "triggered"
	mgr.CreateOverlays([]config.Overlay{cfg}, false)

	mgr.UpdateStates(snapWith("alarm_control_panel.home", "armed_away"))
	assert.Equal(t, 0, surface.count("activate:ov-1"))

	mgr.UpdateStates(snapWith("alarm_control_panel.home", "triggered"))
	assert.Equal(t, 1, surface.count("activate:ov-1"))
}

func TestUpdateStatesUnknownEntityStaysInactive(t *testing.T) {
	t.Parallel()

	surface := &fakeSurface{}
	mgr := overlay.NewManager(surface)
	mgr.CreateOverlays([]config.Overlay{testOverlay("ov-1", "binary_sensor.missing")}, false)

	mgr.UpdateStates(snapWith("light.other", "on"))

	assert.Equal(t, 0, surface.count("activate:ov-1"))
	assert.Equal(t, 0, surface.count("deactivate:ov-1"))
}

func TestUpdateStatesRefreshesContentEveryTick(t *testing.T) {
	t.Parallel()

	surface := &fakeSurface{}
	mgr := overlay.NewManager(surface)
	cfg := testOverlay("ov-1", "binary_sensor.door")
	cfg.Content = "Door is {{ states('binary_sensor.door') }}"
	mgr.CreateOverlays([]config.Overlay{cfg}, false)

	mgr.UpdateStates(snapWith("binary_sensor.door", "off"))
	mgr.UpdateStates(snapWith("binary_sensor.door", "on"))

	assert.Equal(t, 1, surface.count("content:ov-1:Door is off"))
	assert.Equal(t, 1, surface.count("content:ov-1:Door is on"))
}

func TestUpdateStatesNoopWithoutOverlaysOrSnapshot(t *testing.T) {
	t.Parallel()

	surface := &fakeSurface{}
	mgr := overlay.NewManager(surface)

	mgr.UpdateStates(snapWith("light.kitchen", "on"))
	assert.Empty(t, surface.snapshot())

	mgr.CreateOverlays([]config.Overlay{testOverlay("ov-1", "light.kitchen")}, false)
	before := len(surface.snapshot())
	mgr.UpdateStates(nil)
	assert.Len(t, surface.snapshot(), before)
}

func TestCreateOverlaysRebuildResetsState(t *testing.T) {
	t.Parallel()

	surface := &fakeSurface{}
	mgr := overlay.NewManager(surface)
	cfg := testOverlay("ov-1", "binary_sensor.door")

	mgr.CreateOverlays([]config.Overlay{cfg}, false)
	mgr.UpdateStates(snapWith("binary_sensor.door", "on"))
	require.Equal(t, 1, surface.count("activate:ov-1"))

	// Rebuild forgets the previous active flag: the same snapshot is a
	// fresh rising edge again.
	mgr.CreateOverlays([]config.Overlay{cfg}, false)
	mgr.UpdateStates(snapWith("binary_sensor.door", "on"))
	assert.Equal(t, 2, surface.count("activate:ov-1"))
	assert.Equal(t, 2, surface.count("remove-all"))
}

func TestCreateOverlaysTesterOnlyInEditMode(t *testing.T) {
	t.Parallel()

	surface := &fakeSurface{}
	mgr := overlay.NewManager(surface)
	cfg := testOverlay("ov-1", "binary_sensor.door")
	cfg.Content = "Door open"

	mgr.CreateOverlays([]config.Overlay{cfg}, false)
	assert.Equal(t, 0, surface.count("tester"))

	mgr.CreateOverlays([]config.Overlay{cfg}, true)
	require.Equal(t, 1, surface.count("tester"))
	require.Len(t, surface.rows, 1)
	assert.Equal(t, "ov-1", surface.rows[0].ID)
	assert.Equal(t, "Door open (binary_sensor.door)", surface.rows[0].Label)
}

func TestTriggerTestActivatesAndExpires(t *testing.T) {
	t.Parallel()

	surface := &fakeSurface{}
	mgr := overlay.NewManager(surface)
	cfg := testOverlay("ov-1", "binary_sensor.door")
	cfg.Duration = "0.05s"
	mgr.CreateOverlays([]config.Overlay{cfg}, true)

	mgr.TriggerTest("ov-1", nil)
	assert.Equal(t, 1, surface.count("activate:ov-1"))

	require.Eventually(t, func() bool {
		return surface.count("deactivate:ov-1") == 1
	}, time.Second, 10*time.Millisecond)
}

func TestTriggerTestUnknownIDIgnored(t *testing.T) {
	t.Parallel()

	surface := &fakeSurface{}
	mgr := overlay.NewManager(surface)
	mgr.CreateOverlays([]config.Overlay{testOverlay("ov-1", "binary_sensor.door")}, true)

	before := len(surface.snapshot())
	mgr.TriggerTest("ov-unknown", nil)
	assert.Len(t, surface.snapshot(), before)
}

func TestDestroyStopsPendingTimers(t *testing.T) {
	t.Parallel()

	surface := &fakeSurface{}
	mgr := overlay.NewManager(surface)
	cfg := testOverlay("ov-1", "binary_sensor.door")
	cfg.Duration = "0.05s"
	mgr.CreateOverlays([]config.Overlay{cfg}, true)

	mgr.TriggerTest("ov-1", nil)
	mgr.Destroy()
	mgr.Destroy()

	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, 0, surface.count("deactivate:ov-1"))
}
