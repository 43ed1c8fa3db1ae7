// Package sections owns the reconciliation-and-persistence workflow for the
// section list of a view: every detected grid area gets a backing section
// entry, edits are applied copy-on-write, and changes are persisted through
// an injected save collaborator.
package sections

import (
	"context"
	"sync/atomic"

	"github.com/tbuckley/gridkit/internal/config"
	"github.com/tbuckley/gridkit/internal/gridarea"
	"github.com/tbuckley/gridkit/internal/logger"
	gridkiterrors "github.com/tbuckley/gridkit/pkg/errors"
)

// Saver persists a full configuration document. It may fail; the manager
// reports the failure and keeps the in-memory configuration as the source of
// truth for the next attempt.
type Saver interface {
	SaveConfig(ctx context.Context, doc *config.Document) error
}

// SaverFunc adapts a function to the Saver interface.
type SaverFunc func(ctx context.Context, doc *config.Document) error

// SaveConfig implements Saver.
func (f SaverFunc) SaveConfig(ctx context.Context, doc *config.Document) error {
	return f(ctx, doc)
}

// Manager applies section edits against a configuration document and
// persists them. A save request arriving while one is in flight is dropped,
// not queued; the caller must re-trigger reconciliation afterwards.
type Manager struct {
	saver  Saver
	log    *logger.Logger
	saving atomic.Bool
}

// NewManager constructs a Manager around the given save collaborator.
func NewManager(saver Saver, log *logger.Logger) *Manager {
	return &Manager{saver: saver, log: log.WithComponent("sections")}
}

// IsSaving reports whether a save operation is in flight.
func (m *Manager) IsSaving() bool {
	return m.saving.Load()
}

// HandleSectionConfigChanged replaces the section matching gridArea with the
// updated config, or appends it when absent. The authoritative grid_area
// always wins over whatever the caller supplied, so a mismatched edit cannot
// desynchronize section identity.
func (m *Manager) HandleSectionConfigChanged(ctx context.Context, gridArea string, updated config.Section, doc *config.Document, viewIndex int) {
	if doc == nil || m.saving.Load() {
		return
	}
	existing := viewSections(doc, viewIndex)

	updated.GridArea = gridArea

	next := make([]config.Section, len(existing))
	copy(next, existing)
	if idx := config.SectionIndex(next, gridArea); idx >= 0 {
		next[idx] = updated
	} else {
		next = append(next, updated)
	}

	m.saveViewSections(ctx, next, doc, viewIndex)
}

// HandleDeleteSection removes the section matching gridArea, preserving the
// order of the rest.
func (m *Manager) HandleDeleteSection(ctx context.Context, gridArea string, doc *config.Document, viewIndex int) {
	if doc == nil || m.saving.Load() {
		return
	}
	existing := viewSections(doc, viewIndex)

	next := make([]config.Section, 0, len(existing))
	for _, section := range existing {
		if section.GridArea != gridArea {
			next = append(next, section)
		}
	}

	m.saveViewSections(ctx, next, doc, viewIndex)
}

// EnsureAllSectionsExist detects all grid areas in the template string and
// persists synthesized placeholder sections for any area lacking one.
// onComplete runs once persistence resolves, or immediately when nothing was
// missing, the document is absent, or a save is already in flight.
func (m *Manager) EnsureAllSectionsExist(ctx context.Context, templateAreas string, doc *config.Document, viewIndex int, onComplete func()) {
	if onComplete == nil {
		onComplete = func() {}
	}
	if doc == nil || m.saving.Load() {
		onComplete()
		return
	}

	areas := gridarea.DetectAllAreas(templateAreas)
	if len(areas) == 0 {
		onComplete()
		return
	}

	existing := viewSections(doc, viewIndex)
	reconciled := gridarea.EnsureSections(areas, existing)
	if len(reconciled) == len(existing) {
		onComplete()
		return
	}

	m.saveViewSections(ctx, reconciled, doc, viewIndex)
	onComplete()
}

// saveViewSections persists the document with the view's section list
// replaced, copy-on-write. The re-entrancy flag is a compare-and-swap so the
// "drop, don't queue" semantics hold even if a caller races the in-flight
// save from a timer goroutine.
func (m *Manager) saveViewSections(ctx context.Context, sectionList []config.Section, doc *config.Document, viewIndex int) {
	if doc == nil || viewIndex < 0 || viewIndex >= len(doc.Views) {
		return
	}
	if !m.saving.CompareAndSwap(false, true) {
		return
	}
	defer m.saving.Store(false)

	views := make([]config.View, len(doc.Views))
	copy(views, doc.Views)
	views[viewIndex].Sections = sectionList

	updated := &config.Document{Views: views, Extra: doc.Extra}

	if err := m.saver.SaveConfig(ctx, updated); err != nil {
		// No retry and no rollback: the user's edit stays visible and the
		// next edit re-triggers a save.
		m.log.Error(gridkiterrors.NewSaveError(viewIndex, err), "failed to save section config")
	}
}

func viewSections(doc *config.Document, viewIndex int) []config.Section {
	if viewIndex < 0 || viewIndex >= len(doc.Views) {
		return nil
	}
	return doc.Views[viewIndex].Sections
}
