package drive

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Project-Sylos/Folio/internal/remote"
	"github.com/Project-Sylos/Folio/internal/types"
	log "github.com/sirupsen/logrus"
)

// DragHandler is the surface a drag-and-drop toolkit drives. OnDragEnd
// receives the already-resolved intent.
type DragHandler interface {
	OnDragStart(src types.ItemRef) error
	OnDragUpdate(preview types.DragTarget) error
	OnDragEnd(ctx context.Context, intent types.DragIntent) error
}

var _ DragHandler = (*Engine)(nil)

// Engine turns finished drag gestures into moves, local reorders or nothing
type Engine struct {
	nav    *Navigator
	remote remote.Collaborator
	banner *Banner

	mu        sync.Mutex
	dragging  *types.ItemRef
	highlight types.DragTarget
	detached  bool
}

// NewEngine creates a drag engine operating on nav's list
func NewEngine(nav *Navigator, c remote.Collaborator, banner *Banner) *Engine {
	return &Engine{
		nav:       nav,
		remote:    c,
		banner:    banner,
		highlight: types.DragTarget{Kind: types.TargetNone},
	}
}

// OnDragStart records the item being dragged
func (e *Engine) OnDragStart(src types.ItemRef) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.detached {
		return ErrDetached
	}
	e.dragging = &src
	e.highlight = types.DragTarget{Kind: types.TargetNone}
	return nil
}

// OnDragUpdate recomputes the drag-over highlight. It never calls the service.
func (e *Engine) OnDragUpdate(preview types.DragTarget) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.detached {
		return ErrDetached
	}
	if e.dragging == nil {
		return nil
	}
	e.highlight = preview
	return nil
}

// HandleUpdate is OnDragUpdate for toolkits reporting raw identifiers
func (e *Engine) HandleUpdate(u DragUpdate) error {
	return e.OnDragUpdate(previewTarget(u))
}

// Highlight returns the target currently under the pointer
func (e *Engine) Highlight() types.DragTarget {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.highlight
}

// Dragging returns the item being dragged, if any
func (e *Engine) Dragging() (types.ItemRef, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dragging == nil {
		return types.ItemRef{}, false
	}
	return *e.dragging, true
}

// endGesture clears the drag state and reports whether the engine is still attached
func (e *Engine) endGesture() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dragging = nil
	e.highlight = types.DragTarget{Kind: types.TargetNone}
	return !e.detached
}

// HandleDrop resolves a raw drop and applies it. A drop whose identifiers
// cannot be parsed is reported and followed by a reload.
func (e *Engine) HandleDrop(ctx context.Context, res DropResult) error {
	intent, err := ResolveDrop(res)
	if err != nil {
		if !e.endGesture() {
			return ErrDetached
		}
		e.fail(ctx, "Failed to move item", err)
		return err
	}
	return e.OnDragEnd(ctx, intent)
}

// OnDragEnd applies a resolved intent: a move calls the service and reloads
// the open folder, a reorder splices the local list, anything else is a no-op.
func (e *Engine) OnDragEnd(ctx context.Context, intent types.DragIntent) error {
	if !e.endGesture() {
		log.Debugf("[drag] ignoring drop of %s after teardown", intent.Source)
		return ErrDetached
	}

	switch intent.Action() {
	case types.ActionMove:
		if intent.SelfNesting() {
			log.Warnf("[drag] refusing to move %s into itself", intent.Source)
			return ErrSelfNesting
		}
		return e.move(ctx, intent)
	case types.ActionReorder:
		if err := e.nav.Reorder(intent.FromIndex, intent.ToIndex); err != nil {
			e.fail(ctx, "Failed to reorder item", err)
			return err
		}
		return nil
	default:
		return nil
	}
}

func (e *Engine) move(ctx context.Context, intent types.DragIntent) error {
	src, target := intent.Source, intent.Target.FolderID
	if err := e.remote.MoveItem(ctx, src.ID, target, src.Type); err != nil {
		e.fail(ctx, "Failed to move item", err)
		return fmt.Errorf("failed to move %s to folder %s: %w", src, types.FormatID(target), err)
	}
	log.Infof("[drag] moved %s to folder %s", src, types.FormatID(target))

	if err := e.nav.Reload(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
		return fmt.Errorf("failed to reload after move: %w", err)
	}
	return nil
}

// fail reports err on the banner and resynchronises the open folder
func (e *Engine) fail(ctx context.Context, action string, err error) {
	if reloadErr := e.nav.Reload(ctx); reloadErr != nil && !errors.Is(reloadErr, ErrSuperseded) {
		log.Warnf("[drag] reload after failure: %v", reloadErr)
	}
	e.banner.Report(action, err)
}

// Teardown detaches the engine: highlight state is cleared and later
// gestures are ignored.
func (e *Engine) Teardown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.detached = true
	e.dragging = nil
	e.highlight = types.DragTarget{Kind: types.TargetNone}
}
