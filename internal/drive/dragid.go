package drive

import (
	"fmt"
	"strings"

	"github.com/Project-Sylos/Folio/internal/types"
)

// Droppable container identifiers. The plain item list is ListDroppableID;
// folder rows and breadcrumbs are "folder:{id}" and "breadcrumb:{id|root}".
const (
	ListDroppableID  = "items"
	breadcrumbPrefix = "breadcrumb"
)

// FolderDroppableID names the drop zone of a folder row
func FolderDroppableID(id int64) string {
	return types.ItemRef{Type: types.ItemTypeFolder, ID: id}.String()
}

// BreadcrumbDroppableID names the drop zone of a breadcrumb (nil = root)
func BreadcrumbDroppableID(id *int64) string {
	return breadcrumbPrefix + ":" + types.FormatID(id)
}

// DropReason tells how a gesture ended
type DropReason string

// DropReason constants
const (
	ReasonDrop   DropReason = "DROP"
	ReasonCancel DropReason = "CANCEL"
)

// DragLocation is a position inside a droppable container
type DragLocation struct {
	DroppableID string `json:"droppableId"`
	Index       int    `json:"index"`
}

// Combine is the merge signal: the pointer was released over another row
// or breadcrumb.
type Combine struct {
	DraggableID string `json:"draggableId"`
	DroppableID string `json:"droppableId"`
}

// DragUpdate is what a drag toolkit reports while the pointer moves
type DragUpdate struct {
	DraggableID string        `json:"draggableId"`
	Source      DragLocation  `json:"source"`
	Destination *DragLocation `json:"destination"`
	Combine     *Combine      `json:"combine"`
}

// DropResult is what a drag toolkit reports when the gesture ends
type DropResult struct {
	DragUpdate
	Reason DropReason `json:"reason"`
}

// parseTarget resolves a container or combine identifier to a drag target.
// Unknown identifiers, the plain list and history rows are not targets.
func parseTarget(id string) (types.DragTarget, error) {
	none := types.DragTarget{Kind: types.TargetNone}
	if id == "" || id == ListDroppableID {
		return none, nil
	}

	kind, rawID, ok := strings.Cut(id, ":")
	if !ok {
		return none, nil
	}
	switch kind {
	case breadcrumbPrefix:
		folderID, err := types.ParseID(rawID)
		if err != nil {
			return none, fmt.Errorf("malformed breadcrumb target %q: %w", id, err)
		}
		return types.DragTarget{Kind: types.TargetBreadcrumb, FolderID: folderID}, nil
	case string(types.ItemTypeFolder):
		ref, err := types.ParseItemRef(id)
		if err != nil {
			return none, fmt.Errorf("malformed folder target: %w", err)
		}
		return types.DragTarget{Kind: types.TargetFolder, FolderID: types.IDPtr(ref.ID)}, nil
	default:
		return none, nil
	}
}

// ResolveDrop interprets a finished gesture. A combine target takes
// precedence over the destination container, and a combine onto a history
// row is a no-op; a folder or breadcrumb
// container is a move; an index change inside the list is a reorder;
// anything else, including a cancelled drag, resolves to a no-op.
func ResolveDrop(res DropResult) (types.DragIntent, error) {
	src, err := types.ParseItemRef(res.DraggableID)
	if err != nil {
		return types.DragIntent{}, fmt.Errorf("failed to parse draggable id: %w", err)
	}

	intent := types.DragIntent{
		Source:    src,
		Target:    types.DragTarget{Kind: types.TargetNone},
		FromIndex: res.Source.Index,
		ToIndex:   -1,
	}
	if res.Reason == ReasonCancel {
		return intent, nil
	}

	if res.Combine != nil {
		target, err := parseTarget(res.Combine.DraggableID)
		if err != nil {
			return intent, err
		}
		if target.IsMove() {
			intent.Target = target
		}
		// Released over a row that is not a container: nothing happens
		return intent, nil
	}

	if res.Destination == nil {
		return intent, nil
	}
	target, err := parseTarget(res.Destination.DroppableID)
	if err != nil {
		return intent, err
	}
	if target.IsMove() {
		intent.Target = target
		return intent, nil
	}
	if res.Destination.DroppableID == res.Source.DroppableID {
		intent.ToIndex = res.Destination.Index
	}
	return intent, nil
}

// previewTarget is the highlight target of an in-progress drag
func previewTarget(u DragUpdate) types.DragTarget {
	if u.Combine != nil {
		if t, err := parseTarget(u.Combine.DraggableID); err == nil && t.IsMove() {
			return t
		}
		return types.DragTarget{Kind: types.TargetNone}
	}
	if u.Destination != nil {
		if t, err := parseTarget(u.Destination.DroppableID); err == nil {
			return t
		}
	}
	return types.DragTarget{Kind: types.TargetNone}
}
