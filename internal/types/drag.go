package types

// DragTargetKind tells where a drop landed
type DragTargetKind string

// DragTargetKind constants
const (
	TargetNone       DragTargetKind = "none"       // Reorder within the current list
	TargetFolder     DragTargetKind = "folder"     // A folder row acting as a container
	TargetBreadcrumb DragTargetKind = "breadcrumb" // An ancestor in the breadcrumb trail
)

// DragTarget is the resolved destination of a drop
type DragTarget struct {
	Kind     DragTargetKind `json:"kind"`
	FolderID *int64         `json:"folder_id"` // nil with TargetBreadcrumb means the root
}

// IsMove reports whether the target reparents the dragged item
func (t DragTarget) IsMove() bool {
	return t.Kind == TargetFolder || t.Kind == TargetBreadcrumb
}

// DragAction is what a resolved drop does
type DragAction string

// DragAction constants
const (
	ActionNoop    DragAction = "noop"
	ActionReorder DragAction = "reorder"
	ActionMove    DragAction = "move"
)

// DragIntent is the ephemeral interpretation of a finished drag gesture
type DragIntent struct {
	Source    ItemRef    `json:"source"`
	Target    DragTarget `json:"target"`
	FromIndex int        `json:"from_index"`
	ToIndex   int        `json:"to_index"` // -1 when there is no list destination
}

// Action classifies the intent
func (i DragIntent) Action() DragAction {
	if i.Target.IsMove() {
		return ActionMove
	}
	if i.ToIndex >= 0 && i.ToIndex != i.FromIndex {
		return ActionReorder
	}
	return ActionNoop
}

// SelfNesting reports whether the intent would move a folder into itself
func (i DragIntent) SelfNesting() bool {
	return i.Target.IsMove() &&
		i.Source.Type == ItemTypeFolder &&
		i.Target.FolderID != nil &&
		*i.Target.FolderID == i.Source.ID
}
