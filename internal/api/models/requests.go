package models

// CreateFolderRequest represents the request to create a folder
type CreateFolderRequest struct {
	FolderName string `json:"folder_name"`
	ParentID   *int64 `json:"parent_id"`
}

// RenameRequest renames a folder or a history
type RenameRequest struct {
	NewName string `json:"new_name"`
}

// MoveRequest reparents a folder or history; a null parent_id is the root
type MoveRequest struct {
	ParentID *int64 `json:"parent_id"`
	Type     string `json:"type"`
}

// DefaultFolderRequest selects the folder new results are saved into
type DefaultFolderRequest struct {
	FolderID *int64 `json:"folder_id"`
}

// CreateHistoryRequest stores a calculation result
type CreateHistoryRequest struct {
	FolderID        *int64  `json:"folder_id"`
	Name            *string `json:"name"`
	CalculationType string  `json:"calculation_type"`
	Input           string  `json:"input"`
	Output          string  `json:"output"`
}
