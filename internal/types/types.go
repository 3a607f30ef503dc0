package types

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config represents the complete configuration for Folio
type Config struct {
	API    APIConfig    `json:"api" envPrefix:"API_"`
	Remote RemoteConfig `json:"remote" envPrefix:"REMOTE_"`
	Store  StoreConfig  `json:"store" envPrefix:"STORE_"`
	Seed   SeedConfig   `json:"seed" envPrefix:"SEED_"`
	Banner BannerConfig `json:"banner" envPrefix:"BANNER_"`
	Log    LogConfig    `json:"log" envPrefix:"LOG_"`
}

// APIConfig represents the HTTP configuration of the reference history service
type APIConfig struct {
	Host  string `json:"host" env:"HOST"`
	Port  int    `json:"port" env:"PORT"`
	Token string `json:"token" env:"TOKEN"` // Empty disables bearer auth
}

// RemoteConfig describes how the client reaches the history service
type RemoteConfig struct {
	BaseURL string   `json:"base_url" env:"BASE_URL"` // e.g. http://localhost:5001/api
	Timeout Duration `json:"timeout" env:"TIMEOUT"`
	Retries int      `json:"retries" env:"RETRIES"` // Attempts for idempotent reads
	Token   string   `json:"token" env:"TOKEN"`
}

// StoreConfig represents the DuckDB-backed store of the reference service
type StoreConfig struct {
	DBPath       string `json:"db_path" env:"DB_PATH"`
	StorageLimit int64  `json:"storage_limit" env:"STORAGE_LIMIT"` // Bytes
	Username     string `json:"username" env:"USERNAME"`
	Email        string `json:"email" env:"EMAIL"`
	Admin        bool   `json:"admin" env:"ADMIN"`
}

// SeedConfig controls generation of a demo history tree on an empty store
type SeedConfig struct {
	Enabled      bool  `json:"enabled" env:"ENABLED"`
	MaxDepth     int   `json:"max_depth" env:"MAX_DEPTH"`
	MinFolders   int   `json:"min_folders" env:"MIN_FOLDERS"`
	MaxFolders   int   `json:"max_folders" env:"MAX_FOLDERS"`
	MinHistories int   `json:"min_histories" env:"MIN_HISTORIES"`
	MaxHistories int   `json:"max_histories" env:"MAX_HISTORIES"`
	Seed         int64 `json:"seed" env:"SEED"`
}

// BannerConfig controls the transient error banner
type BannerConfig struct {
	DismissAfter Duration `json:"dismiss_after" env:"DISMISS_AFTER"`
}

// LogConfig controls logrus output
type LogConfig struct {
	Level      string `json:"level" env:"LEVEL"`
	File       string `json:"file" env:"FILE"` // Empty logs to stderr
	MaxSizeMB  int    `json:"max_size_mb" env:"MAX_SIZE_MB"`
	MaxBackups int    `json:"max_backups" env:"MAX_BACKUPS"`
}

// Duration is a time.Duration that reads and writes as a string like "5s"
type Duration time.Duration

// MarshalJSON implements json.Marshaler
func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(time.Duration(d).String())), nil
}

// UnmarshalJSON accepts either a duration string or a number of nanoseconds
func (d *Duration) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		return d.UnmarshalText([]byte(unquoted))
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid duration %s", s)
	}
	*d = Duration(n)
	return nil
}

// UnmarshalText lets caarlos0/env parse durations from the environment
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration { return time.Duration(d) }

// TimestampLayout is the wire format of every timestamp served by the history service
const TimestampLayout = "2006-01-02 15:04:05"

// Timestamp is a time.Time that uses TimestampLayout on the wire
type Timestamp struct {
	time.Time
}

// MarshalJSON implements json.Marshaler
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(t.UTC().Format(TimestampLayout))), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		t.Time = time.Time{}
		return nil
	}
	unquoted, err := strconv.Unquote(s)
	if err != nil {
		return fmt.Errorf("invalid timestamp %s", s)
	}
	parsed, err := time.ParseInLocation(TimestampLayout, unquoted, time.UTC)
	if err != nil {
		// Tolerate RFC3339 from other producers
		parsed, err = time.Parse(time.RFC3339, unquoted)
		if err != nil {
			return fmt.Errorf("invalid timestamp %q: %w", unquoted, err)
		}
	}
	t.Time = parsed
	return nil
}

// String formats the timestamp in TimestampLayout
func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimestampLayout)
}

// ItemType tags the two kinds of rows a folder can contain
type ItemType string

// ItemType constants
const (
	ItemTypeFolder  ItemType = "folder"
	ItemTypeHistory ItemType = "history"
)

// Valid reports whether t is a known item type
func (t ItemType) Valid() bool {
	return t == ItemTypeFolder || t == ItemTypeHistory
}

// RootName is the display name of the virtual root folder
const RootName = "My Drive"

// FolderNode is a named grouping node in the history tree.
// A nil ParentID means the folder sits directly under the virtual root.
type FolderNode struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	ParentID      *int64    `json:"parent_id"`
	CreatedAt     Timestamp `json:"created_at"`
	ChildrenCount int       `json:"children_count"` // Informational only
}

// HistoryItem is a persisted record of one calculation run
type HistoryItem struct {
	ID              int64     `json:"id"`
	FolderID        *int64    `json:"folder_id"`
	Name            *string   `json:"name"`
	CalculationType string    `json:"calculation_type"`
	Input           string    `json:"input,omitempty"`
	Output          string    `json:"output,omitempty"`
	Timestamp       Timestamp `json:"timestamp"`
	Size            int64     `json:"size"`
}

// Label returns the display name, falling back to a label derived from
// the calculation type, timestamp and id when the history is unnamed.
func (h HistoryItem) Label() string {
	if h.Name != nil && strings.TrimSpace(*h.Name) != "" {
		return *h.Name
	}
	return fmt.Sprintf("%s %s #%d", h.CalculationType, h.Timestamp.String(), h.ID)
}

// Item is one row of the currently open folder
type Item struct {
	Type    ItemType     `json:"type"`
	ID      int64        `json:"id"`
	Name    string       `json:"name"`
	Folder  *FolderNode  `json:"folder,omitempty"`
	History *HistoryItem `json:"history,omitempty"`
}

// FolderItem wraps a folder as a list row
func FolderItem(f FolderNode) Item {
	return Item{Type: ItemTypeFolder, ID: f.ID, Name: f.Name, Folder: &f}
}

// HistoryRow wraps a history as a list row
func HistoryRow(h HistoryItem) Item {
	return Item{Type: ItemTypeHistory, ID: h.ID, Name: h.Label(), History: &h}
}

// Ref returns the type+id pair identifying the row
func (i Item) Ref() ItemRef {
	return ItemRef{Type: i.Type, ID: i.ID}
}

// DraggableID returns the drag handle identifier "{type}:{id}"
func (i Item) DraggableID() string {
	return i.Ref().String()
}

// ItemRef identifies a folder or history by type and id
type ItemRef struct {
	Type ItemType `json:"type"`
	ID   int64    `json:"id"`
}

// String formats the reference as "{type}:{id}"
func (r ItemRef) String() string {
	return fmt.Sprintf("%s:%d", r.Type, r.ID)
}

// ParseItemRef parses "{type}:{id}"
func ParseItemRef(s string) (ItemRef, error) {
	kind, rawID, ok := strings.Cut(s, ":")
	if !ok {
		return ItemRef{}, fmt.Errorf("malformed item reference %q", s)
	}
	t := ItemType(kind)
	if !t.Valid() {
		return ItemRef{}, fmt.Errorf("unknown item type %q", kind)
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return ItemRef{}, fmt.Errorf("malformed item id %q: %w", rawID, err)
	}
	return ItemRef{Type: t, ID: id}, nil
}

// Breadcrumb is one entry of the ancestor trail of the open folder.
// Path holds the ids from the first folder below root down to this entry.
type Breadcrumb struct {
	ID   *int64  `json:"id"`
	Name string  `json:"name"`
	Path []int64 `json:"path"`
}

// RootCrumb returns the breadcrumb of the virtual root
func RootCrumb() Breadcrumb {
	return Breadcrumb{ID: nil, Name: RootName, Path: []int64{}}
}

// StorageInfo is the account's storage usage in bytes
type StorageInfo struct {
	Used  int64 `json:"used"`
	Limit int64 `json:"limit"`
}

// DefaultFolder is the folder new calculation results are saved into
type DefaultFolder struct {
	Path            string `json:"path"`
	DefaultFolderID *int64 `json:"default_folder_id"`
}

// UserInfo is the session's view of the signed-in account
type UserInfo struct {
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	IsAdmin         bool       `json:"is_admin"`
	SubscriptionEnd *time.Time `json:"subscription_end"`
}

// ErrorResponse is the error payload of the history service
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the payload of mutations that return no entity
type MessageResponse struct {
	Message string `json:"message"`
}

// IDPtr returns a pointer to a copy of id
func IDPtr(id int64) *int64 {
	return &id
}

// SameID reports whether two nullable ids are equal (nil == nil is root)
func SameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// FormatID renders a nullable id, using "root" for nil
func FormatID(id *int64) string {
	if id == nil {
		return "root"
	}
	return strconv.FormatInt(*id, 10)
}

// ParseID parses a nullable id; "", "root" and "null" denote the root
func ParseID(s string) (*int64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "root", "null":
		return nil, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid folder id %q: %w", s, err)
	}
	return &id, nil
}
