package remote

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Project-Sylos/Folio/internal/types"
	"github.com/avast/retry-go"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// RequestIDHeader carries a per-request id the service logs alongside its own
const RequestIDHeader = "X-Request-Id"

// Client talks to the history service over HTTP
type Client struct {
	http       *resty.Client
	attempts   uint
	retryDelay time.Duration

	// OnUnauthorized, when set, is called after any 401 answer
	OnUnauthorized func()
}

// NewClient creates a client for the service rooted at cfg.BaseURL
// (for example http://localhost:5001/api).
func NewClient(cfg types.RemoteConfig) *Client {
	httpClient := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		httpClient.SetTimeout(cfg.Timeout.Std())
	}
	if cfg.Token != "" {
		httpClient.SetAuthToken(cfg.Token)
	}
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		req.SetHeader(RequestIDHeader, uuid.NewString())
		return nil
	})

	attempts := cfg.Retries
	if attempts < 1 {
		attempts = 1
	}
	return &Client{
		http:       httpClient,
		attempts:   uint(attempts),
		retryDelay: 200 * time.Millisecond,
	}
}

// request runs one call. Idempotent calls are retried on transport errors
// and 5xx answers; mutations are attempted exactly once.
func (c *Client) request(ctx context.Context, method, path string, prepare func(*resty.Request), idempotent bool) error {
	attempt := func() error {
		var apiErr types.ErrorResponse
		req := c.http.R().SetContext(ctx).SetError(&apiErr)
		if prepare != nil {
			prepare(req)
		}
		res, err := req.Execute(method, path)
		if err != nil {
			return errors.Wrapf(err, "%s %s", method, path)
		}
		log.Debugf("[remote] %s %s -> %d", method, path, res.StatusCode())
		if res.IsError() {
			remoteErr := &Error{Method: method, Path: path, Status: res.StatusCode(), Message: apiErr.Error}
			if remoteErr.Status == http.StatusUnauthorized && c.OnUnauthorized != nil {
				c.OnUnauthorized()
			}
			return remoteErr
		}
		return nil
	}

	if !idempotent || c.attempts == 1 {
		return attempt()
	}
	return retry.Do(attempt,
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			log.Warnf("[remote] %s %s attempt %d failed: %v", method, path, n+1, err)
		}),
	)
}

func idParam(id int64) string {
	return strconv.FormatInt(id, 10)
}

// ListFolders returns the folders directly under parentID (nil = root)
func (c *Client) ListFolders(ctx context.Context, parentID *int64) ([]types.FolderNode, error) {
	var folders []types.FolderNode
	err := c.request(ctx, http.MethodGet, "/history/folders", func(req *resty.Request) {
		req.SetResult(&folders)
		if parentID != nil {
			req.SetQueryParam("parent_id", idParam(*parentID))
		}
	}, true)
	if err != nil {
		return nil, err
	}
	return folders, nil
}

// ListHistories returns the histories stored in folderID
func (c *Client) ListHistories(ctx context.Context, folderID int64) ([]types.HistoryItem, error) {
	var histories []types.HistoryItem
	err := c.request(ctx, http.MethodGet, "/history/folders/{id}/histories", func(req *resty.Request) {
		req.SetPathParam("id", idParam(folderID)).SetResult(&histories)
	}, true)
	if err != nil {
		return nil, err
	}
	return histories, nil
}

type createFolderBody struct {
	FolderName string `json:"folder_name"`
	ParentID   *int64 `json:"parent_id"`
}

// CreateFolder creates a folder named name under parentID
func (c *Client) CreateFolder(ctx context.Context, name string, parentID *int64) (*types.FolderNode, error) {
	var folder types.FolderNode
	err := c.request(ctx, http.MethodPost, "/history/folders", func(req *resty.Request) {
		req.SetBody(createFolderBody{FolderName: name, ParentID: parentID}).SetResult(&folder)
	}, false)
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

// DeleteFolder deletes a folder and everything below it
func (c *Client) DeleteFolder(ctx context.Context, id int64) error {
	return c.request(ctx, http.MethodDelete, "/history/folders/{id}", func(req *resty.Request) {
		req.SetPathParam("id", idParam(id))
	}, false)
}

type renameBody struct {
	NewName string `json:"new_name"`
}

// RenameFolder renames a folder
func (c *Client) RenameFolder(ctx context.Context, id int64, name string) error {
	return c.request(ctx, http.MethodPut, "/history/folders/{id}", func(req *resty.Request) {
		req.SetPathParam("id", idParam(id)).SetBody(renameBody{NewName: name})
	}, false)
}

// RenameHistory renames a history record
func (c *Client) RenameHistory(ctx context.Context, id int64, name string) error {
	return c.request(ctx, http.MethodPut, "/history/name/{id}", func(req *resty.Request) {
		req.SetPathParam("id", idParam(id)).SetBody(renameBody{NewName: name})
	}, false)
}

// DeleteHistory deletes a history record
func (c *Client) DeleteHistory(ctx context.Context, id int64) error {
	return c.request(ctx, http.MethodDelete, "/history/{id}", func(req *resty.Request) {
		req.SetPathParam("id", idParam(id))
	}, false)
}

type moveBody struct {
	ParentID *int64         `json:"parent_id"`
	Type     types.ItemType `json:"type"`
}

// MoveItem reparents a folder or history under parentID (nil = root)
func (c *Client) MoveItem(ctx context.Context, id int64, parentID *int64, itemType types.ItemType) error {
	return c.request(ctx, http.MethodPut, "/history/items/{id}/move", func(req *resty.Request) {
		req.SetPathParam("id", idParam(id)).SetBody(moveBody{ParentID: parentID, Type: itemType})
	}, false)
}

// StorageInfo returns the account's used and limit bytes
func (c *Client) StorageInfo(ctx context.Context) (*types.StorageInfo, error) {
	var info types.StorageInfo
	err := c.request(ctx, http.MethodGet, "/history/storage", func(req *resty.Request) {
		req.SetResult(&info)
	}, true)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// RecalculateStorage asks the service to recount usage and returns the new values
func (c *Client) RecalculateStorage(ctx context.Context) (*types.StorageInfo, error) {
	var info types.StorageInfo
	err := c.request(ctx, http.MethodPost, "/history/storage/recalculate", func(req *resty.Request) {
		req.SetBody(struct{}{}).SetResult(&info)
	}, false)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

type defaultFolderBody struct {
	FolderID int64 `json:"folder_id"`
}

// SetDefaultFolder marks id as the folder new results are saved into
func (c *Client) SetDefaultFolder(ctx context.Context, id int64) error {
	return c.request(ctx, http.MethodPut, "/history/user/default_folder", func(req *resty.Request) {
		req.SetBody(defaultFolderBody{FolderID: id})
	}, false)
}

// DefaultFolder returns the default folder and its display path
func (c *Client) DefaultFolder(ctx context.Context) (*types.DefaultFolder, error) {
	var def types.DefaultFolder
	err := c.request(ctx, http.MethodGet, "/history/user/default_folder", func(req *resty.Request) {
		req.SetResult(&def)
	}, true)
	if err != nil {
		return nil, err
	}
	return &def, nil
}

// SearchHistories returns every history whose name matches name
func (c *Client) SearchHistories(ctx context.Context, name string) ([]types.HistoryItem, error) {
	var histories []types.HistoryItem
	err := c.request(ctx, http.MethodGet, "/history/name", func(req *resty.Request) {
		req.SetQueryParam("name", name).SetResult(&histories)
	}, true)
	if err != nil {
		return nil, err
	}
	return histories, nil
}

// GetHistory returns one history record including its input and output
func (c *Client) GetHistory(ctx context.Context, id int64) (*types.HistoryItem, error) {
	var history types.HistoryItem
	err := c.request(ctx, http.MethodGet, "/history", func(req *resty.Request) {
		req.SetQueryParam("history_id", idParam(id)).SetResult(&history)
	}, true)
	if err != nil {
		return nil, err
	}
	return &history, nil
}

// CurrentUser returns the signed-in account
func (c *Client) CurrentUser(ctx context.Context) (*types.UserInfo, error) {
	var user types.UserInfo
	err := c.request(ctx, http.MethodGet, "/user/info/current", func(req *resty.Request) {
		req.SetResult(&user)
	}, true)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// InvokeFunction runs a named calculation and returns its tagged result
func (c *Client) InvokeFunction(ctx context.Context, name string, params map[string]any) (*types.Result, error) {
	var result types.Result
	err := c.request(ctx, http.MethodPost, "/calculation/{name}", func(req *resty.Request) {
		req.SetPathParam("name", name).SetBody(params).SetResult(&result)
	}, false)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
