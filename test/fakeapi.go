package test

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	boardtypes "github.com/Yulian302/lfusys-wetransfer/boards/types"
	transfertypes "github.com/Yulian302/lfusys-wetransfer/transfers/types"
	uploadtypes "github.com/Yulian302/lfusys-wetransfer/uploads/types"
	"github.com/gin-gonic/gin"
)

const (
	DefaultAPIKey = "1234"
	DefaultToken  = "jwt-token"
)

// Call is one request received by the fake API.
type Call struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

func (c Call) String() string {
	return c.Method + " " + c.Path
}

type failure struct {
	status int
	body   string
}

// FakeAPI mimics the v2 transfer and board endpoints plus a storage bucket
// accepting presigned PUTs. Every request is recorded.
type FakeAPI struct {
	Server *httptest.Server

	APIKey string
	Token  string
	// ChunkSize is the part size handed out for new files; zero means one
	// part per file.
	ChunkSize int64
	// TransferID and BoardID fix the ids of the next created resources.
	TransferID string
	BoardID    string

	mu        sync.Mutex
	calls     []Call
	failures  map[string]failure
	transfers map[string]*transfertypes.Transfer
	boards    map[string]*boardtypes.Board
	stored    map[string][]byte
	seq       int
}

func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &FakeAPI{
		APIKey:    DefaultAPIKey,
		Token:     DefaultToken,
		failures:  map[string]failure{},
		transfers: map[string]*transfertypes.Transfer{},
		boards:    map[string]*boardtypes.Board{},
		stored:    map[string][]byte{},
	}

	r := gin.New()
	r.Use(f.recordCall)
	r.POST("/v2/authorize", f.authorize)
	api := r.Group("/v2", f.requireAuth)
	api.Any("/transfers/*path", f.handleTransfers)
	api.Any("/boards/*path", f.handleBoards)
	r.PUT("/storage/*path", f.storage)

	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Server.Close)
	return f
}

func (f *FakeAPI) URL() string {
	return f.Server.URL
}

// FailOn makes the next and every later "METHOD path" request answer with
// status and body.
func (f *FakeAPI) FailOn(method, path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method+" "+path] = failure{status: status, body: body}
}

func (f *FakeAPI) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Requests lists every call as "METHOD path".
func (f *FakeAPI) Requests() []string {
	calls := f.Calls()
	out := make([]string, 0, len(calls))
	for _, c := range calls {
		out = append(out, c.String())
	}
	return out
}

// Stored returns the bytes uploaded to storage for fileID and part.
func (f *FakeAPI) Stored(fileID string, part int) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stored[fileID+"/"+strconv.Itoa(part)]
}

func (f *FakeAPI) Transfer(id string) *transfertypes.Transfer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.transfers[id]
}

func (f *FakeAPI) recordCall(c *gin.Context) {
	body, _ := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	key := c.Request.Method + " " + c.Request.URL.Path

	f.mu.Lock()
	f.calls = append(f.calls, Call{
		Method: c.Request.Method,
		Path:   c.Request.URL.Path,
		Header: c.Request.Header.Clone(),
		Body:   body,
	})
	fail, ok := f.failures[key]
	f.mu.Unlock()

	if ok {
		c.Data(fail.status, "application/json", []byte(fail.body))
		c.Abort()
		return
	}
	c.Next()
}

func (f *FakeAPI) authorize(c *gin.Context) {
	if c.GetHeader("x-api-key") != f.APIKey {
		c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token": f.Token})
}

func (f *FakeAPI) requireAuth(c *gin.Context) {
	if c.GetHeader("x-api-key") != f.APIKey || c.GetHeader("Authorization") != "Bearer "+f.Token {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	c.Next()
}

func (f *FakeAPI) storage(c *gin.Context) {
	body, _ := io.ReadAll(c.Request.Body)
	key := strings.TrimPrefix(c.Param("path"), "/")

	f.mu.Lock()
	f.stored[key] = body
	f.mu.Unlock()

	c.Status(http.StatusOK)
}

func segments(c *gin.Context) []string {
	p := strings.Trim(c.Param("path"), "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func notFound(c *gin.Context, what string) {
	c.JSON(http.StatusNotFound, gin.H{"message": what + " not found"})
}

func (f *FakeAPI) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *FakeAPI) multipart(size int64) uploadtypes.Multipart {
	chunk := f.ChunkSize
	if chunk <= 0 {
		chunk = size
	}
	if chunk <= 0 {
		chunk = 1
	}
	parts := int((size + chunk - 1) / chunk)
	if parts < 1 {
		parts = 1
	}
	return uploadtypes.Multipart{PartNumbers: parts, ChunkSize: chunk}
}

func (f *FakeAPI) storageURL(fileID string, part int) string {
	return fmt.Sprintf("%s/storage/%s/%d", f.Server.URL, fileID, part)
}

func (f *FakeAPI) handleTransfers(c *gin.Context) {
	seg := segments(c)
	method := c.Request.Method

	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case method == http.MethodPost && len(seg) == 0:
		var req transfertypes.CreateTransferRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		id := f.TransferID
		if id == "" {
			id = f.nextID("transfer")
		}
		expires := time.Now().Add(7 * 24 * time.Hour).UTC().Truncate(time.Second)
		transfer := &transfertypes.Transfer{
			Success:   true,
			ID:        id,
			Message:   req.Message,
			State:     "uploading",
			ExpiresAt: &expires,
		}
		for _, file := range req.Files {
			transfer.Files = append(transfer.Files, transfertypes.File{
				ID:        f.nextID("file"),
				Name:      file.Name,
				Type:      "file",
				Size:      file.Size,
				Multipart: f.multipart(file.Size),
			})
		}
		f.transfers[id] = transfer
		c.JSON(http.StatusCreated, transfer)

	case method == http.MethodGet && len(seg) == 1:
		transfer, ok := f.transfers[seg[0]]
		if !ok {
			notFound(c, "Transfer")
			return
		}
		c.JSON(http.StatusOK, transfer)

	case method == http.MethodGet && len(seg) == 5 && seg[1] == "files" && seg[3] == "upload-url":
		if _, ok := f.transfers[seg[0]]; !ok {
			notFound(c, "Transfer")
			return
		}
		part, _ := strconv.Atoi(seg[4])
		c.JSON(http.StatusOK, transfertypes.UploadURLResponse{Success: true, URL: f.storageURL(seg[2], part)})

	case method == http.MethodPut && len(seg) == 4 && seg[1] == "files" && seg[3] == "upload-complete":
		transfer, ok := f.transfers[seg[0]]
		if !ok {
			notFound(c, "Transfer")
			return
		}
		var req transfertypes.CompleteFileUploadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		for _, file := range transfer.Files {
			if file.ID == seg[2] {
				c.JSON(http.StatusOK, transfertypes.CompleteFileResponse{
					ID:        file.ID,
					Name:      file.Name,
					Size:      file.Size,
					ChunkSize: file.Multipart.ChunkSize,
				})
				return
			}
		}
		notFound(c, "File")

	case method == http.MethodPut && len(seg) == 2 && seg[1] == "finalize":
		transfer, ok := f.transfers[seg[0]]
		if !ok {
			notFound(c, "Transfer")
			return
		}
		url := "https://we.tl/t-" + transfer.ID
		transfer.State = "processing"
		transfer.URL = &url
		c.JSON(http.StatusOK, transfer)

	default:
		notFound(c, "Route")
	}
}

func (f *FakeAPI) handleBoards(c *gin.Context) {
	seg := segments(c)
	method := c.Request.Method

	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case method == http.MethodPost && len(seg) == 0:
		var req boardtypes.CreateBoardRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		id := f.BoardID
		if id == "" {
			id = f.nextID("board")
		}
		board := &boardtypes.Board{
			ID:          id,
			Name:        req.Name,
			Description: req.Description,
			State:       "downloadable",
			URL:         "https://we.tl/b-" + id,
			Items:       []boardtypes.Item{},
		}
		f.boards[id] = board
		c.JSON(http.StatusCreated, board)

	case method == http.MethodGet && len(seg) == 1:
		board, ok := f.boards[seg[0]]
		if !ok {
			notFound(c, "Board")
			return
		}
		c.JSON(http.StatusOK, board)

	case method == http.MethodPost && len(seg) == 2 && seg[1] == "links":
		board, ok := f.boards[seg[0]]
		if !ok {
			notFound(c, "Board")
			return
		}
		var req []boardtypes.AddLink
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		links := make([]boardtypes.Link, 0, len(req))
		for _, l := range req {
			link := boardtypes.Link{
				ID:   f.nextID("link"),
				URL:  l.URL,
				Type: "link",
				Meta: boardtypes.LinkMeta{Title: l.Title},
			}
			links = append(links, link)
			meta := link.Meta
			board.Items = append(board.Items, boardtypes.Item{ID: link.ID, Type: "link", URL: link.URL, Meta: &meta})
		}
		c.JSON(http.StatusCreated, links)

	case method == http.MethodPost && len(seg) == 2 && seg[1] == "files":
		board, ok := f.boards[seg[0]]
		if !ok {
			notFound(c, "Board")
			return
		}
		var req []boardtypes.FileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		created := make([]boardtypes.File, 0, len(req))
		for _, file := range req {
			id := f.nextID("file")
			mp := f.multipart(file.Size)
			mp.ID = "mp-" + id
			created = append(created, boardtypes.File{ID: id, Name: file.Name, Size: file.Size, Type: "file", Multipart: mp})
			board.Items = append(board.Items, boardtypes.Item{ID: id, Type: "file", Name: file.Name, Size: file.Size, Multipart: &mp})
		}
		c.JSON(http.StatusCreated, created)

	case method == http.MethodGet && len(seg) == 6 && seg[1] == "files" && seg[3] == "upload-url":
		if _, ok := f.boards[seg[0]]; !ok {
			notFound(c, "Board")
			return
		}
		if seg[5] != "mp-"+seg[2] {
			c.JSON(http.StatusBadRequest, gin.H{"message": "unknown multipart upload"})
			return
		}
		part, _ := strconv.Atoi(seg[4])
		c.JSON(http.StatusOK, gin.H{"success": true, "url": f.storageURL(seg[2], part)})

	case method == http.MethodPut && len(seg) == 4 && seg[1] == "files" && seg[3] == "upload-complete":
		if _, ok := f.boards[seg[0]]; !ok {
			notFound(c, "Board")
			return
		}
		c.JSON(http.StatusOK, boardtypes.CompleteFileResponse{Success: true, Message: "File is marked as complete."})

	default:
		notFound(c, "Route")
	}
}
