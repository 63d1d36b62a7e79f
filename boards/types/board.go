package types

import (
	uploadtypes "github.com/Yulian302/lfusys-wetransfer/uploads/types"
)

type CreateBoardRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

type FileRequest struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

type AddLink struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

type LinkMeta struct {
	Title string `json:"title"`
}

type Link struct {
	ID   string   `json:"id"`
	URL  string   `json:"url"`
	Type string   `json:"type"`
	Meta LinkMeta `json:"meta"`
}

type File struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	Size      int64                 `json:"size"`
	Type      string                `json:"type"`
	Multipart uploadtypes.Multipart `json:"multipart"`
}

// Item is one entry of a board, either a file or a link depending on Type.
type Item struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Name      string                 `json:"name,omitempty"`
	Size      int64                  `json:"size,omitempty"`
	URL       string                 `json:"url,omitempty"`
	Meta      *LinkMeta              `json:"meta,omitempty"`
	Multipart *uploadtypes.Multipart `json:"multipart,omitempty"`
}

type Board struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	State       string  `json:"state"`
	URL         string  `json:"url"`
	Items       []Item  `json:"items"`
}

// BoardFiles is the result of adding files to an existing board.
type BoardFiles struct {
	BoardID string `json:"board_id"`
	Files   []File `json:"files"`
}

type CompleteFileResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (f File) Remote() uploadtypes.RemoteFile {
	return uploadtypes.RemoteFile{
		ID:        f.ID,
		Name:      f.Name,
		Size:      f.Size,
		Multipart: f.Multipart,
	}
}
