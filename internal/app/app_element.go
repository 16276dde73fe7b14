package app

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"mime"
	"os"
	"path/filepath"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"whiteboard/internal/domain"
	"whiteboard/internal/service"
)

// ============================================================
// Elements
// ============================================================

func (a *App) AddElement(spec service.ElementSpec) (domain.ObjectInfo, error) {
	return a.stack.ws.AddElement(a.ctx, spec)
}

// AddText places a text element at a world point.
func (a *App) AddText(x, y float64, text string) domain.ObjectInfo {
	return a.stack.ws.AddText(a.ctx, x, y, text)
}

// InsertImage asks for an image file and places it at a world point.
func (a *App) InsertImage(x, y float64) (domain.ObjectInfo, error) {
	return a.stack.ws.InsertImage(a.ctx, x, y, a.picker)
}

// AddPolygonPoint returns the finished polygon once the point closes it.
func (a *App) AddPolygonPoint(x, y float64) *domain.ObjectInfo {
	info, done := a.stack.ws.AddPolygonPoint(a.ctx, x, y)
	if !done {
		return nil
	}
	return &info
}

func (a *App) FinishPolygon(closePath bool) (*domain.ObjectInfo, error) {
	info, ok := a.stack.ws.FinishPolygon(a.ctx, closePath)
	if !ok {
		return nil, fmt.Errorf("polygon needs at least 3 points")
	}
	return &info, nil
}

func (a *App) CancelPolygon() {
	a.stack.ws.CancelPolygon()
}

func (a *App) PolygonPoints() []float64 {
	return a.stack.ws.PolygonPoints()
}

func (a *App) ListObjects() []domain.ObjectInfo {
	return a.stack.ws.Objects()
}

// ObjectAt returns the topmost element under a world point, or nil.
func (a *App) ObjectAt(x, y float64) *domain.ObjectInfo {
	info, ok := a.stack.ws.ObjectAt(x, y)
	if !ok {
		return nil
	}
	return &info
}

func (a *App) MoveObject(id string, dx, dy float64) (domain.ObjectInfo, error) {
	return a.stack.ws.MoveObject(a.ctx, id, dx, dy)
}

func (a *App) MoveObjectToBoard(id, boardID string) (domain.ObjectInfo, error) {
	return a.stack.ws.MoveObjectToBoard(a.ctx, id, boardID)
}

func (a *App) UpdateProperties(id string, u service.PropertyUpdate) ([]service.Property, error) {
	return a.stack.ws.UpdateProperties(a.ctx, id, u)
}

func (a *App) DeleteObject(id string) error {
	return a.stack.ws.DeleteObject(a.ctx, id)
}

func (a *App) QueryObjects(expression string) ([]domain.ObjectInfo, error) {
	return a.stack.ws.SelectWhere(expression)
}

// ============================================================
// Image picker
// ============================================================

// dialogImagePicker opens a native file dialog and inlines the chosen
// image as a data URL.
type dialogImagePicker struct {
	ctx context.Context
}

func (p dialogImagePicker) PickImage(_ context.Context) (service.ImageFile, error) {
	path, err := wailsRuntime.OpenFileDialog(p.ctx, wailsRuntime.OpenDialogOptions{
		Title: "Insert Image",
		Filters: []wailsRuntime.FileFilter{
			{DisplayName: "Images (*.png;*.jpg;*.jpeg;*.gif)", Pattern: "*.png;*.jpg;*.jpeg;*.gif"},
		},
	})
	if err != nil {
		return service.ImageFile{}, err
	}
	if path == "" {
		return service.ImageFile{}, service.ErrNoImage
	}
	return loadImageFile(path)
}

func loadImageFile(path string) (service.ImageFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return service.ImageFile{}, fmt.Errorf("read image: %w", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return service.ImageFile{}, fmt.Errorf("decode image %s: %w", filepath.Base(path), err)
	}
	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return service.ImageFile{
		URL:    "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data),
		Width:  float64(cfg.Width),
		Height: float64(cfg.Height),
	}, nil
}
