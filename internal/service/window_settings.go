package service

import (
	"encoding/json"
	"fmt"
	"strconv"

	"whiteboard/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Settings persistence
// ─────────────────────────────────────────────────────────────
//
// Keeps the desktop window size and the drawing tool style between
// sessions, as "settings:*" entries of a SlotStore.

// WindowSize holds the saved window dimensions.
type WindowSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type SettingsService struct {
	slots domain.SlotStore
}

func NewSettingsService(slots domain.SlotStore) *SettingsService {
	return &SettingsService{slots: slots}
}

const (
	settingWindowWidth  = "settings:window_width"
	settingWindowHeight = "settings:window_height"
	settingToolStyle    = "settings:tool_style"
	defaultWindowWidth  = 1280
	defaultWindowHeight = 800
)

// LoadWindowSize returns the saved window dimensions, or defaults when
// nothing usable is stored.
func (s *SettingsService) LoadWindowSize() WindowSize {
	w := s.intSetting(settingWindowWidth, defaultWindowWidth)
	h := s.intSetting(settingWindowHeight, defaultWindowHeight)
	if w < 800 {
		w = defaultWindowWidth
	}
	if h < 600 {
		h = defaultWindowHeight
	}
	return WindowSize{Width: w, Height: h}
}

func (s *SettingsService) SaveWindowSize(width, height int) error {
	if err := s.slots.SetSlot(settingWindowWidth, strconv.Itoa(width)); err != nil {
		return fmt.Errorf("save window size: %w", err)
	}
	if err := s.slots.SetSlot(settingWindowHeight, strconv.Itoa(height)); err != nil {
		return fmt.Errorf("save window size: %w", err)
	}
	return nil
}

func (s *SettingsService) intSetting(key string, fallback int) int {
	raw, ok, err := s.slots.GetSlot(key)
	if err != nil || !ok {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// LoadToolStyle returns the saved tool style, falling back to
// DefaultToolStyle field by field.
func (s *SettingsService) LoadToolStyle() ToolStyle {
	style := DefaultToolStyle
	raw, ok, err := s.slots.GetSlot(settingToolStyle)
	if err != nil || !ok {
		return style
	}
	var saved ToolStyle
	if err := json.Unmarshal([]byte(raw), &saved); err != nil {
		return style
	}
	style.Fill = firstNonEmpty(saved.Fill, style.Fill)
	style.Stroke = firstNonEmpty(saved.Stroke, style.Stroke)
	style.TextColor = firstNonEmpty(saved.TextColor, style.TextColor)
	if saved.StrokeWidth > 0 {
		style.StrokeWidth = saved.StrokeWidth
	}
	if saved.FontSize > 0 {
		style.FontSize = saved.FontSize
	}
	return style
}

func (s *SettingsService) SaveToolStyle(style ToolStyle) error {
	data, err := json.Marshal(style)
	if err != nil {
		return err
	}
	if err := s.slots.SetSlot(settingToolStyle, string(data)); err != nil {
		return fmt.Errorf("save tool style: %w", err)
	}
	return nil
}
