package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/mac"

	"whiteboard/internal/app"
	"whiteboard/internal/service"
	"whiteboard/internal/storage"
)

var desktopCmd = &cobra.Command{
	Use:   "desktop",
	Short: "Open the whiteboard window",
	RunE:  runDesktop,
}

func runDesktop(_ *cobra.Command, _ []string) error {
	if cfg.FrontendDir == "" {
		return fmt.Errorf("frontend_dir is not configured")
	}
	if _, err := os.Stat(cfg.FrontendDir); err != nil {
		return fmt.Errorf("frontend assets: %w", err)
	}

	size, err := savedWindowSize()
	if err != nil {
		return err
	}
	application := app.New(cfg, configPath())

	// macOS needs an Edit menu for Cmd+C/V/X/A to reach the WebView
	appMenu := menu.NewMenu()
	appMenu.Append(menu.EditMenu())

	err = wails.Run(&options.App{
		Title:     "Whiteboard",
		Width:     size.Width,
		Height:    size.Height,
		MinWidth:  800,
		MinHeight: 600,
		AssetServer: &assetserver.Options{
			Assets: os.DirFS(cfg.FrontendDir),
		},
		BackgroundColour: &options.RGBA{R: 15, G: 15, B: 20, A: 1},
		Menu:             appMenu,
		OnStartup:        application.Startup,
		OnShutdown:       application.Shutdown,
		Bind: []interface{}{
			application,
		},
		Mac: &mac.Options{
			TitleBar: &mac.TitleBar{
				TitlebarAppearsTransparent: true,
				HideTitle:                  true,
				FullSizeContent:            true,
				UseToolbar:                 true,
				HideToolbarSeparator:       true,
			},
			About: &mac.AboutInfo{
				Title:   "Whiteboard",
				Message: "Boards, shapes and guidelines, editable by you and your agents",
			},
		},
	})
	if err != nil {
		return fmt.Errorf("running desktop: %w", err)
	}
	return nil
}

// savedWindowSize reads the window size kept by the last session before
// the window opens.
func savedWindowSize() (service.WindowSize, error) {
	db, err := storage.New(cfg.DBPath, cfg.DataDir)
	if err != nil {
		return service.WindowSize{}, fmt.Errorf("reading window size: %w", err)
	}
	defer db.Close()
	return service.NewSettingsService(storage.NewSlotStore(db)).LoadWindowSize(), nil
}
