/*
cardforge previews a payment or ID card (ISO/IEC 7810 ID-1) in 3D while its
appearance is edited.
The keyboard stands in for the control panel; see testbed.ControlPanel.
*/
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spaghettifunk/cardforge/engine"
	"github.com/spaghettifunk/cardforge/engine/core"
	"github.com/spaghettifunk/cardforge/engine/platform"
	"github.com/spaghettifunk/cardforge/engine/renderer/opengl"
	"github.com/spaghettifunk/cardforge/testbed"
)

var (
	configPath string
	debug      bool
	watch      bool
	textures   = map[string]*string{}
)

func main() {
	cmd := &cobra.Command{
		Use:   "cardforge",
		Short: "Interactive 3D payment/ID card preview",
		Long: `cardforge - Interactive 3D payment/ID card preview

Controls:
  Left drag     - Orbit
  Right drag    - Pan
  Scroll        - Zoom
  1/2/3         - Studio, outdoor, dramatic lighting
  F             - Toggle glossy/matte
  C/E/H         - Cycle base, edge and hot-foil color
  M/N           - Metalness up/down
  T/R           - Roughness up/down
  P/O           - Opacity up/down
  U/Y           - Relief height up/down
  K/J           - Grain size up/down
  5/6/7/8       - Send dropped images to the color/normal/roughness/metalness map
  Drop a file   - Upload it to the selected map
  Backspace     - Clear the selected map
  Esc           - Quit`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to a TOML configuration file")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")
	cmd.Flags().BoolVar(&watch, "watch", false, "Re-upload texture files when they change")
	for _, channel := range []string{"color", "normal", "roughness", "metalness"} {
		textures[channel] = cmd.Flags().String(channel, "", "Image for the "+channel+" map")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		core.LogError("cardforge failed", "err", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	config := engine.DefaultApplicationConfig()
	if configPath != "" {
		c, err := engine.LoadApplicationConfig(configPath)
		if err != nil {
			return err
		}
		config = c
	}
	if debug {
		config.LogLevel = core.DebugLevel.String()
	}
	if watch {
		config.Textures.Watch = true
	}
	for channel, path := range textures {
		if *path != "" {
			config.Appearance.Textures[channel] = *path
		}
	}

	panel := testbed.NewControlPanel(config)
	e, err := engine.New(panel.Game, opengl.New(), func(events *core.EventSystem, input *core.InputSystem) platform.Platform {
		return platform.New(events, input, config.Window.VSync)
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := e.Shutdown(); err != nil {
			core.LogError("shutdown", "err", err)
		}
	}()

	if err := e.Initialize(); err != nil {
		return err
	}
	return e.Run(ctx)
}
