package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/phase-skew-monitor/configs"
	"github.com/RyanBlaney/phase-skew-monitor/internal/render"
)

var (
	// Render command flags
	renderWidth        int
	renderHeight       int
	renderTheme        string
	renderDynamicRange float64
)

// renderCmd represents the render command
var renderCmd = &cobra.Command{
	Use:   "render [spectrum-csv] [output-png]",
	Short: "Render a spectrum CSV as a PNG heatmap",
	Long: `Render an exported spectrum CSV as a dual-panel PNG heatmap.

The image stacks the DSA channel above the MIO channel with frequency along
the horizontal axis. Amplitudes are mapped to color on a logarithmic scale
spanning the configured dynamic range below the loudest bin.

Examples:
  # Render the configured spectrum export
  phase-skew-monitor render

  # Render a specific CSV to a specific image
  phase-skew-monitor render spectrum.csv spectrum.png

  # Render with the thermal theme at a custom size
  phase-skew-monitor render --theme thermal --width 1920 --height 1080`,
	Args: cobra.MaximumNArgs(2),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().IntVar(&renderWidth, "width", 0,
		"image width in pixels (0=use configuration)")
	renderCmd.Flags().IntVar(&renderHeight, "height", 0,
		"image height in pixels (0=use configuration)")
	renderCmd.Flags().StringVar(&renderTheme, "theme", "",
		"color theme (classic, grayscale, thermal)")
	renderCmd.Flags().Float64Var(&renderDynamicRange, "dynamic-range", 0,
		"dynamic range in dB below the loudest bin (0=use configuration)")
}

func runRender(cmd *cobra.Command, args []string) error {
	config, err := configs.LoadConfig()
	if err != nil {
		return err
	}

	// Override with CLI flags
	if renderWidth > 0 {
		config.Render.Width = renderWidth
	}
	if renderHeight > 0 {
		config.Render.Height = renderHeight
	}
	if renderTheme != "" {
		config.Render.Theme = renderTheme
	}
	if renderDynamicRange > 0 {
		config.Render.DynamicRange = renderDynamicRange
	}

	inputPath := config.Output.SpectrumPath
	if len(args) >= 1 {
		inputPath = args[0]
	}
	if inputPath == "" {
		return fmt.Errorf("no spectrum CSV to render; pass a path or configure output.spectrum_path")
	}

	outputPath := strings.TrimSuffix(inputPath, ".csv") + ".png"
	if len(args) == 2 {
		outputPath = args[1]
	}

	spectrum, err := render.LoadSpectrumCSV(inputPath)
	if err != nil {
		return err
	}

	renderer, err := render.NewRenderer(render.RenderConfig{
		Width:          config.Render.Width,
		Height:         config.Render.Height,
		Theme:          render.ColorTheme(config.Render.Theme),
		DynamicRangeDB: config.Render.DynamicRange,
	})
	if err != nil {
		return err
	}

	img, err := renderer.Render(spectrum)
	if err != nil {
		return err
	}

	if err := render.WritePNG(img, outputPath); err != nil {
		return err
	}

	fmt.Printf("%s✓%s Rendered %d bins (%.1f Hz to %.1f Hz) to %s\n",
		ColorGreen, ColorReset, spectrum.Bins(), spectrum.FrequencyMin, spectrum.FrequencyMax, outputPath)

	return nil
}
