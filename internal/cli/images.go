package cli

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/Additional-Code/shopkit/internal/app"
	"github.com/Additional-Code/shopkit/internal/config"
	"github.com/Additional-Code/shopkit/internal/presentation/terminal/response"
	imagesvc "github.com/Additional-Code/shopkit/internal/service/image"
)

func newProcessImagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process-product-images <input-dir> <output-dir>",
		Short: "Resize product images and optionally watermark them",
		Args:  exactArgs("input-dir", "output-dir"),
		RunE: func(cmd *cobra.Command, args []string) error {
			watermark, _ := cmd.Flags().GetString("watermark-text")

			var (
				svc *imagesvc.Service
				cfg config.Config
			)
			opts := []fx.Option{app.Core, app.Images, fx.Populate(&svc, &cfg)}
			if cmd.Flags().Changed("width") || cmd.Flags().Changed("height") {
				width, _ := cmd.Flags().GetInt("width")
				height, _ := cmd.Flags().GetInt("height")
				opts = append(opts, override(func(c *config.Config) {
					if cmd.Flags().Changed("width") {
						c.Images.Width = width
					}
					if cmd.Flags().Changed("height") {
						c.Images.Height = height
					}
				}))
			}

			return runWithApp(cmd.Context(), fx.Options(opts...), func(ctx context.Context) error {
				out := cmd.OutOrStdout()
				n, err := svc.Process(ctx, args[0], args[1], cfg.Images.Width, cfg.Images.Height)
				if err != nil {
					return err
				}
				if watermark != "" {
					if _, err := svc.Watermark(ctx, args[1], watermark); err != nil {
						return err
					}
				}
				return response.New(out).
					WithMessage("Processed %d images", n).
					Build()
			})
		},
	}
	cmd.Flags().Int("width", 800, "Maximum output width in pixels")
	cmd.Flags().Int("height", 800, "Maximum output height in pixels")
	cmd.Flags().String("watermark-text", "", "Text drawn at the bottom-right of each processed image")
	return cmd
}
