// Command ggfx applies a JSON filter chain to an image file.
//
//	ggfx apply --in photo.png --out result.png --filters chain.json
//	ggfx kinds
//
// Settings can come from a .env file in the working directory:
//
//	GGFX_BACKEND=cpu    # auto (default), cpu or wgpu
//	GGFX_LOG_LEVEL=debug
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	var opts applyOptions

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	rootCmd := &cobra.Command{
		Use:  "ggfx",
		Long: `Apply filter chains to images on the GPU or CPU`,
	}

	applyCmd := &cobra.Command{
		Use:   "apply --in <file> --out <file> --filters <chain.json> [--backend auto|cpu|wgpu]",
		Short: "Apply a filter chain to an image",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runApply(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
	applyCmd.Flags().StringVar(&opts.in, "in", "", "Input image")
	applyCmd.Flags().StringVar(&opts.out, "out", "", "Output image (.png, .jpg, .jpeg or .bmp)")
	applyCmd.Flags().StringVar(&opts.filters, "filters", "", "JSON array of serialized filters")
	applyCmd.Flags().StringVar(&opts.backend, "backend", envOr("GGFX_BACKEND", "auto"), "Backend: auto, cpu or wgpu")
	applyCmd.Flags().StringVar(&opts.logLevel, "log-level", envOr("GGFX_LOG_LEVEL", ""), "Log level: debug, info, warn or error")
	applyCmd.Flags().IntVar(&opts.quality, "quality", 90, "JPEG quality")
	_ = applyCmd.MarkFlagRequired("in")
	_ = applyCmd.MarkFlagRequired("out")
	_ = applyCmd.MarkFlagRequired("filters")

	kindsCmd := &cobra.Command{
		Use:   "kinds",
		Short: "List filter kinds with their default parameters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listKinds(cmd.OutOrStdout())
		},
	}

	rootCmd.AddCommand(applyCmd, kindsCmd)
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
