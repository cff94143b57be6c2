package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/five82/tmplplay/internal/app"
)

func newRootCmd() *cobra.Command {
	var opts app.Options

	root := &cobra.Command{
		Use:   "tmplplay",
		Short: "Live playground for Go text/template",
		Long: `tmplplay compiles a Go struct and a text/template into a Render method
while you type, and shows the generated code next to both buffers.

Buffers and the chosen theme persist between runs. A share link carries
both buffers; pass it with --saved to open it.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Query the terminal background before Bubble Tea owns stdin.
			_ = lipgloss.HasDarkBackground()
			return app.Run(cmd.Context(), opts)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default: ~/.config/tmplplay/config.toml)")
	pf.StringVar(&opts.Saved, "saved", "", "share link or payload to open")
	pf.StringVar(&opts.StructFile, "struct-file", "", "load the struct buffer from a file and follow its changes")
	pf.StringVar(&opts.TemplateFile, "template-file", "", "load the template buffer from a file and follow its changes")
	pf.StringVar(&opts.Theme, "theme", "", "theme id (see 'tmplplay themes')")
	pf.BoolVar(&opts.Debug, "debug", false, "log debug messages")

	root.AddCommand(
		newCompileCmd(&opts),
		newShareCmd(&opts),
		newExportCmd(&opts),
		newThemesCmd(&opts),
		newLogCmd(&opts),
	)
	return root
}
