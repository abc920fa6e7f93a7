package ui

import (
	"fmt"
	"io"
)

// BannerConfig holds everything the startup banner prints. Colors are plain
// ANSI sequences; leave them empty to print without color.
type BannerConfig struct {
	Art     string
	Author  string
	Site    string
	Accent  string
	Muted   string
	Reset   string
	Enabled bool
}

const defaultArt = `
      █████╗ ██████╗
     ██╔══██╗██╔══██╗
     ███████║██████╔╝
     ██╔══██║██╔═══╝
     ██║  ██║██║
     ╚═╝  ╚═╝╚═╝
`

func DefaultBanner(site string) BannerConfig {
	return BannerConfig{
		Art:     defaultArt,
		Author:  "mangafetch",
		Site:    site,
		Accent:  "\033[1;31m",
		Muted:   "\033[1;30m",
		Reset:   "\033[0;0m",
		Enabled: true,
	}
}

// PlainBanner strips the colors from cfg.
func PlainBanner(cfg BannerConfig) BannerConfig {
	cfg.Accent, cfg.Muted, cfg.Reset = "", "", ""
	return cfg
}

func PrintBanner(w io.Writer, cfg BannerConfig) {
	if !cfg.Enabled {
		return
	}

	_, _ = fmt.Fprint(w, cfg.Accent+cfg.Art+cfg.Reset+"\n")
	if cfg.Author != "" {
		_, _ = fmt.Fprintf(w, "      %s%s%s\n", cfg.Muted, cfg.Author, cfg.Reset)
	}
	if cfg.Site != "" {
		_, _ = fmt.Fprintf(w, "      %s%s%s\n\n", cfg.Muted, cfg.Site, cfg.Reset)
	}
}
