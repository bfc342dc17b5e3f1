package main

import (
	"log/slog"
	"os"

	"github.com/zapponejosh/shift-rota/internal/logger"
	"github.com/zapponejosh/shift-rota/internal/palette"
	"github.com/zapponejosh/shift-rota/internal/rota"
)

// rootOptions are shared by all subcommands.
type rootOptions struct {
	palettePath string
	logLevel    string

	schedule *rota.Schedule
	palette  palette.Palette
	logger   *slog.Logger
}

func (o *rootOptions) init() error {
	o.logger = logger.New(os.Stderr, o.logLevel, "text")

	pal, err := palette.Load(o.palettePath)
	if err != nil {
		return err
	}
	o.palette = pal
	o.schedule = rota.Default2026()
	return nil
}
