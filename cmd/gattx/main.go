package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/vitaminmoo/gattx/internal/cli"
	"github.com/vitaminmoo/gattx/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var c cli.CLI
	kctx := kong.Parse(&c,
		kong.Name("gattx"),
		kong.Description("Explore Bluetooth Low Energy peripherals: scan, walk GATT tables, read and write characteristics."),
		kong.UsageOnError(),
		kong.Vars{"config_path": config.DefaultPath()},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	err := kctx.Run(&c)
	kctx.FatalIfErrorf(err)
}
