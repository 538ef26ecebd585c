package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/golang/glog"
	"github.com/urfave/cli/v2"

	"github.com/browsercompare/browsercompare"
	"github.com/browsercompare/browsercompare/fixture"
	"github.com/browsercompare/browsercompare/internal/download"
)

// DefaultAddr is where serve listens unless told otherwise.
const DefaultAddr = "127.0.0.1:5000"

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "browsercompare"
	app.Usage = "compare Go browser automation libraries"
	app.Flags = []cli.Flag{
		&cli.IntFlag{
			Name:  "v",
			Usage: "log verbosity",
		},
	}
	app.Before = func(c *cli.Context) error {
		if c.IsSet("v") {
			return flag.Set("v", strconv.Itoa(c.Int("v")))
		}
		return nil
	}
	app.Commands = []*cli.Command{
		{
			Name:   "serve",
			Usage:  "serve the fixture pages",
			Action: serve,
			Flags:  serveFlags(),
		},
		{
			Name:   "fetch",
			Usage:  "download drivers and browsers",
			Action: fetch,
			Flags:  fetchFlags(),
		},
		{
			Name:   "notes",
			Usage:  "print the comparison matrix or the notes of one library",
			Action: notes,
			Flags:  notesFlags(),
		},
	}
	return app
}

func serveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "addr",
			Usage: "address to listen on; port 0 picks a free port",
			Value: DefaultAddr,
		},
	}
}

func serve(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return fixture.Serve(ctx, c.String("addr"), c.App.ErrWriter)
}

func fetchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "dir",
			Usage: "directory to download into",
			Value: "drivers",
		},
		&cli.BoolFlag{
			Name:  "browsers",
			Usage: "download Chromium and Firefox too",
			Value: true,
		},
		&cli.BoolFlag{
			Name:  "latest",
			Usage: "download the latest versions instead of the pinned ones",
		},
		&cli.StringFlag{
			Name:  "chromium_build",
			Usage: "Chromium snapshot build; the last change if empty",
		},
	}
}

func fetch(c *cli.Context) error {
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	f, err := download.NewFetcher(ctx, nil)
	if err != nil {
		return err
	}
	files := f.Files(ctx, download.Options{
		Browsers:      c.Bool("browsers"),
		Latest:        c.Bool("latest"),
		ChromiumBuild: c.String("chromium_build"),
	})
	if len(files) == 0 {
		return fmt.Errorf("nothing to download")
	}
	glog.Infof("Downloading %d files into %q", len(files), c.String("dir"))
	return f.DownloadAll(ctx, files, c.String("dir"))
}

func notesFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "format",
			Usage: "text or markdown",
			Value: "text",
		},
		&cli.StringFlag{
			Name:  "library",
			Usage: "print the notes of this library instead of the matrix",
		},
	}
}

func notes(c *cli.Context) error {
	format, err := browsercompare.ParseFormat(c.String("format"))
	if err != nil {
		return err
	}
	if name := c.String("library"); name != "" {
		lib, err := browsercompare.Lookup(name)
		if err != nil {
			return err
		}
		return browsercompare.RenderNotes(c.App.Writer, lib, format)
	}
	return browsercompare.RenderTable(c.App.Writer, browsercompare.Libraries(), format)
}
