/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/png"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"vecdraw/internal/config"
	"vecdraw/internal/crash"
	"vecdraw/internal/drawing"
	"vecdraw/internal/editor"
	"vecdraw/internal/export"
	applog "vecdraw/internal/log"
	"vecdraw/internal/serialize"
	"vecdraw/internal/server"
	"vecdraw/internal/shape"
	"vecdraw/internal/storage"
	"vecdraw/internal/version"
)

func usage() {
	fmt.Println("vecdraw vector drawing core")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  vecdraw version|-v|--version              Show version")
	fmt.Println("  vecdraw new <file> <name>                  Create an empty drawing")
	fmt.Println("  vecdraw info <file>                        Print a drawing summary")
	fmt.Println("  vecdraw normalize <in> [<out>]             Import any accepted document and save it natively")
	fmt.Println("  vecdraw export <file> <out>                Export by extension: .json .svg .pdf .png")
	fmt.Println("  vecdraw batch <file> <web|print> [<dir>]   Export with a preset")
	fmt.Println("  vecdraw prune <file> <keep>                Keep only the newest <keep> backups")
	fmt.Println("  vecdraw index <file> <db>                  Rebuild the search index and preview")
	fmt.Println("  vecdraw search <db> <text> [<type>...]     Full text search in an index")
	fmt.Println("  vecdraw serve [<addr>]                     Serve the HTTP and websocket API")
}

func fail(l *slog.Logger, msg string, err error) {
	l.Error(msg, slog.Any("err", err))
	fmt.Println("Error:", err)
	os.Exit(1)
}

func need(args []string, n int, msg string) {
	if len(args) < n {
		fmt.Println(msg)
		usage()
		os.Exit(2)
	}
}

func main() {
	cfg, cfgErr := config.Load()
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})
	defer func() { _ = applog.Close() }()
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", cfgErr))
		cfg = config.Defaults()
	}

	var target crash.Target
	defer crash.Recover(&target)
	track := func(path string, d *drawing.Drawing) {
		target.Path = path
		target.Drawing = func() *drawing.Drawing { return d }
	}

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) < 2 {
		usage()
		return
	}
	ctx := context.Background()

	switch args[1] {
	case "version", "--version", "-v":
		fmt.Println(version.String())
	case "new":
		need(args, 4, "new requires <file> and <name>")
		path := withExt(args[2])
		if _, err := os.Stat(path); err == nil {
			fail(l, "new failed", fmt.Errorf("%s already exists", path))
		}
		d := drawing.New(args[3])
		if err := storage.Save(path, d); err != nil {
			fail(l, "new failed", err)
		}
		fmt.Println("Created drawing at", path)
	case "info":
		need(args, 3, "info requires <file>")
		d := open(l, args[2])
		track(args[2], d)
		fmt.Printf("Drawing: %s (%s)\n", d.Name, d.ID)
		fmt.Printf("Shapes: %d\n", len(d.Shapes))
		fmt.Printf("Groups: %d\n", len(d.Groups))
		if b, ok := shape.UnionBounds(d.WorldShapes()); ok {
			fmt.Printf("Bounds: %.2f,%.2f %.2fx%.2f\n", b.X, b.Y, b.W, b.H)
		}
		fmt.Printf("Outline length: %.2f\n", shape.TotalLength(ctx, d.WorldShapes()))
		if bs, err := storage.Backups(args[2]); err == nil {
			fmt.Printf("Backups: %d\n", len(bs))
		}
	case "normalize":
		need(args, 3, "normalize requires <in>")
		data, err := os.ReadFile(args[2])
		if err != nil {
			fail(l, "read failed", err)
		}
		d, st, err := serialize.Import(data, editor.OptionsFromConfig(cfg).Style)
		if err != nil {
			fail(l, "import failed", err)
		}
		out := strings.TrimSuffix(args[2], filepath.Ext(args[2])) + storage.FileExt
		if len(args) > 3 {
			out = args[3]
		}
		track(out, d)
		if err := storage.Save(out, d); err != nil {
			fail(l, "save failed", err)
		}
		fmt.Printf("Imported %d shapes, %d groups, dropped %d\n", st.Shapes, st.Groups, st.Dropped)
		fmt.Println("Saved", out)
	case "export":
		need(args, 4, "export requires <file> and <out>")
		d := open(l, args[2])
		track(args[2], d)
		if err := export.WriteFile(args[3], d, renderOptions(cfg)); err != nil {
			fail(l, "export failed", err)
		}
		fmt.Println("Exported", args[3])
	case "batch":
		need(args, 4, "batch requires <file> and <preset>")
		d := open(l, args[2])
		track(args[2], d)
		opt := export.BatchOptions{Preset: export.PresetName(args[3]), Render: renderOptions(cfg)}
		if len(args) > 4 {
			opt.OutDir = args[4]
		}
		paths, err := export.BatchExport(d, opt)
		if err != nil {
			fail(l, "batch export failed", err)
		}
		for _, p := range paths {
			fmt.Println("Exported", p)
		}
	case "prune":
		need(args, 4, "prune requires <file> and <keep>")
		keep, err := strconv.Atoi(args[3])
		if err != nil || keep < 0 {
			fail(l, "prune failed", fmt.Errorf("invalid keep count %q", args[3]))
		}
		n, err := storage.PruneBackups(args[2], keep)
		if err != nil {
			fail(l, "prune failed", err)
		}
		fmt.Printf("Removed %d backups\n", n)
	case "index":
		need(args, 4, "index requires <file> and <db>")
		d := open(l, args[2])
		track(args[2], d)
		ix, recreated, err := storage.OpenOrRecreateIndex(ctx, args[3])
		if err != nil {
			fail(l, "open index failed", err)
		}
		defer ix.Close()
		if recreated {
			fmt.Println("Index was damaged and has been recreated")
		}
		if err := ix.Rebuild(ctx, d); err != nil {
			fail(l, "rebuild failed", err)
		}
		if err := storePreview(ctx, ix, d, cfg); err != nil {
			l.Warn("preview failed", slog.Any("err", err))
		}
		n, _ := ix.Count(ctx)
		fmt.Printf("Indexed %d shapes into %s\n", n, ix.Path())
	case "search":
		need(args, 4, "search requires <db> and <text>")
		ix, err := storage.OpenIndex(args[2])
		if err != nil {
			fail(l, "open index failed", err)
		}
		defer ix.Close()
		hits, err := ix.Search(ctx, storage.SearchQuery{Text: args[3], Types: args[4:]})
		if err != nil {
			fail(l, "search failed", err)
		}
		for _, h := range hits {
			fmt.Printf("%s\t%s\t%s\n", h.ID, h.Type, h.Snippet)
		}
		fmt.Printf("%d hits\n", len(hits))
	case "serve":
		if len(args) > 2 {
			cfg.Server.Addr = args[2]
		}
		sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := server.New(cfg).ListenAndServe(sctx); err != nil {
			fail(l, "server failed", err)
		}
	default:
		usage()
	}
}

func withExt(path string) string {
	if strings.HasSuffix(path, storage.FileExt) {
		return path
	}
	return path + storage.FileExt
}

func open(l *slog.Logger, path string) *drawing.Drawing {
	d, err := storage.Open(path)
	if err != nil {
		fail(l, "open failed", err)
	}
	return d
}

func renderOptions(cfg config.AppConfig) export.Options {
	return export.Options{JSON: editor.OptionsFromConfig(cfg).Export, Scale: cfg.Export.PNGScale}
}

// previewScale keeps index thumbnails small.
const previewScale = 0.25

func storePreview(ctx context.Context, ix *storage.Index, d *drawing.Drawing, cfg config.AppConfig) error {
	opt := renderOptions(cfg)
	opt.Scale = previewScale
	var buf bytes.Buffer
	if err := export.Write(&buf, export.FormatPNG, d, opt); err != nil {
		return err
	}
	img, _, err := image.DecodeConfig(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return err
	}
	return ix.PutPreview(ctx, buf.Bytes(), img.Width, img.Height)
}
