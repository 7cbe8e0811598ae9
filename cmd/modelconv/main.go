// modelconv flattens glTF scenes into a packed binary plus a JSON manifest.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/modelconv/internal/config"
	"github.com/Faultbox/modelconv/internal/converter"
	"github.com/Faultbox/modelconv/internal/dump"
	"github.com/Faultbox/modelconv/internal/importer"
	"github.com/Faultbox/modelconv/internal/logger"
	"github.com/Faultbox/modelconv/pkg/asset"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "convert", "c":
		cmdConvert(args)
	case "info":
		cmdInfo(args)
	case "textures":
		cmdTextures(args)
	case "dump":
		cmdDump(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`modelconv - flatten glTF scenes into packed binary assets

Usage:
  modelconv <command> [options]

Commands:
  convert [flags] <model>...      Convert .gltf/.glb files
  info <manifest.json>            Validate a package and show its layout
  textures <manifest.json>        Write sRGB/linear texture lists for a package
  dump <model|manifest.json>      Print an imported scene or a manifest
  config [flags] -w <file>        Write the effective configuration

Convert flags:
  -config <file>        Config file (default ./modelconv.yaml, then user config dir)
  -o <dir>              Output directory
  -colors               Pack vertex colors
  -max-depth <n>        Maximum node hierarchy depth
  -texture-ext <.ext>   Rewrite texture paths to <output>/<stem><.ext>
  -no-texture-lists     Skip texture list files
  -debug                Debug logging
  -log <file>           Also log to a rotating file

Examples:
  modelconv convert -o build/assets models/BoomBox.glb
  modelconv convert -texture-ext .dds models/*.gltf
  modelconv info build/assets/BoomBox/BoomBox.json`)
}

// setup parses the shared flags, loads the config and starts logging.
func setup(name string, args []string) (*config.Config, *flag.FlagSet) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	flags := config.BindFlags(fs)
	fs.Parse(args)

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg, fs
}

func cmdConvert(args []string) {
	cfg, fs := setup("convert", args)
	defer logger.Sync()

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: modelconv convert [flags] <model>...")
		os.Exit(1)
	}

	conv := converter.New(cfg, logger.Named("convert"))
	failed := 0
	for _, path := range fs.Args() {
		res, err := conv.ConvertFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", path, err)
			failed++
			continue
		}
		fmt.Printf("OK   %s -> %s (%d meshes, %.1f KB, %s)\n",
			path, res.ManifestPath, res.Meshes, float64(res.Bytes)/1024, res.Elapsed.Round(1e6))
	}

	if failed > 0 {
		logger.Error("conversion finished with failures", zap.Int("failed", failed), zap.Int("total", fs.NArg()))
		logger.Sync()
		os.Exit(1)
	}
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: modelconv info <manifest.json>")
		os.Exit(1)
	}

	pkg, err := converter.Inspect(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	m := pkg.Manifest

	fmt.Printf("Manifest:  %s\n", args[0])
	fmt.Printf("Binary:    %s (%d bytes)\n", pkg.BinaryPath, m.BinaryInfo.TotalSize())
	fmt.Printf("Meshes:    %d\n", len(m.Meshes))
	fmt.Printf("Materials: %d\n", len(m.MaterialSettings.Materials))
	fmt.Printf("Textures:  %d\n", len(m.MaterialSettings.Textures))
	fmt.Printf("Samplers:  %d\n", len(m.MaterialSettings.Samplers))
	fmt.Println()
	fmt.Println("Sections:")
	fmt.Printf("  %-12s %10s %8s %10s %8s\n", "name", "offset", "stride", "size", "count")
	for _, s := range asset.Sections {
		si := m.BinaryInfo.Get(s)
		fmt.Printf("  %-12s %10d %8d %10d %8d\n", s, si.Offset, si.Stride, si.Size, si.Count())
	}

	fmt.Println()
	fmt.Println("Meshes:")
	for i, mesh := range m.Meshes {
		fmt.Printf("  %3d %-24s tris=%-6d verts=%-6d instances=%-3d material=%d\n",
			i, mesh.Name, mesh.IndexBufferLen/3, mesh.VertexNum, len(mesh.Transforms), mesh.Material)
	}
}

func cmdTextures(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: modelconv textures <manifest.json>")
		os.Exit(1)
	}

	f, err := os.Open(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	m, err := asset.ReadManifest(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	written, err := converter.WriteTextureLists(args[0], m)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	for _, p := range written {
		fmt.Println(p)
	}
}

func cmdDump(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: modelconv dump <model|manifest.json>")
		os.Exit(1)
	}
	path := args[0]

	if strings.EqualFold(filepath.Ext(path), ".json") {
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		m, err := asset.ReadManifest(f)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		dump.Manifest(os.Stdout, m)
		return
	}

	s, err := importer.Open(path, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	dump.Scene(os.Stdout, s)
}

func cmdConfig(args []string) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	flags := config.BindFlags(fs)
	out := fs.String("w", "", "Write the config to this file instead of stdout")
	fs.Parse(args)

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *out == "" {
		data, err := cfg.Marshal()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Stdout.Write(data)
		return
	}
	if err := cfg.SaveTo(*out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Config written to %s\n", *out)
}
