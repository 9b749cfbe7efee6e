package main

import (
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/openpak/pak/pkg/pak"
)

var logger zerolog.Logger
var rootCmd *cobra.Command

func main() {
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	rootCmd = &cobra.Command{
		Use:           "pak",
		Short:         "pak — inspect, unpack and build pak archives",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(completionCmd())
	rootCmd.AddCommand(infoCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(getCmd())
	rootCmd.AddCommand(unpackCmd())
	rootCmd.AddCommand(packCmd())

	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("Error occured")
		os.Exit(1)
	}
}

func completionCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "completion [bash|zsh|fish|powershell]",
		Short:     "Generate shell completion script",
		Args:      cobra.MatchAll(cobra.ExactArgs(1)),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		Run: func(cmd *cobra.Command, args []string) {
			switch args[0] {
			case "bash":
				rootCmd.GenBashCompletion(os.Stdout)
			case "zsh":
				rootCmd.GenZshCompletion(os.Stdout)
			case "fish":
				rootCmd.GenFishCompletion(os.Stdout, true)
			case "powershell":
				rootCmd.GenPowerShellCompletion(os.Stdout)
			}
		},
	}
}

// parseKey decodes the --key flag: 64 hex characters for a 32 byte key.
func parseKey(keyHex string) ([]byte, error) {
	if keyHex == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("key must be hex-encoded: %w", err)
	}
	return key, nil
}

func openReader(path, keyHex string) (*pak.Reader, *os.File, error) {
	key, err := parseKey(keyHex)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	b := pak.NewBuilder()
	if key != nil {
		b = b.Key(key)
	}
	r, err := b.Reader(pak.NewFileStream(f))
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return r, f, nil
}

func infoCmd() *cobra.Command {
	var keyHex string

	cmd := &cobra.Command{
		Use:   "info <archive>",
		Short: "Show archive version, mount point and entry count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, f, err := openReader(args[0], keyHex)
			if err != nil {
				return err
			}
			defer f.Close()

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendRow(table.Row{"Version", r.Version()})
			t.AppendRow(table.Row{"Mount point", r.MountPoint()})
			t.AppendRow(table.Row{"Entries", r.Count()})
			t.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&keyHex, "key", "", "32-byte archive key, hex encoded")
	return cmd
}

func listCmd() *cobra.Command {
	var keyHex string

	cmd := &cobra.Command{
		Use:   "list <archive>",
		Short: "List all entries with sizes and codecs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, f, err := openReader(args[0], keyHex)
			if err != nil {
				return err
			}
			defer f.Close()

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"Path", "Stored", "Size", "Codec", "Encrypted"})
			for _, path := range r.Paths() {
				e, err := r.Entry(path)
				if err != nil {
					return err
				}
				t.AppendRow(table.Row{e.Path, e.Size, e.Uncompressed, e.Compression, e.Encrypted})
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&keyHex, "key", "", "32-byte archive key, hex encoded")
	return cmd
}

func getCmd() *cobra.Command {
	var keyHex, output string

	cmd := &cobra.Command{
		Use:   "get <archive> <path>",
		Short: "Extract one entry to stdout or a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, f, err := openReader(args[0], keyHex)
			if err != nil {
				return err
			}
			defer f.Close()

			data, err := r.Get(args[1])
			if err != nil {
				return err
			}
			if output == "" {
				_, err = os.Stdout.Write(data)
				return err
			}
			return os.WriteFile(output, data, 0644)
		},
	}

	cmd.Flags().StringVar(&keyHex, "key", "", "32-byte archive key, hex encoded")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the entry to this file")
	return cmd
}

func unpackCmd() *cobra.Command {
	var keyHex, dir string

	cmd := &cobra.Command{
		Use:   "unpack <archive>",
		Short: "Extract every entry into a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, f, err := openReader(args[0], keyHex)
			if err != nil {
				return err
			}
			defer f.Close()

			paths := r.Paths()
			bar := progressbar.Default(int64(len(paths)), "unpacking")
			for _, path := range paths {
				data, err := r.Get(path)
				if err != nil {
					return err
				}
				target, err := safeJoin(dir, path)
				if err != nil {
					return err
				}
				if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
					return err
				}
				if err := os.WriteFile(target, data, 0644); err != nil {
					return err
				}
				bar.Add(1)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&keyHex, "key", "", "32-byte archive key, hex encoded")
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "output directory")
	return cmd
}

// safeJoin refuses entry paths that would escape the output directory.
func safeJoin(dir, path string) (string, error) {
	target := filepath.Join(dir, filepath.FromSlash(path))
	rel, err := filepath.Rel(dir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("entry path escapes output directory: %q", path)
	}
	return target, nil
}

func packCmd() *cobra.Command {
	var (
		keyHex      string
		version     uint32
		mountPoint  string
		seed        uint64
		codecs      []string
		encryptData bool
	)

	cmd := &cobra.Command{
		Use:   "pack <dir> <archive>",
		Short: "Build an archive from a directory tree",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseKey(keyHex)
			if err != nil {
				return err
			}

			allowed, err := parseCodecs(codecs)
			if err != nil {
				return err
			}

			sources, err := collectFiles(args[0])
			if err != nil {
				return err
			}

			f, err := os.Create(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			b := pak.NewBuilder().Compression(allowed...)
			if key != nil {
				b = b.Key(key)
			}
			w, err := b.Writer(pak.NewFileStream(f), pak.WriterOptions{
				Version:      pak.Version(version),
				MountPoint:   mountPoint,
				PathHashSeed: seed,
				EncryptData:  encryptData,
			})
			if err != nil {
				return err
			}

			bar := progressbar.Default(int64(len(sources)), "packing")
			for _, src := range sources {
				data, err := os.ReadFile(src.fsPath)
				if err != nil {
					return err
				}
				if err := w.WriteFile(src.entryPath, data); err != nil {
					return err
				}
				bar.Add(1)
			}
			if err := w.WriteIndex(); err != nil {
				return err
			}

			logger.Info().
				Int("entries", w.Count()).
				Str("archive", args[1]).
				Msg("archive written")
			return nil
		},
	}

	cmd.Flags().StringVar(&keyHex, "key", "", "32-byte archive key, hex encoded")
	cmd.Flags().Uint32Var(&version, "version", uint32(pak.VersionLatest), "target format version (1-12)")
	cmd.Flags().StringVar(&mountPoint, "mount-point", pak.DefaultMountPoint, "mount point stored in the archive")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "path hash seed (V10+)")
	cmd.Flags().StringSliceVar(&codecs, "compression", nil, "allowed codecs in preference order (zlib, zstd)")
	cmd.Flags().BoolVar(&encryptData, "encrypt-data", false, "encrypt entry payloads, not just the index")
	return cmd
}

func parseCodecs(names []string) ([]pak.Compression, error) {
	var kinds []pak.Compression
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "none":
			kinds = append(kinds, pak.CompressionNone)
		case "zlib":
			kinds = append(kinds, pak.CompressionZlib)
		case "zstd":
			kinds = append(kinds, pak.CompressionZstd)
		case "oodle":
			kinds = append(kinds, pak.CompressionOodle)
		default:
			return nil, fmt.Errorf("unknown codec %q", name)
		}
	}
	return kinds, nil
}

type sourceFile struct {
	fsPath    string
	entryPath string
}

// collectFiles walks dir and returns regular files with slash-separated
// paths relative to dir, in lexical order.
func collectFiles(dir string) ([]sourceFile, error) {
	var files []sourceFile
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		files = append(files, sourceFile{fsPath: p, entryPath: filepath.ToSlash(rel)})
		return nil
	})
	return files, err
}
