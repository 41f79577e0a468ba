// Serializer is a command line tool to convert documents between the
// supported formats and to inspect binary documents. Formats are inferred
// from the file extensions: .bin, .json, .yaml/.yml (source only).
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic/ast"
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	serializer "github.com/borjaportugal/Serializer"
	"github.com/borjaportugal/Serializer/serde"
	"github.com/borjaportugal/Serializer/serde/binary"
	"github.com/borjaportugal/Serializer/serde/json"
	"github.com/borjaportugal/Serializer/serde/yaml"
)

func main() {
	app := &cli.App{
		Name:  "serializer",
		Usage: "convert and inspect serialized documents",
		Commands: []*cli.Command{
			{
				Name:      "convert",
				Usage:     "convert a document to another format",
				ArgsUsage: "<source> <destination>",
				Action:    convertAction,
			},
			{
				Name:      "inspect",
				Usage:     "list the top level members of a binary document",
				ArgsUsage: "<source.bin>",
				Action:    inspectAction,
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		serializer.Logger.Fatal().Err(err).Msg("command failed")
	}
}

// transcodeTo replays the source document on the destination writer.
func transcodeTo(src string, dst serde.Serializer) error {
	switch filepath.Ext(src) {
	case ".bin":
		doc, err := binary.Load(src)
		if err != nil {
			return xerrors.Errorf("failed to load %s: %v", src, err)
		}

		binary.Transcode(doc, dst)

	case ".json":
		root, err := json.Load(src)
		if err != nil {
			return xerrors.Errorf("failed to load %s: %v", src, err)
		}

		json.Transcode(&root, dst)

	case ".yaml", ".yml":
		doc, err := yaml.Load(src)
		if err != nil {
			return xerrors.Errorf("failed to load %s: %v", src, err)
		}

		yaml.Transcode(doc, dst)

	default:
		return xerrors.Errorf("unsupported source format '%s'", filepath.Ext(src))
	}

	return nil
}

func convertAction(ctx *cli.Context) error {
	if ctx.NArg() != 2 {
		return xerrors.New("expected <source> and <destination> arguments")
	}

	src := ctx.Args().Get(0)
	dst := ctx.Args().Get(1)

	switch filepath.Ext(dst) {
	case ".bin":
		doc := binary.New()

		writer := binary.NewWriter(doc)
		err := transcodeTo(src, writer)
		writer.Close()

		if err != nil {
			return err
		}

		return binary.Save(dst, doc)

	case ".json":
		root := ast.NewNull()

		err := transcodeTo(src, json.NewWriter(&root))
		if err != nil {
			return err
		}

		return json.Save(dst, &root)

	default:
		return xerrors.Errorf("unsupported destination format '%s'", filepath.Ext(dst))
	}
}

func inspectAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return xerrors.New("expected a <source.bin> argument")
	}

	doc, err := binary.Load(ctx.Args().First())
	if err != nil {
		return xerrors.Errorf("failed to load document: %v", err)
	}

	fmt.Fprintf(ctx.App.Writer, "strings: %d, stream: %d bytes\n",
		len(doc.StringTable()), doc.Len())

	reader := binary.NewReader(doc)
	reader.Iterate(func(s serde.Serializer, name serde.Name) bool {
		fmt.Fprintf(ctx.App.Writer, "- %s\n", name.String())
		return true
	})

	return nil
}
