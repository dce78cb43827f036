package batch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/NYUAppSec/appsec-hw1/go/archive"
	"github.com/NYUAppSec/appsec-hw1/go/asm"
	"github.com/NYUAppSec/appsec-hw1/go/cmd"
	"github.com/NYUAppSec/appsec-hw1/go/cpu/thx"
	"github.com/NYUAppSec/appsec-hw1/go/models"
	"github.com/NYUAppSec/appsec-hw1/go/ui"
)

type result struct {
	image []byte
	log   bytes.Buffer
}

// assembleAll assembles every file concurrently. Warnings are buffered per
// file and replayed in argument order.
func assembleAll(ctx context.Context, files []string, cfg *models.Config, raw bool) ([]*result, error) {
	results := make([]*result, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, name := range files {
		res := &result{}
		results[i] = res
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			local := *cfg
			local.Output = &res.log
			p, err := asm.AssembleFile(name, &local)
			if err != nil {
				return err
			}
			res.image = p.Image
			if !raw {
				res.image, err = asm.Pad(p.Image, &local)
			}
			return err
		})
	}
	err := g.Wait()
	for _, res := range results {
		res.log.WriteTo(cfg.Output)
	}
	return results, err
}

func pack(w io.Writer, files []string, results []*result) error {
	aw, err := archive.NewWriter(w)
	if err != nil {
		return err
	}
	for i, name := range files {
		if err := aw.Add(name, results[i].image); err != nil {
			return err
		}
	}
	return aw.Close()
}

func list(w io.Writer, r io.Reader, color bool) error {
	ar, err := archive.NewReader(r)
	if err != nil {
		return err
	}
	for {
		e, err := ar.Next()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s (%d bytes):\n", e.Name, len(e.Image))
		ui.PrintListing(w, thx.Disassemble(e.Image), color)
		fmt.Fprintln(w)
	}
}

func newCmd() *cmd.GcasmCmd {
	c := cmd.NewGcasmCmd("-o <out.gcar> <file.s...> | -x <archive>")

	var out, extract *string
	var raw *bool
	c.SetupFlags = func() error {
		out = c.Flags.String("o", "", "archive to create from the source files")
		extract = c.Flags.String("x", "", "archive to list")
		raw = c.Flags.Bool("raw", false, "store images without padding")
		return nil
	}
	c.Main = func(args []string) error {
		switch {
		case *extract != "":
			f, err := os.Open(*extract)
			if err != nil {
				return errors.WithStack(err)
			}
			defer f.Close()
			return list(c.Stdout, f, c.Color)
		case *out != "":
			if len(args) == 0 {
				return errors.New("no source files")
			}
			results, err := assembleAll(context.Background(), args, c.Config, *raw)
			if err != nil {
				return err
			}
			f, err := os.Create(*out)
			if err != nil {
				return errors.WithStack(err)
			}
			defer f.Close()
			if err := pack(f, args, results); err != nil {
				return errors.Wrapf(err, "failed to write %s", *out)
			}
			c.Config.Debugf("archived %d images to %s", len(args), *out)
			return nil
		}
		c.Flags.Usage()
		return errors.New("one of -o or -x is required")
	}
	return c
}

func Main(args []string) {
	os.Exit(newCmd().Run(args))
}

func init() {
	cmd.Register("batch", "assemble many programs into one archive, or list an archive", Main)
}
