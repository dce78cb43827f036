// Package archive bundles several assembled images into one file.
//
// An archive is an uncompressed header followed by a snappy framed stream of
// entries. Each entry is a length prefixed name and a length prefixed image.
package archive

import (
	"io"

	"github.com/golang/snappy"
	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

var MAGIC = "GCAR"

const Version = 1

var ErrBadMagic = errors.New("invalid archive magic")

type Header struct {
	Magic   string `struc:"[4]byte"`
	Version uint32 `struc:"uint32,little"`
}

type Entry struct {
	NameLen  uint16 `struc:"uint16,little,sizeof=Name"`
	Name     string
	ImageLen uint32 `struc:"uint32,little,sizeof=Image"`
	Image    []byte
}

type Writer struct {
	w  io.Writer
	zw *snappy.Writer
}

func NewWriter(w io.Writer) (*Writer, error) {
	header := &Header{Magic: MAGIC, Version: Version}
	if err := struc.Pack(w, header); err != nil {
		return nil, errors.Wrap(err, "failed to pack header")
	}
	return &Writer{w: w, zw: snappy.NewBufferedWriter(w)}, nil
}

func (a *Writer) Add(name string, image []byte) error {
	if len(name) > 0xffff {
		return errors.Errorf("entry name too long (%d bytes)", len(name))
	}
	e := &Entry{Name: name, Image: image}
	return errors.Wrapf(struc.Pack(a.zw, e), "failed to pack %s", name)
}

// Close flushes the compressed stream. The underlying writer stays open.
func (a *Writer) Close() error {
	return a.zw.Close()
}

type Reader struct {
	zr     *snappy.Reader
	Header Header
}

func NewReader(r io.Reader) (*Reader, error) {
	a := &Reader{}
	if err := struc.Unpack(r, &a.Header); err != nil {
		return nil, errors.Wrap(err, "failed to unpack header")
	}
	if a.Header.Magic != MAGIC {
		return nil, ErrBadMagic
	}
	if a.Header.Version != Version {
		return nil, errors.Errorf("unsupported archive version %d", a.Header.Version)
	}
	a.zr = snappy.NewReader(r)
	return a, nil
}

// Next returns the next entry, or io.EOF after the last one.
func (a *Reader) Next() (*Entry, error) {
	var e Entry
	if err := struc.Unpack(a.zr, &e); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, errors.Wrap(err, "failed to unpack entry")
	}
	return &e, nil
}
