package giftcard

import (
	"io"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

// cardStream reads or writes card fields in card byte order.
type cardStream struct {
	rw io.ReadWriter
}

func (s *cardStream) pack(vals ...interface{}) error {
	for _, v := range vals {
		if err := struc.PackWithOrder(s.rw, v, order); err != nil {
			return err
		}
	}
	return nil
}

func (s *cardStream) unpack(vals ...interface{}) error {
	for _, v := range vals {
		if err := struc.UnpackWithOrder(s.rw, v, order); err != nil {
			return err
		}
	}
	return nil
}

// raw reads exactly len(b) unstructured bytes.
func (s *cardStream) raw(b []byte) error {
	_, err := io.ReadFull(s.rw, b)
	return err
}

// readOnly lets a plain reader back a cardStream.
type readOnly struct{ io.Reader }

func (readOnly) Write(p []byte) (int, error) {
	return 0, errors.New("read only stream")
}
