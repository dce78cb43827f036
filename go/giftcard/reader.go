package giftcard

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
)

func Read(r io.Reader) (*Card, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read card")
	}
	return Parse(data)
}

// Parse decodes a gift card. Sizes declared inside the file are not trusted:
// the total must match len(data) and a message never reads past the end.
func Parse(data []byte) (*Card, error) {
	r := bytes.NewReader(data)
	s := &cardStream{&readOnly{r}}

	var size struct{ Size uint32 }
	if err := s.unpack(&size); err != nil {
		return nil, errors.Wrap(err, "failed to read card size")
	}
	if int64(size.Size) != int64(len(data)) {
		return nil, errors.Wrapf(ErrSizeMismatch, "file is %d bytes, header says %d", len(data), size.Size)
	}
	var header cardHeader
	if err := s.unpack(&header); err != nil {
		return nil, errors.Wrap(err, "failed to read card header")
	}
	c := &Card{MerchantID: header.MerchantID, CustomerID: header.CustomerID}

	for r.Len() > 0 {
		var rh recordHeader
		if err := s.unpack(&rh); err != nil {
			return nil, errors.Wrapf(err, "failed to read record %d header", len(c.Records))
		}
		rec := &Record{Type: rh.Type}
		switch rh.Type {
		case TypeAmount:
			var body amountBody
			if err := s.unpack(&body); err != nil {
				return nil, errors.Wrap(err, "failed to read amount")
			}
			rec.Amount = body.Amount
			if rec.Amount >= 0 {
				if err := s.raw(rec.Signature[:]); err != nil {
					return nil, errors.Wrap(err, "failed to read signature")
				}
			}
		case TypeMessage:
			n := int64(rh.Size) - recordHeaderLen
			if n > int64(r.Len()) {
				n = int64(r.Len())
			}
			if n <= 0 {
				return nil, errors.Wrapf(ErrBadRecord, "message record %d is empty", len(c.Records))
			}
			msg := make([]byte, n)
			if err := s.raw(msg); err != nil {
				return nil, errors.Wrap(err, "failed to read message")
			}
			rec.Message = cstring(msg)
		case TypeProgram:
			var body programBody
			if err := s.unpack(&body); err != nil {
				return nil, errors.Wrap(err, "failed to read program")
			}
			rec.Message = cstring(body.Message[:])
			rec.Program = append([]byte{}, body.Program[:]...)
		default:
			return nil, errors.Wrapf(ErrUnknownRecord, "%d", rh.Type)
		}
		c.Records = append(c.Records, rec)
	}
	if uint32(len(c.Records)) != header.NumRecords {
		return nil, errors.Wrapf(ErrRecordCount, "header says %d, read %d", header.NumRecords, len(c.Records))
	}
	return c, nil
}
