// Package giftcard reads and writes the gift card container that carries
// THX-1138 programs.
//
// Layout, all integers little endian:
//
//	uint32 total size (including this field)
//	[32]byte merchant id
//	[32]byte customer id
//	uint32 number of records
//	records:
//	  uint32 record size (including this 8 byte header)
//	  uint32 record type
//	  payload
//
// Payloads: amount (1) is an int32 followed by a 32 byte signature when the
// amount is not negative; message (2) is a null terminated string; program
// (3) is a 32 byte null terminated message followed by a 256 byte program.
package giftcard

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/NYUAppSec/appsec-hw1/go/asm"
	"github.com/NYUAppSec/appsec-hw1/go/cpu/thx"
	"github.com/NYUAppSec/appsec-hw1/go/models"
)

const (
	MerchantSize  = 32
	CustomerSize  = 32
	SignatureSize = 32
	ProgMsgSize   = 32
	ProgramSize   = thx.ProgramSize
)

const (
	TypeAmount  = 1
	TypeMessage = 2
	TypeProgram = 3
)

var typeNames = map[uint32]string{
	TypeAmount:  "amount_change",
	TypeMessage: "message",
	TypeProgram: "animated message",
}

func TypeName(typ uint32) string {
	if name, ok := typeNames[typ]; ok {
		return name
	}
	return "unknown"
}

var (
	ErrSizeMismatch  = errors.New("file size does not match header")
	ErrRecordCount   = errors.New("record count does not match header")
	ErrUnknownRecord = errors.New("unknown record type")
	ErrBadRecord     = errors.New("malformed record")
	ErrProgramSize   = errors.New("program does not fit the card")
)

var order = binary.LittleEndian

type cardHeader struct {
	MerchantID [MerchantSize]byte
	CustomerID [CustomerSize]byte
	NumRecords uint32
}

type recordHeader struct {
	Size uint32
	Type uint32
}

const (
	sizeFieldLen    = 4
	cardHeaderLen   = MerchantSize + CustomerSize + 4
	recordHeaderLen = 8
)

type amountBody struct {
	Amount int32
}

type programBody struct {
	Message [ProgMsgSize]byte
	Program [ProgramSize]byte
}

type Record struct {
	Type uint32

	// TypeAmount
	Amount    int32
	Signature [SignatureSize]byte

	// TypeMessage and TypeProgram
	Message string

	// TypeProgram, exactly ProgramSize bytes
	Program []byte
}

type Card struct {
	MerchantID [MerchantSize]byte
	CustomerID [CustomerSize]byte
	Records    []*Record
}

// PadID fits s into a fixed id field, space padded.
func PadID(s string) [MerchantSize]byte {
	var out [MerchantSize]byte
	n := copy(out[:], s)
	for i := n; i < len(out); i++ {
		out[i] = ' '
	}
	return out
}

// cstring reads a fixed field up to its first NUL.
func cstring(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// progMessage truncates msg to fit the program message slot with its NUL.
func progMessage(msg string) [ProgMsgSize]byte {
	var out [ProgMsgSize]byte
	copy(out[:ProgMsgSize-1], msg)
	return out
}

func newCard(cfg *models.Config) *Card {
	if cfg == nil {
		cfg = &models.Config{}
	}
	cfg.Init()
	return &Card{
		MerchantID: PadID(cfg.MerchantID),
		CustomerID: PadID(cfg.CustomerID),
	}
}

// NewProgramCard wraps an assembled image into a single animated message
// record. The image is padded with nops to the program slot.
func NewProgramCard(message string, image []byte, cfg *models.Config) (*Card, error) {
	program, err := asm.Pad(image, cfg)
	if err != nil {
		return nil, err
	}
	if len(program) != ProgramSize {
		return nil, errors.Wrapf(ErrProgramSize, "%d bytes", len(program))
	}
	c := newCard(cfg)
	c.Records = append(c.Records, &Record{
		Type:    TypeProgram,
		Message: message,
		Program: program,
	})
	return c, nil
}

func NewMessageCard(message string, cfg *models.Config) *Card {
	c := newCard(cfg)
	c.Records = append(c.Records, &Record{Type: TypeMessage, Message: message})
	return c
}

// Value is the sum of all amount records.
func (c *Card) Value() int {
	total := 0
	for _, r := range c.Records {
		if r.Type == TypeAmount {
			total += int(r.Amount)
		}
	}
	return total
}

func (r *Record) payload() ([]byte, error) {
	var buf bytes.Buffer
	s := &cardStream{&buf}
	switch r.Type {
	case TypeAmount:
		if err := s.pack(&amountBody{r.Amount}); err != nil {
			return nil, err
		}
		if r.Amount >= 0 {
			buf.Write(r.Signature[:])
		}
	case TypeMessage:
		// null terminated, at least as long as a program message
		msg := append([]byte(r.Message), 0)
		if len(msg) < ProgMsgSize {
			msg = append(msg, make([]byte, ProgMsgSize-len(msg))...)
		}
		buf.Write(msg)
	case TypeProgram:
		if len(r.Program) != ProgramSize {
			return nil, errors.Wrapf(ErrProgramSize, "%d bytes", len(r.Program))
		}
		body := &programBody{Message: progMessage(r.Message)}
		copy(body.Program[:], r.Program)
		if err := s.pack(body); err != nil {
			return nil, err
		}
	default:
		return nil, errors.Wrapf(ErrUnknownRecord, "%d", r.Type)
	}
	return buf.Bytes(), nil
}

// Bytes serializes the card, computing every length field.
func (c *Card) Bytes() ([]byte, error) {
	var body bytes.Buffer
	s := &cardStream{&body}
	header := &cardHeader{
		MerchantID: c.MerchantID,
		CustomerID: c.CustomerID,
		NumRecords: uint32(len(c.Records)),
	}
	if err := s.pack(header); err != nil {
		return nil, errors.Wrap(err, "failed to pack header")
	}
	for i, r := range c.Records {
		payload, err := r.payload()
		if err != nil {
			return nil, errors.Wrapf(err, "record %d", i)
		}
		rh := &recordHeader{Size: uint32(recordHeaderLen + len(payload)), Type: r.Type}
		if err := s.pack(rh); err != nil {
			return nil, errors.Wrapf(err, "failed to pack record %d", i)
		}
		body.Write(payload)
	}
	var out bytes.Buffer
	s = &cardStream{&out}
	if err := s.pack(&struct{ Size uint32 }{uint32(sizeFieldLen + body.Len())}); err != nil {
		return nil, err
	}
	body.WriteTo(&out)
	return out.Bytes(), nil
}

func (c *Card) WriteTo(w io.Writer) (int64, error) {
	data, err := c.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}
