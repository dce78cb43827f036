package giftcard

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/NYUAppSec/appsec-hw1/go/cpu/thx"
)

// field renders a fixed width id the way the card reader shows it: at most
// width columns, right aligned.
func field(b []byte, width int) string {
	return runewidth.FillLeft(runewidth.Truncate(cstring(b), width, ""), width)
}

// PrintText writes a human readable dump. Embedded programs are
// disassembled instead of run.
func (c *Card) PrintText(w io.Writer) {
	fmt.Fprintf(w, "   Merchant ID: %s\n", field(c.MerchantID[:], MerchantSize))
	fmt.Fprintf(w, "   Customer ID: %s\n", field(c.CustomerID[:], CustomerSize))
	fmt.Fprintf(w, "   Num records: %d\n", len(c.Records))
	for _, r := range c.Records {
		fmt.Fprintf(w, "      record:type: %s\n", TypeName(r.Type))
		switch r.Type {
		case TypeAmount:
			fmt.Fprintf(w, "      amount_added: %d\n", r.Amount)
			if r.Amount > 0 {
				fmt.Fprintf(w, "      signature: %s\n", field(r.Signature[:], SignatureSize))
			}
		case TypeMessage:
			fmt.Fprintf(w, "      message: %s\n", r.Message)
		case TypeProgram:
			fmt.Fprintf(w, "      message: %s\n", runewidth.Truncate(r.Message, ProgMsgSize, ""))
			fmt.Fprintf(w, "  [embedded program]\n")
			listing := thx.Disassemble(r.Program)
			for _, line := range strings.Split(listing.String(), "\n") {
				if line != "" {
					fmt.Fprintf(w, "        %s\n", line)
				}
			}
		}
	}
	fmt.Fprintf(w, "  Total value: %d\n\n", c.Value())
}

type jsonRecord struct {
	RecordType  string  `json:"record_type"`
	AmountAdded *int32  `json:"amount_added,omitempty"`
	Signature   string  `json:"signature,omitempty"`
	Message     *string `json:"message,omitempty"`
	Program     string  `json:"program,omitempty"`
}

type jsonCard struct {
	MerchantID string       `json:"merchant_id"`
	CustomerID string       `json:"customer_id"`
	TotalValue int          `json:"total_value"`
	Records    []jsonRecord `json:"records"`
}

func (c *Card) PrintJSON(w io.Writer) error {
	out := jsonCard{
		MerchantID: cstring(c.MerchantID[:]),
		CustomerID: cstring(c.CustomerID[:]),
		TotalValue: c.Value(),
		Records:    make([]jsonRecord, 0, len(c.Records)),
	}
	for _, r := range c.Records {
		jr := jsonRecord{RecordType: TypeName(r.Type)}
		switch r.Type {
		case TypeAmount:
			amount := r.Amount
			jr.AmountAdded = &amount
			if amount > 0 {
				jr.Signature = cstring(r.Signature[:])
			}
		case TypeMessage, TypeProgram:
			msg := r.Message
			jr.Message = &msg
			if r.Type == TypeProgram {
				jr.Program = hex.EncodeToString(r.Program)
			}
		}
		out.Records = append(out.Records, jr)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(&out)
}
