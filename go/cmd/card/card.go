package card

import (
	"os"

	"github.com/pkg/errors"

	"github.com/NYUAppSec/appsec-hw1/go/asm"
	"github.com/NYUAppSec/appsec-hw1/go/cmd"
	"github.com/NYUAppSec/appsec-hw1/go/giftcard"
)

func newCmd() *cmd.GcasmCmd {
	c := cmd.NewGcasmCmd("<file.s|->")

	var msg, merchant, customer, out *string
	var messageOnly *bool
	var notes cmd.StrSlice
	c.SetupFlags = func() error {
		msg = c.Flags.String("m", "Happy Birthday!", "card message (31 characters kept for animated cards)")
		merchant = c.Flags.String("merchant", "", "merchant id (default from config)")
		customer = c.Flags.String("customer", "", "customer id (default from config)")
		out = c.Flags.String("o", "out.gft", "output card file")
		messageOnly = c.Flags.Bool("message-only", false, "build a plain message card, no program")
		c.Flags.Var(&notes, "note", "append an extra message record (repeatable)")
		return nil
	}
	c.Main = func(args []string) error {
		if *merchant != "" {
			c.Config.MerchantID = *merchant
		}
		if *customer != "" {
			c.Config.CustomerID = *customer
		}
		var card *giftcard.Card
		if *messageOnly {
			card = giftcard.NewMessageCard(*msg, c.Config)
		} else {
			if len(args) == 0 {
				c.Flags.Usage()
				return errors.New("missing program source")
			}
			p, err := asm.AssembleFile(args[0], c.Config)
			if err != nil {
				return err
			}
			if card, err = giftcard.NewProgramCard(*msg, p.Image, c.Config); err != nil {
				return err
			}
		}
		for _, note := range notes {
			card.Records = append(card.Records, &giftcard.Record{Type: giftcard.TypeMessage, Message: note})
		}
		f, err := os.Create(*out)
		if err != nil {
			return errors.WithStack(err)
		}
		defer f.Close()
		if _, err := card.WriteTo(f); err != nil {
			return errors.Wrap(err, "failed to write card")
		}
		c.Config.Debugf("wrote %d records to %s", len(card.Records), *out)
		return nil
	}
	return c
}

func Main(args []string) {
	os.Exit(newCmd().Run(args))
}

func init() { cmd.Register("card", "wrap an assembled program into a gift card", Main) }
