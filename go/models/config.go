package models

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/mgutz/ansi"
	"github.com/pkg/errors"
	"github.com/shibukawa/configdir"
)

const ConfigFile = "gcasm.json"

type Config struct {
	Color      bool
	Verbose    bool
	StrictSize bool

	// defaults for generated gift cards
	MerchantID string
	CustomerID string

	Output io.Writer

	inited bool
}

func (c *Config) Init() *Config {
	if c.inited {
		return c
	}
	c.inited = true
	if c.Output == nil {
		fd := os.Stderr.Fd()
		c.Color = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		c.Output = colorable.NewColorableStderr()
	}
	if c.MerchantID == "" {
		c.MerchantID = "GiftCardz.com"
	}
	if c.CustomerID == "" {
		c.CustomerID = "THX-1138"
	}
	return c
}

// fileConfig mirrors the user settable parts of Config. Pointers distinguish
// unset keys from zero values.
type fileConfig struct {
	Color      *bool   `json:"color"`
	Verbose    *bool   `json:"verbose"`
	StrictSize *bool   `json:"strict_size"`
	MerchantID *string `json:"merchant_id"`
	CustomerID *string `json:"customer_id"`
}

// Apply merges a JSON config document into c.
func (c *Config) Apply(data []byte) error {
	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	if fc.Color != nil {
		c.Color = *fc.Color
	}
	if fc.Verbose != nil {
		c.Verbose = *fc.Verbose
	}
	if fc.StrictSize != nil {
		c.StrictSize = *fc.StrictSize
	}
	if fc.MerchantID != nil {
		c.MerchantID = *fc.MerchantID
	}
	if fc.CustomerID != nil {
		c.CustomerID = *fc.CustomerID
	}
	return nil
}

// LoadConfigFile looks for gcasm.json in the user's config folders (local
// folder first) and merges the first one found.
func (c *Config) LoadConfigFile() error {
	configDirs := configdir.New("gcasm", "")
	configDirs.LocalPath, _ = os.Getwd()
	folder := configDirs.QueryFolderContainsFile(ConfigFile)
	if folder == nil {
		return nil
	}
	data, err := folder.ReadFile(ConfigFile)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", ConfigFile)
	}
	return errors.Wrapf(c.Apply(data), "%s/%s", folder.Path, ConfigFile)
}

var warnColor = ansi.ColorCode("yellow+b")

func (c *Config) Warnf(format string, args ...interface{}) {
	c.Init()
	msg := fmt.Sprintf(format, args...)
	if c.Color {
		fmt.Fprintf(c.Output, "%sWARNING:%s %s\n", warnColor, ansi.Reset, msg)
	} else {
		fmt.Fprintf(c.Output, "WARNING: %s\n", msg)
	}
}

func (c *Config) Debugf(format string, args ...interface{}) {
	c.Init()
	if c.Verbose {
		fmt.Fprintf(c.Output, format+"\n", args...)
	}
}
