package main

import (
	"github.com/NYUAppSec/appsec-hw1/go/cmd"

	_ "github.com/NYUAppSec/appsec-hw1/go/cmd/asm"
	_ "github.com/NYUAppSec/appsec-hw1/go/cmd/batch"
	_ "github.com/NYUAppSec/appsec-hw1/go/cmd/card"
	_ "github.com/NYUAppSec/appsec-hw1/go/cmd/disas"
	_ "github.com/NYUAppSec/appsec-hw1/go/cmd/repl"
	_ "github.com/NYUAppSec/appsec-hw1/go/cmd/show"
)

func main() { cmd.Main() }
