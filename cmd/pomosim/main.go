// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Pomosim is a tool to simulate allele counts
// under a polymorphism-aware phylogenetic model
// with introgression.
package main

import (
	"github.com/js-arias/command"
	"github.com/js-arias/pomosim/cmd/pomosim/dstat"
	"github.com/js-arias/pomosim/cmd/pomosim/paramcmd"
	"github.com/js-arias/pomosim/cmd/pomosim/run"
	"github.com/js-arias/pomosim/cmd/pomosim/sfs"
	"github.com/js-arias/pomosim/cmd/pomosim/tree"
)

var app = &command.Command{
	Usage: "pomosim <command> [<argument>...]",
	Short: "a tool to simulate allele counts with introgression",
}

func init() {
	app.Add(paramcmd.Command)
	app.Add(run.Command)
	app.Add(tree.Command)
	app.Add(sfs.Command)
	app.Add(dstat.Command)
}

func main() {
	app.Main()
}
