// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package tree implements a command to build
// the species tree of a simulation.
package tree

import (
	"fmt"
	"io"

	"github.com/js-arias/command"
	"github.com/js-arias/pomosim/project"
	"github.com/js-arias/pomosim/sptree"
	"github.com/js-arias/timetree"
)

var Command = &command.Command{
	Usage: `tree [-o|--output <file>] [--print] <project-file>`,
	Short: "build the species tree of a simulation",
	Long: `
Command tree builds the species tree (((A,B),C),D) using the node depths
defined in the parameters of a pomosim project, and prints the nodes of the
tree in the standard output.

The argument of the command is the name of the project file.

The tree will be stored in the tree file currently defined for the project. If
the project does not have a tree file, a new one will be created with the
name 'tree.tab'. A different file name can be defined using the flag
--output, or -o.

If the flag --print is defined, the tree will not be rebuilt, and the tree
stored in the project will be printed.

Ages are printed in the depth units of the parameters.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var output string
var printFlag bool

func setFlags(c *command.Command) {
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
	c.Flags().BoolVar(&printFlag, "print", false, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Open(args[0])
	if err != nil {
		return err
	}

	if printFlag {
		tc, err := p.Trees()
		if err != nil {
			return err
		}
		for _, tn := range tc.Names() {
			printTree(c.Stdout(), tc.Tree(tn), 0)
		}
		return nil
	}

	pp, err := p.Params()
	if err != nil {
		return err
	}
	tr, err := sptree.New(pp.NodeDepths())
	if err != nil {
		return err
	}

	if output == "" {
		output = p.Path(project.Trees)
		if output == "" {
			output = "tree.tab"
		}
	}
	if err := tr.WriteFile(output); err != nil {
		return err
	}
	p.Add(project.Trees, output)
	if err := p.Write(); err != nil {
		return err
	}

	printTree(c.Stdout(), tr.Timetree(), tr.Stem())
	return nil
}

func printTree(w io.Writer, t *timetree.Tree, stem float64) {
	fmt.Fprintf(w, "tree: %s\n", t.Name())
	fmt.Fprintf(w, "node\tparent\tage\ttaxon\n")
	for _, id := range t.Nodes() {
		age := float64(t.Age(id)) / sptree.DepthUnit
		fmt.Fprintf(w, "%d\t%d\t%.6f\t%s\n", id, t.Parent(id), age, t.Taxon(id))
	}
	if stem > 0 {
		fmt.Fprintf(w, "stem: %.6f\n", stem)
	}
}
