// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package paramcmd implements a command to manage
// the parameters of a simulation.
package paramcmd

import (
	"fmt"
	"io"

	"github.com/js-arias/command"
	"github.com/js-arias/pomosim/param"
	"github.com/js-arias/pomosim/project"
)

var Command = &command.Command{
	Usage: `param [--add <param-file>] [--file <file-name>]
	[--sample-counts <a,b,c,d>] [--sites <value>] [--seed <value>]
	[--base-freqs <a,c,g>] [--r-mat <ac,ag,at,cg,ct,gt>]
	[-N|--pop-size <value>] [--node-depths <hyb,sis,ingroup,root>]
	[--introgress-prob <value>] [--mixing-wts <b,c>]
	[--func <name>] [--gamma <value>] [--cats <value>]
	<project-file>`,
	Short: "manage simulation parameters",
	Long: `
Command param manages the parameters of the simulation defined for a pomosim
project.

The argument of the command is the name of the project file. If no project
file exists, a new project will be created.

By default, the command will print the currently defined parameters. If the
project does not have a parameters file, the default parameters will be
printed.

If the flag --add is defined, it will use the indicated file for the
simulation parameters.

By default, any change on the parameters will be stored in the current
parameters file. If the project does not have a parameters file, a new one
will be created with the name 'params.tab'. Use the flag --file to define a
new parameters file.

The following flags set the value of a parameter (see 'pomosim help params'
for a description of each parameter):

	--sample-counts  individuals sampled from A, B, C, and D
	--sites          number of simulated sites
	--seed           seed of the random number generator
	--base-freqs     base frequencies of A, C, and G
	--r-mat          exchangeabilities
	-N, --pop-size   PoMo population size
	--node-depths    depths of the internal nodes and the root
	--introgress-prob
	                 probability of introgression at a site
	--mixing-wts     mixing weights of B and C
	--func           distribution of rates across sites
	--gamma          parameter of the rates across sites
	--cats           number of rate categories

Values with multiple elements are separated by commas.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var addFile string
var paramFile string

var values = map[param.Param]*string{
	param.SampleCounts:   new(string),
	param.Sites:          new(string),
	param.Seed:           new(string),
	param.BaseFreqs:      new(string),
	param.RMat:           new(string),
	param.PopSize:        new(string),
	param.NodeDepths:     new(string),
	param.IntrogressProb: new(string),
	param.MixingWts:      new(string),
	param.RateFunc:       new(string),
	param.Gamma:          new(string),
	param.RateCats:       new(string),
}

// order in which values are set
var order = []param.Param{
	param.SampleCounts,
	param.Sites,
	param.Seed,
	param.BaseFreqs,
	param.RMat,
	param.PopSize,
	param.NodeDepths,
	param.IntrogressProb,
	param.MixingWts,
	param.RateFunc,
	param.Gamma,
	param.RateCats,
}

func setFlags(c *command.Command) {
	c.Flags().StringVar(&addFile, "add", "", "")
	c.Flags().StringVar(&paramFile, "file", "", "")
	for _, k := range order {
		name := string(k)
		switch k {
		case param.RateCats:
			name = "cats"
		case param.RateFunc:
			name = "func"
		}
		c.Flags().StringVar(values[k], name, "", "")
	}
	c.Flags().StringVar(values[param.PopSize], "N", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Open(args[0])
	if err != nil {
		return err
	}

	if addFile != "" {
		pp, err := param.Read(addFile)
		if err != nil {
			return err
		}
		if err := pp.Validate(); err != nil {
			return fmt.Errorf("on file %q: %v", addFile, err)
		}
		p.Add(project.Params, addFile)
		if err := p.Write(); err != nil {
			return err
		}
		return nil
	}

	pp, err := p.Params()
	if err != nil {
		return err
	}
	if pp.Name() == "" {
		pp.SetName("params.tab")
	}
	if paramFile != "" {
		pp.SetName(paramFile)
	}

	ed := false
	for _, k := range order {
		v := *values[k]
		if v == "" {
			continue
		}
		if err := pp.Set(k, v); err != nil {
			return c.UsageError(err.Error())
		}
		ed = true
	}
	if err := pp.Validate(); err != nil {
		return err
	}

	if p.Path(project.Params) != pp.Name() {
		if err := pp.Write(); err != nil {
			return err
		}
		p.Add(project.Params, pp.Name())
		if err := p.Write(); err != nil {
			return err
		}
		return nil
	}
	if ed {
		if err := pp.Write(); err != nil {
			return err
		}
		return nil
	}

	printParams(c.Stdout(), pp)
	return nil
}

func printParams(w io.Writer, pp *param.P) {
	sc := pp.SampleCounts()
	f := pp.BaseFreqs()
	r := pp.RMat()
	d := pp.NodeDepths()
	gB, gC := pp.MixingWts()

	fmt.Fprintf(w, "file:            %s\n", pp.Name())
	fmt.Fprintf(w, "sample-counts:   A=%d B=%d C=%d D=%d\n", sc[0], sc[1], sc[2], sc[3])
	fmt.Fprintf(w, "sites:           %d\n", pp.Sites())
	if s := pp.Seed(); s != 0 {
		fmt.Fprintf(w, "seed:            %d\n", s)
	} else {
		fmt.Fprintf(w, "seed:            random\n")
	}
	fmt.Fprintf(w, "base-freqs:      %.6f %.6f %.6f %.6f\n", f[0], f[1], f[2], f[3])
	fmt.Fprintf(w, "r-mat:           %g %g %g %g %g %g\n", r[0], r[1], r[2], r[3], r[4], r[5])
	fmt.Fprintf(w, "pop-size:        %d\n", pp.PopSize())
	fmt.Fprintf(w, "node-depths:     %g %g %g %g\n", d.Hyb, d.Sis, d.Ingroup, d.Root)
	fmt.Fprintf(w, "introgress-prob: %g\n", pp.IntrogressProb())
	fmt.Fprintf(w, "mixing-wts:      %g %g\n", gB, gC)
	if a := pp.Gamma(); a > 0 && pp.RateCats() > 1 {
		fmt.Fprintf(w, "rate-func:       %s\n", pp.RateFunc())
		fmt.Fprintf(w, "gamma:           %g\n", a)
		fmt.Fprintf(w, "categories:      %d\n", pp.RateCats())
	}
}
