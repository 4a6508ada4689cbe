// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package project

import (
	"fmt"
	"os"

	"github.com/js-arias/pomosim/counts"
	"github.com/js-arias/pomosim/param"
	"github.com/js-arias/timetree"
)

// Counts reads the allele counts file
// as defined in a project.
func (p *Project) Counts() ([]counts.Site, error) {
	name := p.Path(Counts)
	if name == "" {
		return nil, fmt.Errorf("counts not defined in project %q", p.name)
	}

	sites, err := counts.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("when reading %q: %v", name, err)
	}
	return sites, nil
}

// Params reads the simulation parameters file
// as defined in a project.
// If the parameters are not defined,
// it returns the default parameters.
func (p *Project) Params() (*param.P, error) {
	name := p.Path(Params)
	if name == "" {
		return param.New(""), nil
	}

	pp, err := param.Read(name)
	if err != nil {
		return nil, err
	}
	return pp, nil
}

// Trees reads a tree collection file
// as defined in a project.
func (p *Project) Trees() (*timetree.Collection, error) {
	name := p.Path(Trees)
	if name == "" {
		return nil, fmt.Errorf("trees not defined in project %q", p.name)
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := timetree.ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("while reading file %q: %v", name, err)
	}
	return c, nil
}
