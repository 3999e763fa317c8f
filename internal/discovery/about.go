// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/allyourbase/allyourbase/pkg/defxml"
)

const (
	aboutDir  = "About"
	aboutFile = "About.xml"
)

// about is the subset of About.xml that discovery reads.
type about struct {
	Name      string
	PackageID string
}

func readAbout(path string) (about, error) {
	tree, err := defxml.ReadFile(path)
	if err != nil {
		return about{}, err
	}
	return parseAbout(tree)
}

func parseAbout(tree *etree.Document) (about, error) {
	root := tree.Root()
	if root == nil {
		return about{}, fmt.Errorf("no root element")
	}
	var a about
	if el := root.SelectElement("name"); el != nil {
		a.Name = strings.TrimSpace(el.Text())
	}
	if el := root.SelectElement("packageId"); el != nil {
		a.PackageID = strings.TrimSpace(el.Text())
	}
	return a, nil
}
