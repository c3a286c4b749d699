package network

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/theoremus-urban-solutions/transit-network-mapper/types"
)

// queries are compiled once; parsing large networks runs them per
// document.
var (
	networkRootQuery = xpath.MustCompile("/network")
	nodeQuery        = xpath.MustCompile("nodes/node")
	linkQuery        = xpath.MustCompile("links/link")
)

// ReadFile reads a MATSim-format network XML file.
func ReadFile(path string) (*Network, error) {
	f, err := os.Open(path) //nolint:gosec // caller-supplied input artifact
	if err != nil {
		return nil, fmt.Errorf("failed to open network file: %w", err)
	}
	defer f.Close()
	net, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read network file %s: %w", path, err)
	}
	return net, nil
}

// Read parses a MATSim-format network document from a reader.
func Read(r io.Reader) (*Network, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse network XML: %w", err)
	}

	root := xmlquery.QuerySelector(doc, networkRootQuery)
	if root == nil {
		return nil, fmt.Errorf("document has no <network> root element")
	}

	net := New(attr(root, "name"))

	for _, n := range xmlquery.QuerySelectorAll(root, nodeQuery) {
		id := attr(n, "id")
		if id == "" {
			return nil, fmt.Errorf("node without id attribute")
		}
		x, err := floatAttr(n, "x")
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", id, err)
		}
		y, err := floatAttr(n, "y")
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", id, err)
		}
		if _, err := net.AddNode(id, types.NewCoord(x, y)); err != nil {
			return nil, err
		}
	}

	for _, l := range xmlquery.QuerySelectorAll(root, linkQuery) {
		id := attr(l, "id")
		if id == "" {
			return nil, fmt.Errorf("link without id attribute")
		}
		length, err := floatAttr(l, "length")
		if err != nil {
			return nil, fmt.Errorf("link %s: %w", id, err)
		}
		freespeed, err := floatAttr(l, "freespeed")
		if err != nil {
			return nil, fmt.Errorf("link %s: %w", id, err)
		}
		capacity, err := floatAttr(l, "capacity")
		if err != nil {
			return nil, fmt.Errorf("link %s: %w", id, err)
		}
		link, err := net.AddLink(id, attr(l, "from"), attr(l, "to"), length, freespeed, capacity,
			splitModes(attr(l, "modes")))
		if err != nil {
			return nil, err
		}
		if lanes := attr(l, "permlanes"); lanes != "" {
			if v, err := strconv.ParseFloat(lanes, 64); err == nil {
				link.NumLanes = v
			}
		}
	}

	return net, nil
}

func attr(n *xmlquery.Node, name string) string {
	for _, a := range n.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func floatAttr(n *xmlquery.Node, name string) (float64, error) {
	raw := attr(n, name)
	if raw == "" {
		return 0, fmt.Errorf("missing attribute %q", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid attribute %s=%q: %w", name, raw, err)
	}
	return v, nil
}

func splitModes(raw string) []string {
	var modes []string
	start := -1
	for i := 0; i <= len(raw); i++ {
		if i == len(raw) || raw[i] == ',' || raw[i] == ' ' {
			if start >= 0 && i > start {
				modes = append(modes, raw[start:i])
			}
			start = -1
		} else if start < 0 {
			start = i
		}
	}
	return modes
}
