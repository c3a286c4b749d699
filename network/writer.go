package network

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

const networkDoctype = `<!DOCTYPE network SYSTEM "http://www.matsim.org/files/dtd/network_v2.dtd">` + "\n"

type xmlNetwork struct {
	XMLName xml.Name  `xml:"network"`
	Name    string    `xml:"name,attr,omitempty"`
	Nodes   []xmlNode `xml:"nodes>node"`
	Links   []xmlLink `xml:"links>link"`
}

type xmlNode struct {
	ID string  `xml:"id,attr"`
	X  float64 `xml:"x,attr"`
	Y  float64 `xml:"y,attr"`
}

type xmlLink struct {
	ID        string  `xml:"id,attr"`
	From      string  `xml:"from,attr"`
	To        string  `xml:"to,attr"`
	Length    float64 `xml:"length,attr"`
	Freespeed float64 `xml:"freespeed,attr"`
	Capacity  float64 `xml:"capacity,attr"`
	Permlanes float64 `xml:"permlanes,attr"`
	Modes     string  `xml:"modes,attr"`
}

// WriteFile writes the network as MATSim-format XML.
func WriteFile(n *Network, path string) error {
	f, err := os.Create(path) //nolint:gosec // caller-supplied output path
	if err != nil {
		return fmt.Errorf("failed to create network file: %w", err)
	}
	defer f.Close()
	if err := Write(n, f); err != nil {
		return fmt.Errorf("failed to write network file %s: %w", path, err)
	}
	return nil
}

// Write writes the network as MATSim-format XML. Nodes and links are
// emitted in sorted id order so identical networks serialize
// identically.
func Write(n *Network, w io.Writer) error {
	doc := xmlNetwork{Name: n.Name}
	for _, id := range n.NodeIDs() {
		node := n.Node(id)
		doc.Nodes = append(doc.Nodes, xmlNode{ID: node.ID, X: node.Coord.X, Y: node.Coord.Y})
	}
	for _, id := range n.LinkIDs() {
		link := n.Link(id)
		doc.Links = append(doc.Links, xmlLink{
			ID:        link.ID,
			From:      link.From.ID,
			To:        link.To.ID,
			Length:    link.Length,
			Freespeed: link.Freespeed,
			Capacity:  link.Capacity,
			Permlanes: link.NumLanes,
			Modes:     strings.Join(link.Modes(), ","),
		})
	}

	if _, err := io.WriteString(w, xml.Header+networkDoctype); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "\t")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
