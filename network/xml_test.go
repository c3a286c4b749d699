package network

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const networkFragment = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE network SYSTEM "http://www.matsim.org/files/dtd/network_v2.dtd">
<network name="test">
	<nodes>
		<node id="a" x="0" y="0"/>
		<node id="b" x="100" y="0"/>
	</nodes>
	<links>
		<link id="ab" from="a" to="b" length="100" freespeed="10" capacity="1000" permlanes="2" modes="car,bus"/>
		<link id="ba" from="b" to="a" length="100" freespeed="10" capacity="1000" permlanes="1" modes="car"/>
	</links>
</network>`

func TestRead(t *testing.T) {
	net, err := Read(strings.NewReader(networkFragment))
	require.NoError(t, err)

	assert.Equal(t, "test", net.Name)
	assert.Equal(t, 2, net.NumNodes())
	assert.Equal(t, 2, net.NumLinks())

	node := net.Node("b")
	require.NotNil(t, node)
	assert.Equal(t, 100.0, node.Coord.X)

	link := net.Link("ab")
	require.NotNil(t, link)
	assert.Equal(t, "a", link.From.ID)
	assert.Equal(t, "b", link.To.ID)
	assert.Equal(t, 100.0, link.Length)
	assert.Equal(t, 10.0, link.Freespeed)
	assert.Equal(t, 2.0, link.NumLanes)
	assert.Equal(t, []string{"bus", "car"}, link.Modes())
	assert.False(t, net.Link("ba").HasMode("bus"))
}

func TestReadRejectsBrokenDocuments(t *testing.T) {
	cases := map[string]string{
		"no network root": `<?xml version="1.0"?><other/>`,
		"node without coordinate": `<network><nodes><node id="a" x="0"/></nodes><links/></network>`,
		"link with unknown node": `<network><nodes><node id="a" x="0" y="0"/></nodes>
			<links><link id="l" from="a" to="ghost" length="1" freespeed="1" capacity="1" modes="car"/></links></network>`,
		"link with bad length": `<network><nodes><node id="a" x="0" y="0"/><node id="b" x="1" y="0"/></nodes>
			<links><link id="l" from="a" to="b" length="abc" freespeed="1" capacity="1" modes="car"/></links></network>`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Read(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	original, err := Read(strings.NewReader(networkFragment))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(original, &buf))
	assert.Contains(t, buf.String(), "network_v2.dtd")

	reread, err := Read(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	assert.Equal(t, original.NumNodes(), reread.NumNodes())
	assert.Equal(t, original.LinkIDs(), reread.LinkIDs())
	assert.Equal(t, original.Link("ab").Modes(), reread.Link("ab").Modes())
	assert.Equal(t, original.Link("ab").NumLanes, reread.Link("ab").NumLanes)
}

func TestWriteDeterministic(t *testing.T) {
	net, err := Read(strings.NewReader(networkFragment))
	require.NoError(t, err)

	var first, second bytes.Buffer
	require.NoError(t, Write(net, &first))
	require.NoError(t, Write(net, &second))
	assert.Equal(t, first.String(), second.String())
}

func TestSplitModes(t *testing.T) {
	assert.Equal(t, []string{"car", "bus"}, splitModes("car,bus"))
	assert.Equal(t, []string{"car", "bus"}, splitModes("car, bus"))
	assert.Nil(t, splitModes(""))
	assert.Equal(t, []string{"rail"}, splitModes("rail"))
}
