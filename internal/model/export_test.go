package model

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExport(t *testing.T) {
	g, err := BuildFromReader(strings.NewReader(
		`<root id="r" name="Root"><part id="a" name="A" kind="x"/><part id="b" name="B"/></root>`), "t")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Export(g, &buf))

	var doc struct {
		Nodes []struct {
			ID         string            `json:"id"`
			Name       string            `json:"name"`
			Type       string            `json:"type"`
			Attributes map[string]string `json:"attributes"`
		} `json:"nodes"`
		Edges []struct {
			Source string `json:"source"`
			Target string `json:"target"`
		} `json:"edges"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	require.Len(t, doc.Nodes, 3)
	assert.Equal(t, "r", doc.Nodes[0].ID)
	assert.Equal(t, "Root", doc.Nodes[0].Name)
	assert.Equal(t, "root", doc.Nodes[0].Type)
	assert.Equal(t, "x", doc.Nodes[1].Attributes["kind"])

	require.Len(t, doc.Edges, 2)
	assert.Equal(t, "r", doc.Edges[0].Source)
	assert.Equal(t, "a", doc.Edges[0].Target)
	assert.Equal(t, "b", doc.Edges[1].Target)
}
