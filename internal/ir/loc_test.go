package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocString(t *testing.T) {
	assert.Equal(t, "<unknown>", Loc{}.String())
	assert.Equal(t, "3:7", Loc{Line: 3, Col: 7}.String())
	assert.Equal(t, "prog.yaml:3:7", Loc{File: "prog.yaml", Line: 3, Col: 7}.String())
}

func TestLocPos(t *testing.T) {
	n := &Int{Loc: Loc{File: "a.json", Line: 2, Col: 1}, Value: 1}
	assert.True(t, n.Pos().IsValid())
	assert.Equal(t, "a.json", n.Pos().File)
	assert.False(t, NewInt(1).Pos().IsValid())
}
