package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reearth/reearth-flow-go/flow/types"
)

func TestCompileAndEvalString(t *testing.T) {
	e := NewEngine()
	script, err := e.Compile(`g + "-suffix"`)
	require.NoError(t, err)

	scope := e.NewScope(map[types.Attribute]types.Value{"g": types.String("A")}, nil)
	got, err := scope.EvalString(script)
	require.NoError(t, err)
	assert.Equal(t, "A-suffix", got)
}

func TestCompileErrorAbortsBuild(t *testing.T) {
	e := NewEngine()
	_, err := e.Compile(`this is not ( valid`)
	require.Error(t, err)
	var ce *CompileError
	assert.ErrorAs(t, err, &ce)
}

func TestEvalPurity(t *testing.T) {
	e := NewEngine()
	script, err := e.Compile(`v * 2`)
	require.NoError(t, err)

	attrs := map[types.Attribute]types.Value{"v": types.Int(21)}
	s1 := e.NewScope(attrs, nil)
	s2 := e.NewScope(attrs, nil)

	r1, err := s1.EvalInt(script)
	require.NoError(t, err)
	r2, err := s2.EvalInt(script)
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}

func TestEvalTypeMismatchSurfacesError(t *testing.T) {
	e := NewEngine()
	script, err := e.Compile(`"not a number"`)
	require.NoError(t, err)
	scope := e.NewScope(nil, nil)
	_, err = scope.EvalInt(script)
	require.Error(t, err)
	var ee *EvaluationError
	assert.ErrorAs(t, err, &ee)
}
