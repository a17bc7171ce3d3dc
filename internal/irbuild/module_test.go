package irbuild_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pivot-lang/plc/internal/irbuild"
	"github.com/pivot-lang/plc/internal/source"
	"github.com/pivot-lang/plc/testutil"
)

// buildAddOne emits a tiny `fn addOne(x i64) i64 { return x + 1; }`-shaped
// function directly against the Emitter, exercising the alloc/entry
// split and the textual Render form, which must be stable across
// repeated emission.
func buildAddOne(e *irbuild.Emitter) {
	i64 := irbuild.BasicType{Kind: irbuild.KInt, Width: 64}
	fn := e.DeclareFunction("addOne", []irbuild.BasicType{i64}, i64, false)
	e.DefineFunction(fn)

	e.PositionAtEnd(fn.EntryBlock)
	arg := e.GetParam(fn, 0)
	one := e.ConstInt(1, 64)
	sum := e.BuildIntBinOp("add", arg, one, "sum")
	e.BuildReturn(sum)
}

func TestEmitterRenderIsStableAcrossRepeatedEmission(t *testing.T) {
	e1 := irbuild.NewEmitter("m", "addone.pl", "/proj")
	buildAddOne(e1)
	out1 := e1.Render()

	e2 := irbuild.NewEmitter("m", "addone.pl", "/proj")
	buildAddOne(e2)
	out2 := e2.Render()

	assert.Equal(t, out1, out2, "emitting the same AST twice must produce byte-identical IR")
	assert.Contains(t, out1, "define i64 @addOne(i64) {")
	assert.Contains(t, out1, "ret i64")
}

func TestEmitterDeclareFunctionIsIdempotentByLLVMName(t *testing.T) {
	e := irbuild.NewEmitter("m", "f.pl", "/proj")
	i64 := irbuild.BasicType{Kind: irbuild.KInt, Width: 64}
	a := e.DeclareFunction("f", []irbuild.BasicType{i64}, i64, false)
	b := e.DeclareFunction("f", []irbuild.BasicType{i64}, i64, false)
	assert.Same(t, a, b)
}

func TestEmitterBuildBrAfterTerminatorIsNoop(t *testing.T) {
	e := irbuild.NewEmitter("m", "f.pl", "/proj")
	i64 := irbuild.BasicType{Kind: irbuild.KInt, Width: 64}
	fn := e.DeclareFunction("f", nil, i64, false)
	e.DefineFunction(fn)
	e.PositionAtEnd(fn.EntryBlock)

	after := e.AppendBlock(fn, "after")
	e.BuildReturn(e.ConstInt(0, 64))
	require.True(t, fn.EntryBlock.Terminated())

	e.BuildBr(after)
	out := e.Render()
	assert.NotContains(t, out, "br label %after", "a block that already terminated must not accept a second terminator")
}

func TestEmitterWriteBitcodeIsDeterministicSortedJSON(t *testing.T) {
	dir := t.TempDir()
	e1 := irbuild.NewEmitter("m", "f.pl", dir)
	buildAddOne(e1)
	path1 := dir + "/out1.irb"
	require.NoError(t, e1.WriteBitcode(path1))

	e2 := irbuild.NewEmitter("m", "f.pl", dir)
	buildAddOne(e2)
	path2 := dir + "/out2.irb"
	require.NoError(t, e2.WriteBitcode(path2))

	data1, err := os.ReadFile(path1)
	require.NoError(t, err)
	data2, err := os.ReadFile(path2)
	require.NoError(t, err)
	assert.Equal(t, data1, data2, "two emissions of the same AST must produce byte-identical bitcode")

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data1, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "addOne", decoded[0]["Name"])

	require.NoError(t, e1.PrintToFile(dir+"/out.ir"))
}

func TestEmitterSnapshotSurvivesGoldenRoundTrip(t *testing.T) {
	e := irbuild.NewEmitter("m", "addone.pl", "/proj")
	buildAddOne(e)

	path := filepath.Join(t.TempDir(), "addone_module.golden.json")
	testutil.WriteGolden(t, path, map[string]any{"ir": e.Render()})

	// A second, independent emission must match the recorded snapshot.
	e2 := irbuild.NewEmitter("m", "addone.pl", "/proj")
	buildAddOne(e2)
	testutil.AssertSnapshot(t, path, map[string]any{"ir": e2.Render()})
}

func TestNoopBuilderNeverTerminatesDifferentlyThanEmitter(t *testing.T) {
	n := &irbuild.NoopBuilder{}
	i64 := irbuild.BasicType{Kind: irbuild.KInt, Width: 64}
	fn := n.DeclareFunction("f", []irbuild.BasicType{i64}, i64, false)
	n.DefineFunction(fn)
	n.PositionAtEnd(fn.EntryBlock)

	v := n.Alloc(fn, "x", i64, source.Position{}, true)
	require.True(t, v.IsPointer())

	loaded := n.BuildLoad(v, "xval")
	assert.Equal(t, irbuild.KInt, loaded.Type.Kind)

	n.BuildReturn(loaded)
	assert.True(t, fn.EntryBlock.Terminated())

	assert.NoError(t, n.PrintToFile("/should/not/be/written.ir"))
	assert.NoError(t, n.WriteBitcode("/should/not/be/written.irb"))
}
