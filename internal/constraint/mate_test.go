package constraint

import (
	"testing"

	"github.com/stretchr/testify/require"

	"cadpilot/internal/model"
	"cadpilot/internal/units"
)

func testAssembly(t *testing.T) *model.AssemblyDocument {
	t.Helper()
	doc := model.NewAssemblyDocument("gearbox")
	require.NoError(t, doc.Insert(&model.AssemblyComponent{Name: "base", PartID: "p1"}))
	require.NoError(t, doc.Insert(&model.AssemblyComponent{Name: "shaft", PartID: "p2"}))
	require.NoError(t, doc.Insert(&model.AssemblyComponent{Name: "cover", PartID: "p3", Suppressed: true}))
	return doc
}

func ref(component, face string) model.MateReference {
	return model.MateReference{Component: component, Face: face}
}

func TestAddMate_Coincident(t *testing.T) {
	doc := testAssembly(t)
	m, err := AddMate(doc, model.MateCoincident, ref("base", "top"), ref("shaft", "bottom"), model.AlignAligned, nil)
	require.NoError(t, err)
	require.Equal(t, model.MateCoincident, m.Type)
	require.Len(t, doc.Mates, 1)
}

func TestAddMate_DistanceRequiresValue(t *testing.T) {
	doc := testAssembly(t)
	_, err := AddMate(doc, model.MateDistance, ref("base", "top"), ref("shaft", "bottom"), model.AlignAligned, nil)
	require.ErrorIs(t, err, ErrInvalidMateValue)
}

func TestAddMate_CoincidentRejectsValue(t *testing.T) {
	doc := testAssembly(t)
	v := units.New(5, units.Millimeter)
	_, err := AddMate(doc, model.MateCoincident, ref("base", "top"), ref("shaft", "bottom"), model.AlignAligned, &v)
	require.ErrorIs(t, err, ErrInvalidMateValue)
}

func TestAddMate_DistanceValueInMeters(t *testing.T) {
	doc := testAssembly(t)
	v := units.New(2, units.Inch)
	m, err := AddMate(doc, model.MateDistance, ref("base", "top"), ref("shaft", "bottom"), model.AlignAligned, &v)
	require.NoError(t, err)
	require.NotNil(t, m.Value)
	require.InDelta(t, 0.0508, *m.Value, 1e-12)
}

func TestAddMate_AngleValueInDegrees(t *testing.T) {
	doc := testAssembly(t)
	v := units.New(45, units.Meter) // degrees travel through the raw value
	m, err := AddMate(doc, model.MateAngle, ref("base", "top"), ref("shaft", "bottom"), model.AlignAligned, &v)
	require.NoError(t, err)
	require.Equal(t, 45.0, *m.Value)
}

func TestAddMate_DanglingReference(t *testing.T) {
	doc := testAssembly(t)
	_, err := AddMate(doc, model.MateParallel, ref("base", "top"), ref("ghost", "x"), model.AlignAligned, nil)
	require.ErrorIs(t, err, ErrDanglingReference)
}

func TestAddMate_SuppressedReference(t *testing.T) {
	doc := testAssembly(t)
	_, err := AddMate(doc, model.MateParallel, ref("base", "top"), ref("cover", "lid"), model.AlignAligned, nil)
	require.ErrorIs(t, err, ErrSuppressedReference)
}

func TestAddMate_OverConstrainedOnDifferentAlignment(t *testing.T) {
	doc := testAssembly(t)
	_, err := AddMate(doc, model.MateCoincident, ref("base", "top"), ref("shaft", "bottom"), model.AlignAligned, nil)
	require.NoError(t, err)

	_, err = AddMate(doc, model.MateCoincident, ref("base", "top"), ref("shaft", "bottom"), model.AlignAntiAligned, nil)
	require.ErrorIs(t, err, ErrOverConstrained)

	// Reversed endpoints are the same face pair.
	_, err = AddMate(doc, model.MateCoincident, ref("shaft", "bottom"), ref("base", "top"), model.AlignAntiAligned, nil)
	require.ErrorIs(t, err, ErrOverConstrained)
}

func TestAddMate_IdenticalDuplicateReturnsExisting(t *testing.T) {
	doc := testAssembly(t)
	first, err := AddMate(doc, model.MateCoincident, ref("base", "top"), ref("shaft", "bottom"), model.AlignAligned, nil)
	require.NoError(t, err)
	again, err := AddMate(doc, model.MateCoincident, ref("base", "top"), ref("shaft", "bottom"), model.AlignAligned, nil)
	require.NoError(t, err)
	require.Equal(t, first.ID, again.ID)
	require.Len(t, doc.Mates, 1)
}

func TestAddMate_DistanceDifferentValueOverConstrained(t *testing.T) {
	doc := testAssembly(t)
	a := units.New(10, units.Millimeter)
	b := units.New(20, units.Millimeter)
	_, err := AddMate(doc, model.MateDistance, ref("base", "top"), ref("shaft", "bottom"), model.AlignAligned, &a)
	require.NoError(t, err)
	_, err = AddMate(doc, model.MateDistance, ref("base", "top"), ref("shaft", "bottom"), model.AlignAligned, &b)
	require.ErrorIs(t, err, ErrOverConstrained)
}

func TestDeleteComponent_BlockedByLiveMate(t *testing.T) {
	doc := testAssembly(t)
	m, err := AddMate(doc, model.MateCoincident, ref("base", "top"), ref("shaft", "bottom"), model.AlignAligned, nil)
	require.NoError(t, err)

	err = doc.DeleteComponent("shaft")
	require.ErrorIs(t, err, model.ErrComponentMated)

	require.NoError(t, doc.DeleteMate(m.ID))
	require.NoError(t, doc.DeleteComponent("shaft"))
}

func TestAddMate_DifferentFacesNotOverConstrained(t *testing.T) {
	doc := testAssembly(t)
	_, err := AddMate(doc, model.MateCoincident, ref("base", "top"), ref("shaft", "bottom"), model.AlignAligned, nil)
	require.NoError(t, err)
	_, err = AddMate(doc, model.MateCoincident, ref("base", "left"), ref("shaft", "bottom"), model.AlignAntiAligned, nil)
	require.NoError(t, err)
	require.Len(t, doc.Mates, 2)
}
