package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/fontkiln/fontkiln/internal/application/errors"
	"github.com/fontkiln/fontkiln/internal/domain/callable"
	"github.com/fontkiln/fontkiln/internal/domain/conditions"
)

func newTestCheck(t *testing.T, id string) *callable.Check {
	t.Helper()
	chk, err := callable.NewCheck(func() {}, callable.CheckInfo{
		ID:          id,
		Description: "A check used as a test fixture.",
	})
	require.NoError(t, err)
	return chk
}

func Test_Profile_RegisterCheck(t *testing.T) {
	profile := NewProfile("testing")

	first := newTestCheck(t, "example/first")
	require.NoError(t, profile.RegisterCheck(first))
	assert.Equal(t, 1, profile.CheckCount())
	assert.True(t, profile.HasCheck("example/first"))

	got, err := profile.Check("example/first")
	require.NoError(t, err)
	assert.Same(t, first, got)
}

func Test_Profile_RegisterCheck_RejectsDuplicateID(t *testing.T) {
	profile := NewProfile("testing")

	require.NoError(t, profile.RegisterCheck(newTestCheck(t, "example/dup")))

	err := profile.RegisterCheck(newTestCheck(t, "example/dup"))
	require.Error(t, err)

	var dup *DuplicateCheckError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "example/dup", dup.ID.String())
	assert.Equal(t, 1, profile.CheckCount())
}

func Test_Profile_RegisterCheck_RejectsNil(t *testing.T) {
	profile := NewProfile("testing")

	err := profile.RegisterCheck(nil)
	require.Error(t, err)

	var defErr *apperrors.DefinitionError
	assert.ErrorAs(t, err, &defErr)
}

func Test_Profile_Register(t *testing.T) {
	tests := []struct {
		name    string
		def     func(t *testing.T) any
		wantErr bool
	}{
		{
			name: "active_check",
			def: func(t *testing.T) any {
				return newTestCheck(t, "example/active")
			},
		},
		{
			name: "disabled_check",
			def: func(t *testing.T) any {
				return callable.Disable(newTestCheck(t, "example/parked"))
			},
		},
		{
			name: "plain_function",
			def: func(*testing.T) any {
				return func() {}
			},
			wantErr: true,
		},
		{
			name: "disabled_non_check",
			def: func(*testing.T) any {
				return callable.Disable(func() {})
			},
			wantErr: true,
		},
		{
			name: "string",
			def: func(*testing.T) any {
				return "example/id"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := NewProfile("testing")

			err := profile.Register(tt.def(t))
			if tt.wantErr {
				require.Error(t, err)
				var defErr *apperrors.DefinitionError
				assert.ErrorAs(t, err, &defErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func Test_Profile_Register_DisabledIsParked(t *testing.T) {
	profile := NewProfile("testing")
	chk := newTestCheck(t, "example/parked")

	require.NoError(t, profile.Register(callable.Disable(chk)))

	assert.False(t, profile.HasCheck("example/parked"))
	assert.Equal(t, 0, profile.CheckCount())

	parked := profile.DisabledChecks()
	require.Len(t, parked, 1)
	assert.Same(t, chk, parked[0])

	// The ID stays reserved while parked.
	err := profile.RegisterCheck(newTestCheck(t, "example/parked"))
	var dup *DuplicateCheckError
	require.ErrorAs(t, err, &dup)
}

func Test_Profile_Checks_KeepsRegistrationOrder(t *testing.T) {
	profile := NewProfile("testing")

	ids := []string{"example/c", "example/a", "example/b"}
	for _, id := range ids {
		require.NoError(t, profile.RegisterCheck(newTestCheck(t, id)))
	}

	checks := profile.Checks()
	require.Len(t, checks, 3)
	for i, chk := range checks {
		assert.Equal(t, ids[i], chk.ID().String())
	}
}

func Test_Profile_Check_NotFound(t *testing.T) {
	profile := NewProfile("testing")

	_, err := profile.Check("example/missing")
	require.Error(t, err)

	var notFound *CheckNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "example/missing", notFound.ID)
}

func Test_Profile_DisableAndEnable(t *testing.T) {
	profile := NewProfile("testing")
	require.NoError(t, profile.RegisterCheck(newTestCheck(t, "example/a")))
	require.NoError(t, profile.RegisterCheck(newTestCheck(t, "example/b")))

	require.NoError(t, profile.Disable("example/a"))
	assert.False(t, profile.HasCheck("example/a"))
	assert.Len(t, profile.DisabledChecks(), 1)

	checks := profile.Checks()
	require.Len(t, checks, 1)
	assert.Equal(t, "example/b", checks[0].ID().String())

	// Re-enabling appends at the end of the order.
	require.NoError(t, profile.Enable("example/a"))
	assert.True(t, profile.HasCheck("example/a"))
	assert.Empty(t, profile.DisabledChecks())

	checks = profile.Checks()
	require.Len(t, checks, 2)
	assert.Equal(t, "example/b", checks[0].ID().String())
	assert.Equal(t, "example/a", checks[1].ID().String())
}

func Test_Profile_Disable_UnknownID(t *testing.T) {
	profile := NewProfile("testing")

	var notFound *CheckNotFoundError
	require.ErrorAs(t, profile.Disable("example/missing"), &notFound)
}

func Test_Profile_Enable_UnknownID(t *testing.T) {
	profile := NewProfile("testing")
	require.NoError(t, profile.RegisterCheck(newTestCheck(t, "example/active")))

	// Enable only acts on parked checks; an active ID is not found there.
	var notFound *CheckNotFoundError
	require.ErrorAs(t, profile.Enable("example/active"), &notFound)
}

func Test_Profile_MustRegister_Panics(t *testing.T) {
	profile := NewProfile("testing")

	assert.Panics(t, func() {
		profile.MustRegister("not a check")
	})
}

func Test_Profile_Include(t *testing.T) {
	base := NewProfile("base")
	require.NoError(t, base.RegisterCheck(newTestCheck(t, "base/a")))
	require.NoError(t, base.Register(callable.Disable(newTestCheck(t, "base/parked"))))
	_, err := base.RegisterCondition(func() bool { return true }, conditions.WithName("base_ready"))
	require.NoError(t, err)

	vendor := NewProfile("vendor")
	require.NoError(t, vendor.RegisterCheck(newTestCheck(t, "vendor/a")))

	require.NoError(t, vendor.Include(base))

	checks := vendor.Checks()
	require.Len(t, checks, 2)
	assert.Equal(t, "vendor/a", checks[0].ID().String())
	assert.Equal(t, "base/a", checks[1].ID().String())

	require.Len(t, vendor.DisabledChecks(), 1)

	_, ok := vendor.Conditions().Lookup("base_ready")
	assert.True(t, ok)
}

func Test_Profile_Include_RejectsClashes(t *testing.T) {
	base := NewProfile("base")
	require.NoError(t, base.RegisterCheck(newTestCheck(t, "shared/check")))
	require.NoError(t, base.RegisterCheck(newTestCheck(t, "base/only")))

	vendor := NewProfile("vendor")
	require.NoError(t, vendor.RegisterCheck(newTestCheck(t, "shared/check")))

	err := vendor.Include(base)
	var dup *DuplicateCheckError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "shared/check", dup.ID.String())

	// A failed merge copies nothing.
	assert.Equal(t, 1, vendor.CheckCount())
	assert.False(t, vendor.HasCheck("base/only"))
}

func Test_Profile_RegisterCondition(t *testing.T) {
	profile := NewProfile("testing")

	def, err := profile.RegisterCondition(func() bool { return true })
	require.NoError(t, err)

	got, ok := profile.Conditions().Lookup(def.Name())
	require.True(t, ok)
	assert.Same(t, def, got)
}
