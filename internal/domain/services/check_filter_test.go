package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fontkiln/fontkiln/internal/domain/callable"
	"github.com/fontkiln/fontkiln/internal/domain/values"
)

func filterCheck(t *testing.T, id string, severity int, experimental bool) *callable.Check {
	t.Helper()
	info := callable.CheckInfo{
		ID:           id,
		Description:  "A check used as a filter fixture.",
		Experimental: experimental,
	}
	if severity != 0 {
		info.Severity = values.MustNewSeverity(severity)
	}
	chk, err := callable.NewCheck(func() {}, info)
	require.NoError(t, err)
	return chk
}

func Test_CheckFilter_NoFilters(t *testing.T) {
	filter := NewCheckFilter()
	chk := filterCheck(t, "example/check", 0, false)

	shouldRun, _ := filter.ShouldRun(chk)
	assert.True(t, shouldRun, "no filters should allow all checks")
}

func Test_CheckFilter_ExclusiveMode(t *testing.T) {
	filter := NewCheckFilter().
		WithExclusiveChecks([]string{"example/one", "example/two"})

	tests := []struct {
		checkID  string
		expected bool
	}{
		{"example/one", true},
		{"example/two", true},
		{"example/three", false},
	}

	for _, tt := range tests {
		t.Run(tt.checkID, func(t *testing.T) {
			shouldRun, _ := filter.ShouldRun(filterCheck(t, tt.checkID, 0, false))
			assert.Equal(t, tt.expected, shouldRun)
		})
	}
}

func Test_CheckFilter_ExcludeCheckIDs(t *testing.T) {
	filter := NewCheckFilter().
		WithExcludedChecks([]string{"example/excluded"})

	tests := []struct {
		checkID  string
		expected bool
	}{
		{"example/kept", true},
		{"example/excluded", false},
	}

	for _, tt := range tests {
		t.Run(tt.checkID, func(t *testing.T) {
			shouldRun, reason := filter.ShouldRun(filterCheck(t, tt.checkID, 0, false))
			assert.Equal(t, tt.expected, shouldRun)
			if !tt.expected {
				assert.Contains(t, reason, "--exclude-check")
			}
		})
	}
}

func Test_CheckFilter_WithoutExperimental(t *testing.T) {
	filter := NewCheckFilter().WithoutExperimental()

	shouldRun, _ := filter.ShouldRun(filterCheck(t, "example/stable", 0, false))
	assert.True(t, shouldRun)

	shouldRun, reason := filter.ShouldRun(filterCheck(t, "example/experimental", 0, true))
	assert.False(t, shouldRun)
	assert.Contains(t, reason, "experimental")
}

func Test_CheckFilter_MinSeverity(t *testing.T) {
	filter := NewCheckFilter().
		WithMinSeverity(values.MustNewSeverity(5))

	tests := []struct {
		name     string
		severity int
		expected bool
	}{
		{"above threshold", 8, true},
		{"at threshold", 5, true},
		{"below threshold", 3, false},
		{"ungraded", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shouldRun, _ := filter.ShouldRun(filterCheck(t, "example/check", tt.severity, false))
			assert.Equal(t, tt.expected, shouldRun)
		})
	}
}

func Test_CheckFilter_FilterExpression(t *testing.T) {
	program, err := NewExpressionCompiler().Compile(`severity >= 7 and not experimental`)
	require.NoError(t, err)

	filter := NewCheckFilter().
		WithFilterExpression(program)

	tests := []struct {
		name         string
		severity     int
		experimental bool
		expected     bool
	}{
		{"severe and stable", 9, false, true},
		{"severe but experimental", 9, true, false},
		{"mild", 2, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chk := filterCheck(t, "example/check", tt.severity, tt.experimental)
			shouldRun, _ := filter.ShouldRun(chk)
			assert.Equal(t, tt.expected, shouldRun)
		})
	}
}

func Test_CheckFilter_ExpressionOverID(t *testing.T) {
	program, err := NewExpressionCompiler().Compile(`id contains "opentype"`)
	require.NoError(t, err)

	filter := NewCheckFilter().WithFilterExpression(program)

	shouldRun, _ := filter.ShouldRun(filterCheck(t, "opentype/unitsperem", 0, false))
	assert.True(t, shouldRun)

	shouldRun, _ = filter.ShouldRun(filterCheck(t, "ufo/metadata", 0, false))
	assert.False(t, shouldRun)
}

func Test_CheckFilter_Precedence(t *testing.T) {
	// Exclusive mode overrides all other filters.
	filter := NewCheckFilter().
		WithExclusiveChecks([]string{"example/one"}).
		WithoutExperimental().
		WithMinSeverity(values.MustNewSeverity(9))

	// Experimental and ungraded, but in the exclusive list.
	shouldRun, _ := filter.ShouldRun(filterCheck(t, "example/one", 0, true))
	assert.True(t, shouldRun, "exclusive mode should override other filters")

	// Severe and stable, but not in the exclusive list.
	shouldRun, _ = filter.ShouldRun(filterCheck(t, "example/two", 10, false))
	assert.False(t, shouldRun)
}

func Test_CheckFilter_Select(t *testing.T) {
	filter := NewCheckFilter().
		WithExcludedChecks([]string{"example/b"})

	checks := []*callable.Check{
		filterCheck(t, "example/a", 0, false),
		filterCheck(t, "example/b", 0, false),
		filterCheck(t, "example/c", 0, false),
	}

	selected := filter.Select(checks)
	require.Len(t, selected, 2)
	assert.Equal(t, "example/a", selected[0].ID().String())
	assert.Equal(t, "example/c", selected[1].ID().String())
}

func Test_ExpressionCompiler_CachesPrograms(t *testing.T) {
	compiler := NewExpressionCompiler()

	first, err := compiler.Compile(`severity > 3`)
	require.NoError(t, err)

	second, err := compiler.Compile(`severity > 3`)
	require.NoError(t, err)

	assert.Same(t, first, second, "same expression should return the cached program")
}

func Test_ExpressionCompiler_ConcurrentCompile(t *testing.T) {
	compiler := NewExpressionCompiler()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := compiler.Compile(`experimental or severity >= 5`)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

func Test_ExpressionCompiler_RejectsInvalid(t *testing.T) {
	compiler := NewExpressionCompiler()

	tests := []struct {
		name       string
		expression string
	}{
		{"syntax error", `severity >=`},
		{"unknown variable", `owner == "platform"`},
		{"non-boolean result", `severity + 1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compiler.Compile(tt.expression)
			assert.Error(t, err)
		})
	}
}
