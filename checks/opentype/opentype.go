// Package opentype bundles the checks fontkiln ships with: structural
// sanity checks any OpenType binary should satisfy, independent of
// vendor or project conventions.
//
// Each check is a plain function registered on a profile together with
// the conditions it gates on. Runs seed the condition namespace with
// "font" (the parsed *sfntlite.Font) and "font_path" (its location on
// disk); everything else is derived from those two.
package opentype

import (
	"fmt"
	"os"

	"github.com/fontkiln/fontkiln/internal/domain/conditions"
	"github.com/fontkiln/fontkiln/internal/domain/entities"
	"github.com/fontkiln/fontkiln/internal/sfntlite"
)

// Profile builds the bundled check profile. Every call returns a fresh
// instance: applying a configuration document injects variables into
// the checks, and callers must not see each other's injections.
func Profile() *entities.Profile {
	p := entities.NewProfile("opentype")

	registerConditions(p)

	p.MustRegister(requiredTablesCheck())
	p.MustRegister(glyfTableCheck())
	p.MustRegister(cffTableCheck())
	p.MustRegister(unitsPerEmCheck())
	p.MustRegister(fontVersionCheck())
	p.MustRegister(vendorIDCheck())
	p.MustRegister(fileSizeCheck())

	return p
}

func registerConditions(p *entities.Profile) {
	conditions.MustRegister(p.Conditions(), func(args struct {
		Font *sfntlite.Font `check:"font"`
	}) bool {
		return args.Font.IsTrueType()
	}, conditions.WithName("is_truetype"))

	conditions.MustRegister(p.Conditions(), func(args struct {
		Font *sfntlite.Font `check:"font"`
	}) bool {
		return args.Font.HasTable("head")
	}, conditions.WithName("has_head_table"))

	conditions.MustRegister(p.Conditions(), func(args struct {
		Path string `check:"font_path"`
	}) (int64, error) {
		info, err := os.Stat(args.Path)
		if err != nil {
			return 0, fmt.Errorf("cannot stat font file: %w", err)
		}
		return info.Size(), nil
	}, conditions.WithName("file_size"))
}
