package dsl

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ByLCY/cardstudio/content"
	"github.com/ByLCY/cardstudio/layout"
)

var (
	// ErrUnknownField is returned for paths that do not name an editable field.
	ErrUnknownField = errors.New("unknown field")
	// ErrType is returned when a literal has the wrong type for its field.
	ErrType = errors.New("type mismatch")
)

// CompileError locates a failed assignment.
type CompileError struct {
	Line int
	Path string
	Err  error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("line %d: %s: %v", e.Line, e.Path, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// Edits is the result of compiling a script. Patch carries the content
// changes; the other fields are editor settings and are nil when untouched.
type Edits struct {
	Patch  content.Patch
	Format *layout.Format
	Layout *layout.ID
	Theme  *string
	Accent *layout.Color
}

// Empty reports whether the script changed nothing.
func (e *Edits) Empty() bool {
	p := e.Patch
	return e.Format == nil && e.Layout == nil && e.Theme == nil && e.Accent == nil &&
		p.Title == nil && p.Summary == nil && p.BackgroundRef == nil && p.Category == nil &&
		p.ListItems == nil && p.AgeGroup == nil && p.AgeGroupColor == nil && p.MealType == nil &&
		p.PrepTime == nil && p.Difficulty == nil && p.Season == nil && p.Allergens == nil &&
		p.AllergyRisk == nil && p.StartAge == nil && p.Benefits == nil && p.Author == nil &&
		p.Expert == nil && p.Watermark == nil && p.Visibility == nil
}

// CompileString parses and compiles src.
func CompileString(src string) (*Edits, error) {
	script, err := ParseString(src)
	if err != nil {
		return nil, err
	}
	return Compile(script)
}

// CompileReader parses and compiles a script read from r.
func CompileReader(r io.Reader) (*Edits, error) {
	script, err := Parse(r)
	if err != nil {
		return nil, err
	}
	return Compile(script)
}

// Compile folds the statements of script into one Edits value. Later
// assignments to the same path win.
func Compile(script *Script) (*Edits, error) {
	out := &Edits{}
	if script == nil {
		return out, nil
	}
	for _, st := range script.Statements {
		if err := out.assign(st); err != nil {
			return nil, &CompileError{Line: st.Pos.Line, Path: st.Key(), Err: err}
		}
	}
	return out, nil
}

func (e *Edits) assign(st *Statement) error {
	path := st.Path
	head := strings.ToLower(path[0])
	if len(path) == 1 {
		return e.assignTop(head, st.Value)
	}
	if len(path) != 2 {
		return ErrUnknownField
	}
	field := path[1]
	switch head {
	case "author":
		if e.Patch.Author == nil {
			e.Patch.Author = &content.PersonPatch{}
		}
		return assignPerson(e.Patch.Author, field, st.Value, false)
	case "expert":
		if e.Patch.Expert == nil {
			e.Patch.Expert = &content.PersonPatch{}
		}
		return assignPerson(e.Patch.Expert, field, st.Value, true)
	case "watermark":
		if e.Patch.Watermark == nil {
			e.Patch.Watermark = &content.WatermarkPatch{}
		}
		return assignWatermark(e.Patch.Watermark, field, st.Value)
	case "visibility":
		f, ok := content.ParseField(field)
		if !ok {
			return ErrUnknownField
		}
		shown, err := boolOf(st.Value)
		if err != nil {
			return err
		}
		if e.Patch.Visibility == nil {
			e.Patch.Visibility = map[content.Field]bool{}
		}
		e.Patch.Visibility[f] = shown
		return nil
	case "theme":
		if !strings.EqualFold(field, "accent") {
			return ErrUnknownField
		}
		s, err := textOf(st.Value)
		if err != nil {
			return err
		}
		c, err := layout.ParseColor(s)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrType, err)
		}
		e.Accent = &c
		return nil
	}
	return ErrUnknownField
}

func (e *Edits) assignTop(key string, v *Value) error {
	p := &e.Patch
	switch key {
	case "title":
		return setText(&p.Title, v)
	case "summary", "excerpt":
		return setText(&p.Summary, v)
	case "background", "backgroundimageref":
		return setText(&p.BackgroundRef, v)
	case "category":
		return setText(&p.Category, v)
	case "agegroup":
		return setText(&p.AgeGroup, v)
	case "agegroupcolor":
		return setText(&p.AgeGroupColor, v)
	case "mealtype":
		return setText(&p.MealType, v)
	case "preptime":
		return setText(&p.PrepTime, v)
	case "difficulty":
		return setText(&p.Difficulty, v)
	case "season":
		return setText(&p.Season, v)
	case "startage":
		return setText(&p.StartAge, v)
	case "benefits", "benefitstext":
		return setText(&p.Benefits, v)
	case "listitems", "ingredients":
		items, err := listOf(v)
		if err != nil {
			return err
		}
		p.ListItems = items
		return nil
	case "allergens":
		items, err := listOf(v)
		if err != nil {
			return err
		}
		p.Allergens = items
		return nil
	case "allergyrisk", "allergyrisklevel":
		s, err := textOf(v)
		if err != nil {
			return err
		}
		r := content.ParseRisk(s)
		p.AllergyRisk = &r
		return nil
	case "format":
		s, err := textOf(v)
		if err != nil {
			return err
		}
		f, err := layout.ParseFormat(s)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrType, err)
		}
		e.Format = &f
		return nil
	case "layout":
		s, err := textOf(v)
		if err != nil {
			return err
		}
		id, ok := layout.ParseID(s)
		if !ok {
			return fmt.Errorf("%w: unknown layout %q", ErrType, s)
		}
		e.Layout = &id
		return nil
	case "theme":
		s, err := textOf(v)
		if err != nil {
			return err
		}
		e.Theme = &s
		return nil
	}
	return ErrUnknownField
}

func assignPerson(p *content.PersonPatch, field string, v *Value, expert bool) error {
	switch strings.ToLower(field) {
	case "name":
		return setText(&p.Name, v)
	case "avatar", "avatarref":
		return setText(&p.AvatarRef, v)
	case "visible":
		return setBool(&p.Visible, v)
	}
	if !expert {
		return ErrUnknownField
	}
	switch strings.ToLower(field) {
	case "title":
		return setText(&p.Title, v)
	case "note":
		return setText(&p.Note, v)
	case "verified":
		return setBool(&p.Verified, v)
	}
	return ErrUnknownField
}

func assignWatermark(p *content.WatermarkPatch, field string, v *Value) error {
	switch strings.ToLower(field) {
	case "visible":
		return setBool(&p.Visible, v)
	case "image", "imageref":
		return setText(&p.ImageRef, v)
	case "position":
		s, err := textOf(v)
		if err != nil {
			return err
		}
		if _, err := content.ParseAnchor(s); err != nil {
			return err
		}
		p.Position = &s
		return nil
	case "opacity":
		return setNumber(&p.Opacity, v)
	case "scale":
		return setNumber(&p.Scale, v)
	}
	return ErrUnknownField
}

func textOf(v *Value) (string, error) {
	s, ok := v.Text()
	if !ok {
		return "", fmt.Errorf("%w: want string, got %s", ErrType, v.Kind())
	}
	return s, nil
}

func boolOf(v *Value) (bool, error) {
	if v == nil || v.Bool == nil {
		return false, fmt.Errorf("%w: want bool, got %s", ErrType, v.Kind())
	}
	return bool(*v.Bool), nil
}

func listOf(v *Value) ([]string, error) {
	if v == nil || v.Array == nil {
		return nil, fmt.Errorf("%w: want list, got %s", ErrType, v.Kind())
	}
	out := make([]string, 0, len(v.Array.Values))
	for _, item := range v.Array.Values {
		s, err := textOf(item)
		if err != nil {
			return nil, err
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

func setText(dst **string, v *Value) error {
	s, err := textOf(v)
	if err != nil {
		return err
	}
	*dst = &s
	return nil
}

func setBool(dst **bool, v *Value) error {
	b, err := boolOf(v)
	if err != nil {
		return err
	}
	*dst = &b
	return nil
}

func setNumber(dst **float64, v *Value) error {
	if v == nil || v.Number == nil {
		return fmt.Errorf("%w: want number, got %s", ErrType, v.Kind())
	}
	n := *v.Number
	*dst = &n
	return nil
}
