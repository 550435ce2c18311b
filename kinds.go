package taskweaver

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrShapeMismatch is returned by Kind.Build when a definition carries
// attributes the kind does not accept. The parser then falls back to an
// UnknownTask holding those attributes.
var ErrShapeMismatch = errors.New("definition does not match task shape")

// Definition is one raw entry as read by the parser.
type Definition struct {
	Params     []string          // raw tokens; Params[0] names the kind
	DoubleTask bool              // opaque flag carried through to UnknownTask
	Attributes map[string]string // every other key, nested maps flattened with "."
	Pos        Position
}

// Kind builds tasks of one or more named kinds.
type Kind interface {
	// Names returns the kind names handled (e.g., ["run", "exec"]).
	Names() []string
	// Build turns a definition into a task. Shape rules are checked later by
	// Validate; Build only refuses definitions it cannot hold.
	Build(def Definition) (Task, error)
}

var (
	validateOnce sync.Once
	validate     *validator.Validate

	envKeyRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

func shapeValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("name"), ",", 2)[0]
			if name == "" {
				return strings.ToLower(f.Name)
			}
			return name
		})
		if err := v.RegisterValidation("envkey", func(fl validator.FieldLevel) bool {
			return envKeyRe.MatchString(fl.Field().String())
		}); err != nil {
			panic(fmt.Sprintf("register envkey validation: %v", err))
		}
		validate = v
	})
	return validate
}

// checkShape runs struct rules on shape and appends one message per failed
// field, in field order.
func checkShape(kind string, params []string, shape any, sink ErrorSink) {
	err := shapeValidator().Struct(shape)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		sink.AddError(shapeMessage(kind, params, err.Error()))
		return
	}
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		sink.AddError(shapeMessage(kind, params, fe.Field()+" failed "+rule))
	}
}

func shapeMessage(kind string, params []string, detail string) string {
	return fmt.Sprintf("%s in def %v: %s.", kind, params, detail)
}

// ===== run =====

// CommandTask runs an external command.
type CommandTask struct {
	Params  []string          `validate:"-"`
	Command []string          `name:"command" validate:"min=1,dive,required"`
	Dir     string            `name:"dir" validate:"omitempty,max=4096"`
	Env     map[string]string `name:"env" validate:"dive,keys,envkey,endkeys"`
}

func (t *CommandTask) Validate(sink ErrorSink) { checkShape("run", t.Params, t, sink) }

func (t *CommandTask) String() string {
	return fmt.Sprintf("run %s", strings.Join(t.Command, " "))
}

type commandKind struct{}

func (commandKind) Names() []string { return []string{"run", "exec"} }

func (commandKind) Build(def Definition) (Task, error) {
	if len(def.Params) == 0 {
		return nil, ErrShapeMismatch
	}
	t := &CommandTask{
		Params:  def.Params,
		Command: def.Params[1:],
	}
	for k, v := range def.Attributes {
		switch {
		case k == "dir":
			t.Dir = v
		case strings.HasPrefix(k, "env."):
			if t.Env == nil {
				t.Env = map[string]string{}
			}
			t.Env[strings.TrimPrefix(k, "env.")] = v
		default:
			return nil, fmt.Errorf("%w: attribute %q", ErrShapeMismatch, k)
		}
	}
	return t, nil
}

// ===== copy =====

// CopyTask copies one path to another.
type CopyTask struct {
	Params []string `validate:"-"`
	Args   []string `name:"args" validate:"len=2,dive,required"`
}

func (t *CopyTask) Validate(sink ErrorSink) { checkShape("copy", t.Params, t, sink) }

func (t *CopyTask) String() string {
	return fmt.Sprintf("copy %s", strings.Join(t.Args, " "))
}

// Src returns the source path, or "" when the definition is malformed.
func (t *CopyTask) Src() string {
	if len(t.Args) > 0 {
		return t.Args[0]
	}
	return ""
}

// Dst returns the destination path, or "" when the definition is malformed.
func (t *CopyTask) Dst() string {
	if len(t.Args) > 1 {
		return t.Args[1]
	}
	return ""
}

type copyKind struct{}

func (copyKind) Names() []string { return []string{"copy", "cp"} }

func (copyKind) Build(def Definition) (Task, error) {
	if err := noAttributes(def); err != nil {
		return nil, err
	}
	return &CopyTask{Params: def.Params, Args: def.Params[1:]}, nil
}

// ===== echo =====

// EchoTask prints its text.
type EchoTask struct {
	Params []string `validate:"-"`
	Text   []string `name:"text" validate:"min=1"`
}

func (t *EchoTask) Validate(sink ErrorSink) { checkShape("echo", t.Params, t, sink) }

func (t *EchoTask) String() string { return "echo " + strings.Join(t.Text, " ") }

type echoKind struct{}

func (echoKind) Names() []string { return []string{"echo"} }

func (echoKind) Build(def Definition) (Task, error) {
	if err := noAttributes(def); err != nil {
		return nil, err
	}
	return &EchoTask{Params: def.Params, Text: def.Params[1:]}, nil
}

func noAttributes(def Definition) error {
	if len(def.Params) == 0 {
		return ErrShapeMismatch
	}
	if len(def.Attributes) == 0 {
		return nil
	}
	keys := make([]string, 0, len(def.Attributes))
	for k := range def.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Errorf("%w: attributes %s", ErrShapeMismatch, strings.Join(keys, ", "))
}
