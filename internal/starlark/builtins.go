package starlark

import (
	"fmt"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
)

// Builtins returns the helper functions available to format expressions:
//
//	fmt_number(x, places=2)   fixed-point with thousands separators
//	coalesce(a, b, ...)       first argument that is not None or ""
//	pad(s, width)             left-pads s with spaces
func Builtins() starlark.StringDict {
	return starlark.StringDict{
		"fmt_number": starlark.NewBuiltin("fmt_number", fmtNumber),
		"coalesce":   starlark.NewBuiltin("coalesce", coalesce),
		"pad":        starlark.NewBuiltin("pad", pad),
	}
}

func fmtNumber(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var x starlark.Value
	places := 2
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "x", &x, "places?", &places); err != nil {
		return nil, err
	}
	if places < 0 {
		return nil, fmt.Errorf("%s: places must be >= 0", b.Name())
	}

	var f float64
	switch v := x.(type) {
	case starlark.NoneType:
		return starlark.String(""), nil
	case starlark.Int:
		i, _ := v.Int64()
		f = float64(i)
	case starlark.Float:
		f = float64(v)
	case starlark.String:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
		if err != nil {
			return v, nil
		}
		f = parsed
	default:
		return nil, fmt.Errorf("%s: got %s, want number", b.Name(), x.Type())
	}
	return starlark.String(groupThousands(strconv.FormatFloat(f, 'f', places, 64))), nil
}

func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")

	var sb strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(r)
	}
	out := sign + sb.String()
	if hasFrac {
		out += "." + frac
	}
	return out
}

func coalesce(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, _ []starlark.Tuple) (starlark.Value, error) {
	for _, a := range args {
		if a == starlark.None {
			continue
		}
		if s, ok := a.(starlark.String); ok && s == "" {
			continue
		}
		return a, nil
	}
	return starlark.None, nil
}

func pad(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var s starlark.Value
	var width int
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 2, &s, &width); err != nil {
		return nil, err
	}
	text := displayString(s)
	if n := width - len([]rune(text)); n > 0 {
		text = strings.Repeat(" ", n) + text
	}
	return starlark.String(text), nil
}
