package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/schema"
)

type param struct {
	name     string
	typ      schema.DataType
	desc     string
	required bool
	minLen   int
}

type definition struct {
	name   string
	desc   string
	params []param
}

func (d definition) toolInfo() *schema.ToolInfo {
	params := make(map[string]*schema.ParameterInfo, len(d.params))
	for _, p := range d.params {
		desc := p.desc
		if p.minLen > 1 {
			desc = fmt.Sprintf("%s At least %d characters.", desc, p.minLen)
		}
		params[p.name] = &schema.ParameterInfo{
			Type:     p.typ,
			Desc:     desc,
			Required: p.required,
		}
	}
	return &schema.ToolInfo{
		Name:        d.name,
		Desc:        d.desc,
		ParamsOneOf: schema.NewParamsOneOfByParams(params),
	}
}

// SanitizeArguments normalizes model-produced arguments for the named tool: string
// parameters are trimmed (numbers are stringified), numeric parameters accept numeric
// strings, and unknown keys are dropped. It never fails; input that is not a JSON
// object is returned unchanged, and blank input becomes "{}".
func (r *Registry) SanitizeArguments(name, arguments string) string {
	if strings.TrimSpace(arguments) == "" {
		return "{}"
	}
	params, ok := r.params[name]
	if !ok {
		return arguments
	}

	var m map[string]any
	if err := json.Unmarshal([]byte(arguments), &m); err != nil || m == nil {
		return arguments
	}

	out := make(map[string]any, len(params))
	for _, p := range params {
		v, ok := m[p.name]
		if !ok || v == nil {
			continue
		}
		switch p.typ {
		case schema.String:
			switch vv := v.(type) {
			case string:
				out[p.name] = strings.TrimSpace(vv)
			case float64:
				out[p.name] = strconv.FormatFloat(vv, 'f', -1, 64)
			case bool:
				out[p.name] = strconv.FormatBool(vv)
			}
		case schema.Number, schema.Integer:
			switch vv := v.(type) {
			case float64:
				out[p.name] = coerceNumber(p.typ, vv)
			case string:
				s := strings.ReplaceAll(strings.TrimSpace(vv), ",", "")
				if f, err := strconv.ParseFloat(s, 64); err == nil {
					out[p.name] = coerceNumber(p.typ, f)
				}
			}
		default:
			out[p.name] = v
		}
	}

	b, err := json.Marshal(out)
	if err != nil {
		return arguments
	}
	return string(b)
}

// coerceNumber turns whole floats into integers for integer parameters. Other
// values pass through so decoding rejects them.
func coerceNumber(typ schema.DataType, f float64) any {
	if typ == schema.Integer && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int64(f)
	}
	return f
}
