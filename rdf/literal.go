package rdf

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// NewLiteral returns a plain string literal.
func NewLiteral(lexical string) Literal {
	return Literal{Lexical: lexical}
}

// NewTypedLiteral returns a literal with the given datatype IRI.
func NewTypedLiteral(lexical, datatype string) Literal {
	if datatype == XSDString {
		datatype = ""
	}
	return Literal{Lexical: lexical, Datatype: IRI{Value: datatype}}
}

// NewLangLiteral returns a language-tagged string.
func NewLangLiteral(lexical, lang string) Literal {
	return Literal{Lexical: lexical, Lang: lang}
}

// LiteralOf converts a Go scalar into a literal with the matching XSD datatype.
// Unknown types are rendered with strconv-style formatting as plain strings.
func LiteralOf(value any) Literal {
	switch v := value.(type) {
	case Literal:
		return v
	case string:
		return NewLiteral(v)
	case bool:
		return NewTypedLiteral(strconv.FormatBool(v), XSDBoolean)
	case int:
		return NewTypedLiteral(strconv.FormatInt(int64(v), 10), XSDInteger)
	case int32:
		return NewTypedLiteral(strconv.FormatInt(int64(v), 10), XSDInteger)
	case int64:
		return NewTypedLiteral(strconv.FormatInt(v, 10), XSDInteger)
	case uint:
		return NewTypedLiteral(strconv.FormatUint(uint64(v), 10), XSDInteger)
	case uint64:
		return NewTypedLiteral(strconv.FormatUint(v, 10), XSDInteger)
	case float32:
		return NewTypedLiteral(formatDouble(float64(v)), XSDDouble)
	case float64:
		return NewTypedLiteral(formatDouble(v), XSDDouble)
	case time.Time:
		return NewTypedLiteral(v.Format(time.RFC3339Nano), XSDDateTime)
	default:
		return NewLiteral(toString(v))
	}
}

// formatDouble renders a float in the canonical xsd:double form (e.g. 1.5E0).
func formatDouble(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "INF"
	case math.IsInf(v, -1):
		return "-INF"
	case math.IsNaN(v):
		return "NaN"
	}
	s := strconv.FormatFloat(v, 'E', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "E")
	if !strings.Contains(mantissa, ".") {
		mantissa += ".0"
	}
	if exp[0] == '+' {
		exp = exp[1:]
	}
	exp = strings.TrimLeft(exp, "0")
	if exp == "" || exp == "-" {
		exp = "0"
	}
	if strings.HasPrefix(exp, "-") {
		exp = "-" + strings.TrimLeft(exp[1:], "0")
	}
	return mantissa + "E" + exp
}

func toString(v any) string {
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(v)
}

// Native converts the literal into the closest Go value: bool, int64,
// float64, time.Time or string. Literals whose lexical form does not parse
// under their datatype come back as their lexical string.
func (l Literal) Native() any {
	switch l.Datatype.Value {
	case XSDBoolean:
		if b, err := strconv.ParseBool(strings.TrimSpace(l.Lexical)); err == nil {
			return b
		}
	case XSDInteger, XSDLong, XSDInt, XSDNamespace + "short", XSDNamespace + "nonNegativeInteger",
		XSDNamespace + "positiveInteger", XSDNamespace + "unsignedInt":
		if i, err := strconv.ParseInt(strings.TrimSpace(l.Lexical), 10, 64); err == nil {
			return i
		}
	case XSDDouble, XSDFloat, XSDDecimal:
		if f, err := parseXSDFloat(l.Lexical); err == nil {
			return f
		}
	case XSDDateTime:
		if t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(l.Lexical)); err == nil {
			return t
		}
		if t, err := time.Parse("2006-01-02T15:04:05", strings.TrimSpace(l.Lexical)); err == nil {
			return t
		}
	}
	return l.Lexical
}

func parseXSDFloat(lexical string) (float64, error) {
	switch strings.TrimSpace(lexical) {
	case "INF", "+INF":
		return math.Inf(1), nil
	case "-INF":
		return math.Inf(-1), nil
	case "NaN":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(strings.TrimSpace(lexical), 64)
}
