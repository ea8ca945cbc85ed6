// Package validate runs struct-tag validation on decoded request bodies.
//
// Supported rules (comma-separated in the `validate` tag):
//
//	required            field must not be zero/empty (nil pointers are empty)
//	nullable            if empty, skip all remaining rules for this field
//	email               valid email address
//	uuid                valid UUID
//	alpha_dash          letters, digits, hyphens, underscores
//	min=N / max=N       string: char length | number: value
//	size=N              string: exact length
//	gte=N / lte=N       number bounds
//	between=lo,hi       number or string length between lo and hi (inclusive)
//	in=a,b,c            value must be one of the listed items
//	regex=pattern       value must match the regex (avoid commas in pattern)
//
// Numbers may be any Go numeric kind or decimal.Decimal; comparisons are
// exact. Example:
//
//	type CheckoutRequest struct {
//	    GroupID string           `json:"groupId" validate:"required,uuid"`
//	    TaxRate *decimal.Decimal `json:"taxRate" validate:"nullable,gte=0,lte=1"`
//	}
package validate

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ─── Public API ───────────────────────────────────────────────────────────────

// Struct validates all exported fields of v that carry a `validate` tag.
// Returns a map of fieldName → error message; empty map means no errors.
func Struct(v interface{}) map[string]string {
	errs := make(map[string]string)
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errs
	}
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" || !field.IsExported() {
			continue
		}

		name := jsonFieldName(field)
		value := rv.Field(i)
		rules := splitRules(tag)

		if isEmpty(value) {
			if hasRule(rules, "required") {
				errs[name] = fmt.Sprintf("The %s field is required.", name)
			}
			continue
		}
		value = reflect.Indirect(value)

		for _, rule := range rules {
			if rule == "nullable" || rule == "required" {
				continue
			}
			if msg := applyRule(rule, name, value); msg != "" {
				errs[name] = msg
				break // first failing rule per field
			}
		}
	}

	return errs
}

// HasErrors returns true when the errs map is non-empty.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

// ─── Core dispatcher ──────────────────────────────────────────────────────────

func applyRule(rule, field string, v reflect.Value) string {
	raw := stringOf(v)
	key, param, _ := strings.Cut(rule, "=")

	switch key {
	case "email":
		if !emailRE.MatchString(raw) {
			return fmt.Sprintf("The %s must be a valid email address.", field)
		}
	case "uuid":
		if !uuidRE.MatchString(raw) {
			return fmt.Sprintf("The %s must be a valid UUID.", field)
		}
	case "alpha_dash":
		for _, c := range raw {
			if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '-' && c != '_' {
				return fmt.Sprintf("The %s field may only contain letters, numbers, dashes, and underscores.", field)
			}
		}

	case "min", "max", "gte", "lte":
		bound := mustDecimal(param)
		n, numeric := numberOf(v)
		if !numeric {
			n = decimal.NewFromInt(int64(len([]rune(raw))))
		}
		below := n.LessThan(bound)
		above := n.GreaterThan(bound)
		switch {
		case (key == "min" || key == "gte") && below && numeric:
			return fmt.Sprintf("The %s must be at least %s.", field, param)
		case key == "min" && below:
			return fmt.Sprintf("The %s must be at least %s characters.", field, param)
		case (key == "max" || key == "lte") && above && numeric:
			return fmt.Sprintf("The %s must not be greater than %s.", field, param)
		case key == "max" && above:
			return fmt.Sprintf("The %s must not exceed %s characters.", field, param)
		}
	case "size":
		if int64(len([]rune(raw))) != mustDecimal(param).IntPart() {
			return fmt.Sprintf("The %s must be exactly %s characters.", field, param)
		}
	case "between":
		lo, hi, _ := strings.Cut(param, ",")
		n, numeric := numberOf(v)
		if !numeric {
			n = decimal.NewFromInt(int64(len([]rune(raw))))
		}
		if n.LessThan(mustDecimal(lo)) || n.GreaterThan(mustDecimal(hi)) {
			return fmt.Sprintf("The %s must be between %s and %s.", field, lo, hi)
		}

	case "in":
		for _, a := range strings.Split(param, ",") {
			if raw == strings.TrimSpace(a) {
				return ""
			}
		}
		return fmt.Sprintf("The selected %s is invalid.", field)

	case "regex":
		re, err := regexp.Compile(param)
		if err != nil {
			return fmt.Sprintf("The %s has an invalid validation pattern.", field)
		}
		if !re.MatchString(raw) {
			return fmt.Sprintf("The %s format is invalid.", field)
		}
	}

	return ""
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

var (
	emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	uuidRE  = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
)

var decimalType = reflect.TypeOf(decimal.Decimal{})

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	}
	return false
}

// numberOf returns v as an exact decimal when it holds a number.
func numberOf(v reflect.Value) (decimal.Decimal, bool) {
	if v.Type() == decimalType {
		return v.Interface().(decimal.Decimal), true
	}
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return decimal.NewFromInt(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return decimal.NewFromUint64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return decimal.NewFromFloat(v.Float()), true
	}
	return decimal.Zero, false
}

func stringOf(v reflect.Value) string {
	if v.Kind() == reflect.String {
		return strings.TrimSpace(v.String())
	}
	return fmt.Sprintf("%v", v.Interface())
}

func mustDecimal(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(strings.TrimSpace(s))
	return d
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name)
	}
	return name
}

// splitRules splits the tag on commas, keeping the lists of in= and
// between= together: "required,in=a,b,max=9" → ["required","in=a,b","max=9"].
func splitRules(tag string) []string {
	var rules []string
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if n := len(rules); n > 0 && !looksLikeRule(part) && takesList(rules[n-1]) {
			rules[n-1] += "," + part
			continue
		}
		rules = append(rules, part)
	}
	return rules
}

var knownRules = map[string]bool{
	"required": true, "nullable": true, "email": true, "uuid": true, "alpha_dash": true,
	"min": true, "max": true, "size": true, "gte": true, "lte": true,
	"between": true, "in": true, "regex": true,
}

func looksLikeRule(s string) bool {
	key, _, _ := strings.Cut(s, "=")
	return knownRules[key]
}

func takesList(rule string) bool {
	return strings.HasPrefix(rule, "in=") || strings.HasPrefix(rule, "between=")
}

func hasRule(rules []string, target string) bool {
	for _, r := range rules {
		if r == target {
			return true
		}
	}
	return false
}
