package jsonpath

import (
	"encoding/json"
	"reflect"
	"testing"
)

func parse(t *testing.T, doc string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(doc), &v); err != nil {
		t.Fatalf("unmarshal %s: %v", doc, err)
	}
	return v
}

func TestEvalIdentity(t *testing.T) {
	data := parse(t, `{"a":1}`)
	got := Eval(data, "$")
	if !reflect.DeepEqual(got, data) {
		t.Errorf("Eval($) = %v, want identity %v", got, data)
	}
}

func TestEvalDottedKey(t *testing.T) {
	data := parse(t, `{"a":{"b":42}}`)
	got := Eval(data, "$.a.b")
	if got != float64(42) {
		t.Errorf("Eval($.a.b) = %v, want 42", got)
	}
}

func TestEvalArrayIndex(t *testing.T) {
	data := parse(t, `{"items":[10,20,30]}`)
	got := Eval(data, "$.items[1]")
	if got != float64(20) {
		t.Errorf("Eval($.items[1]) = %v, want 20", got)
	}
}

func TestEvalWildcardOverArray(t *testing.T) {
	data := parse(t, `{"items":[{"id":1},{"id":2}]}`)
	got := Eval(data, "$.items[*].id")
	want := []any{float64(1), float64(2)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Eval($.items[*].id) = %v, want %v", got, want)
	}
}

func TestEvalWildcardOverMapProjectsValues(t *testing.T) {
	data := parse(t, `{"a":1,"b":2}`)
	got, ok := Eval(data, "$[*]").([]any)
	if !ok {
		t.Fatalf("Eval($[*]) did not return a list: %v", Eval(data, "$[*]"))
	}
	if len(got) != 2 {
		t.Errorf("Eval($[*]) len = %d, want 2", len(got))
	}
}

func TestEvalMissingKeyReturnsNil(t *testing.T) {
	data := parse(t, `{"a":1}`)
	if got := Eval(data, "$.missing"); got != nil {
		t.Errorf("Eval($.missing) = %v, want nil", got)
	}
}

func TestEvalOutOfRangeIndexReturnsNil(t *testing.T) {
	data := parse(t, `[1,2,3]`)
	if got := Eval(data, "$[10]"); got != nil {
		t.Errorf("Eval($[10]) = %v, want nil", got)
	}
}

func TestEvalWithoutDollarReturnsNil(t *testing.T) {
	if got := Eval(map[string]any{"a": 1}, "a.b"); got != nil {
		t.Errorf("Eval without leading $ = %v, want nil", got)
	}
}

func TestEvalKeyOnScalarReturnsNil(t *testing.T) {
	data := parse(t, `{"a":1}`)
	if got := Eval(data, "$.a.b"); got != nil {
		t.Errorf("Eval($.a.b) over scalar a = %v, want nil", got)
	}
}
