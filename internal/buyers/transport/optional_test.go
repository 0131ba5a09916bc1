package transport

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestOptionalInt64AcceptsNumberAndDecimalString(t *testing.T) {
	var fromNumber, fromString OptionalInt64

	if err := json.Unmarshal([]byte(`5000000`), &fromNumber); err != nil {
		t.Fatalf("number: %v", err)
	}
	if err := json.Unmarshal([]byte(`"5000000"`), &fromString); err != nil {
		t.Fatalf("string: %v", err)
	}

	for name, got := range map[string]OptionalInt64{"number": fromNumber, "string": fromString} {
		if !got.Set || got.Invalid || got.Value == nil || *got.Value != 5000000 {
			t.Errorf("%s: got %+v, want set value 5000000", name, got)
		}
	}
}

func TestOptionalInt64NullClearsWithoutValue(t *testing.T) {
	var o OptionalInt64
	if err := json.Unmarshal([]byte(`null`), &o); err != nil {
		t.Fatalf("null: %v", err)
	}
	if !o.Set || o.Invalid || o.Value != nil {
		t.Errorf("got %+v, want set with no value", o)
	}
}

func TestOptionalInt64RecordsGarbageAsInvalidNotError(t *testing.T) {
	for _, raw := range []string{`"abc"`, `-1`, `"12.5"`} {
		var o OptionalInt64
		if err := json.Unmarshal([]byte(raw), &o); err != nil {
			t.Fatalf("%s: unexpected decode error %v", raw, err)
		}
		if !o.Invalid || o.Value != nil {
			t.Errorf("%s: got %+v, want invalid flag", raw, o)
		}
	}
}

func TestTagListAcceptsCSVStringAndArray(t *testing.T) {
	var fromString, fromArray TagList

	if err := json.Unmarshal([]byte(`" vip , follow-up ,"`), &fromString); err != nil {
		t.Fatalf("string: %v", err)
	}
	if err := json.Unmarshal([]byte(`["vip", " follow-up ", ""]`), &fromArray); err != nil {
		t.Fatalf("array: %v", err)
	}

	want := []string{"vip", "follow-up"}
	if !reflect.DeepEqual(fromString.Values, want) {
		t.Errorf("string form: got %v, want %v", fromString.Values, want)
	}
	if !reflect.DeepEqual(fromArray.Values, want) {
		t.Errorf("array form: got %v, want %v", fromArray.Values, want)
	}
}

func TestJoinTagsKeepsEmptyListAsNil(t *testing.T) {
	if got := JoinTags(nil); got != nil {
		t.Errorf("JoinTags(nil) = %v, want nil", *got)
	}
	if got := JoinTags([]string{" ", ""}); got != nil {
		t.Errorf("JoinTags(blank) = %v, want nil", *got)
	}
	if got := JoinTags([]string{"a", "b"}); got == nil || *got != "a,b" {
		t.Errorf("JoinTags([a b]) = %v, want a,b", got)
	}
}
