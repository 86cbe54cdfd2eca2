package codec

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"
)

type record struct {
	Zeta  string            `json:"zeta"`
	Alpha int               `json:"alpha"`
	Meta  map[string]string `json:"meta,omitempty"`
	When  Time              `json:"when"`
}

func TestMarshal(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		when := ToTime(time.Date(2026, 2, 17, 10, 30, 0, 500, time.UTC))
		tests := []struct {
			name string
			in   any
			want string
		}{
			{"nil", nil, `null`},
			{"sorted struct fields", record{Zeta: "z", Alpha: 1, When: when},
				`{"alpha":1,"when":"2026-02-17T10:30:00.000000500Z","zeta":"z"}`},
			{"nested map", map[string]any{"b": map[string]int{"y": 2, "x": 1}, "a": []int{3, 1}},
				`{"a":[3,1],"b":{"x":1,"y":2}}`},
			{"large number kept", json.RawMessage(`{"n":12345678901234567890}`), `{"n":12345678901234567890}`},
			{"whitespace dropped", json.RawMessage("{ \"b\" : 1,\n \"a\" : 2 }"), `{"a":2,"b":1}`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := Marshal(tt.in)
				if err != nil {
					t.Fatalf("Marshal failed: %v", err)
				}
				if string(got) != tt.want {
					t.Errorf("Marshal() = %s, want %s", got, tt.want)
				}
			})
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		in := map[string]any{"k3": 3, "k1": 1, "k2": []string{"b", "a"}}
		first, err := Marshal(in)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		for range 20 {
			again, err := Marshal(in)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			if string(again) != string(first) {
				t.Fatalf("Marshal() not deterministic: %s != %s", again, first)
			}
		}
		// Re-encoding canonical output is a fixed point.
		again, err := Canonicalize(first)
		if err != nil {
			t.Fatalf("Canonicalize failed: %v", err)
		}
		if string(again) != string(first) {
			t.Errorf("Canonicalize() = %s, want %s", again, first)
		}
	})

	t.Run("errors", func(t *testing.T) {
		if _, err := Marshal(map[string]any{"c": make(chan int)}); err == nil {
			t.Error("expected error for unsupported type")
		}
	})
}

func TestUnmarshal(t *testing.T) {
	t.Run("numbers kept as json.Number", func(t *testing.T) {
		var v map[string]any
		if err := Unmarshal([]byte(`{"n":1.50}`), &v); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		if n, ok := v["n"].(json.Number); !ok || n.String() != "1.50" {
			t.Errorf("n = %#v, want json.Number(1.50)", v["n"])
		}
	})

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			name string
			data string
		}{
			{"malformed", `{"a":`},
			{"trailing data", `{"a":1} {"b":2}`},
			{"wrong type", `{"alpha":"one"}`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				var r record
				if err := Unmarshal([]byte(tt.data), &r); err == nil {
					t.Errorf("Unmarshal(%q) succeeded, want error", tt.data)
				}
			})
		}
	})
}

func TestRoundTrip(t *testing.T) {
	when := ToTime(time.Date(2026, 2, 17, 10, 30, 0, 123456789, time.FixedZone("CET", 3600)))
	t.Run("single value", func(t *testing.T) {
		in := record{Zeta: "z", Alpha: 42, Meta: map[string]string{"k": "v"}, When: when}
		data, err := Encode(in)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		out, err := Decode[record](data)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if !reflect.DeepEqual(in, out) {
			t.Errorf("round trip = %+v, want %+v", out, in)
		}
	})

	t.Run("list", func(t *testing.T) {
		in := []record{{Zeta: "a", When: when}, {Zeta: "b", Alpha: -1, When: when}}
		data, err := EncodeList(in)
		if err != nil {
			t.Fatalf("EncodeList failed: %v", err)
		}
		out, err := DecodeList[record](data)
		if err != nil {
			t.Fatalf("DecodeList failed: %v", err)
		}
		if !reflect.DeepEqual(in, out) {
			t.Errorf("round trip = %+v, want %+v", out, in)
		}
	})

	t.Run("untyped documents", func(t *testing.T) {
		data := []byte(`[{"id":1,"value":"a"},{"id":2.5,"nested":{"b":true,"a":null}}]`)
		docs, err := DecodeList[map[string]any](data)
		if err != nil {
			t.Fatalf("DecodeList failed: %v", err)
		}
		got, err := EncodeList(docs)
		if err != nil {
			t.Fatalf("EncodeList failed: %v", err)
		}
		want := `[{"id":1,"value":"a"},{"id":2.5,"nested":{"a":null,"b":true}}]`
		if string(got) != want {
			t.Errorf("EncodeList() = %s, want %s", got, want)
		}
	})
}

func TestList(t *testing.T) {
	t.Run("nil encodes as empty array", func(t *testing.T) {
		data, err := EncodeList[record](nil)
		if err != nil {
			t.Fatalf("EncodeList failed: %v", err)
		}
		if string(data) != "[]" {
			t.Errorf("EncodeList(nil) = %s, want []", data)
		}
	})

	t.Run("empty inputs", func(t *testing.T) {
		for _, in := range []string{"", "  \n", "null", "[]"} {
			items, err := DecodeList[record]([]byte(in))
			if err != nil {
				t.Fatalf("DecodeList(%q) failed: %v", in, err)
			}
			if items == nil || len(items) != 0 {
				t.Errorf("DecodeList(%q) = %#v, want empty non-nil slice", in, items)
			}
		}
	})
}

func TestTime(t *testing.T) {
	t.Run("format", func(t *testing.T) {
		tests := []struct {
			name string
			in   time.Time
			want string
		}{
			{"utc", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), `"2026-01-02T03:04:05.000000000Z"`},
			{"offset converted", time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("X", -2*3600)), `"2026-01-02T05:04:05.000000000Z"`},
			{"nanoseconds", time.Date(2026, 1, 2, 3, 4, 5, 7, time.UTC), `"2026-01-02T03:04:05.000000007Z"`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := json.Marshal(ToTime(tt.in))
				if err != nil {
					t.Fatalf("Marshal failed: %v", err)
				}
				if string(got) != tt.want {
					t.Errorf("Marshal() = %s, want %s", got, tt.want)
				}
			})
		}
	})

	t.Run("lexical order is chronological", func(t *testing.T) {
		base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		a := ToTime(base).String()
		b := ToTime(base.Add(500 * time.Millisecond)).String()
		c := ToTime(base.Add(time.Second)).String()
		if !(a < b && b < c) {
			t.Errorf("expected %s < %s < %s", a, b, c)
		}
	})

	t.Run("accepts second precision", func(t *testing.T) {
		var got Time
		if err := json.Unmarshal([]byte(`"2026-02-17T10:00:00Z"`), &got); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		want := ToTime(time.Date(2026, 2, 17, 10, 0, 0, 0, time.UTC))
		if got != want {
			t.Errorf("Unmarshal() = %v, want %v", got, want)
		}
	})

	t.Run("errors", func(t *testing.T) {
		for _, in := range []string{`12`, `"yesterday"`, `"2026-02-17"`} {
			var got Time
			if err := json.Unmarshal([]byte(in), &got); err == nil || !strings.Contains(err.Error(), "timestamp") {
				t.Errorf("Unmarshal(%s) error = %v, want timestamp error", in, err)
			}
		}
	})
}
