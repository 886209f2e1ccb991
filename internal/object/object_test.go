package object

import "testing"

func TestEqual(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Object
		expected bool
	}{
		{"same strings", &String{Value: "Hello World"}, &String{Value: "Hello World"}, true},
		{"different strings", &String{Value: "Hello World"}, &String{Value: "My name is johnny"}, false},
		{"same integers", &Integer{Value: 1}, &Integer{Value: 1}, true},
		{"different integers", &Integer{Value: 1}, &Integer{Value: 2}, false},
		{"string vs integer", &String{Value: "1"}, &Integer{Value: 1}, false},
		{"true vs false", TRUE, FALSE, false},
		{"null", NULL, &Null{}, true},
		{"lists", StringList([]string{"a", "b"}), StringList([]string{"a", "b"}), true},
		{"list lengths", StringList([]string{"a"}), StringList([]string{"a", "b"}), false},
		{
			"dicts",
			&Dict{Pairs: map[string]Object{"k": &Integer{Value: 1}}},
			&Dict{Pairs: map[string]Object{"k": &Integer{Value: 1}}},
			true,
		},
		{
			"dict values",
			&Dict{Pairs: map[string]Object{"k": &Integer{Value: 1}}},
			&Dict{Pairs: map[string]Object{"k": &Integer{Value: 2}}},
			false,
		},
		{"nil", nil, nil, true},
		{"nil vs null", nil, NULL, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.expected {
				t.Errorf("Equal(%v, %v) = %v, expected %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestInspect(t *testing.T) {
	tests := []struct {
		obj      Object
		expected string
	}{
		{NULL, "null"},
		{TRUE, "true"},
		{&Integer{Value: -4}, "-4"},
		{&String{Value: "hi"}, "hi"},
		{StringList([]string{"a", "b", "c"}), "[a, b, c]"},
		{&Dict{Pairs: map[string]Object{"z": &Integer{Value: 1}, "a": &Integer{Value: 2}}}, "{a: 2, z: 1}"},
	}

	for _, tt := range tests {
		if got := tt.obj.Inspect(); got != tt.expected {
			t.Errorf("expected %q, got %q", tt.expected, got)
		}
	}
}
