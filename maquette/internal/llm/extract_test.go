package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		want  string
		isErr bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, false},
		{"bare array", `[1,2,3]`, `[1,2,3]`, false},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`, false},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`, false},
		{"leading chatter", `Here is the analysis: {"a":1}`, `{"a":1}`, false},
		{"whitespace", "  \n {\"a\":1} \n", `{"a":1}`, false},
		{"empty", "", "", true},
		{"no json", "sorry, I cannot help with that", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.in)
			if tt.isErr {
				if !errors.Is(err, ErrInvalidJSON) {
					t.Fatalf("err = %v, want ErrInvalidJSON", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			var a, b any
			if err := json.Unmarshal(got, &a); err != nil {
				t.Fatalf("result does not parse: %v", err)
			}
			json.Unmarshal([]byte(tt.want), &b)
			aj, _ := json.Marshal(a)
			bj, _ := json.Marshal(b)
			if string(aj) != string(bj) {
				t.Fatalf("got %s, want %s", aj, bj)
			}
		})
	}
}

func TestFake_Order(t *testing.T) {
	f := NewFake(`{"n":1}`, `{"n":2}`)
	ctx := context.Background()

	r1, err := f.GenerateJSON(ctx, "first", nil)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := f.GenerateJSON(ctx, "second", []byte{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if string(r1) != `{"n":1}` || string(r2) != `{"n":2}` {
		t.Fatalf("responses out of order: %s, %s", r1, r2)
	}
	if _, err := f.GenerateJSON(ctx, "third", nil); !errors.Is(err, ErrInvalidJSON) {
		t.Fatalf("exhausted fake err = %v, want ErrInvalidJSON", err)
	}
	if len(f.Prompts) != 3 || f.Prompts[1] != "second" {
		t.Fatalf("prompts not recorded: %v", f.Prompts)
	}
	if !f.Images[1] || f.Images[0] {
		t.Fatalf("image flags wrong: %v", f.Images)
	}
}
