package inputval

import (
	"strings"
	"testing"
)

type sampleInput struct {
	Name   string `validate:"required,max=10" label:"Name"`
	Email  string `validate:"required,email" label:"Email"`
	Amount int64  `validate:"gt=0" label:"Amount"`
}

func TestValidate_AllValid(t *testing.T) {
	res := Validate(sampleInput{Name: "Hikers", Email: "u1@example.com", Amount: 500})
	if res.HasErrors() {
		t.Fatalf("expected no errors, got %v", res.All())
	}
	if res.First() != "" {
		t.Errorf("First() on clean result: got %q, want empty", res.First())
	}
}

func TestValidate_RequiredField(t *testing.T) {
	res := Validate(sampleInput{Email: "u1@example.com", Amount: 1})
	if !res.HasErrors() {
		t.Fatal("expected a validation error for missing name")
	}
	if got := res.First(); got != "Name is required." {
		t.Errorf("First(): got %q", got)
	}
}

func TestValidate_MaxLength(t *testing.T) {
	res := Validate(sampleInput{Name: strings.Repeat("x", 11), Email: "u1@example.com", Amount: 1})
	if !res.HasErrors() {
		t.Fatal("expected a validation error for long name")
	}
	if got := res.First(); got != "Name must be at most 10 characters." {
		t.Errorf("First(): got %q", got)
	}
}

func TestValidate_AmountPositive(t *testing.T) {
	res := Validate(sampleInput{Name: "Hikers", Email: "u1@example.com", Amount: 0})
	if !res.HasErrors() {
		t.Fatal("expected a validation error for zero amount")
	}
	if got := res.First(); got != "Amount must be greater than 0." {
		t.Errorf("First(): got %q", got)
	}
}

func TestValidate_CollectsAllFailures(t *testing.T) {
	res := Validate(sampleInput{})
	if len(res.All()) != 3 {
		t.Errorf("expected 3 failures, got %d: %v", len(res.All()), res.All())
	}
}
