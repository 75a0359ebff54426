package validation

import (
	"strings"
	"testing"
)

type line struct {
	ID     uint `json:"id" validate:"required"`
	Amount int  `json:"amount" validate:"min=1"`
}

type payload struct {
	Name     string `json:"name" validate:"required,max=10"`
	Username string `json:"username" validate:"required,username"`
	Tags     []uint `json:"tags" validate:"unique"`
	Lines    []line `json:"ingredients" validate:"dive"`
}

func TestStructKeysErrorsByJSONPath(t *testing.T) {
	t.Parallel()

	errs := Struct(&payload{
		Name:     "",
		Username: "bad name",
		Tags:     []uint{1, 1},
		Lines:    []line{{ID: 1, Amount: 1}, {ID: 2, Amount: 0}},
	})
	if errs == nil {
		t.Fatal("expected validation errors")
	}

	for _, field := range []string{"name", "username", "tags", "ingredients[1].amount"} {
		if len(errs[field]) == 0 {
			t.Fatalf("missing error for %q in %v", field, errs)
		}
	}
	if _, ok := errs["ingredients[0].amount"]; ok {
		t.Fatalf("unexpected error for valid line: %v", errs)
	}
	if !strings.Contains(errs["ingredients[1].amount"][0], "≥ 1") {
		t.Fatalf("unexpected amount message: %q", errs["ingredients[1].amount"][0])
	}
}

func TestStructAcceptsValidPayload(t *testing.T) {
	t.Parallel()

	errs := Struct(&payload{Name: "ok", Username: "chef.anna", Tags: []uint{1, 2}})
	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestFieldErrorsErrorIsSorted(t *testing.T) {
	t.Parallel()

	errs := FieldErrors{"b": {"second"}, "a": {"first"}}
	if got := errs.Error(); got != "a: first; b: second" {
		t.Fatalf("Error() = %q", got)
	}
}
