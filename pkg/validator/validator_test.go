package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

type testPayload struct {
	Username string `json:"username" validate:"required"`
	Slug     string `json:"slug" validate:"omitempty,slug"`
	Email    string `json:"email" validate:"required,email"`
	Age      int    `json:"age" validate:"gte=18"`
}

func TestValidateStructSuccess(t *testing.T) {
	payload := testPayload{
		Username: "alice",
		Email:    "alice@example.com",
		Age:      20,
	}

	if err := ValidateStruct(payload); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidateStructFailures(t *testing.T) {
	payload := testPayload{
		Username: "",
		Email:    "invalid",
		Age:      10,
	}

	err := ValidateStruct(payload)
	if err == nil {
		t.Fatal("expected validation error")
	}

	vErrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}

	if len(vErrs) != 3 {
		t.Fatalf("expected 3 validation errors, got %d", len(vErrs))
	}

	foundEmail := false
	for _, v := range vErrs {
		if v.Field == "email" {
			foundEmail = true
		}
	}

	if !foundEmail {
		t.Fatal("expected email field to be present in validation errors")
	}
}

func TestRegisterValidation(t *testing.T) {
	err := RegisterValidation("nutra", func(fl validator.FieldLevel) bool {
		return fl.Field().String() == "nutra"
	})
	if err != nil {
		t.Fatalf("register validation: %v", err)
	}

	type custom struct {
		Value string `validate:"nutra"`
	}

	if err := ValidateStruct(custom{Value: "nutra"}); err != nil {
		t.Fatalf("expected validation to pass, got %v", err)
	}
	if err := ValidateStruct(custom{Value: "other"}); err == nil {
		t.Fatal("expected validation to fail for non-matching value")
	}
}

func TestSlugRule(t *testing.T) {
	if err := ValidateStruct(testPayload{Username: "a", Email: "a@example.com", Age: 30, Slug: "herbal-extracts-ltd"}); err != nil {
		t.Fatalf("expected slug to validate, got %v", err)
	}

	err := ValidateStruct(testPayload{Username: "a", Email: "a@example.com", Age: 30, Slug: "Herbal Extracts"})
	vErrs, ok := err.(ValidationErrors)
	if !ok || len(vErrs) != 1 || vErrs[0].Field != "slug" || vErrs[0].Tag != "slug" {
		t.Fatalf("expected slug failure, got %v", err)
	}
}

func TestIsSlug(t *testing.T) {
	cases := map[string]bool{
		"acme":         true,
		"acme-2":       true,
		"-acme":        false,
		"acme--herbal": false,
		"Acme":         false,
		"":             false,
	}
	for in, want := range cases {
		if got := IsSlug(in); got != want {
			t.Fatalf("IsSlug(%q) = %v, want %v", in, got, want)
		}
	}
}
