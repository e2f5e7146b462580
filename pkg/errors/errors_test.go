package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(CodeDependency, cause, "loading deals")

	if err.Code() != CodeDependency {
		t.Fatalf("expected dependency code, got %s", err.Code())
	}
	if err.Unwrap() != cause {
		t.Fatalf("expected cause to be preserved")
	}
}

func TestAsUnwrapsThroughChain(t *testing.T) {
	inner := New(CodeNotFound, "deal not found")
	wrapped := fmt.Errorf("handler: %w", inner)

	typed := As(wrapped)
	if typed == nil {
		t.Fatal("expected typed error to be found in chain")
	}
	if typed.Code() != CodeNotFound {
		t.Fatalf("expected not found code, got %s", typed.Code())
	}
}

func TestMetadataForUnknownCode(t *testing.T) {
	meta := MetadataFor(Code("BOGUS"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unknown codes must map to 500, got %d", meta.HTTPStatus)
	}
}

func TestDumpIncludesChain(t *testing.T) {
	err := Wrap(CodeValidation, fmt.Errorf("price out of range"), "create deal")
	d := Dump(err)

	if d.Code != CodeValidation {
		t.Fatalf("expected validation code in dump, got %s", d.Code)
	}
	if len(d.Chain) < 2 {
		t.Fatalf("expected full chain in dump, got %v", d.Chain)
	}
}
