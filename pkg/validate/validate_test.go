package validate_test

import (
	"strings"
	"testing"

	"github.com/campusprint/printhub/pkg/validate"
)

type fileInput struct {
	FileKey      string `json:"file_key"       validate:"required"`
	PageCount    int    `json:"page_count"     validate:"gte=1"`
	ColorType    string `json:"color_type"     validate:"required,oneof=bw color"`
	PagesPerSide int    `json:"pages_per_side" validate:"oneof=1 2 4"`
	Copies       int    `json:"copies"         validate:"gte=1,lte=100"`
}

type orderInput struct {
	Files  []fileInput `json:"files"  validate:"required,min=1,dive"`
	Hostel string      `json:"hostel" validate:"required"`
	Notes  string      `json:"notes"  validate:"max=10"`
}

func validFile() fileInput {
	return fileInput{FileKey: "uploads/u/1-a.pdf", PageCount: 3, ColorType: "bw", PagesPerSide: 1, Copies: 1}
}

func TestValidInput(t *testing.T) {
	errs := validate.Struct(orderInput{Files: []fileInput{validFile()}, Hostel: "Ram"})
	if validate.HasErrors(errs) {
		t.Errorf("expected no errors, got: %v", errs)
	}
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(orderInput{})
	if _, ok := errs["files"]; !ok {
		t.Errorf("expected files to be required, got %v", errs)
	}
	if msg := errs["hostel"]; msg != "The hostel field is required." {
		t.Errorf("unexpected hostel message %q", msg)
	}
}

func TestNestedPathsUseJSONNames(t *testing.T) {
	bad := validFile()
	bad.ColorType = "sepia"
	bad.Copies = 101
	bad.PagesPerSide = 3

	errs := validate.Struct(orderInput{Files: []fileInput{validFile(), bad}, Hostel: "Ram"})

	for _, key := range []string{"files[1].color_type", "files[1].copies", "files[1].pages_per_side"} {
		if _, ok := errs[key]; !ok {
			t.Errorf("expected error for %s, got %v", key, errs)
		}
	}
	if _, ok := errs["files[0].copies"]; ok {
		t.Error("first file is valid")
	}
	if !strings.Contains(errs["files[1].color_type"], "bw, color") {
		t.Errorf("oneof message should list options, got %q", errs["files[1].color_type"])
	}
}

func TestMaxLength(t *testing.T) {
	errs := validate.Struct(orderInput{Files: []fileInput{validFile()}, Hostel: "Ram", Notes: "far too long a note"})
	if _, ok := errs["notes"]; !ok {
		t.Errorf("expected notes max error, got %v", errs)
	}
}
