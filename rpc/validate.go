package rpc

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Request payloads carry gin-style binding tags. Field names in errors are
// the json names.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	v.RegisterStructValidation(importQuestionLevel, ImportQuestion{})
	v.RegisterStructValidation(bookQuestionLevel, BookQuestionInput{})
	return v
}

// correct_index must address one of the choices. Only checked once the
// choice list itself passed.
func importQuestionLevel(sl validator.StructLevel) {
	q := sl.Current().Interface().(ImportQuestion)
	if q.CorrectIndex == nil || len(q.Choices) < 2 || len(q.Choices) > 4 {
		return
	}
	if *q.CorrectIndex < 0 || *q.CorrectIndex >= len(q.Choices) {
		sl.ReportError(*q.CorrectIndex, "correct_index", "CorrectIndex", "inrange", "")
	}
}

func bookQuestionLevel(sl validator.StructLevel) {
	q := sl.Current().Interface().(BookQuestionInput)
	choices := q.ChoiceList()
	if len(choices) < 2 || len(choices) > 4 {
		sl.ReportError(choices, "choices", "Choices", "choicecount", "")
		return
	}
	if q.CorrectIndex != nil && (*q.CorrectIndex < 0 || *q.CorrectIndex >= len(choices)) {
		sl.ReportError(*q.CorrectIndex, "correct_index", "CorrectIndex", "inrange", "")
	}
}

// Validate checks a payload against its binding tags and reports the first
// failing field.
func Validate(req Request) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return err
	}
	fe := fields[0]

	switch req.(type) {
	case AddUserRequest:
		return invalid("", "username and password are required")
	case ImportQuestionsRequest:
		if row, ok := importRow(fe); ok {
			return invalid("", describeImportRow(row, fe))
		}
	}
	return invalid(fieldPath(fe), describe(fe))
}

var rowPattern = regexp.MustCompile(`^questions\[(\d+)\]\.`)

func importRow(fe validator.FieldError) (int, bool) {
	m := rowPattern.FindStringSubmatch(fieldPath(fe))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	return n, err == nil
}

func describeImportRow(row int, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("question %d is missing %s", row+1, fe.Field())
	case "oneof":
		return fmt.Sprintf("question %d has unknown subject %v", row+1, fe.Value())
	case "min", "max":
		return fmt.Sprintf("question %d needs 2 to 4 choices", row+1)
	case "inrange":
		return fmt.Sprintf("question %d has correct_index out of range", row+1)
	}
	return fmt.Sprintf("question %d has invalid %s", row+1, fe.Field())
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	_, path, found := strings.Cut(fe.Namespace(), ".")
	if !found {
		return fe.Field()
	}
	return path
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "required"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gte":
		switch fe.Param() {
		case "0":
			return "must not be negative"
		case "-1":
			return "must be a choice index or -1"
		}
		return "must be at least " + fe.Param()
	case "min":
		return "needs at least " + fe.Param()
	case "max":
		return "allows at most " + fe.Param()
	case "choicecount":
		return "need 2 to 4 choices"
	case "inrange":
		return "out of range"
	}
	return "failed " + fe.Tag()
}
