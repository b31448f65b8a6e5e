package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/at-ishikawa/sigmareview/internal/report"
	"github.com/at-ishikawa/sigmareview/internal/review"
)

// enumValue is a pflag.Value restricted to a fixed set of strings.
type enumValue[T ~string] struct {
	target  *T
	allowed []T
	set     bool
}

func newEnumValue[T ~string](target *T, allowed ...T) *enumValue[T] {
	return &enumValue[T]{target: target, allowed: allowed}
}

var _ pflag.Value = (*enumValue[review.Status])(nil)

func (v *enumValue[T]) String() string {
	if v.target == nil {
		return ""
	}
	return string(*v.target)
}

func (v *enumValue[T]) Set(s string) error {
	for _, a := range v.allowed {
		if strings.EqualFold(string(a), s) {
			*v.target = a
			v.set = true
			return nil
		}
	}
	return fmt.Errorf("must be one of %s", v.Type())
}

func (v *enumValue[T]) Type() string {
	names := make([]string, 0, len(v.allowed))
	for _, a := range v.allowed {
		names = append(names, string(a))
	}
	return strings.Join(names, "|")
}

// ptr returns the flag value when it was given on the command line.
func (v *enumValue[T]) ptr() *T {
	if !v.set {
		return nil
	}
	value := *v.target
	return &value
}

func assetTypeFlag(target *review.AssetType) *enumValue[review.AssetType] {
	return newEnumValue(target, review.AssetTypeImage, review.AssetTypeAudio, review.AssetTypePrompt)
}

func priorityFlag(target *review.Priority) *enumValue[review.Priority] {
	return newEnumValue(target, review.PriorityLow, review.PriorityMedium, review.PriorityHigh)
}

func statusFlag(target *review.Status) *enumValue[review.Status] {
	return newEnumValue(target, review.StatusPending, review.StatusFixed)
}

func feedbackActionFlag(target *review.FeedbackAction) *enumValue[review.FeedbackAction] {
	return newEnumValue(target, review.FeedbackKeep, review.FeedbackDelete, review.FeedbackRegen, review.FeedbackNote)
}

// formatValue accepts export format names and file extensions.
type formatValue struct {
	target *report.Format
}

func (v formatValue) String() string {
	if v.target == nil {
		return ""
	}
	return string(*v.target)
}

func (v formatValue) Set(s string) error {
	f, err := report.ParseFormat(s)
	if err != nil {
		return err
	}
	*v.target = f
	return nil
}

func (v formatValue) Type() string {
	return "format"
}

// stringFlag records whether a string flag was given, so that an explicit
// empty value can clear a field.
func stringFlag(flags *pflag.FlagSet, name string) *string {
	if !flags.Changed(name) {
		return nil
	}
	value, _ := flags.GetString(name)
	return &value
}
