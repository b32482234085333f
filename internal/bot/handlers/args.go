package handlers

import (
	"errors"
	"fmt"
	"slices"

	"github.com/kballard/go-shellquote"
)

var errMissingArgs = errors.New("인자가 부족합니다")

// splitArgs splits command arguments with shell quoting rules, so
// `"hello world"` stays one argument. There is no comment syntax: `#news`
// is an ordinary word.
func splitArgs(s string) ([]string, error) {
	args, err := shellquote.Split(s)
	if err != nil {
		return nil, fmt.Errorf("인자를 해석할 수 없습니다: %w", err)
	}
	return args, nil
}

func hasAny(args []string, values ...string) bool {
	for _, v := range values {
		if slices.Contains(args, v) {
			return true
		}
	}
	return false
}

func wantsHelp(args []string) bool {
	return len(args) == 0 || hasAny(args, "-h", "--help") || args[0] == "help" || args[0] == "도움"
}

// takeFlag removes "flag value" from args and returns the value. The returned
// error is set when the flag is present without a value.
func takeFlag(args []string, names ...string) ([]string, string, bool, error) {
	for i, a := range args {
		if !slices.Contains(names, a) {
			continue
		}
		if i+1 >= len(args) {
			return args, "", true, fmt.Errorf("%s 옵션에 값이 없습니다", a)
		}
		value := args[i+1]
		rest := append(slices.Clone(args[:i]), args[i+2:]...)
		return rest, value, true, nil
	}
	return args, "", false, nil
}

// takeSwitch removes a boolean switch from args.
func takeSwitch(args []string, names ...string) ([]string, bool) {
	out := make([]string, 0, len(args))
	found := false
	for _, a := range args {
		if slices.Contains(names, a) {
			found = true
			continue
		}
		out = append(out, a)
	}
	return out, found
}
