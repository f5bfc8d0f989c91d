// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package forms

import "regexp"

var kwargRegexp = regexp.MustCompile(`^(?:(\w+)=)?(.+)$`)

// ParseArgs splits a list of arguments into positional arguments and
// keyword arguments.  An argument "key=value", where key is made of
// word characters, is a keyword argument; anything else is
// positional.  Empty arguments are skipped.  A later keyword
// argument replaces an earlier one with the same key.
func ParseArgs(bits []string) (args []string, kwargs map[string]string) {
	kwargs = map[string]string{}
	for _, bit := range bits {
		match := kwargRegexp.FindStringSubmatch(bit)
		if match == nil {
			continue
		}
		if match[1] != "" {
			kwargs[match[1]] = match[2]
		} else {
			args = append(args, match[2])
		}
	}
	return
}
