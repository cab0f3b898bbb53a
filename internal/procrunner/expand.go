package procrunner

import "strings"

// ExpandVars substitutes %KEY% tokens in input from vars. A token whose key
// is absent from vars is emitted verbatim, delimiters included. Used to
// materialize compile commands and work-directory paths before spawning.
//
// ExpandVars("", vars) == "" and ExpandVars(s, nil) == s for any s without a
// "%" in it; more generally ExpandVars(s, map[string]string{}) == s always.
func ExpandVars(input string, vars map[string]string) string {
	var out strings.Builder
	out.Grow(len(input))

	for i := 0; i < len(input); {
		if input[i] == '%' {
			end := strings.IndexByte(input[i+1:], '%')
			if end >= 0 {
				end += i + 1
				key := input[i+1 : end]
				if val, ok := vars[key]; ok {
					out.WriteString(val)
				} else {
					out.WriteString(input[i : end+1])
				}
				i = end + 1
				continue
			}
		}
		out.WriteByte(input[i])
		i++
	}

	return out.String()
}
