package console

import "strconv"

// sprintf is a tiny, non-allocating-where-possible formatter covering the
// handful of verbs the kernel's own diagnostics need (%s %d %x %c %%),
// grounded on the teacher's printHex32/printHex64 family in
// framebuffer_qemu.go: a bare-metal console has no business pulling in the
// general-purpose fmt package for this.
func sprintf(format string, args ...any) string {
	out := make([]byte, 0, len(format)+16)
	ai := 0
	next := func() any {
		if ai < len(args) {
			v := args[ai]
			ai++
			return v
		}
		return nil
	}
	for i := 0; i < len(format); i++ {
		ch := format[i]
		if ch != '%' || i == len(format)-1 {
			out = append(out, ch)
			continue
		}
		i++
		switch format[i] {
		case '%':
			out = append(out, '%')
		case 's':
			out = append(out, toString(next())...)
		case 'd':
			out = append(out, toDecimal(next())...)
		case 'x':
			out = append(out, toHex(next())...)
		case 'c':
			if b, ok := next().(byte); ok {
				out = append(out, b)
			}
		default:
			out = append(out, '%', format[i])
		}
	}
	return string(out)
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case error:
		return x.Error()
	case []byte:
		return string(x)
	default:
		return toDecimal(v)
	}
}

func toDecimal(v any) string {
	switch x := v.(type) {
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uintptr:
		return strconv.FormatUint(uint64(x), 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	default:
		return "?"
	}
}

func toHex(v any) string {
	switch x := v.(type) {
	case uint32:
		return strconv.FormatUint(uint64(x), 16)
	case uintptr:
		return strconv.FormatUint(uint64(x), 16)
	case int:
		return strconv.FormatInt(int64(x), 16)
	default:
		return "?"
	}
}
