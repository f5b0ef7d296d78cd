package objcgen

import (
	"path"
	"strings"

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
)

// Segments that render fully uppercase in camel-cased names.
var upperSegments = map[string]bool{
	"url":   true,
	"http":  true,
	"https": true,
}

// Field and method names that collide with NSObject or runtime selectors;
// generated names for them get a "_p" suffix.
var objcReservedWords = map[string]bool{
	"alloc":       true,
	"autorelease": true,
	"class":       true,
	"copy":        true,
	"dealloc":     true,
	"description": true,
	"hash":        true,
	"id":          true,
	"init":        true,
	"isProxy":     true,
	"mutableCopy": true,
	"new":         true,
	"nil":         true,
	"release":     true,
	"retain":      true,
	"retainCount": true,
	"self":        true,
	"super":       true,
	"zone":        true,
}

// UnderscoresToCamelCase converts a proto identifier into camel case,
// splitting on underscores, case changes, and digit runs. The segments
// "url", "http" and "https" come out fully uppercase.
func UnderscoresToCamelCase(input string, firstCapitalized bool) string {
	var segments []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			segments = append(segments, current.String())
			current.Reset()
		}
	}
	var lastDigit, lastLower, lastUpper bool
	for i := 0; i < len(input); i++ {
		c := input[i]
		switch {
		case c >= '0' && c <= '9':
			if !lastDigit {
				flush()
			}
			current.WriteByte(c)
			lastDigit, lastLower, lastUpper = true, false, false
		case c >= 'a' && c <= 'z':
			// A lowercase letter extends a run started by either case.
			if !lastLower && !lastUpper {
				flush()
			}
			current.WriteByte(c)
			lastDigit, lastLower, lastUpper = false, true, false
		case c >= 'A' && c <= 'Z':
			if !lastUpper {
				flush()
			}
			current.WriteByte(c - 'A' + 'a')
			lastDigit, lastLower, lastUpper = false, false, true
		default:
			lastDigit, lastLower, lastUpper = false, false, false
		}
	}
	flush()

	var b strings.Builder
	for i, segment := range segments {
		if upperSegments[segment] {
			b.WriteString(strings.ToUpper(segment))
			continue
		}
		if i == 0 && !firstCapitalized {
			b.WriteString(segment)
			continue
		}
		b.WriteString(strings.ToUpper(segment[:1]))
		b.WriteString(segment[1:])
	}
	return b.String()
}

// SanitizeNameForObjC strips characters that cannot appear in an
// Objective-C identifier and prefixes a '_' when the result would start
// with a digit.
func SanitizeNameForObjC(name string) string {
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '_' || (c >= '0' && c <= '9') ||
			(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			b.WriteByte(c)
		}
	}
	s := b.String()
	if s != "" && s[0] >= '0' && s[0] <= '9' {
		s = "_" + s
	}
	return s
}

// BaseFileName returns the name of a proto file without directories or
// the ".proto"/".protodevel" extension.
func BaseFileName(file protoreflect.FileDescriptor) string {
	base := path.Base(file.Path())
	base = strings.TrimSuffix(base, ".proto")
	base = strings.TrimSuffix(base, ".protodevel")
	return base
}

// FileClassPrefix returns the objc_class_prefix option of a file, or the
// empty string when it is unset.
func FileClassPrefix(file protoreflect.FileDescriptor) string {
	opts, ok := file.Options().(*descriptorpb.FileOptions)
	if !ok {
		return ""
	}
	return opts.GetObjcClassPrefix()
}

// FileClassName returns the name of the root class generated for a file.
func FileClassName(file protoreflect.FileDescriptor) string {
	return FileClassPrefix(file) + UnderscoresToCamelCase(BaseFileName(file), true) + "Root"
}

// ClassName returns the Objective-C class name for a message, including
// the file prefix and any containing message names.
func ClassName(md protoreflect.MessageDescriptor) string {
	return FileClassPrefix(md.ParentFile()) + nestedTypeName(md)
}

// EnumName returns the Objective-C type name for an enum.
func EnumName(ed protoreflect.EnumDescriptor) string {
	return FileClassPrefix(ed.ParentFile()) + nestedTypeName(ed)
}

// EnumValueName returns the enumerator name generated for an enum value.
func EnumValueName(evd protoreflect.EnumValueDescriptor) string {
	ed := evd.Parent().(protoreflect.EnumDescriptor)
	value := UnderscoresToCamelCase(string(evd.Name()), true)
	return EnumName(ed) + "_" + SanitizeNameForObjC(value)
}

func nestedTypeName(d protoreflect.Descriptor) string {
	var parts []string
	for ; d != nil; d = d.Parent() {
		if _, isFile := d.(protoreflect.FileDescriptor); isFile {
			break
		}
		parts = append(parts, UnderscoresToCamelCase(string(d.Name()), true))
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "_")
}

// FieldName returns the property name generated for a field, avoiding
// reserved selector names.
func FieldName(fd protoreflect.FieldDescriptor) string {
	name := UnderscoresToCamelCase(string(fd.Name()), false)
	if fd.IsList() || fd.IsMap() {
		name += "Array"
	}
	if objcReservedWords[name] {
		name += "_p"
	}
	return name
}

// FieldNameCapitalized is FieldName with a leading capital, for use in
// selector fragments like FieldNumber enumerators and has... accessors.
func FieldNameCapitalized(fd protoreflect.FieldDescriptor) string {
	name := FieldName(fd)
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
