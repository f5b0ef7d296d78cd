package objcgen

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
)

// ObjectiveCType classifies protobuf field types by the Objective-C
// storage type the runtime uses for them.
type ObjectiveCType int

const (
	ObjectiveCTypeInt32 ObjectiveCType = iota
	ObjectiveCTypeUint32
	ObjectiveCTypeInt64
	ObjectiveCTypeUint64
	ObjectiveCTypeFloat
	ObjectiveCTypeDouble
	ObjectiveCTypeBoolean
	ObjectiveCTypeString
	ObjectiveCTypeData
	ObjectiveCTypeEnum
	ObjectiveCTypeMessage
)

// GetObjectiveCType returns the Objective-C storage classification for a
// protobuf field kind.
func GetObjectiveCType(kind protoreflect.Kind) ObjectiveCType {
	switch kind {
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		return ObjectiveCTypeInt32
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		return ObjectiveCTypeUint32
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return ObjectiveCTypeInt64
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return ObjectiveCTypeUint64
	case protoreflect.FloatKind:
		return ObjectiveCTypeFloat
	case protoreflect.DoubleKind:
		return ObjectiveCTypeDouble
	case protoreflect.BoolKind:
		return ObjectiveCTypeBoolean
	case protoreflect.StringKind:
		return ObjectiveCTypeString
	case protoreflect.BytesKind:
		return ObjectiveCTypeData
	case protoreflect.EnumKind:
		return ObjectiveCTypeEnum
	case protoreflect.MessageKind, protoreflect.GroupKind:
		return ObjectiveCTypeMessage
	default:
		panic(fmt.Sprintf("unexpected field kind %v", kind))
	}
}

// GetCapitalizedType returns the wire-type name used in runtime selector
// and macro names, e.g. "SFixed32" or "Bool".
func GetCapitalizedType(fd protoreflect.FieldDescriptor) string {
	switch fd.Kind() {
	case protoreflect.Int32Kind:
		return "Int32"
	case protoreflect.Uint32Kind:
		return "UInt32"
	case protoreflect.Sint32Kind:
		return "SInt32"
	case protoreflect.Fixed32Kind:
		return "Fixed32"
	case protoreflect.Sfixed32Kind:
		return "SFixed32"
	case protoreflect.Int64Kind:
		return "Int64"
	case protoreflect.Uint64Kind:
		return "UInt64"
	case protoreflect.Sint64Kind:
		return "SInt64"
	case protoreflect.Fixed64Kind:
		return "Fixed64"
	case protoreflect.Sfixed64Kind:
		return "SFixed64"
	case protoreflect.FloatKind:
		return "Float"
	case protoreflect.DoubleKind:
		return "Double"
	case protoreflect.BoolKind:
		return "Bool"
	case protoreflect.StringKind:
		return "String"
	case protoreflect.BytesKind:
		return "Bytes"
	case protoreflect.EnumKind:
		return "Enum"
	case protoreflect.GroupKind:
		return "Group"
	case protoreflect.MessageKind:
		return "Message"
	default:
		panic(fmt.Sprintf("unexpected field kind %v", fd.Kind()))
	}
}

// GPBGenericValueFieldName returns the name of the GPBGenericValue union
// member that holds a value of the field's type.
func GPBGenericValueFieldName(fd protoreflect.FieldDescriptor) string {
	switch GetObjectiveCType(fd.Kind()) {
	case ObjectiveCTypeInt32:
		return "valueInt32"
	case ObjectiveCTypeUint32:
		return "valueUInt32"
	case ObjectiveCTypeInt64:
		return "valueInt64"
	case ObjectiveCTypeUint64:
		return "valueUInt64"
	case ObjectiveCTypeFloat:
		return "valueFloat"
	case ObjectiveCTypeDouble:
		return "valueDouble"
	case ObjectiveCTypeBoolean:
		return "valueBool"
	case ObjectiveCTypeString:
		return "valueString"
	case ObjectiveCTypeData:
		return "valueData"
	case ObjectiveCTypeEnum:
		return "valueEnum"
	case ObjectiveCTypeMessage:
		return "valueMessage"
	default:
		panic("unreachable")
	}
}

// DefaultValue renders a field's default as an Objective-C literal the
// runtime can store in a GPBGenericValue.
func DefaultValue(fd protoreflect.FieldDescriptor) string {
	switch fd.Kind() {
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		v := int32(fd.Default().Int())
		if v == math.MinInt32 {
			// Some compilers reject the decimal form of the minimum value.
			return "-0x80000000"
		}
		return strconv.FormatInt(int64(v), 10)
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		return strconv.FormatUint(fd.Default().Uint(), 10) + "U"
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		v := fd.Default().Int()
		if v == math.MinInt64 {
			return "-0x8000000000000000LL"
		}
		return strconv.FormatInt(v, 10) + "LL"
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return strconv.FormatUint(fd.Default().Uint(), 10) + "ULL"
	case protoreflect.FloatKind:
		return handleExtremeFloatingPoint(float64(float32(fd.Default().Float())), true)
	case protoreflect.DoubleKind:
		return handleExtremeFloatingPoint(fd.Default().Float(), false)
	case protoreflect.BoolKind:
		if fd.Default().Bool() {
			return "YES"
		}
		return "NO"
	case protoreflect.StringKind:
		s := fd.Default().String()
		if s == "" {
			// An empty default is represented as nil; the runtime treats
			// the two identically.
			return "nil"
		}
		return `@"` + EscapeTrigraphs(cEscape([]byte(s))) + `"`
	case protoreflect.BytesKind:
		b := fd.Default().Bytes()
		if len(b) == 0 {
			return "nil"
		}
		// A length-prefixed C string cast to NSData*, so the default can
		// live in static storage. The runtime unpacks it on first use.
		prefixed := make([]byte, 4, 4+len(b))
		binary.BigEndian.PutUint32(prefixed, uint32(len(b)))
		prefixed = append(prefixed, b...)
		return `(NSData*)"` + EscapeTrigraphs(cEscape(prefixed)) + `"`
	case protoreflect.EnumKind:
		return strconv.FormatInt(int64(fd.DefaultEnumValue().Number()), 10)
	case protoreflect.MessageKind, protoreflect.GroupKind:
		return "nil"
	default:
		panic(fmt.Sprintf("unexpected field kind %v", fd.Kind()))
	}
}

func handleExtremeFloatingPoint(v float64, isFloat bool) string {
	switch {
	case math.IsNaN(v):
		return "NAN"
	case math.IsInf(v, 1):
		return "INFINITY"
	case math.IsInf(v, -1):
		return "-INFINITY"
	}
	bits := 64
	if isFloat {
		bits = 32
	}
	s := strconv.FormatFloat(v, 'g', -1, bits)
	if isFloat {
		s += "f"
	}
	return s
}

// EscapeTrigraphs escapes question marks so string literals containing
// "??" sequences cannot form trigraphs.
func EscapeTrigraphs(s string) string {
	return strings.ReplaceAll(s, "?", `\?`)
}

// cEscape renders data as the body of a C string literal, escaping
// control and non-ASCII bytes in octal.
func cEscape(data []byte) string {
	var b strings.Builder
	b.Grow(len(data))
	for _, c := range data {
		switch c {
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '"':
			b.WriteString(`\"`)
		case '\'':
			b.WriteString(`\'`)
		case '\\':
			b.WriteString(`\\`)
		default:
			if c < 0x20 || c >= 0x7f {
				fmt.Fprintf(&b, `\%03o`, c)
			} else {
				b.WriteByte(c)
			}
		}
	}
	return b.String()
}

// FlagType selects which runtime flags enum a flags expression is built
// for.
type FlagType int

const (
	FlagTypeDescriptorInitialization FlagType = iota
	FlagTypeExtension
	FlagTypeField
)

func (t FlagType) enumName() string {
	switch t {
	case FlagTypeDescriptorInitialization:
		return "GPBDescriptorInitializationFlags"
	case FlagTypeExtension:
		return "GPBExtensionOptions"
	case FlagTypeField:
		return "GPBFieldFlags"
	default:
		panic(fmt.Sprintf("unexpected flag type %d", t))
	}
}

func (t FlagType) zeroName() string {
	switch t {
	case FlagTypeDescriptorInitialization:
		return "GPBDescriptorInitializationFlag_None"
	case FlagTypeExtension:
		return "GPBExtensionNone"
	case FlagTypeField:
		return "GPBFieldNone"
	default:
		panic(fmt.Sprintf("unexpected flag type %d", t))
	}
}

// BuildFlagsString ORs the named flags into a single expression, casting
// through the flags enum when more than one flag is set so the compiler
// does not complain about mixing enumerators.
func BuildFlagsString(flagType FlagType, flags []string) string {
	if len(flags) == 0 {
		return flagType.zeroName()
	}
	if len(flags) == 1 {
		return flags[0]
	}
	return "(" + flagType.enumName() + ")(" + strings.Join(flags, " | ") + ")"
}

// ObjCClass returns an expression referring to an Objective-C class
// without triggering its +initialize.
func ObjCClass(className string) string {
	return "GPBObjCClass(" + className + ")"
}

// ObjCClassDeclaration declares a class for later use with ObjCClass.
func ObjCClassDeclaration(className string) string {
	return "GPBObjCClassDeclaration(" + className + ");"
}

// HasPreservingUnknownEnumSemantics reports whether enums declared in
// file keep unknown values instead of dropping them to unknown fields.
func HasPreservingUnknownEnumSemantics(file protoreflect.FileDescriptor) bool {
	return file.Syntax() == protoreflect.Proto3
}

// GetOptionalDeprecatedAttribute returns the deprecation annotation for a
// descriptor, or the empty string when it is not deprecated. file should
// be supplied when checking messages and enums so file-level deprecation
// tags them too; fields and enum values are not individually tagged for a
// deprecated file.
func GetOptionalDeprecatedAttribute(d protoreflect.Descriptor, file protoreflect.FileDescriptor, preSpace, postNewline bool) string {
	deprecated := isDeprecated(d)
	fileLevel := false
	if !deprecated && file != nil {
		fileLevel = isDeprecated(file)
		deprecated = fileLevel
	}
	if !deprecated {
		return ""
	}
	var message string
	if fileLevel {
		message = d.ParentFile().Path() + " is deprecated."
	} else {
		message = string(d.FullName()) + " is deprecated (see " + d.ParentFile().Path() + ")."
	}
	result := `GPB_DEPRECATED_MSG("` + message + `")`
	if preSpace {
		result = " " + result
	}
	if postNewline {
		result += "\n"
	}
	return result
}

func isDeprecated(d protoreflect.Descriptor) bool {
	switch opts := d.Options().(type) {
	case *descriptorpb.FileOptions:
		return opts.GetDeprecated()
	case *descriptorpb.MessageOptions:
		return opts.GetDeprecated()
	case *descriptorpb.FieldOptions:
		return opts.GetDeprecated()
	case *descriptorpb.EnumOptions:
		return opts.GetDeprecated()
	case *descriptorpb.EnumValueOptions:
		return opts.GetDeprecated()
	case *descriptorpb.ServiceOptions:
		return opts.GetDeprecated()
	case *descriptorpb.MethodOptions:
		return opts.GetDeprecated()
	default:
		return false
	}
}
